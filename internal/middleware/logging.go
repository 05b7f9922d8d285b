// internal/middleware/logging.go

package middleware

import (
	"errors"
	"io"
	"net"
	"net/http"
	"syscall"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// LogMiddleware is an HTTP middleware that logs incoming requests using Logrus.
// Logs the method, path, status, and duration of each request.
func LogMiddleware(logger *logrus.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   ww.Status(),
				"bytes":    ww.BytesWritten(),
				"duration": time.Since(start),
				"remote":   r.RemoteAddr,
			}).Info("HTTP Request")
		})
	}
}

// LogConnect logs a client connecting over the given transport ("tcp" or
// "ws").
func LogConnect(logger *logrus.Logger, transport, remoteAddr, sessionID string) {
	logger.WithFields(logrus.Fields{
		"transport": transport,
		"remote":    remoteAddr,
		"session":   sessionID,
	}).Info("Client connected")
}

// LogDisconnect logs a client going away. A clean close logs at Info, a peer
// reset at Warn and anything else at Error.
func LogDisconnect(logger *logrus.Logger, transport, remoteAddr, sessionID string, err error) {
	entry := logger.WithFields(logrus.Fields{
		"transport": transport,
		"remote":    remoteAddr,
		"session":   sessionID,
	})
	switch {
	case IsCleanClose(err):
		entry.Info("Client disconnected")
	case IsConnReset(err):
		entry.WithError(err).Warn("Connection reset by peer")
	default:
		entry.WithError(err).Error("Unexpected connection error")
	}
}

// IsConnReset reports whether err is the peer resetting the connection.
func IsConnReset(err error) bool {
	return errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE)
}

// IsCleanClose reports whether err marks an orderly end of the stream,
// including our own side closing it.
func IsCleanClose(err error) bool {
	return err == nil || errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed)
}
