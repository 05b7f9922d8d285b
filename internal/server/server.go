// Package server accepts client connections over TCP and WebSocket and runs
// the line protocol on each, handing complete frames to the dispatcher.
package server

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/lobbyd/internal/handlers"
	"github.com/jason-s-yu/lobbyd/internal/heartbeat"
	"github.com/jason-s-yu/lobbyd/internal/middleware"
	"github.com/jason-s-yu/lobbyd/internal/protocol"
	"github.com/jason-s-yu/lobbyd/internal/session"
)

const (
	readBufferSize = 4096
	writeTimeout   = 10 * time.Second
	acceptBackoff  = 50 * time.Millisecond

	// DefaultMaxFrameBytes caps one unterminated frame.
	DefaultMaxFrameBytes = 1 << 20
)

// Options configures a Server.
type Options struct {
	Heartbeat     heartbeat.Config
	OutboxSize    int
	MaxFrameBytes int
	// WSOrigins are the origin patterns the WebSocket gateway accepts.
	WSOrigins []string
}

// Server owns every live client connection.
type Server struct {
	opts       Options
	dispatcher *handlers.Dispatcher
	logger     *logrus.Logger

	mu    sync.Mutex
	conns map[net.Conn]struct{}
	wg    sync.WaitGroup
}

// New creates a Server around a dispatcher.
func New(opts Options, d *handlers.Dispatcher, logger *logrus.Logger) *Server {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if opts.MaxFrameBytes <= 0 {
		opts.MaxFrameBytes = DefaultMaxFrameBytes
	}
	if len(opts.WSOrigins) == 0 {
		opts.WSOrigins = []string{"*"}
	}
	return &Server{
		opts:       opts,
		dispatcher: d,
		logger:     logger,
		conns:      make(map[net.Conn]struct{}),
	}
}

// ListenAndServe listens on addr and serves TCP clients until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return eris.Wrapf(err, "failed to listen on %s", addr)
	}
	s.logger.Infof("Server listening on %s", ln.Addr())
	return s.Serve(ctx, ln)
}

// Serve accepts connections from ln until ctx is done or ln is closed.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.logger.WithError(err).Error("Accept failed")
			time.Sleep(acceptBackoff)
			continue
		}
		go s.ServeConn(conn, "tcp", conn.RemoteAddr().String())
	}
}

// ServeConn runs one client connection to completion. It blocks until the
// peer goes away or the session is closed.
func (s *Server) ServeConn(conn net.Conn, transport, addr string) {
	if !s.track(conn) {
		_ = conn.Close()
		return
	}
	defer s.untrack(conn)

	sess := session.New(conn, addr, session.Options{
		Logger:     s.logger,
		Heartbeat:  s.opts.Heartbeat,
		OutboxSize: s.opts.OutboxSize,
		Directory:  s.dispatcher.Registry(),
		OnDead:     s.dispatcher.Disconnect,
	})
	middleware.LogConnect(s.logger, transport, addr, sess.ID)

	pumpDone := make(chan struct{})
	go func() {
		defer close(pumpDone)
		s.writePump(conn, sess)
	}()

	s.dispatcher.Connect(sess)
	err := s.readLoop(conn, sess)

	middleware.LogDisconnect(s.logger, transport, addr, sess.ID, err)
	s.dispatcher.Disconnect(sess)
	<-pumpDone
}

// readLoop feeds received bytes through a splitter and dispatches every
// complete frame. Any read counts as liveness.
func (s *Server) readLoop(conn net.Conn, sess *session.Session) error {
	splitter := protocol.NewSplitter(s.opts.MaxFrameBytes)
	buf := make([]byte, readBufferSize)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			sess.Touch()
			frames, ferr := splitter.Feed(buf[:n])
			for _, frame := range frames {
				s.dispatcher.HandleFrame(sess, frame)
			}
			if ferr != nil {
				sess.Logger().WithError(ferr).Warn("Discarding oversized frame")
				sess.SendError(handlers.MsgParseFailure)
			}
		}
		if err != nil {
			return err
		}
		if sess.Closed() {
			return nil
		}
	}
}

// writePump drains the session outbox onto the connection.
func (s *Server) writePump(conn net.Conn, sess *session.Session) {
	for {
		select {
		case line := <-sess.Outbox():
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if _, err := conn.Write(line); err != nil {
				if !middleware.IsCleanClose(err) {
					sess.Logger().WithError(err).Warn("Write failed, closing connection")
				}
				// the read loop sees the close and tears the session down
				_ = conn.Close()
				return
			}
		case <-sess.Done():
			return
		}
	}
}

// track registers conn with the shutdown wait group. It refuses once
// Shutdown has started so Add never races Wait.
func (s *Server) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conns == nil {
		return false
	}
	s.conns[conn] = struct{}{}
	s.wg.Add(1)
	return true
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
	s.wg.Done()
}

// Shutdown closes every open connection and waits for their sessions to be
// torn down. The server accepts no connections afterwards.
func (s *Server) Shutdown() {
	s.mu.Lock()
	conns := s.conns
	s.conns = nil
	s.mu.Unlock()

	for conn := range conns {
		_ = conn.Close()
	}
	s.wg.Wait()
}
