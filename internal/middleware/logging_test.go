package middleware

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"syscall"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogMiddlewareRecordsStatus(t *testing.T) {
	logger, hook := test.NewNullLogger()
	h := LogMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/lobbies", nil))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "HTTP Request", entry.Message)
	assert.Equal(t, http.StatusTeapot, entry.Data["status"])
	assert.Equal(t, "/lobbies", entry.Data["path"])
}

func TestLogDisconnectLevels(t *testing.T) {
	logger, hook := test.NewNullLogger()

	cases := []struct {
		err   error
		level logrus.Level
	}{
		{nil, logrus.InfoLevel},
		{io.EOF, logrus.InfoLevel},
		{fmt.Errorf("read: %w", net.ErrClosed), logrus.InfoLevel},
		{&net.OpError{Op: "read", Err: syscall.ECONNRESET}, logrus.WarnLevel},
		{fmt.Errorf("boom"), logrus.ErrorLevel},
	}
	for _, tc := range cases {
		LogDisconnect(logger, "tcp", "127.0.0.1:1", "id", tc.err)
		assert.Equal(t, tc.level, hook.LastEntry().Level, fmt.Sprint(tc.err))
	}
}
