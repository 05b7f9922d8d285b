// Package sessiontest builds sessions without a network connection and reads
// back what they were sent.
package sessiontest

import (
	"io"
	"testing"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/lobbyd/internal/session"
)

// Frame is one decoded outbound action.
type Frame map[string]any

// Action returns the frame's action tag.
func (f Frame) Action() string {
	a, _ := f["action"].(string)
	return a
}

// Logger returns a logger that discards output.
func Logger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// New returns an unstarted session attached to dir.
func New(dir session.Directory) *session.Session {
	return session.New(nil, "pipe", session.Options{Logger: Logger(), Directory: dir})
}

// Drain decodes every frame currently queued for s.
func Drain(t testing.TB, s *session.Session) []Frame {
	t.Helper()
	var frames []Frame
	for {
		select {
		case line := <-s.Outbox():
			var f Frame
			require.NoError(t, json.Unmarshal(line, &f), string(line))
			frames = append(frames, f)
		default:
			return frames
		}
	}
}

// Actions lists the action tags of frames in order.
func Actions(frames []Frame) []string {
	out := make([]string, 0, len(frames))
	for _, f := range frames {
		out = append(out, f.Action())
	}
	return out
}

// Find returns the frames with the given action.
func Find(frames []Frame, action string) []Frame {
	var out []Frame
	for _, f := range frames {
		if f.Action() == action {
			out = append(out, f)
		}
	}
	return out
}
