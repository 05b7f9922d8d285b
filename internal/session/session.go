// internal/session/session.go
package session

import (
	"io"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/lobbyd/internal/heartbeat"
	"github.com/jason-s-yu/lobbyd/internal/protocol"
	"github.com/jason-s-yu/lobbyd/internal/score"
)

// DefaultOutboxSize bounds the frames queued for one connection.
const DefaultOutboxSize = 256

// LocationSelecting is the location a player starts a game in.
const LocationSelecting = "loc_selecting"

// Lobby is the part of a lobby a session needs to notify its peers.
type Lobby interface {
	Code() string
	Members() []*Session
	BroadcastLobbyInfo()
	Leave(s *Session)
}

// Directory resolves the lobby code a session holds.
type Directory interface {
	Lookup(code string) (Lobby, bool)
}

// Profile is the lobby-visible identity of a player.
type Profile struct {
	Username   string
	Colour     string
	ModHash    string
	IsCached   bool
	IsReady    bool
	FirstReady bool
}

// State is a player's round state.
type State struct {
	Lives         int
	Score         score.InsaneInt
	HighestScore  score.InsaneInt
	HandsLeft     int
	Ante          int
	Skips         int
	FurthestBlind int
	LivesBlocker  bool
	Location      string
}

func defaultProfile() Profile {
	return Profile{Username: "Guest", Colour: "1", ModHash: "NULL", IsCached: true}
}

// DefaultState is the start-of-game round state.
func DefaultState() State {
	return State{
		Lives:     4,
		Score:     score.Zero,
		HandsLeft: 4,
		Ante:      1,
		Location:  LocationSelecting,
	}
}

// Options configures a new Session.
type Options struct {
	Logger     *logrus.Logger
	Heartbeat  heartbeat.Config
	OutboxSize int
	Directory  Directory
	// OnDead runs when the heartbeat gives up on the peer. It defaults to
	// closing the session.
	OnDead func(s *Session)
}

// Session is one client connection. Profile and round state are only touched
// by the dispatcher goroutine that holds the dispatch lock; Send is safe from
// any goroutine.
type Session struct {
	ID   string
	Addr string

	conn    io.Closer
	log     *logrus.Entry
	dir     Directory
	monitor *heartbeat.Monitor

	outbox    chan []byte
	done      chan struct{}
	closed    atomic.Bool
	closeOnce sync.Once

	lobbyCode string
	profile   Profile
	state     State
}

// New wraps conn in a Session. The heartbeat is not armed until Start.
func New(conn io.Closer, addr string, opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.OutboxSize <= 0 {
		opts.OutboxSize = DefaultOutboxSize
	}
	if opts.Heartbeat == (heartbeat.Config{}) {
		opts.Heartbeat = heartbeat.DefaultConfig()
	}

	s := &Session{
		ID:      uuid.NewString(),
		Addr:    addr,
		conn:    conn,
		dir:     opts.Directory,
		outbox:  make(chan []byte, opts.OutboxSize),
		done:    make(chan struct{}),
		profile: defaultProfile(),
		state:   DefaultState(),
	}
	s.log = opts.Logger.WithFields(logrus.Fields{"session": s.ID, "remote": addr})

	onDead := opts.OnDead
	if onDead == nil {
		onDead = func(s *Session) { s.Close() }
	}
	s.monitor = heartbeat.New(opts.Heartbeat,
		func() { s.Send(protocol.KeepAlive{}) },
		func() {
			s.log.Warn("Heartbeat exhausted, closing session")
			onDead(s)
		},
	)
	return s
}

// Start arms the heartbeat.
func (s *Session) Start() { s.monitor.Start() }

// Touch records inbound traffic on the connection.
func (s *Session) Touch() { s.monitor.Rearm() }

// Heartbeat exposes the liveness monitor.
func (s *Session) Heartbeat() *heartbeat.Monitor { return s.monitor }

// Logger returns the session scoped log entry.
func (s *Session) Logger() *logrus.Entry { return s.log }

// Outbox is drained by the transport's write pump.
func (s *Session) Outbox() <-chan []byte { return s.outbox }

// Done is closed when the session closes.
func (s *Session) Done() <-chan struct{} { return s.done }

// Closed reports whether Close has run.
func (s *Session) Closed() bool { return s.closed.Load() }

// Send queues one outbound action. It never blocks: frames for a closed
// session are discarded and a full outbox drops the frame.
func (s *Session) Send(msg protocol.Outbound) {
	if s.closed.Load() {
		return
	}
	line, err := protocol.Encode(msg)
	if err != nil {
		s.log.WithError(err).Errorf("Failed to encode action %q", msg.Action())
		return
	}

	action := msg.Action()
	if action != protocol.ActionKeepAlive && action != protocol.ActionKeepAliveAck {
		s.log.WithFields(logrus.Fields{
			"action":  action,
			"payload": string(line[:len(line)-1]),
		}).Info("Sent action")
	}

	select {
	case s.outbox <- line:
	default:
		s.log.Warnf("Outbox full, dropped action %q", action)
	}
}

// SendError sends an error action with the given message.
func (s *Session) SendError(message string) {
	s.Send(protocol.Error{Message: message})
}

// Close leaves the current lobby, stops the heartbeat and closes the
// connection. Calling it again is a no-op.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		if l, ok := s.Lobby(); ok {
			l.Leave(s)
		}
		s.monitor.Stop()
		s.closed.Store(true)
		close(s.done)
		if s.conn != nil {
			if err := s.conn.Close(); err != nil {
				s.log.WithError(err).Debug("Error closing connection")
			}
		}
	})
}

// Lobby resolves the session's current lobby.
func (s *Session) Lobby() (Lobby, bool) {
	if s.lobbyCode == "" || s.dir == nil {
		return nil, false
	}
	return s.dir.Lookup(s.lobbyCode)
}

// LobbyCode is the code of the current lobby, or empty.
func (s *Session) LobbyCode() string { return s.lobbyCode }

// SetLobbyCode attaches the session to a lobby; empty detaches it. Only the
// lobby package calls this, keeping membership and the code in step.
func (s *Session) SetLobbyCode(code string) { s.lobbyCode = code }

// Profile returns a copy of the profile.
func (s *Session) Profile() Profile { return s.profile }

// State returns a copy of the round state.
func (s *Session) State() State { return s.state }

// ResetState restores the start-of-game round state.
func (s *Session) ResetState() { s.state = DefaultState() }
