// internal/handlers/dispatcher.go
package handlers

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/lobbyd/internal/cache"
	"github.com/jason-s-yu/lobbyd/internal/lobby"
	"github.com/jason-s-yu/lobbyd/internal/protocol"
	"github.com/jason-s-yu/lobbyd/internal/round"
	"github.com/jason-s-yu/lobbyd/internal/session"
)

// MsgParseFailure is sent back for any frame that could not be handled.
const MsgParseFailure = "Failed to parse message"

// Dispatcher routes decoded frames to their handlers. Every entry point takes
// the same lock, so handlers, heartbeat teardown and disconnects never run
// concurrently and may mutate any session or lobby freely.
type Dispatcher struct {
	mu       sync.Mutex
	registry *lobby.Registry
	feed     *cache.Feed
	logger   *logrus.Logger
}

// NewDispatcher wires the registry's close hook to the match feed. feed may
// be nil.
func NewDispatcher(registry *lobby.Registry, feed *cache.Feed, logger *logrus.Logger) *Dispatcher {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	d := &Dispatcher{registry: registry, feed: feed, logger: logger}
	registry.OnClose = func(l *lobby.Lobby) {
		d.publish(cache.EventLobbyClosed, l, nil)
	}
	return d
}

// Registry returns the lobby registry the dispatcher acts on.
func (d *Dispatcher) Registry() *lobby.Registry { return d.registry }

// Connect greets a new session with connected and version, then arms its
// heartbeat.
func (d *Dispatcher) Connect(s *session.Session) {
	d.mu.Lock()
	defer d.mu.Unlock()

	s.Send(protocol.Connected{})
	s.Send(protocol.Version{})
	s.Start()
}

// Disconnect tears the session down, leaving its lobby. Safe to call more than
// once and from any goroutine.
func (d *Dispatcher) Disconnect(s *session.Session) {
	d.mu.Lock()
	defer d.mu.Unlock()
	s.Close()
}

// HandleFrame decodes and handles one complete frame. Failures are reported
// to the sender only; the connection stays open.
func (d *Dispatcher) HandleFrame(s *session.Session, frame []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if s.Closed() {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			s.Logger().WithField("panic", fmt.Sprint(r)).Error("Recovered from panic while handling frame")
			s.SendError(MsgParseFailure)
		}
	}()

	msg, err := protocol.Decode(frame)
	if err != nil {
		s.Logger().WithError(err).Warn(MsgParseFailure)
		s.SendError(MsgParseFailure)
		return
	}

	if action := msg.Action(); action != protocol.ActionKeepAlive && action != protocol.ActionKeepAliveAck {
		entry := s.Logger().WithField("action", action)
		go entry.Info("Received action")
	}

	d.dispatch(s, msg)
}

// dispatch runs the handler for msg. Assumes mu is held.
func (d *Dispatcher) dispatch(s *session.Session, msg protocol.Inbound) {
	switch m := msg.(type) {
	// lobby and profile
	case *protocol.Username:
		d.handleUsername(s, m)
	case *protocol.CreateLobby:
		d.handleCreateLobby(s, m)
	case *protocol.JoinLobby:
		d.handleJoinLobby(s, m)
	case *protocol.LeaveLobby:
		d.handleLeaveLobby(s)
	case *protocol.LobbyInfo:
		d.handleLobbyInfo(s)
	case *protocol.LobbyOptions:
		d.handleLobbyOptions(s, m)
	case *protocol.KeepAlive:
		s.Send(protocol.KeepAliveAck{})
	case *protocol.KeepAliveAck:
		// liveness is recorded by the transport on every read
	case *protocol.Version:
		d.handleVersion(s, m)
	case *protocol.SyncClient:
		s.SetCached(m.IsCached)

	// game flow
	case *protocol.StartGame:
		d.handleStartGame(s)
	case *protocol.StopGame:
		d.handleStopGame(s)
	case *protocol.ReadyBlind:
		d.handleReadyBlind(s)
	case *protocol.UnreadyBlind:
		s.SetReady(false)
	case *protocol.PlayHand:
		d.handlePlayHand(s, m)
	case *protocol.GameInfo:
		d.handleGameInfo(s)
	case *protocol.FailRound:
		d.handleFailRound(s)
	case *protocol.SetAnte:
		s.SetAnte(m.Ante.Int())
	case *protocol.SetLocation:
		s.SetLocation(m.Location)
	case *protocol.NewRound:
		round.NewRound(s)
	case *protocol.SetFurthestBlind:
		d.handleSetFurthestBlind(s, m)
	case *protocol.Skip:
		d.handleSkip(s, m)
	case *protocol.FailTimer:
		d.handleFailTimer(s)

	// relays
	case *protocol.SendPhantom:
		d.relay(s, *m)
	case *protocol.RemovePhantom:
		d.relay(s, *m)
	case *protocol.Asteroid:
		d.relay(s, *m)
	case *protocol.LetsGoGamblingNemesis:
		d.relay(s, *m)
	case *protocol.EatPizza:
		d.relay(s, *m)
	case *protocol.SoldJoker:
		d.relay(s, *m)
	case *protocol.SpentLastShop:
		d.relay(s, *m)
	case *protocol.Magnet:
		d.relay(s, *m)
	case *protocol.MagnetResponse:
		d.relay(s, *m)
	case *protocol.GetEndGameJokers:
		d.relay(s, *m)
	case *protocol.ReceiveEndGameJokers:
		d.relay(s, *m)
	case *protocol.GetNemesisDeck:
		d.relay(s, *m)
	case *protocol.ReceiveNemesisDeck:
		d.relay(s, *m)
	case *protocol.StartAnteTimer:
		d.relay(s, *m)
	case *protocol.PauseAnteTimer:
		d.relay(s, *m)
	case *protocol.SetBossBlind:
		d.handleSetBossBlind(s, m)

	case *protocol.Unknown:
		s.Logger().WithField("action", m.Name).Debug("Ignoring unknown action")
	default:
		s.Logger().Warnf("No handler for action %q", msg.Action())
	}
}

// lobbyOf resolves the session's lobby.
func (d *Dispatcher) lobbyOf(s *session.Session) (*lobby.Lobby, bool) {
	if s.LobbyCode() == "" {
		return nil, false
	}
	return d.registry.Get(s.LobbyCode())
}

// publish sends a match event for l. winners may be nil.
func (d *Dispatcher) publish(eventType string, l *lobby.Lobby, winners []*session.Session) {
	if d.feed == nil {
		return
	}
	ev := cache.MatchEvent{
		Type:       eventType,
		LobbyCode:  l.Code(),
		Mode:       string(l.Mode()),
		SessionIDs: sessionIDs(l.Members()),
		Winners:    sessionIDs(winners),
	}
	d.feed.PublishAsync(ev)
}

func sessionIDs(sessions []*session.Session) []string {
	if len(sessions) == 0 {
		return nil
	}
	ids := make([]string, len(sessions))
	for i, s := range sessions {
		ids[i] = s.ID
	}
	return ids
}
