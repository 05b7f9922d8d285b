// internal/handlers/lobby.go
package handlers

import (
	"errors"
	"regexp"
	"strings"

	"github.com/Masterminds/semver"

	"github.com/jason-s-yu/lobbyd/internal/cache"
	"github.com/jason-s-yu/lobbyd/internal/game"
	"github.com/jason-s-yu/lobbyd/internal/lobby"
	"github.com/jason-s-yu/lobbyd/internal/protocol"
	"github.com/jason-s-yu/lobbyd/internal/session"
)

// ServerVersion is the client version this server is built for.
const ServerVersion = "0.2.7-MULTIPLAYER"

var (
	leadingVersion = regexp.MustCompile(`^(\d+\.\d+\.\d+)`)
	serverCore     = semver.MustParse(strings.SplitN(ServerVersion, "-", 2)[0])
)

func (d *Dispatcher) handleUsername(s *session.Session, m *protocol.Username) {
	s.SetUsername(m.Username)
	s.SetColour(m.Colour)
	s.SetModHash(m.ModHash)
}

// handleCreateLobby moves the sender into a fresh lobby, leaving any lobby it
// was already in.
func (d *Dispatcher) handleCreateLobby(s *session.Session, m *protocol.CreateLobby) {
	if old, ok := d.lobbyOf(s); ok {
		old.Leave(s)
	}
	l := d.registry.Create(s, m.Ruleset, game.ParseMode(m.GameMode), nil)
	d.publish(cache.EventLobbyCreated, l, nil)
}

func (d *Dispatcher) handleJoinLobby(s *session.Session, m *protocol.JoinLobby) {
	code := strings.ToUpper(strings.TrimSpace(m.Code))
	if code != "" && code == s.LobbyCode() {
		return
	}

	target, err := d.registry.Find(code)
	if errors.Is(err, lobby.ErrLobbyNotFound) {
		s.SendError(lobby.MsgLobbyNotFound)
		return
	}
	if target.Len() >= target.MaxPlayers() {
		// checked before leaving so a failed join keeps the current lobby
		s.SendError(lobby.MsgLobbyFull)
		return
	}
	if old, ok := d.lobbyOf(s); ok {
		old.Leave(s)
	}
	if err := target.Join(s); err != nil && !errors.Is(err, lobby.ErrLobbyFull) {
		s.Logger().WithError(err).Error("Failed to join lobby")
	}
}

func (d *Dispatcher) handleLeaveLobby(s *session.Session) {
	if l, ok := d.lobbyOf(s); ok {
		l.Leave(s)
	}
}

func (d *Dispatcher) handleLobbyInfo(s *session.Session) {
	if l, ok := d.lobbyOf(s); ok {
		l.BroadcastLobbyInfo()
	}
}

// handleLobbyOptions replaces the lobby options wholesale and rebroadcasts
// them. Unlike startGame and setBossBlind this is not host-only: clients push
// the options from whichever member edited them, so a guest's update is
// accepted the same as the host's.
func (d *Dispatcher) handleLobbyOptions(s *session.Session, m *protocol.LobbyOptions) {
	if l, ok := d.lobbyOf(s); ok {
		l.SetOptions(m.Options)
	}
}

// handleVersion warns clients older than ServerVersion. Nothing is blocked.
func (d *Dispatcher) handleVersion(s *session.Session, m *protocol.Version) {
	if ClientIsOutdated(m.Version) {
		s.SendError("[WARN] Server expecting version " + ServerVersion)
	}
}

// ClientIsOutdated compares the leading major.minor.patch of a client version
// string with the server's. Unparseable versions are never outdated.
func ClientIsOutdated(version string) bool {
	match := leadingVersion.FindStringSubmatch(version)
	if match == nil {
		return false
	}
	client, err := semver.NewVersion(match[1])
	if err != nil {
		return false
	}
	return client.LessThan(serverCore)
}
