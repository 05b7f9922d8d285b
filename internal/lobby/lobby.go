// internal/lobby/lobby.go
package lobby

import (
	"sync"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/lobbyd/internal/game"
	"github.com/jason-s-yu/lobbyd/internal/protocol"
	"github.com/jason-s-yu/lobbyd/internal/session"
)

var (
	ErrLobbyFull     = eris.New("lobby is full")
	ErrLobbyNotFound = eris.New("lobby does not exist")
)

// Client facing error messages.
const (
	MsgLobbyFull     = "Lobby is full or does not exist."
	MsgLobbyNotFound = "Lobby does not exist."
	MsgNotInLobby    = "Client not in Lobby"
)

// LocationBlindSelect is where players are put back when a round is stopped.
const LocationBlindSelect = "Blind Select"

// Lobby is one room of players sharing a match.
//
// Member order matters: the host is always the member at hostIndex, and a
// departing host is replaced by whoever is first in the list. mu guards the
// member list, host index and options so the admin listing can read them;
// everything else relies on the dispatcher running one handler at a time.
type Lobby struct {
	code       string
	mode       game.Mode
	maxPlayers int
	log        *logrus.Entry

	mu        sync.RWMutex
	members   []*session.Session
	hostIndex int
	options   game.Options

	// OnEmpty is called with the lobby code once the last member has left.
	// The registry uses it to drop the lobby.
	OnEmpty func(code string)
}

func newLobby(code string, mode game.Mode, opts game.Options, maxPlayers int, logger *logrus.Logger) *Lobby {
	return &Lobby{
		code:       code,
		mode:       mode,
		maxPlayers: maxPlayers,
		options:    opts,
		hostIndex:  -1,
		log:        logger.WithField("lobby", code),
	}
}

func (l *Lobby) Code() string       { return l.code }
func (l *Lobby) Mode() game.Mode    { return l.mode }
func (l *Lobby) MaxPlayers() int    { return l.maxPlayers }
func (l *Lobby) Log() *logrus.Entry { return l.log }

// Members returns a copy of the member list in join order.
func (l *Lobby) Members() []*session.Session {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]*session.Session(nil), l.members...)
}

// Len is the member count.
func (l *Lobby) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.members)
}

// Options returns the current ruleset.
func (l *Lobby) Options() game.Options {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.options
}

// HostIndex returns the host's position, -1 when empty.
func (l *Lobby) HostIndex() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.hostIndex
}

// Has reports whether s is a member.
func (l *Lobby) Has(s *session.Session) bool {
	return l.indexOf(s) >= 0
}

func (l *Lobby) indexOf(s *session.Session) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for i, m := range l.members {
		if m.ID == s.ID {
			return i
		}
	}
	return -1
}

// Join adds s unless the lobby is at capacity. On success s is sent
// joinedLobby, everyone gets a fresh roster and s then gets the options.
func (l *Lobby) Join(s *session.Session) error {
	l.mu.Lock()
	if len(l.members) >= l.maxPlayers {
		l.mu.Unlock()
		l.log.WithField("session", s.ID).Info("Join rejected, lobby full")
		s.SendError(MsgLobbyFull)
		return ErrLobbyFull
	}
	l.members = append(l.members, s)
	if l.hostIndex < 0 {
		l.hostIndex = 0
	}
	l.mu.Unlock()

	s.SetLobbyCode(l.code)
	l.log.WithField("session", s.ID).Info("Player joined")

	s.Send(protocol.JoinedLobby{Code: l.code})
	l.BroadcastLobbyInfo()
	s.Send(protocol.LobbyOptions{Options: l.Options()})
	return nil
}

// Leave removes s. A departing host is replaced by the first remaining
// member. An emptied lobby reports itself through OnEmpty; otherwise the
// round is stopped for everyone left and the roster rebroadcast.
func (l *Lobby) Leave(s *session.Session) {
	l.mu.Lock()
	idx := -1
	for i, m := range l.members {
		if m.ID == s.ID {
			idx = i
			break
		}
	}
	if idx >= 0 {
		l.members = append(l.members[:idx], l.members[idx+1:]...)
		switch {
		case len(l.members) == 0:
			l.hostIndex = -1
		case l.hostIndex == idx:
			l.hostIndex = 0
		case idx < l.hostIndex:
			l.hostIndex--
		}
	}
	empty := len(l.members) == 0
	l.mu.Unlock()

	if s.LobbyCode() == l.code {
		s.SetLobbyCode("")
	}
	if idx >= 0 {
		l.log.WithField("session", s.ID).Info("Player left")
	}

	if empty {
		if l.OnEmpty != nil {
			l.OnEmpty(l.code)
		}
		return
	}
	l.Broadcast(protocol.StopGame{})
	l.ResetPlayers()
	l.BroadcastLobbyInfo()
}

// Broadcast sends msg to every member.
func (l *Lobby) Broadcast(msg protocol.Outbound) {
	for _, m := range l.Members() {
		m.Send(msg)
	}
}

// Others returns every member except s.
func (l *Lobby) Others(s *session.Session) []*session.Session {
	members := l.Members()
	out := make([]*session.Session, 0, len(members))
	for _, m := range members {
		if m.ID != s.ID {
			out = append(out, m)
		}
	}
	return out
}

// BroadcastOthers sends msg to every member except sender.
func (l *Lobby) BroadcastOthers(sender *session.Session, msg protocol.Outbound) {
	for _, m := range l.Others(sender) {
		m.Send(msg)
	}
}

// BroadcastLobbyInfo sends each member the roster, personalised with whether
// they are host and their own id.
func (l *Lobby) BroadcastLobbyInfo() {
	l.mu.RLock()
	members := append([]*session.Session(nil), l.members...)
	hostIndex := l.hostIndex
	l.mu.RUnlock()
	if len(members) == 0 {
		return
	}

	host := ""
	if hostIndex >= 0 && hostIndex < len(members) {
		host = members[hostIndex].Profile().Username
	}
	players := make([]protocol.LobbyPlayer, 0, len(members))
	for _, m := range members {
		players = append(players, m.RosterEntry())
	}

	for i, m := range members {
		m.Send(protocol.LobbyInfo{
			Host:    host,
			IsHost:  i == hostIndex,
			LocalID: m.ID,
			Players: players,
		})
	}
}

// HostID returns the host's session id. A stale host index is logged and
// yields an empty id.
func (l *Lobby) HostID() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.hostIndex < 0 || l.hostIndex >= len(l.members) {
		l.log.WithField("hostIndex", l.hostIndex).Error("Host not found in lobby")
		return ""
	}
	return l.members[l.hostIndex].ID
}

// IsHost reports whether s is the lobby host.
func (l *Lobby) IsHost(s *session.Session) bool {
	id := l.HostID()
	return id != "" && id == s.ID
}

// SetOptions replaces the ruleset wholesale and rebroadcasts it. The shape
// of the options is not validated here.
func (l *Lobby) SetOptions(opts game.Options) {
	if opts == nil {
		opts = game.Options{}
	}
	l.mu.Lock()
	l.options = opts
	l.mu.Unlock()
	l.Broadcast(protocol.LobbyOptions{Options: opts})
}

// SendGameInfo answers the deprecated gameInfo request with the blinds forced
// for s's current ante.
func (l *Lobby) SendGameInfo(s *session.Session) {
	if !l.Has(s) {
		s.SendError(MsgNotInLobby)
		return
	}
	s.Send(protocol.GameInfo{Blinds: game.BlindsForAnte(l.mode, s.State().Ante, l.Options())})
}

// ResetPlayers puts every member back at blind select after a stopped round.
func (l *Lobby) ResetPlayers() {
	for _, m := range l.Members() {
		m.SetReady(false)
		m.ResetBlocker()
		m.SetLocationQuiet(LocationBlindSelect)
		m.SetFurthestBlind(0)
		m.SetSkips(0)
	}
}

// SetPlayersLives sets every member's lives to n.
func (l *Lobby) SetPlayersLives(n int) {
	for _, m := range l.Members() {
		m.SetLives(n)
	}
}

// Summary is the admin listing entry for this lobby.
func (l *Lobby) Summary() Summary {
	l.mu.RLock()
	defer l.mu.RUnlock()
	sum := Summary{
		Code:       l.code,
		Mode:       l.mode,
		Players:    len(l.members),
		MaxPlayers: l.maxPlayers,
	}
	if l.hostIndex >= 0 && l.hostIndex < len(l.members) {
		sum.Host = l.members[l.hostIndex].ID
	}
	return sum
}
