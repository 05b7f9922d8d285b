// internal/lobby/lobby_store.go
package lobby

import (
	"math/rand"
	"sort"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/lobbyd/internal/game"
	"github.com/jason-s-yu/lobbyd/internal/protocol"
	"github.com/jason-s-yu/lobbyd/internal/session"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	codeLength   = 5
)

// Registry maps lobby codes to live lobbies. Entries are only added by Create
// and only removed when a lobby reports itself empty, so every registered
// code names a lobby with at least one member.
type Registry struct {
	mu      sync.Mutex
	lobbies map[string]*Lobby
	logger  *logrus.Logger

	// OnClose is called after an empty lobby has been removed.
	OnClose func(l *Lobby)

	intN func(n int) int
}

// NewRegistry initializes an empty Registry.
func NewRegistry(logger *logrus.Logger) *Registry {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Registry{
		lobbies: make(map[string]*Lobby),
		logger:  logger,
		intN:    rand.Intn,
	}
}

// Create registers a new lobby with creator as its only member and host.
// maxPlayers overrides the mode's capacity when non-nil. The creator is sent
// joinedLobby followed by the lobby options.
func (r *Registry) Create(creator *session.Session, ruleset string, mode game.Mode, maxPlayers *int) *Lobby {
	opts := game.DefaultOptions(mode)
	opts[game.OptRuleset] = ruleset
	opts[game.OptMultiplayerJokers] = game.MultiplayerJokersFor(ruleset)

	capacity := game.DefaultMaxPlayers(mode)
	if maxPlayers != nil {
		capacity = *maxPlayers
	}

	r.mu.Lock()
	code := r.generateCodeUnsafe()
	l := newLobby(code, mode, opts, capacity, r.logger)
	l.members = []*session.Session{creator}
	l.hostIndex = 0
	l.OnEmpty = r.remove
	r.lobbies[code] = l
	r.mu.Unlock()

	l.log.WithFields(logrus.Fields{"mode": mode, "ruleset": ruleset, "host": creator.ID}).Info("Lobby created")

	creator.SetLobbyCode(code)
	creator.Send(protocol.JoinedLobby{Code: code})
	creator.Send(protocol.LobbyOptions{Options: l.Options()})
	return l
}

// generateCodeUnsafe draws codes until one is free. Assumes mu is held.
func (r *Registry) generateCodeUnsafe() string {
	var b strings.Builder
	for {
		b.Reset()
		for i := 0; i < codeLength; i++ {
			b.WriteByte(codeAlphabet[r.intN(len(codeAlphabet))])
		}
		if _, taken := r.lobbies[b.String()]; !taken {
			return b.String()
		}
	}
}

func (r *Registry) remove(code string) {
	r.mu.Lock()
	l, ok := r.lobbies[code]
	if ok {
		delete(r.lobbies, code)
	}
	r.mu.Unlock()

	if !ok {
		r.logger.WithField("lobby", code).Warn("Attempted to delete non-existent lobby")
		return
	}
	l.log.Info("Lobby empty, removed")
	if r.OnClose != nil {
		r.OnClose(l)
	}
}

// Get returns the lobby registered under code.
func (r *Registry) Get(code string) (*Lobby, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.lobbies[code]
	return l, ok
}

// Find is Get for callers that report a missing lobby as ErrLobbyNotFound.
func (r *Registry) Find(code string) (*Lobby, error) {
	l, ok := r.Get(code)
	if !ok {
		return nil, eris.Wrapf(ErrLobbyNotFound, "lobby %q", code)
	}
	return l, nil
}

// Lookup implements session.Directory.
func (r *Registry) Lookup(code string) (session.Lobby, bool) {
	l, ok := r.Get(code)
	if !ok {
		return nil, false
	}
	return l, true
}

// Len is the number of live lobbies.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.lobbies)
}

// Summary is the admin view of one lobby.
type Summary struct {
	Code       string    `json:"code"`
	Mode       game.Mode `json:"mode"`
	Players    int       `json:"players"`
	MaxPlayers int       `json:"maxPlayers"`
	Host       string    `json:"host"`
}

// Snapshot lists every live lobby ordered by code.
func (r *Registry) Snapshot() []Summary {
	r.mu.Lock()
	lobbies := make([]*Lobby, 0, len(r.lobbies))
	for _, l := range r.lobbies {
		lobbies = append(lobbies, l)
	}
	r.mu.Unlock()

	out := make([]Summary, 0, len(lobbies))
	for _, l := range lobbies {
		out = append(out, l.Summary())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
