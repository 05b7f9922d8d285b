package session

import (
	"github.com/jason-s-yu/lobbyd/internal/protocol"
	"github.com/jason-s-yu/lobbyd/internal/score"
)

// Plain mutators. Peers are not told about these changes.

func (s *Session) SetReady(v bool)            { s.profile.IsReady = v }
func (s *Session) SetFirstReady(v bool)       { s.profile.FirstReady = v }
func (s *Session) SetCached(v bool)           { s.profile.IsCached = v }
func (s *Session) SetLives(n int)             { s.state.Lives = n }
func (s *Session) SetScore(v score.InsaneInt) { s.state.Score = v }
func (s *Session) SetHandsLeft(n int)         { s.state.HandsLeft = n }
func (s *Session) SetAnte(n int)              { s.state.Ante = n }
func (s *Session) SetSkips(n int)             { s.state.Skips = n }
func (s *Session) SetFurthestBlind(n int)     { s.state.FurthestBlind = n }
func (s *Session) ResetBlocker()              { s.state.LivesBlocker = false }

// SetLocationQuiet changes the location without broadcasting it.
func (s *Session) SetLocationQuiet(location string) { s.state.Location = location }

// Notifying mutators. Profile fields refresh the lobby roster, round fields
// broadcast a state delta.

func (s *Session) SetUsername(username string) {
	s.profile.Username = username
	s.refreshLobbyInfo()
}

func (s *Session) SetColour(colour string) {
	s.profile.Colour = colour
	s.refreshLobbyInfo()
}

func (s *Session) SetModHash(modHash string) {
	s.profile.ModHash = modHash
	s.refreshLobbyInfo()
}

func (s *Session) SetLocation(location string) {
	s.state.Location = location
	s.BroadcastStateUpdate(protocol.StateUpdates{Location: protocol.Ptr(location)})
}

// LoseLife takes one life and raises the blocker. With the blocker already up
// it does nothing unless force is set.
func (s *Session) LoseLife(force bool) {
	if s.state.LivesBlocker && !force {
		return
	}
	s.state.Lives--
	s.state.LivesBlocker = true
	s.BroadcastStateUpdate(protocol.StateUpdates{
		Lives:        protocol.Ptr(s.state.Lives),
		LivesBlocker: protocol.Ptr(true),
	})
}

// BroadcastStateUpdate sends a gameStateUpdate about this session to every
// member of its lobby, itself included.
func (s *Session) BroadcastStateUpdate(updates protocol.StateUpdates) {
	l, ok := s.Lobby()
	if !ok {
		return
	}
	msg := protocol.GameStateUpdate{ID: s.ID, Updates: updates}
	for _, m := range l.Members() {
		m.Send(msg)
	}
}

// Snapshot is the full round state as sent in startGame.
func (s *Session) Snapshot() protocol.PlayerState {
	return protocol.PlayerState{
		ID:            s.ID,
		Score:         s.state.Score.String(),
		HighestScore:  s.state.HighestScore.String(),
		Lives:         s.state.Lives,
		HandsLeft:     s.state.HandsLeft,
		Ante:          s.state.Ante,
		Skips:         s.state.Skips,
		FurthestBlind: s.state.FurthestBlind,
		LivesBlocker:  s.state.LivesBlocker,
		Location:      s.state.Location,
	}
}

// RosterEntry is this session as listed in lobbyInfo.
func (s *Session) RosterEntry() protocol.LobbyPlayer {
	return protocol.LobbyPlayer{
		ID:         s.ID,
		Username:   s.profile.Username,
		Colour:     s.profile.Colour,
		ModHash:    s.profile.ModHash,
		IsCached:   s.profile.IsCached,
		IsReady:    s.profile.IsReady,
		FirstReady: s.profile.FirstReady,
	}
}

func (s *Session) refreshLobbyInfo() {
	if l, ok := s.Lobby(); ok {
		l.BroadcastLobbyInfo()
	}
}
