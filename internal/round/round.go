// Package round decides round and game outcomes from the scores, lives and
// blind progress players report. Every function runs inside one dispatched
// action and only mutates sessions of the lobby it is given.
package round

import (
	"math/rand"

	"github.com/jason-s-yu/lobbyd/internal/game"
	"github.com/jason-s-yu/lobbyd/internal/lobby"
	"github.com/jason-s-yu/lobbyd/internal/protocol"
	"github.com/jason-s-yu/lobbyd/internal/score"
	"github.com/jason-s-yu/lobbyd/internal/session"
)

const (
	// StartingDeck is the deck every multiplayer game starts with.
	StartingDeck = "c_multiplayer_1"
	// HandsPerBlind is the hand allowance restored when a blind starts.
	HandsPerBlind = 4

	seedAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ123456789"
	seedLength   = 8
)

// Outcome reports who won and lost a resolved round. GameOver is set when
// winGame/loseGame was sent.
type Outcome struct {
	Winners  []*session.Session
	Losers   []*session.Session
	GameOver bool
}

// NewSeed returns a random shared run seed.
func NewSeed() string {
	b := make([]byte, seedLength)
	for i := range b {
		b[i] = seedAlphabet[rand.Intn(len(seedAlphabet))]
	}
	return string(b)
}

// StartGame resets every member to a fresh run with the lobby's starting
// lives and broadcasts startGame. The seed is left out when players run
// their own seeds.
func StartGame(l *lobby.Lobby, seed string) {
	opts := l.Options()
	lives := opts.StartingLives()
	members := l.Members()

	players := make([]protocol.PlayerState, 0, len(members))
	for _, m := range members {
		m.ResetState()
		m.SetLives(lives)
		players = append(players, m.Snapshot())
	}

	msg := protocol.StartGame{Deck: StartingDeck, Players: players}
	if !opts.DifferentSeeds() {
		msg.Seed = seed
	}
	l.Broadcast(msg)
}

// StopGame ends the round for the whole lobby.
func StopGame(l *lobby.Lobby) {
	l.Broadcast(protocol.StopGame{})
	l.ResetPlayers()
}

// NewRound clears the life-loss blocker and score for the next round.
func NewRound(s *session.Session) {
	s.ResetBlocker()
	s.SetScore(score.Zero)
}

// ReadyBlind marks s ready. The first player to ready in a lobby where nobody
// has readied yet is told speedrun. Once every member is ready, ready flags,
// scores and hands are reset and startBlind is broadcast. l may be nil.
func ReadyBlind(l *lobby.Lobby, s *session.Session) bool {
	s.SetReady(true)

	var others []*session.Session
	if l != nil {
		others = l.Others(s)
	}
	if !s.Profile().FirstReady && noneReady(others) {
		s.SetFirstReady(true)
		s.Send(protocol.Speedrun{})
	}

	if l == nil {
		return false
	}
	members := l.Members()
	for _, m := range members {
		if !m.Profile().IsReady {
			return false
		}
	}

	for _, m := range members {
		m.SetReady(false)
		m.SetHandsLeft(HandsPerBlind)
	}
	zero := score.Zero.String()
	for _, m := range members {
		m.SetScore(score.Zero)
		m.BroadcastStateUpdate(protocol.StateUpdates{Score: protocol.Ptr(zero)})
	}
	l.Broadcast(protocol.StartBlind{})
	return true
}

func noneReady(players []*session.Session) bool {
	for _, p := range players {
		if p.Profile().IsReady || p.Profile().FirstReady {
			return false
		}
	}
	return true
}

// RecordScore stores and shares a score from a hand that did not report its
// remaining hands. The round is never resolved from it.
func RecordScore(s *session.Session, sc score.InsaneInt) {
	s.SetScore(sc)
	s.BroadcastStateUpdate(protocol.StateUpdates{Score: protocol.Ptr(sc.String())})
}

// PlayHand records s's score and remaining hands and shares them. When every
// member is out of hands the round is resolved: coop modes compare the summed
// score with target, the others run a PvP comparison. It returns nil while
// the round is still in progress.
func PlayHand(l *lobby.Lobby, s *session.Session, sc score.InsaneInt, handsLeft int, target score.InsaneInt) *Outcome {
	s.SetScore(sc)
	s.SetHandsLeft(handsLeft)
	s.BroadcastStateUpdate(protocol.StateUpdates{
		Score:     protocol.Ptr(sc.String()),
		HandsLeft: protocol.Ptr(handsLeft),
	})

	for _, m := range l.Members() {
		if m.State().HandsLeft != 0 {
			return nil
		}
	}

	if l.Mode().IsCoop() {
		return resolveCoop(l, target)
	}
	out := ResolvePvP(l)
	return &out
}

// ResolvePvP compares scores. Everyone on the top score wins; unless all are
// tied, the rest lose a life. If only one player is left alive the game ends.
func ResolvePvP(l *lobby.Lobby) Outcome {
	members := l.Members()
	if len(members) == 0 {
		return Outcome{}
	}

	best := members[0].State().Score
	for _, m := range members[1:] {
		if m.State().Score.GreaterThan(best) {
			best = m.State().Score
		}
	}

	var winners, losers []*session.Session
	for _, m := range members {
		if m.State().Score.EqualTo(best) {
			winners = append(winners, m)
		} else {
			losers = append(losers, m)
		}
	}

	if len(winners) < len(members) {
		for _, p := range losers {
			p.LoseLife(false)
		}
		if alive := alivePlayers(members); len(alive) == 1 {
			return endGame(members, alive)
		}
	}

	for _, m := range members {
		m.SetFirstReady(false)
	}
	for _, p := range winners {
		p.Send(protocol.EndPvP{Lost: false})
	}
	for _, p := range losers {
		p.Send(protocol.EndPvP{Lost: true})
	}
	return Outcome{Winners: winners, Losers: losers}
}

// resolveCoop handles a finished coop round. A team that falls short of the
// boss target loses together: players on their last life are out of the
// game, the rest drop a life with their score reset. Beating the target needs
// no server action.
func resolveCoop(l *lobby.Lobby, target score.InsaneInt) *Outcome {
	members := l.Members()
	total := score.Zero
	for _, m := range members {
		total = total.Add(m.State().Score)
	}
	l.Log().WithField("target", target.String()).WithField("total", total.String()).Info("Ending coop round")

	if !target.GreaterThan(total) {
		return &Outcome{Winners: members}
	}

	out := &Outcome{Losers: members}
	zero := score.Zero.String()
	for _, m := range members {
		if m.State().Lives <= 1 {
			m.Send(protocol.LoseGame{})
			out.GameOver = true
			continue
		}
		m.SetScore(score.Zero)
		m.BroadcastStateUpdate(protocol.StateUpdates{Score: protocol.Ptr(zero)})
		m.LoseLife(true)
		m.Send(protocol.EndPvP{Lost: true})
	}
	return out
}

// FailRound handles a player failing their blind. Depending on the ruleset it
// costs a life; a player who is then out may end the game.
func FailRound(l *lobby.Lobby, s *session.Session) *Outcome {
	if l.Options().DeathOnRoundLoss() {
		s.LoseLife(false)
	}
	if s.State().Lives > 0 {
		return nil
	}

	members := l.Members()
	alive := alivePlayers(members)
	if l.Mode() == game.ModeSurvival {
		if len(alive) == 0 {
			out := furthestBlindTieBreak(members)
			return &out
		}
		// the best of the living wins outright
		best := maxFurthestBlind(alive)
		out := &Outcome{GameOver: true}
		for _, p := range alive {
			if p.State().FurthestBlind == best {
				p.Send(protocol.WinGame{})
				out.Winners = append(out.Winners, p)
			} else {
				p.Send(protocol.LoseGame{})
				out.Losers = append(out.Losers, p)
			}
		}
		return out
	}

	if len(alive) == 1 {
		out := endGame(members, alive)
		return &out
	}
	return nil
}

// SetFurthestBlind records progress. In survival, once everyone is dead the
// furthest blind decides the game. l may be nil.
func SetFurthestBlind(l *lobby.Lobby, s *session.Session, blind int) *Outcome {
	s.SetFurthestBlind(blind)
	if l == nil || l.Mode() != game.ModeSurvival {
		return nil
	}
	members := l.Members()
	if len(alivePlayers(members)) > 0 {
		return nil
	}
	out := furthestBlindTieBreak(members)
	return &out
}

// FailTimer costs s a life for running out the ante timer. l may be nil.
func FailTimer(l *lobby.Lobby, s *session.Session) *Outcome {
	s.LoseLife(false)
	if l == nil || s.State().Lives > 0 {
		return nil
	}
	members := l.Members()
	if alive := alivePlayers(members); len(alive) == 1 {
		out := endGame(members, alive)
		return &out
	}
	return nil
}

// furthestBlindTieBreak ends a game where everyone is dead: all players on
// the furthest blind win.
func furthestBlindTieBreak(members []*session.Session) Outcome {
	best := maxFurthestBlind(members)
	out := Outcome{GameOver: true}
	for _, m := range members {
		if m.State().FurthestBlind == best {
			out.Winners = append(out.Winners, m)
		} else {
			out.Losers = append(out.Losers, m)
		}
	}
	for _, w := range out.Winners {
		w.Send(protocol.WinGame{})
	}
	for _, p := range out.Losers {
		p.Send(protocol.LoseGame{})
	}
	return out
}

// endGame declares the single survivor the winner.
func endGame(members, alive []*session.Session) Outcome {
	winner := alive[0]
	out := Outcome{Winners: alive, GameOver: true}
	winner.Send(protocol.WinGame{})
	for _, m := range members {
		if m.ID != winner.ID {
			m.Send(protocol.LoseGame{})
			out.Losers = append(out.Losers, m)
		}
	}
	return out
}

func alivePlayers(members []*session.Session) []*session.Session {
	var alive []*session.Session
	for _, m := range members {
		if m.State().Lives > 0 {
			alive = append(alive, m)
		}
	}
	return alive
}

func maxFurthestBlind(players []*session.Session) int {
	best := 0
	for i, p := range players {
		if b := p.State().FurthestBlind; i == 0 || b > best {
			best = b
		}
	}
	return best
}
