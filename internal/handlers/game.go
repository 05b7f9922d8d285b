// internal/handlers/game.go
package handlers

import (
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/lobbyd/internal/cache"
	"github.com/jason-s-yu/lobbyd/internal/lobby"
	"github.com/jason-s-yu/lobbyd/internal/protocol"
	"github.com/jason-s-yu/lobbyd/internal/round"
	"github.com/jason-s-yu/lobbyd/internal/score"
	"github.com/jason-s-yu/lobbyd/internal/session"
)

// handleStartGame is host-only.
func (d *Dispatcher) handleStartGame(s *session.Session) {
	l, ok := d.lobbyOf(s)
	if !ok || !l.IsHost(s) {
		s.Logger().Warn("Attempted to start game without being host")
		return
	}
	round.StartGame(l, round.NewSeed())
	d.publish(cache.EventGameStarted, l, nil)
}

func (d *Dispatcher) handleStopGame(s *session.Session) {
	if l, ok := d.lobbyOf(s); ok {
		round.StopGame(l)
	}
}

func (d *Dispatcher) handleReadyBlind(s *session.Session) {
	l, ok := d.lobbyOf(s)
	if !ok {
		round.ReadyBlind(nil, s)
		return
	}
	if round.ReadyBlind(l, s) {
		l.Log().Debug("All players ready, blind started")
	}
}

// handlePlayHand records a hand. Scores that do not parse count as zero. A
// hand without hands_left only updates the score.
func (d *Dispatcher) handlePlayHand(s *session.Session, m *protocol.PlayHand) {
	l, ok := d.lobbyOf(s)
	if !ok {
		return
	}
	sc := parseScore(s, "score", m.Score.String())
	var target score.InsaneInt
	if m.TargetScore != "" {
		target = parseScore(s, "target_score", m.TargetScore.String())
	}
	if m.HandsLeft == nil {
		s.Logger().Warn("playHand without hands_left, round left open")
		round.RecordScore(s, sc)
		return
	}
	d.finish(l, round.PlayHand(l, s, sc, m.HandsLeft.Int(), target))
}

func (d *Dispatcher) handleGameInfo(s *session.Session) {
	if l, ok := d.lobbyOf(s); ok {
		l.SendGameInfo(s)
	}
}

func (d *Dispatcher) handleFailRound(s *session.Session) {
	l, ok := d.lobbyOf(s)
	if !ok {
		return
	}
	d.finish(l, round.FailRound(l, s))
}

func (d *Dispatcher) handleSetFurthestBlind(s *session.Session, m *protocol.SetFurthestBlind) {
	l, _ := d.lobbyOf(s)
	d.finish(l, round.SetFurthestBlind(l, s, m.FurthestBlind.Int()))
}

func (d *Dispatcher) handleSkip(s *session.Session, m *protocol.Skip) {
	skips := m.Skips.Int()
	s.SetSkips(skips)
	s.BroadcastStateUpdate(protocol.StateUpdates{Skips: protocol.Ptr(skips)})
}

func (d *Dispatcher) handleFailTimer(s *session.Session) {
	l, _ := d.lobbyOf(s)
	d.finish(l, round.FailTimer(l, s))
}

// finish logs a resolved round and publishes finished games.
func (d *Dispatcher) finish(l *lobby.Lobby, out *round.Outcome) {
	if l == nil || out == nil {
		return
	}
	entry := l.Log().WithFields(logrus.Fields{
		"winners": sessionIDs(out.Winners),
		"losers":  sessionIDs(out.Losers),
	})
	if !out.GameOver {
		entry.Info("Round resolved")
		return
	}
	entry.Info("Game over")
	d.publish(cache.EventGameEnded, l, out.Winners)
}

func parseScore(s *session.Session, field, raw string) score.InsaneInt {
	v, err := score.Parse(raw)
	if err != nil {
		s.Logger().WithError(err).WithField(field, raw).Warn("Unparseable score, using zero")
		return score.Zero
	}
	return v
}
