package round

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/lobbyd/internal/game"
	"github.com/jason-s-yu/lobbyd/internal/lobby"
	"github.com/jason-s-yu/lobbyd/internal/score"
	"github.com/jason-s-yu/lobbyd/internal/session"
	"github.com/jason-s-yu/lobbyd/internal/session/sessiontest"
)

// setupLobby creates a lobby of n players in the given mode and clears the
// join traffic from every outbox.
func setupLobby(t *testing.T, mode game.Mode, n int) (*lobby.Lobby, []*session.Session) {
	t.Helper()
	reg := lobby.NewRegistry(sessiontest.Logger())
	players := make([]*session.Session, n)
	for i := range players {
		players[i] = sessiontest.New(reg)
	}
	l := reg.Create(players[0], "standard", mode, &n)
	for _, p := range players[1:] {
		require.NoError(t, l.Join(p))
	}
	for _, p := range players {
		sessiontest.Drain(t, p)
	}
	return l, players
}

func lastActions(t *testing.T, players []*session.Session) [][]string {
	out := make([][]string, len(players))
	for i, p := range players {
		out[i] = sessiontest.Actions(sessiontest.Drain(t, p))
	}
	return out
}

func TestReadyBlindScenario(t *testing.T) {
	l, ps := setupLobby(t, game.ModeAttrition, 2)
	a, b := ps[0], ps[1]
	a.SetScore(score.FromInt(120))
	b.SetHandsLeft(1)

	assert.False(t, ReadyBlind(l, a))
	assert.Equal(t, []string{"speedrun"}, sessiontest.Actions(sessiontest.Drain(t, a)))
	assert.True(t, a.Profile().FirstReady)

	// b is not first, a already readied
	assert.True(t, ReadyBlind(l, b))
	assert.False(t, b.Profile().FirstReady)

	for _, p := range ps {
		frames := sessiontest.Drain(t, p)
		assert.Equal(t, []string{"gameStateUpdate", "gameStateUpdate", "startBlind"}, sessiontest.Actions(frames))
		for _, f := range frames[:2] {
			assert.Equal(t, map[string]any{"score": "0"}, f["updates"])
		}
		assert.False(t, p.Profile().IsReady)
		assert.Equal(t, HandsPerBlind, p.State().HandsLeft)
		assert.True(t, p.State().Score.IsZero())
	}
}

func TestReadyBlindWithoutLobby(t *testing.T) {
	s := sessiontest.New(nil)
	assert.False(t, ReadyBlind(nil, s))
	assert.True(t, s.Profile().IsReady)
	assert.Equal(t, []string{"speedrun"}, sessiontest.Actions(sessiontest.Drain(t, s)))
}

func TestPlayHandPvPScenario(t *testing.T) {
	l, ps := setupLobby(t, game.ModeAttrition, 2)
	a, b := ps[0], ps[1]

	assert.Nil(t, PlayHand(l, a, score.MustParse("10"), 0, score.Zero))
	out := PlayHand(l, b, score.MustParse("5"), 0, score.Zero)
	require.NotNil(t, out)
	assert.False(t, out.GameOver)
	assert.Equal(t, []*session.Session{a}, out.Winners)
	assert.Equal(t, []*session.Session{b}, out.Losers)

	assert.Equal(t, 4, a.State().Lives)
	assert.Equal(t, 3, b.State().Lives)
	assert.Equal(t, "10", a.State().Score.String())
	assert.Equal(t, "5", b.State().Score.String())

	aFrames := sessiontest.Find(sessiontest.Drain(t, a), "endPvP")
	bFrames := sessiontest.Find(sessiontest.Drain(t, b), "endPvP")
	require.Len(t, aFrames, 1)
	require.Len(t, bFrames, 1)
	assert.Equal(t, false, aFrames[0]["lost"])
	assert.Equal(t, true, bFrames[0]["lost"])
}

func TestResolvePvPWinnerSetIsMaxScore(t *testing.T) {
	l, ps := setupLobby(t, game.ModeAttrition, 4)
	scores := []string{"300", "1e20", "1e20", "299"}
	for i, p := range ps {
		p.SetScore(score.MustParse(scores[i]))
	}

	out := ResolvePvP(l)
	assert.ElementsMatch(t, []*session.Session{ps[1], ps[2]}, out.Winners)
	assert.ElementsMatch(t, []*session.Session{ps[0], ps[3]}, out.Losers)
	assert.Equal(t, 3, ps[0].State().Lives)
	assert.Equal(t, 4, ps[1].State().Lives)
}

func TestResolvePvPAllTiedCostsNoLives(t *testing.T) {
	l, ps := setupLobby(t, game.ModeAttrition, 3)
	for _, p := range ps {
		p.SetScore(score.FromInt(42))
		p.SetFirstReady(true)
	}
	out := ResolvePvP(l)
	assert.Len(t, out.Winners, 3)
	assert.Empty(t, out.Losers)
	for _, p := range ps {
		assert.Equal(t, 4, p.State().Lives)
		assert.False(t, p.Profile().FirstReady)
		assert.Equal(t, []string{"endPvP"}, sessiontest.Actions(sessiontest.Drain(t, p)))
	}
}

func TestResolvePvPLastLifeEndsGame(t *testing.T) {
	l, ps := setupLobby(t, game.ModeAttrition, 2)
	a, b := ps[0], ps[1]
	b.SetLives(1)
	a.SetScore(score.FromInt(1))

	out := ResolvePvP(l)
	assert.True(t, out.GameOver)
	assert.Equal(t, 0, b.State().Lives)

	actions := lastActions(t, ps)
	assert.Contains(t, actions[0], "winGame")
	assert.NotContains(t, actions[0], "endPvP")
	assert.Contains(t, actions[1], "loseGame")
	assert.NotContains(t, actions[1], "endPvP")
}

func TestCoopScenarioShortOfTarget(t *testing.T) {
	l, ps := setupLobby(t, game.ModeCoopSurvival, 3)
	last, b, c := ps[0], ps[1], ps[2]
	last.SetLives(1)

	PlayHand(l, b, score.FromInt(100), 0, score.Zero)
	PlayHand(l, c, score.FromInt(100), 0, score.Zero)
	out := PlayHand(l, last, score.FromInt(100), 0, score.MustParse("1000"))
	require.NotNil(t, out)
	assert.True(t, out.GameOver)

	lastFrames := sessiontest.Drain(t, last)
	assert.Len(t, sessiontest.Find(lastFrames, "loseGame"), 1)
	assert.Empty(t, sessiontest.Find(lastFrames, "endPvP"))

	for _, p := range []*session.Session{b, c} {
		frames := sessiontest.Drain(t, p)
		ends := sessiontest.Find(frames, "endPvP")
		require.Len(t, ends, 1)
		assert.Equal(t, true, ends[0]["lost"])
		assert.Empty(t, sessiontest.Find(frames, "loseGame"))
		assert.Equal(t, 3, p.State().Lives)
		assert.True(t, p.State().Score.IsZero())
	}
}

func TestCoopLifeLossIsForced(t *testing.T) {
	l, ps := setupLobby(t, game.ModeCoopSurvival, 2)
	for _, p := range ps {
		p.SetLives(3)
		p.LoseLife(false) // blocker now set
	}
	PlayHand(l, ps[0], score.FromInt(1), 0, score.Zero)
	PlayHand(l, ps[1], score.FromInt(1), 0, score.FromInt(50))
	for _, p := range ps {
		assert.Equal(t, 1, p.State().Lives)
	}
}

func TestCoopTargetMetDoesNothing(t *testing.T) {
	l, ps := setupLobby(t, game.ModeCoopSurvival, 2)
	PlayHand(l, ps[0], score.FromInt(600), 0, score.Zero)
	out := PlayHand(l, ps[1], score.FromInt(400), 0, score.FromInt(1000))
	require.NotNil(t, out)
	assert.False(t, out.GameOver)
	assert.Empty(t, out.Losers)
	for _, p := range ps {
		assert.Equal(t, 4, p.State().Lives)
		frames := sessiontest.Drain(t, p)
		assert.Empty(t, sessiontest.Find(frames, "endPvP"))
	}
}

func TestFailRoundElimination(t *testing.T) {
	l, ps := setupLobby(t, game.ModeAttrition, 2)
	opts := l.Options().Clone()
	opts[game.OptDeathOnRoundLoss] = true
	l.SetOptions(opts)
	a, b := ps[0], ps[1]
	a.SetLives(1)

	out := FailRound(l, a)
	require.NotNil(t, out)
	assert.True(t, out.GameOver)
	assert.Equal(t, []*session.Session{b}, out.Winners)

	actions := lastActions(t, ps)
	assert.Contains(t, actions[0], "loseGame")
	assert.Contains(t, actions[1], "winGame")
}

func TestFailRoundWithoutDeathRule(t *testing.T) {
	l, ps := setupLobby(t, game.ModeAttrition, 2)
	assert.Nil(t, FailRound(l, ps[0]))
	assert.Equal(t, 4, ps[0].State().Lives)
}

func TestFailRoundSurvivalAliveBestWins(t *testing.T) {
	l, ps := setupLobby(t, game.ModeSurvival, 3)
	opts := l.Options().Clone()
	opts[game.OptDeathOnRoundLoss] = true
	l.SetOptions(opts)
	dead, b, c := ps[0], ps[1], ps[2]
	dead.SetLives(1)
	b.SetFurthestBlind(7)
	c.SetFurthestBlind(5)

	out := FailRound(l, dead)
	require.NotNil(t, out)
	assert.Equal(t, []*session.Session{b}, out.Winners)
	assert.Equal(t, []*session.Session{c}, out.Losers)

	actions := lastActions(t, ps)
	assert.NotContains(t, actions[0], "winGame")
	assert.Contains(t, actions[1], "winGame")
	assert.Contains(t, actions[2], "loseGame")
}

func TestSurvivalAllDeadTieBreak(t *testing.T) {
	l, ps := setupLobby(t, game.ModeSurvival, 3)
	blinds := []int{6, 9, 9}
	for i, p := range ps {
		p.SetLives(0)
		p.SetFurthestBlind(blinds[i])
	}

	out := SetFurthestBlind(l, ps[0], 4)
	require.NotNil(t, out)
	assert.True(t, out.GameOver)
	assert.ElementsMatch(t, []*session.Session{ps[1], ps[2]}, out.Winners)

	actions := lastActions(t, ps)
	assert.Equal(t, []string{"loseGame"}, actions[0])
	assert.Equal(t, []string{"winGame"}, actions[1])
	assert.Equal(t, []string{"winGame"}, actions[2])
}

func TestSetFurthestBlindIgnoredOutsideSurvival(t *testing.T) {
	l, ps := setupLobby(t, game.ModeShowdown, 2)
	for _, p := range ps {
		p.SetLives(0)
	}
	assert.Nil(t, SetFurthestBlind(l, ps[0], 3))
	assert.Equal(t, 3, ps[0].State().FurthestBlind)
	assert.Nil(t, SetFurthestBlind(nil, ps[1], 2))
}

func TestFailTimer(t *testing.T) {
	l, ps := setupLobby(t, game.ModeAttrition, 2)
	a, b := ps[0], ps[1]

	assert.Nil(t, FailTimer(l, a))
	assert.Equal(t, 3, a.State().Lives)
	// blocked until the next round
	assert.Nil(t, FailTimer(l, a))
	assert.Equal(t, 3, a.State().Lives)

	a.SetLives(1)
	a.ResetBlocker()
	out := FailTimer(l, a)
	require.NotNil(t, out)
	assert.Equal(t, []*session.Session{b}, out.Winners)
}

func TestStartGame(t *testing.T) {
	l, ps := setupLobby(t, game.ModeAttrition, 2)
	ps[0].SetAnte(5)
	ps[1].SetLives(1)

	StartGame(l, "ABCD1234")
	for _, p := range ps {
		frames := sessiontest.Drain(t, p)
		require.Len(t, frames, 1)
		f := frames[0]
		assert.Equal(t, "startGame", f.Action())
		assert.Equal(t, StartingDeck, f["deck"])
		assert.Equal(t, "ABCD1234", f["seed"])
		players := f["players"].([]any)
		require.Len(t, players, 2)
		first := players[0].(map[string]any)
		assert.Equal(t, float64(4), first["lives"])
		assert.Equal(t, float64(1), first["ante"])
		assert.Equal(t, "0", first["score"])
		assert.Equal(t, "loc_selecting", first["location"])
	}
	assert.Equal(t, 4, ps[1].State().Lives)
}

func TestStartGameDifferentSeedsOmitsSeed(t *testing.T) {
	l, ps := setupLobby(t, game.ModeCoopSurvival, 2)
	StartGame(l, NewSeed())
	frames := sessiontest.Drain(t, ps[0])
	require.Len(t, frames, 1)
	_, hasSeed := frames[0]["seed"]
	assert.False(t, hasSeed)
	assert.Equal(t, 2, ps[0].State().Lives)
}

func TestStopGameAndNewRound(t *testing.T) {
	l, ps := setupLobby(t, game.ModeAttrition, 2)
	ps[0].SetReady(true)
	ps[0].SetScore(score.FromInt(5))
	ps[0].LoseLife(false)

	StopGame(l)
	assert.False(t, ps[0].Profile().IsReady)
	assert.False(t, ps[0].State().LivesBlocker)
	assert.Equal(t, lobby.LocationBlindSelect, ps[0].State().Location)

	ps[0].LoseLife(false)
	NewRound(ps[0])
	assert.False(t, ps[0].State().LivesBlocker)
	assert.True(t, ps[0].State().Score.IsZero())
}

func TestNewSeed(t *testing.T) {
	seed := NewSeed()
	assert.Regexp(t, "^[A-Z1-9]{8}$", seed)
}
