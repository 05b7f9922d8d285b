package game

// Blind key used for PvP encounters.
const BlindPvP = "bl_pvp"

// Blinds is the blind override set for one ante. Nil fields leave the
// client's own blind selection untouched.
type Blinds struct {
	Small *string `json:"small,omitempty"`
	Big   *string `json:"big,omitempty"`
	Boss  *string `json:"boss,omitempty"`
}

func baseOptions(mode Mode) Options {
	return Options{
		OptBack:                  "Red Deck",
		OptChallenge:             0,
		OptCustomSeed:            "random",
		OptDeathOnRoundLoss:      false,
		OptDifferentDecks:        false,
		OptDifferentSeeds:        false,
		OptDisableLiveTimerHUD:   false,
		OptGamemode:              "gamemode_mp_" + string(mode),
		OptGoldOnLifeLoss:        true,
		OptMultiplayerJokers:     true,
		OptNoGoldOnRoundLoss:     false,
		OptNormalBosses:          false,
		OptPvpStartRound:         2,
		OptRuleset:               "ruleset_mp_standard",
		OptShowdownStartingAntes: 3,
		OptSleeve:                "sleeve_casl_none",
		OptStake:                 1,
		OptStartingLives:         4,
		OptTimerBaseSeconds:      150,
		OptTimerIncrementSeconds: 60,
	}
}

// DefaultOptions returns a fresh copy of the default ruleset for a mode.
func DefaultOptions(mode Mode) Options {
	opts := baseOptions(mode)
	switch mode {
	case ModeSurvival:
		opts[OptPvpStartRound] = 20
	case ModeCoopSurvival:
		opts[OptDifferentDecks] = true
		opts[OptDifferentSeeds] = true
		opts[OptMultiplayerJokers] = false
		opts[OptNormalBosses] = true
		opts[OptRuleset] = "ruleset_mp_coop"
		opts[OptStartingLives] = 2
	}
	return opts
}

// MultiplayerJokersFor reports the joker policy for a lobby ruleset name.
func MultiplayerJokersFor(ruleset string) bool {
	switch ruleset {
	case "standard", "badlatro":
		return true
	}
	return false
}

// DefaultMaxPlayers is the lobby capacity for a mode.
func DefaultMaxPlayers(mode Mode) int {
	if mode.IsCoop() {
		return 8
	}
	return 2
}

// BlindsForAnte returns the blinds the server forces for the given ante.
func BlindsForAnte(mode Mode, ante int, opts Options) Blinds {
	pvp := BlindPvP
	switch mode {
	case ModeAttrition:
		return Blinds{Boss: &pvp}
	case ModeShowdown:
		if ante <= opts.ShowdownStartingAntes() {
			return Blinds{}
		}
		return Blinds{Small: &pvp, Big: &pvp, Boss: &pvp}
	}
	return Blinds{}
}
