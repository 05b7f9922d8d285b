// internal/game/rules.go
package game

import (
	"math"
	"strconv"

	"github.com/rotisserie/eris"
)

// Mode identifies a multiplayer game mode.
type Mode string

const (
	ModeAttrition    Mode = "attrition"
	ModeShowdown     Mode = "showdown"
	ModeSurvival     Mode = "survival"
	ModeCoopSurvival Mode = "coopSurvival"
)

// ParseMode returns the mode for a client supplied tag. Unknown or empty tags
// fall back to attrition.
func ParseMode(s string) Mode {
	switch Mode(s) {
	case ModeAttrition, ModeShowdown, ModeSurvival, ModeCoopSurvival:
		return Mode(s)
	}
	return ModeAttrition
}

// IsCoop reports whether the mode is the cooperative one.
func (m Mode) IsCoop() bool { return m == ModeCoopSurvival }

// Options is the lobby ruleset. It is kept as a free-form record because the
// client owns its shape and the server replaces it wholesale on update; typed
// accessors below read the handful of keys the server itself acts on.
type Options map[string]interface{}

// Well-known option keys.
const (
	OptBack                  = "back"
	OptChallenge             = "challenge"
	OptCustomSeed            = "custom_seed"
	OptDeathOnRoundLoss      = "death_on_round_loss"
	OptDisableLiveTimerHUD   = "disable_live_and_timer_hud"
	OptDifferentDecks        = "different_decks"
	OptDifferentSeeds        = "different_seeds"
	OptGamemode              = "gamemode"
	OptGoldOnLifeLoss        = "gold_on_life_loss"
	OptMultiplayerJokers     = "multiplayer_jokers"
	OptNoGoldOnRoundLoss     = "no_gold_on_round_loss"
	OptNormalBosses          = "normal_bosses"
	OptPvpStartRound         = "pvp_start_round"
	OptRuleset               = "ruleset"
	OptShowdownStartingAntes = "showdown_starting_antes"
	OptSleeve                = "sleeve"
	OptStake                 = "stake"
	OptStartingLives         = "starting_lives"
	OptTimerBaseSeconds      = "timer_base_seconds"
	OptTimerIncrementSeconds = "timer_increment_seconds"
)

// Clone returns a shallow copy so mode defaults are never shared between lobbies.
func (o Options) Clone() Options {
	out := make(Options, len(o))
	for k, v := range o {
		out[k] = v
	}
	return out
}

// Bool reads a boolean option. Strings "true"/"1" are accepted.
func (o Options) Bool(key string) bool {
	switch v := o[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	case float64:
		return v != 0
	case int:
		return v != 0
	}
	return false
}

// Int reads a numeric option, tolerating JSON floats and numeric strings.
func (o Options) Int(key string, def int) int {
	v, err := toInt(o[key])
	if err != nil {
		return def
	}
	return v
}

// DeathOnRoundLoss reports whether failing a round costs a life.
func (o Options) DeathOnRoundLoss() bool { return o.Bool(OptDeathOnRoundLoss) }

// DifferentSeeds reports whether every player gets their own seed.
func (o Options) DifferentSeeds() bool { return o.Bool(OptDifferentSeeds) }

// StartingLives is the life count applied on game start.
func (o Options) StartingLives() int { return o.Int(OptStartingLives, 4) }

// ShowdownStartingAntes is the number of non-PvP antes in showdown.
func (o Options) ShowdownStartingAntes() int { return o.Int(OptShowdownStartingAntes, 3) }

func toInt(raw interface{}) (int, error) {
	switch v := raw.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, eris.New("non-finite number")
		}
		return int(v), nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case string:
		return strconv.Atoi(v)
	case nil:
		return 0, eris.New("missing")
	}
	return 0, eris.Errorf("invalid type %T", raw)
}
