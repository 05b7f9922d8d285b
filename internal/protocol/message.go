// Package protocol defines the newline-delimited JSON wire format spoken by
// game clients: the closed set of inbound actions, the outbound actions the
// server emits, the codec and the frame splitter.
package protocol

import (
	"github.com/goccy/go-json"

	"github.com/jason-s-yu/lobbyd/internal/game"
)

// Message is anything carrying an action tag.
type Message interface {
	Action() string
}

// Inbound is the sealed union of client to server actions. Only types in this
// package implement it.
type Inbound interface {
	Message
	inbound()
}

// Outbound is a server to client action.
type Outbound = Message

// Unknown is produced for frames whose action tag is not recognised.
type Unknown struct {
	Name string `json:"-"`
}

func (u Unknown) Action() string { return u.Name }
func (*Unknown) inbound()        {}

// --- lobby and profile ---

type Username struct {
	Username string `json:"username"`
	Colour   string `json:"colour"`
	ModHash  string `json:"modHash"`
}

type CreateLobby struct {
	Ruleset  string `json:"ruleset"`
	GameMode string `json:"gameMode"`
}

type JoinLobby struct {
	Code string `json:"code"`
}

type LeaveLobby struct{}

// LobbyInfo is both the roster request and the personalised roster reply.
type LobbyInfo struct {
	Host    string        `json:"host"`
	IsHost  bool          `json:"isHost"`
	LocalID string        `json:"local_id,omitempty"`
	Players []LobbyPlayer `json:"players,omitempty"`
}

// LobbyPlayer is one roster entry of a lobbyInfo payload.
type LobbyPlayer struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Colour     string `json:"colour"`
	ModHash    string `json:"modHash"`
	IsCached   bool   `json:"isCached"`
	IsReady    bool   `json:"isReady"`
	FirstReady bool   `json:"firstReady"`
}

type LobbyOptions struct {
	Options game.Options `json:"options"`
}

type KeepAlive struct{}

type KeepAliveAck struct{}

type Version struct {
	Version string `json:"version,omitempty"`
}

type SyncClient struct {
	IsCached bool `json:"isCached"`
}

// --- game flow ---

// StartGame is the host's request and the server's game start broadcast.
type StartGame struct {
	Deck    string        `json:"deck,omitempty"`
	Seed    string        `json:"seed,omitempty"`
	Players []PlayerState `json:"players,omitempty"`
}

// PlayerState is one player's full round state inside startGame.
type PlayerState struct {
	ID            string `json:"id"`
	Score         string `json:"score"`
	HighestScore  string `json:"highest_score"`
	Lives         int    `json:"lives"`
	HandsLeft     int    `json:"hands_left"`
	Ante          int    `json:"ante"`
	Skips         int    `json:"skips"`
	FurthestBlind int    `json:"furthest_blind"`
	LivesBlocker  bool   `json:"lives_blocker"`
	Location      string `json:"location"`
}

type StopGame struct{}

type ReadyBlind struct{}

type UnreadyBlind struct{}

type PlayHand struct {
	Score       FlexString `json:"score"`
	HandsLeft   *FlexInt   `json:"hands_left"`
	TargetScore FlexString `json:"target_score,omitempty"`
	HasSpeedrun bool       `json:"hasSpeedrun,omitempty"`
}

// GameInfo is the deprecated blind lookup request and its reply.
type GameInfo struct {
	game.Blinds
}

type FailRound struct{}

type SetAnte struct {
	Ante FlexInt `json:"ante"`
}

type SetLocation struct {
	Location string `json:"location"`
}

type NewRound struct{}

type SetFurthestBlind struct {
	FurthestBlind FlexInt `json:"furthest_blind"`
}

type Skip struct {
	Skips FlexInt `json:"skips"`
}

type FailTimer struct{}

// --- relays: fields travel verbatim ---

type SendPhantom struct {
	Key json.RawMessage `json:"key,omitempty"`
}

type RemovePhantom struct {
	Key json.RawMessage `json:"key,omitempty"`
}

type Asteroid struct{}

type LetsGoGamblingNemesis struct{}

type EatPizza struct {
	Whole json.RawMessage `json:"whole,omitempty"`
}

type SoldJoker struct{}

type SpentLastShop struct {
	Amount json.RawMessage `json:"amount,omitempty"`
}

type Magnet struct{}

type MagnetResponse struct {
	Key json.RawMessage `json:"key,omitempty"`
}

type GetEndGameJokers struct{}

type ReceiveEndGameJokers struct {
	Keys json.RawMessage `json:"keys,omitempty"`
}

type GetNemesisDeck struct{}

type ReceiveNemesisDeck struct {
	Cards json.RawMessage `json:"cards,omitempty"`
}

type StartAnteTimer struct {
	Time json.RawMessage `json:"time,omitempty"`
}

type PauseAnteTimer struct {
	Time json.RawMessage `json:"time,omitempty"`
}

type SetBossBlind struct {
	BossKey     json.RawMessage `json:"bossKey,omitempty"`
	TargetScore json.RawMessage `json:"targetScore,omitempty"`
}

// --- server only ---

type Connected struct{}

type Error struct {
	Message string `json:"message"`
}

type JoinedLobby struct {
	Code string `json:"code"`
}

type StartBlind struct{}

type WinGame struct{}

type LoseGame struct{}

type EndPvP struct {
	Lost bool `json:"lost"`
}

type Speedrun struct{}

type GameStateUpdate struct {
	ID      string       `json:"id"`
	Updates StateUpdates `json:"updates"`
}

// StateUpdates is a partial round state; nil fields are left out.
type StateUpdates struct {
	Lives         *int    `json:"lives,omitempty"`
	Score         *string `json:"score,omitempty"`
	HighestScore  *string `json:"highest_score,omitempty"`
	HandsLeft     *int    `json:"hands_left,omitempty"`
	Ante          *int    `json:"ante,omitempty"`
	Skips         *int    `json:"skips,omitempty"`
	FurthestBlind *int    `json:"furthest_blind,omitempty"`
	LivesBlocker  *bool   `json:"lives_blocker,omitempty"`
	Location      *string `json:"location,omitempty"`
}

// Ptr returns a pointer to v, for filling StateUpdates.
func Ptr[T any](v T) *T { return &v }
