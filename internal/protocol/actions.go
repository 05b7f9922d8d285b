package protocol

// Action tags.
const (
	ActionUsername              = "username"
	ActionCreateLobby           = "createLobby"
	ActionJoinLobby             = "joinLobby"
	ActionLeaveLobby            = "leaveLobby"
	ActionLobbyInfo             = "lobbyInfo"
	ActionLobbyOptions          = "lobbyOptions"
	ActionKeepAlive             = "keepAlive"
	ActionKeepAliveAck          = "keepAliveAck"
	ActionVersion               = "version"
	ActionSyncClient            = "syncClient"
	ActionStartGame             = "startGame"
	ActionStopGame              = "stopGame"
	ActionReadyBlind            = "readyBlind"
	ActionUnreadyBlind          = "unreadyBlind"
	ActionPlayHand              = "playHand"
	ActionGameInfo              = "gameInfo"
	ActionFailRound             = "failRound"
	ActionSetAnte               = "setAnte"
	ActionSetLocation           = "setLocation"
	ActionNewRound              = "newRound"
	ActionSetFurthestBlind      = "setFurthestBlind"
	ActionSkip                  = "skip"
	ActionFailTimer             = "failTimer"
	ActionSendPhantom           = "sendPhantom"
	ActionRemovePhantom         = "removePhantom"
	ActionAsteroid              = "asteroid"
	ActionLetsGoGamblingNemesis = "letsGoGamblingNemesis"
	ActionEatPizza              = "eatPizza"
	ActionSoldJoker             = "soldJoker"
	ActionSpentLastShop         = "spentLastShop"
	ActionMagnet                = "magnet"
	ActionMagnetResponse        = "magnetResponse"
	ActionGetEndGameJokers      = "getEndGameJokers"
	ActionReceiveEndGameJokers  = "receiveEndGameJokers"
	ActionGetNemesisDeck        = "getNemesisDeck"
	ActionReceiveNemesisDeck    = "receiveNemesisDeck"
	ActionStartAnteTimer        = "startAnteTimer"
	ActionPauseAnteTimer        = "pauseAnteTimer"
	ActionSetBossBlind          = "setBossBlind"

	ActionConnected       = "connected"
	ActionError           = "error"
	ActionJoinedLobby     = "joinedLobby"
	ActionStartBlind      = "startBlind"
	ActionWinGame         = "winGame"
	ActionLoseGame        = "loseGame"
	ActionEndPvP          = "endPvP"
	ActionSpeedrun        = "speedrun"
	ActionGameStateUpdate = "gameStateUpdate"
)

// inboundTypes maps every client to server tag to a constructor for its
// payload. Decode falls back to Unknown for anything missing here.
var inboundTypes = map[string]func() Inbound{
	ActionUsername:              func() Inbound { return &Username{} },
	ActionCreateLobby:           func() Inbound { return &CreateLobby{} },
	ActionJoinLobby:             func() Inbound { return &JoinLobby{} },
	ActionLeaveLobby:            func() Inbound { return &LeaveLobby{} },
	ActionLobbyInfo:             func() Inbound { return &LobbyInfo{} },
	ActionLobbyOptions:          func() Inbound { return &LobbyOptions{} },
	ActionKeepAlive:             func() Inbound { return &KeepAlive{} },
	ActionKeepAliveAck:          func() Inbound { return &KeepAliveAck{} },
	ActionVersion:               func() Inbound { return &Version{} },
	ActionSyncClient:            func() Inbound { return &SyncClient{} },
	ActionStartGame:             func() Inbound { return &StartGame{} },
	ActionStopGame:              func() Inbound { return &StopGame{} },
	ActionReadyBlind:            func() Inbound { return &ReadyBlind{} },
	ActionUnreadyBlind:          func() Inbound { return &UnreadyBlind{} },
	ActionPlayHand:              func() Inbound { return &PlayHand{} },
	ActionGameInfo:              func() Inbound { return &GameInfo{} },
	ActionFailRound:             func() Inbound { return &FailRound{} },
	ActionSetAnte:               func() Inbound { return &SetAnte{} },
	ActionSetLocation:           func() Inbound { return &SetLocation{} },
	ActionNewRound:              func() Inbound { return &NewRound{} },
	ActionSetFurthestBlind:      func() Inbound { return &SetFurthestBlind{} },
	ActionSkip:                  func() Inbound { return &Skip{} },
	ActionFailTimer:             func() Inbound { return &FailTimer{} },
	ActionSendPhantom:           func() Inbound { return &SendPhantom{} },
	ActionRemovePhantom:         func() Inbound { return &RemovePhantom{} },
	ActionAsteroid:              func() Inbound { return &Asteroid{} },
	ActionLetsGoGamblingNemesis: func() Inbound { return &LetsGoGamblingNemesis{} },
	ActionEatPizza:              func() Inbound { return &EatPizza{} },
	ActionSoldJoker:             func() Inbound { return &SoldJoker{} },
	ActionSpentLastShop:         func() Inbound { return &SpentLastShop{} },
	ActionMagnet:                func() Inbound { return &Magnet{} },
	ActionMagnetResponse:        func() Inbound { return &MagnetResponse{} },
	ActionGetEndGameJokers:      func() Inbound { return &GetEndGameJokers{} },
	ActionReceiveEndGameJokers:  func() Inbound { return &ReceiveEndGameJokers{} },
	ActionGetNemesisDeck:        func() Inbound { return &GetNemesisDeck{} },
	ActionReceiveNemesisDeck:    func() Inbound { return &ReceiveNemesisDeck{} },
	ActionStartAnteTimer:        func() Inbound { return &StartAnteTimer{} },
	ActionPauseAnteTimer:        func() Inbound { return &PauseAnteTimer{} },
	ActionSetBossBlind:          func() Inbound { return &SetBossBlind{} },
}

func (Username) Action() string              { return ActionUsername }
func (CreateLobby) Action() string           { return ActionCreateLobby }
func (JoinLobby) Action() string             { return ActionJoinLobby }
func (LeaveLobby) Action() string            { return ActionLeaveLobby }
func (LobbyInfo) Action() string             { return ActionLobbyInfo }
func (LobbyOptions) Action() string          { return ActionLobbyOptions }
func (KeepAlive) Action() string             { return ActionKeepAlive }
func (KeepAliveAck) Action() string          { return ActionKeepAliveAck }
func (Version) Action() string               { return ActionVersion }
func (SyncClient) Action() string            { return ActionSyncClient }
func (StartGame) Action() string             { return ActionStartGame }
func (StopGame) Action() string              { return ActionStopGame }
func (ReadyBlind) Action() string            { return ActionReadyBlind }
func (UnreadyBlind) Action() string          { return ActionUnreadyBlind }
func (PlayHand) Action() string              { return ActionPlayHand }
func (GameInfo) Action() string              { return ActionGameInfo }
func (FailRound) Action() string             { return ActionFailRound }
func (SetAnte) Action() string               { return ActionSetAnte }
func (SetLocation) Action() string           { return ActionSetLocation }
func (NewRound) Action() string              { return ActionNewRound }
func (SetFurthestBlind) Action() string      { return ActionSetFurthestBlind }
func (Skip) Action() string                  { return ActionSkip }
func (FailTimer) Action() string             { return ActionFailTimer }
func (SendPhantom) Action() string           { return ActionSendPhantom }
func (RemovePhantom) Action() string         { return ActionRemovePhantom }
func (Asteroid) Action() string              { return ActionAsteroid }
func (LetsGoGamblingNemesis) Action() string { return ActionLetsGoGamblingNemesis }
func (EatPizza) Action() string              { return ActionEatPizza }
func (SoldJoker) Action() string             { return ActionSoldJoker }
func (SpentLastShop) Action() string         { return ActionSpentLastShop }
func (Magnet) Action() string                { return ActionMagnet }
func (MagnetResponse) Action() string        { return ActionMagnetResponse }
func (GetEndGameJokers) Action() string      { return ActionGetEndGameJokers }
func (ReceiveEndGameJokers) Action() string  { return ActionReceiveEndGameJokers }
func (GetNemesisDeck) Action() string        { return ActionGetNemesisDeck }
func (ReceiveNemesisDeck) Action() string    { return ActionReceiveNemesisDeck }
func (StartAnteTimer) Action() string        { return ActionStartAnteTimer }
func (PauseAnteTimer) Action() string        { return ActionPauseAnteTimer }
func (SetBossBlind) Action() string          { return ActionSetBossBlind }

func (Connected) Action() string       { return ActionConnected }
func (Error) Action() string           { return ActionError }
func (JoinedLobby) Action() string     { return ActionJoinedLobby }
func (StartBlind) Action() string      { return ActionStartBlind }
func (WinGame) Action() string         { return ActionWinGame }
func (LoseGame) Action() string        { return ActionLoseGame }
func (EndPvP) Action() string          { return ActionEndPvP }
func (Speedrun) Action() string        { return ActionSpeedrun }
func (GameStateUpdate) Action() string { return ActionGameStateUpdate }

func (*Username) inbound()              {}
func (*CreateLobby) inbound()           {}
func (*JoinLobby) inbound()             {}
func (*LeaveLobby) inbound()            {}
func (*LobbyInfo) inbound()             {}
func (*LobbyOptions) inbound()          {}
func (*KeepAlive) inbound()             {}
func (*KeepAliveAck) inbound()          {}
func (*Version) inbound()               {}
func (*SyncClient) inbound()            {}
func (*StartGame) inbound()             {}
func (*StopGame) inbound()              {}
func (*ReadyBlind) inbound()            {}
func (*UnreadyBlind) inbound()          {}
func (*PlayHand) inbound()              {}
func (*GameInfo) inbound()              {}
func (*FailRound) inbound()             {}
func (*SetAnte) inbound()               {}
func (*SetLocation) inbound()           {}
func (*NewRound) inbound()              {}
func (*SetFurthestBlind) inbound()      {}
func (*Skip) inbound()                  {}
func (*FailTimer) inbound()             {}
func (*SendPhantom) inbound()           {}
func (*RemovePhantom) inbound()         {}
func (*Asteroid) inbound()              {}
func (*LetsGoGamblingNemesis) inbound() {}
func (*EatPizza) inbound()              {}
func (*SoldJoker) inbound()             {}
func (*SpentLastShop) inbound()         {}
func (*Magnet) inbound()                {}
func (*MagnetResponse) inbound()        {}
func (*GetEndGameJokers) inbound()      {}
func (*ReceiveEndGameJokers) inbound()  {}
func (*GetNemesisDeck) inbound()        {}
func (*ReceiveNemesisDeck) inbound()    {}
func (*StartAnteTimer) inbound()        {}
func (*PauseAnteTimer) inbound()        {}
func (*SetBossBlind) inbound()          {}
