package models

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// EventType is the name of an inbound feed event.
type EventType string

const (
	// Tournament
	EventGetCurrentTournament EventType = "getcurrenttournament"
	EventSetTournamentName    EventType = "settournamentname"
	EventRenameTournamentName EventType = "renametournamentname"
	EventGetTournamentParams  EventType = "gettournamentparams"
	EventSetTournamentParams  EventType = "settournamentparams"
	EventGetTournamentResults EventType = "gettournamentresults"
	EventSetTournamentResult  EventType = "settournamentresult"

	// Team and player overrides
	EventGetTeamParams   EventType = "getteamparams"
	EventSetTeamParams   EventType = "setteamparams"
	EventGetPlayerParams EventType = "getplayerparams"
	EventSetPlayerParams EventType = "setplayerparams"
	EventGetPlayers      EventType = "getplayers"

	// Game lifecycle
	EventGetGame            EventType = "getgame"
	EventClearLiveData      EventType = "clearlivedata"
	EventGameStateChange    EventType = "gamestatechange"
	EventMatchSetup         EventType = "matchsetup"
	EventSaveResult         EventType = "saveresult"
	EventWinnerDetermine    EventType = "winnerdetermine"
	EventLiveAPISocketStats EventType = "liveapisocketstats"

	// Teams
	EventTeamName       EventType = "teamname"
	EventTeamPlacement  EventType = "teamplacement"
	EventSquadEliminate EventType = "squadeliminate"
	EventTeamRespawn    EventType = "teamrespawn"

	// Players
	EventPlayerHash         EventType = "playerhash"
	EventPlayerName         EventType = "playername"
	EventPlayerConnected    EventType = "playerconnected"
	EventPlayerDisconnected EventType = "playerdisconnected"
	EventPlayerStats        EventType = "playerstats"
	EventPlayerCharacter    EventType = "playercharacter"
	EventPlayerDamage       EventType = "playerdamage"
	EventPlayerItem         EventType = "playeritem"
	EventStateAlive         EventType = "statealive"
	EventStateDown          EventType = "statedown"
	EventStateKilled        EventType = "statekilled"
	EventStateCollected     EventType = "statecollected"

	// Camera and recognition
	EventObserverSwitch  EventType = "observerswitch"
	EventTeamBannerState EventType = "teambannerstate"
	EventMapState        EventType = "mapstate"

	// Operator test broadcasts
	EventBroadcastObject EventType = "broadcastobject"
)

// ErrUnknownEvent is returned for event names outside the closed set.
var ErrUnknownEvent = errors.New("unknown event type")

// Event is a decoded feed message: the tag plus its typed payload.
type Event struct {
	Type      EventType
	RequestID string
	Payload   any
}

// TournamentPayload carries the tournament identity.
type TournamentPayload struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Result bool   `json:"result"`
}

// TournamentParamsPayload carries the tournament configuration.
type TournamentParamsPayload struct {
	Params TournamentParams `json:"params"`
	Result bool             `json:"result"`
}

// TournamentResultsPayload carries the full result history.
type TournamentResultsPayload struct {
	Results []Result `json:"results"`
}

// TournamentResultPayload acknowledges a result correction.
type TournamentResultPayload struct {
	GameID    int  `json:"gameid" validate:"gte=0"`
	SetResult bool `json:"setresult"`
}

// TeamParamsPayload carries one team's overrides.
type TeamParamsPayload struct {
	TeamID int        `json:"teamid" validate:"gte=0"`
	Params TeamParams `json:"params"`
	Result bool       `json:"result"`
}

// PlayerParamsPayload carries one player's overrides.
type PlayerParamsPayload struct {
	Hash   string       `json:"hash" validate:"required"`
	Params PlayerParams `json:"params"`
	Result bool         `json:"result"`
}

// PlayersPayload carries the player registry.
type PlayersPayload struct {
	Players map[string]PlayerParams `json:"players"`
}

// GamePayload carries a whole game snapshot.
type GamePayload struct {
	Game Game `json:"game"`
}

// GameStatePayload carries a lifecycle transition.
type GameStatePayload struct {
	State GameState `json:"state" validate:"required,oneof=WaitingForPlayers PreGamePreview PickLoadout Prematch Playing Resolution Postmatch"`
}

// MatchSetupPayload carries the map and server of the upcoming game.
type MatchSetupPayload struct {
	Map    string     `json:"map"`
	Server ServerInfo `json:"server"`
}

// SaveResultPayload carries a completed game.
type SaveResultPayload struct {
	GameID int    `json:"gameid" validate:"gte=0"`
	Result Result `json:"result"`
}

// SocketStatsPayload carries the number of connected live API sockets.
type SocketStatsPayload struct {
	Connections int `json:"conn" validate:"gte=0"`
}

// TeamInfo is the team part of team and player events.
type TeamInfo struct {
	ID        int    `json:"id" validate:"gte=0,lt=64"`
	Name      string `json:"name"`
	Kills     int    `json:"kills"`
	Placement int    `json:"placement"`
}

// PlayerInfo is the player part of player events.
type PlayerInfo struct {
	Hash         string      `json:"hash" validate:"required"`
	Name         string      `json:"name"`
	Character    string      `json:"character"`
	Kills        int         `json:"kills"`
	Assists      int         `json:"assists"`
	DamageDealt  int         `json:"damage_dealt"`
	DamageTaken  int         `json:"damage_taken"`
	CanReconnect bool        `json:"canreconnect"`
	State        PlayerState `json:"state"`
}

// TeamPayload carries a team-only event.
type TeamPayload struct {
	Team TeamInfo `json:"team"`
}

// PlayerPayload carries a player event, with the player's team when known.
type PlayerPayload struct {
	Team   TeamInfo   `json:"team"`
	Player PlayerInfo `json:"player"`
}

// PlayerItemPayload carries an inventory change.
type PlayerItemPayload struct {
	Player PlayerInfo `json:"player"`
	Item   string     `json:"item" validate:"required"`
	Count  int        `json:"count"`
}

// TeamRespawnPayload carries a respawn beacon use.
type TeamRespawnPayload struct {
	Team    TeamInfo     `json:"team"`
	Player  PlayerInfo   `json:"player"`
	Targets []PlayerInfo `json:"targets" validate:"dive"`
}

// ObserverSwitchPayload carries an observer camera change.
type ObserverSwitchPayload struct {
	Observer struct {
		Hash string `json:"hash"`
	} `json:"observer"`
	Own    bool     `json:"own"`
	Team   TeamInfo `json:"team"`
	Player struct {
		Hash string `json:"hash"`
	} `json:"player"`
}

// RecognitionPayload carries an on-screen recognition signal.
type RecognitionPayload struct {
	State bool `json:"state"`
}

// Test broadcast types.
const (
	TestGameState            = "testgamestate"
	TestTeamBanner           = "testteambanner"
	TestMapLeaderboard       = "testmapleaderboard"
	TestCamera               = "testcamera"
	TestPlayerBanner         = "testplayerbanner"
	TestTeamKills            = "testteamkills"
	TestGameCount            = "testgamecount"
	TestSquadEliminated      = "testsquadeliminated"
	TestTeamRespawned        = "testteamrespawned"
	TestWinnerDetermine      = "testwinnerdetermine"
	TestWinnerDetermineReset = "testwinnerdeterminereset"
)

// TestCommand is an operator-issued test broadcast.
type TestCommand struct {
	Type             string    `json:"type" validate:"required,oneof=testgamestate testteambanner testmapleaderboard testcamera testplayerbanner testteamkills testgamecount testsquadeliminated testteamrespawned testwinnerdetermine testwinnerdeterminereset"`
	State            GameState `json:"state,omitempty"`
	TeamID           int       `json:"teamid" validate:"gte=0"`
	Placement        int       `json:"placement,omitempty"`
	Name             string    `json:"name,omitempty"`
	Kills            int       `json:"kills,omitempty"`
	Count            int       `json:"count,omitempty" validate:"gte=0"`
	RespawnPlayer    string    `json:"respawn_player,omitempty"`
	RespawnedPlayers []string  `json:"respawned_players,omitempty"`
}

// BroadcastPayload wraps a test broadcast.
type BroadcastPayload struct {
	Data TestCommand `json:"data"`
}

var payloadFactories = map[EventType]func() any{
	EventGetCurrentTournament: func() any { return &TournamentPayload{} },
	EventSetTournamentName:    func() any { return &TournamentPayload{} },
	EventRenameTournamentName: func() any { return &TournamentPayload{} },
	EventGetTournamentParams:  func() any { return &TournamentParamsPayload{} },
	EventSetTournamentParams:  func() any { return &TournamentParamsPayload{} },
	EventGetTournamentResults: func() any { return &TournamentResultsPayload{} },
	EventSetTournamentResult:  func() any { return &TournamentResultPayload{} },

	EventGetTeamParams:   func() any { return &TeamParamsPayload{} },
	EventSetTeamParams:   func() any { return &TeamParamsPayload{} },
	EventGetPlayerParams: func() any { return &PlayerParamsPayload{} },
	EventSetPlayerParams: func() any { return &PlayerParamsPayload{} },
	EventGetPlayers:      func() any { return &PlayersPayload{} },

	EventGetGame:            func() any { return &GamePayload{} },
	EventClearLiveData:      func() any { return &GamePayload{} },
	EventGameStateChange:    func() any { return &GameStatePayload{} },
	EventMatchSetup:         func() any { return &MatchSetupPayload{} },
	EventSaveResult:         func() any { return &SaveResultPayload{} },
	EventWinnerDetermine:    func() any { return &TeamPayload{} },
	EventLiveAPISocketStats: func() any { return &SocketStatsPayload{} },

	EventTeamName:       func() any { return &TeamPayload{} },
	EventTeamPlacement:  func() any { return &TeamPayload{} },
	EventSquadEliminate: func() any { return &TeamPayload{} },
	EventTeamRespawn:    func() any { return &TeamRespawnPayload{} },

	EventPlayerHash:         func() any { return &PlayerPayload{} },
	EventPlayerName:         func() any { return &PlayerPayload{} },
	EventPlayerConnected:    func() any { return &PlayerPayload{} },
	EventPlayerDisconnected: func() any { return &PlayerPayload{} },
	EventPlayerStats:        func() any { return &PlayerPayload{} },
	EventPlayerCharacter:    func() any { return &PlayerPayload{} },
	EventPlayerDamage:       func() any { return &PlayerPayload{} },
	EventPlayerItem:         func() any { return &PlayerItemPayload{} },
	EventStateAlive:         func() any { return &PlayerPayload{} },
	EventStateDown:          func() any { return &PlayerPayload{} },
	EventStateKilled:        func() any { return &PlayerPayload{} },
	EventStateCollected:     func() any { return &PlayerPayload{} },

	EventObserverSwitch:  func() any { return &ObserverSwitchPayload{} },
	EventTeamBannerState: func() any { return &RecognitionPayload{} },
	EventMapState:        func() any { return &RecognitionPayload{} },

	EventBroadcastObject: func() any { return &BroadcastPayload{} },
}

var validate = validator.New()

// DecodeEvent maps an event name and its raw JSON payload to a validated,
// typed Event. Payloads are returned as pointers to the payload structs.
func DecodeEvent(t EventType, requestID string, data []byte) (Event, error) {
	factory, ok := payloadFactories[t]
	if !ok {
		return Event{}, fmt.Errorf("%w: %q", ErrUnknownEvent, t)
	}
	payload := factory()
	if len(data) > 0 {
		if err := UnmarshalFlex(data, payload); err != nil {
			return Event{}, fmt.Errorf("decode %s: %w", t, err)
		}
	}
	if err := validate.Struct(payload); err != nil {
		return Event{}, fmt.Errorf("validate %s: %w", t, err)
	}
	return Event{Type: t, RequestID: requestID, Payload: payload}, nil
}

// ValidateStruct validates a struct against its validate tags.
func ValidateStruct(s any) error {
	return validate.Struct(s)
}
