package models

// Request is an outbound call to the remote service. Responses come back as
// ordinary feed events carrying the same ID.
type Request struct {
	ID     string    `json:"id"`
	Method EventType `json:"type"`
	Args   any       `json:"data,omitempty"`
}

// Command is an administrative mutation. Commands never touch canonical state
// directly; they are forwarded to the remote service.
type Command interface {
	Method() EventType
}

// SetTournamentParamsCommand replaces the tournament configuration.
type SetTournamentParamsCommand struct {
	Params TournamentParams `json:"params"`
}

func (SetTournamentParamsCommand) Method() EventType { return EventSetTournamentParams }

// SetTournamentResultCommand corrects one stored result wholesale.
type SetTournamentResultCommand struct {
	GameID int    `json:"gameid" validate:"gte=0"`
	Result Result `json:"result" validate:"required"`
}

func (SetTournamentResultCommand) Method() EventType { return EventSetTournamentResult }

// RenameTournamentCommand renames the current tournament.
type RenameTournamentCommand struct {
	Name string `json:"name" validate:"required,max=128"`
}

func (RenameTournamentCommand) Method() EventType { return EventRenameTournamentName }

// SetTeamParamsCommand sets a team display-name override.
type SetTeamParamsCommand struct {
	TeamID int        `json:"teamid" validate:"gte=0,lt=64"`
	Params TeamParams `json:"params"`
}

func (SetTeamParamsCommand) Method() EventType { return EventSetTeamParams }

// SetPlayerParamsCommand sets a player display-name override.
type SetPlayerParamsCommand struct {
	Hash   string       `json:"hash" validate:"required"`
	Params PlayerParams `json:"params"`
}

func (SetPlayerParamsCommand) Method() EventType { return EventSetPlayerParams }

// BroadcastCommand sends an operator test broadcast to every listener.
type BroadcastCommand struct {
	Data TestCommand `json:"data"`
}

func (BroadcastCommand) Method() EventType { return EventBroadcastObject }
