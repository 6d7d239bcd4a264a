package models

import (
	"regexp"
	"strconv"
)

// GameState is the lifecycle state of the live match as reported by the feed.
type GameState string

const (
	StateWaitingForPlayers GameState = "WaitingForPlayers"
	StatePreGamePreview    GameState = "PreGamePreview"
	StatePickLoadout       GameState = "PickLoadout"
	StatePrematch          GameState = "Prematch"
	StatePlaying           GameState = "Playing"
	StateResolution        GameState = "Resolution"
	StatePostmatch         GameState = "Postmatch"
)

// IsPrematch reports whether the state precedes the drop.
func (s GameState) IsPrematch() bool {
	switch s {
	case StateWaitingForPlayers, StatePreGamePreview, StatePickLoadout, StatePrematch:
		return true
	}
	return false
}

// IsLive reports whether points from the running game count toward the standings.
func (s GameState) IsLive() bool {
	return s.IsPrematch() || s == StatePlaying
}

// PlayerState is the survival state of a player in the live game.
type PlayerState string

const (
	PlayerAlive     PlayerState = "alive"
	PlayerDown      PlayerState = "down"
	PlayerKilled    PlayerState = "killed"
	PlayerCollected PlayerState = "collected"
)

// ServerInfo describes the server hosting the live game.
type ServerInfo struct {
	Name     string `json:"name,omitempty"`
	Region   string `json:"region,omitempty"`
	Playlist string `json:"playlist,omitempty"`
}

// Game is the snapshot of the current live match.
type Game struct {
	State   GameState  `json:"state"`
	MapName string     `json:"map,omitempty"`
	Server  ServerInfo `json:"server"`
	Teams   []Team     `json:"teams"`
}

// Team is one squad inside the live game.
type Team struct {
	ID         int      `json:"id" validate:"gte=0"`
	Name       string   `json:"name"`
	Kills      int      `json:"kills"`
	Placement  int      `json:"placement"`
	Eliminated bool     `json:"eliminated"`
	Players    []Player `json:"players"`
}

// Player is one participant inside a live team.
type Player struct {
	Hash        string      `json:"hash"`
	Name        string      `json:"name"`
	Character   string      `json:"character"`
	Kills       int         `json:"kills"`
	Assists     int         `json:"assists"`
	DamageDealt int         `json:"damage_dealt"`
	DamageTaken int         `json:"damage_taken"`
	State       PlayerState `json:"state"`
}

// Team returns the team with the given id, growing the slice when needed.
func (g *Game) Team(id int) *Team {
	for len(g.Teams) <= id {
		g.Teams = append(g.Teams, Team{ID: len(g.Teams)})
	}
	return &g.Teams[id]
}

// FindTeam returns the team with the given id or nil.
func (g *Game) FindTeam(id int) *Team {
	if id < 0 || id >= len(g.Teams) {
		return nil
	}
	return &g.Teams[id]
}

// FindPlayer locates a player by hash across all teams.
func (g *Game) FindPlayer(hash string) (*Team, *Player) {
	for i := range g.Teams {
		t := &g.Teams[i]
		for j := range t.Players {
			if t.Players[j].Hash == hash {
				return t, &t.Players[j]
			}
		}
	}
	return nil, nil
}

// Player returns the player with the given hash in the team, adding it when absent.
func (t *Team) Player(hash string) *Player {
	for i := range t.Players {
		if t.Players[i].Hash == hash {
			return &t.Players[i]
		}
	}
	t.Players = append(t.Players, Player{Hash: hash, State: PlayerAlive})
	return &t.Players[len(t.Players)-1]
}

// Clone returns a deep copy of the game.
func (g *Game) Clone() *Game {
	if g == nil {
		return nil
	}
	out := *g
	out.Teams = make([]Team, len(g.Teams))
	for i, t := range g.Teams {
		out.Teams[i] = t
		out.Teams[i].Players = append([]Player(nil), t.Players...)
	}
	return &out
}

var nameSuffix = regexp.MustCompile(`@[0-9]+$`)

// DisplayName strips the lobby suffix ("name@123") some clients append to team names.
func DisplayName(name string) string {
	return nameSuffix.ReplaceAllString(name, "")
}

// DefaultTeamName is the fallback label for an unnamed team slot.
func DefaultTeamName(id int) string {
	return "Team " + strconv.Itoa(id+1)
}
