package models

import "sort"

// SentinelUnranked marks a team as not having taken part in a game.
const SentinelUnranked = 255

// Result is the immutable record of one completed game.
type Result struct {
	Map   string             `json:"map,omitempty"`
	Teams map[int]ResultTeam `json:"teams"`
}

// ResultTeam is one team's line in a Result.
type ResultTeam struct {
	ID        int            `json:"id"`
	Name      string         `json:"name"`
	Placement int            `json:"placement"`
	Kills     int            `json:"kills"`
	Players   []ResultPlayer `json:"players"`
}

// ResultPlayer holds the per-player stats stored with a Result.
type ResultPlayer struct {
	Hash        string `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character"`
	Kills       int    `json:"kills"`
	Assists     int    `json:"assists"`
	DamageDealt int    `json:"damage_dealt"`
	DamageTaken int    `json:"damage_taken"`
}

// TeamIDs returns the ids of the teams in the result, ascending.
func (r Result) TeamIDs() []int {
	ids := make([]int, 0, len(r.Teams))
	for id := range r.Teams {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Clone returns a deep copy of the result.
func (r Result) Clone() Result {
	out := Result{Map: r.Map, Teams: make(map[int]ResultTeam, len(r.Teams))}
	for id, t := range r.Teams {
		t.Players = append([]ResultPlayer(nil), t.Players...)
		out.Teams[id] = t
	}
	return out
}

// TeamResult is the derived standing of a team across the considered games.
// Kills and Placements always have the same length, one entry per game.
type TeamResult struct {
	ID               int           `json:"id"`
	Name             string        `json:"name"`
	Kills            []int         `json:"kills"`
	Placements       []int         `json:"placements"`
	Points           []int         `json:"points"`
	KillPoints       []int         `json:"kill_points"`
	PlacementPoints  []int         `json:"placement_points"`
	OtherPoints      []int         `json:"other_points"`
	CumulativePoints []int         `json:"cumulative_points"`
	TotalPoints      int           `json:"total_points"`
	Rank             int           `json:"rank"`
	MatchPoints      bool          `json:"matchpoints"`
	Winner           bool          `json:"winner"`
	Eliminated       bool          `json:"eliminated"`
	Status           []PlayerState `json:"status,omitempty"`
}

// Games returns the number of games recorded for the team.
func (t *TeamResult) Games() int {
	return len(t.Placements)
}

// Sum returns the sum of the given per-game column.
func Sum(values []int) int {
	total := 0
	for _, v := range values {
		total += v
	}
	return total
}

// TeamResults maps team id to its standing.
type TeamResults map[int]*TeamResult

// IDs returns the team ids, ascending.
func (trs TeamResults) IDs() []int {
	ids := make([]int, 0, len(trs))
	for id := range trs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Clone returns a deep copy.
func (trs TeamResults) Clone() TeamResults {
	if trs == nil {
		return nil
	}
	out := make(TeamResults, len(trs))
	for id, t := range trs {
		c := *t
		c.Kills = append([]int(nil), t.Kills...)
		c.Placements = append([]int(nil), t.Placements...)
		c.Points = append([]int(nil), t.Points...)
		c.KillPoints = append([]int(nil), t.KillPoints...)
		c.PlacementPoints = append([]int(nil), t.PlacementPoints...)
		c.OtherPoints = append([]int(nil), t.OtherPoints...)
		c.CumulativePoints = append([]int(nil), t.CumulativePoints...)
		c.Status = append([]PlayerState(nil), t.Status...)
		out[id] = &c
	}
	return out
}
