package scoring

import (
	"sort"

	"github.com/openmohaa/overlay-engine/internal/models"
)

// Mode returns the most frequent value. On a tie the value that reached the
// highest count first wins. Returns the zero value for an empty slice.
func Mode[T comparable](values []T) T {
	counts := make(map[T]int, len(values))
	var best T
	bestCount := 0
	for _, v := range values {
		counts[v]++
		if c := counts[v]; c > bestCount {
			best, bestCount = v, c
		}
	}
	return best
}

// PlayerTotal is a player's aggregate across every recorded game.
type PlayerTotal struct {
	Hash        string `json:"hash"`
	Name        string `json:"name"`
	TeamID      int    `json:"team_id"`
	TeamName    string `json:"team_name"`
	Character   string `json:"character"`
	Games       int    `json:"games"`
	Kills       int    `json:"kills"`
	Assists     int    `json:"assists"`
	DamageDealt int    `json:"damage_dealt"`
	DamageTaken int    `json:"damage_taken"`
}

// TotalPlayers folds per-player stats across results. Name, team and
// character are the most frequent values seen for the player.
func TotalPlayers(results []models.Result) map[string]*PlayerTotal {
	type seen struct {
		names      []string
		teams      []int
		characters []string
	}
	totals := make(map[string]*PlayerTotal)
	history := make(map[string]*seen)

	for _, result := range results {
		for _, id := range result.TeamIDs() {
			team := result.Teams[id]
			for _, p := range team.Players {
				pt, ok := totals[p.Hash]
				if !ok {
					pt = &PlayerTotal{Hash: p.Hash}
					totals[p.Hash] = pt
					history[p.Hash] = &seen{}
				}
				h := history[p.Hash]
				h.names = append(h.names, p.Name)
				h.teams = append(h.teams, id)
				h.characters = append(h.characters, p.Character)

				pt.Games++
				pt.Kills += p.Kills
				pt.Assists += p.Assists
				pt.DamageDealt += p.DamageDealt
				pt.DamageTaken += p.DamageTaken
			}
		}
	}

	teamNames := latestTeamNames(results)
	for hash, pt := range totals {
		h := history[hash]
		pt.Name = Mode(h.names)
		pt.TeamID = Mode(h.teams)
		pt.Character = Mode(h.characters)
		pt.TeamName = teamNames[pt.TeamID]
	}
	return totals
}

// TeamDamage sums damage dealt and taken per team across results.
func TeamDamage(results []models.Result) (dealt, taken map[int]int) {
	dealt = make(map[int]int)
	taken = make(map[int]int)
	for _, result := range results {
		for id, team := range result.Teams {
			for _, p := range team.Players {
				dealt[id] += p.DamageDealt
				taken[id] += p.DamageTaken
			}
		}
	}
	return dealt, taken
}

// SortedHashes returns the player hashes in a stable order.
func SortedHashes(totals map[string]*PlayerTotal) []string {
	out := make([]string, 0, len(totals))
	for h := range totals {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}

func latestTeamNames(results []models.Result) map[int]string {
	names := make(map[int]string)
	for _, result := range results {
		for id, team := range result.Teams {
			if team.Name != "" {
				names[id] = team.Name
			}
		}
	}
	return names
}
