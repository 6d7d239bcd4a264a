package reconciler

import "github.com/openmohaa/overlay-engine/internal/models"

// teamName resolves the display name of a team: operator override, in-game
// name, latest recorded result, then the slot default.
func (r *Reconciler) teamName(id int) string {
	if p, ok := r.teamParams[id]; ok && p.Name != "" {
		return p.Name
	}
	if t := r.game.FindTeam(id); t != nil && t.Name != "" {
		return models.DisplayName(t.Name)
	}
	for i := len(r.results) - 1; i >= 0; i-- {
		if t, ok := r.results[i].Teams[id]; ok && t.Name != "" {
			return t.Name
		}
	}
	return models.DefaultTeamName(id)
}

// playerName resolves the display name of a player: operator override, then
// in-game name, then fallback.
func (r *Reconciler) playerName(hash, fallback string) string {
	if hash == "" {
		return fallback
	}
	if p, ok := r.playerParams[hash]; ok && p.Name != "" {
		return p.Name
	}
	if _, p := r.game.FindPlayer(hash); p != nil && p.Name != "" {
		return p.Name
	}
	return fallback
}
