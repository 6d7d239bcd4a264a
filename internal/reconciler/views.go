package reconciler

import (
	"sort"

	"github.com/openmohaa/overlay-engine/internal/scoring"
)

const (
	singlePrefix = "player-single-"
	totalPrefix  = "player-total-"
)

// rebuildViews republishes the last-game and all-games result views and the
// names of every team in the standings.
func (r *Reconciler) rebuildViews() {
	if r.bootstrapping {
		return
	}
	r.rebuildSingleView()
	r.rebuildTotalView()
	for _, id := range r.teamResults.IDs() {
		r.publishTeamName(id)
	}
}

func (r *Reconciler) rebuildSingleView() {
	index := make(map[string]int)
	teams := make(map[int]bool)
	defer func() {
		r.clearStale(singlePrefix, r.singleIndex, index)
		r.clearStaleTeams(singleTeamParams, r.singleTeams, teams)
		r.singleIndex = index
		r.singleTeams = teams
	}()

	if len(r.results) == 0 {
		return
	}
	gameIndex := len(r.results) - 1
	result := r.results[gameIndex]
	single, err := scoring.SingleResult(result, gameIndex, r.params.CalcMethod)
	if err != nil {
		r.logger.Warnw("Last result view not rebuilt", "game", gameIndex, "error", err)
		return
	}

	r.global(ParamSingleMapName, result.Map)
	for _, id := range result.TeamIDs() {
		team := result.Teams[id]
		tr := single[id]
		teams[id] = true
		r.team(id, ParamTeamSinglePlacement, team.Placement)
		r.team(id, ParamTeamSingleKillPoints, tr.KillPoints[0])
		r.team(id, ParamTeamSinglePlacementPoints, tr.PlacementPoints[0])
		r.team(id, ParamTeamSinglePoints, tr.TotalPoints)
		r.team(id, ParamTeamSingleRank, tr.Rank+1)

		dealt, taken := 0, 0
		for _, p := range team.Players {
			index[p.Hash] = id
			r.player(p.Hash, singlePrefix+PlayerTeam, id)
			r.player(p.Hash, singlePrefix+PlayerName, r.playerName(p.Hash, p.Name))
			r.player(p.Hash, singlePrefix+PlayerCharacter, p.Character)
			r.player(p.Hash, singlePrefix+PlayerKills, p.Kills)
			r.player(p.Hash, singlePrefix+PlayerDamageDealt, p.DamageDealt)
			r.player(p.Hash, singlePrefix+PlayerDamageTaken, p.DamageTaken)
			dealt += p.DamageDealt
			taken += p.DamageTaken
		}
		r.team(id, ParamTeamSingleDamageDealt, dealt)
		r.team(id, ParamTeamSingleDamageTaken, taken)
	}
}

func (r *Reconciler) rebuildTotalView() {
	index := make(map[string]int)
	teams := make(map[int]bool)
	defer func() {
		r.clearStale(totalPrefix, r.totalIndex, index)
		r.clearStaleTeams(totalTeamParams, r.totalTeams, teams)
		r.totalIndex = index
		r.totalTeams = teams
	}()

	if len(r.results) == 0 {
		return
	}
	totals := scoring.TotalPlayers(r.results)
	for _, hash := range scoring.SortedHashes(totals) {
		pt := totals[hash]
		index[hash] = pt.TeamID
		r.player(hash, totalPrefix+PlayerTeam, pt.TeamID)
		r.player(hash, totalPrefix+PlayerName, r.playerName(hash, pt.Name))
		r.player(hash, totalPrefix+PlayerCharacter, pt.Character)
		r.player(hash, totalPrefix+PlayerKills, pt.Kills)
		r.player(hash, totalPrefix+PlayerDamageDealt, pt.DamageDealt)
		r.player(hash, totalPrefix+PlayerDamageTaken, pt.DamageTaken)
	}

	dealt, taken := scoring.TeamDamage(r.results)
	ids := make([]int, 0, len(dealt))
	for id := range dealt {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		teams[id] = true
		r.team(id, ParamTeamTotalDamageDealt, dealt[id])
		r.team(id, ParamTeamTotalDamageTaken, taken[id])
	}
}

// clearStale blanks the view rows of players that dropped out of the index.
func (r *Reconciler) clearStale(prefix string, old, current map[string]int) {
	for hash := range old {
		if _, ok := current[hash]; ok {
			continue
		}
		for _, suffix := range viewPlayerParams {
			r.player(hash, prefix+suffix, nil)
		}
	}
}

// clearStaleTeams blanks the view rows of teams that dropped out of a view.
func (r *Reconciler) clearStaleTeams(params []string, old, current map[int]bool) {
	ids := make([]int, 0, len(old))
	for id := range old {
		if !current[id] {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	for _, id := range ids {
		for _, name := range params {
			r.team(id, name, nil)
		}
	}
}

// renameInViews refreshes a player's name in whichever result views list them.
func (r *Reconciler) renameInViews(hash, fallback string) {
	name := r.playerName(hash, fallback)
	if _, ok := r.singleIndex[hash]; ok {
		r.player(hash, singlePrefix+PlayerName, name)
	}
	if _, ok := r.totalIndex[hash]; ok {
		r.player(hash, totalPrefix+PlayerName, name)
	}
}
