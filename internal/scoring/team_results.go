package scoring

import "github.com/openmohaa/overlay-engine/internal/models"

func newTeamResult(id int, name string) *models.TeamResult {
	return &models.TeamResult{
		ID:               id,
		Name:             name,
		Kills:            []int{},
		Placements:       []int{},
		Points:           []int{},
		KillPoints:       []int{},
		PlacementPoints:  []int{},
		OtherPoints:      []int{},
		CumulativePoints: []int{},
		Rank:             -1,
	}
}

// padTo gap-fills a team up to n games with zero kills and the sentinel placement.
func padTo(tr *models.TeamResult, n int) {
	for len(tr.Kills) < n {
		tr.Kills = append(tr.Kills, 0)
		tr.Placements = append(tr.Placements, models.SentinelUnranked)
	}
}

// ResultsToTeamResults folds the result history into per-team arrays. Games a
// team did not play are filled with zero kills and SentinelUnranked, so every
// team ends with one entry per result.
func ResultsToTeamResults(results []models.Result) models.TeamResults {
	trs := make(models.TeamResults)
	for index, result := range results {
		for _, id := range result.TeamIDs() {
			team := result.Teams[id]
			tr, ok := trs[id]
			if !ok {
				tr = newTeamResult(id, team.Name)
				trs[id] = tr
			}
			padTo(tr, index)
			tr.Kills = append(tr.Kills, team.Kills)
			tr.Placements = append(tr.Placements, team.Placement)
		}
	}
	for _, tr := range trs {
		padTo(tr, len(results))
	}
	return trs
}

// AppendToTeamResults adds the live game as column gameIndex. Only teams with
// players take part; a team still alive has no placement yet and is recorded
// as unranked so only its kills score. Returns whether any team was added.
func AppendToTeamResults(trs models.TeamResults, game *models.Game, gameIndex int) bool {
	if game == nil {
		return false
	}
	added := false
	for _, src := range game.Teams {
		if len(src.Players) == 0 {
			continue
		}
		tr, ok := trs[src.ID]
		if !ok {
			tr = newTeamResult(src.ID, src.Name)
			trs[src.ID] = tr
		}
		padTo(tr, gameIndex)

		placement := src.Placement
		if placement <= 0 {
			placement = models.SentinelUnranked
		}
		tr.Kills = append(tr.Kills, src.Kills)
		tr.Placements = append(tr.Placements, placement)
		tr.Eliminated = src.Eliminated
		for _, p := range src.Players {
			tr.Status = append(tr.Status, p.State)
		}
		added = true
	}
	if added {
		for _, tr := range trs {
			padTo(tr, gameIndex+1)
		}
	}
	return added
}
