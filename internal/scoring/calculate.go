package scoring

import (
	"github.com/openmohaa/overlay-engine/internal/models"
)

// ApplyMatchPoints flags every team whose cumulative points reached the
// threshold in one of the first completedGames games. A live column past
// completedGames is not counted.
func ApplyMatchPoints(trs models.TeamResults, threshold, completedGames int) {
	if threshold <= 0 {
		return
	}
	for _, tr := range trs {
		for g := 0; g < completedGames && g < len(tr.CumulativePoints); g++ {
			if tr.CumulativePoints[g] >= threshold {
				tr.MatchPoints = true
				break
			}
		}
	}
}

// DetermineWinner scans completed games from index 1 in order and returns the
// first team that went into game i on match point (cumulative points after game
// i-1 at or above the threshold) and placed 1st in game i. A team that crosses
// the threshold in game i and also wins game i is not a winner.
func DetermineWinner(trs models.TeamResults, threshold, completedGames int) (int, bool) {
	if threshold <= 0 {
		return 0, false
	}
	ids := trs.IDs()
	for i := 1; i < completedGames; i++ {
		for _, id := range ids {
			tr := trs[id]
			if i >= len(tr.Placements) || i-1 >= len(tr.CumulativePoints) {
				continue
			}
			if tr.CumulativePoints[i-1] >= threshold && tr.Placements[i] == 1 {
				return id, true
			}
		}
	}
	return 0, false
}

// Calculate runs the whole standings pipeline over the result history. When
// live is non-nil the running game is added as one more column; it earns
// points but never counts toward match point or the winner scan.
func Calculate(results []models.Result, live *models.Game, m models.CalcMethod) (models.TeamResults, error) {
	trs := ResultsToTeamResults(results)
	completed := len(results)
	if live != nil {
		AppendToTeamResults(trs, live, completed)
	}

	for _, id := range trs.IDs() {
		tr := trs[id]
		advance := AdvancePoints(id, m)
		running := 0
		for g := 0; g < len(tr.Kills) && g < len(tr.Placements); g++ {
			p, err := CalcPoints(g, tr.Placements[g], tr.Kills[g], m)
			if err != nil {
				return nil, err
			}
			running += p.Total
			tr.Points = append(tr.Points, p.Total)
			tr.KillPoints = append(tr.KillPoints, p.Kills)
			tr.PlacementPoints = append(tr.PlacementPoints, p.Placement)
			tr.OtherPoints = append(tr.OtherPoints, p.Other)
			tr.CumulativePoints = append(tr.CumulativePoints, advance+running)
		}
		tr.TotalPoints = advance + running
	}

	ApplyMatchPoints(trs, m.MatchPoints, completed)
	if id, ok := DetermineWinner(trs, m.MatchPoints, completed); ok {
		trs[id].Winner = true
	}

	RankTeamResults(trs)
	return trs, nil
}

// SingleResult scores one game on its own and ranks the teams within it.
func SingleResult(result models.Result, gameIndex int, m models.CalcMethod) (models.TeamResults, error) {
	trs := make(models.TeamResults, len(result.Teams))
	for _, id := range result.TeamIDs() {
		team := result.Teams[id]
		p, err := CalcPoints(gameIndex, team.Placement, team.Kills, m)
		if err != nil {
			return nil, err
		}
		tr := newTeamResult(id, team.Name)
		tr.Kills = append(tr.Kills, team.Kills)
		tr.Placements = append(tr.Placements, team.Placement)
		tr.Points = append(tr.Points, p.Total)
		tr.KillPoints = append(tr.KillPoints, p.Kills)
		tr.PlacementPoints = append(tr.PlacementPoints, p.Placement)
		tr.OtherPoints = append(tr.OtherPoints, p.Other)
		tr.CumulativePoints = append(tr.CumulativePoints, p.Total)
		tr.TotalPoints = p.Total
		trs[id] = tr
	}
	RankTeamResults(trs)
	return trs, nil
}
