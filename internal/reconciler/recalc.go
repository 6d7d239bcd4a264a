package reconciler

import (
	"sort"
	"time"

	"github.com/openmohaa/overlay-engine/internal/models"
	"github.com/openmohaa/overlay-engine/internal/scoring"
)

// recalc recomputes the standings and publishes the fields that changed
// since the previous run. On invalid input the previous standings stay.
func (r *Reconciler) recalc() {
	if r.bootstrapping {
		return
	}
	start := time.Now()
	defer func() { recalcDuration.Observe(time.Since(start).Seconds()) }()

	var live *models.Game
	if !r.resultsOnly {
		live = r.game
	}
	trs, err := scoring.Calculate(r.results, live, r.params.CalcMethod)
	if err != nil {
		recalcErrors.Inc()
		r.logger.Warnw("Standings not recomputed", "results", len(r.results), "live", live != nil, "error", err)
		return
	}
	recalculations.Inc()

	rankChanged := r.diff(trs)
	r.teamResults = trs
	if rankChanged {
		r.global(ParamRankOrder, rankOrder(trs))
	}
}

// diff publishes rank, points, match point and winner for each team whose
// value differs from the cached standings. A team missing from the cache
// differs on every field.
func (r *Reconciler) diff(trs models.TeamResults) (rankChanged bool) {
	for _, id := range trs.IDs() {
		tr := trs[id]
		prev, known := r.teamResults[id]

		if !known || prev.Rank != tr.Rank {
			r.teamParam(id, ParamTeamTotalRank, ParamCameraTeamRank, tr.Rank+1)
			rankChanged = true
		}
		if !known || prev.TotalPoints != tr.TotalPoints {
			r.team(id, ParamTeamTotalKillPoints, models.Sum(tr.KillPoints))
			r.team(id, ParamTeamTotalPlacementPoints, models.Sum(tr.PlacementPoints))
			r.teamParam(id, ParamTeamTotalPoints, ParamCameraTeamTotalPoints, tr.TotalPoints)
		}
		if !known || prev.MatchPoints != tr.MatchPoints {
			r.teamParam(id, ParamTeamMatchPoints, ParamCameraTeamMatchPoints, flag(tr.MatchPoints))
		}
		if !known || prev.Winner != tr.Winner {
			r.teamParam(id, ParamTeamWinner, ParamCameraTeamWinner, flag(tr.Winner))
		}
	}
	return rankChanged
}

// rankOrder lists team ids from first to last place.
func rankOrder(trs models.TeamResults) []int {
	ids := trs.IDs()
	sort.SliceStable(ids, func(i, j int) bool {
		return trs[ids[i]].Rank < trs[ids[j]].Rank
	})
	return ids
}

// setResultsOnly switches between results-only and live standings. A change
// recomputes and republishes the game count.
func (r *Reconciler) setResultsOnly(v bool) {
	if r.resultsOnly == v {
		return
	}
	r.logger.Infow("Standings mode changed", "results_only", v)
	r.resultsOnly = v
	r.recalc()
	r.emitCounts()
}

func (r *Reconciler) emitCounts() {
	r.global(ParamResultsCount, len(r.results))
	count := len(r.results)
	if !r.resultsOnly {
		count++
	}
	r.global(ParamGameCount, count)
}
