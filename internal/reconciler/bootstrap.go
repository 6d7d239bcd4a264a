package reconciler

import (
	"context"
	"time"

	"github.com/openmohaa/overlay-engine/internal/models"
)

// bootstrapRequests are sent on every (re)connect to rebuild the state.
var bootstrapRequests = []models.EventType{
	models.EventGetCurrentTournament,
	models.EventGetPlayers,
	models.EventGetGame,
	models.EventGetTournamentResults,
	models.EventGetTournamentParams,
}

// startBootstrap re-syncs after a connection opens. Recalculation is held
// back until every request answered or the timeout fired.
func (r *Reconciler) startBootstrap() {
	if r.bootstrapStop != nil {
		r.bootstrapStop()
	}
	r.bootstrapping = true
	r.bootstrapGen++
	r.pending = make(map[models.EventType]string, len(bootstrapRequests))

	for _, method := range bootstrapRequests {
		id, err := r.request(method, nil)
		if err != nil {
			continue
		}
		r.pending[method] = id
	}
	if len(r.pending) == 0 {
		r.finishBootstrap("failed")
		return
	}

	gen := r.bootstrapGen
	timer := time.AfterFunc(r.bootstrapTimeout, func() {
		r.post(context.Background(), bootstrapTimeout{gen: gen})
	})
	r.bootstrapStop = timer.Stop
	r.logger.Infow("Bootstrap started", "requests", len(r.pending))
}

// resolvePending marks a bootstrap response as received.
func (r *Reconciler) resolvePending(t models.EventType) {
	if !r.bootstrapping {
		return
	}
	if _, ok := r.pending[t]; !ok {
		return
	}
	delete(r.pending, t)
	if len(r.pending) == 0 {
		r.finishBootstrap("complete")
	}
}

func (r *Reconciler) finishBootstrap(outcome string) {
	if r.bootstrapStop != nil {
		r.bootstrapStop()
		r.bootstrapStop = nil
	}
	r.bootstrapping = false
	r.pending = make(map[models.EventType]string)
	bootstraps.WithLabelValues(outcome).Inc()
	r.logger.Infow("Bootstrap finished", "outcome", outcome)

	r.recalc()
	r.rebuildViews()
	r.emitCounts()
	r.emitVisibility()
}

// requestTournamentData fetches everything scoped to the current tournament.
func (r *Reconciler) requestTournamentData() {
	for i := 0; i < r.teamSlots; i++ {
		r.request(models.EventGetTeamParams, map[string]int{"teamid": i})
	}
	r.request(models.EventGetTournamentResults, nil)
	r.request(models.EventGetTournamentParams, nil)
}
