package reconciler

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/openmohaa/overlay-engine/internal/announce"
	"github.com/openmohaa/overlay-engine/internal/models"
)

func (r *Reconciler) announce(kind models.AnnouncementKind, seq int, payload any) {
	r.pub.Announce(models.Announcement{
		ID:      uuid.NewString(),
		Kind:    kind,
		Seq:     seq,
		Payload: payload,
		ReadyAt: r.now(),
	})
}

func pushItem[T any](r *Reconciler, q *announce.Queue[T], kind models.AnnouncementKind, v T) {
	if item, ok := q.Push(v); ok {
		r.announce(kind, item.Seq, item.Value)
	}
	queueLength.WithLabelValues(string(kind)).Set(float64(q.Len()))
}

func completeItem[T any](r *Reconciler, q *announce.Queue[T], kind models.AnnouncementKind) {
	if next, ok := q.CompleteCurrentItem(); ok {
		r.announce(kind, next.Seq, next.Value)
	}
	queueLength.WithLabelValues(string(kind)).Set(float64(q.Len()))
}

func (r *Reconciler) complete(kind models.AnnouncementKind) error {
	switch kind {
	case models.AnnounceSquadEliminated:
		completeItem(r, r.squads, kind)
	case models.AnnounceTeamRespawned:
		completeItem(r, r.respawns, kind)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownQueue, kind)
	}
	return nil
}

func (r *Reconciler) pushSquadEliminated(placement, teamID int) {
	pushItem(r, r.squads, models.AnnounceSquadEliminated, models.SquadEliminated{
		Placement: placement,
		TeamID:    teamID,
		TeamName:  r.teamName(teamID),
	})
}

func (r *Reconciler) pushTeamRespawned(teamID int, player string, respawned []string) {
	pushItem(r, r.respawns, models.AnnounceTeamRespawned, models.TeamRespawned{
		TeamID:           teamID,
		TeamName:         r.teamName(teamID),
		RespawnPlayer:    player,
		RespawnedPlayers: respawned,
	})
}

func (r *Reconciler) resetQueues() {
	r.squads.Reset()
	r.respawns.Reset()
	queueLength.WithLabelValues(string(models.AnnounceSquadEliminated)).Set(0)
	queueLength.WithLabelValues(string(models.AnnounceTeamRespawned)).Set(0)
}

// aliveCounts counts teams still in the game and their players that are up
// or down. Empty team slots are not counted.
func aliveCounts(g *models.Game) (teams, players int) {
	for _, t := range g.Teams {
		if t.Eliminated || len(t.Players) == 0 {
			continue
		}
		teams++
		for _, p := range t.Players {
			if p.State == models.PlayerAlive || p.State == models.PlayerDown {
				players++
			}
		}
	}
	return teams, players
}

func (r *Reconciler) emitAlive() {
	teams, players := aliveCounts(r.game)
	r.global(ParamAliveTeams, teams)
	r.global(ParamAlivePlayers, players)
}
