package reconciler

import "github.com/openmohaa/overlay-engine/internal/models"

// followsObserver reports whether an observer switch drives our camera.
func (r *Reconciler) followsObserver(p *models.ObserverSwitchPayload) bool {
	if r.observerHash != "" {
		return p.Observer.Hash == r.observerHash
	}
	return p.Own
}

// updateCamera points the camera at a team and player and republishes every
// camera mirror from the live game and the cached standings.
func (r *Reconciler) updateCamera(teamID int, hash string) {
	if r.camera.TeamID != teamID {
		r.camera.TeamID = teamID
		r.cameraTeam(ParamCameraTeamID, teamID+1)
	}
	if r.camera.PlayerHash != hash {
		r.camera.PlayerHash = hash
		r.cameraPlayer("", ParamCameraPlayerID, hash)
	}

	r.cameraTeam(ParamCameraTeamName, r.teamName(teamID))
	r.cameraPlayer("", ParamCameraPlayerPrefix+PlayerName, r.playerName(hash, ""))

	if team := r.game.FindTeam(teamID); team != nil {
		r.cameraTeam(ParamCameraTeamKills, team.Kills)
		for _, p := range team.Players {
			r.cameraPlayer(p.Hash, PlayerName, r.playerName(p.Hash, p.Name))
			r.cameraPlayer(p.Hash, PlayerKills, p.Kills)
			r.cameraPlayer(p.Hash, PlayerState, string(p.State))
			r.cameraPlayer(p.Hash, PlayerActive, flag(p.Hash == hash))
			if p.Hash == hash {
				r.cameraPlayer("", ParamCameraPlayerPrefix+PlayerKills, p.Kills)
			}
		}
	}

	if tr, ok := r.teamResults[teamID]; ok {
		r.cameraTeam(ParamCameraTeamRank, tr.Rank+1)
		r.cameraTeam(ParamCameraTeamTotalPoints, tr.TotalPoints)
		r.cameraTeam(ParamCameraTeamMatchPoints, flag(tr.MatchPoints))
		r.cameraTeam(ParamCameraTeamWinner, flag(tr.Winner))
	}
}
