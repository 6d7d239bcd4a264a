package reconciler

import (
	"strconv"

	"github.com/openmohaa/overlay-engine/internal/models"
)

// Global parameters
const (
	ParamConnectionStatus = "connection-status"
	ParamTournamentID     = "tournament-id"
	ParamTournamentName   = "tournament-name"
	ParamGameState        = "game-state"
	ParamMapName          = "map-name"
	ParamSocketCount      = "liveapi-connection-count"
	ParamResultsCount     = "results-count"
	ParamGameCount        = "game-count"
	ParamAliveTeams       = "alive-teams"
	ParamAlivePlayers     = "alive-players"
	ParamRankOrder        = "rank-order"
	ParamWinnerTeamID     = "winner-team-id"
	ParamWinnerTeamName   = "winner-team-name"
	ParamSingleMapName    = "single-map-name"
	ParamVisible          = "visible"
	ParamForceHide        = "forcehide"
)

// Team parameters
const (
	ParamTeamName                  = "team-name"
	ParamTeamKills                 = "team-kills"
	ParamTeamExists                = "team-exists"
	ParamTeamEliminated            = "team-eliminated"
	ParamTeamTotalRank             = "team-total-rank"
	ParamTeamTotalKillPoints       = "team-total-kill-points"
	ParamTeamTotalPlacementPoints  = "team-total-placement-points"
	ParamTeamTotalPoints           = "team-total-points"
	ParamTeamMatchPoints           = "team-matchpoints"
	ParamTeamWinner                = "team-winner"
	ParamTeamTotalDamageDealt      = "team-total-damage-dealt"
	ParamTeamTotalDamageTaken      = "team-total-damage-taken"
	ParamTeamSinglePlacement       = "team-single-placement"
	ParamTeamSingleKillPoints      = "team-single-kill-points"
	ParamTeamSinglePlacementPoints = "team-single-placement-points"
	ParamTeamSinglePoints          = "team-single-points"
	ParamTeamSingleRank            = "team-single-rank"
	ParamTeamSingleDamageDealt     = "team-single-damage-dealt"
	ParamTeamSingleDamageTaken     = "team-single-damage-taken"
)

// Camera-team mirrors
const (
	ParamCameraTeamID          = "camera-team-id"
	ParamCameraTeamName        = "camera-team-name"
	ParamCameraTeamKills       = "camera-team-kills"
	ParamCameraTeamRank        = "camera-team-rank"
	ParamCameraTeamTotalPoints = "camera-team-total-points"
	ParamCameraTeamMatchPoints = "camera-team-matchpoints"
	ParamCameraTeamWinner      = "camera-team-winner"
	ParamCameraPlayerID        = "camera-player-id"
	ParamCameraPlayerPrefix    = "camera-player-"
)

// Player parameter suffixes. Live values are published as "player-<suffix>",
// result views as "player-single-<suffix>" and "player-total-<suffix>".
const (
	PlayerTeam        = "team"
	PlayerName        = "name"
	PlayerCharacter   = "character"
	PlayerKills       = "kills"
	PlayerState       = "state"
	PlayerDamageDealt = "damage-dealt"
	PlayerDamageTaken = "damage-taken"
	PlayerActive      = "active"
	PlayerItemPrefix  = "item-"
)

var viewPlayerParams = []string{PlayerTeam, PlayerName, PlayerCharacter, PlayerKills, PlayerDamageDealt, PlayerDamageTaken}

var singleTeamParams = []string{
	ParamTeamSinglePlacement,
	ParamTeamSingleKillPoints,
	ParamTeamSinglePlacementPoints,
	ParamTeamSinglePoints,
	ParamTeamSingleRank,
	ParamTeamSingleDamageDealt,
	ParamTeamSingleDamageTaken,
}

var totalTeamParams = []string{ParamTeamTotalDamageDealt, ParamTeamTotalDamageTaken}

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (r *Reconciler) global(name string, v any) {
	r.pub.Publish(models.ParamUpdate{Scope: models.ScopeGlobal, Name: name, Value: v})
}

func (r *Reconciler) overlayParam(overlay, name string, v any) {
	r.pub.Publish(models.ParamUpdate{Scope: models.ScopeGlobal, ScopeID: overlay, Name: name, Value: v})
}

func (r *Reconciler) team(id int, name string, v any) {
	r.pub.Publish(models.ParamUpdate{Scope: models.ScopeTeam, ScopeID: strconv.Itoa(id), Name: name, Value: v})
}

func (r *Reconciler) cameraTeam(name string, v any) {
	r.pub.Publish(models.ParamUpdate{Scope: models.ScopeCameraTeam, Name: name, Value: v})
}

func (r *Reconciler) player(hash, name string, v any) {
	r.pub.Publish(models.ParamUpdate{Scope: models.ScopePlayer, ScopeID: hash, Name: name, Value: v})
}

// cameraPlayer publishes a row of the followed team's player list. An empty
// hash addresses the followed player itself.
func (r *Reconciler) cameraPlayer(hash, name string, v any) {
	r.pub.Publish(models.ParamUpdate{Scope: models.ScopeCameraPlayer, ScopeID: hash, Name: name, Value: v})
}

// teamParam publishes a team value and mirrors it when the camera follows the team.
func (r *Reconciler) teamParam(id int, name, mirror string, v any) {
	r.team(id, name, v)
	if mirror != "" && id == r.camera.TeamID {
		r.cameraTeam(mirror, v)
	}
}

// livePlayerParam publishes a live player value and its camera mirrors.
func (r *Reconciler) livePlayerParam(hash string, teamID int, suffix string, v any) {
	r.player(hash, "player-"+suffix, v)
	if teamID < 0 || teamID != r.camera.TeamID {
		return
	}
	r.cameraPlayer(hash, suffix, v)
	if hash == r.camera.PlayerHash {
		r.cameraPlayer("", ParamCameraPlayerPrefix+suffix, v)
	}
}

func (r *Reconciler) publishTeamName(id int) {
	r.teamParam(id, ParamTeamName, ParamCameraTeamName, r.teamName(id))
}
