package reconciler

import (
	"reflect"
	"sort"

	"github.com/openmohaa/overlay-engine/internal/feed"
	"github.com/openmohaa/overlay-engine/internal/models"
)

var playerStates = map[models.EventType]models.PlayerState{
	models.EventStateAlive:     models.PlayerAlive,
	models.EventStateDown:      models.PlayerDown,
	models.EventStateKilled:    models.PlayerKilled,
	models.EventStateCollected: models.PlayerCollected,
}

func (r *Reconciler) handleFeed(ev feed.Event) {
	switch ev.Kind {
	case feed.EventOpen:
		r.setConnection("open")
		r.startBootstrap()
	case feed.EventClose:
		r.setConnection("close")
	case feed.EventError:
		r.setConnection("error")
	case feed.EventMessage:
		r.handle(ev.Message)
	}
}

func (r *Reconciler) setConnection(status string) {
	r.connection = status
	r.global(ParamConnectionStatus, status)
}

// payloadOf asserts the payload type decoded for an event.
func payloadOf[T any](r *Reconciler, ev models.Event) (*T, bool) {
	p, ok := ev.Payload.(*T)
	if !ok || p == nil {
		r.logger.Warnw("Unexpected event payload", "type", ev.Type, "payload", reflect.TypeOf(ev.Payload))
		return nil, false
	}
	return p, true
}

// handle applies one decoded feed event.
func (r *Reconciler) handle(ev models.Event) {
	eventsHandled.WithLabelValues(string(ev.Type)).Inc()

	switch ev.Type {
	case models.EventGetCurrentTournament, models.EventSetTournamentName:
		if p, ok := payloadOf[models.TournamentPayload](r, ev); ok {
			r.onTournament(p.ID, p.Name)
		}
	case models.EventRenameTournamentName:
		if p, ok := payloadOf[models.TournamentPayload](r, ev); ok && p.Result {
			r.setTournamentName(p.Name)
		}

	case models.EventGetTournamentParams:
		if p, ok := payloadOf[models.TournamentParamsPayload](r, ev); ok {
			r.onParams(p.Params)
		}
	case models.EventSetTournamentParams:
		if p, ok := payloadOf[models.TournamentParamsPayload](r, ev); ok && p.Result {
			r.onParams(p.Params)
		}
	case models.EventGetTournamentResults:
		if p, ok := payloadOf[models.TournamentResultsPayload](r, ev); ok {
			r.onResults(p.Results)
		}
	case models.EventSetTournamentResult:
		if p, ok := payloadOf[models.TournamentResultPayload](r, ev); ok && p.SetResult {
			r.request(models.EventGetTournamentResults, nil)
		}

	case models.EventGetTeamParams:
		if p, ok := payloadOf[models.TeamParamsPayload](r, ev); ok {
			r.onTeamParams(p.TeamID, p.Params)
		}
	case models.EventSetTeamParams:
		if p, ok := payloadOf[models.TeamParamsPayload](r, ev); ok && p.Result {
			r.onTeamParams(p.TeamID, p.Params)
		}
	case models.EventGetPlayerParams:
		if p, ok := payloadOf[models.PlayerParamsPayload](r, ev); ok {
			r.onPlayerParams(p.Hash, p.Params)
		}
	case models.EventSetPlayerParams:
		if p, ok := payloadOf[models.PlayerParamsPayload](r, ev); ok && p.Result {
			r.onPlayerParams(p.Hash, p.Params)
		}
	case models.EventGetPlayers:
		if p, ok := payloadOf[models.PlayersPayload](r, ev); ok {
			hashes := make([]string, 0, len(p.Players))
			for hash := range p.Players {
				hashes = append(hashes, hash)
			}
			sort.Strings(hashes)
			for _, hash := range hashes {
				r.onPlayerParams(hash, p.Players[hash])
			}
		}

	case models.EventGetGame:
		if p, ok := payloadOf[models.GamePayload](r, ev); ok {
			r.onGame(p.Game, false)
		}
	case models.EventClearLiveData:
		if p, ok := payloadOf[models.GamePayload](r, ev); ok {
			r.onGame(p.Game, true)
		}
	case models.EventGameStateChange:
		if p, ok := payloadOf[models.GameStatePayload](r, ev); ok {
			r.setGameState(p.State)
		}
	case models.EventMatchSetup:
		if p, ok := payloadOf[models.MatchSetupPayload](r, ev); ok {
			r.game.MapName = p.Map
			r.game.Server = p.Server
			r.global(ParamMapName, p.Map)
		}
	case models.EventSaveResult:
		if p, ok := payloadOf[models.SaveResultPayload](r, ev); ok {
			r.onSaveResult(p.GameID, p.Result)
		}
	case models.EventWinnerDetermine:
		if p, ok := payloadOf[models.TeamPayload](r, ev); ok {
			r.onWinner(p.Team.ID)
		}
	case models.EventLiveAPISocketStats:
		if p, ok := payloadOf[models.SocketStatsPayload](r, ev); ok {
			r.global(ParamSocketCount, p.Connections)
		}

	case models.EventTeamName:
		if p, ok := payloadOf[models.TeamPayload](r, ev); ok {
			r.game.Team(p.Team.ID).Name = p.Team.Name
			r.publishTeamName(p.Team.ID)
		}
	case models.EventTeamPlacement:
		if p, ok := payloadOf[models.TeamPayload](r, ev); ok {
			r.game.Team(p.Team.ID).Placement = p.Team.Placement
			r.recalc()
		}
	case models.EventSquadEliminate:
		if p, ok := payloadOf[models.TeamPayload](r, ev); ok {
			r.onSquadEliminate(p.Team)
		}
	case models.EventTeamRespawn:
		if p, ok := payloadOf[models.TeamRespawnPayload](r, ev); ok {
			r.onTeamRespawn(p)
		}

	case models.EventPlayerHash, models.EventPlayerConnected:
		if p, ok := payloadOf[models.PlayerPayload](r, ev); ok {
			r.onPlayerJoined(p, ev.Type == models.EventPlayerConnected)
		}
	case models.EventPlayerDisconnected:
		if p, ok := payloadOf[models.PlayerPayload](r, ev); ok && !p.Player.CanReconnect {
			r.setPlayerState(p.Player.Hash, models.PlayerKilled)
		}
	case models.EventPlayerStats:
		if p, ok := payloadOf[models.PlayerPayload](r, ev); ok {
			r.onPlayerStats(p)
		}
	case models.EventPlayerName:
		if p, ok := payloadOf[models.PlayerPayload](r, ev); ok {
			t, pl := r.livePlayer(p)
			pl.Name = p.Player.Name
			r.livePlayerParam(pl.Hash, t.ID, PlayerName, r.playerName(pl.Hash, pl.Name))
			r.renameInViews(pl.Hash, pl.Name)
		}
	case models.EventPlayerCharacter:
		if p, ok := payloadOf[models.PlayerPayload](r, ev); ok {
			t, pl := r.livePlayer(p)
			pl.Character = p.Player.Character
			r.livePlayerParam(pl.Hash, t.ID, PlayerCharacter, pl.Character)
		}
	case models.EventPlayerDamage:
		if p, ok := payloadOf[models.PlayerPayload](r, ev); ok {
			if t, pl := r.game.FindPlayer(p.Player.Hash); pl != nil {
				pl.DamageDealt = p.Player.DamageDealt
				pl.DamageTaken = p.Player.DamageTaken
				r.livePlayerParam(pl.Hash, t.ID, PlayerDamageDealt, pl.DamageDealt)
				r.livePlayerParam(pl.Hash, t.ID, PlayerDamageTaken, pl.DamageTaken)
			}
		}
	case models.EventPlayerItem:
		if p, ok := payloadOf[models.PlayerItemPayload](r, ev); ok {
			teamID := -1
			if t, pl := r.game.FindPlayer(p.Player.Hash); pl != nil {
				teamID = t.ID
			}
			r.livePlayerParam(p.Player.Hash, teamID, PlayerItemPrefix+p.Item, p.Count)
		}
	case models.EventStateAlive, models.EventStateDown, models.EventStateKilled, models.EventStateCollected:
		if p, ok := payloadOf[models.PlayerPayload](r, ev); ok {
			r.setPlayerState(p.Player.Hash, playerStates[ev.Type])
		}

	case models.EventObserverSwitch:
		if p, ok := payloadOf[models.ObserverSwitchPayload](r, ev); ok && r.followsObserver(p) {
			if r.camera.TeamID != p.Team.ID || r.camera.PlayerHash != p.Player.Hash {
				r.updateCamera(p.Team.ID, p.Player.Hash)
			}
		}
	case models.EventTeamBannerState:
		if p, ok := payloadOf[models.RecognitionPayload](r, ev); ok {
			r.banner.Push(p.State)
		}
	case models.EventMapState:
		if p, ok := payloadOf[models.RecognitionPayload](r, ev); ok {
			r.mapRecognized = p.State
			r.emitVisibility()
		}

	case models.EventBroadcastObject:
		if p, ok := payloadOf[models.BroadcastPayload](r, ev); ok {
			r.onTest(p.Data)
		}

	default:
		r.logger.Warnw("Ignoring unhandled event", "type", ev.Type)
	}

	r.resolvePending(ev.Type)
}

func (r *Reconciler) onTournament(id, name string) {
	if id != r.tournamentID {
		r.resetTournament(id)
	}
	r.setTournamentName(name)
}

func (r *Reconciler) setTournamentName(name string) {
	if name == r.tournamentName {
		return
	}
	r.tournamentName = name
	r.global(ParamTournamentName, name)
}

// resetTournament drops everything scoped to the previous tournament and
// fetches the new one.
func (r *Reconciler) resetTournament(id string) {
	r.logger.Infow("Tournament changed", "from", r.tournamentID, "to", id)
	r.tournamentID = id
	r.tournamentName = ""
	r.params = models.TournamentParams{}
	r.teamParams = make(map[int]models.TeamParams)
	r.results = nil
	r.teamResults = nil
	r.winnerDetermined = false
	r.singleIndex = make(map[string]int)
	r.totalIndex = make(map[string]int)
	r.singleTeams = make(map[int]bool)
	r.totalTeams = make(map[int]bool)
	r.resetQueues()

	r.pub.Reset()
	r.global(ParamConnectionStatus, r.connection)
	r.global(ParamTournamentID, id)
	r.global(ParamGameState, string(r.game.State))
	r.emitCounts()
	r.emitVisibility()
	r.emitForceHide()

	r.requestTournamentData()
}

func (r *Reconciler) onParams(params models.TournamentParams) {
	params.CalcMethod = params.CalcMethod.Normalize()
	r.params = params
	r.emitForceHide()
	r.recalc()
	r.rebuildViews()
}

func (r *Reconciler) onResults(results []models.Result) {
	r.results = results
	r.recalc()
	r.rebuildViews()
	r.emitCounts()
}

// onSaveResult appends the next completed game. A replay of a stored game is
// ignored; anything else means we are out of sync and refetch the history.
func (r *Reconciler) onSaveResult(gameID int, result models.Result) {
	modeChanged := !r.resultsOnly
	r.resultsOnly = true

	appended := false
	switch {
	case gameID == len(r.results):
		r.results = append(r.results, result)
		appended = true
	case gameID < len(r.results) && reflect.DeepEqual(r.results[gameID], result):
		r.logger.Debugw("Duplicate result ignored", "game", gameID)
	default:
		r.logger.Warnw("Result out of sequence, refetching", "game", gameID, "have", len(r.results))
		r.request(models.EventGetTournamentResults, nil)
	}

	if appended || modeChanged {
		r.recalc()
	}
	if appended {
		r.rebuildViews()
	}
	r.emitCounts()
}

func (r *Reconciler) onTeamParams(id int, params models.TeamParams) {
	r.teamParams[id] = params
	if params.Name != "" {
		r.publishTeamName(id)
	}
}

func (r *Reconciler) onPlayerParams(hash string, params models.PlayerParams) {
	if hash == "" {
		return
	}
	r.playerParams[hash] = params
	if params.Name == "" {
		return
	}
	teamID := -1
	if t, pl := r.game.FindPlayer(hash); pl != nil {
		teamID = t.ID
	}
	r.livePlayerParam(hash, teamID, PlayerName, params.Name)
	r.renameInViews(hash, params.Name)
}

// onGame replaces the live game wholesale.
func (r *Reconciler) onGame(game models.Game, clear bool) {
	g := &models.Game{MapName: game.MapName, Server: game.Server, State: r.game.State}
	for _, t := range game.Teams {
		if t.ID < 0 || t.ID >= maxTeams {
			r.logger.Warnw("Dropping team with out-of-range id", "team", t.ID)
			continue
		}
		*g.Team(t.ID) = t
	}
	r.game = g
	r.teamResults = nil
	if clear {
		r.winnerDetermined = false
		r.resetQueues()
	}

	if game.State != g.State {
		r.setGameState(game.State)
	} else if clear {
		r.emitVisibility()
	}
	r.recalc()
	r.rebuildViews()
	r.emitAlive()
}

func (r *Reconciler) setGameState(state models.GameState) {
	if r.game.State == state {
		return
	}
	r.game.State = state
	r.global(ParamGameState, string(state))
	r.emitVisibility()
	if state.IsLive() {
		r.setResultsOnly(false)
	}
}

func (r *Reconciler) onWinner(teamID int) {
	r.logger.Infow("Winner determined", "team", teamID)
	r.winnerDetermined = true
	r.global(ParamWinnerTeamID, teamID+1)
	r.global(ParamWinnerTeamName, r.teamName(teamID))
	r.emitVisibility()
}

func (r *Reconciler) onSquadEliminate(info models.TeamInfo) {
	t := r.game.Team(info.ID)
	t.Eliminated = true
	if info.Placement > 0 {
		t.Placement = info.Placement
	}
	r.team(info.ID, ParamTeamEliminated, 1)
	if !r.bootstrapping && info.Placement > 2 {
		r.pushSquadEliminated(info.Placement, info.ID)
	}
	r.emitAlive()
	r.recalc()
}

func (r *Reconciler) onTeamRespawn(p *models.TeamRespawnPayload) {
	t := r.game.Team(p.Team.ID)
	names := make([]string, 0, len(p.Targets))
	for _, target := range p.Targets {
		pl := t.Player(target.Hash)
		pl.State = models.PlayerAlive
		r.livePlayerParam(target.Hash, t.ID, PlayerState, string(models.PlayerAlive))
		names = append(names, r.playerName(target.Hash, target.Name))
	}
	r.pushTeamRespawned(t.ID, r.playerName(p.Player.Hash, p.Player.Name), names)
	r.emitAlive()
}

// livePlayer finds the player in the live game, adding them to the event's
// team when unknown.
func (r *Reconciler) livePlayer(p *models.PlayerPayload) (*models.Team, *models.Player) {
	if t, pl := r.game.FindPlayer(p.Player.Hash); pl != nil {
		return t, pl
	}
	t := r.game.Team(p.Team.ID)
	return t, t.Player(p.Player.Hash)
}

func (r *Reconciler) onPlayerJoined(p *models.PlayerPayload, connected bool) {
	t, pl := r.livePlayer(p)
	if p.Player.Name != "" {
		pl.Name = p.Player.Name
	}
	if p.Player.Character != "" {
		pl.Character = p.Player.Character
	}
	pl.State = models.PlayerAlive

	r.team(t.ID, ParamTeamExists, 1)
	r.livePlayerParam(pl.Hash, t.ID, PlayerTeam, t.ID)
	r.livePlayerParam(pl.Hash, t.ID, PlayerName, r.playerName(pl.Hash, pl.Name))
	r.livePlayerParam(pl.Hash, t.ID, PlayerState, string(pl.State))
	r.emitAlive()
	if connected {
		r.recalc()
	}
}

func (r *Reconciler) onPlayerStats(p *models.PlayerPayload) {
	t, pl := r.livePlayer(p)
	t.Kills = p.Team.Kills
	pl.Kills = p.Player.Kills
	pl.Assists = p.Player.Assists
	r.teamParam(t.ID, ParamTeamKills, ParamCameraTeamKills, t.Kills)
	r.livePlayerParam(pl.Hash, t.ID, PlayerKills, pl.Kills)
	r.recalc()
}

func (r *Reconciler) setPlayerState(hash string, state models.PlayerState) {
	t, pl := r.game.FindPlayer(hash)
	if pl == nil {
		r.logger.Debugw("State change for unknown player", "hash", hash, "state", state)
		return
	}
	pl.State = state
	r.livePlayerParam(hash, t.ID, PlayerState, string(state))
	r.emitAlive()
}

// onTest applies an operator test broadcast.
func (r *Reconciler) onTest(tc models.TestCommand) {
	r.logger.Infow("Test broadcast", "type", tc.Type)
	switch tc.Type {
	case models.TestGameState:
		r.setGameState(tc.State)
	case models.TestTeamBanner:
		r.bannerRecognized = !r.bannerRecognized
		r.emitVisibility()
	case models.TestMapLeaderboard:
		r.mapRecognized = !r.mapRecognized
		r.emitVisibility()
	case models.TestCamera:
		r.updateCamera(tc.TeamID, r.camera.PlayerHash)
	case models.TestPlayerBanner:
		r.cameraPlayer("", ParamCameraPlayerPrefix+PlayerName, tc.Name)
	case models.TestTeamKills:
		r.cameraTeam(ParamCameraTeamKills, tc.Kills)
	case models.TestGameCount:
		r.global(ParamGameCount, tc.Count)
	case models.TestSquadEliminated:
		r.pushSquadEliminated(tc.Placement, tc.TeamID)
	case models.TestTeamRespawned:
		r.pushTeamRespawned(tc.TeamID, tc.RespawnPlayer, tc.RespawnedPlayers)
	case models.TestWinnerDetermine:
		r.onWinner(tc.TeamID)
	case models.TestWinnerDetermineReset:
		r.winnerDetermined = false
		r.emitVisibility()
	}
}
