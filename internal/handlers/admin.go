package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/openmohaa/overlay-engine/internal/models"
)

// submit forwards a command and answers 202 with the id the response will carry.
func (h *Handler) submit(w http.ResponseWriter, r *http.Request, cmd models.Command) {
	if err := models.ValidateStruct(cmd); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}
	id, err := h.engine.Submit(r.Context(), cmd)
	if err != nil {
		h.engineError(w, err)
		return
	}
	h.jsonResponse(w, http.StatusAccepted, map[string]string{
		"request_id": id,
		"type":       string(cmd.Method()),
	})
}

// SetTournamentParams replaces the tournament configuration.
// @Summary Set tournament params
// @Tags Admin
// @Accept json
// @Produce json
// @Param body body models.TournamentParams true "Tournament params"
// @Success 202 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /api/v1/tournament/params [put]
func (h *Handler) SetTournamentParams(w http.ResponseWriter, r *http.Request) {
	var params models.TournamentParams
	if !h.decodeBody(w, r, &params) {
		return
	}
	h.submit(w, r, models.SetTournamentParamsCommand{Params: params})
}

// RenameTournament renames the current tournament.
// @Summary Rename tournament
// @Tags Admin
// @Accept json
// @Produce json
// @Param body body models.RenameTournamentCommand true "New name"
// @Success 202 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /api/v1/tournament/name [put]
func (h *Handler) RenameTournament(w http.ResponseWriter, r *http.Request) {
	var cmd models.RenameTournamentCommand
	if !h.decodeBody(w, r, &cmd) {
		return
	}
	h.submit(w, r, cmd)
}

// SetTournamentResult overwrites one stored game result.
// @Summary Correct a game result
// @Tags Admin
// @Accept json
// @Produce json
// @Param gameid path int true "Game index"
// @Param body body models.Result true "Result"
// @Success 202 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /api/v1/tournament/results/{gameid} [put]
func (h *Handler) SetTournamentResult(w http.ResponseWriter, r *http.Request) {
	gameID, err := strconv.Atoi(chi.URLParam(r, "gameid"))
	if err != nil || gameID < 0 {
		h.errorResponse(w, http.StatusBadRequest, "Invalid game id")
		return
	}
	var result models.Result
	if !h.decodeBody(w, r, &result) {
		return
	}
	h.submit(w, r, models.SetTournamentResultCommand{GameID: gameID, Result: result})
}

// SetTeamParams sets a team display-name override.
// @Summary Set team params
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path int true "Team ID"
// @Param body body models.TeamParams true "Team params"
// @Success 202 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /api/v1/teams/{id}/params [put]
func (h *Handler) SetTeamParams(w http.ResponseWriter, r *http.Request) {
	teamID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Invalid team id")
		return
	}
	var params models.TeamParams
	if !h.decodeBody(w, r, &params) {
		return
	}
	h.submit(w, r, models.SetTeamParamsCommand{TeamID: teamID, Params: params})
}

// SetPlayerParams sets a player display-name override.
// @Summary Set player params
// @Tags Admin
// @Accept json
// @Produce json
// @Param hash path string true "Player hash"
// @Param body body models.PlayerParams true "Player params"
// @Success 202 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /api/v1/players/{hash}/params [put]
func (h *Handler) SetPlayerParams(w http.ResponseWriter, r *http.Request) {
	hash := chi.URLParam(r, "hash")
	var params models.PlayerParams
	if !h.decodeBody(w, r, &params) {
		return
	}
	h.submit(w, r, models.SetPlayerParamsCommand{Hash: hash, Params: params})
}

// Broadcast sends an operator test broadcast.
// @Summary Send test broadcast
// @Tags Admin
// @Accept json
// @Produce json
// @Param body body models.TestCommand true "Test broadcast"
// @Success 202 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /api/v1/broadcast [post]
func (h *Handler) Broadcast(w http.ResponseWriter, r *http.Request) {
	var tc models.TestCommand
	if !h.decodeBody(w, r, &tc) {
		return
	}
	h.submit(w, r, models.BroadcastCommand{Data: tc})
}

// Reconnect drops the feed connection and dials again immediately.
// @Summary Force feed reconnect
// @Tags Admin
// @Produce json
// @Success 202 {object} map[string]string
// @Router /api/v1/connection/reconnect [post]
func (h *Handler) Reconnect(w http.ResponseWriter, r *http.Request) {
	h.engine.Reconnect()
	h.jsonResponse(w, http.StatusAccepted, map[string]string{"status": "reconnecting"})
}
