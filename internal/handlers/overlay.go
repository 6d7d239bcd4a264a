package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/openmohaa/overlay-engine/internal/models"
)

// GetState returns a snapshot of the canonical tournament state.
// @Summary Get tournament state
// @Tags Overlay
// @Produce json
// @Success 200 {object} models.Snapshot
// @Failure 503 {object} map[string]string
// @Failure 504 {object} map[string]string
// @Router /api/v1/state [get]
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	snap, err := h.engine.Snapshot(r.Context())
	if err != nil {
		h.engineError(w, err)
		return
	}
	h.jsonResponse(w, http.StatusOK, snap)
}

// GetVisibility returns the active view capabilities.
// @Summary Get overlay visibility
// @Tags Overlay
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]string
// @Router /api/v1/visibility [get]
func (h *Handler) GetVisibility(w http.ResponseWriter, r *http.Request) {
	snap, err := h.engine.Snapshot(r.Context())
	if err != nil {
		h.engineError(w, err)
		return
	}
	var state models.GameState
	if snap.Game != nil {
		state = snap.Game.State
	}
	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"game_state":        state,
		"visibility":        snap.Visibility,
		"banner_recognized": snap.BannerRecognized,
		"map_recognized":    snap.MapRecognized,
		"winner_determined": snap.WinnerDetermined,
	})
}

// CompleteAnnouncement reports that the displayed item of a queue finished.
// @Summary Complete current announcement
// @Description Advances the announcement queue once the presentation layer finished displaying its item
// @Tags Overlay
// @Param kind path string true "Queue kind (squad-eliminated, team-respawned)"
// @Success 204
// @Failure 404 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /api/v1/announcements/{kind}/complete [post]
func (h *Handler) CompleteAnnouncement(w http.ResponseWriter, r *http.Request) {
	kind := models.AnnouncementKind(chi.URLParam(r, "kind"))
	if err := h.engine.Complete(r.Context(), kind); err != nil {
		h.engineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
