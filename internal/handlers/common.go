package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/swaggo/swag"

	"github.com/openmohaa/overlay-engine/internal/feed"
	"github.com/openmohaa/overlay-engine/internal/reconciler"
)

// Health check endpoint
// @Summary Liveness check
// @Tags System
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}

// Ready check endpoint
// @Summary Readiness check
// @Description Reports Redis reachability, feed connection state and publisher queue depth
// @Tags System
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /ready [get]
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	state := h.feed.State()
	checks := map[string]bool{
		"redis": h.publisher.Ping(ctx) == nil,
		"feed":  state == feed.Connected,
	}

	allHealthy := true
	for _, ok := range checks {
		if !ok {
			allHealthy = false
			break
		}
	}

	status := http.StatusOK
	if !allHealthy {
		status = http.StatusServiceUnavailable
	}
	h.jsonResponse(w, status, map[string]interface{}{
		"ready":      allHealthy,
		"checks":     checks,
		"feedState":  state.String(),
		"queueDepth": h.publisher.QueueDepth(),
	})
}

// SwaggerDoc serves the OpenAPI document built from the handler annotations.
func (h *Handler) SwaggerDoc(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		h.logger.Errorw("Failed to read API doc", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "API documentation unavailable")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(doc))
}

func (h *Handler) jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) errorResponse(w http.ResponseWriter, status int, message string) {
	h.jsonResponse(w, status, map[string]string{"error": message})
}

// decodeBody reads a size-limited JSON body into dst.
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.errorResponse(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return false
		}
		h.errorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	return true
}

// engineError maps reconciler and transport errors to a response.
func (h *Handler) engineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, reconciler.ErrInvalidCommand):
		h.errorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, reconciler.ErrUnknownQueue):
		h.errorResponse(w, http.StatusNotFound, err.Error())
	case errors.Is(err, reconciler.ErrStopped),
		errors.Is(err, feed.ErrNotConnected),
		errors.Is(err, feed.ErrSendBufferFull):
		h.errorResponse(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		h.errorResponse(w, http.StatusGatewayTimeout, "Request timed out")
	default:
		h.logger.Errorw("Engine request failed", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Internal server error")
	}
}
