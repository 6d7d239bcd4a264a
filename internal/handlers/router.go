package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/openmohaa/overlay-engine/docs"
)

// Routes builds the HTTP router.
func (h *Handler) Routes(allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(15 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/doc.json", h.SwaggerDoc)

	r.Route("/api/v1", func(r chi.Router) {
		// Presentation
		r.Get("/state", h.GetState)
		r.Get("/visibility", h.GetVisibility)
		r.Post("/announcements/{kind}/complete", h.CompleteAnnouncement)

		// Admin
		r.Put("/tournament/params", h.SetTournamentParams)
		r.Put("/tournament/name", h.RenameTournament)
		r.Put("/tournament/results/{gameid}", h.SetTournamentResult)
		r.Put("/teams/{id}/params", h.SetTeamParams)
		r.Put("/players/{hash}/params", h.SetPlayerParams)
		r.Post("/broadcast", h.Broadcast)
		r.Post("/connection/reconnect", h.Reconnect)
	})

	return r
}
