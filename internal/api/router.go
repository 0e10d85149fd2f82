package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/deftgray/clashproxy/internal/api/response"
	"github.com/deftgray/clashproxy/internal/version"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check endpoint (no versioning)
	s.router.Get("/health", s.healthCheck)

	// API v1 routes
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Route("/deck", func(r chi.Router) {
			r.Get("/{playerTag}", s.deckHandler.GenerateDeck)
			r.Post("/complete", s.deckHandler.CompleteDeck)
		})

		r.Route("/system", func(r chi.Router) {
			r.Get("/status", s.systemHandler.GetStatus)
		})
	})
}

// healthCheck returns server health status.
func (s *Server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "clashproxy-api",
		"version": version.GetVersion(),
	})
}
