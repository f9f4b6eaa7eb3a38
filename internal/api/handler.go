// Package api provides HTTP handlers for the FAFSA Buddy API.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fafsabuddy/server/internal/intake"
	"github.com/fafsabuddy/server/internal/scorecard"
)

// Handler provides the HTTP surface over the conversation orchestrator.
type Handler struct {
	orchestrator *intake.Orchestrator
	scorecard    *scorecard.Client // nil disables the /api/schools route
	limiter      *RateLimiter
	maxBodyBytes int64
}

// NewHandler creates a new Handler with common dependencies.
func NewHandler(orchestrator *intake.Orchestrator, sc *scorecard.Client, limiter *RateLimiter, maxBodyBytes int64) *Handler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = 64 * 1024
	}
	return &Handler{
		orchestrator: orchestrator,
		scorecard:    sc,
		limiter:      limiter,
		maxBodyBytes: maxBodyBytes,
	}
}

// RegisterRoutes mounts the API routes on the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/chat", h.Chat)
	r.Get("/api/state", h.State)
	r.Get("/api/profile", h.Profile)
	r.Post("/api/reset", h.Reset)
	r.Post("/api/uploads", h.RegisterUpload)
	r.Delete("/api/uploads", h.RemoveUpload)
	r.Get("/api/checklist", h.Checklist)
	r.Get("/api/estimate", h.Estimate)
	r.Get("/api/schools", h.Schools)
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}
