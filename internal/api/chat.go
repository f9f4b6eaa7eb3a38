package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/fafsabuddy/server/internal/checklist"
	"github.com/fafsabuddy/server/internal/estimate"
	"github.com/fafsabuddy/server/internal/identity"
)

// capabilityFailureReply is what the user sees when the model call fails.
// The turn left no trace in the store, so resending the same message is
// always safe.
const capabilityFailureReply = "Sorry — something went wrong on my end. Mind sending that again?"

type chatRequest struct {
	Message string `json:"message"`
}

// Chat handles one conversation turn. An empty message is boot/restore.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	sessionID := identity.SessionIDFromContext(r.Context())
	if sessionID == "" {
		Error(w, http.StatusInternalServerError, "no session identity")
		return
	}
	if h.limiter != nil && !h.limiter.Allow(sessionID) {
		Error(w, http.StatusTooManyRequests, "too many requests, slow down")
		return
	}

	var req chatRequest
	body := http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		JSON(w, http.StatusBadRequest, map[string]any{"reply": "Bad request", "progress": 0, "done": false})
		return
	}

	result, err := h.orchestrator.SubmitTurn(r.Context(), sessionID, req.Message)
	if err != nil {
		slog.Error("chat turn failed", "session_id", sessionID, "error", err)
		JSON(w, http.StatusInternalServerError, map[string]any{"reply": capabilityFailureReply, "progress": 0, "done": false})
		return
	}
	JSON(w, http.StatusOK, result)
}

// State returns the collected fields, progress, and transcript length.
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	sessionID := identity.SessionIDFromContext(r.Context())
	snapshot, err := h.orchestrator.State(r.Context(), sessionID)
	if err != nil {
		slog.Error("state load failed", "session_id", sessionID, "error", err)
		Error(w, http.StatusInternalServerError, "failed to load session")
		return
	}
	JSON(w, http.StatusOK, snapshot)
}

// Profile returns just the collected fields, for read-only consumers like
// the form-autofill extension.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	sessionID := identity.SessionIDFromContext(r.Context())
	snapshot, err := h.orchestrator.State(r.Context(), sessionID)
	if err != nil {
		slog.Error("profile load failed", "session_id", sessionID, "error", err)
		Error(w, http.StatusInternalServerError, "failed to load session")
		return
	}
	JSON(w, http.StatusOK, map[string]any{"fields": snapshot.Fields})
}

// Reset clears the session's profile and history. The session cookie
// survives; the next turn starts fresh under the same identity.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	sessionID := identity.SessionIDFromContext(r.Context())
	if err := h.orchestrator.Reset(r.Context(), sessionID); err != nil {
		slog.Error("reset failed", "session_id", sessionID, "error", err)
		Error(w, http.StatusInternalServerError, "failed to reset session")
		return
	}
	JSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type uploadRequest struct {
	DocType string `json:"doc_type"`
	URL     string `json:"url"`
}

// RegisterUpload records an uploaded document URL against a checklist item.
// Storage transport is the caller's concern; only the ledger lives here.
func (h *Handler) RegisterUpload(w http.ResponseWriter, r *http.Request) {
	sessionID := identity.SessionIDFromContext(r.Context())

	var req uploadRequest
	body := http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !checklist.UploadsAccepted(req.DocType) {
		Error(w, http.StatusBadRequest, "unknown doc_type")
		return
	}
	if req.URL == "" {
		Error(w, http.StatusBadRequest, "url is required")
		return
	}

	if err := h.orchestrator.RegisterUpload(r.Context(), sessionID, req.DocType, req.URL); err != nil {
		slog.Error("upload registration failed", "session_id", sessionID, "doc_type", req.DocType, "error", err)
		Error(w, http.StatusInternalServerError, "failed to record upload")
		return
	}
	JSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// RemoveUpload drops a document from the ledger.
func (h *Handler) RemoveUpload(w http.ResponseWriter, r *http.Request) {
	sessionID := identity.SessionIDFromContext(r.Context())

	docType := r.URL.Query().Get("doc_type")
	if !checklist.UploadsAccepted(docType) {
		Error(w, http.StatusBadRequest, "unknown doc_type")
		return
	}

	if err := h.orchestrator.RemoveUpload(r.Context(), sessionID, docType); err != nil {
		slog.Error("upload removal failed", "session_id", sessionID, "doc_type", docType, "error", err)
		Error(w, http.StatusInternalServerError, "failed to remove upload")
		return
	}
	JSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Checklist returns the personalized document checklist with upload status.
func (h *Handler) Checklist(w http.ResponseWriter, r *http.Request) {
	sessionID := identity.SessionIDFromContext(r.Context())
	snapshot, err := h.orchestrator.State(r.Context(), sessionID)
	if err != nil {
		slog.Error("checklist load failed", "session_id", sessionID, "error", err)
		Error(w, http.StatusInternalServerError, "failed to load session")
		return
	}
	JSON(w, http.StatusOK, map[string]any{
		"items":    checklist.Build(snapshot.Fields),
		"progress": snapshot.Progress,
	})
}

// Estimate returns the range-based Pell projection for the session.
func (h *Handler) Estimate(w http.ResponseWriter, r *http.Request) {
	sessionID := identity.SessionIDFromContext(r.Context())
	snapshot, err := h.orchestrator.State(r.Context(), sessionID)
	if err != nil {
		slog.Error("estimate load failed", "session_id", sessionID, "error", err)
		Error(w, http.StatusInternalServerError, "failed to load session")
		return
	}

	est, err := estimate.FromProfile(snapshot.Fields)
	if err != nil {
		if errors.Is(err, estimate.ErrIncompleteProfile) {
			Error(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		slog.Error("estimate failed", "session_id", sessionID, "error", err)
		Error(w, http.StatusInternalServerError, "failed to compute estimate")
		return
	}
	JSON(w, http.StatusOK, est)
}

// Schools looks up school cost data by name in the College Scorecard.
func (h *Handler) Schools(w http.ResponseWriter, r *http.Request) {
	if h.scorecard == nil {
		Error(w, http.StatusServiceUnavailable, "school lookup is not configured")
		return
	}
	name := r.URL.Query().Get("name")
	if name == "" {
		Error(w, http.StatusBadRequest, "name is required")
		return
	}
	limit := 3
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 20 {
			limit = n
		}
	}

	schools, err := h.scorecard.Search(r.Context(), name, limit)
	if err != nil {
		slog.Error("school lookup failed", "name", name, "error", err)
		Error(w, http.StatusBadGateway, "school lookup failed")
		return
	}
	JSON(w, http.StatusOK, map[string]any{"results": schools})
}
