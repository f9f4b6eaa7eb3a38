package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"

	"github.com/fafsabuddy/server/internal/identity"
	"github.com/fafsabuddy/server/internal/intake"
)

// WebSocketHandler runs the chat loop over a WebSocket: each inbound
// {"message": ...} frame is one orchestrator turn, answered with the same
// payload the HTTP chat route returns.
type WebSocketHandler struct {
	orchestrator  *intake.Orchestrator
	limiter       *RateLimiter
	allowedOrigin string
	isDev         bool
}

// NewWebSocketHandler creates a new WebSocket chat handler.
func NewWebSocketHandler(orchestrator *intake.Orchestrator, limiter *RateLimiter, allowedOrigin string, isDev bool) *WebSocketHandler {
	return &WebSocketHandler{
		orchestrator:  orchestrator,
		limiter:       limiter,
		allowedOrigin: allowedOrigin,
		isDev:         isDev,
	}
}

type wsChatMessage struct {
	Message string `json:"message"`
}

type wsChatError struct {
	Error string `json:"error"`
}

// ServeHTTP implements http.Handler for WebSocket upgrade.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sessionID := identity.SessionIDFromContext(r.Context())
	if sessionID == "" {
		http.Error(w, "no session identity", http.StatusInternalServerError)
		return
	}
	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("failed to accept websocket", "error", err, "session_id", sessionID)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "session ended"); closeErr != nil {
			slog.Debug("failed to close websocket", "error", closeErr, "session_id", sessionID)
		}
	}()

	slog.Info("websocket chat connected", "session_id", sessionID, "ip", identity.IPFromRequest(r))

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	h.chatLoop(ctx, ws, sessionID)
}

func (h *WebSocketHandler) chatLoop(ctx context.Context, ws *websocket.Conn, sessionID string) {
	for {
		_, raw, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				slog.Debug("websocket closed by client", "session_id", sessionID)
			} else if ctx.Err() == nil {
				slog.Warn("websocket read error", "error", err, "session_id", sessionID)
			}
			return
		}

		var msg wsChatMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			if err := h.writeJSON(ctx, ws, wsChatError{Error: "invalid message"}); err != nil {
				return
			}
			continue
		}

		if h.limiter != nil && !h.limiter.Allow(sessionID) {
			if err := h.writeJSON(ctx, ws, wsChatError{Error: "too many requests, slow down"}); err != nil {
				return
			}
			continue
		}

		result, err := h.orchestrator.SubmitTurn(ctx, sessionID, msg.Message)
		if err != nil {
			slog.Error("websocket chat turn failed", "session_id", sessionID, "error", err)
			if err := h.writeJSON(ctx, ws, intake.TurnResult{Reply: capabilityFailureReply}); err != nil {
				return
			}
			continue
		}
		if err := h.writeJSON(ctx, ws, result); err != nil {
			return
		}
	}
}

func (h *WebSocketHandler) writeJSON(ctx context.Context, ws *websocket.Conn, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return ws.Write(ctx, websocket.MessageText, data)
}

func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" || h.allowedOrigin == "*" {
		return true
	}
	if origin == h.allowedOrigin {
		return true
	}
	slog.Warn("websocket origin rejected", "origin", origin, "allowed", h.allowedOrigin)
	return false
}
