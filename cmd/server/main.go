// FAFSA Buddy - conversational financial-aid intake server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/fafsabuddy/server/internal/api"
	"github.com/fafsabuddy/server/internal/config"
	"github.com/fafsabuddy/server/internal/identity"
	"github.com/fafsabuddy/server/internal/intake"
	"github.com/fafsabuddy/server/internal/llm"
	"github.com/fafsabuddy/server/internal/middleware"
	"github.com/fafsabuddy/server/internal/scorecard"
	"github.com/fafsabuddy/server/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize the session store: Redis when configured, SQLite otherwise.
	var sessions store.Store
	if cfg.RedisAddr != "" {
		sessions, err = store.NewRedis(cfg.RedisAddr)
		if err != nil {
			slog.Error("Failed to connect to Redis", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		slog.Info("Redis connected", "addr", cfg.RedisAddr)
	} else {
		sqliteStore, err := store.NewSQLite(cfg.DBPath)
		if err != nil {
			slog.Error("Failed to initialize database", "error", err)
			os.Exit(1)
		}
		store.StartCleanupWorker(ctx, sqliteStore)
		sessions = sqliteStore
		slog.Info("SQLite store ready", "path", cfg.DBPath)
	}
	defer func() {
		if closeErr := sessions.Close(); closeErr != nil {
			slog.Error("Failed to close session store", "error", closeErr)
		}
	}()

	if err := sessions.Ping(context.Background()); err != nil {
		slog.Error("Session store health check failed", "error", err)
		os.Exit(1)
	}

	// Model capability.
	model := llm.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	slog.Info("Model capability configured", "model", cfg.OpenAIModel)

	// Turn logging (optional).
	turnLogger, err := intake.NewTurnLogger(intake.TurnLogConfig{
		Enabled:   cfg.TurnLog.Enabled,
		Dir:       cfg.TurnLog.Dir,
		QueueSize: cfg.TurnLog.QueueSize,
	}, logger)
	if err != nil {
		slog.Error("Failed to initialize turn logger", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := turnLogger.Close(); closeErr != nil {
			slog.Error("Failed to close turn logger", "error", closeErr)
		}
	}()

	orchestrator := intake.NewOrchestrator(sessions, model, turnLogger, cfg.ProfileTTL, cfg.HistoryLimit)

	// School lookups (optional).
	var scorecardClient *scorecard.Client
	if cfg.ScorecardAPIKey != "" {
		scorecardClient = scorecard.NewClient(cfg.ScorecardAPIKey)
		slog.Info("College Scorecard lookups enabled")
	} else {
		slog.Info("College Scorecard lookups disabled (SCORECARD_API_KEY not set)")
	}

	limiter := api.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	defer limiter.Stop()

	handler := api.NewHandler(orchestrator, scorecardClient, limiter, cfg.MaxBodyBytes)
	wsHandler := api.NewWebSocketHandler(orchestrator, limiter, cfg.FrontendURL, cfg.IsDevelopment())

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	// Credentialed CORS requires an explicit origin; fall back to wildcard
	// (no credentials) when no frontend is configured.
	allowedOrigins := []string{"*"}
	if cfg.FrontendURL != "" {
		allowedOrigins = []string{cfg.FrontendURL}
	}
	r.Use(middleware.CORS(allowedOrigins))
	r.Use(identity.Middleware(cfg.IsDevelopment()))

	// All routes use the anonymous session identity (no auth).
	handler.RegisterRoutes(r)

	// WebSocket endpoint.
	r.Get("/ws/chat", wsHandler.ServeHTTP)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // model turns and websocket sessions outlive any sane write timeout
		IdleTimeout:  120 * time.Second,
	}

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
