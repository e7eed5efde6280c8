// CSPrime - curriculum browsing and chat server
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

	"github.com/csprime/csprime/internal/api"
	"github.com/csprime/csprime/internal/broker"
	"github.com/csprime/csprime/internal/catalog"
	"github.com/csprime/csprime/internal/chatlog"
	"github.com/csprime/csprime/internal/config"
	"github.com/csprime/csprime/internal/middleware"
	"github.com/csprime/csprime/internal/session"
	"github.com/csprime/csprime/web"
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

	// Initialize dependencies.
	cat, err := catalog.Load()
	if err != nil {
		slog.Error("Failed to load curriculum catalog", "error", err)
		os.Exit(1)
	}
	slog.Info("Catalog loaded", "modules", len(cat.Modules()), "topics", len(cat.Topics()))

	candidates, err := broker.BuildCandidates(context.Background(), cfg)
	if err != nil {
		slog.Error("Failed to build backend candidates", "error", err)
		os.Exit(1)
	}
	if len(candidates) == 0 {
		slog.Warn("No inference backend credential configured, chat requests will fail")
	} else {
		slog.Info("Backend candidates ready",
			"provider", candidates[0].Client.Provider(),
			"models", len(candidates),
		)
	}

	chatLog, err := chatlog.New(chatlog.Config{
		Enabled:   cfg.ChatLog.Enabled,
		Dir:       cfg.ChatLog.Dir,
		QueueSize: cfg.ChatLog.QueueSize,
	}, logger)
	if err != nil {
		slog.Error("Failed to initialize chat logger", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := chatLog.Close(); closeErr != nil {
			slog.Error("Failed to close chat logger", "error", closeErr)
		}
	}()

	policy := broker.DefaultRetryPolicy()
	policy.MaxAttempts = cfg.Retry.MaxAttempts
	policy.InitialInterval = cfg.Retry.InitialInterval
	policy.MaxInterval = cfg.Retry.MaxInterval
	policy.AttemptTimeout = cfg.Retry.AttemptTimeout

	sessions := session.NewStore()
	chatBroker := broker.New(candidates, sessions, cat, policy)

	// Initialize handlers.
	chatHandler := api.NewChatHandler(chatBroker, chatLog, cfg.RateLimit.PerSecond, cfg.RateLimit.Burst)
	catalogHandler := api.NewCatalogHandler(cat)
	healthHandler := api.NewHealthHandler(cat, len(candidates) > 0)

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/ping"))
	r.Use(middleware.CORS([]string{"*"}))

	healthHandler.RegisterHealth(r)
	chatHandler.RegisterRoutes(r)
	catalogHandler.RegisterRoutes(r)

	// Serve embedded frontend (SPA catch-all).
	r.Handle("/*", web.SPAHandler())

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute, // chat requests may span several backend retries
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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
