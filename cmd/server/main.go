package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	clawdbertroot "github.com/snooooofy/clawdbert"
	"github.com/snooooofy/clawdbert/internal/config"
	"github.com/snooooofy/clawdbert/internal/docs"
	"github.com/snooooofy/clawdbert/internal/handler"
	"github.com/snooooofy/clawdbert/internal/mcp"
	"github.com/snooooofy/clawdbert/internal/repository"
	"github.com/snooooofy/clawdbert/internal/service"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Local development convenience; a missing .env is not an error
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Run migrations
	migrationsFS, err := fs.Sub(clawdbertroot.MigrationsFS, "migrations")
	if err != nil {
		slog.Error("failed to load embedded migrations", "error", err)
		os.Exit(1)
	}
	if err := repository.RunMigrations(cfg.DatabaseURL, migrationsFS); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepo(pool)
	conversationRepo := repository.NewConversationRepo(pool)
	apiKeyRepo := repository.NewAPIKeyRepo(pool)

	// Initialize services
	stats, err := service.NewStatsService(cfg.PromptPricePerM, cfg.CompletionPricePerM)
	if err != nil {
		slog.Error("invalid pricing config", "error", err)
		os.Exit(1)
	}
	authService := service.NewAuthService(userRepo)
	transcriptService := service.NewTranscriptService(conversationRepo)
	apiKeyService := service.NewAPIKeyService(apiKeyRepo)
	openClawService := service.NewOpenClawService(cfg.GatewayAPIKey, cfg.GatewayURL, cfg.Model, stats)

	dispatcher := mcp.New(mcp.ServerInfo{
		Name:    config.ServerName,
		Version: config.ServerVersion,
	}, config.ProtocolVersion, openClawService)

	h := handler.New(handler.Deps{
		Cfg:        cfg,
		AuthSvc:    authService,
		Transcript: transcriptService,
		OpenClaw:   openClawService,
		Keys:       apiKeyService,
		Stats:      stats,
		Dispatcher: dispatcher,
	})

	// Expired session tokens are swept in the background
	go func() {
		ticker := time.NewTicker(config.SessionSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := userRepo.DeleteExpiredSessionTokens(context.Background()); err != nil {
					slog.Error("session token sweep failed", "error", err)
				}
			}
		}
	}()

	// Periodic documentation refresh keeps the persona's corpus current
	if cfg.DocsBaseURL != "" {
		refresher := docs.NewRefresher(cfg.DocsBaseURL)
		go func() {
			ticker := time.NewTicker(config.DocsRefreshInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					corpus, err := refresher.Refresh(ctx)
					if err != nil {
						slog.Error("docs refresh failed", "error", err)
						continue
					}
					openClawService.UpdateCorpus(corpus)
					slog.Info("docs corpus refreshed", "bytes", len(corpus))
				}
			}
		}()
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           h.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
