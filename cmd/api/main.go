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

	"github.com/joho/godotenv"

	"syndicate/internal/auth"
	"syndicate/internal/config"
	transporthttp "syndicate/internal/http"
	"syndicate/internal/platform/database"
	"syndicate/internal/platform/logging"
	"syndicate/internal/stats"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.New(cfg.LogLevel)

	statsSvc, cleanup, err := buildStatsService(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize stats repository", "error", err)
		os.Exit(1)
	}
	if cleanup != nil {
		defer cleanup()
	}

	providerClient := &http.Client{Timeout: 10 * time.Second}
	discord := auth.NewDiscordAuthenticator(
		cfg.DiscordClientID,
		cfg.DiscordClientSecret,
		cfg.DiscordRedirectURI,
		auth.WithHTTPClient(providerClient),
	)

	router := transporthttp.NewRouter(cfg, discord, statsSvc, logger)

	srv := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    http.DefaultMaxHeaderBytes,
	}

	go func() {
		logger.Info("Syndicate API listening", "addr", srv.Addr, "store", cfg.DataStore)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

func buildStatsService(ctx context.Context, cfg config.Config, logger *slog.Logger) (*stats.Service, func(), error) {
	if cfg.UseInMemoryStore() {
		logger.Info("using in-memory stats repository")
		return stats.NewService(stats.NewMemoryRepository()), nil, nil
	}

	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL missing; stats endpoints will report 500")
		return nil, nil, nil
	}

	db, err := database.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		_ = db.Close()
	}

	logger.Info("connected to postgres")
	return stats.NewService(stats.NewPostgresRepository(db)), cleanup, nil
}
