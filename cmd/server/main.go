package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/cardex/internal/cache"
	"github.com/JonMunkholm/cardex/internal/config"
	"github.com/JonMunkholm/cardex/internal/core"
	"github.com/JonMunkholm/cardex/internal/logging"
	"github.com/JonMunkholm/cardex/internal/storage/memory"
	"github.com/JonMunkholm/cardex/internal/storage/postgres"
	"github.com/JonMunkholm/cardex/internal/web"
)

func main() {
	loaded, err := config.LoadEnvFiles()
	if err != nil {
		slog.Error("failed to read .env file", "error", err)
		os.Exit(1)
	}
	if len(loaded) > 0 {
		slog.Info("loaded env files (overwriting existing env vars)", "files", loaded)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"upload_max_concurrent", cfg.Upload.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)
	slog.Debug("effective configuration", "config", cfg.String())

	ctx := context.Background()

	repo, closeRepo, err := openRepository(ctx, cfg)
	if err != nil {
		slog.Error("failed to open card store", "error", err)
		os.Exit(1)
	}
	defer closeRepo()

	cardCache, closeCache, err := openCache(ctx, cfg)
	if err != nil {
		slog.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer closeCache()

	limiter := core.NewUploadLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime)
	service := core.NewService(repo, cardCache, limiter, core.Options{
		MaxFileSize:   cfg.Upload.MaxFileSize,
		MaxImageSize:  cfg.Upload.MaxImageSize,
		Workers:       cfg.Upload.Workers,
		ImportTimeout: cfg.Upload.Timeout,
		CacheTTL:      cfg.Cache.TTL,
	})

	server := web.NewServer(service, cfg)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if status := limiter.Status(); status.Active > 0 {
			slog.Info("waiting for imports to complete", "active", status.Active)
			if err := limiter.WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("imports did not complete in time", "error", err)
			} else {
				slog.Info("all imports completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// openRepository connects to PostgreSQL when a URL is configured and falls
// back to the in-memory store otherwise.
func openRepository(ctx context.Context, cfg *config.Config) (core.Repository, func(), error) {
	if cfg.Database.URL == "" {
		slog.Warn("DATABASE_URL not set, cards are kept in memory")
		return memory.New(), func() {}, nil
	}

	pool, err := postgres.Open(ctx, cfg.Database.URL, postgres.PoolConfig{
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
	})
	if err != nil {
		return nil, nil, err
	}

	store := postgres.New(pool)
	if cfg.Database.Migrate {
		if err := store.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		slog.Info("database schema ready")
	}
	slog.Info("connected to database")
	return store, pool.Close, nil
}

// openCache returns a nil cache when no Redis URL is configured.
func openCache(ctx context.Context, cfg *config.Config) (core.Cache, func(), error) {
	if cfg.Redis.URL == "" {
		return nil, func() {}, nil
	}

	client, err := cache.Open(ctx, cfg.Redis.URL, cache.Options{
		PoolSize:     cfg.Redis.PoolSize,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		return nil, nil, err
	}
	slog.Info("connected to redis", "ttl", cfg.Cache.TTL)
	return cache.NewRedis(client), func() { client.Close() }, nil
}
