package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/gridstore/gridstore/internal/config"
	"github.com/gridstore/gridstore/internal/logging"
	"github.com/gridstore/gridstore/internal/persist"
	"github.com/gridstore/gridstore/internal/table"
	"github.com/gridstore/gridstore/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"backend", cfg.Persist.Backend,
		"seed_enabled", cfg.Seed.Enabled,
	)

	ctx := context.Background()

	store, cleanup, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open snapshot store", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	rows := table.NewRowStore(ctx, store)
	columns := table.NewColumnRegistry(ctx, store)

	slog.Info("stores initialized",
		"rows", rows.Len(),
		"from_snapshot", rows.FromSnapshot(),
	)

	// One-shot seed fetch. Only runs when no persisted snapshot exists;
	// a failure is logged and the prior state stays authoritative.
	if cfg.Seed.Enabled && !rows.FromSnapshot() {
		go func() {
			seedCtx, cancel := context.WithTimeout(ctx, cfg.Seed.Timeout)
			defer cancel()

			seeded, err := table.FetchSeed(seedCtx, http.DefaultClient, cfg.Seed.URL)
			if err != nil {
				slog.Warn("seed fetch failed, keeping existing rows", "error", err)
				return
			}
			if err := rows.ReplaceAll(seedCtx, seeded); err != nil {
				slog.Warn("seed persist failed", "error", err)
				return
			}
			slog.Info("seed data loaded", "rows", len(seeded))
		}()
	}

	server := web.NewServer(rows, columns, cfg)

	// Graceful shutdown on SIGINT/SIGTERM.
	stopCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	case <-stopCtx.Done():
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("graceful shutdown failed", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("server stopped")
}

// openStore selects and opens the snapshot backend from config. The
// returned cleanup releases whatever the backend holds open.
func openStore(ctx context.Context, cfg *config.Config) (persist.Store, func(), error) {
	switch strings.ToLower(cfg.Persist.Backend) {
	case "postgres":
		poolCfg, err := pgxpool.ParseConfig(cfg.Persist.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		poolCfg.MaxConns = int32(cfg.Persist.MaxConns)

		pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			return nil, nil, err
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		store, err := persist.NewPostgres(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store, pool.Close, nil

	case "memory":
		return persist.NewMemory(), func() {}, nil

	default:
		store, err := persist.OpenBolt(cfg.Persist.BoltPath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	}
}
