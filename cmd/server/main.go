package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/playgrove/clickportal/internal/aggregate"
	"github.com/playgrove/clickportal/internal/config"
	"github.com/playgrove/clickportal/internal/database"
	"github.com/playgrove/clickportal/internal/game"
	"github.com/playgrove/clickportal/internal/handler/health"
	"github.com/playgrove/clickportal/internal/handler/wscounter"
	"github.com/playgrove/clickportal/internal/migrations"
	"github.com/playgrove/clickportal/internal/progress"
	"github.com/playgrove/clickportal/internal/server"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- SQLite ---
	db, err := database.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("connecting to sqlite: %w", err)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("connected to sqlite", "path", cfg.DBPath)

	// --- Shared counter ---
	// Without Redis the counter is process-local; fine for a single
	// instance or development.
	checks := map[string]health.Checker{"sqlite": dbChecker{db}}
	var counter aggregate.Counter
	if cfg.RedisURL != "" {
		rdb, err := openRedis(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer rdb.Close()
		counter = aggregate.NewRedisCounter(rdb, logger)
		checks["redis"] = redisChecker{rdb}
		logger.Info("connected to redis")
	} else {
		counter = aggregate.NewMemoryCounter()
		logger.Info("using in-memory counter")
	}

	// --- Local progress store ---
	prog, err := progress.NewFileStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("opening progress store: %w", err)
	}

	store := server.NewSQLiteStore(db)
	clock := game.SystemClock

	if err := server.SeedAdmin(ctx, logger, store, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return fmt.Errorf("seeding admin: %w", err)
	}

	// --- HTTP Server ---
	srv := server.New(cfg.HTTPAddr, server.Deps{
		Logger:             logger,
		Store:              store,
		Counter:            counter,
		Progress:           prog,
		Clock:              clock,
		Rules:              game.DefaultRules(),
		SPADir:             cfg.SPADir,
		LeaderboardRefresh: cfg.LeaderboardRefresh,
	}, func(r chi.Router) {
		r.Mount("/healthz", health.NewHandler(logger, checks).Routes())
		r.Mount("/ws", wscounter.NewHandler(logger, counter, clock).Routes())
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	g.Go(func() error {
		return srv.Live.Run(gctx)
	})

	g.Go(func() error {
		return srv.Arenas.Sweep(gctx, cfg.ArenaIdleTimeout)
	})

	return g.Wait()
}

func openRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return rdb, nil
}

// dbChecker adapts *sql.DB to health.Checker.
type dbChecker struct{ db *sql.DB }

func (d dbChecker) Check(ctx context.Context) error { return d.db.PingContext(ctx) }

// redisChecker adapts *redis.Client to health.Checker.
type redisChecker struct{ client *redis.Client }

func (r redisChecker) Check(ctx context.Context) error { return r.client.Ping(ctx).Err() }
