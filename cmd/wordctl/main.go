package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/wordsync/api/internal/cache"
	"github.com/wordsync/api/internal/cli"
	"github.com/wordsync/api/internal/config"
	"github.com/wordsync/api/internal/reconcile"
	"github.com/wordsync/api/internal/store"
)

func main() {
	_ = godotenv.Load()

	if err := cli.NewRootCommand(openEnv).Execute(); err != nil {
		os.Exit(1)
	}
}

func openEnv(ctx context.Context) (*cli.Env, error) {
	cfg := config.Load()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	s, err := store.Open(cfg)
	if err != nil {
		return nil, err
	}

	env := &cli.Env{
		Engine: reconcile.New(s,
			reconcile.WithTimeLayout(cfg.ServerTimeLayout),
			reconcile.WithLogger(logger),
		),
		Close: s.Close,
	}

	if cfg.RedisURL == "" {
		return env, nil
	}
	redisCache, err := cache.NewRedisCache(cfg.RedisURL)
	if err != nil {
		logger.Warn("redis unavailable, server snapshot cache will not be invalidated", "error", err)
		return env, nil
	}
	env.Invalidate = func(ctx context.Context) error {
		return redisCache.Delete(ctx, cache.SnapshotKey)
	}
	env.Close = func() error {
		redisCache.Close()
		return s.Close()
	}
	return env, nil
}
