// Command reconcile runs one counter reconciliation pass and exits.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"time"

	"campus/internal/cache"
	"campus/internal/config"
	"campus/internal/database"
	"campus/internal/middleware"
	"campus/internal/reconcile"
	"campus/internal/repository"
)

func main() {
	timeout := flag.Duration("timeout", reconcile.DefaultTimeout, "Maximum duration of the pass")
	flag.Parse()

	if err := run(*timeout); err != nil {
		log.Fatalf("Reconciliation failed: %v", err)
	}
}

func run(timeout time.Duration) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()

	// repaired posts must not be served stale from the cache
	redisCache := cache.Connect(cfg.RedisURL)
	defer func() { _ = redisCache.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	report, err := reconcile.New(repository.NewCounterRepository(db, redisCache)).Run(ctx)
	if err != nil {
		return err
	}

	middleware.Logger.Info("reconciliation finished",
		slog.Int("posts_repaired", report.PostsRepaired),
		slog.Int("comment_counts", report.CommentCounts),
		slog.Int("reply_counts", report.ReplyCounts),
		slog.Int("like_counts", report.LikeCounts),
	)
	return nil
}
