// Package reconcile repairs drift between denormalized post counters and the
// rows they summarize.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"campus/internal/middleware"
	"campus/internal/repository"

	"github.com/robfig/cron/v3"
)

// DefaultTimeout bounds a single scheduled pass.
const DefaultTimeout = 5 * time.Minute

// Report summarizes one reconciliation pass.
type Report struct {
	PostsRepaired int `json:"posts_repaired"`
	CommentCounts int `json:"comment_counts"`
	ReplyCounts   int `json:"reply_counts"`
	LikeCounts    int `json:"like_counts"`
}

type Reconciler struct {
	counters repository.CounterRepository
}

func New(counters repository.CounterRepository) *Reconciler {
	return &Reconciler{counters: counters}
}

// Run finds every post whose counters disagree with the live rows and rewrites them.
func (r *Reconciler) Run(ctx context.Context) (Report, error) {
	var report Report

	drifts, err := r.counters.Drifted(ctx)
	if err != nil {
		return report, err
	}

	for _, d := range drifts {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := r.counters.Repair(ctx, d.ID); err != nil {
			return report, fmt.Errorf("repair post %d: %w", d.ID, err)
		}

		report.PostsRepaired++
		if d.CommentCount != d.TrueComments {
			report.CommentCounts++
			middleware.CounterRepairs.WithLabelValues("comment_count").Inc()
		}
		if d.ReplyCount != d.TrueReplies {
			report.ReplyCounts++
			middleware.CounterRepairs.WithLabelValues("reply_count").Inc()
		}
		if d.LikeCount != d.TrueLikes {
			report.LikeCounts++
			middleware.CounterRepairs.WithLabelValues("like_count").Inc()
		}
	}

	return report, nil
}

// RunLogged runs one pass bounded by timeout and logs the outcome.
func (r *Reconciler) RunLogged(timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := time.Now()
	report, err := r.Run(ctx)
	if err != nil {
		middleware.Logger.Error("counter reconciliation failed", slog.String("error", err.Error()))
		return
	}
	middleware.Logger.Info("counter reconciliation finished",
		slog.Int("posts_repaired", report.PostsRepaired),
		slog.Int("comment_counts", report.CommentCounts),
		slog.Int("reply_counts", report.ReplyCounts),
		slog.Int("like_counts", report.LikeCounts),
		slog.Duration("elapsed", time.Since(start)),
	)
}

// Schedule starts a cron scheduler running a pass on schedule. An empty schedule
// disables scheduling and returns a nil scheduler. Overlapping runs are skipped.
func (r *Reconciler) Schedule(schedule string) (*cron.Cron, error) {
	if schedule == "" {
		return nil, nil
	}

	logger := cron.PrintfLogger(slog.NewLogLogger(middleware.Logger.Handler(), slog.LevelInfo))
	scheduler := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	if _, err := scheduler.AddFunc(schedule, func() { r.RunLogged(DefaultTimeout) }); err != nil {
		return nil, fmt.Errorf("invalid reconcile schedule %q: %w", schedule, err)
	}
	scheduler.Start()
	return scheduler, nil
}
