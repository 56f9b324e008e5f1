// Package scheduler runs the periodic nudge sweep over every known user.
package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"placement-backend/internal/shared/metrics"
	"placement-backend/internal/shared/telemetry"
)

const (
	defaultSpec        = "@every 1h"
	defaultConcurrency = 4
)

// Sweeper is the part of the dashboard service the sweep needs.
type Sweeper interface {
	ListUserIDs(ctx context.Context) ([]string, error)
	SweepNotifications(ctx context.Context, userID string) (int, error)
}

// Scheduler wraps robfig/cron and fans each sweep out over a bounded pool.
type Scheduler struct {
	cron        *cron.Cron
	sweeper     Sweeper
	spec        string
	concurrency int
}

// New builds a Scheduler. An empty spec means hourly.
func New(sweeper Sweeper, spec string, concurrency int) *Scheduler {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		spec = defaultSpec
	}
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Scheduler{
		cron:        cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		sweeper:     sweeper,
		spec:        spec,
		concurrency: concurrency,
	}
}

// Start registers the sweep and starts the cron loop.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() {
		if _, err := s.RunOnce(ctx); err != nil {
			telemetry.Error("nudge.sweep.failed", map[string]any{"error": err.Error()})
		}
	}); err != nil {
		return fmt.Errorf("cron add %q: %w", s.spec, err)
	}
	s.cron.Start()
	telemetry.Info("nudge.scheduler.started", map[string]any{
		"spec":        s.spec,
		"concurrency": s.concurrency,
	})
	return nil
}

// Stop waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	telemetry.Info("nudge.scheduler.stopped", nil)
}

// RunOnce sweeps every user and returns how many notifications were added.
// One user's failure does not stop the others.
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	start := time.Now()
	ids, err := s.sweeper.ListUserIDs(ctx)
	if err != nil {
		metrics.IncSweep("error")
		return 0, fmt.Errorf("list users: %w", err)
	}

	var added, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			n, err := s.sweeper.SweepNotifications(gctx, id)
			if err != nil {
				failed.Add(1)
				telemetry.Warn("nudge.sweep.user_failed", map[string]any{
					"user_id": id,
					"error":   err.Error(),
				})
				return nil
			}
			added.Add(int64(n))
			return nil
		})
	}
	_ = g.Wait()

	result := "ok"
	if failed.Load() > 0 {
		result = "error"
	}
	metrics.IncSweep(result)
	telemetry.Info("nudge.sweep.completed", map[string]any{
		"users":       len(ids),
		"failed":      failed.Load(),
		"added":       added.Load(),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return int(added.Load()), nil
}
