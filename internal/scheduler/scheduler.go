// Package scheduler drives the periodic jobs: market sweeps, cache
// hygiene and signal staleness.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"Barashor/internal/domain/repository"
	"Barashor/internal/service/cache"
	"Barashor/internal/usecase"
	"Barashor/pkg/logger"
)

// Config carries the cron specs and the signal freshness window.
type Config struct {
	AnalyzeSpec   string
	CacheSweep    string
	MarkStaleSpec string
	StaleAfter    time.Duration
}

// Scheduler owns the cron runner. Jobs are independent: a failing sweep
// never blocks cache hygiene or staleness marking.
type Scheduler struct {
	cron *cron.Cron
	log  *logger.Logger
}

// New registers the three periodic jobs. Empty specs fall back to the
// 4-hour bar cadence: sweep on bar close, sweep the cache every ten
// minutes, invalidate stale signals hourly.
func New(
	cfg Config,
	pipeline *usecase.Pipeline,
	seriesCache *cache.SeriesCache,
	store repository.SignalStore,
	log *logger.Logger,
) (*Scheduler, error) {
	if cfg.AnalyzeSpec == "" {
		cfg.AnalyzeSpec = "5 */4 * * *"
	}
	if cfg.CacheSweep == "" {
		cfg.CacheSweep = "*/10 * * * *"
	}
	if cfg.MarkStaleSpec == "" {
		cfg.MarkStaleSpec = "0 * * * *"
	}

	c := cron.New()

	if _, err := c.AddFunc(cfg.AnalyzeSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
		defer cancel()
		decisions, err := pipeline.EvaluateAll(ctx)
		if err != nil {
			log.Error("scheduled sweep failed", logger.Error(err))
			return
		}
		log.Info("scheduled sweep done", logger.Int("signals", len(decisions)))
	}); err != nil {
		return nil, err
	}

	if _, err := c.AddFunc(cfg.CacheSweep, func() {
		if removed := seriesCache.ClearExpired(); removed > 0 {
			log.Debug("expired cache entries swept", logger.Int("removed", removed))
		}
	}); err != nil {
		return nil, err
	}

	if _, err := c.AddFunc(cfg.MarkStaleSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		rows, err := store.MarkStale(ctx, cfg.StaleAfter)
		if err != nil {
			log.Error("staleness pass failed", logger.Error(err))
			return
		}
		if rows > 0 {
			log.Info("signals marked stale", logger.Int64("rows", rows))
		}
	}); err != nil {
		return nil, err
	}

	return &Scheduler{cron: c, log: log}, nil
}

// Start launches the cron runner in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started")
}

// Stop halts scheduling and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("scheduler stopped")
}
