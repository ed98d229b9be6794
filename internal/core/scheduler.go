package core

// scheduler.go provides background job scheduling for maintenance tasks.
//
// Currently implements import history pruning, which periodically deletes
// summaries older than the retention window in batches.
//
// The scheduler is long-running and stops with its context. Failed runs are
// logged and retried on the next tick; they never stop the application.

import (
	"context"
	"time"
)

// HistoryPruner is implemented by history stores that can delete old summaries.
type HistoryPruner interface {
	Prune(ctx context.Context, before time.Time, batchSize int) (int64, error)
}

// PruneConfig holds configuration for the history pruning scheduler.
// Zero values select defaults.
type PruneConfig struct {
	Retention     time.Duration // Age after which summaries are deleted (default: 90 days)
	BatchSize     int           // Rows per delete (default: 5000)
	CheckInterval time.Duration // How often to run (default: 24h)
}

func (c PruneConfig) withDefaults() PruneConfig {
	if c.Retention <= 0 {
		c.Retention = 90 * 24 * time.Hour
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 5000
	}
	if c.CheckInterval <= 0 {
		c.CheckInterval = 24 * time.Hour
	}
	return c
}

// StartHistoryPruner periodically deletes old import summaries.
// It runs immediately on start, then every CheckInterval, and returns when
// ctx is cancelled. It returns at once when the history store cannot prune.
func (s *Service) StartHistoryPruner(ctx context.Context, cfg PruneConfig) {
	pruner, ok := s.cfg.History.(HistoryPruner)
	if !ok {
		return
	}
	cfg = cfg.withDefaults()

	s.logger.Info("history pruner started",
		"retention", cfg.Retention,
		"batch_size", cfg.BatchSize,
		"interval", cfg.CheckInterval,
	)

	// Run immediately on startup
	s.runPruneJob(ctx, pruner, cfg)

	ticker := time.NewTicker(cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("history pruner stopped")
			return
		case <-ticker.C:
			s.runPruneJob(ctx, pruner, cfg)
		}
	}
}

// runPruneJob performs one prune cycle.
func (s *Service) runPruneJob(ctx context.Context, pruner HistoryPruner, cfg PruneConfig) {
	start := time.Now()
	cutoff := start.Add(-cfg.Retention).UTC()

	pruned, err := pruner.Prune(ctx, cutoff, cfg.BatchSize)
	if err != nil {
		s.logger.Error("history prune failed", "error", err, "pruned", pruned)
		return
	}
	s.logger.Info("pruned import history",
		"entries_pruned", pruned,
		"cutoff", cutoff,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
