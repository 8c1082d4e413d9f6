// Package retention periodically purges old status messages (the
// join/leave announcements) so the log does not grow without bound in
// long-lived rooms. Client messages are never purged.
package retention

import (
	"context"
	"fmt"
	"time"

	"github.com/adhocore/gronx"

	"chatroom/pkg/config"
	"chatroom/pkg/logger"
	"chatroom/pkg/store"
)

// Start starts the retention scheduler if enabled. Returns a cancel func.
func Start(ctx context.Context, st *store.Store, cfg config.RetentionConfig) (context.CancelFunc, error) {
	if !cfg.Enabled {
		logger.Info("retention_disabled")
		return func() {}, nil
	}
	cronExpr := cfg.Cron
	if cronExpr == "" {
		cronExpr = config.DefaultRetentionCron
	}
	if !gronx.IsValid(cronExpr) {
		return nil, fmt.Errorf("invalid retention cron expression: %s", cronExpr)
	}
	if cfg.Period.Std() <= 0 {
		return nil, fmt.Errorf("retention period must be positive")
	}

	logger.Info("retention_enabled", "cron", cronExpr, "period", cfg.Period.Std(), "dry_run", cfg.DryRun)
	ctx2, cancel := context.WithCancel(ctx)
	go runScheduler(ctx2, st, cfg, cronExpr)
	return cancel, nil
}

// runScheduler computes the next cron tick with gronx and sleeps until
// then, so the schedule stays sharp across long uptimes.
func runScheduler(ctx context.Context, st *store.Store, cfg config.RetentionConfig, cronExpr string) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("retention_scheduler_stopping")
			return
		default:
		}

		now := time.Now().UTC()
		next, err := gronx.NextTickAfter(cronExpr, now, false)
		if err != nil {
			logger.Error("retention_nexttick_failed", "cron", cronExpr, "error", err)
			select {
			case <-time.After(30 * time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}

		select {
		case <-time.After(time.Until(next)):
			if _, err := RunOnce(st, cfg); err != nil {
				logger.Error("retention_run_error", "error", err)
			}
		case <-ctx.Done():
			logger.Info("retention_scheduler_stopping")
			return
		}
	}
}

// RunOnce purges status messages older than the configured period, in
// batches, and returns how many were purged (or would be, in dry-run).
func RunOnce(st *store.Store, cfg config.RetentionConfig) (int, error) {
	cutoff := time.Now().UTC().Add(-cfg.Period.Std()).UnixNano()
	if cfg.DryRun {
		// nothing is deleted, so a single unbounded scan counts everything
		n, err := st.PurgeStatusBefore(cutoff, 0, true)
		logger.Info("retention_run_complete", "purged", n, "dry_run", true)
		return n, err
	}
	total := 0
	for {
		n, err := st.PurgeStatusBefore(cutoff, cfg.BatchSize, false)
		if err != nil {
			return total, err
		}
		total += n
		if cfg.BatchSize <= 0 || n < cfg.BatchSize {
			break
		}
	}
	if total > 0 {
		store.RetentionPurged.Add(float64(total))
	}
	logger.Info("retention_run_complete", "purged", total, "dry_run", false)
	return total, nil
}
