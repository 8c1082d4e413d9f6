// Package reaper runs the periodic presence sweep: participants whose
// heartbeat is older than the configured timeout are evicted and their
// departure announced as a status message.
package reaper

import (
	"context"
	"time"

	"chatroom/pkg/chat"
	"chatroom/pkg/config"
	"chatroom/pkg/logger"
	"chatroom/pkg/store"
)

// Start launches the sweep loop and returns a cancel func. The loop runs
// for the life of the service.
func Start(ctx context.Context, svc *chat.Service, cfg config.PresenceConfig) context.CancelFunc {
	interval := cfg.SweepInterval.Std()
	timeout := cfg.HeartbeatTimeout.Std()
	ctx2, cancel := context.WithCancel(ctx)
	go run(ctx2, svc, interval, timeout)
	logger.Info("reaper_started", "interval", interval, "timeout", timeout)
	return cancel
}

func run(ctx context.Context, svc *chat.Service, interval, timeout time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("reaper_stopping")
			return
		case <-ticker.C:
			Sweep(svc, timeout)
		}
	}
}

// Sweep runs one eviction pass over a snapshot of the registry. Each
// eviction commits independently: a failure on one participant is logged
// and the sweep moves on. The snapshot is taken outside any lock, and the
// staleness check is re-run per participant inside the eviction, so a
// heartbeat racing the sweep wins and the sweep never blocks request
// handling for more than one participant's worth of work.
func Sweep(svc *chat.Service, timeout time.Duration) {
	snap, err := svc.Participants()
	if err != nil {
		logger.Error("reaper_snapshot_failed", "error", err)
		return
	}
	for _, p := range snap {
		evicted, err := svc.EvictIfStale(p.Name, timeout)
		if err != nil {
			logger.Error("reaper_evict_failed", "name", p.Name, "error", err)
			continue
		}
		if evicted {
			store.ReaperEvictions.Inc()
		}
	}
	store.ReaperSweeps.Inc()
}
