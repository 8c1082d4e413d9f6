package app

import (
	"errors"
	"fmt"

	"github.com/adhocore/gronx"

	"chatroom/pkg/config"
)

// validateConfig checks the effective config early so startup fails fast.
func validateConfig(eff config.EffectiveConfigResult) error {
	cfg := eff.Config
	if eff.DBPath == "" {
		return errors.New("db path is required")
	}
	if eff.Addr == "" {
		return errors.New("listen address is required")
	}
	if cfg.Presence.HeartbeatTimeout.Std() <= 0 {
		return errors.New("presence.heartbeat_timeout must be positive")
	}
	if cfg.Presence.SweepInterval.Std() <= 0 {
		return errors.New("presence.sweep_interval must be positive")
	}
	if cfg.Retention.Enabled {
		if cfg.Retention.Cron != "" && !gronx.IsValid(cfg.Retention.Cron) {
			return fmt.Errorf("invalid retention.cron: %s", cfg.Retention.Cron)
		}
		if cfg.Retention.Period.Std() <= 0 {
			return errors.New("retention.period must be positive when retention is enabled")
		}
	}
	return nil
}
