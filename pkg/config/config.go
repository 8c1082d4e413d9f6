package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied when neither file, env, nor flags set a value.
const (
	DefaultHeartbeatTimeout = 10 * time.Second
	DefaultSweepInterval    = 15 * time.Second
	DefaultRetentionCron    = "0 2 * * *"
)

// Load reads and parses the YAML config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults fills zero values with the service defaults. The default
// sweep interval intentionally exceeds the default heartbeat timeout; see
// PresenceConfig.
func (c *Config) ApplyDefaults() {
	if c.Presence.HeartbeatTimeout == 0 {
		c.Presence.HeartbeatTimeout = Duration(DefaultHeartbeatTimeout)
	}
	if c.Presence.SweepInterval == 0 {
		c.Presence.SweepInterval = Duration(DefaultSweepInterval)
	}
	if c.Retention.Enabled && c.Retention.Cron == "" {
		c.Retention.Cron = DefaultRetentionCron
	}
	if c.Server.DBPath == "" {
		c.Server.DBPath = "./.database"
	}
}
