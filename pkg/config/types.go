package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

// Config is the main configuration struct.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Security  SecurityConfig  `yaml:"security"`
	Logging   LoggingConfig   `yaml:"logging"`
	Presence  PresenceConfig  `yaml:"presence"`
	Retention RetentionConfig `yaml:"retention"`
	Limits    LimitsConfig    `yaml:"limits"`
}

// ServerConfig holds listen address and storage path settings.
type ServerConfig struct {
	Address string `yaml:"address"`
	Port    int    `yaml:"port"`
	DBPath  string `yaml:"db_path"`
}

// SecurityConfig holds CORS and rate-limit settings. Rate limiting is off
// when RPS is zero.
type SecurityConfig struct {
	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"cors"`
	RateLimit struct {
		RPS   float64 `yaml:"rps"`
		Burst int     `yaml:"burst"`
	} `yaml:"rate_limit"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// PresenceConfig tunes the heartbeat/eviction engine. The default sweep
// interval (15s) deliberately exceeds the default heartbeat timeout (10s):
// a participant can sit stale for up to one extra interval before the
// sweep even looks. Tighten both knobs together if that latency matters.
type PresenceConfig struct {
	HeartbeatTimeout Duration `yaml:"heartbeat_timeout"`
	SweepInterval    Duration `yaml:"sweep_interval"`
}

// RetentionConfig holds configuration for the automatic purge of old
// status messages.
type RetentionConfig struct {
	Enabled   bool     `yaml:"enabled"`
	Cron      string   `yaml:"cron"`
	Period    Duration `yaml:"period"`
	BatchSize int      `yaml:"batch_size"`
	DryRun    bool     `yaml:"dry_run"`
}

// LimitsConfig bounds incoming payloads. Zero disables a limit.
type LimitsConfig struct {
	NameMaxLen  int       `yaml:"name_max_len"`
	TextMaxLen  int       `yaml:"text_max_len"`
	MaxBodySize SizeBytes `yaml:"max_body_size"`
}

// Addr returns the listen address in host:port form.
func (c *Config) Addr() string {
	if c.Server.Port == 0 {
		if c.Server.Address != "" {
			return c.Server.Address
		}
		return ":8080"
	}
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// Duration is a YAML-friendly time.Duration: accepts "10s"/"2m" strings or
// bare numbers (seconds).
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw == "" {
		*d = 0
		return nil
	}
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		*d = Duration(time.Duration(secs * float64(time.Second)))
		return nil
	}
	dd, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(dd)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// SizeBytes is a YAML-friendly byte size: accepts "1MB"/"512KiB" strings
// or bare numbers (bytes).
type SizeBytes int64

func (s *SizeBytes) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw == "" {
		*s = 0
		return nil
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		*s = SizeBytes(n)
		return nil
	}
	n, err := humanize.ParseBytes(raw)
	if err != nil {
		return fmt.Errorf("invalid size %q: %w", raw, err)
	}
	*s = SizeBytes(n)
	return nil
}

func (s SizeBytes) MarshalYAML() (interface{}, error) {
	return humanize.Bytes(uint64(s)), nil
}
