package config

import (
	"flag"
	"net"
	"os"
	"strconv"
	"time"
)

// Flags holds parsed command-line flag values and which were set.
type Flags struct {
	Addr   string
	DB     string
	Config string
	Set    map[string]bool
}

// EffectiveConfigResult is the merged view of flags, env, and config file.
type EffectiveConfigResult struct {
	Config *Config
	Addr   string
	DBPath string
	Source string // "flags", "env", or "config"
}

// ParseConfigFlags parses command-line flags and returns them as a Flags
// struct.
func ParseConfigFlags() Flags {
	addrPtr := flag.String("addr", ":8080", "HTTP listen address")
	dbPtr := flag.String("db", "./.database", "Pebble DB path")
	cfgPtr := flag.String("config", "./config.yaml", "Path to config file")
	flag.Parse()
	setFlags := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })
	return Flags{Addr: *addrPtr, DB: *dbPtr, Config: *cfgPtr, Set: setFlags}
}

// LoadEffective merges the config file (if present), CHATROOM_* env vars,
// and command-line flags. Precedence: flags > env > file > defaults.
func LoadEffective(flags Flags) (EffectiveConfigResult, error) {
	cfgPath := flags.Config
	if !flags.Set["config"] {
		if v := os.Getenv("CHATROOM_CONFIG"); v != "" {
			cfgPath = v
		}
	}

	source := "defaults"
	cfg, err := Load(cfgPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return EffectiveConfigResult{}, err
		}
		cfg = &Config{}
	} else {
		source = "config"
	}

	if applyEnv(cfg) {
		source = "env"
	}

	cfg.ApplyDefaults()

	addr := cfg.Addr()
	dbPath := cfg.Server.DBPath
	if flags.Set["addr"] {
		addr = flags.Addr
		source = "flags"
	}
	if flags.Set["db"] {
		dbPath = flags.DB
		source = "flags"
	}

	return EffectiveConfigResult{Config: cfg, Addr: addr, DBPath: dbPath, Source: source}, nil
}

// applyEnv overlays CHATROOM_* environment variables onto cfg and reports
// whether any were used.
func applyEnv(cfg *Config) bool {
	used := false
	if v := os.Getenv("CHATROOM_ADDR"); v != "" {
		used = true
		if h, p, err := net.SplitHostPort(v); err == nil {
			cfg.Server.Address = h
			if pi, err := strconv.Atoi(p); err == nil {
				cfg.Server.Port = pi
			}
		} else {
			cfg.Server.Address = v
		}
	}
	if v := os.Getenv("CHATROOM_DB_PATH"); v != "" {
		used = true
		cfg.Server.DBPath = v
	}
	if v := os.Getenv("CHATROOM_LOG_LEVEL"); v != "" {
		used = true
		cfg.Logging.Level = v
	}
	if v := os.Getenv("CHATROOM_HEARTBEAT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			used = true
			cfg.Presence.HeartbeatTimeout = Duration(d)
		}
	}
	if v := os.Getenv("CHATROOM_SWEEP_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			used = true
			cfg.Presence.SweepInterval = Duration(d)
		}
	}
	return used
}
