package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable (NEXUS_HTTP_PORT, ...).
const EnvPrefix = "NEXUS"

type Config struct {
	HTTPPort          int
	GinMode           string
	DBPath            string
	LogLevel          string
	CatalogPath       string
	MaxWorkers        int
	InitialCredits    int
	BuiltinConverters []string
	SimulateTimeScale float64
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("http_port", 8000)
	v.SetDefault("gin_mode", "release")
	v.SetDefault("db_path", "./nexus.db")
	v.SetDefault("log_level", "info")
	v.SetDefault("catalog_path", "")
	v.SetDefault("max_workers", 4)
	v.SetDefault("initial_credits", 100)
	v.SetDefault("builtin_converters", "simulated")
	v.SetDefault("simulate_time_scale", 0.1)
}

// Load reads the configuration from v, which should already have its config
// file and environment bindings set up.
func Load(v *viper.Viper) *Config {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		HTTPPort:          v.GetInt("http_port"),
		GinMode:           v.GetString("gin_mode"),
		DBPath:            v.GetString("db_path"),
		LogLevel:          v.GetString("log_level"),
		CatalogPath:       v.GetString("catalog_path"),
		MaxWorkers:        v.GetInt("max_workers"),
		InitialCredits:    v.GetInt("initial_credits"),
		BuiltinConverters: splitAndTrim(v.GetString("builtin_converters")),
		SimulateTimeScale: v.GetFloat64("simulate_time_scale"),
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 1
	}
	if cfg.InitialCredits < 0 {
		cfg.InitialCredits = 0
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}
	return cfg
}

func (c *Config) HTTPAddr() string { return fmt.Sprintf(":%d", c.HTTPPort) }

// Logger builds the process logger at the configured level.
func (c *Config) Logger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func splitAndTrim(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
