package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Config carries runtime options for cpumon.
type Config struct {
	Interval  time.Duration
	ProcRoot  string
	SysRoot   string
	LogLevel  string
	LogFormat string
	Listen    string
	Stream    bool
}

func Default() Config {
	return Config{
		Interval:  time.Second,
		ProcRoot:  "/proc",
		SysRoot:   "/sys",
		LogLevel:  "info",
		LogFormat: "text",
		Listen:    ":9105",
	}
}

// BindFlags registers the shared flags on fs, writing into cfg.
func (cfg *Config) BindFlags(fs *pflag.FlagSet) {
	fs.DurationVar(&cfg.Interval, "interval", cfg.Interval, "sampling interval")
	fs.StringVar(&cfg.ProcRoot, "proc", cfg.ProcRoot, "procfs mount point")
	fs.StringVar(&cfg.SysRoot, "sys", cfg.SysRoot, "sysfs mount point")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug|info|warn|error")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: text|json")
}

// Load reads an optional .env file and applies environment overrides for
// every flag the user did not set explicitly.
func (cfg *Config) Load(fs *pflag.FlagSet) {
	_ = godotenv.Load()
	cfg.applyEnv(func(name string) bool {
		return fs != nil && fs.Changed(name)
	})
}

func (cfg *Config) applyEnv(changed func(flag string) bool) {
	if v := firstEnv("CPUMON_INTERVAL"); v != "" && !changed("interval") {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Interval = parsed
		} else if parsed, err2 := time.ParseDuration(v + "s"); err2 == nil {
			cfg.Interval = parsed
		}
	}
	if v := firstEnv("CPUMON_PROC", "HOST_PROC"); v != "" && !changed("proc") {
		cfg.ProcRoot = v
	}
	if v := firstEnv("CPUMON_SYS", "HOST_SYS"); v != "" && !changed("sys") {
		cfg.SysRoot = v
	}
	if v := firstEnv("CPUMON_LOG_LEVEL"); v != "" && !changed("log-level") {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := firstEnv("CPUMON_LOG_FORMAT"); v != "" && !changed("log-format") {
		cfg.LogFormat = strings.ToLower(v)
	}
	if v := firstEnv("CPUMON_LISTEN"); v != "" && !changed("listen") {
		cfg.Listen = v
	}
}

// Validate rejects settings the sampler cannot run with.
func (cfg Config) Validate() error {
	if cfg.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", cfg.Interval)
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", cfg.LogLevel)
	}
	switch cfg.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", cfg.LogFormat)
	}
	return nil
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
