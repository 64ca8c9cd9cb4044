// Package config reads server settings from CHESS_* environment variables
// and command-line flags. Flags win over the environment.
package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

type Config struct {
	Addr          string
	AllowOrigins  string
	ClockTime     time.Duration
	MatchInterval time.Duration
	// ArchiveDir is where finished games are kept; empty means in memory.
	ArchiveDir string
	LogLevel   string
}

func Default() Config {
	return Config{
		Addr:          ":8080",
		AllowOrigins:  "http://localhost:5173",
		ClockTime:     10 * time.Minute,
		MatchInterval: 500 * time.Millisecond,
		ArchiveDir:    "",
		LogLevel:      "info",
	}
}

// Load builds a Config from defaults, the environment, then args.
func Load(args []string) (Config, error) {
	def := Default()
	cfg := def

	fs := flag.NewFlagSet("chess-server", flag.ContinueOnError)
	fs.StringVar(&cfg.Addr, "addr", getenv("CHESS_ADDR", def.Addr), "listen address")
	fs.StringVar(&cfg.AllowOrigins, "allow-origins", getenv("CHESS_ALLOW_ORIGINS", def.AllowOrigins), "comma-separated CORS origins")
	fs.StringVar(&cfg.ArchiveDir, "archive-dir", getenv("CHESS_ARCHIVE_DIR", def.ArchiveDir), "directory for the game archive (empty keeps it in memory)")
	fs.StringVar(&cfg.LogLevel, "log-level", getenv("CHESS_LOG_LEVEL", def.LogLevel), "trace, debug, info, warn or error")

	clock, err := getenvDuration("CHESS_CLOCK_TIME", def.ClockTime)
	if err != nil {
		return Config{}, err
	}
	interval, err := getenvDuration("CHESS_MATCH_INTERVAL", def.MatchInterval)
	if err != nil {
		return Config{}, err
	}
	fs.DurationVar(&cfg.ClockTime, "clock", clock, "time per player")
	fs.DurationVar(&cfg.MatchInterval, "match-interval", interval, "how often the matchmaking queue is drained")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.ClockTime <= 0 {
		return fmt.Errorf("clock time must be positive, got %s", c.ClockTime)
	}
	if c.MatchInterval <= 0 {
		return fmt.Errorf("match interval must be positive, got %s", c.MatchInterval)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLogLevel maps a level name onto fiber's log levels.
func ParseLogLevel(s string) (log.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return log.LevelTrace, nil
	case "debug":
		return log.LevelDebug, nil
	case "info", "":
		return log.LevelInfo, nil
	case "warn", "warning":
		return log.LevelWarn, nil
	case "error":
		return log.LevelError, nil
	}
	return log.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
