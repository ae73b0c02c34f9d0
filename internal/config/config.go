// Package config reads server settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port               string
	JobsDatabaseURL    string
	ChromePath         string
	RenderTimeout      time.Duration
	InlineRemoteImages bool
	// InlineConcurrency bounds parallel image fetches per page.
	InlineConcurrency int
	LogLevel          slog.Level
	// BodyLimit is the maximum request body size in bytes.
	BodyLimit int
}

// Load reads the environment, falling back to defaults for unset values.
// Malformed values are errors rather than silently defaulted.
func Load() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	cfg := Config{
		Port:               "3000",
		JobsDatabaseURL:    getenv("JOBS_DATABASE_URL"),
		ChromePath:         getenv("CHROME_PATH"),
		RenderTimeout:      60 * time.Second,
		InlineRemoteImages: true,
		InlineConcurrency:  4,
		LogLevel:           slog.LevelInfo,
		BodyLimit:          10 << 20,
	}
	if v := getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := getenv("RENDER_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return cfg, fmt.Errorf("config: RENDER_TIMEOUT %q is not a positive duration", v)
		}
		cfg.RenderTimeout = d
	}
	if v := getenv("INLINE_REMOTE_IMAGES"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("config: INLINE_REMOTE_IMAGES %q: %w", v, err)
		}
		cfg.InlineRemoteImages = b
	}
	if v := getenv("INLINE_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return cfg, fmt.Errorf("config: INLINE_CONCURRENCY %q must be a positive integer", v)
		}
		cfg.InlineConcurrency = n
	}
	if v := getenv("BODY_LIMIT_MB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return cfg, fmt.Errorf("config: BODY_LIMIT_MB %q must be a positive integer", v)
		}
		cfg.BodyLimit = n << 20
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		lvl, err := ParseLevel(v)
		if err != nil {
			return cfg, err
		}
		cfg.LogLevel = lvl
	}
	return cfg, nil
}

// ParseLevel maps debug/info/warn/error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(strings.TrimSpace(s)))); err != nil {
		return slog.LevelInfo, fmt.Errorf("config: unknown log level %q", s)
	}
	return lvl, nil
}
