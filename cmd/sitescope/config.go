package main

import (
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/fwojciec/sitescope"
)

// configFromEnv resolves process defaults from SITESCOPE_* environment
// variables, falling back to the built-in defaults for absent or
// unparseable values.
func configFromEnv() sitescope.Config {
	cfg := sitescope.DefaultConfig()

	if v := os.Getenv("SITESCOPE_DEPTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxDepth = n
		}
	}
	if v := os.Getenv("SITESCOPE_MAX_PAGES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxPages = n
		}
	}
	if v := os.Getenv("SITESCOPE_USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
	if v := os.Getenv("SITESCOPE_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Concurrency = n
		}
	}
	if v := os.Getenv("SITESCOPE_RESPECT_ROBOTS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.RespectRobots = b
		}
	}
	if v := os.Getenv("SITESCOPE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}
	if v := os.Getenv("SITESCOPE_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			cfg.RPS = f
		}
	}
	if v := os.Getenv("SITESCOPE_IGNORE_EXTENSIONS_FILE"); v != "" {
		cfg.ExtensionsPath = v
	}

	return cfg
}

// newLogger builds the process logger: text handler on stderr, level from
// SITESCOPE_LOG_LEVEL (debug, info, warn, error; default info).
func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch os.Getenv("SITESCOPE_LOG_LEVEL") {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
