package sitescope

import "time"

// Config holds the process-level defaults a transport substitutes into
// requests and service construction. Only cmd/ reads the environment; core
// packages receive these values through injection.
type Config struct {
	// MaxDepth and MaxPages are substituted into crawl requests that leave
	// the fields unset.
	MaxDepth int
	MaxPages int

	// UserAgent is the default request user agent.
	UserAgent string

	// Concurrency bounds in-flight network operations per run.
	Concurrency int

	// RespectRobots enables robots.txt checks for crawls by default.
	RespectRobots bool

	// Timeout bounds each network request.
	Timeout time.Duration

	// RPS enables per-host pacing when positive; zero disables it.
	RPS float64

	// ExtensionsPath overrides the embedded ignored-extensions list when
	// non-empty.
	ExtensionsPath string
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		MaxDepth:      DefaultMaxDepth,
		MaxPages:      DefaultMaxPages,
		UserAgent:     DefaultUserAgent,
		Concurrency:   DefaultConcurrency,
		RespectRobots: true,
		Timeout:       20 * time.Second,
	}
}
