package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/sitescope"
)

// Ensure LoggingFetcher implements sitescope.Fetcher.
var _ sitescope.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with per-request logging.
type LoggingFetcher struct {
	next   sitescope.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next sitescope.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// FetchChain delegates to the wrapped fetcher and logs the outcome.
func (f *LoggingFetcher) FetchChain(ctx context.Context, rawURL, userAgent string) (res *sitescope.FetchResult, err error) {
	defer func(begin time.Time) {
		status, hops := 0, 0
		if res != nil {
			status = res.Status
			hops = len(res.Redirects)
		}
		f.logger.Info("fetch",
			"url", rawURL,
			"status", status,
			"hops", hops,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.FetchChain(ctx, rawURL, userAgent)
}
