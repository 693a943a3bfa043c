package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/sitescope"
)

// Ensure LoggingSitemapService implements sitescope.SitemapService.
var _ sitescope.SitemapService = (*LoggingSitemapService)(nil)

// LoggingSitemapService wraps a SitemapService with expansion logging.
type LoggingSitemapService struct {
	next   sitescope.SitemapService
	logger *slog.Logger
}

// NewLoggingSitemapService creates a new LoggingSitemapService.
func NewLoggingSitemapService(next sitescope.SitemapService, logger *slog.Logger) *LoggingSitemapService {
	return &LoggingSitemapService{next: next, logger: logger}
}

// DiscoverEndpoints delegates to the wrapped service. Discovery is pure
// string work, so it is not logged.
func (s *LoggingSitemapService) DiscoverEndpoints(startURL string, declared []string) []string {
	return s.next.DiscoverEndpoints(startURL, declared)
}

// CollectURLs delegates to the wrapped service and logs the expansion.
func (s *LoggingSitemapService) CollectURLs(ctx context.Context, endpoint, userAgent string, limit int) (urls []string) {
	defer func(begin time.Time) {
		s.logger.Info("sitemap expansion",
			"endpoint", endpoint,
			"count", len(urls),
			"limit", limit,
			"duration", time.Since(begin),
		)
	}(time.Now())
	return s.next.CollectURLs(ctx, endpoint, userAgent, limit)
}
