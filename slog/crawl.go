// Package slog provides logging decorators for sitescope services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/sitescope"
)

// Ensure LoggingCrawlService implements sitescope.CrawlService.
var _ sitescope.CrawlService = (*LoggingCrawlService)(nil)

// LoggingCrawlService wraps a CrawlService with run-level logging.
type LoggingCrawlService struct {
	next   sitescope.CrawlService
	logger *slog.Logger
}

// NewLoggingCrawlService creates a new LoggingCrawlService.
func NewLoggingCrawlService(next sitescope.CrawlService, logger *slog.Logger) *LoggingCrawlService {
	return &LoggingCrawlService{next: next, logger: logger}
}

// Crawl delegates to the wrapped service and logs the run.
func (s *LoggingCrawlService) Crawl(ctx context.Context, req sitescope.CrawlRequest) (res *sitescope.CrawlResult, err error) {
	defer func(begin time.Time) {
		pages, urls := 0, 0
		if res != nil {
			pages = res.Stats.PagesFetched
			urls = len(res.Inventory)
		}
		s.logger.Info("crawl",
			"url", req.StartURL,
			"pages", pages,
			"urls", urls,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Crawl(ctx, req)
}
