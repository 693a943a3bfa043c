package mock

import (
	"context"

	"github.com/fwojciec/sitescope"
)

var _ sitescope.CrawlService = (*CrawlService)(nil)

// CrawlService is a mock implementation of sitescope.CrawlService.
type CrawlService struct {
	CrawlFn func(ctx context.Context, req sitescope.CrawlRequest) (*sitescope.CrawlResult, error)
}

func (s *CrawlService) Crawl(ctx context.Context, req sitescope.CrawlRequest) (*sitescope.CrawlResult, error) {
	return s.CrawlFn(ctx, req)
}
