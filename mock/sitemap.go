package mock

import (
	"context"

	"github.com/fwojciec/sitescope"
)

var _ sitescope.SitemapService = (*SitemapService)(nil)

// SitemapService is a mock implementation of sitescope.SitemapService.
type SitemapService struct {
	DiscoverEndpointsFn func(startURL string, declared []string) []string
	CollectURLsFn       func(ctx context.Context, endpoint, userAgent string, limit int) []string
}

func (s *SitemapService) DiscoverEndpoints(startURL string, declared []string) []string {
	return s.DiscoverEndpointsFn(startURL, declared)
}

func (s *SitemapService) CollectURLs(ctx context.Context, endpoint, userAgent string, limit int) []string {
	return s.CollectURLsFn(ctx, endpoint, userAgent, limit)
}
