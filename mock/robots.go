package mock

import (
	"context"
	"time"

	"github.com/fwojciec/sitescope"
)

var _ sitescope.RobotsService = (*RobotsService)(nil)

// RobotsService is a mock implementation of sitescope.RobotsService.
type RobotsService struct {
	PolicyForFn func(ctx context.Context, rawURL, userAgent string) sitescope.RobotsPolicy
}

func (s *RobotsService) PolicyFor(ctx context.Context, rawURL, userAgent string) sitescope.RobotsPolicy {
	return s.PolicyForFn(ctx, rawURL, userAgent)
}

var _ sitescope.RobotsPolicy = (*RobotsPolicy)(nil)

// RobotsPolicy is a mock implementation of sitescope.RobotsPolicy.
type RobotsPolicy struct {
	AllowedFn    func(path string) bool
	CrawlDelayFn func() time.Duration
	SitemapsFn   func() []string
}

func (p *RobotsPolicy) Allowed(path string) bool {
	return p.AllowedFn(path)
}

func (p *RobotsPolicy) CrawlDelay() time.Duration {
	return p.CrawlDelayFn()
}

func (p *RobotsPolicy) Sitemaps() []string {
	return p.SitemapsFn()
}
