package sitescope

import (
	"context"
	"time"
)

// RobotsPolicy answers crawl-permission questions for a single origin.
type RobotsPolicy interface {
	// Allowed reports whether the policy permits fetching the given path
	// (including the query string, if any).
	Allowed(path string) bool

	// CrawlDelay returns the delay the origin requests between fetches,
	// or zero when none is declared.
	CrawlDelay() time.Duration

	// Sitemaps returns the absolute sitemap URLs declared by the origin's
	// robots.txt, in declaration order.
	Sitemaps() []string
}

// RobotsService resolves robots policies per origin.
type RobotsService interface {
	// PolicyFor returns the policy governing the origin of rawURL for the
	// given user agent. Resolution never fails: when robots.txt is missing,
	// unreachable or malformed the returned policy allows everything.
	PolicyFor(ctx context.Context, rawURL, userAgent string) RobotsPolicy
}

// PermissivePolicy allows every path, declares no sitemaps and requests no
// crawl delay. It is the fail-open fallback when robots.txt cannot be read.
type PermissivePolicy struct{}

var _ RobotsPolicy = PermissivePolicy{}

func (PermissivePolicy) Allowed(string) bool       { return true }
func (PermissivePolicy) CrawlDelay() time.Duration { return 0 }
func (PermissivePolicy) Sitemaps() []string        { return nil }
