package sitescope

import "context"

// SitemapService discovers sitemap endpoints and expands them into flat URL
// lists.
type SitemapService interface {
	// DiscoverEndpoints returns candidate sitemap endpoints for startURL:
	// the robots-declared endpoints plus a guessed /sitemap.xml on the
	// start host and on its www counterpart, deduplicated in that order.
	// No network I/O is performed; declared is whatever the caller already
	// learned from robots.txt.
	DiscoverEndpoints(startURL string, declared []string) []string

	// CollectURLs fetches endpoint and expands it into page URLs. Index
	// documents recurse into their child sitemaps; limit caps the total
	// number of URLs collected across the whole expansion. Fetch or parse
	// failures yield an empty result, never an error.
	CollectURLs(ctx context.Context, endpoint, userAgent string, limit int) []string
}
