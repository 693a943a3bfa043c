package sitescope

import (
	"context"
	"net/url"
)

// Defaults substituted by Normalize when a request field is zero. They can
// be overridden per request or through the configuration collaborator.
const (
	DefaultMaxDepth    = 2
	DefaultMaxPages    = 500
	DefaultConcurrency = 6
)

// DefaultUserAgent identifies the crawler when no override is given.
const DefaultUserAgent = "sitescope/1.0 (+https://github.com/fwojciec/sitescope)"

// SitemapDepthSentinel is the depth recorded for inventory items that
// entered through a sitemap and were never reached by the breadth-first
// walk. It marks "not a BFS discovery" rather than a real distance.
const SitemapDepthSentinel = 9999

// Provenance records how a URL entered the crawl inventory.
type Provenance string

const (
	ProvenanceHTML    Provenance = "html"
	ProvenanceSitemap Provenance = "sitemap"
	ProvenanceBoth    Provenance = "both"
)

// RedirectHop is one followed redirect within a logical fetch.
type RedirectHop struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Status int    `json:"status"`
}

// InventoryItem is one URL in the crawl inventory, keyed by its normalized
// key. Status 0 means the URL was never fetched.
type InventoryItem struct {
	URL         string        `json:"url"`
	Key         string        `json:"key"`
	FinalURL    string        `json:"finalUrl,omitempty"`
	Status      int           `json:"status"`
	ContentType string        `json:"contentType,omitempty"`
	Depth       int           `json:"depth"`
	Provenance  Provenance    `json:"provenance"`
	Redirects   []RedirectHop `json:"redirects,omitempty"`
	Title       string        `json:"title,omitempty"`
	ContentHash string        `json:"contentHash,omitempty"`
}

// Edge is one observed anchor from an internal page to an internal target,
// identified by normalized keys. Edges are recorded per observation and are
// not deduplicated.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// CrawlStats summarizes a finished crawl run.
type CrawlStats struct {
	PagesFetched int   `json:"pagesFetched"`
	FromSitemap  int   `json:"fromSitemap"`
	FromHTML     int   `json:"fromHtml"`
	ElapsedMs    int64 `json:"elapsedMs"`
}

// CrawlRequest describes one crawl run. Zero values for MaxDepth, MaxPages
// and UserAgent mean "use the configured default".
type CrawlRequest struct {
	StartURL          string `json:"startUrl"`
	MaxDepth          int    `json:"maxDepth"`
	MaxPages          int    `json:"maxPages"`
	IncludeSubdomains bool   `json:"includeSubdomains"`
	RespectRobots     bool   `json:"respectRobots"`
	UserAgent         string `json:"userAgent,omitempty"`
}

// Validate returns EINVALID if the request is structurally impossible to
// crawl. Network-level problems are not validation errors.
func (r *CrawlRequest) Validate() error {
	if r.StartURL == "" {
		return Errorf(EINVALID, "start URL required")
	}
	u, err := url.Parse(r.StartURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return Errorf(EINVALID, "invalid start URL %q", r.StartURL)
	}
	if r.MaxDepth < 0 {
		return Errorf(EINVALID, "max depth must be non-negative")
	}
	if r.MaxPages < 0 {
		return Errorf(EINVALID, "max pages must be non-negative")
	}
	return nil
}

// Normalize substitutes defaults for absent fields.
func (r *CrawlRequest) Normalize() {
	if r.MaxDepth == 0 {
		r.MaxDepth = DefaultMaxDepth
	}
	if r.MaxPages == 0 {
		r.MaxPages = DefaultMaxPages
	}
	if r.UserAgent == "" {
		r.UserAgent = DefaultUserAgent
	}
}

// CrawlResult is the full outcome of one crawl run: the merged inventory,
// the observed link graph and the derived reports.
type CrawlResult struct {
	StartURL         string          `json:"startUrl"`
	Inventory        []InventoryItem `json:"inventory"`
	Edges            []Edge          `json:"edges"`
	SitemapEndpoints []string        `json:"sitemapEndpoints"`
	Stats            CrawlStats      `json:"stats"`

	// OrphansInSitemap lists normalized keys declared in a sitemap that no
	// internal page links to.
	OrphansInSitemap []string `json:"orphansInSitemap"`

	// LinkedNotInSitemap lists normalized keys that internal pages link to
	// but no sitemap declares.
	LinkedNotInSitemap []string `json:"linkedNotInSitemap"`

	// StatusBuckets is a histogram of inventory statuses by family:
	// 0xx, 2xx, 3xx, 4xx, 5xx. Never-fetched placeholders count as 0xx.
	StatusBuckets map[string]int `json:"statusBuckets"`

	// DuplicateContent groups normalized keys of fetched HTML pages that
	// share a content hash. Only groups of two or more are reported.
	DuplicateContent [][]string `json:"duplicateContent,omitempty"`
}

// CrawlService runs site crawls.
type CrawlService interface {
	// Crawl walks the site starting at req.StartURL and returns the merged
	// inventory. Individual fetch failures are recovered inside the run;
	// only request validation fails the call.
	Crawl(ctx context.Context, req CrawlRequest) (*CrawlResult, error)
}
