// Package crawl provides the breadth-first site crawl engine.
// It coordinates robots resolution, sitemap expansion, fetching and link
// extraction into one deduplicated URL inventory with derived reports.
package crawl

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/sitescope"
	"golang.org/x/sync/errgroup"
)

var _ sitescope.CrawlService = (*Crawler)(nil)

// Crawler orchestrates site crawls. Sitemaps, Robots, Fetcher and Parser
// are required; Extensions and Limiter are optional (a nil Extensions
// ignores nothing, a nil Limiter applies no pacing).
type Crawler struct {
	Fetcher     sitescope.Fetcher
	Robots      sitescope.RobotsService
	Sitemaps    sitescope.SitemapService
	Parser      sitescope.HTMLParser
	Extensions  *sitescope.ExtensionFilter
	Limiter     sitescope.HostLimiter
	Concurrency int
}

// node is one frontier entry awaiting a visit.
type node struct {
	url   string
	depth int
}

// run holds the mutable state of a single crawl. The mutex guards the
// work queue, the seen set, the inventory, the edge list and the fetched
// counter, which concurrent visits all touch. fromSitemap is built before
// the traversal starts and read-only afterwards.
type run struct {
	crawler *Crawler
	req     sitescope.CrawlRequest
	policy  sitescope.RobotsPolicy

	fromSitemap map[string]bool

	mu        sync.Mutex
	queue     []node
	seen      map[string]bool
	inventory map[string]*sitescope.InventoryItem
	edges     []sitescope.Edge
	fetched   int
}

// Crawl walks the site starting at req.StartURL, merging HTML link
// discovery with sitemap declarations into one inventory. Individual fetch
// failures are dropped silently; only request validation fails the call.
func (c *Crawler) Crawl(ctx context.Context, req sitescope.CrawlRequest) (*sitescope.CrawlResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	req.Normalize()

	start := time.Now()

	r := &run{
		crawler:     c,
		req:         req,
		policy:      sitescope.PermissivePolicy{},
		fromSitemap: make(map[string]bool),
		seen:        make(map[string]bool),
		inventory:   make(map[string]*sitescope.InventoryItem),
	}

	if req.RespectRobots {
		r.policy = c.Robots.PolicyFor(ctx, req.StartURL, req.UserAgent)
	}

	endpoints := r.collectSitemaps(ctx)

	r.queue = append(r.queue, node{url: req.StartURL, depth: 0})
	if counterpart := sitescope.WWWCounterpart(req.StartURL); counterpart != "" {
		r.queue = append(r.queue, node{url: counterpart, depth: 0})
	}

	r.traverse(ctx)
	r.postPass(ctx)

	return r.buildResult(start, endpoints), nil
}

// collectSitemaps expands every candidate sitemap endpoint into the
// pre-registered part of the inventory. A shared remaining-capacity budget
// is threaded through the endpoints so the total collected never exceeds
// the page budget. It returns the endpoints consulted.
func (r *run) collectSitemaps(ctx context.Context) []string {
	candidates := r.crawler.Sitemaps.DiscoverEndpoints(r.req.StartURL, r.policy.Sitemaps())

	var consulted []string
	remaining := r.req.MaxPages
	for _, endpoint := range candidates {
		if remaining <= 0 {
			break
		}
		consulted = append(consulted, endpoint)

		urls := r.crawler.Sitemaps.CollectURLs(ctx, endpoint, r.req.UserAgent, remaining)
		remaining -= len(urls)

		for _, u := range urls {
			key := sitescope.NormalizeForKey(u)
			if r.fromSitemap[key] {
				continue
			}
			r.fromSitemap[key] = true
			r.inventory[key] = &sitescope.InventoryItem{
				URL:        u,
				Key:        key,
				Depth:      sitescope.SitemapDepthSentinel,
				Provenance: sitescope.ProvenanceSitemap,
			}
		}
	}
	return consulted
}

// traverse runs the frontier to exhaustion or until the page budget is
// spent, processing the queue in batches no larger than the concurrency
// limit and waiting for each full batch before dequeuing the next.
func (r *run) traverse(ctx context.Context) {
	concurrency := r.concurrency()

	for ctx.Err() == nil {
		batch := r.nextBatch(concurrency)
		if len(batch) == 0 {
			return
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(concurrency)
		for _, n := range batch {
			n := n
			g.Go(func() error {
				r.visit(gctx, n)
				return nil
			})
		}
		_ = g.Wait()
	}
}

func (r *run) concurrency() int {
	if r.crawler.Concurrency > 0 {
		return r.crawler.Concurrency
	}
	return sitescope.DefaultConcurrency
}

// nextBatch pops up to n nodes off the front of the queue. It returns nil
// once the queue is drained or the fetch budget is spent.
func (r *run) nextBatch(n int) []node {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.fetched >= r.req.MaxPages || len(r.queue) == 0 {
		return nil
	}
	if n > len(r.queue) {
		n = len(r.queue)
	}
	batch := r.queue[:n:n]
	r.queue = r.queue[n:]
	return batch
}

// visit processes one frontier node: dedup, policy gates, fetch, inventory
// merge, edge recording and child scheduling. Fetch failures abandon the
// node silently.
func (r *run) visit(ctx context.Context, n node) {
	if ctx.Err() != nil {
		return
	}

	key := sitescope.NormalizeForKey(n.url)

	r.mu.Lock()
	if r.seen[key] {
		r.mu.Unlock()
		return
	}
	r.seen[key] = true
	r.mu.Unlock()

	// Seeds are exempt from the internality gate so the www counterpart
	// of the start URL is still fetched when subdomains are excluded.
	if n.depth > 0 && !sitescope.IsInternal(r.req.StartURL, n.url, r.req.IncludeSubdomains) {
		return
	}
	if r.crawler.Extensions.HasIgnoredExtension(n.url) {
		return
	}
	if r.req.RespectRobots && !r.policy.Allowed(requestPath(n.url)) {
		return
	}

	if !r.tryReserve() {
		return
	}

	if r.crawler.Limiter != nil {
		if host := hostOf(n.url); host != "" {
			if err := r.crawler.Limiter.Wait(ctx, host); err != nil {
				r.release()
				return
			}
		}
	}

	res, err := r.crawler.Fetcher.FetchChain(ctx, n.url, r.req.UserAgent)
	if err != nil {
		r.release()
		return
	}

	item := &sitescope.InventoryItem{
		URL:         n.url,
		Key:         key,
		FinalURL:    res.FinalURL,
		Status:      res.Status,
		ContentType: res.ContentType,
		Depth:       n.depth,
		Provenance:  sitescope.ProvenanceHTML,
		Redirects:   res.Redirects,
	}
	if r.fromSitemap[key] {
		item.Provenance = sitescope.ProvenanceBoth
	}

	var page *sitescope.Page
	if isSuccessfulHTML(res) {
		if parsed, err := r.crawler.Parser.ParsePage(res.Body, res.FinalURL); err == nil {
			page = parsed
			item.Title = page.Title
			item.ContentHash = contentHash(res.Body)
		}
	}

	r.mu.Lock()
	r.inventory[key] = item
	r.mu.Unlock()

	if page != nil {
		r.recordLinks(key, n.depth, page.Links)
	}

	if delay := r.policy.CrawlDelay(); delay > 0 {
		sleep(ctx, delay)
	}
}

// recordLinks records one edge per observed internal link and schedules
// unseen targets one level deeper, while the depth bound allows.
func (r *run) recordLinks(fromKey string, depth int, links []string) {
	type target struct {
		url string
		key string
	}
	var targets []target
	for _, link := range links {
		if !sitescope.IsInternal(r.req.StartURL, link, r.req.IncludeSubdomains) {
			continue
		}
		if r.crawler.Extensions.HasIgnoredExtension(link) {
			continue
		}
		targets = append(targets, target{url: link, key: sitescope.NormalizeForKey(link)})
	}
	if len(targets) == 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range targets {
		r.edges = append(r.edges, sitescope.Edge{From: fromKey, To: t.key})
		if depth < r.req.MaxDepth && !r.seen[t.key] {
			r.queue = append(r.queue, node{url: t.url, depth: depth + 1})
		}
	}
}

// postPass fetches sitemap-declared URLs that pages link to but the
// traversal never reached, up to the remaining page budget. Their
// placeholder entries are updated in place; failures leave the placeholder
// untouched.
func (r *run) postPass(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	inbound := r.inboundKeys()

	r.mu.Lock()
	var targets []*sitescope.InventoryItem
	for key, item := range r.inventory {
		if item.Status == 0 && r.fromSitemap[key] && inbound[key] {
			targets = append(targets, item)
		}
	}
	r.mu.Unlock()

	if len(targets) == 0 {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency())
	for _, item := range targets {
		item := item
		g.Go(func() error {
			r.resolvePlaceholder(gctx, item)
			return nil
		})
	}
	_ = g.Wait()
}

// resolvePlaceholder fetches one pre-registered sitemap URL and fills in
// its real status. The recorded depth is capped at one past the requested
// max depth, marking "reachable but beyond the traversal horizon".
func (r *run) resolvePlaceholder(ctx context.Context, item *sitescope.InventoryItem) {
	if !r.tryReserve() {
		return
	}

	if r.crawler.Limiter != nil {
		if host := hostOf(item.URL); host != "" {
			if err := r.crawler.Limiter.Wait(ctx, host); err != nil {
				r.release()
				return
			}
		}
	}

	res, err := r.crawler.Fetcher.FetchChain(ctx, item.URL, r.req.UserAgent)
	if err != nil {
		r.release()
		return
	}

	var title, hash string
	if isSuccessfulHTML(res) {
		if page, err := r.crawler.Parser.ParsePage(res.Body, res.FinalURL); err == nil {
			title = page.Title
			hash = contentHash(res.Body)
		}
	}

	r.mu.Lock()
	item.FinalURL = res.FinalURL
	item.Status = res.Status
	item.ContentType = res.ContentType
	item.Redirects = res.Redirects
	item.Provenance = sitescope.ProvenanceBoth
	item.Title = title
	item.ContentHash = hash
	if item.Depth > r.req.MaxDepth+1 {
		item.Depth = r.req.MaxDepth + 1
	}
	r.mu.Unlock()
}

// tryReserve claims one slot of the page budget. Failed fetches call
// release so they are not counted against the budget.
func (r *run) tryReserve() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fetched >= r.req.MaxPages {
		return false
	}
	r.fetched++
	return true
}

func (r *run) release() {
	r.mu.Lock()
	r.fetched--
	r.mu.Unlock()
}

// inboundKeys returns the set of normalized keys with at least one
// inbound edge.
func (r *run) inboundKeys() map[string]bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	inbound := make(map[string]bool, len(r.edges))
	for _, e := range r.edges {
		inbound[e.To] = true
	}
	return inbound
}

// isSuccessfulHTML reports whether the response carries an HTML body worth
// parsing.
func isSuccessfulHTML(res *sitescope.FetchResult) bool {
	return res.Status >= 200 && res.Status < 300 &&
		res.Status != 204 &&
		strings.Contains(res.ContentType, "text/html")
}

// contentHash fingerprints a page body for duplicate-content grouping.
func contentHash(body []byte) string {
	return fmt.Sprintf("%x", xxhash.Sum64(body))
}

// requestPath returns the path (including the query string) robots rules
// are matched against.
func requestPath(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "/"
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return path
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}

// sleep waits for d or until the context is canceled, whichever is first.
func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
