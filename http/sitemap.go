package http

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/sitescope"
)

// Ensure SitemapService implements sitescope.SitemapService.
var _ sitescope.SitemapService = (*SitemapService)(nil)

// SitemapService discovers sitemap endpoints and expands them into flat URL
// lists via HTTP.
type SitemapService struct {
	client *http.Client
}

// NewSitemapService creates a new SitemapService with the given HTTP client.
// If client is nil, http.DefaultClient is used.
func NewSitemapService(client *http.Client) *SitemapService {
	if client == nil {
		client = http.DefaultClient
	}
	return &SitemapService{client: client}
}

// DiscoverEndpoints returns the candidate sitemap endpoints for startURL:
// robots-declared endpoints first, then a guessed /sitemap.xml on the start
// host and on its www counterpart. The result is deduplicated and involves
// no network I/O.
func (s *SitemapService) DiscoverEndpoints(startURL string, declared []string) []string {
	var endpoints []string
	seen := make(map[string]bool)
	add := func(endpoint string) {
		if endpoint != "" && !seen[endpoint] {
			seen[endpoint] = true
			endpoints = append(endpoints, endpoint)
		}
	}

	for _, endpoint := range declared {
		add(strings.TrimSpace(endpoint))
	}

	base, err := url.Parse(startURL)
	if err != nil || base.Host == "" {
		return endpoints
	}

	guess := base.ResolveReference(&url.URL{Path: "/sitemap.xml"})
	add(guess.String())
	add(sitescope.WWWCounterpart(guess.String()))

	return endpoints
}

// CollectURLs fetches endpoint and expands it into page URLs, recursing
// into sitemap-index children. The remaining capacity is threaded through
// each recursive call so the total never exceeds limit. Fetch and parse
// failures yield an empty result.
func (s *SitemapService) CollectURLs(ctx context.Context, endpoint, userAgent string, limit int) []string {
	seen := make(map[string]bool)
	return s.collect(ctx, endpoint, userAgent, limit, seen)
}

// collect processes one sitemap document, handling both urlset and
// sitemapindex. seen guards against sitemap reference cycles.
func (s *SitemapService) collect(ctx context.Context, sitemapURL, userAgent string, limit int, seen map[string]bool) []string {
	if limit <= 0 || ctx.Err() != nil {
		return nil
	}

	if seen[sitemapURL] {
		return nil
	}
	seen[sitemapURL] = true

	body, err := s.fetchXML(ctx, sitemapURL, userAgent)
	if err != nil {
		return nil
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return nil
	}

	root := doc.Root()
	if root == nil {
		return nil
	}

	if root.Tag == "sitemapindex" {
		var urls []string
		for _, sitemap := range root.SelectElements("sitemap") {
			if len(urls) >= limit {
				break
			}
			loc := sitemap.SelectElement("loc")
			if loc == nil {
				continue
			}
			childURL := strings.TrimSpace(loc.Text())
			if childURL == "" {
				continue
			}
			urls = append(urls, s.collect(ctx, childURL, userAgent, limit-len(urls), seen)...)
		}
		return urls
	}

	var urls []string
	for _, urlEl := range root.SelectElements("url") {
		if len(urls) >= limit {
			break
		}
		loc := urlEl.SelectElement("loc")
		if loc == nil {
			continue
		}
		u := strings.TrimSpace(loc.Text())
		if u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// fetchXML fetches a sitemap document, transparently gunzipping .xml.gz
// payloads served without a Content-Encoding header.
func (s *SitemapService) fetchXML(ctx context.Context, targetURL, userAgent string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", acceptHeader)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, sitescope.Errorf(sitescope.EINTERNAL, "HTTP %d for %s", resp.StatusCode, targetURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}

	if bytes.HasPrefix(body, []byte{0x1f, 0x8b}) {
		gz, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		return io.ReadAll(io.LimitReader(gz, maxBodyBytes))
	}

	return body, nil
}
