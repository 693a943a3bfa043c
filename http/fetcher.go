// Package http provides the HTTP-backed implementations of the sitescope
// fetching, robots policy and sitemap services.
package http

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fwojciec/sitescope"
	"golang.org/x/net/html/charset"
)

// DefaultFetchTimeout is the default timeout for a single HTTP request,
// including the body read.
const DefaultFetchTimeout = 20 * time.Second

// FallbackUserAgent is the browser-like user agent used to retry fetches
// that appear blocked by bot detection.
const FallbackUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// maxRedirectHops caps how many redirects a single logical fetch follows.
// The chain truncates at the cap and the last response observed is final.
const maxRedirectHops = 10

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 10 << 20

const (
	acceptHeader         = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	acceptLanguageHeader = "en-US,en;q=0.9"
)

// Ensure Fetcher implements sitescope.Fetcher at compile time.
var _ sitescope.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves URLs over plain HTTP with redirects handled manually,
// so every hop of the chain is recorded. It does not execute JavaScript.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the per-request timeout.
// Defaults to DefaultFetchTimeout (20s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// NewFetcher creates a new redirect-following Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return f
}

// FetchChain fetches rawURL following redirects manually. When the first
// attempt errors, or completes with a status that looks like bot blocking,
// the whole chain is retried once with FallbackUserAgent; a blocked result
// whose retry errors is returned as-is rather than failing the fetch.
func (f *Fetcher) FetchChain(ctx context.Context, rawURL, userAgent string) (*sitescope.FetchResult, error) {
	result, err := f.fetchOnce(ctx, rawURL, userAgent)
	if err != nil {
		if userAgent == FallbackUserAgent {
			return nil, err
		}
		return f.fetchOnce(ctx, rawURL, FallbackUserAgent)
	}

	if sitescope.IsBlockedStatus(result.Status) && userAgent != FallbackUserAgent {
		retry, err := f.fetchOnce(ctx, rawURL, FallbackUserAgent)
		if err != nil {
			return result, nil
		}
		return retry, nil
	}

	return result, nil
}

// fetchOnce follows one full redirect chain with a single user agent.
func (f *Fetcher) fetchOnce(ctx context.Context, rawURL, userAgent string) (*sitescope.FetchResult, error) {
	current := rawURL
	var hops []sitescope.RedirectHop

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, current, nil)
		if err != nil {
			return nil, sitescope.Errorf(sitescope.EINVALID, "invalid URL %q: %v", current, err)
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept", acceptHeader)
		req.Header.Set("Accept-Language", acceptLanguageHeader)

		resp, err := f.client.Do(req)
		if err != nil {
			return nil, err
		}

		if next := nextHop(resp, current); next != "" && len(hops) < maxRedirectHops {
			resp.Body.Close()
			hops = append(hops, sitescope.RedirectHop{From: current, To: next, Status: resp.StatusCode})
			current = next
			continue
		}

		body, err := readBody(resp)
		if err != nil {
			return nil, err
		}

		return &sitescope.FetchResult{
			Status:      resp.StatusCode,
			FinalURL:    current,
			ContentType: resp.Header.Get("Content-Type"),
			Header:      resp.Header,
			Body:        body,
			Redirects:   hops,
		}, nil
	}
}

// nextHop returns the absolute URL the response redirects to, or an empty
// string when the response is final: not a redirect status, no Location
// header, or a Location that does not parse.
func nextHop(resp *http.Response, current string) string {
	switch resp.StatusCode {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
	default:
		return ""
	}

	location := resp.Header.Get("Location")
	if location == "" {
		return ""
	}

	base, err := url.Parse(current)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(location)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

// readBody reads the response body up to maxBodyBytes, decoding HTML bodies
// to UTF-8 based on the declared or sniffed character set.
func readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()

	r := io.Reader(io.LimitReader(resp.Body, maxBodyBytes))

	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "text/html") {
		if decoded, err := charset.NewReader(r, contentType); err == nil {
			r = decoded
		}
	}

	return io.ReadAll(r)
}
