// Package audit implements the per-URL indexability auditor.
package audit

import (
	"context"
	"net/url"
	"strings"

	"github.com/fwojciec/sitescope"
	"golang.org/x/sync/errgroup"
)

var _ sitescope.AuditService = (*Auditor)(nil)

// Auditor inspects indexability signals for lists of URLs. URLs are audited
// independently of each other, bounded by Concurrency in-flight fetches.
type Auditor struct {
	Fetcher     sitescope.Fetcher
	Parser      sitescope.HTMLParser
	Concurrency int
}

// Audit fetches every requested URL and reports its indexability signals.
// Results preserve request order; per-URL failures are reported through the
// result's Issues.
func (a *Auditor) Audit(ctx context.Context, req sitescope.AuditRequest) ([]sitescope.AuditResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	req.Normalize()

	concurrency := a.Concurrency
	if concurrency <= 0 {
		concurrency = sitescope.DefaultConcurrency
	}

	results := make([]sitescope.AuditResult, len(req.URLs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, u := range req.URLs {
		i, u := i, u
		g.Go(func() error {
			results[i] = a.auditOne(gctx, u, req.UserAgent)
			return nil
		})
	}
	_ = g.Wait()

	return results, nil
}

// auditOne audits a single URL. A failed fetch yields status 0 and a single
// "fetch failed" issue with every signal field left empty.
func (a *Auditor) auditOne(ctx context.Context, rawURL, userAgent string) sitescope.AuditResult {
	result := sitescope.AuditResult{URL: rawURL}

	res, err := a.Fetcher.FetchChain(ctx, rawURL, userAgent)
	if err != nil {
		result.Issues = []string{sitescope.IssueFetchFailed}
		return result
	}

	result.FinalURL = res.FinalURL
	result.Status = res.Status
	result.ContentType = res.ContentType
	result.Redirects = res.Redirects

	// The X-Robots-Tag header may occur several times; directives merge
	// with a per-field OR.
	headerPresent := false
	for _, value := range res.Header.Values("X-Robots-Tag") {
		if strings.TrimSpace(value) == "" {
			continue
		}
		headerPresent = true
		result.HeaderDirectives.Merge(sitescope.ParseRobotsDirectives(value))
	}

	var page *sitescope.Page
	if res.Status != 204 && strings.Contains(res.ContentType, "text/html") {
		if parsed, err := a.Parser.ParsePage(res.Body, res.FinalURL); err == nil {
			page = parsed
		}
	}

	metaPresent := false
	if page != nil {
		result.Title = page.Title
		result.Hreflang = page.Hreflang
		for _, content := range page.MetaRobots {
			if strings.TrimSpace(content) == "" {
				continue
			}
			metaPresent = true
			result.MetaDirectives.Merge(sitescope.ParseRobotsDirectives(content))
		}
		if len(page.Canonicals) > 1 {
			result.Issues = append(result.Issues, sitescope.IssueMultipleCanonicals)
		}
	}

	result.NoindexMeta = result.MetaDirectives.Noindex
	result.NoindexHeader = result.HeaderDirectives.Noindex

	// A conflict needs both sources to actually assert something; a lone
	// noindex with the other side silent is just a one-sided signal.
	if metaPresent && headerPresent && result.NoindexMeta != result.NoindexHeader {
		result.Issues = append(result.Issues, sitescope.IssueNoindexConflict)
	}

	if page != nil && len(page.Canonicals) > 0 {
		canonical, ok := resolveCanonical(page.Canonicals[0], res.FinalURL)
		if !ok {
			result.Issues = append(result.Issues, sitescope.IssueCanonicalInvalid)
		} else {
			result.Canonical = canonical
			if !sitescope.IsInternal(res.FinalURL, canonical, true) {
				result.Issues = append(result.Issues, sitescope.IssueCanonicalCrossSite)
			}
		}
	}

	return result
}

// resolveCanonical resolves a raw canonical href against the page's final
// URL. It reports ok=false when the value cannot be turned into an absolute
// http(s) URL.
func resolveCanonical(raw, baseURL string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", false
	}
	abs := base.ResolveReference(ref)
	if abs.Hostname() == "" || (abs.Scheme != "http" && abs.Scheme != "https") {
		return "", false
	}
	return abs.String(), true
}
