package sitescope

import (
	"context"
	"strings"
)

// MaxAuditURLs caps the number of URLs a single audit request may carry.
const MaxAuditURLs = 200

// Audit issue descriptions. Issues are plain strings so they can be
// rendered and stored without a lookup table.
const (
	IssueFetchFailed        = "fetch failed"
	IssueMultipleCanonicals = "multiple canonicals"
	IssueNoindexConflict    = "conflicting noindex between meta and header"
	IssueCanonicalCrossSite = "canonical points to different eTLD+1"
	IssueCanonicalInvalid   = "invalid canonical URL"
)

// RobotsDirectives is the decoded form of a robots meta tag or an
// X-Robots-Tag header value. Unknown tokens are ignored during parsing.
type RobotsDirectives struct {
	Noindex      bool `json:"noindex"`
	Nofollow     bool `json:"nofollow"`
	Noarchive    bool `json:"noarchive"`
	Nosnippet    bool `json:"nosnippet"`
	Noimageindex bool `json:"noimageindex"`
	Nocache      bool `json:"nocache"`
}

// Merge ORs the directives of o into d. Repeated robots signals only ever
// widen the restrictions.
func (d *RobotsDirectives) Merge(o RobotsDirectives) {
	d.Noindex = d.Noindex || o.Noindex
	d.Nofollow = d.Nofollow || o.Nofollow
	d.Noarchive = d.Noarchive || o.Noarchive
	d.Nosnippet = d.Nosnippet || o.Nosnippet
	d.Noimageindex = d.Noimageindex || o.Noimageindex
	d.Nocache = d.Nocache || o.Nocache
}

// ParseRobotsDirectives decodes a robots directive string such as
// "noindex, nofollow". Tokens are split on commas and semicolons and
// matched case-insensitively.
func ParseRobotsDirectives(value string) RobotsDirectives {
	var d RobotsDirectives
	for _, tok := range strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ';'
	}) {
		switch strings.ToLower(strings.TrimSpace(tok)) {
		case "noindex":
			d.Noindex = true
		case "nofollow":
			d.Nofollow = true
		case "noarchive":
			d.Noarchive = true
		case "nosnippet":
			d.Nosnippet = true
		case "noimageindex":
			d.Noimageindex = true
		case "nocache":
			d.Nocache = true
		}
	}
	return d
}

// HreflangLink is one alternate-language annotation found on a page.
type HreflangLink struct {
	Lang string `json:"lang"`
	URL  string `json:"url"`
}

// AuditRequest names the URLs to audit. UserAgent is optional.
type AuditRequest struct {
	URLs      []string `json:"urls"`
	UserAgent string   `json:"userAgent,omitempty"`
}

// Validate returns EINVALID when the request is empty or oversized.
func (r *AuditRequest) Validate() error {
	if len(r.URLs) == 0 {
		return Errorf(EINVALID, "at least one URL required")
	}
	if len(r.URLs) > MaxAuditURLs {
		return Errorf(EINVALID, "too many URLs: %d exceeds limit of %d", len(r.URLs), MaxAuditURLs)
	}
	return nil
}

// Normalize substitutes the default user agent when none is given.
func (r *AuditRequest) Normalize() {
	if r.UserAgent == "" {
		r.UserAgent = DefaultUserAgent
	}
}

// AuditResult is the indexability report for a single URL. Meta and header
// robots signals are merged separately so disagreements between the two
// sources stay visible; NoindexMeta and NoindexHeader mirror the noindex
// bit of each side.
type AuditResult struct {
	URL              string           `json:"url"`
	FinalURL         string           `json:"finalUrl,omitempty"`
	Status           int              `json:"status"`
	ContentType      string           `json:"contentType,omitempty"`
	Title            string           `json:"title,omitempty"`
	Canonical        string           `json:"canonical,omitempty"`
	MetaDirectives   RobotsDirectives `json:"metaDirectives"`
	HeaderDirectives RobotsDirectives `json:"headerDirectives"`
	NoindexMeta      bool             `json:"noindexMeta"`
	NoindexHeader    bool             `json:"noindexHeader"`
	Hreflang         []HreflangLink   `json:"hreflang,omitempty"`
	Issues           []string         `json:"issues,omitempty"`
	Redirects        []RedirectHop    `json:"redirects,omitempty"`
}

// AuditService inspects indexability signals for lists of URLs.
type AuditService interface {
	// Audit fetches every requested URL and reports its indexability
	// signals. Results preserve request order. Per-URL fetch failures are
	// reported through the result's Issues, not as a call error.
	Audit(ctx context.Context, req AuditRequest) ([]AuditResult, error)
}
