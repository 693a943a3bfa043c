package goquery

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/sitescope"
)

var _ sitescope.HTMLParser = (*Parser)(nil)

// Parser extracts SEO signals from HTML documents using CSS selectors.
type Parser struct{}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{}
}

// ParsePage parses an HTML document and collects its title, anchor links,
// canonical declarations, robots meta tags and hreflang alternates. Links
// and hreflang URLs are resolved absolute against baseURL; canonical hrefs
// are kept raw so the caller can distinguish invalid values from missing
// ones.
func (p *Parser) ParsePage(html []byte, baseURL string) (*sitescope.Page, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, sitescope.Errorf(sitescope.EINVALID, "invalid base URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, sitescope.Errorf(sitescope.EINVALID, "failed to parse HTML: %v", err)
	}

	page := &sitescope.Page{
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
	}

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, exists := sel.Attr("href")
		if !exists || href == "" {
			return
		}

		// Skip non-HTTP links (javascript:, mailto:, etc.)
		if isNonHTTPLink(href) {
			return
		}

		resolved := resolveURL(base, href)
		if resolved == "" {
			return
		}

		page.Links = append(page.Links, resolved)
	})

	doc.Find(`link[rel="canonical"]`).Each(func(_ int, sel *goquery.Selection) {
		if href, exists := sel.Attr("href"); exists {
			page.Canonicals = append(page.Canonicals, strings.TrimSpace(href))
		}
	})

	doc.Find(`meta[name="robots"]`).Each(func(_ int, sel *goquery.Selection) {
		if content, exists := sel.Attr("content"); exists {
			page.MetaRobots = append(page.MetaRobots, content)
		}
	})

	doc.Find(`link[rel="alternate"][hreflang]`).Each(func(_ int, sel *goquery.Selection) {
		lang, _ := sel.Attr("hreflang")
		href, exists := sel.Attr("href")
		if lang == "" || !exists || href == "" {
			return
		}

		ref, err := url.Parse(href)
		if err != nil {
			return
		}

		page.Hreflang = append(page.Hreflang, sitescope.HreflangLink{
			Lang: strings.TrimSpace(lang),
			URL:  base.ResolveReference(ref).String(),
		})
	})

	return page, nil
}

// resolveURL resolves a relative URL against a base URL.
// Returns empty string if the href cannot be parsed. Fragments are stripped
// from the resolved URL for deduplication purposes. Links resolving to the
// page itself are kept; a self-link is still an observed link.
func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	resolved.Fragment = ""
	return resolved.String()
}

// isNonHTTPLink checks if a href is a non-HTTP link that should be skipped.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(strings.TrimSpace(href))
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}
