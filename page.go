package sitescope

// Page holds the SEO-relevant signals extracted from one HTML document.
// Links are absolute and recorded once per anchor observation; Canonicals
// and MetaRobots keep the raw attribute values so callers decide how to
// interpret them.
type Page struct {
	Title      string
	Links      []string
	Canonicals []string
	MetaRobots []string
	Hreflang   []HreflangLink
}

// HTMLParser extracts signals from HTML documents.
type HTMLParser interface {
	// ParsePage parses html and resolves relative references against
	// baseURL. It returns EINVALID when baseURL cannot be parsed.
	ParsePage(html []byte, baseURL string) (*Page, error)
}
