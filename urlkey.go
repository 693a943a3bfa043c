package sitescope

import (
	_ "embed"
	"net/url"
	"os"
	"path"
	"strings"
)

// directoryIndexFile is stripped from URL paths during normalization so
// "/docs/index.html" and "/docs/" share one key.
const directoryIndexFile = "index.html"

// trackingParams are query parameters that identify marketing campaigns
// rather than content. They are removed during normalization.
var trackingParams = map[string]bool{
	"gclid":  true,
	"fbclid": true,
	"igshid": true,
	"mc_cid": true,
	"mc_eid": true,
}

// NormalizeForKey reduces a URL to the stable form used as its identity in
// the crawl inventory, the seen-set and the audit reports: host lower-cased,
// fragment removed, tracking parameters dropped, query sorted, directory
// index and trailing slash stripped. The www. prefix and the scheme are
// preserved. Normalization is idempotent, and input that does not parse as
// an absolute URL passes through unchanged.
func NormalizeForKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}

	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""

	if u.RawQuery != "" {
		q := u.Query()
		for name := range q {
			if isTrackingParam(name) {
				q.Del(name)
			}
		}
		u.RawQuery = q.Encode()
	}

	u.Path = strings.TrimSuffix(u.Path, "/")
	if strings.HasSuffix(u.Path, "/"+directoryIndexFile) {
		u.Path = strings.TrimSuffix(u.Path, directoryIndexFile)
		u.Path = strings.TrimSuffix(u.Path, "/")
	}

	return u.String()
}

func isTrackingParam(name string) bool {
	name = strings.ToLower(name)
	return strings.HasPrefix(name, "utm_") || trackingParams[name]
}

// IsInternal reports whether targetURL belongs to the same site as baseURL.
// Sites are compared by a naive eTLD+1: the last two dot-separated labels of
// the hostname. The heuristic mishandles multi-label public suffixes such as
// .co.uk, which is an accepted trade-off over shipping a public suffix list.
// When includeSubdomains is false the hostnames must match exactly
// (case-insensitive). URLs that fail to parse are never internal.
func IsInternal(baseURL, targetURL string, includeSubdomains bool) bool {
	base, err := url.Parse(baseURL)
	if err != nil || base.Hostname() == "" {
		return false
	}
	target, err := url.Parse(targetURL)
	if err != nil || target.Hostname() == "" {
		return false
	}

	baseHost := strings.ToLower(base.Hostname())
	targetHost := strings.ToLower(target.Hostname())

	if !includeSubdomains {
		return baseHost == targetHost
	}
	return registrableDomain(baseHost) == registrableDomain(targetHost)
}

// registrableDomain returns the last two labels of a hostname, the
// approximation of eTLD+1 used throughout this package.
func registrableDomain(host string) string {
	labels := strings.Split(host, ".")
	if len(labels) <= 2 {
		return host
	}
	return strings.Join(labels[len(labels)-2:], ".")
}

// WWWCounterpart returns the same URL with the www. prefix toggled on the
// host: added when absent, removed when present. It returns an empty string
// for URLs without a host. Crawls seed both forms so a site that
// canonicalizes on either variant is still discovered from its root.
func WWWCounterpart(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(u.Host), "www.") {
		u.Host = u.Host[len("www."):]
	} else {
		u.Host = "www." + u.Host
	}
	return u.String()
}

// compoundExtensions are multi-part archive suffixes matched before the
// final path extension, so "release.tar.gz" is recognized as tar.gz rather
// than gz.
var compoundExtensions = []string{"tar.gz", "tar.bz2", "tar.xz"}

//go:embed ignored_extensions.txt
var defaultIgnoredExtensions string

// ExtensionFilter reports whether a URL path ends in a file extension that
// the crawl should skip. The zero value ignores nothing.
type ExtensionFilter struct {
	ignored map[string]bool
}

// NewExtensionFilter builds a filter from a list of extensions. Entries are
// trimmed, lower-cased and may carry a leading dot; empty entries are
// dropped.
func NewExtensionFilter(extensions []string) *ExtensionFilter {
	ignored := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		ext = strings.TrimPrefix(ext, ".")
		if ext != "" {
			ignored[ext] = true
		}
	}
	return &ExtensionFilter{ignored: ignored}
}

// DefaultExtensionFilter returns the filter built from the embedded asset
// list shipped with the binary.
func DefaultExtensionFilter() *ExtensionFilter {
	return NewExtensionFilter(strings.Split(defaultIgnoredExtensions, "\n"))
}

// LoadExtensionFilter reads a newline-delimited extension list from path.
// A missing file yields an empty filter, so nothing is ignored.
func LoadExtensionFilter(path string) (*ExtensionFilter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewExtensionFilter(nil), nil
		}
		return nil, err
	}
	return NewExtensionFilter(strings.Split(string(data), "\n")), nil
}

// HasIgnoredExtension reports whether the URL's path ends in an ignored
// extension. Compound archive suffixes are checked first, then the single
// final extension.
func (f *ExtensionFilter) HasIgnoredExtension(rawURL string) bool {
	if f == nil || len(f.ignored) == 0 {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	p := strings.ToLower(u.Path)

	for _, ext := range compoundExtensions {
		if f.ignored[ext] && strings.HasSuffix(p, "."+ext) {
			return true
		}
	}

	ext := strings.TrimPrefix(path.Ext(p), ".")
	return ext != "" && f.ignored[ext]
}
