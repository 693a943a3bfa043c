package http

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/fwojciec/sitescope"
	"github.com/temoto/robotstxt"
)

// maxRobotsBytes caps how much of a robots.txt body is read.
const maxRobotsBytes = 1 << 20

// Ensure RobotsService implements sitescope.RobotsService.
var _ sitescope.RobotsService = (*RobotsService)(nil)

// RobotsService fetches and caches robots.txt per origin. The cache never
// expires within the service's lifetime; crawl and audit runs construct a
// fresh service per process, so staleness is bounded by process lifetime.
type RobotsService struct {
	client *http.Client

	mu    sync.Mutex
	cache map[string]*robotsEntry
}

// robotsEntry is a cached parse result for one origin. A nil data means
// robots.txt was missing or unreadable and the origin allows everything.
type robotsEntry struct {
	data     *robotstxt.RobotsData
	sitemaps []string
}

// NewRobotsService creates a new RobotsService with the given HTTP client.
// If client is nil, http.DefaultClient is used.
func NewRobotsService(client *http.Client) *RobotsService {
	if client == nil {
		client = http.DefaultClient
	}
	return &RobotsService{
		client: client,
		cache:  make(map[string]*robotsEntry),
	}
}

// PolicyFor returns the robots policy governing the origin of rawURL for
// the given user agent. Resolution fails open: an unparseable URL, a
// missing or unreachable robots.txt, or a parse error all yield an
// allow-everything policy. Concurrent callers for the same uncached origin
// may race to fetch; the first stored result wins.
func (s *RobotsService) PolicyFor(ctx context.Context, rawURL, userAgent string) sitescope.RobotsPolicy {
	origin := originOf(rawURL)
	if origin == "" {
		return sitescope.PermissivePolicy{}
	}

	s.mu.Lock()
	entry, ok := s.cache[origin]
	s.mu.Unlock()

	if !ok {
		fetched := s.fetchRobots(ctx, origin, userAgent)

		s.mu.Lock()
		if existing, ok := s.cache[origin]; ok {
			entry = existing
		} else {
			s.cache[origin] = fetched
			entry = fetched
		}
		s.mu.Unlock()
	}

	if entry.data == nil {
		return sitescope.PermissivePolicy{}
	}
	return &robotsPolicy{
		group:    entry.data.FindGroup(userAgent),
		sitemaps: entry.sitemaps,
	}
}

// fetchRobots retrieves and parses origin's robots.txt. Any failure yields
// an entry with nil data, which callers treat as allow-everything.
func (s *RobotsService) fetchRobots(ctx context.Context, origin, userAgent string) *robotsEntry {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, origin+"/robots.txt", nil)
	if err != nil {
		return &robotsEntry{}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return &robotsEntry{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &robotsEntry{}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsBytes))
	if err != nil {
		return &robotsEntry{}
	}

	data, err := robotstxt.FromBytes(body)
	if err != nil {
		return &robotsEntry{}
	}

	return &robotsEntry{data: data, sitemaps: data.Sitemaps}
}

// originOf reduces a URL to its scheme://host origin.
func originOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

var _ sitescope.RobotsPolicy = (*robotsPolicy)(nil)

// robotsPolicy answers permission questions from one parsed agent group.
type robotsPolicy struct {
	group    *robotstxt.Group
	sitemaps []string
}

func (p *robotsPolicy) Allowed(path string) bool {
	if path == "" {
		path = "/"
	}
	return p.group.Test(path)
}

func (p *robotsPolicy) CrawlDelay() time.Duration {
	return p.group.CrawlDelay
}

func (p *robotsPolicy) Sitemaps() []string {
	return p.sitemaps
}
