package sitescope

import (
	"context"
	"net/http"
)

// FetchResult is the terminal response of a redirect-following fetch.
// Body holds the decoded response body; Redirects records every followed
// hop in order.
type FetchResult struct {
	Status      int
	FinalURL    string
	ContentType string
	Header      http.Header
	Body        []byte
	Redirects   []RedirectHop
}

// Fetcher retrieves URLs over the network, following redirects manually so
// every hop is observable.
type Fetcher interface {
	// FetchChain fetches rawURL with the given user agent and follows
	// redirects up to an implementation-defined cap. The returned result
	// describes the terminal response of the chain.
	FetchChain(ctx context.Context, rawURL, userAgent string) (*FetchResult, error)
}

// blockedStatuses are responses that commonly indicate UA-based blocking
// rather than a genuinely missing resource.
var blockedStatuses = map[int]bool{
	http.StatusForbidden:                  true, // 403
	http.StatusNotAcceptable:              true, // 406
	http.StatusConflict:                   true, // 409
	http.StatusGone:                       true, // 410
	http.StatusTooManyRequests:            true, // 429
	http.StatusUnavailableForLegalReasons: true, // 451
	http.StatusServiceUnavailable:         true, // 503
}

// IsBlockedStatus reports whether status usually signals bot blocking and
// is worth retrying with a browser-like user agent.
func IsBlockedStatus(status int) bool {
	return blockedStatuses[status]
}
