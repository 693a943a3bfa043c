package mock

import (
	"context"

	"github.com/fwojciec/sitescope"
)

var _ sitescope.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of sitescope.Fetcher.
type Fetcher struct {
	FetchChainFn func(ctx context.Context, rawURL, userAgent string) (*sitescope.FetchResult, error)
}

func (f *Fetcher) FetchChain(ctx context.Context, rawURL, userAgent string) (*sitescope.FetchResult, error) {
	return f.FetchChainFn(ctx, rawURL, userAgent)
}
