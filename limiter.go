package sitescope

import "context"

// HostLimiter provides per-host request pacing.
type HostLimiter interface {
	// Wait blocks until the pacing limit allows a request to the host.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, host string) error
}
