package mock

import (
	"context"

	"github.com/fwojciec/sitescope"
)

var _ sitescope.HostLimiter = (*HostLimiter)(nil)

type HostLimiter struct {
	WaitFn func(ctx context.Context, host string) error
}

func (l *HostLimiter) Wait(ctx context.Context, host string) error {
	return l.WaitFn(ctx, host)
}
