package mock

import (
	"context"

	"github.com/fwojciec/sitescope"
)

var _ sitescope.AuditService = (*AuditService)(nil)

// AuditService is a mock implementation of sitescope.AuditService.
type AuditService struct {
	AuditFn func(ctx context.Context, req sitescope.AuditRequest) ([]sitescope.AuditResult, error)
}

func (s *AuditService) Audit(ctx context.Context, req sitescope.AuditRequest) ([]sitescope.AuditResult, error) {
	return s.AuditFn(ctx, req)
}
