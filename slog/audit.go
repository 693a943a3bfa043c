package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/sitescope"
)

// Ensure LoggingAuditService implements sitescope.AuditService.
var _ sitescope.AuditService = (*LoggingAuditService)(nil)

// LoggingAuditService wraps an AuditService with run-level logging.
type LoggingAuditService struct {
	next   sitescope.AuditService
	logger *slog.Logger
}

// NewLoggingAuditService creates a new LoggingAuditService.
func NewLoggingAuditService(next sitescope.AuditService, logger *slog.Logger) *LoggingAuditService {
	return &LoggingAuditService{next: next, logger: logger}
}

// Audit delegates to the wrapped service and logs the run.
func (s *LoggingAuditService) Audit(ctx context.Context, req sitescope.AuditRequest) (results []sitescope.AuditResult, err error) {
	defer func(begin time.Time) {
		issues := 0
		for _, r := range results {
			issues += len(r.Issues)
		}
		s.logger.Info("audit",
			"urls", len(req.URLs),
			"issues", issues,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Audit(ctx, req)
}
