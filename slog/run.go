package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/sitescope"
)

// Ensure LoggingRunService implements sitescope.RunService.
var _ sitescope.RunService = (*LoggingRunService)(nil)

// LoggingRunService wraps a RunService with operation logging.
type LoggingRunService struct {
	next   sitescope.RunService
	logger *slog.Logger
}

// NewLoggingRunService creates a new LoggingRunService.
func NewLoggingRunService(next sitescope.RunService, logger *slog.Logger) *LoggingRunService {
	return &LoggingRunService{next: next, logger: logger}
}

// CreateRun delegates to the wrapped service and logs the operation.
func (s *LoggingRunService) CreateRun(ctx context.Context, run *sitescope.Run) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("run create",
			"id", run.ID,
			"kind", run.Kind,
			"url", run.StartURL,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.CreateRun(ctx, run)
}

// FindRunByID delegates to the wrapped service and logs the operation.
func (s *LoggingRunService) FindRunByID(ctx context.Context, id string) (run *sitescope.Run, err error) {
	defer func(begin time.Time) {
		s.logger.Info("run find",
			"id", id,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindRunByID(ctx, id)
}

// FindRuns delegates to the wrapped service and logs the operation.
func (s *LoggingRunService) FindRuns(ctx context.Context, filter sitescope.RunFilter) (runs []*sitescope.Run, err error) {
	defer func(begin time.Time) {
		s.logger.Info("run list",
			"count", len(runs),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindRuns(ctx, filter)
}

// DeleteRun delegates to the wrapped service and logs the operation.
func (s *LoggingRunService) DeleteRun(ctx context.Context, id string) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("run delete",
			"id", id,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.DeleteRun(ctx, id)
}
