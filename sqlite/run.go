package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/sitescope"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ sitescope.RunService = (*RunService)(nil)

// RunService implements sitescope.RunService using SQLite.
type RunService struct {
	db *DB
}

// NewRunService creates a new RunService.
func NewRunService(db *DB) *RunService {
	return &RunService{db: db}
}

// CreateRun archives a new run.
func (s *RunService) CreateRun(ctx context.Context, run *sitescope.Run) error {
	if err := run.Validate(); err != nil {
		return err
	}

	run.ID = uuid.New().String()
	run.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, kind, start_url, pages, result, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.ID, string(run.Kind), run.StartURL, run.Pages, string(run.Result),
		run.CreatedAt.Format(time.RFC3339))

	return err
}

// FindRunByID retrieves a run by ID, including its result payload.
func (s *RunService) FindRunByID(ctx context.Context, id string) (*sitescope.Run, error) {
	var run sitescope.Run
	var result, createdAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, kind, start_url, pages, result, created_at
		FROM runs
		WHERE id = ?
	`, id).Scan(&run.ID, &run.Kind, &run.StartURL, &run.Pages, &result, &createdAt)

	if err == sql.ErrNoRows {
		return nil, sitescope.Errorf(sitescope.ENOTFOUND, "run not found")
	}
	if err != nil {
		return nil, err
	}

	run.Result = json.RawMessage(result)
	run.CreatedAt, err = parseCreatedAt(createdAt)
	if err != nil {
		return nil, err
	}

	return &run, nil
}

// FindRuns retrieves runs matching the filter, newest first. Result
// payloads are left out of listings; fetch a single run to get one.
func (s *RunService) FindRuns(ctx context.Context, filter sitescope.RunFilter) ([]*sitescope.Run, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, kind, start_url, pages, created_at FROM runs WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.Kind != nil {
		query.WriteString(" AND kind = ?")
		args = append(args, string(*filter.Kind))
	}
	if filter.StartURL != nil {
		query.WriteString(" AND start_url = ?")
		args = append(args, *filter.StartURL)
	}

	query.WriteString(" ORDER BY created_at DESC, id")

	if filter.Limit > 0 {
		query.WriteString(" LIMIT ?")
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query.WriteString(" OFFSET ?")
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*sitescope.Run
	for rows.Next() {
		var run sitescope.Run
		var createdAt string

		if err := rows.Scan(&run.ID, &run.Kind, &run.StartURL, &run.Pages, &createdAt); err != nil {
			return nil, err
		}

		run.CreatedAt, err = parseCreatedAt(createdAt)
		if err != nil {
			return nil, err
		}

		runs = append(runs, &run)
	}

	return runs, rows.Err()
}

// DeleteRun permanently removes a run.
func (s *RunService) DeleteRun(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return sitescope.Errorf(sitescope.ENOTFOUND, "run not found")
	}

	return nil
}

// parseCreatedAt parses the RFC3339 created_at column stored by CreateRun.
func parseCreatedAt(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return t, nil
}
