package sitescope

import (
	"context"
	"encoding/json"
	"time"
)

// RunKind distinguishes archived crawl runs from audit runs.
type RunKind string

const (
	RunKindCrawl RunKind = "crawl"
	RunKindAudit RunKind = "audit"
)

// Run is one archived service invocation. Result holds the full
// CrawlResult or []AuditResult payload as JSON; the remaining fields are
// denormalized for listing without decoding the payload.
type Run struct {
	ID        string          `json:"id"`
	Kind      RunKind         `json:"kind"`
	StartURL  string          `json:"startUrl"`
	Pages     int             `json:"pages"`
	Result    json.RawMessage `json:"result,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Validate returns an error if the run contains invalid fields.
func (r *Run) Validate() error {
	if r.Kind != RunKindCrawl && r.Kind != RunKindAudit {
		return Errorf(EINVALID, "invalid run kind %q", r.Kind)
	}
	if r.StartURL == "" {
		return Errorf(EINVALID, "run start URL required")
	}
	if len(r.Result) == 0 {
		return Errorf(EINVALID, "run result required")
	}
	return nil
}

// RunService represents a service for archiving crawl and audit runs.
type RunService interface {
	// CreateRun persists a new run.
	CreateRun(ctx context.Context, run *Run) error

	// FindRunByID retrieves a run by ID, including its result payload.
	// Returns ENOTFOUND if run does not exist.
	FindRunByID(ctx context.Context, id string) (*Run, error)

	// FindRuns retrieves runs matching the filter, newest first. Result
	// payloads are omitted from listings.
	FindRuns(ctx context.Context, filter RunFilter) ([]*Run, error)

	// DeleteRun permanently removes a run.
	// Returns ENOTFOUND if run does not exist.
	DeleteRun(ctx context.Context, id string) error
}

// RunFilter represents a filter for FindRuns.
type RunFilter struct {
	ID       *string  `json:"id"`
	Kind     *RunKind `json:"kind"`
	StartURL *string  `json:"startUrl"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
