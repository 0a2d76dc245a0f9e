// Package store records analysis runs. Only run metadata is kept; canonical
// record sets are never persisted.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/sales-analyzer/internal/model"
)

// ErrRunNotFound is returned when a run id does not exist.
var ErrRunNotFound = eris.New("run not found")

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Source string          `json:"source,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Summary counts runs by status.
type Summary struct {
	Total    int                     `json:"total"`
	ByStatus map[model.RunStatus]int `json:"by_status"`
}

// Store defines the run log.
type Store interface {
	CreateRun(ctx context.Context, source string) (*model.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	CompleteRun(ctx context.Context, runID string, stats *model.RunStats) error
	FailRun(ctx context.Context, runID string, runErr *model.RunError) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)
	Summarize(ctx context.Context) (*Summary, error)
	DeleteRunsBefore(ctx context.Context, before time.Time) (int, error)

	// Lifecycle
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Close() error
}

const defaultListLimit = 100

func listLimit(filter RunFilter) int {
	if filter.Limit <= 0 {
		return defaultListLimit
	}
	return filter.Limit
}
