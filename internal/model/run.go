package model

import "time"

// RunStatus represents the current state of an analysis run.
type RunStatus string

const (
	RunStatusQueued      RunStatus = "queued"
	RunStatusReading     RunStatus = "reading"
	RunStatusNormalizing RunStatus = "normalizing"
	RunStatusComplete    RunStatus = "complete"
	RunStatusFailed      RunStatus = "failed"
)

// ErrorKind classifies why a run failed.
type ErrorKind string

const (
	ErrorKindSchema   ErrorKind = "schema"    // required column unresolvable
	ErrorKindParse    ErrorKind = "parse"     // file unreadable
	ErrorKindTooLarge ErrorKind = "too_large" // input over the configured ceiling
	ErrorKindOther    ErrorKind = "other"
)

// Run is the metadata of one analysis of one input source. Record sets are
// never stored with it.
type Run struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Status    RunStatus `json:"status"`
	Stats     *RunStats `json:"stats,omitempty"`
	Error     *RunError `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RunStats counts rows through the normalizer.
type RunStats struct {
	RowsRead    int      `json:"rows_read" yaml:"rows_read"`
	RowsKept    int      `json:"rows_kept" yaml:"rows_kept"`
	RowsDropped int      `json:"rows_dropped" yaml:"rows_dropped"`
	Columns     []string `json:"columns,omitempty" yaml:"columns,omitempty"`
	DurationMs  int64    `json:"duration_ms" yaml:"duration_ms"`
}

// RunError records a failed run.
type RunError struct {
	Message string    `json:"message"`
	Kind    ErrorKind `json:"kind"`
}
