package runctx

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type key int

const runKey key = 0

// RunContext identifies one invocation of the downloader
type RunContext struct {
	RunID     string
	StartTime time.Time
}

// WithRunContext attaches a fresh RunContext to ctx
func WithRunContext(ctx context.Context) context.Context {
	now := time.Now()
	return context.WithValue(ctx, runKey, &RunContext{
		RunID:     NewRunID(now),
		StartTime: now,
	})
}

// FromContext returns the run attached to ctx, or a placeholder
func FromContext(ctx context.Context) *RunContext {
	if rc, ok := ctx.Value(runKey).(*RunContext); ok {
		return rc
	}
	return &RunContext{
		RunID:     "unknown",
		StartTime: time.Now(),
	}
}

// NewRunID builds a sortable identifier such as 20250301-142233-1a2b3c4d.
// It is used for log file names, so it contains no path separators.
func NewRunID(t time.Time) string {
	return fmt.Sprintf("%s-%s", t.Format("20060102-150405"), uuid.NewString()[:8])
}

// RunError wraps an error with the run identifier
type RunError struct {
	RunID string
	Err   error
}

// Error implements the error interface
func (e *RunError) Error() string {
	return fmt.Sprintf("[%s] %v", e.RunID, e.Err)
}

// Unwrap returns the underlying error
func (e *RunError) Unwrap() error {
	return e.Err
}

// NewRunError creates a new RunError from context
func NewRunError(ctx context.Context, err error) error {
	rc := FromContext(ctx)
	return &RunError{
		RunID: rc.RunID,
		Err:   err,
	}
}
