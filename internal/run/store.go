// Package run persists experiment runs: the metric mapping produced by an
// evaluation plus enough metadata to tell runs apart, and the run-directory
// artifacts (latents, scatter request) that external tooling consumes.
package run

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrRunNotFound is returned when a run id is unknown to the store
	ErrRunNotFound = errors.New("run not found")
)

// Run is one recorded experiment: which dataset and model produced the
// embedding, when, and the metric mapping the evaluation returned. Missing
// metric keys mean "not computed", never zero.
type Run struct {
	ID        string             `json:"id"`
	Dataset   string             `json:"dataset"`
	Model     string             `json:"model"`
	CreatedAt time.Time          `json:"created_at"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Store persists and retrieves runs.
type Store interface {
	SaveRun(ctx context.Context, r *Run) error
	GetRun(ctx context.Context, id string) (*Run, error)
	ListRuns(ctx context.Context) ([]string, error)
	Close() error
}
