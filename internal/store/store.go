// Package store persists cluster runs behind a driver-agnostic interface.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/storemap-cli/internal/cluster"
	"github.com/sells-group/storemap-cli/internal/model"
)

// ErrNotFound indicates the requested run does not exist.
var ErrNotFound = eris.New("store: run not found")

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Source string `json:"source,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// Store defines the persistence interface for cluster runs.
type Store interface {
	// CreateRun records the outcome of one clustering invocation.
	CreateRun(ctx context.Context, source string, eps float64, minPts, storeCount int, result *cluster.Result) (*model.ClusterRun, error)
	GetRun(ctx context.Context, runID string) (*model.ClusterRun, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.ClusterRun, error)
	DeleteRun(ctx context.Context, runID string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
