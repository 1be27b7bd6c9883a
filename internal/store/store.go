// Package store persists analysis runs so specifications can be compared
// across invocations and re-exported later.
package store

import (
	"context"

	"github.com/sells-group/spatial-cli/internal/model"
)

// Store is the run catalog.
type Store interface {
	// Migrate creates the schema if it does not exist.
	Migrate(ctx context.Context) error

	// SaveRun persists a completed run and its per-unit result rows.
	SaveRun(ctx context.Context, run *model.Run) error

	// GetRun retrieves a run with its full result table.
	GetRun(ctx context.Context, id string) (*model.Run, error)

	// ListRuns returns recent runs without their unit tables, newest first.
	ListRuns(ctx context.Context, limit int) ([]model.Run, error)

	// Close releases the underlying database handle.
	Close() error
}
