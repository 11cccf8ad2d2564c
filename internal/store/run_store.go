package store

import (
	"context"

	"github.com/Badriprasad/knowledge-graph/internal/models"
)

// RunStore persists migration run status.
type RunStore interface {
	SetRun(ctx context.Context, run models.MigrationRun) error
	GetRun(ctx context.Context, runID string) (models.MigrationRun, bool, error)
}
