package interfaces

import (
	"context"
	"io"

	"github.com/m-mizutani/shipwright/pkg/domain/model"
	"github.com/m-mizutani/shipwright/pkg/domain/types"
)

// RunRepository persists pipeline run records. Put overwrites the full
// document; the pipeline persists on every state transition.
type RunRepository interface {
	Put(ctx context.Context, run *model.PipelineRun) error

	// Get returns model.ErrRunNotFound (wrapped) for unknown IDs
	Get(ctx context.Context, id types.RunID) (*model.PipelineRun, error)

	// List returns up to limit runs, newest first
	List(ctx context.Context, limit int) ([]*model.PipelineRun, error)
}

// ArtifactStore archives built artifacts for later inspection. This is
// bookkeeping: the publish step never reads from it.
type ArtifactStore interface {
	// Put stores the content under the object name and returns a
	// stable URI for the stored copy.
	Put(ctx context.Context, object, contentType string, r io.Reader) (string, error)
}
