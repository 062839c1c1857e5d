package memory

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shipwright/pkg/domain/model"
	"github.com/m-mizutani/shipwright/pkg/domain/types"
)

const defaultListLimit = 50

// RunRepository is an in-memory run store used when no Firestore
// project is configured. Records survive only for the process
// lifetime.
type RunRepository struct {
	mu    sync.RWMutex
	runs  map[types.RunID]*model.PipelineRun
	order []types.RunID
}

// NewRunRepository creates an empty in-memory run repository.
func NewRunRepository() *RunRepository {
	return &RunRepository{
		runs: make(map[types.RunID]*model.PipelineRun),
	}
}

// Put stores a snapshot of the run, overwriting any previous state.
func (x *RunRepository) Put(ctx context.Context, run *model.PipelineRun) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if _, ok := x.runs[run.ID]; !ok {
		x.order = append(x.order, run.ID)
	}
	x.runs[run.ID] = cloneRun(run)
	return nil
}

// Get returns the run record, wrapping model.ErrRunNotFound for
// unknown IDs.
func (x *RunRepository) Get(ctx context.Context, id types.RunID) (*model.PipelineRun, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	run, ok := x.runs[id]
	if !ok {
		return nil, goerr.Wrap(model.ErrRunNotFound, "no such run record", goerr.V("run_id", id))
	}
	return cloneRun(run), nil
}

// List returns up to limit runs ordered newest first.
func (x *RunRepository) List(ctx context.Context, limit int) ([]*model.PipelineRun, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	var runs []*model.PipelineRun
	for i := len(x.order) - 1; i >= 0 && len(runs) < limit; i-- {
		runs = append(runs, cloneRun(x.runs[x.order[i]]))
	}
	return runs, nil
}

// cloneRun copies the record so callers never share step slices with
// the stored state.
func cloneRun(run *model.PipelineRun) *model.PipelineRun {
	cp := *run
	cp.Steps = append([]model.StepResult(nil), run.Steps...)
	return &cp
}

// ArtifactStore is an in-memory artifact archive for local runs.
type ArtifactStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewArtifactStore creates an empty in-memory artifact store.
func NewArtifactStore() *ArtifactStore {
	return &ArtifactStore{
		objects: make(map[string][]byte),
	}
}

// Put stores the content and returns a mem:// URI for it.
func (x *ArtifactStore) Put(ctx context.Context, object, contentType string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", goerr.Wrap(err, "failed to read artifact content", goerr.V("object", object))
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	x.objects[object] = data

	return fmt.Sprintf("mem://%s", object), nil
}

// Object returns stored content, mainly for tests.
func (x *ArtifactStore) Object(name string) ([]byte, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	data, ok := x.objects[name]
	return data, ok
}
