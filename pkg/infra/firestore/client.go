package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shipwright/pkg/domain/model"
	"github.com/m-mizutani/shipwright/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	runCollection    = "pipeline_runs"
	defaultListLimit = 50
)

// Client is a Firestore backed run repository.
type Client struct {
	db *firestore.Client
}

type config struct {
	databaseID string
}

// Option configures the Firestore client
type Option func(*config)

// WithDatabase selects a named Firestore database instead of the
// default one.
func WithDatabase(databaseID string) Option {
	return func(c *config) {
		c.databaseID = databaseID
	}
}

// New creates a Firestore backed run repository.
func New(ctx context.Context, projectID string, opts ...Option) (*Client, error) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	var db *firestore.Client
	var err error
	if cfg.databaseID != "" {
		db, err = firestore.NewClientWithDatabase(ctx, projectID, cfg.databaseID)
	} else {
		db, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client", goerr.V("project_id", projectID))
	}

	return &Client{db: db}, nil
}

// Put writes the full run document, overwriting any previous state.
func (x *Client) Put(ctx context.Context, run *model.PipelineRun) error {
	if _, err := x.db.Collection(runCollection).Doc(run.ID.String()).Set(ctx, run); err != nil {
		return goerr.Wrap(err, "failed to put run record", goerr.V("run_id", run.ID))
	}
	return nil
}

// Get returns the run record, wrapping model.ErrRunNotFound for
// unknown IDs.
func (x *Client) Get(ctx context.Context, id types.RunID) (*model.PipelineRun, error) {
	doc, err := x.db.Collection(runCollection).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrRunNotFound, "no such run record", goerr.V("run_id", id))
		}
		return nil, goerr.Wrap(err, "failed to get run record", goerr.V("run_id", id))
	}

	var run model.PipelineRun
	if err := doc.DataTo(&run); err != nil {
		return nil, goerr.Wrap(err, "failed to decode run record", goerr.V("run_id", id))
	}
	return &run, nil
}

// List returns up to limit runs ordered newest first.
func (x *Client) List(ctx context.Context, limit int) ([]*model.PipelineRun, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	iter := x.db.Collection(runCollection).
		OrderBy("created_at", firestore.Desc).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	var runs []*model.PipelineRun
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate run records")
		}

		var run model.PipelineRun
		if err := doc.DataTo(&run); err != nil {
			return nil, goerr.Wrap(err, "failed to decode run record", goerr.V("doc_id", doc.Ref.ID))
		}
		runs = append(runs, &run)
	}

	return runs, nil
}

// Close releases the underlying Firestore connection.
func (x *Client) Close() error {
	return x.db.Close()
}
