package gcs

import (
	"context"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
)

// Client is a Cloud Storage backed artifact store.
type Client struct {
	client *storage.Client
	bucket string
	prefix string
}

type config struct {
	prefix string
}

// Option configures the storage client
type Option func(*config)

// WithPrefix prepends a path prefix to every stored object.
func WithPrefix(prefix string) Option {
	return func(c *config) {
		c.prefix = prefix
	}
}

// New creates a Cloud Storage backed artifact store writing into the
// given bucket.
func New(ctx context.Context, bucket string, opts ...Option) (*Client, error) {
	if bucket == "" {
		return nil, goerr.New("bucket name is required")
	}

	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	gcs, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client")
	}

	prefix := cfg.prefix
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	return &Client{
		client: gcs,
		bucket: bucket,
		prefix: prefix,
	}, nil
}

// Put stores the content under the object name and returns the gs://
// URI of the stored copy.
func (x *Client) Put(ctx context.Context, object, contentType string, r io.Reader) (string, error) {
	name := x.prefix + object

	w := x.client.Bucket(x.bucket).Object(name).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", goerr.Wrap(err, "failed to write object",
			goerr.V("bucket", x.bucket),
			goerr.V("object", name),
		)
	}
	if err := w.Close(); err != nil {
		return "", goerr.Wrap(err, "failed to finalize object",
			goerr.V("bucket", x.bucket),
			goerr.V("object", name),
		)
	}

	return fmt.Sprintf("gs://%s/%s", x.bucket, name), nil
}

// Close releases the underlying storage connection.
func (x *Client) Close() error {
	return x.client.Close()
}
