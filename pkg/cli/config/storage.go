package config

import (
	"context"

	"github.com/m-mizutani/shipwright/pkg/infra/gcs"
	"github.com/urfave/cli/v3"
)

// Storage holds artifact archive configuration
type Storage struct {
	Bucket string
	Prefix string
}

// Flags returns CLI flags for artifact storage configuration
func (c *Storage) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gcs-bucket",
			Usage:       "Cloud Storage bucket for built artifacts (archival disabled when empty)",
			Destination: &c.Bucket,
			Sources:     cli.EnvVars("SHIPWRIGHT_GCS_BUCKET"),
		},
		&cli.StringFlag{
			Name:        "gcs-prefix",
			Usage:       "Object name prefix within the bucket",
			Destination: &c.Prefix,
			Sources:     cli.EnvVars("SHIPWRIGHT_GCS_PREFIX"),
		},
	}
}

// Enabled returns true when a bucket is configured.
func (c *Storage) Enabled() bool {
	return c.Bucket != ""
}

// Configure builds the Cloud Storage artifact store.
func (c *Storage) Configure(ctx context.Context) (*gcs.Client, error) {
	var opts []gcs.Option
	if c.Prefix != "" {
		opts = append(opts, gcs.WithPrefix(c.Prefix))
	}
	return gcs.New(ctx, c.Bucket, opts...)
}
