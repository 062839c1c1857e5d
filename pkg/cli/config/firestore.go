package config

import (
	"context"

	"github.com/m-mizutani/shipwright/pkg/infra/firestore"
	"github.com/urfave/cli/v3"
)

// Firestore holds run record storage configuration
type Firestore struct {
	ProjectID  string
	DatabaseID string
}

// Flags returns CLI flags for Firestore configuration
func (c *Firestore) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Google Cloud project for run records (in-memory storage when empty)",
			Destination: &c.ProjectID,
			Sources:     cli.EnvVars("SHIPWRIGHT_FIRESTORE_PROJECT_ID"),
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore database ID (default database when empty)",
			Destination: &c.DatabaseID,
			Sources:     cli.EnvVars("SHIPWRIGHT_FIRESTORE_DATABASE_ID"),
		},
	}
}

// Enabled returns true when a project is configured.
func (c *Firestore) Enabled() bool {
	return c.ProjectID != ""
}

// Configure builds the Firestore backed run repository.
func (c *Firestore) Configure(ctx context.Context) (*firestore.Client, error) {
	var opts []firestore.Option
	if c.DatabaseID != "" {
		opts = append(opts, firestore.WithDatabase(c.DatabaseID))
	}
	return firestore.New(ctx, c.ProjectID, opts...)
}
