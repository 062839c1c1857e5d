package config

import (
	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shipwright/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// Sentry holds error monitoring configuration
type Sentry struct {
	DSN         string `masq:"secret"`
	Environment string
}

// Flags returns CLI flags for Sentry configuration
func (c *Sentry) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "sentry-dsn",
			Usage:       "Sentry DSN for failure reporting (reporting disabled when empty)",
			Destination: &c.DSN,
			Sources:     cli.EnvVars("SHIPWRIGHT_SENTRY_DSN"),
		},
		&cli.StringFlag{
			Name:        "sentry-env",
			Usage:       "Sentry environment name",
			Value:       "production",
			Destination: &c.Environment,
			Sources:     cli.EnvVars("SHIPWRIGHT_SENTRY_ENV"),
		},
	}
}

// Configure initializes the global Sentry client. Without a DSN,
// failure reporting stays disabled and pipeline runs are unaffected.
func (c *Sentry) Configure() error {
	if c.DSN == "" {
		return nil
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         c.DSN,
		Environment: c.Environment,
		Release:     types.AppName + "@" + types.Version,
	}); err != nil {
		return goerr.Wrap(err, "failed to initialize sentry")
	}
	return nil
}
