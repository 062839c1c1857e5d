package config

import (
	"github.com/m-mizutani/shipwright/pkg/domain/interfaces"
	"github.com/m-mizutani/shipwright/pkg/infra/pypi"
	"github.com/urfave/cli/v3"
)

// Index holds package index upload configuration
type Index struct {
	URL      string
	Username string
	Token    string `masq:"secret"`
}

// Flags returns CLI flags for package index configuration
func (c *Index) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "pypi-url",
			Usage:       "Package index upload endpoint",
			Value:       pypi.DefaultUploadURL,
			Destination: &c.URL,
			Sources:     cli.EnvVars("SHIPWRIGHT_PYPI_URL"),
		},
		&cli.StringFlag{
			Name:        "pypi-username",
			Usage:       "Package index username",
			Value:       pypi.TokenUsername,
			Destination: &c.Username,
			Sources:     cli.EnvVars("SHIPWRIGHT_PYPI_USERNAME"),
		},
		&cli.StringFlag{
			Name:        "pypi-token",
			Usage:       "Package index API token or password",
			Required:    true,
			Destination: &c.Token,
			Sources:     cli.EnvVars("SHIPWRIGHT_PYPI_TOKEN"),
		},
	}
}

// Configure builds the package index client.
func (c *Index) Configure() interfaces.PackageIndex {
	var opts []pypi.Option
	if c.Username != "" {
		opts = append(opts, pypi.WithUsername(c.Username))
	}
	return pypi.NewClient(c.URL, c.Token, opts...)
}
