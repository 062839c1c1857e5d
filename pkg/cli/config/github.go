package config

import (
	"os"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shipwright/pkg/domain/interfaces"
	"github.com/m-mizutani/shipwright/pkg/infra/github"
	"github.com/urfave/cli/v3"
)

// GitHub holds GitHub API credentials. Either a personal access token
// or the App ID, installation ID and private key triple must be given.
type GitHub struct {
	Token          string `masq:"secret"`
	AppID          string
	InstallationID string
	PrivateKeyFile string
	BaseURL        string
}

// Flags returns CLI flags for GitHub configuration
func (c *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-token",
			Usage:       "GitHub personal access token",
			Destination: &c.Token,
			Sources:     cli.EnvVars("SHIPWRIGHT_GITHUB_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "github-app-id",
			Usage:       "GitHub App ID",
			Destination: &c.AppID,
			Sources:     cli.EnvVars("SHIPWRIGHT_GITHUB_APP_ID"),
		},
		&cli.StringFlag{
			Name:        "github-installation-id",
			Usage:       "GitHub App installation ID",
			Destination: &c.InstallationID,
			Sources:     cli.EnvVars("SHIPWRIGHT_GITHUB_INSTALLATION_ID"),
		},
		&cli.StringFlag{
			Name:        "github-private-key",
			Usage:       "Path to the GitHub App private key file",
			Destination: &c.PrivateKeyFile,
			Sources:     cli.EnvVars("SHIPWRIGHT_GITHUB_PRIVATE_KEY"),
		},
		&cli.StringFlag{
			Name:        "github-base-url",
			Usage:       "GitHub API base URL, for GitHub Enterprise",
			Destination: &c.BaseURL,
			Sources:     cli.EnvVars("SHIPWRIGHT_GITHUB_BASE_URL"),
		},
	}
}

// Configure builds the GitHub API client from the supplied
// credentials. A personal access token takes precedence over App
// credentials when both are set.
func (c *GitHub) Configure() (interfaces.GitHubClient, error) {
	var opts []github.Option
	if c.BaseURL != "" {
		opts = append(opts, github.WithBaseURL(c.BaseURL))
	}

	if c.Token != "" {
		return github.NewClientWithToken(c.Token, opts...)
	}

	if c.AppID == "" || c.InstallationID == "" || c.PrivateKeyFile == "" {
		return nil, goerr.New("GitHub credentials required: set github-token, or github-app-id, github-installation-id and github-private-key")
	}

	appID, err := strconv.ParseInt(c.AppID, 10, 64)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid github-app-id", goerr.V("app_id", c.AppID))
	}

	installationID, err := strconv.ParseInt(c.InstallationID, 10, 64)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid github-installation-id", goerr.V("installation_id", c.InstallationID))
	}

	privateKey, err := os.ReadFile(c.PrivateKeyFile)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read private key file", goerr.V("path", c.PrivateKeyFile))
	}

	return github.NewClient(appID, installationID, privateKey, opts...)
}
