package config

import (
	"github.com/m-mizutani/shipwright/pkg/infra/notify"
	"github.com/urfave/cli/v3"
)

// Slack holds notification configuration
type Slack struct {
	Token   string `masq:"secret"`
	Channel string
}

// Flags returns CLI flags for Slack configuration
func (c *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-token",
			Usage:       "Slack bot token for run notifications",
			Destination: &c.Token,
			Sources:     cli.EnvVars("SHIPWRIGHT_SLACK_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "slack-channel",
			Usage:       "Slack channel receiving run notifications",
			Destination: &c.Channel,
			Sources:     cli.EnvVars("SHIPWRIGHT_SLACK_CHANNEL"),
		},
	}
}

// Enabled returns true when both a token and a channel are configured.
func (c *Slack) Enabled() bool {
	return c.Token != "" && c.Channel != ""
}

// Configure builds the Slack notifier.
func (c *Slack) Configure() *notify.SlackNotifier {
	return notify.NewSlack(c.Token, c.Channel)
}
