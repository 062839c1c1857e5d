package config

import "github.com/urfave/cli/v3"

// Server holds server configuration
type Server struct {
	Addr          string
	WebhookSecret string `masq:"secret"`
}

// Flags returns CLI flags for server configuration
func (c *Server) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Server address",
			Value:       "localhost:8080",
			Destination: &c.Addr,
			Sources:     cli.EnvVars("SHIPWRIGHT_ADDR"),
		},
		&cli.StringFlag{
			Name:        "webhook-secret",
			Usage:       "Secret for webhook signature verification",
			Required:    true,
			Destination: &c.WebhookSecret,
			Sources:     cli.EnvVars("SHIPWRIGHT_WEBHOOK_SECRET"),
		},
	}
}
