package config

import (
	"time"

	controller "github.com/m-mizutani/ghtrigger/pkg/controller/http"
	"github.com/urfave/cli/v3"
)

// Server holds server configuration
type Server struct {
	Addr            string
	WebhookPath     string
	MaxBodySize     int64
	ShutdownTimeout time.Duration
}

// Flags returns CLI flags for server configuration
func (c *Server) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Server address",
			Value:       "localhost:8080",
			Destination: &c.Addr,
			Sources:     cli.EnvVars("GHTRIGGER_ADDR"),
		},
		&cli.StringFlag{
			Name:        "webhook-path",
			Usage:       "Path GitHub posts deliveries to",
			Value:       controller.DefaultWebhookPath,
			Destination: &c.WebhookPath,
			Sources:     cli.EnvVars("GHTRIGGER_WEBHOOK_PATH"),
		},
		&cli.Int64Flag{
			Name:        "max-body-size",
			Usage:       "Maximum webhook body size in bytes",
			Value:       controller.DefaultMaxBodySize,
			Destination: &c.MaxBodySize,
			Sources:     cli.EnvVars("GHTRIGGER_MAX_BODY_SIZE"),
		},
		&cli.DurationFlag{
			Name:        "shutdown-timeout",
			Usage:       "Grace period for in-flight requests on shutdown",
			Value:       10 * time.Second,
			Destination: &c.ShutdownTimeout,
			Sources:     cli.EnvVars("GHTRIGGER_SHUTDOWN_TIMEOUT"),
		},
	}
}

// Options converts the configuration into server options
func (c *Server) Options() []controller.Option {
	return []controller.Option{
		controller.WithAddr(c.Addr),
		controller.WithWebhookPath(c.WebhookPath),
		controller.WithMaxBodySize(c.MaxBodySize),
	}
}
