package config

import (
	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ghtrigger/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Sentry holds error reporting configuration
type Sentry struct {
	DSN string `masq:"secret"`
	Env string
}

// Flags returns CLI flags for Sentry configuration
func (c *Sentry) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "sentry-dsn",
			Usage:       "Sentry DSN for error reporting (disabled if empty)",
			Destination: &c.DSN,
			Sources:     cli.EnvVars("GHTRIGGER_SENTRY_DSN"),
		},
		&cli.StringFlag{
			Name:        "sentry-env",
			Usage:       "Sentry environment",
			Value:       "production",
			Destination: &c.Env,
			Sources:     cli.EnvVars("GHTRIGGER_SENTRY_ENV"),
		},
	}
}

// Configure initializes the global Sentry client. It reports whether Sentry
// is enabled.
func (c *Sentry) Configure() (bool, error) {
	if c.DSN == "" {
		return false, nil
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         c.DSN,
		Environment: c.Env,
		Release:     types.Version,
	}); err != nil {
		return false, goerr.Wrap(err, "failed to initialize sentry")
	}
	return true, nil
}
