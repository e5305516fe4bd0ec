package config

import (
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// GitHub holds the webhook secret, given inline or as a file path
type GitHub struct {
	WebhookSecret     string `masq:"secret"`
	WebhookSecretFile string
}

// Flags returns CLI flags for GitHub configuration
func (c *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-webhook-secret",
			Usage:       "GitHub webhook secret",
			Destination: &c.WebhookSecret,
			Sources:     cli.EnvVars("GHTRIGGER_GITHUB_WEBHOOK_SECRET"),
		},
		&cli.StringFlag{
			Name:        "github-webhook-secret-file",
			Usage:       "File containing the GitHub webhook secret",
			Destination: &c.WebhookSecretFile,
			Sources:     cli.EnvVars("GHTRIGGER_GITHUB_WEBHOOK_SECRET_FILE"),
		},
	}
}

// Secret resolves the webhook secret. Exactly one source must be set.
// Trailing newlines in the file are stripped.
func (c *GitHub) Secret() (string, error) {
	switch {
	case c.WebhookSecret != "" && c.WebhookSecretFile != "":
		return "", goerr.New("set either github-webhook-secret or github-webhook-secret-file, not both")

	case c.WebhookSecretFile != "":
		raw, err := os.ReadFile(c.WebhookSecretFile)
		if err != nil {
			return "", goerr.Wrap(err, "failed to read webhook secret file", goerr.V("path", c.WebhookSecretFile))
		}
		secret := strings.TrimRight(string(raw), "\r\n")
		if secret == "" {
			return "", goerr.New("webhook secret file is empty", goerr.V("path", c.WebhookSecretFile))
		}
		return secret, nil

	case c.WebhookSecret != "":
		return c.WebhookSecret, nil

	default:
		return "", goerr.New("github-webhook-secret is required")
	}
}
