package cli

import (
	"context"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/m-mizutani/ghtrigger/pkg/utils/signature"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdSign() *cli.Command {
	var secret string

	return &cli.Command{
		Name:      "sign",
		Usage:     "Print the X-Hub-Signature-256 value for a payload file",
		ArgsUsage: "FILE|-",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "secret",
				Usage:       "Webhook secret",
				Destination: &secret,
				Sources:     cli.EnvVars("GHTRIGGER_GITHUB_WEBHOOK_SECRET"),
				Required:    true,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return runSign(os.Stdout, os.Stdin, secret, c.Args().First())
		},
	}
}

func runSign(w io.Writer, stdin io.Reader, secret, path string) error {
	if secret == "" {
		return goerr.New("secret is required")
	}

	body, err := readPayload(path, stdin)
	if err != nil {
		return err
	}

	header := color.New(color.FgCyan).Sprint("X-Hub-Signature-256:")
	if _, err := color.New().Fprintf(w, "%s %s\n", header, signature.Sign(body, secret)); err != nil {
		return goerr.Wrap(err, "failed to write signature")
	}
	return nil
}
