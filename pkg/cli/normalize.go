package cli

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/m-mizutani/ghtrigger/pkg/domain/model"
	"github.com/m-mizutani/ghtrigger/pkg/usecase"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdNormalize() *cli.Command {
	var event string

	return &cli.Command{
		Name:      "normalize",
		Usage:     "Print the record a payload file normalizes to",
		ArgsUsage: "FILE|-",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "event",
				Aliases:     []string{"e"},
				Usage:       "Event kind as sent in X-GitHub-Event (pull_request, push, release)",
				Destination: &event,
				Required:    true,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return runNormalize(os.Stdout, os.Stdin, model.EventKind(event), c.Args().First())
		},
	}
}

func runNormalize(w io.Writer, stdin io.Reader, kind model.EventKind, path string) error {
	body, err := readPayload(path, stdin)
	if err != nil {
		return err
	}

	record, err := usecase.Normalize(kind, body)
	if err != nil {
		return err
	}
	if record == nil {
		_, err := color.New(color.FgYellow).Fprintf(w, "event %q is not supported, the delivery would be dropped\n", kind)
		return err
	}

	out, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return goerr.Wrap(err, "failed to marshal record", goerr.V("event_kind", kind))
	}

	if _, err := color.New(color.FgGreen).Fprintf(w, "%s\n", kind); err != nil {
		return err
	}
	if _, err := w.Write(append(out, '\n')); err != nil {
		return goerr.Wrap(err, "failed to write record")
	}
	return nil
}
