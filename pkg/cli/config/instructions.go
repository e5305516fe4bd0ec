package config

import (
	"os"

	"github.com/m-mizutani/ghtrigger/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// Instructions loads per-kind instruction hints from a TOML file:
//
//	[instructions]
//	pull_request = "Review the pull request."
//	push = "Summarize the pushed commits."
type Instructions struct {
	Path string
}

type instructionsFile struct {
	Instructions map[string]string `toml:"instructions"`
}

// Flags returns CLI flags for instruction configuration
func (c *Instructions) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "instructions-file",
			Usage:       "TOML file with per-event instruction hints",
			Destination: &c.Path,
			Sources:     cli.EnvVars("GHTRIGGER_INSTRUCTIONS_FILE"),
		},
	}
}

// Load returns the configured hints. No file configured means no overrides.
func (c *Instructions) Load() (map[model.EventKind]string, error) {
	if c.Path == "" {
		return nil, nil
	}

	raw, err := os.ReadFile(c.Path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read instructions file", goerr.V("path", c.Path))
	}

	var file instructionsFile
	if err := toml.Unmarshal(raw, &file); err != nil {
		return nil, goerr.Wrap(err, "failed to parse instructions file", goerr.V("path", c.Path))
	}

	result := make(map[model.EventKind]string, len(file.Instructions))
	for k, v := range file.Instructions {
		kind := model.EventKind(k)
		if !kind.IsSupported() {
			return nil, goerr.New("unsupported event kind in instructions file",
				goerr.V("path", c.Path),
				goerr.V("event_kind", k),
			)
		}
		result[kind] = v
	}
	return result, nil
}
