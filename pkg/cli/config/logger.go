package config

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/m-mizutani/clog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/masq"
	"github.com/urfave/cli/v3"
)

// Logger holds logger configuration
type Logger struct {
	Level  string
	Format string

	// Writer overrides stdout, for tests
	Writer io.Writer
}

// Flags returns CLI flags for logger configuration
func (c *Logger) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &c.Level,
			Sources:     cli.EnvVars("GHTRIGGER_LOG_LEVEL"),
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "Log format (console, json)",
			Value:       "console",
			Destination: &c.Format,
			Sources:     cli.EnvVars("GHTRIGGER_LOG_FORMAT"),
		},
	}
}

// Configure configures and returns a logger. Values tagged masq:"secret" and
// fields named Secret or Token are redacted.
func (c *Logger) Configure() (*slog.Logger, error) {
	levelMap := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	level, ok := levelMap[strings.ToLower(c.Level)]
	if !ok {
		return nil, goerr.New("invalid log level", goerr.V("level", c.Level))
	}

	w := c.Writer
	if w == nil {
		w = os.Stdout
	}

	filter := masq.New(
		masq.WithTag("secret"),
		masq.WithFieldName("Secret"),
		masq.WithFieldName("Token"),
	)

	var handler slog.Handler
	switch strings.ToLower(c.Format) {
	case "console", "":
		handler = clog.New(
			clog.WithWriter(w),
			clog.WithLevel(level),
			clog.WithColor(isTerminal(w)),
			clog.WithReplaceAttr(filter),
		)
	case "json":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: filter,
		})
	default:
		return nil, goerr.New("invalid log format", goerr.V("format", c.Format))
	}

	return slog.New(handler), nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
