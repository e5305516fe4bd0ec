package logsink

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/ghtrigger/pkg/domain/model"
	"github.com/m-mizutani/ghtrigger/pkg/utils/logging"
)

// Name of the consumer
const Name = "log"

// Consumer writes envelopes to the structured log. It is the default when no
// other consumer is configured.
type Consumer struct {
	level slog.Level
}

// New creates a log consumer that logs at level
func New(level slog.Level) *Consumer {
	return &Consumer{level: level}
}

func (c *Consumer) Name() string { return Name }

// Consume logs the envelope and acknowledges it
func (c *Consumer) Consume(ctx context.Context, env *model.Envelope) error {
	logging.From(ctx).Log(ctx, c.level, "Envelope received",
		slog.String("id", env.ID),
		slog.String("origin", env.Origin),
		slog.String("platform", env.Platform),
		slog.String("event_kind", string(env.Metadata.EventKind)),
		slog.String("content", env.Content),
	)

	env.Reply(ctx, &model.ConsumerResponse{
		Consumer: Name,
		Status:   "logged",
	})
	return nil
}
