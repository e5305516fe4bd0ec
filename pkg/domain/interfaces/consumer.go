package interfaces

import (
	"context"

	"github.com/m-mizutani/ghtrigger/pkg/domain/model"
)

// EventConsumer is the downstream event-processing system
type EventConsumer interface {
	// Name identifies the consumer in logs and health output
	Name() string

	// Consume takes ownership of env. Consumers acknowledge through env.Reply.
	Consume(ctx context.Context, env *model.Envelope) error
}
