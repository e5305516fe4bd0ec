package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/ghtrigger/pkg/domain/interfaces"
	"github.com/m-mizutani/ghtrigger/pkg/domain/model"
	"github.com/m-mizutani/ghtrigger/pkg/utils/async"
	"github.com/m-mizutani/ghtrigger/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// DefaultDispatchTimeout bounds a single consumer call
const DefaultDispatchTimeout = 30 * time.Second

type webhookUseCase struct {
	consumer        interfaces.EventConsumer
	builder         *EnvelopeBuilder
	dispatchTimeout time.Duration
	dispatched      func(env *model.Envelope, done <-chan struct{})
}

// Option configures the webhook use case
type Option func(*webhookUseCase)

// WithInstructions overrides envelope instruction hints per event kind
func WithInstructions(instructions map[model.EventKind]string) Option {
	return func(uc *webhookUseCase) {
		uc.builder = NewEnvelopeBuilder(instructions)
	}
}

// WithDispatchTimeout bounds each consumer call. Zero disables the deadline.
func WithDispatchTimeout(d time.Duration) Option {
	return func(uc *webhookUseCase) {
		uc.dispatchTimeout = d
	}
}

// NewWebhook creates a new instance of WebhookUseCase
func NewWebhook(consumer interfaces.EventConsumer, opts ...Option) *webhookUseCase {
	uc := &webhookUseCase{
		consumer:        consumer,
		builder:         NewEnvelopeBuilder(nil),
		dispatchTimeout: DefaultDispatchTimeout,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// HandleDelivery normalizes a verified delivery and starts its dispatch.
//
// Unsupported event kinds are dropped without error. The consumer runs in its
// own goroutine; its result is only logged and never reaches the caller.
func (uc *webhookUseCase) HandleDelivery(ctx context.Context, delivery *model.WebhookDelivery) (*model.DeliveryResult, error) {
	logger := logging.From(ctx).With(
		"delivery_id", delivery.ID,
		"event_kind", delivery.Kind,
	)

	record, err := Normalize(delivery.Kind, delivery.RawPayload)
	if err != nil {
		return nil, err
	}
	if record == nil {
		logger.Info("Dropping unsupported event")
		return &model.DeliveryResult{Outcome: model.OutcomeDropped}, nil
	}

	if uc.consumer == nil {
		return nil, goerr.New("event consumer is not configured", goerr.T(ErrTagInternal))
	}

	env, err := uc.builder.Build(delivery, record)
	if err != nil {
		return nil, err
	}

	logger = logger.With("envelope_id", env.ID, "consumer", uc.consumer.Name())
	dispatchCtx := logging.With(ctx, logger)

	done := async.Dispatch(dispatchCtx, func(ctx context.Context) error {
		started := time.Now()
		if err := uc.consumer.Consume(ctx, env); err != nil {
			return goerr.Wrap(err, "failed to dispatch envelope",
				goerr.V("envelope_id", env.ID),
				goerr.V("consumer", uc.consumer.Name()),
			)
		}
		logging.From(ctx).Info("Envelope dispatched",
			"duration_ms", time.Since(started).Milliseconds(),
		)
		return nil
	},
		async.WithTimeout(uc.dispatchTimeout),
		async.WithName("envelope dispatch"),
	)

	if uc.dispatched != nil {
		uc.dispatched(env, done)
	}

	logger.Info("Dispatching envelope")
	return &model.DeliveryResult{
		Outcome:    model.OutcomeDispatched,
		EnvelopeID: env.ID,
	}, nil
}
