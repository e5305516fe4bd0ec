package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/ghtrigger/pkg/domain/model"
	"github.com/m-mizutani/ghtrigger/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// DefaultInstructions are the hints attached to envelopes per event kind
var DefaultInstructions = map[model.EventKind]string{
	model.EventKindPullRequest: "A GitHub pull request event was received. The content is a JSON object with action, number, title, body, author, merged and repository.",
	model.EventKindPush:        "A GitHub push event was received. The content is a JSON object with ref, repository, pusher and the ordered list of commits.",
	model.EventKindRelease:     "A GitHub release event was received. The content is a JSON object with action, tag_name, name, author, repository and body.",
}

// EnvelopeBuilder wraps normalized records into envelopes
type EnvelopeBuilder struct {
	instructions map[model.EventKind]string
	now          func() time.Time
	newID        func() string
}

// NewEnvelopeBuilder creates a builder. Entries in instructions override
// DefaultInstructions for their kind.
func NewEnvelopeBuilder(instructions map[model.EventKind]string) *EnvelopeBuilder {
	merged := make(map[model.EventKind]string, len(DefaultInstructions))
	for k, v := range DefaultInstructions {
		merged[k] = v
	}
	for k, v := range instructions {
		if v != "" {
			merged[k] = v
		}
	}

	return &EnvelopeBuilder{
		instructions: merged,
		now:          time.Now,
		newID:        uuid.NewString,
	}
}

// Build creates the envelope for record. It makes no external calls.
func (b *EnvelopeBuilder) Build(delivery *model.WebhookDelivery, record model.EventRecord) (*model.Envelope, error) {
	if record == nil {
		return nil, goerr.New("record is required", goerr.T(ErrTagInternal))
	}

	content, err := json.Marshal(record)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to serialize event record",
			goerr.V("event_kind", record.Kind()),
			goerr.T(ErrTagInternal),
		)
	}

	kind := record.Kind()
	env := &model.Envelope{
		ID:          b.envelopeID(kind, delivery.ID),
		Origin:      model.OriginGitHubWebhook,
		Content:     string(content),
		Instruction: b.instructions[kind],
		Platform:    model.PlatformGitHub,
		Metadata: model.EnvelopeMetadata{
			DeliveryID: delivery.ID,
			EventKind:  kind,
			ReceivedAt: delivery.ReceivedAt,
		},
	}
	if json.Valid(delivery.RawPayload) {
		env.Metadata.Payload = json.RawMessage(delivery.RawPayload)
	}
	env.Respond = newResponseHandler(env.ID)

	return env, nil
}

// envelopeID derives the id from the delivery id, which GitHub keeps unique
// per delivery and reuses on redelivery. Without it the id falls back to the
// clock plus a random suffix so concurrent deliveries cannot collide.
func (b *EnvelopeBuilder) envelopeID(kind model.EventKind, deliveryID string) string {
	if deliveryID != "" {
		return fmt.Sprintf("%s-%s-%s", model.PlatformGitHub, kind, deliveryID)
	}
	return fmt.Sprintf("%s-%s-%d-%s", model.PlatformGitHub, kind, b.now().UnixNano(), b.newID())
}

func newResponseHandler(envelopeID string) model.ResponseHandler {
	return func(ctx context.Context, resp *model.ConsumerResponse) {
		logger := logging.From(ctx)
		defer func() {
			if r := recover(); r != nil {
				logger.Warn("panic in response handler", "envelope_id", envelopeID, "recover", r)
			}
		}()

		if resp == nil {
			logger.Debug("Empty consumer response", "envelope_id", envelopeID)
			return
		}

		logger.Info("Consumer acknowledged envelope",
			"envelope_id", envelopeID,
			"consumer", resp.Consumer,
			"status", resp.Status,
			"message", resp.Message,
		)
	}
}
