package model

import (
	"context"
	"encoding/json"
	"time"
)

const (
	// PlatformGitHub is the platform tag of every envelope
	PlatformGitHub = "github"
	// OriginGitHubWebhook is the origin tag of envelopes built from webhooks
	OriginGitHubWebhook = "github-webhook"
)

// ResponseHandler receives acknowledgements from the consumer. Implementations
// must not block and must not panic into the caller.
type ResponseHandler func(ctx context.Context, resp *ConsumerResponse)

// ConsumerResponse is an acknowledgement sent back by a consumer
type ConsumerResponse struct {
	Consumer string `json:"consumer"`
	Status   string `json:"status"`
	Message  string `json:"message,omitempty"`
}

// Envelope is the unit handed to the downstream consumer. Ownership moves to
// the consumer on dispatch.
type Envelope struct {
	ID          string           `json:"id"`
	Origin      string           `json:"origin"`
	Content     string           `json:"content"` // JSON of the EventRecord
	Instruction string           `json:"instruction"`
	Platform    string           `json:"platform"`
	Metadata    EnvelopeMetadata `json:"metadata"`

	Respond ResponseHandler `json:"-"`
}

// EnvelopeMetadata carries the original delivery
type EnvelopeMetadata struct {
	DeliveryID string          `json:"delivery_id,omitempty"`
	EventKind  EventKind       `json:"event_kind"`
	ReceivedAt time.Time       `json:"received_at"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// Reply calls the response handler if one is attached
func (e *Envelope) Reply(ctx context.Context, resp *ConsumerResponse) {
	if e == nil || e.Respond == nil {
		return
	}
	e.Respond(ctx, resp)
}
