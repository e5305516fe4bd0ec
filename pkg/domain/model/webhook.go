package model

import "time"

// EventKind is the GitHub event name delivered in the X-GitHub-Event header
type EventKind string

const (
	EventKindPullRequest EventKind = "pull_request"
	EventKindPush        EventKind = "push"
	EventKindRelease     EventKind = "release"
)

// IsSupported reports whether the kind is normalized into an EventRecord
func (k EventKind) IsSupported() bool {
	switch k {
	case EventKindPullRequest, EventKindPush, EventKindRelease:
		return true
	default:
		return false
	}
}

// WebhookDelivery is one inbound webhook request. It is never persisted.
type WebhookDelivery struct {
	ID         string    // X-GitHub-Delivery header
	Kind       EventKind // X-GitHub-Event header
	Signature  string    // X-Hub-Signature-256 header
	ReceivedAt time.Time // Time when the request was received
	RawPayload []byte    // Request body exactly as received
}

// DeliveryOutcome is the terminal state of a verified delivery
type DeliveryOutcome string

const (
	// OutcomeDispatched means an envelope was handed to the consumer
	OutcomeDispatched DeliveryOutcome = "dispatched"
	// OutcomeDropped means the event kind is not supported
	OutcomeDropped DeliveryOutcome = "dropped"
)

// DeliveryResult is returned to the listener once the delivery is acknowledged
type DeliveryResult struct {
	Outcome    DeliveryOutcome
	EnvelopeID string // empty when dropped
}
