package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/m-mizutani/ghtrigger/pkg/domain/interfaces"
	"github.com/m-mizutani/ghtrigger/pkg/domain/model"
	"github.com/m-mizutani/ghtrigger/pkg/usecase"
	"github.com/m-mizutani/ghtrigger/pkg/utils/errutil"
	"github.com/m-mizutani/ghtrigger/pkg/utils/logging"
	"github.com/m-mizutani/ghtrigger/pkg/utils/signature"
	"github.com/m-mizutani/goerr/v2"
)

// GitHub webhook headers
const (
	HeaderEvent     = "X-GitHub-Event"
	HeaderDelivery  = "X-GitHub-Delivery"
	HeaderSignature = "X-Hub-Signature-256"
)

// WebhookResponse is the body of a 200 reply
type WebhookResponse struct {
	Status     string                `json:"status"`
	Outcome    model.DeliveryOutcome `json:"outcome"`
	EnvelopeID string                `json:"envelope_id,omitempty"`
}

// WebhookHandler handles GitHub webhooks
type WebhookHandler struct {
	secret      string
	maxBodySize int64
	webhookUC   interfaces.WebhookUseCase
	now         func() time.Time
}

// HandlerOption configures a WebhookHandler
type HandlerOption func(*WebhookHandler)

// WithHandlerMaxBodySize limits the request body. Zero or less means DefaultMaxBodySize.
func WithHandlerMaxBodySize(size int64) HandlerOption {
	return func(h *WebhookHandler) {
		if size > 0 {
			h.maxBodySize = size
		}
	}
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(secret string, webhookUC interfaces.WebhookUseCase, opts ...HandlerOption) *WebhookHandler {
	h := &WebhookHandler{
		secret:      secret,
		maxBodySize: DefaultMaxBodySize,
		webhookUC:   webhookUC,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle processes one delivery:
//
//	RECEIVED -> VERIFYING -> REJECTED (401)
//	                      -> NORMALIZING -> DROPPED (200)
//	                                     -> DISPATCHING -> ACKNOWLEDGED (200)
//
// The reply is written as soon as the dispatch has started; the consumer's
// result never changes it.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	defer r.Body.Close()

	// RECEIVED
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodySize))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			logging.From(ctx).Warn("Webhook payload too large", "limit", maxErr.Limit)
			writeError(ctx, w, "payload too large", http.StatusRequestEntityTooLarge)
			return
		}
		logging.From(ctx).Error("Failed to read request body", "error", err)
		writeError(ctx, w, "failed to read request body", http.StatusBadRequest)
		return
	}

	delivery := &model.WebhookDelivery{
		ID:         r.Header.Get(HeaderDelivery),
		Kind:       model.EventKind(r.Header.Get(HeaderEvent)),
		Signature:  r.Header.Get(HeaderSignature),
		ReceivedAt: h.now(),
		RawPayload: body,
	}
	logger := logging.From(ctx).With(
		"delivery_id", delivery.ID,
		"event_kind", delivery.Kind,
	)
	ctx = logging.With(ctx, logger)

	// VERIFYING, on the bytes exactly as received
	if !signature.Verify(delivery.RawPayload, h.secret, delivery.Signature) {
		logger.Warn("Invalid webhook signature",
			"signature_present", delivery.Signature != "",
		)
		writeError(ctx, w, "invalid signature", http.StatusUnauthorized)
		return
	}

	// NORMALIZING and DISPATCHING
	result, err := h.webhookUC.HandleDelivery(ctx, delivery)
	if err != nil {
		if goerr.HasTag(err, usecase.ErrTagInvalidPayload) {
			logger.Warn("Invalid webhook payload", "error", err)
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &typeErr) {
				writeError(ctx, w, "payload does not match event schema", http.StatusBadRequest)
				return
			}
			writeError(ctx, w, "invalid JSON payload", http.StatusBadRequest)
			return
		}
		errutil.Handle(ctx, "Failed to handle webhook delivery", err)
		writeError(ctx, w, "internal server error", http.StatusInternalServerError)
		return
	}

	// ACKNOWLEDGED
	writeJSON(ctx, w, http.StatusOK, &WebhookResponse{
		Status:     "success",
		Outcome:    result.Outcome,
		EnvelopeID: result.EnvelopeID,
	})
}
