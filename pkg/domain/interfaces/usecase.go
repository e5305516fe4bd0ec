package interfaces

import (
	"context"

	"github.com/m-mizutani/ghtrigger/pkg/domain/model"
)

// WebhookUseCase handles verified webhook deliveries
type WebhookUseCase interface {
	// HandleDelivery normalizes the delivery and dispatches its envelope.
	// It returns as soon as the dispatch has been started.
	HandleDelivery(ctx context.Context, delivery *model.WebhookDelivery) (*model.DeliveryResult, error)
}
