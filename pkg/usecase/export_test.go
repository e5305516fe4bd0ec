package usecase

import (
	"time"

	"github.com/m-mizutani/ghtrigger/pkg/domain/model"
)

// SetEnvelopeClock replaces the time and id sources used for fallback ids
func SetEnvelopeClock(b *EnvelopeBuilder, now func() time.Time, newID func() string) {
	b.now = now
	b.newID = newID
}

// WithDispatchHook is called right after a dispatch has been started. done is
// closed when the consumer returns.
func WithDispatchHook(hook func(env *model.Envelope, done <-chan struct{})) Option {
	return func(uc *webhookUseCase) {
		uc.dispatched = hook
	}
}
