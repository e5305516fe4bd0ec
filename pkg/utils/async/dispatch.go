package async

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/m-mizutani/ghtrigger/pkg/utils/errutil"
	"github.com/m-mizutani/ghtrigger/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// Option configures a single Dispatch call
type Option func(*dispatchConfig)

type dispatchConfig struct {
	timeout time.Duration
	name    string
}

// WithTimeout bounds the handler's context. Zero means no deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *dispatchConfig) {
		c.timeout = d
	}
}

// WithName labels log and error output of the handler
func WithName(name string) Option {
	return func(c *dispatchConfig) {
		c.name = name
	}
}

// Dispatch executes handler in a new goroutine and returns immediately.
//
// The handler gets a fresh background context that keeps the logger of ctx,
// so cancelling ctx (e.g. the HTTP request finishing) does not cancel it.
// Panics are recovered. Errors and panics are logged and reported through
// errutil.Handle; nothing is retried.
//
// The returned channel is closed once the handler has finished.
func Dispatch(ctx context.Context, handler func(ctx context.Context) error, opts ...Option) <-chan struct{} {
	cfg := &dispatchConfig{name: "async handler"}
	for _, opt := range opts {
		opt(cfg)
	}

	newCtx := newBackgroundContext(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)

		runCtx := newCtx
		if cfg.timeout > 0 {
			var cancel context.CancelFunc
			runCtx, cancel = context.WithTimeout(newCtx, cfg.timeout)
			defer cancel()
		}

		defer func() {
			if r := recover(); r != nil {
				stack := debug.Stack()
				logging.From(newCtx).Error("panic in "+cfg.name,
					"recover", r,
					"stack", string(stack))
				errutil.Handle(newCtx, "panic in "+cfg.name,
					goerr.New(fmt.Sprintf("panic: %v", r), goerr.V("handler", cfg.name)))
			}
		}()

		if err := handler(runCtx); err != nil {
			errutil.Handle(newCtx, "error in "+cfg.name, err)
		}
	}()

	return done
}

// newBackgroundContext creates a new background context preserving the logger
func newBackgroundContext(ctx context.Context) context.Context {
	return logging.With(context.Background(), logging.From(ctx))
}
