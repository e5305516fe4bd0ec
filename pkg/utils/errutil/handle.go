package errutil

import (
	"context"
	"log/slog"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ghtrigger/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// Handle logs err and reports it to Sentry. Reporting is a no-op when Sentry
// has not been initialized.
func Handle(ctx context.Context, msg string, err error) {
	if err == nil {
		return
	}

	values := map[string]any{}
	if ge := goerr.Unwrap(err); ge != nil {
		for k, v := range ge.Values() {
			values[k] = v
		}
	}

	attrs := []any{slog.Any("error", err)}
	for k, v := range values {
		attrs = append(attrs, slog.Any(k, v))
	}
	logging.From(ctx).Error(msg, attrs...)

	hub := sentry.CurrentHub().Clone()
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("message", msg)
		if len(values) > 0 {
			scope.SetContext("values", sentry.Context(values))
		}
		hub.CaptureException(err)
	})
}
