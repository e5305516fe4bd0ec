package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/m-mizutani/ghtrigger/pkg/utils/logging"
	"github.com/m-mizutani/gt"
)

func TestFrom(t *testing.T) {
	t.Run("returns default logger for empty context", func(t *testing.T) {
		gt.Value(t, logging.From(context.Background())).Equal(slog.Default())
	})

	t.Run("returns logger stored in context", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		ctx := logging.With(context.Background(), logger)

		logging.From(ctx).Info("hello", "delivery_id", "abc")
		gt.String(t, buf.String()).Contains("delivery_id=abc")
	})
}
