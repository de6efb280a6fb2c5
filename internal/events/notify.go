package events

import (
	"context"
	"log/slog"

	"github.com/mmynk/groupledger/internal/metrics"
)

// Notify publishes event and swallows the error: a write that already
// committed must not fail because the broker is unavailable.
func Notify(ctx context.Context, p Publisher, event Event) {
	if err := p.Publish(ctx, event); err != nil {
		metrics.EventsPublished.WithLabelValues(event.Type, "error").Inc()
		slog.WarnContext(ctx, "Failed to publish ledger event",
			"type", event.Type,
			"group_id", event.GroupID,
			"error", err)
		return
	}
	metrics.EventsPublished.WithLabelValues(event.Type, "ok").Inc()
}
