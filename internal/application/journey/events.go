package journey

import (
	"context"
	"log/slog"

	"github.com/stayflow-tech/stayflow/internal/domain/guest"
)

// publishUncommitted publishes the aggregate's uncommitted events and marks
// them committed. Publishing failure after persistence is non-fatal.
func publishUncommitted(ctx context.Context, publisher guest.EventPublisher, logger *slog.Logger, g *guest.Guest) {
	if publisher == nil || g == nil {
		return
	}
	events := g.UncommittedEvents()
	if len(events) == 0 {
		return
	}
	if err := publisher.Publish(ctx, events...); err != nil {
		logger.Warn("failed to publish domain events",
			"error", err,
			"guest_id", g.ID(),
			"event_count", len(events))
	}
	g.MarkEventsCommitted()
}
