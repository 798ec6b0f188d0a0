package presence

import (
	"log/slog"
	"time"

	"github.com/example/venue-discovery/internal/models"
	"github.com/example/venue-discovery/internal/observability"
)

// Publisher is the durable side of a check-in; the Kafka producer in
// internal/ingest satisfies it.
type Publisher interface {
	PublishCheckIn(c models.CheckIn) error
}

// Notifier routes one check-in both ways: live fan-out to connected
// watchers and best-effort publish onto the event stream.
type Notifier struct {
	Registry  *Registry
	Publisher Publisher
	Logger    *slog.Logger
}

// Announce stamps and distributes a check-in. The stream publish is
// best-effort: a broker outage degrades the durable feed, not the live
// broadcast.
func (n *Notifier) Announce(c models.CheckIn) models.CheckIn {
	if c.At.IsZero() {
		c.At = time.Now()
	}
	if n.Publisher != nil {
		if err := n.Publisher.PublishCheckIn(c); err != nil {
			n.logger().Warn("check-in publish failed", "venue_id", c.VenueID, "error", err)
		}
	}
	n.Registry.Broadcast(c)
	observability.CheckinsTotal.Inc()
	return c
}

func (n *Notifier) logger() *slog.Logger {
	if n.Logger != nil {
		return n.Logger
	}
	return slog.Default()
}
