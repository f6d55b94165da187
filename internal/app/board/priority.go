package board

import (
	"time"

	"brigade/internal/domain"
	"brigade/internal/interfaces"
)

// Late thresholds count from placement and depend on how the order leaves
// the restaurant: a pickup customer is already on their way.
const (
	lateAfterDelivery = 15 * time.Minute
	lateAfterPickup   = 10 * time.Minute

	// soonWindow is how close a scheduled order gets before the kitchen
	// should start paying attention to it.
	soonWindow = 15 * time.Minute
)

// Flags derives the transient priority markers for one order at one instant.
// Pure in (order, now): flags are recomputed on every poll and never stored,
// so an order crosses its threshold without anyone writing to it.
func Flags(o *domain.Order, now time.Time) []interfaces.PriorityFlag {
	if domain.IsTerminal(o.Status) {
		return nil
	}

	var flags []interfaces.PriorityFlag

	if o.Status == domain.StatusReceived || o.Status == domain.StatusPreparing {
		if now.Sub(o.PlacedAt) > lateThreshold(o.Fulfillment) {
			flags = append(flags, interfaces.PriorityFlag{Type: "late", Label: "Retard"})
		}
	}

	if o.ScheduledAt != nil && o.ScheduledAt.After(now) && o.ScheduledAt.Sub(now) < soonWindow {
		flags = append(flags, interfaces.PriorityFlag{Type: "soon", Label: "Bientôt"})
	}

	return flags
}

func lateThreshold(f domain.Fulfillment) time.Duration {
	if f == domain.FulfillmentPickup {
		return lateAfterPickup
	}
	return lateAfterDelivery
}
