package history

import (
	"sort"

	"brigade/internal/domain"
	"brigade/internal/interfaces"
)

// Project collapses a status event stream into at most one entry per order:
// the latest event whose status belongs to the terminal set. Orders with no
// terminal event are dropped entirely.
//
// Pure and idempotent: the same event set yields the same result in the same
// order regardless of how the input slice was sorted. Ties on created_at are
// broken by the event id, which the log assigns in append order.
func Project(events []*domain.OrderEvent, terminalSet map[domain.Status]bool) []interfaces.HistoryEntry {
	latest := make(map[int64]*domain.OrderEvent)

	for _, ev := range events {
		if ev.EventType != domain.EventTypeStatusChanged || ev.Payload == nil {
			continue
		}
		if !terminalSet[ev.Payload.Status()] {
			continue
		}

		cur, ok := latest[ev.OrderID]
		if !ok || newer(ev, cur) {
			latest[ev.OrderID] = ev
		}
	}

	entries := make([]interfaces.HistoryEntry, 0, len(latest))
	for _, ev := range latest {
		entries = append(entries, interfaces.HistoryEntry{
			OrderID:   ev.OrderID,
			Status:    ev.Payload.Status(),
			Payload:   ev.Payload,
			Timestamp: ev.CreatedAt,
		})
	}

	// Newest first, then order id for a stable total order.
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].Timestamp.Equal(entries[j].Timestamp) {
			return entries[i].Timestamp.After(entries[j].Timestamp)
		}
		return entries[i].OrderID > entries[j].OrderID
	})

	return entries
}

func newer(a, b *domain.OrderEvent) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}
