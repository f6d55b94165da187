package interfaces

import (
	"context"
	"time"

	"brigade/internal/domain"
)

// OrderStore is the narrow contract over the persistent order records.
// Orders are created elsewhere; this service reads them and performs
// conditional status writes.
type OrderStore interface {
	FindByID(ctx context.Context, id int64) (*domain.Order, error)
	FindByNumber(ctx context.Context, number string) (*domain.Order, error)

	// QueryByStatus returns orders in any of the given statuses, ordered by
	// placed_at ascending.
	QueryByStatus(ctx context.Context, restaurantID string, statuses []domain.Status) ([]*domain.Order, error)

	// QueryPlacedBetween returns orders with from <= placed_at < to, ordered
	// by placed_at ascending. Bounds are UTC instants.
	QueryPlacedBetween(ctx context.Context, restaurantID string, from, to time.Time) ([]*domain.Order, error)

	// UpdateStatusWithEvent applies the status change carried by the event
	// and appends the event, as one transaction. The write is conditioned on
	// the stored status still being expected; domain.ErrConflict otherwise.
	UpdateStatusWithEvent(ctx context.Context, orderID int64, expected domain.Status, event *domain.OrderEvent) error
}

// EventLog is the append-only order event store.
type EventLog interface {
	Append(ctx context.Context, event *domain.OrderEvent) error

	// QueryStatusChanged returns status_changed events for a restaurant,
	// newest first.
	QueryStatusChanged(ctx context.Context, restaurantID string, limit int) ([]*domain.OrderEvent, error)

	// ListByOrder returns the full trail for one order, oldest first.
	ListByOrder(ctx context.Context, orderID int64) ([]*domain.OrderEvent, error)
}

// StaffDirectory resolves staff for assignment validation and display names.
type StaffDirectory interface {
	ActiveByRole(ctx context.Context, restaurantID string, role domain.Role) ([]*domain.StaffRef, error)
	FindByID(ctx context.Context, id string) (*domain.StaffRef, error)
	Heartbeat(ctx context.Context, id string) error
}

// SessionStore holds the per-session role mode. Sessions come from the
// external auth layer; only the mode lives here.
type SessionStore interface {
	ModeName(ctx context.Context, sessionToken string) (string, error)
	SetModeName(ctx context.Context, sessionToken, mode string, ttl time.Duration) error
}

// LocalTimeResolver converts a UTC instant into the calendar components of
// an IANA zone. The host's local zone is never an acceptable substitute for
// the restaurant's.
type LocalTimeResolver interface {
	Resolve(utc time.Time, ianaZone string) (domain.LocalTime, error)
}
