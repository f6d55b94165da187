package postgres

import (
	"context"
	"fmt"

	"brigade/internal/domain"
	"brigade/internal/interfaces"
)

type eventRepository struct {
	db DB
}

func NewEventRepository(db DB) interfaces.EventLog {
	return &eventRepository{db: db}
}

func (r *eventRepository) Append(ctx context.Context, event *domain.OrderEvent) error {
	return insertEvent(ctx, r.db, event)
}

// rowQuerier is the slice of DB and Tx that insertEvent needs.
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

// insertEvent appends one event and fills in its assigned id. Append and the
// transactional write path in UpdateStatusWithEvent both go through here so
// the two inserts cannot drift apart.
func insertEvent(ctx context.Context, q rowQuerier, event *domain.OrderEvent) error {
	payload, err := domain.EncodePayload(event.Payload)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO order_events (order_id, restaurant_id, actor_type, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err = q.QueryRow(ctx, query,
		event.OrderID, event.RestaurantID, string(event.ActorType),
		event.EventType, payload, event.CreatedAt,
	).Scan(&event.ID)
	if err != nil {
		return fmt.Errorf("failed to append order event: %w", err)
	}
	return nil
}

func (r *eventRepository) QueryStatusChanged(ctx context.Context, restaurantID string, limit int) ([]*domain.OrderEvent, error) {
	query := `
		SELECT id, order_id, restaurant_id, actor_type, event_type, payload, created_at
		FROM order_events
		WHERE restaurant_id = $1 AND event_type = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`
	rows, err := r.db.Query(ctx, query, restaurantID, domain.EventTypeStatusChanged, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query order events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func (r *eventRepository) ListByOrder(ctx context.Context, orderID int64) ([]*domain.OrderEvent, error) {
	query := `
		SELECT id, order_id, restaurant_id, actor_type, event_type, payload, created_at
		FROM order_events
		WHERE order_id = $1
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order trail: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func scanEvents(rows Rows) ([]*domain.OrderEvent, error) {
	var events []*domain.OrderEvent
	for rows.Next() {
		var ev domain.OrderEvent
		var actorType string
		var payload []byte
		if err := rows.Scan(&ev.ID, &ev.OrderID, &ev.RestaurantID, &actorType,
			&ev.EventType, &payload, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order event: %w", err)
		}
		ev.ActorType = domain.Role(actorType)

		decoded, err := domain.DecodePayload(payload)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", ev.ID, err)
		}
		ev.Payload = decoded
		events = append(events, &ev)
	}
	return events, nil
}
