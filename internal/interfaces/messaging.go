package interfaces

import (
	"context"
	"time"

	"brigade/internal/domain"
)

// StatusUpdateMessage fans out after every successful transition. Consumers
// (refund, SMS) are fire-and-forget: their failure never reaches the actor.
type StatusUpdateMessage struct {
	OrderNumber  string        `json:"order_number"`
	RestaurantID string        `json:"restaurant_id"`
	OldStatus    domain.Status `json:"old_status"`
	NewStatus    domain.Status `json:"new_status"`
	ChangedBy    string        `json:"changed_by"`
	ActorRole    domain.Role   `json:"actor_role"`
	Reason       *string       `json:"reason,omitempty"`
	Timestamp    time.Time     `json:"timestamp"`
}

// NewOrdersMessage carries the ids the poll scheduler found since its last
// tick; board clients use it to trigger the new-order chime.
type NewOrdersMessage struct {
	RestaurantID string    `json:"restaurant_id"`
	OrderNumbers []string  `json:"order_numbers"`
	Timestamp    time.Time `json:"timestamp"`
}

type MessagePublisher interface {
	PublishStatusUpdate(ctx context.Context, msg StatusUpdateMessage) error
	PublishNewOrders(ctx context.Context, msg NewOrdersMessage) error
}

type (
	StatusUpdateHandler func(ctx context.Context, body []byte) error
	NewOrdersHandler    func(ctx context.Context, body []byte) error
)

type MessageConsumer interface {
	// ConsumeStatusUpdates binds a durable queue to the status topic with the
	// given routing pattern ("status.cancelled", "status.#", ...).
	ConsumeStatusUpdates(ctx context.Context, queue, pattern string, handler StatusUpdateHandler) error

	// ConsumeNewOrders subscribes an exclusive queue to the board fanout.
	ConsumeNewOrders(ctx context.Context, handler NewOrdersHandler) error
}
