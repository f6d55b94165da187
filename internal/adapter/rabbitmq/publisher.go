package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	"brigade/internal/interfaces"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// StatusExchange carries one message per successful transition; routing
	// key is "status.<new_status>" so side-effect workers bind only what
	// they care about.
	StatusExchange = "order_status_topic"

	// BoardExchange fans new-order notifications out to every connected
	// board client.
	BoardExchange = "board_notifications_fanout"
)

type publisher struct {
	conn Connection
}

func NewPublisher(conn Connection) interfaces.MessagePublisher {
	return &publisher{conn: conn}
}

func (p *publisher) PublishStatusUpdate(ctx context.Context, msg interfaces.StatusUpdateMessage) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(StatusExchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	routingKey := fmt.Sprintf("status.%s", msg.NewStatus)

	err = ch.Publish(StatusExchange, routingKey, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish status update: %w", err)
	}

	return nil
}

func (p *publisher) PublishNewOrders(ctx context.Context, msg interfaces.NewOrdersMessage) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(BoardExchange, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	err = ch.Publish(BoardExchange, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish new-order notification: %w", err)
	}

	return nil
}
