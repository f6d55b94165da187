package rabbitmq

import (
	"context"
	"fmt"
	"log"
	"time"

	"brigade/internal/interfaces"

	amqp "github.com/rabbitmq/amqp091-go"
)

type consumer struct {
	conn     Connection
	prefetch int
}

func NewConsumer(conn Connection, prefetch int) interfaces.MessageConsumer {
	return &consumer{conn: conn, prefetch: prefetch}
}

func (c *consumer) ConsumeStatusUpdates(ctx context.Context, queue, pattern string, handler interfaces.StatusUpdateHandler) error {
	for {
		err := c.consumeStatusUpdatesOnce(ctx, queue, pattern, handler)

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err == nil {
			return nil
		}

		log.Printf("Status-update consumer disconnected: %v. Reconnecting in 5 seconds...", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(5 * time.Second):
		}
	}
}

func (c *consumer) ConsumeNewOrders(ctx context.Context, handler interfaces.NewOrdersHandler) error {
	for {
		err := c.consumeNewOrdersOnce(ctx, handler)

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err == nil {
			return nil
		}

		log.Printf("New-order consumer disconnected: %v. Reconnecting in 5 seconds...", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(5 * time.Second):
		}
	}
}

func (c *consumer) consumeStatusUpdatesOnce(ctx context.Context, queue, pattern string, handler interfaces.StatusUpdateHandler) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	closeChan := ch.NotifyClose()

	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	if err := c.setupStatusInfrastructure(ch, queue, pattern); err != nil {
		return err
	}

	msgs, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-closeChan:
			if err != nil {
				return fmt.Errorf("channel closed: %w", err)
			}
			return fmt.Errorf("channel closed gracefully")

		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("messages channel closed")
			}

			if err := handler(ctx, msg.Body); err != nil {
				// Malformed or poisoned message goes to the DLQ.
				msg.Nack(false, false)
			} else {
				msg.Ack(false)
			}
		}
	}
}

func (c *consumer) consumeNewOrdersOnce(ctx context.Context, handler interfaces.NewOrdersHandler) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	closeChan := ch.NotifyClose()

	if err := ch.ExchangeDeclare(BoardExchange, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := ch.QueueBind(q.Name, "", BoardExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}

	msgs, err := ch.Consume(q.Name, "", true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-closeChan:
			if err != nil {
				return fmt.Errorf("channel closed: %w", err)
			}
			return fmt.Errorf("channel closed gracefully")

		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("messages channel closed")
			}

			// Board notifications are best-effort; handler errors are the
			// handler's problem to log.
			_ = handler(ctx, msg.Body)
		}
	}
}

func (c *consumer) setupStatusInfrastructure(ch Channel, queue, pattern string) error {
	if err := ch.ExchangeDeclare(StatusExchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare status exchange: %w", err)
	}

	dlqExchange := StatusExchange + "_dlq"
	if err := ch.ExchangeDeclare(dlqExchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare DLQ exchange: %w", err)
	}

	dlqQueue := queue + "_dlq"
	if _, err := ch.QueueDeclare(dlqQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare DLQ: %w", err)
	}

	if err := ch.QueueBind(dlqQueue, "#", dlqExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind DLQ: %w", err)
	}

	args := amqp.Table{
		"x-dead-letter-exchange": dlqExchange,
	}

	q, err := ch.QueueDeclare(queue, true, false, false, false, args)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}

	if err := ch.QueueBind(q.Name, pattern, StatusExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s: %w", queue, err)
	}

	return nil
}
