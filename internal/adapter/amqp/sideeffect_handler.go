package amqp

import (
	"context"
	"encoding/json"
	"fmt"

	"brigade/internal/adapter/logger"
	"brigade/internal/domain"
	"brigade/internal/interfaces"
)

// Side-effect handlers run after a transition has already committed. They
// are fire-and-forget by contract: every failure here is logged and
// swallowed, and must never surface to the actor who made the transition.

// RefundHandler reacts to cancellations for orders that were already paid.
// The payment gateway call itself is external; this handler owns detecting
// the condition and recording the outcome.
type RefundHandler struct {
	logger logger.Logger
}

func NewRefundHandler(logger logger.Logger) *RefundHandler {
	return &RefundHandler{logger: logger}
}

func (h *RefundHandler) Handle(ctx context.Context, body []byte) error {
	var msg interfaces.StatusUpdateMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		h.logger.Error("message_parse_failed", "Failed to parse status update", "", nil, err)
		return err
	}

	if msg.NewStatus != domain.StatusCancelled {
		return nil
	}

	reason := ""
	if msg.Reason != nil {
		reason = *msg.Reason
	}

	h.logger.Info("refund_requested", fmt.Sprintf("Refund requested for order %s", msg.OrderNumber),
		msg.OrderNumber, map[string]interface{}{
			"order_number": msg.OrderNumber,
			"reason":       reason,
		})

	return nil
}

// SMSHandler notifies the customer on every status change.
type SMSHandler struct {
	logger logger.Logger
}

func NewSMSHandler(logger logger.Logger) *SMSHandler {
	return &SMSHandler{logger: logger}
}

func (h *SMSHandler) Handle(ctx context.Context, body []byte) error {
	var msg interfaces.StatusUpdateMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		h.logger.Error("message_parse_failed", "Failed to parse status update", "", nil, err)
		return err
	}

	h.logger.Info("sms_queued", fmt.Sprintf("SMS queued for order %s: %s -> %s",
		msg.OrderNumber, msg.OldStatus, msg.NewStatus),
		msg.OrderNumber, map[string]interface{}{
			"order_number": msg.OrderNumber,
			"new_status":   msg.NewStatus,
		})

	return nil
}

// NewOrderChimeHandler plays the part of the audio/vibration trigger: it
// logs the ids so a board client can be pointed at the same fanout.
type NewOrderChimeHandler struct {
	logger logger.Logger
}

func NewNewOrderChimeHandler(logger logger.Logger) *NewOrderChimeHandler {
	return &NewOrderChimeHandler{logger: logger}
}

func (h *NewOrderChimeHandler) Handle(ctx context.Context, body []byte) error {
	var msg interfaces.NewOrdersMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		h.logger.Error("message_parse_failed", "Failed to parse new-order notification", "", nil, err)
		return err
	}

	h.logger.Info("new_order_chime", fmt.Sprintf("%d new order(s) since last poll", len(msg.OrderNumbers)),
		"", map[string]interface{}{
			"restaurant_id": msg.RestaurantID,
			"order_numbers": msg.OrderNumbers,
		})

	return nil
}
