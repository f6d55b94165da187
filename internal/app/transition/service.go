package transition

import (
	"context"
	"fmt"
	"time"

	"brigade/internal/adapter/logger"
	"brigade/internal/domain"
	"brigade/internal/interfaces"
)

// Service is the only writer of order statuses. It validates the edge, the
// actor's capabilities and the required fields, performs the conditional
// write together with the event append, then notifies downstream without
// letting notification failures undo anything.
type Service struct {
	orders    interfaces.OrderStore
	staff     interfaces.StaffDirectory
	publisher interfaces.MessagePublisher
	logger    logger.Logger
	now       func() time.Time
}

func NewService(
	orders interfaces.OrderStore,
	staff interfaces.StaffDirectory,
	publisher interfaces.MessagePublisher,
	lgr logger.Logger,
) *Service {
	return &Service{
		orders:    orders,
		staff:     staff,
		publisher: publisher,
		logger:    lgr,
		now:       time.Now,
	}
}

func (s *Service) Transition(ctx context.Context, cmd interfaces.TransitionCommand) (*domain.Order, error) {
	order, err := s.orders.FindByID(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}

	if !domain.CanTransition(order.Fulfillment, order.Status, cmd.Target) {
		return nil, fmt.Errorf("%w: %s -> %s (%s)",
			domain.ErrInvalidTransition, order.Status, cmd.Target, order.Fulfillment)
	}

	if domain.RequiresReason(cmd.Target) && cmd.Reason == "" {
		return nil, domain.ErrMissingReason
	}

	// Deactivated staff keep their session until it expires; the engine is
	// the backstop.
	if !cmd.Actor.Active {
		return nil, domain.ErrNotPermitted
	}

	if !roleMayTransition(cmd.Actor.Role, order.Fulfillment, cmd.Target) {
		return nil, domain.ErrNotPermitted
	}

	assignee, err := s.resolveAssignee(ctx, order, cmd)
	if err != nil {
		return nil, err
	}

	if err := s.checkActorBinding(order, cmd, assignee); err != nil {
		return nil, err
	}

	payload, err := s.buildPayload(order, cmd, assignee)
	if err != nil {
		return nil, err
	}

	event := &domain.OrderEvent{
		OrderID:      order.ID,
		RestaurantID: order.RestaurantID,
		ActorType:    cmd.Actor.Role,
		EventType:    domain.EventTypeStatusChanged,
		Payload:      payload,
		CreatedAt:    s.now(),
	}

	expected := order.Status
	if err := s.orders.UpdateStatusWithEvent(ctx, order.ID, expected, event); err != nil {
		if err == domain.ErrConflict {
			s.logger.Debug("transition_conflict", "Order status changed concurrently", order.Number,
				map[string]interface{}{"order_number": order.Number, "expected": expected})
		}
		return nil, err
	}

	applyTransition(order, cmd.Target, payload)

	s.logger.Info("status_changed",
		fmt.Sprintf("Order %s: %s -> %s", order.Number, expected, cmd.Target),
		order.Number, map[string]interface{}{
			"order_number": order.Number,
			"old_status":   expected,
			"new_status":   cmd.Target,
			"changed_by":   cmd.Actor.ID,
		})

	s.notify(ctx, order, expected, cmd)

	return order, nil
}

// resolveAssignee decides who a binding transition binds to. By default the
// actor claims the order for themselves; in supervisor mode an explicit
// assignee is validated against the active staff of the required role.
func (s *Service) resolveAssignee(ctx context.Context, order *domain.Order, cmd interfaces.TransitionCommand) (string, error) {
	role, binds := bindingRole(cmd.Target)
	if !binds {
		return "", nil
	}

	if cmd.AssigneeID == "" || cmd.AssigneeID == cmd.Actor.ID {
		return cmd.Actor.ID, nil
	}

	if !cmd.Mode.CanReassign(cmd.Actor) {
		return "", domain.ErrNotPermitted
	}

	active, err := s.staff.ActiveByRole(ctx, order.RestaurantID, role)
	if err != nil {
		return "", fmt.Errorf("failed to validate assignee: %w", err)
	}
	for _, st := range active {
		if st.ID == cmd.AssigneeID {
			return cmd.AssigneeID, nil
		}
	}
	return "", domain.ErrUnknownAssignee
}

// checkActorBinding enforces individual mode: an actor may only move orders
// bound to them, except the self-claim edge that creates the binding.
func (s *Service) checkActorBinding(order *domain.Order, cmd interfaces.TransitionCommand, assignee string) error {
	if _, ok := cmd.Mode.(domain.IndividualMode); !ok {
		return nil
	}

	if claimFrom, ok := domain.ClaimStatus(cmd.Actor.Role); ok && order.Status == claimFrom {
		// Self-claim: the order must still be unclaimed and the claim must
		// be for the actor, not someone else.
		if order.BoundStaffID(cmd.Actor.Role) == nil && (assignee == "" || assignee == cmd.Actor.ID) {
			return nil
		}
	}

	if !order.IsBoundTo(cmd.Actor) {
		return domain.ErrNotPermitted
	}
	return nil
}

func (s *Service) buildPayload(order *domain.Order, cmd interfaces.TransitionCommand, assignee string) (domain.EventPayload, error) {
	switch cmd.Target {
	case domain.StatusPreparing:
		return domain.PreparingPayload{CookID: assignee}, nil
	case domain.StatusReady:
		return domain.ReadyPayload{}, nil
	case domain.StatusAssigned:
		return domain.AssignedPayload{DriverID: assignee}, nil
	case domain.StatusEnroute:
		driverID := ""
		if order.DriverID != nil {
			driverID = *order.DriverID
		}
		return domain.EnroutePayload{DriverID: driverID}, nil
	case domain.StatusCompleted:
		return domain.CompletedPayload{}, nil
	case domain.StatusCancelled:
		return domain.CancelledPayload{Reason: cmd.Reason}, nil
	case domain.StatusFailed:
		return domain.FailedPayload{Reason: cmd.Reason, DriverID: order.DriverID}, nil
	default:
		return nil, fmt.Errorf("%w: unknown target %q", domain.ErrInvalidTransition, cmd.Target)
	}
}

// roleMayTransition scopes each leg of the lifecycle to the staff role that
// works it. Managers may do anything; cancellation is open to every role.
func roleMayTransition(role domain.Role, f domain.Fulfillment, target domain.Status) bool {
	if role == domain.RoleManager || target == domain.StatusCancelled {
		return true
	}
	switch target {
	case domain.StatusPreparing, domain.StatusReady:
		return role == domain.RoleCook
	case domain.StatusAssigned, domain.StatusEnroute, domain.StatusFailed:
		return role == domain.RoleDriver
	case domain.StatusCompleted:
		if f == domain.FulfillmentPickup {
			// Pickup completion is triggered by the storefront through a
			// cook's board.
			return role == domain.RoleCook
		}
		return role == domain.RoleDriver
	default:
		return false
	}
}

// bindingRole reports which role a transition binds an order to, if any.
func bindingRole(target domain.Status) (domain.Role, bool) {
	switch target {
	case domain.StatusPreparing:
		return domain.RoleCook, true
	case domain.StatusAssigned:
		return domain.RoleDriver, true
	default:
		return "", false
	}
}

// applyTransition mirrors the database write onto the in-memory order so the
// caller gets back the state it just created.
func applyTransition(order *domain.Order, target domain.Status, payload domain.EventPayload) {
	order.Status = target
	switch p := payload.(type) {
	case domain.PreparingPayload:
		id := p.CookID
		order.CookID = &id
	case domain.AssignedPayload:
		id := p.DriverID
		order.DriverID = &id
	case domain.CancelledPayload:
		reason := p.Reason
		order.CancellationReason = &reason
	case domain.FailedPayload:
		reason := p.Reason
		order.FailureReason = &reason
	}
}

// notify publishes the status update. Failures are logged and dropped: the
// transition already committed and must stand.
func (s *Service) notify(ctx context.Context, order *domain.Order, oldStatus domain.Status, cmd interfaces.TransitionCommand) {
	msg := interfaces.StatusUpdateMessage{
		OrderNumber:  order.Number,
		RestaurantID: order.RestaurantID,
		OldStatus:    oldStatus,
		NewStatus:    order.Status,
		ChangedBy:    cmd.Actor.ID,
		ActorRole:    cmd.Actor.Role,
		Timestamp:    s.now(),
	}
	if cmd.Reason != "" {
		reason := cmd.Reason
		msg.Reason = &reason
	}

	if err := s.publisher.PublishStatusUpdate(ctx, msg); err != nil {
		s.logger.Error("status_publish_failed", "Failed to publish status update", order.Number,
			map[string]interface{}{
				"order_number": order.Number,
				"new_status":   order.Status,
			}, err)
	}
}
