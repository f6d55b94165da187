package board

import (
	"context"
	"time"

	"brigade/internal/adapter/logger"
	"brigade/internal/domain"
	"brigade/internal/interfaces"
)

// Service serves the live boards: active orders with their priority flags,
// scoped by the actor's role mode, plus the poll loop that tells connected
// boards about orders placed since the last tick.
type Service struct {
	orders       interfaces.OrderStore
	publisher    interfaces.MessagePublisher
	logger       logger.Logger
	pollInterval time.Duration

	now func() time.Time
}

func NewService(
	orders interfaces.OrderStore,
	publisher interfaces.MessagePublisher,
	pollInterval time.Duration,
	lgr logger.Logger,
) *Service {
	return &Service{
		orders:       orders,
		publisher:    publisher,
		logger:       lgr,
		pollInterval: pollInterval,
		now:          time.Now,
	}
}

// ActiveOrders returns the non-terminal orders the actor may see, each with
// its flags computed at call time.
func (s *Service) ActiveOrders(ctx context.Context, restaurantID string, actor domain.StaffRef, mode domain.RoleMode) ([]interfaces.BoardEntry, error) {
	orders, err := s.orders.QueryByStatus(ctx, restaurantID, domain.ActiveStatuses)
	if err != nil {
		return nil, err
	}

	visible := mode.VisibleOrders(actor, orders)
	now := s.now()

	entries := make([]interfaces.BoardEntry, 0, len(visible))
	for _, o := range visible {
		entries = append(entries, interfaces.BoardEntry{
			Order: o,
			Flags: Flags(o, now),
		})
	}
	return entries, nil
}

// Track looks one order up by its public number, with flags computed at
// call time. Backs the per-order tracking view.
func (s *Service) Track(ctx context.Context, number string) (*interfaces.BoardEntry, error) {
	order, err := s.orders.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	return &interfaces.BoardEntry{
		Order: order,
		Flags: Flags(order, s.now()),
	}, nil
}

// RunPoller polls the active board on a fixed interval and fans out the
// numbers of newly placed orders. Poll failures are logged and the loop
// keeps going; a missed tick only delays the chime. Blocks until ctx ends.
func (s *Service) RunPoller(ctx context.Context, restaurantID string) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	s.logger.Info("board_poller_started", "Board poll loop started", "",
		map[string]interface{}{
			"restaurant_id": restaurantID,
			"interval":      s.pollInterval.String(),
		})

	// Orders already on the board when the poller starts are not "new";
	// seed the seen ids before the first tick. A nil slice marks a failed
	// seed so the first good tick seeds instead of chiming the whole board.
	var seen []int64
	if orders, err := s.orders.QueryByStatus(ctx, restaurantID, domain.ActiveStatuses); err != nil {
		s.logger.Error("board_poll_failed", "Initial board snapshot failed", "",
			map[string]interface{}{"restaurant_id": restaurantID}, err)
	} else {
		seen = orderIDs(orders)
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("board_poller_stopped", "Board poll loop stopped", "", nil)
			return
		case <-ticker.C:
			seen = s.tick(ctx, restaurantID, seen)
		}
	}
}

func (s *Service) tick(ctx context.Context, restaurantID string, seen []int64) []int64 {
	orders, err := s.orders.QueryByStatus(ctx, restaurantID, domain.ActiveStatuses)
	if err != nil {
		s.logger.Error("board_poll_failed", "Board poll query failed", "",
			map[string]interface{}{"restaurant_id": restaurantID}, err)
		return seen
	}

	curr := orderIDs(orders)
	if seen == nil {
		return curr
	}

	fresh := NewOrderDiff(seen, curr)
	if len(fresh) > 0 {
		numbers := numbersByID(orders, fresh)
		msg := interfaces.NewOrdersMessage{
			RestaurantID: restaurantID,
			OrderNumbers: numbers,
			Timestamp:    s.now().UTC(),
		}
		if err := s.publisher.PublishNewOrders(ctx, msg); err != nil {
			s.logger.Error("new_orders_publish_failed", "New-orders notification not published", "",
				map[string]interface{}{"order_numbers": numbers}, err)
		} else {
			s.logger.Debug("new_orders_published", "New orders announced to boards", "",
				map[string]interface{}{"order_numbers": numbers})
		}
	}

	return curr
}
