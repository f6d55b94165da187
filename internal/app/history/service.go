package history

import (
	"context"
	"fmt"

	"brigade/internal/adapter/logger"
	"brigade/internal/domain"
	"brigade/internal/interfaces"
)

// eventFetchLimit bounds how far back a history board reads. Boards show
// recent terminal orders; deep audit queries go through Trail instead.
const eventFetchLimit = 2000

type Service struct {
	events interfaces.EventLog
	orders interfaces.OrderStore
	logger logger.Logger
}

func NewService(events interfaces.EventLog, orders interfaces.OrderStore, lgr logger.Logger) *Service {
	return &Service{events: events, orders: orders, logger: lgr}
}

// Board projects the restaurant's event log with the view's terminal set and
// filters the result by the actor's role mode.
func (s *Service) Board(ctx context.Context, restaurantID string, view interfaces.HistoryView, actor domain.StaffRef, mode domain.RoleMode) ([]interfaces.HistoryEntry, error) {
	terminalSet, err := terminalSetFor(view)
	if err != nil {
		return nil, err
	}

	events, err := s.events.QueryStatusChanged(ctx, restaurantID, eventFetchLimit)
	if err != nil {
		return nil, err
	}

	entries := Project(events, terminalSet)
	if len(entries) == 0 {
		return entries, nil
	}

	// Only individual mode narrows visibility, and it needs the order
	// records: a terminal event does not say who the order ended up bound to.
	if _, individual := mode.(domain.IndividualMode); !individual {
		return entries, nil
	}

	visible := make([]interfaces.HistoryEntry, 0, len(entries))
	for _, entry := range entries {
		order, err := s.orders.FindByID(ctx, entry.OrderID)
		if err != nil {
			// The log outlives order retention; skip entries whose order is
			// no longer readable rather than failing the whole board.
			s.logger.Debug("history_order_missing", "Order behind history entry not found", "",
				map[string]interface{}{"order_id": entry.OrderID})
			continue
		}
		if len(mode.VisibleOrders(actor, []*domain.Order{order})) > 0 {
			visible = append(visible, entry)
		}
	}
	return visible, nil
}

// Trail returns the full event trail for one order, oldest first.
func (s *Service) Trail(ctx context.Context, orderID int64) ([]*domain.OrderEvent, error) {
	return s.events.ListByOrder(ctx, orderID)
}

func terminalSetFor(view interfaces.HistoryView) (map[domain.Status]bool, error) {
	switch view {
	case interfaces.HistoryViewKitchen:
		return domain.KitchenTerminalSet, nil
	case interfaces.HistoryViewDelivery:
		return domain.DeliveryTerminalSet, nil
	default:
		return nil, fmt.Errorf("unknown history view %q", view)
	}
}
