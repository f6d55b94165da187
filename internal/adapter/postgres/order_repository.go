package postgres

import (
	"context"
	"fmt"
	"time"

	"brigade/internal/domain"
	"brigade/internal/interfaces"

	"github.com/shopspring/decimal"
)

type orderRepository struct {
	db DB
}

func NewOrderRepository(db DB) interfaces.OrderStore {
	return &orderRepository{db: db}
}

// Money columns are selected with ::text so numeric values reach Go as exact
// strings and never pass through a float.
const orderColumns = `
	id, number, restaurant_id, fulfillment, status, placed_at, scheduled_at,
	cook_id, driver_id, payment_method,
	tip_amount::text, subtotal::text, delivery_fee::text, taxes::text, total::text,
	cancellation_reason, failure_reason
`

func (r *orderRepository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	order, err := scanOrder(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, domain.ErrOrderNotFound
	}
	if err := r.loadItems(ctx, []*domain.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) FindByNumber(ctx context.Context, number string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE number = $1`
	order, err := scanOrder(r.db.QueryRow(ctx, query, number))
	if err != nil {
		return nil, domain.ErrOrderNotFound
	}
	if err := r.loadItems(ctx, []*domain.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) QueryByStatus(ctx context.Context, restaurantID string, statuses []domain.Status) ([]*domain.Order, error) {
	set := make([]string, len(statuses))
	for i, s := range statuses {
		set[i] = string(s)
	}

	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE restaurant_id = $1 AND status = ANY($2)
		ORDER BY placed_at ASC
	`
	rows, err := r.db.Query(ctx, query, restaurantID, set)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders by status: %w", err)
	}
	defer rows.Close()

	orders, err := scanOrders(rows)
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) QueryPlacedBetween(ctx context.Context, restaurantID string, from, to time.Time) ([]*domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE restaurant_id = $1 AND placed_at >= $2 AND placed_at < $3
		ORDER BY placed_at ASC
	`
	rows, err := r.db.Query(ctx, query, restaurantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders by window: %w", err)
	}
	defer rows.Close()

	orders, err := scanOrders(rows)
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateStatusWithEvent is the transition write path: the conditional status
// update and the event append commit together or not at all.
func (r *orderRepository) UpdateStatusWithEvent(ctx context.Context, orderID int64, expected domain.Status, event *domain.OrderEvent) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var reason, cookID, driverID *string
	switch p := event.Payload.(type) {
	case domain.PreparingPayload:
		cookID = &p.CookID
	case domain.AssignedPayload:
		driverID = &p.DriverID
	case domain.CancelledPayload:
		reason = &p.Reason
	case domain.FailedPayload:
		reason = &p.Reason
	}

	var failureReason *string
	cancellationReason := reason
	if event.Payload.Status() == domain.StatusFailed {
		failureReason = reason
		cancellationReason = nil
	}

	update := `
		UPDATE orders
		SET status = $1,
		    cook_id = COALESCE($2, cook_id),
		    driver_id = COALESCE($3, driver_id),
		    cancellation_reason = COALESCE($4, cancellation_reason),
		    failure_reason = COALESCE($5, failure_reason),
		    updated_at = $6
		WHERE id = $7 AND status = $8
	`
	tag, err := tx.Exec(ctx, update,
		string(event.Payload.Status()), cookID, driverID,
		cancellationReason, failureReason, event.CreatedAt,
		orderID, string(expected),
	)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// The caller read a status that is no longer current.
		return domain.ErrConflict
	}

	if err := insertEvent(ctx, tx, event); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *orderRepository) loadItems(ctx context.Context, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]int64, len(orders))
	byID := make(map[int64]*domain.Order, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		byID[o.ID] = o
	}

	query := `
		SELECT id, order_id, menu_item_id, name, quantity,
		       unit_price::text, total_price::text, modifiers
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY id
	`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("failed to load order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		var unitPrice, totalPrice string
		if err := rows.Scan(&item.ID, &item.OrderID, &item.MenuItemID, &item.Name,
			&item.Quantity, &unitPrice, &totalPrice, &item.Modifiers); err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		if item.UnitPrice, err = decimal.NewFromString(unitPrice); err != nil {
			return fmt.Errorf("bad unit price for item %d: %w", item.ID, err)
		}
		if item.TotalPrice, err = decimal.NewFromString(totalPrice); err != nil {
			return fmt.Errorf("bad total price for item %d: %w", item.ID, err)
		}
		if owner, ok := byID[item.OrderID]; ok {
			owner.Items = append(owner.Items, item)
		}
	}
	return nil
}

func scanOrders(rows Rows) ([]*domain.Order, error) {
	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func scanOrder(row Row) (*domain.Order, error) {
	var order domain.Order
	var tip, subtotal, fee, taxes, total string

	err := row.Scan(
		&order.ID, &order.Number, &order.RestaurantID, &order.Fulfillment,
		&order.Status, &order.PlacedAt, &order.ScheduledAt,
		&order.CookID, &order.DriverID, &order.PaymentMethod,
		&tip, &subtotal, &fee, &taxes, &total,
		&order.CancellationReason, &order.FailureReason,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}

	fields := []struct {
		dst *decimal.Decimal
		src string
	}{
		{&order.TipAmount, tip},
		{&order.Subtotal, subtotal},
		{&order.DeliveryFee, fee},
		{&order.Taxes, taxes},
		{&order.Total, total},
	}
	for _, f := range fields {
		d, err := decimal.NewFromString(f.src)
		if err != nil {
			return nil, fmt.Errorf("bad money value for order %d: %w", order.ID, err)
		}
		*f.dst = d
	}

	return &order, nil
}
