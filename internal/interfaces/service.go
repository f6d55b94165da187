package interfaces

import (
	"context"
	"time"

	"brigade/internal/domain"

	"github.com/shopspring/decimal"
)

// TransitionCommand is everything a status change needs. AssigneeID is only
// honored in supervisor mode; Reason only for cancellations and failures.
type TransitionCommand struct {
	OrderID    int64
	Target     domain.Status
	Actor      domain.StaffRef
	Mode       domain.RoleMode
	Reason     string
	AssigneeID string
}

type TransitionService interface {
	Transition(ctx context.Context, cmd TransitionCommand) (*domain.Order, error)
}

// PriorityFlag is a transient UI marker derived from order age and schedule.
// Never persisted, recomputed on every poll.
type PriorityFlag struct {
	Type  string `json:"type"`
	Label string `json:"label"`
}

// BoardEntry is one row of a live board: the order plus its current flags.
type BoardEntry struct {
	Order *domain.Order
	Flags []PriorityFlag
}

type BoardService interface {
	ActiveOrders(ctx context.Context, restaurantID string, actor domain.StaffRef, mode domain.RoleMode) ([]BoardEntry, error)

	// Track resolves one order by its public number for the tracking view.
	Track(ctx context.Context, number string) (*BoardEntry, error)
}

// HistoryEntry is the latest terminal event of one order, as shown on a
// history board. At most one entry per order id.
type HistoryEntry struct {
	OrderID   int64
	Status    domain.Status
	Payload   domain.EventPayload
	Timestamp time.Time
}

// HistoryView selects which terminal set a board projects with.
type HistoryView string

const (
	HistoryViewKitchen  HistoryView = "kitchen"
	HistoryViewDelivery HistoryView = "delivery"
)

type HistoryService interface {
	Board(ctx context.Context, restaurantID string, view HistoryView, actor domain.StaffRef, mode domain.RoleMode) ([]HistoryEntry, error)
	Trail(ctx context.Context, orderID int64) ([]*domain.OrderEvent, error)
}

// DateRange is a resolved local-calendar window: [From, To) as UTC instants
// derived from local midnights.
type DateRange struct {
	From time.Time
	To   time.Time
}

// AnalyticsReport is the full windowed statistics payload.
type AnalyticsReport struct {
	Revenue         Revenue             `json:"revenue"`
	OrdersByDay     []DateBucket        `json:"orders_by_day"`
	OrdersByWeek    []DateBucket        `json:"orders_by_week"`
	TopItems        []ItemStat          `json:"top_items"`
	CancelledFailed CancellationStats   `json:"cancelled_failed"`
	DriverStats     []DriverPerformance `json:"driver_performance"`
	HourlyStats     []HourBucket        `json:"hourly_stats"`
	TotalOrders     int                 `json:"total_orders"`
}

type Revenue struct {
	Total        decimal.Decimal `json:"total"`
	Pickup       decimal.Decimal `json:"pickup"`
	Delivery     decimal.Decimal `json:"delivery"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	DeliveryFees decimal.Decimal `json:"delivery_fees"`
	Tips         decimal.Decimal `json:"tips"`
	Taxes        decimal.Decimal `json:"taxes"`
}

// DateBucket keys a day bucket by the local date and a week bucket by the
// Monday starting the ISO week.
type DateBucket struct {
	Date    string          `json:"date"`
	Count   int             `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
}

type HourBucket struct {
	Hour    int             `json:"hour"`
	Count   int             `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
}

type ItemStat struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type CancellationStats struct {
	Cancelled        int     `json:"cancelled"`
	Failed           int     `json:"failed"`
	CancellationRate float64 `json:"cancellation_rate"`
}

type DriverPerformance struct {
	DriverID        string          `json:"driver_id"`
	DriverName      string          `json:"driver_name"`
	OrdersCompleted int             `json:"orders_completed"`
	TotalTips       decimal.Decimal `json:"total_tips"`
	AverageTip      decimal.Decimal `json:"average_tip"`
}

type AnalyticsService interface {
	Report(ctx context.Context, restaurantID string, window DateRange) (*AnalyticsReport, error)
}
