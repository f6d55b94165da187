package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order represents a restaurant order entity. Orders are created by the
// storefront at placement time; this service only ever mutates the status
// column and the fields a transition carries with it (assignee, reason).
// Once an order reaches a terminal status it is immutable.
type Order struct {
	ID                 int64
	Number             string
	RestaurantID       string
	Fulfillment        Fulfillment
	Status             Status
	PlacedAt           time.Time
	ScheduledAt        *time.Time
	CookID             *string
	DriverID           *string
	PaymentMethod      *string
	TipAmount          decimal.Decimal
	Subtotal           decimal.Decimal
	DeliveryFee        decimal.Decimal
	Taxes              decimal.Decimal
	Total              decimal.Decimal
	CancellationReason *string
	FailureReason      *string
	Items              []OrderItem

	// LocalPlacedAt carries the placement time resolved into the
	// restaurant's calendar. Timestamps are stored in UTC; the resolver
	// fills this in so nothing downstream touches the host's zone.
	LocalPlacedAt LocalTime
}

// OrderItem is a line on an order. Set at placement, read-only here.
type OrderItem struct {
	ID         int64
	OrderID    int64
	MenuItemID *string
	Name       string
	Quantity   int
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
	Modifiers  []string
}

// ItemKey identifies a menu item across orders, falling back to the display
// name for items that predate menu ids.
func (i OrderItem) ItemKey() string {
	if i.MenuItemID != nil && *i.MenuItemID != "" {
		return *i.MenuItemID
	}
	return i.Name
}

// LocalTime is a timestamp broken into the restaurant's local calendar
// components. Resolution happens at the edge; see interfaces.LocalTimeResolver.
type LocalTime struct {
	Year  int
	Month time.Month
	Day   int
	Hour  int
}

// Date returns the local calendar day as a midnight UTC time, used purely as
// a sortable bucket key.
func (lt LocalTime) Date() time.Time {
	return time.Date(lt.Year, lt.Month, lt.Day, 0, 0, 0, 0, time.UTC)
}

// ISOWeekStart returns the Monday of the ISO week containing the local day,
// as a midnight UTC bucket key.
func (lt LocalTime) ISOWeekStart() time.Time {
	d := lt.Date()
	offset := (int(d.Weekday()) + 6) % 7 // Monday=0 ... Sunday=6
	return d.AddDate(0, 0, -offset)
}

type Role string

const (
	RoleCook    Role = "cook"
	RoleDriver  Role = "driver"
	RoleManager Role = "manager"
)

// StaffRef identifies a staff member for assignment and visibility checks.
// The staff directory is external; only the fields needed here are carried.
type StaffRef struct {
	ID     string
	Name   string
	Role   Role
	Active bool
}

// BoundStaffID returns the id of the staff member an order is bound to for
// the given role, or nil when unclaimed.
func (o *Order) BoundStaffID(role Role) *string {
	switch role {
	case RoleCook:
		return o.CookID
	case RoleDriver:
		return o.DriverID
	default:
		return nil
	}
}

// IsBoundTo reports whether the order is claimed by the given actor in the
// actor's own role.
func (o *Order) IsBoundTo(actor StaffRef) bool {
	id := o.BoundStaffID(actor.Role)
	return id != nil && *id == actor.ID
}
