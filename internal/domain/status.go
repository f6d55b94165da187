package domain

type Fulfillment string

const (
	FulfillmentDelivery Fulfillment = "delivery"
	FulfillmentPickup   Fulfillment = "pickup"
)

type Status string

const (
	StatusReceived  Status = "received"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusAssigned  Status = "assigned"
	StatusEnroute   Status = "enroute"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusFailed    Status = "failed"
)

// forwardTransitions holds the single forward path per fulfillment type.
// Cancellation and failure edges live in AllowedNext because they apply to
// ranges of states rather than single edges.
var forwardTransitions = map[Fulfillment]map[Status]Status{
	FulfillmentDelivery: {
		StatusReceived:  StatusPreparing,
		StatusPreparing: StatusReady,
		StatusReady:     StatusAssigned,
		StatusAssigned:  StatusEnroute,
		StatusEnroute:   StatusCompleted,
	},
	FulfillmentPickup: {
		StatusReceived:  StatusPreparing,
		StatusPreparing: StatusReady,
		StatusReady:     StatusCompleted,
	},
}

// IsTerminal reports whether no further transition may leave the status.
func IsTerminal(s Status) bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusFailed
}

// AllowedNext returns every status an order with the given fulfillment type
// may legally move to from the given status.
func AllowedNext(f Fulfillment, from Status) []Status {
	if IsTerminal(from) {
		return nil
	}

	var next []Status
	if to, ok := forwardTransitions[f][from]; ok {
		next = append(next, to)
	}
	next = append(next, StatusCancelled)
	if f == FulfillmentDelivery && from == StatusEnroute {
		next = append(next, StatusFailed)
	}
	return next
}

// CanTransition reports whether from -> to is a legal edge for the
// fulfillment type.
func CanTransition(f Fulfillment, from, to Status) bool {
	for _, s := range AllowedNext(f, from) {
		if s == to {
			return true
		}
	}
	return false
}

// RequiresReason reports whether the target status needs an explanation
// supplied by the actor.
func RequiresReason(to Status) bool {
	return to == StatusCancelled || to == StatusFailed
}

// Terminal sets used by the history boards. The kitchen board treats "ready"
// as the end of its part of the lifecycle; delivery and manager boards care
// about the order's final fate.
var (
	KitchenTerminalSet = map[Status]bool{
		StatusReady:     true,
		StatusCancelled: true,
	}
	DeliveryTerminalSet = map[Status]bool{
		StatusCompleted: true,
		StatusCancelled: true,
		StatusFailed:    true,
	}
)

// ActiveStatuses is the polling set for live boards, ordered by lifecycle.
var ActiveStatuses = []Status{
	StatusReceived, StatusPreparing, StatusReady, StatusAssigned, StatusEnroute,
}
