package domain

// RoleMode is the per-session capability set of a staff member: which orders
// they see and whether they may hand orders to someone else. Modes are named
// variants rather than string-keyed branches so a new capability has one
// obvious home.
type RoleMode interface {
	Name() string
	VisibleOrders(actor StaffRef, orders []*Order) []*Order
	CanReassign(actor StaffRef) bool
}

// TeamMode: every active staff member of the role sees and works the whole
// board.
type TeamMode struct{}

func (TeamMode) Name() string { return "team" }

func (TeamMode) VisibleOrders(_ StaffRef, orders []*Order) []*Order { return orders }

func (TeamMode) CanReassign(StaffRef) bool { return false }

// IndividualMode: the actor sees orders bound to them, plus unclaimed orders
// sitting in the status their role claims from (a cook must see incoming
// orders, a driver must see ready ones).
type IndividualMode struct{}

func (IndividualMode) Name() string { return "individual" }

func (IndividualMode) VisibleOrders(actor StaffRef, orders []*Order) []*Order {
	visible := make([]*Order, 0, len(orders))
	for _, o := range orders {
		if o.IsBoundTo(actor) || claimable(actor, o) {
			visible = append(visible, o)
		}
	}
	return visible
}

func (IndividualMode) CanReassign(StaffRef) bool { return false }

// SupervisorMode: chef (kitchen) or coordinator (delivery). Sees everything
// and may assign orders to other staff of the matching role.
type SupervisorMode struct{}

func (SupervisorMode) Name() string { return "supervisor" }

func (SupervisorMode) VisibleOrders(_ StaffRef, orders []*Order) []*Order { return orders }

func (SupervisorMode) CanReassign(actor StaffRef) bool { return actor.Active }

// ClaimStatus returns the status a role self-claims orders from.
func ClaimStatus(role Role) (Status, bool) {
	switch role {
	case RoleCook:
		return StatusReceived, true
	case RoleDriver:
		return StatusReady, true
	default:
		return "", false
	}
}

func claimable(actor StaffRef, o *Order) bool {
	from, ok := ClaimStatus(actor.Role)
	if !ok {
		return false
	}
	return o.Status == from && o.BoundStaffID(actor.Role) == nil
}

// ModeByName maps a stored session value back to its variant; unknown values
// fall back to team mode.
func ModeByName(name string) RoleMode {
	switch name {
	case "individual":
		return IndividualMode{}
	case "supervisor", "chef", "coordinator":
		return SupervisorMode{}
	default:
		return TeamMode{}
	}
}
