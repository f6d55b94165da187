package transition

import (
	"context"
	"errors"
	"testing"
	"time"

	"brigade/internal/domain"
	"brigade/internal/interfaces"
)

type nopLogger struct{}

func (nopLogger) Info(string, string, string, map[string]interface{})         {}
func (nopLogger) Debug(string, string, string, map[string]interface{})        {}
func (nopLogger) Error(string, string, string, map[string]interface{}, error) {}

type fakeOrderStore struct {
	orders map[int64]*domain.Order
	events []*domain.OrderEvent

	// conflict makes the next conditional write fail as if another writer
	// got there first.
	conflict bool
}

func (f *fakeOrderStore) FindByID(_ context.Context, id int64) (*domain.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrderStore) FindByNumber(context.Context, string) (*domain.Order, error) {
	return nil, domain.ErrOrderNotFound
}

func (f *fakeOrderStore) QueryByStatus(context.Context, string, []domain.Status) ([]*domain.Order, error) {
	return nil, nil
}

func (f *fakeOrderStore) QueryPlacedBetween(context.Context, string, time.Time, time.Time) ([]*domain.Order, error) {
	return nil, nil
}

func (f *fakeOrderStore) UpdateStatusWithEvent(_ context.Context, orderID int64, expected domain.Status, event *domain.OrderEvent) error {
	o, ok := f.orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if f.conflict || o.Status != expected {
		return domain.ErrConflict
	}
	o.Status = event.Payload.Status()
	event.ID = int64(len(f.events) + 1)
	f.events = append(f.events, event)
	return nil
}

type fakeStaffDirectory struct {
	active []*domain.StaffRef
}

func (f *fakeStaffDirectory) ActiveByRole(_ context.Context, _ string, role domain.Role) ([]*domain.StaffRef, error) {
	var out []*domain.StaffRef
	for _, s := range f.active {
		if s.Role == role && s.Active {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStaffDirectory) FindByID(_ context.Context, id string) (*domain.StaffRef, error) {
	for _, s := range f.active {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, domain.ErrStaffNotFound
}

func (f *fakeStaffDirectory) Heartbeat(context.Context, string) error { return nil }

type fakePublisher struct {
	published []interfaces.StatusUpdateMessage
	fail      bool
}

func (f *fakePublisher) PublishStatusUpdate(_ context.Context, msg interfaces.StatusUpdateMessage) error {
	if f.fail {
		return errors.New("broker down")
	}
	f.published = append(f.published, msg)
	return nil
}

func (f *fakePublisher) PublishNewOrders(context.Context, interfaces.NewOrdersMessage) error {
	return nil
}

func strPtr(s string) *string { return &s }

func newTestService(store *fakeOrderStore, staff *fakeStaffDirectory, pub *fakePublisher) *Service {
	svc := NewService(store, staff, pub, nopLogger{})
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func deliveryOrder(id int64, status domain.Status) *domain.Order {
	return &domain.Order{
		ID:           id,
		Number:       "ORD-001",
		RestaurantID: "rest-1",
		Fulfillment:  domain.FulfillmentDelivery,
		Status:       status,
	}
}

func TestTransitionSelfClaim(t *testing.T) {
	store := &fakeOrderStore{orders: map[int64]*domain.Order{
		1: deliveryOrder(1, domain.StatusReceived),
	}}
	pub := &fakePublisher{}
	svc := newTestService(store, &fakeStaffDirectory{}, pub)

	cook := domain.StaffRef{ID: "cook-1", Role: domain.RoleCook, Active: true}
	order, err := svc.Transition(context.Background(), interfaces.TransitionCommand{
		OrderID: 1,
		Target:  domain.StatusPreparing,
		Actor:   cook,
		Mode:    domain.IndividualMode{},
	})
	if err != nil {
		t.Fatalf("Transition() error = %v", err)
	}

	if order.Status != domain.StatusPreparing {
		t.Errorf("status = %s, want preparing", order.Status)
	}
	if order.CookID == nil || *order.CookID != "cook-1" {
		t.Errorf("cook id = %v, want cook-1", order.CookID)
	}
	if len(store.events) != 1 {
		t.Fatalf("events appended = %d, want 1", len(store.events))
	}
	if p, ok := store.events[0].Payload.(domain.PreparingPayload); !ok || p.CookID != "cook-1" {
		t.Errorf("payload = %#v, want PreparingPayload{cook-1}", store.events[0].Payload)
	}
	if len(pub.published) != 1 {
		t.Fatalf("published = %d messages, want 1", len(pub.published))
	}
	if msg := pub.published[0]; msg.OldStatus != domain.StatusReceived || msg.NewStatus != domain.StatusPreparing {
		t.Errorf("message statuses = %s -> %s", msg.OldStatus, msg.NewStatus)
	}
}

func TestTransitionInvalidEdge(t *testing.T) {
	store := &fakeOrderStore{orders: map[int64]*domain.Order{
		1: deliveryOrder(1, domain.StatusReceived),
	}}
	svc := newTestService(store, &fakeStaffDirectory{}, &fakePublisher{})

	_, err := svc.Transition(context.Background(), interfaces.TransitionCommand{
		OrderID: 1,
		Target:  domain.StatusReady,
		Actor:   domain.StaffRef{ID: "cook-1", Role: domain.RoleCook},
		Mode:    domain.TeamMode{},
	})
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("error = %v, want ErrInvalidTransition", err)
	}
	if len(store.events) != 0 {
		t.Error("no event may be appended for a rejected transition")
	}
}

func TestTransitionCancelNeedsReason(t *testing.T) {
	store := &fakeOrderStore{orders: map[int64]*domain.Order{
		1: deliveryOrder(1, domain.StatusPreparing),
	}}
	svc := newTestService(store, &fakeStaffDirectory{}, &fakePublisher{})

	manager := domain.StaffRef{ID: "mgr-1", Role: domain.RoleManager, Active: true}
	_, err := svc.Transition(context.Background(), interfaces.TransitionCommand{
		OrderID: 1,
		Target:  domain.StatusCancelled,
		Actor:   manager,
		Mode:    domain.TeamMode{},
	})
	if !errors.Is(err, domain.ErrMissingReason) {
		t.Errorf("error = %v, want ErrMissingReason", err)
	}

	order, err := svc.Transition(context.Background(), interfaces.TransitionCommand{
		OrderID: 1,
		Target:  domain.StatusCancelled,
		Actor:   manager,
		Mode:    domain.TeamMode{},
		Reason:  "customer called",
	})
	if err != nil {
		t.Fatalf("Transition() error = %v", err)
	}
	if order.CancellationReason == nil || *order.CancellationReason != "customer called" {
		t.Errorf("cancellation reason = %v", order.CancellationReason)
	}
}

func TestTransitionConflict(t *testing.T) {
	store := &fakeOrderStore{
		orders:   map[int64]*domain.Order{1: deliveryOrder(1, domain.StatusReceived)},
		conflict: true,
	}
	svc := newTestService(store, &fakeStaffDirectory{}, &fakePublisher{})

	cook := domain.StaffRef{ID: "cook-1", Role: domain.RoleCook, Active: true}
	_, err := svc.Transition(context.Background(), interfaces.TransitionCommand{
		OrderID: 1,
		Target:  domain.StatusPreparing,
		Actor:   cook,
		Mode:    domain.TeamMode{},
	})
	if !errors.Is(err, domain.ErrConflict) {
		t.Errorf("error = %v, want ErrConflict", err)
	}
	if len(store.events) != 0 {
		t.Error("no event may be appended on conflict")
	}
}

func TestTransitionIndividualModeBinding(t *testing.T) {
	store := &fakeOrderStore{orders: map[int64]*domain.Order{
		1: func() *domain.Order {
			o := deliveryOrder(1, domain.StatusPreparing)
			o.CookID = strPtr("cook-1")
			return o
		}(),
	}}
	svc := newTestService(store, &fakeStaffDirectory{}, &fakePublisher{})

	intruder := domain.StaffRef{ID: "cook-2", Role: domain.RoleCook, Active: true}
	_, err := svc.Transition(context.Background(), interfaces.TransitionCommand{
		OrderID: 1,
		Target:  domain.StatusReady,
		Actor:   intruder,
		Mode:    domain.IndividualMode{},
	})
	if !errors.Is(err, domain.ErrNotPermitted) {
		t.Errorf("error = %v, want ErrNotPermitted", err)
	}

	owner := domain.StaffRef{ID: "cook-1", Role: domain.RoleCook, Active: true}
	if _, err := svc.Transition(context.Background(), interfaces.TransitionCommand{
		OrderID: 1,
		Target:  domain.StatusReady,
		Actor:   owner,
		Mode:    domain.IndividualMode{},
	}); err != nil {
		t.Errorf("owner transition error = %v", err)
	}
}

func TestTransitionSupervisorReassign(t *testing.T) {
	staff := &fakeStaffDirectory{active: []*domain.StaffRef{
		{ID: "drv-2", Name: "Numa", Role: domain.RoleDriver, Active: true},
	}}
	store := &fakeOrderStore{orders: map[int64]*domain.Order{
		1: deliveryOrder(1, domain.StatusReady),
	}}
	svc := newTestService(store, staff, &fakePublisher{})

	coordinator := domain.StaffRef{ID: "drv-1", Role: domain.RoleDriver, Active: true}

	_, err := svc.Transition(context.Background(), interfaces.TransitionCommand{
		OrderID:    1,
		Target:     domain.StatusAssigned,
		Actor:      coordinator,
		Mode:       domain.SupervisorMode{},
		AssigneeID: "drv-unknown",
	})
	if !errors.Is(err, domain.ErrUnknownAssignee) {
		t.Errorf("error = %v, want ErrUnknownAssignee", err)
	}

	order, err := svc.Transition(context.Background(), interfaces.TransitionCommand{
		OrderID:    1,
		Target:     domain.StatusAssigned,
		Actor:      coordinator,
		Mode:       domain.SupervisorMode{},
		AssigneeID: "drv-2",
	})
	if err != nil {
		t.Fatalf("Transition() error = %v", err)
	}
	if order.DriverID == nil || *order.DriverID != "drv-2" {
		t.Errorf("driver id = %v, want drv-2", order.DriverID)
	}
}

func TestTransitionTeamModeCannotReassign(t *testing.T) {
	store := &fakeOrderStore{orders: map[int64]*domain.Order{
		1: deliveryOrder(1, domain.StatusReady),
	}}
	svc := newTestService(store, &fakeStaffDirectory{}, &fakePublisher{})

	driver := domain.StaffRef{ID: "drv-1", Role: domain.RoleDriver, Active: true}
	_, err := svc.Transition(context.Background(), interfaces.TransitionCommand{
		OrderID:    1,
		Target:     domain.StatusAssigned,
		Actor:      driver,
		Mode:       domain.TeamMode{},
		AssigneeID: "drv-2",
	})
	if !errors.Is(err, domain.ErrNotPermitted) {
		t.Errorf("error = %v, want ErrNotPermitted", err)
	}
}

func TestTransitionRejectsInactiveActor(t *testing.T) {
	store := &fakeOrderStore{orders: map[int64]*domain.Order{
		1: deliveryOrder(1, domain.StatusReceived),
	}}
	svc := newTestService(store, &fakeStaffDirectory{}, &fakePublisher{})

	// Deactivated but still holding a valid session.
	former := domain.StaffRef{ID: "cook-9", Role: domain.RoleCook, Active: false}

	for _, mode := range []domain.RoleMode{domain.TeamMode{}, domain.IndividualMode{}} {
		_, err := svc.Transition(context.Background(), interfaces.TransitionCommand{
			OrderID: 1,
			Target:  domain.StatusPreparing,
			Actor:   former,
			Mode:    mode,
		})
		if !errors.Is(err, domain.ErrNotPermitted) {
			t.Errorf("%s mode: error = %v, want ErrNotPermitted", mode.Name(), err)
		}
	}
	if len(store.events) != 0 {
		t.Error("no event may be appended for an inactive actor")
	}
}

func TestTransitionRoleScoping(t *testing.T) {
	store := &fakeOrderStore{orders: map[int64]*domain.Order{
		1: deliveryOrder(1, domain.StatusReceived),
	}}
	svc := newTestService(store, &fakeStaffDirectory{}, &fakePublisher{})

	driver := domain.StaffRef{ID: "drv-1", Role: domain.RoleDriver, Active: true}
	_, err := svc.Transition(context.Background(), interfaces.TransitionCommand{
		OrderID: 1,
		Target:  domain.StatusPreparing,
		Actor:   driver,
		Mode:    domain.TeamMode{},
	})
	if !errors.Is(err, domain.ErrNotPermitted) {
		t.Errorf("error = %v, want ErrNotPermitted", err)
	}
}

func TestTransitionSurvivesPublishFailure(t *testing.T) {
	store := &fakeOrderStore{orders: map[int64]*domain.Order{
		1: deliveryOrder(1, domain.StatusReceived),
	}}
	pub := &fakePublisher{fail: true}
	svc := newTestService(store, &fakeStaffDirectory{}, pub)

	cook := domain.StaffRef{ID: "cook-1", Role: domain.RoleCook, Active: true}
	order, err := svc.Transition(context.Background(), interfaces.TransitionCommand{
		OrderID: 1,
		Target:  domain.StatusPreparing,
		Actor:   cook,
		Mode:    domain.TeamMode{},
	})
	if err != nil {
		t.Fatalf("Transition() error = %v, broker failure must not fail the change", err)
	}
	if order.Status != domain.StatusPreparing {
		t.Errorf("status = %s, want preparing", order.Status)
	}
	if len(store.events) != 1 {
		t.Errorf("events appended = %d, want 1", len(store.events))
	}
}
