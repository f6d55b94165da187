package board

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
	active []*domain.Order
	err    error
}

func (f *fakeOrderStore) FindByID(context.Context, int64) (*domain.Order, error) {
	return nil, domain.ErrOrderNotFound
}

func (f *fakeOrderStore) FindByNumber(_ context.Context, number string) (*domain.Order, error) {
	for _, o := range f.active {
		if o.Number == number {
			return o, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

func (f *fakeOrderStore) QueryByStatus(context.Context, string, []domain.Status) ([]*domain.Order, error) {
	return f.active, f.err
}

func (f *fakeOrderStore) QueryPlacedBetween(context.Context, string, time.Time, time.Time) ([]*domain.Order, error) {
	return nil, nil
}

func (f *fakeOrderStore) UpdateStatusWithEvent(context.Context, int64, domain.Status, *domain.OrderEvent) error {
	return nil
}

type fakePublisher struct {
	newOrders []interfaces.NewOrdersMessage
	fail      bool
}

func (f *fakePublisher) PublishStatusUpdate(context.Context, interfaces.StatusUpdateMessage) error {
	return nil
}

func (f *fakePublisher) PublishNewOrders(_ context.Context, msg interfaces.NewOrdersMessage) error {
	if f.fail {
		return errors.New("broker down")
	}
	f.newOrders = append(f.newOrders, msg)
	return nil
}

func strPtr(s string) *string { return &s }

func TestActiveOrdersFlagsAndVisibility(t *testing.T) {
	placed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeOrderStore{active: []*domain.Order{
		{ID: 1, Number: "ORD-001", Status: domain.StatusReceived, Fulfillment: domain.FulfillmentDelivery, PlacedAt: placed},
		{ID: 2, Number: "ORD-002", Status: domain.StatusPreparing, Fulfillment: domain.FulfillmentDelivery, PlacedAt: placed, CookID: strPtr("cook-2")},
	}}

	svc := NewService(store, &fakePublisher{}, time.Second, nopLogger{})
	svc.now = func() time.Time { return placed.Add(20 * time.Minute) }

	cook := domain.StaffRef{ID: "cook-1", Role: domain.RoleCook, Active: true}
	entries, err := svc.ActiveOrders(context.Background(), "rest-1", cook, domain.IndividualMode{})
	if err != nil {
		t.Fatalf("ActiveOrders() error = %v", err)
	}

	// Order 2 is bound to another cook and invisible in individual mode.
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	if entries[0].Order.ID != 1 {
		t.Errorf("visible order = %d, want 1", entries[0].Order.ID)
	}
	if len(entries[0].Flags) != 1 || entries[0].Flags[0].Type != "late" {
		t.Errorf("flags = %+v, want the late flag", entries[0].Flags)
	}
}

func TestTrack(t *testing.T) {
	placed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeOrderStore{active: []*domain.Order{
		{ID: 1, Number: "ORD-001", Status: domain.StatusReceived, Fulfillment: domain.FulfillmentDelivery, PlacedAt: placed},
	}}

	svc := NewService(store, &fakePublisher{}, time.Second, nopLogger{})
	svc.now = func() time.Time { return placed.Add(30 * time.Minute) }

	entry, err := svc.Track(context.Background(), "ORD-001")
	if err != nil {
		t.Fatalf("Track() error = %v", err)
	}
	if entry.Order.ID != 1 {
		t.Errorf("order id = %d, want 1", entry.Order.ID)
	}
	if len(entry.Flags) != 1 || entry.Flags[0].Type != "late" {
		t.Errorf("flags = %+v, want the late flag", entry.Flags)
	}

	if _, err := svc.Track(context.Background(), "ORD-404"); err == nil {
		t.Error("expected an error for an unknown order number")
	}
}

func TestTickPublishesOnlyNewOrders(t *testing.T) {
	store := &fakeOrderStore{active: []*domain.Order{
		{ID: 1, Number: "ORD-001", Status: domain.StatusReceived},
		{ID: 2, Number: "ORD-002", Status: domain.StatusReceived},
	}}
	pub := &fakePublisher{}

	svc := NewService(store, pub, time.Second, nopLogger{})
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

	seen := []int64{1}
	seen = svc.tick(context.Background(), "rest-1", seen)

	if len(pub.newOrders) != 1 {
		t.Fatalf("published = %d messages, want 1", len(pub.newOrders))
	}
	msg := pub.newOrders[0]
	if len(msg.OrderNumbers) != 1 || msg.OrderNumbers[0] != "ORD-002" {
		t.Errorf("order numbers = %v, want [ORD-002]", msg.OrderNumbers)
	}

	// Next tick with the same board: nothing new.
	svc.tick(context.Background(), "rest-1", seen)
	if len(pub.newOrders) != 1 {
		t.Errorf("published = %d messages after quiet tick, want still 1", len(pub.newOrders))
	}
}

func TestTickKeepsSeenOnQueryFailure(t *testing.T) {
	store := &fakeOrderStore{err: errors.New("db down")}
	svc := NewService(store, &fakePublisher{}, time.Second, nopLogger{})

	seen := []int64{1, 2}
	got := svc.tick(context.Background(), "rest-1", seen)
	if len(got) != 2 {
		t.Errorf("seen after failed tick = %v, want unchanged", got)
	}
}

func TestTickSeedsAfterFailedSnapshot(t *testing.T) {
	store := &fakeOrderStore{active: []*domain.Order{
		{ID: 1, Number: "ORD-001", Status: domain.StatusReceived},
	}}
	pub := &fakePublisher{}
	svc := NewService(store, pub, time.Second, nopLogger{})

	// A nil seen slice marks a failed startup snapshot; the first good tick
	// must seed silently instead of announcing the whole board.
	got := svc.tick(context.Background(), "rest-1", nil)
	if len(pub.newOrders) != 0 {
		t.Errorf("published = %d messages on seed tick, want 0", len(pub.newOrders))
	}
	if len(got) != 1 {
		t.Errorf("seen = %v, want the current board", got)
	}
}
