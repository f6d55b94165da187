package board

import (
	"testing"
	"time"

	"brigade/internal/domain"
)

func placedNoon() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func TestFlagsLateDelivery(t *testing.T) {
	o := &domain.Order{
		Fulfillment: domain.FulfillmentDelivery,
		Status:      domain.StatusReceived,
		PlacedAt:    placedNoon(),
	}

	// Fourteen minutes in: under the 15 minute threshold, nothing yet.
	if flags := Flags(o, placedNoon().Add(14*time.Minute)); len(flags) != 0 {
		t.Errorf("at 12:14 flags = %+v, want none", flags)
	}

	// Exactly on the threshold still counts as on time.
	if flags := Flags(o, placedNoon().Add(15*time.Minute)); len(flags) != 0 {
		t.Errorf("at 12:15 flags = %+v, want none", flags)
	}

	flags := Flags(o, placedNoon().Add(16*time.Minute))
	if len(flags) != 1 {
		t.Fatalf("at 12:16 flags = %+v, want one", flags)
	}
	if flags[0].Type != "late" || flags[0].Label != "Retard" {
		t.Errorf("flag = %+v, want {late Retard}", flags[0])
	}
}

func TestFlagsLatePickupThreshold(t *testing.T) {
	o := &domain.Order{
		Fulfillment: domain.FulfillmentPickup,
		Status:      domain.StatusPreparing,
		PlacedAt:    placedNoon(),
	}

	if flags := Flags(o, placedNoon().Add(10*time.Minute)); len(flags) != 0 {
		t.Errorf("at 10 minutes flags = %+v, want none", flags)
	}
	if flags := Flags(o, placedNoon().Add(11*time.Minute)); len(flags) != 1 {
		t.Errorf("at 11 minutes flags = %+v, want late", flags)
	}
}

func TestFlagsLateOnlyWhileWaitingOnKitchen(t *testing.T) {
	late := placedNoon().Add(time.Hour)
	for _, status := range []domain.Status{
		domain.StatusReady, domain.StatusAssigned, domain.StatusEnroute,
		domain.StatusCompleted, domain.StatusCancelled, domain.StatusFailed,
	} {
		o := &domain.Order{
			Fulfillment: domain.FulfillmentDelivery,
			Status:      status,
			PlacedAt:    placedNoon(),
		}
		if flags := Flags(o, late); len(flags) != 0 {
			t.Errorf("status %s: flags = %+v, want none", status, flags)
		}
	}
}

func TestFlagsSoon(t *testing.T) {
	scheduled := placedNoon().Add(3 * time.Hour)
	o := &domain.Order{
		Fulfillment: domain.FulfillmentPickup,
		Status:      domain.StatusPreparing,
		PlacedAt:    placedNoon(),
		ScheduledAt: &scheduled,
	}

	// Two hours out: too far.
	if flags := Flags(o, scheduled.Add(-2*time.Hour)); len(flags) != 0 {
		t.Errorf("2h before schedule: flags = %+v, want none", flags)
	}

	flags := Flags(o, scheduled.Add(-10*time.Minute))
	if len(flags) != 1 || flags[0].Type != "soon" || flags[0].Label != "Bientôt" {
		t.Errorf("10m before schedule: flags = %+v, want {soon Bientôt}", flags)
	}

	// Already past the scheduled time: not "soon" anymore.
	if flags := Flags(o, scheduled.Add(time.Minute)); len(flags) != 0 {
		t.Errorf("after schedule: flags = %+v, want none", flags)
	}
}

func TestFlagsCoOccur(t *testing.T) {
	scheduled := placedNoon().Add(25 * time.Minute)
	o := &domain.Order{
		Fulfillment: domain.FulfillmentDelivery,
		Status:      domain.StatusReceived,
		PlacedAt:    placedNoon(),
		ScheduledAt: &scheduled,
	}

	// Twenty minutes in: past the late threshold and within 15 minutes of
	// the scheduled time.
	flags := Flags(o, placedNoon().Add(20*time.Minute))
	if len(flags) != 2 {
		t.Fatalf("flags = %+v, want late and soon", flags)
	}
	if flags[0].Type != "late" || flags[1].Type != "soon" {
		t.Errorf("flag types = [%s %s], want [late soon]", flags[0].Type, flags[1].Type)
	}
}

func TestFlagsPure(t *testing.T) {
	o := &domain.Order{
		Fulfillment: domain.FulfillmentDelivery,
		Status:      domain.StatusReceived,
		PlacedAt:    placedNoon(),
	}

	// The same order flips to late purely by the clock moving.
	if flags := Flags(o, placedNoon().Add(14*time.Minute)); len(flags) != 0 {
		t.Fatalf("before threshold: flags = %+v", flags)
	}
	if flags := Flags(o, placedNoon().Add(16*time.Minute)); len(flags) != 1 {
		t.Fatalf("after threshold: flags = %+v", flags)
	}
}
