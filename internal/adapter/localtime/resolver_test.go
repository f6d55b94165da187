package localtime

import (
	"testing"
	"time"

	"brigade/internal/domain"
)

func TestResolveParisSummer(t *testing.T) {
	r := NewResolver()

	// 22:30 UTC on June 30 is already July 1 in Paris (UTC+2 in summer).
	utc := time.Date(2025, 6, 30, 22, 30, 0, 0, time.UTC)
	local, err := r.Resolve(utc, "Europe/Paris")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	want := domain.LocalTime{Year: 2025, Month: time.July, Day: 1, Hour: 0}
	if local != want {
		t.Errorf("Resolve() = %+v, want %+v", local, want)
	}
}

func TestResolveUnknownZone(t *testing.T) {
	r := NewResolver()
	if _, err := r.Resolve(time.Now(), "Mars/Olympus"); err == nil {
		t.Error("expected an error for an unknown zone")
	}
}

func TestMidnightUTC(t *testing.T) {
	r := NewResolver()

	// Paris midnight in winter is 23:00 UTC the previous day.
	got, err := r.MidnightUTC(2025, time.January, 15, "Europe/Paris")
	if err != nil {
		t.Fatalf("MidnightUTC() error = %v", err)
	}
	want := time.Date(2025, 1, 14, 23, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("MidnightUTC() = %v, want %v", got, want)
	}

	// Overflowing the day normalizes into the next month.
	got, err = r.MidnightUTC(2025, time.June, 31, "UTC")
	if err != nil {
		t.Fatalf("MidnightUTC() error = %v", err)
	}
	if got.Month() != time.July || got.Day() != 1 {
		t.Errorf("MidnightUTC(June 31) = %v, want July 1", got)
	}
}
