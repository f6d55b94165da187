package localtime

import (
	"fmt"
	"sync"
	"time"

	"brigade/internal/domain"
	"brigade/internal/interfaces"
)

// Resolver converts UTC instants into a restaurant's calendar components.
// Loaded zones are cached; time.LoadLocation hits the filesystem otherwise.
type Resolver struct {
	mu    sync.Mutex
	zones map[string]*time.Location
}

func NewResolver() *Resolver {
	return &Resolver{zones: make(map[string]*time.Location)}
}

var _ interfaces.LocalTimeResolver = (*Resolver)(nil)

func (r *Resolver) Resolve(utc time.Time, ianaZone string) (domain.LocalTime, error) {
	loc, err := r.location(ianaZone)
	if err != nil {
		return domain.LocalTime{}, err
	}

	local := utc.In(loc)
	return domain.LocalTime{
		Year:  local.Year(),
		Month: local.Month(),
		Day:   local.Day(),
		Hour:  local.Hour(),
	}, nil
}

// MidnightUTC returns the UTC instant of local midnight for the given local
// date in the zone. Used to translate calendar windows into query bounds.
func (r *Resolver) MidnightUTC(year int, month time.Month, day int, ianaZone string) (time.Time, error) {
	loc, err := r.location(ianaZone)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc).UTC(), nil
}

func (r *Resolver) location(ianaZone string) (*time.Location, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if loc, ok := r.zones[ianaZone]; ok {
		return loc, nil
	}
	loc, err := time.LoadLocation(ianaZone)
	if err != nil {
		return nil, fmt.Errorf("failed to load zone %q: %w", ianaZone, err)
	}
	r.zones[ianaZone] = loc
	return loc, nil
}
