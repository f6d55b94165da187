package analytics

import (
	"context"
	"sync"
	"time"

	"brigade/internal/adapter/logger"
	"brigade/internal/domain"
	"brigade/internal/interfaces"
)

// Service loads the window's orders, resolves their local calendar
// components and hands everything to the pure aggregator.
//
// Runs are supersedable per restaurant: starting a new report cancels the
// context of the one still in flight, so a manager flipping between ranges
// never queues work behind an abandoned query.
type Service struct {
	orders   interfaces.OrderStore
	staff    interfaces.StaffDirectory
	resolver interfaces.LocalTimeResolver
	zone     string
	logger   logger.Logger

	mu       sync.Mutex
	gen      uint64
	inFlight map[string]inFlightRun
}

type inFlightRun struct {
	gen    uint64
	cancel context.CancelFunc
}

func NewService(
	orders interfaces.OrderStore,
	staff interfaces.StaffDirectory,
	resolver interfaces.LocalTimeResolver,
	zone string,
	lgr logger.Logger,
) *Service {
	return &Service{
		orders:   orders,
		staff:    staff,
		resolver: resolver,
		zone:     zone,
		logger:   lgr,
		inFlight: make(map[string]inFlightRun),
	}
}

func (s *Service) Report(ctx context.Context, restaurantID string, window interfaces.DateRange) (*interfaces.AnalyticsReport, error) {
	ctx, cancel, gen := s.supersede(ctx, restaurantID)
	defer s.finish(restaurantID, cancel, gen)

	orders, err := s.orders.QueryPlacedBetween(ctx, restaurantID, window.From, window.To)
	if err != nil {
		return nil, err
	}

	for _, o := range orders {
		local, err := s.resolver.Resolve(o.PlacedAt, s.zone)
		if err != nil {
			return nil, err
		}
		o.LocalPlacedAt = local
	}

	driverNames, err := s.driverNames(ctx, restaurantID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	report := Aggregate(orders, driverNames)

	s.logger.Debug("analytics_computed", "Analytics report computed", "",
		map[string]interface{}{
			"restaurant_id": restaurantID,
			"orders":        len(orders),
			"duration_ms":   time.Since(start).Milliseconds(),
		})

	return report, nil
}

// supersede registers this run as the restaurant's current one, cancelling
// whatever was running before.
func (s *Service) supersede(ctx context.Context, restaurantID string) (context.Context, context.CancelFunc, uint64) {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.inFlight[restaurantID]; ok {
		prev.cancel()
	}
	s.gen++
	s.inFlight[restaurantID] = inFlightRun{gen: s.gen, cancel: cancel}
	return ctx, cancel, s.gen
}

func (s *Service) finish(restaurantID string, cancel context.CancelFunc, gen uint64) {
	cancel()
	s.mu.Lock()
	defer s.mu.Unlock()
	// A newer run may already own the slot; only the run that registered an
	// entry removes it.
	if cur, ok := s.inFlight[restaurantID]; ok && cur.gen == gen {
		delete(s.inFlight, restaurantID)
	}
}

func (s *Service) driverNames(ctx context.Context, restaurantID string) (map[string]string, error) {
	drivers, err := s.staff.ActiveByRole(ctx, restaurantID, domain.RoleDriver)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(drivers))
	for _, d := range drivers {
		names[d.ID] = d.Name
	}
	return names, nil
}
