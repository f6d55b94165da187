package http

import (
	"fmt"
	"net/http"
	"time"

	"brigade/internal/adapter/localtime"
	"brigade/internal/adapter/logger"
	"brigade/internal/interfaces"
)

type AnalyticsHandler struct {
	service      interfaces.AnalyticsService
	resolver     *localtime.Resolver
	restaurantID string
	zone         string
	logger       logger.Logger

	now func() time.Time
}

func NewAnalyticsHandler(
	service interfaces.AnalyticsService,
	resolver *localtime.Resolver,
	restaurantID, zone string,
	lgr logger.Logger,
) *AnalyticsHandler {
	return &AnalyticsHandler{
		service:      service,
		resolver:     resolver,
		restaurantID: restaurantID,
		zone:         zone,
		logger:       lgr,
		now:          time.Now,
	}
}

// HandleReport serves GET /analytics/report?range=week|month|year|custom.
// Custom ranges take from/to as local dates (YYYY-MM-DD), both inclusive.
func (h *AnalyticsHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	window, err := h.resolveWindow(r.URL.Query().Get("range"), r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	report, err := h.service.Report(r.Context(), h.restaurantID, window)
	if err != nil {
		h.logger.Error("analytics_failed", "Analytics report failed", RequestIDFrom(r.Context()), map[string]interface{}{
			"from": window.From,
			"to":   window.To,
		}, err)
		respondError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// resolveWindow turns a named range into [From, To) UTC bounds anchored on
// the restaurant's local midnights. Named ranges are rolling windows ending
// after the current local day.
func (h *AnalyticsHandler) resolveWindow(name, from, to string) (interfaces.DateRange, error) {
	today, err := h.resolver.Resolve(h.now().UTC(), h.zone)
	if err != nil {
		return interfaces.DateRange{}, err
	}

	var backDays int
	switch name {
	case "", "week":
		backDays = 6
	case "month":
		backDays = 29
	case "year":
		backDays = 364
	case "custom":
		return h.customWindow(from, to)
	default:
		return interfaces.DateRange{}, fmt.Errorf("unknown range %q", name)
	}

	// time.Date normalizes out-of-range days, so day arithmetic stays in
	// calendar space and DST days keep their real length.
	start, err := h.resolver.MidnightUTC(today.Year, today.Month, today.Day-backDays, h.zone)
	if err != nil {
		return interfaces.DateRange{}, err
	}
	end, err := h.resolver.MidnightUTC(today.Year, today.Month, today.Day+1, h.zone)
	if err != nil {
		return interfaces.DateRange{}, err
	}
	return interfaces.DateRange{From: start, To: end}, nil
}

func (h *AnalyticsHandler) customWindow(from, to string) (interfaces.DateRange, error) {
	fromDay, err := time.Parse("2006-01-02", from)
	if err != nil {
		return interfaces.DateRange{}, fmt.Errorf("invalid from date %q", from)
	}
	toDay, err := time.Parse("2006-01-02", to)
	if err != nil {
		return interfaces.DateRange{}, fmt.Errorf("invalid to date %q", to)
	}
	if toDay.Before(fromDay) {
		return interfaces.DateRange{}, fmt.Errorf("to date precedes from date")
	}

	start, err := h.resolver.MidnightUTC(fromDay.Year(), fromDay.Month(), fromDay.Day(), h.zone)
	if err != nil {
		return interfaces.DateRange{}, err
	}
	end, err := h.resolver.MidnightUTC(toDay.Year(), toDay.Month(), toDay.Day()+1, h.zone)
	if err != nil {
		return interfaces.DateRange{}, err
	}
	return interfaces.DateRange{From: start, To: end}, nil
}
