package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"brigade/internal/adapter/logger"
	"brigade/internal/domain"
	"brigade/internal/interfaces"
)

// Request headers identifying who is acting. Authentication itself happens
// upstream; by the time a request lands here the gateway has already
// verified the staff identity and session token.
const (
	headerStaffID      = "X-Staff-ID"
	headerStaffRole    = "X-Staff-Role"
	headerSessionToken = "X-Session-Token"
)

// ActorResolver turns request headers into a verified staff reference and
// the session's role mode.
type ActorResolver struct {
	staff    interfaces.StaffDirectory
	sessions interfaces.SessionStore
	logger   logger.Logger
}

func NewActorResolver(staff interfaces.StaffDirectory, sessions interfaces.SessionStore, lgr logger.Logger) *ActorResolver {
	return &ActorResolver{staff: staff, sessions: sessions, logger: lgr}
}

func (a *ActorResolver) Resolve(r *http.Request) (domain.StaffRef, domain.RoleMode, error) {
	staffID := r.Header.Get(headerStaffID)
	if staffID == "" {
		return domain.StaffRef{}, nil, domain.ErrStaffNotFound
	}

	actor, err := a.staff.FindByID(r.Context(), staffID)
	if err != nil {
		return domain.StaffRef{}, nil, err
	}
	if !actor.Active {
		// Deactivation takes effect immediately, even for sessions that
		// have not expired yet.
		return domain.StaffRef{}, nil, domain.ErrNotPermitted
	}
	if role := r.Header.Get(headerStaffRole); role != "" && domain.Role(role) != actor.Role {
		// Headers are gateway-written; a mismatch means a stale client.
		return domain.StaffRef{}, nil, domain.ErrNotPermitted
	}

	// Every authenticated request refreshes presence; boards poll often
	// enough that this doubles as the staff heartbeat.
	if err := a.staff.Heartbeat(r.Context(), actor.ID); err != nil {
		a.logger.Debug("staff_heartbeat_failed", "Presence not refreshed", RequestIDFrom(r.Context()),
			map[string]interface{}{"staff_id": actor.ID})
	}

	mode := domain.RoleMode(domain.TeamMode{})
	if token := r.Header.Get(headerSessionToken); token != "" {
		name, err := a.sessions.ModeName(r.Context(), token)
		if err != nil {
			// A session-store outage degrades to team mode rather than
			// taking the board down. Team mode grants nothing extra.
			a.logger.Error("session_mode_lookup_failed", "Falling back to team mode", RequestIDFrom(r.Context()), nil, err)
		} else {
			mode = domain.ModeByName(name)
		}
	}

	return *actor, mode, nil
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, message string, statusCode int) {
	respondJSON(w, statusCode, ErrorResponse{Error: message})
}

// statusFor maps domain errors onto HTTP statuses. Conflict is 409 so
// clients know to refetch and retry rather than report a failure.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrOrderNotFound), errors.Is(err, domain.ErrStaffNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotPermitted):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, domain.ErrUnknownAssignee):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrMissingReason):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
