package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"brigade/internal/adapter/logger"
	"brigade/internal/domain"
	"brigade/internal/interfaces"
)

type TransitionHandler struct {
	service interfaces.TransitionService
	actors  *ActorResolver
	logger  logger.Logger
}

func NewTransitionHandler(service interfaces.TransitionService, actors *ActorResolver, lgr logger.Logger) *TransitionHandler {
	return &TransitionHandler{
		service: service,
		actors:  actors,
		logger:  lgr,
	}
}

type TransitionRequest struct {
	Status     string `json:"status"`
	Reason     string `json:"reason,omitempty"`
	AssigneeID string `json:"assignee_id,omitempty"`
}

type TransitionResponse struct {
	OrderNumber string  `json:"order_number"`
	Status      string  `json:"status"`
	CookID      *string `json:"cook_id,omitempty"`
	DriverID    *string `json:"driver_id,omitempty"`
}

// HandleOrders routes POST /orders/{id}/status.
func (h *TransitionHandler) HandleOrders(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 3 || parts[2] != "status" {
		respondError(w, "Not found", http.StatusNotFound)
		return
	}
	if r.Method != http.MethodPost {
		respondError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	orderID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		respondError(w, "Invalid order id", http.StatusBadRequest)
		return
	}

	var req TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Status == "" {
		respondError(w, "status is required", http.StatusBadRequest)
		return
	}

	actor, mode, err := h.actors.Resolve(r)
	if err != nil {
		respondError(w, err.Error(), statusFor(err))
		return
	}

	cmd := interfaces.TransitionCommand{
		OrderID:    orderID,
		Target:     domain.Status(req.Status),
		Actor:      actor,
		Mode:       mode,
		Reason:     strings.TrimSpace(req.Reason),
		AssigneeID: req.AssigneeID,
	}

	order, err := h.service.Transition(r.Context(), cmd)
	if err != nil {
		h.logger.Error("transition_failed", "Status transition rejected", RequestIDFrom(r.Context()), map[string]interface{}{
			"order_id": orderID,
			"target":   req.Status,
			"actor":    actor.ID,
		}, err)
		respondError(w, err.Error(), statusFor(err))
		return
	}

	respondJSON(w, http.StatusOK, TransitionResponse{
		OrderNumber: order.Number,
		Status:      string(order.Status),
		CookID:      order.CookID,
		DriverID:    order.DriverID,
	})
}
