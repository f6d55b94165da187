package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"brigade/internal/adapter/logger"
	"brigade/internal/domain"
	"brigade/internal/interfaces"
)

type BoardHandler struct {
	board        interfaces.BoardService
	history      interfaces.HistoryService
	sessions     interfaces.SessionStore
	actors       *ActorResolver
	restaurantID string
	sessionTTL   time.Duration
	logger       logger.Logger
}

func NewBoardHandler(
	board interfaces.BoardService,
	history interfaces.HistoryService,
	sessions interfaces.SessionStore,
	actors *ActorResolver,
	restaurantID string,
	sessionTTL time.Duration,
	lgr logger.Logger,
) *BoardHandler {
	return &BoardHandler{
		board:        board,
		history:      history,
		sessions:     sessions,
		actors:       actors,
		restaurantID: restaurantID,
		sessionTTL:   sessionTTL,
		logger:       lgr,
	}
}

// HandleBoard routes the /board subtree:
//
//	GET /board/orders            active orders with priority flags
//	GET /board/history?view=...  collapsed terminal history
//	GET /board/trail/{id}        full event trail of one order
//	GET /board/track/{number}    one order by its public number
//	PUT /board/mode              store the session's role mode
func (h *BoardHandler) HandleBoard(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) < 2 {
		respondError(w, "Not found", http.StatusNotFound)
		return
	}

	switch {
	case len(parts) == 2 && parts[1] == "orders":
		h.getActiveOrders(w, r)
	case len(parts) == 2 && parts[1] == "history":
		h.getHistory(w, r)
	case len(parts) == 3 && parts[1] == "trail":
		h.getTrail(w, r, parts[2])
	case len(parts) == 3 && parts[1] == "track":
		h.getTrack(w, r, parts[2])
	case len(parts) == 2 && parts[1] == "mode":
		h.putMode(w, r)
	default:
		respondError(w, "Not found", http.StatusNotFound)
	}
}

func (h *BoardHandler) getActiveOrders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	actor, mode, err := h.actors.Resolve(r)
	if err != nil {
		respondError(w, err.Error(), statusFor(err))
		return
	}

	entries, err := h.board.ActiveOrders(r.Context(), h.restaurantID, actor, mode)
	if err != nil {
		h.logger.Error("board_fetch_failed", "Active board fetch failed", RequestIDFrom(r.Context()), nil, err)
		respondError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	resp := make([]map[string]interface{}, len(entries))
	for i, entry := range entries {
		o := entry.Order
		resp[i] = map[string]interface{}{
			"id":           o.ID,
			"order_number": o.Number,
			"fulfillment":  o.Fulfillment,
			"status":       o.Status,
			"placed_at":    o.PlacedAt,
			"scheduled_at": o.ScheduledAt,
			"cook_id":      o.CookID,
			"driver_id":    o.DriverID,
			"total":        o.Total,
			"flags":        entry.Flags,
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *BoardHandler) getHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	view := interfaces.HistoryView(r.URL.Query().Get("view"))
	if view == "" {
		view = interfaces.HistoryViewDelivery
	}

	actor, mode, err := h.actors.Resolve(r)
	if err != nil {
		respondError(w, err.Error(), statusFor(err))
		return
	}

	entries, err := h.history.Board(r.Context(), h.restaurantID, view, actor, mode)
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp := make([]map[string]interface{}, len(entries))
	for i, entry := range entries {
		resp[i] = map[string]interface{}{
			"order_id":  entry.OrderID,
			"status":    entry.Status,
			"timestamp": entry.Timestamp,
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *BoardHandler) getTrail(w http.ResponseWriter, r *http.Request, rawID string) {
	if r.Method != http.MethodGet {
		respondError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	orderID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		respondError(w, "Invalid order id", http.StatusBadRequest)
		return
	}

	events, err := h.history.Trail(r.Context(), orderID)
	if err != nil {
		respondError(w, err.Error(), statusFor(err))
		return
	}

	resp := make([]map[string]interface{}, len(events))
	for i, ev := range events {
		payload, _ := domain.EncodePayload(ev.Payload)
		resp[i] = map[string]interface{}{
			"status":     ev.Payload.Status(),
			"actor_type": ev.ActorType,
			"payload":    json.RawMessage(payload),
			"timestamp":  ev.CreatedAt,
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *BoardHandler) getTrack(w http.ResponseWriter, r *http.Request, number string) {
	if r.Method != http.MethodGet {
		respondError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	entry, err := h.board.Track(r.Context(), number)
	if err != nil {
		respondError(w, "Order not found", http.StatusNotFound)
		return
	}

	o := entry.Order
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"order_number": o.Number,
		"fulfillment":  o.Fulfillment,
		"status":       o.Status,
		"placed_at":    o.PlacedAt,
		"scheduled_at": o.ScheduledAt,
		"flags":        entry.Flags,
	})
}

type ModeRequest struct {
	Mode string `json:"mode"`
}

func (h *BoardHandler) putMode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		respondError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	token := r.Header.Get(headerSessionToken)
	if token == "" {
		respondError(w, "session token is required", http.StatusBadRequest)
		return
	}

	var req ModeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// Store the canonical name so reads do not depend on client spelling.
	mode := domain.ModeByName(req.Mode)
	if err := h.sessions.SetModeName(r.Context(), token, mode.Name(), h.sessionTTL); err != nil {
		h.logger.Error("session_mode_store_failed", "Role mode not stored", RequestIDFrom(r.Context()), nil, err)
		respondError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"mode": mode.Name()})
}
