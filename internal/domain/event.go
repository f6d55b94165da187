package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

const EventTypeStatusChanged = "status_changed"

// OrderEvent is one immutable entry in the append-only order event log.
// The ID is assigned by the log in append order and doubles as the
// tie-breaker when two events share a created_at.
type OrderEvent struct {
	ID           int64
	OrderID      int64
	RestaurantID string
	ActorType    Role
	EventType    string
	Payload      EventPayload
	CreatedAt    time.Time
}

// EventPayload is the status-change payload. Each status that carries
// mandatory fields gets its own variant so a missing reason or assignee is a
// compile error, not a nil lookup at read time.
type EventPayload interface {
	Status() Status
}

// ReceivedPayload is written by the storefront at placement; it never
// originates from a transition here but the log decoder must read it.
type ReceivedPayload struct{}

func (ReceivedPayload) Status() Status { return StatusReceived }

type PreparingPayload struct {
	CookID string
}

func (p PreparingPayload) Status() Status { return StatusPreparing }

type ReadyPayload struct{}

func (ReadyPayload) Status() Status { return StatusReady }

type AssignedPayload struct {
	DriverID string
}

func (p AssignedPayload) Status() Status { return StatusAssigned }

type EnroutePayload struct {
	DriverID string
}

func (p EnroutePayload) Status() Status { return StatusEnroute }

type CompletedPayload struct{}

func (CompletedPayload) Status() Status { return StatusCompleted }

type CancelledPayload struct {
	Reason string
}

func (p CancelledPayload) Status() Status { return StatusCancelled }

type FailedPayload struct {
	Reason   string
	DriverID *string
}

func (p FailedPayload) Status() Status { return StatusFailed }

// payloadWire is the flat JSONB representation shared by every variant.
type payloadWire struct {
	Status   Status  `json:"status"`
	Reason   *string `json:"reason,omitempty"`
	DriverID *string `json:"driver_id,omitempty"`
	CookID   *string `json:"cook_id,omitempty"`
}

// EncodePayload serializes a payload variant to its stored JSON form.
func EncodePayload(p EventPayload) ([]byte, error) {
	w := payloadWire{Status: p.Status()}
	switch v := p.(type) {
	case PreparingPayload:
		w.CookID = &v.CookID
	case AssignedPayload:
		w.DriverID = &v.DriverID
	case EnroutePayload:
		w.DriverID = &v.DriverID
	case CancelledPayload:
		w.Reason = &v.Reason
	case FailedPayload:
		w.Reason = &v.Reason
		w.DriverID = v.DriverID
	case ReceivedPayload, ReadyPayload, CompletedPayload:
	default:
		return nil, fmt.Errorf("unknown payload variant %T", p)
	}
	return json.Marshal(w)
}

// DecodePayload re-tags a stored JSON payload into its variant by status.
func DecodePayload(data []byte) (EventPayload, error) {
	var w payloadWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("failed to decode event payload: %w", err)
	}

	switch w.Status {
	case StatusReceived:
		return ReceivedPayload{}, nil
	case StatusPreparing:
		p := PreparingPayload{}
		if w.CookID != nil {
			p.CookID = *w.CookID
		}
		return p, nil
	case StatusReady:
		return ReadyPayload{}, nil
	case StatusAssigned:
		p := AssignedPayload{}
		if w.DriverID != nil {
			p.DriverID = *w.DriverID
		}
		return p, nil
	case StatusEnroute:
		p := EnroutePayload{}
		if w.DriverID != nil {
			p.DriverID = *w.DriverID
		}
		return p, nil
	case StatusCompleted:
		return CompletedPayload{}, nil
	case StatusCancelled:
		if w.Reason == nil {
			return nil, fmt.Errorf("cancelled payload without reason")
		}
		return CancelledPayload{Reason: *w.Reason}, nil
	case StatusFailed:
		if w.Reason == nil {
			return nil, fmt.Errorf("failed payload without reason")
		}
		return FailedPayload{Reason: *w.Reason, DriverID: w.DriverID}, nil
	default:
		return nil, fmt.Errorf("unknown payload status %q", w.Status)
	}
}
