package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventAlertCreated     EventType = "alert.created"
	EventAlertDispatched  EventType = "alert.dispatched"
	EventAlertResolved    EventType = "alert.resolved"
	EventAlertEvicted     EventType = "alert.evicted"
	EventResourceConsumed EventType = "resource.consumed"
	EventResourceReturned EventType = "resource.returned"
	EventDispatchRejected EventType = "dispatch.rejected"
	EventStatusSnapshot   EventType = "status.snapshot"
)

// Event is a journal entry describing one dashboard state change. Seq is
// assigned by the dashboard in transition order and is zero for events
// raised elsewhere.
type Event struct {
	ID         string          `json:"id"`
	Seq        uint64          `json:"seq,omitempty"`
	Type       EventType       `json:"type"`
	AlertID    int             `json:"alert_id,omitempty"`
	ResourceID string          `json:"resource_id,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// NewEvent stamps a fresh event. A payload that fails to marshal is dropped.
func NewEvent(t EventType, alertID int, resourceID string, payload any) *Event {
	e := &Event{
		ID:         uuid.NewString(),
		Type:       t,
		AlertID:    alertID,
		ResourceID: resourceID,
		CreatedAt:  time.Now().UTC(),
	}
	if payload != nil {
		if raw, err := json.Marshal(payload); err == nil {
			e.Payload = raw
		}
	}
	return e
}
