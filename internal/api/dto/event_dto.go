package dto

import (
	"encoding/json"
	"time"

	"github.com/spec-kit/property-notifier/internal/events"
)

// PublishEventRequest is a domain event reported by the main application.
type PublishEventRequest struct {
	ID        string           `json:"id"`
	Type      events.EventType `json:"type"`
	Timestamp *time.Time       `json:"timestamp"`
	Payload   json.RawMessage  `json:"payload"`
}

// PublishEventResponse acknowledges an accepted event.
type PublishEventResponse struct {
	ID   string           `json:"id"`
	Type events.EventType `json:"type"`
}
