package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spec-kit/property-notifier/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventJobAssigned           EventType = "job_assigned"
	EventJobStarted            EventType = "job_started"
	EventJobCompleted          EventType = "job_completed"
	EventJobReassigned         EventType = "job_reassigned"
	EventOwnerJobCreated       EventType = "owner_job_created"
	EventInspectionReminder    EventType = "inspection_reminder"
	EventInspectionCompleted   EventType = "inspection_completed"
	EventInspectionApproved    EventType = "inspection_approved"
	EventInspectionRejected    EventType = "inspection_rejected"
	EventServiceRequestUpdated EventType = "service_request_updated"
	EventCostEstimateReady     EventType = "cost_estimate_ready"
	EventOwnerApproved         EventType = "service_request_owner_approved"
	EventOwnerRejected         EventType = "service_request_owner_rejected"
	EventUserRegistered        EventType = "user_registered"
)

var knownTypes = map[EventType]struct{}{
	EventJobAssigned:           {},
	EventJobStarted:            {},
	EventJobCompleted:          {},
	EventJobReassigned:         {},
	EventOwnerJobCreated:       {},
	EventInspectionReminder:    {},
	EventInspectionCompleted:   {},
	EventInspectionApproved:    {},
	EventInspectionRejected:    {},
	EventServiceRequestUpdated: {},
	EventCostEstimateReady:     {},
	EventOwnerApproved:         {},
	EventOwnerRejected:         {},
	EventUserRegistered:        {},
}

// Valid reports whether t is a known event type.
func (t EventType) Valid() bool {
	_, ok := knownTypes[t]
	return ok
}

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID string          `json:"user_id,omitempty"`
	Role   domain.UserRole `json:"role,omitempty"`
}

// Event represents a domain event reported by the main application.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// DecodePayload copies the event payload into dst. Payloads published in
// process and payloads decoded from HTTP as raw JSON are both accepted.
func DecodePayload(event Event, dst any) error {
	var raw []byte
	switch p := event.Payload.(type) {
	case json.RawMessage:
		raw = p
	case []byte:
		raw = p
	default:
		var err error
		if raw, err = json.Marshal(p); err != nil {
			return fmt.Errorf("encode %s payload: %w", event.Type, err)
		}
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s payload: %w", event.Type, err)
	}
	return nil
}

// JobAssignedPayload payload.
type JobAssignedPayload struct {
	TechnicianID string        `json:"technician_id"`
	Job          domain.JobRef `json:"job"`
}

// JobProgressPayload is used by job_started and job_completed.
type JobProgressPayload struct {
	ManagerID      string        `json:"manager_id"`
	TechnicianName string        `json:"technician_name"`
	Job            domain.JobRef `json:"job"`
}

// JobReassignedPayload payload.
type JobReassignedPayload struct {
	PreviousTechnicianID string        `json:"previous_technician_id"`
	NewTechnicianID      string        `json:"new_technician_id"`
	Job                  domain.JobRef `json:"job"`
}

// OwnerJobCreatedPayload payload.
type OwnerJobCreatedPayload struct {
	OwnerID string        `json:"owner_id"`
	Job     domain.JobRef `json:"job"`
}

// InspectionReminderPayload payload.
type InspectionReminderPayload struct {
	TechnicianID string               `json:"technician_id"`
	Inspection   domain.InspectionRef `json:"inspection"`
}

// InspectionCompletedPayload payload.
type InspectionCompletedPayload struct {
	ManagerID        string               `json:"manager_id"`
	TechnicianName   string               `json:"technician_name"`
	RequiresApproval bool                 `json:"requires_approval"`
	Inspection       domain.InspectionRef `json:"inspection"`
}

// InspectionReviewedPayload is used by inspection_approved and inspection_rejected.
type InspectionReviewedPayload struct {
	TechnicianID string               `json:"technician_id"`
	ReviewerName string               `json:"reviewer_name,omitempty"`
	Reason       string               `json:"reason,omitempty"`
	Inspection   domain.InspectionRef `json:"inspection"`
}

// ServiceRequestUpdatedPayload payload.
type ServiceRequestUpdatedPayload struct {
	RequesterID string                   `json:"requester_id"`
	Note        string                   `json:"note,omitempty"`
	Request     domain.ServiceRequestRef `json:"request"`
}

// CostEstimateReadyPayload payload.
type CostEstimateReadyPayload struct {
	OwnerID       string                   `json:"owner_id"`
	EstimatedCost string                   `json:"estimated_cost"`
	Request       domain.ServiceRequestRef `json:"request"`
}

// OwnerDecisionPayload is used by the owner approved and rejected events.
type OwnerDecisionPayload struct {
	ManagerID string                   `json:"manager_id"`
	OwnerName string                   `json:"owner_name"`
	Reason    string                   `json:"reason,omitempty"`
	Request   domain.ServiceRequestRef `json:"request"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	UserID string `json:"user_id"`
}
