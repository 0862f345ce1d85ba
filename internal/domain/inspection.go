package domain

import "time"

// InspectionStatus enumerates inspection workflow states.
type InspectionStatus string

const (
	InspectionStatusScheduled       InspectionStatus = "SCHEDULED"
	InspectionStatusInProgress      InspectionStatus = "IN_PROGRESS"
	InspectionStatusCompleted       InspectionStatus = "COMPLETED"
	InspectionStatusCancelled       InspectionStatus = "CANCELLED"
	InspectionStatusPendingApproval InspectionStatus = "PENDING_APPROVAL"
)

// Inspection is a scheduled visit to a property or unit.
type Inspection struct {
	ID            string
	Title         string
	Status        InspectionStatus
	ScheduledDate time.Time
	AssignedTo    *UserSummary
	Property      PropertySummary
	Unit          *UnitSummary
}

// IsOverdue reports whether the inspection is still scheduled after its date.
func (i Inspection) IsOverdue(now time.Time) bool {
	return i.Status == InspectionStatusScheduled && i.ScheduledDate.Before(now)
}

// DaysOverdue is the number of whole days elapsed since the scheduled date.
func (i Inspection) DaysOverdue(now time.Time) int {
	if !now.After(i.ScheduledDate) {
		return 0
	}
	return int(now.Sub(i.ScheduledDate) / (24 * time.Hour))
}

// Ref flattens the inspection for notification payloads.
func (i Inspection) Ref() InspectionRef {
	ref := InspectionRef{
		ID:            i.ID,
		Title:         i.Title,
		PropertyName:  i.Property.Name,
		ScheduledDate: i.ScheduledDate,
	}
	if i.Unit != nil {
		ref.UnitNumber = i.Unit.UnitNumber
	}
	return ref
}
