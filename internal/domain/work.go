package domain

import "time"

// JobRef carries the maintenance job fields used in notifications.
type JobRef struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	PropertyName string `json:"property_name"`
	Priority     string `json:"priority,omitempty"`
}

// ServiceRequestRef carries the service request fields used in notifications.
type ServiceRequestRef struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	PropertyName string `json:"property_name"`
	Status       string `json:"status,omitempty"`
}

// InspectionRef carries the inspection fields used in notifications.
type InspectionRef struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	PropertyName  string    `json:"property_name"`
	UnitNumber    string    `json:"unit_number,omitempty"`
	ScheduledDate time.Time `json:"scheduled_date"`
}
