package domain

import "time"

// NotificationType enumerates in-app notification kinds.
type NotificationType string

const (
	NotificationJobAssigned            NotificationType = "JOB_ASSIGNED"
	NotificationJobCompleted           NotificationType = "JOB_COMPLETED"
	NotificationJobStarted             NotificationType = "JOB_STARTED"
	NotificationJobReassigned          NotificationType = "JOB_REASSIGNED"
	NotificationInspectionReminder     NotificationType = "INSPECTION_REMINDER"
	NotificationInspectionOverdue      NotificationType = "INSPECTION_OVERDUE"
	NotificationInspectionCompleted    NotificationType = "INSPECTION_COMPLETED"
	NotificationInspectionApproved     NotificationType = "INSPECTION_APPROVED"
	NotificationInspectionRejected     NotificationType = "INSPECTION_REJECTED"
	NotificationServiceRequestUpdate   NotificationType = "SERVICE_REQUEST_UPDATE"
	NotificationOwnerCostEstimateReady NotificationType = "OWNER_COST_ESTIMATE_READY"
	NotificationServiceRequestApproved NotificationType = "SERVICE_REQUEST_APPROVED_BY_OWNER"
	NotificationServiceRequestRejected NotificationType = "SERVICE_REQUEST_REJECTED_BY_OWNER"
	NotificationOwnerJobCreated        NotificationType = "OWNER_JOB_CREATED"
	NotificationRecommendationCreated  NotificationType = "RECOMMENDATION_CREATED"
	NotificationSystem                 NotificationType = "SYSTEM"
)

// EntityType names the record a notification links to.
type EntityType string

const (
	EntityInspection     EntityType = "inspection"
	EntityJob            EntityType = "job"
	EntityServiceRequest EntityType = "serviceRequest"
)

// Notification is an in-app message addressed to a single user.
type Notification struct {
	ID         string
	UserID     string
	Type       NotificationType
	Title      string
	Message    string
	EntityType *EntityType
	EntityID   *string
	IsRead     bool
	CreatedAt  time.Time
}
