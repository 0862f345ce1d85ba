// Package email renders notification emails and hands them to a transport.
package email

import "github.com/spec-kit/property-notifier/internal/domain"

// TemplateKey names one embedded email template.
type TemplateKey string

const (
	TemplateJobAssigned             TemplateKey = "job_assigned"
	TemplateJobCompleted            TemplateKey = "job_completed"
	TemplateJobStarted              TemplateKey = "job_started"
	TemplateJobReassigned           TemplateKey = "job_reassigned"
	TemplateInspectionReminder      TemplateKey = "inspection_reminder"
	TemplateInspectionOverdue       TemplateKey = "inspection_overdue"
	TemplateInspectionCompleted     TemplateKey = "inspection_completed"
	TemplateInspectionApproved      TemplateKey = "inspection_approved"
	TemplateInspectionRejected      TemplateKey = "inspection_rejected"
	TemplateServiceRequestUpdate    TemplateKey = "service_request_update"
	TemplateOwnerCostEstimateReady  TemplateKey = "owner_cost_estimate_ready"
	TemplateManagerOwnerApproved    TemplateKey = "manager_owner_approved"
	TemplateManagerOwnerRejected    TemplateKey = "manager_owner_rejected"
	TemplateOwnerJobCreated         TemplateKey = "owner_job_created"
	TemplateOverdueInspectionDigest TemplateKey = "overdue_inspection_digest"
	TemplateTrialExpiring           TemplateKey = "trial_expiring"
	TemplateWelcome                 TemplateKey = "welcome"
)

// AllTemplates lists every key the renderer must be able to render.
var AllTemplates = []TemplateKey{
	TemplateJobAssigned,
	TemplateJobCompleted,
	TemplateJobStarted,
	TemplateJobReassigned,
	TemplateInspectionReminder,
	TemplateInspectionOverdue,
	TemplateInspectionCompleted,
	TemplateInspectionApproved,
	TemplateInspectionRejected,
	TemplateServiceRequestUpdate,
	TemplateOwnerCostEstimateReady,
	TemplateManagerOwnerApproved,
	TemplateManagerOwnerRejected,
	TemplateOwnerJobCreated,
	TemplateOverdueInspectionDigest,
	TemplateTrialExpiring,
	TemplateWelcome,
}

// TemplateFor maps a notification type to its email template. Types without
// an entry are in-app only.
func TemplateFor(t domain.NotificationType) (TemplateKey, bool) {
	switch t {
	case domain.NotificationJobAssigned:
		return TemplateJobAssigned, true
	case domain.NotificationJobCompleted:
		return TemplateJobCompleted, true
	case domain.NotificationJobStarted:
		return TemplateJobStarted, true
	case domain.NotificationJobReassigned:
		return TemplateJobReassigned, true
	case domain.NotificationInspectionReminder:
		return TemplateInspectionReminder, true
	case domain.NotificationInspectionOverdue:
		return TemplateInspectionOverdue, true
	case domain.NotificationInspectionCompleted:
		return TemplateInspectionCompleted, true
	case domain.NotificationInspectionApproved:
		return TemplateInspectionApproved, true
	case domain.NotificationInspectionRejected:
		return TemplateInspectionRejected, true
	case domain.NotificationServiceRequestUpdate:
		return TemplateServiceRequestUpdate, true
	case domain.NotificationOwnerCostEstimateReady:
		return TemplateOwnerCostEstimateReady, true
	case domain.NotificationServiceRequestApproved:
		return TemplateManagerOwnerApproved, true
	case domain.NotificationServiceRequestRejected:
		return TemplateManagerOwnerRejected, true
	case domain.NotificationOwnerJobCreated:
		return TemplateOwnerJobCreated, true
	case domain.NotificationRecommendationCreated, domain.NotificationSystem:
		return "", false
	}
	return "", false
}

// subjects are text/template strings rendered with the same data as the body.
var subjects = map[TemplateKey]string{
	TemplateJobAssigned:             `New job assigned: {{.JobTitle}}`,
	TemplateJobCompleted:            `Job completed: {{.JobTitle}}`,
	TemplateJobStarted:              `Work started: {{.JobTitle}}`,
	TemplateJobReassigned:           `Job reassigned: {{.JobTitle}}`,
	TemplateInspectionReminder:      `Upcoming inspection: {{.InspectionTitle}}`,
	TemplateInspectionOverdue:       `Inspection overdue: {{.InspectionTitle}}`,
	TemplateInspectionCompleted:     `Inspection completed: {{.InspectionTitle}}`,
	TemplateInspectionApproved:      `Inspection approved: {{.InspectionTitle}}`,
	TemplateInspectionRejected:      `Inspection needs changes: {{.InspectionTitle}}`,
	TemplateServiceRequestUpdate:    `Service request update: {{.RequestTitle}}`,
	TemplateOwnerCostEstimateReady:  `Cost estimate ready for review: {{.RequestTitle}}`,
	TemplateManagerOwnerApproved:    `Owner approved: {{.RequestTitle}}`,
	TemplateManagerOwnerRejected:    `Owner rejected: {{.RequestTitle}}`,
	TemplateOwnerJobCreated:         `New job at {{.PropertyName}}: {{.JobTitle}}`,
	TemplateOverdueInspectionDigest: `{{len .Inspections}} overdue inspection{{if ne (len .Inspections) 1}}s{{end}} to review`,
	TemplateTrialExpiring:           `Your trial ends in {{.DaysRemaining}} day{{if ne .DaysRemaining 1}}s{{end}}`,
	TemplateWelcome:                 `Welcome to {{.ProductName}}`,
}
