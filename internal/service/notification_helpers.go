package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/property-notifier/internal/domain"
	"github.com/spec-kit/property-notifier/internal/email"
)

func (s *NotificationService) jobOptions(job domain.JobRef, data email.Data) SendOptions {
	data["JobTitle"] = job.Title
	data["PropertyName"] = job.PropertyName
	data["Link"] = s.link("/jobs/" + job.ID)
	data["LinkLabel"] = "View job"
	return SendOptions{EntityType: domain.EntityJob, EntityID: job.ID, EmailData: data}
}

func (s *NotificationService) inspectionOptions(inspection domain.InspectionRef, data email.Data) SendOptions {
	data["InspectionTitle"] = inspection.Title
	data["PropertyName"] = inspection.PropertyName
	data["UnitNumber"] = inspection.UnitNumber
	data["ScheduledDate"] = s.formatDate(inspection.ScheduledDate)
	data["Link"] = s.link("/inspections/" + inspection.ID)
	data["LinkLabel"] = "View inspection"
	return SendOptions{EntityType: domain.EntityInspection, EntityID: inspection.ID, EmailData: data}
}

func (s *NotificationService) requestOptions(request domain.ServiceRequestRef, data email.Data) SendOptions {
	data["RequestTitle"] = request.Title
	data["PropertyName"] = request.PropertyName
	data["Link"] = s.link("/service-requests/" + request.ID)
	data["LinkLabel"] = "View request"
	return SendOptions{EntityType: domain.EntityServiceRequest, EntityID: request.ID, EmailData: data}
}

// NotifyJobAssigned tells a technician about a new job.
func (s *NotificationService) NotifyJobAssigned(ctx context.Context, technicianID string, job domain.JobRef) (*domain.Notification, error) {
	return s.SendNotification(ctx, technicianID, domain.NotificationJobAssigned,
		"New Job Assigned",
		fmt.Sprintf("You have been assigned to %q at %s", job.Title, job.PropertyName),
		s.jobOptions(job, email.Data{"Priority": job.Priority}))
}

// NotifyJobCompleted tells the manager a technician finished a job.
func (s *NotificationService) NotifyJobCompleted(ctx context.Context, managerID string, job domain.JobRef, technicianName string) (*domain.Notification, error) {
	return s.SendNotification(ctx, managerID, domain.NotificationJobCompleted,
		"Job Completed",
		fmt.Sprintf("%s completed %q", technicianName, job.Title),
		s.jobOptions(job, email.Data{"TechnicianName": technicianName}))
}

// NotifyJobStarted tells the manager work on a job began.
func (s *NotificationService) NotifyJobStarted(ctx context.Context, managerID string, job domain.JobRef, technicianName string) (*domain.Notification, error) {
	return s.SendNotification(ctx, managerID, domain.NotificationJobStarted,
		"Job Started",
		fmt.Sprintf("%s started work on %q", technicianName, job.Title),
		s.jobOptions(job, email.Data{"TechnicianName": technicianName}))
}

// NotifyJobReassigned notifies the previous and the new technician
// concurrently and waits for both. Either send may fail without affecting
// the other.
func (s *NotificationService) NotifyJobReassigned(ctx context.Context, previousTechnicianID, newTechnicianID string, job domain.JobRef) {
	var g errgroup.Group

	if previousTechnicianID != "" {
		g.Go(func() error {
			_, err := s.SendNotification(ctx, previousTechnicianID, domain.NotificationJobReassigned,
				"Job Reassigned",
				fmt.Sprintf("%q has been reassigned to another technician", job.Title),
				s.jobOptions(job, email.Data{"Assigned": false}))
			if err != nil {
				s.logger.Warn("reassignment notice to previous technician failed",
					zap.String("job_id", job.ID),
					zap.String("user_id", previousTechnicianID),
					zap.Error(err))
			}
			return nil
		})
	}

	if newTechnicianID != "" {
		g.Go(func() error {
			_, err := s.SendNotification(ctx, newTechnicianID, domain.NotificationJobReassigned,
				"Job Assigned To You",
				fmt.Sprintf("You have been assigned to %q", job.Title),
				s.jobOptions(job, email.Data{"Assigned": true}))
			if err != nil {
				s.logger.Warn("reassignment notice to new technician failed",
					zap.String("job_id", job.ID),
					zap.String("user_id", newTechnicianID),
					zap.Error(err))
			}
			return nil
		})
	}

	_ = g.Wait()
}

// NotifyInspectionReminder reminds a technician of an upcoming inspection.
func (s *NotificationService) NotifyInspectionReminder(ctx context.Context, technicianID string, inspection domain.InspectionRef) (*domain.Notification, error) {
	return s.SendNotification(ctx, technicianID, domain.NotificationInspectionReminder,
		"Inspection Reminder",
		fmt.Sprintf("%q at %s is scheduled for %s", inspection.Title, inspection.PropertyName, s.formatDate(inspection.ScheduledDate)),
		s.inspectionOptions(inspection, email.Data{}))
}

// NotifyInspectionOverdue tells the assigned technician an inspection is late.
func (s *NotificationService) NotifyInspectionOverdue(ctx context.Context, technicianID string, inspection domain.InspectionRef, daysOverdue int) (*domain.Notification, error) {
	return s.SendNotification(ctx, technicianID, domain.NotificationInspectionOverdue,
		"Inspection Overdue",
		fmt.Sprintf("%q at %s is %d day(s) overdue", inspection.Title, inspection.PropertyName, daysOverdue),
		s.inspectionOptions(inspection, email.Data{"DaysOverdue": daysOverdue}))
}

// NotifyInspectionCompleted tells the manager an inspection was completed.
func (s *NotificationService) NotifyInspectionCompleted(ctx context.Context, managerID string, inspection domain.InspectionRef, technicianName string, requiresApproval bool) (*domain.Notification, error) {
	message := fmt.Sprintf("%s completed %q", technicianName, inspection.Title)
	if requiresApproval {
		message += " and it is awaiting your approval"
	}
	return s.SendNotification(ctx, managerID, domain.NotificationInspectionCompleted,
		"Inspection Completed",
		message,
		s.inspectionOptions(inspection, email.Data{
			"TechnicianName":   technicianName,
			"RequiresApproval": requiresApproval,
		}))
}

// NotifyInspectionApproved tells the technician their inspection was approved.
func (s *NotificationService) NotifyInspectionApproved(ctx context.Context, technicianID string, inspection domain.InspectionRef, approverName string) (*domain.Notification, error) {
	return s.SendNotification(ctx, technicianID, domain.NotificationInspectionApproved,
		"Inspection Approved",
		fmt.Sprintf("%q was approved", inspection.Title),
		s.inspectionOptions(inspection, email.Data{"ApproverName": approverName}))
}

// NotifyInspectionRejected tells the technician their inspection needs changes.
func (s *NotificationService) NotifyInspectionRejected(ctx context.Context, technicianID string, inspection domain.InspectionRef, reason string) (*domain.Notification, error) {
	message := fmt.Sprintf("%q needs changes", inspection.Title)
	if reason != "" {
		message += ": " + reason
	}
	return s.SendNotification(ctx, technicianID, domain.NotificationInspectionRejected,
		"Inspection Rejected",
		message,
		s.inspectionOptions(inspection, email.Data{"Reason": reason}))
}

// NotifyServiceRequestUpdate tells the requester about a status change.
func (s *NotificationService) NotifyServiceRequestUpdate(ctx context.Context, userID string, request domain.ServiceRequestRef, note string) (*domain.Notification, error) {
	return s.SendNotification(ctx, userID, domain.NotificationServiceRequestUpdate,
		"Service Request Updated",
		fmt.Sprintf("%q is now %s", request.Title, request.Status),
		s.requestOptions(request, email.Data{"Status": request.Status, "Note": note}))
}

// NotifyOwnerCostEstimateReady asks the owner to review a cost estimate.
func (s *NotificationService) NotifyOwnerCostEstimateReady(ctx context.Context, ownerID string, request domain.ServiceRequestRef, estimatedCost string) (*domain.Notification, error) {
	return s.SendNotification(ctx, ownerID, domain.NotificationOwnerCostEstimateReady,
		"Cost Estimate Ready",
		fmt.Sprintf("A cost estimate of %s is ready for %q", estimatedCost, request.Title),
		s.requestOptions(request, email.Data{"EstimatedCost": estimatedCost}))
}

// NotifyManagerOwnerApproved tells the manager the owner approved a request.
func (s *NotificationService) NotifyManagerOwnerApproved(ctx context.Context, managerID string, request domain.ServiceRequestRef, ownerName string) (*domain.Notification, error) {
	return s.SendNotification(ctx, managerID, domain.NotificationServiceRequestApproved,
		"Owner Approved Request",
		fmt.Sprintf("%s approved %q", ownerName, request.Title),
		s.requestOptions(request, email.Data{"OwnerName": ownerName}))
}

// NotifyManagerOwnerRejected tells the manager the owner rejected a request.
func (s *NotificationService) NotifyManagerOwnerRejected(ctx context.Context, managerID string, request domain.ServiceRequestRef, ownerName, reason string) (*domain.Notification, error) {
	message := fmt.Sprintf("%s rejected %q", ownerName, request.Title)
	if reason != "" {
		message += ": " + reason
	}
	return s.SendNotification(ctx, managerID, domain.NotificationServiceRequestRejected,
		"Owner Rejected Request",
		message,
		s.requestOptions(request, email.Data{"OwnerName": ownerName, "Reason": reason}))
}

// NotifyOwnerJobCreated tells the owner a job was opened on their property.
func (s *NotificationService) NotifyOwnerJobCreated(ctx context.Context, ownerID string, job domain.JobRef) (*domain.Notification, error) {
	return s.SendNotification(ctx, ownerID, domain.NotificationOwnerJobCreated,
		"New Job On Your Property",
		fmt.Sprintf("%q was created at %s", job.Title, job.PropertyName),
		s.jobOptions(job, email.Data{}))
}
