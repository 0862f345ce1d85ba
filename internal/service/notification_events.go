package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/property-notifier/internal/events"
)

// RegisterHandlers subscribes the notification helpers to domain events.
func (s *NotificationService) RegisterHandlers() {
	if s.dispatcher == nil {
		return
	}
	s.dispatcher.Subscribe(events.EventJobAssigned, s.handleJobAssigned)
	s.dispatcher.Subscribe(events.EventJobStarted, s.handleJobStarted)
	s.dispatcher.Subscribe(events.EventJobCompleted, s.handleJobCompleted)
	s.dispatcher.Subscribe(events.EventJobReassigned, s.handleJobReassigned)
	s.dispatcher.Subscribe(events.EventOwnerJobCreated, s.handleOwnerJobCreated)
	s.dispatcher.Subscribe(events.EventInspectionReminder, s.handleInspectionReminder)
	s.dispatcher.Subscribe(events.EventInspectionCompleted, s.handleInspectionCompleted)
	s.dispatcher.Subscribe(events.EventInspectionApproved, s.handleInspectionApproved)
	s.dispatcher.Subscribe(events.EventInspectionRejected, s.handleInspectionRejected)
	s.dispatcher.Subscribe(events.EventServiceRequestUpdated, s.handleServiceRequestUpdated)
	s.dispatcher.Subscribe(events.EventCostEstimateReady, s.handleCostEstimateReady)
	s.dispatcher.Subscribe(events.EventOwnerApproved, s.handleOwnerApproved)
	s.dispatcher.Subscribe(events.EventOwnerRejected, s.handleOwnerRejected)
	s.dispatcher.Subscribe(events.EventUserRegistered, s.handleUserRegistered)
}

func (s *NotificationService) logEvent(event events.Event) {
	s.logger.Info("event received",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.String("actor_id", event.Actor.UserID))
}

func (s *NotificationService) handleJobAssigned(ctx context.Context, event events.Event) error {
	s.logEvent(event)
	var p events.JobAssignedPayload
	if err := events.DecodePayload(event, &p); err != nil {
		return err
	}
	_, err := s.NotifyJobAssigned(ctx, p.TechnicianID, p.Job)
	return err
}

func (s *NotificationService) handleJobStarted(ctx context.Context, event events.Event) error {
	s.logEvent(event)
	var p events.JobProgressPayload
	if err := events.DecodePayload(event, &p); err != nil {
		return err
	}
	_, err := s.NotifyJobStarted(ctx, p.ManagerID, p.Job, p.TechnicianName)
	return err
}

func (s *NotificationService) handleJobCompleted(ctx context.Context, event events.Event) error {
	s.logEvent(event)
	var p events.JobProgressPayload
	if err := events.DecodePayload(event, &p); err != nil {
		return err
	}
	_, err := s.NotifyJobCompleted(ctx, p.ManagerID, p.Job, p.TechnicianName)
	return err
}

func (s *NotificationService) handleJobReassigned(ctx context.Context, event events.Event) error {
	s.logEvent(event)
	var p events.JobReassignedPayload
	if err := events.DecodePayload(event, &p); err != nil {
		return err
	}
	s.NotifyJobReassigned(ctx, p.PreviousTechnicianID, p.NewTechnicianID, p.Job)
	return nil
}

func (s *NotificationService) handleOwnerJobCreated(ctx context.Context, event events.Event) error {
	s.logEvent(event)
	var p events.OwnerJobCreatedPayload
	if err := events.DecodePayload(event, &p); err != nil {
		return err
	}
	_, err := s.NotifyOwnerJobCreated(ctx, p.OwnerID, p.Job)
	return err
}

func (s *NotificationService) handleInspectionReminder(ctx context.Context, event events.Event) error {
	s.logEvent(event)
	var p events.InspectionReminderPayload
	if err := events.DecodePayload(event, &p); err != nil {
		return err
	}
	_, err := s.NotifyInspectionReminder(ctx, p.TechnicianID, p.Inspection)
	return err
}

func (s *NotificationService) handleInspectionCompleted(ctx context.Context, event events.Event) error {
	s.logEvent(event)
	var p events.InspectionCompletedPayload
	if err := events.DecodePayload(event, &p); err != nil {
		return err
	}
	_, err := s.NotifyInspectionCompleted(ctx, p.ManagerID, p.Inspection, p.TechnicianName, p.RequiresApproval)
	return err
}

func (s *NotificationService) handleInspectionApproved(ctx context.Context, event events.Event) error {
	s.logEvent(event)
	var p events.InspectionReviewedPayload
	if err := events.DecodePayload(event, &p); err != nil {
		return err
	}
	_, err := s.NotifyInspectionApproved(ctx, p.TechnicianID, p.Inspection, p.ReviewerName)
	return err
}

func (s *NotificationService) handleInspectionRejected(ctx context.Context, event events.Event) error {
	s.logEvent(event)
	var p events.InspectionReviewedPayload
	if err := events.DecodePayload(event, &p); err != nil {
		return err
	}
	_, err := s.NotifyInspectionRejected(ctx, p.TechnicianID, p.Inspection, p.Reason)
	return err
}

func (s *NotificationService) handleServiceRequestUpdated(ctx context.Context, event events.Event) error {
	s.logEvent(event)
	var p events.ServiceRequestUpdatedPayload
	if err := events.DecodePayload(event, &p); err != nil {
		return err
	}
	_, err := s.NotifyServiceRequestUpdate(ctx, p.RequesterID, p.Request, p.Note)
	return err
}

func (s *NotificationService) handleCostEstimateReady(ctx context.Context, event events.Event) error {
	s.logEvent(event)
	var p events.CostEstimateReadyPayload
	if err := events.DecodePayload(event, &p); err != nil {
		return err
	}
	_, err := s.NotifyOwnerCostEstimateReady(ctx, p.OwnerID, p.Request, p.EstimatedCost)
	return err
}

func (s *NotificationService) handleOwnerApproved(ctx context.Context, event events.Event) error {
	s.logEvent(event)
	var p events.OwnerDecisionPayload
	if err := events.DecodePayload(event, &p); err != nil {
		return err
	}
	_, err := s.NotifyManagerOwnerApproved(ctx, p.ManagerID, p.Request, p.OwnerName)
	return err
}

func (s *NotificationService) handleOwnerRejected(ctx context.Context, event events.Event) error {
	s.logEvent(event)
	var p events.OwnerDecisionPayload
	if err := events.DecodePayload(event, &p); err != nil {
		return err
	}
	_, err := s.NotifyManagerOwnerRejected(ctx, p.ManagerID, p.Request, p.OwnerName, p.Reason)
	return err
}

func (s *NotificationService) handleUserRegistered(ctx context.Context, event events.Event) error {
	s.logEvent(event)
	var p events.UserRegisteredPayload
	if err := events.DecodePayload(event, &p); err != nil {
		return err
	}
	user, err := s.users.GetByID(ctx, p.UserID)
	if err != nil {
		return fmt.Errorf("load registered user %s: %w", p.UserID, err)
	}
	return s.SendWelcomeEmail(ctx, *user)
}
