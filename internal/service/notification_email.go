package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spec-kit/property-notifier/internal/domain"
	"github.com/spec-kit/property-notifier/internal/email"
)

// The helpers below send email without an in-app record. They return the
// send error so batch callers can count successes.

// SendTrialExpiringReminder emails a trialing manager about the end of the trial.
func (s *NotificationService) SendTrialExpiringReminder(ctx context.Context, user domain.User, daysRemaining int) error {
	if user.Email == "" {
		return fmt.Errorf("user %s has no email address", user.ID)
	}
	data := email.Data{
		"DaysRemaining": daysRemaining,
		"Link":          s.link("/settings/billing"),
		"LinkLabel":     "Choose a plan",
	}
	if user.TrialEndDate != nil {
		data["TrialEndDate"] = s.formatDate(*user.TrialEndDate)
	}
	return s.deliver(ctx, user.Email, user.Name, email.TemplateTrialExpiring, data, map[string]string{
		"userId":        user.ID,
		"emailType":     "trial_expiring",
		"daysRemaining": strconv.Itoa(daysRemaining),
	})
}

// SendWelcomeEmail greets a newly registered user.
func (s *NotificationService) SendWelcomeEmail(ctx context.Context, user domain.User) error {
	if user.Email == "" {
		return fmt.Errorf("user %s has no email address", user.ID)
	}
	data := email.Data{
		"ProductName": s.productName,
		"Link":        s.link("/dashboard"),
		"LinkLabel":   "Open dashboard",
	}
	if user.TrialEndDate != nil {
		data["TrialEndDate"] = s.formatDate(*user.TrialEndDate)
	}
	return s.deliver(ctx, user.Email, user.Name, email.TemplateWelcome, data, map[string]string{
		"userId":    user.ID,
		"emailType": "welcome",
	})
}

// SendOverdueDigest emails a manager one summary of all their overdue inspections.
func (s *NotificationService) SendOverdueDigest(ctx context.Context, manager domain.UserSummary, items []email.DigestItem) error {
	if manager.Email == "" {
		return fmt.Errorf("manager %s has no email address", manager.ID)
	}
	data := email.Data{
		"Inspections": items,
		"Link":        s.link("/inspections?status=OVERDUE"),
		"LinkLabel":   "Review inspections",
	}
	return s.deliver(ctx, manager.Email, manager.Name, email.TemplateOverdueInspectionDigest, data, map[string]string{
		"userId":    manager.ID,
		"emailType": "overdue_inspection_digest",
		"count":     strconv.Itoa(len(items)),
	})
}
