package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/property-notifier/internal/domain"
	"github.com/spec-kit/property-notifier/internal/repository"
)

// DefaultReminderDays are the day offsets used when none are configured.
var DefaultReminderDays = []int{7, 3, 1}

// ReminderSent records one reminder that was delivered.
type ReminderSent struct {
	UserID        string `json:"user_id"`
	Email         string `json:"email"`
	DaysRemaining int    `json:"days_remaining"`
}

// ExpireSummary reports one expiration sweep.
type ExpireSummary struct {
	Expired int      `json:"expired"`
	UserIDs []string `json:"user_ids"`
}

// TrialNotifier is the part of NotificationService used by the trial runs.
type TrialNotifier interface {
	SendTrialExpiringReminder(ctx context.Context, user domain.User, daysRemaining int) error
}

// TrialService reminds trialing managers before their trial ends and
// suspends them once it has.
type TrialService struct {
	users        repository.UserRepository
	notifier     TrialNotifier
	ledger       repository.ReminderLedger
	logger       *zap.Logger
	location     *time.Location
	reminderDays []int
	now          func() time.Time
}

// TrialDependencies bundles collaborators for the trial service.
type TrialDependencies struct {
	UserRepo repository.UserRepository
	Notifier TrialNotifier
	// Ledger suppresses duplicate reminders on the same day. Nil disables it.
	Ledger       repository.ReminderLedger
	Logger       *zap.Logger
	Location     *time.Location
	ReminderDays []int
}

// NewTrialService creates the service.
func NewTrialService(deps TrialDependencies) *TrialService {
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	days := deps.ReminderDays
	if len(days) == 0 {
		days = DefaultReminderDays
	}
	return &TrialService{
		users:        deps.UserRepo,
		notifier:     deps.Notifier,
		ledger:       deps.Ledger,
		logger:       deps.Logger,
		location:     loc,
		reminderDays: days,
		now:          time.Now,
	}
}

// CheckAndSendTrialReminders emails every trialing manager whose trial ends
// on the calendar day reminderDays from today. Empty reminderDays uses the
// configured offsets.
func (s *TrialService) CheckAndSendTrialReminders(ctx context.Context, reminderDays []int) ([]ReminderSent, error) {
	if len(reminderDays) == 0 {
		reminderDays = s.reminderDays
	}

	today := startOfDay(s.now(), s.location)
	sent := []ReminderSent{}
	failures := 0

	for _, days := range reminderDays {
		from := today.AddDate(0, 0, days)
		to := from.AddDate(0, 0, 1)

		users, err := s.users.ListTrialsEndingBetween(ctx, from, to)
		if err != nil {
			s.logger.Error("failed to load trials for reminder",
				zap.Int("days_remaining", days),
				zap.Error(err),
				zap.Stack("stack"))
			return sent, fmt.Errorf("list trials ending in %d days: %w", days, err)
		}

		for _, user := range users {
			if !s.claim(ctx, user.ID, days, today) {
				continue
			}

			if err := s.notifier.SendTrialExpiringReminder(ctx, user, days); err != nil {
				failures++
				s.logger.Error("failed to send trial reminder",
					zap.String("user_id", user.ID),
					zap.Int("days_remaining", days),
					zap.Error(err))
				s.release(ctx, user.ID, days, today)
				continue
			}
			sent = append(sent, ReminderSent{UserID: user.ID, Email: user.Email, DaysRemaining: days})
		}
	}

	s.logger.Info("trial reminders processed",
		zap.Ints("reminder_days", reminderDays),
		zap.Int("sent", len(sent)),
		zap.Int("failed", failures))
	return sent, nil
}

// claim reports whether the reminder should be sent. Ledger errors do not
// block sending.
func (s *TrialService) claim(ctx context.Context, userID string, days int, today time.Time) bool {
	if s.ledger == nil {
		return true
	}
	first, err := s.ledger.MarkSent(ctx, userID, days, today)
	if err != nil {
		s.logger.Warn("reminder ledger unavailable, sending without duplicate check",
			zap.String("user_id", userID),
			zap.Error(err))
		return true
	}
	if !first {
		s.logger.Debug("trial reminder already sent today",
			zap.String("user_id", userID),
			zap.Int("days_remaining", days))
	}
	return first
}

func (s *TrialService) release(ctx context.Context, userID string, days int, today time.Time) {
	if s.ledger == nil {
		return
	}
	if err := s.ledger.Forget(ctx, userID, days, today); err != nil {
		s.logger.Warn("failed to clear reminder ledger entry",
			zap.String("user_id", userID),
			zap.Error(err))
	}
}

// ExpireTrials suspends every trialing manager whose trial has ended, in a
// single update.
func (s *TrialService) ExpireTrials(ctx context.Context) (ExpireSummary, error) {
	now := s.now()

	expired, err := s.users.ListExpiredTrials(ctx, now)
	if err != nil {
		s.logger.Error("failed to load expired trials", zap.Error(err), zap.Stack("stack"))
		return ExpireSummary{}, fmt.Errorf("list expired trials: %w", err)
	}
	if len(expired) == 0 {
		s.logger.Info("no expired trials")
		return ExpireSummary{UserIDs: []string{}}, nil
	}

	ids := make([]string, 0, len(expired))
	for _, user := range expired {
		ids = append(ids, user.ID)
	}

	suspended, err := s.users.SuspendTrials(ctx, ids)
	if err != nil {
		s.logger.Error("failed to suspend expired trials",
			zap.Int("candidates", len(ids)),
			zap.Error(err),
			zap.Stack("stack"))
		return ExpireSummary{}, fmt.Errorf("suspend expired trials: %w", err)
	}
	if suspended == nil {
		suspended = []string{}
	}

	s.logger.Info("expired trials suspended",
		zap.Int("expired", len(suspended)),
		zap.Strings("user_ids", suspended))
	return ExpireSummary{Expired: len(suspended), UserIDs: suspended}, nil
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
