package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ReminderLedger records which trial reminders went out on a given day so a
// rerun on the same day does not email the user twice.
type ReminderLedger interface {
	// MarkSent records the reminder and reports whether it was not recorded yet.
	MarkSent(ctx context.Context, userID string, daysRemaining int, day time.Time) (bool, error)
	// Forget removes a record so a failed send can be retried.
	Forget(ctx context.Context, userID string, daysRemaining int, day time.Time) error
}

type redisReminderLedger struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisReminderLedger stores reminder records in Redis for 48 hours.
func NewRedisReminderLedger(client *redis.Client) ReminderLedger {
	return &redisReminderLedger{client: client, ttl: 48 * time.Hour}
}

func reminderKey(userID string, daysRemaining int, day time.Time) string {
	return fmt.Sprintf("trial-reminder:%s:%d:%s", userID, daysRemaining, day.Format("2006-01-02"))
}

func (l *redisReminderLedger) MarkSent(ctx context.Context, userID string, daysRemaining int, day time.Time) (bool, error) {
	return l.client.SetNX(ctx, reminderKey(userID, daysRemaining, day), time.Now().UTC().Format(time.RFC3339), l.ttl).Result()
}

func (l *redisReminderLedger) Forget(ctx context.Context, userID string, daysRemaining int, day time.Time) error {
	return l.client.Del(ctx, reminderKey(userID, daysRemaining, day)).Err()
}
