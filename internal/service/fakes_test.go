package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/property-notifier/internal/domain"
	"github.com/spec-kit/property-notifier/internal/email"
)

type fakeNotificationRepo struct {
	mu      sync.Mutex
	created []domain.Notification
	failFor map[string]error
}

func (r *fakeNotificationRepo) Create(_ context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failFor[n.UserID]; err != nil {
		return err
	}
	n.ID = fmt.Sprintf("n-%d", len(r.created)+1)
	n.CreatedAt = time.Now()
	r.created = append(r.created, *n)
	return nil
}

func (r *fakeNotificationRepo) ListByUser(_ context.Context, userID string, limit, offset int) ([]domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Notification
	for _, n := range r.created {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) CountUnread(_ context.Context, userID string) (int, error) {
	items, _ := r.ListByUser(context.Background(), userID, 0, 0)
	count := 0
	for _, n := range items {
		if !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.created {
		if r.created[i].ID == id && r.created[i].UserID == userID {
			r.created[i].IsRead = true
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *fakeNotificationRepo) forUser(userID string) []domain.Notification {
	items, _ := r.ListByUser(context.Background(), userID, 0, 0)
	return items
}

// fakeUserRepo evaluates the trial predicates in memory.
type fakeUserRepo struct {
	mu           sync.Mutex
	users        []domain.User
	lookups      int
	listErr      error
	suspendCalls int
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups++
	for i := range r.users {
		if r.users[i].ID == id {
			u := r.users[i]
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) trialing(match func(end time.Time) bool) []domain.User {
	var out []domain.User
	for _, u := range r.users {
		if u.Role != domain.UserRolePropertyManager || u.SubscriptionStatus != domain.SubscriptionStatusTrial || u.TrialEndDate == nil {
			continue
		}
		if match(*u.TrialEndDate) {
			out = append(out, u)
		}
	}
	return out
}

func (r *fakeUserRepo) ListTrialsEndingBetween(_ context.Context, from, to time.Time) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.trialing(func(end time.Time) bool {
		return !end.Before(from) && end.Before(to)
	}), nil
}

func (r *fakeUserRepo) ListExpiredTrials(_ context.Context, now time.Time) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.trialing(func(end time.Time) bool { return !end.After(now) }), nil
}

func (r *fakeUserRepo) SuspendTrials(_ context.Context, ids []string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.suspendCalls++
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []string
	for i := range r.users {
		if want[r.users[i].ID] && r.users[i].SubscriptionStatus == domain.SubscriptionStatusTrial {
			r.users[i].SubscriptionStatus = domain.SubscriptionStatusSuspended
			out = append(out, r.users[i].ID)
		}
	}
	return out, nil
}

type fakeEmitter struct {
	mu       sync.Mutex
	err      error
	received map[string]int
}

func (e *fakeEmitter) EmitToUser(userID string, _ any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.received == nil {
		e.received = map[string]int{}
	}
	e.received[userID]++
	return e.err
}

type fakeSender struct {
	mu      sync.Mutex
	sent    []email.Message
	failFor map[string]error
}

func (s *fakeSender) Send(_ context.Context, msg email.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failFor[msg.To]; err != nil {
		return err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func (s *fakeSender) messages() []email.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]email.Message(nil), s.sent...)
}

var errProviderDown = errors.New("email provider unavailable")

func ptrTime(t time.Time) *time.Time { return &t }
