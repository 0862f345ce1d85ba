package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/spec-kit/property-notifier/internal/domain"
	"github.com/spec-kit/property-notifier/internal/email"
	"github.com/spec-kit/property-notifier/internal/events"
	"github.com/spec-kit/property-notifier/internal/observability"
	"github.com/spec-kit/property-notifier/internal/realtime"
)

type facadeFixture struct {
	svc      *NotificationService
	repo     *fakeNotificationRepo
	users    *fakeUserRepo
	emitter  *fakeEmitter
	sender   *fakeSender
	metrics  *observability.Metrics
	dispatch events.Dispatcher
}

func newFacade(t *testing.T) *facadeFixture {
	t.Helper()
	renderer, err := email.NewRenderer()
	require.NoError(t, err)

	f := &facadeFixture{
		repo: &fakeNotificationRepo{},
		users: &fakeUserRepo{users: []domain.User{
			{ID: "tech-1", Name: "Tina Tech", Email: "tina@example.com", Role: domain.UserRoleTechnician},
			{ID: "tech-2", Name: "Theo Tech", Email: "theo@example.com", Role: domain.UserRoleTechnician},
			{ID: "mgr-1", Name: "Mona Manager", Email: "mona@example.com", Role: domain.UserRolePropertyManager},
			{ID: "no-mail", Name: "Quiet", Role: domain.UserRoleTenant},
		}},
		emitter:  &fakeEmitter{},
		sender:   &fakeSender{},
		metrics:  observability.NewMetrics(),
		dispatch: events.NewInMemoryDispatcher(zaptest.NewLogger(t)),
	}
	f.svc = NewNotificationService(NotificationDependencies{
		NotificationRepo: f.repo,
		UserRepo:         f.users,
		Emitter:          f.emitter,
		Renderer:         renderer,
		Sender:           f.sender,
		Dispatcher:       f.dispatch,
		Metrics:          f.metrics,
		Logger:           zaptest.NewLogger(t),
		FrontendURL:      "https://app.example.com",
		ProductName:      "PropertyPro",
	})
	return f
}

func TestSendNotificationReturnsRecordWhenPushAndEmailFail(t *testing.T) {
	f := newFacade(t)
	f.emitter.err = errors.New("socket closed")
	f.sender.failFor = map[string]error{"tina@example.com": errProviderDown}

	n, err := f.svc.SendNotification(context.Background(), "tech-1", domain.NotificationJobAssigned,
		"New Job Assigned", "You have a job", SendOptions{
			EntityType: domain.EntityJob,
			EntityID:   "job-9",
			EmailData:  email.Data{"JobTitle": "Fix sink"},
		})

	require.NoError(t, err)
	require.NotNil(t, n)
	assert.NotEmpty(t, n.ID)
	assert.Equal(t, "tech-1", n.UserID)
	assert.Equal(t, domain.NotificationJobAssigned, n.Type)
	assert.Equal(t, "New Job Assigned", n.Title)
	assert.Equal(t, "You have a job", n.Message)
	require.NotNil(t, n.EntityType)
	assert.Equal(t, domain.EntityJob, *n.EntityType)
	assert.Equal(t, "job-9", *n.EntityID)

	assert.Len(t, f.repo.forUser("tech-1"), 1)
	assert.Equal(t, 1, f.emitter.received["tech-1"])
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Dispatches("realtime", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Dispatches("email", "error")))
}

func TestSendNotificationStoreFailurePropagates(t *testing.T) {
	f := newFacade(t)
	f.repo.failFor = map[string]error{"tech-1": errors.New("db down")}

	n, err := f.svc.SendNotification(context.Background(), "tech-1", domain.NotificationJobAssigned, "t", "m", SendOptions{})

	require.Error(t, err)
	assert.Nil(t, n)
	assert.Empty(t, f.emitter.received)
	assert.Empty(t, f.sender.messages())
}

func TestSendNotificationEmailsWithMetadata(t *testing.T) {
	f := newFacade(t)

	_, err := f.svc.NotifyJobAssigned(context.Background(), "tech-1", domain.JobRef{
		ID: "job-1", Title: "Fix sink", PropertyName: "Elm Court", Priority: "HIGH",
	})
	require.NoError(t, err)

	msgs := f.sender.messages()
	require.Len(t, msgs, 1)
	msg := msgs[0]
	assert.Equal(t, "tina@example.com", msg.To)
	assert.Equal(t, "New job assigned: Fix sink", msg.Subject)
	assert.Contains(t, msg.HTML, "Hi Tina Tech")
	assert.Contains(t, msg.HTML, "https://app.example.com/jobs/job-1")
	assert.Contains(t, msg.HTML, "Priority: HIGH")
	assert.Equal(t, map[string]string{
		"userId":           "tech-1",
		"notificationType": string(domain.NotificationJobAssigned),
		"entityType":       "job",
		"entityId":         "job-1",
	}, msg.Metadata)
}

func TestSendNotificationSkipsEmail(t *testing.T) {
	f := newFacade(t)
	ctx := context.Background()

	_, err := f.svc.SendNotification(ctx, "tech-1", domain.NotificationJobAssigned, "t", "m", SendOptions{SkipEmail: true})
	require.NoError(t, err)

	// In-app only type: no template, no user lookup.
	_, err = f.svc.SendNotification(ctx, "tech-1", domain.NotificationSystem, "Maintenance", "Tonight", SendOptions{})
	require.NoError(t, err)

	// No address on file.
	_, err = f.svc.SendNotification(ctx, "no-mail", domain.NotificationServiceRequestUpdate, "t", "m", SendOptions{})
	require.NoError(t, err)

	assert.Empty(t, f.sender.messages())
	assert.Equal(t, 1, f.users.lookups)
	assert.Len(t, f.repo.created, 3)
}

func TestSendNotificationOfflineUserIsNotAFailure(t *testing.T) {
	f := newFacade(t)
	f.emitter.err = realtime.ErrNoSubscribers

	_, err := f.svc.SendNotification(context.Background(), "tech-1", domain.NotificationSystem, "t", "m", SendOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0.0, testutil.ToFloat64(f.metrics.Dispatches("realtime", "error")))
}

// barrierEmitter only lets a push through once both pushes are in flight.
type barrierEmitter struct {
	arrived sync.WaitGroup
	mu      sync.Mutex
	users   []string
	timeout bool
}

func (b *barrierEmitter) EmitToUser(userID string, _ any) error {
	b.arrived.Done()
	done := make(chan struct{})
	go func() {
		b.arrived.Wait()
		close(done)
	}()

	b.mu.Lock()
	defer b.mu.Unlock()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		b.timeout = true
	}
	b.users = append(b.users, userID)
	return nil
}

func TestNotifyJobReassignedSendsBothConcurrently(t *testing.T) {
	f := newFacade(t)
	emitter := &barrierEmitter{}
	emitter.arrived.Add(2)
	f.svc.emitter = emitter

	f.svc.NotifyJobReassigned(context.Background(), "tech-1", "tech-2", domain.JobRef{ID: "job-1", Title: "Fix sink"})

	assert.False(t, emitter.timeout, "sends ran sequentially")
	assert.ElementsMatch(t, []string{"tech-1", "tech-2"}, emitter.users)

	subjects := map[string]string{}
	for _, msg := range f.sender.messages() {
		subjects[msg.To] = msg.HTML
	}
	assert.Contains(t, subjects["tina@example.com"], "has been reassigned to another technician")
	assert.Contains(t, subjects["theo@example.com"], "You have been assigned to")
}

func TestNotifyJobReassignedToleratesOneFailure(t *testing.T) {
	f := newFacade(t)
	f.repo.failFor = map[string]error{"tech-1": errors.New("db down")}

	f.svc.NotifyJobReassigned(context.Background(), "tech-1", "tech-2", domain.JobRef{ID: "job-1", Title: "Fix sink"})

	assert.Empty(t, f.repo.forUser("tech-1"))
	require.Len(t, f.repo.forUser("tech-2"), 1)
	assert.Equal(t, domain.NotificationJobReassigned, f.repo.forUser("tech-2")[0].Type)
}

func TestNotificationHelpers(t *testing.T) {
	f := newFacade(t)
	ctx := context.Background()
	inspection := domain.InspectionRef{
		ID: "insp-1", Title: "Annual smoke check", PropertyName: "Elm Court", UnitNumber: "4B",
		ScheduledDate: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
	}
	request := domain.ServiceRequestRef{ID: "sr-1", Title: "Leaky roof", PropertyName: "Elm Court", Status: "IN_PROGRESS"}
	job := domain.JobRef{ID: "job-1", Title: "Fix sink", PropertyName: "Elm Court"}

	cases := []struct {
		name    string
		call    func() (*domain.Notification, error)
		typ     domain.NotificationType
		entity  domain.EntityType
		subject string
	}{
		{"job completed", func() (*domain.Notification, error) { return f.svc.NotifyJobCompleted(ctx, "mgr-1", job, "Tina") }, domain.NotificationJobCompleted, domain.EntityJob, "Job completed: Fix sink"},
		{"job started", func() (*domain.Notification, error) { return f.svc.NotifyJobStarted(ctx, "mgr-1", job, "Tina") }, domain.NotificationJobStarted, domain.EntityJob, "Work started: Fix sink"},
		{"owner job created", func() (*domain.Notification, error) { return f.svc.NotifyOwnerJobCreated(ctx, "mgr-1", job) }, domain.NotificationOwnerJobCreated, domain.EntityJob, "New job at Elm Court: Fix sink"},
		{"inspection reminder", func() (*domain.Notification, error) { return f.svc.NotifyInspectionReminder(ctx, "tech-1", inspection) }, domain.NotificationInspectionReminder, domain.EntityInspection, "Upcoming inspection: Annual smoke check"},
		{"inspection overdue", func() (*domain.Notification, error) { return f.svc.NotifyInspectionOverdue(ctx, "tech-1", inspection, 3) }, domain.NotificationInspectionOverdue, domain.EntityInspection, "Inspection overdue: Annual smoke check"},
		{"inspection completed", func() (*domain.Notification, error) {
			return f.svc.NotifyInspectionCompleted(ctx, "mgr-1", inspection, "Tina", true)
		}, domain.NotificationInspectionCompleted, domain.EntityInspection, "Inspection completed: Annual smoke check"},
		{"inspection approved", func() (*domain.Notification, error) { return f.svc.NotifyInspectionApproved(ctx, "tech-1", inspection, "Mona") }, domain.NotificationInspectionApproved, domain.EntityInspection, "Inspection approved: Annual smoke check"},
		{"inspection rejected", func() (*domain.Notification, error) { return f.svc.NotifyInspectionRejected(ctx, "tech-1", inspection, "Photos missing") }, domain.NotificationInspectionRejected, domain.EntityInspection, "Inspection needs changes: Annual smoke check"},
		{"service request update", func() (*domain.Notification, error) { return f.svc.NotifyServiceRequestUpdate(ctx, "mgr-1", request, "") }, domain.NotificationServiceRequestUpdate, domain.EntityServiceRequest, "Service request update: Leaky roof"},
		{"cost estimate", func() (*domain.Notification, error) { return f.svc.NotifyOwnerCostEstimateReady(ctx, "mgr-1", request, "$450.00") }, domain.NotificationOwnerCostEstimateReady, domain.EntityServiceRequest, "Cost estimate ready for review: Leaky roof"},
		{"owner approved", func() (*domain.Notification, error) { return f.svc.NotifyManagerOwnerApproved(ctx, "mgr-1", request, "Olga") }, domain.NotificationServiceRequestApproved, domain.EntityServiceRequest, "Owner approved: Leaky roof"},
		{"owner rejected", func() (*domain.Notification, error) { return f.svc.NotifyManagerOwnerRejected(ctx, "mgr-1", request, "Olga", "Too expensive") }, domain.NotificationServiceRequestRejected, domain.EntityServiceRequest, "Owner rejected: Leaky roof"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			before := len(f.sender.messages())
			n, err := tc.call()
			require.NoError(t, err)
			assert.Equal(t, tc.typ, n.Type)
			require.NotNil(t, n.EntityType)
			assert.Equal(t, tc.entity, *n.EntityType)
			assert.NotEmpty(t, n.Title)
			assert.NotEmpty(t, n.Message)

			msgs := f.sender.messages()
			require.Len(t, msgs, before+1)
			assert.Equal(t, tc.subject, msgs[before].Subject)
		})
	}
}

func TestEmailOnlyHelpersReturnSendErrors(t *testing.T) {
	f := newFacade(t)
	ctx := context.Background()
	end := time.Date(2026, 6, 4, 15, 0, 0, 0, time.UTC)
	user := domain.User{ID: "mgr-1", Name: "Mona Manager", Email: "mona@example.com", TrialEndDate: &end}

	require.NoError(t, f.svc.SendTrialExpiringReminder(ctx, user, 3))
	require.NoError(t, f.svc.SendWelcomeEmail(ctx, user))

	msgs := f.sender.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "Your trial ends in 3 days", msgs[0].Subject)
	assert.Contains(t, msgs[0].HTML, "Jun 4, 2026")
	assert.Equal(t, "3", msgs[0].Metadata["daysRemaining"])
	assert.Equal(t, "Welcome to PropertyPro", msgs[1].Subject)
	assert.Empty(t, f.repo.created, "email-only helpers must not create in-app records")

	f.sender.failFor = map[string]error{"mona@example.com": errProviderDown}
	assert.ErrorIs(t, f.svc.SendTrialExpiringReminder(ctx, user, 1), errProviderDown)
	assert.ErrorIs(t, f.svc.SendOverdueDigest(ctx, domain.UserSummary{ID: "mgr-1", Email: "mona@example.com"}, nil), errProviderDown)
	assert.Error(t, f.svc.SendWelcomeEmail(ctx, domain.User{ID: "x"}))
}

func TestEventHandlersDispatchToHelpers(t *testing.T) {
	f := newFacade(t)
	f.svc.RegisterHandlers()
	ctx := context.Background()

	err := f.dispatch.Publish(ctx, events.Event{
		ID:   "evt-1",
		Type: events.EventInspectionApproved,
		Payload: events.InspectionReviewedPayload{
			TechnicianID: "tech-2",
			ReviewerName: "Mona",
			Inspection:   domain.InspectionRef{ID: "insp-1", Title: "Move-out"},
		},
	})
	require.NoError(t, err)
	created := f.repo.forUser("tech-2")
	require.Len(t, created, 1)
	assert.Equal(t, domain.NotificationInspectionApproved, created[0].Type)

	err = f.dispatch.Publish(ctx, events.Event{
		ID:      "evt-2",
		Type:    events.EventUserRegistered,
		Payload: events.UserRegisteredPayload{UserID: "mgr-1"},
	})
	require.NoError(t, err)
	msgs := f.sender.messages()
	assert.Equal(t, "Welcome to PropertyPro", msgs[len(msgs)-1].Subject)

	err = f.dispatch.Publish(ctx, events.Event{
		ID:      "evt-3",
		Type:    events.EventUserRegistered,
		Payload: events.UserRegisteredPayload{UserID: "ghost"},
	})
	assert.Error(t, err)
}

func TestListAndMarkRead(t *testing.T) {
	f := newFacade(t)
	ctx := context.Background()
	n, err := f.svc.SendNotification(ctx, "tech-1", domain.NotificationSystem, "t", "m", SendOptions{})
	require.NoError(t, err)

	items, unread, err := f.svc.ListForUser(ctx, "tech-1", 20, 0)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 1, unread)

	require.NoError(t, f.svc.MarkRead(ctx, "tech-1", n.ID))
	_, unread, err = f.svc.ListForUser(ctx, "tech-1", 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, unread)

	assert.Error(t, f.svc.MarkRead(ctx, "tech-2", n.ID))
}
