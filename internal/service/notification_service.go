package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/property-notifier/internal/domain"
	"github.com/spec-kit/property-notifier/internal/email"
	"github.com/spec-kit/property-notifier/internal/events"
	"github.com/spec-kit/property-notifier/internal/observability"
	"github.com/spec-kit/property-notifier/internal/realtime"
	"github.com/spec-kit/property-notifier/internal/repository"
)

// Dispatch channels used as metric labels.
const (
	channelStore    = "store"
	channelRealtime = "realtime"
	channelEmail    = "email"
)

// NotificationService is the single entry point for turning a domain event
// into a stored notification, a realtime push and an optional email.
type NotificationService struct {
	notifications repository.NotificationRepository
	users         repository.UserRepository
	emitter       realtime.Emitter
	renderer      *email.Renderer
	sender        email.Sender
	dispatcher    events.Dispatcher
	metrics       *observability.Metrics
	logger        *zap.Logger
	frontendURL   string
	productName   string
	location      *time.Location
}

// NotificationDependencies bundles collaborators for the notification service.
type NotificationDependencies struct {
	NotificationRepo repository.NotificationRepository
	UserRepo         repository.UserRepository
	Emitter          realtime.Emitter
	Renderer         *email.Renderer
	Sender           email.Sender
	Dispatcher       events.Dispatcher
	Metrics          *observability.Metrics
	Logger           *zap.Logger
	// FrontendURL is the base for deep links embedded in emails.
	FrontendURL string
	ProductName string
	// Location is used to format dates in emails. Defaults to UTC.
	Location *time.Location
}

// SendOptions tune a single SendNotification call.
type SendOptions struct {
	SkipEmail  bool
	EmailData  email.Data
	EntityType domain.EntityType
	EntityID   string
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		notifications: deps.NotificationRepo,
		users:         deps.UserRepo,
		emitter:       deps.Emitter,
		renderer:      deps.Renderer,
		sender:        deps.Sender,
		dispatcher:    deps.Dispatcher,
		metrics:       deps.Metrics,
		logger:        logger,
		frontendURL:   deps.FrontendURL,
		productName:   deps.ProductName,
		location:      loc,
	}
}

// SendNotification stores the notification, pushes it to the user's open
// sessions and emails it. Only the store write can fail the call; push and
// email failures are logged and the stored record is returned regardless.
func (s *NotificationService) SendNotification(ctx context.Context, userID string, notificationType domain.NotificationType, title, message string, opts SendOptions) (*domain.Notification, error) {
	n := &domain.Notification{
		UserID:  userID,
		Type:    notificationType,
		Title:   title,
		Message: message,
	}
	if opts.EntityType != "" {
		entityType := opts.EntityType
		n.EntityType = &entityType
	}
	if opts.EntityID != "" {
		entityID := opts.EntityID
		n.EntityID = &entityID
	}

	if err := s.notifications.Create(ctx, n); err != nil {
		s.metrics.RecordDispatch(channelStore, err)
		return nil, fmt.Errorf("create notification for %s: %w", userID, err)
	}
	s.metrics.RecordDispatch(channelStore, nil)

	s.push(n)

	if !opts.SkipEmail {
		s.emailNotification(ctx, n, opts.EmailData)
	}

	return n, nil
}

// pushPayload is the JSON shape pushed to browser sessions.
type pushPayload struct {
	ID         string                  `json:"id"`
	Type       domain.NotificationType `json:"type"`
	Title      string                  `json:"title"`
	Message    string                  `json:"message"`
	EntityType *domain.EntityType      `json:"entity_type,omitempty"`
	EntityID   *string                 `json:"entity_id,omitempty"`
	IsRead     bool                    `json:"is_read"`
	CreatedAt  time.Time               `json:"created_at"`
}

func (s *NotificationService) push(n *domain.Notification) {
	if s.emitter == nil {
		return
	}
	err := s.emitter.EmitToUser(n.UserID, pushPayload{
		ID:         n.ID,
		Type:       n.Type,
		Title:      n.Title,
		Message:    n.Message,
		EntityType: n.EntityType,
		EntityID:   n.EntityID,
		IsRead:     n.IsRead,
		CreatedAt:  n.CreatedAt,
	})
	switch {
	case errors.Is(err, realtime.ErrNoSubscribers):
		s.logger.Debug("user offline, realtime push skipped",
			zap.String("user_id", n.UserID),
			zap.String("notification_id", n.ID))
	case err != nil:
		s.metrics.RecordDispatch(channelRealtime, err)
		s.logger.Warn("realtime push failed",
			zap.String("user_id", n.UserID),
			zap.String("notification_id", n.ID),
			zap.Error(err))
	default:
		s.metrics.RecordDispatch(channelRealtime, nil)
	}
}

func (s *NotificationService) emailNotification(ctx context.Context, n *domain.Notification, data email.Data) {
	key, ok := email.TemplateFor(n.Type)
	if !ok {
		return
	}

	user, err := s.users.GetByID(ctx, n.UserID)
	if err != nil {
		s.metrics.RecordDispatch(channelEmail, err)
		s.logger.Warn("notification email skipped, user lookup failed",
			zap.String("user_id", n.UserID),
			zap.String("notification_id", n.ID),
			zap.Error(err))
		return
	}
	if user.Email == "" {
		return
	}

	metadata := map[string]string{
		"userId":           n.UserID,
		"notificationType": string(n.Type),
	}
	if n.EntityType != nil {
		metadata["entityType"] = string(*n.EntityType)
	}
	if n.EntityID != nil {
		metadata["entityId"] = *n.EntityID
	}

	if err := s.deliver(ctx, user.Email, user.Name, key, data, metadata); err != nil {
		s.logger.Warn("notification email failed",
			zap.String("user_id", n.UserID),
			zap.String("notification_id", n.ID),
			zap.String("template", string(key)),
			zap.Error(err))
	}
}

// deliver renders key with data and sends it. It is shared by the facade and
// the email-only helpers.
func (s *NotificationService) deliver(ctx context.Context, to, recipientName string, key email.TemplateKey, data email.Data, metadata map[string]string) error {
	values := make(email.Data, len(data)+1)
	for k, v := range data {
		values[k] = v
	}
	if _, ok := values["RecipientName"]; !ok && recipientName != "" {
		values["RecipientName"] = recipientName
	}

	rendered, err := s.renderer.Render(key, values)
	if err != nil {
		s.metrics.RecordDispatch(channelEmail, err)
		return err
	}

	err = s.sender.Send(ctx, email.Message{
		To:       to,
		Subject:  rendered.Subject,
		HTML:     rendered.HTML,
		Metadata: metadata,
	})
	s.metrics.RecordDispatch(channelEmail, err)
	if err != nil {
		return fmt.Errorf("send %s to %s: %w", key, to, err)
	}
	return nil
}

// ListForUser returns a page of the user's notifications and the unread count.
func (s *NotificationService) ListForUser(ctx context.Context, userID string, limit, offset int) ([]domain.Notification, int, error) {
	items, err := s.notifications.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	unread, err := s.notifications.CountUnread(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return items, unread, nil
}

// MarkRead flags one of the user's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	return s.notifications.MarkRead(ctx, userID, notificationID)
}

func (s *NotificationService) link(path string) string {
	return s.frontendURL + path
}

func (s *NotificationService) formatDate(t time.Time) string {
	return t.In(s.location).Format("Jan 2, 2006")
}
