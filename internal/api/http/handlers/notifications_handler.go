package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/property-notifier/internal/api/dto"
	"github.com/spec-kit/property-notifier/internal/auth"
	"github.com/spec-kit/property-notifier/internal/domain"
	apperrors "github.com/spec-kit/property-notifier/pkg/util/errorutil"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// NotificationReader is the part of the notification service used over HTTP.
type NotificationReader interface {
	ListForUser(ctx context.Context, userID string, limit, offset int) ([]domain.Notification, int, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
}

// NotificationsHandler exposes the caller's in-app notifications.
type NotificationsHandler struct {
	notifications NotificationReader
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(notifications NotificationReader) *NotificationsHandler {
	return &NotificationsHandler{notifications: notifications}
}

// List handles GET /api/notifications.
func (h *NotificationsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	limit := c.QueryInt("limit", defaultPageSize)
	offset := c.QueryInt("offset", 0)
	if limit <= 0 || limit > maxPageSize || offset < 0 {
		return apperrors.NewValidationError("invalid pagination", map[string]any{
			"limit":     limit,
			"offset":    offset,
			"max_limit": maxPageSize,
		})
	}

	items, unread, err := h.notifications.ListForUser(c.UserContext(), principal.UserID, limit, offset)
	if err != nil {
		return apperrors.MapError(err)
	}

	resp := dto.NotificationListResponse{
		Items:       make([]dto.NotificationResponse, 0, len(items)),
		UnreadCount: unread,
		Limit:       limit,
		Offset:      offset,
	}
	for _, n := range items {
		resp.Items = append(resp.Items, dto.NewNotificationResponse(n))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// MarkRead handles PATCH /api/notifications/:id/read.
func (h *NotificationsHandler) MarkRead(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.NewValidationError("invalid notification id", map[string]any{"id": id})
	}

	if err := h.notifications.MarkRead(c.UserContext(), principal.UserID, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("notification", map[string]any{"id": id})
		}
		return apperrors.MapError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
