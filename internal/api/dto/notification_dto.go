package dto

import (
	"time"

	"github.com/spec-kit/property-notifier/internal/domain"
)

// NotificationResponse is one in-app notification.
type NotificationResponse struct {
	ID         string                  `json:"id"`
	Type       domain.NotificationType `json:"type"`
	Title      string                  `json:"title"`
	Message    string                  `json:"message"`
	EntityType *domain.EntityType      `json:"entity_type"`
	EntityID   *string                 `json:"entity_id"`
	IsRead     bool                    `json:"is_read"`
	CreatedAt  time.Time               `json:"created_at"`
}

// NotificationListResponse is a page of notifications.
type NotificationListResponse struct {
	Items       []NotificationResponse `json:"items"`
	UnreadCount int                    `json:"unread_count"`
	Limit       int                    `json:"limit"`
	Offset      int                    `json:"offset"`
}

// NewNotificationResponse maps a domain notification.
func NewNotificationResponse(n domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:         n.ID,
		Type:       n.Type,
		Title:      n.Title,
		Message:    n.Message,
		EntityType: n.EntityType,
		EntityID:   n.EntityID,
		IsRead:     n.IsRead,
		CreatedAt:  n.CreatedAt,
	}
}
