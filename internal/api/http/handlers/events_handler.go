package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/spec-kit/property-notifier/internal/api/dto"
	"github.com/spec-kit/property-notifier/internal/auth"
	"github.com/spec-kit/property-notifier/internal/events"
	apperrors "github.com/spec-kit/property-notifier/pkg/util/errorutil"
)

// EventsHandler accepts domain events from the main application.
type EventsHandler struct {
	dispatcher events.Dispatcher
}

// NewEventsHandler constructs handler.
func NewEventsHandler(dispatcher events.Dispatcher) *EventsHandler {
	return &EventsHandler{dispatcher: dispatcher}
}

// Publish handles POST /api/events. Handlers run synchronously, so a 202
// means the notifications have been stored.
func (h *EventsHandler) Publish(c *fiber.Ctx) error {
	var req dto.PublishEventRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if !req.Type.Valid() {
		return apperrors.NewValidationError("unknown event type", map[string]any{"type": req.Type})
	}
	if len(req.Payload) == 0 {
		return apperrors.NewValidationError("payload required", nil)
	}

	event := events.Event{
		ID:        req.ID,
		Type:      req.Type,
		Timestamp: time.Now().UTC(),
		Payload:   req.Payload,
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if req.Timestamp != nil {
		event.Timestamp = req.Timestamp.UTC()
	}
	if principal, ok := auth.PrincipalFromContext(c); ok {
		event.Actor = events.Actor{UserID: principal.UserID, Role: principal.Role}
	}

	if err := h.dispatcher.Publish(c.UserContext(), event); err != nil {
		return apperrors.MapError(err)
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"data": dto.PublishEventResponse{ID: event.ID, Type: event.Type}})
}
