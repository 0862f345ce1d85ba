package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/property-notifier/internal/service"
)

// StartNotificationWorker registers notification handlers on the dispatcher.
func StartNotificationWorker(notificationService *service.NotificationService, logger *zap.Logger) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
	logger.Info("notification worker subscribed to domain events")
}
