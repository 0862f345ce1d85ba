package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/property-notifier/internal/api/http/handlers"
	"github.com/spec-kit/property-notifier/internal/auth"
	"github.com/spec-kit/property-notifier/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Notifications  *handlers.NotificationsHandler
	Jobs           *handlers.JobsHandler
	Events         *handlers.EventsHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Metrics.Registry, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api", cfg.AuthMiddleware.Handle)

	api.Get("/notifications", cfg.Notifications.List)
	api.Patch("/notifications/:id/read", cfg.Notifications.MarkRead)

	admin := api.Group("", auth.RequireAdmin())
	admin.Get("/jobs", cfg.Jobs.List)
	admin.Post("/jobs/:name/run", cfg.Jobs.Run)
	admin.Post("/events", cfg.Events.Publish)
}
