package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/property-notifier/internal/api/http"
	"github.com/spec-kit/property-notifier/internal/api/http/handlers"
	"github.com/spec-kit/property-notifier/internal/auth"
	"github.com/spec-kit/property-notifier/internal/config"
	"github.com/spec-kit/property-notifier/internal/email"
	"github.com/spec-kit/property-notifier/internal/events"
	"github.com/spec-kit/property-notifier/internal/observability"
	"github.com/spec-kit/property-notifier/internal/persistence"
	"github.com/spec-kit/property-notifier/internal/realtime"
	"github.com/spec-kit/property-notifier/internal/repository"
	"github.com/spec-kit/property-notifier/internal/scheduler"
	"github.com/spec-kit/property-notifier/internal/service"
	"github.com/spec-kit/property-notifier/internal/worker"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	inspectionRepo := repository.NewInspectionRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)

	renderer, err := email.NewRenderer()
	if err != nil {
		logger.Fatal("failed to parse email templates", zap.Error(err))
	}
	sender := newSender(ctx, cfg.Email, logger)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)

	hub := realtime.NewHub(logger)
	realtimeServer := realtime.NewServer(cfg.Realtime.Addr, hub, tokens.VerifySubject, []string{cfg.App.FrontendURL}, logger)
	go func() {
		if err := realtimeServer.ListenAndServe(); err != nil {
			logger.Error("realtime server stopped", zap.Error(err))
		}
	}()

	dispatcher := events.NewInMemoryDispatcher(logger)
	location := cfg.Scheduler.Location()

	notificationService := service.NewNotificationService(service.NotificationDependencies{
		NotificationRepo: notificationRepo,
		UserRepo:         userRepo,
		Emitter:          hub,
		Renderer:         renderer,
		Sender:           sender,
		Dispatcher:       dispatcher,
		Metrics:          metrics,
		Logger:           logger,
		FrontendURL:      cfg.App.FrontendURL,
		ProductName:      cfg.App.Name,
		Location:         location,
	})
	worker.StartNotificationWorker(notificationService, logger)

	overdueService := service.NewOverdueService(service.OverdueDependencies{
		InspectionRepo: inspectionRepo,
		Notifier:       notificationService,
		Logger:         logger,
		FrontendURL:    cfg.App.FrontendURL,
		Location:       location,
	})

	var ledger repository.ReminderLedger
	var distributed scheduler.Locker
	if client := redis.Handle(); client != nil {
		ledger = repository.NewRedisReminderLedger(client)
		distributed = scheduler.NewRedisLocker(client, logger)
	}
	trialService := service.NewTrialService(service.TrialDependencies{
		UserRepo:     userRepo,
		Notifier:     notificationService,
		Ledger:       ledger,
		Logger:       logger,
		Location:     location,
		ReminderDays: cfg.Scheduler.TrialReminderDays,
	})

	engine := scheduler.SelectEngine(scheduler.Probe{
		Timezone:         cfg.Scheduler.Timezone,
		Spec:             config.DefaultOverdueInspectionCron,
		FallbackInterval: cfg.Scheduler.FallbackInterval(),
	}, logger)
	jobs := scheduler.NewJobs(engine, distributed, cfg.Scheduler.LockTTL(), metrics, logger)
	if err := scheduler.RegisterPropertyJobs(jobs, cfg.Scheduler, overdueService, trialService); err != nil {
		logger.Fatal("failed to register jobs", zap.Error(err))
	}

	if cfg.Scheduler.RunOverdueOnStartup {
		go func() {
			if _, err := jobs.RunNow(ctx, scheduler.JobOverdueInspections); err != nil {
				logger.Error("startup overdue inspection run failed", zap.Error(err))
			}
		}()
	}

	checks := map[string]handlers.Pinger{"postgres": pg}
	if redis.Handle() != nil {
		checks["redis"] = redis
	}

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, checks),
		Notifications:  handlers.NewNotificationsHandler(notificationService),
		Jobs:           handlers.NewJobsHandler(jobs, engine.Name(), logger),
		Events:         handlers.NewEventsHandler(dispatcher),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, userRepo),
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	jobs.StopAll()
	if err := engine.Shutdown(shutdownCtx); err != nil {
		logger.Warn("scheduler shutdown", zap.Error(err))
	}
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	if err := realtimeServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("realtime shutdown", zap.Error(err))
	}
}

func newSender(ctx context.Context, cfg config.EmailConfig, logger *zap.Logger) email.Sender {
	if cfg.SESRegion == "" {
		logger.Info("AWS_SES_REGION not set; emails are logged instead of sent")
		return email.NewLogSender(cfg.From, logger)
	}
	sender, err := email.NewSESSender(ctx, cfg.SESRegion, cfg.From, cfg.ConfigurationSet, logger)
	if err != nil {
		logger.Fatal("failed to init SES sender", zap.Error(err))
	}
	return sender
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
