package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App       AppConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	Email     EmailConfig
	Realtime  RealtimeConfig
	Scheduler SchedulerConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	FrontendURL           string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values. An empty Addr disables Redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines token verification parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
}

// EmailConfig selects the outbound email transport.
type EmailConfig struct {
	From             string
	SESRegion        string
	ConfigurationSet string
}

// RealtimeConfig configures the websocket push server.
type RealtimeConfig struct {
	Addr string
}

// SchedulerConfig holds cron expressions and job toggles.
type SchedulerConfig struct {
	Timezone              string
	OverdueInspectionCron string
	DisableOverdueCron    bool
	TrialReminderCron     string
	TrialExpirationCron   string
	TrialReminderDays     []int
	LockTTLMinutes        int
	FallbackIntervalHours int
	RunOverdueOnStartup   bool
}

// DefaultOverdueInspectionCron fires at 8 AM daily.
const DefaultOverdueInspectionCron = "0 8 * * *"

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	reminderDays, err := parseIntList(getEnv("TRIAL_REMINDER_DAYS", "7,3,1"))
	if err != nil {
		return nil, fmt.Errorf("invalid TRIAL_REMINDER_DAYS: %w", err)
	}

	// An unusable zone is not rejected here; scheduler.SelectEngine falls
	// back to the interval engine for it.
	tz := getEnv("CRON_TIMEZONE", "UTC")

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "property-notifier"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			FrontendURL:           strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:5173"), "/"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
		},
		Email: EmailConfig{
			From:             getEnv("EMAIL_FROM", "noreply@example.com"),
			SESRegion:        os.Getenv("AWS_SES_REGION"),
			ConfigurationSet: os.Getenv("AWS_SES_CONFIGURATION_SET"),
		},
		Realtime: RealtimeConfig{
			Addr: getEnv("REALTIME_ADDR", "0.0.0.0:8081"),
		},
		Scheduler: SchedulerConfig{
			Timezone:              tz,
			OverdueInspectionCron: DefaultOverdueInspectionCron,
			DisableOverdueCron:    os.Getenv("DISABLE_OVERDUE_INSPECTION_CRON") == "true",
			TrialReminderCron:     getEnv("TRIAL_REMINDER_CRON", "0 9 * * *"),
			TrialExpirationCron:   getEnv("TRIAL_EXPIRATION_CRON", "0 0 * * *"),
			TrialReminderDays:     reminderDays,
			LockTTLMinutes:        getEnvAsInt("JOB_LOCK_TTL_MINUTES", 30),
			FallbackIntervalHours: getEnvAsInt("SCHEDULER_FALLBACK_INTERVAL_HOURS", 24),
			RunOverdueOnStartup:   getEnvAsBool("RUN_OVERDUE_ON_STARTUP", false),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Location resolves the scheduler timezone, falling back to UTC.
func (s SchedulerConfig) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LockTTL returns how long a job run lock is held at most.
func (s SchedulerConfig) LockTTL() time.Duration {
	if s.LockTTLMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(s.LockTTLMinutes) * time.Minute
}

// FallbackInterval is the period used when the cron engine is unavailable.
func (s SchedulerConfig) FallbackInterval() time.Duration {
	if s.FallbackIntervalHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(s.FallbackIntervalHours) * time.Hour
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func parseIntList(raw string) ([]int, error) {
	parts := strings.Split(raw, ",")
	out := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, fmt.Errorf("negative day offset %d", n)
		}
		out = append(out, n)
	}
	return out, nil
}
