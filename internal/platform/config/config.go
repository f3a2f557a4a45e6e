// Package config builds process configuration from the environment so main
// stays lean. Threshold and schedule validation happens here: a bad value
// must stop the process at startup, not at the first aggregator tick.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Defaults for the monitoring thresholds and cadence.
const (
	DefaultHourThreshold = 100
	DefaultDayThreshold  = 1000
	// DefaultSchedule fires at the top of every hour.
	DefaultSchedule = "0 * * * *"
)

// Monitoring captures the activity-aggregation configuration.
type Monitoring struct {
	HourThreshold int
	DayThreshold  int
	// Schedule is a cron spec consumed by the scheduler.
	Schedule string
	// QueryTimeout bounds each store call issued by an aggregator pass.
	QueryTimeout time.Duration
}

// Audit captures recorder and sink configuration.
type Audit struct {
	// BufferSize is the recorder's in-flight event channel capacity.
	BufferSize int
	// KafkaBrokers enables the Kafka sink when non-empty (comma-separated).
	KafkaBrokers string
	KafkaTopic   string
}

// RedisConfig holds connection settings for the optional Redis-backed
// audit log store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server captures process-level configuration.
type Server struct {
	Addr          string
	DatabaseURL   string
	JWTSigningKey string
	Monitoring    Monitoring
	Audit         Audit
	Redis         RedisConfig
}

// FromEnv builds a Server config from environment variables.
// Invalid thresholds are a startup error (fail fast), not a tick-time error.
func FromEnv() (Server, error) {
	cfg := Server{
		Addr:          envOr("MENTORLAB_ADDR", ":8080"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		JWTSigningKey: os.Getenv("JWT_SIGNING_KEY"),
		Monitoring: Monitoring{
			HourThreshold: DefaultHourThreshold,
			DayThreshold:  DefaultDayThreshold,
			Schedule:      envOr("MONITOR_SCHEDULE", DefaultSchedule),
			QueryTimeout:  30 * time.Second,
		},
		Audit: Audit{
			BufferSize:   256,
			KafkaBrokers: os.Getenv("AUDIT_KAFKA_BROKERS"),
			KafkaTopic:   envOr("AUDIT_KAFKA_TOPIC", "mentorlab.audit-events"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
	}

	if cfg.JWTSigningKey == "" {
		// Use a default for development - should be overridden in production
		cfg.JWTSigningKey = "dev-secret-key-change-in-production"
	}

	var err error
	if cfg.Monitoring.HourThreshold, err = envPositiveInt("HOUR_THRESHOLD", DefaultHourThreshold); err != nil {
		return Server{}, err
	}
	if cfg.Monitoring.DayThreshold, err = envPositiveInt("DAY_THRESHOLD", DefaultDayThreshold); err != nil {
		return Server{}, err
	}
	if cfg.Audit.BufferSize, err = envPositiveInt("AUDIT_BUFFER_SIZE", cfg.Audit.BufferSize); err != nil {
		return Server{}, err
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envPositiveInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: not an integer: %q", key, v)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s: must be positive, got %d", key, n)
	}
	return n, nil
}
