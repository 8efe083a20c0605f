package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every setting of the subscriptions service.
type Config struct {
	// Environment
	Env      string
	LogLevel string

	// HTTP server
	HTTPAddr string

	// Cloud Spanner
	SpannerProject      string
	SpannerInstance     string
	SpannerDatabase     string
	SpannerEmulatorHost string
	MigrationsDir       string

	// Customer service
	CustomerServiceURL string
	CustomerCacheTTL   time.Duration

	// Payment gateway
	PaymentGatewayURL    string
	PaymentGatewayAPIKey string
	HTTPClientTimeout    time.Duration

	// Payment gateway circuit breaker
	BreakerMaxRequests      uint32
	BreakerInterval         time.Duration
	BreakerTimeout          time.Duration
	BreakerFailureThreshold uint32

	// Redis (customer cache, optional)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// RabbitMQ (event forwarding, optional)
	RabbitMQURL      string
	RabbitMQExchange string

	// SMTP (cancellation notices, optional)
	SMTPHost   string
	SMTPPort   string
	SMTPUser   string
	SMTPPass   string
	SMTPFrom   string
	SMTPSecure bool

	// Renewal batch
	RenewLookahead time.Duration
}

// Load reads an optional .env file and then the environment.
func Load() Config {
	// A missing .env file is fine; real environment variables win.
	_ = godotenv.Load()

	return Config{
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),

		SpannerProject:      getEnv("SPANNER_PROJECT", "test-project"),
		SpannerInstance:     getEnv("SPANNER_INSTANCE", "test-instance"),
		SpannerDatabase:     getEnv("SPANNER_DATABASE", "subscription-db"),
		SpannerEmulatorHost: getEnv("SPANNER_EMULATOR_HOST", ""),
		MigrationsDir:       getEnv("MIGRATIONS_DIR", ""),

		CustomerServiceURL: getEnv("CUSTOMER_SERVICE_URL", ""),
		CustomerCacheTTL:   getDurationEnv("CUSTOMER_CACHE_TTL", 5*time.Minute),

		PaymentGatewayURL:    getEnv("PAYMENT_GATEWAY_URL", ""),
		PaymentGatewayAPIKey: getEnv("PAYMENT_GATEWAY_API_KEY", ""),
		HTTPClientTimeout:    getDurationEnv("HTTP_CLIENT_TIMEOUT", 10*time.Second),

		BreakerMaxRequests:      uint32(getIntEnv("BREAKER_MAX_REQUESTS", 1)),
		BreakerInterval:         getDurationEnv("BREAKER_INTERVAL", time.Minute),
		BreakerTimeout:          getDurationEnv("BREAKER_TIMEOUT", 30*time.Second),
		BreakerFailureThreshold: uint32(getIntEnv("BREAKER_FAILURE_THRESHOLD", 5)),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		RabbitMQURL:      getEnv("RABBITMQ_URL", ""),
		RabbitMQExchange: getEnv("RABBITMQ_EXCHANGE", "subscriptions.lifecycle"),

		SMTPHost:   getEnv("SMTP_HOST", ""),
		SMTPPort:   getEnv("SMTP_PORT", "465"),
		SMTPUser:   getEnv("SMTP_USER", ""),
		SMTPPass:   getEnv("SMTP_PASS", ""),
		SMTPFrom:   getEnv("SMTP_FROM", ""),
		SMTPSecure: getBoolEnv("SMTP_SECURE", true),

		RenewLookahead: getDurationEnv("RENEW_LOOKAHEAD", time.Hour),
	}
}

// IsDevelopment reports whether the service runs in development mode
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Validate reports every missing or inconsistent setting needed to serve
// traffic.
func (c Config) Validate() error {
	var errs []error
	require := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			errs = append(errs, fmt.Errorf("%s is required", name))
		}
	}

	require("SPANNER_PROJECT", c.SpannerProject)
	require("SPANNER_INSTANCE", c.SpannerInstance)
	require("SPANNER_DATABASE", c.SpannerDatabase)
	require("CUSTOMER_SERVICE_URL", c.CustomerServiceURL)
	require("PAYMENT_GATEWAY_URL", c.PaymentGatewayURL)

	if c.HTTPClientTimeout <= 0 {
		errs = append(errs, errors.New("HTTP_CLIENT_TIMEOUT must be positive"))
	}
	if c.RenewLookahead < 0 {
		errs = append(errs, errors.New("RENEW_LOOKAHEAD cannot be negative"))
	}
	if c.SMTPHost != "" && c.SMTPPort == "" {
		errs = append(errs, errors.New("SMTP_PORT is required when SMTP_HOST is set"))
	}

	return errors.Join(errs...)
}

// --- Helper functions ---

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
