package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Stripe   StripeConfig
	Booking  BookingConfig
	Jobs     JobsConfig
	CORS     CORSConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port        string
	Environment string // development, staging, production
	LogLevel    string // debug, info, warn, error
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	URL                string
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
}

// JWTConfig holds token signing configuration.
type JWTConfig struct {
	Secret      string
	TokenExpiry time.Duration
}

// StripeConfig holds Stripe checkout and webhook configuration.
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	Currency      string
	SuccessURL    string
	CancelURL     string
}

// BookingConfig holds the resort's pricing and lifecycle rules.
type BookingConfig struct {
	DaytimeRate        int // per stay-day, daytime slot
	NighttimeRate      int
	TwentyTwoHourRate  int
	DownpaymentPercent int // percentage of total charged up front
	SecurityBond       int // default bond collected at check-in
	OvertimeHourlyRate int
	NoShowGraceHours   int // hours past expected check-in before no-show is allowed
	PendingPaymentTTL  time.Duration
}

// JobsConfig holds the cron schedules and the shared key for the
// HTTP-triggered job endpoints.
type JobsConfig struct {
	APIKey               string
	ExpireSchedule       string
	AutoCompleteSchedule string
}

// CORSConfig holds CORS-related configuration.
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			MaxConnections:     getEnvAsInt("DATABASE_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    time.Duration(getEnvAsInt("DATABASE_CONN_MAX_LIFETIME", 300)) * time.Second,
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", ""),
			TokenExpiry: time.Duration(getEnvAsInt("JWT_TOKEN_EXPIRY", 28800)) * time.Second,
		},
		Stripe: StripeConfig{
			SecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
			Currency:      getEnv("STRIPE_CURRENCY", "php"),
			SuccessURL:    getEnv("STRIPE_SUCCESS_URL", "https://villamarea.example/booking/success"),
			CancelURL:     getEnv("STRIPE_CANCEL_URL", "https://villamarea.example/booking/canceled"),
		},
		Booking: BookingConfig{
			DaytimeRate:        getEnvAsInt("RATE_DAYTIME", 8000),
			NighttimeRate:      getEnvAsInt("RATE_NIGHTTIME", 9000),
			TwentyTwoHourRate:  getEnvAsInt("RATE_22_HOURS", 12000),
			DownpaymentPercent: getEnvAsInt("DOWNPAYMENT_PERCENT", 30),
			SecurityBond:       getEnvAsInt("SECURITY_BOND", 2000),
			OvertimeHourlyRate: getEnvAsInt("OVERTIME_HOURLY_RATE", 500),
			NoShowGraceHours:   getEnvAsInt("NO_SHOW_GRACE_HOURS", 6),
			PendingPaymentTTL:  time.Duration(getEnvAsInt("PENDING_PAYMENT_TTL_HOURS", 24)) * time.Hour,
		},
		Jobs: JobsConfig{
			APIKey:               getEnv("JOBS_API_KEY", ""),
			ExpireSchedule:       getEnv("JOBS_EXPIRE_SCHEDULE", "*/15 * * * *"),
			AutoCompleteSchedule: getEnv("JOBS_AUTO_COMPLETE_SCHEDULE", "0 0 * * *"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Booking.DownpaymentPercent <= 0 || c.Booking.DownpaymentPercent > 100 {
		return fmt.Errorf("DOWNPAYMENT_PERCENT must be between 1 and 100")
	}
	if c.Server.Environment == "production" && c.Jobs.APIKey == "" {
		return fmt.Errorf("JOBS_API_KEY is required in production")
	}
	return nil
}

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
