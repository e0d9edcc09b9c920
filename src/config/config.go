package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DEFAULT_MAX_TICKETS     = 5
	DEFAULT_MEMBERSHIP_FEE  = 10.0
	DEFAULT_CURRENCY        = "eur"
	DEFAULT_REQUEST_TIMEOUT = 15 * time.Second
)

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := os.Getenv("DATABASE_SSLMODE")
	DATABASE_TIMEZONE := os.Getenv("DATABASE_TIMEZONE")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

// GetMaxTickets returns MAX_TICKETS, or the default when unset or not a positive integer.
func GetMaxTickets() int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv("MAX_TICKETS")))
	if err != nil || v < 1 {
		return DEFAULT_MAX_TICKETS
	}
	return v
}

// GetMembershipFee is only a fallback for events that do not carry their own fee.
func GetMembershipFee() float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv("MEMBERSHIP_FEE")), 64)
	if err != nil || v < 0 {
		return DEFAULT_MEMBERSHIP_FEE
	}
	return v
}

func GetCurrency() string {
	return strings.ToLower(getEnv("CURRENCY", DEFAULT_CURRENCY))
}

func GetFunctionsURL() string {
	return strings.TrimRight(getEnv("FUNCTIONS_URL", "http://localhost:8080/api/v1"), "/")
}

func GetRequestTimeout() time.Duration {
	return getDuration("REQUEST_TIMEOUT", DEFAULT_REQUEST_TIMEOUT)
}

func GetCheckoutSessionTTL() time.Duration {
	return getDuration("CHECKOUT_SESSION_TTL", 30*time.Minute)
}

func GetOrderTTL() time.Duration {
	return getDuration("ORDER_TTL", time.Hour)
}

func GetOrderSweepInterval() time.Duration {
	return getDuration("ORDER_SWEEP_INTERVAL", 5*time.Minute)
}

// GetCheckoutRateLimit is the number of checkout requests a single client may send per minute.
func GetCheckoutRateLimit() int {
	v, err := strconv.Atoi(os.Getenv("CHECKOUT_RATE_LIMIT"))
	if err != nil || v < 1 {
		return 30
	}
	return v
}

// GetMailQueue is the SQS queue subscribed to the emails-to-send topic.
func GetMailQueue() string {
	return getEnv("AWS_MAIL_QUEUE", "emails-to-send")
}

func IsMaintenanceMode() bool {
	v, err := strconv.ParseBool(os.Getenv("MAINTENANCE_MODE"))
	return err == nil && v
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}
