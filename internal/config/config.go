package config

import (
	"os"
	"strconv"
	"strings"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// Config holds application configuration. VAPI settings are not validated
// here; a missing URL or key only surfaces when an enquiry is submitted.
type Config struct {
	Port     string
	LogLevel string

	VapiAPIURL        string
	VapiAPIKey        string
	CallerID          string
	WebhookPublicBase string

	LeadStore     string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string

	AMQPURL string

	CORSAllowedOrigins []string
	EnquireRateLimit   int

	MailHost    string
	MailPort    int
	MailUser    string
	MailPass    string
	MailFrom    string
	NotifyEmail string
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "3000"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		VapiAPIURL:        getEnv("VAPI_API_URL", ""),
		VapiAPIKey:        getEnv("VAPI_API_KEY", ""),
		CallerID:          getEnv("CALLER_ID", ""),
		WebhookPublicBase: getEnv("WEBHOOK_PUBLIC_BASE", ""),

		LeadStore:     strings.ToLower(strings.TrimSpace(getEnv("LEAD_STORE", StoreMemory))),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		AMQPURL: getEnv("AMQP_URL", ""),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		EnquireRateLimit:   getEnvAsInt("ENQUIRE_RATE_LIMIT", 0),

		MailHost:    getEnv("MAIL_HOST", ""),
		MailPort:    getEnvAsInt("MAIL_PORT", 587),
		MailUser:    getEnv("MAIL_USER", ""),
		MailPass:    getEnv("MAIL_PASS", ""),
		MailFrom:    getEnv("MAIL_FROM", "no-reply@localhost"),
		NotifyEmail: getEnv("NOTIFY_EMAIL", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
