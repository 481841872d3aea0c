package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "LOG_LEVEL", "VAPI_API_URL", "VAPI_API_KEY", "CALLER_ID",
		"WEBHOOK_PUBLIC_BASE", "LEAD_STORE", "CORS_ALLOWED_ORIGINS",
		"ENQUIRE_RATE_LIMIT", "MAIL_PORT", "AMQP_URL",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, StoreMemory, cfg.LeadStore)
	assert.Empty(t, cfg.VapiAPIURL)
	assert.Empty(t, cfg.VapiAPIKey)
	assert.Empty(t, cfg.CallerID)
	assert.Empty(t, cfg.AMQPURL)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Zero(t, cfg.EnquireRateLimit)
	assert.Equal(t, 587, cfg.MailPort)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("VAPI_API_URL", "https://api.vapi.example/call")
	t.Setenv("VAPI_API_KEY", "secret")
	t.Setenv("CALLER_ID", "+911234567890")
	t.Setenv("WEBHOOK_PUBLIC_BASE", "https://leads.example.com/")
	t.Setenv("LEAD_STORE", " Redis ")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("ENQUIRE_RATE_LIMIT", "25")
	t.Setenv("MAIL_PORT", "not-a-number")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "https://api.vapi.example/call", cfg.VapiAPIURL)
	assert.Equal(t, "secret", cfg.VapiAPIKey)
	assert.Equal(t, "+911234567890", cfg.CallerID)
	assert.Equal(t, "https://leads.example.com/", cfg.WebhookPublicBase)
	assert.Equal(t, StoreRedis, cfg.LeadStore)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 25, cfg.EnquireRateLimit)
	assert.Equal(t, 587, cfg.MailPort)
}
