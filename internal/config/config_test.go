package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"DATABASE_URL", "PORT", "GEMINI_API_KEY", "GEMINI_MODEL", "EMAIL_POLL_INTERVAL", "CORS_ALLOW_ORIGINS"} {
		t.Setenv(k, "")
	}

	cfg := FromEnv()
	assert.Equal(t, "sqlite://jobtracker.db", cfg.DatabaseURL)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "gemini-2.5-flash", cfg.GeminiModel)
	assert.Equal(t, time.Minute, cfg.EmailPollInterval)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowOrigins)
	assert.False(t, cfg.LLMEnabled())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "host=db user=postgres dbname=jobs")
	t.Setenv("PORT", "9090")
	t.Setenv("GEMINI_API_KEY", "k")
	t.Setenv("EMAIL_POLL_INTERVAL", "5m")
	t.Setenv("CORS_ALLOW_ORIGINS", "http://localhost:3000, https://tracker.example.com ,")

	cfg := FromEnv()
	assert.Equal(t, "host=db user=postgres dbname=jobs", cfg.DatabaseURL)
	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.LLMEnabled())
	assert.Equal(t, 5*time.Minute, cfg.EmailPollInterval)
	assert.Equal(t, []string{"http://localhost:3000", "https://tracker.example.com"}, cfg.CORSAllowOrigins)
}

func TestFromEnv_BadDurationFallsBack(t *testing.T) {
	t.Setenv("EMAIL_POLL_INTERVAL", "soon")
	assert.Equal(t, time.Minute, FromEnv().EmailPollInterval)
}
