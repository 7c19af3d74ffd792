package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	Port        string

	GeminiAPIKey string
	GeminiModel  string

	GmailCredentialsFile string
	GmailTokenFile       string
	EmailPollInterval    time.Duration

	CORSAllowOrigins []string
}

// Load reads .env (if present) and then the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables with defaults.
func FromEnv() *Config {
	return &Config{
		DatabaseURL:          getEnv("DATABASE_URL", "sqlite://jobtracker.db"),
		Port:                 getEnv("PORT", "8080"),
		GeminiAPIKey:         os.Getenv("GEMINI_API_KEY"),
		GeminiModel:          getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GmailCredentialsFile: getEnv("GMAIL_CREDENTIALS_FILE", "credential.json"),
		GmailTokenFile:       getEnv("GMAIL_TOKEN_FILE", "token.json"),
		EmailPollInterval:    getDuration("EMAIL_POLL_INTERVAL", time.Minute),
		CORSAllowOrigins:     splitList(getEnv("CORS_ALLOW_ORIGINS", "*")),
	}
}

// LLMEnabled reports whether a Gemini key is configured.
func (c *Config) LLMEnabled() bool {
	return c.GeminiAPIKey != ""
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("Invalid %s=%q, using %v", key, v, fallback)
		return fallback
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
