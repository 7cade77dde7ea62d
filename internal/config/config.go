package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	AppPort string
	AppEnv  string
	DBDSN   string

	SessionTTL       time.Duration
	ResetTokenSecret string
	ResetTokenTTL    time.Duration

	GoogleClientID  string
	GoogleSecret    string
	GoogleRedirect  string
	FrontendBaseURL string
}

func Load() Config {
	sessionHours, _ := strconv.Atoi(get("SESSION_TTL_HOURS", "24"))
	resetMin, _ := strconv.Atoi(get("RESET_TOKEN_TTL_MIN", "30"))

	return Config{
		AppPort: get("APP_PORT", "8080"),
		AppEnv:  get("APP_ENV", "development"),
		DBDSN:   must("DB_DSN"),

		SessionTTL:       time.Duration(sessionHours) * time.Hour,
		ResetTokenSecret: must("RESET_TOKEN_SECRET"),
		ResetTokenTTL:    time.Duration(resetMin) * time.Minute,

		GoogleClientID:  get("GOOGLE_CLIENT_ID", ""),
		GoogleSecret:    get("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirect:  get("GOOGLE_REDIRECT_URL", ""),
		FrontendBaseURL: get("FRONTEND_BASE_URL", "http://localhost:3000"),
	}
}

// IsProduction gates cookie Secure flags and error message redaction.
func (c Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func get(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("missing env: " + k)
	}
	return v
}
