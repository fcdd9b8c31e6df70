package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultSessionTTL bounds how long an idle session survives in the store.
const DefaultSessionTTL = 24 * time.Hour

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Clinic backend
	BackendOrigin  string
	BackendTimeout time.Duration

	// Navigation targets owned by other pages of the clinic site
	FrontendBaseURL    string
	LoginPage          string
	NewAppointmentPage string
	ReschedulePage     string

	// Session storage
	SessionStore        string
	SessionTTL          time.Duration
	SessionCookieSecure bool
	RedisAddr           string
	RedisPassword       string
	RedisTLS            bool

	// Scheduling policy and display
	RescheduleCutoff time.Duration
	DisplayTimezone  string

	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		BackendOrigin:  strings.TrimRight(getEnv("BACKEND_ORIGIN", "http://localhost:8081"), "/"),
		BackendTimeout: getEnvAsDuration("BACKEND_TIMEOUT", 0),

		FrontendBaseURL:    strings.TrimRight(getEnv("FRONTEND_BASE_URL", ""), "/"),
		LoginPage:          getEnv("LOGIN_PAGE", "login.html"),
		NewAppointmentPage: getEnv("NEW_APPOINTMENT_PAGE", "agendarHorario.html"),
		ReschedulePage:     getEnv("RESCHEDULE_PAGE", "reagendarHorario.html"),

		SessionStore:        strings.ToLower(strings.TrimSpace(getEnv("SESSION_STORE", "redis"))),
		SessionTTL:          getEnvAsDuration("SESSION_TTL", DefaultSessionTTL),
		SessionCookieSecure: getEnvAsBool("SESSION_COOKIE_SECURE", false),
		RedisAddr:           getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword:       getEnv("REDIS_PASSWORD", ""),
		RedisTLS:            getEnvAsBool("REDIS_TLS", false),

		RescheduleCutoff: getEnvAsDuration("RESCHEDULE_CUTOFF", 12*time.Hour),
		DisplayTimezone:  getEnv("DISPLAY_TIMEZONE", "America/Sao_Paulo"),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
		RateLimitRPS:       getEnvAsFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 20),
	}
}

// PageURL resolves a page name against FrontendBaseURL. Absolute URLs are
// returned unchanged; with no base the page is served from the site root.
func (c *Config) PageURL(page string) string {
	if strings.Contains(page, "://") {
		return page
	}
	return c.FrontendBaseURL + "/" + strings.TrimLeft(page, "/")
}

// Location returns the display timezone, falling back to UTC when it cannot be loaded.
func (c *Config) Location() *time.Location {
	loc, _ := c.LoadLocation()
	return loc
}

// LoadLocation is Location with the load error, so callers can report the fallback.
func (c *Config) LoadLocation() (*time.Location, error) {
	loc, err := time.LoadLocation(c.DisplayTimezone)
	if err != nil {
		return time.UTC, fmt.Errorf("config: load timezone %q: %w", c.DisplayTimezone, err)
	}
	return loc, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated variable, dropping blanks.
func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, ""), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
