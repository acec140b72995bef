package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	IdPModeHTTP = "http" // call the provider's /user endpoint
	IdPModeJWT  = "jwt"  // verify provider session JWTs locally

	RateLimitBackendSQLite = "sqlite"
	RateLimitBackendMemory = "memory"
)

type Config struct {
	Issuer         string        // Token iss claim (default: portal-handoff)
	Audience       string        // Token aud claim (default: analytics-app)
	TokenTTL       time.Duration // Handoff token lifetime, capped at 2m (default: 2m)
	StateTTL       time.Duration // State handle lifetime (default: 5m)
	DefaultScopeID string        // Optional: scope used when a request names none

	DirectCookie       bool   // Enable POST /v1/handoff/token (default: false)
	CookieName         string // Direct flow cookie name (default: analytics_token)
	CookieParentDomain string // Optional: shared parent domain for the cookie

	ScopesFile string // Optional: JSON scope definitions, re-imported on change

	IdPMode      string        // http or jwt (default: http)
	IdPURL       string        // Required in http mode
	IdPAPIKey    string        // Optional: sent as the apikey header in http mode
	IdPJWTSecret string        // Required in jwt mode
	IdPTimeout   time.Duration // Identity provider call timeout (default: 5s)
	IdPMaxRPS    float64       // Outbound identity provider request cap, 0 disables (default: 0)

	StoreTimeout     time.Duration // Per-call database timeout (default: 2s)
	RateLimitBackend string        // sqlite or memory (default: sqlite)

	DatabaseFile  string // Path to SQLite database file (default: ./handoff.db)
	MasterKeyPath string // Optional: file holding the key that encrypts scope secrets

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	LogFile              string        // Optional: also log to this rotated file
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Sweep interval (default: 5m)
}

func LoadConfig() Config {
	return Config{
		Issuer:         getEnvOrDefault("HANDOFF_ISSUER", "portal-handoff"),
		Audience:       getEnvOrDefault("HANDOFF_AUDIENCE", "analytics-app"),
		TokenTTL:       getEnvDurationOrDefault("HANDOFF_TOKEN_TTL", 2*time.Minute),
		StateTTL:       getEnvDurationOrDefault("HANDOFF_STATE_TTL", 5*time.Minute),
		DefaultScopeID: os.Getenv("HANDOFF_DEFAULT_SCOPE_ID"),

		DirectCookie:       getEnvBoolOrDefault("HANDOFF_DIRECT_COOKIE", false),
		CookieName:         getEnvOrDefault("HANDOFF_COOKIE_NAME", "analytics_token"),
		CookieParentDomain: os.Getenv("HANDOFF_COOKIE_PARENT_DOMAIN"),

		ScopesFile: os.Getenv("HANDOFF_SCOPES_FILE"),

		IdPMode:      strings.ToLower(getEnvOrDefault("IDP_MODE", IdPModeHTTP)),
		IdPURL:       os.Getenv("IDP_URL"),
		IdPAPIKey:    os.Getenv("IDP_API_KEY"),
		IdPJWTSecret: os.Getenv("IDP_JWT_SECRET"),
		IdPTimeout:   getEnvDurationOrDefault("IDP_TIMEOUT", 5*time.Second),
		IdPMaxRPS:    getEnvFloatOrDefault("IDP_MAX_RPS", 0),

		StoreTimeout:     getEnvDurationOrDefault("STORE_TIMEOUT", 2*time.Second),
		RateLimitBackend: strings.ToLower(getEnvOrDefault("RATELIMIT_BACKEND", RateLimitBackendSQLite)),

		DatabaseFile:  getEnvOrDefault("DATABASE_FILE", "handoff.db"),
		MasterKeyPath: os.Getenv("MASTER_KEY_PATH"),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		LogFile:              os.Getenv("LOG_FILE"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 5*time.Minute),
	}
}

// Validate reports settings the server cannot start with.
func (c Config) Validate() error {
	var errs []error

	if c.Issuer == "" || c.Audience == "" {
		errs = append(errs, errors.New("HANDOFF_ISSUER and HANDOFF_AUDIENCE must not be empty"))
	}

	switch c.IdPMode {
	case IdPModeHTTP:
		if c.IdPURL == "" {
			errs = append(errs, errors.New("IDP_URL is required when IDP_MODE=http"))
		}
	case IdPModeJWT:
		if c.IdPJWTSecret == "" {
			errs = append(errs, errors.New("IDP_JWT_SECRET is required when IDP_MODE=jwt"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown IDP_MODE %q", c.IdPMode))
	}

	switch c.RateLimitBackend {
	case RateLimitBackendSQLite, RateLimitBackendMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown RATELIMIT_BACKEND %q", c.RateLimitBackend))
	}

	return errors.Join(errs...)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil && f >= 0 {
		return f
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are seconds
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
