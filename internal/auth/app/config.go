package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/gatekeeper/pkg/jwtx"
	"golang.org/x/crypto/bcrypt"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

type Config struct {
	Issuer        string // Optional: issuer claim for tokens (default: gatekeeper)
	JWTSecret     string // Required unless JWTSecretFile is set: HS256 signing secret, at least 32 bytes
	JWTSecretFile string // Optional: file holding the signing secret
	JWTExpiresIn  string // Optional: token lifetime, e.g. 1d, 12h, 3600 (default: 1d)
	BcryptCost    int    // Optional: bcrypt work factor (default: 12)

	DatabaseDriver string // Optional: sqlite or postgres (default: sqlite)
	DatabaseFile   string // Optional: path to SQLite database file (default: ./auth.db)
	DatabaseURL    string // Required for postgres: connection string

	SessionStore  string        // Optional: memory or redis (default: memory)
	RedisURL      string        // Required for redis: redis://host:port/db or host:port
	SessionTTL    time.Duration // Optional: server-side session lifetime (default: 24h)
	SessionCookie string        // Optional: session cookie name (default: sid)

	CORSOrigins []string // Optional: comma separated allowed origins from CORS_ORIGIN

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Expired session sweep interval (default: 1h)
}

func LoadConfig() Config {
	return Config{
		Issuer:        getEnvOrDefault("AUTH_ISSUER", "gatekeeper"),
		JWTSecret:     os.Getenv("AUTH_JWT_SECRET"),
		JWTSecretFile: os.Getenv("AUTH_JWT_SECRET_FILE"),
		JWTExpiresIn:  getEnvOrDefault("AUTH_JWT_EXPIRES_IN", "1d"),
		BcryptCost:    getEnvIntOrDefault("AUTH_BCRYPT_COST", 12),

		DatabaseDriver: strings.ToLower(getEnvOrDefault("AUTH_DATABASE_DRIVER", DriverSQLite)),
		DatabaseFile:   getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),
		DatabaseURL:    os.Getenv("AUTH_DATABASE_URL"),

		SessionStore:  strings.ToLower(getEnvOrDefault("AUTH_SESSION_STORE", SessionStoreMemory)),
		RedisURL:      os.Getenv("AUTH_REDIS_URL"),
		SessionTTL:    getEnvDurationOrDefault("AUTH_SESSION_TTL", 24*time.Hour),
		SessionCookie: getEnvOrDefault("AUTH_SESSION_COOKIE", "sid"),

		CORSOrigins: splitList(os.Getenv("CORS_ORIGIN")),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}
}

// Production reports whether cookies must be Secure and 5xx bodies sanitised.
func (c Config) Production() bool {
	switch strings.ToLower(c.Env) {
	case "prod", "production":
		return true
	}
	return false
}

// Validate reports every problem that should stop the service from starting.
func (c Config) Validate() error {
	var errs []error

	if secret, err := LoadSecret(c); err != nil {
		errs = append(errs, err)
	} else if len(secret) < jwtx.MinSecretBytes {
		errs = append(errs, jwtx.ErrWeakSecret)
	}

	if _, err := jwtx.ParseTTL(c.JWTExpiresIn); err != nil {
		errs = append(errs, fmt.Errorf("AUTH_JWT_EXPIRES_IN: %w", err))
	}

	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("AUTH_BCRYPT_COST must be between %d and %d, got %d",
			bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost))
	}

	switch c.DatabaseDriver {
	case DriverSQLite:
		if c.DatabaseFile == "" {
			errs = append(errs, errors.New("AUTH_DATABASE_FILE is required for the sqlite driver"))
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("AUTH_DATABASE_URL is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown AUTH_DATABASE_DRIVER %q", c.DatabaseDriver))
	}

	switch c.SessionStore {
	case SessionStoreMemory:
	case SessionStoreRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("AUTH_REDIS_URL is required for the redis session store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown AUTH_SESSION_STORE %q", c.SessionStore))
	}

	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("AUTH_SESSION_TTL must be positive"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT out of range: %d", c.Port))
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

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
