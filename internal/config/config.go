// Package config loads portal settings from .env files and the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"contalink/internal/core/apperror"
)

// Cache drivers.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Directory drivers.
const (
	DirectoryHTTP     = "http"
	DirectoryPostgres = "postgres"
)

// Records drivers.
const (
	RecordsHTTP     = "http"
	RecordsPostgres = "postgres"
)

// Config holds all portal settings.
type Config struct {
	AppEnv   string
	Port     string
	LogLevel string

	// Backend API (company directory + records)
	BackendEnabled bool
	APIURL         string
	APIKey         string
	APITimeout     time.Duration
	LookupRate     float64
	LookupBurst    int

	// Tenant resolution
	DirectoryDriver string
	MetaDSN         string
	DevOverrides    bool
	OverrideCookie  string

	// Company cache
	CacheDriver string
	CacheTTL    time.Duration
	RedisAddr   string
	RedisDB     int
	RedisPrefix string

	// Records
	RecordsDriver    string
	RecordsDSN       string // template with {backend_id}
	RecordsMaxPools  int
	RecordsPoolIdle  time.Duration
	StatementTimeout time.Duration

	// Table catalogue; empty uses the embedded one.
	CatalogPath string

	MetricsEnabled bool
}

// Development reports whether the portal runs in development mode.
func (c *Config) Development() bool {
	return c.AppEnv == "development"
}

// Load reads .env files (missing files are ignored, existing environment
// variables win) and then the environment.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		AppEnv:   getEnv("APP_ENV", "development"),
		Port:     getEnv("APP_PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		BackendEnabled: getEnvBool("ENABLE_BACKEND", false),
		APIURL:         getEnv("BACKEND_API_URL", "http://localhost:8000"),
		APIKey:         getEnv("BACKEND_API_KEY", ""),
		APITimeout:     getEnvDuration("BACKEND_API_TIMEOUT", 30*time.Second),
		LookupRate:     getEnvFloat("TENANT_LOOKUP_RATE", 0),
		LookupBurst:    getEnvInt("TENANT_LOOKUP_BURST", 10),

		DirectoryDriver: strings.ToLower(getEnv("TENANT_DIRECTORY", DirectoryHTTP)),
		MetaDSN:         getEnv("META_DATABASE_URL", ""),
		DevOverrides:    getEnvBool("TENANT_DEV_OVERRIDES", false),
		OverrideCookie:  getEnv("TENANT_OVERRIDE_COOKIE", "dev-subdomain"),

		CacheDriver: strings.ToLower(getEnv("TENANT_CACHE", CacheMemory)),
		CacheTTL:    getEnvDuration("TENANT_CACHE_TTL", 10*time.Minute),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:     getEnvInt("REDIS_DB", 0),
		RedisPrefix: getEnv("REDIS_PREFIX", "contalink:company:"),

		RecordsDriver:    strings.ToLower(getEnv("RECORDS_DRIVER", RecordsHTTP)),
		RecordsDSN:       getEnv("RECORDS_DATABASE_URL", ""),
		RecordsMaxPools:  getEnvInt("RECORDS_MAX_POOLS", 50),
		RecordsPoolIdle:  getEnvDuration("RECORDS_POOL_IDLE_TIMEOUT", 15*time.Minute),
		StatementTimeout: getEnvDuration("RECORDS_STATEMENT_TIMEOUT", 30*time.Second),

		CatalogPath: getEnv("CATALOG_PATH", ""),

		MetricsEnabled: getEnvBool("METRICS_ENABLED", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks driver names and the settings each driver needs.
func (c *Config) Validate() error {
	switch c.DirectoryDriver {
	case DirectoryHTTP:
	case DirectoryPostgres:
		if c.MetaDSN == "" {
			return invalid("META_DATABASE_URL", "required when TENANT_DIRECTORY=postgres")
		}
	default:
		return invalid("TENANT_DIRECTORY", fmt.Sprintf("unknown directory driver %q", c.DirectoryDriver))
	}

	switch c.CacheDriver {
	case CacheMemory:
	case CacheRedis:
		if c.RedisAddr == "" {
			return invalid("REDIS_ADDR", "required when TENANT_CACHE=redis")
		}
	default:
		return invalid("TENANT_CACHE", fmt.Sprintf("unknown cache driver %q", c.CacheDriver))
	}

	switch c.RecordsDriver {
	case RecordsHTTP:
	case RecordsPostgres:
		if !strings.Contains(c.RecordsDSN, "{backend_id}") {
			return invalid("RECORDS_DATABASE_URL", "must contain {backend_id} when RECORDS_DRIVER=postgres")
		}
	default:
		return invalid("RECORDS_DRIVER", fmt.Sprintf("unknown records driver %q", c.RecordsDriver))
	}

	if c.BackendEnabled && c.DirectoryDriver == DirectoryHTTP && c.APIURL == "" {
		return invalid("BACKEND_API_URL", "required when ENABLE_BACKEND=true")
	}
	return nil
}

func invalid(key, msg string) error {
	return apperror.NewConfiguration(key + ": " + msg).WithDetail("key", key)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
