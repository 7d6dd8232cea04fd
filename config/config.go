// Package config builds the immutable runtime configuration of the sample app.
//
// All values come from environment variables. A .env file in the working
// directory is loaded first when present; variables already set in the
// process environment take precedence over the file.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// DefaultPort is used when PORT is unset
	DefaultPort = "3000"
	// DefaultEnvironment is reported when ENVIRONMENT is unset
	DefaultEnvironment = "development"
	// DefaultDBPort is the PostgreSQL port used when DB_PORT is unset
	DefaultDBPort = "5432"
)

// Config holds all runtime configuration. It is built once by Load and
// passed by value afterwards.
type Config struct {
	Port string
	// Environment is the raw ENVIRONMENT value, empty when unset.
	Environment           string
	AppInsightsConfigured bool
	RedactErrors          bool
	ShutdownTimeout       time.Duration

	Database    DatabaseConfig
	Cache       CacheConfig
	Events      EventsConfig
	ObjectStore ObjectStoreConfig

	// Warnings collects values that could not be parsed and fell back to
	// their defaults. main logs them once the logger is up.
	Warnings []string
}

// DatabaseConfig describes how to reach the item store.
type DatabaseConfig struct {
	ConnectionString string
	Host             string
	Port             string
	Name             string
	User             string
	Password         string
	SSLMode          string
	MaxConns         int32
	ConnectTimeout   time.Duration
}

// CacheConfig configures the Redis list cache. An empty Addr disables it.
type CacheConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// EventsConfig configures item event publishing. An empty URL disables it.
type EventsConfig struct {
	URL   string
	Queue string
}

// ObjectStoreConfig configures snapshot export. An empty Endpoint disables it.
type ObjectStoreConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Load reads the environment and returns the resulting Config.
func Load() Config {
	// .env is optional
	_ = godotenv.Load()

	l := &loader{}
	return Config{
		Port:                  l.str("PORT", DefaultPort),
		Environment:           os.Getenv("ENVIRONMENT"),
		AppInsightsConfigured: os.Getenv("APPLICATIONINSIGHTS_CONNECTION_STRING") != "",
		RedactErrors:          l.boolean("REDACT_ERRORS", false),
		ShutdownTimeout:       l.duration("SHUTDOWN_TIMEOUT", 10*time.Second),
		Database: DatabaseConfig{
			ConnectionString: os.Getenv("DATABASE_CONNECTION_STRING"),
			Host:             os.Getenv("DB_HOST"),
			Port:             l.str("DB_PORT", DefaultDBPort),
			Name:             os.Getenv("DB_NAME"),
			User:             os.Getenv("DB_USER"),
			Password:         os.Getenv("DB_PASSWORD"),
			SSLMode:          l.str("DB_SSLMODE", "require"),
			MaxConns:         int32(l.integer("DB_MAX_CONNS", 10)),
			ConnectTimeout:   l.duration("DB_CONNECT_TIMEOUT", 5*time.Second),
		},
		Cache: CacheConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       l.integer("REDIS_DB", 0),
			TTL:      l.duration("CACHE_TTL", 30*time.Second),
		},
		Events: EventsConfig{
			URL:   os.Getenv("AMQP_URL"),
			Queue: l.str("ITEM_EVENTS_QUEUE", "items.created"),
		},
		ObjectStore: ObjectStoreConfig{
			Endpoint:  os.Getenv("OBJECT_STORE_ENDPOINT"),
			AccessKey: os.Getenv("OBJECT_STORE_ACCESS_KEY"),
			SecretKey: os.Getenv("OBJECT_STORE_SECRET_KEY"),
			Bucket:    l.str("OBJECT_STORE_BUCKET", "items-export"),
			UseSSL:    l.boolean("OBJECT_STORE_USE_SSL", false),
		},
		Warnings: l.warnings,
	}
}

// EnvironmentName returns the configured environment or the default.
func (c Config) EnvironmentName() string {
	if c.Environment == "" {
		return DefaultEnvironment
	}
	return c.Environment
}

// Addr returns the HTTP listen address.
func (c Config) Addr() string {
	return ":" + c.Port
}

// Configured reports whether any store configuration is present.
func (d DatabaseConfig) Configured() bool {
	return d.ConnectionString != "" || d.Host != ""
}

type loader struct {
	warnings []string
}

func (l *loader) str(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func (l *loader) integer(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		l.warn(key, v)
		return def
	}
	return n
}

func (l *loader) duration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		l.warn(key, v)
		return def
	}
	return d
}

func (l *loader) boolean(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	l.warn(key, v)
	return def
}

func (l *loader) warn(key, value string) {
	l.warnings = append(l.warnings, key+"="+strconv.Quote(value))
}
