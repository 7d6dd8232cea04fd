package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "ENVIRONMENT", "APPLICATIONINSIGHTS_CONNECTION_STRING",
		"DATABASE_CONNECTION_STRING", "DB_HOST", "DB_PORT", "DB_NAME", "DB_USER",
		"DB_PASSWORD", "DB_SSLMODE", "DB_MAX_CONNS", "DB_CONNECT_TIMEOUT",
		"REDACT_ERRORS", "SHUTDOWN_TIMEOUT", "REDIS_ADDR", "CACHE_TTL",
		"AMQP_URL", "OBJECT_STORE_ENDPOINT",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	assert.Equal(t, ":3000", cfg.Addr())
	assert.Equal(t, "", cfg.Environment)
	assert.Equal(t, "development", cfg.EnvironmentName())
	assert.False(t, cfg.AppInsightsConfigured)
	assert.False(t, cfg.Database.Configured())
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, "require", cfg.Database.SSLMode)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "items.created", cfg.Events.Queue)
	assert.Empty(t, cfg.Warnings)
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8081")
	t.Setenv("ENVIRONMENT", "prod")
	t.Setenv("APPLICATIONINSIGHTS_CONNECTION_STRING", "InstrumentationKey=abc")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("REDACT_ERRORS", "yes")
	t.Setenv("CACHE_TTL", "1m")

	cfg := Load()

	assert.Equal(t, ":8081", cfg.Addr())
	assert.Equal(t, "prod", cfg.EnvironmentName())
	assert.True(t, cfg.AppInsightsConfigured)
	assert.True(t, cfg.Database.Configured())
	assert.True(t, cfg.RedactErrors)
	assert.Equal(t, time.Minute, cfg.Cache.TTL)
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_MAX_CONNS", "many")
	t.Setenv("SHUTDOWN_TIMEOUT", "soon")

	cfg := Load()

	assert.Equal(t, int32(10), cfg.Database.MaxConns)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Len(t, cfg.Warnings, 2)
}

func TestPoolConfigFromDiscreteFields(t *testing.T) {
	d := DatabaseConfig{
		Host:           "db.example.com",
		Name:           "workshop",
		User:           "app",
		Password:       "p@ss 'word'",
		SSLMode:        "require",
		MaxConns:       4,
		ConnectTimeout: 3 * time.Second,
	}

	cfg, err := d.PoolConfig()
	require.NoError(t, err)

	assert.Equal(t, "db.example.com", cfg.ConnConfig.Host)
	assert.Equal(t, uint16(5432), cfg.ConnConfig.Port)
	assert.Equal(t, "workshop", cfg.ConnConfig.Database)
	assert.Equal(t, "app", cfg.ConnConfig.User)
	assert.Equal(t, "p@ss 'word'", cfg.ConnConfig.Password)
	assert.Equal(t, int32(4), cfg.MaxConns)
	assert.Equal(t, 3*time.Second, cfg.ConnConfig.ConnectTimeout)
	require.NotNil(t, cfg.ConnConfig.TLSConfig)
	assert.True(t, cfg.ConnConfig.TLSConfig.InsecureSkipVerify)
}

func TestPoolConfigConnectionStringWins(t *testing.T) {
	d := DatabaseConfig{
		ConnectionString: "postgres://u:p@primary.example.com:6432/items?sslmode=verify-full",
		Host:             "ignored.example.com",
	}

	cfg, err := d.PoolConfig()
	require.NoError(t, err)

	assert.Equal(t, "primary.example.com", cfg.ConnConfig.Host)
	assert.Equal(t, uint16(6432), cfg.ConnConfig.Port)
	require.NotNil(t, cfg.ConnConfig.TLSConfig)
	assert.True(t, cfg.ConnConfig.TLSConfig.InsecureSkipVerify)
}

func TestPoolConfigPreferFallbacksSkipVerification(t *testing.T) {
	d := DatabaseConfig{ConnectionString: "postgres://u:p@localhost/items?sslmode=prefer"}

	cfg, err := d.PoolConfig()
	require.NoError(t, err)

	for _, fb := range cfg.ConnConfig.Fallbacks {
		if fb.TLSConfig != nil {
			assert.True(t, fb.TLSConfig.InsecureSkipVerify)
		}
	}
}

func TestPoolConfigRejectsGarbage(t *testing.T) {
	d := DatabaseConfig{ConnectionString: "postgres://%zz"}

	_, err := d.PoolConfig()
	assert.Error(t, err)
}
