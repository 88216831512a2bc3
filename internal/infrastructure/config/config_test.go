package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"ERP_APP_NAME",
	"ERP_APP_ENV",
	"ERP_APP_PORT",
	"ERP_DATABASE_DRIVER",
	"ERP_DATABASE_PATH",
	"ERP_DATABASE_HOST",
	"ERP_DATABASE_PORT",
	"ERP_DATABASE_PASSWORD",
	"ERP_DATABASE_SSLMODE",
	"ERP_DATABASE_MAX_OPEN_CONNS",
	"ERP_DATABASE_MAX_IDLE_CONNS",
	"ERP_SEQUENCE_LOCK_ENABLED",
	"ERP_SEQUENCE_LOCK_TTL",
	"ERP_SEQUENCE_RETRY",
	"ERP_TELEMETRY_SAMPLING_RATIO",
	"ERP_TELEMETRY_DB_LOG_FULL_SQL",
	"ERP_TELEMETRY_PROFILING_ENABLED",
	"ERP_TELEMETRY_PROFILING_SERVER",
}

// clearEnv blanks every key for the duration of the test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "erp-backoffice", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, DriverPostgres, cfg.Database.Driver)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "backoffice", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.False(t, cfg.Sequence.LockEnabled)
		assert.Equal(t, 5*time.Second, cfg.Sequence.LockTTL)
		assert.Equal(t, 1, cfg.Sequence.Retry)
		assert.Equal(t, "erp-backoffice", cfg.Telemetry.ServiceName)
		assert.Equal(t, int64(2<<20), cfg.HTTP.MaxBodyBytes)
		assert.Empty(t, cfg.HTTP.AllowOrigins)
	})

	t.Run("loads values from environment variables with ERP prefix", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("ERP_APP_NAME", "test-app")
		t.Setenv("ERP_APP_PORT", "9000")
		t.Setenv("ERP_DATABASE_HOST", "testdb.local")
		t.Setenv("ERP_DATABASE_PORT", "5433")
		t.Setenv("ERP_SEQUENCE_LOCK_ENABLED", "true")
		t.Setenv("ERP_SEQUENCE_LOCK_TTL", "2s")
		t.Setenv("ERP_SEQUENCE_RETRY", "0")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.True(t, cfg.Sequence.LockEnabled)
		assert.Equal(t, 2*time.Second, cfg.Sequence.LockTTL)
		assert.Equal(t, 0, cfg.Sequence.Retry)
	})

	t.Run("sqlite driver gets a default path", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("ERP_DATABASE_DRIVER", "SQLite")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, DriverSQLite, cfg.Database.Driver)
		assert.Equal(t, "backoffice.db", cfg.Database.Path)
	})

	t.Run("rejects unknown driver", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("ERP_DATABASE_DRIVER", "mysql")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.driver")
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("ERP_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("ERP_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("rejects sampling ratio out of range", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("ERP_TELEMETRY_SAMPLING_RATIO", "1.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sampling_ratio")
	})

	t.Run("profiling needs a server", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("ERP_TELEMETRY_PROFILING_ENABLED", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "profiling_server")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	production := func(t *testing.T) {
		clearEnv(t)
		t.Setenv("ERP_APP_ENV", "production")
		t.Setenv("ERP_DATABASE_PASSWORD", "secure-password")
		t.Setenv("ERP_DATABASE_SSLMODE", "require")
	}

	t.Run("passes with valid production config", func(t *testing.T) {
		production(t)
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})

	t.Run("requires database.password", func(t *testing.T) {
		production(t)
		os.Unsetenv("ERP_DATABASE_PASSWORD")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required in production")
	})

	t.Run("requires SSL", func(t *testing.T) {
		production(t)
		t.Setenv("ERP_DATABASE_SSLMODE", "disable")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sslmode")
	})

	t.Run("forbids sqlite", func(t *testing.T) {
		production(t)
		t.Setenv("ERP_DATABASE_DRIVER", "sqlite")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sqlite is not supported in production")
	})

	t.Run("forbids full SQL in traces", func(t *testing.T) {
		production(t)
		t.Setenv("ERP_TELEMETRY_DB_LOG_FULL_SQL", "true")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db_log_full_sql")
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "user",
		Password: "pass@word#123",
		DBName:   "db",
		SSLMode:  "disable",
	}

	dsn := cfg.DSN()
	assert.Contains(t, dsn, "localhost:5432")
	assert.Contains(t, dsn, "pass%40word%23123")
	assert.Contains(t, dsn, "sslmode=disable")
}

func TestRedisConfig_Addr(t *testing.T) {
	r := RedisConfig{Host: "cache", Port: 6380}
	assert.Equal(t, "cache:6380", r.Addr())
}
