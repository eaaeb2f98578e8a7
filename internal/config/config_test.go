package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contalink/internal/core/apperror"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.False(t, cfg.BackendEnabled)
	assert.Equal(t, DirectoryHTTP, cfg.DirectoryDriver)
	assert.Equal(t, CacheMemory, cfg.CacheDriver)
	assert.Equal(t, RecordsHTTP, cfg.RecordsDriver)
	assert.Equal(t, "dev-subdomain", cfg.OverrideCookie)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.True(t, cfg.Development())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("ENABLE_BACKEND", "true")
	t.Setenv("BACKEND_API_TIMEOUT", "5s")
	t.Setenv("TENANT_CACHE", "Redis")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("TENANT_DEV_OVERRIDES", "1")
	t.Setenv("TENANT_LOOKUP_RATE", "2.5")
	t.Setenv("RECORDS_DRIVER", "postgres")
	t.Setenv("RECORDS_DATABASE_URL", "postgres://db/tns_{backend_id}")
	t.Setenv("APP_ENV", "production")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.True(t, cfg.BackendEnabled)
	assert.Equal(t, 5*time.Second, cfg.APITimeout)
	assert.Equal(t, CacheRedis, cfg.CacheDriver)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.True(t, cfg.DevOverrides)
	assert.Equal(t, 2.5, cfg.LookupRate)
	assert.Equal(t, RecordsPostgres, cfg.RecordsDriver)
	assert.False(t, cfg.Development())
}

func TestFromEnvIgnoresMalformedValues(t *testing.T) {
	t.Setenv("REDIS_DB", "two")
	t.Setenv("TENANT_CACHE_TTL", "soon")
	t.Setenv("ENABLE_BACKEND", "maybe")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.False(t, cfg.BackendEnabled)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		key  string
	}{
		{"unknown cache", map[string]string{"TENANT_CACHE": "memcached"}, "TENANT_CACHE"},
		{"unknown directory", map[string]string{"TENANT_DIRECTORY": "ldap"}, "TENANT_DIRECTORY"},
		{"postgres directory without dsn", map[string]string{"TENANT_DIRECTORY": "postgres"}, "META_DATABASE_URL"},
		{"postgres records without placeholder", map[string]string{"RECORDS_DRIVER": "postgres", "RECORDS_DATABASE_URL": "postgres://db/x"}, "RECORDS_DATABASE_URL"},
		{"unknown records driver", map[string]string{"RECORDS_DRIVER": "odbc"}, "RECORDS_DRIVER"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			require.Error(t, err)
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeConfiguration, appErr.Code)
			assert.Equal(t, tt.key, appErr.Details["key"])
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("APP_PORT=9191\nCATALOG_PATH=/etc/contalink/catalog.yaml\n"), 0o600))

	// Variables already set win over the file.
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("APP_PORT", "")
	os.Unsetenv("APP_PORT")
	os.Unsetenv("CATALOG_PATH")
	t.Cleanup(func() {
		os.Unsetenv("APP_PORT")
		os.Unsetenv("CATALOG_PATH")
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9191", cfg.Port)
	assert.Equal(t, "/etc/contalink/catalog.yaml", cfg.CatalogPath)
	assert.Equal(t, "debug", cfg.LogLevel)
}
