package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "STORAGE_DRIVER", "DATABASE_URL", "CORS_ALLOWED_ORIGINS",
		"BCRYPT_COST", "PASSWORD_MIN_LENGTH", "LOG_LEVEL", "LOG_FORMAT",
		"ADMIN_USERNAME", "ADMIN_EMAIL", "ADMIN_PASSWORD",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/accounts")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, ":8000", cfg.HTTPAddress())
	assert.Equal(t, DriverPostgres, cfg.StorageDriver)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, bcrypt.DefaultCost, cfg.BcryptCost)
	assert.Equal(t, 8, cfg.PasswordMinLength)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.False(t, cfg.Admin.Enabled())
}

func TestLoad_PostgresRequiresDatabaseURL(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	require.EqualError(t, err, "DATABASE_URL is required")
}

func TestLoad_MemoryDriverNeedsNoDatabase(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_DRIVER", "Memory")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.StorageDriver)
}

func TestLoad_UnknownDriver(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_DRIVER", "mysql")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_BcryptCostClamped(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"1", bcrypt.MinCost},
		{"99", bcrypt.MaxCost},
		{"12", 12},
		{"nope", bcrypt.DefaultCost},
	}
	for _, tc := range tests {
		t.Run(tc.raw, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("STORAGE_DRIVER", DriverMemory)
			t.Setenv("BCRYPT_COST", tc.raw)

			cfg, err := Load()
			require.NoError(t, err)
			assert.Equal(t, tc.want, cfg.BcryptCost)
		})
	}
}

func TestLoad_CORSOrigins(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_DRIVER", DriverMemory)
	t.Setenv("CORS_ALLOWED_ORIGINS", " http://localhost:5173 , ,https://app.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"http://localhost:5173", "https://app.example.com"}, cfg.CORSOrigins)
}

func TestLoad_PartialAdminRejected(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_DRIVER", DriverMemory)
	t.Setenv("ADMIN_USERNAME", "root")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_AdminEnabled(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_DRIVER", DriverMemory)
	t.Setenv("ADMIN_USERNAME", "root")
	t.Setenv("ADMIN_EMAIL", "root@example.com")
	t.Setenv("ADMIN_PASSWORD", "s3cret-pass")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Admin.Enabled())
}
