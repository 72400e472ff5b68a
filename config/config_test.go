package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, StorageMemory, cfg.StorageDriver)
	assert.Equal(t, 24, cfg.JWTExpirationHours)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, int64(5*1024*1024), cfg.MaxResumeBytes)
	assert.True(t, cfg.DBMigrate)
}

func TestLoadConfigSelectsPostgresWithDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/autofill")
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("JWT_EXPIRATION_HOURS", "not-a-number")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, StoragePostgres, cfg.StorageDriver)
	assert.Equal(t, 24, cfg.JWTExpirationHours)
}

func TestOrigins(t *testing.T) {
	t.Setenv("FRONTEND_URL", "http://localhost:5173/")
	t.Setenv("ALLOWED_ORIGINS", " chrome-extension://abc , http://localhost:5173,https://app.example.com/")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"http://localhost:5173",
		"chrome-extension://abc",
		"https://app.example.com",
	}, cfg.Origins())
}
