package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 1000, cfg.Hub.ChunkSize)
	assert.Equal(t, 30*24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 4, cfg.Fetch.Concurrency)
	assert.Equal(t, "json", cfg.Logger.Format)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_CONN_MAX_LIFETIME", "5m")
	t.Setenv("HUB_DSN", "hub:pw@tcp(hub:3306)/woltlab")
	t.Setenv("AUTH_TOKEN_TTL", "not-a-duration")
	t.Setenv("FETCH_CONCURRENCY", "8")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 5*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, "hub:pw@tcp(hub:3306)/woltlab", cfg.Hub.DSN)
	assert.Equal(t, 30*24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 8, cfg.Fetch.Concurrency)
	assert.Equal(t, "host=db port=5432 user=forge password=secret dbname=forge sslmode=disable", cfg.Database.DSN())
}

func TestRequireAuthSecret(t *testing.T) {
	t.Setenv("AUTH_SECRET", "")
	cfg, err := Load()
	require.NoError(t, err)
	assert.ErrorIs(t, cfg.RequireAuthSecret(), ErrMissingAuthSecret)

	t.Setenv("AUTH_SECRET", "s3cret")
	cfg, err = Load()
	require.NoError(t, err)
	assert.NoError(t, cfg.RequireAuthSecret())
}
