package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_URL", "postgres://localhost/servify")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 24, cfg.JWT.ExpiryHours)
	assert.True(t, cfg.Lifecycle.NotifyAutoRejected)
	assert.False(t, cfg.Catalog.Seed)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_URL", "postgres://localhost/servify")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PORT", "9000")
	t.Setenv("GIN_MODE", "release")
	t.Setenv("NOTIFY_AUTO_REJECTED", "false")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("LOG_FORMAT", "CONSOLE")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.True(t, cfg.Server.IsRelease())
	assert.False(t, cfg.Lifecycle.NotifyAutoRejected)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("DB_URL", "")
	t.Setenv("JWT_SECRET", "secret")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RejectsNonPositiveExpiry(t *testing.T) {
	t.Setenv("DB_URL", "postgres://localhost/servify")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("JWT_EXPIRY_HOURS", "0")

	_, err := Load()
	assert.Error(t, err)
}
