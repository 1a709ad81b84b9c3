package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequiresAPIKey(t *testing.T) {
	t.Setenv("ADMIN_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ADMIN_API_KEY")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ADMIN_API_KEY", "test-api-key")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 8*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 100, cfg.Policy.GeneralRateLimit)
	assert.Equal(t, 15*time.Minute, cfg.Policy.GeneralRateWindow)
	assert.Equal(t, 5, cfg.Policy.AuthRateLimit)
	assert.Equal(t, 1, cfg.Policy.SharedIPThreshold)
	assert.Equal(t, 5, cfg.Policy.FailedLoginThreshold)
	assert.Equal(t, 24*time.Hour, cfg.Policy.FailedLoginWindow)
	assert.Equal(t, 30*24*time.Hour, cfg.Policy.AttemptRetention)

	// A missing JWT secret is generated, long enough for the authenticator
	assert.GreaterOrEqual(t, len(cfg.JWTSecret), 32)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ADMIN_API_KEY", "test-api-key")
	t.Setenv("GENERAL_RATE_LIMIT", "42")
	t.Setenv("AUTH_RATE_LIMIT", "3")
	t.Setenv("SHARED_IP_THRESHOLD", "4")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 42, cfg.Policy.GeneralRateLimit)
	assert.Equal(t, 3, cfg.Policy.AuthRateLimit)
	assert.Equal(t, 4, cfg.Policy.SharedIPThreshold)
}

func TestLoad_PolicyFileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "security.yaml")
	content := []byte(`
general_rate_limit: 200
auth_rate_window_minutes: 5
failed_login_threshold: 10
attempt_retention_days: 7
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	t.Setenv("ADMIN_API_KEY", "test-api-key")
	t.Setenv("SECURITY_CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)

	// File values win over environment defaults
	assert.Equal(t, 200, cfg.Policy.GeneralRateLimit)
	assert.Equal(t, 5*time.Minute, cfg.Policy.AuthRateWindow)
	assert.Equal(t, 10, cfg.Policy.FailedLoginThreshold)
	assert.Equal(t, 7*24*time.Hour, cfg.Policy.AttemptRetention)

	// Settings absent from the file keep their defaults
	assert.Equal(t, 15*time.Minute, cfg.Policy.GeneralRateWindow)
	assert.Equal(t, 5, cfg.Policy.AuthRateLimit)
}

func TestLoad_PolicyFileInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "security.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{not yaml"), 0o600))

	t.Setenv("ADMIN_API_KEY", "test-api-key")
	t.Setenv("SECURITY_CONFIG_PATH", path)

	_, err := Load()
	assert.Error(t, err)
}
