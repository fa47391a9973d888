package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s")
	t.Setenv("CSRF_SECRET", "c")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3001/api", cfg.APIBaseURL)
	assert.Equal(t, 30*time.Second, cfg.APITimeout)
	assert.Equal(t, 30*time.Second, cfg.ProfileCacheTTL)
	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.False(t, cfg.AuditEnabled())
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigReadsDotEnv(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s")
	t.Setenv("CSRF_SECRET", "c")
	t.Setenv("LOG_LEVEL", "debug")
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("API_BASE_URL=https://hr.example.ng/api\nLOG_LEVEL=error\nPG_DSN=postgres://kola@localhost/kola\n"), 0o600))
	t.Cleanup(func() {
		_ = os.Unsetenv("API_BASE_URL")
		_ = os.Unsetenv("PG_DSN")
	})

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://hr.example.ng/api", cfg.APIBaseURL)
	assert.True(t, cfg.AuditEnabled())
	// The environment wins over the file.
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfigRequiresSecrets(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("CSRF_SECRET", "")

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
