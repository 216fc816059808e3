package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points Load at an empty directory so no stray .env or config file
// leaks into the test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	for _, key := range []string{"INFERENCE_API_KEY", "GEMINI_API_KEY", "GOOGLE_AI_API_KEY", "API_KEY", "APP_ENV", "APP_PORT", "SESSION_SECRET", "DB_DRIVER", "STORAGE_DRIVER", "INFERENCE_MODEL", "SESSION_COOKIE_SECURE", "GCS_BUCKET_NAME"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	t.Setenv("CONFIG_FILE", filepath.Join(dir, "missing.toml"))
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTPAddr())
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL())
	assert.Equal(t, 30*time.Second, cfg.InferenceTimeout())
	assert.Equal(t, "gemini", cfg.Inference.Provider)
	assert.Equal(t, "local", cfg.Storage.Driver)
	assert.False(t, cfg.RabbitMQ.Enabled)
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[app]
port = 9000

[database]
driver = "postgres"

[inference]
model = "from-file"
`), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("INFERENCE_MODEL", "from-env")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.App.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "from-env", cfg.Inference.Model)
}

func TestAPIKeyFallbackOrder(t *testing.T) {
	isolate(t)
	t.Setenv("GOOGLE_AI_API_KEY", "google-key")
	t.Setenv("API_KEY", "generic-key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "google-key", cfg.Inference.APIKey)

	t.Setenv("GEMINI_API_KEY", "gemini-key")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "gemini-key", cfg.Inference.APIKey)
}

func TestValidate(t *testing.T) {
	isolate(t)

	t.Setenv("DB_DRIVER", "sqlite")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("STORAGE_DRIVER", "gcs")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("STORAGE_DRIVER", "local")
	t.Setenv("APP_ENV", "production")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("SESSION_SECRET", "a-real-secret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Auth.CookieSecure)
}
