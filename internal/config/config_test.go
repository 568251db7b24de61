package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("from environment", func(t *testing.T) {
		t.Setenv(EnvEndpoint, "https://tetration.example.com")
		t.Setenv(EnvAPIKey, "key")
		t.Setenv(EnvAPISecret, "secret")
		t.Setenv(EnvInsecure, "true")

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "https://tetration.example.com", cfg.Endpoint)
		assert.Equal(t, "key", cfg.APIKey)
		assert.Equal(t, "secret", cfg.APISecret)
		assert.True(t, cfg.InsecureTLS)
	})

	t.Run("from env file", func(t *testing.T) {
		clearEnv(t)

		path := filepath.Join(t.TempDir(), "creds.env")
		content := EnvEndpoint + "=https://file.example.com\n" +
			EnvAPIKey + "=filekey\n" +
			EnvAPISecret + "=filesecret\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "https://file.example.com", cfg.Endpoint)
		assert.Equal(t, "filekey", cfg.APIKey)
		assert.False(t, cfg.InsecureTLS)
	})

	t.Run("environment wins over file", func(t *testing.T) {
		t.Setenv(EnvEndpoint, "https://env.example.com")
		t.Setenv(EnvAPIKey, "envkey")
		t.Setenv(EnvAPISecret, "envsecret")

		path := filepath.Join(t.TempDir(), "creds.env")
		content := EnvEndpoint + "=https://file.example.com\n" +
			EnvAPIKey + "=filekey\n" +
			EnvAPISecret + "=filesecret\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "https://env.example.com", cfg.Endpoint)
		assert.Equal(t, "envkey", cfg.APIKey)
	})

	t.Run("missing env file", func(t *testing.T) {
		clearEnv(t)

		_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
		require.Error(t, err)
	})

	t.Run("missing endpoint", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(EnvAPIKey, "key")
		t.Setenv(EnvAPISecret, "secret")

		_, err := Load("")
		require.ErrorContains(t, err, EnvEndpoint)
	})

	t.Run("missing credentials", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(EnvEndpoint, "https://tetration.example.com")
		t.Setenv(EnvAPIKey, "key")

		_, err := Load("")
		require.ErrorContains(t, err, EnvAPISecret)
	})
}

// clearEnv blanks all config variables for the test, restoring them after.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvEndpoint, EnvAPIKey, EnvAPISecret, EnvInsecure} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}
