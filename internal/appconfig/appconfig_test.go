package appconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadConfig_RendersEnvironment(t *testing.T) {
	t.Setenv("REVIEW_HOST", "review.example.com")
	t.Setenv("KEYRING_PASS", "s3cret")

	path := writeConfig(t, `
api:
  baseURL: https://{{ .REVIEW_HOST }}/api
  timeout: 5s
storage:
  backend: keyring
  dir: /tmp/smart-review
  keyringPassword: "{{ .KEYRING_PASS }}"
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://review.example.com/api", config.API.BaseURL)
	assert.Equal(t, 5*time.Second, config.API.Timeout)
	assert.Equal(t, BackendKeyring, config.Storage.Backend)
	assert.Equal(t, "/tmp/smart-review", config.Storage.Dir)
	assert.Equal(t, "s3cret", config.Storage.KeyringPassword)
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv(EnvAPIURL, "http://localhost:5000/api")

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5000/api", config.API.BaseURL)
	assert.Equal(t, DefaultTimeout, config.API.Timeout)
	assert.Equal(t, BackendFile, config.Storage.Backend)
	assert.Equal(t, "smart-review", filepath.Base(config.Storage.Dir))
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv(EnvAPIURL, "")

	tests := map[string]string{
		"no base url":     "api:\n  timeout: 1s\n",
		"not http":        "api:\n  baseURL: ftp://example.com\n",
		"unknown backend": "api:\n  baseURL: http://example.com\nstorage:\n  backend: s3\n",
		"bad yaml":        "api: [\n",
		"bad template":    "api:\n  baseURL: {{ .X\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, content))
			assert.Error(t, err)
		})
	}

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
