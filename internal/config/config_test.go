package config

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
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
api:
  baseUrl: https://erp.example.com
  username: maria
  batchSize: 250
mapping:
  threshold: 0.8
cache:
  ttl: 30m
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://erp.example.com", cfg.API.BaseURL)
	assert.Equal(t, "maria", cfg.API.Username)
	assert.Equal(t, 250, cfg.API.BatchSize)
	assert.Equal(t, 0.8, cfg.Mapping.Threshold)
	assert.Equal(t, 30*time.Minute, cfg.Cache.TTL.Std())

	// Values absent from the file keep their defaults.
	assert.Equal(t, 60*time.Second, cfg.API.Timeout.Std())
	assert.Equal(t, "./backup", cfg.Dirs.Backup)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("ERP_API_URL", "https://env.example.com")
	t.Setenv("ERP_API_PASSWORD", "from-env")
	t.Setenv("ERP_BATCH_SIZE", "50")

	path := writeConfig(t, `
api:
  baseUrl: https://file.example.com
  password: from-file
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://env.example.com", cfg.API.BaseURL)
	assert.Equal(t, "from-env", cfg.API.Password)
	assert.Equal(t, 50, cfg.API.BatchSize)
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().API.BaseURL, cfg.API.BaseURL)
	assert.Equal(t, 0.70, cfg.Mapping.Threshold)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad threshold", "mapping:\n  threshold: 1.5\n", "threshold"},
		{"zero batch size", "api:\n  batchSize: -1\n", "batchSize"},
		{"negative workers", "mapping:\n  workers: -2\n", "workers"},
		{"not yaml", "{{{", "parse config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
