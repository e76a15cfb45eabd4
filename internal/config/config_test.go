package config

import (
	"os"
	"path/filepath"
	"testing"

	"jroconnect/pkg/types"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freshViper(t *testing.T) {
	t.Helper()
	vMu.Lock()
	v = newViper()
	globalConfig = nil
	vMu.Unlock()
}

func TestLoadFrom_CreatesDefaultConfig(t *testing.T) {
	freshViper(t)
	path := filepath.Join(t.TempDir(), "nested", ConfigFileName)

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.FileExists(t, path)
	assert.Equal(t, DefaultPollInterval, cfg.PollInterval)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, "http://127.0.0.1:8000/api/", cfg.API.BaseURL)
	assert.Equal(t, 0, cfg.API.RequestTimeout)
	assert.Equal(t, 3000, cfg.Toast.TimeoutMs)
	assert.Equal(t, DefaultServerAddr, cfg.Server.Addr)
	assert.Same(t, cfg, Get())
}

func TestLoadFrom_ReadsFile(t *testing.T) {
	freshViper(t)
	path := filepath.Join(t.TempDir(), ConfigFileName)
	content := `{
  "poll_interval": 120,
  "log_level": "info",
  "api": {"base_url": "https://justice.example.org/api/", "request_timeout": 15},
  "toast": {"timeout_ms": 5000, "system": true},
  "server": {"addr": ""}
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, 120, cfg.PollInterval)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "https://justice.example.org/api/", cfg.API.BaseURL)
	assert.Equal(t, 15, cfg.API.RequestTimeout)
	assert.Equal(t, 5000, cfg.Toast.TimeoutMs)
	assert.True(t, cfg.Toast.System)
	assert.Equal(t, "", cfg.Server.Addr)
}

func TestLoadFrom_EnvOverride(t *testing.T) {
	freshViper(t)
	t.Setenv("JRO_API_BASE_URL", "http://10.0.0.5:8000/api/")
	path := filepath.Join(t.TempDir(), ConfigFileName)

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:8000/api/", cfg.API.BaseURL)
}

func TestLoadFrom_FlagOverride(t *testing.T) {
	freshViper(t)
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("base-url", DefaultAPIBaseURL, "")
	fs.String("addr", DefaultServerAddr, "")
	require.NoError(t, fs.Parse([]string{"--base-url", "http://backend:9000/api/", "--addr", ":9999"}))
	require.NoError(t, BindFlags(fs))

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), ConfigFileName))
	require.NoError(t, err)
	assert.Equal(t, "http://backend:9000/api/", cfg.API.BaseURL)
	assert.Equal(t, ":9999", cfg.Server.Addr)
}

func TestLoadFrom_InvalidFile(t *testing.T) {
	freshViper(t)
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(`{"poll_interval": 5}`), 0644))

	_, err := LoadFrom(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "配置验证失败")
}

func TestSaveTo_RoundTrip(t *testing.T) {
	freshViper(t)
	path := filepath.Join(t.TempDir(), ConfigFileName)

	cfg := Default()
	cfg.PollInterval = 30
	cfg.LogLevel = "warn"
	cfg.Toast.TimeoutMs = 1500
	require.NoError(t, SaveTo(path, cfg))

	freshViper(t)
	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, 30, loaded.PollInterval)
	assert.Equal(t, "warn", loaded.LogLevel)
	assert.Equal(t, 1500, loaded.Toast.TimeoutMs)
}

func TestSaveTo_RejectsInvalid(t *testing.T) {
	freshViper(t)
	cfg := Default()
	cfg.LogLevel = "trace"

	err := SaveTo(filepath.Join(t.TempDir(), ConfigFileName), cfg)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *types.Config)
		wantErr bool
	}{
		{"default", func(c *types.Config) {}, false},
		{"poll interval too small", func(c *types.Config) { c.PollInterval = 9 }, true},
		{"bad log level", func(c *types.Config) { c.LogLevel = "loud" }, true},
		{"no scheme", func(c *types.Config) { c.API.BaseURL = "127.0.0.1:8000/api/" }, true},
		{"ftp scheme", func(c *types.Config) { c.API.BaseURL = "ftp://host/api/" }, true},
		{"negative timeout", func(c *types.Config) { c.API.RequestTimeout = -1 }, true},
		{"negative toast timeout", func(c *types.Config) { c.Toast.TimeoutMs = -1 }, true},
		{"zero toast timeout", func(c *types.Config) { c.Toast.TimeoutMs = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
