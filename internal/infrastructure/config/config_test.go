package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Server config
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)

	// Bridge config
	assert.Equal(t, 2, cfg.Bridge.Workers)
	assert.Equal(t, time.Second, cfg.Bridge.DeliveryInterval)
	assert.Equal(t, 30*time.Minute, cfg.Bridge.TransferTTL)
	assert.Equal(t, time.Minute, cfg.Bridge.SweepInterval)
	assert.False(t, cfg.Bridge.OpenOnComplete)

	// Storage config
	assert.NotEmpty(t, cfg.Storage.DownloadsDir)

	// Logging config
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	// Rate limit config
	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)

	require.NoError(t, cfg.Validate())
}

func TestLoadOrDefault(t *testing.T) {
	cfg := LoadOrDefault()

	assert.NotNil(t, cfg)
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":                     "9000",
		"HOST":                     "0.0.0.0",
		"PUBLIC_URL":               "http://datash.local:9000",
		"BRIDGE_WORKERS":           "4",
		"BRIDGE_DELIVERY_INTERVAL": "250ms",
		"BRIDGE_TRANSFER_TTL":      "0",
		"BRIDGE_OPEN_ON_COMPLETE":  "true",
		"STORAGE_DOWNLOADS_DIR":    "/srv/downloads",
		"NOTIFY_GRANT_TTL":         "1m",
		"LOG_LEVEL":                "debug",
		"LOG_DEV":                  "true",
		"RATE_LIMIT_RPS":           "500",
		"RATE_LIMIT_BURST":         "1000",
		"RATE_LIMIT_ENABLED":       "false",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "http://datash.local:9000", cfg.BaseURL())

	assert.Equal(t, 4, cfg.Bridge.Workers)
	assert.Equal(t, 250*time.Millisecond, cfg.Bridge.DeliveryInterval)
	assert.Equal(t, time.Duration(0), cfg.Bridge.TransferTTL)
	assert.True(t, cfg.Bridge.OpenOnComplete)

	assert.Equal(t, "/srv/downloads", cfg.Storage.DownloadsDir)
	assert.Equal(t, time.Minute, cfg.Notify.GrantTTL)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)

	assert.Equal(t, 500, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 1000, cfg.RateLimit.Burst)
	assert.False(t, cfg.RateLimit.Enabled)
}

func TestLoadWithPartialEnvironmentVariables(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)

	// Overridden values
	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logging.Level)

	// Defaults still apply
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 2, cfg.Bridge.Workers)
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestLoadFileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "datash.yaml")
	content := `
server:
  port: "7000"
bridge:
  workers: 3
  open_on_complete: true
storage:
  downloads_dir: /tmp/datash-test
logging:
  level: error
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "7000", cfg.Server.Port)
	assert.Equal(t, 3, cfg.Bridge.Workers)
	assert.True(t, cfg.Bridge.OpenOnComplete)
	assert.Equal(t, "/tmp/datash-test", cfg.Storage.DownloadsDir)
	assert.Equal(t, "error", cfg.Logging.Level)

	// untouched keys keep defaults
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, time.Second, cfg.Bridge.DeliveryInterval)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "datash.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: \"7000\"\n"), 0o644))

	t.Setenv("PORT", "7100")
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "7100", cfg.Server.Port)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty port", func(c *Config) { c.Server.Port = "" }},
		{"no workers", func(c *Config) { c.Bridge.Workers = 0 }},
		{"no queue", func(c *Config) { c.Bridge.QueueSize = 0 }},
		{"negative interval", func(c *Config) { c.Bridge.DeliveryInterval = -time.Second }},
		{"negative ttl", func(c *Config) { c.Bridge.TransferTTL = -time.Second }},
		{"ttl without sweep", func(c *Config) { c.Bridge.SweepInterval = 0 }},
		{"no downloads dir", func(c *Config) { c.Storage.DownloadsDir = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestValidateUnboundedRetention(t *testing.T) {
	cfg := Default()
	cfg.Bridge.TransferTTL = 0
	cfg.Bridge.SweepInterval = 0
	assert.NoError(t, cfg.Validate())
}

func TestServerConfig(t *testing.T) {
	tests := []struct {
		name     string
		port     string
		host     string
		wantAddr string
		wantURL  string
	}{
		{"default values", "", "", "127.0.0.1:8000", "http://127.0.0.1:8000"},
		{"custom port", "9000", "", "127.0.0.1:9000", "http://127.0.0.1:9000"},
		{"wildcard host", "", "0.0.0.0", "0.0.0.0:8000", "http://localhost:8000"},
		{"ipv6 host", "3000", "::1", "[::1]:3000", "http://[::1]:3000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.port != "" {
				t.Setenv("PORT", tt.port)
			}
			if tt.host != "" {
				t.Setenv("HOST", tt.host)
			}

			cfg := LoadOrDefault()

			assert.Equal(t, tt.wantAddr, cfg.Addr())
			assert.Equal(t, tt.wantURL, cfg.BaseURL())
		})
	}
}

func TestOrigins(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want []string
	}{
		{"derived from host and port", nil, []string{"http://127.0.0.1:8000"}},
		{"derived from public url", map[string]string{"PUBLIC_URL": "https://share.example.com/app"}, []string{"https://share.example.com"}},
		{"explicit list", map[string]string{"ALLOWED_ORIGINS": "https://datash.co,http://localhost:5173"}, []string{"https://datash.co", "http://localhost:5173"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := Load("")
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Origins())
		})
	}
}

func TestValidateRejectsBadOrigin(t *testing.T) {
	cfg := Default()
	cfg.Server.AllowedOrigins = []string{"datash.co"}
	assert.ErrorIs(t, cfg.Validate(), ErrInvalid)

	cfg.Server.AllowedOrigins = []string{"*"}
	assert.NoError(t, cfg.Validate())
}
