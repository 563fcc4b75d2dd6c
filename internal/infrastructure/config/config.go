package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"

	"github.com/GriffinCanCode/Datash/backend/internal/shared/paths"
)

// ErrInvalid marks a configuration that loaded but cannot be used
var ErrInvalid = errors.New("invalid configuration")

// Config holds all host configuration.
//
// Values are layered: Default(), then the optional YAML file, then the
// environment. Command-line flags are applied last by the caller.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Bridge    BridgeConfig    `yaml:"bridge"`
	Storage   StorageConfig   `yaml:"storage"`
	Notify    NotifyConfig    `yaml:"notify"`
	Logging   LogConfig       `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" yaml:"port"`
	Host string `envconfig:"HOST" yaml:"host"`
	// PublicURL is the base used in grant links; derived from Host/Port when empty
	PublicURL string `envconfig:"PUBLIC_URL" yaml:"public_url"`
	// AllowedOrigins may attach to the bridge and call the API from a browser;
	// empty means only the origin of BaseURL
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" yaml:"allowed_origins"`
}

// BridgeConfig holds transfer bridge configuration.
type BridgeConfig struct {
	Workers          int           `envconfig:"BRIDGE_WORKERS" yaml:"workers"`
	QueueSize        int           `envconfig:"BRIDGE_QUEUE_SIZE" yaml:"queue_size"`
	DeliveryInterval time.Duration `envconfig:"BRIDGE_DELIVERY_INTERVAL" yaml:"delivery_interval"`
	TransferTTL      time.Duration `envconfig:"BRIDGE_TRANSFER_TTL" yaml:"transfer_ttl"`
	SweepInterval    time.Duration `envconfig:"BRIDGE_SWEEP_INTERVAL" yaml:"sweep_interval"`
	MaxMessageBytes  int64         `envconfig:"BRIDGE_MAX_MESSAGE_BYTES" yaml:"max_message_bytes"`
	OpenOnComplete   bool          `envconfig:"BRIDGE_OPEN_ON_COMPLETE" yaml:"open_on_complete"`
}

// StorageConfig holds download persistence configuration.
type StorageConfig struct {
	DownloadsDir string `envconfig:"STORAGE_DOWNLOADS_DIR" yaml:"downloads_dir"`
}

// NotifyConfig holds notification configuration.
type NotifyConfig struct {
	GrantTTL time.Duration `envconfig:"NOTIFY_GRANT_TTL" yaml:"grant_ttl"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" yaml:"level"`
	Development bool   `envconfig:"LOG_DEV" yaml:"development"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" yaml:"rps"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" yaml:"burst"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" yaml:"enabled"`
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "127.0.0.1",
		},
		Bridge: BridgeConfig{
			Workers:          2,
			QueueSize:        64,
			DeliveryInterval: time.Second,
			TransferTTL:      30 * time.Minute,
			SweepInterval:    time.Minute,
			MaxMessageBytes:  64 << 20,
			OpenOnComplete:   false,
		},
		Storage: StorageConfig{
			DownloadsDir: paths.Downloads(),
		},
		Notify: NotifyConfig{
			GrantTTL: 5 * time.Minute,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (if any)
// and the environment. An empty path falls back to CONFIG_FILE.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return nil, err
		}
	}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads configuration from the environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load("")
	if err != nil {
		return Default()
	}
	return cfg
}

func (c *Config) overlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Validate rejects values the bridge cannot run with
func (c *Config) Validate() error {
	switch {
	case c.Server.Port == "":
		return fmt.Errorf("%w: server port is empty", ErrInvalid)
	case c.Bridge.Workers <= 0:
		return fmt.Errorf("%w: bridge workers must be positive, got %d", ErrInvalid, c.Bridge.Workers)
	case c.Bridge.QueueSize <= 0:
		return fmt.Errorf("%w: bridge queue size must be positive, got %d", ErrInvalid, c.Bridge.QueueSize)
	case c.Bridge.DeliveryInterval < 0:
		return fmt.Errorf("%w: delivery interval is negative", ErrInvalid)
	case c.Bridge.TransferTTL < 0:
		return fmt.Errorf("%w: transfer ttl is negative", ErrInvalid)
	case c.Bridge.TransferTTL > 0 && c.Bridge.SweepInterval <= 0:
		return fmt.Errorf("%w: sweep interval must be positive when transfers expire", ErrInvalid)
	case c.Storage.DownloadsDir == "":
		return fmt.Errorf("%w: downloads directory is empty", ErrInvalid)
	}
	for _, origin := range c.Server.AllowedOrigins {
		if origin == "*" {
			continue
		}
		if _, err := parseOrigin(origin); err != nil {
			return fmt.Errorf("%w: allowed origin %q: %v", ErrInvalid, origin, err)
		}
	}
	return nil
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, c.Server.Port)
}

// BaseURL returns the externally reachable base URL of the host
func (c *Config) BaseURL() string {
	if c.Server.PublicURL != "" {
		return c.Server.PublicURL
	}
	host := c.Server.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, c.Server.Port)
}

// Origins returns the browser origins allowed to use the bridge
func (c *Config) Origins() []string {
	if len(c.Server.AllowedOrigins) > 0 {
		return c.Server.AllowedOrigins
	}
	origin, err := parseOrigin(c.BaseURL())
	if err != nil {
		return nil
	}
	return []string{origin}
}

// parseOrigin reduces raw to scheme://host[:port]
func parseOrigin(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", errors.New("must be an http or https origin")
	}
	return u.Scheme + "://" + u.Host, nil
}
