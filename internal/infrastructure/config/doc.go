// Package config provides layered configuration for the Datash host.
//
// Precedence, lowest first: Default(), the YAML file named by --config or
// CONFIG_FILE, environment variables, command-line flags.
//
// Configuration Sections:
//   - Server: listen address and public base URL
//   - Bridge: worker pool, delivery throttle, transfer expiry, message limit
//   - Storage: downloads directory
//   - Notify: file grant lifetime
//   - Logging: log level and output format
//   - RateLimit: per-IP rate limiting
//
// Example Usage:
//
//	cfg, err := config.Load(configPath)
//	if err != nil {
//		return err
//	}
//	fmt.Printf("Bridge listening on %s\n", cfg.Addr())
//
// Environment Variables:
//   - PORT, HOST, PUBLIC_URL, CONFIG_FILE
//   - BRIDGE_WORKERS, BRIDGE_QUEUE_SIZE, BRIDGE_DELIVERY_INTERVAL
//   - BRIDGE_TRANSFER_TTL, BRIDGE_SWEEP_INTERVAL, BRIDGE_MAX_MESSAGE_BYTES, BRIDGE_OPEN_ON_COMPLETE
//   - STORAGE_DOWNLOADS_DIR, NOTIFY_GRANT_TTL
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
package config
