// Package logging provides structured logging using uber/zap.
//
// Two modes:
//   - Production: JSON output for machine parsing
//   - Development: colored console output (LOG_DEV=true or --dev)
//
// Components receive a named *zap.Logger and log with structured fields such as
// ref_id, share_id and conn_id rather than formatted strings.
//
// Example Usage:
//
//	logger, err := logging.New(logging.Config{Level: cfg.Logging.Level, Development: cfg.Logging.Development})
//	bridgeLog := logger.Component("bridge")
//	bridgeLog.Info("Transfer announced", zap.String("ref_id", refID))
package logging
