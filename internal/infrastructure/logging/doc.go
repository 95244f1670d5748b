// Package logging provides structured logging for Nosteq Core.
//
// It wraps log/slog so every component writes entries with the same handler
// and the same default fields.
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, version)
//	logger.Info("inventory refreshed", "onus", n)
//	logger.Error("upstream request failed", "error", err)
//
// # Security
//
// Never log the SmartOLT API key, JWT secrets, or ONU passwords. Log the
// technician ID instead of the email where one is enough.
package logging
