// Package logging provides structured logging for Fieldtask Core.
//
// It wraps log/slog so every component logs with the same default fields
// (service, version) and honours the configured level and format.
//
// Configuration (config.yaml):
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// Usage:
//
//	logger := logging.New(cfg.Logging, version)
//	logger.Info("starting service", "port", 3000)
//	logger.With("component", "api").Error("request failed", "error", err)
//
// Never log secrets such as the MQTT password, InfluxDB token or database DSN.
package logging
