// Package logging provides structured logging using uber/zap.
//
// Two modes are available:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Both write to stderr by default; stdout belongs to command results.
// Components receive the embedded *zap.Logger and name their own child
// loggers ("apps", "safari", "keychain", ...).
//
// Example Usage:
//
//	logger := logging.FromLevel(cfg.Logging.Level, cfg.Logging.Development)
//	defer logger.Sync()
//	logger.Info("launching app", zap.String("bundle_id", id))
package logging
