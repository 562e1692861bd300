// Package config provides 12-factor configuration management for simdriver.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags can override environment variables.
//
// Configuration Sections:
//   - Device: target UDID, OS version override, CoreSimulator devices root
//   - Tool: xcrun and lsof locations, per-command timeout
//   - Timing: launch and Safari verification budgets
//   - Keychain: where keychain backups are kept
//   - Logging: Log level and output format
//   - Metrics: prometheus instrumentation toggle
//
// Example Usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//		return err
//	}
//	fmt.Printf("Driving %s\n", cfg.Device.UDID)
//
// Environment Variables:
//   - SIMDRIVER_UDID, SIMDRIVER_OS_VERSION, SIMDRIVER_DEVICES_ROOT
//   - SIMDRIVER_XCRUN, SIMDRIVER_LSOF, SIMDRIVER_COMMAND_TIMEOUT
//   - SIMDRIVER_LAUNCH_TIMEOUT, SIMDRIVER_LAUNCH_POLL_INTERVAL
//   - SIMDRIVER_SAFARI_STARTUP_TIMEOUT, SIMDRIVER_SAFARI_POLL_INTERVAL
//   - SIMDRIVER_BACKUP_DIR, SIMDRIVER_METRICS_ENABLED
//   - LOG_LEVEL, LOG_DEV
package config
