// Package types provides the data model and error taxonomy shared by every
// simulator component.
//
// Core Types:
//   - Device: Simulator instance and its observed boot state
//   - AppRecord: Installed application as listed by the control tool
//   - ProcessEntry: Running service inside the device
//   - OpenFile: Host open-file entry (Web Inspector socket discovery)
//
// Errors:
//   - ToolError: Control tool failure, propagated verbatim
//   - TimeoutError: Post-condition not observed within budget
//   - Sentinels: ErrNotBooted, ErrNotInstalled, ErrNoBackupAvailable, ...
//
// Example Usage:
//
//	var te *types.ToolError
//	if errors.As(err, &te) {
//	    logger.Warn("simctl failed", zap.Int("exit_code", te.ExitCode))
//	}
package types
