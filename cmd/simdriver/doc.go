// Command simdriver drives an iOS simulator from the shell.
//
// Usage:
//
//	simdriver --udid <UDID> apps launch com.x.y --wait
//	simdriver --udid booted safari open https://example.com
//	simdriver --udid booted keychain preserve --exclude '*.db*' -- ./run-tests.sh
//
// Flags:
//
//	--udid          Simulator UDID or "booted"
//	--os-version    Device OS version, skips runtime detection
//	--log-level     Log level (debug, info, warn, error)
//	--dev           Human readable logs
//	--metrics-file  Write prometheus metrics to a file on exit
package main
