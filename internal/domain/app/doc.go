// Package app manages the lifecycle of applications on a simulator.
//
// Mutating tool calls (install, launch, terminate) are fire-and-forget; the
// manager verifies outcomes separately by polling the process list. Install
// state is decided by an ordered list of InstallCheck strategies so device
// generations can swap in stricter confirmation.
//
// Example Usage:
//
//	m := app.NewManager(client, procMonitor, logger)
//	err := m.LaunchApp(ctx, "com.x.y", types.LaunchOptions{Wait: true})
package app
