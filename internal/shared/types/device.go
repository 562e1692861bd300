package types

import "time"

// Default verification budgets
const (
	DefaultLaunchTimeout      = 10 * time.Second
	DefaultLaunchPollInterval = 300 * time.Millisecond
	SafariStartupTimeout      = 25 * time.Second
	SafariPollInterval        = 500 * time.Millisecond
)

// BootState is the power state of a device instance. It is observed, never owned.
type BootState string

const (
	StateShutdown     BootState = "Shutdown"
	StateBooting      BootState = "Booting"
	StateBooted       BootState = "Booted"
	StateShuttingDown BootState = "Shutting Down"
)

// Device describes one simulator instance as listed by the control tool
type Device struct {
	UDID        string    `json:"udid"`
	Name        string    `json:"name"`
	State       BootState `json:"state"`
	IsAvailable bool      `json:"isAvailable"`
	DataPath    string    `json:"dataPath"`
	LogPath     string    `json:"logPath"`
	// Runtime is the CoreSimulator runtime identifier the device belongs to,
	// e.g. com.apple.CoreSimulator.SimRuntime.iOS-17-2
	Runtime string `json:"-"`
}

// Booted reports whether the device is fully booted
func (d Device) Booted() bool {
	return d.State == StateBooted
}
