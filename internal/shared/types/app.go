package types

import "time"

// ApplicationType classifies an installed bundle
type ApplicationType string

const (
	ApplicationUser   ApplicationType = "User"
	ApplicationSystem ApplicationType = "System"
)

// AppRecord describes an installed application as reported by the control tool.
// Records are transient: they are re-read from the tool on every query.
type AppRecord struct {
	BundleID      string          `plist:"CFBundleIdentifier" json:"bundle_id"`
	BundleName    string          `plist:"CFBundleName" json:"bundle_name"`
	DisplayName   string          `plist:"CFBundleDisplayName" json:"display_name,omitempty"`
	Type          ApplicationType `plist:"ApplicationType" json:"application_type"`
	Path          string          `plist:"Path" json:"path,omitempty"`
	DataContainer string          `plist:"DataContainer" json:"data_container,omitempty"`
}

// IsUser reports whether the record is a user-installed bundle
func (r AppRecord) IsUser() bool {
	return r.Type == ApplicationUser
}

// ProcessEntry is one running service inside the device
type ProcessEntry struct {
	PID   int    `json:"pid"`
	Group string `json:"group,omitempty"` // e.g. UIKitApplication
	Name  string `json:"name"`
}

// OpenFile is one entry of the host open-files listing
type OpenFile struct {
	Kind string `json:"kind"` // lowercased lsof TYPE column, e.g. "unix"
	Path string `json:"path"`
}

// LaunchOptions controls App launch verification
type LaunchOptions struct {
	// Wait polls the process list until the app shows up
	Wait bool
	// Timeout bounds the wait; zero means DefaultLaunchTimeout
	Timeout time.Duration
}
