package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

// Well-known bundles and files
const (
	MobileSafariBundleID = "com.apple.mobilesafari"
	SafariPrefsFile      = "com.apple.mobilesafari.plist"
	WebInspectorSocket   = "com.apple.webinspectord_sim.socket"
	SecurityDaemon       = "com.apple.securityd"
	SimulatorRootEnv     = "IPHONE_SIMULATOR_ROOT"
)

// Device-relative directories
const (
	DataDir      = "data"
	LibraryDir   = "Library"
	KeychainsDir = "Keychains"
	PrefsDir     = "Preferences"
)

// SafariDataFiles lists the glob templates purged by a Safari scrub. Each entry
// is rooted at the Library folder of the Safari data container.
var SafariDataFiles = [][]string{
	{"Caches", "*"},
	{"Image Cache", "*"},
	{"WebKit", MobileSafariBundleID, "*"},
	{"WebKit", "GeolocationSites.plist"},
	{"WebKit", "LocalStorage", "*.*"},
	{"Safari", "*"},
	{"Cookies", "*.binarycookies"},
	{"..", "tmp", MobileSafariBundleID, "*"},
}

// LaunchDaemonsSubpath is the daemons folder relative to a system root
var LaunchDaemonsSubpath = []string{"System", "Library", "LaunchDaemons"}

// LegacySDKSubpath locates the simulator SDK below the Xcode developer root
var LegacySDKSubpath = []string{"Platforms", "iPhoneSimulator.platform", "Developer", "SDKs", "iPhoneSimulator.sdk"}

// Device returns paths for a specific simulator
type Device struct {
	Root string // CoreSimulator devices root
	UDID string
	// Data is the data directory the control tool reported for the device.
	// When set it wins over Root/UDID, which only hold for the default set.
	Data string
}

// Dir returns the device's own directory
func (d Device) Dir() string {
	return filepath.Join(d.Root, d.UDID)
}

// DataDir returns the device's data directory
func (d Device) DataDir() string {
	if d.Data != "" {
		return d.Data
	}
	return filepath.Join(d.Dir(), DataDir)
}

// KeychainsDir returns the folder holding the device keychains
func (d Device) KeychainsDir() string {
	return filepath.Join(d.DataDir(), LibraryDir, KeychainsDir)
}

// SafariPrefs returns the Safari preferences file inside its data container
func SafariPrefs(containerRoot string) string {
	return filepath.Join(containerRoot, LibraryDir, PrefsDir, SafariPrefsFile)
}

// SafariDataGlobs expands SafariDataFiles against a data container root
func SafariDataGlobs(containerRoot string, keepPrefs bool) []string {
	library := filepath.Join(containerRoot, LibraryDir)
	globs := make([]string, 0, len(SafariDataFiles)+1)
	for _, parts := range SafariDataFiles {
		globs = append(globs, filepath.Join(append([]string{library}, parts...)...))
	}
	if !keepPrefs {
		globs = append(globs, filepath.Join(library, PrefsDir, "*.plist"))
	}
	return globs
}

// DefaultDevicesRoot returns ~/Library/Developer/CoreSimulator/Devices
func DefaultDevicesRoot() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot resolve home directory: %w", err)
	}
	return filepath.Join(home, "Library", "Developer", "CoreSimulator", "Devices"), nil
}
