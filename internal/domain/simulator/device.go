package simulator

import (
	"context"

	"github.com/Masterminds/semver/v3"

	"github.com/GriffinCanCode/simdriver/internal/shared/types"
)

// AppLifecycle installs, inspects, launches and removes applications
type AppLifecycle interface {
	InstallApp(ctx context.Context, appPath string) error
	GetUserInstalledBundleIDsByBundleName(ctx context.Context, bundleName string) ([]string, error)
	IsAppInstalled(ctx context.Context, bundleID string) bool
	RemoveApp(ctx context.Context, bundleID string) error
	LaunchApp(ctx context.Context, bundleID string, opts types.LaunchOptions) error
	TerminateApp(ctx context.Context, bundleID string) error
	IsAppRunning(ctx context.Context, bundleID string) (bool, error)
	ScrubApp(ctx context.Context, bundleID string) error
}

// SafariControl drives Mobile Safari
type SafariControl interface {
	OpenURL(ctx context.Context, url string) error
	ScrubSafari(ctx context.Context, keepPrefs bool) error
	UpdateSafariSettings(ctx context.Context, updates map[string]any) (bool, error)
	GetWebInspectorSocket(ctx context.Context) (string, error)
}

// KeychainControl snapshots and resets the device keychains
type KeychainControl interface {
	BackupKeychains(ctx context.Context) (bool, error)
	RestoreKeychains(ctx context.Context, excludePatterns ...string) (bool, error)
	ClearKeychains(ctx context.Context) error
}

// SettingsControl patches preference files
type SettingsControl interface {
	UpdateSettings(ctx context.Context, path string, updates map[string]any) (bool, error)
	ReadSettings(path string) (map[string]any, error)
}

// Accessibility toggles appearance settings. The device must be booted;
// the tool reports the failure otherwise.
type Accessibility interface {
	SetIncreaseContrast(ctx context.Context, value string) error
	GetIncreaseContrast(ctx context.Context) (string, error)
	SetContentSize(ctx context.Context, value string) error
	GetContentSize(ctx context.Context) (string, error)
}

// SystemControl exposes the device's system root
type SystemControl interface {
	GetLaunchDaemonsRoot(ctx context.Context) (string, error)
	SystemAppBundleIDs(ctx context.Context) ([]string, error)
	IsSystemApp(ctx context.Context, bundleID string) (bool, error)
}

// Device is a controlled simulator of a resolved OS generation
type Device interface {
	AppLifecycle
	SafariControl
	KeychainControl
	SettingsControl
	Accessibility
	SystemControl

	UDID() string
	OSVersion() *semver.Version
	Generation() Generation
	Info(ctx context.Context) (types.Device, error)
	PS(ctx context.Context) ([]types.ProcessEntry, error)
	Close() error
}

// Generation is a family of device OS releases sharing control tool behavior
type Generation int

const (
	// Legacy covers device OS releases before 16
	Legacy Generation = iota
	// Gen16 covers 16.x
	Gen16
	// Gen17 covers 17 and later
	Gen17
)

func (g Generation) String() string {
	switch g {
	case Legacy:
		return "legacy"
	case Gen16:
		return "16"
	case Gen17:
		return "17+"
	default:
		return "unknown"
	}
}
