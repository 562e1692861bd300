package app

import (
	"context"
	"strings"
)

// InstallCheck is one strategy for confirming that a bundle is installed.
// decided is false when the strategy could not reach a verdict and the next
// strategy should be consulted.
type InstallCheck func(ctx context.Context, bundleID string) (installed, decided bool)

// ListedCheck looks the bundle up in the full app listing. A listing failure
// is undecided; a successful listing without the bundle is a firm no.
func (m *Manager) ListedCheck() InstallCheck {
	return func(ctx context.Context, bundleID string) (bool, bool) {
		apps, err := m.tool.ListApps(ctx)
		if err != nil {
			return false, false
		}
		_, ok := apps[bundleID]
		return ok, true
	}
}

// AppInfoSucceedsCheck treats a successful appinfo call as proof of
// installation. appinfo also covers system apps the listing may omit.
func (m *Manager) AppInfoSucceedsCheck() InstallCheck {
	return func(ctx context.Context, bundleID string) (bool, bool) {
		if _, err := m.tool.AppInfo(ctx, bundleID); err != nil {
			return false, false
		}
		return true, true
	}
}

// AppInfoTextCheck confirms installation when the raw appinfo output carries
// an ApplicationType field
func (m *Manager) AppInfoTextCheck() InstallCheck {
	return func(ctx context.Context, bundleID string) (bool, bool) {
		info, err := m.tool.AppInfo(ctx, bundleID)
		if err != nil || !hasAppTypeMarker(info.Raw) {
			return false, false
		}
		return true, true
	}
}

// AppInfoIdentityCheck confirms installation only when appinfo reports the
// queried bundle identifier back. Stricter than AppInfoSucceedsCheck: newer
// tools answer appinfo for unknown bundles too.
func (m *Manager) AppInfoIdentityCheck() InstallCheck {
	return func(ctx context.Context, bundleID string) (bool, bool) {
		info, err := m.tool.AppInfo(ctx, bundleID)
		if err != nil || info.BundleID != bundleID {
			return false, false
		}
		return true, true
	}
}

// appTypeMarker appears in appinfo output for any installed bundle
const appTypeMarker = "ApplicationType"

func hasAppTypeMarker(raw string) bool {
	return strings.Contains(raw, appTypeMarker)
}
