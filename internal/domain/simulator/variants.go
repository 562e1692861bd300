package simulator

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/simdriver/internal/shared/paths"
	"github.com/GriffinCanCode/simdriver/internal/shared/types"
)

type (
	installedFunc   func(s *Simulator, ctx context.Context, bundleID string) bool
	daemonsRootFunc func(s *Simulator, ctx context.Context) (string, error)
	systemAppsFunc  func(s *Simulator, ctx context.Context) (map[string]struct{}, error)
)

// overrides holds the operations a generation may replace. A nil entry
// inherits the parent generation's behavior.
type overrides struct {
	isAppInstalled     installedFunc
	launchDaemonsRoot  daemonsRootFunc
	systemAppBundleIDs systemAppsFunc
}

// variant is one link of the generation chain, newest first
type variant struct {
	gen    Generation
	parent *variant
	overrides
}

var (
	legacyVariant = &variant{
		gen: Legacy,
		overrides: overrides{
			isAppInstalled:     installedByListingOrAppInfoText,
			launchDaemonsRoot:  sdkLaunchDaemonsRoot,
			systemAppBundleIDs: systemAppsNotImplemented,
		},
	}
	gen16Variant = &variant{
		gen:    Gen16,
		parent: legacyVariant,
		overrides: overrides{
			isAppInstalled: installedByListingOrAppInfo,
		},
	}
	gen17Variant = &variant{
		gen:    Gen17,
		parent: gen16Variant,
		overrides: overrides{
			isAppInstalled:     installedByAppInfoIdentity,
			launchDaemonsRoot:  simRootLaunchDaemonsRoot,
			systemAppBundleIDs: listedSystemApps,
		},
	}
)

func variantFor(gen Generation) *variant {
	switch gen {
	case Gen17:
		return gen17Variant
	case Gen16:
		return gen16Variant
	default:
		return legacyVariant
	}
}

// resolve flattens the chain: each operation comes from the newest
// generation that overrides it
func (v *variant) resolve() overrides {
	var ops overrides
	for cur := v; cur != nil; cur = cur.parent {
		if ops.isAppInstalled == nil {
			ops.isAppInstalled = cur.isAppInstalled
		}
		if ops.launchDaemonsRoot == nil {
			ops.launchDaemonsRoot = cur.launchDaemonsRoot
		}
		if ops.systemAppBundleIDs == nil {
			ops.systemAppBundleIDs = cur.systemAppBundleIDs
		}
	}
	return ops
}

// Legacy devices answer appinfo for anything; only real bundles print an
// ApplicationType.
func installedByListingOrAppInfoText(s *Simulator, ctx context.Context, bundleID string) bool {
	return s.apps.CheckInstalled(ctx, bundleID, s.apps.ListedCheck(), s.apps.AppInfoTextCheck())
}

func installedByListingOrAppInfo(s *Simulator, ctx context.Context, bundleID string) bool {
	return s.apps.CheckInstalled(ctx, bundleID, s.apps.ListedCheck(), s.apps.AppInfoSucceedsCheck())
}

// From 17 on appinfo also covers system apps, and it succeeds for unknown
// bundles, so only an identifier echo counts.
func installedByAppInfoIdentity(s *Simulator, ctx context.Context, bundleID string) bool {
	return s.apps.CheckInstalled(ctx, bundleID, s.apps.AppInfoIdentityCheck())
}

func sdkLaunchDaemonsRoot(s *Simulator, ctx context.Context) (string, error) {
	devRoot, err := s.tool.DeveloperRoot(ctx)
	if err != nil {
		return "", err
	}
	if devRoot == "" {
		return "", fmt.Errorf("%w: empty developer root", types.ErrSystemRootUnavailable)
	}
	sdk := filepath.Join(append([]string{devRoot}, paths.LegacySDKSubpath...)...)
	return filepath.Join(append([]string{sdk}, paths.LaunchDaemonsSubpath...)...), nil
}

func simRootLaunchDaemonsRoot(s *Simulator, ctx context.Context) (string, error) {
	root, err := s.systemRoot(ctx)
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{root}, paths.LaunchDaemonsSubpath...)...), nil
}

func systemAppsNotImplemented(s *Simulator, ctx context.Context) (map[string]struct{}, error) {
	return nil, fmt.Errorf("%w: system app identification on %s devices", types.ErrNotImplemented, s.gen)
}

func listedSystemApps(s *Simulator, ctx context.Context) (map[string]struct{}, error) {
	apps, err := s.tool.ListApps(ctx)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]struct{})
	for id, app := range apps {
		if app.Type != types.ApplicationSystem {
			continue
		}
		if app.BundleID != "" {
			id = app.BundleID
		}
		ids[id] = struct{}{}
	}
	s.logger.Debug("system apps collected", zap.Int("count", len(ids)))
	return ids, nil
}

// systemRoot reads IPHONE_SIMULATOR_ROOT from the device
func (s *Simulator) systemRoot(ctx context.Context) (string, error) {
	root, err := s.tool.GetEnv(ctx, paths.SimulatorRootEnv)
	if err != nil {
		return "", fmt.Errorf("%w: %w", types.ErrSystemRootUnavailable, err)
	}
	root = strings.TrimSpace(root)
	if root == "" {
		return "", types.ErrSystemRootUnavailable
	}
	return root, nil
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
