package simulator

import (
	"context"
	"fmt"
	"sync"

	"github.com/Masterminds/semver/v3"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/simdriver/internal/config"
	"github.com/GriffinCanCode/simdriver/internal/domain/app"
	"github.com/GriffinCanCode/simdriver/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/simdriver/internal/providers/keychain"
	"github.com/GriffinCanCode/simdriver/internal/providers/monitor"
	"github.com/GriffinCanCode/simdriver/internal/providers/safari"
	"github.com/GriffinCanCode/simdriver/internal/providers/settings"
	"github.com/GriffinCanCode/simdriver/internal/shared/paths"
	"github.com/GriffinCanCode/simdriver/internal/shared/types"
	"github.com/GriffinCanCode/simdriver/internal/shared/utils"
	"github.com/GriffinCanCode/simdriver/internal/simctl"
)

// Tool is the control tool surface a simulator is driven through
type Tool interface {
	app.Tool
	safari.Tool
	Spawn(ctx context.Context, args ...string) (string, error)
	GetEnv(ctx context.Context, name string) (string, error)
	DeveloperRoot(ctx context.Context) (string, error)
	SetIncreaseContrast(ctx context.Context, value string) error
	GetIncreaseContrast(ctx context.Context) (string, error)
	SetContentSize(ctx context.Context, value string) error
	GetContentSize(ctx context.Context) (string, error)
}

// Option configures New
type Option func(*options)

type options struct {
	tool     Tool
	executor simctl.Executor
	metrics  *monitoring.Metrics
	logger   *zap.Logger
}

// WithTool drives the device through tool instead of xcrun
func WithTool(tool Tool) Option {
	return func(o *options) { o.tool = tool }
}

// WithExecutor runs xcrun and lsof through executor
func WithExecutor(executor simctl.Executor) Option {
	return func(o *options) { o.executor = executor }
}

// WithMetrics records tool calls and verification waits
func WithMetrics(metrics *monitoring.Metrics) Option {
	return func(o *options) { o.metrics = metrics }
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// Simulator is the controller for one device. Operations that differ across
// OS releases are taken from its generation's variant; everything else is
// delegated to the shared managers.
type Simulator struct {
	udid    string
	version *semver.Version
	gen     Generation
	ops     overrides

	tool     Tool
	procs    *monitor.Provider
	apps     *app.Manager
	settings *settings.Updater
	safari   *safari.Controller
	keychain *keychain.Manager

	sysMu   sync.Mutex
	sysApps map[string]struct{}

	logger *zap.Logger
}

var _ Device = (*Simulator)(nil)

// New resolves the OS generation of the configured device once and returns
// a controller for it
func New(ctx context.Context, cfg *config.Config, opts ...Option) (Device, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	udid := cfg.Device.UDID
	if err := utils.ValidateUDID(udid); err != nil {
		return nil, err
	}

	tool := o.tool
	if tool == nil {
		executor := o.executor
		if executor == nil {
			executor = simctl.ExecExecutor{Timeout: cfg.Tool.CommandTimeout}
		}
		tool = simctl.New(udid, simctl.Options{
			Xcrun:    cfg.Tool.Xcrun,
			Lsof:     cfg.Tool.Lsof,
			Executor: executor,
			Metrics:  o.metrics,
			Logger:   o.logger,
		})
	}

	version, info, err := resolveVersion(ctx, tool, udid, cfg.Device.OSVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve device OS version: %w", err)
	}
	if info.UDID != "" {
		udid = info.UDID
	}

	device := paths.Device{Root: cfg.Device.DevicesRoot, UDID: udid, Data: info.DataPath}
	s := newSimulator(tool, device, version, cfg, o.metrics, o.logger)
	s.logger.Info("simulator ready",
		zap.String("os_version", version.String()),
		zap.Stringer("generation", s.gen))
	return s, nil
}

func newSimulator(tool Tool, device paths.Device, version *semver.Version, cfg *config.Config, metrics *monitoring.Metrics, logger *zap.Logger) *Simulator {
	gen := GenerationOf(version)
	logger = logger.Named("simulator").With(zap.String("udid", device.UDID))

	s := &Simulator{
		udid:     device.UDID,
		version:  version,
		gen:      gen,
		ops:      variantFor(gen).resolve(),
		tool:     tool,
		settings: settings.NewUpdater(logger),
		logger:   logger,
	}

	s.procs = monitor.NewProvider(tool, logger)
	s.apps = app.NewManager(tool, s.procs, logger).
		WithMetrics(metrics).
		WithPolling(cfg.Timing.LaunchPollInterval, cfg.Timing.LaunchTimeout)
	s.safari = safari.NewController(tool, s.apps, s.settings, logger).
		WithMetrics(metrics).
		WithPolling(cfg.Timing.SafariPollInterval, cfg.Timing.SafariStartupTimeout)

	s.keychain = keychain.NewManager(tool, device, s.GetLaunchDaemonsRoot, cfg.Keychain.BackupDir, logger)
	return s
}

// UDID returns the device identifier
func (s *Simulator) UDID() string { return s.udid }

// OSVersion returns the device OS version used for dispatch
func (s *Simulator) OSVersion() *semver.Version { return s.version }

// Generation returns the resolved OS generation
func (s *Simulator) Generation() Generation { return s.gen }

// Info reads the current device entry
func (s *Simulator) Info(ctx context.Context) (types.Device, error) {
	return s.tool.DeviceInfo(ctx)
}

// PS lists the processes running in the device
func (s *Simulator) PS(ctx context.Context) ([]types.ProcessEntry, error) {
	return s.procs.PS(ctx)
}

// Close drops any keychain backup that was never restored
func (s *Simulator) Close() error {
	return s.keychain.DiscardBackup()
}

// InstallApp installs a .app package
func (s *Simulator) InstallApp(ctx context.Context, appPath string) error {
	return s.apps.InstallApp(ctx, appPath)
}

// GetUserInstalledBundleIDsByBundleName lists user apps named bundleName
func (s *Simulator) GetUserInstalledBundleIDsByBundleName(ctx context.Context, bundleName string) ([]string, error) {
	return s.apps.GetUserInstalledBundleIDsByBundleName(ctx, bundleName)
}

// IsAppInstalled applies the generation's install confirmation
func (s *Simulator) IsAppInstalled(ctx context.Context, bundleID string) bool {
	return s.ops.isAppInstalled(s, ctx, bundleID)
}

// RemoveApp uninstalls bundleID
func (s *Simulator) RemoveApp(ctx context.Context, bundleID string) error {
	return s.apps.RemoveApp(ctx, bundleID)
}

// LaunchApp starts bundleID, optionally waiting for its process
func (s *Simulator) LaunchApp(ctx context.Context, bundleID string, opts types.LaunchOptions) error {
	return s.apps.LaunchApp(ctx, bundleID, opts)
}

// TerminateApp stops bundleID
func (s *Simulator) TerminateApp(ctx context.Context, bundleID string) error {
	return s.apps.TerminateApp(ctx, bundleID)
}

// IsAppRunning reports whether bundleID has a live process
func (s *Simulator) IsAppRunning(ctx context.Context, bundleID string) (bool, error) {
	return s.apps.IsAppRunning(ctx, bundleID)
}

// ScrubApp removes bundleID and its data. Installation is confirmed with the
// generation's own check.
func (s *Simulator) ScrubApp(ctx context.Context, bundleID string) error {
	if !s.IsAppInstalled(ctx, bundleID) {
		return fmt.Errorf("%w: '%s'", types.ErrNotInstalled, bundleID)
	}
	return s.apps.RemoveApp(ctx, bundleID)
}

// OpenURL opens url in Mobile Safari
func (s *Simulator) OpenURL(ctx context.Context, url string) error {
	if err := utils.ValidateURL(url); err != nil {
		return err
	}
	return s.safari.OpenURL(ctx, url)
}

// ScrubSafari wipes Safari's browsing data
func (s *Simulator) ScrubSafari(ctx context.Context, keepPrefs bool) error {
	return s.safari.ScrubSafari(ctx, keepPrefs)
}

// UpdateSafariSettings patches Safari's preferences
func (s *Simulator) UpdateSafariSettings(ctx context.Context, updates map[string]any) (bool, error) {
	return s.safari.UpdateSafariSettings(ctx, updates)
}

// GetWebInspectorSocket returns the Web Inspector socket path or ""
func (s *Simulator) GetWebInspectorSocket(ctx context.Context) (string, error) {
	return s.safari.GetWebInspectorSocket(ctx)
}

// BackupKeychains snapshots the device keychains
func (s *Simulator) BackupKeychains(ctx context.Context) (bool, error) {
	return s.keychain.BackupKeychains(ctx)
}

// RestoreKeychains restores and consumes the latest keychains backup
func (s *Simulator) RestoreKeychains(ctx context.Context, excludePatterns ...string) (bool, error) {
	return s.keychain.RestoreKeychains(ctx, excludePatterns...)
}

// ClearKeychains wipes the device keychains
func (s *Simulator) ClearKeychains(ctx context.Context) error {
	return s.keychain.ClearKeychains(ctx)
}

// UpdateSettings patches the plist at path
func (s *Simulator) UpdateSettings(ctx context.Context, path string, updates map[string]any) (bool, error) {
	return s.settings.UpdateSettings(ctx, path, updates)
}

// ReadSettings decodes the plist at path. A missing file reads as empty.
func (s *Simulator) ReadSettings(path string) (map[string]any, error) {
	return s.settings.ReadSettings(path)
}

// SetIncreaseContrast sets the increase contrast appearance
func (s *Simulator) SetIncreaseContrast(ctx context.Context, value string) error {
	return s.tool.SetIncreaseContrast(ctx, value)
}

// GetIncreaseContrast reads the increase contrast appearance
func (s *Simulator) GetIncreaseContrast(ctx context.Context) (string, error) {
	return s.tool.GetIncreaseContrast(ctx)
}

// SetContentSize sets the preferred content size category
func (s *Simulator) SetContentSize(ctx context.Context, value string) error {
	return s.tool.SetContentSize(ctx, value)
}

// GetContentSize reads the preferred content size category
func (s *Simulator) GetContentSize(ctx context.Context) (string, error) {
	return s.tool.GetContentSize(ctx)
}

// GetLaunchDaemonsRoot resolves System/Library/LaunchDaemons under the
// generation's system root
func (s *Simulator) GetLaunchDaemonsRoot(ctx context.Context) (string, error) {
	return s.ops.launchDaemonsRoot(s, ctx)
}

// SystemAppBundleIDs returns the sorted identifiers of OS-shipped apps. The
// set is collected once per controller.
func (s *Simulator) SystemAppBundleIDs(ctx context.Context) ([]string, error) {
	set, err := s.systemApps(ctx)
	if err != nil {
		return nil, err
	}
	return sortedKeys(set), nil
}

// IsSystemApp reports whether bundleID ships with the OS
func (s *Simulator) IsSystemApp(ctx context.Context, bundleID string) (bool, error) {
	set, err := s.systemApps(ctx)
	if err != nil {
		return false, err
	}
	_, ok := set[bundleID]
	return ok, nil
}

func (s *Simulator) systemApps(ctx context.Context) (map[string]struct{}, error) {
	s.sysMu.Lock()
	defer s.sysMu.Unlock()

	if s.sysApps != nil {
		return s.sysApps, nil
	}
	set, err := s.ops.systemAppBundleIDs(s, ctx)
	if err != nil {
		return nil, err
	}
	s.sysApps = set
	return set, nil
}
