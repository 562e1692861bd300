package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/simdriver/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/simdriver/internal/providers/monitor"
	"github.com/GriffinCanCode/simdriver/internal/shared/types"
	"github.com/GriffinCanCode/simdriver/internal/shared/utils"
	"github.com/GriffinCanCode/simdriver/internal/simctl"
)

// Tool is the subset of the control tool the manager drives
type Tool interface {
	InstallApp(ctx context.Context, appPath string) error
	RemoveApp(ctx context.Context, bundleID string) error
	LaunchApp(ctx context.Context, bundleID string, args ...string) error
	TerminateApp(ctx context.Context, bundleID string) error
	ListApps(ctx context.Context) (map[string]types.AppRecord, error)
	AppInfo(ctx context.Context, bundleID string) (simctl.AppInfo, error)
}

// ProcessLister produces the live process list of the device
type ProcessLister interface {
	PS(ctx context.Context) ([]types.ProcessEntry, error)
}

// Manager orchestrates application lifecycle on one simulator
type Manager struct {
	tool          Tool
	procs         ProcessLister
	checks        []InstallCheck
	pollInterval  time.Duration
	launchTimeout time.Duration
	metrics       *monitoring.Metrics
	logger        *zap.Logger
}

// NewManager creates a new app manager. Installation is confirmed with the
// app listing first and the appinfo primitive as a fallback.
func NewManager(tool Tool, procs ProcessLister, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{
		tool:          tool,
		procs:         procs,
		pollInterval:  types.DefaultLaunchPollInterval,
		launchTimeout: types.DefaultLaunchTimeout,
		logger:        logger.Named("apps"),
	}
	m.checks = []InstallCheck{m.ListedCheck(), m.AppInfoSucceedsCheck()}
	return m
}

// WithMetrics adds metrics tracking to the manager
func (m *Manager) WithMetrics(metrics *monitoring.Metrics) *Manager {
	m.metrics = metrics
	return m
}

// WithPolling overrides the launch verification interval and default budget
func (m *Manager) WithPolling(interval, timeout time.Duration) *Manager {
	if interval > 0 {
		m.pollInterval = interval
	}
	if timeout > 0 {
		m.launchTimeout = timeout
	}
	return m
}

// InstallApp installs a .app package. Tool failures are returned as is.
func (m *Manager) InstallApp(ctx context.Context, appPath string) error {
	err := m.tool.InstallApp(ctx, appPath)
	m.metrics.RecordAppOperation("install", err)
	return err
}

// GetUserInstalledBundleIDsByBundleName returns the bundle ids of user apps
// whose CFBundleName equals bundleName. The tool does not guarantee an order;
// the result is sorted.
func (m *Manager) GetUserInstalledBundleIDsByBundleName(ctx context.Context, bundleName string) ([]string, error) {
	apps, err := m.tool.ListApps(ctx)
	if err != nil {
		return nil, err
	}

	bundleIDs := []string{}
	for id, app := range apps {
		if app.IsUser() && app.BundleName == bundleName {
			if app.BundleID != "" {
				id = app.BundleID
			}
			bundleIDs = append(bundleIDs, id)
		}
	}
	sort.Strings(bundleIDs)

	m.logger.Debug("user installed bundles by name",
		zap.String("bundle_name", bundleName),
		zap.Int("count", len(bundleIDs)),
		zap.Strings("bundle_ids", bundleIDs))
	return bundleIDs, nil
}

// IsAppInstalled reports whether bundleID is installed, using the manager's
// install checks. It never fails: an unconfirmed app counts as absent.
func (m *Manager) IsAppInstalled(ctx context.Context, bundleID string) bool {
	return m.CheckInstalled(ctx, bundleID, m.checks...)
}

// CheckInstalled runs checks in order; the first one to reach a verdict wins
func (m *Manager) CheckInstalled(ctx context.Context, bundleID string, checks ...InstallCheck) bool {
	for i, check := range checks {
		if installed, decided := check(ctx, bundleID); decided {
			m.logger.Debug("install check decided",
				zap.String("bundle_id", bundleID),
				zap.Int("check", i),
				zap.Bool("installed", installed))
			return installed
		}
	}
	return false
}

// RemoveApp uninstalls bundleID. Tool failures are returned as is.
func (m *Manager) RemoveApp(ctx context.Context, bundleID string) error {
	err := m.tool.RemoveApp(ctx, bundleID)
	m.metrics.RecordAppOperation("remove", err)
	return err
}

// LaunchApp starts bundleID. Without opts.Wait it returns as soon as the
// launch was requested, which does not mean the process exists yet. With
// opts.Wait it polls the process list until the app shows up or the budget
// runs out.
func (m *Manager) LaunchApp(ctx context.Context, bundleID string, opts types.LaunchOptions) error {
	err := m.tool.LaunchApp(ctx, bundleID)
	m.metrics.RecordAppOperation("launch", err)
	if err != nil || !opts.Wait {
		return err
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = m.launchTimeout
	}

	start := time.Now()
	err = utils.WaitFor(ctx, utils.PollOptions{Timeout: timeout, Interval: m.pollInterval},
		func(ctx context.Context) (bool, error) {
			return m.IsAppRunning(ctx, bundleID)
		})
	elapsed := time.Since(start)

	var pollErr *utils.PollTimeoutError
	switch {
	case err == nil:
		m.metrics.RecordPoll(types.OpLaunch, monitoring.OutcomeVerified, elapsed)
		return nil
	case errors.As(err, &pollErr):
		m.metrics.RecordPoll(types.OpLaunch, monitoring.OutcomeTimeout, elapsed)
		if pollErr.LastErr != nil {
			m.logger.Debug("process list failed while waiting for launch",
				zap.String("bundle_id", bundleID),
				zap.Int("failures", pollErr.Failures),
				zap.Error(pollErr.LastErr))
		}
		return &types.TimeoutError{Op: types.OpLaunch, Subject: bundleID, Budget: timeout, Elapsed: elapsed}
	default:
		return err
	}
}

// TerminateApp stops bundleID. The tool call is synchronous; nothing is verified.
func (m *Manager) TerminateApp(ctx context.Context, bundleID string) error {
	err := m.tool.TerminateApp(ctx, bundleID)
	m.metrics.RecordAppOperation("terminate", err)
	return err
}

// IsAppRunning reports whether a process named exactly bundleID exists
func (m *Manager) IsAppRunning(ctx context.Context, bundleID string) (bool, error) {
	procs, err := m.procs.PS(ctx)
	if err != nil {
		return false, err
	}
	return monitor.Contains(procs, bundleID), nil
}

// ScrubApp wipes the app and its data. Removing the app terminates it.
func (m *Manager) ScrubApp(ctx context.Context, bundleID string) error {
	if !m.IsAppInstalled(ctx, bundleID) {
		return fmt.Errorf("%w: '%s'", types.ErrNotInstalled, bundleID)
	}
	return m.RemoveApp(ctx, bundleID)
}
