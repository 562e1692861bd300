package safari

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/simdriver/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/simdriver/internal/shared/paths"
	"github.com/GriffinCanCode/simdriver/internal/shared/types"
	"github.com/GriffinCanCode/simdriver/internal/shared/utils"
)

// Tool is the subset of the control tool Safari control needs
type Tool interface {
	DeviceInfo(ctx context.Context) (types.Device, error)
	OpenURL(ctx context.Context, url string) error
	GetAppContainer(ctx context.Context, bundleID, domain string) (string, error)
	ListOpenFiles(ctx context.Context) ([]types.OpenFile, error)
}

// Apps is the lifecycle surface used to stop and observe Safari
type Apps interface {
	TerminateApp(ctx context.Context, bundleID string) error
	IsAppRunning(ctx context.Context, bundleID string) (bool, error)
}

// SettingsUpdater patches preference files
type SettingsUpdater interface {
	UpdateSettings(ctx context.Context, path string, updates map[string]any) (bool, error)
}

// Controller drives Mobile Safari on one simulator
type Controller struct {
	tool     Tool
	apps     Apps
	settings SettingsUpdater

	startupTimeout time.Duration
	pollInterval   time.Duration

	// socketPath is set at most once and never invalidated; it goes stale
	// if webinspectord restarts.
	socketMu   sync.Mutex
	socketPath string

	metrics *monitoring.Metrics
	logger  *zap.Logger
}

// NewController creates a Safari controller
func NewController(tool Tool, apps Apps, settings SettingsUpdater, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		tool:           tool,
		apps:           apps,
		settings:       settings,
		startupTimeout: types.SafariStartupTimeout,
		pollInterval:   types.SafariPollInterval,
		logger:         logger.Named("safari"),
	}
}

// WithMetrics adds metrics tracking to the controller
func (c *Controller) WithMetrics(metrics *monitoring.Metrics) *Controller {
	c.metrics = metrics
	return c
}

// WithPolling overrides the startup verification interval and budget
func (c *Controller) WithPolling(interval, timeout time.Duration) *Controller {
	if interval > 0 {
		c.pollInterval = interval
	}
	if timeout > 0 {
		c.startupTimeout = timeout
	}
	return c
}

// OpenURL opens url in Mobile Safari and waits for Safari's process to show
// up. If the process list could not be read on any attempt the open is
// assumed to have worked and only a warning is logged.
func (c *Controller) OpenURL(ctx context.Context, url string) error {
	device, err := c.tool.DeviceInfo(ctx)
	if err != nil {
		return err
	}
	if !device.Booted() {
		return fmt.Errorf("%w: cannot open '%s' while the device is %s", types.ErrNotBooted, url, device.State)
	}

	if err := c.tool.OpenURL(ctx, url); err != nil {
		return err
	}

	start := time.Now()
	err = utils.WaitFor(ctx, utils.PollOptions{Timeout: c.startupTimeout, Interval: c.pollInterval},
		func(ctx context.Context) (bool, error) {
			return c.apps.IsAppRunning(ctx, paths.MobileSafariBundleID)
		})
	elapsed := time.Since(start)

	var pollErr *utils.PollTimeoutError
	switch {
	case err == nil:
		c.metrics.RecordPoll(types.OpOpenURL, monitoring.OutcomeVerified, elapsed)
		return nil
	case errors.As(err, &pollErr) && pollErr.ChannelFailed():
		c.metrics.RecordPoll(types.OpOpenURL, monitoring.OutcomeUnverifiable, elapsed)
		c.logger.Warn("process existence cannot be verified",
			zap.String("url", url),
			zap.Duration("elapsed", elapsed),
			zap.Int("attempts", pollErr.Attempts),
			zap.Error(pollErr.LastErr))
		c.logger.Warn("continuing anyway", zap.String("url", url))
		return nil
	case pollErr != nil:
		c.metrics.RecordPoll(types.OpOpenURL, monitoring.OutcomeTimeout, elapsed)
		return &types.TimeoutError{Op: types.OpOpenURL, Subject: url, Budget: c.startupTimeout, Elapsed: elapsed}
	default:
		return err
	}
}

// ScrubSafari terminates Safari and deletes its caches, cookies, local
// storage and temporary files. Preference files survive when keepPrefs is set.
func (c *Controller) ScrubSafari(ctx context.Context, keepPrefs bool) error {
	if err := c.apps.TerminateApp(ctx, paths.MobileSafariBundleID); err != nil {
		c.logger.Debug("safari was not terminated", zap.Error(err))
	}

	container, err := c.tool.GetAppContainer(ctx, paths.MobileSafariBundleID, "data")
	if err != nil {
		return err
	}

	removed := 0
	for _, pattern := range paths.SafariDataGlobs(container, keepPrefs) {
		if err := ctx.Err(); err != nil {
			return err
		}
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return fmt.Errorf("invalid data pattern %q: %w", pattern, err)
		}
		for _, match := range matches {
			if err := os.RemoveAll(match); err != nil {
				return fmt.Errorf("failed to remove %s: %w", match, err)
			}
			removed++
		}
	}

	c.logger.Info("safari data scrubbed",
		zap.String("container", container),
		zap.Bool("keep_prefs", keepPrefs),
		zap.Int("removed", removed))
	return nil
}

// UpdateSafariSettings patches Safari's preference file and reports whether
// it changed
func (c *Controller) UpdateSafariSettings(ctx context.Context, updates map[string]any) (bool, error) {
	if len(updates) == 0 {
		return false, nil
	}

	container, err := c.tool.GetAppContainer(ctx, paths.MobileSafariBundleID, "data")
	if err != nil {
		return false, err
	}
	return c.settings.UpdateSettings(ctx, paths.SafariPrefs(container), updates)
}

// GetWebInspectorSocket returns the host path of the simulator's Web
// Inspector socket, or "" when no single candidate exists. A found path is
// remembered for the controller's lifetime.
func (c *Controller) GetWebInspectorSocket(ctx context.Context) (string, error) {
	c.socketMu.Lock()
	defer c.socketMu.Unlock()

	if c.socketPath != "" {
		return c.socketPath, nil
	}

	files, err := c.tool.ListOpenFiles(ctx)
	if err != nil {
		return "", err
	}

	var candidates []string
	for _, file := range files {
		if file.Kind == "unix" && strings.HasSuffix(file.Path, paths.WebInspectorSocket) {
			candidates = append(candidates, file.Path)
		}
	}
	if len(candidates) != 1 {
		c.logger.Debug("no unique web inspector socket", zap.Int("candidates", len(candidates)))
		return "", nil
	}

	c.socketPath = candidates[0]
	return c.socketPath, nil
}
