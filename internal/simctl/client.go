package simctl

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/simdriver/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/simdriver/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/simdriver/internal/shared/types"
)

// Options configures a Client
type Options struct {
	Xcrun    string // default "xcrun"
	Lsof     string // default "lsof"
	Executor Executor
	Metrics  *monitoring.Metrics
	Logger   *zap.Logger
}

// Client drives one simulator through `xcrun simctl`
type Client struct {
	udid    string
	xcrun   string
	lsof    string
	exec    Executor
	metrics *monitoring.Metrics
	logger  *zap.Logger
}

// AppInfo is the result of the appinfo primitive. Raw keeps the tool's text
// because older generations confirm installation by inspecting it.
type AppInfo struct {
	types.AppRecord
	Raw string
}

// New creates a client bound to udid
func New(udid string, opts Options) *Client {
	if opts.Xcrun == "" {
		opts.Xcrun = "xcrun"
	}
	if opts.Lsof == "" {
		opts.Lsof = "lsof"
	}
	if opts.Executor == nil {
		opts.Executor = ExecExecutor{Timeout: 2 * time.Minute}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Client{
		udid:    udid,
		xcrun:   opts.Xcrun,
		lsof:    opts.Lsof,
		exec:    opts.Executor,
		metrics: opts.Metrics,
		logger:  opts.Logger.Named("simctl"),
	}
}

// UDID returns the device this client is bound to
func (c *Client) UDID() string {
	return c.udid
}

// InstallApp installs a .app bundle
func (c *Client) InstallApp(ctx context.Context, appPath string) error {
	_, err := c.simctl(ctx, "install", appPath)
	return err
}

// RemoveApp uninstalls an application
func (c *Client) RemoveApp(ctx context.Context, bundleID string) error {
	_, err := c.simctl(ctx, "uninstall", bundleID)
	return err
}

// LaunchApp starts an application. The tool returns once launch was requested.
func (c *Client) LaunchApp(ctx context.Context, bundleID string, args ...string) error {
	_, err := c.simctl(ctx, "launch", append([]string{bundleID}, args...)...)
	return err
}

// TerminateApp stops an application
func (c *Client) TerminateApp(ctx context.Context, bundleID string) error {
	_, err := c.simctl(ctx, "terminate", bundleID)
	return err
}

// ListApps returns every installed application keyed by bundle id
func (c *Client) ListApps(ctx context.Context) (map[string]types.AppRecord, error) {
	out, err := c.simctl(ctx, "listapps")
	if err != nil {
		return nil, err
	}
	return parseAppList(out)
}

// AppInfo queries the hidden appinfo subcommand, which also covers system apps
func (c *Client) AppInfo(ctx context.Context, bundleID string) (AppInfo, error) {
	out, err := c.simctl(ctx, "appinfo", bundleID)
	if err != nil {
		return AppInfo{}, err
	}

	info := AppInfo{Raw: out}
	record, err := parseAppInfo(out)
	if err != nil {
		c.logger.Debug("appinfo output is not a plist", zap.String("bundle_id", bundleID), zap.Error(err))
		return info, nil
	}
	info.AppRecord = record
	return info, nil
}

// GetAppContainer resolves an app container path; domain is app, data,
// groups or a group identifier
func (c *Client) GetAppContainer(ctx context.Context, bundleID, domain string) (string, error) {
	args := []string{bundleID}
	if domain != "" {
		args = append(args, domain)
	}
	out, err := c.simctl(ctx, "get_app_container", args...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// OpenURL asks the device to open url
func (c *Client) OpenURL(ctx context.Context, url string) error {
	_, err := c.simctl(ctx, "openurl", url)
	return err
}

// ListOpenFiles lists UNIX sockets held by simulator launchd processes
func (c *Client) ListOpenFiles(ctx context.Context) ([]types.OpenFile, error) {
	out, err := c.run(ctx, "lsof", c.lsof, "-aUc", "launchd_sim", "-Ftn")
	if err != nil {
		return nil, err
	}
	return parseOpenFiles(out), nil
}

// SetIncreaseContrast sets the increase contrast appearance (enabled/disabled)
func (c *Client) SetIncreaseContrast(ctx context.Context, value string) error {
	_, err := c.simctl(ctx, "ui", "increase_contrast", value)
	return err
}

// GetIncreaseContrast reads the increase contrast appearance
func (c *Client) GetIncreaseContrast(ctx context.Context) (string, error) {
	out, err := c.simctl(ctx, "ui", "increase_contrast")
	return strings.TrimSpace(out), err
}

// SetContentSize sets the preferred content size category
func (c *Client) SetContentSize(ctx context.Context, value string) error {
	_, err := c.simctl(ctx, "ui", "content_size", value)
	return err
}

// GetContentSize reads the preferred content size category
func (c *Client) GetContentSize(ctx context.Context) (string, error) {
	out, err := c.simctl(ctx, "ui", "content_size")
	return strings.TrimSpace(out), err
}

// GetEnv reads an environment variable of the device's launchd
func (c *Client) GetEnv(ctx context.Context, name string) (string, error) {
	out, err := c.simctl(ctx, "getenv", name)
	return strings.TrimSpace(out), err
}

// Spawn runs a command inside the device and returns its stdout
func (c *Client) Spawn(ctx context.Context, args ...string) (string, error) {
	return c.simctl(ctx, "spawn", args...)
}

// DeviceInfo reads the device entry, including its boot state and runtime
func (c *Client) DeviceInfo(ctx context.Context) (types.Device, error) {
	out, err := c.run(ctx, "list", c.xcrun, "simctl", "list", "devices", "-j")
	if err != nil {
		return types.Device{}, err
	}
	return parseDevice([]byte(out), c.udid)
}

// DeveloperRoot returns the active Xcode developer directory
func (c *Client) DeveloperRoot(ctx context.Context) (string, error) {
	out, err := c.run(ctx, "xcode-select", "xcode-select", "-p")
	return strings.TrimSpace(out), err
}

// simctl runs `xcrun simctl <sub> <udid> args...`
func (c *Client) simctl(ctx context.Context, sub string, args ...string) (string, error) {
	full := append([]string{"simctl", sub, c.udid}, args...)
	return c.run(ctx, sub, c.xcrun, full...)
}

func (c *Client) run(ctx context.Context, label, name string, args ...string) (string, error) {
	start := time.Now()
	out, err := c.exec.Run(ctx, name, args...)
	c.metrics.RecordToolCall(label, err, time.Since(start))

	if err != nil {
		fields := append([]zap.Field{
			zap.String("command", name),
			zap.Strings("args", args),
			zap.Int("exit_code", out.ExitCode),
			zap.Error(err),
		}, tracing.Fields(ctx)...)
		c.logger.Debug("command failed", fields...)
		return out.Stdout, &types.ToolError{
			Command:  name,
			Args:     args,
			ExitCode: out.ExitCode,
			Stderr:   out.Stderr,
			Err:      err,
		}
	}
	return out.Stdout, nil
}
