package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/GriffinCanCode/simdriver/internal/shared/paths"
	"github.com/GriffinCanCode/simdriver/internal/shared/types"
)

// Config holds all driver configuration.
type Config struct {
	Device   DeviceConfig
	Tool     ToolConfig
	Timing   TimingConfig
	Keychain KeychainConfig
	Logging  LogConfig
	Metrics  MetricsConfig
}

// DeviceConfig selects the simulator under control.
type DeviceConfig struct {
	UDID string `envconfig:"SIMDRIVER_UDID"`
	// OSVersion overrides the version read from the device runtime, e.g. "17.2"
	OSVersion   string `envconfig:"SIMDRIVER_OS_VERSION"`
	DevicesRoot string `envconfig:"SIMDRIVER_DEVICES_ROOT"`
}

// ToolConfig locates the external commands.
type ToolConfig struct {
	Xcrun          string        `envconfig:"SIMDRIVER_XCRUN" default:"xcrun"`
	Lsof           string        `envconfig:"SIMDRIVER_LSOF" default:"lsof"`
	CommandTimeout time.Duration `envconfig:"SIMDRIVER_COMMAND_TIMEOUT" default:"2m"`
}

// TimingConfig holds the verification budgets.
type TimingConfig struct {
	LaunchTimeout        time.Duration `envconfig:"SIMDRIVER_LAUNCH_TIMEOUT" default:"10s"`
	LaunchPollInterval   time.Duration `envconfig:"SIMDRIVER_LAUNCH_POLL_INTERVAL" default:"300ms"`
	SafariStartupTimeout time.Duration `envconfig:"SIMDRIVER_SAFARI_STARTUP_TIMEOUT" default:"25s"`
	SafariPollInterval   time.Duration `envconfig:"SIMDRIVER_SAFARI_POLL_INTERVAL" default:"500ms"`
}

// KeychainConfig holds keychain backup settings.
type KeychainConfig struct {
	BackupDir string `envconfig:"SIMDRIVER_BACKUP_DIR"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// MetricsConfig toggles prometheus instrumentation.
type MetricsConfig struct {
	Enabled bool `envconfig:"SIMDRIVER_METRICS_ENABLED" default:"false"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.resolveDevicesRoot(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns default configuration.
func Default() *Config {
	cfg := &Config{
		Tool: ToolConfig{
			Xcrun:          "xcrun",
			Lsof:           "lsof",
			CommandTimeout: 2 * time.Minute,
		},
		Timing: TimingConfig{
			LaunchTimeout:        types.DefaultLaunchTimeout,
			LaunchPollInterval:   types.DefaultLaunchPollInterval,
			SafariStartupTimeout: types.SafariStartupTimeout,
			SafariPollInterval:   types.SafariPollInterval,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
	}
	_ = cfg.resolveDevicesRoot()
	return cfg
}

func (c *Config) resolveDevicesRoot() error {
	if c.Device.DevicesRoot != "" {
		return nil
	}
	root, err := paths.DefaultDevicesRoot()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	c.Device.DevicesRoot = root
	return nil
}
