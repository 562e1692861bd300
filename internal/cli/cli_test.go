package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/simdriver/internal/domain/simulator"
	"github.com/GriffinCanCode/simdriver/internal/shared/types"
	"github.com/GriffinCanCode/simdriver/internal/simctl"
	"github.com/GriffinCanCode/simdriver/internal/testutil"
)

const udid = "8A6A5C8E-4C41-4E5C-9E0B-2D7C1E2A3B4C"

func execute(t *testing.T, tool *testutil.MockTool, args ...string) (string, error) {
	t.Helper()
	t.Setenv("SIMDRIVER_UDID", "")
	t.Setenv("SIMDRIVER_OS_VERSION", "")
	t.Setenv("SIMDRIVER_DEVICES_ROOT", t.TempDir())
	t.Setenv("SIMDRIVER_BACKUP_DIR", t.TempDir())
	t.Setenv("LOG_LEVEL", "error")

	var opts Options
	if tool != nil {
		opts.DeviceOptions = []simulator.Option{simulator.WithTool(tool)}
	}
	cmd := NewRootCommand(opts)
	cmd.SetArgs(args)

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, nil, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", out)
}

func TestDeviceCommandNeedsUDID(t *testing.T) {
	_, err := execute(t, testutil.NewMockTool(t), "apps", "installed", "com.x.y")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no simulator selected")
}

func TestInvalidBundleIDRejected(t *testing.T) {
	_, err := execute(t, testutil.NewMockTool(t), "--udid", udid, "--os-version", "17.2", "apps", "launch", "not a bundle")
	assert.ErrorIs(t, err, types.ErrInvalidBundleID)
}

func TestAppsByName(t *testing.T) {
	tool := testutil.NewMockTool(t)
	tool.On("ListApps").Return(map[string]types.AppRecord{
		"com.x.y": {BundleID: "com.x.y", BundleName: "Y", Type: types.ApplicationUser},
	}, nil)

	out, err := execute(t, tool, "--udid", udid, "--os-version", "16.4", "apps", "by-name", "Y")
	require.NoError(t, err)
	assert.JSONEq(t, `["com.x.y"]`, out)
}

func TestAppsInstalled(t *testing.T) {
	tool := testutil.NewMockTool(t)
	tool.On("AppInfo", "com.x.y").Return(simctlInfo("com.x.y"), nil)

	out, err := execute(t, tool, "--udid", udid, "--os-version", "17.2", "apps", "installed", "com.x.y")
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)
}

func TestSystemInfo(t *testing.T) {
	tool := testutil.NewMockTool(t)
	tool.On("DeviceInfo").Return(types.Device{
		UDID:    udid,
		Name:    "iPhone 15",
		State:   types.StateBooted,
		Runtime: "com.apple.CoreSimulator.SimRuntime.iOS-17-2",
	}, nil)

	out, err := execute(t, tool, "--udid", udid, "system", "info")
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"udid": "8A6A5C8E-4C41-4E5C-9E0B-2D7C1E2A3B4C",
		"name": "iPhone 15",
		"state": "Booted",
		"runtime": "com.apple.CoreSimulator.SimRuntime.iOS-17-2",
		"os_version": "17.2.0",
		"generation": "17+"
	}`, out)
}

func TestSettingsUpdateFromYAML(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "com.example.plist")
	updates := filepath.Join(dir, "updates.yaml")
	require.NoError(t, os.WriteFile(updates, []byte("AutoFillPasswords: false\nHistoryAgeInDays: 7\n"), 0o644))

	out, err := execute(t, testutil.NewMockTool(t), "--udid", udid, "--os-version", "17.2", "settings", "update", target, updates)
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)

	out, err = execute(t, testutil.NewMockTool(t), "--udid", udid, "--os-version", "17.2", "settings", "read", target)
	require.NoError(t, err)
	assert.JSONEq(t, `{"AutoFillPasswords": false, "HistoryAgeInDays": 7}`, out)
}

func TestSettingsReadMissingFile(t *testing.T) {
	out, err := execute(t, testutil.NewMockTool(t), "--udid", udid, "--os-version", "17.2",
		"settings", "read", filepath.Join(t.TempDir(), "absent.plist"))
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, out)
}

func TestKeychainPreserveRejectsInvalidPattern(t *testing.T) {
	tool := testutil.NewMockTool(t)
	marker := filepath.Join(t.TempDir(), "ran")

	_, err := execute(t, tool, "--udid", udid, "--os-version", "17.2",
		"keychain", "preserve", "--exclude", "[", "--", "touch", marker)
	assert.ErrorIs(t, err, types.ErrInvalidPattern)
	assert.NoFileExists(t, marker)
	tool.AssertNotCalled(t, "DeviceInfo")
}

func TestSystemInfoWithMetrics(t *testing.T) {
	tool := testutil.NewMockTool(t)
	tool.On("DeviceInfo").Return(types.Device{
		UDID:     udid,
		State:    types.StateShutdown,
		DataPath: "/sets/ci/" + udid + "/data",
		Runtime:  "com.apple.CoreSimulator.SimRuntime.iOS-16-4",
	}, nil)

	out, err := execute(t, tool, "--udid", udid, "--metrics-file", filepath.Join(t.TempDir(), "m.prom"), "system", "info")
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"udid": "8A6A5C8E-4C41-4E5C-9E0B-2D7C1E2A3B4C",
		"name": "",
		"state": "Shutdown",
		"runtime": "com.apple.CoreSimulator.SimRuntime.iOS-16-4",
		"data_path": "/sets/ci/8A6A5C8E-4C41-4E5C-9E0B-2D7C1E2A3B4C/data",
		"os_version": "16.4.0",
		"generation": "16",
		"metrics": {"tool_calls": 0, "tool_failures": 0, "poll_timeouts": 0}
	}`, out)
}

func TestLoadUpdates(t *testing.T) {
	tests := []struct {
		file    string
		content string
	}{
		{"updates.yaml", "ShowFavorites: true\nSearchEngine: DuckDuckGo\n"},
		{"updates.toml", "ShowFavorites = true\nSearchEngine = \"DuckDuckGo\"\n"},
		{"updates.json", `{"ShowFavorites": true, "SearchEngine": "DuckDuckGo"}`},
		{"updates.plist", `<?xml version="1.0" encoding="UTF-8"?>
<plist version="1.0"><dict>
<key>ShowFavorites</key><true/>
<key>SearchEngine</key><string>DuckDuckGo</string>
</dict></plist>`},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			updates, err := loadUpdates(path)
			require.NoError(t, err)
			assert.Equal(t, true, updates["ShowFavorites"])
			assert.Equal(t, "DuckDuckGo", updates["SearchEngine"])
		})
	}

	t.Run("unsupported extension", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "updates.ini")
		require.NoError(t, os.WriteFile(path, []byte("a=b"), 0o644))

		_, err := loadUpdates(path)
		assert.Error(t, err)
	})
}

func TestMetricsFile(t *testing.T) {
	tool := testutil.NewMockTool(t)
	tool.On("GetEnv", "IPHONE_SIMULATOR_ROOT").Return("/sim/root", nil)
	metrics := filepath.Join(t.TempDir(), "simdriver.prom")

	out, err := execute(t, tool, "--udid", udid, "--os-version", "17.2", "--metrics-file", metrics, "system", "daemons-root")
	require.NoError(t, err)
	assert.Equal(t, "/sim/root/System/Library/LaunchDaemons\n", out)
	assert.FileExists(t, metrics)
}

func simctlInfo(bundleID string) simctl.AppInfo {
	return simctl.AppInfo{AppRecord: types.AppRecord{BundleID: bundleID}}
}
