package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/simdriver/internal/shared/types"
	"github.com/GriffinCanCode/simdriver/internal/simctl"
	"github.com/GriffinCanCode/simdriver/internal/testutil"
)

var listing = map[string]types.AppRecord{
	"com.x.y": {BundleID: "com.x.y", BundleName: "Y", Type: types.ApplicationUser},
	"com.x.z": {BundleID: "com.x.z", BundleName: "Y", Type: types.ApplicationSystem},
	"com.a.b": {BundleID: "com.a.b", BundleName: "B", Type: types.ApplicationUser},
}

func newTestManager(t *testing.T, steps ...testutil.PSStep) (*Manager, *testutil.MockTool, *testutil.FakeProcesses) {
	tool := testutil.NewMockTool(t)
	procs := testutil.NewFakeProcesses(steps...)
	m := NewManager(tool, procs, nil).WithPolling(10*time.Millisecond, 100*time.Millisecond)
	return m, tool, procs
}

func TestGetUserInstalledBundleIDsByBundleName(t *testing.T) {
	m, tool, _ := newTestManager(t)
	tool.On("ListApps").Return(listing, nil)

	ids, err := m.GetUserInstalledBundleIDsByBundleName(context.Background(), "Y")
	require.NoError(t, err)
	assert.Equal(t, []string{"com.x.y"}, ids)

	ids, err = m.GetUserInstalledBundleIDsByBundleName(context.Background(), "Z")
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.NotNil(t, ids)
}

func TestGetUserInstalledBundleIDsSorted(t *testing.T) {
	m, tool, _ := newTestManager(t)
	tool.On("ListApps").Return(map[string]types.AppRecord{
		"com.c": {BundleID: "com.c", BundleName: "Same", Type: types.ApplicationUser},
		"com.a": {BundleID: "com.a", BundleName: "Same", Type: types.ApplicationUser},
		"com.b": {BundleID: "com.b", BundleName: "Same", Type: types.ApplicationUser},
	}, nil)

	ids, err := m.GetUserInstalledBundleIDsByBundleName(context.Background(), "Same")
	require.NoError(t, err)
	assert.Equal(t, []string{"com.a", "com.b", "com.c"}, ids)
}

func TestGetUserInstalledBundleIDsToolError(t *testing.T) {
	m, tool, _ := newTestManager(t)
	toolErr := &types.ToolError{Command: "xcrun", Args: []string{"simctl", "listapps"}, ExitCode: 1, Stderr: "boom"}
	tool.On("ListApps").Return(nil, toolErr)

	_, err := m.GetUserInstalledBundleIDsByBundleName(context.Background(), "Y")
	assert.Same(t, toolErr, err)
}

func TestIsAppInstalled(t *testing.T) {
	t.Run("listed", func(t *testing.T) {
		m, tool, _ := newTestManager(t)
		tool.On("ListApps").Return(listing, nil)
		assert.True(t, m.IsAppInstalled(context.Background(), "com.x.y"))
	})

	t.Run("listing without bundle is final", func(t *testing.T) {
		m, tool, _ := newTestManager(t)
		tool.On("ListApps").Return(listing, nil)
		assert.False(t, m.IsAppInstalled(context.Background(), "com.nope"))
		tool.AssertNotCalled(t, "AppInfo", "com.nope")
	})

	t.Run("falls back to appinfo", func(t *testing.T) {
		m, tool, _ := newTestManager(t)
		tool.On("ListApps").Return(nil, errors.New("listing failed"))
		tool.On("AppInfo", "com.x.y").Return(simctl.AppInfo{}, nil)
		assert.True(t, m.IsAppInstalled(context.Background(), "com.x.y"))
	})

	t.Run("every strategy fails", func(t *testing.T) {
		m, tool, _ := newTestManager(t)
		tool.On("ListApps").Return(nil, errors.New("listing failed"))
		tool.On("AppInfo", "com.x.y").Return(simctl.AppInfo{}, errors.New("appinfo failed"))
		assert.False(t, m.IsAppInstalled(context.Background(), "com.x.y"))
	})
}

func TestInstallCheckStrategies(t *testing.T) {
	ctx := context.Background()

	t.Run("text check needs the application type marker", func(t *testing.T) {
		m, tool, _ := newTestManager(t)
		tool.On("AppInfo", "com.x.y").Return(simctl.AppInfo{Raw: `{ ApplicationType = User; }`}, nil).Once()
		tool.On("AppInfo", "com.x.y").Return(simctl.AppInfo{Raw: `{ }`}, nil).Once()

		assert.True(t, m.CheckInstalled(ctx, "com.x.y", m.AppInfoTextCheck()))
		assert.False(t, m.CheckInstalled(ctx, "com.x.y", m.AppInfoTextCheck()))
	})

	t.Run("identity check compares bundle ids", func(t *testing.T) {
		m, tool, _ := newTestManager(t)
		match := simctl.AppInfo{AppRecord: types.AppRecord{BundleID: "com.x.y"}}
		other := simctl.AppInfo{AppRecord: types.AppRecord{BundleID: "com.other"}}
		tool.On("AppInfo", "com.x.y").Return(match, nil).Once()
		tool.On("AppInfo", "com.x.y").Return(other, nil).Once()
		tool.On("AppInfo", "com.x.y").Return(simctl.AppInfo{}, nil).Once()

		assert.True(t, m.CheckInstalled(ctx, "com.x.y", m.AppInfoIdentityCheck()))
		assert.False(t, m.CheckInstalled(ctx, "com.x.y", m.AppInfoIdentityCheck()))
		assert.False(t, m.CheckInstalled(ctx, "com.x.y", m.AppInfoIdentityCheck()))
	})

	t.Run("no checks means absent", func(t *testing.T) {
		m, _, _ := newTestManager(t)
		assert.False(t, m.CheckInstalled(ctx, "com.x.y"))
	})
}

func TestLaunchAppWithoutWait(t *testing.T) {
	m, tool, procs := newTestManager(t)
	tool.On("LaunchApp", "com.x.y").Return(nil)

	err := m.LaunchApp(context.Background(), "com.x.y", types.LaunchOptions{})
	require.NoError(t, err)
	assert.Zero(t, procs.Calls())
}

func TestLaunchAppWaitsForProcess(t *testing.T) {
	m, tool, procs := newTestManager(t,
		testutil.Running("com.apple.springboard"),
		testutil.Failing(errors.New("spawn failed")),
		testutil.Running("com.apple.springboard", "com.x.y"),
	)
	tool.On("LaunchApp", "com.x.y").Return(nil)

	err := m.LaunchApp(context.Background(), "com.x.y", types.LaunchOptions{Wait: true})
	require.NoError(t, err)
	assert.Equal(t, 3, procs.Calls())
}

func TestLaunchAppTimeout(t *testing.T) {
	m, tool, _ := newTestManager(t, testutil.Running("com.apple.springboard"))
	tool.On("LaunchApp", "com.x.y").Return(nil)

	timeout := 50 * time.Millisecond
	start := time.Now()
	err := m.LaunchApp(context.Background(), "com.x.y", types.LaunchOptions{Wait: true, Timeout: timeout})
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrVerificationTimeout)
	assert.Less(t, elapsed, timeout+250*time.Millisecond)
	assert.GreaterOrEqual(t, elapsed, timeout)

	var timeoutErr *types.TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, types.OpLaunch, timeoutErr.Op)
	assert.Equal(t, "app 'com.x.y' is not running after 50ms timeout", err.Error())
}

func TestLaunchAppToolErrorIsVerbatim(t *testing.T) {
	m, tool, procs := newTestManager(t)
	toolErr := &types.ToolError{Command: "xcrun", Args: []string{"simctl", "launch"}, ExitCode: 4, Stderr: "FBSOpenApplicationServiceErrorDomain"}
	tool.On("LaunchApp", "com.x.y").Return(toolErr)

	err := m.LaunchApp(context.Background(), "com.x.y", types.LaunchOptions{Wait: true})
	assert.Same(t, toolErr, err)
	assert.Zero(t, procs.Calls())
}

func TestIsAppRunningExactMatch(t *testing.T) {
	m, _, _ := newTestManager(t, testutil.Running("com.x.yz", "UIKitApplication:com.x.y"))

	running, err := m.IsAppRunning(context.Background(), "com.x.y")
	require.NoError(t, err)
	assert.False(t, running)
}

func TestInstallRemoveTerminatePassThrough(t *testing.T) {
	m, tool, _ := newTestManager(t)
	installErr := &types.ToolError{Command: "xcrun", Args: []string{"simctl", "install"}, ExitCode: 1}
	tool.On("InstallApp", "/tmp/Y.app").Return(installErr)
	tool.On("RemoveApp", "com.x.y").Return(nil)
	tool.On("TerminateApp", "com.x.y").Return(nil)

	ctx := context.Background()
	assert.Same(t, installErr, m.InstallApp(ctx, "/tmp/Y.app"))
	assert.NoError(t, m.RemoveApp(ctx, "com.x.y"))
	assert.NoError(t, m.TerminateApp(ctx, "com.x.y"))
}

func TestScrubApp(t *testing.T) {
	t.Run("not installed", func(t *testing.T) {
		m, tool, _ := newTestManager(t)
		tool.On("ListApps").Return(listing, nil)

		err := m.ScrubApp(context.Background(), "com.nope")
		assert.ErrorIs(t, err, types.ErrNotInstalled)
		tool.AssertNotCalled(t, "RemoveApp", "com.nope")
	})

	t.Run("installed", func(t *testing.T) {
		m, tool, _ := newTestManager(t)
		tool.On("ListApps").Return(listing, nil)
		tool.On("RemoveApp", "com.x.y").Return(nil)

		assert.NoError(t, m.ScrubApp(context.Background(), "com.x.y"))
	})
}
