package simctl

import (
	"context"
	"errors"
	"testing"

	"github.com/GriffinCanCode/simdriver/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/simdriver/internal/shared/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockExecutor struct {
	mock.Mock
}

func (m *mockExecutor) Run(ctx context.Context, name string, args ...string) (Output, error) {
	call := m.Called(name, args)
	return call.Get(0).(Output), call.Error(1)
}

const udid = "8A6A5C8E-4C41-4E5C-9E0B-2D7C1E2A3B4C"

func TestLaunchAppCommandLine(t *testing.T) {
	exec := new(mockExecutor)
	exec.On("Run", "xcrun", []string{"simctl", "launch", udid, "com.x.y"}).
		Return(Output{Stdout: "com.x.y: 1234\n"}, nil)

	client := New(udid, Options{Executor: exec})
	require.NoError(t, client.LaunchApp(context.Background(), "com.x.y"))
	exec.AssertExpectations(t)
}

func TestToolErrorIsVerbatim(t *testing.T) {
	exec := new(mockExecutor)
	cause := errors.New("exit status 1")
	exec.On("Run", "xcrun", []string{"simctl", "install", udid, "/tmp/Bad.app"}).
		Return(Output{Stderr: "An error was encountered processing the command (domain=IXErrorDomain, code=13)", ExitCode: 1}, cause)

	metrics := monitoring.NewMetrics(prometheus.NewRegistry())
	client := New(udid, Options{Executor: exec, Metrics: metrics})
	err := client.InstallApp(context.Background(), "/tmp/Bad.app")

	var toolErr *types.ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, 1, toolErr.ExitCode)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "IXErrorDomain")
	assert.Equal(t, int64(1), metrics.Snapshot().ToolFailures)
}

func TestGetAppContainerTrims(t *testing.T) {
	exec := new(mockExecutor)
	exec.On("Run", "xcrun", []string{"simctl", "get_app_container", udid, "com.apple.mobilesafari", "data"}).
		Return(Output{Stdout: "/d/Containers/Data/Application/XYZ\n"}, nil)

	client := New(udid, Options{Executor: exec})
	path, err := client.GetAppContainer(context.Background(), "com.apple.mobilesafari", "data")
	require.NoError(t, err)
	assert.Equal(t, "/d/Containers/Data/Application/XYZ", path)
}

func TestAppInfoKeepsRawText(t *testing.T) {
	exec := new(mockExecutor)
	exec.On("Run", "xcrun", []string{"simctl", "appinfo", udid, "com.x.y"}).
		Return(Output{Stdout: "not a plist {"}, nil)

	client := New(udid, Options{Executor: exec})
	info, err := client.AppInfo(context.Background(), "com.x.y")
	require.NoError(t, err)
	assert.Equal(t, "not a plist {", info.Raw)
	assert.Empty(t, info.BundleID)
}

func TestUIAccessibilityCommands(t *testing.T) {
	exec := new(mockExecutor)
	exec.On("Run", "xcrun", []string{"simctl", "ui", udid, "increase_contrast", "enabled"}).
		Return(Output{}, nil)
	exec.On("Run", "xcrun", []string{"simctl", "ui", udid, "content_size"}).
		Return(Output{Stdout: "large\n"}, nil)

	client := New(udid, Options{Executor: exec})
	require.NoError(t, client.SetIncreaseContrast(context.Background(), "enabled"))

	size, err := client.GetContentSize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "large", size)
}

func TestListOpenFilesUsesLsof(t *testing.T) {
	exec := new(mockExecutor)
	exec.On("Run", "lsof", []string{"-aUc", "launchd_sim", "-Ftn"}).
		Return(Output{Stdout: "p1\nf4\ntunix\nn/tmp/x/com.apple.webinspectord_sim.socket\n"}, nil)

	client := New(udid, Options{Executor: exec})
	files, err := client.ListOpenFiles(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "unix", files[0].Kind)
	assert.Equal(t, "/tmp/x/com.apple.webinspectord_sim.socket", files[0].Path)
}
