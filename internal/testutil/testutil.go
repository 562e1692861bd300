// Package testutil provides testing utilities and helpers for simulator tests.
package testutil

import (
	"context"
	"sync"
	"testing"

	"github.com/GriffinCanCode/simdriver/internal/shared/types"
	"github.com/GriffinCanCode/simdriver/internal/simctl"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// MockTool is a mock implementation of the control tool for testing.
type MockTool struct {
	mock.Mock
}

// InstallApp mocks the InstallApp method.
func (m *MockTool) InstallApp(ctx context.Context, appPath string) error {
	return m.Called(appPath).Error(0)
}

// RemoveApp mocks the RemoveApp method.
func (m *MockTool) RemoveApp(ctx context.Context, bundleID string) error {
	return m.Called(bundleID).Error(0)
}

// LaunchApp mocks the LaunchApp method.
func (m *MockTool) LaunchApp(ctx context.Context, bundleID string, args ...string) error {
	return m.Called(bundleID).Error(0)
}

// TerminateApp mocks the TerminateApp method.
func (m *MockTool) TerminateApp(ctx context.Context, bundleID string) error {
	return m.Called(bundleID).Error(0)
}

// ListApps mocks the ListApps method.
func (m *MockTool) ListApps(ctx context.Context) (map[string]types.AppRecord, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]types.AppRecord), args.Error(1)
}

// AppInfo mocks the AppInfo method.
func (m *MockTool) AppInfo(ctx context.Context, bundleID string) (simctl.AppInfo, error) {
	args := m.Called(bundleID)
	return args.Get(0).(simctl.AppInfo), args.Error(1)
}

// GetAppContainer mocks the GetAppContainer method.
func (m *MockTool) GetAppContainer(ctx context.Context, bundleID, domain string) (string, error) {
	args := m.Called(bundleID, domain)
	return args.String(0), args.Error(1)
}

// OpenURL mocks the OpenURL method.
func (m *MockTool) OpenURL(ctx context.Context, url string) error {
	return m.Called(url).Error(0)
}

// ListOpenFiles mocks the ListOpenFiles method.
func (m *MockTool) ListOpenFiles(ctx context.Context) ([]types.OpenFile, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.OpenFile), args.Error(1)
}

// SetIncreaseContrast mocks the SetIncreaseContrast method.
func (m *MockTool) SetIncreaseContrast(ctx context.Context, value string) error {
	return m.Called(value).Error(0)
}

// GetIncreaseContrast mocks the GetIncreaseContrast method.
func (m *MockTool) GetIncreaseContrast(ctx context.Context) (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

// SetContentSize mocks the SetContentSize method.
func (m *MockTool) SetContentSize(ctx context.Context, value string) error {
	return m.Called(value).Error(0)
}

// GetContentSize mocks the GetContentSize method.
func (m *MockTool) GetContentSize(ctx context.Context) (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

// GetEnv mocks the GetEnv method.
func (m *MockTool) GetEnv(ctx context.Context, name string) (string, error) {
	args := m.Called(name)
	return args.String(0), args.Error(1)
}

// Spawn mocks the Spawn method.
func (m *MockTool) Spawn(ctx context.Context, args ...string) (string, error) {
	call := m.Called(args)
	return call.String(0), call.Error(1)
}

// DeviceInfo mocks the DeviceInfo method.
func (m *MockTool) DeviceInfo(ctx context.Context) (types.Device, error) {
	args := m.Called()
	return args.Get(0).(types.Device), args.Error(1)
}

// DeveloperRoot mocks the DeveloperRoot method.
func (m *MockTool) DeveloperRoot(ctx context.Context) (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

// NewMockTool creates a new mock tool.
func NewMockTool(t *testing.T) *MockTool {
	t.Helper()
	m := new(MockTool)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// FakeProcesses is a scripted process lister. Each PS call consumes the next
// step; the last step repeats.
type FakeProcesses struct {
	mu    sync.Mutex
	steps []PSStep
	calls int
}

// PSStep is one scripted PS answer
type PSStep struct {
	Procs []types.ProcessEntry
	Err   error
}

// NewFakeProcesses creates a fake answering with steps in order
func NewFakeProcesses(steps ...PSStep) *FakeProcesses {
	return &FakeProcesses{steps: steps}
}

// Running builds a step listing processes with the given names
func Running(names ...string) PSStep {
	step := PSStep{Procs: []types.ProcessEntry{}}
	for i, name := range names {
		step.Procs = append(step.Procs, types.ProcessEntry{PID: 100 + i, Name: name})
	}
	return step
}

// Failing builds a step where the process list query fails
func Failing(err error) PSStep {
	return PSStep{Err: err}
}

// PS implements the process lister.
func (f *FakeProcesses) PS(ctx context.Context) ([]types.ProcessEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if len(f.steps) == 0 {
		return []types.ProcessEntry{}, nil
	}
	idx := f.calls - 1
	if idx >= len(f.steps) {
		idx = len(f.steps) - 1
	}
	step := f.steps[idx]
	return step.Procs, step.Err
}

// Calls returns how many times PS was called
func (f *FakeProcesses) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// ObservedLogger returns a debug-level logger whose entries can be inspected.
func ObservedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

// NopLogger returns a logger that discards everything.
func NopLogger() *zap.Logger {
	return zap.NewNop()
}
