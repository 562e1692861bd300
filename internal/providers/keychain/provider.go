package keychain

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/simdriver/internal/shared/id"
	"github.com/GriffinCanCode/simdriver/internal/shared/paths"
	"github.com/GriffinCanCode/simdriver/internal/shared/types"
	"github.com/GriffinCanCode/simdriver/internal/shared/utils"
)

// Tool is the subset of the control tool keychain handling needs
type Tool interface {
	DeviceInfo(ctx context.Context) (types.Device, error)
	Spawn(ctx context.Context, args ...string) (string, error)
}

// DaemonsRootFunc resolves the LaunchDaemons folder of the device's system root
type DaemonsRootFunc func(ctx context.Context) (string, error)

// Manager backs up, restores and clears the keychain store of one device.
// At most one backup exists at a time and it lives only as long as the
// manager.
type Manager struct {
	tool        Tool
	daemonsRoot DaemonsRootFunc
	keychains   string
	backupDir   string

	mu     sync.Mutex
	backup string

	logger *zap.Logger
}

// NewManager creates a keychain manager for device. Backups are written to
// backupDir, or the system temp dir when empty.
func NewManager(tool Tool, device paths.Device, daemonsRoot DaemonsRootFunc, backupDir string, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if backupDir == "" {
		backupDir = os.TempDir()
	}
	return &Manager{
		tool:        tool,
		daemonsRoot: daemonsRoot,
		keychains:   device.KeychainsDir(),
		backupDir:   backupDir,
		logger:      logger.Named("keychain").With(zap.String("udid", device.UDID)),
	}
}

// BackupKeychains snapshots the keychains folder. A backup that was never
// restored is discarded. It returns false when there is nothing to back up.
func (m *Manager) BackupKeychains(ctx context.Context) (bool, error) {
	if _, err := os.Stat(m.keychains); err != nil {
		m.logger.Info("keychains folder is not accessible", zap.String("path", m.keychains), zap.Error(err))
		return false, nil
	}

	if err := os.MkdirAll(m.backupDir, 0o700); err != nil {
		return false, fmt.Errorf("failed to create backup dir: %w", err)
	}
	archive := filepath.Join(m.backupDir, fmt.Sprintf("keychains_backup_%s.tar.zst", id.NewBackupID()))

	files, err := writeArchive(ctx, m.keychains, archive)
	if err != nil {
		os.Remove(archive)
		return false, fmt.Errorf("keychains backup failed: %w", err)
	}

	m.mu.Lock()
	previous := m.backup
	m.backup = archive
	m.mu.Unlock()

	if previous != "" {
		if err := os.Remove(previous); err != nil && !errors.Is(err, fs.ErrNotExist) {
			m.logger.Warn("failed to discard previous backup", zap.String("path", previous), zap.Error(err))
		}
	}

	m.logger.Info("keychains backed up", zap.String("archive", archive), zap.Int("files", files))
	return true, nil
}

// RestoreKeychains replaces the keychains folder with the latest backup and
// consumes it. Entries matching any exclude pattern are left out; each
// pattern may itself be a comma separated list. The backup is unpacked next
// to the live folder first, so the current keychains are only replaced once
// the whole archive has been extracted.
func (m *Manager) RestoreKeychains(ctx context.Context, excludePatterns ...string) (bool, error) {
	exclude := utils.NormalizePatterns(excludePatterns...)
	if err := utils.ValidatePatterns(exclude); err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.backup == "" {
		return false, types.ErrNoBackupAvailable
	}
	if _, err := os.Stat(m.backup); err != nil {
		m.backup = ""
		return false, fmt.Errorf("%w: %v", types.ErrNoBackupAvailable, err)
	}

	staging, files, err := m.stage(ctx, exclude)
	if err != nil {
		return false, fmt.Errorf("keychains restore failed: %w", err)
	}
	defer os.RemoveAll(staging)

	err = m.withSecurityDaemonStopped(ctx, func() error {
		return swapDir(staging, m.keychains)
	})
	if err != nil {
		return false, fmt.Errorf("keychains restore failed: %w", err)
	}

	if err := os.Remove(m.backup); err != nil && !errors.Is(err, fs.ErrNotExist) {
		m.logger.Warn("failed to delete consumed backup", zap.String("path", m.backup), zap.Error(err))
	}
	m.backup = ""

	m.logger.Info("keychains restored", zap.Int("files", files), zap.Strings("exclude", exclude))
	return true, nil
}

// stage unpacks the current backup into a fresh sibling of the keychains
// folder. mu must be held.
func (m *Manager) stage(ctx context.Context, exclude []string) (string, int, error) {
	parent := filepath.Dir(m.keychains)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return "", 0, err
	}
	staging, err := os.MkdirTemp(parent, ".keychains-restore-*")
	if err != nil {
		return "", 0, err
	}
	if err := os.Chmod(staging, 0o755); err != nil {
		os.RemoveAll(staging)
		return "", 0, err
	}

	files, err := extractArchive(ctx, m.backup, staging, exclude)
	if err != nil {
		os.RemoveAll(staging)
		return "", 0, err
	}
	return staging, files, nil
}

// ClearKeychains wipes the keychains folder in place. The device may stay
// booted; the security daemon is stopped around the wipe.
func (m *Manager) ClearKeychains(ctx context.Context) error {
	err := m.withSecurityDaemonStopped(ctx, func() error {
		if _, err := os.Stat(m.keychains); errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return resetDir(m.keychains)
	})
	if err != nil {
		return fmt.Errorf("%w: %w", types.ErrKeychainClear, err)
	}
	m.logger.Info("keychains cleared", zap.String("path", m.keychains))
	return nil
}

// DiscardBackup deletes a pending backup, if any
func (m *Manager) DiscardBackup() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.backup == "" {
		return nil
	}
	err := os.Remove(m.backup)
	m.backup = ""
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// withSecurityDaemonStopped runs fn with securityd unloaded when the device is
// booted. On a shut down device fn runs directly.
func (m *Manager) withSecurityDaemonStopped(ctx context.Context, fn func() error) (err error) {
	device, err := m.tool.DeviceInfo(ctx)
	if err != nil {
		return err
	}
	if !device.Booted() {
		return fn()
	}

	root, err := m.daemonsRoot(ctx)
	if err != nil {
		return err
	}
	plistPath := filepath.Join(root, paths.SecurityDaemon+".plist")
	if _, err := os.Stat(plistPath); err != nil {
		return fmt.Errorf("cannot find '%s': %w", plistPath, err)
	}

	if _, err := m.tool.Spawn(ctx, "launchctl", "unload", plistPath); err != nil {
		return err
	}
	defer func() {
		if _, loadErr := m.tool.Spawn(ctx, "launchctl", "load", plistPath); loadErr != nil {
			err = errors.Join(err, loadErr)
		}
	}()
	return fn()
}

// swapDir moves staged into place of dir. The previous tree is put back if
// the final rename fails.
func swapDir(staged, dir string) error {
	previous := staged + ".previous"
	if err := os.Rename(dir, previous); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err := os.Rename(staged, dir); err != nil {
		if _, statErr := os.Stat(previous); statErr == nil {
			if rbErr := os.Rename(previous, dir); rbErr != nil {
				return errors.Join(err, rbErr)
			}
		}
		return err
	}
	return os.RemoveAll(previous)
}

func resetDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove %s: %w", dir, err)
	}
	return os.MkdirAll(dir, 0o755)
}
