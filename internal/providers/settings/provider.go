package settings

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"sort"

	"go.uber.org/zap"
	"howett.net/plist"
)

// Updater patches preference (plist) files
type Updater struct {
	logger *zap.Logger
}

// NewUpdater creates a settings updater
func NewUpdater(logger *zap.Logger) *Updater {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Updater{logger: logger.Named("settings")}
}

// UpdateSettings merges updates into the plist at path and reports whether the
// file's effective content changed. An empty update set never touches the
// file. Missing files are created in binary format; existing files keep
// their format.
func (u *Updater) UpdateSettings(ctx context.Context, path string, updates map[string]any) (bool, error) {
	if len(updates) == 0 {
		return false, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	current, format, mode, err := readPlist(path)
	if err != nil {
		return false, err
	}

	normalized, err := normalize(updates)
	if err != nil {
		return false, err
	}

	var changed []string
	for key, value := range normalized {
		if old, ok := current[key]; ok && reflect.DeepEqual(old, value) {
			continue
		}
		current[key] = value
		changed = append(changed, key)
	}
	if len(changed) == 0 {
		u.logger.Debug("settings already up to date", zap.String("path", path))
		return false, nil
	}
	sort.Strings(changed)

	data, err := plist.Marshal(current, format)
	if err != nil {
		return false, fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := writeAtomic(path, data, mode); err != nil {
		return false, err
	}

	u.logger.Debug("settings updated", zap.String("path", path), zap.Strings("keys", changed))
	return true, nil
}

// ReadSettings returns the decoded content of a plist file. A missing file
// reads as an empty mapping.
func (u *Updater) ReadSettings(path string) (map[string]any, error) {
	current, _, _, err := readPlist(path)
	return current, err
}

func readPlist(path string) (map[string]any, int, fs.FileMode, error) {
	current := map[string]any{}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return current, plist.BinaryFormat, 0o644, nil
	}
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to read %s: %w", path, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if len(data) == 0 {
		return current, plist.BinaryFormat, info.Mode().Perm(), nil
	}

	format, err := plist.Unmarshal(data, &current)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return current, format, info.Mode().Perm(), nil
}

// normalize round-trips updates through the plist codec so they compare
// equal to values decoded from disk (e.g. int 1 and uint64 1)
func normalize(updates map[string]any) (map[string]any, error) {
	data, err := plist.Marshal(updates, plist.BinaryFormat)
	if err != nil {
		return nil, fmt.Errorf("unsupported settings value: %w", err)
	}
	normalized := map[string]any{}
	if _, err := plist.Unmarshal(data, &normalized); err != nil {
		return nil, fmt.Errorf("unsupported settings value: %w", err)
	}
	return normalized, nil
}

func writeAtomic(path string, data []byte, mode fs.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to chmod %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return os.Rename(tmp.Name(), path)
}
