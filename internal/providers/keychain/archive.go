package keychain

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
	"github.com/klauspost/compress/zstd"

	"github.com/GriffinCanCode/simdriver/internal/shared/utils"
)

// writeArchive stores the tree below src as a zstd compressed tar at dst and
// returns the number of regular files written
func writeArchive(ctx context.Context, src, dst string) (int, error) {
	entries, err := collect(ctx, src)
	if err != nil {
		return 0, err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return 0, fmt.Errorf("create failed: %w", err)
	}
	defer out.Close()

	zw, err := zstd.NewWriter(out)
	if err != nil {
		return 0, fmt.Errorf("zstd failed: %w", err)
	}
	tw := tar.NewWriter(zw)

	files := 0
	for _, rel := range entries {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		n, err := addEntry(tw, src, rel)
		if err != nil {
			return 0, err
		}
		files += n
	}

	if err := tw.Close(); err != nil {
		return 0, fmt.Errorf("tar close failed: %w", err)
	}
	if err := zw.Close(); err != nil {
		return 0, fmt.Errorf("zstd close failed: %w", err)
	}
	return files, out.Close()
}

// collect lists the entries below root relative to it. fastwalk visits
// directories concurrently, so the result is sorted to keep parents ahead
// of their children in the archive.
func collect(ctx context.Context, root string) ([]string, error) {
	var (
		mu      sync.Mutex
		entries []string
	)
	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		mu.Lock()
		entries = append(entries, filepath.ToSlash(rel))
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s failed: %w", root, err)
	}
	sort.Strings(entries)
	return entries, nil
}

func addEntry(tw *tar.Writer, root, rel string) (int, error) {
	path := filepath.Join(root, filepath.FromSlash(rel))
	info, err := os.Lstat(path)
	if err != nil {
		return 0, err
	}
	if !info.IsDir() && !info.Mode().IsRegular() {
		return 0, nil
	}

	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return 0, err
	}
	header.Name = rel
	if info.IsDir() {
		header.Name += "/"
	}
	if err := tw.WriteHeader(header); err != nil {
		return 0, err
	}
	if info.IsDir() {
		return 0, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	if _, err := io.Copy(tw, file); err != nil {
		return 0, fmt.Errorf("copy %s failed: %w", rel, err)
	}
	return 1, nil
}

// extractArchive unpacks the archive at src below dst, skipping entries that
// match any exclude pattern. A pattern matches either the entry path or its
// base name, so "*.db*" hits files at any depth.
func extractArchive(ctx context.Context, src, dst string, exclude []string) (int, error) {
	if err := utils.ValidatePatterns(exclude); err != nil {
		return 0, err
	}

	in, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("open failed: %w", err)
	}
	defer in.Close()

	zr, err := zstd.NewReader(in)
	if err != nil {
		return 0, fmt.Errorf("zstd failed: %w", err)
	}
	defer zr.Close()

	tr := tar.NewReader(zr)
	root := filepath.Clean(dst)
	files := 0

	for {
		if err := ctx.Err(); err != nil {
			return files, err
		}

		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return files, nil
		}
		if err != nil {
			return files, fmt.Errorf("corrupt backup: %w", err)
		}

		name := strings.TrimSuffix(header.Name, "/")
		if excluded(name, exclude) {
			continue
		}

		target := filepath.Join(root, filepath.FromSlash(name))
		if !strings.HasPrefix(target, root+string(os.PathSeparator)) {
			continue
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return files, err
			}
		case tar.TypeReg:
			if err := extractFile(tr, target, header.FileInfo().Mode().Perm()); err != nil {
				return files, err
			}
			files++
		}
	}
}

func extractFile(r io.Reader, target string, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return fmt.Errorf("extract %s failed: %w", target, err)
	}
	return out.Close()
}

func excluded(name string, patterns []string) bool {
	base := name
	if i := strings.LastIndex(name, "/"); i >= 0 {
		base = name[i+1:]
	}
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, base); ok {
			return true
		}
	}
	return false
}
