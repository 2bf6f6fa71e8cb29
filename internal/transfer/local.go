package transfer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/Theomat/rusync/internal/logging"
	"github.com/Theomat/rusync/internal/registry"
)

// Local copies entries through the local filesystem. It serves plain-path
// remote descriptors; host-qualified descriptors fail, they belong to the
// SSH or scp backends.
type Local struct{}

// NewLocal returns the filesystem copy backend.
func NewLocal() *Local {
	return &Local{}
}

// Transfer copies e.Local onto the destination path. The local side is
// authoritative: content only ever flows local to remote, and a destination
// with matching size and a modification time at least as new reports
// unchanged.
func (l *Local) Transfer(ctx context.Context, e registry.Entry) Outcome {
	r := ParseRemote(e.Remote)
	if r.IsRemote() {
		return Failed(fmt.Sprintf("local backend cannot reach host %q", r.Host))
	}
	if err := ctx.Err(); err != nil {
		return FailedErr(err)
	}

	srcInfo, err := os.Stat(e.Local)
	if err != nil {
		return FailedErr(err)
	}

	var copied int
	var size int64
	if srcInfo.IsDir() {
		copied, size, err = syncDir(ctx, e.Local, r.Path, srcInfo)
	} else {
		copied, size, err = syncFile(e.Local, r.Path, srcInfo)
	}
	if err != nil {
		return FailedErr(err)
	}
	if copied == 0 {
		return Unchanged()
	}

	logging.Debug("copied locally",
		logging.Local(e.Local),
		logging.Remote(r.Path),
		logging.Count(copied),
	)
	return Transferred(size)
}

// upToDate reports whether dst already matches the source file. Matching is
// size plus modification time: copies preserve the source mtime, so a
// destination at least as new with the same size needs no work.
func upToDate(srcInfo os.FileInfo, dst string) bool {
	dstInfo, err := os.Stat(dst)
	if err != nil {
		return false
	}
	if dstInfo.IsDir() {
		return false
	}
	return dstInfo.Size() == srcInfo.Size() && !dstInfo.ModTime().Before(srcInfo.ModTime())
}

// syncFile copies a single file unless the destination is already up to
// date, preserving permissions and modification time. It reports how many
// files were copied (0 or 1) and the byte count.
func syncFile(src, dst string, srcInfo os.FileInfo) (int, int64, error) {
	if upToDate(srcInfo, dst) {
		return 0, 0, nil
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return 0, 0, fmt.Errorf("failed to create destination directory for %q: %w", dst, err)
	}

	// #nosec G304 - src comes from the user's own registry
	srcFile, err := os.Open(src)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to open source %q: %w", src, err)
	}
	defer func() { _ = srcFile.Close() }()

	// Create destination file with same permissions
	// #nosec G302 G304 - preserving source permissions, dst is from the user's registry
	dstFile, err := os.OpenFile(dst, os.O_RDWR|os.O_CREATE|os.O_TRUNC, srcInfo.Mode())
	if err != nil {
		return 0, 0, fmt.Errorf("failed to create destination %q: %w", dst, err)
	}

	n, err := io.Copy(dstFile, srcFile)
	if cerr := dstFile.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, 0, fmt.Errorf("failed to copy content to %q: %w", dst, err)
	}

	// Carry the source mtime so the next run sees the file as up to date.
	if err := os.Chtimes(dst, time.Now(), srcInfo.ModTime()); err != nil {
		return 0, 0, fmt.Errorf("failed to set times on %q: %w", dst, err)
	}

	return 1, n, nil
}

// syncDir recursively copies a directory, skipping up-to-date files and
// recreating symlinks as symlinks. The walk stops when ctx is cancelled.
func syncDir(ctx context.Context, src, dst string, srcInfo os.FileInfo) (int, int64, error) {
	if err := os.MkdirAll(dst, srcInfo.Mode()); err != nil {
		return 0, 0, fmt.Errorf("failed to create destination directory %q: %w", dst, err)
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read source directory %q: %w", src, err)
	}

	var copied int
	var size int64
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return copied, size, err
		}

		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		info, err := os.Lstat(srcPath)
		if err != nil {
			return copied, size, fmt.Errorf("failed to lstat %q: %w", srcPath, err)
		}

		switch {
		case info.Mode()&os.ModeSymlink != 0:
			linkTarget, err := os.Readlink(srcPath)
			if err != nil {
				return copied, size, fmt.Errorf("failed to read symlink %q: %w", srcPath, err)
			}
			if existing, err := os.Readlink(dstPath); err == nil && existing == linkTarget {
				continue
			}
			_ = os.Remove(dstPath)
			if err := os.Symlink(linkTarget, dstPath); err != nil {
				return copied, size, fmt.Errorf("failed to create symlink %q: %w", dstPath, err)
			}
			copied++
		case info.IsDir():
			c, b, err := syncDir(ctx, srcPath, dstPath, info)
			copied += c
			size += b
			if err != nil {
				return copied, size, err
			}
		default:
			c, b, err := syncFile(srcPath, dstPath, info)
			copied += c
			size += b
			if err != nil {
				return copied, size, err
			}
		}
	}

	return copied, size, nil
}
