package fileops

import (
	"context"
	"errors"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"
	"github.com/dustin/go-humanize"

	"github.com/justyntemme/razorcore/internal/debug"
)

// Common file permission modes
const (
	DirPermission  = 0o755 // Standard directory permissions
	FilePermission = 0o644 // Standard file permissions
)

// pathExists checks if a path exists on the filesystem, without following links.
func pathExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// renameChecked is a rename that refuses to replace an existing target.
// The check and the rename are not atomic.
func renameChecked(src, dst string) error {
	if pathExists(dst) {
		return &os.LinkError{Op: "rename", Old: src, New: dst, Err: iofs.ErrExist}
	}
	return os.Rename(src, dst)
}

// within reports whether path is dir or lies below it.
func within(path, dir string) bool {
	if path == dir {
		return true
	}
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// copyTree copies src to dst, which must not exist. Directories are copied
// recursively and symlinks are recreated, not followed. created reports
// whether dst was created, so a failed copy can be cleaned up without ever
// touching a path that existed before.
func copyTree(ctx context.Context, src, dst string) (n int64, created bool, err error) {
	info, err := os.Lstat(src)
	if err != nil {
		return 0, false, err
	}
	switch {
	case info.Mode()&os.ModeSymlink != 0:
		err = copySymlink(src, dst)
		return 0, err == nil, err
	case info.IsDir():
		return copyDir(ctx, src, dst, info.Mode().Perm())
	default:
		return copyFile(src, dst, info.Mode().Perm())
	}
}

func copySymlink(src, dst string) error {
	target, err := os.Readlink(src)
	if err != nil {
		return err
	}
	return os.Symlink(target, dst)
}

// copyFile copies a single file. The destination is created exclusively.
func copyFile(src, dst string, mode iofs.FileMode) (int64, bool, error) {
	srcFile, err := os.Open(src)
	if err != nil {
		return 0, false, err
	}
	defer srcFile.Close()

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode)
	if err != nil {
		return 0, false, err
	}

	n, err := io.Copy(dstFile, srcFile)
	if cerr := dstFile.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, true, err
	}
	return n, true, os.Chmod(dst, mode)
}

// copyDir copies a directory recursively
func copyDir(ctx context.Context, src, dst string, mode iofs.FileMode) (int64, bool, error) {
	// Single pass with fastwalk to build the item list, then create in order
	type copyItem struct {
		srcPath string
		dstPath string
		isDir   bool
		isLink  bool
		mode    iofs.FileMode
	}
	var (
		items     []copyItem
		itemsMu   sync.Mutex
		totalSize atomic.Int64
		walkErr   error
		errOnce   sync.Once
	)

	conf := &fastwalk.Config{Follow: false}
	err := fastwalk.Walk(conf, src, func(fullPath string, d iofs.DirEntry, err error) error {
		if err != nil {
			errOnce.Do(func() { walkErr = err })
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		rel, rerr := filepath.Rel(src, fullPath)
		if rerr != nil {
			return rerr
		}
		if rel == "." {
			return nil // Skip source root itself
		}

		info, serr := d.Info()
		if serr != nil {
			errOnce.Do(func() { walkErr = serr })
			return serr
		}

		item := copyItem{
			srcPath: fullPath,
			dstPath: filepath.Join(dst, rel),
			isDir:   d.IsDir(),
			isLink:  d.Type()&os.ModeSymlink != 0,
			mode:    info.Mode().Perm(),
		}
		if !item.isDir && !item.isLink {
			totalSize.Add(info.Size())
		}
		itemsMu.Lock()
		items = append(items, item)
		itemsMu.Unlock()
		return nil
	})
	if walkErr != nil {
		return 0, false, walkErr
	}
	if err != nil {
		return 0, false, err
	}

	// The root is created exclusively so it is the one path an undo removes
	if err := os.Mkdir(dst, mode|0o700); err != nil {
		return 0, false, err
	}

	// Directories first, parents before children
	sort.Slice(items, func(i, j int) bool {
		if items[i].isDir != items[j].isDir {
			return items[i].isDir
		}
		return len(items[i].dstPath) < len(items[j].dstPath)
	})

	var copied int64
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return copied, true, err
		}
		switch {
		case item.isDir:
			if err := os.MkdirAll(item.dstPath, item.mode|0o700); err != nil {
				return copied, true, err
			}
		case item.isLink:
			if err := copySymlink(item.srcPath, item.dstPath); err != nil {
				return copied, true, err
			}
		default:
			n, _, err := copyFile(item.srcPath, item.dstPath, item.mode)
			copied += n
			if err != nil {
				return copied, true, err
			}
		}
	}

	// Restore directory modes that were widened for writing
	for _, item := range items {
		if item.isDir {
			os.Chmod(item.dstPath, item.mode)
		}
	}
	os.Chmod(dst, mode)

	debug.Log(debug.FILEOP, "copyDir %s: %d items, %s of %s",
		src, len(items), humanize.Bytes(uint64(copied)), humanize.Bytes(uint64(totalSize.Load())))
	return copied, true, nil
}

// removeTree deletes a file, link or directory tree.
func removeTree(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return os.RemoveAll(path)
	}
	return os.Remove(path)
}

// moveAcrossDevices copies src to dst then removes src.
func moveAcrossDevices(ctx context.Context, src, dst string) error {
	if _, created, err := copyTree(ctx, src, dst); err != nil {
		if created {
			if rerr := os.RemoveAll(dst); rerr != nil && !errors.Is(rerr, iofs.ErrNotExist) {
				debug.Log(debug.FILEOP, "cleanup %s: %v", dst, rerr)
			}
		}
		return err
	}
	return os.RemoveAll(src)
}
