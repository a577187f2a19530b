package video

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// fileTimes holds the timestamps that are carried from a source to its copy
type fileTimes struct {
	Access time.Time
	Modify time.Time
	Mode   fs.FileMode
	Size   int64

	info fs.FileInfo
}

// captureTimes reads the timestamps of path. Call it before reading the file
// so a relatime update does not leak into the copy.
func captureTimes(path string) (*fileTimes, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat source: %w", err)
	}
	return &fileTimes{
		Access: accessTime(fi),
		Modify: fi.ModTime(),
		Mode:   fi.Mode().Perm(),
		Size:   fi.Size(),
		info:   fi,
	}, nil
}

func (t *fileTimes) apply(path string) error {
	if err := os.Chtimes(path, t.Access, t.Modify); err != nil {
		return fmt.Errorf("failed to preserve file dates: %w", err)
	}
	return nil
}

// CopyFile copies src to dst verbatim, keeping permission bits and
// access/modification times. An existing dst is overwritten.
func CopyFile(src, dst string) error {
	times, err := captureTimes(src)
	if err != nil {
		return err
	}

	if di, err := os.Stat(dst); err == nil && os.SameFile(times.info, di) {
		return fmt.Errorf("refusing to copy %s onto itself", src)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, times.Mode)
	if err != nil {
		return fmt.Errorf("failed to create destination: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("failed to close destination: %w", err)
	}

	// O_CREATE mode is filtered by umask and ignored for existing files
	if err := os.Chmod(dst, times.Mode); err != nil {
		return fmt.Errorf("failed to copy permissions: %w", err)
	}

	return times.apply(dst)
}

// copyTo copies src to dst, creating the parent folders of dst when needed
func copyTo(src, dst string) error {
	if err := mkdirFor(dst); err != nil {
		return err
	}
	return CopyFile(src, dst)
}

// mkdirFor creates the folder that will hold path
func mkdirFor(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create folder %s: %w", dir, err)
	}
	return nil
}
