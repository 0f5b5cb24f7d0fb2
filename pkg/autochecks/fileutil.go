package autochecks

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

const (
	dirPerms       = 0o755
	filePerms      = 0o644
	lockRetryDelay = 20 * time.Millisecond
)

// HostPath joins dir and hostname+suffix, rejecting names that escape dir.
func HostPath(dir, hostname, suffix string) (string, error) {
	if hostname == "" {
		return "", ErrEmptyHostname
	}

	if strings.ContainsAny(hostname, `/\`) || hostname == "." || hostname == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidHostname, hostname)
	}

	return filepath.Join(dir, hostname+suffix), nil
}

// WriteFileAtomic replaces path with data via a temporary file in the same directory.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPerms); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temporary file: %w", err)
	}

	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)

		return fmt.Errorf("write temporary file: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)

		return fmt.Errorf("sync temporary file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temporary file: %w", err)
	}

	if err := os.Chmod(tmpPath, filePerms); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("chmod temporary file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath) // best-effort cleanup
		return fmt.Errorf("persist %s: %w", path, err)
	}

	return nil
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", path, err)
	}

	return nil
}

// fileLock is an advisory flock(2) lock on a sidecar file.
type fileLock struct {
	f *os.File
}

func acquireLock(ctx context.Context, path string) (*fileLock, error) {
	if err := os.MkdirAll(filepath.Dir(path), dirPerms); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, filePerms)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	for {
		err = unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		if err == nil {
			return &fileLock{f: f}, nil
		}

		if !errors.Is(err, unix.EWOULDBLOCK) && !errors.Is(err, unix.EINTR) {
			_ = f.Close()
			return nil, fmt.Errorf("lock %s: %w", path, err)
		}

		select {
		case <-ctx.Done():
			_ = f.Close()
			return nil, fmt.Errorf("%w: %s: %w", ErrLockTimeout, path, ctx.Err())
		case <-time.After(lockRetryDelay):
		}
	}
}

func (l *fileLock) release() error {
	defer l.f.Close()

	return unix.Flock(int(l.f.Fd()), unix.LOCK_UN)
}
