// Package transaction guards driver installation with an advisory lock file
// so two processes never extract or link the same driver family at once.
package transaction

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/process"
)

const (
	// StaleLockThreshold is the maximum age of a lock before it's considered stale.
	StaleLockThreshold = 10 * time.Minute

	// LockFileName is created inside the locked directory.
	LockFileName = "install.lock"

	// DefaultPollInterval is how often WaitLock retries a held lock.
	DefaultPollInterval = 200 * time.Millisecond
)

// ErrLockExists is returned by AcquireLock when another process holds the lock.
var ErrLockExists = errors.New("install lock exists: another webdrivermanager may be running")

// Lock represents a held install lock.
type Lock struct {
	path string
	file *os.File
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// AcquireLock makes one attempt to take the lock in dir, creating dir if
// needed. A held lock yields ErrLockExists. A stale lock is removed and the
// attempt is retried once.
func AcquireLock(ctx context.Context, dir string) (*Lock, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	lockPath := filepath.Join(dir, LockFileName)

	file, err := createLockFile(lockPath)
	if err != nil {
		if !os.IsExist(err) {
			return nil, fmt.Errorf("create lock file: %w", err)
		}
		if !isLockStale(ctx, lockPath) {
			return nil, ErrLockExists
		}
		_ = os.Remove(lockPath)
		file, err = createLockFile(lockPath)
		if err != nil {
			return nil, ErrLockExists
		}
	}

	lockData := fmt.Sprintf("pid=%d\ntimestamp=%s\n", os.Getpid(), time.Now().UTC().Format(time.RFC3339))
	if _, err := file.WriteString(lockData); err != nil {
		file.Close()
		os.Remove(lockPath)
		return nil, fmt.Errorf("write lock data: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(lockPath)
		return nil, fmt.Errorf("sync lock file: %w", err)
	}

	return &Lock{
		path: lockPath,
		file: file,
	}, nil
}

// WaitLock retries AcquireLock every interval until the lock is taken or
// ctx is done. An interval <= 0 uses DefaultPollInterval.
func WaitLock(ctx context.Context, dir string, interval time.Duration) (*Lock, error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		lock, err := AcquireLock(ctx, dir)
		if err == nil {
			return lock, nil
		}
		if !errors.Is(err, ErrLockExists) {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("wait for %s: %w", filepath.Join(dir, LockFileName), ctx.Err())
		case <-ticker.C:
		}
	}
}

// Release releases the lock. Calling it more than once is harmless.
func (l *Lock) Release() error {
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}

	if l.path != "" {
		if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove lock file: %w", err)
		}
		l.path = ""
	}

	return nil
}

func createLockFile(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o600)
}

// isLockStale reports whether the lock at lockPath was left behind: it is
// older than StaleLockThreshold, or its owner process no longer exists.
func isLockStale(ctx context.Context, lockPath string) bool {
	info, err := os.Stat(lockPath)
	if err != nil {
		return false
	}
	if time.Since(info.ModTime()) > StaleLockThreshold {
		return true
	}

	pid, ok := lockOwner(lockPath)
	if !ok {
		return false
	}
	exists, err := process.PidExistsWithContext(ctx, pid)
	if err != nil {
		return false
	}
	return !exists
}

// lockOwner reads the pid= line written by AcquireLock.
func lockOwner(lockPath string) (int32, bool) {
	f, err := os.Open(lockPath)
	if err != nil {
		return 0, false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		value, found := strings.CutPrefix(scanner.Text(), "pid=")
		if !found {
			continue
		}
		pid, err := strconv.ParseInt(strings.TrimSpace(value), 10, 32)
		if err != nil || pid <= 0 {
			return 0, false
		}
		return int32(pid), true
	}
	return 0, false
}
