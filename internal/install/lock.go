package install

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// lockPollInterval is how often a blocked install retries the lock file.
var lockPollInterval = 100 * time.Millisecond

// staleLockAge is how long a lock may sit untouched before it is taken over
// even if its recorded PID belongs to a live process.
var staleLockAge = time.Hour

// acquireInstallLock serializes installs of the same version across
// processes. It only guards the version directory; registry files are not
// locked. A lock left by a process that no longer exists, or one older than
// staleLockAge, is removed and retaken.
func acquireInstallLock(ctx context.Context, binDir, version string) (func(), error) {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return nil, fmt.Errorf("prepare bin dir: %w", err)
	}

	lockPath := filepath.Join(binDir, fmt.Sprintf(".%s.lock", version))
	ticker := time.NewTicker(lockPollInterval)
	defer ticker.Stop()

	for {
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if err == nil {
			_, _ = fmt.Fprintf(f, "%d\n", os.Getpid())
			_ = f.Close()
			return func() { _ = os.Remove(lockPath) }, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("acquire install lock: %w", err)
		}
		if lockIsStale(lockPath, time.Now()) {
			if err := os.Remove(lockPath); err == nil || errors.Is(err, os.ErrNotExist) {
				continue
			}
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("acquire install lock %s: %w", lockPath, ctx.Err())
		case <-ticker.C:
		}
	}
}

// lockIsStale reports whether the lock at path was abandoned. A lock whose
// content is not yet a PID is still being written and is never stale unless
// it is older than staleLockAge.
func lockIsStale(path string, now time.Time) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if now.Sub(info.ModTime()) > staleLockAge {
		return true
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return false
	}
	return !processAlive(pid)
}

func processAlive(pid int) bool {
	err := syscall.Kill(pid, 0)
	return err == nil || errors.Is(err, syscall.EPERM)
}
