package plugin

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// FileLock is the file-based Lock variant: it advisory-locks (flock) a
// fixed path and stamps it with "owner\nexpiresUnixNano", self-expiring
// the way spec.md §4.7 requires (TTL = loop_interval + padding) rather
// than depending on the OS to release the advisory lock, since flock is
// released only on process exit and a stale but still-running daemon
// should not be treated as free.
type FileLock struct {
	path string
}

var _ Lock = (*FileLock)(nil)

// NewFileLock constructs a FileLock backed by path.
func NewFileLock(path string) *FileLock {
	return &FileLock{path: path}
}

func (l *FileLock) Name() string { return "plugin.FileLock(" + l.path + ")" }

func (l *FileLock) CheckEnvironment(context.Context) error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("plugin: file lock path %s not writable: %w", l.path, err)
	}
	return f.Close()
}

func (l *FileLock) Setup(context.Context) error { return nil }

func (l *FileLock) Teardown(context.Context) error { return nil }

func (l *FileLock) Acquire(_ context.Context, owner string, ttl Duration) error {
	return withFlock(l.path, func() error {
		existingOwner, existingExpiry, err := readLockFile(l.path)
		if err == nil && existingOwner != owner && time.Now().Before(existingExpiry) {
			return ErrLockHeld
		}
		return writeLockFile(l.path, owner, time.Now().Add(time.Duration(ttl)*time.Millisecond))
	})
}

func (l *FileLock) Test(context.Context) (owner string, ok bool, err error) {
	existingOwner, expiry, err := readLockFile(l.path)
	if err != nil {
		return "", false, nil
	}
	if !time.Now().Before(expiry) {
		return "", false, nil
	}
	return existingOwner, true, nil
}

func (l *FileLock) Release(_ context.Context, owner string) error {
	return withFlock(l.path, func() error {
		existingOwner, _, err := readLockFile(l.path)
		if err != nil {
			return nil
		}
		if existingOwner != owner {
			return ErrNotOwner
		}
		return os.WriteFile(l.path, nil, 0o644)
	})
}

func readLockFile(path string) (owner string, expires time.Time, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", time.Time{}, err
	}
	fields := strings.SplitN(strings.TrimSpace(string(data)), "\n", 2)
	if len(fields) != 2 {
		return "", time.Time{}, fmt.Errorf("plugin: corrupt lock file %s", path)
	}
	nanos, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("plugin: corrupt lock file %s: %w", path, err)
	}
	return fields[0], time.Unix(0, nanos), nil
}

func writeLockFile(path, owner string, expires time.Time) error {
	contents := owner + "\n" + strconv.FormatInt(expires.UnixNano(), 10) + "\n"
	return os.WriteFile(path, []byte(contents), 0o644)
}
