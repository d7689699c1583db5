// Package lock provides a cross-process lock on a local directory. Writers
// to the template store hold it so two cq processes never interleave a
// rename or import.
package lock

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rileyhilliard/cq/internal/errors"
)

const (
	lockDirName  = ".cq.lock"
	infoFileName = "info.json"
)

// Options controls how long Acquire waits and when a lock counts as abandoned.
type Options struct {
	// Timeout is how long Acquire waits for a held lock. Zero means try once.
	Timeout time.Duration
	// Stale is the age after which a held lock is assumed abandoned.
	// Zero disables stale detection.
	Stale time.Duration
	// Poll is the wait between attempts.
	Poll time.Duration
}

// DefaultOptions suits short store writes.
var DefaultOptions = Options{
	Timeout: 10 * time.Second,
	Stale:   2 * time.Minute,
	Poll:    50 * time.Millisecond,
}

// Lock represents an acquired lock.
type Lock struct {
	Dir  string    // The lock directory path
	Info *LockInfo // Info about the lock holder (us)
}

// Path returns the lock directory used for base.
func Path(base string) string {
	return filepath.Join(base, lockDirName)
}

// Acquire takes the lock for base, waiting up to opts.Timeout.
// It uses mkdir as an atomic primitive (mkdir fails if the directory exists).
// Stale locks (older than opts.Stale) are removed.
func Acquire(base, purpose string, opts Options) (*Lock, error) {
	if opts.Poll <= 0 {
		opts.Poll = DefaultOptions.Poll
	}
	deadline := time.Now().Add(opts.Timeout)

	for {
		l, err := TryAcquire(base, purpose, opts.Stale)
		if err == nil {
			return l, nil
		}
		if !stderrors.Is(err, ErrLocked) {
			return nil, err
		}
		if !time.Now().Before(deadline) {
			return nil, errors.WrapWithCode(err, errors.ErrLock,
				"Timed out waiting for lock, held by "+Holder(base),
				fmt.Sprintf("If no other cq is running, remove %s", Path(base)))
		}
		time.Sleep(opts.Poll)
	}
}

// TryAcquire makes a single attempt. It returns ErrLocked when another
// process holds the lock.
func TryAcquire(base, purpose string, stale time.Duration) (*Lock, error) {
	if err := os.MkdirAll(base, 0755); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrLock,
			"Can't create "+base,
			"Check your permissions.")
	}

	lockDir := Path(base)
	infoFile := filepath.Join(lockDir, infoFileName)

	if isLockStale(infoFile, stale) {
		_ = os.RemoveAll(lockDir)
	}

	if err := os.Mkdir(lockDir, 0755); err != nil {
		if os.IsExist(err) {
			return nil, ErrLocked
		}
		return nil, errors.WrapWithCode(err, errors.ErrLock,
			"Failed to create lock directory",
			"Check disk space and permissions")
	}

	info := NewLockInfo(purpose)
	infoJSON, err := info.Marshal()
	if err == nil {
		err = os.WriteFile(infoFile, infoJSON, 0644)
	}
	if err != nil {
		_ = os.RemoveAll(lockDir)
		return nil, errors.WrapWithCode(err, errors.ErrLock,
			"Failed to write lock info file",
			"Check disk space and permissions")
	}

	return &Lock{Dir: lockDir, Info: info}, nil
}

// Release removes the lock, allowing others to acquire it.
func (l *Lock) Release() error {
	if l == nil || l.Dir == "" {
		return nil
	}
	if err := os.RemoveAll(l.Dir); err != nil {
		return errors.WrapWithCode(err, errors.ErrLock,
			fmt.Sprintf("Failed to remove lock directory: %s", l.Dir),
			"Remove it by hand if it lingers.")
	}
	return nil
}

// ForceRelease removes the lock for base regardless of who holds it.
// Use with caution - this should only be used for stuck or abandoned locks.
func ForceRelease(base string) error {
	return (&Lock{Dir: Path(base)}).Release()
}

// Holder returns information about who holds the lock (if readable).
func Holder(base string) string {
	data, err := os.ReadFile(filepath.Join(Path(base), infoFileName))
	if err != nil {
		return "unknown"
	}

	info, err := ParseLockInfo(data)
	if err != nil {
		return strings.TrimSpace(string(data))
	}
	return info.String()
}

// isLockStale checks if the lock's info file is older than the stale threshold.
// A lock directory without a readable info file is judged by its mtime.
func isLockStale(infoFile string, staleThreshold time.Duration) bool {
	if staleThreshold <= 0 {
		return false
	}

	data, err := os.ReadFile(infoFile)
	if err == nil {
		if info, perr := ParseLockInfo(data); perr == nil {
			return info.Age() > staleThreshold
		}
	}

	st, err := os.Stat(filepath.Dir(infoFile))
	if err != nil {
		return false
	}
	return time.Since(st.ModTime()) > staleThreshold
}
