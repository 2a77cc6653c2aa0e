// Package filelock implements the advisory, per-vault file lock that
// serialises updates: an exclusive, non-blocking OS-level lock on a
// "<vault>.lock" sidecar whose content records the owning
// process's PID and acquisition time, so that a lock left behind by a
// dead process can be reclaimed instead of wedging the vault forever.
//
// Generalised to manage one lock per vault path, with staleness
// detection, rather than a single global lock file -- both of which
// this vault's concurrent, multi-process, multi-vault model requires.
package filelock

import (
	"encoding/json"
	"math/rand"
	"os"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"

	"github.com/shardvault/shardvault/pkg/vaulterrors"
)

// content is the JSON body written into a lock sidecar, used to decide
// whether a lock that a TryLock call couldn't acquire is actually stale.
type content struct {
	PID       int       `json:"pid"`
	Acquired  time.Time `json:"acquired"`
}

// Lock represents a held advisory lock on one vault path. Callers must
// call Unlock when done.
type Lock struct {
	flock *flock.Flock
	path  string
}

// sidecarPath returns the lock sidecar path for a given vault path.
func sidecarPath(vaultPath string) string {
	return vaultPath + ".lock"
}

// processAlive reports whether the process identified by pid still
// exists. On POSIX systems, signal 0 performs existence/permission
// checks without actually sending a signal. pid <= 0 is never a real
// process ID and is treated as not alive rather than signaled, where
// it would address a process group instead of a single process.
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}

// Acquire attempts to take the exclusive lock on vaultPath's sidecar,
// retrying with exponential backoff and jitter until timeout elapses. If
// an existing lock is found stale (its owning process is dead, or its
// timestamp is older than staleAfter), it is reclaimed.
func Acquire(vaultPath string, timeout, staleAfter time.Duration) (*Lock, error) {
	path := sidecarPath(vaultPath)
	fl := flock.New(path)

	deadline := time.Now().Add(timeout)
	backoff := 25 * time.Millisecond
	const maxBackoff = 2 * time.Second

	for {
		locked, err := fl.TryLock()
		if err != nil {
			return nil, errors.Wrapf(vaulterrors.ErrIO, "acquire lock %s: %v", path, err)
		}
		if locked {
			if err := writeContent(path); err != nil {
				_ = fl.Unlock()
				return nil, err
			}
			return &Lock{flock: fl, path: path}, nil
		}

		if reclaimed := tryReclaimStale(path, staleAfter); reclaimed {
			continue
		}

		if time.Now().After(deadline) {
			return nil, errors.Wrapf(vaulterrors.ErrIO, "timed out acquiring lock %s", path)
		}

		jitter := time.Duration(rand.Int63n(int64(backoff)))
		time.Sleep(backoff/2 + jitter)
		if backoff < maxBackoff {
			backoff *= 2
		}
	}
}

// writeContent records the current PID and timestamp into the lock
// sidecar, so a future contender can tell whether this lock is stale.
func writeContent(path string) error {
	body, err := json.Marshal(content{PID: os.Getpid(), Acquired: time.Now()})
	if err != nil {
		return errors.Wrap(err, "marshal lock content")
	}
	if err := os.WriteFile(path, body, 0o600); err != nil {
		return errors.Wrapf(vaulterrors.ErrIO, "write lock content %s: %v", path, err)
	}
	return nil
}

// tryReclaimStale inspects an existing, currently-unacquirable lock
// sidecar and deletes it if its owning process is gone or its timestamp
// predates staleAfter. Returns true if it removed the file (the caller
// should retry TryLock immediately).
func tryReclaimStale(path string, staleAfter time.Duration) bool {
	body, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	var c content
	if err := json.Unmarshal(body, &c); err != nil {
		return false
	}
	if processAlive(c.PID) && time.Since(c.Acquired) < staleAfter {
		return false
	}
	return os.Remove(path) == nil
}

// Unlock releases the lock and removes its sidecar file.
func (l *Lock) Unlock() error {
	if err := l.flock.Unlock(); err != nil {
		return errors.Wrapf(vaulterrors.ErrIO, "release lock %s: %v", l.path, err)
	}
	_ = os.Remove(l.path)
	return nil
}
