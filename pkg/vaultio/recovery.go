package vaultio

import (
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/shardvault/shardvault/internal/vaultlog"
)

// Recover scans dir for WAL records left behind by interrupted Update
// calls and resolves each:
//
//   - status=complete: vestigial, clean up.
//   - status=ready: an interrupted commit. Roll forward by replacing the
//     live vault with the staged update if the staged file's hash still
//     matches the WAL record. Otherwise, once the record is stale (see
//     processStale), roll back to the snapshot, since the stage may
//     itself be partially written; a record that is not stale is left.
//   - status=start: an interrupted preparation. The live vault was never
//     touched; once the record is stale, discard the WAL and its
//     snapshot/staged files. A record that is not stale is left.
//
// A record whose roll-forward or roll-back fails is left in place.
//
// Recover should be called once per process before any Update runs
// against vaults in dir, typically at startup.
func Recover(dir string, timeout time.Duration) error {
	const fName = "Recover"

	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".wal") {
			continue
		}
		walPath := filepath.Join(dir, entry.Name())
		id := strings.TrimSuffix(entry.Name(), ".wal")
		paths := walPaths{
			wal:      walPath,
			snapshot: filepath.Join(dir, id+".snapshot"),
			staged:   filepath.Join(dir, id+".staged"),
		}

		rec, err := readWALRecord(walPath)
		if err != nil {
			vaultlog.Log().Warn("unreadable WAL record, leaving for manual inspection", "fn", fName, "path", walPath)
			continue
		}

		recoverOne(paths, rec, timeout)
	}
	return nil
}

func recoverOne(paths walPaths, rec walRecord, timeout time.Duration) {
	const fName = "recoverOne"

	switch rec.Status {
	case walComplete:
		removeIfExists(paths.wal)
		removeIfExists(paths.snapshot)
		removeIfExists(paths.staged)

	case walReady:
		stagedHash, err := hashFile(paths.staged)
		if err == nil && stagedHash == rec.StagedHash {
			if err := os.Rename(paths.staged, rec.VaultPath); err != nil {
				vaultlog.Log().Warn("roll-forward rename failed", "fn", fName, "path", rec.VaultPath, "err", err.Error())
				return
			}
			vaultlog.Log().Info("rolled forward interrupted update", "fn", fName, "path", rec.VaultPath)
			removeIfExists(paths.wal)
			removeIfExists(paths.snapshot)
			return
		}
		if processStale(rec, timeout) {
			rollBack(paths, rec)
		}

	case walStart:
		if processStale(rec, timeout) {
			removeIfExists(paths.wal)
			removeIfExists(paths.snapshot)
			removeIfExists(paths.staged)
		}
	}
}

// rollBack restores the live vault from its pre-update snapshot, used
// when a "ready" WAL record's staged file is missing or doesn't match
// its recorded hash (a partial write) and the originating process is no
// longer around to retry.
func rollBack(paths walPaths, rec walRecord) {
	const fName = "rollBack"

	snapshot, err := readFile(paths.snapshot)
	if err != nil {
		vaultlog.Log().Warn("cannot roll back, snapshot missing", "fn", fName, "path", rec.VaultPath)
		return
	}
	if err := writeFile(rec.VaultPath, snapshot); err != nil {
		vaultlog.Log().Warn("roll-back write failed", "fn", fName, "path", rec.VaultPath, "err", err.Error())
		return
	}
	removeIfExists(paths.wal)
	removeIfExists(paths.snapshot)
	removeIfExists(paths.staged)
}

// processStale reports whether rec is both older than timeout and its
// originating PID is no longer running. Unlike pkg/filelock's staleness
// check (dead process OR expired timeout), a WAL record requires both:
// a long-running update whose process is still alive must never have
// its in-progress snapshot/staged files reclaimed out from under it
// just because it has been running past timeout.
func processStale(rec walRecord, timeout time.Duration) bool {
	if time.Since(rec.Timestamp) <= timeout {
		return false
	}
	return !processAlive(rec.PID)
}

// processAlive reports whether pid names a live, signalable process.
// pid <= 0 is never a real process ID (os.Getpid never returns one) and
// is treated as not alive rather than handed to the signal-0 probe,
// where it would address a process group instead of a single process.
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
