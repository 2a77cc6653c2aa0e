package vaultio

import (
	"crypto/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/shardvault/shardvault/internal/config"
	"github.com/shardvault/shardvault/internal/vault"
	"github.com/shardvault/shardvault/internal/vaultlog"
	"github.com/shardvault/shardvault/pkg/doccodec"
	"github.com/shardvault/shardvault/pkg/filelock"
	"github.com/shardvault/shardvault/pkg/shamir"
	"github.com/shardvault/shardvault/pkg/vaulterrors"
	"github.com/shardvault/shardvault/pkg/vaultmap"
)

// Update replaces the document addressed by (mapKey, password) with
// newDoc, under the WAL protocol implemented by this package. All
// shares outside the target (chunk_index, share_id) set -- including
// every share belonging to the other document and the unassigned region
// -- are left byte-identical.
func Update(vaultPath string, newDoc interface{}, mapKey string, password []byte, params config.Params) error {
	const fName = "Update"
	dir := filepath.Dir(vaultPath)

	lock, err := filelock.Acquire(vaultPath, params.Lock.AcquireTimeout, params.Lock.StaleAfter)
	if err != nil {
		return err
	}
	defer lock.Unlock()

	paths := newWALPaths(dir)

	original, err := readFile(vaultPath)
	if err != nil {
		return err
	}
	originalHash := hashBytes(original)

	rec := walRecord{
		Status:       walStart,
		VaultPath:    vaultPath,
		OriginalHash: originalHash,
		PID:          os.Getpid(),
		Timestamp:    time.Now(),
	}
	if err := writeWALRecord(paths.wal, rec); err != nil {
		return err
	}

	if err := writeFile(paths.snapshot, original); err != nil {
		cleanupFailedUpdate(paths)
		return err
	}

	updated, err := computeUpdate(original, newDoc, mapKey, password, params)
	if err != nil {
		cleanupFailedUpdate(paths)
		return err
	}

	if err := writeFile(paths.staged, updated); err != nil {
		cleanupFailedUpdate(paths)
		return err
	}
	rec.Status = walReady
	rec.StagedHash = hashBytes(updated)
	if err := writeWALRecord(paths.wal, rec); err != nil {
		cleanupFailedUpdate(paths)
		return err
	}

	if err := commit(vaultPath, paths.staged); err != nil {
		return errors.Wrap(err, "commit updated vault")
	}

	rec.Status = walComplete
	_ = writeWALRecord(paths.wal, rec)

	removeIfExists(paths.wal)
	removeIfExists(paths.snapshot)
	removeIfExists(paths.staged)

	vaultlog.Log().Info("vault updated", "fn", fName, "path", vaultPath)
	return nil
}

// computeUpdate derives the target share-ID sequence, encodes newDoc
// into chunks, splits each chunk into shares at the target IDs, and
// returns the marshalled bytes of the resulting vault. Any MAP failure
// here (unlike Read) is returned to the caller: an update cannot
// silently write to the wrong slots, and there is no "garbage document"
// concept on the write path for it to fall back to.
func computeUpdate(original []byte, newDoc interface{}, mapKey string, password []byte, params config.Params) ([]byte, error) {
	v, err := vault.Unmarshal(original)
	if err != nil {
		return nil, err
	}

	regionIDs, err := vaultmap.Stage1(mapKey, password, params.KDF)
	if err != nil {
		return nil, err
	}
	targetIDs, err := vaultmap.Stage2(regionIDs, password, params.ActiveShares, params.KDF)
	if err != nil {
		return nil, err
	}

	chunks, err := doccodec.Encode(newDoc, int(params.ActiveShares))
	if err != nil {
		if errors.Is(err, doccodec.ErrCapacity) {
			return nil, errors.Wrap(vaulterrors.ErrCapacity, "encode document")
		}
		return nil, err
	}

	updated := v.Clone()
	for chunkIndex, chunk := range chunks {
		shares, err := shamir.Split(uint32(chunkIndex), chunk, targetIDs, rand.Reader)
		if err != nil {
			return nil, errors.Wrapf(err, "split chunk %d", chunkIndex)
		}
		for _, share := range shares {
			if err := updated.Set(share); err != nil {
				return nil, err
			}
		}
	}

	return updated.Marshal()
}

// commit performs the atomic .bak-then-rename commit step.
func commit(vaultPath, stagedPath string) error {
	bakPath := vaultPath + ".bak"

	original, err := readFile(vaultPath)
	if err != nil {
		return err
	}
	if err := writeFile(bakPath, original); err != nil {
		return err
	}

	if err := os.Rename(stagedPath, vaultPath); err != nil {
		return errors.Wrapf(err, "rename staged vault into place")
	}

	removeIfExists(bakPath)
	return nil
}

// cleanupFailedUpdate restores the live vault from its snapshot (a no-op
// here since the live file was never touched before commit) and leaves
// the WAL record in place for post-mortem recovery.
func cleanupFailedUpdate(paths walPaths) {
	removeIfExists(paths.snapshot)
	removeIfExists(paths.staged)
}
