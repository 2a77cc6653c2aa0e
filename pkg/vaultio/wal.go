package vaultio

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/shardvault/shardvault/pkg/vaulterrors"
)

// walStatus is one of the three states an update attempt's WAL record
// passes through.
type walStatus string

const (
	walStart    walStatus = "start"
	walReady    walStatus = "ready"
	walComplete walStatus = "complete"
)

// walRecord is the JSON body of one WAL file. OriginalHash is the
// SHA-256 of the vault contents before the update began; StagedHash is
// the SHA-256 of the computed new vault contents, filled in once the
// staged file is written.
type walRecord struct {
	Status       walStatus `json:"status"`
	VaultPath    string    `json:"vault_path"`
	OriginalHash string    `json:"original_hash"`
	StagedHash   string    `json:"staged_hash,omitempty"`
	PID          int       `json:"pid"`
	Timestamp    time.Time `json:"timestamp"`
}

// walPaths bundles the set of filenames one update attempt uses, all
// named from a single random UUID to prevent collision with concurrent
// attempts against other vaults (or, in principle, this one, though the
// advisory lock rules that out for a single vault).
type walPaths struct {
	wal      string
	snapshot string
	staged   string
}

func newWALPaths(dir string) walPaths {
	id := uuid.New().String()
	return walPaths{
		wal:      filepath.Join(dir, id+".wal"),
		snapshot: filepath.Join(dir, id+".snapshot"),
		staged:   filepath.Join(dir, id+".staged"),
	}
}

func writeWALRecord(path string, rec walRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, "marshal WAL record")
	}
	return writeFile(path, data)
}

func readWALRecord(path string) (walRecord, error) {
	data, err := readFile(path)
	if err != nil {
		return walRecord{}, err
	}
	var rec walRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return walRecord{}, errors.Wrapf(vaulterrors.ErrVaultFormat, "unmarshal WAL record %s: %v", path, err)
	}
	return rec, nil
}

// removeIfExists deletes path, tolerating it already being gone.
func removeIfExists(path string) {
	if path == "" {
		return
	}
	_ = os.Remove(path)
}
