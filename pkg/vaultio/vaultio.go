// Package vaultio implements the vault lifecycle operations: Create,
// Read and Update, the latter under a write-ahead-log protocol for
// crash safety, split one file per lifecycle concern --
// create.go/read.go/update.go/recovery.go -- with structured logging
// via internal/vaultlog on every operation.
package vaultio

import (
	"crypto/sha256"
	"encoding/hex"
	"os"

	"github.com/pkg/errors"

	"github.com/shardvault/shardvault/pkg/vaulterrors"
)

// hashFile returns the hex-encoded SHA-256 digest of a file's contents,
// used by the WAL to detect whether a staged or snapshotted file matches
// what its WAL record expects.
func hashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(vaulterrors.ErrIO, "read %s: %v", path, err)
	}
	return hashBytes(data), nil
}

func hashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// writeFile writes data to path with 0600 permissions, wrapping any
// failure as vaulterrors.ErrIO.
func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.Wrapf(vaulterrors.ErrIO, "write %s: %v", path, err)
	}
	return nil
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(vaulterrors.ErrIO, "read %s: %v", path, err)
	}
	return data, nil
}
