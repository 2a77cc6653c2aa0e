package vaultio

import (
	"io"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/shardvault/shardvault/internal/config"
	"github.com/shardvault/shardvault/internal/vault"
	"github.com/shardvault/shardvault/internal/vaultlog"
	"github.com/shardvault/shardvault/pkg/mapkey"
	"github.com/shardvault/shardvault/pkg/regionmap"
	"github.com/shardvault/shardvault/pkg/shamir"
)

const saltSize = 16

// Create allocates a brand-new vault in dir: it divides the share-ID
// space into the A/B/unassigned regions (pkg/regionmap), fills every
// (chunk_index, share_id) slot with a freshly drawn garbage share, and
// returns the vault's file path plus the two partition-map-keys. The
// vault filename is a random UUIDv4 with no timestamp or other
// length-varying identifier, so a directory listing leaks no
// creation-order information.
func Create(dir string, aPassword, bPassword []byte, params config.Params, r io.Reader) (vaultPath, aMapKey, bMapKey string, err error) {
	const fName = "Create"

	partition, err := regionmap.Divide(params.PartitionSize, params.UnassignedShares, r)
	if err != nil {
		return "", "", "", errors.Wrap(err, "divide share-id space")
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(r, salt); err != nil {
		return "", "", "", errors.Wrap(err, "generate vault salt")
	}

	shares, err := garbageFill(partition, params.ActiveShares, r)
	if err != nil {
		return "", "", "", errors.Wrap(err, "fill vault with garbage shares")
	}
	v := vault.New(salt, shares)

	data, err := v.Marshal()
	if err != nil {
		return "", "", "", err
	}

	vaultPath = filepath.Join(dir, uuid.New().String()+".vault")
	if err := writeFile(vaultPath, data); err != nil {
		return "", "", "", err
	}

	aMapKey, err = mapkey.Encode(partition.A, aPassword, params.KDF, r)
	if err != nil {
		return "", "", "", errors.Wrap(err, "encode region A partition-map-key")
	}
	bMapKey, err = mapkey.Encode(partition.B, bPassword, params.KDF, r)
	if err != nil {
		return "", "", "", errors.Wrap(err, "encode region B partition-map-key")
	}

	vaultlog.Log().Info("vault created", "fn", fName, "path", vaultPath,
		"partitionSize", params.PartitionSize, "activeShares", params.ActiveShares)
	return vaultPath, aMapKey, bMapKey, nil
}

// garbageFill draws a uniformly random garbage share for every
// (chunk_index, share_id) slot across the full share-ID universe,
// regardless of region -- at creation time there is no "real" document
// yet, so region A, region B and the unassigned IDs are indistinguishable.
func garbageFill(partition regionmap.Partition, activeShares uint32, r io.Reader) ([]shamir.Share, error) {
	allIDs := make([]uint32, 0, len(partition.A)+len(partition.B)+len(partition.Unassigned))
	allIDs = append(allIDs, partition.A...)
	allIDs = append(allIDs, partition.B...)
	allIDs = append(allIDs, partition.Unassigned...)

	shares := make([]shamir.Share, 0, len(allIDs)*int(activeShares))
	for chunkIndex := uint32(0); chunkIndex < activeShares; chunkIndex++ {
		for _, id := range allIDs {
			share, err := shamir.GarbageShare(chunkIndex, id, r)
			if err != nil {
				return nil, err
			}
			shares = append(shares, share)
		}
	}
	return shares, nil
}
