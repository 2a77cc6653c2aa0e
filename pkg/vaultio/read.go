package vaultio

import (
	"github.com/shardvault/shardvault/internal/config"
	"github.com/shardvault/shardvault/internal/vault"
	"github.com/shardvault/shardvault/internal/vaultlog"
	"github.com/shardvault/shardvault/pkg/doccodec"
	"github.com/shardvault/shardvault/pkg/shamir"
	"github.com/shardvault/shardvault/pkg/vaultmap"
)

// Read derives the target share-ID sequence from (mapKey, password),
// reconstructs every chunk and decodes the resulting document. A wrong
// (mapKey, password) pair is indistinguishable from a corrupted
// document at this layer: any failure in the MAP stage
// or in doccodec collapses into doccodec.Result{Decoded: false}, never
// an error. Only a failure to read or parse the vault file itself (an
// IoError or VaultFormatError on the *container*, not its contents)
// is returned as an error.
func Read(vaultPath, mapKey string, password []byte, params config.Params) (doccodec.Result, error) {
	const fName = "Read"

	data, err := readFile(vaultPath)
	if err != nil {
		return doccodec.Result{}, err
	}
	v, err := vault.Unmarshal(data)
	if err != nil {
		return doccodec.Result{}, err
	}

	targetIDs, err := deriveTargetIDs(v, mapKey, password, params)
	if err != nil {
		vaultlog.Log().Info("map derivation failed, returning undecodable marker", "fn", fName)
		return doccodec.Result{Decoded: false}, nil
	}

	chunks := make([][doccodec.ChunkSize]byte, params.ActiveShares)
	for chunkIndex := uint32(0); chunkIndex < params.ActiveShares; chunkIndex++ {
		shares := make([]shamir.Share, 0, len(targetIDs))
		for _, id := range targetIDs {
			share, ok := v.Get(chunkIndex, id)
			if !ok {
				// A well-formed vault always has every (chunk_index,
				// share_id) slot populated; treat a missing slot the
				// same as any other undecodable condition rather than
				// surfacing a distinct error.
				return doccodec.Result{Decoded: false}, nil
			}
			shares = append(shares, share)
		}
		secret, err := shamir.Reconstruct(shares)
		if err != nil {
			return doccodec.Result{Decoded: false}, nil
		}
		chunks[chunkIndex] = secret
	}

	return doccodec.Decode(chunks), nil
}

// deriveTargetIDs runs both MAP stages, returning the ACTIVE_SHARES
// ordered share-ID sequence for the document addressed by (mapKey,
// password), using params.ActiveShares as the sequence length.
func deriveTargetIDs(v *vault.Vault, mapKey string, password []byte, params config.Params) ([]uint32, error) {
	regionIDs, err := vaultmap.Stage1(mapKey, password, params.KDF)
	if err != nil {
		return nil, err
	}
	return vaultmap.Stage2(regionIDs, password, params.ActiveShares, params.KDF)
}
