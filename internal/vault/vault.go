// Package vault defines the on-disk vault schema: a JSON object
// carrying the vault's salt and the complete flattened array of
// (chunk_index, share_id, value) shares. Vault lifecycle operations
// live alongside this package in pkg/vaultio's own
// create.go/read.go/update.go/recovery.go, one file per stage.
package vault

import (
	"encoding/base64"
	"encoding/json"
	"math/big"

	"github.com/pkg/errors"

	"github.com/shardvault/shardvault/pkg/shamir"
	"github.com/shardvault/shardvault/pkg/vaulterrors"
)

// Vault is the in-memory form of the vault file. Shares is indexed by
// the unexported index map for fast (chunkIndex, shareID) lookups, built
// by New; callers should not mutate Shares directly, since the index
// would go stale -- use Get/Set.
type Vault struct {
	Salt   []byte
	Shares []shamir.Share

	// index maps (chunkIndex, shareID) to a position in Shares.
	index map[shareKey]int
}

type shareKey struct {
	ChunkIndex uint32
	ShareID    uint32
}

// wireVault and wireShare are the exact JSON wire structures:
// {"salt": "<base64>", "shares": [{"chunk_index", "share_id",
// "value"}, ...]}. Values are base-10 strings so that 521-bit field
// elements survive round-tripping through JSON number parsers untouched.
type wireVault struct {
	Salt   string      `json:"salt"`
	Shares []wireShare `json:"shares"`
}

type wireShare struct {
	ChunkIndex uint32 `json:"chunk_index"`
	ShareID    uint32 `json:"share_id"`
	Value      string `json:"value"`
}

// New builds a Vault from a salt and a flat share list, constructing the
// lookup index.
func New(salt []byte, shares []shamir.Share) *Vault {
	v := &Vault{Salt: salt, Shares: shares}
	v.reindex()
	return v
}

func (v *Vault) reindex() {
	v.index = make(map[shareKey]int, len(v.Shares))
	for i, s := range v.Shares {
		v.index[shareKey{s.ChunkIndex, s.ShareID}] = i
	}
}

// Get returns the share at (chunkIndex, shareID) and whether it exists.
func (v *Vault) Get(chunkIndex, shareID uint32) (shamir.Share, bool) {
	i, ok := v.index[shareKey{chunkIndex, shareID}]
	if !ok {
		return shamir.Share{}, false
	}
	return v.Shares[i], true
}

// Set overwrites the share at (chunkIndex, shareID) in place. The share
// must already exist (every (chunk_index, share_id) pair is fixed at
// vault creation and the array is never resized thereafter).
func (v *Vault) Set(share shamir.Share) error {
	i, ok := v.index[shareKey{share.ChunkIndex, share.ShareID}]
	if !ok {
		return errors.Errorf("vault: no existing share at chunk %d, id %d", share.ChunkIndex, share.ShareID)
	}
	v.Shares[i] = share
	return nil
}

// Clone returns a deep copy, used by pkg/vaultio to snapshot state
// before mutating it in place during an update.
func (v *Vault) Clone() *Vault {
	shares := make([]shamir.Share, len(v.Shares))
	for i, s := range v.Shares {
		shares[i] = shamir.Share{
			ChunkIndex: s.ChunkIndex,
			ShareID:    s.ShareID,
			Value:      new(big.Int).Set(s.Value),
		}
	}
	salt := append([]byte(nil), v.Salt...)
	return New(salt, shares)
}

// Marshal renders the vault to its canonical JSON wire form.
func (v *Vault) Marshal() ([]byte, error) {
	wv := wireVault{
		Salt:   base64.URLEncoding.EncodeToString(v.Salt),
		Shares: make([]wireShare, len(v.Shares)),
	}
	for i, s := range v.Shares {
		wv.Shares[i] = wireShare{
			ChunkIndex: s.ChunkIndex,
			ShareID:    s.ShareID,
			Value:      s.Value.String(),
		}
	}
	data, err := json.Marshal(wv)
	if err != nil {
		return nil, errors.Wrap(err, "marshal vault")
	}
	return data, nil
}

// Unmarshal parses a vault file's JSON bytes. Invalid JSON, a salt that
// is not valid base64, or a missing or non-decimal share value is
// reported as vaulterrors.ErrVaultFormat, never a bare encoding/json
// error, so callers can distinguish corruption from a decryption
// failure. Other absent fields are not detected: a missing salt or
// shares field, or a missing chunk_index or share_id, decodes as its
// zero value.
func Unmarshal(data []byte) (*Vault, error) {
	var wv wireVault
	if err := json.Unmarshal(data, &wv); err != nil {
		return nil, errors.Wrapf(vaulterrors.ErrVaultFormat, "unmarshal vault: %v", err)
	}
	salt, err := base64.URLEncoding.DecodeString(wv.Salt)
	if err != nil {
		return nil, errors.Wrapf(vaulterrors.ErrVaultFormat, "decode vault salt: %v", err)
	}
	shares := make([]shamir.Share, len(wv.Shares))
	for i, ws := range wv.Shares {
		value, ok := new(big.Int).SetString(ws.Value, 10)
		if !ok {
			return nil, errors.Wrapf(vaulterrors.ErrVaultFormat, "parse share value at index %d", i)
		}
		shares[i] = shamir.Share{ChunkIndex: ws.ChunkIndex, ShareID: ws.ShareID, Value: value}
	}
	return New(salt, shares), nil
}
