// Package vaultmap implements the two-stage MAP: from a
// (partition-map-key, password) pair alone, deterministically produce
// the exact ordered list of ACTIVE_SHARES share IDs used by one
// document. Stage 1 is a thin wrapper over pkg/mapkey.Decode; Stage 2
// runs Argon2id under a fixed purpose-separation salt and uses the
// result to seed a deterministic Fisher-Yates shuffle, generalising the
// Argon2id call shape pkg/mapkey uses for a random salt into one driven
// by a fixed salt and password alone.
package vaultmap

import (
	"crypto/sha256"
	"io"
	"math/big"

	"github.com/pkg/errors"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20"
	"golang.org/x/crypto/hkdf"

	"github.com/shardvault/shardvault/internal/config"
	"github.com/shardvault/shardvault/pkg/mapkey"
)

// Stage1 recovers one region's ordered share-ID list from its
// partition-map-key and the raw password. Any failure -- wrong
// password or a tampered/malformed key -- propagates vaulterrors.ErrDecryption
// or vaulterrors.ErrVaultFormat from pkg/mapkey.Decode unchanged.
func Stage1(partitionMapKey string, rawPassword []byte, kdf config.KDFParams) ([]uint32, error) {
	ids, err := mapkey.Decode(partitionMapKey, rawPassword, kdf)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Stage2 derives the ACTIVE_SHARES-long ordered share-ID sequence
// addressed by one document from a region's full ID list and the raw
// password. The computation is pure and deterministic: identical inputs
// always produce identical outputs, with no I/O, clock reads, or
// per-invocation randomness.
func Stage2(regionIDs []uint32, rawPassword []byte, activeShares uint32, kdf config.KDFParams) ([]uint32, error) {
	if activeShares == 0 || int(activeShares) > len(regionIDs) {
		return nil, errors.Errorf("vaultmap: activeShares (%d) must be in (0, %d]", activeShares, len(regionIDs))
	}

	// Step 1: processed password, via Argon2id under the fixed,
	// published purpose-separation salt (never the vault's own salt).
	processed := argon2.IDKey(rawPassword, kdf.Stage2PurposeSalt, kdf.Argon2Time, kdf.Argon2Memory, kdf.Argon2Threads, kdf.Argon2KeyLen)

	// Step 2: HKDF-SHA256 expands the processed password into 32 bytes
	// of keying material, which seeds a ChaCha20 keystream used as the
	// deterministic PRNG driving Fisher-Yates below.
	keyMaterial, err := deriveStreamKey(processed)
	if err != nil {
		return nil, errors.Wrap(err, "derive stage-2 stream key")
	}

	stream, err := chacha20.NewUnauthenticatedCipher(keyMaterial, make([]byte, chacha20.NonceSize))
	if err != nil {
		return nil, errors.Wrap(err, "construct stage-2 stream cipher")
	}

	permutation := make([]uint32, len(regionIDs))
	copy(permutation, regionIDs)
	if err := fisherYates(permutation, stream); err != nil {
		return nil, errors.Wrap(err, "stage-2 shuffle")
	}

	return permutation[:activeShares], nil
}

// deriveStreamKey runs HKDF-SHA256 over the processed password to
// produce a 32-byte ChaCha20 key.
func deriveStreamKey(processedPassword []byte) ([]byte, error) {
	reader := hkdf.New(sha256.New, processedPassword, nil, []byte("shardvault/stage2-stream/v1"))
	key := make([]byte, chacha20.KeySize)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, err
	}
	return key, nil
}

// keystreamReader adapts a chacha20 cipher into an io.Reader of
// pseudorandom bytes, by XORing the keystream against zeros.
type keystreamReader struct {
	stream *chacha20.Cipher
}

func (k keystreamReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	k.stream.XORKeyStream(p, p)
	return len(p), nil
}

// fisherYates performs an in-place Fisher-Yates shuffle of ids, drawing
// uniform indices from the deterministic stream rather than crypto/rand,
// mirroring pkg/regionmap's shuffle shape exactly but over a PRNG source
// instead of a CSPRNG one -- this spec requires Stage 2 to be
// reproducible bit-for-bit from (map_key, password) alone.
func fisherYates(ids []uint32, stream *chacha20.Cipher) error {
	r := keystreamReader{stream: stream}
	for i := len(ids) - 1; i > 0; i-- {
		j, err := uniformUint64(r, uint64(i)+1)
		if err != nil {
			return err
		}
		ids[i], ids[j] = ids[j], ids[i]
	}
	return nil
}

// uniformUint64 draws a value in [0, n) from r via rejection sampling,
// matching pkg/regionmap.uniformUint64's approach over a different
// entropy source.
func uniformUint64(r io.Reader, n uint64) (uint64, error) {
	if n == 0 {
		return 0, errors.New("vaultmap: zero-length range")
	}
	// big.Int division needs a method taking io.Reader; reimplemented
	// here (rather than importing crypto/rand, whose Int forces a
	// crypto/rand.Reader only) since the entropy source here is the
	// deterministic Stage-2 stream, not the OS CSPRNG.
	bitLen := new(big.Int).SetUint64(n - 1).BitLen()
	byteLen := (bitLen + 7) / 8
	if byteLen == 0 {
		byteLen = 1
	}
	for {
		buf := make([]byte, byteLen)
		if _, err := io.ReadFull(r, buf); err != nil {
			return 0, err
		}
		v := new(big.Int).SetBytes(buf)
		if bitLen%8 != 0 {
			v.Rsh(v, uint(8-bitLen%8))
		}
		if v.Uint64() < n {
			return v.Uint64(), nil
		}
	}
}

