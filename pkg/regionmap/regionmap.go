// Package regionmap implements the share-ID space partitioning: the
// full universe {1, ..., ShareIDSpace} is split, once per vault at
// creation time, into three disjoint sets --
// region A's share IDs, region B's share IDs, and the unassigned IDs that
// forever hold only garbage. The split is a CSPRNG Fisher-Yates shuffle
// of the universe followed by three contiguous cuts, so that knowing one
// region's ID list reveals nothing about the other's beyond set
// disjointness.
package regionmap

import (
	"crypto/rand"
	"io"
	"math/big"

	"github.com/pkg/errors"
)

// Partition is the result of dividing a vault's share-ID universe.
type Partition struct {
	A           []uint32
	B           []uint32
	Unassigned  []uint32
}

// Divide partitions the universe {1, ..., partitionSize*2+unassignedShares}
// into region A (partitionSize IDs), region B (partitionSize IDs) and the
// unassigned set (unassignedShares IDs), using r (normally crypto/rand.Reader)
// as the source of randomness for an unbiased Fisher-Yates shuffle. Share ID
// 0 is never part of the universe: shamir.shareX maps a share ID directly to
// its polynomial's X coordinate, and evaluating a Split polynomial at x=0
// returns its constant term -- the raw secret -- in the clear, so ID 0 must
// never be assigned to any region or the unassigned set.
func Divide(partitionSize, unassignedShares uint32, r io.Reader) (Partition, error) {
	total := uint64(partitionSize)*2 + uint64(unassignedShares)
	if total == 0 {
		return Partition{}, errors.New("regionmap: empty share-ID universe")
	}
	if total > uint64(^uint32(0)) {
		return Partition{}, errors.New("regionmap: share-ID universe exceeds uint32 range")
	}

	universe := make([]uint32, total)
	for i := range universe {
		universe[i] = uint32(i) + 1
	}

	if err := shuffle(universe, r); err != nil {
		return Partition{}, errors.Wrap(err, "shuffle share-ID universe")
	}

	a := append([]uint32(nil), universe[:partitionSize]...)
	b := append([]uint32(nil), universe[partitionSize:2*partitionSize]...)
	unassigned := append([]uint32(nil), universe[2*partitionSize:]...)

	return Partition{A: a, B: b, Unassigned: unassigned}, nil
}

// shuffle performs an in-place Fisher-Yates shuffle of ids using r as the
// source of uniform randomness. Uses crypto/rand-backed rejection
// sampling (via rand.Int) at every step rather than math/rand, since the
// resulting permutation determines which share IDs are secret to each
// region.
func shuffle(ids []uint32, r io.Reader) error {
	for i := len(ids) - 1; i > 0; i-- {
		j, err := uniformUint64(r, uint64(i)+1)
		if err != nil {
			return err
		}
		ids[i], ids[j] = ids[j], ids[i]
	}
	return nil
}

// uniformUint64 returns a uniformly distributed value in [0, n) using r
// as the entropy source.
func uniformUint64(r io.Reader, n uint64) (uint64, error) {
	max := new(big.Int).SetUint64(n)
	v, err := rand.Int(r, max)
	if err != nil {
		return 0, err
	}
	return v.Uint64(), nil
}
