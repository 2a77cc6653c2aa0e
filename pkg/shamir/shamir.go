/*
 * paperback: resilient paper backups for the very paranoid
 * Copyright (C) 2018 Aleksa Sarai <cyphar@cyphar.com>
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 */

// Package shamir implements Shamir Secret Sharing for single 64-byte
// chunks over the fixed finite field GF(2^521-1) (pkg/gf521). Every chunk
// of a document uses its own polynomial (protecting against attacks that
// would otherwise correlate chunks), and reconstruction always consumes
// every share it is given rather than selecting a threshold subset: the
// caller's ACTIVE_SHARES-long share-ID list (from pkg/vaultmap) is both
// the share count and the degree+1 of the polynomial, so there is no
// "extra" share to discard and no threshold to tune.
//
// Garbage shares -- slots not currently bound to any document -- are
// uniformly random field elements. Because a real share's value is also a
// uniform field element (the defining property of polynomial evaluation
// over a prime field with random coefficients), garbage and real shares
// are statistically indistinguishable from each other; this is what makes
// the vault's deniability property possible.
package shamir

import (
	"io"
	"math/big"

	"github.com/pkg/errors"

	"github.com/shardvault/shardvault/pkg/gf521"
	"github.com/shardvault/shardvault/pkg/polynomial"
)

// ChunkSize is the size, in bytes, of the secret encoded by a single
// polynomial. 64 bytes (512 bits) fits comfortably under the 521-bit
// field.
const ChunkSize = 64

// Set of errors returned by this package.
var (
	// ErrSplitNoShares is returned when the number of share IDs supplied to
	// Split is zero: a polynomial needs at least a constant term.
	ErrSplitNoShares = errors.New("shamir: cannot split into zero shares")

	// ErrReconstructNoShares is returned when Reconstruct is given no shares.
	ErrReconstructNoShares = errors.New("shamir: cannot reconstruct from zero shares")

	// ErrReconstructMismatchChunk is returned when the shares passed to
	// Reconstruct don't all carry the same chunk index.
	ErrReconstructMismatchChunk = errors.New("shamir: shares do not share a chunk index")

	// ErrReconstructWrongSize is returned when the reconstructed secret
	// doesn't decode to exactly ChunkSize bytes (it always should, given
	// gf521.Bytes521's fixed width, but this guards against a caller
	// passing already-reduced-out-of-range values).
	ErrReconstructWrongSize = errors.New("shamir: reconstructed secret has unexpected size")

	// ErrZeroShareID is returned when share ID 0 is used as a polynomial
	// X coordinate. Evaluating a Split polynomial at x=0 returns its
	// constant term -- the raw secret -- so ID 0 must never be given to
	// Split, GarbageShare or Reconstruct.
	ErrZeroShareID = errors.New("shamir: share id 0 is not a valid coordinate")
)

// Share is a single evaluation (x, P(x)) of a chunk's polynomial, tagged
// with the chunk it belongs to: the (chunk_index, share_id, value)
// triple stored on disk -- ShareID doubles as the polynomial's X
// coordinate.
type Share struct {
	ChunkIndex uint32
	ShareID    uint32
	Value      *big.Int
}

// shareX converts a share ID to the field element used as its polynomial
// X coordinate. Share IDs are small (bounded by SHARE_ID_SPACE) relative
// to the field, so this never wraps. shareID must never be 0: see
// ErrZeroShareID.
func shareX(shareID uint32) *big.Int {
	return new(big.Int).SetUint64(uint64(shareID))
}

// Split constructs len(shareIDs) shares for the given 64-byte secret,
// using a single random polynomial of degree len(shareIDs)-1 whose
// constant term is the secret. Every one of the shareIDs is consumed (no
// threshold, no spares): reconstructing requires every share Split
// produced, in any order.
func Split(chunkIndex uint32, secret [ChunkSize]byte, shareIDs []uint32, r io.Reader) ([]Share, error) {
	if len(shareIDs) == 0 {
		return nil, ErrSplitNoShares
	}

	for _, id := range shareIDs {
		if id == 0 {
			return nil, ErrZeroShareID
		}
	}

	degree := uint(len(shareIDs) - 1)
	poly, err := polynomial.RandomPolynomial(degree, r)
	if err != nil {
		return nil, errors.Wrap(err, "generate random polynomial")
	}
	poly.SetConst(gf521.FromBytes521(secret[:]))

	shares := make([]Share, len(shareIDs))
	for i, id := range shareIDs {
		shares[i] = Share{
			ChunkIndex: chunkIndex,
			ShareID:    id,
			Value:      poly.EvaluateMod(shareX(id)),
		}
	}
	return shares, nil
}

// GarbageShare produces a single uniformly-random field element share for
// the given chunk/share-ID slot. Because Split's y-values are themselves
// uniform over the field (a property of polynomial evaluation with random
// coefficients), a GarbageShare is statistically identical in
// distribution to a real one.
func GarbageShare(chunkIndex, shareID uint32, r io.Reader) (Share, error) {
	if shareID == 0 {
		return Share{}, ErrZeroShareID
	}
	value, err := gf521.RandomElement(r)
	if err != nil {
		return Share{}, errors.Wrap(err, "generate garbage share")
	}
	return Share{ChunkIndex: chunkIndex, ShareID: shareID, Value: value}, nil
}

// Reconstruct interpolates the given shares' polynomial at x=0 to recover
// the 64-byte secret. Every share passed in is consumed by the
// interpolation (no threshold-selection optimisation is applied); all
// shares must share the same chunk index.
func Reconstruct(shares []Share) ([ChunkSize]byte, error) {
	var secret [ChunkSize]byte
	if len(shares) == 0 {
		return secret, ErrReconstructNoShares
	}

	chunkIndex := shares[0].ChunkIndex
	points := make([]polynomial.Point, len(shares))
	for i, share := range shares {
		if share.ChunkIndex != chunkIndex {
			return secret, ErrReconstructMismatchChunk
		}
		if share.ShareID == 0 {
			return secret, ErrZeroShareID
		}
		points[i] = polynomial.Point{X: shareX(share.ShareID), Y: share.Value}
	}

	degree := uint(len(shares) - 1)
	var L0 *big.Int
	if degree == 0 {
		// A degree-0 polynomial is a constant, so its value at x=0 is the
		// single share's value.
		L0 = new(big.Int).Mod(points[0].Y, gf521.Prime)
	} else {
		var err error
		L0, err = polynomial.InterpolateConst(degree, points...)
		if err != nil {
			return secret, errors.Wrap(err, "interpolate chunk")
		}
	}

	encoded := gf521.Bytes521(L0)
	// gf521.Bytes521 always returns gf521.ByteLen (66) bytes; the secret
	// occupies the low ChunkSize bytes since a 64-byte value is always
	// smaller than the 521-bit field.
	if len(encoded) < ChunkSize {
		return secret, ErrReconstructWrongSize
	}
	copy(secret[:], encoded[len(encoded)-ChunkSize:])
	return secret, nil
}
