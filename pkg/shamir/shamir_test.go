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

package shamir

import (
	"bytes"
	"crypto/rand"
	"io"
	"math/big"
	"testing"

	"github.com/shardvault/shardvault/pkg/gf521"
	"github.com/shardvault/shardvault/pkg/polynomial"
)

func mustRandomSecret(t *testing.T) [ChunkSize]byte {
	t.Helper()
	var secret [ChunkSize]byte
	if _, err := io.ReadFull(rand.Reader, secret[:]); err != nil {
		t.Fatalf("generate random secret: %v", err)
	}
	return secret
}

func testShareIDs(n int) []uint32 {
	ids := make([]uint32, n)
	for i := range ids {
		// Arbitrary, but spread out and non-sequential-looking, mirroring
		// how pkg/vaultmap hands back a shuffled slice in practice.
		ids[i] = uint32(1000 + i*37)
	}
	return ids
}

func TestSplitReconstructRoundTrip(t *testing.T) {
	for _, n := range []int{1, 2, 5, 20} {
		secret := mustRandomSecret(t)
		ids := testShareIDs(n)

		shares, err := Split(3, secret, ids, rand.Reader)
		if err != nil {
			t.Fatalf("Split(n=%d): %v", n, err)
		}
		if len(shares) != n {
			t.Fatalf("len(shares) = %d, want %d", len(shares), n)
		}

		got, err := Reconstruct(shares)
		if err != nil {
			t.Fatalf("Reconstruct(n=%d): %v", n, err)
		}
		if got != secret {
			t.Errorf("round-trip mismatch for n=%d: got %x want %x", n, got, secret)
		}
	}
}

func TestReconstructOrderIndependent(t *testing.T) {
	secret := mustRandomSecret(t)
	ids := testShareIDs(8)
	shares, err := Split(0, secret, ids, rand.Reader)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}

	shuffled := append([]Share{}, shares...)
	for i := len(shuffled) - 1; i > 0; i-- {
		j, _ := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		shuffled[i], shuffled[j.Int64()] = shuffled[j.Int64()], shuffled[i]
	}

	got, err := Reconstruct(shuffled)
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	if got != secret {
		t.Error("reconstruction is order-dependent")
	}
}

func TestReconstructRequiresAllShares(t *testing.T) {
	secret := mustRandomSecret(t)
	ids := testShareIDs(6)
	shares, err := Split(0, secret, ids, rand.Reader)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}

	// Dropping even one share must not reconstruct the same secret: there
	// is no threshold optimisation in this scheme.
	partial := shares[:len(shares)-1]
	got, err := Reconstruct(partial)
	if err == nil && got == secret {
		t.Error("reconstructed correct secret from a strict subset of shares")
	}
}

func TestReconstructMismatchedChunk(t *testing.T) {
	secret := mustRandomSecret(t)
	ids := testShareIDs(4)
	a, err := Split(1, secret, ids, rand.Reader)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	b, err := Split(2, secret, ids, rand.Reader)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	mixed := append(append([]Share{}, a[:2]...), b[2:]...)
	if _, err := Reconstruct(mixed); err != ErrReconstructMismatchChunk {
		t.Errorf("expected ErrReconstructMismatchChunk, got %v", err)
	}
}

func TestGarbageSharesIndependent(t *testing.T) {
	g1, err := GarbageShare(0, 1, rand.Reader)
	if err != nil {
		t.Fatalf("GarbageShare: %v", err)
	}
	g2, err := GarbageShare(0, 1, rand.Reader)
	if err != nil {
		t.Fatalf("GarbageShare: %v", err)
	}
	if g1.Value.Cmp(g2.Value) == 0 {
		t.Error("two independent garbage shares collided (extremely unlikely unless RNG is broken)")
	}
	if g1.Value.Sign() == 0 {
		t.Error("garbage share value was zero")
	}
}

func TestSplitRejectsEmptyShareSet(t *testing.T) {
	secret := mustRandomSecret(t)
	if _, err := Split(0, secret, nil, rand.Reader); err != ErrSplitNoShares {
		t.Errorf("expected ErrSplitNoShares, got %v", err)
	}
}

func TestSplitRejectsZeroShareID(t *testing.T) {
	secret := mustRandomSecret(t)
	ids := append(testShareIDs(3), 0)
	if _, err := Split(0, secret, ids, rand.Reader); err != ErrZeroShareID {
		t.Errorf("expected ErrZeroShareID, got %v", err)
	}
}

func TestGarbageShareRejectsZeroShareID(t *testing.T) {
	if _, err := GarbageShare(0, 0, rand.Reader); err != ErrZeroShareID {
		t.Errorf("expected ErrZeroShareID, got %v", err)
	}
}

func TestReconstructRejectsZeroShareID(t *testing.T) {
	secret := mustRandomSecret(t)
	ids := testShareIDs(4)
	shares, err := Split(0, secret, ids, rand.Reader)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	shares[0].ShareID = 0
	if _, err := Reconstruct(shares); err != ErrZeroShareID {
		t.Errorf("expected ErrZeroShareID, got %v", err)
	}
}

func TestSplitShareIDZeroWouldLeakSecret(t *testing.T) {
	// Regression guard for the underlying vulnerability ErrZeroShareID
	// prevents: evaluating a Split polynomial at x=0 returns its
	// constant term -- the secret itself -- in the clear, distinguishable
	// from every other, uniformly-random share value. This is why Split,
	// GarbageShare and Reconstruct all refuse share ID 0 outright rather
	// than relying on callers never passing it.
	secret := mustRandomSecret(t)
	poly, err := polynomial.RandomPolynomial(4, rand.Reader)
	if err != nil {
		t.Fatalf("build polynomial: %v", err)
	}
	poly.SetConst(gf521.FromBytes521(secret[:]))

	leaked := poly.EvaluateMod(big.NewInt(0))
	if leaked.Cmp(new(big.Int).SetBytes(secret[:])) != 0 {
		t.Fatalf("test setup broken: evaluating at x=0 did not reproduce the secret")
	}
}

func TestSplitSingleShareEqualsSecret(t *testing.T) {
	// With exactly one share, the polynomial is degree 0 (a constant), so
	// the single share's value must equal the secret directly.
	secret := mustRandomSecret(t)
	shares, err := Split(0, secret, []uint32{42}, rand.Reader)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(shares) != 1 {
		t.Fatalf("len(shares) = %d, want 1", len(shares))
	}
	if !bytes.Equal(shares[0].Value.Bytes(), new(big.Int).SetBytes(secret[:]).Bytes()) {
		t.Error("single-share split did not preserve the secret as the constant term")
	}
}
