package gf521

import (
	"crypto/rand"
	"math/big"
	"testing"
)

func TestInverseRoundTrip(t *testing.T) {
	for i := 0; i < 50; i++ {
		a, err := RandomElement(rand.Reader)
		if err != nil {
			t.Fatalf("sample element: %v", err)
		}
		inv, err := Inverse(a)
		if err != nil {
			t.Fatalf("invert: %v", err)
		}
		got := Mul(a, inv)
		if got.Cmp(big.NewInt(1)) != 0 {
			t.Errorf("a * a^-1 = %v, want 1", got)
		}
	}
}

func TestInverseZero(t *testing.T) {
	if _, err := Inverse(big.NewInt(0)); err == nil {
		t.Error("expected error inverting zero")
	}
}

func TestRandomElementNeverZero(t *testing.T) {
	for i := 0; i < 200; i++ {
		v, err := RandomElement(rand.Reader)
		if err != nil {
			t.Fatalf("sample: %v", err)
		}
		if v.Sign() == 0 {
			t.Fatal("RandomElement produced zero")
		}
		if !InRange(v) {
			t.Fatalf("RandomElement produced out-of-range value %v", v)
		}
	}
}

func TestBytes521RoundTrip(t *testing.T) {
	cases := []*big.Int{
		big.NewInt(0),
		big.NewInt(1),
		new(big.Int).Sub(Prime, big.NewInt(1)),
	}
	for _, c := range cases {
		b := Bytes521(c)
		if len(b) != ByteLen {
			t.Fatalf("Bytes521 length = %d, want %d", len(b), ByteLen)
		}
		got := FromBytes521(b)
		if got.Cmp(c) != 0 {
			t.Errorf("round-trip mismatch: got %v want %v", got, c)
		}
	}
}

func TestPrimeIsMersenne521(t *testing.T) {
	if !Prime.ProbablyPrime(32) {
		t.Fatal("Prime is not prime")
	}
	if Prime.BitLen() != 521 {
		t.Fatalf("Prime.BitLen() = %d, want 521", Prime.BitLen())
	}
}
