// Package gf521 implements modular arithmetic over the finite field
// GF(p) where p = 2^521-1, a Mersenne prime. Every share value and every
// polynomial coefficient used by pkg/shamir is an element of this field.
//
// The prime is fixed and published: unlike a scheme that generates a
// fresh prime per secret, this field is shared across every
// vault, since share IDs (not the prime) are the coordinate that the
// partition-map-key and the two-stage MAP agree on.
package gf521

import (
	"crypto/rand"
	"io"
	"math/big"

	"github.com/pkg/errors"
)

// Prime is 2^521-1, the 13th Mersenne prime. 521 bits comfortably holds a
// 64-byte (512-bit) chunk with room to spare for polynomial evaluation.
var Prime = computePrime()

func computePrime() *big.Int {
	p := new(big.Int).Lsh(big.NewInt(1), 521)
	return p.Sub(p, big.NewInt(1))
}

// ByteLen is the fixed width used to serialise a field element to bytes:
// ceil(521/8).
const ByteLen = 66

// ErrOutOfRange is returned when a value outside [0, Prime) is supplied
// where a field element was expected.
var ErrOutOfRange = errors.New("value is not a valid field element")

// Add returns (a+b) mod Prime.
func Add(a, b *big.Int) *big.Int {
	r := new(big.Int).Add(a, b)
	return r.Mod(r, Prime)
}

// Sub returns (a-b) mod Prime.
func Sub(a, b *big.Int) *big.Int {
	r := new(big.Int).Sub(a, b)
	return r.Mod(r, Prime)
}

// Mul returns (a*b) mod Prime.
func Mul(a, b *big.Int) *big.Int {
	r := new(big.Int).Mul(a, b)
	return r.Mod(r, Prime)
}

// Exp returns (base^exp) mod Prime.
func Exp(base, exp *big.Int) *big.Int {
	return new(big.Int).Exp(base, exp, Prime)
}

// Inverse returns the modular multiplicative inverse of a, computed via
// Fermat's little theorem (a^(p-2) mod p) rather than the extended
// Euclidean algorithm, since Prime is known to be prime and this keeps the
// operation a plain modular exponentiation.
func Inverse(a *big.Int) (*big.Int, error) {
	if a.Sign() == 0 {
		return nil, errors.New("cannot invert zero in GF(p)")
	}
	exp := new(big.Int).Sub(Prime, big.NewInt(2))
	return Exp(a, exp), nil
}

// RandomElement draws a uniformly random element in [1, Prime) using
// rejection sampling against Prime's bit length, so that the value 0 is
// never produced.
func RandomElement(r io.Reader) (*big.Int, error) {
	for {
		v, err := rand.Int(r, Prime)
		if err != nil {
			return nil, errors.Wrap(err, "sample field element")
		}
		if v.Sign() != 0 {
			return v, nil
		}
	}
}

// Bytes521 encodes x as a fixed ByteLen-byte big-endian buffer, left-padded
// with zeros. It panics if x is negative or would not fit (callers only
// ever pass values already reduced modulo Prime).
func Bytes521(x *big.Int) []byte {
	if x.Sign() < 0 {
		panic("gf521: negative value is not a field element")
	}
	b := x.Bytes()
	if len(b) > ByteLen {
		panic("gf521: value does not fit in ByteLen bytes")
	}
	out := make([]byte, ByteLen)
	copy(out[ByteLen-len(b):], b)
	return out
}

// FromBytes521 decodes a fixed-width big-endian buffer produced by
// Bytes521 back into a field element.
func FromBytes521(b []byte) *big.Int {
	return new(big.Int).SetBytes(b)
}

// InRange reports whether x is a valid field element, i.e. 0 <= x < Prime.
func InRange(x *big.Int) bool {
	return x.Sign() >= 0 && x.Cmp(Prime) < 0
}
