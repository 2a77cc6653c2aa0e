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

// Package polynomial implements the polynomial operations needed by
// pkg/shamir: random coefficient generation and Horner's-method
// evaluation over a prime field. Generalised from a per-secret-random-prime
// polynomial package to this vault's fixed GF(2^521-1) field (pkg/gf521)
// -- every polynomial here is defined over gf521.Prime rather than a
// modulus chosen at call time.
package polynomial

import (
	"io"
	"math/big"

	"github.com/pkg/errors"

	"github.com/shardvault/shardvault/pkg/gf521"
)

// Polynomial represents a polynomial of a degree len(p)-1, with coefficients
// in GF(p). The coefficients are stored in *increasing* power of x, like
//                  p_0 + p_1 x^1 + p_2 x^2 + ... + p_n x^n.
type Polynomial []*big.Int

// RandomPolynomial generates a new polynomial with random coefficients in
// [1, gf521.Prime) and the given degree. len(polynomial) = degree+1.
func RandomPolynomial(degree uint, r io.Reader) (Polynomial, error) {
	poly := make(Polynomial, degree+1)
	for i := range poly {
		coeff, err := gf521.RandomElement(r)
		if err != nil {
			return nil, errors.Wrap(err, "generate coefficient")
		}
		poly[i] = coeff
	}
	return poly, nil
}

// copyInt creates a copy of the given *big.Int.
func copyInt(x *big.Int) *big.Int { return new(big.Int).Add(new(big.Int), x) }

// SetConst sets the "constant" term of the polynomial (or rather the
// coefficient of x^0). This is just a convenience function for assigning to
// [0], but it protects against making mistakes when referencing the Polynomial
// slice.
func (p Polynomial) SetConst(a0 *big.Int) {
	if len(p) < 1 {
		panic("tried to SetConst on empty Polynomial")
	}
	p[0] = copyInt(a0)
}

// Const gets the constant term of hte polynomial. This is a convenience
// function to make sure that users don't depend on our internal
// representation.
func (p Polynomial) Const() *big.Int {
	if len(p) < 1 {
		panic("tried to Const on empty Polynomial")
	}
	return p[0]
}

// Degree returns the "real" degree of the given polynomial p(x), which is the
// highest power of x that has a non-zero coefficient.
func (p Polynomial) Degree() uint {
	degree := uint(len(p) - 1)
	for degree > 0 && p[degree].Sign() == 0 {
		degree--
	}
	return degree
}

// EvaluateMod evaluates p(x0) mod gf521.Prime. This is done using Horner's method with
// modular arithmetic over gf521.Prime. This method is arguably more
// efficient than evaluating the polynomial and then taking the modulus of
// the (potentially huge) result afterwards.
func (p Polynomial) EvaluateMod(x0 *big.Int) *big.Int {
	x := new(big.Int).Mod(x0, gf521.Prime)

	// Horner's method is applied in the opposite order to how we store our
	// polynomials. So we must iterate it in reverse. We apply (mod p) at each
	// operation, which is fine in a finite field because (+) and (*) are
	// compatible with (mod p).
	result := new(big.Int)
	for i := len(p) - 1; i >= 0; i-- {
		result.Mul(result, x)
		result.Add(result, p[i])
		result.Mod(result, gf521.Prime)
	}
	return result
}
