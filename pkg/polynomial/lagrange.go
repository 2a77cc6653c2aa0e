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

package polynomial

import (
	"errors"
	"math/big"

	"github.com/shardvault/shardvault/pkg/gf521"
)

var (
	// ErrInvalidDegree is returned if a function was told to create a
	// polynomial with an invalid degree (< 1).
	ErrInvalidDegree = errors.New("degree must be at least one")

	// ErrTooFewPoints is returned if we were asked to interpolate a polynomial
	// with a number of distinct points other than degree+1 (too few or too
	// many).
	ErrTooFewPoints = errors.New("wrong number of points for lagrange interpolation")

	// ErrInconsistentPoints is returned if the given set of points were
	// inconsistent (in other words, at least two points had the same X-value
	// but different Y-values.
	ErrInconsistentPoints = errors.New("detected inconsistent points")
)

// Point represents an (x, y) pair, used for Lagrange interpolation.
type Point struct {
	X, Y *big.Int
}

// uniquePoints returns the set of points that are unique (this is determined
// by checking the X-value). The returned "inconsistent" boolean indicates
// whether there were any "inconsistent" points present (two coordinates that
// had the same X-values but different Y-values).
func uniquePoints(points []Point) (unique []Point, inconsistent bool) {
	uniqueMap := map[string]int{}
	for idx, point := range points {
		pointKey := point.X.String()
		if oldIdx, ok := uniqueMap[pointKey]; !ok {
			unique = append(unique, point)
			uniqueMap[pointKey] = idx
		} else if points[oldIdx].Y.Cmp(point.Y) != 0 {
			inconsistent = true
		}
	}
	return unique, inconsistent
}

// InterpolateConst interpolates the constant of the polynomial which fits
// all the provided points using Lagrange interpolation, over GF(p) (p =
// gf521.Prime). Unlike a threshold (k, n) scheme, this vault's Shamir
// engine consumes every point it is given rather than selecting the first
// degree+1 of them -- the caller must supply exactly degree+1 points, no
// more and no fewer.
//
// To avoid the overhead of computing all the coefficients of the
// polynomial, we use the following optimised formula to only calculate
// L(0) -- the constant of the polynomial. In the following expression, k is
// the degree of the polynomial.
//     L(0) = \sum_{j=0}^{k} f(x_j) \prod_{m=0,m!=j}^{k} \frac{x_m}{x_m-x_j}
func InterpolateConst(degree uint, points ...Point) (*big.Int, error) {
	if degree < 1 {
		return nil, ErrInvalidDegree
	}
	mod := gf521.Prime

	points, inconsistent := uniquePoints(points)
	if inconsistent {
		return nil, ErrInconsistentPoints
	}
	k := degree + 1
	if uint(len(points)) != k {
		return nil, ErrTooFewPoints
	}

	// L0 = \sum ...
	L0 := new(big.Int)
	for j := range points {
		// f(x_j) ...
		yj := copyInt(points[j].Y)
		// \prod_{m=0,m!=j}^k ...
		prod := big.NewInt(1)
		for m := 0; uint(m) < k; m++ {
			if m == j {
				continue
			}
			// \frac{1}{x_m-x_j} -- We need to explicitly do this so we can
			// apply the modular inverse in modular arithmetic.
			XmXj := new(big.Int).Sub(points[m].X, points[j].X)
			invXmXj := new(big.Int).ModInverse(XmXj, mod)
			// \frac{x_m}{x_m-x_j}
			Xm := points[m].X
			frac := new(big.Int).Mul(Xm, invXmXj)
			frac.Mod(frac, mod)
			// Add to product.
			prod.Mul(prod, frac)
			prod.Mod(prod, mod)
		}
		// f(x_j) \prod ...
		L0_elem := new(big.Int).Mul(yj, prod)
		// Add to L0 accumulator.
		L0.Add(L0, L0_elem)
		L0.Mod(L0, mod)
	}
	return L0, nil
}
