// Copyright ©2026 The Nest Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nest

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// Bound is a geometric envelope around the live-point set in the unit
// hypercube. The sampler refits the bound on a schedule and draws
// replacement candidates from it; it interacts with the bound only
// through this interface.
type Bound interface {
	// Fit refits the bound to the rows of points, an n×d matrix of
	// unit-cube coordinates. pointVol is the prior volume expected per
	// live point; a fitted bound must have volume at least n·pointVol.
	// A failed fit must leave the bound in its previous state and
	// return a non-nil error.
	Fit(points mat.Matrix, pointVol float64, rnd *rand.Rand) error

	// Enlarge scales the volume of the bound by factor, which must be
	// positive. The sampler enlarges once after every successful fit.
	Enlarge(factor float64)

	// Sample draws a point uniformly from the bound.
	//
	// If dst is not nil, the sample will be stored in-place into dst
	// and returned, otherwise a new slice will be allocated first.
	// The draw may fall outside (0,1)^d; callers reject such points.
	Sample(dst []float64, rnd *rand.Rand) []float64

	// Contains reports whether u lies inside the bound.
	Contains(u []float64) bool

	// Volume returns the volume of the bound.
	Volume() float64
}

var (
	_ Bound = (*UnitCube)(nil)
	_ Bound = (*Ellipsoid)(nil)
	_ Bound = (*MultiEllipsoid)(nil)
)

// kerneler is implemented by bounds that can supply a local ellipsoidal
// kernel around a point. Walk and slice proposals use the kernel's
// covariance to shape their moves.
type kerneler interface {
	kernel(u []float64, rnd *rand.Rand) *Ellipsoid
}

var (
	_ kerneler = (*Ellipsoid)(nil)
	_ kerneler = (*MultiEllipsoid)(nil)
)

// UnitCube is the trivial bound covering all of (0,1)^d. Its fit is a
// no-op and its samples are uniform on the cube.
type UnitCube struct {
	dim int
}

// NewUnitCube returns a unit-cube bound of the given dimension.
func NewUnitCube(dim int) *UnitCube {
	return &UnitCube{dim: dim}
}

// Fit records the dimension of points and nothing else.
func (c *UnitCube) Fit(points mat.Matrix, pointVol float64, rnd *rand.Rand) error {
	_, d := points.Dims()
	c.dim = d
	return nil
}

// Enlarge is a no-op on the unit cube.
func (c *UnitCube) Enlarge(factor float64) {}

// Sample draws a point uniformly from (0,1)^d.
func (c *UnitCube) Sample(dst []float64, rnd *rand.Rand) []float64 {
	dst = reuseAs(dst, c.dim)
	if rnd == nil {
		for i := range dst {
			dst[i] = rand.Float64()
		}
		return dst
	}
	for i := range dst {
		dst[i] = rnd.Float64()
	}
	return dst
}

// Contains reports whether u lies strictly inside the open unit cube.
func (c *UnitCube) Contains(u []float64) bool {
	if len(u) != c.dim {
		panic(badInputLength)
	}
	return inUnitCube(u)
}

// Volume returns 1.
func (c *UnitCube) Volume() float64 { return 1 }

// inUnitCube reports whether every coordinate of u lies in (0,1).
func inUnitCube(u []float64) bool {
	for _, v := range u {
		if v <= 0 || v >= 1 {
			return false
		}
	}
	return true
}
