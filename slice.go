// Copyright ©2026 The Nest Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nest

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// defaultSlices is the number of slice passes per call.
const defaultSlices = 5

// Slice proposes by multivariate slice sampling along the axes of the
// bound's local ellipsoidal kernel given by the columns of its lower
// Cholesky factor, using the stepping-out
// and shrinking procedure of
//
//	Neal, R.M. (2003). Slice sampling. Annals of Statistics 31(3),
//	705-767.
//
// Each call performs Slices full passes over the axes in random order.
// Slice requires an ellipsoidal bound; combining it with UnitCube is a
// configuration error.
type Slice struct {
	// Slices is the number of passes over the axes per call. If Slices
	// is zero, 5 is used.
	Slices int
}

// Propose slice-samples from start along each kernel axis.
func (p *Slice) Propose(rnd *rand.Rand, b Bound, m *Model, logLStar float64, start []float64) (u, theta []float64, logL float64, ncall int, err error) {
	ke, ok := b.(kerneler)
	if !ok {
		return nil, nil, 0, 0, ErrProposalBound
	}
	slices := p.Slices
	if slices <= 0 {
		slices = defaultSlices
	}
	d := m.Dim()
	u = append([]float64(nil), start...)
	theta = make([]float64, d)
	dir := make([]float64, d)

	axes := ke.kernel(start, rnd).axes()
	for s := 0; s < slices; s++ {
		for _, k := range rnd.Perm(d) {
			mat.Col(dir, k, axes)
			ll, nc, _, _ := sliceMove(rnd, m, logLStar, u, dir, theta)
			logL = ll
			ncall += nc
		}
	}
	return u, theta, logL, ncall, nil
}

// RSlice proposes by slice sampling along random directions through
// the bound's local ellipsoidal kernel, the "random" variant of the
// Slice proposal. The direction length adapts between calls by the
// ratio of interval expansions to contractions. RSlice requires an
// ellipsoidal bound.
type RSlice struct {
	// Slices is the number of directions sampled per call. If Slices
	// is zero, 5 is used.
	Slices int
	// Scale multiplies the kernel-shaped direction. If Scale is zero,
	// 1 is used. Scale is updated in place after every call.
	Scale float64
}

// Propose slice-samples from start along Slices random directions.
func (p *RSlice) Propose(rnd *rand.Rand, b Bound, m *Model, logLStar float64, start []float64) (u, theta []float64, logL float64, ncall int, err error) {
	ke, ok := b.(kerneler)
	if !ok {
		return nil, nil, 0, 0, ErrProposalBound
	}
	if p.Scale <= 0 {
		p.Scale = 1
	}
	slices := p.Slices
	if slices <= 0 {
		slices = defaultSlices
	}
	d := m.Dim()
	u = append([]float64(nil), start...)
	theta = make([]float64, d)
	dir := make([]float64, d)

	kern := ke.kernel(start, rnd)
	var nexpand, ncontract int
	for s := 0; s < slices; s++ {
		// A kernel-shaped direction of length Scale: L·ẑ for a uniform
		// unit direction ẑ.
		for i := range dir {
			dir[i] = rnd.NormFloat64()
		}
		nrm := floats.Norm(dir, 2)
		if nrm == 0 {
			nrm = 1
		}
		floats.Scale(p.Scale/nrm, dir)
		v := mat.NewVecDense(d, dir)
		v.MulVec(kern.chol.RawU().T(), v)
		ll, nc, ne, nco := sliceMove(rnd, m, logLStar, u, dir, theta)
		logL = ll
		ncall += nc
		nexpand += ne
		ncontract += nco
	}
	if nexpand == 0 {
		nexpand = 1
	}
	if ncontract == 0 {
		ncontract = 1
	}
	p.Scale *= float64(nexpand) / (2 * float64(ncontract))
	return u, theta, logL, ncall, nil
}

// sliceMove performs one slice-sampling update of u along dir, writing
// the accepted point into u and its prior image into theta. The window
// starts as a unit interval in dir units placed randomly around u,
// steps out while its endpoints clear the threshold, and then shrinks
// toward u until a draw is accepted. Points outside the unit cube are
// treated as below the threshold without a likelihood call.
func sliceMove(rnd *rand.Rand, m *Model, logLStar float64, u, dir, theta []float64) (logL float64, ncall, nexpand, ncontract int) {
	d := len(u)
	pt := make([]float64, d)
	tpt := make([]float64, d)

	above := func(t float64) (float64, bool) {
		floats.AddScaledTo(pt, u, t, dir)
		if !inUnitCube(pt) {
			return 0, false
		}
		m.PriorTransform(tpt, pt)
		ll := m.LogLike(tpt)
		ncall++
		return ll, ll >= logLStar
	}

	lo := -rnd.Float64()
	hi := lo + 1
	for {
		if _, ok := above(lo); !ok {
			break
		}
		lo--
		nexpand++
	}
	for {
		if _, ok := above(hi); !ok {
			break
		}
		hi++
		nexpand++
	}

	for {
		t := lo + rnd.Float64()*(hi-lo)
		ll, ok := above(t)
		if ok {
			copy(u, pt)
			copy(theta, tpt)
			return ll, ncall, nexpand, ncontract
		}
		if t < 0 {
			lo = t
		} else {
			hi = t
		}
		ncontract++
	}
}
