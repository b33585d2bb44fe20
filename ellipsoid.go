// Copyright ©2026 The Nest Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nest

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const (
	// fitSlack inflates a fitted covariance so the extreme point of the
	// fit lies inside the ellipsoid rather than on its surface.
	fitSlack = 1 + 1e-9

	// degenerateEps and maxDegenerateEps bracket the diagonal
	// regularization attempted on a rank-deficient sample covariance.
	degenerateEps    = 1e-10
	maxDegenerateEps = 1e-2
)

// Ellipsoid is a d-dimensional bounding ellipsoid
//
//	E = {x : (x-c)ᵀ A⁻¹ (x-c) ≤ 1}
//
// with center c and symmetric positive-definite covariance A, stored
// through its Cholesky factorization. The zero value is unfitted; Fit
// must succeed before Sample, Contains or Volume are called.
type Ellipsoid struct {
	center []float64
	chol   mat.Cholesky
	logVol float64
	dim    int
}

// NewEllipsoid returns an unfitted ellipsoid bound.
func NewEllipsoid() *Ellipsoid {
	return &Ellipsoid{}
}

// Fit refits the ellipsoid to the rows of points. The center is the
// sample mean and the shape the sample covariance, scaled so that
// every row lies inside and the volume is at least n·pointVol. A
// rank-deficient covariance is regularized by adding escalating
// multiples of the identity to the diagonal; if factorization still
// fails the receiver is left unchanged and a non-nil error returned.
func (e *Ellipsoid) Fit(points mat.Matrix, pointVol float64, rnd *rand.Rand) error {
	n, d := points.Dims()
	if n < 2 {
		return errDegenerate
	}

	center := make([]float64, d)
	col := make([]float64, n)
	for j := 0; j < d; j++ {
		mat.Col(col, j, points)
		center[j] = stat.Mean(col, nil)
	}

	cov := mat.NewSymDense(d, nil)
	stat.CovarianceMatrix(cov, points, nil)
	var chol mat.Cholesky
	ok := chol.Factorize(cov)
	for eps := degenerateEps; !ok && eps <= maxDegenerateEps; eps *= 10 {
		for i := 0; i < d; i++ {
			cov.SetSym(i, i, cov.At(i, i)+eps)
		}
		ok = chol.Factorize(cov)
	}
	if !ok {
		return errDegenerate
	}

	// Scale the covariance by the largest quadratic form so the most
	// distant point satisfies (x-c)ᵀ A⁻¹ (x-c) ≤ 1.
	cvec := mat.NewVecDense(d, center)
	row := make([]float64, d)
	var fmax float64
	for i := 0; i < n; i++ {
		mat.Row(row, i, points)
		dist := stat.Mahalanobis(mat.NewVecDense(d, row), cvec, &chol)
		if q := dist * dist; q > fmax {
			fmax = q
		}
	}
	if fmax > 0 {
		chol.Scale(fmax*fitSlack, &chol)
	}

	logVol := logUnitBallVol(d) + 0.5*chol.LogDet()
	if pointVol > 0 {
		if target := math.Log(float64(n) * pointVol); logVol < target {
			chol.Scale(math.Pow(math.Exp(target-logVol), 2/float64(d)), &chol)
			logVol = target
		}
	}

	e.dim = d
	e.center = center
	e.chol = chol
	e.logVol = logVol
	return nil
}

// Enlarge scales the volume of the ellipsoid by factor, which must be
// positive. The covariance is scaled by factor^(2/d).
func (e *Ellipsoid) Enlarge(factor float64) {
	if factor <= 0 {
		panic("nest: non-positive enlargement factor")
	}
	if e.dim == 0 {
		panic(badUnfitted)
	}
	e.chol.Scale(math.Pow(factor, 2/float64(e.dim)), &e.chol)
	e.logVol += math.Log(factor)
}

// Sample draws a point uniformly from the ellipsoid: a uniform draw z
// on the unit ball mapped through x = c + Lz with L the lower Cholesky
// factor of the covariance.
//
// If dst is not nil, the sample will be stored in-place into dst and
// returned, otherwise a new slice will be allocated first.
func (e *Ellipsoid) Sample(dst []float64, rnd *rand.Rand) []float64 {
	if e.dim == 0 {
		panic(badUnfitted)
	}
	dst = reuseAs(dst, e.dim)

	// Uniform on the unit ball: a normalized Gaussian direction scaled
	// by U^(1/d).
	var r float64
	if rnd == nil {
		for i := range dst {
			dst[i] = rand.NormFloat64()
		}
		r = rand.Float64()
	} else {
		for i := range dst {
			dst[i] = rnd.NormFloat64()
		}
		r = rnd.Float64()
	}
	nrm := floats.Norm(dst, 2)
	if nrm == 0 {
		nrm = 1
	}
	floats.Scale(math.Pow(r, 1/float64(e.dim))/nrm, dst)

	v := mat.NewVecDense(e.dim, dst)
	v.MulVec(e.chol.RawU().T(), v)
	floats.Add(dst, e.center)
	return dst
}

// Contains reports whether u lies inside the ellipsoid.
func (e *Ellipsoid) Contains(u []float64) bool {
	if len(u) != e.dim {
		panic(badInputLength)
	}
	return e.mahalanobis(u) <= 1
}

// Volume returns the volume of the ellipsoid, V_d·√det(A).
func (e *Ellipsoid) Volume() float64 {
	return math.Exp(e.logVol)
}

// Center returns the center of the ellipsoid. The returned slice must
// not be modified.
func (e *Ellipsoid) Center() []float64 { return e.center }

// mahalanobis returns the squared quadratic form (u-c)ᵀ A⁻¹ (u-c).
func (e *Ellipsoid) mahalanobis(u []float64) float64 {
	dist := stat.Mahalanobis(mat.NewVecDense(e.dim, u), mat.NewVecDense(e.dim, e.center), &e.chol)
	return dist * dist
}

// kernel returns the ellipsoid itself.
func (e *Ellipsoid) kernel(u []float64, rnd *rand.Rand) *Ellipsoid { return e }

// randStep stores into dst a Gaussian step with covariance equal to
// the ellipsoid covariance, dst = L·z for z ~ N(0, I).
func (e *Ellipsoid) randStep(dst []float64, rnd *rand.Rand) []float64 {
	dst = reuseAs(dst, e.dim)
	for i := range dst {
		dst[i] = rnd.NormFloat64()
	}
	v := mat.NewVecDense(e.dim, dst)
	v.MulVec(e.chol.RawU().T(), v)
	return dst
}

// axes returns a set of axes of the ellipsoid: the columns of the
// lower Cholesky factor of its covariance. These are not in general
// the principal (eigenvector) axes.
func (e *Ellipsoid) axes() *mat.Dense {
	return mat.DenseCopyOf(e.chol.RawU().T())
}

// logUnitBallVol returns the log volume of the unit ball in d
// dimensions, (d/2)·log π − log Γ(d/2+1).
func logUnitBallVol(d int) float64 {
	lg, _ := math.Lgamma(float64(d)/2 + 1)
	return float64(d)/2*math.Log(math.Pi) - lg
}
