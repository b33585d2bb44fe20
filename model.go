// Copyright ©2026 The Nest Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nest

import "gonum.org/v1/gonum/stat/distuv"

// Prior is a univariate prior distribution. The distributions in
// gonum.org/v1/gonum/stat/distuv satisfy Prior.
type Prior interface {
	// Quantile returns the inverse cumulative distribution function at p.
	Quantile(p float64) float64
	// CDF returns the cumulative distribution function at x.
	CDF(x float64) float64
}

var (
	_ Prior = distuv.Uniform{}
	_ Prior = distuv.Normal{}
)

// Model describes the inference problem to be integrated. The problem
// dimension is the number of priors.
type Model struct {
	// LogLike evaluates the log-likelihood at a prior-space point.
	// LogLike must be pure and must not modify or retain theta. It may
	// return -Inf for points outside the likelihood's support.
	LogLike func(theta []float64) float64

	// Priors holds one independent univariate prior per dimension.
	Priors []Prior
}

// Dim returns the dimension of the model.
func (m *Model) Dim() int { return len(m.Priors) }

// PriorTransform maps a unit-cube point u through the componentwise
// inverse CDFs of the priors.
//
// If dst is not nil, the result will be stored in-place into dst and
// returned, otherwise a new slice will be allocated first. If dst is
// not nil, it must have length equal to the dimension of the model.
// PriorTransform panics if len(u) does not equal the dimension.
func (m *Model) PriorTransform(dst, u []float64) []float64 {
	if len(u) != len(m.Priors) {
		panic(badInputLength)
	}
	dst = reuseAs(dst, len(u))
	for i, p := range m.Priors {
		dst[i] = p.Quantile(u[i])
	}
	return dst
}
