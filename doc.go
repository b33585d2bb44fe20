// Copyright ©2026 The Nest Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package nest implements static nested sampling, a Monte Carlo method
// for estimating the Bayesian evidence (marginal likelihood)
//
//	Z = ∫ L(θ) π(θ) dθ
//
// of a statistical model, producing weighted posterior samples as a
// by-product. The caller supplies a log-likelihood function and a set
// of independent univariate priors; the sampler returns an estimate of
// log Z with an uncertainty √(H/N), the information H, and a stream of
// weighted draws.
//
// Nested sampling maintains a population of N "live" points drawn from
// the prior and subject to a monotonically increasing likelihood
// threshold L*. At each iteration the worst live point is removed,
// credited with the expected shrinkage of the remaining prior mass,
// and replaced by a new point with likelihood above L*. The new point
// is drawn with the help of a geometric bound fit to the live set in
// the unit hypercube: the unit cube itself, a single bounding
// ellipsoid, or a union of ellipsoids found by recursive clustering
// for multi-modal problems. Several replacement strategies are
// provided, from plain rejection sampling inside the bound to
// likelihood-constrained random walks and slice sampling.
//
// All geometry operates on points in (0,1)^d; prior-space points are
// obtained by mapping each coordinate through the inverse CDF of the
// corresponding prior. The distributions in
// gonum.org/v1/gonum/stat/distuv satisfy the Prior interface directly.
//
// The sampler is single-threaded and deterministic for a fixed random
// source. Callers drive it either one Step at a time, checking their
// own termination conditions, or through Run with one or more
// Convergence predicates.
//
// References:
//
//	Skilling, J. (2006). Nested sampling for general Bayesian
//	computation. Bayesian Analysis 1(4), 833-859.
//
//	Feroz, F., Hobson, M.P. and Bridges, M. (2009). MultiNest: an
//	efficient and robust Bayesian inference tool for cosmology and
//	particle physics. MNRAS 398(4), 1601-1614.
//
//	Speagle, J.S. (2020). dynesty: a dynamic nested sampling package
//	for estimating Bayesian posteriors and evidences. MNRAS 493(3),
//	3132-3158.
package nest // import "github.com/mileslucas/nest"
