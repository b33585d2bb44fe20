// Copyright ©2026 The Nest Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nest

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

// Default walk parameters.
const (
	defaultWalks     = 25
	walkTargetAccept = 0.5
)

// RWalk proposes by a likelihood-constrained Gaussian random walk
// started from an existing live point. Steps are shaped by the local
// ellipsoidal kernel of the bound (isotropic under a unit-cube bound)
// and accepted whenever they stay in the unit cube and clear the
// likelihood threshold. The step scale adapts between calls toward a
// 50% acceptance rate.
type RWalk struct {
	// Walks is the number of steps attempted per call. If Walks is
	// zero, 25 is used.
	Walks int
	// Scale is the step scale. If Scale is zero, 1 is used. Scale is
	// updated in place after every call.
	Scale float64
}

// Propose walks from start and returns the last accepted point.
func (p *RWalk) Propose(rnd *rand.Rand, b Bound, m *Model, logLStar float64, start []float64) (u, theta []float64, logL float64, ncall int, err error) {
	if p.Scale <= 0 {
		p.Scale = 1
	}
	walks := p.Walks
	if walks <= 0 {
		walks = defaultWalks
	}
	return constrainedWalk(rnd, b, m, logLStar, start, walks, &p.Scale, false)
}

// RStagger is RWalk with the length of every step jittered uniformly
// in [1/2, 3/2] of the current scale, which keeps the walk moving on
// likelihood plateaus where a fixed scale can stall.
type RStagger struct {
	// Walks is the number of steps attempted per call. If Walks is
	// zero, 25 is used.
	Walks int
	// Scale is the step scale. If Scale is zero, 1 is used. Scale is
	// updated in place after every call.
	Scale float64
}

// Propose walks from start with staggered step lengths and returns the
// last accepted point.
func (p *RStagger) Propose(rnd *rand.Rand, b Bound, m *Model, logLStar float64, start []float64) (u, theta []float64, logL float64, ncall int, err error) {
	if p.Scale <= 0 {
		p.Scale = 1
	}
	walks := p.Walks
	if walks <= 0 {
		walks = defaultWalks
	}
	return constrainedWalk(rnd, b, m, logLStar, start, walks, &p.Scale, true)
}

// constrainedWalk runs passes of walks Gaussian steps from start until
// at least one step is accepted, halving *scale after any pass that
// accepts nothing. After a successful pass *scale is adapted toward
// walkTargetAccept following
//
//	scale ← scale·exp((f_acc − 1/2)/n_acc).
func constrainedWalk(rnd *rand.Rand, b Bound, m *Model, logLStar float64, start []float64, walks int, scale *float64, stagger bool) (u, theta []float64, logL float64, ncall int, err error) {
	d := m.Dim()
	u = make([]float64, d)
	theta = make([]float64, d)
	eta := make([]float64, d)
	utrial := make([]float64, d)
	ttrial := make([]float64, d)

	var kern *Ellipsoid
	if ke, ok := b.(kerneler); ok {
		kern = ke.kernel(start, rnd)
	}

	for {
		copy(u, start)
		var naccept int
		for i := 0; i < walks; i++ {
			if kern != nil {
				kern.randStep(eta, rnd)
			} else {
				for j := range eta {
					eta[j] = rnd.NormFloat64()
				}
			}
			step := *scale
			if stagger {
				step *= 0.5 + rnd.Float64()
			}
			floats.AddScaledTo(utrial, u, step, eta)
			if !inUnitCube(utrial) {
				continue
			}
			m.PriorTransform(ttrial, utrial)
			ll := m.LogLike(ttrial)
			ncall++
			if ll < logLStar {
				continue
			}
			copy(u, utrial)
			copy(theta, ttrial)
			logL = ll
			naccept++
		}
		if naccept > 0 {
			facc := float64(naccept) / float64(walks)
			*scale *= math.Exp((facc - walkTargetAccept) / float64(naccept))
			return u, theta, logL, ncall, nil
		}
		*scale /= 2
	}
}
