// Copyright ©2026 The Nest Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nest

import "math/rand/v2"

// Proposal draws a replacement live point with log-likelihood at or
// above a moving threshold.
//
// Propose is given the current bound, the model, the threshold
// logLStar, and a starting point start that already satisfies the
// threshold; rejection proposals may ignore start. The returned u and
// theta are freshly allocated, u lies in (0,1)^d, theta is its
// prior-space image and logL ≥ logLStar. ncall reports the number of
// log-likelihood evaluations spent. Implementations must be
// deterministic given the generator state and must not retain start or
// any other argument past the call.
type Proposal interface {
	Propose(rnd *rand.Rand, b Bound, m *Model, logLStar float64, start []float64) (u, theta []float64, logL float64, ncall int, err error)
}

var (
	_ Proposal = (*Uniform)(nil)
	_ Proposal = (*RWalk)(nil)
	_ Proposal = (*RStagger)(nil)
	_ Proposal = (*Slice)(nil)
	_ Proposal = (*RSlice)(nil)
)

// Uniform proposes by rejection: points are drawn uniformly from the
// bound until one lands in the unit cube with likelihood above the
// threshold. It is exact but its efficiency decays as the bound
// overstates the likelihood contour.
type Uniform struct {
	// MaxReject caps the number of draws attempted in a single call.
	// If MaxReject is zero the search is unbounded; if the cap is
	// exhausted Propose returns a *StuckError.
	MaxReject int
}

// Propose draws from the bound until the threshold is met. start is
// ignored.
func (p *Uniform) Propose(rnd *rand.Rand, b Bound, m *Model, logLStar float64, start []float64) (u, theta []float64, logL float64, ncall int, err error) {
	d := m.Dim()
	u = make([]float64, d)
	theta = make([]float64, d)
	var ndraw int
	for {
		if p.MaxReject > 0 && ndraw >= p.MaxReject {
			return nil, nil, 0, ncall, &StuckError{LogLStar: logLStar, NDraw: ndraw}
		}
		ndraw++
		b.Sample(u, rnd)
		if !inUnitCube(u) {
			continue
		}
		m.PriorTransform(theta, u)
		logL = m.LogLike(theta)
		ncall++
		if logL >= logLStar {
			return u, theta, logL, ncall, nil
		}
	}
}
