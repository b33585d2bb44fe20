// Copyright ©2026 The Nest Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nest

// Convergence decides when a run may stop. Predicates are evaluated
// after every step; callers driving Step themselves may consult them
// at any iteration boundary.
type Convergence interface {
	Converged(s *Sampler) bool
}

var (
	_ Convergence = DLogZConvergence{}
	_ Convergence = DeclineConvergence{}
)

// DLogZConvergence stops a run when the estimated evidence still held
// by the live points would change the log-evidence by less than
// Tolerance.
type DLogZConvergence struct {
	// Tolerance is the stopping threshold on DLogZ. If Tolerance is
	// zero, 0.5 is used.
	Tolerance float64
}

// Converged reports whether the remaining evidence is below tolerance.
func (c DLogZConvergence) Converged(s *Sampler) bool {
	tol := c.Tolerance
	if tol == 0 {
		tol = 0.5
	}
	return s.DLogZ() < tol
}

// DeclineConvergence stops a run after the sample weight has declined
// for more than Factor times the iteration count in a row. The default
// factor is deliberately lax; tighten it only with care.
type DeclineConvergence struct {
	// Factor scales the iteration count. If Factor is zero, 1 is used.
	Factor float64
}

// Converged reports whether the consecutive-decline count has exceeded
// Factor times the iteration count.
func (c DeclineConvergence) Converged(s *Sampler) bool {
	f := c.Factor
	if f == 0 {
		f = 1
	}
	return float64(s.ndecl) > f*float64(s.niter)
}
