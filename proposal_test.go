// Copyright ©2026 The Nest Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nest

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/stat/distuv"
)

// testModel is a unit Gaussian log-likelihood centered on θ = 0 under
// uniform priors on (-5,5)^d.
func testModel(d int) Model {
	priors := make([]Prior, d)
	for i := range priors {
		priors[i] = distuv.Uniform{Min: -5, Max: 5}
	}
	return Model{
		LogLike: func(theta []float64) float64 {
			var s float64
			for _, v := range theta {
				s += v * v
			}
			return -0.5 * s
		},
		Priors: priors,
	}
}

// fittedEllipsoid returns an ellipsoid fit to a compact cloud around
// the cube center, where the test model's likelihood peaks.
func fittedEllipsoid(t *testing.T, rnd *rand.Rand, d int) *Ellipsoid {
	t.Helper()
	c := make([]float64, d)
	scale := make([]float64, d)
	for i := range c {
		c[i] = 0.5
		scale[i] = 0.05
	}
	pts := gaussianCloud(rnd, 50*d, c, scale)
	e := NewEllipsoid()
	if err := e.Fit(pts, 0, rnd); err != nil {
		t.Fatalf("unexpected fit error: %v", err)
	}
	e.Enlarge(1.25)
	return e
}

func checkProposal(t *testing.T, m *Model, u, theta []float64, logL, logLStar float64) {
	t.Helper()
	if !inUnitCube(u) {
		t.Fatalf("proposed point outside the unit cube: %v", u)
	}
	if logL < logLStar {
		t.Fatalf("proposed point below threshold: logL=%v logL*=%v", logL, logLStar)
	}
	want := m.PriorTransform(nil, u)
	for i := range want {
		if theta[i] != want[i] {
			t.Fatalf("theta is not the prior image of u: got %v want %v", theta, want)
		}
	}
	if got := m.LogLike(theta); got != logL {
		t.Fatalf("reported logL does not match the model: got %v want %v", logL, got)
	}
}

func TestUniformPropose(t *testing.T) {
	t.Parallel()
	m := testModel(2)
	rnd := rand.New(rand.NewPCG(20, 20))
	b := NewUnitCube(2)

	var p Uniform
	logLStar := -2.0
	for i := 0; i < 50; i++ {
		u, theta, logL, ncall, err := p.Propose(rnd, b, &m, logLStar, nil)
		if err != nil {
			t.Fatalf("unexpected propose error: %v", err)
		}
		if ncall < 1 {
			t.Fatalf("uniform proposal reported %d likelihood calls", ncall)
		}
		checkProposal(t, &m, u, theta, logL, logLStar)
	}
}

func TestUniformStuck(t *testing.T) {
	t.Parallel()
	m := testModel(2)
	rnd := rand.New(rand.NewPCG(21, 21))
	b := NewUnitCube(2)

	p := Uniform{MaxReject: 16}
	_, _, _, _, err := p.Propose(rnd, b, &m, math.Inf(1), nil)
	var stuck *StuckError
	if !errors.As(err, &stuck) {
		t.Fatalf("expected StuckError for an unreachable threshold, got %v", err)
	}
	if stuck.NDraw != 16 {
		t.Errorf("unexpected draw count in StuckError: got %d want 16", stuck.NDraw)
	}
	if !math.IsInf(stuck.LogLStar, 1) {
		t.Errorf("StuckError does not carry the threshold: got %v", stuck.LogLStar)
	}
}

func TestRWalkPropose(t *testing.T) {
	t.Parallel()
	m := testModel(2)
	rnd := rand.New(rand.NewPCG(22, 22))
	e := fittedEllipsoid(t, rnd, 2)

	start := []float64{0.5, 0.5}
	logLStar := m.LogLike(m.PriorTransform(nil, []float64{0.52, 0.52}))

	p := RWalk{Walks: 25}
	for i := 0; i < 20; i++ {
		u, theta, logL, _, err := p.Propose(rnd, e, &m, logLStar, start)
		if err != nil {
			t.Fatalf("unexpected propose error: %v", err)
		}
		checkProposal(t, &m, u, theta, logL, logLStar)
	}
	if p.Scale <= 0 {
		t.Errorf("walk scale adapted to a non-positive value: %v", p.Scale)
	}
}

func TestRStaggerPropose(t *testing.T) {
	t.Parallel()
	m := testModel(2)
	rnd := rand.New(rand.NewPCG(23, 23))
	e := fittedEllipsoid(t, rnd, 2)

	start := []float64{0.5, 0.5}
	logLStar := m.LogLike(m.PriorTransform(nil, []float64{0.53, 0.5}))

	p := RStagger{Walks: 25}
	for i := 0; i < 20; i++ {
		u, theta, logL, _, err := p.Propose(rnd, e, &m, logLStar, start)
		if err != nil {
			t.Fatalf("unexpected propose error: %v", err)
		}
		checkProposal(t, &m, u, theta, logL, logLStar)
	}
}

func TestSlicePropose(t *testing.T) {
	t.Parallel()
	m := testModel(2)
	rnd := rand.New(rand.NewPCG(24, 24))
	e := fittedEllipsoid(t, rnd, 2)

	start := []float64{0.5, 0.5}
	logLStar := m.LogLike(m.PriorTransform(nil, []float64{0.52, 0.51}))

	p := Slice{Slices: 3}
	for i := 0; i < 10; i++ {
		u, theta, logL, ncall, err := p.Propose(rnd, e, &m, logLStar, start)
		if err != nil {
			t.Fatalf("unexpected propose error: %v", err)
		}
		if ncall == 0 {
			t.Fatal("slice proposal reported no likelihood calls")
		}
		checkProposal(t, &m, u, theta, logL, logLStar)
	}
}

func TestRSlicePropose(t *testing.T) {
	t.Parallel()
	m := testModel(2)
	rnd := rand.New(rand.NewPCG(25, 25))
	e := fittedEllipsoid(t, rnd, 2)

	start := []float64{0.5, 0.5}
	logLStar := m.LogLike(m.PriorTransform(nil, []float64{0.52, 0.51}))

	p := RSlice{Slices: 3}
	for i := 0; i < 10; i++ {
		u, theta, logL, _, err := p.Propose(rnd, e, &m, logLStar, start)
		if err != nil {
			t.Fatalf("unexpected propose error: %v", err)
		}
		checkProposal(t, &m, u, theta, logL, logLStar)
		if p.Scale <= 0 {
			t.Fatalf("slice scale adapted to a non-positive value: %v", p.Scale)
		}
	}
}

func TestSliceRequiresEllipsoid(t *testing.T) {
	t.Parallel()
	m := testModel(2)
	rnd := rand.New(rand.NewPCG(26, 26))

	var p Slice
	_, _, _, _, err := p.Propose(rnd, NewUnitCube(2), &m, 0, []float64{0.5, 0.5})
	if !errors.Is(err, ErrProposalBound) {
		t.Errorf("expected ErrProposalBound for Slice over UnitCube, got %v", err)
	}
	var rp RSlice
	_, _, _, _, err = rp.Propose(rnd, NewUnitCube(2), &m, 0, []float64{0.5, 0.5})
	if !errors.Is(err, ErrProposalBound) {
		t.Errorf("expected ErrProposalBound for RSlice over UnitCube, got %v", err)
	}
}

func TestProposalDeterminism(t *testing.T) {
	t.Parallel()
	m := testModel(2)
	e := fittedEllipsoid(t, rand.New(rand.NewPCG(27, 27)), 2)
	start := []float64{0.5, 0.5}
	logLStar := m.LogLike(m.PriorTransform(nil, []float64{0.52, 0.52}))

	run := func() []float64 {
		rnd := rand.New(rand.NewPCG(28, 28))
		p := RWalk{Walks: 10}
		var out []float64
		for i := 0; i < 5; i++ {
			u, _, logL, _, err := p.Propose(rnd, e, &m, logLStar, start)
			if err != nil {
				t.Fatalf("unexpected propose error: %v", err)
			}
			out = append(out, u...)
			out = append(out, logL)
		}
		return out
	}
	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("proposal is not deterministic: value %d differs", i)
		}
	}
}
