// Copyright ©2026 The Nest Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nest

import (
	"math"
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestLogUnitBallVol(t *testing.T) {
	t.Parallel()
	for _, test := range []struct {
		d    int
		want float64
	}{
		{d: 1, want: 2},
		{d: 2, want: math.Pi},
		{d: 3, want: 4 * math.Pi / 3},
		{d: 5, want: 8 * math.Pi * math.Pi / 15},
	} {
		got := math.Exp(logUnitBallVol(test.d))
		if math.Abs(got-test.want) > 1e-12*test.want {
			t.Errorf("unexpected unit ball volume for d=%d: got %v want %v", test.d, got, test.want)
		}
	}
}

// gaussianCloud returns an n×d matrix of Gaussian draws centered on c
// with the given coordinate scales.
func gaussianCloud(rnd *rand.Rand, n int, c, scale []float64) *mat.Dense {
	d := len(c)
	pts := mat.NewDense(n, d, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < d; j++ {
			pts.Set(i, j, c[j]+scale[j]*rnd.NormFloat64())
		}
	}
	return pts
}

func TestEllipsoidFitContains(t *testing.T) {
	t.Parallel()
	rnd := rand.New(rand.NewPCG(1, 1))
	pts := gaussianCloud(rnd, 100, []float64{0.5, 0.5, 0.5}, []float64{0.1, 0.05, 0.2})

	e := NewEllipsoid()
	if err := e.Fit(pts, 0, rnd); err != nil {
		t.Fatalf("unexpected fit error: %v", err)
	}
	row := make([]float64, 3)
	for i := 0; i < 100; i++ {
		mat.Row(row, i, pts)
		if !e.Contains(row) {
			t.Errorf("fitted ellipsoid does not contain point %d: %v", i, row)
		}
	}
}

func TestEllipsoidSampleContains(t *testing.T) {
	t.Parallel()
	rnd := rand.New(rand.NewPCG(2, 2))
	pts := gaussianCloud(rnd, 200, []float64{0.4, 0.6}, []float64{0.1, 0.02})

	e := NewEllipsoid()
	if err := e.Fit(pts, 0, rnd); err != nil {
		t.Fatalf("unexpected fit error: %v", err)
	}
	e.Enlarge(1.25)

	u := make([]float64, 2)
	for i := 0; i < 1000; i++ {
		e.Sample(u, rnd)
		if !e.Contains(u) {
			t.Fatalf("sample %d outside its own ellipsoid: %v", i, u)
		}
	}
}

func TestEllipsoidEnlarge(t *testing.T) {
	t.Parallel()
	rnd := rand.New(rand.NewPCG(3, 3))
	pts := gaussianCloud(rnd, 50, []float64{0, 0, 0}, []float64{1, 1, 1})

	e := NewEllipsoid()
	if err := e.Fit(pts, 0, rnd); err != nil {
		t.Fatalf("unexpected fit error: %v", err)
	}
	v0 := e.Volume()
	e.Enlarge(1.25)
	if got, want := e.Volume(), 1.25*v0; math.Abs(got-want) > 1e-10*want {
		t.Errorf("unexpected enlarged volume: got %v want %v", got, want)
	}
}

// Fitting an ellipsoid to its own uniform samples should approximately
// recover its volume.
func TestEllipsoidFitVolume(t *testing.T) {
	t.Parallel()
	rnd := rand.New(rand.NewPCG(4, 4))
	ref := gaussianCloud(rnd, 100, []float64{0, 0}, []float64{1, 0.5})

	e := NewEllipsoid()
	if err := e.Fit(ref, 0, rnd); err != nil {
		t.Fatalf("unexpected fit error: %v", err)
	}
	want := e.Volume()

	const n = 2000
	smp := mat.NewDense(n, 2, nil)
	for i := 0; i < n; i++ {
		e.Sample(smp.RawRowView(i), rnd)
	}
	refit := NewEllipsoid()
	if err := refit.Fit(smp, 0, rnd); err != nil {
		t.Fatalf("unexpected refit error: %v", err)
	}
	got := refit.Volume()
	if got < want/2 || got > 2*want {
		t.Errorf("refit volume outside factor 2: got %v want %v", got, want)
	}
}

func TestEllipsoidMinVolume(t *testing.T) {
	t.Parallel()
	rnd := rand.New(rand.NewPCG(5, 5))
	pts := gaussianCloud(rnd, 50, []float64{0.5, 0.5}, []float64{1e-3, 1e-3})

	const pointVol = 1e-3
	e := NewEllipsoid()
	if err := e.Fit(pts, pointVol, rnd); err != nil {
		t.Fatalf("unexpected fit error: %v", err)
	}
	if min := 50 * pointVol; e.Volume() < min*(1-1e-10) {
		t.Errorf("fitted volume below the point volume floor: got %v want at least %v", e.Volume(), min)
	}
}

// A coordinate with zero variance must be regularized rather than
// aborting the fit.
func TestEllipsoidDegenerateFit(t *testing.T) {
	t.Parallel()
	rnd := rand.New(rand.NewPCG(6, 6))
	pts := mat.NewDense(40, 3, nil)
	for i := 0; i < 40; i++ {
		pts.Set(i, 0, 0.3+0.1*rnd.NormFloat64())
		pts.Set(i, 1, 0.5)
		pts.Set(i, 2, 0.7+0.1*rnd.NormFloat64())
	}
	e := NewEllipsoid()
	if err := e.Fit(pts, 0, rnd); err != nil {
		t.Fatalf("degenerate covariance not recovered: %v", err)
	}
	row := make([]float64, 3)
	for i := 0; i < 40; i++ {
		mat.Row(row, i, pts)
		if !e.Contains(row) {
			t.Errorf("regularized ellipsoid does not contain point %d", i)
		}
	}
}

func TestEllipsoidSampleDeterminism(t *testing.T) {
	t.Parallel()
	pts := gaussianCloud(rand.New(rand.NewPCG(7, 7)), 60, []float64{0.5, 0.5}, []float64{0.1, 0.1})

	draw := func() []float64 {
		rnd := rand.New(rand.NewPCG(8, 8))
		e := NewEllipsoid()
		if err := e.Fit(pts, 0, rnd); err != nil {
			t.Fatalf("unexpected fit error: %v", err)
		}
		u := make([]float64, 2)
		out := make([]float64, 0, 20)
		for i := 0; i < 10; i++ {
			e.Sample(u, rnd)
			out = append(out, u...)
		}
		return out
	}
	a, b := draw(), draw()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("ellipsoid sampling is not deterministic: draw %d differs", i)
		}
	}
}
