// Copyright ©2026 The Nest Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nest

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/stat/distuv"
)

func TestPriorTransform(t *testing.T) {
	t.Parallel()
	m := Model{
		LogLike: func([]float64) float64 { return 0 },
		Priors: []Prior{
			distuv.Uniform{Min: -5, Max: 5},
			distuv.Normal{Mu: 1, Sigma: 2},
		},
	}
	got := m.PriorTransform(nil, []float64{0.5, 0.5})
	if got[0] != 0 {
		t.Errorf("uniform median: got %v want 0", got[0])
	}
	if got[1] != 1 {
		t.Errorf("normal median: got %v want 1", got[1])
	}

	// The CDF must invert the transform.
	u := []float64{0.1, 0.9}
	theta := m.PriorTransform(nil, u)
	for i, p := range m.Priors {
		if back := p.CDF(theta[i]); math.Abs(back-u[i]) > 1e-10 {
			t.Errorf("CDF does not invert Quantile for prior %d: got %v want %v", i, back, u[i])
		}
	}

	dst := make([]float64, 2)
	if out := m.PriorTransform(dst, u); &out[0] != &dst[0] {
		t.Error("PriorTransform did not reuse dst")
	}
}

func TestPriorTransformPanics(t *testing.T) {
	t.Parallel()
	m := Model{
		LogLike: func([]float64) float64 { return 0 },
		Priors:  []Prior{distuv.Uniform{Min: 0, Max: 1}},
	}
	defer func() {
		if recover() == nil {
			t.Error("expected panic for mismatched input length")
		}
	}()
	m.PriorTransform(nil, []float64{0.1, 0.2})
}

func TestWarningString(t *testing.T) {
	t.Parallel()
	for _, w := range []Warning{WarnFewLivePoints, WarnDegenerateBound, WarnStuckProposal, WarnNegativeH, WarnWeightSum} {
		if s := w.String(); s == "" {
			t.Errorf("empty string for warning %d", int(w))
		}
	}
	if s := Warning(99).String(); s != "Warning(99)" {
		t.Errorf("unexpected string for unknown warning: %q", s)
	}
}
