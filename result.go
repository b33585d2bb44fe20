// Copyright ©2026 The Nest Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nest

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

// epsilon is the double-precision machine epsilon.
const epsilon = 0x1p-52

// Sample is one weighted draw emitted by the sampler. LogVol is the
// log prior mass credited to the draw and LogWt = LogVol + LogL its
// contribution to the evidence.
type Sample struct {
	// U is the point in the unit hypercube.
	U []float64
	// Theta is the prior-space image of U.
	Theta []float64
	// LogL is the log-likelihood at Theta.
	LogL float64
	// LogVol is the log prior mass assigned to the sample.
	LogVol float64
	// LogWt is LogVol + LogL.
	LogWt float64
}

// Result holds the outcome of a completed run.
type Result struct {
	// LogZ is the log-evidence estimate and LogZErr its uncertainty
	// √(H/N).
	LogZ, LogZErr float64
	// H is the information.
	H float64
	// NIter is the number of iterations and NCall the number of
	// likelihood evaluations, including initialization.
	NIter, NCall int
	// Samples holds the emitted draws in iteration order followed by
	// the finalization sweep of the live points.
	Samples []Sample
	// Weights holds the normalized posterior weight of each sample.
	Weights []float64
	// Warnings lists the anomalies recorded during the run, at most
	// one per kind.
	Warnings []Warning
}

// Finalize integrates the remaining live points into the evidence and
// returns them as samples. Each live point is credited an equal share
// of the residual prior mass at the common log-volume
// −niter/N − log N. Tiny negative information is clamped to zero;
// WarnNegativeH is recorded if the excursion exceeds √ε.
//
// Finalize may be called after a run has been stopped at any iteration
// boundary. Calling it a second time returns nil without changing the
// state.
func (s *Sampler) Finalize() []Sample {
	if s.finalized {
		return nil
	}
	s.finalized = true
	n := float64(s.nactive)
	logVol := -float64(s.niter)/n - math.Log(n)

	out := make([]Sample, 0, s.nactive)
	for j := 0; j < s.nactive; j++ {
		logWt := logVol + s.logls[j]
		s.updateMoments(s.logls[j], logWt)
		out = append(out, Sample{
			U:      append([]float64(nil), s.us.RawRowView(j)...),
			Theta:  append([]float64(nil), s.thetas.RawRowView(j)...),
			LogL:   s.logls[j],
			LogVol: logVol,
			LogWt:  logWt,
		})
	}

	if s.h < 0 {
		if -s.h > math.Sqrt(epsilon) {
			s.warn(WarnNegativeH)
		}
		s.h = 0
	}
	return out
}

// Run iterates Step until any of the given convergence predicates
// fires, finalizes, and returns the packaged result. With no
// predicates, DLogZConvergence with its default tolerance is used.
func (s *Sampler) Run(conv ...Convergence) (Result, error) {
	if len(conv) == 0 {
		conv = []Convergence{DLogZConvergence{}}
	}
	var samples []Sample
	for {
		smp, err := s.Step()
		if err != nil {
			return Result{}, err
		}
		samples = append(samples, smp)
		stop := false
		for _, c := range conv {
			if c.Converged(s) {
				stop = true
				break
			}
		}
		if stop {
			break
		}
	}
	samples = append(samples, s.Finalize()...)
	return s.result(samples), nil
}

// result normalizes the sample weights and packages the final state.
// The pre-normalization weight sum is checked against one within
// 3·√(H/N), or 10⁻³ when H is zero; WarnWeightSum is recorded on a
// mismatch.
func (s *Sampler) result(samples []Sample) Result {
	w := make([]float64, len(samples))
	var sum float64
	for i, smp := range samples {
		w[i] = math.Exp(smp.LogWt - s.logZ)
		sum += w[i]
	}
	tol := 1e-3
	if s.h > 0 {
		tol = 3 * math.Sqrt(s.h/float64(s.nactive))
	}
	if math.Abs(sum-1) > tol {
		s.warn(WarnWeightSum)
	}
	if sum > 0 {
		floats.Scale(1/sum, w)
	}
	return Result{
		LogZ:     s.logZ,
		LogZErr:  s.LogZErr(),
		H:        s.h,
		NIter:    s.niter,
		NCall:    s.ncall,
		Samples:  samples,
		Weights:  w,
		Warnings: s.Warnings(),
	}
}

// Resample draws n approximately independent equal-weight posterior
// points from a result by systematic resampling of its weighted
// samples. The returned points are copies of the prior-space samples.
// The result must carry one normalized weight per sample.
func Resample(rnd *rand.Rand, r Result, n int) [][]float64 {
	if len(r.Samples) == 0 || len(r.Weights) != len(r.Samples) || n <= 0 {
		return nil
	}
	f64 := rand.Float64
	if rnd != nil {
		f64 = rnd.Float64
	}
	out := make([][]float64, 0, n)
	u := f64() / float64(n)
	var cum float64
	i := 0
	for k := 0; k < n; k++ {
		target := u + float64(k)/float64(n)
		for i < len(r.Weights)-1 && cum+r.Weights[i] < target {
			cum += r.Weights[i]
			i++
		}
		out = append(out, append([]float64(nil), r.Samples[i].Theta...))
	}
	return out
}
