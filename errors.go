// Copyright ©2026 The Nest Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nest

import (
	"errors"
	"fmt"
)

// Configuration errors returned by NewSampler.
var (
	// ErrNActive indicates that fewer than two live points were requested.
	ErrNActive = errors.New("nest: too few live points")
	// ErrUpdateInterval indicates a negative bound update interval.
	ErrUpdateInterval = errors.New("nest: negative update interval")
	// ErrEnlarge indicates a bound enlargement factor below one.
	ErrEnlarge = errors.New("nest: enlargement factor less than one")
	// ErrProposalBound indicates a proposal that needs ellipsoid axes
	// combined with a bound that has none.
	ErrProposalBound = errors.New("nest: proposal requires an ellipsoidal bound")
)

// errDegenerate is reported by bound fits whose sample covariance stays
// singular after diagonal regularization. The sampler recovers by
// keeping the previous bound and records WarnDegenerateBound.
var errDegenerate = errors.New("nest: degenerate covariance in bound fit")

// StuckError is returned by a proposal that exhausted its rejection
// budget without finding a point above the likelihood threshold.
type StuckError struct {
	// LogLStar is the threshold in force when the proposal gave up.
	LogLStar float64
	// NDraw is the number of rejected draws.
	NDraw int
}

func (e *StuckError) Error() string {
	return fmt.Sprintf("nest: proposal stuck after %d draws below logL* = %g", e.NDraw, e.LogLStar)
}

// Warning identifies a recoverable anomaly observed during a run. Each
// kind is recorded at most once on the Sampler and surfaced through
// Result.Warnings; none of them stop the run.
type Warning int

const (
	// WarnFewLivePoints is recorded when NActive < 2·dim.
	WarnFewLivePoints Warning = iota + 1
	// WarnDegenerateBound is recorded when a bound refit failed and the
	// previous bound was kept.
	WarnDegenerateBound
	// WarnStuckProposal is recorded when the uniform proposal ran out of
	// budget and the sampler switched to the configured proposal, or to
	// a random walk when Uniform itself is configured.
	WarnStuckProposal
	// WarnNegativeH is recorded when the information went negative
	// beyond floating point noise before the final clamp.
	WarnNegativeH
	// WarnWeightSum is recorded when the normalized weights failed the
	// finalization sanity check.
	WarnWeightSum
)

func (w Warning) String() string {
	switch w {
	case WarnFewLivePoints:
		return "fewer live points than twice the dimension"
	case WarnDegenerateBound:
		return "degenerate bound fit, previous bound kept"
	case WarnStuckProposal:
		return "uniform proposal stuck, switched proposal"
	case WarnNegativeH:
		return "information H negative beyond floating point tolerance"
	case WarnWeightSum:
		return "normalized weights do not sum to one within tolerance"
	}
	return fmt.Sprintf("Warning(%d)", int(w))
}

// Panic strings for API misuse.
const (
	badInputLength  = "nest: input slice length mismatch"
	badOutputLength = "nest: output slice length mismatch"
	badNoModel      = "nest: nil log-likelihood function"
	badNoPriors     = "nest: model has no priors"
	badUnfitted     = "nest: bound has not been fitted"
)

// reuseAs returns x if it has length n, allocating a new slice if x is
// nil. reuseAs panics if x is non-nil with a different length.
func reuseAs(x []float64, n int) []float64 {
	if x == nil {
		return make([]float64, n)
	}
	if len(x) != n {
		panic(badOutputLength)
	}
	return x
}
