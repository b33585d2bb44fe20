// Copyright ©2026 The Nest Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nest

import (
	"errors"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// logZInit is the starting running evidence. It is a very negative
// finite sentinel rather than -Inf because the information update
// multiplies exp(logZ-logZ') by (H+logZ), which is NaN for an
// infinite logZ.
const logZInit = -1e300

// Settings configures a Sampler. Zero-valued fields take the defaults
// documented on each field.
type Settings struct {
	// NActive is the number of live points N. It is required and must
	// be at least 2; at least twice the model dimension is
	// recommended, and WarnFewLivePoints is recorded below that.
	NActive int

	// Bound is the geometric envelope refit to the live set on the
	// update schedule. If Bound is nil, a single Ellipsoid is used.
	Bound Bound

	// Proposal generates replacement live points. If Proposal is nil,
	// Uniform is used. A walk or slice proposal is preceded by a
	// uniform phase until the hand-off thresholds MinNCall and MinEff
	// are crossed; set MinNCall negative to start with Proposal
	// immediately.
	Proposal Proposal

	// Enlarge is the volume enlargement factor applied to the bound
	// after every fit. If Enlarge is zero, 1.25 is used; values below
	// one are a configuration error.
	Enlarge float64

	// UpdateInterval is the number of iterations between bound refits.
	// If UpdateInterval is zero, round(0.6·NActive) is used; negative
	// values are a configuration error.
	UpdateInterval int

	// MinNCall is the number of likelihood calls before the uniform
	// phase may hand off to Proposal. If MinNCall is zero, 2·NActive
	// is used. A negative MinNCall disables the uniform phase.
	MinNCall int

	// MinEff is the sampling efficiency below which the uniform phase
	// hands off to Proposal. If MinEff is zero, 0.1 is used.
	MinEff float64

	// Src is the source of randomness for the run. If Src is nil, the
	// sampler is seeded from the global generator and runs are not
	// reproducible.
	Src rand.Source
}

// Sampler is a static nested sampler. It owns N live points, a
// geometric bound around them, and the running evidence and
// information moments; each Step replaces the worst live point and
// emits it as a weighted sample. Use NewSampler to construct.
type Sampler struct {
	model Model
	dim   int

	nactive        int
	enlarge        float64
	updateInterval int
	minNCall       int
	minEff         float64

	us     *mat.Dense // nactive×dim unit-cube coordinates
	thetas *mat.Dense // nactive×dim prior-space coordinates
	logls  []float64

	geom     Bound    // configured bound, refit on schedule
	bound    Bound    // last successfully fitted bound
	proposal Proposal // active proposal
	target   Proposal // configured proposal for the uniform hand-off

	rnd *rand.Rand

	logZ      float64
	h         float64
	logVol    float64
	prevLogWt float64
	ndecl     int
	niter     int
	ncall     int

	warnings  []Warning
	finalized bool
}

// NewSampler validates the settings, draws the initial live set from
// the prior, and fits the initial bound. Configuration problems are
// reported immediately; NewSampler panics only on a nil log-likelihood
// or an empty prior list.
func NewSampler(m Model, s Settings) (*Sampler, error) {
	if m.LogLike == nil {
		panic(badNoModel)
	}
	if len(m.Priors) == 0 {
		panic(badNoPriors)
	}
	d := len(m.Priors)

	n := s.NActive
	if n < 2 {
		return nil, ErrNActive
	}
	enlarge := s.Enlarge
	if enlarge == 0 {
		enlarge = 1.25
	}
	if enlarge < 1 {
		return nil, ErrEnlarge
	}
	interval := s.UpdateInterval
	if interval == 0 {
		interval = int(math.Round(0.6 * float64(n)))
		if interval < 1 {
			interval = 1
		}
	}
	if interval < 0 {
		return nil, ErrUpdateInterval
	}
	geom := s.Bound
	if geom == nil {
		geom = NewEllipsoid()
	}
	target := s.Proposal
	if target == nil {
		target = &Uniform{}
	}
	if needsKernel(target) {
		if _, ok := geom.(kerneler); !ok {
			return nil, ErrProposalBound
		}
	}
	minNCall := s.MinNCall
	if minNCall == 0 {
		minNCall = 2 * n
	}
	minEff := s.MinEff
	if minEff == 0 {
		minEff = 0.1
	}

	var rnd *rand.Rand
	if s.Src == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	} else {
		rnd = rand.New(s.Src)
	}

	smp := &Sampler{
		model:          m,
		dim:            d,
		nactive:        n,
		enlarge:        enlarge,
		updateInterval: interval,
		minNCall:       minNCall,
		minEff:         minEff,
		us:             mat.NewDense(n, d, nil),
		thetas:         mat.NewDense(n, d, nil),
		logls:          make([]float64, n),
		geom:           geom,
		bound:          NewUnitCube(d),
		rnd:            rnd,
		logZ:           logZInit,
		prevLogWt:      math.Inf(-1),
	}
	if n < 2*d {
		smp.warn(WarnFewLivePoints)
	}

	// The uniform phase runs until the hand-off thresholds are hit,
	// unless disabled or the target is itself Uniform.
	smp.target = target
	if _, uniform := target.(*Uniform); uniform || s.MinNCall < 0 {
		smp.proposal = target
	} else {
		smp.proposal = &Uniform{}
	}

	// Initial live set: uniform on the cube, mapped through the priors.
	for i := 0; i < n; i++ {
		u := smp.us.RawRowView(i)
		for j := range u {
			u[j] = rnd.Float64()
		}
		theta := smp.thetas.RawRowView(i)
		m.PriorTransform(theta, u)
		smp.logls[i] = m.LogLike(theta)
	}
	smp.ncall = n

	smp.refitBound(1 / float64(n))
	return smp, nil
}

// needsKernel reports whether p can only run against a bound that
// provides an ellipsoidal kernel.
func needsKernel(p Proposal) bool {
	switch p.(type) {
	case *Slice, *RSlice:
		return true
	}
	return false
}

// Dim returns the dimension of the model being sampled.
func (s *Sampler) Dim() int { return s.dim }

// NActive returns the number of live points.
func (s *Sampler) NActive() int { return s.nactive }

// LogZ returns the running log-evidence estimate.
func (s *Sampler) LogZ() float64 { return s.logZ }

// LogZErr returns the uncertainty of the log-evidence estimate,
// √(H/N).
func (s *Sampler) LogZErr() float64 {
	if s.h <= 0 {
		return 0
	}
	return math.Sqrt(s.h / float64(s.nactive))
}

// H returns the running information estimate.
func (s *Sampler) H() float64 { return s.h }

// NIter returns the number of iterations performed.
func (s *Sampler) NIter() int { return s.niter }

// NCall returns the number of log-likelihood evaluations performed.
func (s *Sampler) NCall() int { return s.ncall }

// Efficiency returns the ratio of iterations to likelihood calls.
func (s *Sampler) Efficiency() float64 {
	if s.ncall == 0 {
		return 1
	}
	return float64(s.niter) / float64(s.ncall)
}

// Warnings returns the anomalies recorded so far, at most one per
// kind, in order of first occurrence.
func (s *Sampler) Warnings() []Warning {
	return append([]Warning(nil), s.warnings...)
}

// DLogZ estimates how much the remaining live points could still add
// to the log-evidence: logaddexp(logZ, logZ_remain) − logZ with
// logZ_remain the maximum live log-likelihood times the remaining
// prior mass.
func (s *Sampler) DLogZ() float64 {
	logZRemain := floats.Max(s.logls) - float64(s.niter-1)/float64(s.nactive)
	return logAddExp(s.logZ, logZRemain) - s.logZ
}

// Step performs one nested-sampling iteration: the worst live point is
// credited with the expected prior shrinkage, folded into the running
// moments, emitted, and replaced by a proposal draw above its
// likelihood. Step panics if called after Finalize. A non-nil error
// comes from a proposal that could not produce a replacement; the
// sampler state remains valid and Step may be retried.
func (s *Sampler) Step() (Sample, error) {
	if s.finalized {
		panic("nest: Step called after Finalize")
	}
	// Running state restored when no replacement is found, so that a
	// retried Step credits the worst point only once.
	niter, logVol, logZ, h, ndecl, prevLogWt := s.niter, s.logVol, s.logZ, s.h, s.ndecl, s.prevLogWt
	undo := func() {
		s.niter, s.logVol, s.logZ, s.h, s.ndecl, s.prevLogWt = niter, logVol, logZ, h, ndecl, prevLogWt
	}
	s.niter++
	n := float64(s.nactive)

	j := floats.MinIdx(s.logls)
	logLStar := s.logls[j]

	if s.niter == 1 {
		s.logVol = math.Log(-math.Expm1(-1 / n))
	} else {
		s.logVol -= 1 / n
	}
	logWt := s.logVol + logLStar
	s.updateMoments(logLStar, logWt)
	if logWt < s.prevLogWt {
		s.ndecl++
	} else {
		s.ndecl = 0
	}
	s.prevLogWt = logWt

	out := Sample{
		U:      append([]float64(nil), s.us.RawRowView(j)...),
		Theta:  append([]float64(nil), s.thetas.RawRowView(j)...),
		LogL:   logLStar,
		LogVol: s.logVol,
		LogWt:  logWt,
	}

	// Scheduled refit: the live set still holds the outgoing point, so
	// the bound reflects the population after the previous replacement
	// and before this iteration's proposal.
	if s.niter%s.updateInterval == 0 {
		pointVol := math.Exp(-(float64(s.niter)-1)/n) / n
		s.refitBound(pointVol)
	}

	s.maybeHandOff()

	start := s.otherLivePoint(j)
	u, theta, logL, ncall, err := s.proposal.Propose(s.rnd, s.bound, &s.model, logLStar, start)
	s.ncall += ncall
	if err != nil {
		var stuck *StuckError
		if !errors.As(err, &stuck) {
			undo()
			return Sample{}, err
		}
		s.warn(WarnStuckProposal)
		s.switchFromStuck()
		u, theta, logL, ncall, err = s.proposal.Propose(s.rnd, s.bound, &s.model, logLStar, start)
		s.ncall += ncall
		if err != nil {
			undo()
			return Sample{}, err
		}
	}
	s.us.SetRow(j, u)
	s.thetas.SetRow(j, theta)
	s.logls[j] = logL

	return out, nil
}

// updateMoments folds one weighted sample into the running evidence
// and information using log-sum-exp.
func (s *Sampler) updateMoments(logL, logWt float64) {
	logZ := logAddExp(s.logZ, logWt)
	s.h = math.Exp(logWt-logZ)*logL + math.Exp(s.logZ-logZ)*(s.h+s.logZ) - logZ
	s.logZ = logZ
}

// refitBound refits the configured bound to the current live set in
// unit space and enlarges it. On a degenerate fit the previous bound
// is kept and WarnDegenerateBound recorded.
func (s *Sampler) refitBound(pointVol float64) {
	if err := s.geom.Fit(s.us, pointVol, s.rnd); err != nil {
		s.warn(WarnDegenerateBound)
		return
	}
	s.geom.Enlarge(s.enlarge)
	s.bound = s.geom
}

// maybeHandOff switches the uniform phase over to the configured
// proposal once enough likelihood calls have been spent and the
// efficiency has dropped.
func (s *Sampler) maybeHandOff() {
	if s.proposal == s.target {
		return
	}
	if _, uniform := s.proposal.(*Uniform); !uniform {
		return
	}
	if s.ncall > s.minNCall && s.Efficiency() < s.minEff {
		s.proposal = s.target
	}
}

// switchFromStuck replaces a stuck uniform proposal with the
// configured target, or a default random walk when the target is the
// stuck proposal itself.
func (s *Sampler) switchFromStuck() {
	if s.proposal != s.target {
		s.proposal = s.target
		return
	}
	if _, uniform := s.target.(*Uniform); uniform {
		s.proposal = &RWalk{}
	}
}

// otherLivePoint returns a copy of a live point chosen uniformly among
// the rows other than j.
func (s *Sampler) otherLivePoint(j int) []float64 {
	k := s.rnd.IntN(s.nactive - 1)
	if k >= j {
		k++
	}
	return append([]float64(nil), s.us.RawRowView(k)...)
}

// warn records w if it has not been recorded before.
func (s *Sampler) warn(w Warning) {
	for _, have := range s.warnings {
		if have == w {
			return
		}
	}
	s.warnings = append(s.warnings, w)
}

// logAddExp returns log(exp(a) + exp(b)).
func logAddExp(a, b float64) float64 {
	return floats.LogSumExp([]float64{a, b})
}
