// Copyright ©2026 The Nest Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package nestplot renders run diagnostics for nested sampling results
// using gonum.org/v1/plot. The functions return plots; callers choose
// how to save or display them.
package nestplot // import "github.com/mileslucas/nest/nestplot"

import (
	"errors"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/mileslucas/nest"
)

var errEmptyResult = errors.New("nestplot: result has no samples")

// Evidence plots the running log-evidence and the per-sample
// log-weight against iteration. A run that has integrated cleanly
// shows the log-weight rising to a peak and falling away while the
// log-evidence flattens.
func Evidence(r nest.Result) (*plot.Plot, error) {
	if len(r.Samples) == 0 {
		return nil, errEmptyResult
	}
	p := plot.New()
	p.Title.Text = "Evidence"
	p.X.Label.Text = "iteration"
	p.Y.Label.Text = "log Z, log wt"

	logZ := make(plotter.XYs, len(r.Samples))
	logWt := make(plotter.XYs, len(r.Samples))
	run := math.Inf(-1)
	for i, s := range r.Samples {
		if run == math.Inf(-1) {
			run = s.LogWt
		} else {
			run = logAddExp(run, s.LogWt)
		}
		logZ[i].X = float64(i + 1)
		logZ[i].Y = run
		logWt[i].X = float64(i + 1)
		logWt[i].Y = s.LogWt
	}

	zLine, err := plotter.NewLine(logZ)
	if err != nil {
		return nil, err
	}
	wtLine, err := plotter.NewLine(logWt)
	if err != nil {
		return nil, err
	}
	wtLine.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	p.Add(zLine, wtLine)
	p.Legend.Add("log Z", zLine)
	p.Legend.Add("log wt", wtLine)
	return p, nil
}

// Trace plots the dim-th parameter of every sample against iteration.
func Trace(r nest.Result, dim int) (*plot.Plot, error) {
	if len(r.Samples) == 0 {
		return nil, errEmptyResult
	}
	if dim < 0 || dim >= len(r.Samples[0].Theta) {
		return nil, errors.New("nestplot: parameter index out of range")
	}
	p := plot.New()
	p.Title.Text = "Trace"
	p.X.Label.Text = "iteration"
	p.Y.Label.Text = "θ"

	pts := make(plotter.XYs, len(r.Samples))
	for i, s := range r.Samples {
		pts[i].X = float64(i + 1)
		pts[i].Y = s.Theta[dim]
	}
	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}
	p.Add(sc)
	return p, nil
}

// Posterior plots parameter j against parameter i, dropping samples
// whose posterior weight is below 1% of the mean weight. It is a cheap
// stand-in for one panel of a corner plot.
func Posterior(r nest.Result, i, j int) (*plot.Plot, error) {
	if len(r.Samples) == 0 {
		return nil, errEmptyResult
	}
	d := len(r.Samples[0].Theta)
	if i < 0 || i >= d || j < 0 || j >= d {
		return nil, errors.New("nestplot: parameter index out of range")
	}
	p := plot.New()
	p.Title.Text = "Posterior"
	p.X.Label.Text = "θ_i"
	p.Y.Label.Text = "θ_j"

	var pts plotter.XYs
	for k, s := range r.Samples {
		if len(r.Weights) == len(r.Samples) && r.Weights[k] < 1e-2/float64(len(r.Samples)) {
			continue
		}
		pts = append(pts, plotter.XY{X: s.Theta[i], Y: s.Theta[j]})
	}
	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}
	p.Add(sc)
	return p, nil
}

// logAddExp returns log(exp(a) + exp(b)).
func logAddExp(a, b float64) float64 {
	if a < b {
		a, b = b, a
	}
	if math.IsInf(a, -1) {
		return a
	}
	return a + math.Log1p(math.Exp(b-a))
}
