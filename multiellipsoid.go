// Copyright ©2026 The Nest Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nest

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// MultiEllipsoid bounds the live set with a union of ellipsoids found
// by recursive two-means clustering. A cluster is split whenever its
// single-ellipsoid fit is more than twice the expected volume and both
// halves support their own fits; this lets the bound track separated
// posterior modes. The zero value is unfitted; Fit must succeed before
// Sample, Contains or Volume are called.
type MultiEllipsoid struct {
	ells []*Ellipsoid
	vol  float64
	dim  int
}

// NewMultiEllipsoid returns an unfitted multi-ellipsoid bound.
func NewMultiEllipsoid() *MultiEllipsoid {
	return &MultiEllipsoid{}
}

// Fit refits the union to the rows of points. Recursion depth is
// capped at ⌈log₂ n⌉. A failed root fit leaves the receiver unchanged
// and returns a non-nil error.
func (m *MultiEllipsoid) Fit(points mat.Matrix, pointVol float64, rnd *rand.Rand) error {
	n, d := points.Dims()
	depth := int(math.Ceil(math.Log2(float64(n))))
	ells, err := fitEllipsoids(points, pointVol, rnd, depth)
	if err != nil {
		return err
	}
	var vol float64
	for _, e := range ells {
		vol += e.Volume()
	}
	m.ells = ells
	m.vol = vol
	m.dim = d
	return nil
}

// fitEllipsoids fits one ellipsoid to points and recursively attempts
// a two-means split while the fit volume substantially exceeds the
// n·pointVol target. A split is rejected when a child has fewer than
// d+1 points, a child fit degenerates, or the children sum to more
// volume than the parent.
func fitEllipsoids(points mat.Matrix, pointVol float64, rnd *rand.Rand, depth int) ([]*Ellipsoid, error) {
	n, d := points.Dims()
	parent := NewEllipsoid()
	if err := parent.Fit(points, pointVol, rnd); err != nil {
		return nil, err
	}
	keep := []*Ellipsoid{parent}
	if depth <= 0 || pointVol <= 0 || parent.Volume() <= 2*float64(n)*pointVol {
		return keep, nil
	}

	assign := twoMeans(points, rnd)
	var n1 int
	for _, k := range assign {
		n1 += k
	}
	n0 := n - n1
	if n0 < d+1 || n1 < d+1 {
		return keep, nil
	}
	sub0 := mat.NewDense(n0, d, nil)
	sub1 := mat.NewDense(n1, d, nil)
	row := make([]float64, d)
	var j0, j1 int
	for i, k := range assign {
		mat.Row(row, i, points)
		if k == 0 {
			sub0.SetRow(j0, row)
			j0++
		} else {
			sub1.SetRow(j1, row)
			j1++
		}
	}

	left, err := fitEllipsoids(sub0, pointVol, rnd, depth-1)
	if err != nil {
		return keep, nil
	}
	right, err := fitEllipsoids(sub1, pointVol, rnd, depth-1)
	if err != nil {
		return keep, nil
	}
	var vol float64
	for _, e := range left {
		vol += e.Volume()
	}
	for _, e := range right {
		vol += e.Volume()
	}
	if vol > parent.Volume() {
		return keep, nil
	}
	return append(left, right...), nil
}

// Enlarge scales the volume of every member ellipsoid by factor.
func (m *MultiEllipsoid) Enlarge(factor float64) {
	for _, e := range m.ells {
		e.Enlarge(factor)
	}
	m.vol *= factor
}

// Sample draws a point uniformly from the union: an ellipsoid is
// chosen with probability proportional to its volume, a point drawn
// from it, and the draw accepted with probability 1/k where k is the
// number of member ellipsoids containing it. The rejection corrects
// for over-counting of overlap regions.
//
// If dst is not nil, the sample will be stored in-place into dst and
// returned, otherwise a new slice will be allocated first.
func (m *MultiEllipsoid) Sample(dst []float64, rnd *rand.Rand) []float64 {
	if len(m.ells) == 0 {
		panic(badUnfitted)
	}
	dst = reuseAs(dst, m.dim)
	f64 := rand.Float64
	if rnd != nil {
		f64 = rnd.Float64
	}
	for {
		t := f64() * m.vol
		i := 0
		for ; i < len(m.ells)-1; i++ {
			t -= m.ells[i].Volume()
			if t <= 0 {
				break
			}
		}
		m.ells[i].Sample(dst, rnd)

		k := 0
		for _, e := range m.ells {
			if e.Contains(dst) {
				k++
			}
		}
		if k <= 1 || f64() < 1/float64(k) {
			return dst
		}
	}
}

// Contains reports whether any member ellipsoid contains u.
func (m *MultiEllipsoid) Contains(u []float64) bool {
	for _, e := range m.ells {
		if e.Contains(u) {
			return true
		}
	}
	return false
}

// Volume returns the summed volume of the member ellipsoids. Overlaps
// are counted once per member.
func (m *MultiEllipsoid) Volume() float64 { return m.vol }

// Len returns the number of member ellipsoids.
func (m *MultiEllipsoid) Len() int { return len(m.ells) }

// kernel returns a member ellipsoid containing u, chosen uniformly
// when several do, falling back to the nearest member when none does.
func (m *MultiEllipsoid) kernel(u []float64, rnd *rand.Rand) *Ellipsoid {
	if len(m.ells) == 0 {
		panic(badUnfitted)
	}
	var hits []*Ellipsoid
	for _, e := range m.ells {
		if e.Contains(u) {
			hits = append(hits, e)
		}
	}
	switch len(hits) {
	case 0:
		best := m.ells[0]
		bestDist := best.mahalanobis(u)
		for _, e := range m.ells[1:] {
			if d := e.mahalanobis(u); d < bestDist {
				best, bestDist = e, d
			}
		}
		return best
	case 1:
		return hits[0]
	}
	if rnd == nil {
		return hits[rand.IntN(len(hits))]
	}
	return hits[rnd.IntN(len(hits))]
}
