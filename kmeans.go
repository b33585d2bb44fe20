// Copyright ©2026 The Nest Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nest

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// maxTwoMeansIter caps the Lloyd iterations of a single clustering.
const maxTwoMeansIter = 100

// twoMeans partitions the rows of points into two clusters by Lloyd
// iteration and returns the per-row assignment, each entry 0 or 1. The
// centers are seeded from two distinct rows chosen with rnd, so the
// result is deterministic for a fixed generator state. An emptied
// cluster is reseeded from a random row.
func twoMeans(points mat.Matrix, rnd *rand.Rand) []int {
	n, d := points.Dims()
	assign := make([]int, n)
	if n < 2 {
		return assign
	}

	i0 := rnd.IntN(n)
	i1 := rnd.IntN(n - 1)
	if i1 >= i0 {
		i1++
	}
	centers := [2][]float64{make([]float64, d), make([]float64, d)}
	mat.Row(centers[0], i0, points)
	mat.Row(centers[1], i1, points)

	row := make([]float64, d)
	counts := make([]int, 2)
	for iter := 0; iter < maxTwoMeansIter; iter++ {
		changed := false
		for i := 0; i < n; i++ {
			mat.Row(row, i, points)
			k := 0
			if floats.Distance(row, centers[1], 2) < floats.Distance(row, centers[0], 2) {
				k = 1
			}
			if assign[i] != k {
				assign[i] = k
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}

		for k := range centers {
			for j := range centers[k] {
				centers[k][j] = 0
			}
			counts[k] = 0
		}
		for i := 0; i < n; i++ {
			mat.Row(row, i, points)
			floats.Add(centers[assign[i]], row)
			counts[assign[i]]++
		}
		for k := range centers {
			if counts[k] == 0 {
				mat.Row(centers[k], rnd.IntN(n), points)
				continue
			}
			floats.Scale(1/float64(counts[k]), centers[k])
		}
	}
	return assign
}
