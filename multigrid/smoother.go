// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package multigrid

import (
	"gonum.org/v1/gonum/floats"

	"github.com/cpmech/tangentflow/bct"
)

// jacobiSweep performs one weighted-Jacobi smoothing sweep of A*x=rhs,
// x_i <- x_i + (rhs_i - (A*x)_i) / diag_i, returning the updated x (spec
// §4.3: "one pre-smoothing sweep of Jacobi ... one post-smoothing sweep").
func jacobiSweep(t *bct.Tree, x, rhs []float64) ([]float64, error) {
	r, err := residual(t, x, rhs)
	if err != nil {
		return nil, err
	}
	diag := t.Diag()
	out := append([]float64(nil), x...)
	for i := range out {
		out[i] += r[i] / diag[i]
	}
	return out, nil
}

// residual returns b - A*x.
func residual(t *bct.Tree, x, rhs []float64) ([]float64, error) {
	ax, err := t.ApplyMetric(x)
	if err != nil {
		return nil, err
	}
	out := append([]float64(nil), rhs...)
	floats.Sub(out, ax)
	return out, nil
}
