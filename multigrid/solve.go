// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package multigrid

import (
	"gonum.org/v1/gonum/linsolve"
	"gonum.org/v1/gonum/mat"

	"github.com/cpmech/tangentflow/tferr"
)

// operatorAdapter exposes a BCT as a linsolve.Operator. The metric is
// symmetric, so trans is ignored.
type operatorAdapter struct {
	t interface {
		NumEdges() int
		ApplyMetric([]float64) ([]float64, error)
	}
}

func (o operatorAdapter) MulVecTo(dst *mat.VecDense, trans bool, x mat.Vector) {
	n := o.t.NumEdges()
	v := make([]float64, n)
	for i := 0; i < n; i++ {
		v[i] = x.AtVec(i)
	}
	y, err := o.t.ApplyMetric(v)
	if err != nil {
		// ApplyMetric only fails on a length mismatch, which cannot happen
		// here since v is built from the operator's own dimension.
		panic(err)
	}
	for i, val := range y {
		dst.SetVec(i, val)
	}
}

// Solve runs the outer CG iteration of spec §4.3: the metric's finest-level
// BCT is the operator, and one V-cycle per iteration is the preconditioner.
func (h *Hierarchy) Solve(rhs []float64, tol float64, maxIter int) ([]float64, error) {
	if err := h.validate(); err != nil {
		return nil, err
	}
	n := len(rhs)
	allZero := true
	for _, v := range rhs {
		if v != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		return make([]float64, n), nil
	}

	b := mat.NewVecDense(n, append([]float64(nil), rhs...))
	op := operatorAdapter{t: h.Finest()}

	settings := &linsolve.Settings{
		Tolerance:     tol,
		MaxIterations: maxIter,
		PreconSolve: func(dst *mat.VecDense, rhsVec mat.Vector) error {
			r := make([]float64, n)
			for i := 0; i < n; i++ {
				r[i] = rhsVec.AtVec(i)
			}
			z, err := h.VCycle(r)
			if err != nil {
				return err
			}
			for i, val := range z {
				dst.SetVec(i, val)
			}
			return nil
		},
	}

	sys := linsolve.System{A: op, B: b}
	result, err := linsolve.Iterative(sys, &linsolve.CG{}, settings)
	if err != nil {
		return nil, tferr.Wrap(tferr.SolverNonConvergent, "multigrid-preconditioned CG failed: %v", err)
	}
	return result.X.RawVector().Data, nil
}
