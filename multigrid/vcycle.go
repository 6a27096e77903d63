// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package multigrid

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// VCycle applies one multigrid V-cycle as an approximate solve of
// A*x = rhs on the finest level, used as the CG preconditioner (spec §4.3:
// "Outer solve: CG preconditioned by one V-cycle per iteration").
func (h *Hierarchy) VCycle(rhs []float64) ([]float64, error) {
	if err := h.validate(); err != nil {
		return nil, err
	}
	return h.vcycle(0, rhs)
}

func (h *Hierarchy) vcycle(level int, rhs []float64) ([]float64, error) {
	lvl := h.Levels[level]

	if level == len(h.Levels)-1 {
		x := mat.NewVecDense(len(rhs), nil)
		b := mat.NewVecDense(len(rhs), rhs)
		if err := lvl.coarseChol.SolveVecTo(x, b); err != nil {
			return nil, err
		}
		return x.RawVector().Data, nil
	}

	x := make([]float64, len(rhs))
	x, err := jacobiSweep(lvl.BCT, x, rhs)
	if err != nil {
		return nil, err
	}

	res, err := residual(lvl.BCT, x, rhs)
	if err != nil {
		return nil, err
	}
	coarseRes := lvl.toFiner.Restrict(res)

	coarseCorr, err := h.vcycle(level+1, coarseRes)
	if err != nil {
		return nil, err
	}
	fineCorr := lvl.toFiner.Prolong(coarseCorr)
	floats.Add(x, fineCorr)

	x, err = jacobiSweep(lvl.BCT, x, rhs)
	if err != nil {
		return nil, err
	}
	return x, nil
}
