// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package multigrid

import (
	"gonum.org/v1/gonum/mat"

	"github.com/cpmech/tangentflow/bct"
	"github.com/cpmech/tangentflow/curve"
	"github.com/cpmech/tangentflow/tferr"
)

// Level is one resolution of the hierarchy: its curve, the BCT built over
// it, and (for every level but the coarsest) the edge map linking it to the
// next coarser level.
type Level struct {
	Curve *curve.Network
	BCT   *bct.Tree

	toFiner *EdgeMap // nil at the coarsest level

	coarseChol *mat.Cholesky // non-nil only at the coarsest level
}

// Hierarchy is the geometric multigrid stack used to precondition the outer
// CG solve (spec §4.3). Levels[0] is the finest (the curve the caller
// passed to New); Levels[len-1] is the coarsest, solved directly.
type Hierarchy struct {
	Levels []*Level

	alpha, beta, sep float64
}

// New builds a multigrid hierarchy over c, coarsening until either no
// further contraction is possible or the curve has at most minCoarseEdges
// edges, whichever comes first. alpha, beta, sep parametrize the BCT built
// at every level.
func New(c *curve.Network, alpha, beta, sep float64, minCoarseEdges int) (*Hierarchy, error) {
	if minCoarseEdges < 1 {
		minCoarseEdges = 1
	}
	h := &Hierarchy{alpha: alpha, beta: beta, sep: sep}

	cur := c
	for {
		t, err := bct.New(cur, sep, alpha, beta)
		if err != nil {
			return nil, err
		}
		h.Levels = append(h.Levels, &Level{Curve: cur, BCT: t})

		if cur.NumEdges() <= minCoarseEdges {
			break
		}
		coarse, edgeMap, err := coarsen(cur)
		if err != nil {
			return nil, err
		}
		if coarse == nil {
			break // no further coarsening possible
		}
		h.Levels[len(h.Levels)-1].toFiner = edgeMap
		cur = coarse
	}

	coarsest := h.Levels[len(h.Levels)-1]
	dense, err := bct.DenseReference(coarsest.Curve, alpha, beta)
	if err != nil {
		return nil, err
	}
	var chol mat.Cholesky
	if ok := chol.Factorize(dense); !ok {
		return nil, tferr.Wrap(tferr.ConstraintProjectionFailed, "coarsest-level metric is not positive definite; cannot factorize")
	}
	coarsest.coarseChol = &chol

	return h, nil
}

// NumLevels returns the depth of the hierarchy, including the finest and
// coarsest levels.
func (h *Hierarchy) NumLevels() int { return len(h.Levels) }

// Finest returns the finest level's BCT, the operator the outer CG solve
// applies.
func (h *Hierarchy) Finest() *bct.Tree { return h.Levels[0].BCT }

func (h *Hierarchy) validate() error {
	if len(h.Levels) == 0 {
		return tferr.Wrap(tferr.InvalidTopology, "multigrid hierarchy has no levels")
	}
	return nil
}
