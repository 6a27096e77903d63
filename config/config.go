// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config collects the tunable knobs of the tangent-point flow
// solver into one options struct, grounded on inp.Simulation's role as the
// single options value threaded through fem's solver -- simplified here to
// a plain struct since persisted scene files are out of scope.
package config

import (
	"github.com/cpmech/tangentflow/constraint"
	"github.com/cpmech/tangentflow/potential"
)

// FlowOptions parametrizes one FlowSolver: the energy exponents, the
// Barnes-Hut/multigrid admissibility and tolerance knobs, and the active
// constraint set.
type FlowOptions struct {
	Alpha, Beta float64
	Sep         float64

	UseMultigrid bool
	UseBarnesHut bool

	Constraints []constraint.Constraint

	// Potentials are additional energy terms (potential.New) summed with
	// the tangent-point energy and its gradient; e.g. an obstacle barrier
	// or a pin-bending regularizer. Empty by default.
	Potentials []potential.Potential

	SubdivisionLimit      int
	StepLimit             int
	TargetEdgeLengthScale float64

	CGTolerance float64
	CGMaxIter   int

	ArmijoC1              float64
	MaxLineSearchHalvings int

	ProjectionTolerance float64
	MaxProjectionIters  int

	SoboNormZeroTol float64

	MultigridMinCoarseEdges int
}

// DefaultFlowOptions returns the defaults named in spec.md §4.3-4.5:
// tangent-point exponents (alpha=3, beta=6, matching the S3/S8 test
// scenarios), admissibility ratio sep=1, CG relative residual 1e-2, Armijo
// c1=1e-4 with up to 16 halvings, back-projection tolerance 1e-6 with up to
// 4 Newton iterations, and near-minimum cosine threshold 1e-4.
func DefaultFlowOptions() FlowOptions {
	return FlowOptions{
		Alpha:                   3,
		Beta:                    6,
		Sep:                     1.0,
		UseMultigrid:            true,
		UseBarnesHut:            true,
		SubdivisionLimit:        8,
		StepLimit:               1000,
		TargetEdgeLengthScale:   2.0,
		CGTolerance:             1e-2,
		CGMaxIter:               200,
		ArmijoC1:                1e-4,
		MaxLineSearchHalvings:   16,
		ProjectionTolerance:     1e-6,
		MaxProjectionIters:      4,
		SoboNormZeroTol:         1e-4,
		MultigridMinCoarseEdges: 16,
	}
}
