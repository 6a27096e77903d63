// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package flow orchestrates one tangent-point gradient-flow step (spec.md
// §4.5): build the BVH, take the L2 gradient, project it to the Sobolev
// metric's constraint null space, line-search, back-project, and subdivide
// when the curve has coarsened too far. Grounded on fem's time-stepping
// solver (fem/solver*.go) in overall shape: assemble, solve, accept-or-
// reject, advance -- simplified to a single curve rather than a discretized
// PDE.
package flow

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/cpmech/tangentflow/bvh"
	"github.com/cpmech/tangentflow/config"
	"github.com/cpmech/tangentflow/constraint"
	"github.com/cpmech/tangentflow/curve"
	"github.com/cpmech/tangentflow/kernel"
	"github.com/cpmech/tangentflow/multigrid"
	"github.com/cpmech/tangentflow/tferr"
)

// Solver drives the gradient flow of one CurveNetwork. It owns the
// topology-dependent structures (BCT, multigrid hierarchy, constraint
// projector) and rebuilds them only when Subdivide has run.
type Solver struct {
	opts config.FlowOptions
	kern *kernel.TangentPoint

	net *curve.Network

	mg   *multigrid.Hierarchy
	proj *constraint.Projector

	initialAvgLen float64
	lastStep      float64
	stepCount     int
	subdivCount   int
}

// New builds a Solver for net under opts. The initial average edge length
// is recorded as the subdivision-trigger baseline (spec §4.5 step 7).
func New(net *curve.Network, opts config.FlowOptions) (*Solver, error) {
	k, err := kernel.New(opts.Alpha, opts.Beta)
	if err != nil {
		return nil, err
	}
	s := &Solver{
		opts:          opts,
		kern:          k,
		net:           net,
		initialAvgLen: net.AverageEdgeLength(),
	}
	if err := s.rebuildTopology(); err != nil {
		return nil, err
	}
	return s, nil
}

// Curve returns the solver's current curve network.
func (s *Solver) Curve() *curve.Network { return s.net }

// rebuildTopology constructs the multigrid hierarchy and constraint
// projector for the current topology. Called on New and after every
// Subdivide, since both are ephemeral views invalidated by a topology
// change (spec §4.2 "Positions may change between steps; topology is
// immutable within a step").
//
// When opts.UseMultigrid is false, minCoarseEdges is forced to the curve's
// own edge count so multigrid.New builds a single, uncoarsened level: its
// coarsest-level dense Cholesky factorization then covers the full metric
// exactly, and Hierarchy.Solve's CG converges in one iteration against that
// exact preconditioner -- an exact direct solve without duplicating the
// dense-assembly path bct.DenseReference already provides.
func (s *Solver) rebuildTopology() error {
	minCoarse := s.opts.MultigridMinCoarseEdges
	if !s.opts.UseMultigrid {
		minCoarse = s.net.NumEdges()
	}
	mg, err := multigrid.New(s.net, s.opts.Alpha, s.opts.Beta, s.opts.Sep, minCoarse)
	if err != nil {
		return err
	}
	s.mg = mg
	proj, err := constraint.New(s.net, mg, s.opts.Constraints, s.opts.CGTolerance, s.opts.CGMaxIter)
	if err != nil {
		return err
	}
	s.proj = proj
	return nil
}

// energy returns the total energy (tangent-point + configured potentials)
// of net, used by the line search to evaluate trial steps. When
// opts.UseBarnesHut is false the tangent-point term is evaluated by direct
// O(m^2) summation instead of the Barnes-Hut traversal.
func (s *Solver) energy(net *curve.Network) (float64, error) {
	bh, err := bvh.New(net, s.opts.Sep)
	if err != nil {
		return 0, err
	}
	var total float64
	if s.opts.UseBarnesHut {
		total = bh.Energy(s.kern)
	} else {
		total = bh.DirectEnergy(s.kern)
	}
	for _, p := range s.opts.Potentials {
		total += p.Energy(net)
	}
	return total, nil
}

// l2Gradient returns the vertex-indexed L2 gradient of the total energy at
// net: the BVH's tangent-point gradient (or its direct O(m^2) counterpart
// when opts.UseBarnesHut is false) plus every configured potential's
// gradient, summed vertex-wise.
func (s *Solver) l2Gradient(net *curve.Network) ([][3]float64, *bvh.Tree, error) {
	bh, err := bvh.New(net, s.opts.Sep)
	if err != nil {
		return nil, nil, err
	}
	var g [][3]float64
	if s.opts.UseBarnesHut {
		g = bh.Gradient(net, s.kern)
	} else {
		g = bh.DirectGradient(net, s.kern)
	}
	for _, p := range s.opts.Potentials {
		pg := p.Gradient(net)
		for v := range g {
			g[v][0] += pg[v][0]
			g[v][1] += pg[v][1]
			g[v][2] += pg[v][2]
		}
	}
	return g, bh, nil
}

// StepResult reports the outcome of one Step call.
type StepResult struct {
	Accepted      bool
	StepSize      float64
	Energy        float64
	CosineToGhat  float64
	SoboNormZero  bool
	Subdivided    bool
	ConstraintErr float64
}

// Step performs one gradient-flow iteration (spec §4.5, numbered to match):
//  1. L2 gradient via BVH.
//  2. BCT/multigrid already current (rebuilt only after Subdivide).
//  3. Sobolev gradient ghat = A^-1 g projected to ker(J) via the projector.
//  4. Armijo backtracking line search.
//  5. Back-projection on acceptance.
//  6. Near-minimum cosine check.
//  7. Subdivision if the curve has coarsened past the trigger.
func (s *Solver) Step() (StepResult, error) {
	if s.opts.StepLimit > 0 && s.stepCount >= s.opts.StepLimit {
		return StepResult{}, tferr.Wrap(tferr.StepLimitExceeded, "step limit of %d reached", s.opts.StepLimit)
	}
	s.stepCount++

	g, _, err := s.l2Gradient(s.net)
	if err != nil {
		return StepResult{}, err
	}

	gEdge := bvh.EdgeGradient(s.net, g)
	ghatEdge, err := s.proj.Project(gEdge)
	if err != nil {
		return StepResult{}, err
	}

	e0, err := s.energy(s.net)
	if err != nil {
		return StepResult{}, err
	}

	inner := dotEdge(gEdge, ghatEdge)
	normG := normEdge(gEdge)
	normGhat := normEdge(ghatEdge)

	ghatVert := scatterEdgeToVertex(s.net, ghatEdge)

	result, trial, err := s.lineSearch(e0, inner, ghatVert)
	if err != nil {
		return StepResult{}, err
	}
	result.Energy = e0

	if normG > 0 && normGhat > 0 {
		result.CosineToGhat = inner / (normG * normGhat)
	}
	if result.CosineToGhat <= s.opts.SoboNormZeroTol {
		result.SoboNormZero = true
	}

	// trial is a fresh clone (applyStep never aliases s.net), so back-project
	// it before committing: on tferr.ConstraintProjectionFailed the step is
	// rolled back and s.net is left at its pre-step value (spec §7).
	if err := s.proj.BackProject(trial, s.opts.ProjectionTolerance, s.opts.MaxProjectionIters); err != nil {
		return StepResult{}, err
	}
	s.net = trial
	result.ConstraintErr = constraintDrift(s.opts.Constraints, s.net)

	if s.net.AverageEdgeLength() > s.opts.TargetEdgeLengthScale*s.initialAvgLen &&
		(s.opts.SubdivisionLimit <= 0 || s.subdivCount < s.opts.SubdivisionLimit) {
		s.net = s.net.Subdivide()
		if err := s.rebuildTopology(); err != nil {
			return result, err
		}
		s.subdivCount++
		result.Subdivided = true
	}

	return result, nil
}

// lineSearch runs the Armijo backtracking search of spec §4.5 step 4,
// starting from twice the previously accepted step (or 1 on the first
// call), and returns the accepted trial curve.
func (s *Solver) lineSearch(e0, inner float64, ghatVert [][3]float64) (StepResult, *curve.Network, error) {
	t := 2 * s.lastStep
	if t <= 0 {
		t = 1
	}
	for i := 0; i <= s.opts.MaxLineSearchHalvings; i++ {
		trial := applyStep(s.net, ghatVert, t)
		eTrial, err := s.energy(trial)
		if err != nil {
			return StepResult{}, nil, err
		}
		if eTrial <= e0-s.opts.ArmijoC1*t*inner {
			s.lastStep = t
			return StepResult{Accepted: true, StepSize: t}, trial, nil
		}
		t *= 0.5
	}
	return StepResult{}, nil, tferr.Wrap(tferr.LineSearchExhausted, "line search exhausted after %d halvings", s.opts.MaxLineSearchHalvings)
}

// applyStep returns a new network at x - t*ghat, leaving net untouched.
func applyStep(net *curve.Network, ghat [][3]float64, t float64) *curve.Network {
	trial := net.Clone()
	for v := 0; v < trial.NumVertices(); v++ {
		p := trial.VertexPos(v)
		d := r3.Vec{X: ghat[v][0], Y: ghat[v][1], Z: ghat[v][2]}
		trial.SetVertexPos(v, r3.Sub(p, r3.Scale(t, d)))
	}
	return trial
}

// scatterEdgeToVertex splits each edge-indexed vector equally onto its two
// endpoints: half the transpose of bvh.EdgeGradient's vertex-to-edge
// lumping (not its inverse).
func scatterEdgeToVertex(c *curve.Network, edgeVals []r3.Vec) [][3]float64 {
	out := make([][3]float64, c.NumVertices())
	for e, val := range edgeVals {
		v0, v1 := c.EdgeVerts(e)
		half := r3.Scale(0.5, val)
		out[v0][0] += half.X
		out[v0][1] += half.Y
		out[v0][2] += half.Z
		out[v1][0] += half.X
		out[v1][1] += half.Y
		out[v1][2] += half.Z
	}
	return out
}

// constraintDrift returns ||phi(x)|| across all active constraints,
// reported alongside each step for callers monitoring convergence.
func constraintDrift(constraints []constraint.Constraint, net *curve.Network) float64 {
	var all []float64
	for _, c := range constraints {
		all = append(all, c.Drift(net)...)
	}
	return floats.Norm(all, 2)
}

func dotEdge(a, b []r3.Vec) float64 {
	var s float64
	for i := range a {
		s += r3.Dot(a[i], b[i])
	}
	return s
}

func normEdge(a []r3.Vec) float64 {
	var s float64
	for _, v := range a {
		s += r3.Dot(v, v)
	}
	if s <= 0 {
		return 0
	}
	return math.Sqrt(s)
}
