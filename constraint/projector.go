// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package constraint

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/cpmech/tangentflow/curve"
	"github.com/cpmech/tangentflow/multigrid"
	"github.com/cpmech/tangentflow/tferr"
)

// Projector implements the Schur-complement constraint projection and
// back-projection of spec §4.4. The constraint Jacobian is frozen at the
// configuration New is called with; flow.Solver builds a Projector when it
// is created and again after each Subdivide, and reuses it for every step
// in between, for both the gradient projection and the post-line-search
// back-projection.
type Projector struct {
	net         *curve.Network
	mg          *multigrid.Hierarchy
	constraints []Constraint
	cgTol       float64
	cgMaxIter   int

	jx, jy, jz []edgeRow  // one row per stacked constraint-scalar-row
	ainvX      [][]float64 // A^-1 applied to jx[k], dense length m
	ainvY      [][]float64
	ainvZ      [][]float64
	schur      *mat.Cholesky // (c x c), S[k,l] = jx_k.ainvX_l + jy_k.ainvY_l + jz_k.ainvZ_l
}

// New builds a Projector for the given constraint set, precomputing the
// pulled-back Jacobian rows and the Schur matrix's Cholesky factorization.
// cgTol/cgMaxIter parametrize the inner multigrid-preconditioned CG solves
// (spec §4.3's linear SPD solve, FlowOptions.CGTolerance/CGMaxIter) -- a
// separate, looser budget from the Newton back-projection's own tol/maxIters
// passed directly to BackProject.
// Returns tferr.ConstraintProjectionFailed if the Schur matrix is not
// positive definite (over-constrained or redundant constraint set).
func New(net *curve.Network, mg *multigrid.Hierarchy, constraints []Constraint, cgTol float64, cgMaxIter int) (*Projector, error) {
	p := &Projector{net: net, mg: mg, constraints: constraints, cgTol: cgTol, cgMaxIter: cgMaxIter}
	if len(constraints) == 0 {
		return p, nil
	}

	for _, cst := range constraints {
		for _, row := range cst.VertexJacobian(net) {
			jx, jy, jz := pullbackRow(row, net)
			p.jx = append(p.jx, jx)
			p.jy = append(p.jy, jy)
			p.jz = append(p.jz, jz)
		}
	}

	m := net.NumEdges()
	c := len(p.jx)
	p.ainvX = make([][]float64, c)
	p.ainvY = make([][]float64, c)
	p.ainvZ = make([][]float64, c)
	for k := 0; k < c; k++ {
		var err error
		p.ainvX[k], err = mg.Solve(p.jx[k].dense(m), cgTol, cgMaxIter)
		if err != nil {
			return nil, err
		}
		p.ainvY[k], err = mg.Solve(p.jy[k].dense(m), cgTol, cgMaxIter)
		if err != nil {
			return nil, err
		}
		p.ainvZ[k], err = mg.Solve(p.jz[k].dense(m), cgTol, cgMaxIter)
		if err != nil {
			return nil, err
		}
	}

	s := mat.NewSymDense(c, nil)
	for k := 0; k < c; k++ {
		for l := k; l < c; l++ {
			v := p.jx[k].dot(p.ainvX[l]) + p.jy[k].dot(p.ainvY[l]) + p.jz[k].dot(p.ainvZ[l])
			s.SetSym(k, l, v)
		}
	}
	var chol mat.Cholesky
	if ok := chol.Factorize(s); !ok {
		return nil, tferr.Wrap(tferr.ConstraintProjectionFailed, "Schur complement matrix is not positive definite for %d constraint rows", c)
	}
	p.schur = &chol

	return p, nil
}

// NumRows returns the total number of stacked scalar constraint rows.
func (p *Projector) NumRows() int { return len(p.jx) }

func (p *Projector) solveSchur(rhs []float64) []float64 {
	c := len(rhs)
	b := mat.NewVecDense(c, rhs)
	x := mat.NewVecDense(c, nil)
	if err := p.schur.SolveVecTo(x, b); err != nil {
		panic(err) // Schur factorization already verified PD at New time
	}
	return x.RawVector().Data
}

// Project computes the constrained Sobolev gradient ĝ orthogonal to the
// active constraint tangent space (in the A-inner product), given the
// edge-indexed L2 gradient g (spec §4.4).
func (p *Projector) Project(g []r3.Vec) ([]r3.Vec, error) {
	m := len(g)
	gx, gy, gz := make([]float64, m), make([]float64, m), make([]float64, m)
	for e, v := range g {
		gx[e], gy[e], gz[e] = v.X, v.Y, v.Z
	}

	zx, err := p.mg.Solve(gx, p.cgTol, p.cgMaxIter)
	if err != nil {
		return nil, err
	}
	zy, err := p.mg.Solve(gy, p.cgTol, p.cgMaxIter)
	if err != nil {
		return nil, err
	}
	zz, err := p.mg.Solve(gz, p.cgTol, p.cgMaxIter)
	if err != nil {
		return nil, err
	}

	if len(p.jx) == 0 {
		ghat := make([]r3.Vec, m)
		for e := range ghat {
			ghat[e] = r3.Vec{X: zx[e], Y: zy[e], Z: zz[e]}
		}
		return ghat, nil
	}

	c := len(p.jx)
	rhs := make([]float64, c)
	for k := 0; k < c; k++ {
		rhs[k] = p.jx[k].dot(zx) + p.jy[k].dot(zy) + p.jz[k].dot(zz)
	}
	lambda := p.solveSchur(rhs)

	ghat := make([]r3.Vec, m)
	for e := 0; e < m; e++ {
		x, y, z := zx[e], zy[e], zz[e]
		for k := 0; k < c; k++ {
			x -= lambda[k] * p.ainvX[k][e]
			y -= lambda[k] * p.ainvY[k][e]
			z -= lambda[k] * p.ainvZ[k][e]
		}
		ghat[e] = r3.Vec{X: x, Y: y, Z: z}
	}
	return ghat, nil
}

// BackProject corrects linear constraint drift after a line step by Newton
// iteration: solve (J A^-1 J^T) mu = delta, then x <- x - A^-1 J^T mu,
// repeating until ||delta|| < tol or maxIters is reached (spec §4.4).
func (p *Projector) BackProject(net *curve.Network, tol float64, maxIters int) error {
	if len(p.jx) == 0 {
		return nil
	}
	m := net.NumEdges()
	for iter := 0; iter < maxIters; iter++ {
		delta := make([]float64, 0, len(p.constraints))
		for _, cst := range p.constraints {
			delta = append(delta, cst.Drift(net)...)
		}
		if norm(delta) < tol {
			return nil
		}

		mu := p.solveSchur(delta)

		corrX := make([]float64, m)
		corrY := make([]float64, m)
		corrZ := make([]float64, m)
		for k, mk := range mu {
			for e := 0; e < m; e++ {
				corrX[e] += mk * p.ainvX[k][e]
				corrY[e] += mk * p.ainvY[k][e]
				corrZ[e] += mk * p.ainvZ[k][e]
			}
		}

		dx := scatterToVertices(net, corrX)
		dy := scatterToVertices(net, corrY)
		dz := scatterToVertices(net, corrZ)
		for v := 0; v < net.NumVertices(); v++ {
			pos := net.VertexPos(v)
			pos.X -= dx[v]
			pos.Y -= dy[v]
			pos.Z -= dz[v]
			net.SetVertexPos(v, pos)
		}
	}

	delta := make([]float64, 0, len(p.constraints))
	for _, cst := range p.constraints {
		delta = append(delta, cst.Drift(net)...)
	}
	if norm(delta) >= tol {
		return tferr.Wrap(tferr.ConstraintProjectionFailed, "back-projection did not converge after %d iterations: |delta|=%g", maxIters, norm(delta))
	}
	return nil
}

func norm(v []float64) float64 {
	return floats.Norm(v, 2)
}
