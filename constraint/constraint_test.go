// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package constraint

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/tangentflow/curve"
	"github.com/cpmech/tangentflow/multigrid"
)

func testRing(n int) *curve.Network {
	pos := make([]r3.Vec, n)
	edges := make([][2]int, n)
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		pos[i] = r3.Vec{X: math.Cos(a), Y: math.Sin(a), Z: 0}
		edges[i] = [2]int{i, (i + 1) % n}
	}
	o, _ := curve.New(pos, edges)
	return o
}

func Test_constraint01(tst *testing.T) {

	chk.PrintTitle("constraint01. projected gradient lies in the constraint null space (J*ghat=0)")

	c := testRing(48)
	mg, err := multigrid.New(c, 3, 6, 1.0, 8)
	if err != nil {
		tst.Fatalf("multigrid.New failed: %v", err)
	}

	pin := PinnedPositionConstraint{Vertex: 0, Target: c.VertexPos(0)}
	proj, err := New(c, mg, []Constraint{pin}, 1e-8, 200)
	if err != nil {
		tst.Fatalf("New projector failed: %v", err)
	}

	rng := rand.New(rand.NewSource(11))
	g := make([]r3.Vec, c.NumEdges())
	for e := range g {
		g[e] = r3.Vec{X: rng.NormFloat64(), Y: rng.NormFloat64(), Z: rng.NormFloat64()}
	}

	ghat, err := proj.Project(g)
	if err != nil {
		tst.Fatalf("Project failed: %v", err)
	}

	ghatX := make([]float64, len(ghat))
	ghatY := make([]float64, len(ghat))
	ghatZ := make([]float64, len(ghat))
	for e, v := range ghat {
		ghatX[e], ghatY[e], ghatZ[e] = v.X, v.Y, v.Z
	}

	for k := 0; k < proj.NumRows(); k++ {
		jghat := proj.jx[k].dot(ghatX) + proj.jy[k].dot(ghatY) + proj.jz[k].dot(ghatZ)
		if math.Abs(jghat) > 1e-6 {
			tst.Errorf("row %d: expected J*ghat ~ 0, got %g", k, jghat)
		}
	}
}

func Test_constraint02(tst *testing.T) {

	chk.PrintTitle("constraint02. back-projection removes pinned-position drift")

	c := testRing(48)
	mg, err := multigrid.New(c, 3, 6, 1.0, 8)
	if err != nil {
		tst.Fatalf("multigrid.New failed: %v", err)
	}

	target := c.VertexPos(0)
	pin := PinnedPositionConstraint{Vertex: 0, Target: target}
	proj, err := New(c, mg, []Constraint{pin}, 1e-8, 200)
	if err != nil {
		tst.Fatalf("New projector failed: %v", err)
	}

	perturbed := target
	perturbed.X += 0.05
	perturbed.Y -= 0.03
	c.SetVertexPos(0, perturbed)

	if err := proj.BackProject(c, 1e-6, 4); err != nil {
		tst.Fatalf("BackProject failed: %v", err)
	}

	final := c.VertexPos(0)
	drift := r3.Norm(r3.Sub(final, target))
	if drift > 1e-4 {
		tst.Errorf("expected drift to vanish, got %g (final=%v target=%v)", drift, final, target)
	}
}
