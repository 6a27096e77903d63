// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package multigrid

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/tangentflow/curve"
)

func ring(n int) *curve.Network {
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

func Test_multigrid01(tst *testing.T) {

	chk.PrintTitle("multigrid01. coarsening a closed ring roughly halves vertex count")

	c := ring(64)
	coarse, edgeMap, err := coarsen(c)
	if err != nil {
		tst.Fatalf("coarsen failed: %v", err)
	}
	if coarse == nil {
		tst.Fatalf("expected a coarser curve, got nil")
	}
	if coarse.NumVertices() < 28 || coarse.NumVertices() > 36 {
		tst.Errorf("expected roughly half of 64 vertices, got %d", coarse.NumVertices())
	}
	if coarse.NumEdges() != coarse.NumVertices() {
		tst.Errorf("expected a closed ring at coarse level, got %d verts %d edges", coarse.NumVertices(), coarse.NumEdges())
	}

	// restrict-then-prolong of a constant vector must reproduce the
	// constant (partition of unity on each coarse edge's fine edges).
	ones := make([]float64, c.NumEdges())
	for i := range ones {
		ones[i] = 1
	}
	coarseOnes := edgeMap.Restrict(ones)
	for _, v := range coarseOnes {
		if math.Abs(v-1) > 1e-12 {
			tst.Errorf("restrict of constant 1 should be 1, got %g", v)
		}
	}
	fineBack := edgeMap.Prolong(coarseOnes)
	for _, v := range fineBack {
		if math.Abs(v-1) > 1e-12 {
			tst.Errorf("prolong of constant 1 should be 1, got %g", v)
		}
	}
}

func Test_multigrid02(tst *testing.T) {

	chk.PrintTitle("multigrid02. hierarchy coarsens to a small curve within a bounded depth")

	c := ring(128)
	h, err := New(c, 3, 6, 1.0, 8)
	if err != nil {
		tst.Fatalf("New failed: %v", err)
	}
	if h.NumLevels() < 2 {
		tst.Errorf("expected at least 2 levels, got %d", h.NumLevels())
	}
	coarsest := h.Levels[h.NumLevels()-1]
	if coarsest.Curve.NumEdges() > 8 {
		tst.Errorf("coarsest level should have <= 8 edges, got %d", coarsest.Curve.NumEdges())
	}
	if coarsest.coarseChol == nil {
		tst.Errorf("coarsest level should carry a factorized direct solver")
	}
}

func Test_multigrid03(tst *testing.T) {

	chk.PrintTitle("multigrid03. V-cycle reduces the residual norm (S8 property 5)")

	c := ring(96)
	h, err := New(c, 3, 6, 1.0, 8)
	if err != nil {
		tst.Fatalf("New failed: %v", err)
	}

	rng := rand.New(rand.NewSource(7))
	rhs := make([]float64, c.NumEdges())
	for i := range rhs {
		rhs[i] = rng.NormFloat64()
	}

	x0 := make([]float64, len(rhs))
	r0, err := residual(h.Finest(), x0, rhs)
	if err != nil {
		tst.Fatalf("residual failed: %v", err)
	}

	x1, err := h.VCycle(rhs)
	if err != nil {
		tst.Fatalf("VCycle failed: %v", err)
	}
	r1, err := residual(h.Finest(), x1, rhs)
	if err != nil {
		tst.Fatalf("residual failed: %v", err)
	}

	n0, n1 := norm(r0), norm(r1)
	if n1 >= n0 {
		tst.Errorf("expected V-cycle to reduce residual: before=%g after=%g", n0, n1)
	}
}

func Test_multigrid04(tst *testing.T) {

	chk.PrintTitle("multigrid04. preconditioned CG solves A*x=rhs to tolerance")

	c := ring(80)
	h, err := New(c, 3, 6, 1.0, 8)
	if err != nil {
		tst.Fatalf("New failed: %v", err)
	}

	rng := rand.New(rand.NewSource(8))
	rhs := make([]float64, c.NumEdges())
	for i := range rhs {
		rhs[i] = rng.NormFloat64()
	}

	x, err := h.Solve(rhs, 1e-8, 200)
	if err != nil {
		tst.Fatalf("Solve failed: %v", err)
	}
	r, err := residual(h.Finest(), x, rhs)
	if err != nil {
		tst.Fatalf("residual failed: %v", err)
	}
	rel := norm(r) / norm(rhs)
	if rel > 1e-4 {
		tst.Errorf("relative residual too large: %g", rel)
	}
}

func dot(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

func norm(a []float64) float64 { return math.Sqrt(dot(a, a)) }
