// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bvh

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/tangentflow/curve"
	"github.com/cpmech/tangentflow/kernel"
)

func square(tst *testing.T) *curve.Network {
	pos := []r3.Vec{
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: 0, Z: 0},
		{X: 1, Y: 1, Z: 0},
		{X: 0, Y: 1, Z: 0},
	}
	edges := [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}}
	o, err := curve.New(pos, edges)
	if err != nil {
		tst.Fatalf("curve.New failed: %v", err)
	}
	return o
}

func circle(tst *testing.T, n int) *curve.Network {
	pos := make([]r3.Vec, n)
	edges := make([][2]int, n)
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		pos[i] = r3.Vec{X: math.Cos(a), Y: math.Sin(a), Z: 0}
		edges[i] = [2]int{i, (i + 1) % n}
	}
	o, err := curve.New(pos, edges)
	if err != nil {
		tst.Fatalf("curve.New failed: %v", err)
	}
	return o
}

func Test_bvh01(tst *testing.T) {

	chk.PrintTitle("bvh01. BH energy matches direct O(m^2) at sep=1 on a square (S4)")

	c := square(tst)
	k, _ := kernel.New(2, 4)
	tree, err := New(c, 1.0)
	if err != nil {
		tst.Fatalf("New failed: %v", err)
	}

	got := tree.Energy(k)
	want := tree.DirectEnergy(k)
	chk.Scalar(tst, "bh vs direct (4 edges, always direct)", 1e-12, got, want)

	// closed form: each ordered pair (i,j) contributes k(mi,mj,Ti)*li*lj;
	// adjacent pairs share a vertex (midpoint distance 0.5*sqrt(2) along the
	// diagonal), opposite pairs are axis-aligned at distance 1. Every one of
	// the 12 ordered pairs gives k = 1 (0.25/0.25 and 1/1), so E = 0.5*12.
	chk.Scalar(tst, "closed form", 1e-12, got, 6.0)
}

func Test_bvh02(tst *testing.T) {

	chk.PrintTitle("bvh02. BH-consistency as sep -> 0 (S8 property 3)")

	c := circle(tst, 64)
	k, _ := kernel.New(3, 6)
	tree, err := New(c, 1e-6)
	if err != nil {
		tst.Fatalf("New failed: %v", err)
	}

	bh := tree.Energy(k)
	direct := tree.DirectEnergy(k)
	rel := math.Abs(bh-direct) / math.Abs(direct)
	if rel > 1e-8 {
		tst.Errorf("BH-consistency failed: rel err = %g", rel)
	}
}

func Test_bvh03(tst *testing.T) {

	chk.PrintTitle("bvh03. finite-difference gradient check on a circle (S8 property 4)")

	c := circle(tst, 16)
	k, _ := kernel.New(3, 6)
	tree, err := New(c, 1.0)
	if err != nil {
		tst.Fatalf("New failed: %v", err)
	}
	grad := tree.Gradient(c, k)

	eps := 1e-4
	// perturb vertex 3 along x and compare to analytic gradient row 3
	v := 3
	base := c.VertexPos(v)

	perturbed := func(axis int, h float64) float64 {
		p := base
		switch axis {
		case 0:
			p.X += h
		case 1:
			p.Y += h
		case 2:
			p.Z += h
		}
		c2 := c.Clone()
		c2.SetVertexPos(v, p)
		tree2, err := New(c2, 1.0)
		if err != nil {
			tst.Fatalf("New failed: %v", err)
		}
		return tree2.Energy(k)
	}

	for axis := 0; axis < 3; axis++ {
		fd := (perturbed(axis, eps) - perturbed(axis, -eps)) / (2 * eps)
		analytic := grad[v][axis]
		if math.Abs(fd-analytic) > 1e-3 {
			tst.Errorf("gradient axis %d mismatch: analytic=%g fd=%g", axis, analytic, fd)
		}
	}
}

func Test_bvh05(tst *testing.T) {

	chk.PrintTitle("bvh05. DirectGradient matches the BH gradient at sep=1 on a square (always direct)")

	c := square(tst)
	k, _ := kernel.New(2, 4)
	tree, err := New(c, 1.0)
	if err != nil {
		tst.Fatalf("New failed: %v", err)
	}

	bh := tree.Gradient(c, k)
	direct := tree.DirectGradient(c, k)
	for v := range bh {
		for axis := 0; axis < 3; axis++ {
			if math.Abs(bh[v][axis]-direct[v][axis]) > 1e-12 {
				tst.Errorf("vertex %d axis %d: bh=%g direct=%g", v, axis, bh[v][axis], direct[v][axis])
			}
		}
	}
}

func Test_bvh04(tst *testing.T) {

	chk.PrintTitle("bvh04. descent along -gradient decreases energy (S8 property 6)")

	c := circle(tst, 32)
	k, _ := kernel.New(3, 6)
	tree, err := New(c, 1.0)
	if err != nil {
		tst.Fatalf("New failed: %v", err)
	}
	e0 := tree.Energy(k)
	grad := tree.Gradient(c, k)

	t := 1e-5
	c2 := c.Clone()
	for v := 0; v < c.NumVertices(); v++ {
		p := c.VertexPos(v)
		g := grad[v]
		p.X -= t * g[0]
		p.Y -= t * g[1]
		p.Z -= t * g[2]
		c2.SetVertexPos(v, p)
	}
	tree2, err := New(c2, 1.0)
	if err != nil {
		tst.Fatalf("New failed: %v", err)
	}
	e1 := tree2.Energy(k)
	if e1 >= e0 {
		tst.Errorf("expected energy decrease: e0=%g e1=%g", e0, e1)
	}
}
