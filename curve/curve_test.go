// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package curve

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/tangentflow/tferr"
)

// square returns a 4-edge closed square in the xy-plane with unit side.
func square(tst *testing.T) *Network {
	pos := []r3.Vec{
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: 0, Z: 0},
		{X: 1, Y: 1, Z: 0},
		{X: 0, Y: 1, Z: 0},
	}
	edges := [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}}
	o, err := New(pos, edges)
	if err != nil {
		tst.Fatalf("New failed: %v", err)
	}
	return o
}

func Test_curve01(tst *testing.T) {

	chk.PrintTitle("curve01. basic queries on a 4-edge square")

	o := square(tst)

	if o.NumVertices() != 4 {
		tst.Errorf("NumVertices failed: got %d", o.NumVertices())
	}
	if o.NumEdges() != 4 {
		tst.Errorf("NumEdges failed: got %d", o.NumEdges())
	}
	chk.Scalar(tst, "edge 0 length", 1e-15, o.EdgeLength(0), 1.0)
	chk.Scalar(tst, "average length", 1e-15, o.AverageEdgeLength(), 1.0)
	chk.Scalar(tst, "total length", 1e-15, o.TotalLength(), 4.0)

	m := o.EdgeMidpoint(0)
	chk.Scalar(tst, "mid.X", 1e-15, m.X, 0.5)
	chk.Scalar(tst, "mid.Y", 1e-15, m.Y, 0.0)

	t := o.EdgeTangent(0)
	chk.Scalar(tst, "tangent norm", 1e-15, r3.Norm(t), 1.0)

	nb := o.Neighbors(0)
	if len(nb) != 2 {
		tst.Errorf("Neighbors(0) should have 2 entries, got %d", len(nb))
	}
}

func Test_curve02(tst *testing.T) {

	chk.PrintTitle("curve02. invalid topology is rejected")

	_, err := New(nil, nil)
	if err == nil {
		tst.Errorf("expected error for empty curve")
	}

	pos := []r3.Vec{{}, {X: 1}}
	_, err = New(pos, [][2]int{{0, 5}})
	if err == nil || !errors.Is(err, tferr.InvalidTopology) {
		tst.Errorf("expected InvalidTopology for out-of-range edge, got %v", err)
	}

	_, err = New(pos, [][2]int{{0, 0}})
	if err == nil || !errors.Is(err, tferr.InvalidTopology) {
		tst.Errorf("expected InvalidTopology for self-loop, got %v", err)
	}

	_, err = New(pos, [][2]int{{0, 1}, {1, 0}})
	if err == nil || !errors.Is(err, tferr.InvalidTopology) {
		tst.Errorf("expected InvalidTopology for duplicate edge, got %v", err)
	}
}

func Test_curve03(tst *testing.T) {

	chk.PrintTitle("curve03. subdivide preserves original vertex positions")

	o := square(tst)
	before := o.Positions()

	sub := o.Subdivide()

	if sub.NumEdges() != 8 {
		tst.Errorf("subdivided edge count failed: got %d", sub.NumEdges())
	}
	if sub.NumVertices() != 8 {
		tst.Errorf("subdivided vertex count failed: got %d", sub.NumVertices())
	}
	for i, p := range before {
		q := sub.VertexPos(i)
		if math.Abs(p.X-q.X) > 1e-12 || math.Abs(p.Y-q.Y) > 1e-12 || math.Abs(p.Z-q.Z) > 1e-12 {
			tst.Errorf("vertex %d moved after subdivision: %v != %v", i, p, q)
		}
	}
	chk.Scalar(tst, "average length after subdivide", 1e-12, sub.AverageEdgeLength(), o.AverageEdgeLength()/2)
}

