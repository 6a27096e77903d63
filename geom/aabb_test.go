// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geom

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/cpmech/gosl/chk"
)

func Test_geom01(tst *testing.T) {

	chk.PrintTitle("geom01. AABB union and diagonal")

	a := Point(r3.Vec{X: 0, Y: 0, Z: 0})
	a = a.Extend(r3.Vec{X: 1, Y: 2, Z: 0})
	b := Point(r3.Vec{X: -1, Y: 0, Z: 3})

	u := Union(a, b)
	chk.Vector(tst, "union min", 1e-15, []float64{u.Min.X, u.Min.Y, u.Min.Z}, []float64{-1, 0, 0})
	chk.Vector(tst, "union max", 1e-15, []float64{u.Max.X, u.Max.Y, u.Max.Z}, []float64{1, 2, 3})

	want := math.Sqrt(2*2 + 2*2 + 3*3)
	chk.Scalar(tst, "diagonal", 1e-12, u.Diagonal(), want)
}

func Test_geom02(tst *testing.T) {

	chk.PrintTitle("geom02. longest axis and coord selection")

	box := Point(r3.Vec{X: 0, Y: 0, Z: 0}).Extend(r3.Vec{X: 1, Y: 5, Z: 2})
	axis := box.LongestAxis()
	if axis != 1 {
		tst.Errorf("expected longest axis 1 (y), got %d", axis)
	}

	v := r3.Vec{X: 3, Y: 4, Z: 5}
	if Coord(v, 0) != 3 || Coord(v, 1) != 4 || Coord(v, 2) != 5 {
		tst.Errorf("Coord mismatch: %v", v)
	}
}
