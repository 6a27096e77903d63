// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package geom holds the small set of Vec3/AABB primitives shared by the
// bvh and bct packages: axis-aligned bounding boxes, component-wise
// min/max, and longest-axis selection for the tree's median split.
package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max r3.Vec
}

// Point returns the degenerate box containing only p.
func Point(p r3.Vec) AABB { return AABB{Min: p, Max: p} }

// Union returns the smallest box containing both a and b.
func Union(a, b AABB) AABB {
	return AABB{Min: CompMin(a.Min, b.Min), Max: CompMax(a.Max, b.Max)}
}

// Extend grows a to also contain p.
func (a AABB) Extend(p r3.Vec) AABB {
	return AABB{Min: CompMin(a.Min, p), Max: CompMax(a.Max, p)}
}

// Diagonal returns the box's diagonal length, the "diam" term of the
// Barnes-Hut admissibility predicate.
func (a AABB) Diagonal() float64 {
	return r3.Norm(r3.Sub(a.Max, a.Min))
}

// Extent returns Max-Min component-wise.
func (a AABB) Extent() r3.Vec { return r3.Sub(a.Max, a.Min) }

// LongestAxis returns 0, 1, or 2 for the axis (x, y, z) along which a is
// widest, used to choose the split axis of a bounding-volume hierarchy.
func (a AABB) LongestAxis() int {
	e := a.Extent()
	if e.X >= e.Y && e.X >= e.Z {
		return 0
	}
	if e.Y >= e.Z {
		return 1
	}
	return 2
}

// Coord returns the component of v along axis (0=x, 1=y, 2=z).
func Coord(v r3.Vec, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// CompMin returns the component-wise minimum of a and b.
func CompMin(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)}
}

// CompMax returns the component-wise maximum of a and b.
func CompMax(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Z: math.Max(a.Z, b.Z)}
}
