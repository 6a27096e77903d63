// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package constraint implements the constraint projector (spec §4.4): a
// stacked Jacobian of active geometric constraints (barycenter, edge length,
// pinned position/tangent, surface pin) is used to project the Sobolev
// gradient onto the constraint tangent space via Schur-complement
// elimination, and to back-project a curve onto the constraint manifold
// after a line step, grounded on fem/essenbcs.go's Lagrange-multiplier
// saddle-point pattern (A*y=c augmented with At/A blocks).
package constraint

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/cpmech/tangentflow/curve"
)

// VertexRow is one scalar constraint row, expressed in vertex space: the
// row's contribution to the constraint rate of change is
// sum_v dot(coeff[v], velocity(v)).
type VertexRow map[int]r3.Vec

// Constraint is a geometric constraint contributing one or more stacked
// rows to the projector's Jacobian.
type Constraint interface {
	Rows() int
	Drift(c *curve.Network) []float64
	VertexJacobian(c *curve.Network) []VertexRow
}

// BarycenterConstraint pins the curve's mass-weighted centroid to Target
// (3 rows), using the current edge masses as frozen Jacobian coefficients
// (consistent with this solver's per-step freezing of BVH/BCT structure).
type BarycenterConstraint struct {
	Target r3.Vec
}

func (BarycenterConstraint) Rows() int { return 3 }

func (o BarycenterConstraint) Drift(c *curve.Network) []float64 {
	b := c.Barycenter()
	d := r3.Sub(b, o.Target)
	return []float64{d.X, d.Y, d.Z}
}

func (BarycenterConstraint) VertexJacobian(c *curve.Network) []VertexRow {
	total := c.TotalLength()
	rows := make([]VertexRow, 3)
	for i := range rows {
		rows[i] = make(VertexRow)
	}
	if total == 0 {
		return rows
	}
	for e := 0; e < c.NumEdges(); e++ {
		v0, v1 := c.EdgeVerts(e)
		w := 0.5 * c.EdgeMass(e) / total
		add := r3.Vec{X: w, Y: 0, Z: 0}
		rows[0][v0] = r3.Add(rows[0][v0], add)
		rows[0][v1] = r3.Add(rows[0][v1], add)
		add = r3.Vec{X: 0, Y: w, Z: 0}
		rows[1][v0] = r3.Add(rows[1][v0], add)
		rows[1][v1] = r3.Add(rows[1][v1], add)
		add = r3.Vec{X: 0, Y: 0, Z: w}
		rows[2][v0] = r3.Add(rows[2][v0], add)
		rows[2][v1] = r3.Add(rows[2][v1], add)
	}
	return rows
}

// EdgeLengthConstraint pins edge Edge's length to Target (1 row); the
// Jacobian is the standard +-tangent derivative of Euclidean length.
type EdgeLengthConstraint struct {
	Edge   int
	Target float64
}

func (EdgeLengthConstraint) Rows() int { return 1 }

func (o EdgeLengthConstraint) Drift(c *curve.Network) []float64 {
	return []float64{c.EdgeLength(o.Edge) - o.Target}
}

func (o EdgeLengthConstraint) VertexJacobian(c *curve.Network) []VertexRow {
	v0, v1 := c.EdgeVerts(o.Edge)
	t := c.EdgeTangent(o.Edge)
	row := VertexRow{v0: r3.Scale(-1, t), v1: t}
	return []VertexRow{row}
}

// PinnedPositionConstraint holds vertex Vertex at Target (3 rows).
type PinnedPositionConstraint struct {
	Vertex int
	Target r3.Vec
}

func (PinnedPositionConstraint) Rows() int { return 3 }

func (o PinnedPositionConstraint) Drift(c *curve.Network) []float64 {
	d := r3.Sub(c.VertexPos(o.Vertex), o.Target)
	return []float64{d.X, d.Y, d.Z}
}

func (o PinnedPositionConstraint) VertexJacobian(c *curve.Network) []VertexRow {
	return []VertexRow{
		{o.Vertex: r3.Vec{X: 1}},
		{o.Vertex: r3.Vec{Y: 1}},
		{o.Vertex: r3.Vec{Z: 1}},
	}
}

// PinnedTangentConstraint fixes the local tangent direction at Vertex,
// defined as the difference of its two incident edge tangents (3 rows),
// grounded on spec §4.3's edge-tangent derivative
// (bvh/gradient.go's (I - T⊗T)/l chain rule reused via r3 arithmetic).
type PinnedTangentConstraint struct {
	Vertex         int
	EdgeIn, EdgeOut int
}

func (PinnedTangentConstraint) Rows() int { return 3 }

func (o PinnedTangentConstraint) Drift(c *curve.Network) []float64 {
	d := r3.Sub(c.EdgeTangent(o.EdgeIn), c.EdgeTangent(o.EdgeOut))
	return []float64{d.X, d.Y, d.Z}
}

func (o PinnedTangentConstraint) VertexJacobian(c *curve.Network) []VertexRow {
	jIn := tangentJacobian(c, o.EdgeIn)
	jOut := tangentJacobian(c, o.EdgeOut)
	rows := make([]VertexRow, 3)
	for ch := 0; ch < 3; ch++ {
		row := make(VertexRow)
		for v, coeff := range jIn[ch] {
			row[v] = r3.Add(row[v], coeff)
		}
		for v, coeff := range jOut[ch] {
			row[v] = r3.Sub(row[v], coeff)
		}
		rows[ch] = row
	}
	return rows
}

// tangentJacobian returns, for edge e, the vertex-space Jacobian of its
// unit tangent's 3 components: d(tangent)/d(x_v1) = (I - t⊗t)/l,
// d(tangent)/d(x_v0) = -(I - t⊗t)/l.
func tangentJacobian(c *curve.Network, e int) [3]VertexRow {
	v0, v1 := c.EdgeVerts(e)
	t := c.EdgeTangent(e)
	l := c.EdgeLength(e)
	var out [3]VertexRow
	if l == 0 {
		for ch := range out {
			out[ch] = VertexRow{}
		}
		return out
	}
	proj := func(axis r3.Vec) r3.Vec {
		// row for d(tangent)/d(x_v1) along this output axis:
		// (axis - t*dot(axis,t)) / l
		return r3.Scale(1/l, r3.Sub(axis, r3.Scale(r3.Dot(axis, t), t)))
	}
	axes := [3]r3.Vec{{X: 1}, {Y: 1}, {Z: 1}}
	for ch, axis := range axes {
		d1 := proj(axis)
		out[ch] = VertexRow{v1: d1, v0: r3.Scale(-1, d1)}
	}
	return out
}

// SurfaceSDF is an implicit signed-distance function a vertex can be pinned
// to (spec.md §4.4's nonlinear surface-pin constraint, linearized per step).
type SurfaceSDF interface {
	Value(p r3.Vec) float64
	Gradient(p r3.Vec) r3.Vec
}

// PlaneSDF is the signed distance to an infinite plane through Point with
// unit Normal.
type PlaneSDF struct {
	Point, Normal r3.Vec
}

func (o PlaneSDF) Value(p r3.Vec) float64     { return r3.Dot(r3.Sub(p, o.Point), o.Normal) }
func (o PlaneSDF) Gradient(p r3.Vec) r3.Vec { return o.Normal }

// SphereSDF is the signed distance to a sphere's surface (negative inside).
type SphereSDF struct {
	Center r3.Vec
	Radius float64
}

func (o SphereSDF) Value(p r3.Vec) float64 {
	return r3.Norm(r3.Sub(p, o.Center)) - o.Radius
}

func (o SphereSDF) Gradient(p r3.Vec) r3.Vec {
	d := r3.Sub(p, o.Center)
	n := r3.Norm(d)
	if n == 0 {
		return r3.Vec{X: 1}
	}
	return r3.Scale(1/n, d)
}

// SurfacePinConstraint pins Vertex to the zero level set of SDF (1 row),
// linearized at the vertex's position when the Projector is built; the
// linearization is not refreshed between Projector rebuilds, while Drift
// always evaluates the SDF at the current position.
type SurfacePinConstraint struct {
	Vertex int
	SDF    SurfaceSDF
}

func (SurfacePinConstraint) Rows() int { return 1 }

func (o SurfacePinConstraint) Drift(c *curve.Network) []float64 {
	return []float64{o.SDF.Value(c.VertexPos(o.Vertex))}
}

func (o SurfacePinConstraint) VertexJacobian(c *curve.Network) []VertexRow {
	g := o.SDF.Gradient(c.VertexPos(o.Vertex))
	return []VertexRow{{o.Vertex: g}}
}
