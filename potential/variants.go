// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package potential

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/cpmech/tangentflow/curve"
)

// LengthPotential is the total-length functional L(x) = sum_e |e|, whose
// gradient is the familiar +-unit-tangent sum at each vertex.
type LengthPotential struct{}

func (LengthPotential) Energy(c *curve.Network) float64 { return c.TotalLength() }

func (LengthPotential) Gradient(c *curve.Network) [][3]float64 {
	out := make([][3]float64, c.NumVertices())
	for e := 0; e < c.NumEdges(); e++ {
		v0, v1 := c.EdgeVerts(e)
		t := c.EdgeTangent(e)
		out[v1][0] += t.X
		out[v1][1] += t.Y
		out[v1][2] += t.Z
		out[v0][0] -= t.X
		out[v0][1] -= t.Y
		out[v0][2] -= t.Z
	}
	return out
}

// LengthDiffPotential penalizes deviation of total length from Target:
// 0.5*(L(x)-Target)^2, used to hold the curve near a prescribed length
// while it otherwise flows.
type LengthDiffPotential struct {
	Target float64
}

func (o LengthDiffPotential) Energy(c *curve.Network) float64 {
	d := c.TotalLength() - o.Target
	return 0.5 * d * d
}

func (o LengthDiffPotential) Gradient(c *curve.Network) [][3]float64 {
	d := c.TotalLength() - o.Target
	g := LengthPotential{}.Gradient(c)
	for v := range g {
		g[v][0] *= d
		g[v][1] *= d
		g[v][2] *= d
	}
	return g
}

// PinBendingPotential penalizes the discrete turning angle at every
// valence-2 vertex: 0.5*||u_out - u_in||^2 summed over vertices, where u_in,
// u_out are the unit directions of the incoming and outgoing edges.
type PinBendingPotential struct {
	Weight float64
}

func (o PinBendingPotential) Energy(c *curve.Network) float64 {
	total := 0.0
	for v := 0; v < c.NumVertices(); v++ {
		if c.Valence(v) != 2 {
			continue
		}
		uaIdx, ubIdx := c.VertexEdges(v)[0], c.VertexEdges(v)[1]
		_, _, uIn, uOut, _, _ := bendingGeometry(c, v, uaIdx, ubIdx)
		diff := r3.Sub(uOut, uIn)
		total += 0.5 * r3.Dot(diff, diff)
	}
	return o.Weight * total
}

func (o PinBendingPotential) Gradient(c *curve.Network) [][3]float64 {
	out := make([][3]float64, c.NumVertices())
	for v := 0; v < c.NumVertices(); v++ {
		if c.Valence(v) != 2 {
			continue
		}
		eaIdx, ebIdx := c.VertexEdges(v)[0], c.VertexEdges(v)[1]
		ua, ub, uIn, uOut, la, lb := bendingGeometry(c, v, eaIdx, ebIdx)
		diff := r3.Sub(uOut, uIn)

		projA := proj(diff, uIn)
		projB := proj(diff, uOut)

		add(out, ua, r3.Scale(o.Weight/la, projA))
		add(out, ub, r3.Scale(o.Weight/lb, projB))
		add(out, v, r3.Scale(-o.Weight, r3.Add(r3.Scale(1/la, projA), r3.Scale(1/lb, projB))))
	}
	return out
}

// bendingGeometry returns the neighbor indices and unit in/out directions
// for vertex v's two incident edges ea (the one whose far endpoint is
// treated as "incoming") and eb ("outgoing"), plus their lengths.
func bendingGeometry(c *curve.Network, v, ea, eb int) (ua, ub int, uIn, uOut r3.Vec, la, lb float64) {
	a0, a1 := c.EdgeVerts(ea)
	if a1 == v {
		ua = a0
	} else {
		ua = a1
	}
	b0, b1 := c.EdgeVerts(eb)
	if b0 == v {
		ub = b1
	} else {
		ub = b0
	}
	da := r3.Sub(c.VertexPos(v), c.VertexPos(ua))
	db := r3.Sub(c.VertexPos(ub), c.VertexPos(v))
	la, lb = r3.Norm(da), r3.Norm(db)
	if la == 0 || lb == 0 {
		return
	}
	uIn = r3.Scale(1/la, da)
	uOut = r3.Scale(1/lb, db)
	return
}

func proj(x, u r3.Vec) r3.Vec { return r3.Sub(x, r3.Scale(r3.Dot(u, x), u)) }

func add(buf [][3]float64, v int, val r3.Vec) {
	buf[v][0] += val.X
	buf[v][1] += val.Y
	buf[v][2] += val.Z
}

// PlanePotential is a soft barrier keeping the curve on the positive side
// of an infinite plane through Center with unit Normal: a quadratic penalty
// on the negative signed distance, zero once the curve clears the plane.
type PlanePotential struct {
	Center, Normal r3.Vec
	Weight         float64
}

func (o PlanePotential) Energy(c *curve.Network) float64 {
	total := 0.0
	for v := 0; v < c.NumVertices(); v++ {
		d := r3.Dot(r3.Sub(c.VertexPos(v), o.Center), o.Normal)
		if d < 0 {
			total += 0.5 * d * d
		}
	}
	return o.Weight * total
}

func (o PlanePotential) Gradient(c *curve.Network) [][3]float64 {
	out := make([][3]float64, c.NumVertices())
	for v := 0; v < c.NumVertices(); v++ {
		d := r3.Dot(r3.Sub(c.VertexPos(v), o.Center), o.Normal)
		if d < 0 {
			g := r3.Scale(o.Weight*d, o.Normal)
			out[v][0], out[v][1], out[v][2] = g.X, g.Y, g.Z
		}
	}
	return out
}

// SpherePotential is a soft barrier excluding the curve from the interior
// of a sphere: a quadratic penalty on the signed-distance overlap.
type SpherePotential struct {
	Center r3.Vec
	Radius float64
	Weight float64
}

func (o SpherePotential) signedDist(p r3.Vec) (float64, r3.Vec) {
	d := r3.Sub(p, o.Center)
	n := r3.Norm(d)
	if n == 0 {
		return -o.Radius, r3.Vec{X: 1}
	}
	return n - o.Radius, r3.Scale(1/n, d)
}

func (o SpherePotential) Energy(c *curve.Network) float64 {
	total := 0.0
	for v := 0; v < c.NumVertices(); v++ {
		sd, _ := o.signedDist(c.VertexPos(v))
		if sd < 0 {
			total += 0.5 * sd * sd
		}
	}
	return o.Weight * total
}

func (o SpherePotential) Gradient(c *curve.Network) [][3]float64 {
	out := make([][3]float64, c.NumVertices())
	for v := 0; v < c.NumVertices(); v++ {
		sd, grad := o.signedDist(c.VertexPos(v))
		if sd < 0 {
			g := r3.Scale(o.Weight*sd, grad)
			out[v][0], out[v][1], out[v][2] = g.X, g.Y, g.Z
		}
	}
	return out
}
