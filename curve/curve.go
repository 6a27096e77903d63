// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package curve holds the vertex/edge topology of a polygonal space curve:
// positions, tangents, length queries, and iteration over edges and vertex
// neighborhoods. Topology is immutable within a step; positions may change.
package curve

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/cpmech/tangentflow/tferr"
)

// Pins records which degrees of freedom of a vertex are constrained.
type Pins struct {
	Position bool // pinned-position: vertex does not move
	Tangent  bool // pinned-tangent: the vertex's incident-edge directions are fixed
	Surface  bool // pinned-to-surface: vertex constrained to an implicit SDF = 0
}

// Vertex is a single point of the curve network.
type Vertex struct {
	Pos   r3.Vec // position in R3
	Edges []int  // incident edge indices, in no particular order
	Pin   Pins   // constraint flags; zero value means unconstrained
}

// Edge is an ordered pair of vertex indices (prevVert, nextVert).
type Edge struct {
	V0, V1 int
}

// Network is the curve's vertex/edge graph plus current positions. It owns
// its vertices and edges; BVH, BCT, multigrid, and constraint structures are
// ephemeral views over it, rebuilt whenever topology changes (see Subdivide).
type Network struct {
	verts []Vertex
	edges []Edge
}

// New validates and builds a Network from position and (u,v) edge tables.
// Returns tferr.InvalidTopology for out-of-range indices, self-loop edges,
// duplicate edges, or an empty curve.
func New(positions []r3.Vec, edges [][2]int) (*Network, error) {
	if len(positions) == 0 || len(edges) == 0 {
		return nil, tferr.Wrap(tferr.InvalidTopology, "curve must have at least one vertex and one edge")
	}
	n := len(positions)
	o := &Network{
		verts: make([]Vertex, n),
		edges: make([]Edge, len(edges)),
	}
	for i, p := range positions {
		o.verts[i].Pos = p
	}
	seen := make(map[[2]int]bool, len(edges))
	for e, uv := range edges {
		u, v := uv[0], uv[1]
		if u < 0 || u >= n || v < 0 || v >= n {
			return nil, tferr.Wrap(tferr.InvalidTopology, "edge %d references out-of-range vertex (%d,%d) with %d vertices", e, u, v, n)
		}
		if u == v {
			return nil, tferr.Wrap(tferr.InvalidTopology, "edge %d is a self-loop at vertex %d", e, u)
		}
		key := [2]int{u, v}
		if u > v {
			key = [2]int{v, u}
		}
		if seen[key] {
			return nil, tferr.Wrap(tferr.InvalidTopology, "duplicate edge between vertices %d and %d", u, v)
		}
		seen[key] = true
		o.edges[e] = Edge{V0: u, V1: v}
		o.verts[u].Edges = append(o.verts[u].Edges, e)
		o.verts[v].Edges = append(o.verts[v].Edges, e)
	}
	return o, nil
}

// NumVertices returns the number of vertices n.
func (o *Network) NumVertices() int { return len(o.verts) }

// NumEdges returns the number of edges m.
func (o *Network) NumEdges() int { return len(o.edges) }

// VertexPos returns the position of vertex v.
func (o *Network) VertexPos(v int) r3.Vec { return o.verts[v].Pos }

// SetVertexPos updates the position of vertex v. Topology is unaffected.
func (o *Network) SetVertexPos(v int, p r3.Vec) { o.verts[v].Pos = p }

// Positions returns a copy of all vertex positions, indexed by vertex.
func (o *Network) Positions() []r3.Vec {
	out := make([]r3.Vec, len(o.verts))
	for i := range o.verts {
		out[i] = o.verts[i].Pos
	}
	return out
}

// SetPositions overwrites all vertex positions. len(p) must equal NumVertices.
func (o *Network) SetPositions(p []r3.Vec) {
	for i := range p {
		o.verts[i].Pos = p[i]
	}
}

// Pin returns the pin flags of vertex v.
func (o *Network) Pin(v int) Pins { return o.verts[v].Pin }

// SetPin overwrites the pin flags of vertex v.
func (o *Network) SetPin(v int, p Pins) { o.verts[v].Pin = p }

// VertexEdges returns the incident edge indices of vertex v.
func (o *Network) VertexEdges(v int) []int { return o.verts[v].Edges }

// Neighbors returns the vertex indices adjacent to v via an incident edge.
func (o *Network) Neighbors(v int) []int {
	out := make([]int, 0, len(o.verts[v].Edges))
	for _, e := range o.verts[v].Edges {
		ed := o.edges[e]
		if ed.V0 == v {
			out = append(out, ed.V1)
		} else {
			out = append(out, ed.V0)
		}
	}
	return out
}

// Valence returns the number of incident edges of vertex v.
func (o *Network) Valence(v int) int { return len(o.verts[v].Edges) }

// EdgeVerts returns the (v0, v1) endpoints of edge e.
func (o *Network) EdgeVerts(e int) (int, int) { return o.edges[e].V0, o.edges[e].V1 }

// EdgeVector returns p1 - p0 for edge e (not normalized).
func (o *Network) EdgeVector(e int) r3.Vec {
	ed := o.edges[e]
	return r3.Sub(o.verts[ed.V1].Pos, o.verts[ed.V0].Pos)
}

// EdgeLength returns the Euclidean length of edge e.
func (o *Network) EdgeLength(e int) float64 {
	return r3.Norm(o.EdgeVector(e))
}

// EdgeMidpoint returns the midpoint m = (p0+p1)/2 of edge e.
func (o *Network) EdgeMidpoint(e int) r3.Vec {
	ed := o.edges[e]
	return r3.Scale(0.5, r3.Add(o.verts[ed.V0].Pos, o.verts[ed.V1].Pos))
}

// EdgeTangent returns the unit tangent t = (p1-p0)/length of edge e.
func (o *Network) EdgeTangent(e int) r3.Vec {
	d := o.EdgeVector(e)
	l := r3.Norm(d)
	if l == 0 {
		return r3.Vec{}
	}
	return r3.Scale(1/l, d)
}

// EdgeMass returns the dual mass (integration weight) of edge e: its length.
func (o *Network) EdgeMass(e int) float64 { return o.EdgeLength(e) }

// Edges calls fn(e) for every edge index in [0, NumEdges).
func (o *Network) Edges(fn func(e int)) {
	for e := range o.edges {
		fn(e)
	}
}

// TotalLength sums the length of every edge.
func (o *Network) TotalLength() float64 {
	total := 0.0
	for e := range o.edges {
		total += o.EdgeLength(e)
	}
	return total
}

// AverageEdgeLength is TotalLength / NumEdges.
func (o *Network) AverageEdgeLength() float64 {
	if len(o.edges) == 0 {
		return 0
	}
	return o.TotalLength() / float64(len(o.edges))
}

// Barycenter returns the edge-mass-weighted centroid (Sigma li*mi)/(Sigma li),
// matching the dual-mass weighting used throughout the energy and metric.
func (o *Network) Barycenter() r3.Vec {
	var sum r3.Vec
	mass := 0.0
	for e := range o.edges {
		l := o.EdgeLength(e)
		sum = r3.Add(sum, r3.Scale(l, o.EdgeMidpoint(e)))
		mass += l
	}
	if mass == 0 {
		return r3.Vec{}
	}
	return r3.Scale(1/mass, sum)
}

// Clone returns a deep copy sharing no backing arrays with o.
func (o *Network) Clone() *Network {
	c := &Network{
		verts: make([]Vertex, len(o.verts)),
		edges: make([]Edge, len(o.edges)),
	}
	copy(c.edges, o.edges)
	for i, v := range o.verts {
		c.verts[i] = Vertex{Pos: v.Pos, Pin: v.Pin, Edges: append([]int(nil), v.Edges...)}
	}
	return c
}
