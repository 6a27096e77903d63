// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package constraint

import "github.com/cpmech/tangentflow/curve"

// edgeRow is a constraint row expressed over edges: edge index -> scalar
// coefficient, for a single spatial channel.
type edgeRow map[int]float64

// pullbackRow composes a vertex-space row with the flow field's implicit
// vertex velocity, velocity(v) = sum_{e incident v} 0.5*flow(e) (the
// adjoint of the edge-midpoint lumping used throughout this package),
// producing one edge-indexed row per spatial channel.
func pullbackRow(row VertexRow, c *curve.Network) (jx, jy, jz edgeRow) {
	jx, jy, jz = edgeRow{}, edgeRow{}, edgeRow{}
	for v, coeff := range row {
		for _, e := range c.VertexEdges(v) {
			jx[e] += 0.5 * coeff.X
			jy[e] += 0.5 * coeff.Y
			jz[e] += 0.5 * coeff.Z
		}
	}
	return
}

// dot evaluates the sparse row's dot product against a dense edge-indexed
// vector.
func (r edgeRow) dot(v []float64) float64 {
	s := 0.0
	for e, coeff := range r {
		s += coeff * v[e]
	}
	return s
}

// dense expands the sparse row into a dense edge-indexed vector of length m.
func (r edgeRow) dense(m int) []float64 {
	out := make([]float64, m)
	for e, coeff := range r {
		out[e] = coeff
	}
	return out
}

// scatterToVertices maps an edge-indexed field back to vertices via the same
// 0.5-per-incident-edge adjoint used by pullbackRow, producing a vertex
// position correction from a solved flow-field correction.
func scatterToVertices(c *curve.Network, edgeVals []float64) []float64 {
	out := make([]float64, c.NumVertices())
	for e := 0; e < len(edgeVals); e++ {
		v0, v1 := c.EdgeVerts(e)
		out[v0] += 0.5 * edgeVals[e]
		out[v1] += 0.5 * edgeVals[e]
	}
	return out
}
