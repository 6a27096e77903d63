// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package curve

import "gonum.org/v1/gonum/spatial/r3"

// Subdivide splits every edge at its midpoint, doubling the edge count.
// Original vertex indices [0, NumVertices) are preserved unchanged in the
// returned network (S6: pre-subdivision positions at those indices match
// exactly); new midpoint vertices are appended afterward, unpinned, with
// valence 2. The receiver is left untouched; callers discard any BVH, BCT,
// multigrid, or projector built against the old topology.
func (o *Network) Subdivide() *Network {
	n := len(o.verts)
	positions := make([]r3.Vec, n, n+len(o.edges))
	pins := make([]Pins, n, n+len(o.edges))
	for i, v := range o.verts {
		positions[i] = v.Pos
		pins[i] = v.Pin
	}
	edgesOut := make([][2]int, 0, 2*len(o.edges))
	for e := range o.edges {
		u, v := o.edges[e].V0, o.edges[e].V1
		mid := o.EdgeMidpoint(e)
		newIdx := len(positions)
		positions = append(positions, mid)
		pins = append(pins, Pins{})
		edgesOut = append(edgesOut, [2]int{u, newIdx})
		edgesOut = append(edgesOut, [2]int{newIdx, v})
	}
	nn, err := New(positions, edgesOut)
	if err != nil {
		// cannot happen: edgesOut is constructed from a valid topology by
		// splitting each edge into two disjoint, distinct-endpoint halves.
		panic("curve: Subdivide produced an invalid topology: " + err.Error())
	}
	for i, p := range pins {
		nn.SetPin(i, p)
	}
	return nn
}
