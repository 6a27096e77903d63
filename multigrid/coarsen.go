// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package multigrid implements the geometric multigrid hierarchy used to
// precondition the outer CG solve for the Sobolev gradient (spec §4.3): a
// sequence of coarsened curves, each with its own BCT, linked by edge-level
// prolongation/restriction operators, with a Jacobi-smoothed V-cycle and a
// dense Cholesky solve at the coarsest level.
package multigrid

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/cpmech/tangentflow/curve"
	"github.com/cpmech/tangentflow/tferr"
)

// EdgeMap links one level's fine edges to its coarse edges. A coarse edge
// replaces either one fine edge (no contraction happened at that point of
// the chain) or two (the fine edges straddling a contracted vertex); the
// mapping is derived purely from the vertex coarsening (spec §4.3: "derive
// edge-level transfer operators by composing the vertex map with edge
// incidences").
type EdgeMap struct {
	fineToCoarse []int
	coarseToFine [][]int
	fineMass     []float64
}

// Prolong maps a coarse edge-indexed vector to fine resolution by copying
// each coarse value to every fine edge it replaced (piecewise-constant
// injection).
func (m *EdgeMap) Prolong(coarse []float64) []float64 {
	out := make([]float64, len(m.fineToCoarse))
	for fe, ce := range m.fineToCoarse {
		out[fe] = coarse[ce]
	}
	return out
}

// Restrict maps a fine edge-indexed vector to coarse resolution by a
// mass-weighted average of the fine edges composing each coarse edge,
// consistent with the dual-mass weighting used throughout the metric
// operator (spec §4.2).
func (m *EdgeMap) Restrict(fine []float64) []float64 {
	out := make([]float64, len(m.coarseToFine))
	for ce, fes := range m.coarseToFine {
		var sum, wsum float64
		for _, fe := range fes {
			w := m.fineMass[fe]
			sum += w * fine[fe]
			wsum += w
		}
		if wsum == 0 {
			continue
		}
		out[ce] = sum / wsum
	}
	return out
}

func isPinned(p curve.Pins) bool { return p.Position || p.Tangent || p.Surface }

// chainEdge is a coarse edge before vertex-index compaction: v0, v1 are
// original (fine) vertex indices of two consecutive retained chain
// positions.
type chainEdge struct {
	v0, v1 int
}

// coarsen builds the next-coarser curve by contracting every other vertex
// along degree-2 chains; junctions (valence != 2) and pinned vertices are
// always preserved (spec §4.3). It returns nil, nil, nil when the curve
// cannot be coarsened further (every vertex is an anchor).
func coarsen(fine *curve.Network) (*curve.Network, *EdgeMap, error) {
	n := fine.NumVertices()
	if n == 0 {
		return nil, nil, tferr.Wrap(tferr.InvalidTopology, "cannot coarsen an empty curve")
	}

	anchor := make([]bool, n)
	anyAnchor := false
	for v := 0; v < n; v++ {
		if fine.Valence(v) != 2 || isPinned(fine.Pin(v)) {
			anchor[v] = true
			anyAnchor = true
		}
	}
	if !anyAnchor {
		// a single smooth closed loop with no junctions or pins; break
		// symmetry by forcing one anchor so the chain walk has a start.
		anchor[0] = true
	}

	edgeVisited := make([]bool, fine.NumEdges())
	retain := make([]bool, n)
	for v := 0; v < n; v++ {
		if anchor[v] {
			retain[v] = true
		}
	}

	var coarseEdges []chainEdge
	// contraction[removed vertex] = the two retained neighbors it sits
	// between along its chain.
	contraction := make(map[int][2]int)

	otherEnd := func(e, v int) int {
		u0, u1 := fine.EdgeVerts(e)
		if u0 == v {
			return u1
		}
		return u0
	}

	walk := func(start, e0 int) []int {
		chain := []int{start}
		prev := start
		e := e0
		edgeVisited[e] = true
		cur := otherEnd(e, prev)
		chain = append(chain, cur)
		for !anchor[cur] {
			next := -1
			for _, ee := range fine.VertexEdges(cur) {
				if ee != e && !edgeVisited[ee] {
					next = ee
					break
				}
			}
			if next == -1 {
				break
			}
			e = next
			edgeVisited[e] = true
			prev = cur
			cur = otherEnd(e, prev)
			chain = append(chain, cur)
		}
		return chain
	}

	for v := 0; v < n; v++ {
		if !anchor[v] {
			continue
		}
		for _, e := range fine.VertexEdges(v) {
			if edgeVisited[e] {
				continue
			}
			chain := walk(v, e)
			L := len(chain)
			// retain endpoints always; among interior positions (1..L-2)
			// retain odd 1-indexed offsets, halving the interior count.
			for idx := 1; idx <= L-2; idx++ {
				if idx%2 == 1 {
					retain[chain[idx]] = true
				}
			}
			// emit coarse edges between consecutive retained chain
			// positions, recording the single contracted vertex (if any)
			// bracketed between them.
			left := 0
			for i := 1; i < L; i++ {
				if !retain[chain[i]] {
					continue
				}
				coarseEdges = append(coarseEdges, chainEdge{chain[left], chain[i]})
				if i == left+2 {
					contraction[chain[left+1]] = [2]int{chain[left], chain[i]}
				}
				left = i
			}
		}
	}

	// compact retained vertices into a new coarse index space
	oldToNew := make(map[int]int, n)
	var pins []curve.Pins
	var newIdx int
	coarseVerts := make([]int, 0, n)
	for v := 0; v < n; v++ {
		if retain[v] {
			oldToNew[v] = newIdx
			newIdx++
			coarseVerts = append(coarseVerts, v)
			pins = append(pins, fine.Pin(v))
		}
	}
	if newIdx == n {
		// no vertex was removed: curve cannot be coarsened further
		return nil, nil, nil
	}

	positions := make([]r3.Vec, len(coarseVerts))
	for i, v := range coarseVerts {
		positions[i] = fine.VertexPos(v)
	}

	edgeList := make([][2]int, len(coarseEdges))
	for i, ce := range coarseEdges {
		edgeList[i] = [2]int{oldToNew[ce.v0], oldToNew[ce.v1]}
	}

	coarse, err := curve.New(positions, edgeList)
	if err != nil {
		return nil, nil, err
	}
	for i, p := range pins {
		coarse.SetPin(i, p)
	}

	// build the edge map from the same contraction records, keyed by the
	// (unordered) retained endpoints of each coarse edge.
	removedByEndpoints := make(map[[2]int]int, len(contraction))
	for removed, ends := range contraction {
		key := ends
		if key[0] > key[1] {
			key[0], key[1] = key[1], key[0]
		}
		removedByEndpoints[key] = removed
	}
	findEdge := func(u, v int) int {
		for _, e := range fine.VertexEdges(u) {
			a, b := fine.EdgeVerts(e)
			if (a == u && b == v) || (a == v && b == u) {
				return e
			}
		}
		return -1
	}

	coarseToFine := make([][]int, len(coarseEdges))
	fineToCoarse := make([]int, fine.NumEdges())
	for i := range fineToCoarse {
		fineToCoarse[i] = -1
	}
	for ci, ce := range coarseEdges {
		key := [2]int{ce.v0, ce.v1}
		if key[0] > key[1] {
			key[0], key[1] = key[1], key[0]
		}
		if removed, ok := removedByEndpoints[key]; ok {
			e1 := findEdge(ce.v0, removed)
			e2 := findEdge(removed, ce.v1)
			coarseToFine[ci] = []int{e1, e2}
			fineToCoarse[e1] = ci
			fineToCoarse[e2] = ci
		} else {
			e := findEdge(ce.v0, ce.v1)
			coarseToFine[ci] = []int{e}
			fineToCoarse[e] = ci
		}
	}

	fineMass := make([]float64, fine.NumEdges())
	for e := 0; e < fine.NumEdges(); e++ {
		fineMass[e] = fine.EdgeMass(e)
	}

	return coarse, &EdgeMap{fineToCoarse: fineToCoarse, coarseToFine: coarseToFine, fineMass: fineMass}, nil
}
