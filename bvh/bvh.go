// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bvh implements the Barnes-Hut bounding-volume hierarchy over edge
// midpoints (spec §4.1): O(m log m) assembly, and O(m log m) expected
// energy/gradient evaluation of the discrete tangent-point functional via a
// far-field admissibility predicate. The same tree is reused by package bct
// for the dual-tree block-cluster traversal (spec §4.2).
package bvh

import (
	"math"
	"sort"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/cpmech/tangentflow/curve"
	"github.com/cpmech/tangentflow/geom"
	"github.com/cpmech/tangentflow/tferr"
)

// parallelBuildThreshold bounds recursive fork depth: below this many edges
// a subtree is cheap enough that spawning goroutines would cost more than
// it saves.
const parallelBuildThreshold = 512

// maxParallelBuildDepth caps how many tree levels fork into goroutines; the
// teacher's BVH-unrelated FEM assembly parallelizes via MPI processes, so
// this cap is chosen empirically to bound goroutine fan-out to roughly
// GOMAXPROCS*a few without reading runtime.NumCPU recursively.
const maxParallelBuildDepth = 6

// Node is one box of the hierarchy: bounds over positions and tangents
// (TBox is recorded but not consulted by Admissible or AdmissibleNodes,
// which use only the positional Box), aggregate mass and
// mass-weighted centroid/tangent, and up to two children. A leaf holds a
// single edge index; Edge is -1 for internal nodes.
type Node struct {
	Box      geom.AABB // position bounding box
	TBox     geom.AABB // tangent bounding box
	Mass     float64
	Centroid r3.Vec
	Tangent  r3.Vec
	Left     *Node
	Right    *Node
	Edge     int
	ID       int // dense index in [0, Tree.NumNodes), assigned at build time
}

func (n *Node) isLeaf() bool { return n.Edge >= 0 }

// diam returns the positional bounding-box diagonal length, used by the
// admissibility predicate max(diam(A),diam(B)) < sep*dist(A,B).
func (n *Node) diam() float64 {
	return n.Box.Diagonal()
}

// Tree is a Barnes-Hut hierarchy built once per topology/position snapshot.
type Tree struct {
	Root *Node
	Sep  float64

	mid  []r3.Vec
	tan  []r3.Vec
	mass []float64

	numNodes int
}

// NumNodes returns the number of nodes (internal + leaf) in the tree; node
// IDs are dense in [0, NumNodes), assigned by a post-build traversal.
func (t *Tree) NumNodes() int { return t.numNodes }

// New builds a Tree over the edge midpoints of c with admissibility ratio
// sep (spec default 1.0). O(m log m).
func New(c *curve.Network, sep float64) (*Tree, error) {
	m := c.NumEdges()
	if m == 0 {
		return nil, tferr.Wrap(tferr.InvalidTopology, "cannot build a BVH over a curve with no edges")
	}
	if sep <= 0 {
		return nil, tferr.Wrap(tferr.InvalidExponents, "sep must be > 0, got %g", sep)
	}
	t := &Tree{
		Sep:  sep,
		mid:  make([]r3.Vec, m),
		tan:  make([]r3.Vec, m),
		mass: make([]float64, m),
	}
	idx := make([]int, m)
	for e := 0; e < m; e++ {
		t.mid[e] = c.EdgeMidpoint(e)
		t.tan[e] = c.EdgeTangent(e)
		t.mass[e] = c.EdgeMass(e)
		idx[e] = e
	}
	t.Root = t.build(idx, 0)
	t.numNodes = t.assignIDs(t.Root, 0)
	return t, nil
}

// assignIDs numbers every node of the subtree rooted at n starting at next,
// post-order, and returns the count of nodes numbered.
func (t *Tree) assignIDs(n *Node, next int) int {
	if n == nil {
		return next
	}
	if n.Left != nil {
		next = t.assignIDs(n.Left, next)
	}
	if n.Right != nil {
		next = t.assignIDs(n.Right, next)
	}
	n.ID = next
	return next + 1
}

// NumEdges returns the number of leaves (edges) in the tree.
func (t *Tree) NumEdges() int { return len(t.mid) }

// Midpoint, Tangent, and Mass expose the cached per-edge data the tree was
// built from, so callers (e.g. package bct) need not recompute them.
func (t *Tree) Midpoint(e int) r3.Vec  { return t.mid[e] }
func (t *Tree) Tangent(e int) r3.Vec   { return t.tan[e] }
func (t *Tree) EdgeMass(e int) float64 { return t.mass[e] }

func (t *Tree) build(idx []int, depth int) *Node {
	if len(idx) == 1 {
		e := idx[0]
		return &Node{
			Box:  geom.Point(t.mid[e]),
			TBox: geom.Point(t.tan[e]),
			Mass: t.mass[e], Centroid: t.mid[e], Tangent: t.tan[e],
			Edge: e,
		}
	}

	box := geom.Point(t.mid[idx[0]])
	tbox := geom.Point(t.tan[idx[0]])
	var totalMass float64
	var centroidSum, tangentSum r3.Vec
	for _, e := range idx {
		box = box.Extend(t.mid[e])
		tbox = tbox.Extend(t.tan[e])
		totalMass += t.mass[e]
		centroidSum = r3.Add(centroidSum, r3.Scale(t.mass[e], t.mid[e]))
		tangentSum = r3.Add(tangentSum, r3.Scale(t.mass[e], t.tan[e]))
	}
	centroid := r3.Scale(1/totalMass, centroidSum)
	tangent := r3.Scale(1/totalMass, tangentSum)

	axis := box.LongestAxis()
	sorted := append([]int(nil), idx...)
	sort.Slice(sorted, func(i, j int) bool {
		return geom.Coord(t.mid[sorted[i]], axis) < geom.Coord(t.mid[sorted[j]], axis)
	})

	// binary split on the longest axis at the mass median
	half := totalMass / 2
	cum := 0.0
	split := 1
	for i, e := range sorted {
		cum += t.mass[e]
		if cum >= half {
			split = i + 1
			break
		}
	}
	if split < 1 {
		split = 1
	}
	if split > len(sorted)-1 {
		split = len(sorted) - 1
	}
	leftIdx, rightIdx := sorted[:split], sorted[split:]

	var left, right *Node
	if len(idx) >= parallelBuildThreshold && depth < maxParallelBuildDepth {
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			left = t.build(leftIdx, depth+1)
		}()
		go func() {
			defer wg.Done()
			right = t.build(rightIdx, depth+1)
		}()
		wg.Wait()
	} else {
		left = t.build(leftIdx, depth+1)
		right = t.build(rightIdx, depth+1)
	}

	return &Node{
		Box: box, TBox: tbox,
		Mass: totalMass, Centroid: centroid, Tangent: tangent,
		Left: left, Right: right, Edge: -1,
	}
}

// Admissible is the Barnes-Hut far-field predicate for a single query point
// p against cluster n: n's box diagonal must be smaller than sep times the
// distance from p to n's centroid. A zero distance (p coincides with the
// centroid, e.g. catastrophic cancellation at the admissibility boundary)
// is treated as inadmissible, which forces the caller to recurse into n's
// children instead of approximating — the numerical fallback spec §4.1
// requires.
func Admissible(n *Node, p r3.Vec, sep float64) bool {
	d := r3.Norm(r3.Sub(p, n.Centroid))
	if d == 0 {
		return false
	}
	return n.diam() < sep*d
}

// AdmissibleNodes is the two-cluster admissibility predicate used by the
// block-cluster tree: max(diam(a), diam(b)) < sep*dist(a,b).
func AdmissibleNodes(a, b *Node, sep float64) bool {
	d := r3.Norm(r3.Sub(a.Centroid, b.Centroid))
	if d == 0 {
		return false
	}
	return math.Max(a.diam(), b.diam()) < sep*d
}
