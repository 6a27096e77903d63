// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bvh

import (
	"sync"

	"github.com/cpmech/tangentflow/kernel"
	"github.com/cpmech/tangentflow/parallel"
)

// Energy evaluates the discrete tangent-point energy
//
//	E = (1/2) * sum_i (edge-i traversal contribution)
//
// by a Barnes-Hut traversal per edge (spec §4.1): admissible clusters are
// summarized by their centroid and mass, inadmissible subtrees are
// recursed into, and leaves (other than i itself) are evaluated directly.
// The per-edge sum is parallel (spec §5): each chunk's partial sum is added
// to the total in whatever order the chunks finish, so when more than one
// chunk runs the last bits of the result may differ between runs; a serial
// run (fewer than parallel.Threshold edges, or GOMAXPROCS=1) is
// deterministic.
func (t *Tree) Energy(k *kernel.TangentPoint) float64 {
	m := len(t.mid)
	var total float64
	var mu sync.Mutex
	parallel.Range(m, func(lo, hi int) error {
		var local float64
		for e := lo; e < hi; e++ {
			local += t.edgeEnergy(e, t.Root, k)
		}
		mu.Lock()
		total += local
		mu.Unlock()
		return nil
	})
	return 0.5 * total
}

func (t *Tree) edgeEnergy(i int, n *Node, k *kernel.TangentPoint) float64 {
	if n == nil {
		return 0
	}
	if n.isLeaf() {
		j := n.Edge
		if j == i {
			return 0
		}
		return k.Eval(t.mid[i], t.mid[j], t.tan[i]) * t.mass[i] * t.mass[j]
	}
	if Admissible(n, t.mid[i], t.Sep) {
		return k.Eval(t.mid[i], n.Centroid, t.tan[i]) * t.mass[i] * n.Mass
	}
	return t.edgeEnergy(i, n.Left, k) + t.edgeEnergy(i, n.Right, k)
}

// DirectEnergy computes the same quantity by brute-force O(m^2) summation,
// with no admissibility approximation (sep behaves as if 0): used by tests
// to verify BH-consistency (spec §8, property 3) as sep -> 0.
func (t *Tree) DirectEnergy(k *kernel.TangentPoint) float64 {
	m := len(t.mid)
	total := 0.0
	for i := 0; i < m; i++ {
		for j := 0; j < m; j++ {
			if i == j {
				continue
			}
			total += k.Eval(t.mid[i], t.mid[j], t.tan[i]) * t.mass[i] * t.mass[j]
		}
	}
	return 0.5 * total
}
