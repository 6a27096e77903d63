// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bct

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/tangentflow/curve"
)

func randomPolyline(n int, seed int64) *curve.Network {
	rng := rand.New(rand.NewSource(seed))
	pos := make([]r3.Vec, n)
	edges := make([][2]int, n-1)
	for i := 0; i < n; i++ {
		pos[i] = r3.Vec{X: float64(i) + 0.3*rng.Float64(), Y: 0.2 * rng.Float64(), Z: 0.2 * rng.Float64()}
	}
	for i := 0; i < n-1; i++ {
		edges[i] = [2]int{i, i + 1}
	}
	o, _ := curve.New(pos, edges)
	return o
}

func dot(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

func norm(a []float64) float64 { return math.Sqrt(dot(a, a)) }

func Test_bct01(tst *testing.T) {

	chk.PrintTitle("bct01. apply_metric symmetry (S8 property 1)")

	c := randomPolyline(64, 1)
	t, err := New(c, 1.0, 3, 6)
	if err != nil {
		tst.Fatalf("New failed: %v", err)
	}

	rng := rand.New(rand.NewSource(2))
	v := make([]float64, c.NumEdges())
	w := make([]float64, c.NumEdges())
	for i := range v {
		v[i] = rng.NormFloat64()
		w[i] = rng.NormFloat64()
	}

	Av, err := t.ApplyMetric(v)
	if err != nil {
		tst.Fatalf("ApplyMetric failed: %v", err)
	}
	Aw, err := t.ApplyMetric(w)
	if err != nil {
		tst.Fatalf("ApplyMetric failed: %v", err)
	}

	lhs := dot(Av, w)
	rhs := dot(v, Aw)
	rel := math.Abs(lhs-rhs) / math.Max(math.Abs(lhs), 1e-300)
	if rel > 1e-3 {
		tst.Errorf("symmetry failed: v.Aw=%g, Av.w=%g, rel=%g", rhs, lhs, rel)
	}
}

func Test_bct02(tst *testing.T) {

	chk.PrintTitle("bct02. apply_metric positivity (S8 property 2)")

	c := randomPolyline(48, 3)
	t, err := New(c, 1.0, 3, 6)
	if err != nil {
		tst.Fatalf("New failed: %v", err)
	}

	rng := rand.New(rand.NewSource(4))
	v := make([]float64, c.NumEdges())
	for i := range v {
		v[i] = rng.NormFloat64()
	}
	Av, err := t.ApplyMetric(v)
	if err != nil {
		tst.Fatalf("ApplyMetric failed: %v", err)
	}
	q := dot(v, Av)
	if q <= 0 {
		tst.Errorf("expected strictly positive quadratic form, got %g", q)
	}
}

func Test_bct03(tst *testing.T) {

	chk.PrintTitle("bct03. BCT operator vs dense reference on a 128-edge polyline (S8 S3)")

	c := randomPolyline(129, 5)
	bctTree, err := New(c, 1.0, 3, 6)
	if err != nil {
		tst.Fatalf("New failed: %v", err)
	}
	dense, err := DenseReference(c, 3, 6)
	if err != nil {
		tst.Fatalf("DenseReference failed: %v", err)
	}

	rng := rand.New(rand.NewSource(6))
	v := make([]float64, c.NumEdges())
	for i := range v {
		v[i] = rng.NormFloat64()
	}

	yBct, err := bctTree.ApplyMetric(v)
	if err != nil {
		tst.Fatalf("ApplyMetric failed: %v", err)
	}
	yDense := ApplyDense(dense, v)

	diff := make([]float64, len(v))
	for i := range diff {
		diff[i] = yBct[i] - yDense[i]
	}
	rel := norm(diff) / norm(yDense)
	if rel > 2e-3 {
		tst.Errorf("BCT vs dense relative error too large: %g", rel)
	}
}
