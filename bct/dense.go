// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bct

import (
	"gonum.org/v1/gonum/mat"

	"github.com/cpmech/tangentflow/curve"
	"github.com/cpmech/tangentflow/kernel"
)

// DenseReference assembles the exact O(m^2) fractional-Sobolev metric matrix
// with no admissibility approximation (sep behaves as 0, i.e. every pair is
// "inadmissible"/direct). Used by tests (spec §8 scenario S3) to bound the
// BCT's low-rank approximation error; production code must never assemble
// this for curves of realistic size.
func DenseReference(c *curve.Network, alpha, beta float64) (*mat.SymDense, error) {
	k, err := kernel.New(alpha, beta)
	if err != nil {
		return nil, err
	}
	s := k.SobolevExponent()
	sob := kernel.NewSobolev(s)

	m := c.NumEdges()
	mass := make([]float64, m)
	for e := 0; e < m; e++ {
		mass[e] = c.EdgeMass(e)
	}

	A := mat.NewSymDense(m, nil)
	for i := 0; i < m; i++ {
		rowSum := 0.0
		for j := 0; j < m; j++ {
			if i == j {
				continue
			}
			mi, mj := c.EdgeMidpoint(i), c.EdgeMidpoint(j)
			g := sob.Eval(mi, mj)
			aij := g * mass[i] * mass[j]
			A.SetSym(i, j, aij)
			rowSum += aij
		}
		A.SetSym(i, i, mass[i]*mass[i]+rowSum)
	}
	return A, nil
}

// ApplyDense evaluates y = A*v for a dense reference matrix built by
// DenseReference.
func ApplyDense(A *mat.SymDense, v []float64) []float64 {
	x := mat.NewVecDense(len(v), v)
	var y mat.VecDense
	y.MulVec(A, x)
	return y.RawVector().Data
}
