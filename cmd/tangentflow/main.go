// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command tangentflow runs the tangent-point gradient flow on a regular
// circle (the S1/S3/S8 test scenario's starting curve) for a fixed number
// of steps, printing the energy at each step.
package main

import (
	"flag"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/tangentflow/config"
	"github.com/cpmech/tangentflow/curve"
	"github.com/cpmech/tangentflow/flow"
)

func circle(n int) *curve.Network {
	pos := make([]r3.Vec, n)
	edges := make([][2]int, n)
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		pos[i] = r3.Vec{X: math.Cos(a), Y: math.Sin(a), Z: 0}
		edges[i] = [2]int{i, (i + 1) % n}
	}
	o, err := curve.New(pos, edges)
	if err != nil {
		chk.Panic("circle: %v\n", err)
	}
	return o
}

func main() {
	nvert := flag.Int("n", 48, "initial vertex count")
	nsteps := flag.Int("steps", 20, "number of flow steps")
	alpha := flag.Float64("alpha", 3, "tangent-point alpha exponent")
	beta := flag.Float64("beta", 6, "tangent-point beta exponent")
	flag.Parse()

	io.PfWhite("\ntangentflow -- tangent-point curve energy flow\n\n")

	c := circle(*nvert)

	opts := config.DefaultFlowOptions()
	opts.Alpha = *alpha
	opts.Beta = *beta

	solver, err := flow.New(c, opts)
	if err != nil {
		chk.Panic("flow.New failed: %v\n", err)
	}

	for i := 0; i < *nsteps; i++ {
		res, err := solver.Step()
		if err != nil {
			chk.Panic("step %d failed: %v\n", i, err)
		}
		io.Pf("step %3d: energy=%v  step-size=%v  cos(g,ghat)=%v  edges=%v\n",
			i, res.Energy, res.StepSize, res.CosineToGhat, solver.Curve().NumEdges())
		if res.SoboNormZero {
			io.Pfgreen("near-minimum reached (sobolev gradient ~ 0) at step %d\n", i)
			break
		}
		if res.Subdivided {
			io.Pfyel("subdivided at step %d, now %d edges\n", i, solver.Curve().NumEdges())
		}
	}
}
