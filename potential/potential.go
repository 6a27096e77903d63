// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package potential implements the extensible energy-term slot the flow
// solver composes beyond the bare tangent-point term (spec.md §9's
// "heterogeneous obstacles"): a tagged-union Potential interface with a
// map-of-constructors registry, grounded on ele/factory.go's
// SetInfoFunc/SetAllocator pattern.
package potential

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/tangentflow/curve"
	"github.com/cpmech/tangentflow/tferr"
)

// Potential is one additional energy term the flow solver may add to the
// tangent-point energy: a scalar Energy and its L2 gradient w.r.t. vertex
// positions, in the same (n,3) shape bvh.Gradient returns.
type Potential interface {
	Energy(c *curve.Network) float64
	Gradient(c *curve.Network) [][3]float64
}

// Constructor allocates a Potential from a keycode-style parameter map, the
// same calling convention ele/factory.go's AllocatorType uses.
type Constructor func(params map[string]float64) (Potential, error)

var registry = make(map[string]Constructor)

// Register adds a named potential constructor. Panics if kind is already
// registered -- mirrors ele.SetAllocator's chk.Panic on duplicate
// registration, a programmer error rather than recoverable input.
func Register(kind string, ctor Constructor) {
	if _, ok := registry[kind]; ok {
		chk.Panic("cannot register potential constructor for %q because it exists already", kind)
	}
	registry[kind] = ctor
}

// New allocates a Potential by kind, looking up the registry built by
// Register (and this package's init, which registers the built-in kinds).
func New(kind string, params map[string]float64) (Potential, error) {
	ctor, ok := registry[kind]
	if !ok {
		return nil, tferr.Wrap(tferr.InvalidTopology, "no potential registered for kind %q", kind)
	}
	return ctor(params)
}

func init() {
	Register("length", func(map[string]float64) (Potential, error) { return LengthPotential{}, nil })
	Register("length_diff", func(params map[string]float64) (Potential, error) {
		return LengthDiffPotential{Target: params["target"]}, nil
	})
	Register("pin_bending", func(params map[string]float64) (Potential, error) {
		return PinBendingPotential{Weight: params["weight"]}, nil
	})
	Register("plane", func(params map[string]float64) (Potential, error) {
		return PlanePotential{
			Center: r3.Vec{X: params["cx"], Y: params["cy"], Z: params["cz"]},
			Normal: r3.Unit(r3.Vec{X: params["nx"], Y: params["ny"], Z: params["nz"]}),
			Weight: params["weight"],
		}, nil
	})
	Register("sphere", func(params map[string]float64) (Potential, error) {
		return SpherePotential{
			Center: r3.Vec{X: params["cx"], Y: params["cy"], Z: params["cz"]},
			Radius: params["radius"],
			Weight: params["weight"],
		}, nil
	})
	Register("mesh", func(map[string]float64) (Potential, error) {
		return nil, tferr.Wrap(tferr.ErrNotImplemented, "mesh potentials require OBJ/mesh I/O, which is out of scope")
	})
	Register("vector_field", func(map[string]float64) (Potential, error) {
		return nil, tferr.Wrap(tferr.ErrNotImplemented, "vector-field potentials are an open question upstream (spec.md §9)")
	})
}
