// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package kernel implements the tangent-point energy kernel k_{alpha,beta}
// and its gradient, plus the fractional Sobolev far-field kernel G_s used by
// the block-cluster metric operator. Both are stateless, parameter-only
// models in the style of mdl/solid's material models: construct once with
// validated exponents, then call Eval/Gradient per pair of points.
package kernel

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/cpmech/tangentflow/tferr"
)

// TangentPoint holds the exponents (alpha, beta) of the discrete tangent-
// point kernel
//
//	k(x,y,T) = ||P_T(y-x)||^alpha / ||y-x||^beta
//
// with P_T the projection orthogonal to the unit tangent T at x.
type TangentPoint struct {
	Alpha, Beta float64
}

// New validates alpha > 0 and beta > alpha+1 (integrability, spec §7) and
// returns a TangentPoint kernel.
func New(alpha, beta float64) (*TangentPoint, error) {
	if alpha <= 0 {
		return nil, tferr.Wrap(tferr.InvalidExponents, "alpha must be > 0, got %g", alpha)
	}
	if beta <= alpha+1 {
		return nil, tferr.Wrap(tferr.InvalidExponents, "beta must be > alpha+1 (alpha=%g, beta=%g)", alpha, beta)
	}
	return &TangentPoint{Alpha: alpha, Beta: beta}, nil
}

// SobolevExponent returns s = (beta-1)/alpha - 1, the exponent of the
// fractional Sobolev far-field kernel G_s induced by this energy kernel.
func (o *TangentPoint) SobolevExponent() float64 {
	return (o.Beta-1)/o.Alpha - 1
}

// Eval returns k(x,y,t) for edge midpoint x with unit tangent t, and a far
// point y (the exact pair midpoint or a cluster centroid). Self-pairs must
// be excluded by the caller; at y == x the kernel is singular and this
// returns +Inf rather than silently clamping.
func (o *TangentPoint) Eval(x, y, t r3.Vec) float64 {
	d := r3.Sub(y, x)
	dist := r3.Norm(d)
	if dist == 0 {
		return math.Inf(1)
	}
	proj := r3.Sub(d, r3.Scale(r3.Dot(d, t), t)) // P_T(y-x)
	num := math.Pow(r3.Norm(proj), o.Alpha)
	den := math.Pow(dist, o.Beta)
	return num / den
}

// Gradient returns d k/d x, d k/d y, and d k/d t for the same arguments as
// Eval, evaluated by the closed-form derivative of P_T(y-x) and the two
// power terms. d/d t uses that d(proj)/d t = -(d.t) I - t (d^T) contracted
// against d through the chain rule of ||proj||^alpha.
func (o *TangentPoint) Gradient(x, y, t r3.Vec) (dkdx, dkdy, dkdt r3.Vec) {
	d := r3.Sub(y, x)
	dist := r3.Norm(d)
	if dist == 0 {
		return r3.Vec{}, r3.Vec{}, r3.Vec{}
	}
	dt := r3.Dot(d, t)
	proj := r3.Sub(d, r3.Scale(dt, t))
	pnorm := r3.Norm(proj)
	if pnorm == 0 {
		// d is parallel to t: the numerator and its gradient vanish (alpha>0).
		return r3.Vec{}, r3.Vec{}, r3.Vec{}
	}

	num := math.Pow(pnorm, o.Alpha)
	den := math.Pow(dist, o.Beta)

	// d(||proj||^alpha)/d(proj) = alpha * pnorm^(alpha-2) * proj
	dNumDProj := r3.Scale(o.Alpha*math.Pow(pnorm, o.Alpha-2), proj)

	// d(proj)/d(d) applied to a covector v: v - (v.t) t  (projection is self-adjoint)
	dNumDD := r3.Sub(dNumDProj, r3.Scale(r3.Dot(dNumDProj, t), t))

	// d(proj)/d(t) applied to dNumDProj: -(d.t)*dNumDProj - (dNumDProj.t)*d
	dNumDT := r3.Sub(
		r3.Scale(-dt, dNumDProj),
		r3.Scale(r3.Dot(dNumDProj, t), d),
	)

	// d(dist^beta)/d(d) = beta * dist^(beta-2) * d
	dDenDD := r3.Scale(o.Beta*math.Pow(dist, o.Beta-2), d)

	// quotient rule: d(num/den)/d(d) = (dNumDD*den - num*dDenDD) / den^2
	den2 := den * den
	dKdD := r3.Sub(r3.Scale(1/den, dNumDD), r3.Scale(num/den2, dDenDD))

	dkdy = dKdD
	dkdx = r3.Scale(-1, dKdD)
	dkdt = r3.Scale(1/den, dNumDT)
	return
}

// Sobolev is the fractional Sobolev far-field kernel G_s(x,y) = ||x-y||^-(2s+1)
// used by the block-cluster metric operator (spec §4.2).
type Sobolev struct {
	S float64
}

// NewSobolev builds the Sobolev kernel at exponent s, normally derived from
// a TangentPoint kernel via SobolevExponent.
func NewSobolev(s float64) *Sobolev { return &Sobolev{S: s} }

// Eval returns G_s(x,y); callers exclude x == y (handled via the diagonal
// mass term instead, see bct.Tree.diag).
func (o *Sobolev) Eval(x, y r3.Vec) float64 {
	dist := r3.Norm(r3.Sub(x, y))
	if dist == 0 {
		return math.Inf(1)
	}
	return math.Pow(dist, -(2*o.S + 1))
}
