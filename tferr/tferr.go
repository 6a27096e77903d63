// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tferr defines the error kinds surfaced by the tangentflow core.
//
// Every failure is returned to the caller; there are no silent fallbacks.
// Callers distinguish kinds with errors.Is against the sentinel values below.
package tferr

import (
	"errors"
	"fmt"

	"github.com/cpmech/gosl/io"
)

// sentinel error kinds. wrap one of these with Wrap to attach context.
var (
	// InvalidTopology -- duplicate edges, out-of-range indices, self-loop
	// edges, or an empty curve. Fails curve construction.
	InvalidTopology = errors.New("invalid topology")

	// InvalidExponents -- alpha <= 0 or beta <= alpha+1 (kernel not
	// integrable). Fails BCT / kernel construction.
	InvalidExponents = errors.New("invalid tangent-point exponents")

	// SolverNonConvergent -- inner CG exceeded its iteration cap without
	// reaching the target relative residual.
	SolverNonConvergent = errors.New("solver did not converge")

	// LineSearchExhausted -- the backtracking line search used its maximum
	// number of halvings without satisfying the Armijo condition.
	LineSearchExhausted = errors.New("line search exhausted")

	// ConstraintProjectionFailed -- back-projection did not converge within
	// the allotted Newton iterations.
	ConstraintProjectionFailed = errors.New("constraint projection failed")

	// ErrNotImplemented -- a documented stub (e.g. mesh/vector-field
	// potentials) whose contract the upstream code never defined.
	ErrNotImplemented = errors.New("not implemented")

	// StepLimitExceeded -- the flow solver reached FlowOptions.StepLimit
	// before the near-minimum cosine check accepted the curve.
	StepLimitExceeded = errors.New("step limit exceeded")
)

// Wrap formats a message with io.Sf and wraps it around kind so that
// errors.Is(result, kind) still holds.
func Wrap(kind error, format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", io.Sf(format, args...), kind)
}
