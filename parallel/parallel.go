// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package parallel provides the data-parallel fork-join primitives used
// across bvh, bct, and multigrid: range splitting with a bulk-synchronous
// join, mirroring spec §5 (no cooperative scheduling, no I/O suspension
// inside a parallel region).
package parallel

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Threshold below which Range runs serially: spawning goroutines for a
// handful of items costs more than it saves.
const Threshold = 256

// Range splits [0,n) into contiguous chunks, one per GOMAXPROCS worker, and
// runs fn(lo, hi) on each chunk concurrently. It blocks until every chunk
// finishes (or one returns an error) and returns the first error observed.
// Chunk boundaries are deterministic for a fixed n and GOMAXPROCS, but the
// relative order in which chunks execute is not.
func Range(n int, fn func(lo, hi int) error) error {
	if n <= 0 {
		return nil
	}
	workers := runtime.GOMAXPROCS(0)
	if n < Threshold || workers <= 1 {
		return fn(0, n)
	}
	chunk := (n + workers - 1) / workers
	var g errgroup.Group
	for lo := 0; lo < n; lo += chunk {
		lo := lo
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		g.Go(func() error {
			return fn(lo, hi)
		})
	}
	return g.Wait()
}

// Do runs n independent thunks concurrently (one goroutine per thunk,
// bounded implicitly by GOMAXPROCS via the scheduler) and returns the first
// error. Used where work items are not contiguous ranges, e.g. sweeping an
// admissible-block list.
func Do(n int, fn func(i int) error) error {
	if n <= 0 {
		return nil
	}
	if n < Threshold {
		for i := 0; i < n; i++ {
			if err := fn(i); err != nil {
				return err
			}
		}
		return nil
	}
	var g errgroup.Group
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			return fn(i)
		})
	}
	return g.Wait()
}
