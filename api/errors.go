// File: api/errors.go
// Author: fmontorsi
// License: BSD license
//
// Common error values used across the library.

package api

import "errors"

var (
	// ErrCapacityExhausted is returned by the allocate family when the pool
	// cannot hand out a slot: the pool is bounded and full, or its maximum
	// size budget is spent. Recoverable; recycling an item clears it.
	ErrCapacityExhausted = errors.New("pool capacity exhausted")

	// ErrPoolClosed is returned by the allocate family after Close, while
	// the pool drains outstanding handles.
	ErrPoolClosed = errors.New("pool is closed")
)
