// Package pool implements a fixed- or growable-capacity object pool with
// automatic, reference-count-triggered recycling.
//
// Objects are stored in contiguously allocated arenas and handed out as
// reference-counted handles; when the last handle to an object drops, its
// slot returns to a free list threaded through the arenas instead of going
// back to the garbage collector. Allocate and recycle are O(1), and once a
// pool is warmed up to its working set no further allocation happens on the
// hot path.
//
// A pooled type embeds api.Item and nothing else is required:
//
//	type Event struct {
//	    api.Item
//	    Payload [512]byte
//	}
//
//	p := pool.New[Event](1024, pool.WithGrowthStep[Event](256))
//	h, err := p.Allocate()
//	if err != nil { ... }
//	use(h.Ptr())
//	h.Release() // slot returns to the pool
//
// Concurrency: a Pool is single-threaded by design. No internal
// synchronization exists and concurrent use of one pool from several
// goroutines is a data race; the intended discipline is one pool per
// goroutine. The WithThreadAffinityCheck option provides a debug-time
// assertion of that discipline.
//
// Author: fmontorsi
// License: BSD license
package pool
