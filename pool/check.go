// File: pool/check.go
// Author: fmontorsi
// License: BSD license

package pool

// Check audits the pool-wide invariants and panics on violation. Meant for
// tests and debug builds; it is not called on the hot path unless
// api.DebugChecks is set.
func (p *Pool[T, P]) Check() {
	p.core.checkInvariants()
}

func (c *core[T, P]) checkInvariants() {
	if c.firstArena != nil {
		if c.lastArena == nil {
			panic("pool: arena chain has a first arena but no last arena")
		}
		if c.totalCount <= 0 {
			panic("pool: arena chain present but total count is zero")
		}
		if c.freeCount+c.inUseCount != c.totalCount {
			panic("pool: free + in-use != total")
		}
		if c.IsBounded() {
			// a bounded pool holds exactly the one arena it was built with
			if c.firstArena != c.lastArena {
				panic("pool: bounded pool with more than one arena")
			}
		} else if c.state == stateActive && c.firstFree == nil && !c.exhausted {
			panic("pool: growable pool with an empty free list but no exhaustion recorded")
		}
		return
	}

	// no arenas: the pool has just been cleared or fully torn down
	if c.lastArena != nil {
		panic("pool: no first arena but a last arena is set")
	}
	if c.firstFree != nil {
		panic("pool: no arenas but the free list is not empty")
	}
	if c.freeCount != 0 || c.inUseCount != 0 || c.totalCount != 0 {
		panic("pool: no arenas but non-zero counters")
	}
}
