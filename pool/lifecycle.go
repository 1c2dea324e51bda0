// File: pool/lifecycle.go
// Author: fmontorsi
// License: BSD license
//
// Pool teardown ordering. The subtle part of the design: handles may
// outlive the Pool wrapper, but arena storage must not be released while
// any handle still points into it. The core therefore walks an explicit
// state machine instead of racing destructor-style cleanup against
// in-flight returns:
//
//	Uninitialized -> Active -> SelfDestructPending -> Destroyed
//
// On Close with items still in use, free slots are severed immediately
// (they hold no resources), arenas stay alive, and every later recycle
// severs its item; the storage is released when the last in-use item
// returns.

package pool

// Close tears the pool down. With no items in use the arena chain is
// released immediately. Otherwise the core enters the self-destruct-pending
// state described above and the live handles stay fully usable; the last
// handle's release triggers the storage release.
//
// After Close the allocate family returns api.ErrPoolClosed. Close is
// idempotent.
func (p *Pool[T, P]) Close() {
	p.core.close()
}

// Clear forcibly invalidates all currently-free capacity and resets the
// pool to empty: capacity drops to zero and a growable pool re-grows on the
// next allocation. Items still in use follow the self-destruction protocol
// of the previous core: their handles stay valid and their backing storage
// is released only once they are all dropped.
func (p *Pool[T, P]) Clear() {
	p.core.close()
	p.core = newCore[T, P](p.cfg)
	p.core.state = stateActive
}

// Reset is Clear followed by an eager re-grow to initialCapacity, restoring
// a warmed-up pool with the same configuration and external identity.
func (p *Pool[T, P]) Reset(initialCapacity int) {
	if initialCapacity <= 0 {
		panic("pool: initial capacity must be positive")
	}
	p.Clear()
	p.core.grow(initialCapacity)
}

func (c *core[T, P]) close() {
	c.guard.check()
	switch c.state {
	case stateDestroyed, stateSelfDestruct:
		return
	}

	if c.inUseCount == 0 {
		c.releaseArenas()
		c.state = stateDestroyed
		return
	}

	// Items on the free list hold no resources: sever their pool
	// back-references now so they cannot keep this core alive, and drop
	// them from the accounting. Arena storage stays put until the in-use
	// items return.
	for it := c.firstFree; it != nil; {
		next := it.NextFree()
		it.SetOwner(nil)
		it.SetNextFree(nil)
		it = next
	}
	c.firstFree = nil
	c.totalCount -= c.freeCount
	c.freeCount = 0
	c.state = stateSelfDestruct
}

// releaseArenas drops the whole arena chain at once and fires the release
// hook. In a garbage-collected runtime "freeing" the storage means cutting
// every reference the core holds to it; the hook is the observable
// teardown point.
func (c *core[T, P]) releaseArenas() {
	arenas, slots := 0, 0
	for a := c.firstArena; a != nil; a = a.next {
		arenas++
		slots += a.size()
	}

	c.firstArena = nil
	c.lastArena = nil
	c.firstFree = nil
	c.freeCount = 0
	c.inUseCount = 0
	c.totalCount = 0
	c.exhausted = false

	if c.cfg.arenaRelease != nil && arenas > 0 {
		c.cfg.arenaRelease(arenas, slots)
	}
}
