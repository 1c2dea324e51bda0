// File: pool/pool.go
// Author: fmontorsi
// License: BSD license
//
// The pool engine: free-list allocation over a chain of arenas, with
// reference-count-triggered recycling. Single-threaded by design: no
// internal synchronization exists, the documented discipline is one pool
// per goroutine (see the package doc).

package pool

import (
	"fmt"

	"github.com/f18m/boost-intrusive-pool/api"
)

// Default sizing, mirroring the historical defaults of the library.
const (
	DefaultPoolSize   = 64
	DefaultGrowthStep = 64
)

// RecycleMethod selects what runs on an item at recycle time, between "slot
// returned by the last handle" and "slot pushed back on the free list".
//
// There is deliberately no destructor-style method: wiping the whole object
// would also wipe the envelope of a slot that is about to be reused. Use
// AllocateZeroed on the acquire side when full re-construction is wanted.
type RecycleMethod int

const (
	// RecycleNone performs no cleanup. The next allocation sees the slot
	// exactly as the previous owner left it.
	RecycleNone RecycleMethod = iota

	// RecycleDestroy invokes the pooled type's Destroy hook, meant to reset
	// external-resource state without giving up the slot.
	RecycleDestroy

	// RecycleCustom invokes the function installed with WithRecycleFunc or
	// SetRecycleMethod.
	RecycleCustom
)

// lifecycle states of a pool core. See Close for the ordering protocol.
type poolState int

const (
	stateUninitialized poolState = iota
	stateActive
	stateSelfDestruct
	stateDestroyed
)

// Pool is a fixed- or growable-capacity object pool for a single item type.
// It hands out reference-counted handles; when the last handle to an item
// drops, the item's slot returns to the free list instead of being released
// to the garbage collector.
//
// The second type parameter is always *T and is inferred:
//
//	p := pool.New[Message](1024)
//	h, err := p.Allocate()
//	...
//	h.Release()
//
// A Pool must not be copied and must not be shared between goroutines.
type Pool[T any, P api.Pooled[T]] struct {
	core *core[T, P]

	// construction-time configuration, carried over to the fresh core
	// installed by Clear and Reset.
	cfg config[T]
}

// core is the control block of a pool: it owns the arena chain and the free
// list and is what item envelopes point back to. It is kept separate from
// Pool so that handles can outlive the Pool wrapper: in-use items keep the
// core reachable until the last of them is recycled.
type core[T any, P api.Pooled[T]] struct {
	cfg config[T]

	state poolState

	// free list head, threaded through unused slots across arenas. Nil only
	// when the pool is bounded-and-full or memory-exhausted.
	firstFree *api.Item

	firstArena *arena[T, P]
	lastArena  *arena[T, P]

	exhausted bool

	// freeCount + inUseCount == totalCount between operations.
	freeCount   int
	inUseCount  int
	totalCount  int
	growthSteps int

	guard threadGuard
}

// New constructs a pool and eagerly materializes initialCapacity slots.
// It panics on construction misuse: initialCapacity must be positive and a
// configured maximum size must not be smaller than the initial capacity.
func New[T any, P api.Pooled[T]](initialCapacity int, opts ...Option[T]) *Pool[T, P] {
	if initialCapacity <= 0 {
		panic("pool: initial capacity must be positive")
	}
	cfg := defaultConfig[T]()
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.maxSize > 0 && cfg.maxSize < initialCapacity {
		panic(fmt.Sprintf("pool: maximum size %d smaller than initial capacity %d", cfg.maxSize, initialCapacity))
	}
	p := &Pool[T, P]{cfg: cfg}
	p.core = newCore[T, P](cfg)
	p.core.grow(initialCapacity)
	p.core.state = stateActive
	return p
}

func newCore[T any, P api.Pooled[T]](cfg config[T]) *core[T, P] {
	c := &core[T, P]{cfg: cfg}
	c.guard.enabled = cfg.threadCheck
	return c
}

//------------------------------------------------------------------------------
// allocate method variants
//------------------------------------------------------------------------------

// Allocate pulls a slot from the free list and wraps it into a handle with
// reference count one. No initialization runs: the slot carries whatever
// state its previous user (or the recycle action) left in it.
//
// On capacity exhaustion the returned handle is nil and the error is
// api.ErrCapacityExhausted; after Close it is api.ErrPoolClosed.
func (p *Pool[T, P]) Allocate() (api.Handle[T, P], error) {
	slot, err := p.core.acquire()
	if err != nil {
		return api.Handle[T, P]{}, err
	}
	return p.wrap(slot), nil
}

// AllocateInit is Allocate followed by the pooled type's Init hook on the
// slot, before the handle is returned.
func (p *Pool[T, P]) AllocateInit() (api.Handle[T, P], error) {
	slot, err := p.core.acquire()
	if err != nil {
		return api.Handle[T, P]{}, err
	}
	slot.Init()
	return p.wrap(slot), nil
}

// AllocateWith is Allocate followed by a caller-supplied setup function run
// on the raw slot, before the handle is returned. Use it to pass
// construction arguments:
//
//	h, err := p.AllocateWith(func(m *Message) { m.Seq = seq })
func (p *Pool[T, P]) AllocateWith(setup func(*T)) (api.Handle[T, P], error) {
	slot, err := p.core.acquire()
	if err != nil {
		return api.Handle[T, P]{}, err
	}
	if setup != nil {
		setup((*T)(slot))
	}
	return p.wrap(slot), nil
}

// AllocateZeroed is Allocate with the slot reset to the zero value of T
// first. Zeroing wipes the envelope too, so the slot's pool back-reference
// and self pointer are re-stamped afterwards: this is the moral equivalent
// of running the type's constructor in place.
func (p *Pool[T, P]) AllocateZeroed() (api.Handle[T, P], error) {
	slot, err := p.core.acquire()
	if err != nil {
		return api.Handle[T, P]{}, err
	}
	var zero T
	*slot = zero

	it := slot.PoolItem()
	it.SetOwner(p.core)
	it.SetSelf(slot)

	return p.wrap(slot), nil
}

func (p *Pool[T, P]) wrap(slot P) api.Handle[T, P] {
	h := api.NewHandle[T, P](slot)
	if api.DebugChecks {
		slot.PoolItem().Check()
	}
	return h
}

//------------------------------------------------------------------------------
// configuration
//------------------------------------------------------------------------------

// SetRecycleMethod changes the recycle policy of the pool. The function
// argument is only used with RecycleCustom and may be nil otherwise.
func (p *Pool[T, P]) SetRecycleMethod(m RecycleMethod, fn func(*T)) {
	p.cfg.recycleMethod = m
	p.cfg.recycleFn = fn
	p.core.cfg.recycleMethod = m
	p.core.cfg.recycleFn = fn
}

//------------------------------------------------------------------------------
// introspection
//------------------------------------------------------------------------------

// Capacity returns the total number of slots across all arenas.
func (p *Pool[T, P]) Capacity() int { return p.core.totalCount }

// UnusedCount returns the number of slots currently free.
func (p *Pool[T, P]) UnusedCount() int { return p.core.freeCount }

// InUseCount returns the number of slots referenced by live handles.
func (p *Pool[T, P]) InUseCount() int { return p.core.inUseCount }

// Empty reports whether no slot is in use. Note that Empty does not imply
// Capacity() == 0.
func (p *Pool[T, P]) Empty() bool { return p.core.freeCount == p.core.totalCount }

// IsBounded reports whether the pool has growth step zero and thus a
// capacity fixed at construction time.
func (p *Pool[T, P]) IsBounded() bool { return p.core.IsBounded() }

// IsMemoryExhausted reports whether the last allocation attempt failed for
// lack of capacity. Recycling an item clears the flag.
func (p *Pool[T, P]) IsMemoryExhausted() bool { return p.core.IsMemoryExhausted() }

// GrowthStepsDone returns the number of arena allocations performed so far,
// including the eager one at construction time.
func (p *Pool[T, P]) GrowthStepsDone() int { return p.core.growthSteps }

// Stats takes a snapshot of the pool counters. Like every other method it
// must be called from the owning goroutine; the returned value is plain
// data and may be shipped anywhere (see the metrics package).
func (p *Pool[T, P]) Stats() api.Stats {
	c := p.core
	return api.Stats{
		Capacity:    c.totalCount,
		Free:        c.freeCount,
		InUse:       c.inUseCount,
		GrowthSteps: c.growthSteps,
		Bounded:     c.IsBounded(),
		Exhausted:   c.exhausted,
	}
}

//------------------------------------------------------------------------------
// core: allocation algorithm
//------------------------------------------------------------------------------

func (c *core[T, P]) IsBounded() bool { return c.cfg.growthStep == 0 }

func (c *core[T, P]) IsMemoryExhausted() bool { return c.exhausted }

// effectiveStep returns how many slots the next growth may add: the growth
// step, clipped to the remaining budget under the maximum size. Zero means
// growth is not permitted right now.
func (c *core[T, P]) effectiveStep() int {
	step := c.cfg.growthStep
	if step == 0 {
		return 0
	}
	if c.cfg.maxSize > 0 {
		if remaining := c.cfg.maxSize - c.totalCount; remaining < step {
			step = remaining
		}
	}
	if step < 0 {
		return 0
	}
	return step
}

// acquire produces a ready-to-use slot in O(1), growing the arena chain on
// demand.
func (c *core[T, P]) acquire() (P, error) {
	var none P
	c.guard.check()
	if c.state != stateActive {
		return none, api.ErrPoolClosed
	}

	if c.freeCount == 0 {
		if api.DebugChecks && c.firstFree != nil {
			panic("pool: free count is zero but the free list is not empty")
		}
		step := c.effectiveStep()
		if step == 0 {
			c.exhausted = true
			return none, api.ErrCapacityExhausted
		}
		c.grow(step)
	}

	it := c.firstFree
	if api.DebugChecks {
		if it == nil {
			panic("pool: free count is non-zero but the free list is empty")
		}
		if it.Owner() != api.Recycler(c) {
			panic("pool: free-list head belongs to a different pool")
		}
	}
	slot := it.Self().(P)

	c.freeCount--
	c.inUseCount++
	c.firstFree = it.NextFree()
	c.exhausted = false

	// Keep the free-list head valid ahead of the next need: grow as soon as
	// the list drains rather than on the next acquire. When no further
	// growth is permitted the already-popped slot is still handed out; only
	// the next allocation will fail.
	if c.firstFree == nil && !c.IsBounded() {
		if step := c.effectiveStep(); step > 0 {
			c.grow(step)
		} else {
			c.exhausted = true
		}
	}

	it.SetNextFree(nil)
	return slot, nil
}

// grow appends one arena of the given size to the chain and splices its
// slots into the free list. The free list is always empty when grow runs.
func (c *core[T, P]) grow(size int) {
	a := newArena[T, P](size, c)
	if c.lastArena != nil {
		c.lastArena.linkNext(a)
	}
	if c.firstArena == nil {
		c.firstArena = a
	}
	c.lastArena = a

	if c.firstFree == nil {
		c.firstFree = a.firstItem()
	}

	c.freeCount += size
	c.totalCount += size
	c.growthSteps++
}

//------------------------------------------------------------------------------
// core: recycle, the return path
//------------------------------------------------------------------------------

// RecycleItem implements api.Recycler. It runs when the last handle to an
// item drops: the configured recycle action executes, then the slot goes
// back onto the free-list head, or is severed from the pool entirely when
// the pool is draining towards destruction.
func (c *core[T, P]) RecycleItem(it *api.Item) {
	c.guard.check()
	if api.DebugChecks {
		if it == nil {
			panic("pool: recycle of a nil item")
		}
		if it.NextFree() != nil {
			panic("pool: recycle of an item already on the free list (double recycle?)")
		}
		if it.Owner() != api.Recycler(c) {
			panic("pool: recycle of an item belonging to a different pool")
		}
	}

	slot := it.Self().(P)
	switch c.cfg.recycleMethod {
	case RecycleNone:
	case RecycleDestroy:
		slot.Destroy()
	case RecycleCustom:
		if c.cfg.recycleFn != nil {
			c.cfg.recycleFn((*T)(slot))
		}
	}

	if c.state == stateSelfDestruct {
		// The slot holds no resources anymore and the pool is draining:
		// sever the association so nothing keeps this control block alive,
		// and release the storage once the last in-use item has returned.
		it.SetOwner(nil)
		c.inUseCount--
		c.totalCount--
		if c.inUseCount == 0 {
			c.releaseArenas()
			c.state = stateDestroyed
		}
		return
	}

	if api.DebugChecks && !c.IsBounded() && c.firstFree == nil && !c.exhausted {
		panic("pool: growable pool with an empty free list but no exhaustion recorded")
	}
	it.SetNextFree(c.firstFree)
	c.firstFree = it

	if api.DebugChecks {
		it.Check()
	}

	c.freeCount++
	if api.DebugChecks && c.inUseCount <= 0 {
		panic("pool: recycle with no items in use")
	}
	c.inUseCount--

	// a slot is available again
	c.exhausted = false
}
