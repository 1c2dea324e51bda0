// File: api/pool.go
// Author: fmontorsi
// License: BSD license
//
// Abstract pooling contracts: the capability set required of pooled types,
// the recycler interface the envelope calls back into, and the stats
// snapshot surfaced for introspection.

package api

// Pooled is the capability set a type must provide to live inside a pool:
// a pointer to a default-constructible struct embedding Item. Embedding
// api.Item satisfies the whole set, including the Init/Destroy hooks.
type Pooled[T any] interface {
	*T
	PoolItem() *Item
	Init()
	Destroy()
}

// Recycler is what an item envelope knows about its owning pool: the
// recycle entry point invoked when the last handle drops, plus the two
// predicates the envelope invariant checks depend on.
type Recycler interface {
	// RecycleItem returns a zero-refcount item to the pool's free list,
	// running the configured recycle action first.
	RecycleItem(it *Item)

	// IsBounded reports whether the pool has a zero growth step and thus a
	// capacity fixed at construction.
	IsBounded() bool

	// IsMemoryExhausted reports whether the last allocation attempt failed
	// for lack of capacity.
	IsMemoryExhausted() bool
}

// Stats is a point-in-time snapshot of a pool's accounting counters.
// Free + InUse == Capacity holds for every snapshot taken between
// operations.
type Stats struct {
	// Capacity is the total number of slots across all arenas.
	Capacity int

	// Free is the number of slots currently on the free list.
	Free int

	// InUse is the number of slots referenced by live handles.
	InUse int

	// GrowthSteps is the number of arena allocations performed so far,
	// including the eager one at construction time.
	GrowthSteps int

	// Bounded mirrors Recycler.IsBounded.
	Bounded bool

	// Exhausted mirrors Recycler.IsMemoryExhausted.
	Exhausted bool
}

// Empty reports whether no slot is in use. An empty pool may still hold
// capacity.
func (s Stats) Empty() bool { return s.Free == s.Capacity }
