// File: api/item.go
// Author: fmontorsi
// License: BSD license
//
// The intrusive envelope mixed into every pooled type. Holds the reference
// count, the free-list link and the back-reference to the owning pool.

package api

import "fmt"

// DebugChecks enables the internal consistency assertions of the whole
// library (double recycle, cross-pool items, envelope invariants). A
// violation panics. Off by default: the checks sit on the hot
// allocate/recycle path.
var DebugChecks = false

// Item is the base capability every pooled type must provide, obtained by
// embedding:
//
//	type Message struct {
//	    api.Item
//	    Payload [1024]byte
//	}
//
// Embedding also provides default no-op Init and Destroy hooks, which the
// pooled type may shadow with its own implementations.
//
// An Item must not be copied once it sits inside a pool arena; the envelope
// fields describe the slot, not the value.
type Item struct {
	refCount uint32
	next     *Item
	owner    Recycler
	self     any
}

// PoolItem returns the envelope itself. This is the hook the Pooled
// constraint keys on; embedding Item satisfies it automatically.
func (i *Item) PoolItem() *Item { return i }

// Init is the default initialization hook run by AllocateInit. Shadow it on
// the pooled type to reset domain state when a slot is handed out.
func (i *Item) Init() {}

// Destroy is the default cleanup hook run on recycle when the pool is
// configured with RecycleDestroy. Shadow it on the pooled type to release
// external resources (file handles, sockets) without giving up the slot.
func (i *Item) Destroy() {}

// UseCount returns the current number of live handles to this item.
func (i *Item) UseCount() uint32 { return i.refCount }

// IsInPool reports whether this item belongs to a pool, either in use or
// sitting on the free list. False for items allocated outside any pool.
func (i *Item) IsInPool() bool { return i.owner != nil }

// NextFree returns the free-list link. Meaningful only while the item is
// linked into a free list or mid-transition.
func (i *Item) NextFree() *Item { return i.next }

// SetNextFree links this item to the next free slot. Reserved for the pool
// engine.
func (i *Item) SetNextFree(n *Item) { i.next = n }

// Owner returns the pool this item belongs to, nil if none.
func (i *Item) Owner() Recycler { return i.owner }

// SetOwner stamps the owning pool. Reserved for the pool engine; arenas set
// it at creation time and the teardown path severs it.
func (i *Item) SetOwner(o Recycler) { i.owner = o }

// Self returns the concrete pointer to the pooled object this envelope is
// embedded in, as stamped by the arena. The engine converts it back to the
// pooled type when a slot is popped off the free list.
func (i *Item) Self() any { return i.self }

// SetSelf stamps the concrete pointer. Reserved for the pool engine.
func (i *Item) SetSelf(s any) { i.self = s }

// Check audits the envelope invariants and panics on violation:
//   - refcount zero: the item must be linked into the free list, unless the
//     owning pool is bounded or has exhausted memory (then the free list may
//     be legitimately empty);
//   - refcount non-zero: the item is in use and must be unlinked.
//
// Items living outside any pool are always consistent.
func (i *Item) Check() {
	if i.owner == nil {
		return
	}
	if i.refCount == 0 {
		if i.next == nil && !i.owner.IsBounded() && !i.owner.IsMemoryExhausted() {
			panic(fmt.Sprintf("pool item %p: free but unlinked in a growable, non-exhausted pool", i))
		}
	} else {
		if i.next != nil {
			panic(fmt.Sprintf("pool item %p: in use (refcount=%d) but still linked into the free list", i, i.refCount))
		}
	}
}

// addRef and release implement the intrusive counting protocol driven by
// Handle. On the last release the item either returns to its pool or, when
// it has no owner, is simply left to the garbage collector.

func (i *Item) addRef() { i.refCount++ }

func (i *Item) release() {
	if DebugChecks && i.refCount == 0 {
		panic(fmt.Sprintf("pool item %p: release with zero refcount (double release?)", i))
	}
	i.refCount--
	if i.refCount == 0 && i.owner != nil {
		i.owner.RecycleItem(i)
	}
}
