// File: pool/arena.go
// Author: fmontorsi
// License: BSD license
//
// An arena is one contiguously allocated run of item slots. Arenas are
// chained singly; the chain only ever grows and is released as a whole when
// the owning pool core is torn down.

package pool

import (
	"github.com/f18m/boost-intrusive-pool/api"
)

// arena owns one fixed-size block of default-constructed slots. At creation
// every slot's envelope is stamped with the owning pool and its own concrete
// address, and slots are threaded i -> i+1 into a free-list segment ending
// in nil.
type arena[T any, P api.Pooled[T]] struct {
	slots []T
	next  *arena[T, P]
}

func newArena[T any, P api.Pooled[T]](size int, owner api.Recycler) *arena[T, P] {
	a := &arena[T, P]{slots: make([]T, size)}
	for i := range a.slots {
		p := P(&a.slots[i])
		it := p.PoolItem()
		it.SetOwner(owner)
		it.SetSelf(p)
		if i+1 < len(a.slots) {
			it.SetNextFree(P(&a.slots[i+1]).PoolItem())
		}
	}
	return a
}

// firstItem returns the envelope of the first slot, used to splice the
// arena's slots into the pool's free list.
func (a *arena[T, P]) firstItem() *api.Item {
	return P(&a.slots[0]).PoolItem()
}

func (a *arena[T, P]) size() int { return len(a.slots) }

// linkNext attaches the grown arena to the chain. Settable once only.
//
// The new arena's slots are spliced into the free list by the grow path, not
// here: growth only ever happens with an empty free list, and the chain's
// previous last slot is either in use (its link must stay nil) or the slot
// just popped and about to be handed out.
func (a *arena[T, P]) linkNext(next *arena[T, P]) {
	if a.next != nil || next == nil {
		panic("pool arena: linkNext is settable once, with a non-nil arena")
	}
	a.next = next
}
