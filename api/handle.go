// File: api/handle.go
// Author: fmontorsi
// License: BSD license
//
// Handle is the user-facing owning reference to a pooled object. Go has no
// implicit copy/destruct, so the reference count is driven explicitly: Ref
// to share, Release to drop. The last Release triggers the owner's recycle
// protocol.

package api

// Handle is a reference-counted owning pointer to a pooled object.
// The zero value is a nil handle, returned by the allocate family on
// capacity exhaustion.
//
// Handles may be freely copied; all copies share the same reference count,
// which counts Ref/Release pairs, not copies. Call Ref when a new owner
// keeps the object, Release exactly once per ownership.
type Handle[T any, P Pooled[T]] struct {
	ptr P
}

// NewHandle wraps an object into a fresh owning reference, incrementing its
// reference count. This is how the pool engine wraps freshly acquired
// slots, and how standalone (pool-less) objects enter the handle protocol.
func NewHandle[T any, P Pooled[T]](p P) Handle[T, P] {
	if p != nil {
		p.PoolItem().addRef()
	}
	return Handle[T, P]{ptr: p}
}

// IsNil reports whether this handle references nothing.
func (h Handle[T, P]) IsNil() bool { return h.ptr == nil }

// Ptr returns the referenced object. The pointer must not outlive the
// ownership expressed by this handle.
func (h Handle[T, P]) Ptr() P { return h.ptr }

// UseCount returns the number of live references to the object, zero for a
// nil handle.
func (h Handle[T, P]) UseCount() uint32 {
	if h.ptr == nil {
		return 0
	}
	return h.ptr.PoolItem().UseCount()
}

// Ref registers one more owner and returns a handle for it.
func (h Handle[T, P]) Ref() Handle[T, P] {
	if h.ptr == nil {
		return h
	}
	it := h.ptr.PoolItem()
	if DebugChecks && it.UseCount() == 0 {
		panic("pool handle: Ref on a dead reference")
	}
	it.addRef()
	return h
}

// Release drops one ownership. When the last owner releases, the object
// returns to its pool (or is left to the garbage collector when it has no
// owner pool). Releasing a nil handle is a no-op.
func (h Handle[T, P]) Release() {
	if h.ptr == nil {
		return
	}
	h.ptr.PoolItem().release()
}
