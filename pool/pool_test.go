// File: pool/pool_test.go
// Author: fmontorsi
// License: BSD license
//
// Unit tests for the pool engine. Some scenarios are adapted from the
// historical test suite of the C++ library this package descends from.

package pool_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/f18m/boost-intrusive-pool/api"
	"github.com/f18m/boost-intrusive-pool/pool"
)

type intObject struct {
	api.Item
	V int
}

type hIntObject = api.Handle[intObject, *intObject]

// initObject shadows the default Init hook to observe AllocateInit.
type initObject struct {
	api.Item
	N     int
	Inits int
}

func (o *initObject) Init() {
	o.N = -1
	o.Inits++
}

func conserved[T any, P api.Pooled[T]](t *testing.T, p *pool.Pool[T, P]) {
	t.Helper()
	require.Equal(t, p.Capacity(), p.UnusedCount()+p.InUseCount(),
		"free + in-use must equal total capacity")
}

//------------------------------------------------------------------------------
// growable pools
//------------------------------------------------------------------------------

func TestGrowablePoolChurn(t *testing.T) {
	testCases := []struct {
		name        string
		initialSize int
		growthStep  int
	}{
		{"small-initial-small-step", 10, 1},
		{"tiny-initial-large-step", 1, 100},
		{"large-initial-small-step", 5000, 1},
	}

	const numElements = 10000

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := pool.New[intObject](tc.initialSize,
				pool.WithGrowthStep[intObject](tc.growthStep))
			defer p.Close()

			held := make(map[int]hIntObject)
			numFreed, maxActive := 0, 0
			for i := 0; i < numElements; i++ {
				h, err := p.AllocateWith(func(o *intObject) { o.V = i })
				require.NoError(t, err)
				require.False(t, h.IsNil())
				held[i] = h

				// return a few items in pseudo-random order
				if i%7 == 0 || i%53 == 0 {
					k := i / 10
					if old, ok := held[k]; ok {
						old.Release()
						delete(held, k)
						numFreed++
					}
				}
				if len(held) > maxActive {
					maxActive = len(held)
				}
				conserved(t, p)
			}

			require.Positive(t, numFreed)
			assert.Equal(t, numElements-numFreed, p.InUseCount())
			assert.GreaterOrEqual(t, p.Capacity(), maxActive)
			assert.False(t, p.Empty())
			if tc.initialSize < numElements-numFreed {
				assert.Greater(t, p.GrowthStepsDone(), 1)
			}

			for _, h := range held {
				h.Release()
			}
			conserved(t, p)
			assert.Equal(t, 0, p.InUseCount())
			assert.True(t, p.Empty())
		})
	}
}

func TestZeroGrowthAfterWarmup(t *testing.T) {
	const capacity = 64
	p := pool.New[intObject](capacity)
	defer p.Close()
	require.Equal(t, capacity, p.Capacity())

	baseline := p.GrowthStepsDone()

	// any allocate/release pattern that never fully drains the free list
	// must not grow the pool (draining it triggers the proactive growth of
	// the acquire path, which keeps the free-list head always valid)
	held := make([]hIntObject, 0, capacity)
	for round := 0; round < 50; round++ {
		for i := 0; i < capacity-1; i++ {
			h, err := p.Allocate()
			require.NoError(t, err)
			held = append(held, h)
		}
		for _, h := range held {
			h.Release()
		}
		held = held[:0]
	}

	assert.Equal(t, baseline, p.GrowthStepsDone())
	assert.Equal(t, capacity, p.Capacity())
}

//------------------------------------------------------------------------------
// bounded pools
//------------------------------------------------------------------------------

func TestBoundedPoolNeverGrows(t *testing.T) {
	for _, initialSize := range []int{1, 10, 1000} {
		p := pool.New[intObject](initialSize,
			pool.WithGrowthStep[intObject](0))

		require.True(t, p.IsBounded())

		held := make([]hIntObject, 0, initialSize)
		for i := 0; i < initialSize; i++ {
			h, err := p.Allocate()
			require.NoError(t, err)
			held = append(held, h)
		}
		assert.Equal(t, 0, p.UnusedCount())

		// further allocations fail gracefully, forever
		for i := 0; i < 3; i++ {
			h, err := p.Allocate()
			require.ErrorIs(t, err, api.ErrCapacityExhausted)
			assert.True(t, h.IsNil())
			assert.True(t, p.IsMemoryExhausted())
		}

		conserved(t, p)
		assert.Equal(t, initialSize, p.InUseCount())
		assert.Equal(t, initialSize, p.Capacity())
		assert.False(t, p.Empty())
		assert.Equal(t, 1, p.GrowthStepsDone(), "just the initial eager arena")

		for _, h := range held {
			h.Release()
		}
		assert.Equal(t, initialSize, p.Capacity())
		p.Close()
	}
}

func TestExhaustionClearsOnRecycle(t *testing.T) {
	p := pool.New[intObject](3, pool.WithGrowthStep[intObject](0))
	defer p.Close()

	var held []hIntObject
	for i := 0; i < 3; i++ {
		h, err := p.Allocate()
		require.NoError(t, err)
		held = append(held, h)
	}

	_, err := p.Allocate()
	require.ErrorIs(t, err, api.ErrCapacityExhausted)
	require.True(t, p.IsMemoryExhausted())

	held[0].Release()
	assert.False(t, p.IsMemoryExhausted(), "a recycled slot clears the exhaustion flag")

	h, err := p.Allocate()
	require.NoError(t, err)
	h.Release()

	for _, h := range held[1:] {
		h.Release()
	}
}

//------------------------------------------------------------------------------
// maximum size budget
//------------------------------------------------------------------------------

func TestMaxSizeBudget(t *testing.T) {
	const (
		initialSize = 10
		growthStep  = 8
		maxSize     = 25
	)
	p := pool.New[intObject](initialSize,
		pool.WithGrowthStep[intObject](growthStep),
		pool.WithMaxSize[intObject](maxSize))
	defer p.Close()

	held := make([]hIntObject, 0, maxSize)
	for i := 0; i < maxSize; i++ {
		h, err := p.Allocate()
		require.NoError(t, err, "allocation %d within the budget must succeed", i)
		held = append(held, h)
		assert.LessOrEqual(t, p.Capacity(), maxSize,
			"capacity must never exceed the maximum size")
	}

	// the final growth step was clipped to land exactly on the maximum
	assert.Equal(t, maxSize, p.Capacity())

	_, err := p.Allocate()
	require.ErrorIs(t, err, api.ErrCapacityExhausted)
	assert.True(t, p.IsMemoryExhausted())

	for _, h := range held {
		h.Release()
	}
}

//------------------------------------------------------------------------------
// accounting
//------------------------------------------------------------------------------

func TestRoundTripAccounting(t *testing.T) {
	p := pool.New[intObject](10, pool.WithGrowthStep[intObject](5))
	defer p.Close()

	held := make([]hIntObject, 0, 12)
	for i := 0; i < 12; i++ {
		h, err := p.Allocate()
		require.NoError(t, err)
		held = append(held, h)
	}
	assert.Equal(t, 15, p.Capacity(), "one growth event past the initial capacity")
	assert.Equal(t, 2, p.GrowthStepsDone())

	for _, h := range held[:7] {
		h.Release()
	}
	held = held[7:]

	for i := 0; i < 3; i++ {
		h, err := p.Allocate()
		require.NoError(t, err)
		held = append(held, h)
	}

	assert.Equal(t, 8, p.InUseCount())
	assert.Equal(t, 15, p.Capacity(), "7 free slots covered 3 allocations: no growth")
	assert.Equal(t, 7, p.UnusedCount())
	assert.Equal(t, 2, p.GrowthStepsDone())
	conserved(t, p)

	for _, h := range held {
		h.Release()
	}
}

func TestStatsSnapshot(t *testing.T) {
	p := pool.New[intObject](4, pool.WithGrowthStep[intObject](0))
	defer p.Close()

	h, err := p.Allocate()
	require.NoError(t, err)

	s := p.Stats()
	assert.Equal(t, 4, s.Capacity)
	assert.Equal(t, 3, s.Free)
	assert.Equal(t, 1, s.InUse)
	assert.Equal(t, 1, s.GrowthSteps)
	assert.True(t, s.Bounded)
	assert.False(t, s.Exhausted)
	assert.False(t, s.Empty())

	h.Release()
	assert.True(t, p.Stats().Empty())
}

//------------------------------------------------------------------------------
// recycle policies
//------------------------------------------------------------------------------

func TestRecycleRunsExactlyOncePerLifetime(t *testing.T) {
	const n = 100
	recycled := 0
	p := pool.New[intObject](n,
		pool.WithRecycleFunc[intObject](func(o *intObject) { recycled++ }))
	defer p.Close()

	held := make([]hIntObject, 0, n)
	for i := 0; i < n; i++ {
		h, err := p.Allocate()
		require.NoError(t, err)
		held = append(held, h)
	}
	require.Zero(t, recycled)

	for _, h := range held {
		h.Release()
	}

	assert.Equal(t, n, recycled)
	assert.Equal(t, 0, p.InUseCount())
	assert.GreaterOrEqual(t, p.UnusedCount(), n, "all previously-active slots are back on the free list")
	assert.Equal(t, p.Capacity(), p.UnusedCount())
}

func TestRecycleDestroyHook(t *testing.T) {
	p := pool.New[destroyObject](4,
		pool.WithRecycleMethod[destroyObject](pool.RecycleDestroy))
	defer p.Close()

	h, err := p.Allocate()
	require.NoError(t, err)
	h.Ptr().open = true

	h.Release()

	// the slot kept its identity but the Destroy hook reset it
	h2, err := p.Allocate()
	require.NoError(t, err)
	assert.False(t, h2.Ptr().open)
	assert.Equal(t, 1, h2.Ptr().destroys)
	h2.Release()
}

type destroyObject struct {
	api.Item
	open     bool
	destroys int
}

func (o *destroyObject) Destroy() {
	o.open = false
	o.destroys++
}

func TestSetRecycleMethod(t *testing.T) {
	p := pool.New[intObject](2)
	defer p.Close()

	h, err := p.Allocate()
	require.NoError(t, err)
	h.Release() // RecycleNone: nothing observable

	count := 0
	p.SetRecycleMethod(pool.RecycleCustom, func(o *intObject) { count++ })

	h, err = p.Allocate()
	require.NoError(t, err)
	h.Release()
	assert.Equal(t, 1, count)
}

//------------------------------------------------------------------------------
// allocate variants
//------------------------------------------------------------------------------

func TestAllocateInitRunsHook(t *testing.T) {
	p := pool.New[initObject](2)
	defer p.Close()

	h, err := p.AllocateInit()
	require.NoError(t, err)
	assert.Equal(t, -1, h.Ptr().N)
	assert.Equal(t, 1, h.Ptr().Inits)
	h.Release()

	// plain Allocate leaves the slot as the previous user left it
	h2, err := p.Allocate()
	require.NoError(t, err)
	assert.Equal(t, 1, h2.Ptr().Inits)
	h2.Release()
}

func TestAllocateWithSetup(t *testing.T) {
	p := pool.New[intObject](2)
	defer p.Close()

	h, err := p.AllocateWith(func(o *intObject) { o.V = 42 })
	require.NoError(t, err)
	assert.Equal(t, 42, h.Ptr().V)
	h.Release()

	h2, err := p.AllocateWith(nil)
	require.NoError(t, err)
	h2.Release()
}

func TestAllocateZeroedResetsSlot(t *testing.T) {
	p := pool.New[intObject](1, pool.WithGrowthStep[intObject](1))
	defer p.Close()

	h, err := p.AllocateWith(func(o *intObject) { o.V = 7 })
	require.NoError(t, err)
	slot := h.Ptr()
	h.Release()

	h2, err := p.AllocateZeroed()
	require.NoError(t, err)
	assert.Same(t, slot, h2.Ptr(), "the same slot must be reused")
	assert.Equal(t, 0, h2.Ptr().V, "the slot content must be zeroed")
	assert.True(t, h2.Ptr().IsInPool(), "the envelope must be re-stamped after zeroing")
	assert.EqualValues(t, 1, h2.UseCount())

	// the re-stamped envelope still returns the slot to the pool
	h2.Release()
	assert.Equal(t, 0, p.InUseCount())
	conserved(t, p)
}

//------------------------------------------------------------------------------
// construction misuse
//------------------------------------------------------------------------------

func TestConstructionMisusePanics(t *testing.T) {
	assert.Panics(t, func() { pool.New[intObject](0) })
	assert.Panics(t, func() { pool.New[intObject](-5) })
	assert.Panics(t, func() {
		pool.New[intObject](10, pool.WithMaxSize[intObject](5))
	})
	assert.Panics(t, func() {
		pool.New[intObject](10, pool.WithGrowthStep[intObject](-1))
	})
}

//------------------------------------------------------------------------------
// defensive checks
//------------------------------------------------------------------------------

func TestDebugChecksCatchDoubleRelease(t *testing.T) {
	api.DebugChecks = true
	defer func() { api.DebugChecks = false }()

	p := pool.New[intObject](2)
	defer p.Close()

	h, err := p.Allocate()
	require.NoError(t, err)
	h.Release()

	assert.Panics(t, h.Release)
}

func TestCheckPassesDuringNormalOperation(t *testing.T) {
	api.DebugChecks = true
	defer func() { api.DebugChecks = false }()

	p := pool.New[intObject](4, pool.WithGrowthStep[intObject](2))
	defer p.Close()

	var held []hIntObject
	for i := 0; i < 10; i++ {
		h, err := p.Allocate()
		require.NoError(t, err)
		held = append(held, h)
		p.Check()
	}
	for _, h := range held {
		h.Release()
		p.Check()
	}
}
