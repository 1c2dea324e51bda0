// File: pool/options.go
// Package pool functional options, following the same pattern used across
// the library for configurable components.
// Author: fmontorsi
// License: BSD license

package pool

// config is the construction-time configuration of a pool, carried over
// unchanged when Clear or Reset install a fresh core.
type config[T any] struct {
	growthStep    int
	maxSize       int
	recycleMethod RecycleMethod
	recycleFn     func(*T)
	arenaRelease  func(arenas, slots int)
	threadCheck   bool
}

func defaultConfig[T any]() config[T] {
	return config[T]{
		growthStep:    DefaultGrowthStep,
		recycleMethod: RecycleNone,
	}
}

// Option customizes pool construction.
type Option[T any] func(*config[T])

// WithGrowthStep sets how many new slots each growth event adds. Zero makes
// the pool bounded: capacity is fixed at the initial size forever.
func WithGrowthStep[T any](step int) Option[T] {
	return func(c *config[T]) {
		if step < 0 {
			panic("pool: growth step must be non-negative")
		}
		c.growthStep = step
	}
}

// WithMaxSize caps the total capacity the pool may grow to. Zero means
// unlimited. The final growth step is clipped so capacity lands exactly on
// the maximum.
func WithMaxSize[T any](max int) Option[T] {
	return func(c *config[T]) {
		if max < 0 {
			panic("pool: maximum size must be non-negative")
		}
		c.maxSize = max
	}
}

// WithRecycleMethod selects the recycle policy applied when the last handle
// to an item drops.
func WithRecycleMethod[T any](m RecycleMethod) Option[T] {
	return func(c *config[T]) { c.recycleMethod = m }
}

// WithRecycleFunc installs a custom recycle function and selects
// RecycleCustom as the policy.
func WithRecycleFunc[T any](fn func(*T)) Option[T] {
	return func(c *config[T]) {
		c.recycleMethod = RecycleCustom
		c.recycleFn = fn
	}
}

// WithArenaReleaseHook installs an observer invoked every time a core
// releases its whole arena chain, with the number of arenas and slots
// released. Teardown is otherwise invisible in a garbage-collected runtime;
// the hook makes the storage-release point observable and testable.
func WithArenaReleaseHook[T any](fn func(arenas, slots int)) Option[T] {
	return func(c *config[T]) { c.arenaRelease = fn }
}

// WithThreadAffinityCheck enables the debug-only guard that records the OS
// thread first touching the pool and panics when a later access comes from
// a different thread. Purely diagnostic, not a concurrency primitive: pin
// the owning goroutine with runtime.LockOSThread for the check to be
// meaningful. No-op on platforms without thread id support.
func WithThreadAffinityCheck[T any]() Option[T] {
	return func(c *config[T]) { c.threadCheck = true }
}
