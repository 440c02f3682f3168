// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ltq

const (
	// defaultSpins is the spin budget of a waiter at the front of the queue
	// before it parks.
	defaultSpins = 128

	// defaultSweepThreshold is the number of failed unsplice attempts
	// tolerated before a full sweep of the chain.
	defaultSweepThreshold = 32
)

// Options configures queue creation.
type Options struct {
	// Waiter tuning
	spins int // Spin iterations before parking (front waiter)

	// Cleanup tuning
	sweepThreshold uint64 // Votes before a full sweep
}

// Builder creates queues with fluent configuration.
//
// Example:
//
//	// Default tuning
//	q := ltq.Build[Event](ltq.New())
//
//	// Park immediately, sweep eagerly
//	q := ltq.Build[Event](ltq.New().Spins(0).SweepThreshold(4))
type Builder struct {
	opts Options
}

// New creates a queue builder with default tuning.
func New() *Builder {
	return &Builder{opts: Options{
		spins:          defaultSpins,
		sweepThreshold: defaultSweepThreshold,
	}}
}

// Spins sets how many times a blocked goroutine at the front of the queue
// polls its node before parking. Waiters further back spin half as long.
// Zero parks immediately.
//
// Panics if n < 0.
func (b *Builder) Spins(n int) *Builder {
	if n < 0 {
		panic("ltq: spins must be >= 0")
	}
	b.opts.spins = n
	return b
}

// SweepThreshold sets how many cancelled waiters that could not be unlinked
// in place accumulate before the chain is swept.
//
// Panics if n < 1.
func (b *Builder) SweepThreshold(n int) *Builder {
	if n < 1 {
		panic("ltq: sweep threshold must be >= 1")
	}
	b.opts.sweepThreshold = uint64(n)
	return b
}

// Build creates a Linked queue with the configured tuning.
func Build[T comparable](b *Builder) *Linked[T] {
	return newLinked[T](b.opts)
}

// pad is cache line padding to prevent false sharing.
type pad [64]byte
