// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Concurrent tests drive cleanup paths that count votes with atomix and
// record results in atomix counters. Go's race detector cannot observe the
// ordering those provide, so these tests are skipped under -race.

package ltq_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/ltq"
	"github.com/puzpuzpuz/xsync"
)

// churnDuration bounds the time-driven tests.
func churnDuration(t *testing.T) time.Duration {
	if testing.Short() {
		return 100 * time.Millisecond
	}
	return time.Second
}

// =============================================================================
// Exactly-once Delivery
// =============================================================================

// TestExactlyOnce runs producers mixing Enqueue and Transfer against
// consumers mixing Poll, PollTimeout and Take. Every item must be received
// exactly once.
func TestExactlyOnce(t *testing.T) {
	if ltq.RaceEnabled {
		t.Skip("skip: lock-free algorithm uses cross-variable memory ordering")
	}
	const (
		numP    = 4
		numC    = 4
		perProd = 5000
		total   = numP * perProd
	)
	q := ltq.Build[int](ltq.New().SweepThreshold(8))
	seen := xsync.NewIntegerMapOf[int, int]()
	var consumed atomix.Int64
	var duplicates atomix.Int64

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	for p := range numP {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := range perProd {
				v := id*perProd + i
				if i%16 == 0 {
					if err := q.Transfer(ctx, &v); err != nil {
						t.Errorf("Transfer(%d): %v", v, err)
						return
					}
					continue
				}
				q.Enqueue(&v)
			}
		}(p)
	}

	var cwg sync.WaitGroup
	for c := range numC {
		cwg.Add(1)
		go func(id int) {
			defer cwg.Done()
			backoff := iox.Backoff{}
			for consumed.Load() < total {
				var v int
				var err error
				switch id % 3 {
				case 0:
					v, err = q.Dequeue()
				case 1:
					v, err = q.PollTimeout(ctx, 50*time.Microsecond)
				default:
					v, err = q.Take(ctx)
				}
				if err != nil {
					backoff.Wait()
					continue
				}
				backoff.Reset()
				if _, loaded := seen.LoadOrStore(v, id); loaded {
					duplicates.Add(1)
				}
				consumed.Add(1)
				if consumed.Load() >= total {
					// Release consumers parked in Take.
					cancel()
				}
			}
		}(c)
	}

	wg.Wait()
	cwg.Wait()

	if n := duplicates.Load(); n != 0 {
		t.Fatalf("duplicates: got %d, want 0", n)
	}
	if n := seen.Size(); n != total {
		t.Fatalf("distinct items received: got %d, want %d", n, total)
	}
	if !q.IsEmpty() {
		t.Fatalf("queue not empty after all items were received: %v", q)
	}
}

// TestNoItemLostToCancelledWaiter tests that items enqueued during a storm
// of expiring waiters are all delivered.
func TestNoItemLostToCancelledWaiter(t *testing.T) {
	if ltq.RaceEnabled {
		t.Skip("skip: lock-free algorithm uses cross-variable memory ordering")
	}
	const items = 2000
	q := ltq.Build[int](ltq.New().Spins(0).SweepThreshold(2))
	received := new(xsync.Counter)
	var produced atomix.Bool

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for !produced.Load() || !q.IsEmpty() {
				if _, err := q.PollTimeout(context.Background(), time.Microsecond); err == nil {
					received.Inc()
				}
			}
		}()
	}
	for i := range items {
		v := i
		q.Enqueue(&v)
		if i%64 == 0 {
			time.Sleep(10 * time.Microsecond)
		}
	}
	produced.Store(true)
	wg.Wait()

	if got := received.Value(); got != items {
		t.Fatalf("received: got %d, want %d", got, items)
	}
	if n := q.WaitingConsumerCount(); n != 0 {
		t.Fatalf("WaitingConsumerCount: got %d, want 0", n)
	}
}

// TestConcurrentRemove tests that each item is removed by exactly one of
// several competing removers.
func TestConcurrentRemove(t *testing.T) {
	if ltq.RaceEnabled {
		t.Skip("skip: lock-free algorithm uses cross-variable memory ordering")
	}
	const n = 1000
	items := make([]int, n)
	for i := range items {
		items[i] = i
	}
	q := ltq.NewLinkedFrom(items)
	removed := new(xsync.Counter)

	var wg sync.WaitGroup
	for w := range 4 {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			if w == 3 {
				// One remover works through an iterator.
				for it := q.Iter(); it.Next(); {
					if it.Remove() {
						removed.Inc()
					}
				}
				return
			}
			for i := range n {
				if q.Remove((i + w*n/3) % n) {
					removed.Inc()
				}
			}
		}(w)
	}
	wg.Wait()

	if got := removed.Value(); got != n {
		t.Fatalf("successful removals: got %d, want %d", got, n)
	}
	if !q.IsEmpty() {
		t.Fatalf("queue not empty: %v", q)
	}
}

// =============================================================================
// Traversal Under Churn
// =============================================================================

// TestTraversalDuringChurn repeatedly adds and removes the same element
// while other goroutines traverse. Traversal must terminate, never fail,
// and only ever yield that element.
func TestTraversalDuringChurn(t *testing.T) {
	if ltq.RaceEnabled {
		t.Skip("skip: lock-free algorithm uses cross-variable memory ordering")
	}
	q := ltq.NewLinked[string]()
	var stop atomix.Bool
	var traversals atomix.Int64

	check := func(v string) {
		if v != "msg" {
			t.Errorf("traversal yielded %q", v)
		}
	}

	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		defer wg.Done()
		for !stop.Load() {
			q.ForEach(func(v string) bool { check(v); return true })
			traversals.Add(1)
		}
	}()
	go func() {
		defer wg.Done()
		for !stop.Load() {
			q.Spliterator().ForEachRemaining(check)
			traversals.Add(1)
		}
	}()
	go func() {
		defer wg.Done()
		for !stop.Load() {
			s := q.Spliterator()
			if left := s.TrySplit(); left != nil {
				left.ForEachRemaining(check)
			}
			for s.TryAdvance(check) {
			}
			traversals.Add(1)
		}
	}()
	go func() {
		defer wg.Done()
		for !stop.Load() {
			for it := q.Iter(); it.Next(); {
				check(it.Value())
			}
			traversals.Add(1)
		}
	}()

	deadline := time.Now().Add(churnDuration(t))
	msg := "msg"
	for time.Now().Before(deadline) {
		q.Enqueue(&msg)
		if !q.Remove("msg") {
			t.Fatalf("Remove(msg): got false")
		}
	}
	stop.Store(true)
	wg.Wait()

	if traversals.Load() == 0 {
		t.Fatalf("no traversal completed")
	}
	if !q.IsEmpty() {
		t.Fatalf("queue not empty: %v", q)
	}
}

// TestTraversalOrder tests that a traversal running against a producer and
// a consumer yields strictly increasing values, none of which were polled
// before it started.
func TestTraversalOrder(t *testing.T) {
	if ltq.RaceEnabled {
		t.Skip("skip: lock-free algorithm uses cross-variable memory ordering")
	}
	q := ltq.NewLinked[int64]()
	var stop atomix.Bool
	var watermark atomix.Int64
	watermark.Store(-1)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		backoff := iox.Backoff{}
		for i := int64(0); !stop.Load(); i++ {
			// Keep the backlog bounded.
			for i-watermark.Load() > 10000 && !stop.Load() {
				backoff.Wait()
			}
			backoff.Reset()
			q.Enqueue(&i)
		}
	}()
	go func() {
		defer wg.Done()
		for !stop.Load() {
			if v, ok := q.Poll(); ok {
				watermark.Store(v)
			}
		}
	}()

	deadline := time.Now().Add(churnDuration(t))
	for time.Now().Before(deadline) {
		w := watermark.Load()
		last := int64(-1)
		n := 0
		for v := range q.All() {
			if v <= w {
				t.Fatalf("traversal yielded %d, polled before start (watermark %d)", v, w)
			}
			if v <= last {
				t.Fatalf("traversal out of order: %d after %d", v, last)
			}
			last = v
			if n++; n == 10000 {
				break
			}
		}
	}
	stop.Store(true)
	wg.Wait()
}

// TestSplitDuringChurn tests that split parts of a concurrently modified
// queue are jointly ordered and disjoint.
func TestSplitDuringChurn(t *testing.T) {
	if ltq.RaceEnabled {
		t.Skip("skip: lock-free algorithm uses cross-variable memory ordering")
	}
	q := ltq.NewLinked[int64]()
	var stop atomix.Bool

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := int64(0); !stop.Load(); i++ {
			q.Enqueue(&i)
			if i >= 1000 {
				q.Poll()
			}
		}
	}()

	deadline := time.Now().Add(churnDuration(t))
	for time.Now().Before(deadline) {
		s := q.Spliterator()
		var parts []*ltq.Spliterator[int64]
		for range 6 {
			left := s.TrySplit()
			if left == nil {
				break
			}
			parts = append(parts, left)
		}
		parts = append(parts, s)

		last := int64(-1)
		for _, part := range parts {
			n := 0
			for v := range part.All() {
				if v <= last {
					t.Fatalf("split parts overlap or are out of order: %d after %d", v, last)
				}
				last = v
				if n++; n == 10000 {
					break
				}
			}
		}
	}
	stop.Store(true)
	wg.Wait()
}
