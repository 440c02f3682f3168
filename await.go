// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ltq

import (
	"context"
	"time"

	"code.hybscloud.com/spin"
)

// awaitMatch waits until s, appended after pred, is matched, the timeout
// expires, or ctx is done.
//
// A waiter at the front spins before parking on s.waiter. On expiry or
// cancellation the waiter retires s itself by CASing its item to the
// matched state; if that CAS loses, a match won the race and is returned.
func (q *Linked[T]) awaitMatch(ctx context.Context, s, pred *node[T], e *T, timed bool, timeout time.Duration) (*T, error) {
	var expired <-chan time.Time
	if timed {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}
	var done <-chan struct{}
	if ctx != nil {
		done = ctx.Done()
	}

	spins := q.spinsFor(pred)
	sw := spin.Wait{}
	for {
		if item := s.item.LoadAcquire(); item != e {
			if !s.isData {
				// Drop the reference to the delivered item.
				s.item.StoreRelease(q.tomb)
			}
			return item, nil
		}
		if spins > 0 {
			spins--
			sw.Once()
			continue
		}

		var err error
		select {
		case <-s.waiter:
			continue
		case <-expired:
		case <-done:
			err = ctx.Err()
		}

		// Retire s: a data node gives up its item, a request node takes
		// the sentinel.
		var retired *T
		if !s.isData {
			retired = q.tomb
		}
		if s.item.CompareAndSwapAcqRel(e, retired) {
			q.unsplice(pred, s)
			return e, err
		}
		// Lost to a concurrent match; the next iteration returns it.
	}
}

// spinsFor returns the spin budget of a waiter appended after pred.
func (q *Linked[T]) spinsFor(pred *node[T]) int {
	switch {
	case pred.isMatched():
		return q.spins
	case pred.waiter == nil:
		// pred is a buffered item: s is close to the front.
		return q.spins / 2
	default:
		return 0
	}
}

// unsplice removes the retired node s following pred.
//
// If pred still links to s, s is bypassed in place unless it is the
// trailing node. When that cannot be guaranteed to take effect (s trailing,
// or pred itself dead) and neither pred nor s is at head, a sweep vote is
// cast; every sweepThreshold votes the whole chain is swept.
func (q *Linked[T]) unsplice(pred, s *node[T]) {
	if pred == nil || pred == s || pred.next.LoadAcquire() != s {
		return
	}
	n := s.next.LoadAcquire()
	if n != nil && (n == s || !pred.casNext(s, n) || !pred.isMatched()) {
		return
	}
	for {
		h := q.head.LoadAcquire()
		if h == pred || h == s {
			return
		}
		if !h.isMatched() {
			break
		}
		hn := h.next.LoadAcquire()
		if hn == nil {
			return
		}
		if hn != h {
			q.casHead(h, hn)
		}
	}
	if pred.next.LoadAcquire() == pred || s.next.LoadAcquire() == s {
		return
	}
	if v := q.sweepVotes.AddAcqRel(1); v >= q.sweepThreshold {
		if q.sweepVotes.CompareAndSwapAcqRel(v, 0) {
			q.sweep()
		}
	}
}

// sweep unlinks every interior matched node reachable from head.
func (q *Linked[T]) sweep() {
	p := q.head.LoadAcquire()
	for p != nil {
		s := p.next.LoadAcquire()
		if s == nil {
			return
		}
		if !s.isMatched() {
			// Unmatched nodes are never self-linked.
			p = s
			continue
		}
		n := s.next.LoadAcquire()
		if n == nil {
			// The trailing node is pinned.
			return
		}
		if s == n {
			p = q.head.LoadAcquire()
			continue
		}
		p.casNext(s, n)
	}
}
