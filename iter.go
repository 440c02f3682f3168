// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ltq

import "iter"

// Iterator is a weakly consistent cursor over the items of a Linked queue.
//
// It never fails under concurrent modification, never returns an item
// twice, and returns items in queue order. Items removed before the
// cursor reaches them are skipped; items added after it was created may
// or may not be returned.
//
// Example:
//
//	for it := q.Iter(); it.Next(); {
//	    if it.Value() == stale {
//	        it.Remove()
//	    }
//	}
type Iterator[T comparable] struct {
	q        *Linked[T]
	nextNode *node[T] // Node holding nextItem
	nextItem *T       // Item returned by the following Next
	lastRet  *node[T] // Node of the current Value, for Remove
	ancestor *node[T] // Hint for Remove: a node before lastRet, or nil
	value    T
}

// Iter returns an iterator positioned before the first item.
func (q *Linked[T]) Iter() *Iterator[T] {
	it := &Iterator[T]{q: q}
	it.advance(nil)
	return it
}

// Next advances to the following item. Reports false when exhausted.
func (it *Iterator[T]) Next() bool {
	p := it.nextNode
	if p == nil {
		it.lastRet = nil
		return false
	}
	it.value = *it.nextItem
	it.lastRet = p
	it.advance(p)
	return true
}

// Value returns the item at the cursor.
func (it *Iterator[T]) Value() T {
	return it.value
}

// advance moves the lookahead to the first live data node after pred
// (or from head if pred is nil), collapsing dead runs it crosses.
func (it *Iterator[T]) advance(pred *node[T]) {
	q := it.q
	var p *node[T]
	if pred == nil {
		p = q.head.LoadAcquire()
	} else {
		p = pred.next.LoadAcquire()
	}
	c := p
	for p != nil {
		next := p.next.LoadAcquire()
		item := p.item.LoadAcquire()
		if item != nil && p.isData {
			it.nextNode, it.nextItem = p, item
			if c != p {
				q.tryCasSuccessor(pred, c, p)
			}
			return
		} else if !p.isData && item == nil {
			break
		}
		if c != p {
			ok := q.tryCasSuccessor(pred, c, p)
			c = p
			if !ok {
				pred = p
				p = next
				c = p
				continue
			}
		}
		if p == next {
			pred = nil
			p = q.head.LoadAcquire()
			c = p
			continue
		}
		p = next
	}
	it.nextNode, it.nextItem = nil, nil
}

// Remove removes the item most recently returned by Next, if it is still
// in the queue. Reports whether this call removed it. Calling Remove twice
// without Next returns false.
func (it *Iterator[T]) Remove() bool {
	lastRet := it.lastRet
	if lastRet == nil {
		return false
	}
	it.lastRet = nil
	if lastRet.item.LoadAcquire() == nil {
		return false
	}

	q := it.q
	removed := false
	pred := it.ancestor
	var p *node[T]
	if pred == nil {
		p = q.head.LoadAcquire()
	} else {
		p = pred.next.LoadAcquire()
	}
	c := p
	for p != nil {
		if p == lastRet {
			if item := p.item.LoadAcquire(); item != nil {
				removed = p.tryMatch(item, nil)
			}
			next := p.next.LoadAcquire()
			if next == nil {
				next = p
			}
			if c != next {
				q.tryCasSuccessor(pred, c, next)
			}
			it.ancestor = pred
			return removed
		}
		next := p.next.LoadAcquire()
		item := p.item.LoadAcquire()
		alive := item != nil && p.isData
		if !alive && !p.isData && item == nil {
			break
		}
		ok := true
		if c != p {
			ok = q.tryCasSuccessor(pred, c, p)
			c = p
		}
		if !ok || alive {
			pred = p
			p = next
			c = p
			continue
		}
		if p == next {
			pred = nil
			p = q.head.LoadAcquire()
			c = p
			continue
		}
		p = next
	}
	// Not reachable, so already matched and unlinked. Keep ancestor where
	// it was to avoid overshooting.
	if item := lastRet.item.LoadAcquire(); item != nil {
		removed = lastRet.tryMatch(item, nil)
	}
	return removed
}

// All returns a weakly consistent sequence over the items in queue order.
//
// Example:
//
//	for v := range q.All() {
//	    fmt.Println(v)
//	}
func (q *Linked[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		q.forEachFrom(q.head.LoadAcquire(), func(item *T) bool {
			return yield(*item)
		})
	}
}
