// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ltq

import (
	"iter"
	"math"
)

// maxBatch caps the prefix copied by a single TrySplit.
const maxBatch = 1 << 25

// Spliterator is a splittable, weakly consistent cursor over the items of
// a Linked queue, for parallel traversal.
//
// TrySplit hands a prefix batch to a new array-backed Spliterator and keeps
// the rest of the chain. The two cover the remaining items jointly and
// disjointly, and the returned batch precedes the receiver's items in queue
// order. Batch sizes double with each split.
//
// A Spliterator is not safe for concurrent use; split it and hand each
// part to one goroutine.
//
// Example:
//
//	s := q.Spliterator()
//	left := s.TrySplit()
//	go func() { left.ForEachRemaining(process) }()
//	s.ForEachRemaining(process)
type Spliterator[T comparable] struct {
	q         *Linked[T]
	current   *node[T] // Next node to examine, nil before start or when exhausted
	batch     int      // Size of the last split batch
	exhausted bool

	// Split-off prefix
	array bool
	buf   []T
}

// Spliterator returns a spliterator positioned before the first item.
func (q *Linked[T]) Spliterator() *Spliterator[T] {
	return &Spliterator[T]{q: q}
}

func (s *Spliterator[T]) setCurrent(p *node[T]) {
	if s.current = p; p == nil {
		s.exhausted = true
	}
}

func (s *Spliterator[T]) cursor() *node[T] {
	p := s.current
	if p == nil && !s.exhausted {
		p = s.q.firstDataNode()
		s.setCurrent(p)
	}
	return p
}

// TryAdvance calls action with the next item, if any.
// Reports whether an item was found.
func (s *Spliterator[T]) TryAdvance(action func(T)) bool {
	if s.array {
		if len(s.buf) == 0 {
			return false
		}
		v := s.buf[0]
		s.buf = s.buf[1:]
		action(v)
		return true
	}

	p := s.cursor()
	if p == nil {
		return false
	}
	var e *T
	for p != nil {
		next := p.next.LoadAcquire()
		item := p.item.LoadAcquire()
		isData := p.isData
		if p == next {
			p = s.q.head.LoadAcquire()
		} else {
			p = next
		}
		if isData {
			if item != nil {
				e = item
				break
			}
		} else if item == nil {
			p = nil
		}
	}
	s.setCurrent(p)
	if e == nil {
		return false
	}
	action(*e)
	return true
}

// ForEachRemaining calls action for each remaining item in order.
func (s *Spliterator[T]) ForEachRemaining(action func(T)) {
	if s.array {
		buf := s.buf
		s.buf = nil
		for _, v := range buf {
			action(v)
		}
		return
	}
	if p := s.cursor(); p != nil {
		s.current = nil
		s.exhausted = true
		s.q.forEachFrom(p, func(item *T) bool {
			action(*item)
			return true
		})
	}
}

// All returns the remaining items as a sequence. Breaking out of the loop
// leaves the spliterator after the last yielded item.
func (s *Spliterator[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		more := true
		for more {
			if !s.TryAdvance(func(v T) { more = yield(v) }) {
				return
			}
		}
	}
}

// TrySplit splits off a prefix of the remaining items.
//
// Returns nil if fewer than two items remain. The returned Spliterator
// covers items strictly before those left in s.
func (s *Spliterator[T]) TrySplit() *Spliterator[T] {
	if s.array {
		n := len(s.buf)
		if n < 2 {
			return nil
		}
		mid := n / 2
		left := &Spliterator[T]{q: s.q, array: true, buf: s.buf[:mid:mid]}
		s.buf = s.buf[mid:]
		return left
	}

	p := s.cursor()
	if p == nil || p.next.LoadAcquire() == nil {
		return nil
	}
	n := min(max(s.batch*2, 1), maxBatch)
	s.batch = n

	a := make([]T, 0, min(n, 64))
	var last *node[T]
	for p != nil && len(a) < n {
		next := p.next.LoadAcquire()
		item := p.item.LoadAcquire()
		if p.isData {
			if item != nil {
				a = append(a, *item)
				last = p
			}
		} else if item == nil {
			p = nil
			break
		}
		if p == next {
			p = s.q.firstDataNode()
		} else {
			p = next
		}
	}

	rest := s.q.firstDataFrom(p)
	if rest == nil && last != nil {
		// The batch would take everything: leave the final item to s.
		a = a[:len(a)-1]
		rest = last
	}
	s.setCurrent(rest)
	if len(a) == 0 {
		return nil
	}
	return &Spliterator[T]{q: s.q, array: true, buf: a}
}

// EstimateSize returns the exact number of items of a split-off batch, or
// math.MaxInt while the count is unknown.
func (s *Spliterator[T]) EstimateSize() int {
	switch {
	case s.array:
		return len(s.buf)
	case s.exhausted:
		return 0
	default:
		return math.MaxInt
	}
}
