// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ltq

import (
	"fmt"
	"strings"
)

// maxHops bounds the dead nodes bulkRemove crosses before collapsing them.
const maxHops = 8

// checkHead panics if h is the current head and is self-linked.
// Compiled out unless built with -tags ltqdebug.
func (q *Linked[T]) checkHead(h *node[T]) {
	if debugInvariants && h.next.LoadAcquire() == h && q.head.LoadAcquire() == h {
		panic("ltq: head is self-linked")
	}
}

// casHead moves head from h to p and retires h.
func (q *Linked[T]) casHead(h, p *node[T]) bool {
	if q.head.CompareAndSwapAcqRel(h, p) {
		h.selfLink()
		return true
	}
	return false
}

// skipDeadNodesNearHead advances head from h past the matched node p and
// any matched successors. The trailing node is kept.
func (q *Linked[T]) skipDeadNodesNearHead(h, p *node[T]) {
	for {
		next := p.next.LoadAcquire()
		if next == nil {
			break
		}
		if !next.isMatched() {
			p = next
			break
		}
		if p == next {
			return
		}
		p = next
	}
	q.casHead(h, p)
}

// tryCasSuccessor links pred (or head if pred is nil) past the dead run
// starting at c, so that p becomes its successor.
func (q *Linked[T]) tryCasSuccessor(pred, c, p *node[T]) bool {
	if pred != nil {
		return pred.casNext(c, p)
	}
	return q.casHead(c, p)
}

// skipDeadNodes collapses the dead run c..p, where next is p's successor.
// Returns pred if pred is still live and the CAS succeeded, else p.
func (q *Linked[T]) skipDeadNodes(pred, c, p, next *node[T]) *node[T] {
	if next == nil {
		// Never unlink the trailing node.
		if c == p {
			return pred
		}
		next = p
	}
	if q.tryCasSuccessor(pred, c, next) && (pred == nil || !pred.isMatched()) {
		return pred
	}
	return p
}

// firstDataNode returns the first live data node, or nil. Moves head past
// the dead prefix it crosses.
func (q *Linked[T]) firstDataNode() *node[T] {
restart:
	for {
		var first *node[T]
		h := q.head.LoadAcquire()
		q.checkHead(h)
		p := h
		for p != nil {
			item := p.item.LoadAcquire()
			if item != nil {
				if p.isData {
					first = p
					break
				}
			} else if !p.isData {
				break
			}
			next := p.next.LoadAcquire()
			if next == nil {
				break
			}
			if p == next {
				continue restart
			}
			p = next
		}
		if p != h {
			q.casHead(h, p)
		}
		return first
	}
}

// firstDataFrom returns the first live data node at or after p, or nil.
func (q *Linked[T]) firstDataFrom(p *node[T]) *node[T] {
	for p != nil {
		next := p.next.LoadAcquire()
		item := p.item.LoadAcquire()
		if p.isData {
			if item != nil {
				return p
			}
		} else if item == nil {
			return nil
		}
		if p == next {
			return q.firstDataNode()
		}
		p = next
	}
	return nil
}

// countOfMode counts unmatched nodes of the given mode. Returns 0 as soon
// as an unmatched node of the other mode is found.
func (q *Linked[T]) countOfMode(data bool) int {
restart:
	for {
		count := 0
		for p := q.head.LoadAcquire(); p != nil; {
			if !p.isMatched() {
				if p.isData != data {
					return 0
				}
				count++
			}
			next := p.next.LoadAcquire()
			if p == next {
				continue restart
			}
			p = next
		}
		return count
	}
}

// forEachFrom calls yield for each live item from p on, collapsing dead
// runs it crosses. Stops early when yield returns false.
func (q *Linked[T]) forEachFrom(p *node[T], yield func(*T) bool) {
	var pred *node[T]
	for p != nil {
		next := p.next.LoadAcquire()
		item := p.item.LoadAcquire()
		if item != nil {
			if p.isData {
				if !yield(item) {
					return
				}
				pred = p
				p = next
				continue
			}
		} else if !p.isData {
			break
		}
		c := p
		for {
			if next == nil || !next.isMatched() {
				pred = q.skipDeadNodes(pred, c, p, next)
				p = next
				break
			}
			if p == next {
				pred = nil
				p = q.head.LoadAcquire()
				break
			}
			p = next
			next = p.next.LoadAcquire()
		}
	}
}

// findData walks live data nodes from head, collapsing dead runs, until
// match reports true. Used by Contains and Remove.
func (q *Linked[T]) findData(match func(p *node[T], item *T) bool) bool {
restart:
	for {
		var pred *node[T]
		for p := q.head.LoadAcquire(); p != nil; {
			next := p.next.LoadAcquire()
			item := p.item.LoadAcquire()
			if item != nil {
				if p.isData {
					if match(p, item) {
						if p.isMatched() {
							q.skipDeadNodes(pred, p, p, next)
						}
						return true
					}
					pred = p
					p = next
					continue
				}
			} else if !p.isData {
				break
			}
			c := p
			for {
				if next == nil || !next.isMatched() {
					pred = q.skipDeadNodes(pred, c, p, next)
					p = next
					break
				}
				if p == next {
					continue restart
				}
				p = next
				next = p.next.LoadAcquire()
			}
		}
		return false
	}
}

// Contains reports whether an item equal to x is in the queue.
func (q *Linked[T]) Contains(x T) bool {
	return q.findData(func(_ *node[T], item *T) bool {
		return *item == x
	})
}

// ForEach calls fn for each item in queue order until fn returns false.
// Iteration is weakly consistent.
func (q *Linked[T]) ForEach(fn func(T) bool) {
	q.forEachFrom(q.head.LoadAcquire(), func(item *T) bool {
		return fn(*item)
	})
}

// ToSlice returns a snapshot of the items in queue order.
func (q *Linked[T]) ToSlice() []T {
	var items []T
	q.forEachFrom(q.head.LoadAcquire(), func(item *T) bool {
		items = append(items, *item)
		return true
	})
	return items
}

// String formats the items in queue order, e.g. "[1 2 3]".
func (q *Linked[T]) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	first := true
	q.forEachFrom(q.head.LoadAcquire(), func(item *T) bool {
		if !first {
			sb.WriteByte(' ')
		}
		first = false
		fmt.Fprint(&sb, *item)
		return true
	})
	sb.WriteByte(']')
	return sb.String()
}
