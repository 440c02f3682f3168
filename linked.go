// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ltq

import (
	"context"
	"time"

	"code.hybscloud.com/atomix"
)

// Modes of xfer.
const (
	xferNow   = iota // Poll, TryTransfer: never append
	xferAsync        // Enqueue, Offer: append and return
	xferSync         // Take, Transfer: wait until matched
	xferTimed        // PollTimeout, TryTransferTimeout: wait until matched or expired
)

// Linked is an unbounded lock-free multi-producer multi-consumer transfer
// queue.
//
// Linked is a dual queue: the chain holds either items (data nodes) or
// waiting consumers (request nodes), never unmatched nodes of both kinds.
// A producer that finds a waiting consumer hands its item over with a
// single CAS on the consumer's node; otherwise it appends. Consumers do
// the mirror image. Removal is logical first (CAS item) and physical later:
// head advances past matched nodes and self-links them, and traversals
// unlink interior runs of matched nodes they cross.
//
// head and tail are hints that may lag by one hop; tail may even point at a
// self-linked node, in which case operations restart from head.
//
// Memory: one node per item or waiting goroutine
type Linked[T comparable] struct {
	_              pad
	head           atomix.Pointer[node[T]] // At or before the first live node
	_              pad
	tail           atomix.Pointer[node[T]] // At or before the last node
	_              pad
	sweepVotes     atomix.Uint64 // Failed unsplices since the last sweep
	_              pad
	tomb           *T // Item of a cancelled request node
	spins          int
	sweepThreshold uint64
}

var _ TransferQueue[int] = (*Linked[int])(nil)

// NewLinked creates an empty queue with default tuning.
func NewLinked[T comparable]() *Linked[T] {
	return newLinked[T](New().opts)
}

// NewLinkedFrom creates a queue holding a copy of items in order.
func NewLinkedFrom[T comparable](items []T) *Linked[T] {
	q := NewLinked[T]()
	q.appendAll(items)
	return q
}

func newLinked[T comparable](opts Options) *Linked[T] {
	q := &Linked[T]{
		tomb:           new(T),
		spins:          opts.spins,
		sweepThreshold: opts.sweepThreshold,
	}
	q.reset()
	return q
}

// reset installs a fresh chain holding only a matched dummy node.
func (q *Linked[T]) reset() {
	d := &node[T]{isData: true}
	q.head.StoreRelease(d)
	q.tail.StoreRelease(d)
}

func (q *Linked[T]) appendAll(items []T) {
	for i := range items {
		v := items[i]
		q.xfer(nil, &v, true, xferAsync, 0)
	}
}

// xfer implements every enqueue, dequeue and transfer.
//
// e is the item for producers and nil for consumers. The result equals e
// if no match happened; otherwise it is the matched node's former item
// (nil for producers, the delivered item for consumers). err is non-nil
// only when a blocking wait was cancelled through ctx.
func (q *Linked[T]) xfer(ctx context.Context, e *T, haveData bool, how int, timeout time.Duration) (*T, error) {
	var s, t, h *node[T]
restart:
	for {
		var p *node[T]
		old := t
		t = q.tail.LoadAcquire()
		if t != old && t.isData == haveData {
			// Same mode at the tail: no counterpart can precede it.
			p = t
		} else {
			h = q.head.LoadAcquire()
			q.checkHead(h)
			p = h
		}
		for {
			item := p.item.LoadAcquire()
			if p.isData != haveData && haveData == (item == nil) {
				if h == nil {
					h = q.head.LoadAcquire()
				}
				if p.tryMatch(item, e) {
					if h != p {
						q.skipDeadNodesNearHead(h, p)
					}
					return item, nil
				}
			}
			next := p.next.LoadAcquire()
			if next == nil {
				if how == xferNow {
					return e, nil
				}
				if s == nil {
					s = newNode(e, haveData, how != xferAsync)
				}
				if !p.casNext(nil, s) {
					continue
				}
				if p != t {
					q.tail.CompareAndSwapAcqRel(t, s)
				}
				if how == xferAsync {
					return e, nil
				}
				return q.awaitMatch(ctx, s, p, e, how == xferTimed, timeout)
			}
			if p == next {
				continue restart
			}
			p = next
		}
	}
}

// Enqueue appends a copy of *elem, or hands it to a waiting consumer.
// Never blocks. Returns ErrNilElement if elem is nil.
func (q *Linked[T]) Enqueue(elem *T) error {
	if elem == nil {
		return ErrNilElement
	}
	v := *elem
	q.xfer(nil, &v, true, xferAsync, 0)
	return nil
}

// Offer is Enqueue reporting success as a bool.
// Returns false only if elem is nil.
func (q *Linked[T]) Offer(elem *T) bool {
	return q.Enqueue(elem) == nil
}

// Poll removes and returns the oldest element.
// Returns (zero-value, false) if the queue holds no element.
func (q *Linked[T]) Poll() (T, bool) {
	e, _ := q.xfer(nil, nil, false, xferNow, 0)
	if e == nil {
		var zero T
		return zero, false
	}
	return *e, true
}

// Dequeue removes and returns the oldest element.
// Returns (zero-value, ErrWouldBlock) if the queue holds no element.
func (q *Linked[T]) Dequeue() (T, error) {
	if v, ok := q.Poll(); ok {
		return v, nil
	}
	var zero T
	return zero, ErrWouldBlock
}

// Take removes and returns the oldest element, waiting until one is
// available. If ctx is done first, the wait is abandoned and ctx.Err()
// is returned. ctx must be non-nil.
func (q *Linked[T]) Take(ctx context.Context) (T, error) {
	e, err := q.xfer(ctx, nil, false, xferSync, 0)
	if e == nil {
		var zero T
		return zero, err
	}
	return *e, nil
}

// PollTimeout is Take bounded by timeout.
// Returns (zero-value, ErrWouldBlock) on expiry and ctx.Err() on
// cancellation. A non-positive timeout does not wait.
func (q *Linked[T]) PollTimeout(ctx context.Context, timeout time.Duration) (T, error) {
	how := xferTimed
	if timeout <= 0 {
		how = xferNow
	}
	e, err := q.xfer(ctx, nil, false, how, timeout)
	if e != nil {
		return *e, nil
	}
	var zero T
	if err != nil {
		return zero, err
	}
	return zero, ErrWouldBlock
}

// Transfer hands a copy of *elem to a consumer, waiting until one
// receives it. If ctx is done first, the element is withdrawn and
// ctx.Err() is returned. ctx must be non-nil.
func (q *Linked[T]) Transfer(ctx context.Context, elem *T) error {
	if elem == nil {
		return ErrNilElement
	}
	v := *elem
	e := &v
	if x, err := q.xfer(ctx, e, true, xferSync, 0); x == e {
		return err
	}
	return nil
}

// TryTransfer hands a copy of *elem to an already waiting consumer.
// Returns ErrWouldBlock, without enqueueing, if no consumer is waiting.
func (q *Linked[T]) TryTransfer(elem *T) error {
	if elem == nil {
		return ErrNilElement
	}
	v := *elem
	e := &v
	if x, _ := q.xfer(nil, e, true, xferNow, 0); x == e {
		return ErrWouldBlock
	}
	return nil
}

// TryTransferTimeout is Transfer bounded by timeout.
// Returns ErrWouldBlock on expiry and ctx.Err() on cancellation; in both
// cases the element is withdrawn. A non-positive timeout behaves like
// TryTransfer.
func (q *Linked[T]) TryTransferTimeout(ctx context.Context, elem *T, timeout time.Duration) error {
	if elem == nil {
		return ErrNilElement
	}
	how := xferTimed
	if timeout <= 0 {
		how = xferNow
	}
	v := *elem
	e := &v
	x, err := q.xfer(ctx, e, true, how, timeout)
	if x != e {
		return nil
	}
	if err != nil {
		return err
	}
	return ErrWouldBlock
}

// HasWaitingConsumer reports whether a consumer is blocked in Take or
// PollTimeout. The answer is a momentary snapshot.
func (q *Linked[T]) HasWaitingConsumer() bool {
restart:
	for {
		for p := q.head.LoadAcquire(); p != nil; {
			item := p.item.LoadAcquire()
			if p.isData {
				if item != nil {
					break
				}
			} else if item == nil {
				return true
			}
			next := p.next.LoadAcquire()
			if p == next {
				continue restart
			}
			p = next
		}
		return false
	}
}

// WaitingConsumerCount returns the number of consumers blocked in Take or
// PollTimeout. Walks the chain; the result is a weakly consistent snapshot.
func (q *Linked[T]) WaitingConsumerCount() int {
	return q.countOfMode(false)
}

// Len returns the number of items. Walks the chain; the result is a weakly
// consistent snapshot and costs O(n).
func (q *Linked[T]) Len() int {
	return q.countOfMode(true)
}

// IsEmpty reports whether the queue holds no item.
func (q *Linked[T]) IsEmpty() bool {
	return q.firstDataNode() == nil
}

// Peek returns the oldest element without removing it.
func (q *Linked[T]) Peek() (T, bool) {
restart:
	for {
		for p := q.head.LoadAcquire(); p != nil; {
			item := p.item.LoadAcquire()
			if p.isData {
				if item != nil {
					return *item, true
				}
			} else if item == nil {
				break
			}
			next := p.next.LoadAcquire()
			if p == next {
				continue restart
			}
			p = next
		}
		var zero T
		return zero, false
	}
}
