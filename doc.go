// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ltq provides an unbounded lock-free linked transfer queue.
//
// [Linked] serves three roles at once:
//
//   - FIFO queue: Enqueue/Offer never block, Poll/Dequeue never block
//   - Rendezvous channel: Transfer waits until a consumer receives the item,
//     Take waits until an item arrives
//   - Weakly consistent sequence: Iter, All, ForEach and Spliterator run
//     concurrently with any mutation
//
// # Quick Start
//
//	q := ltq.NewLinked[Event]()
//
//	// Producer
//	ev := Event{ID: 1}
//	q.Enqueue(&ev)
//
//	// Consumer (non-blocking)
//	ev, err := q.Dequeue()
//	if ltq.IsWouldBlock(err) {
//	    // Queue is empty
//	}
//
//	// Consumer (blocking)
//	ev, err := q.Take(ctx)
//
// Builder API for tuning:
//
//	q := ltq.Build[Event](ltq.New().Spins(0).SweepThreshold(8))
//
// # Hand-off
//
// Transfer blocks the producer until a consumer has taken the item, which
// makes the queue usable as a synchronous channel with FIFO fairness among
// waiters:
//
//	go func() {
//	    job := Job{ID: 7}
//	    if err := q.Transfer(ctx, &job); err != nil {
//	        // ctx cancelled: job was withdrawn
//	    }
//	    // job has been received by a consumer
//	}()
//
//	job, err := q.Take(ctx)
//
// TryTransfer only succeeds if a consumer is already waiting and never
// enqueues the item. Buffered items and items of blocked Transfer calls
// share one FIFO order: consumers take whichever is oldest.
//
// # Algorithm
//
// The queue is a dual queue of nodes. A node is either a data node carrying
// an item or a request node standing for a waiting consumer. At any time the
// unmatched nodes of the chain are all of one kind. An operation walks from
// head, matches the first unmatched node of the opposite kind with a single
// CAS on its item, or appends its own node at the end.
//
// Removal is logical first and physical later. A matched node stays linked
// until some operation advances head past it, at which point it is
// self-linked (next points to itself) to mark it dead. Traversals that find
// their current node self-linked restart from head. Interior runs of matched
// nodes are unlinked by whichever traversal crosses them; bulk removal
// collapses them every few hops.
//
// head and tail are hints with one hop of slack, which halves the number of
// CAS operations on them. head is never self-linked; tail may be, and
// operations that find it so restart from head.
//
// # Blocking and Cancellation
//
// Take, PollTimeout, Transfer and TryTransferTimeout append a node that
// carries a private wake-up channel. The waiter spins briefly when it is at
// the front (see [Builder.Spins]) and then parks on the channel. The
// matching goroutine signals it after the match CAS.
//
// Cancellation uses [context.Context]. A cancelled or expired waiter
// retires its own node by CAS, unlinks it when possible, and returns. It
// never needs another goroutine's cooperation:
//
//	v, err := q.Take(ctx)          // ctx.Err() on cancellation
//	v, err := q.PollTimeout(ctx, d) // ErrWouldBlock on expiry
//
// # Iteration
//
// All traversal is weakly consistent: it never fails, never yields an item
// twice, yields items in queue order, skips items removed before it reaches
// them, and may or may not see items added after it started.
//
//	for v := range q.All() {
//	    fmt.Println(v)
//	}
//
// Spliterator supports parallel traversal. TrySplit hands off a prefix of
// the remaining items; batch sizes double with each split.
//
// # Size
//
// Len walks the chain and costs O(n). Its result is a snapshot that may be
// stale by the time it returns.
//
// # Serialization
//
// Linked implements [encoding.BinaryMarshaler] and
// [encoding.BinaryUnmarshaler] using encoding/gob. Decoding builds a fresh
// chain that shares no node with the source.
//
// # Error Handling
//
// Non-blocking operations that cannot proceed return [ErrWouldBlock],
// sourced from [code.hybscloud.com/iox]. A nil element returns
// [ErrNilElement] without modifying the queue. Cancelled waits return the
// context's error.
//
// # Debug Builds
//
// Building with -tags ltqdebug enables internal invariant checks that panic
// when violated, such as observing a self-linked head.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/iox] for semantic errors,
// [code.hybscloud.com/atomix] for node links and the cleanup vote counter,
// and [code.hybscloud.com/spin] for CPU pause instructions while spinning.
package ltq
