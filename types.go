// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ltq

import (
	"context"
	"iter"
	"time"
)

// Queue is the combined producer-consumer interface for an unbounded FIFO
// queue with weakly consistent traversal.
//
// Example:
//
//	q := ltq.NewLinked[int]()
//
//	// Enqueue
//	val := 42
//	if err := q.Enqueue(&val); err != nil {
//	    // only ErrNilElement is possible
//	}
//
//	// Dequeue
//	elem, err := q.Dequeue()
//	if err == nil {
//	    fmt.Println(elem)
//	}
type Queue[T any] interface {
	Producer[T]
	Consumer[T]

	// Len walks the chain and counts live items. The result is a weakly
	// consistent snapshot and costs O(n).
	Len() int

	// All returns a weakly consistent sequence over the live items.
	All() iter.Seq[T]
}

// Producer is the interface for enqueueing elements.
//
// The element is passed by pointer to mirror the rest of the package.
// The queue stores a copy of the pointed-to value, so the original can be
// modified after Enqueue returns.
type Producer[T any] interface {
	// Enqueue appends an element to the queue, or hands it directly to a
	// waiting consumer. Never blocks.
	// Returns nil on success, ErrNilElement if elem is nil.
	Enqueue(elem *T) error
}

// Consumer is the interface for dequeueing elements.
type Consumer[T any] interface {
	// Dequeue removes and returns the oldest element (non-blocking).
	// Returns (zero-value, ErrWouldBlock) if the queue holds no element.
	Dequeue() (T, error)
}

// BlockingQueue adds blocking retrieval to Queue.
//
// Blocking operations take a context for cancellation. A cancelled waiter
// retires its own placeholder node and returns ctx.Err(); no other
// goroutine is required to make progress.
type BlockingQueue[T any] interface {
	Queue[T]

	// Take removes and returns the oldest element, waiting if necessary.
	Take(ctx context.Context) (T, error)

	// PollTimeout is Take bounded by timeout. Expiry returns ErrWouldBlock.
	PollTimeout(ctx context.Context, timeout time.Duration) (T, error)
}

// TransferQueue is a BlockingQueue in which producers may wait for
// consumers to receive elements.
type TransferQueue[T any] interface {
	BlockingQueue[T]

	// Transfer hands elem to a consumer, waiting if necessary.
	Transfer(ctx context.Context, elem *T) error

	// TryTransfer hands elem to an already waiting consumer.
	// Returns ErrWouldBlock if none is waiting; elem is not enqueued.
	TryTransfer(elem *T) error

	// TryTransferTimeout is Transfer bounded by timeout. Expiry returns
	// ErrWouldBlock and elem is withdrawn from the queue.
	TryTransferTimeout(ctx context.Context, elem *T, timeout time.Duration) error

	// HasWaitingConsumer reports whether at least one consumer is waiting.
	HasWaitingConsumer() bool

	// WaitingConsumerCount returns an estimate of waiting consumers.
	WaitingConsumerCount() int
}
