// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ltq_test

import (
	"context"
	"fmt"
	"time"

	"code.hybscloud.com/ltq"
)

// ExampleNewLinked demonstrates the queue as a plain FIFO.
func ExampleNewLinked() {
	q := ltq.NewLinked[int]()

	for i := 1; i <= 3; i++ {
		v := i * 10
		q.Enqueue(&v)
	}

	for {
		v, err := q.Dequeue()
		if ltq.IsWouldBlock(err) {
			break
		}
		fmt.Println(v)
	}

	// Output:
	// 10
	// 20
	// 30
}

// ExampleLinked_PollTimeout demonstrates a bounded wait on an empty queue.
func ExampleLinked_PollTimeout() {
	q := ltq.NewLinked[int]()

	_, err := q.PollTimeout(context.Background(), 5*time.Millisecond)
	fmt.Println(ltq.IsWouldBlock(err))

	// Output:
	// true
}

// ExampleLinked_TryTransfer demonstrates that TryTransfer never buffers.
func ExampleLinked_TryTransfer() {
	q := ltq.NewLinked[int]()

	v := 1
	err := q.TryTransfer(&v)
	fmt.Println(ltq.IsWouldBlock(err), q.Len())

	// Output:
	// true 0
}

// ExampleLinked_Iter demonstrates removal during iteration.
func ExampleLinked_Iter() {
	q := ltq.NewLinkedFrom([]int{1, 2, 3, 4, 5})

	for it := q.Iter(); it.Next(); {
		if it.Value()%2 == 0 {
			it.Remove()
		}
	}
	fmt.Println(q)

	// Output:
	// [1 3 5]
}

// ExampleLinked_All demonstrates range-over-func iteration.
func ExampleLinked_All() {
	q := ltq.NewLinkedFrom([]string{"a", "b", "c"})

	for v := range q.All() {
		fmt.Print(v, " ")
	}
	fmt.Println()

	// Output:
	// a b c
}

// ExampleSpliterator demonstrates splitting a traversal into parts.
func ExampleSpliterator() {
	q := ltq.NewLinkedFrom([]int{1, 2, 3, 4, 5, 6, 7, 8})

	s := q.Spliterator()
	left := s.TrySplit()
	mid := s.TrySplit()

	left.ForEachRemaining(func(v int) { fmt.Print(v, " ") })
	fmt.Println("|")
	mid.ForEachRemaining(func(v int) { fmt.Print(v, " ") })
	fmt.Println("|")
	s.ForEachRemaining(func(v int) { fmt.Print(v, " ") })
	fmt.Println()

	// Output:
	// 1 |
	// 2 3 |
	// 4 5 6 7 8
}

// ExampleBuild demonstrates tuning with the builder.
func ExampleBuild() {
	q := ltq.Build[int](ltq.New().Spins(0).SweepThreshold(8))

	v := 7
	q.Enqueue(&v)
	fmt.Println(q.Peek())

	// Output:
	// 7 true
}
