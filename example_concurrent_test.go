// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !race

// This file contains examples with concurrent producer and consumer
// goroutines. They are excluded from race testing because the detector
// cannot see the atomix operations that order them.

package ltq_test

import (
	"context"
	"fmt"

	"code.hybscloud.com/ltq"
)

// ExampleLinked_Transfer demonstrates a synchronous hand-off: the producer
// returns only after the consumer received the job.
func ExampleLinked_Transfer() {
	q := ltq.NewLinked[string]()
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		defer close(done)
		job := "resize image"
		if err := q.Transfer(ctx, &job); err != nil {
			fmt.Println("withdrawn:", err)
			return
		}
		fmt.Println("delivered")
	}()

	job, _ := q.Take(ctx)
	<-done
	fmt.Println("took:", job)

	// Output:
	// delivered
	// took: resize image
}
