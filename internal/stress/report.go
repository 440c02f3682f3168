// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package stress

import (
	"errors"
	"fmt"
	"time"
)

// ErrViolation is wrapped by Report.Err when a run observed a broken
// queue property.
var ErrViolation = errors.New("stress: violation")

// Report summarizes a run.
type Report struct {
	Mode    Mode
	Elapsed time.Duration

	// buffered and transfer modes
	Produced   int64 // Items accepted by the queue
	Consumed   int64 // Items received by consumers
	Duplicates int64 // Items received more than once
	Withdrawn  int64 // Transfers withdrawn on expiry or cancellation
	Leftover   int   // Items still queued after the drain

	// traverse mode
	Traversals int64 // Completed traversals
	Mutations  int64 // Add and remove pairs

	// Any mode: values or states that must never be observed
	Violations int64
}

// Missing returns the number of accepted items never received.
func (r *Report) Missing() int64 {
	return r.Produced - r.Consumed
}

// Err returns nil if the run observed no broken property.
func (r *Report) Err() error {
	missing := r.Missing()
	if r.Duplicates == 0 && missing == 0 && r.Violations == 0 && r.Leftover == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s: duplicates=%d missing=%d leftover=%d violations=%d",
		ErrViolation, r.Mode, r.Duplicates, missing, r.Leftover, r.Violations)
}

// String formats the report on one line.
func (r *Report) String() string {
	if r.Mode == ModeTraverse {
		return fmt.Sprintf("%s: %v, %d mutations, %d traversals, %d violations",
			r.Mode, r.Elapsed.Round(time.Millisecond), r.Mutations, r.Traversals, r.Violations)
	}
	rate := float64(r.Consumed) / r.Elapsed.Seconds()
	return fmt.Sprintf("%s: %v, %d produced, %d consumed (%.0f/s), %d withdrawn, %d duplicates, %d leftover",
		r.Mode, r.Elapsed.Round(time.Millisecond), r.Produced, r.Consumed, rate, r.Withdrawn, r.Duplicates, r.Leftover)
}
