// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ltq

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// MarshalBinary encodes a weakly consistent snapshot of the items in queue
// order. Waiting consumers and producers blocked in Transfer are not part
// of the encoding; their items are, while they are still unmatched.
//
// Items are encoded with encoding/gob, so T must be gob-encodable: a struct
// T needs at least one exported field, and only exported fields survive
// the round trip. Otherwise MarshalBinary returns the gob error.
func (q *Linked[T]) MarshalBinary() ([]byte, error) {
	items := q.ToSlice()
	if items == nil {
		items = []T{}
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(items); err != nil {
		return nil, fmt.Errorf("ltq: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary replaces the contents of q with the items encoded in
// data, on a freshly allocated chain. The receiver may be a zero Linked.
// data must come from MarshalBinary on a queue of the same T.
//
// UnmarshalBinary must not run concurrently with any other use of q.
func (q *Linked[T]) UnmarshalBinary(data []byte) error {
	var items []T
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&items); err != nil {
		return fmt.Errorf("ltq: decode: %w", err)
	}
	if q.tomb == nil {
		opts := New().opts
		q.tomb = new(T)
		q.spins = opts.spins
		q.sweepThreshold = opts.sweepThreshold
	}
	q.sweepVotes.StoreRelaxed(0)
	q.reset()
	q.appendAll(items)
	return nil
}
