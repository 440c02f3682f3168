// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ltq

import "code.hybscloud.com/atomix"

// node is a cell of the chain.
//
// A data node carries an item until it is matched (item CASed to nil).
// A request node is a waiting consumer: it is unmatched while item is nil
// and matched once item is CASed to the delivered value or to the queue's
// cancellation sentinel.
//
// A node whose next points to itself has been unlinked from the head of
// the chain and is dead. Only the goroutine that moved head off a node
// self-links it.
type node[T any] struct {
	item   atomix.Pointer[T]
	next   atomix.Pointer[node[T]]
	waiter chan struct{} // nil unless the owner may park
	isData bool
}

func newNode[T any](item *T, isData, blocking bool) *node[T] {
	n := &node[T]{isData: isData}
	n.item.StoreRelaxed(item) // published by the linking CAS
	if blocking {
		n.waiter = make(chan struct{}, 1)
	}
	return n
}

func (n *node[T]) casNext(cmp, val *node[T]) bool {
	return n.next.CompareAndSwapAcqRel(cmp, val)
}

// selfLink marks n as off-list.
func (n *node[T]) selfLink() {
	n.next.StoreRelease(n)
}

// isMatched reports whether n no longer offers an item or awaits one.
func (n *node[T]) isMatched() bool {
	return n.isData == (n.item.LoadAcquire() == nil)
}

// tryMatch CASes the item from cmp to val and wakes the owner on success.
func (n *node[T]) tryMatch(cmp, val *T) bool {
	if n.item.CompareAndSwapAcqRel(cmp, val) {
		n.wake()
		return true
	}
	return false
}

func (n *node[T]) wake() {
	if n.waiter == nil {
		return
	}
	select {
	case n.waiter <- struct{}{}:
	default:
	}
}
