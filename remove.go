// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ltq

// Remove removes the oldest item equal to x.
// Reports whether an item was removed.
func (q *Linked[T]) Remove(x T) bool {
	return q.findData(func(p *node[T], item *T) bool {
		return *item == x && p.tryMatch(item, nil)
	})
}

// Clear removes every item. On a quiescent queue only the trailing node
// remains reachable afterwards.
func (q *Linked[T]) Clear() {
	q.bulkRemove(func(T) bool { return true })
}

// RemoveIf removes every item for which filter returns true.
// Reports whether any item was removed.
func (q *Linked[T]) RemoveIf(filter func(T) bool) bool {
	return q.bulkRemove(filter)
}

// RemoveAll removes every item equal to one of xs.
// Reports whether any item was removed.
func (q *Linked[T]) RemoveAll(xs ...T) bool {
	set := make(map[T]struct{}, len(xs))
	for _, x := range xs {
		set[x] = struct{}{}
	}
	return q.bulkRemove(func(v T) bool {
		_, ok := set[v]
		return ok
	})
}

// RetainAll removes every item not equal to one of xs.
// Reports whether any item was removed.
func (q *Linked[T]) RetainAll(xs ...T) bool {
	set := make(map[T]struct{}, len(xs))
	for _, x := range xs {
		set[x] = struct{}{}
	}
	return q.bulkRemove(func(v T) bool {
		_, ok := set[v]
		return !ok
	})
}

// DrainTo polls up to max items and appends them to dst.
// A negative max drains until the queue is observed empty.
func (q *Linked[T]) DrainTo(dst []T, max int) []T {
	for n := 0; max < 0 || n < max; n++ {
		v, ok := q.Poll()
		if !ok {
			break
		}
		dst = append(dst, v)
	}
	return dst
}

// bulkRemove matches every live item accepted by filter.
//
// Dead runs are collapsed every maxHops nodes and at the end of the
// chain, so a full pass leaves no long run of garbage behind head.
func (q *Linked[T]) bulkRemove(filter func(T) bool) bool {
	removed := false
restart:
	for {
		hops := maxHops
		// c is CASed to collapse the dead nodes between pred (or head) and p.
		var pred *node[T]
		p := q.head.LoadAcquire()
		c := p
		for p != nil {
			next := p.next.LoadAcquire()
			item := p.item.LoadAcquire()
			alive := item != nil && p.isData
			if alive {
				if filter(*item) {
					if p.tryMatch(item, nil) {
						removed = true
					}
					alive = false
				}
			} else if !p.isData && item == nil {
				break
			}
			due := alive || next == nil
			if !due {
				hops--
				due = hops == 0
			}
			if due {
				if q.collapse(&pred, &c, p, next, alive) {
					hops = maxHops
				}
			} else if p == next {
				continue restart
			}
			p = next
		}
		return removed
	}
}

// collapse links *pred past the dead run *c..p and updates the cursor.
// If the CAS failed or p is alive, p becomes the new pred. Reports whether
// pred was replaced.
func (q *Linked[T]) collapse(pred, c **node[T], p, next *node[T], alive bool) bool {
	// p may already be self-linked here; then CASing head fails and CASing
	// pred's next is useless but harmless.
	ok := true
	if *c != p {
		ok = q.tryCasSuccessor(*pred, *c, p)
		*c = p
	}
	if !ok || alive {
		*pred = p
		*c = next
		return true
	}
	return false
}
