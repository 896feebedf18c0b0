// Package rangemap provides a sparse map from half-open integer intervals
// to values.
//
// Adjacent intervals holding equal values are merged on insertion, so a
// domain where every key shares one value is stored as a single interval
// regardless of its size.
package rangemap

import "github.com/google/btree"

// degree is the btree node degree. Interval counts are small in practice.
const degree = 8

// span is one stored interval [lo, hi).
type span[V comparable] struct {
	lo, hi uint32
	val    V
}

func lessSpan[V comparable](a, b span[V]) bool { return a.lo < b.lo }

// Map associates values with half-open uint32 intervals.
// The zero value is not usable; create maps with New.
type Map[V comparable] struct {
	tree *btree.BTreeG[span[V]]
}

// New returns an empty map.
func New[V comparable]() *Map[V] {
	return &Map[V]{tree: btree.NewG[span[V]](degree, lessSpan[V])}
}

// Len returns the number of stored intervals.
func (m *Map[V]) Len() int { return m.tree.Len() }

// Get returns the value stored for key k.
func (m *Map[V]) Get(k uint32) (V, bool) {
	s, ok := m.floor(k)
	if !ok || s.hi <= k {
		var zero V
		return zero, false
	}
	return s.val, true
}

// Set stores v for every key in [lo, hi), replacing what was there.
// Intervals partially covered by [lo, hi) are split and keep their
// uncovered remainder. An empty interval is ignored.
func (m *Map[V]) Set(lo, hi uint32, v V) {
	if lo >= hi {
		return
	}
	m.clear(lo, hi)

	// Grow the new interval over equal neighbours.
	if left, ok := m.floor(lo); ok && left.hi == lo && left.val == v {
		m.tree.Delete(left)
		lo = left.lo
	}
	if right, ok := m.tree.Get(span[V]{lo: hi}); ok && right.val == v {
		m.tree.Delete(right)
		hi = right.hi
	}
	m.tree.ReplaceOrInsert(span[V]{lo: lo, hi: hi, val: v})
}

// Ascend calls fn for each stored run intersecting [lo, hi), clipped to
// that interval, in key order. Iteration stops when fn returns false.
func (m *Map[V]) Ascend(lo, hi uint32, fn func(lo, hi uint32, v V) bool) {
	if lo >= hi {
		return
	}
	if s, ok := m.floor(lo); ok && s.lo < lo && s.hi > lo {
		if !fn(lo, min(s.hi, hi), s.val) {
			return
		}
	}
	m.tree.AscendRange(span[V]{lo: lo}, span[V]{lo: hi}, func(s span[V]) bool {
		return fn(s.lo, min(s.hi, hi), s.val)
	})
}

// floor returns the interval with the greatest start not above k.
func (m *Map[V]) floor(k uint32) (span[V], bool) {
	var (
		out   span[V]
		found bool
	)
	m.tree.DescendLessOrEqual(span[V]{lo: k}, func(s span[V]) bool {
		out, found = s, true
		return false
	})
	return out, found
}

// clear removes [lo, hi) and reinserts the uncovered remainders of the
// intervals straddling its bounds.
func (m *Map[V]) clear(lo, hi uint32) {
	var doomed []span[V]
	if s, ok := m.floor(lo); ok && s.lo < lo && s.hi > lo {
		doomed = append(doomed, s)
	}
	m.tree.AscendRange(span[V]{lo: lo}, span[V]{lo: hi}, func(s span[V]) bool {
		doomed = append(doomed, s)
		return true
	})
	for _, s := range doomed {
		m.tree.Delete(s)
		if s.lo < lo {
			m.tree.ReplaceOrInsert(span[V]{lo: s.lo, hi: lo, val: s.val})
		}
		if s.hi > hi {
			m.tree.ReplaceOrInsert(span[V]{lo: hi, hi: s.hi, val: s.val})
		}
	}
}
