package segdeque

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
	"github.com/lucasgdosr/segdeque/internal/invariants"
)

// Iterator is a random-access cursor into a Deque. It is a (block, slot) pair
// rather than a flat index, and all arithmetic goes through explicit div/mod
// translation at block granularity.
//
// Iterators are values: copies advance independently. They borrow the Deque
// and never allocate or free storage. An Iterator stays usable across
// PushBack, PushFront, ShrinkToFit, and pops that do not remove its element.
// Insert, Erase, Assign, Resize, Clear and CopyFrom invalidate every Iterator
// of the Deque; Valid reports this, and builds with the "invariants" tag panic
// on use of an invalidated Iterator.
//
// Moving an Iterator outside [Begin(), End()] or dereferencing End() is
// undefined.
type Iterator[T any] struct {
	d   *Deque[T]
	p   pos
	gen uint64
}

// Value returns the element the iterator points at.
func (it Iterator[T]) Value() T {
	return *it.Ptr()
}

// Ptr returns a pointer to the element the iterator points at. The pointer is
// valid until the element is removed or shifted.
func (it Iterator[T]) Ptr() *T {
	if invariants.Enabled {
		it.check()
		invariants.CheckBounds(it.p.sub(it.d.head, it.d.blockSize), it.d.count)
	}
	return it.d.m.at(it.p)
}

// Set overwrites the element the iterator points at.
func (it Iterator[T]) Set(t T) {
	*it.Ptr() = t
}

// Inc advances the iterator by one element. When the slot is the last one of
// its block the iterator moves to the first slot of the next block.
func (it *Iterator[T]) Inc() {
	it.p = it.p.next(it.d.blockSize)
}

// Dec moves the iterator back by one element. When the slot is the first one
// of its block the iterator moves to the last slot of the previous block.
func (it *Iterator[T]) Dec() {
	it.p = it.p.prev(it.d.blockSize)
}

// Next returns an iterator one element past it.
func (it Iterator[T]) Next() Iterator[T] {
	it.Inc()
	return it
}

// Prev returns an iterator one element before it.
func (it Iterator[T]) Prev() Iterator[T] {
	it.Dec()
	return it
}

// Add returns an iterator n elements past it. n may be negative and may span
// any number of blocks.
func (it Iterator[T]) Add(n int) Iterator[T] {
	it.Advance(n)
	return it
}

// Sub returns an iterator n elements before it.
func (it Iterator[T]) Sub(n int) Iterator[T] {
	it.Advance(-n)
	return it
}

// Advance moves the iterator n elements forward (backward if n is negative).
func (it *Iterator[T]) Advance(n int) {
	if invariants.Enabled {
		it.check()
	}
	it.p = it.p.add(n, it.d.blockSize)
}

// Retreat moves the iterator n elements backward.
func (it *Iterator[T]) Retreat(n int) {
	it.Advance(-n)
}

// Diff returns the signed number of elements from o to it, that is it - o.
// Both iterators must belong to the same Deque.
func (it Iterator[T]) Diff(o Iterator[T]) int {
	if invariants.Enabled {
		it.checkSame(o)
	}
	return it.p.sub(o.p, it.d.blockSize)
}

// Index returns the position of the iterator relative to Begin().
func (it Iterator[T]) Index() int {
	return it.p.sub(it.d.head, it.d.blockSize)
}

// Compare orders iterators of the same Deque by (block, slot). It returns -1,
// 0 or +1.
func (it Iterator[T]) Compare(o Iterator[T]) int {
	if invariants.Enabled {
		it.checkSame(o)
	}
	return it.p.compare(o.p)
}

// Less reports whether it comes before o.
func (it Iterator[T]) Less(o Iterator[T]) bool {
	return it.Compare(o) < 0
}

// Equal reports whether both iterators belong to the same Deque and point at
// the same block and slot.
func (it Iterator[T]) Equal(o Iterator[T]) bool {
	return it.d == o.d && it.p == o.p
}

// Valid reports whether the iterator can still be used: it was obtained from
// a Deque, no invalidating mutation happened since, and it lies within
// [Begin(), End()].
func (it Iterator[T]) Valid() bool {
	if it.d == nil || it.gen != it.d.gen {
		return false
	}
	i := it.Index()
	return i >= 0 && i <= it.d.count
}

func (it Iterator[T]) check() {
	if it.d == nil {
		panic(errors.AssertionFailedf("deque: use of zero Iterator"))
	}
	if it.gen != it.d.gen {
		panic(errors.AssertionFailedf("deque: use of invalidated iterator (generation %d, deque at %d)",
			it.gen, it.d.gen))
	}
}

func (it Iterator[T]) checkSame(o Iterator[T]) {
	it.check()
	o.check()
	if it.d != o.d {
		panic(errors.AssertionFailedf("deque: iterators belong to different deques"))
	}
}

// String implements fmt.Stringer.
func (it Iterator[T]) String() string {
	return redact.StringWithoutMarkers(it)
}

// SafeFormat implements redact.SafeFormatter.
func (it Iterator[T]) SafeFormat(w redact.SafePrinter, _ rune) {
	if it.d == nil {
		w.SafeString("(invalid)")
		return
	}
	w.Printf("(block %d, slot %d)", redact.SafeInt(it.p.block), redact.SafeInt(it.p.slot))
}
