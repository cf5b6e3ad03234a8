package segdeque

import (
	"cmp"
	"fmt"
	"iter"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
	"github.com/lucasgdosr/segdeque/internal/invariants"
)

// Deque is a double-ended, random-access sequence stored in fixed-size blocks
// referenced from a resizable block map. Pushing at either end is amortized
// O(1) and never moves existing elements; indexing is O(1); inserting or
// erasing in the middle shifts whichever side of the position is shorter.
//
// To create a Deque instance, you must use one of the available constructors,
// such as MakeDeque() or CopySliceToDeque(s). nil Deques panic when called,
// except for Len. Creating a Deque in the following way is wrong:
//
//	var deque Deque[int] // wrong
//
// Deque is not safe for concurrent use. Concurrent readers are fine as long
// as nothing mutates the Deque meanwhile.
type Deque[T any] struct {
	m blockMap[T]
	// head is the position of the first element and tail is one past the
	// last. Both always reference allocated blocks, also when the Deque is
	// empty, in which case they are equal.
	head, tail pos
	count      int

	blockSize, mapSize int
	// gen is bumped by every mutation that shifts elements, so that iterators
	// obtained before it can be detected as stale.
	gen uint64
}

/*****************************************************************************
 * CONSTRUCTORS
 *****************************************************************************/

// MakeDeque returns an empty Deque with default options.
func MakeDeque[T any]() *Deque[T] {
	d, _ := MakeDequeWithOptions[T](Options{})
	return d
}

// MakeDequeWithOptions returns an empty Deque with the given block and map
// sizes. Zero fields take their default. Returns an error wrapping
// ErrInvalidOptions if a size is negative.
func MakeDequeWithOptions[T any](opts Options) (*Deque[T], error) {
	opts.EnsureDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	d := newDeque[T](opts.BlockSize, opts.MapSize)
	d.reset()
	return d, nil
}

// MakeDequeWithCapacity returns an empty Deque with default options and
// enough blocks to push capacity elements to the back without allocating.
// Returns an error if passed a negative value.
func MakeDequeWithCapacity[T any](capacity int) (*Deque[T], error) {
	if capacity < 0 {
		return nil, ErrNegativeCapacity
	}
	d := MakeDeque[T]()
	_ = d.Reserve(capacity)
	return d, nil
}

// MakeDequeFilled returns a Deque holding count copies of value. Panics if
// count is negative.
func MakeDequeFilled[T any](count int, value T) *Deque[T] {
	checkCount(count)
	d := newDeque[T](DefaultBlockSize, DefaultMapSize)
	d.initSized(count)
	d.fill(d.head, count, value)
	return d
}

// MakeDequeSized returns a Deque holding count zero values. Panics if count
// is negative.
func MakeDequeSized[T any](count int) *Deque[T] {
	checkCount(count)
	d := newDeque[T](DefaultBlockSize, DefaultMapSize)
	d.initSized(count)
	return d
}

// CopySliceToDeque allocates a Deque sized exactly for len(s) elements and
// copies every element of the slice to it. Memory is not shared.
func CopySliceToDeque[T any](s []T) *Deque[T] {
	d := newDeque[T](DefaultBlockSize, DefaultMapSize)
	d.initSized(len(s))
	d.copyIn(d.head, s)
	return d
}

// CopyRangeToDeque returns a new Deque holding a copy of the elements in
// [first, last). The new Deque uses the block and map sizes of the Deque the
// iterators belong to, and its map is sized for the range up front.
func CopyRangeToDeque[T any](first, last Iterator[T]) *Deque[T] {
	src := first.d
	n := last.Diff(first)
	d := newDeque[T](src.blockSize, src.mapSize)
	d.initSized(n)
	dst := d.head
	for s := range src.m.spans(first.p, n) {
		d.copyIn(dst, s)
		dst = dst.add(len(s), d.blockSize)
	}
	return d
}

// Clone returns a deep copy of the Deque: new map, new blocks, same elements
// and options.
func (d *Deque[T]) Clone() *Deque[T] {
	return CopyRangeToDeque(d.Begin(), d.End())
}

// CopyFrom replaces the contents of the Deque with a copy of src's. Storage is
// never shared with src.
func (d *Deque[T]) CopyFrom(src *Deque[T]) {
	if d == src {
		return
	}
	d.AssignRange(src.Begin(), src.End())
}

func newDeque[T any](blockSize, mapSize int) *Deque[T] {
	return &Deque[T]{blockSize: blockSize, mapSize: mapSize}
}

// reset parks head and tail in the middle slot of a single block in the
// middle of a fresh map, leaving equal slack for both ends.
func (d *Deque[T]) reset() {
	b := d.m.init(d.blockSize, d.mapSize)
	d.head = pos{block: b, slot: d.blockSize / 2}
	d.tail = d.head
	d.count = 0
	d.checkInvariants()
}

// initSized lays out storage for exactly n zero elements starting at the
// first slot of the first block.
func (d *Deque[T]) initSized(n int) {
	if n == 0 {
		d.reset()
		return
	}
	// The tail needs a block of its own when n is a multiple of the block
	// size, hence the +1.
	d.m.initN(d.blockSize, d.mapSize, n/d.blockSize+1)
	d.head = pos{block: d.m.first}
	d.tail = d.head.add(n, d.blockSize)
	d.count = n
	d.checkInvariants()
}

/*****************************************************************************
 * DEQUE API
 *****************************************************************************/

// Len returns the number of elements in the Deque or 0 if nil.
func (d *Deque[T]) Len() int {
	if d == nil {
		return 0
	}
	return d.count
}

// Empty returns whether the Deque is empty.
func (d *Deque[T]) Empty() bool { return d.count == 0 }

// Cap returns the number of element slots in allocated blocks.
func (d *Deque[T]) Cap() int { return d.m.numBlocks() * d.blockSize }

// BlockSize returns the number of elements per block.
func (d *Deque[T]) BlockSize() int { return d.blockSize }

// Full returns whether every allocated slot is in use, apart from the one the
// tail points at. Pushing to a full Deque allocates a block at either end.
func (d *Deque[T]) Full() bool { return d.count == d.Cap()-1 }

// PushBack puts every argument at the back of the Deque, in order. The last
// argument is the new back. The map is grown at most once per call.
//
// PushBack never moves existing elements, so indexes and iterators of
// existing elements stay valid.
func (d *Deque[T]) PushBack(ts ...T) {
	n := len(ts)
	if n == 0 {
		return
	}
	d.ensureBack(n)
	d.copyIn(d.tail, ts)
	d.tail = d.tail.add(n, d.blockSize)
	d.count += n
	d.checkInvariants()
}

// PushFront puts every argument at the front of the Deque. The last argument
// is the new front. The map is grown at most once per call.
//
// PushFront never moves existing elements, so iterators of existing elements
// stay valid. Indexes shift by the number of pushed elements.
func (d *Deque[T]) PushFront(ts ...T) {
	n := len(ts)
	if n == 0 {
		return
	}
	d.ensureFront(n)
	for _, t := range ts {
		d.head = d.head.prev(d.blockSize)
		*d.m.at(d.head) = t
	}
	d.count += n
	d.checkInvariants()
}

// PeekBack returns the last element in the Deque. If the Deque is empty, it
// returns false.
func (d *Deque[T]) PeekBack() (t T, ok bool) {
	if d.Empty() {
		return
	}
	return d.Back(), true
}

// PeekFront returns the first element in the Deque. If the Deque is empty, it
// returns false.
func (d *Deque[T]) PeekFront() (t T, ok bool) {
	if d.Empty() {
		return
	}
	return d.Front(), true
}

// Front returns the first element. The Deque must not be empty.
func (d *Deque[T]) Front() T { return *d.FrontPtr() }

// FrontPtr returns a pointer to the first element. The Deque must not be
// empty.
func (d *Deque[T]) FrontPtr() *T {
	if invariants.Enabled {
		invariants.CheckBounds(0, d.count)
	}
	return d.m.at(d.head)
}

// Back returns the last element. The Deque must not be empty.
func (d *Deque[T]) Back() T { return *d.BackPtr() }

// BackPtr returns a pointer to the last element. The Deque must not be
// empty.
func (d *Deque[T]) BackPtr() *T {
	if invariants.Enabled {
		invariants.CheckBounds(0, d.count)
	}
	return d.m.at(d.tail.prev(d.blockSize))
}

// PopBack removes the last element in the Deque and returns it. If it's empty,
// returns false. The vacated slot is zeroed, and blocks left empty at the back
// are released, keeping one spare.
func (d *Deque[T]) PopBack() (t T, ok bool) {
	if d.count == 0 {
		return t, false
	}
	return d.PopBackUnsafe(), true
}

// PopBackShrink is PopBack followed by ShrinkToFit if at most a quarter of
// the block map is in use.
//
// It is more efficient to call ShrinkToFit once, when you're done popping,
// and to avoid shrinking when you might push many elements again.
func (d *Deque[T]) PopBackShrink() (t T, ok bool) {
	t, ok = d.PopBack()
	d.shrinkSparseMap()
	return t, ok
}

// PopBackUnsafe removes the last element in the Deque and returns it. The
// vacated slot is zeroed. The emptiness check only runs in invariant builds;
// calling this method with an empty Deque leads to undefined behavior from
// then on.
func (d *Deque[T]) PopBackUnsafe() T {
	if invariants.Enabled {
		invariants.CheckBounds(0, d.count)
	}
	d.tail = d.tail.prev(d.blockSize)
	p := d.m.at(d.tail)
	var zero T
	t := *p
	*p = zero
	d.count--
	d.trimBack()
	d.checkInvariants()
	return t
}

// PopFront removes the first element in the Deque and returns it. If it's
// empty, returns false. The vacated slot is zeroed, and blocks left empty at
// the front are released, keeping one spare.
func (d *Deque[T]) PopFront() (t T, ok bool) {
	if d.count == 0 {
		return t, false
	}
	return d.PopFrontUnsafe(), true
}

// PopFrontShrink is PopFront followed by ShrinkToFit if at most a quarter of
// the block map is in use.
func (d *Deque[T]) PopFrontShrink() (t T, ok bool) {
	t, ok = d.PopFront()
	d.shrinkSparseMap()
	return t, ok
}

// PopFrontUnsafe removes the first element in the Deque and returns it. The
// vacated slot is zeroed. The emptiness check only runs in invariant builds;
// calling this method with an empty Deque leads to undefined behavior from
// then on.
func (d *Deque[T]) PopFrontUnsafe() T {
	if invariants.Enabled {
		invariants.CheckBounds(0, d.count)
	}
	p := d.m.at(d.head)
	var zero T
	t := *p
	*p = zero
	d.head = d.head.next(d.blockSize)
	d.count--
	d.trimFront()
	d.checkInvariants()
	return t
}

// DropFront removes the n first elements of the Deque. If the Deque has fewer
// than n elements, it drops every element. If n is negative, no element is
// dropped.
func (d *Deque[T]) DropFront(n int) {
	if n <= 0 {
		return
	}
	n = min(n, d.count)
	d.zero(d.head, n)
	d.head = d.head.add(n, d.blockSize)
	d.count -= n
	d.trimFront()
	d.checkInvariants()
}

// DropBack removes the n last elements of the Deque. If the Deque has fewer
// than n elements, it drops every element. If n is negative, no element is
// dropped.
func (d *Deque[T]) DropBack(n int) {
	if n <= 0 {
		return
	}
	n = min(n, d.count)
	d.tail = d.tail.add(-n, d.blockSize)
	d.zero(d.tail, n)
	d.count -= n
	d.trimBack()
	d.checkInvariants()
}

/*****************************************************************************
 * SEQUENCE API
 *****************************************************************************/

// At returns the i-th element. No bounds checking is performed outside of
// invariant builds; use Get for a checked access.
func (d *Deque[T]) At(i int) T { return *d.Ptr(i) }

// Set writes t to the i-th position. No bounds checking is performed outside
// of invariant builds.
func (d *Deque[T]) Set(i int, t T) { *d.Ptr(i) = t }

// Ptr returns a pointer to the i-th element. No bounds checking is performed
// outside of invariant builds.
func (d *Deque[T]) Ptr(i int) *T {
	if invariants.Enabled {
		invariants.CheckBounds(i, d.count)
	}
	return d.m.at(d.head.add(i, d.blockSize))
}

// Get returns the i-th element, or an error wrapping ErrOutOfRange if i is not
// in [0, Len()).
func (d *Deque[T]) Get(i int) (t T, err error) {
	p, err := d.GetPtr(i)
	if err != nil {
		return t, err
	}
	return *p, nil
}

// GetPtr returns a pointer to the i-th element, or an error wrapping
// ErrOutOfRange if i is not in [0, Len()).
func (d *Deque[T]) GetPtr(i int) (*T, error) {
	if i < 0 || i >= d.count {
		return nil, errors.Wrapf(ErrOutOfRange, "deque: index %d with length %d", i, d.count)
	}
	return d.m.at(d.head.add(i, d.blockSize)), nil
}

// Swap swaps the elements in the i-th and j-th indexes. No bounds checking is
// performed outside of invariant builds.
func (d *Deque[T]) Swap(i, j int) {
	a, b := d.Ptr(i), d.Ptr(j)
	*a, *b = *b, *a
}

// Begin returns an iterator to the first element.
func (d *Deque[T]) Begin() Iterator[T] { return d.iter(d.head) }

// End returns an iterator one past the last element.
func (d *Deque[T]) End() Iterator[T] { return d.iter(d.tail) }

// Insert inserts t before pos and returns an iterator to it. Whichever of the
// elements before pos and the elements from pos to the end is shorter gets
// shifted. Invalidates all iterators.
func (d *Deque[T]) Insert(pos Iterator[T], t T) Iterator[T] {
	p := d.openGap(d.index(pos), 1)
	*d.m.at(p) = t
	return d.iter(p)
}

// InsertN inserts count copies of t before pos and returns an iterator to the
// first of them. Invalidates all iterators unless count is zero.
func (d *Deque[T]) InsertN(pos Iterator[T], count int, t T) Iterator[T] {
	idx := d.index(pos)
	if count <= 0 {
		return d.iter(d.head.add(idx, d.blockSize))
	}
	p := d.openGap(idx, count)
	d.fill(p, count, t)
	return d.iter(p)
}

// InsertSlice inserts the elements of s before pos, in order, and returns an
// iterator to the first of them. Invalidates all iterators unless s is empty.
func (d *Deque[T]) InsertSlice(pos Iterator[T], s []T) Iterator[T] {
	idx := d.index(pos)
	if len(s) == 0 {
		return d.iter(d.head.add(idx, d.blockSize))
	}
	p := d.openGap(idx, len(s))
	d.copyIn(p, s)
	return d.iter(p)
}

// InsertRange inserts a copy of [first, last) before pos and returns an
// iterator to the first inserted element. The range may belong to any Deque,
// including this one.
func (d *Deque[T]) InsertRange(pos, first, last Iterator[T]) Iterator[T] {
	return d.InsertSlice(pos, collectRange(first, last))
}

// Erase removes the element at pos and returns an iterator to the element
// that now occupies its index, or End(). Invalidates all iterators.
func (d *Deque[T]) Erase(pos Iterator[T]) Iterator[T] {
	return d.EraseRange(pos, pos.Next())
}

// EraseRange removes the elements in [first, last) by shifting the shorter
// side over the gap, and returns an iterator to the element that now occupies
// first's index, or End() if the range reached the back. Invalidates all
// iterators unless the range is empty.
func (d *Deque[T]) EraseRange(first, last Iterator[T]) Iterator[T] {
	idx := d.index(first)
	n := last.Diff(first)
	if n > 0 {
		if invariants.Enabled {
			invariants.CheckBounds(idx+n-1, d.count)
		}
		d.closeGap(idx, n)
	}
	return d.iter(d.head.add(idx, d.blockSize))
}

// AssignN replaces the contents of the Deque with count copies of t.
func (d *Deque[T]) AssignN(count int, t T) {
	checkCount(count)
	d.resizeTo(count)
	d.fill(d.head, count, t)
	d.gen++
}

// AssignSlice replaces the contents of the Deque with a copy of s.
func (d *Deque[T]) AssignSlice(s []T) {
	d.resizeTo(len(s))
	d.copyIn(d.head, s)
	d.gen++
}

// AssignRange replaces the contents of the Deque with a copy of [first,
// last). The range may belong to this Deque.
func (d *Deque[T]) AssignRange(first, last Iterator[T]) {
	d.AssignSlice(collectRange(first, last))
}

// Resize grows the Deque by appending zero values, or shrinks it by dropping
// elements from the back, until it holds exactly n elements.
func (d *Deque[T]) Resize(n int) {
	checkCount(n)
	d.resizeTo(n)
}

// ResizeFill is like Resize but appends copies of t when growing.
func (d *Deque[T]) ResizeFill(n int, t T) {
	checkCount(n)
	old := d.count
	d.resizeTo(n)
	if n > old {
		d.fill(d.head.add(old, d.blockSize), n-old, t)
	}
}

// Clear removes every element, releases every block and resets the Deque to
// the state of a newly constructed one. Invalidates all iterators.
func (d *Deque[T]) Clear() {
	d.reset()
	d.gen++
}

// ClearEager removes every element, zeroing their slots, but keeps every
// allocated block and the map. This is useful for reusing a Deque that is
// about to be filled to a similar size. Invalidates all iterators.
func (d *Deque[T]) ClearEager() {
	d.zero(d.head, d.count)
	d.head = pos{block: d.m.first + d.m.numBlocks()/2, slot: d.blockSize / 2}
	d.tail = d.head
	d.count = 0
	d.gen++
	d.checkInvariants()
}

// ShrinkToFit releases the spare blocks at both ends and reallocates the map
// so that it has a single free entry on each side. Afterwards Cap()-Len() is
// less than 2*BlockSize(). Contents, order and iterators are unaffected.
func (d *Deque[T]) ShrinkToFit() {
	for d.m.first < d.head.block {
		d.m.releaseFront()
	}
	for d.m.last-1 > d.tail.block {
		d.m.releaseBack()
	}
	d.m.shrink(1)
	d.checkInvariants()
}

// Reserve ensures there's enough capacity to push at least n more elements
// to the back of the Deque without allocating. It returns an error if n is
// negative.
func (d *Deque[T]) Reserve(n int) error {
	if n < 0 {
		return ErrNegativeCapacity
	}
	d.ensureBack(n)
	return nil
}

// MakeSliceCopy allocates a slice to hold every Deque element and copies them.
// Prefer passing a buffer to CopySlice for memory reuse.
func (d *Deque[T]) MakeSliceCopy() []T {
	s := make([]T, d.count)
	_ = d.CopySlice(0, s)
	return s
}

// MakeSliceIndexCopy allocates a slice and copies the contents from the start
// index (inclusive) to the end index (non-inclusive). This is regular slice
// semantics, except it's a copy, and doesn't share memory with the Deque. This
// means it also panics with invalid indexes.
//
// Prefer passing a buffer to CopySlice for memory reuse.
func (d *Deque[T]) MakeSliceIndexCopy(start, end int) []T {
	d.checkSliceBounds(start, end)
	s := make([]T, end-start)
	_ = d.CopySlice(start, s)
	return s
}

// MakeSliceIndexCopyWithCapacity is MakeSliceIndexCopy with a result of the
// given capacity, for when you need to append to the slice after copying it.
// It panics if capacity is smaller than end-start.
func (d *Deque[T]) MakeSliceIndexCopyWithCapacity(start, end, capacity int) []T {
	d.checkSliceBounds(start, end)
	s := make([]T, end-start, capacity)
	_ = d.CopySlice(start, s)
	return s
}

// CopySlice has the same semantics as the copy() built-in function. It copies
// elements in the Deque starting at the start index up until the buffer is
// full or the Deque is over, whichever happens first.
//
// CopySlice returns the number of elements copied, which will be the minimum
// of len(buf) and d.Len()-start.
func (d *Deque[T]) CopySlice(start int, buf []T) int {
	n := min(len(buf), d.count-start)
	if n <= 0 {
		return 0
	}
	off := 0
	for s := range d.m.spans(d.head.add(start, d.blockSize), n) {
		off += copy(buf[off:], s)
	}
	return off
}

// Contains returns whether the element is in the Deque. This must not be a
// method, otherwise Deque would be constrained to comparable elements. It has
// the same semantics as slices.Contains.
func Contains[T comparable](d *Deque[T], t T) bool {
	return Index(d, t) != -1
}

// ContainsFunc returns whether an element satisfying f is in the Deque. It has
// the same semantics as slices.ContainsFunc.
func (d *Deque[T]) ContainsFunc(f func(T) bool) bool {
	return d.IndexFunc(f) != -1
}

// Equal returns whether both Deques have the same length and the same elements
// in the same order. Two nil Deques are equal, but an empty Deque and nil are
// not. Block sizes do not matter. This must not be a method, otherwise Deque
// would be constrained to comparable elements.
func Equal[T comparable](d1 *Deque[T], d2 *Deque[T]) bool {
	return d1.EqualFunc(d2, func(a, b T) bool { return a == b })
}

// EqualFunc returns whether both Deques have the same length and the same
// elements in the same order, comparing elements with f. The lengths are
// compared first.
func (d1 *Deque[T]) EqualFunc(d2 *Deque[T], f func(T, T) bool) bool {
	if d1 == nil || d2 == nil {
		return d1 == d2
	}
	if d1.count != d2.count {
		return false
	}
	p1, p2 := d1.head, d2.head
	for range d1.count {
		if !f(*d1.m.at(p1), *d2.m.at(p2)) {
			return false
		}
		p1 = p1.next(d1.blockSize)
		p2 = p2.next(d2.blockSize)
	}
	return true
}

// Index returns the index of the first ocurrence of t in the Deque or -1 if
// absent. It cannot be a method, otherwise Deque would be constrained to
// comparable elements only. Index has the same semantics as slices.Index.
func Index[T comparable](d *Deque[T], t T) int {
	base := 0
	for s := range d.spans() {
		if i := slices.Index(s, t); i != -1 {
			return base + i
		}
		base += len(s)
	}
	return -1
}

// IndexFunc returns the index of the first element that satisfies f in the
// Deque or -1 if none do. IndexFunc has the same semantics as
// slices.IndexFunc.
func (d *Deque[T]) IndexFunc(f func(T) bool) int {
	base := 0
	for s := range d.spans() {
		if i := slices.IndexFunc(s, f); i != -1 {
			return base + i
		}
		base += len(s)
	}
	return -1
}

// Max returns the maximum element in the Deque. It must not be a method,
// otherwise Deque would be constrained to ordered elements only. It has the
// same semantics as slices.Max, so it panics on an empty Deque.
func Max[T cmp.Ordered](d *Deque[T]) T {
	if d.Len() == 0 {
		panic("segdeque.Max: empty deque")
	}
	result := d.Front()
	for s := range d.spans() {
		result = max(result, slices.Max(s))
	}
	return result
}

// MaxFunc returns the maximal element in the Deque according to cmp. If
// several elements are maximal, the first one is returned. It has the same
// semantics as slices.MaxFunc, so it panics on an empty Deque.
func MaxFunc[T any](d *Deque[T], cmp func(T, T) int) T {
	if d.Len() == 0 {
		panic("segdeque.MaxFunc: empty deque")
	}
	result := d.Front()
	for s := range d.spans() {
		if m := slices.MaxFunc(s, cmp); cmp(m, result) > 0 {
			result = m
		}
	}
	return result
}

// Min returns the minimum element in the Deque. It must not be a method,
// otherwise Deque would be constrained to ordered elements only. It has the
// same semantics as slices.Min, so it panics on an empty Deque.
func Min[T cmp.Ordered](d *Deque[T]) T {
	if d.Len() == 0 {
		panic("segdeque.Min: empty deque")
	}
	result := d.Front()
	for s := range d.spans() {
		result = min(result, slices.Min(s))
	}
	return result
}

// MinFunc returns the minimal element in the Deque according to cmp. If
// several elements are minimal, the first one is returned. It has the same
// semantics as slices.MinFunc, so it panics on an empty Deque.
func MinFunc[T any](d *Deque[T], cmp func(T, T) int) T {
	if d.Len() == 0 {
		panic("segdeque.MinFunc: empty deque")
	}
	result := d.Front()
	for s := range d.spans() {
		if m := slices.MinFunc(s, cmp); cmp(m, result) < 0 {
			result = m
		}
	}
	return result
}

// ForEach takes in a function that returns a bool and calls it in order for
// every element in the queue, or until the first call that returns false.
func (d *Deque[T]) ForEach(f func(T) bool) {
	for s := range d.spans() {
		for _, t := range s {
			if !f(t) {
				return
			}
		}
	}
}

/*****************************************************************************
 * ITER API
 *****************************************************************************/

// All returns an iterator over index-value pairs in order. It has the same
// semantics as slices.All. If you don't need indexes, use Iter instead.
func (d *Deque[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		i := 0
		for s := range d.spans() {
			for _, t := range s {
				if !yield(i, t) {
					return
				}
				i++
			}
		}
	}
}

// Iter returns an iterator over values only in order. If you need indexes,
// use All instead.
func (d *Deque[T]) Iter() iter.Seq[T] {
	return func(yield func(T) bool) {
		for s := range d.spans() {
			for _, t := range s {
				if !yield(t) {
					return
				}
			}
		}
	}
}

// Backward returns an iterator over index-value pairs from back to front. It
// has the same semantics as slices.Backward.
func (d *Deque[T]) Backward() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		if d == nil {
			return
		}
		p := d.tail
		for i := d.count - 1; i >= 0; i-- {
			p = p.prev(d.blockSize)
			if !yield(i, *d.m.at(p)) {
				return
			}
		}
	}
}

// String implements fmt.Stringer.
func (d *Deque[T]) String() string {
	return redact.StringWithoutMarkers(d)
}

// SafeFormat implements redact.SafeFormatter. Elements are printed as unsafe
// values.
func (d *Deque[T]) SafeFormat(w redact.SafePrinter, _ rune) {
	w.SafeRune('[')
	for i, t := range d.All() {
		if i > 0 {
			w.SafeRune(' ')
		}
		w.Print(t)
	}
	w.SafeRune(']')
}

/*****************************************************************************
 * SENTINEL ERRORS
 *****************************************************************************/

// ErrOutOfRange is wrapped by the errors of the checked accessors when the
// index is not in [0, Len()). Both errors.Is from the standard library and
// from cockroachdb/errors find it.
var ErrOutOfRange = errors.New("index out of range")

// ErrNegativeCapacity is returned when trying to reserve a negative capacity.
var ErrNegativeCapacity = errors.New("capacity cannot be negative")

// ErrInvalidOptions is wrapped by the errors of Options.Validate.
var ErrInvalidOptions = errors.New("invalid options")

/*****************************************************************************
 * HELPERS
 *****************************************************************************/

func (d *Deque[T]) iter(p pos) Iterator[T] {
	return Iterator[T]{d: d, p: p, gen: d.gen}
}

// index returns the position of it relative to head. it must be a valid
// iterator of d, End() included.
func (d *Deque[T]) index(it Iterator[T]) int {
	if invariants.Enabled {
		it.check()
		invariants.Assertf(it.d == d, "deque: iterator belongs to another deque")
	}
	idx := it.p.sub(d.head, d.blockSize)
	if invariants.Enabled {
		invariants.CheckBounds(idx, d.count+1)
	}
	return idx
}

// spans yields the live elements block by block.
func (d *Deque[T]) spans() iter.Seq[[]T] {
	if d == nil {
		return func(func([]T) bool) {}
	}
	return d.m.spans(d.head, d.count)
}

// ensureBack allocates blocks so that the tail can move n slots forward.
func (d *Deque[T]) ensureBack(n int) {
	if target := d.tail.add(n, d.blockSize).block; target >= d.m.last {
		d.m.growBack(target - d.m.last + 1)
	}
}

// ensureFront allocates blocks so that the head can move n slots backward.
func (d *Deque[T]) ensureFront(n int) {
	if target := d.head.add(-n, d.blockSize).block; target < d.m.first {
		d.m.growFront(d.m.first - target)
	}
}

// trimFront releases empty blocks before the head, keeping one spare.
func (d *Deque[T]) trimFront() {
	for d.head.block-d.m.first > 1 {
		d.m.releaseFront()
	}
}

// trimBack releases empty blocks after the tail, keeping one spare.
func (d *Deque[T]) trimBack() {
	for d.m.last-1-d.tail.block > 1 {
		d.m.releaseBack()
	}
}

// openGap makes room for n elements before index idx and returns the
// position of the first slot of the gap. The side with fewer elements is
// shifted: the prefix moves toward the front or the suffix toward the back.
// The gap holds stale values that the caller must overwrite.
func (d *Deque[T]) openGap(idx, n int) pos {
	if idx < d.count-idx {
		d.ensureFront(n)
		head := d.head.add(-n, d.blockSize)
		d.m.moveDown(head, d.head, idx)
		d.head = head
	} else {
		d.ensureBack(n)
		src := d.head.add(idx, d.blockSize)
		d.m.moveUp(src.add(n, d.blockSize), src, d.count-idx)
		d.tail = d.tail.add(n, d.blockSize)
	}
	d.count += n
	d.gen++
	d.checkInvariants()
	return d.head.add(idx, d.blockSize)
}

// closeGap removes the n elements starting at index idx by shifting the
// shorter side over them, then zeroes the vacated slots and releases blocks
// left empty.
func (d *Deque[T]) closeGap(idx, n int) {
	if idx < d.count-idx-n {
		head := d.head.add(n, d.blockSize)
		d.m.moveUp(head, d.head, idx)
		d.zero(d.head, n)
		d.head = head
		d.trimFront()
	} else {
		dst := d.head.add(idx, d.blockSize)
		d.m.moveDown(dst, dst.add(n, d.blockSize), d.count-idx-n)
		tail := d.tail.add(-n, d.blockSize)
		d.zero(tail, n)
		d.tail = tail
		d.trimBack()
	}
	d.count -= n
	d.gen++
	d.checkInvariants()
}

// resizeTo grows or shrinks the Deque at the back to n elements. New slots
// hold zero values since vacated slots are always zeroed.
func (d *Deque[T]) resizeTo(n int) {
	switch {
	case n < d.count:
		d.closeGap(n, d.count-n)
	case n > d.count:
		d.openGap(d.count, n-d.count)
	}
}

func (d *Deque[T]) copyIn(p pos, s []T) {
	off := 0
	for span := range d.m.spans(p, len(s)) {
		off += copy(span, s[off:])
	}
}

func (d *Deque[T]) fill(p pos, n int, t T) {
	for span := range d.m.spans(p, n) {
		for i := range span {
			span[i] = t
		}
	}
}

func (d *Deque[T]) zero(p pos, n int) {
	for span := range d.m.spans(p, n) {
		clear(span)
	}
}

// shrinkSparseMap calls ShrinkToFit if at most a quarter of the map holds
// allocated blocks.
func (d *Deque[T]) shrinkSparseMap() {
	if d.m.numBlocks() <= len(d.m.blocks)>>2 {
		d.ShrinkToFit()
	}
}

func (d *Deque[T]) checkSliceBounds(start, end int) {
	if start < 0 || end < start || end > d.count {
		panic(fmt.Sprintf("deque: slice bounds [%d:%d] out of range with length %d", start, end, d.count))
	}
}

// collectRange copies [first, last) into a new slice.
func collectRange[T any](first, last Iterator[T]) []T {
	n := last.Diff(first)
	s := make([]T, 0, max(n, 0))
	for span := range first.d.m.spans(first.p, n) {
		s = append(s, span...)
	}
	return s
}

func checkCount(n int) {
	if n < 0 {
		panic(fmt.Sprintf("deque: negative count %d", n))
	}
}

// checkInvariants verifies the structural invariants of the Deque in
// invariant builds.
func (d *Deque[T]) checkInvariants() {
	if !invariants.Enabled {
		return
	}
	invariants.Assertf(d.tail.sub(d.head, d.blockSize) == d.count,
		"deque: count %d does not match distance from head %v to tail %v", d.count, d.head, d.tail)
	invariants.Assertf(d.m.first <= d.head.block && d.tail.block < d.m.last,
		"deque: head %v or tail %v outside of allocated blocks [%d, %d)", d.head, d.tail, d.m.first, d.m.last)
	invariants.Assertf(d.head.slot >= 0 && d.head.slot < d.blockSize && d.tail.slot >= 0 && d.tail.slot < d.blockSize,
		"deque: slot out of block: head %v tail %v", d.head, d.tail)
	for v := d.m.first; v < d.m.last; v++ {
		invariants.Assertf(len(d.m.block(v)) == d.blockSize, "deque: block %d not allocated", v)
	}
}
