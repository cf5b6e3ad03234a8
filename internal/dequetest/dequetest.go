// Package dequetest drives a segdeque.Deque and a slice-backed reference model
// with the same randomized sequence of operations and reports the first point
// where they diverge. It is shared by the package tests and by the dequebench
// command.
package dequetest

import (
	"fmt"
	"math/rand"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/metamorphic"
	"github.com/kr/pretty"
	"github.com/lucasgdosr/segdeque"
)

// Config describes one randomized run.
type Config[T comparable] struct {
	Seed int64
	// Ops is the number of operations to run.
	Ops int
	// Options configures the Deque under test.
	Options segdeque.Options
	// Gen returns a random element.
	Gen func(rng *rand.Rand) T
	// MaxLen bounds the length the run grows the Deque to; 0 means 4096.
	MaxLen int
}

// Result summarizes a run that completed without divergence.
type Result struct {
	Ops    int
	Len    int
	Cap    int
	Blocks int
	// Counts holds the number of times each operation ran.
	Counts map[string]int
}

// Ints generates small non-negative integers.
func Ints(rng *rand.Rand) int { return rng.Intn(1000) }

// Strings generates short strings.
func Strings(rng *rand.Rand) string { return fmt.Sprintf("s%03d", rng.Intn(1000)) }

// Run executes cfg.Ops random operations and returns an error describing the
// first divergence between the Deque and the model.
func Run[T comparable](cfg Config[T]) (Result, error) {
	d, err := segdeque.MakeDequeWithOptions[T](cfg.Options)
	if err != nil {
		return Result{}, err
	}
	r := &runner[T]{
		rng:    rand.New(rand.NewSource(cfg.Seed)),
		gen:    cfg.Gen,
		d:      d,
		maxLen: cfg.MaxLen,
		counts: make(map[string]int),
	}
	if r.maxLen == 0 {
		r.maxLen = 4096
	}
	nextOp := metamorphic.Weighted[func() bool]{
		{Item: r.pushBack, Weight: 10},
		{Item: r.pushFront, Weight: 10},
		{Item: r.popBack, Weight: 6},
		{Item: r.popFront, Weight: 6},
		{Item: r.drop, Weight: 1},
		{Item: r.set, Weight: 3},
		{Item: r.insert, Weight: 4},
		{Item: r.erase, Weight: 4},
		{Item: r.assign, Weight: 1},
		{Item: r.resize, Weight: 2},
		{Item: r.shrink, Weight: 2},
		{Item: r.reserve, Weight: 1},
		{Item: r.copyRange, Weight: 1},
		{Item: r.clear, Weight: 1},
	}.RandomDeck(r.rng)

	for i := 0; i < cfg.Ops; i++ {
		// Operations return false when they cannot run in the current state;
		// keep drawing until one runs.
		for opFunc := nextOp(); !opFunc(); {
			opFunc = nextOp()
		}
		r.counts[r.op]++
		if err := r.verify(); err != nil {
			return Result{}, errors.Wrapf(err, "op %d: %s", i, r.desc)
		}
	}
	return Result{
		Ops:    cfg.Ops,
		Len:    d.Len(),
		Cap:    d.Cap(),
		Blocks: d.Cap() / d.BlockSize(),
		Counts: r.counts,
	}, nil
}

type runner[T comparable] struct {
	rng    *rand.Rand
	gen    func(*rand.Rand) T
	d      *segdeque.Deque[T]
	model  []T
	maxLen int

	// op and desc describe the most recent operation.
	op     string
	desc   string
	counts map[string]int
	// failure is set by operations that detect a problem on their own, such as
	// an element moving under a push.
	failure error
}

// values returns between 1 and n random elements.
func (r *runner[T]) values(n int) []T {
	vs := make([]T, 1+r.rng.Intn(n))
	for i := range vs {
		vs[i] = r.gen(r.rng)
	}
	return vs
}

func (r *runner[T]) record(op string, format string, args ...interface{}) {
	r.op = op
	r.desc = strings.TrimSpace(op + " " + fmt.Sprintf(format, args...))
}

// pinned returns an iterator to a random element along with its value, so that
// the caller can check it survives an operation that must not move elements.
func (r *runner[T]) pinned() (segdeque.Iterator[T], T, bool) {
	var zero T
	if len(r.model) == 0 {
		return segdeque.Iterator[T]{}, zero, false
	}
	i := r.rng.Intn(len(r.model))
	return r.d.Begin().Add(i), r.model[i], true
}

func (r *runner[T]) checkPinned(it segdeque.Iterator[T], v T) {
	if r.failure != nil {
		return
	}
	if !it.Valid() {
		r.failure = errors.Newf("iterator %s invalidated", it)
	} else if got := it.Value(); got != v {
		r.failure = errors.Newf("iterator %s moved: got %v, want %v", it, got, v)
	}
}

func (r *runner[T]) pushBack() bool {
	if len(r.model) >= r.maxLen {
		return false
	}
	vs := r.values(4)
	r.record("push-back", "%v", vs)
	it, v, ok := r.pinned()
	r.d.PushBack(vs...)
	r.model = append(r.model, vs...)
	if ok {
		r.checkPinned(it, v)
	}
	return true
}

func (r *runner[T]) pushFront() bool {
	if len(r.model) >= r.maxLen {
		return false
	}
	vs := r.values(4)
	r.record("push-front", "%v", vs)
	it, v, ok := r.pinned()
	r.d.PushFront(vs...)
	// The last argument becomes the new front.
	front := slices.Clone(vs)
	slices.Reverse(front)
	r.model = append(front, r.model...)
	if ok {
		r.checkPinned(it, v)
	}
	return true
}

func (r *runner[T]) popBack() bool {
	var got T
	var ok bool
	switch {
	case len(r.model) > 0 && r.rng.Intn(4) == 0:
		r.record("pop-back-unsafe", "")
		got, ok = r.d.PopBackUnsafe(), true
	case r.rng.Intn(3) == 0:
		r.record("pop-back-shrink", "")
		got, ok = r.d.PopBackShrink()
	default:
		r.record("pop-back", "")
		got, ok = r.d.PopBack()
	}
	if len(r.model) == 0 {
		if ok {
			r.failure = errors.Newf("%s on empty deque returned %v", r.op, got)
		}
		return true
	}
	want := r.model[len(r.model)-1]
	r.model = r.model[:len(r.model)-1]
	if !ok || got != want {
		r.failure = errors.Newf("%s returned (%v, %t), want (%v, true)", r.op, got, ok, want)
	}
	return true
}

func (r *runner[T]) popFront() bool {
	// Pops must not move the surviving elements.
	it, v, pinned := r.pinned()
	if pinned && it.Index() == 0 {
		pinned = false
	}
	var got T
	var ok bool
	switch {
	case len(r.model) > 0 && r.rng.Intn(4) == 0:
		r.record("pop-front-unsafe", "")
		got, ok = r.d.PopFrontUnsafe(), true
	case r.rng.Intn(3) == 0:
		r.record("pop-front-shrink", "")
		got, ok = r.d.PopFrontShrink()
	default:
		r.record("pop-front", "")
		got, ok = r.d.PopFront()
	}
	if len(r.model) == 0 {
		if ok {
			r.failure = errors.Newf("%s on empty deque returned %v", r.op, got)
		}
		return true
	}
	want := r.model[0]
	r.model = r.model[1:]
	if !ok || got != want {
		r.failure = errors.Newf("%s returned (%v, %t), want (%v, true)", r.op, got, ok, want)
	}
	if pinned {
		r.checkPinned(it, v)
	}
	return true
}

func (r *runner[T]) drop() bool {
	n := r.rng.Intn(len(r.model) + 3)
	if r.rng.Intn(2) == 0 {
		r.record("drop-front", "%d", n)
		r.d.DropFront(n)
		r.model = r.model[min(n, len(r.model)):]
	} else {
		r.record("drop-back", "%d", n)
		r.d.DropBack(n)
		r.model = r.model[:len(r.model)-min(n, len(r.model))]
	}
	return true
}

func (r *runner[T]) set() bool {
	if len(r.model) == 0 {
		return false
	}
	i := r.rng.Intn(len(r.model))
	v := r.gen(r.rng)
	r.record("set", "%d %v", i, v)
	r.d.Set(i, v)
	r.model[i] = v
	return true
}

func (r *runner[T]) insert() bool {
	if len(r.model) >= r.maxLen {
		return false
	}
	i := r.rng.Intn(len(r.model) + 1)
	at := r.d.Begin().Add(i)
	var it segdeque.Iterator[T]
	var vs []T
	switch r.rng.Intn(3) {
	case 0:
		vs = r.values(1)
		r.record("insert", "%d %v", i, vs[0])
		it = r.d.Insert(at, vs[0])
	case 1:
		n := r.rng.Intn(2 * r.d.BlockSize())
		v := r.gen(r.rng)
		vs = slices.Repeat([]T{v}, n)
		r.record("insert-n", "%d %d %v", i, n, v)
		it = r.d.InsertN(at, n, v)
	default:
		vs = r.values(2 * r.d.BlockSize())
		r.record("insert-slice", "%d %v", i, vs)
		it = r.d.InsertSlice(at, vs)
	}
	r.model = slices.Insert(r.model, i, vs...)
	if it.Index() != i {
		r.failure = errors.Newf("insert returned iterator at index %d, want %d", it.Index(), i)
	}
	return true
}

func (r *runner[T]) erase() bool {
	if len(r.model) == 0 {
		return false
	}
	i := r.rng.Intn(len(r.model))
	n := 1 + r.rng.Intn(min(len(r.model)-i, 2*r.d.BlockSize()))
	var it segdeque.Iterator[T]
	if n == 1 && r.rng.Intn(2) == 0 {
		r.record("erase", "%d", i)
		it = r.d.Erase(r.d.Begin().Add(i))
	} else {
		r.record("erase-range", "%d %d", i, i+n)
		it = r.d.EraseRange(r.d.Begin().Add(i), r.d.Begin().Add(i+n))
	}
	r.model = slices.Delete(r.model, i, i+n)
	if it.Index() != i {
		r.failure = errors.Newf("erase returned iterator at index %d, want %d", it.Index(), i)
	}
	return true
}

func (r *runner[T]) assign() bool {
	if r.rng.Intn(2) == 0 {
		n := r.rng.Intn(3 * r.d.BlockSize())
		v := r.gen(r.rng)
		r.record("assign-n", "%d %v", n, v)
		r.d.AssignN(n, v)
		r.model = slices.Repeat([]T{v}, n)
		return true
	}
	// Assign from a sub-range of the deque itself.
	if len(r.model) == 0 {
		return false
	}
	i := r.rng.Intn(len(r.model))
	j := i + r.rng.Intn(len(r.model)-i+1)
	r.record("assign-range", "%d %d", i, j)
	r.d.AssignRange(r.d.Begin().Add(i), r.d.Begin().Add(j))
	r.model = slices.Clone(r.model[i:j])
	return true
}

func (r *runner[T]) resize() bool {
	n := r.rng.Intn(min(2*len(r.model)+2*r.d.BlockSize(), r.maxLen))
	if r.rng.Intn(2) == 0 {
		r.record("resize", "%d", n)
		r.d.Resize(n)
		var zero T
		r.model = resized(r.model, n, zero)
		return true
	}
	v := r.gen(r.rng)
	r.record("resize-fill", "%d %v", n, v)
	r.d.ResizeFill(n, v)
	r.model = resized(r.model, n, v)
	return true
}

func resized[T any](s []T, n int, v T) []T {
	if n <= len(s) {
		return s[:n]
	}
	return append(s, slices.Repeat([]T{v}, n-len(s))...)
}

func (r *runner[T]) shrink() bool {
	r.record("shrink-to-fit", "")
	it, v, ok := r.pinned()
	r.d.ShrinkToFit()
	if slack := r.d.Cap() - r.d.Len(); slack >= 2*r.d.BlockSize() {
		r.failure = errors.Newf("shrink-to-fit left %d unused slots with block size %d", slack, r.d.BlockSize())
	}
	if ok {
		r.checkPinned(it, v)
	}
	return true
}

func (r *runner[T]) reserve() bool {
	n := r.rng.Intn(4 * r.d.BlockSize())
	r.record("reserve", "%d", n)
	it, v, ok := r.pinned()
	if err := r.d.Reserve(n); err != nil {
		r.failure = err
	}
	if ok {
		r.checkPinned(it, v)
	}
	return true
}

func (r *runner[T]) copyRange() bool {
	i := r.rng.Intn(len(r.model) + 1)
	j := i + r.rng.Intn(len(r.model)-i+1)
	r.record("copy-range", "%d %d", i, j)
	c := segdeque.CopyRangeToDeque(r.d.Begin().Add(i), r.d.Begin().Add(j))
	if got := c.MakeSliceCopy(); !slices.Equal(got, r.model[i:j]) {
		r.failure = errors.Newf("copy of [%d, %d) diverges:\n%s", i, j, diff(r.model[i:j], got))
		return true
	}
	// The copy must not share storage with the source.
	if c.Len() > 0 {
		c.Set(0, r.gen(r.rng))
	}
	return true
}

func (r *runner[T]) clear() bool {
	if r.rng.Intn(2) == 0 {
		r.record("clear-eager", "")
		c := r.d.Cap()
		r.d.ClearEager()
		if r.d.Cap() != c {
			r.failure = errors.Newf("clear-eager changed cap from %d to %d", c, r.d.Cap())
		}
	} else {
		r.record("clear", "")
		r.d.Clear()
	}
	r.model = r.model[:0]
	return true
}

func (r *runner[T]) verify() error {
	if r.failure != nil {
		return r.failure
	}
	if r.d.Len() != len(r.model) {
		return errors.Newf("len %d, want %d", r.d.Len(), len(r.model))
	}
	if got := r.d.End().Diff(r.d.Begin()); got != len(r.model) {
		return errors.Newf("end - begin = %d, want %d", got, len(r.model))
	}
	if got := r.d.MakeSliceCopy(); !slices.Equal(got, r.model) {
		return errors.Newf("deque and model diverge:\n%s", diff(r.model, got))
	}
	if len(r.model) > 0 {
		i := r.rng.Intn(len(r.model))
		if a, b := r.d.At(i), r.d.Begin().Add(i).Value(); a != b {
			return errors.Newf("At(%d) = %v but Begin()+%d points at %v", i, a, i, b)
		}
		if b := r.d.End().Sub(len(r.model) - i).Value(); b != r.model[i] {
			return errors.Newf("End()-%d points at %v, want %v", len(r.model)-i, b, r.model[i])
		}
	}
	return nil
}

func diff[T any](want, got []T) string {
	return strings.Join(pretty.Diff(want, got), "\n")
}
