package segdeque

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/cockroachdb/datadriven"
)

func scanValues(t *testing.T, td *datadriven.TestData) []int {
	var vs []int
	for _, arg := range td.CmdArgs {
		if len(arg.Vals) > 0 {
			continue
		}
		v, err := strconv.Atoi(arg.Key)
		if err != nil {
			t.Fatalf("%s: %v", td.Pos, err)
		}
		vs = append(vs, v)
	}
	return vs
}

func newTestDeque(t *testing.T, td *datadriven.TestData) *Deque[int] {
	var opts Options
	td.MaybeScanArgs(t, "block-size", &opts.BlockSize)
	td.MaybeScanArgs(t, "map-size", &opts.MapSize)
	d, err := MakeDequeWithOptions[int](opts)
	if err != nil {
		t.Fatalf("%s: %v", td.Pos, err)
	}
	return d
}

func TestDequeDataDriven(t *testing.T) {
	var d *Deque[int]
	datadriven.RunTest(t, "testdata/deque", func(t *testing.T, td *datadriven.TestData) string {
		switch td.Cmd {
		case "new":
			d = newTestDeque(t, td)
			return d.String()

		case "cap":
			return fmt.Sprintf("len=%d cap=%d blocks=%d", d.Len(), d.Cap(), d.m.numBlocks())

		case "push-back":
			d.PushBack(scanValues(t, td)...)
			return d.String()

		case "push-front":
			d.PushFront(scanValues(t, td)...)
			return d.String()

		case "pop-back", "pop-front":
			var v int
			var ok bool
			if td.Cmd == "pop-back" {
				v, ok = d.PopBack()
			} else {
				v, ok = d.PopFront()
			}
			if !ok {
				return "empty\n" + d.String()
			}
			return fmt.Sprintf("%d\n%s", v, d)

		case "insert":
			var at int
			td.ScanArgs(t, "at", &at)
			d.InsertSlice(d.Begin().Add(at), scanValues(t, td))
			return d.String()

		case "insert-n":
			var at, n, v int
			td.ScanArgs(t, "at", &at)
			td.ScanArgs(t, "n", &n)
			td.ScanArgs(t, "v", &v)
			d.InsertN(d.Begin().Add(at), n, v)
			return d.String()

		case "erase":
			var from, to int
			td.ScanArgs(t, "from", &from)
			td.ScanArgs(t, "to", &to)
			it := d.EraseRange(d.Begin().Add(from), d.Begin().Add(to))
			return fmt.Sprintf("%s\nnext: %d", d, it.Index())

		case "assign":
			d.AssignSlice(scanValues(t, td))
			return d.String()

		case "assign-n":
			var n, v int
			td.ScanArgs(t, "n", &n)
			td.ScanArgs(t, "v", &v)
			d.AssignN(n, v)
			return d.String()

		case "resize":
			var n int
			td.ScanArgs(t, "n", &n)
			if td.HasArg("v") {
				var v int
				td.ScanArgs(t, "v", &v)
				d.ResizeFill(n, v)
			} else {
				d.Resize(n)
			}
			return d.String()

		case "shrink":
			d.ShrinkToFit()
			return d.String()

		case "clear":
			d.Clear()
			return d.String()

		case "drop-front", "drop-back":
			var n int
			td.ScanArgs(t, "n", &n)
			if td.Cmd == "drop-front" {
				d.DropFront(n)
			} else {
				d.DropBack(n)
			}
			return d.String()

		case "get":
			var i int
			td.ScanArgs(t, "i", &i)
			v, err := d.Get(i)
			if err != nil {
				return fmt.Sprintf("error: %v", err)
			}
			return strconv.Itoa(v)

		case "reserve":
			var n int
			td.ScanArgs(t, "n", &n)
			if err := d.Reserve(n); err != nil {
				return fmt.Sprintf("error: %v", err)
			}
			return fmt.Sprintf("len=%d cap=%d blocks=%d", d.Len(), d.Cap(), d.m.numBlocks())

		default:
			return fmt.Sprintf("unknown command: %s", td.Cmd)
		}
	})
}

func TestIteratorDataDriven(t *testing.T) {
	var d *Deque[int]
	var it, pinned Iterator[int]
	format := func(it Iterator[int]) string {
		if it.Equal(d.End()) {
			return fmt.Sprintf("%s = end", it)
		}
		return fmt.Sprintf("%s = %d", it, it.Value())
	}
	datadriven.RunTest(t, "testdata/iterator", func(t *testing.T, td *datadriven.TestData) string {
		var n int
		switch td.Cmd {
		case "new":
			d = newTestDeque(t, td)
			return d.String()

		case "push-back":
			d.PushBack(scanValues(t, td)...)
			return d.String()

		case "push-front":
			d.PushFront(scanValues(t, td)...)
			return d.String()

		case "pop-front":
			d.PopFront()
			return d.String()

		case "begin":
			it = d.Begin()
		case "end":
			it = d.End()
		case "next":
			it.Inc()
		case "prev":
			it.Dec()
		case "add":
			td.ScanArgs(t, "n", &n)
			it.Advance(n)
		case "sub":
			td.ScanArgs(t, "n", &n)
			it.Retreat(n)

		case "index":
			return strconv.Itoa(it.Index())
		case "diff":
			return strconv.Itoa(it.Diff(d.Begin()))
		case "valid":
			return strconv.FormatBool(it.Valid())

		case "pin":
			pinned = it
			return "ok"
		case "pinned-valid":
			return strconv.FormatBool(pinned.Valid())

		case "insert":
			it = d.InsertSlice(it, scanValues(t, td))
			return d.String() + "\n" + format(it)
		case "erase":
			it = d.Erase(it)
			return d.String() + "\n" + format(it)

		case "walk":
			// Walks from the current iterator to End, printing every position.
			var b strings.Builder
			for w := it; !w.Equal(d.End()); w.Inc() {
				fmt.Fprintln(&b, format(w))
			}
			return b.String()

		default:
			return fmt.Sprintf("unknown command: %s", td.Cmd)
		}
		return format(it)
	})
}
