package segdeque

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPosArithmetic(t *testing.T) {
	for _, tc := range []struct {
		p    pos
		n    int
		bs   int
		want pos
	}{
		{pos{0, 0}, 0, 3, pos{0, 0}},
		{pos{0, 2}, 1, 3, pos{1, 0}},
		{pos{0, 0}, -1, 3, pos{-1, 2}},
		{pos{2, 1}, -7, 3, pos{0, 0}},
		{pos{2, 1}, -8, 3, pos{-1, 2}},
		{pos{-3, 2}, 10, 4, pos{0, 0}},
		{pos{5, 0}, -5, 1, pos{0, 0}},
	} {
		got := tc.p.add(tc.n, tc.bs)
		require.Equal(t, tc.want, got, "%v + %d", tc.p, tc.n)
		require.Equal(t, tc.n, got.sub(tc.p, tc.bs))
	}

	for _, bs := range []int{1, 2, 3, 64} {
		p := pos{block: 0, slot: bs - 1}
		for i := 0; i < 3*bs; i++ {
			require.Equal(t, p.add(1, bs), p.next(bs))
			require.Equal(t, p, p.next(bs).prev(bs))
			p = p.next(bs)
		}
	}

	require.Equal(t, -1, pos{0, 2}.compare(pos{1, 0}))
	require.Equal(t, +1, pos{1, 1}.compare(pos{1, 0}))
	require.Equal(t, 0, pos{-2, 1}.compare(pos{-2, 1}))
}

func checkBlockMap[T any](t *testing.T, m *blockMap[T]) {
	t.Helper()
	for i, b := range m.blocks {
		v := i - m.off
		if v >= m.first && v < m.last {
			require.Len(t, b, m.blockSize, "block %d", v)
		} else {
			require.Nil(t, b, "block %d", v)
		}
	}
}

func TestBlockMapGrowth(t *testing.T) {
	var m blockMap[int]
	m.initN(2, 4, 1)
	require.Equal(t, 4, len(m.blocks))
	b0 := &m.block(0)[0]

	m.growBack(5)
	m.growFront(7)
	checkBlockMap(t, &m)
	require.Equal(t, -7, m.first)
	require.Equal(t, 6, m.last)
	require.Equal(t, 13, m.numBlocks())
	// Blocks are never reallocated by map growth.
	require.Same(t, b0, &m.block(0)[0])
}

func TestBlockMapRecenter(t *testing.T) {
	var m blockMap[int]
	m.initN(1, 10, 1)
	require.Equal(t, 4, m.off)
	m.growBack(5)
	for i := 0; i < 4; i++ {
		m.releaseFront()
	}
	b4, b5 := &m.block(4)[0], &m.block(5)[0]

	// Only the last two entries of the map are in use; growing at the back
	// recenters them instead of allocating a new map.
	m.growBack(1)
	checkBlockMap(t, &m)
	require.Equal(t, 10, len(m.blocks))
	require.Equal(t, -1, m.off)
	require.Equal(t, 3, m.numBlocks())
	require.Same(t, b4, &m.block(4)[0])
	require.Same(t, b5, &m.block(5)[0])
}

func TestBlockMapShrink(t *testing.T) {
	var m blockMap[int]
	m.initN(3, 16, 2)
	m.shrink(1)
	checkBlockMap(t, &m)
	require.Equal(t, 4, len(m.blocks))
	m.growBack(1)
	m.growFront(1)
	checkBlockMap(t, &m)
	require.Equal(t, 4, m.numBlocks())
}

func TestBlockMapMove(t *testing.T) {
	const bs = 3
	reset := func() (*blockMap[int], []int) {
		m := &blockMap[int]{}
		m.initN(bs, 8, 5)
		flat := make([]int, 5*bs)
		for i := range flat {
			flat[i] = i
			*m.at(pos{}.add(i, bs)) = i
		}
		return m, flat
	}
	read := func(m *blockMap[int]) []int {
		var s []int
		for span := range m.spans(pos{}, 5*bs) {
			s = append(s, span...)
		}
		return s
	}

	for _, tc := range []struct{ dst, src, n int }{
		{0, 1, 14},
		{1, 4, 10},
		{2, 7, 5},
		{0, 3, 3},
		{4, 4, 0},
	} {
		m, flat := reset()
		m.moveDown(pos{}.add(tc.dst, bs), pos{}.add(tc.src, bs), tc.n)
		copy(flat[tc.dst:tc.dst+tc.n], flat[tc.src:tc.src+tc.n])
		require.Equal(t, flat, read(m), "moveDown %+v", tc)

		m, flat = reset()
		m.moveUp(pos{}.add(tc.src, bs), pos{}.add(tc.dst, bs), tc.n)
		copy(flat[tc.src:tc.src+tc.n], flat[tc.dst:tc.dst+tc.n])
		require.Equal(t, flat, read(m), "moveUp %+v", tc)
	}
}

func TestBlockMapSpans(t *testing.T) {
	var m blockMap[int]
	m.initN(4, 8, 3)
	var lens []int
	for s := range m.spans(pos{block: 0, slot: 3}, 6) {
		lens = append(lens, len(s))
	}
	require.Equal(t, []int{1, 4, 1}, lens)

	lens = lens[:0]
	for s := range m.spans(pos{block: 1, slot: 0}, 8) {
		lens = append(lens, len(s))
	}
	require.Equal(t, []int{4, 4}, lens)

	for range m.spans(pos{}, 0) {
		t.Fatal("no spans expected")
	}
}
