package segdeque

import "iter"

// pos is a position inside the segmented storage: a virtual block number and
// a slot within that block. Virtual block numbers never change for the life
// of an element, no matter how the map holding the block handles is grown or
// recentered.
type pos struct {
	block, slot int
}

// add returns p moved by n slots. The flattened offset slot+n is split into a
// block delta and a new slot with floor division, so negative n works.
func (p pos) add(n, blockSize int) pos {
	off := p.slot + n
	q, r := off/blockSize, off%blockSize
	if r < 0 {
		r += blockSize
		q--
	}
	return pos{block: p.block + q, slot: r}
}

// next is add(1) without the division.
func (p pos) next(blockSize int) pos {
	p.slot++
	if p.slot == blockSize {
		p.block++
		p.slot = 0
	}
	return p
}

// prev is add(-1) without the division.
func (p pos) prev(blockSize int) pos {
	if p.slot == 0 {
		p.block--
		p.slot = blockSize
	}
	p.slot--
	return p
}

// sub returns the signed number of slots in [o, p).
func (p pos) sub(o pos, blockSize int) int {
	return (p.block-o.block)*blockSize + p.slot - o.slot
}

func (p pos) compare(o pos) int {
	switch {
	case p.block < o.block:
		return -1
	case p.block > o.block:
		return +1
	case p.slot < o.slot:
		return -1
	case p.slot > o.slot:
		return +1
	}
	return 0
}

// blockMap owns an ordered, resizable sequence of fixed-size blocks.
//
// The handles live in blocks; virtual block v is stored at blocks[v+off].
// Allocated blocks always form the contiguous virtual range [first, last) and
// every other handle is nil. Growing or recentering the map only rewrites off,
// so positions held by the deque and its iterators stay meaningful.
type blockMap[T any] struct {
	blocks      [][]T
	off         int
	first, last int
	blockSize   int
}

// init discards every block and allocates a single block in the middle of a
// map with mapSize handles. It returns the virtual number of that block.
func (m *blockMap[T]) init(blockSize, mapSize int) int {
	m.initN(blockSize, mapSize, 1)
	return m.first
}

// initN discards every block and allocates n contiguous blocks centered in a
// map of max(mapSize, n+2) handles. The first block has virtual number 0.
func (m *blockMap[T]) initN(blockSize, mapSize, n int) {
	m.blockSize = blockSize
	m.blocks = make([][]T, max(mapSize, n+2))
	start := (len(m.blocks) - n) / 2
	m.off = start
	m.first, m.last = 0, n
	for i := start; i < start+n; i++ {
		m.blocks[i] = make([]T, blockSize)
	}
}

func (m *blockMap[T]) block(v int) []T { return m.blocks[v+m.off] }

func (m *blockMap[T]) at(p pos) *T { return &m.blocks[p.block+m.off][p.slot] }

// numBlocks returns the number of allocated blocks.
func (m *blockMap[T]) numBlocks() int { return m.last - m.first }

// growBack allocates n blocks after the last allocated one, reserving map
// room first if needed.
func (m *blockMap[T]) growBack(n int) {
	if m.last+m.off+n > len(m.blocks) {
		m.reserve(n, false /* atFront */)
	}
	for ; n > 0; n-- {
		m.blocks[m.last+m.off] = make([]T, m.blockSize)
		m.last++
	}
}

// growFront allocates n blocks before the first allocated one, reserving map
// room first if needed.
func (m *blockMap[T]) growFront(n int) {
	if m.first+m.off-n < 0 {
		m.reserve(n, true /* atFront */)
	}
	for ; n > 0; n-- {
		m.first--
		m.blocks[m.first+m.off] = make([]T, m.blockSize)
	}
}

// releaseFront drops the first allocated block.
func (m *blockMap[T]) releaseFront() {
	m.blocks[m.first+m.off] = nil
	m.first++
}

// releaseBack drops the last allocated block.
func (m *blockMap[T]) releaseBack() {
	m.last--
	m.blocks[m.last+m.off] = nil
}

// reserve makes room for n more handles at one end of the map. If the map is
// less than half full the allocated range is recentered in place, otherwise
// the handles are copied into a larger map. Either way the blocks themselves
// are untouched.
func (m *blockMap[T]) reserve(n int, atFront bool) {
	oldNum := m.numBlocks()
	newNum := oldNum + n
	var start int
	if len(m.blocks) > 2*newNum {
		start = (len(m.blocks) - newNum) / 2
		if atFront {
			start += n
		}
		copy(m.blocks[start:start+oldNum], m.blocks[m.first+m.off:m.last+m.off])
		clear(m.blocks[:start])
		clear(m.blocks[start+oldNum:])
	} else {
		newLen := len(m.blocks) + max(len(m.blocks), n) + 2
		blocks := make([][]T, newLen)
		start = (newLen - newNum) / 2
		if atFront {
			start += n
		}
		copy(blocks[start:], m.blocks[m.first+m.off:m.last+m.off])
		m.blocks = blocks
	}
	m.off = start - m.first
}

// shrink reallocates the map so it holds exactly the allocated blocks plus
// slack free handles on each side.
func (m *blockMap[T]) shrink(slack int) {
	n := m.numBlocks()
	if len(m.blocks) == n+2*slack {
		return
	}
	blocks := make([][]T, n+2*slack)
	copy(blocks[slack:], m.blocks[m.first+m.off:m.last+m.off])
	m.blocks = blocks
	m.off = slack - m.first
}

// spans yields the successive in-block sub-slices that cover the n slots
// starting at p.
func (m *blockMap[T]) spans(p pos, n int) iter.Seq[[]T] {
	return func(yield func([]T) bool) {
		for n > 0 {
			k := min(n, m.blockSize-p.slot)
			if !yield(m.block(p.block)[p.slot : p.slot+k]) {
				return
			}
			n -= k
			p = pos{block: p.block + 1}
		}
	}
}

// moveDown copies the n slots starting at src to the n slots starting at dst,
// where dst comes before src. Overlapping ranges are handled by copying in
// ascending order.
func (m *blockMap[T]) moveDown(dst, src pos, n int) {
	for n > 0 {
		k := min(n, m.blockSize-src.slot, m.blockSize-dst.slot)
		copy(m.block(dst.block)[dst.slot:dst.slot+k], m.block(src.block)[src.slot:src.slot+k])
		src = src.add(k, m.blockSize)
		dst = dst.add(k, m.blockSize)
		n -= k
	}
}

// moveUp copies the n slots starting at src to the n slots starting at dst,
// where dst comes after src. Overlapping ranges are handled by copying in
// descending order.
func (m *blockMap[T]) moveUp(dst, src pos, n int) {
	srcEnd := src.add(n, m.blockSize)
	dstEnd := dst.add(n, m.blockSize)
	for n > 0 {
		sb, shi := m.tailOf(srcEnd)
		db, dhi := m.tailOf(dstEnd)
		k := min(n, shi, dhi)
		copy(m.block(db)[dhi-k:dhi], m.block(sb)[shi-k:shi])
		srcEnd = srcEnd.add(-k, m.blockSize)
		dstEnd = dstEnd.add(-k, m.blockSize)
		n -= k
	}
}

// tailOf returns the block holding the slot just before the exclusive end e,
// and the exclusive upper slot bound within that block.
func (m *blockMap[T]) tailOf(e pos) (block, hi int) {
	if e.slot == 0 {
		return e.block - 1, m.blockSize
	}
	return e.block, e.slot
}
