package gotreesitter

import (
	"sync"
	"unsafe"
)

// slabSize matches tree-sitter's TREE_POOL_SLAB_SIZE: a slab holds this many
// subtrees and tracks occupancy with a single uint64 bitmap.
const slabSize = 64

// subtreeSlab is a fixed block of subtree storage plus an occupancy bitmap.
// Pointers into trees never move for the lifetime of the slab, so *subtree
// values handed out by allocate stay valid until freed.
type subtreeSlab struct {
	trees  [slabSize]subtree
	bitmap uint64
}

func (s *subtreeSlab) allocate() *subtree {
	for i := 0; i < slabSize; i++ {
		bit := uint64(1) << uint(i)
		if s.bitmap&bit == 0 {
			s.bitmap |= bit
			return &s.trees[i]
		}
	}
	return nil
}

func (s *subtreeSlab) owns(t *subtree) bool {
	base := uintptr(unsafe.Pointer(&s.trees[0]))
	addr := uintptr(unsafe.Pointer(t))
	size := unsafe.Sizeof(subtree{})
	return addr >= base && addr < base+size*slabSize
}

func (s *subtreeSlab) free(t *subtree) {
	base := uintptr(unsafe.Pointer(&s.trees[0]))
	addr := uintptr(unsafe.Pointer(t))
	idx := (addr - base) / unsafe.Sizeof(subtree{})
	s.bitmap &^= uint64(1) << uint(idx)
}

// subtreePool is the sole allocator of *subtree values. It grows by
// appending slabs and tracks the first slab known to have room, matching
// ts_tree_pool_allocate in tree_pool.c.
type subtreePool struct {
	slabs              []*subtreeSlab
	firstAvailableSlab int
}

func newSubtreePool() *subtreePool {
	return &subtreePool{}
}

// allocate returns a zeroed *subtree, growing the pool with a new slab
// when every existing one is full.
func (p *subtreePool) allocate() *subtree {
	for p.firstAvailableSlab < len(p.slabs) {
		slab := p.slabs[p.firstAvailableSlab]
		if t := slab.allocate(); t != nil {
			*t = subtree{}
			t.refCount = 1
			return t
		}
		p.firstAvailableSlab++
	}
	slab := &subtreeSlab{}
	p.slabs = append(p.slabs, slab)
	t := slab.allocate()
	*t = subtree{}
	t.refCount = 1
	return t
}

// free returns t's slot to its owning slab. Slabs are scanned newest-first:
// a subtree being freed was overwhelmingly likely allocated recently, so the
// most recently added slab is checked first, matching ts_tree_pool_free.
func (p *subtreePool) free(t *subtree) {
	*t = subtree{}
	for i := len(p.slabs) - 1; i >= 0; i-- {
		if p.slabs[i].owns(t) {
			p.slabs[i].free(t)
			if i < p.firstAvailableSlab {
				p.firstAvailableSlab = i
			}
			return
		}
	}
}

// reset clears every slab's bitmap so the pool can be reused for a fresh
// parse without reallocating its slabs.
func (p *subtreePool) reset() {
	for _, s := range p.slabs {
		s.bitmap = 0
	}
	p.firstAvailableSlab = 0
}

var subtreePoolReuse = sync.Pool{
	New: func() any { return newSubtreePool() },
}

// acquireSubtreePool gets a subtreePool from the shared reuse pool, salvaging
// the teacher's arena.go idea of pooling whole allocator instances across
// parses instead of allocating one per call.
func acquireSubtreePool() *subtreePool {
	return subtreePoolReuse.Get().(*subtreePool)
}

func releaseSubtreePool(p *subtreePool) {
	p.reset()
	subtreePoolReuse.Put(p)
}
