package pathfind

import (
	"sync"

	"terrainnav/grid"
)

type node struct {
	at      grid.Coord
	g, h, f int
	seq     int // discovery order, breaks F ties
	parent  *node
	openIdx int // heap 索引, -1 after pop
	closed  bool
}

// openHeap orders by F, then by discovery order so that the node found
// first wins among equal F.
type openHeap []*node

func (h openHeap) Len() int { return len(h) }
func (h openHeap) Less(i, j int) bool {
	if h[i].f == h[j].f {
		return h[i].seq < h[j].seq
	}
	return h[i].f < h[j].f
}
func (h openHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].openIdx, h[j].openIdx = i, j
}
func (h *openHeap) Push(x any) {
	n := x.(*node)
	n.openIdx = len(*h)
	*h = append(*h, n)
}
func (h *openHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	x.openIdx = -1
	*h = old[:n-1]
	return x
}

// search holds the per-call working state. Nothing in it survives a call.
type search struct {
	open  openHeap
	vis   map[int]*node // key = x + y*width
	nodes []node
	seq   int
}

var searchPool = sync.Pool{
	New: func() any {
		return &search{vis: make(map[int]*node)}
	},
}

func acquireSearch(cells int) *search {
	s := searchPool.Get().(*search)
	if cap(s.nodes) == 0 {
		s.nodes = make([]node, 0, min(cells, 1024))
	}
	return s
}

func releaseSearch(s *search) {
	clear(s.vis)
	for i := range s.open {
		s.open[i] = nil
	}
	s.open = s.open[:0]
	s.seq = 0
	if cap(s.nodes) > 1<<16 {
		s.nodes = nil
	} else {
		clear(s.nodes)
		s.nodes = s.nodes[:0]
	}
	searchPool.Put(s)
}

func (s *search) newNode(at grid.Coord, g, h int, parent *node) *node {
	// nodes are handed out by pointer, so never grow the backing array in place
	if len(s.nodes) == cap(s.nodes) {
		s.nodes = make([]node, 0, max(2*cap(s.nodes), 64))
	}
	s.nodes = append(s.nodes, node{
		at:      at,
		g:       g,
		h:       h,
		f:       g + h,
		seq:     s.seq,
		parent:  parent,
		openIdx: -1,
	})
	s.seq++
	return &s.nodes[len(s.nodes)-1]
}
