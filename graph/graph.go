package graph

import (
	"fmt"
	"sync"

	"github.com/arborist-go/pforest/accessor"
	"github.com/arborist-go/pforest/buffer"
	"github.com/arborist-go/pforest/errs"
	"github.com/arborist-go/pforest/interval"
	"github.com/arborist-go/pforest/schema"
	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/exp/mmap"
)

// findCacheLimit bounds the number of distinct query points FindNodesAt
// keeps cached before evicting the oldest entry.
const findCacheLimit = 1000

// Stats summarizes an image's overlaid SPPF/CPG without requiring a
// caller to walk it themselves.
type Stats struct {
	NodeCount          uint32
	EdgeCount          uint32
	AmbiguousNodeCount uint32
	SourceLen          uint32
	Flags              schema.Flags
}

// Graph is the read-only façade over an opened image.
type Graph struct {
	buf *buffer.Buffer

	cache      *xsync.MapOf[uint32, []uint32]
	cacheOrder []uint32
	cacheMu    sync.Mutex
}

// Open opens an in-memory image. data is borrowed, not copied; the
// caller must keep it alive for the Graph's lifetime.
func Open(data []byte) (*Graph, error) {
	buf, err := buffer.Open(data)
	if err != nil {
		return nil, err
	}

	return newGraph(buf), nil
}

// OpenFile opens image data from a file via a read-only memory map.
// The mapped bytes are read into an owned copy before the mapping is
// released, so the returned Graph has no file-descriptor lifetime tied
// to it beyond this call.
func OpenFile(path string) (*Graph, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrIOFailure, err)
	}
	defer r.Close()

	data := make([]byte, r.Len())
	if _, err := r.ReadAt(data, 0); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrIOFailure, err)
	}

	buf, err := buffer.Open(data)
	if err != nil {
		return nil, err
	}

	return newGraph(buf), nil
}

func newGraph(buf *buffer.Buffer) *Graph {
	return &Graph{
		buf:   buf,
		cache: xsync.NewMapOf[uint32, []uint32](),
	}
}

// Close releases the Graph's query cache. It does not release any
// backing memory passed to Open; callers that used OpenFile own the
// copy Graph was built from and may simply let it be garbage collected.
func (g *Graph) Close() error {
	g.cacheMu.Lock()
	defer g.cacheMu.Unlock()

	g.cache = xsync.NewMapOf[uint32, []uint32]()
	g.cacheOrder = nil

	return nil
}

// Root resolves the image's root SymbolNode.
func (g *Graph) Root() (accessor.SymbolNode, error) {
	header, err := g.buf.Header()
	if err != nil {
		return accessor.SymbolNode{}, err
	}

	return accessor.NewSymbolNode(g.buf, header.RootOffset)
}

// Node resolves the SymbolNode record at offset. Used by the editor
// and query packages, which need to reach an arbitrary node by offset
// rather than only the root.
func (g *Graph) Node(offset uint32) (accessor.SymbolNode, error) {
	return accessor.NewSymbolNode(g.buf, offset)
}

// SourceText returns the complete verbatim source text the image
// carries.
func (g *Graph) SourceText() ([]byte, error) {
	header, err := g.buf.Header()
	if err != nil {
		return nil, err
	}

	return g.buf.SourceText(header.SourceOffset, 0, header.SourceLen)
}

// Stats reports the header-level counts plus a derived
// AmbiguousNodeCount computed by walking the reachable symbol-node set
// once, deduplicating shared nodes by offset.
func (g *Graph) Stats() (Stats, error) {
	header, err := g.buf.Header()
	if err != nil {
		return Stats{}, err
	}

	root, err := g.Root()
	if err != nil {
		return Stats{}, err
	}

	ambiguous := 0
	visited := make(map[uint32]bool)
	if err := walkSymbolNodes(root, visited, func(n accessor.SymbolNode) error {
		is, err := n.IsAmbiguous()
		if err != nil {
			return err
		}
		if is {
			ambiguous++
		}

		return nil
	}); err != nil {
		return Stats{}, err
	}

	return Stats{
		NodeCount:          header.NodeCount,
		EdgeCount:          header.EdgeCount,
		AmbiguousNodeCount: uint32(ambiguous), //nolint:gosec
		SourceLen:          header.SourceLen,
		Flags:              header.Flags,
	}, nil
}

// walkSymbolNodes visits every symbol node reachable from n exactly
// once (by offset), depth-first across every derivation's children,
// calling visit on each.
func walkSymbolNodes(n accessor.SymbolNode, visited map[uint32]bool, visit func(accessor.SymbolNode) error) error {
	if visited[n.Offset()] {
		return nil
	}
	visited[n.Offset()] = true

	if err := visit(n); err != nil {
		return err
	}

	packed, err := n.PackedNodes()
	if err != nil {
		return err
	}

	for derivation, err := range packed.All() {
		if err != nil {
			return err
		}

		children, err := derivation.Children()
		if err != nil {
			return err
		}

		for child, err := range children.All() {
			if err != nil {
				return err
			}
			if err := walkSymbolNodes(child, visited, visit); err != nil {
				return err
			}
		}
	}

	return nil
}

// FindNodesAt returns the offsets of every symbol node whose source
// span contains point. Results are served from a bounded cache keyed
// by point; a cold query consults the image's interval index when
// present, falling back to a full reachable-node scan otherwise.
func (g *Graph) FindNodesAt(point uint32) ([]uint32, error) {
	if cached, ok := g.cache.Load(point); ok {
		return cached, nil
	}

	offsets, err := g.findNodesAtUncached(point)
	if err != nil {
		return nil, err
	}

	g.storeCache(point, offsets)

	return offsets, nil
}

func (g *Graph) findNodesAtUncached(point uint32) ([]uint32, error) {
	header, err := g.buf.Header()
	if err != nil {
		return nil, err
	}

	if header.IntervalIndexOffset != 0 {
		idx, err := g.loadIntervalIndex(header.IntervalIndexOffset)
		if err != nil {
			return nil, err
		}

		return idx.FindAt(point), nil
	}

	root, err := g.Root()
	if err != nil {
		return nil, err
	}

	var matches []uint32
	visited := make(map[uint32]bool)
	err = walkSymbolNodes(root, visited, func(n accessor.SymbolNode) error {
		if point >= n.SourceStart() && point <= n.SourceEnd() {
			matches = append(matches, n.Offset())
		}

		return nil
	})

	return matches, err
}

func (g *Graph) loadIntervalIndex(offset uint32) (interval.Index, error) {
	count, err := g.buf.ListCount(offset)
	if err != nil {
		return interval.Index{}, err
	}

	total := schema.ListCountFieldSize + int(count)*schema.IntervalEntrySize
	data, err := g.buf.Slice(int(offset), total)
	if err != nil {
		return interval.Index{}, err
	}

	return interval.Deserialize(data)
}

func (g *Graph) storeCache(point uint32, offsets []uint32) {
	g.cacheMu.Lock()
	defer g.cacheMu.Unlock()

	if _, loaded := g.cache.LoadOrStore(point, offsets); loaded {
		return
	}

	g.cacheOrder = append(g.cacheOrder, point)
	if len(g.cacheOrder) > findCacheLimit {
		evict := g.cacheOrder[0]
		g.cacheOrder = g.cacheOrder[1:]
		g.cache.Delete(evict)
	}
}

// ProcessNodesAt resolves every node at point via FindNodesAt and
// invokes visitor on each, stopping at the first error.
func (g *Graph) ProcessNodesAt(point uint32, visitor func(accessor.SymbolNode) error) error {
	offsets, err := g.FindNodesAt(point)
	if err != nil {
		return err
	}

	for _, off := range offsets {
		n, err := accessor.NewSymbolNode(g.buf, off)
		if err != nil {
			return err
		}
		if err := visitor(n); err != nil {
			return err
		}
	}

	return nil
}
