package accessor

import (
	"encoding/binary"
	"iter"

	"github.com/arborist-go/pforest/buffer"
	"github.com/arborist-go/pforest/errs"
	"github.com/arborist-go/pforest/format"
	"github.com/arborist-go/pforest/schema"
)

// readOffsetList reads a list region of 4-byte little-endian offsets at
// listOffset. A listOffset of 0 is the absent-list sentinel and yields
// an empty slice without touching the buffer.
func readOffsetList(buf *buffer.Buffer, listOffset uint32) ([]uint32, error) {
	if listOffset == 0 {
		return nil, nil
	}

	span, err := buf.ListSpan(listOffset, 4)
	if err != nil {
		return nil, err
	}

	out := make([]uint32, len(span)/4)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(span[i*4 : i*4+4])
	}

	return out, nil
}

// readPropertyRecords reads the inline Property records of the list
// region at listOffset.
func readPropertyRecords(buf *buffer.Buffer, listOffset uint32) ([]schema.Property, error) {
	if listOffset == 0 {
		return nil, nil
	}

	span, err := buf.ListSpan(listOffset, schema.PropertySize)
	if err != nil {
		return nil, err
	}

	out := make([]schema.Property, len(span)/schema.PropertySize)
	for i := range out {
		rec, err := schema.ParseProperty(span[i*schema.PropertySize : (i+1)*schema.PropertySize])
		if err != nil {
			return nil, err
		}
		out[i] = rec
	}

	return out, nil
}

// PropertyCollection is a borrow-scoped view over a properties list.
type PropertyCollection struct {
	buf   *buffer.Buffer
	items []schema.Property
}

// Count returns the number of properties in the collection.
func (c PropertyCollection) Count() int { return len(c.items) }

// At returns the i'th Property accessor. It panics if i is out of
// range, matching Go slice-indexing convention.
func (c PropertyCollection) At(i int) Property {
	return Property{buf: c.buf, rec: c.items[i]}
}

// All ranges over every Property in the collection in storage order.
func (c PropertyCollection) All() iter.Seq2[int, Property] {
	return func(yield func(int, Property) bool) {
		for i := range c.items {
			if !yield(i, c.At(i)) {
				return
			}
		}
	}
}

// Find returns the first property whose interned key matches key, and
// true, or a zero Property and false if no such property exists.
func (c PropertyCollection) Find(key string) (Property, bool, error) {
	for _, p := range c.items {
		prop := Property{buf: c.buf, rec: p}
		k, err := prop.Key()
		if err != nil {
			return Property{}, false, err
		}
		if k == key {
			return prop, true, nil
		}
	}

	return Property{}, false, nil
}

// SymbolNodeCollection is a borrow-scoped view over an offset-list that
// references SymbolNode records (a packed node's child list).
type SymbolNodeCollection struct {
	buf     *buffer.Buffer
	offsets []uint32
}

// Count returns the number of symbol nodes referenced by the list,
// including any deleted-child holes (sentinel offset 0) an editor
// rebuild may have left in place.
func (c SymbolNodeCollection) Count() int { return len(c.offsets) }

// At resolves the i'th referenced SymbolNode. It fails with
// ErrOutOfRange if i is outside [0, Count()), or ErrNotFound if the
// slot holds the sentinel offset 0 (a deleted child left in place by
// an editor rebuild).
func (c SymbolNodeCollection) At(i int) (SymbolNode, error) {
	if i < 0 || i >= len(c.offsets) {
		return SymbolNode{}, errs.ErrOutOfRange
	}
	if c.offsets[i] == 0 {
		return SymbolNode{}, errs.ErrNotFound
	}

	return newSymbolNode(c.buf, c.offsets[i])
}

// All ranges over every referenced SymbolNode in storage order,
// silently skipping sentinel (0) holes, and stopping early and
// surfacing the first read error it hits on a real offset.
func (c SymbolNodeCollection) All() iter.Seq2[SymbolNode, error] {
	return func(yield func(SymbolNode, error) bool) {
		for _, off := range c.offsets {
			if off == 0 {
				continue
			}

			n, err := newSymbolNode(c.buf, off)
			if !yield(n, err) {
				return
			}
			if err != nil {
				return
			}
		}
	}
}

// PackedNodeCollection is a borrow-scoped view over an offset-list that
// references PackedNode records (a symbol node's derivation list).
type PackedNodeCollection struct {
	buf     *buffer.Buffer
	offsets []uint32
}

// Count returns the number of derivations.
func (c PackedNodeCollection) Count() int { return len(c.offsets) }

// Ambiguous reports whether the symbol node this collection was read
// from has more than one derivation.
func (c PackedNodeCollection) Ambiguous() bool { return len(c.offsets) > 1 }

// At resolves the i'th derivation.
func (c PackedNodeCollection) At(i int) (PackedNode, error) {
	if i < 0 || i >= len(c.offsets) {
		return PackedNode{}, errs.ErrOutOfRange
	}

	return newPackedNode(c.buf, c.offsets[i])
}

// All ranges over every derivation in storage order.
func (c PackedNodeCollection) All() iter.Seq2[PackedNode, error] {
	return func(yield func(PackedNode, error) bool) {
		for _, off := range c.offsets {
			n, err := newPackedNode(c.buf, off)
			if !yield(n, err) {
				return
			}
			if err != nil {
				return
			}
		}
	}
}

// CpgEdgeCollection is a borrow-scoped view over an offset-list that
// references CpgEdge records (a derivation's semantic edges).
type CpgEdgeCollection struct {
	buf     *buffer.Buffer
	offsets []uint32
}

// Count returns the number of edges.
func (c CpgEdgeCollection) Count() int { return len(c.offsets) }

// At resolves the i'th edge.
func (c CpgEdgeCollection) At(i int) (CpgEdge, error) {
	if i < 0 || i >= len(c.offsets) {
		return CpgEdge{}, errs.ErrOutOfRange
	}

	return newCpgEdge(c.buf, c.offsets[i])
}

// All ranges over every edge in storage order.
func (c CpgEdgeCollection) All() iter.Seq2[CpgEdge, error] {
	return func(yield func(CpgEdge, error) bool) {
		for _, off := range c.offsets {
			e, err := newCpgEdge(c.buf, off)
			if !yield(e, err) {
				return
			}
			if err != nil {
				return
			}
		}
	}
}

// OfKind ranges over only the edges whose Kind equals kind, silently
// skipping read errors encountered along the way (a malformed edge in
// a filtered scan is rare enough that callers preferring strictness
// should use All instead).
func (c CpgEdgeCollection) OfKind(kind format.EdgeKind) iter.Seq[CpgEdge] {
	return func(yield func(CpgEdge) bool) {
		for _, off := range c.offsets {
			e, err := newCpgEdge(c.buf, off)
			if err != nil {
				continue
			}
			if e.Kind() != kind {
				continue
			}
			if !yield(e) {
				return
			}
		}
	}
}
