package accessor

import (
	"github.com/arborist-go/pforest/buffer"
	"github.com/arborist-go/pforest/schema"
	"github.com/arborist-go/pforest/value"
)

// SymbolNode is a borrow-scoped view over a schema.SymbolNode record:
// the SPPF node for one grammar-symbol instance spanning a source
// range, owning zero or more PackedNode derivations.
type SymbolNode struct {
	buf    *buffer.Buffer
	offset uint32
	rec    schema.SymbolNode
}

// NewSymbolNode resolves the SymbolNode record at offset. It is the
// entry point callers outside this package use to reach a node whose
// offset they already hold (the image root, an interval-index hit, or
// a previously-resolved CpgEdge target).
func NewSymbolNode(buf *buffer.Buffer, offset uint32) (SymbolNode, error) {
	rec, err := buf.ReadSymbolNode(offset)
	if err != nil {
		return SymbolNode{}, err
	}

	return SymbolNode{buf: buf, offset: offset, rec: rec}, nil
}

func newSymbolNode(buf *buffer.Buffer, offset uint32) (SymbolNode, error) {
	return NewSymbolNode(buf, offset)
}

// Offset returns the node's own image offset, stable for the lifetime
// of the image and usable as a map key or interval-index payload.
func (n SymbolNode) Offset() uint32 { return n.offset }

// SymbolID returns the grammar symbol this node instantiates.
func (n SymbolNode) SymbolID() uint16 { return n.rec.SymbolID }

// NodeType returns the node's classification tag.
func (n SymbolNode) NodeType() uint16 { return n.rec.NodeType }

// SourceStart returns the byte offset into the source text where this
// node's span begins.
func (n SymbolNode) SourceStart() uint32 { return n.rec.SourceStart }

// SourceLength returns the byte length of this node's source span.
func (n SymbolNode) SourceLength() uint32 { return n.rec.SourceLength }

// SourceEnd returns SourceStart() + SourceLength().
func (n SymbolNode) SourceEnd() uint32 { return n.rec.SourceEnd() }

// PackedNodes resolves the node's derivation list. A non-ambiguous node
// has at most one; an ambiguous node (one the parser could not resolve
// without further context) has more than one.
func (n SymbolNode) PackedNodes() (PackedNodeCollection, error) {
	offsets, err := readOffsetList(n.buf, n.rec.PackedListOffset)
	if err != nil {
		return PackedNodeCollection{}, err
	}

	return PackedNodeCollection{buf: n.buf, offsets: offsets}, nil
}

// IsAmbiguous reports whether the node owns more than one derivation.
func (n SymbolNode) IsAmbiguous() (bool, error) {
	packed, err := n.PackedNodes()
	if err != nil {
		return false, err
	}

	return packed.Ambiguous(), nil
}

// Properties resolves the node's own property list.
func (n SymbolNode) Properties() (PropertyCollection, error) {
	items, err := readPropertyRecords(n.buf, n.rec.PropertiesListOffset)
	if err != nil {
		return PropertyCollection{}, err
	}

	return PropertyCollection{buf: n.buf, items: items}, nil
}

// Property looks up a single property by its interned key. The bool
// result is false when the key is absent.
func (n SymbolNode) Property(key string) (value.Value, bool, error) {
	props, err := n.Properties()
	if err != nil {
		return value.Value{}, false, err
	}

	p, ok, err := props.Find(key)
	if err != nil || !ok {
		return value.Value{}, ok, err
	}

	v, err := p.Value()
	return v, true, err
}

// SourceText borrows the node's span out of the image's source text.
func (n SymbolNode) SourceText() ([]byte, error) {
	header, err := n.buf.Header()
	if err != nil {
		return nil, err
	}

	return n.buf.SourceText(header.SourceOffset, n.rec.SourceStart, n.rec.SourceLength)
}
