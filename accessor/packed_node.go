package accessor

import (
	"github.com/arborist-go/pforest/buffer"
	"github.com/arborist-go/pforest/schema"
)

// PackedNode is a borrow-scoped view over a schema.PackedNode record:
// one derivation (grammar-rule alternative) of its owning SymbolNode,
// carrying the child symbol nodes and the CPG edges this derivation
// contributes.
type PackedNode struct {
	buf    *buffer.Buffer
	offset uint32
	rec    schema.PackedNode
}

func newPackedNode(buf *buffer.Buffer, offset uint32) (PackedNode, error) {
	rec, err := buf.ReadPackedNode(offset)
	if err != nil {
		return PackedNode{}, err
	}

	return PackedNode{buf: buf, offset: offset, rec: rec}, nil
}

// Offset returns the derivation's own image offset.
func (n PackedNode) Offset() uint32 { return n.offset }

// RuleID returns the grammar rule this derivation applied.
func (n PackedNode) RuleID() uint16 { return n.rec.RuleID }

// Children resolves the derivation's ordered child symbol nodes.
func (n PackedNode) Children() (SymbolNodeCollection, error) {
	offsets, err := readOffsetList(n.buf, n.rec.ChildListOffset)
	if err != nil {
		return SymbolNodeCollection{}, err
	}

	return SymbolNodeCollection{buf: n.buf, offsets: offsets}, nil
}

// Edges resolves the CPG edges this derivation contributes to the
// overlay graph.
func (n PackedNode) Edges() (CpgEdgeCollection, error) {
	offsets, err := readOffsetList(n.buf, n.rec.CpgEdgesListOffset)
	if err != nil {
		return CpgEdgeCollection{}, err
	}

	return CpgEdgeCollection{buf: n.buf, offsets: offsets}, nil
}
