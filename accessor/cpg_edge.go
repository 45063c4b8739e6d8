package accessor

import (
	"github.com/arborist-go/pforest/buffer"
	"github.com/arborist-go/pforest/format"
	"github.com/arborist-go/pforest/schema"
)

// CpgEdge is a borrow-scoped view over a schema.CpgEdge record: a
// single semantic relation (AST_CHILD, CONTROL_FLOW, DATA_FLOW, CALLS,
// or TYPE) from the derivation that owns it to a target SymbolNode.
type CpgEdge struct {
	buf    *buffer.Buffer
	offset uint32
	rec    schema.CpgEdge
}

func newCpgEdge(buf *buffer.Buffer, offset uint32) (CpgEdge, error) {
	rec, err := buf.ReadCpgEdge(offset)
	if err != nil {
		return CpgEdge{}, err
	}

	return CpgEdge{buf: buf, offset: offset, rec: rec}, nil
}

// Offset returns the edge's own image offset.
func (e CpgEdge) Offset() uint32 { return e.offset }

// Kind returns the edge's semantic relation kind.
func (e CpgEdge) Kind() format.EdgeKind { return e.rec.Kind }

// Target resolves the SymbolNode this edge points to.
func (e CpgEdge) Target() (SymbolNode, error) {
	return newSymbolNode(e.buf, e.rec.TargetNodeOffset)
}

// TargetOffset returns the raw target offset without resolving it.
func (e CpgEdge) TargetOffset() uint32 { return e.rec.TargetNodeOffset }

// Properties resolves the edge's own property list.
func (e CpgEdge) Properties() (PropertyCollection, error) {
	items, err := readPropertyRecords(e.buf, e.rec.PropertiesListOffset)
	if err != nil {
		return PropertyCollection{}, err
	}

	return PropertyCollection{buf: e.buf, items: items}, nil
}
