package schema

import (
	"github.com/arborist-go/pforest/errs"
	"github.com/arborist-go/pforest/format"
)

// SymbolNode is the SPPF "parent" for a grammar symbol instance.
//
//	0:2  symbol_id
//	2:2  node_type
//	4:4  source_start
//	8:4  source_length
//	12:4 packed_list_offset
//	16:4 properties_list_offset
type SymbolNode struct {
	SymbolID             uint16
	NodeType             uint16
	SourceStart          uint32
	SourceLength         uint32
	PackedListOffset     uint32
	PropertiesListOffset uint32
}

// Bytes serializes the record into a new SymbolNodeSize-byte slice.
func (n SymbolNode) Bytes() []byte {
	b := make([]byte, SymbolNodeSize)
	wireEndian.PutUint16(b[0:2], n.SymbolID)
	wireEndian.PutUint16(b[2:4], n.NodeType)
	wireEndian.PutUint32(b[4:8], n.SourceStart)
	wireEndian.PutUint32(b[8:12], n.SourceLength)
	wireEndian.PutUint32(b[12:16], n.PackedListOffset)
	wireEndian.PutUint32(b[16:20], n.PropertiesListOffset)

	return b
}

// ParseSymbolNode parses a SymbolNode from the leading SymbolNodeSize
// bytes of data.
func ParseSymbolNode(data []byte) (SymbolNode, error) {
	if len(data) < SymbolNodeSize {
		return SymbolNode{}, errs.ErrTruncated
	}

	return SymbolNode{
		SymbolID:             wireEndian.Uint16(data[0:2]),
		NodeType:             wireEndian.Uint16(data[2:4]),
		SourceStart:          wireEndian.Uint32(data[4:8]),
		SourceLength:         wireEndian.Uint32(data[8:12]),
		PackedListOffset:     wireEndian.Uint32(data[12:16]),
		PropertiesListOffset: wireEndian.Uint32(data[16:20]),
	}, nil
}

// SourceEnd returns SourceStart + SourceLength.
func (n SymbolNode) SourceEnd() uint32 { return n.SourceStart + n.SourceLength }

// PackedNode is a single derivation (alternative parse) of a symbol node.
//
//	0:2  rule_id
//	2:2  reserved
//	4:4  child_list_offset
//	8:4  cpg_edges_list_offset
type PackedNode struct {
	RuleID             uint16
	ChildListOffset    uint32
	CpgEdgesListOffset uint32
}

// Bytes serializes the record into a new PackedNodeSize-byte slice.
func (n PackedNode) Bytes() []byte {
	b := make([]byte, PackedNodeSize)
	wireEndian.PutUint16(b[0:2], n.RuleID)
	// bytes 2:4 reserved, left zero
	wireEndian.PutUint32(b[4:8], n.ChildListOffset)
	wireEndian.PutUint32(b[8:12], n.CpgEdgesListOffset)

	return b
}

// ParsePackedNode parses a PackedNode from the leading PackedNodeSize
// bytes of data.
func ParsePackedNode(data []byte) (PackedNode, error) {
	if len(data) < PackedNodeSize {
		return PackedNode{}, errs.ErrTruncated
	}

	return PackedNode{
		RuleID:             wireEndian.Uint16(data[0:2]),
		ChildListOffset:    wireEndian.Uint32(data[4:8]),
		CpgEdgesListOffset: wireEndian.Uint32(data[8:12]),
	}, nil
}

// CpgEdge is a semantic relation attached to a derivation.
//
//	0:2  edge_kind
//	2:2  reserved
//	4:4  target_node_offset
//	8:4  properties_list_offset
type CpgEdge struct {
	Kind                 format.EdgeKind
	TargetNodeOffset     uint32
	PropertiesListOffset uint32
}

// Bytes serializes the record into a new CpgEdgeSize-byte slice.
func (e CpgEdge) Bytes() []byte {
	b := make([]byte, CpgEdgeSize)
	wireEndian.PutUint16(b[0:2], uint16(e.Kind))
	wireEndian.PutUint32(b[4:8], e.TargetNodeOffset)
	wireEndian.PutUint32(b[8:12], e.PropertiesListOffset)

	return b
}

// ParseCpgEdge parses a CpgEdge from the leading CpgEdgeSize bytes of
// data.
func ParseCpgEdge(data []byte) (CpgEdge, error) {
	if len(data) < CpgEdgeSize {
		return CpgEdge{}, errs.ErrTruncated
	}

	return CpgEdge{
		Kind:                 format.EdgeKind(wireEndian.Uint16(data[0:2])),
		TargetNodeOffset:     wireEndian.Uint32(data[4:8]),
		PropertiesListOffset: wireEndian.Uint32(data[8:12]),
	}, nil
}

// Property is a key/value pair. Key is an offset into the interned
// string bytes; Value is an offset to a ValueHeader + payload.
//
//	0:4 key_offset
//	4:4 value_offset
type Property struct {
	KeyOffset   uint32
	ValueOffset uint32
}

// Bytes serializes the record into a new PropertySize-byte slice.
func (p Property) Bytes() []byte {
	b := make([]byte, PropertySize)
	wireEndian.PutUint32(b[0:4], p.KeyOffset)
	wireEndian.PutUint32(b[4:8], p.ValueOffset)

	return b
}

// ParseProperty parses a Property from the leading PropertySize bytes
// of data.
func ParseProperty(data []byte) (Property, error) {
	if len(data) < PropertySize {
		return Property{}, errs.ErrTruncated
	}

	return Property{
		KeyOffset:   wireEndian.Uint32(data[0:4]),
		ValueOffset: wireEndian.Uint32(data[4:8]),
	}, nil
}

// ValueHeader precedes a property value's payload bytes.
//
//	0:2 value_kind
//	2:2 reserved
//	4:4 value_byte_length
type ValueHeader struct {
	Kind       format.ValueKind
	ByteLength uint32
}

// Bytes serializes the record into a new ValueHeaderSize-byte slice.
func (v ValueHeader) Bytes() []byte {
	b := make([]byte, ValueHeaderSize)
	wireEndian.PutUint16(b[0:2], uint16(v.Kind))
	wireEndian.PutUint32(b[4:8], v.ByteLength)

	return b
}

// ParseValueHeader parses a ValueHeader from the leading
// ValueHeaderSize bytes of data.
func ParseValueHeader(data []byte) (ValueHeader, error) {
	if len(data) < ValueHeaderSize {
		return ValueHeader{}, errs.ErrTruncated
	}

	return ValueHeader{
		Kind:       format.ValueKind(wireEndian.Uint16(data[0:2])),
		ByteLength: wireEndian.Uint32(data[4:8]),
	}, nil
}

// IntervalEntry is a (start, end, node_offset) triple used by the
// spatial index.
//
//	0:4 start
//	4:4 end
//	8:4 node_offset
type IntervalEntry struct {
	Start      uint32
	End        uint32
	NodeOffset uint32
}

// Bytes serializes the record into a new IntervalEntrySize-byte slice.
func (e IntervalEntry) Bytes() []byte {
	b := make([]byte, IntervalEntrySize)
	wireEndian.PutUint32(b[0:4], e.Start)
	wireEndian.PutUint32(b[4:8], e.End)
	wireEndian.PutUint32(b[8:12], e.NodeOffset)

	return b
}

// ParseIntervalEntry parses an IntervalEntry from the leading
// IntervalEntrySize bytes of data.
func ParseIntervalEntry(data []byte) (IntervalEntry, error) {
	if len(data) < IntervalEntrySize {
		return IntervalEntry{}, errs.ErrTruncated
	}

	return IntervalEntry{
		Start:      wireEndian.Uint32(data[0:4]),
		End:        wireEndian.Uint32(data[4:8]),
		NodeOffset: wireEndian.Uint32(data[8:12]),
	}, nil
}

// Contains reports whether point falls within the closed interval
// [Start, End].
func (e IntervalEntry) Contains(point uint32) bool {
	return point >= e.Start && point <= e.End
}
