package builder

import (
	"encoding/binary"
	"io"

	"github.com/arborist-go/pforest/errs"
	"github.com/arborist-go/pforest/format"
	"github.com/arborist-go/pforest/internal/options"
	"github.com/arborist-go/pforest/internal/strpool"
	"github.com/arborist-go/pforest/schema"
)

// StreamBuilder is the file-backed "parallel builder variant" of
// variant that writes directly to an io.WriteSeeker instead of
// accumulating the whole image in memory, buffering only the
// header-size region up front and patching it via Seek on Build.
//
// It exposes the same seven operations as Builder, in the same
// required order, and is equally not safe for concurrent use.
type StreamBuilder struct {
	w         io.WriteSeeker
	interner  *strpool.Interner
	offset    uint32
	nodeCount uint32
	edgeCount uint32
	writeErr  error
}

// NewStream creates a StreamBuilder over w, reserving header-size zero
// bytes at the front of the stream.
func NewStream(w io.WriteSeeker) (*StreamBuilder, error) {
	sb := &StreamBuilder{w: w, interner: strpool.New()}

	if _, err := w.Write(make([]byte, schema.HeaderSize)); err != nil {
		return nil, err
	}
	sb.offset = schema.HeaderSize

	return sb, nil
}

// AppendBytes writes data at the current stream position and returns
// the offset it was written at. Write errors are latched and
// surfaced by Build; it implements strpool.Appender.
func (sb *StreamBuilder) AppendBytes(data []byte) uint32 {
	offset := sb.offset
	if sb.writeErr != nil {
		return offset
	}

	n, err := sb.w.Write(data)
	if err != nil {
		sb.writeErr = err
		return offset
	}

	sb.offset += uint32(n) //nolint:gosec

	return offset
}

// Err returns the first write error encountered, if any.
func (sb *StreamBuilder) Err() error { return sb.writeErr }

// WriteValue mirrors Builder.WriteValue.
func (sb *StreamBuilder) WriteValue(kind format.ValueKind, payload []byte) (uint32, error) {
	want, err := wantedLen(kind)
	if err != nil {
		return 0, err
	}
	if want >= 0 && len(payload) != want {
		return 0, errs.ErrInvalidArgument
	}

	header := schema.ValueHeader{Kind: kind, ByteLength: uint32(len(payload))} //nolint:gosec
	offset := sb.AppendBytes(header.Bytes())
	sb.AppendBytes(payload)

	return offset, nil
}

// InternString mirrors Builder.InternString.
func (sb *StreamBuilder) InternString(s string) uint32 {
	return sb.interner.Intern(sb, s)
}

// WriteList mirrors Builder.WriteList.
func (sb *StreamBuilder) WriteList(elements [][]byte) uint32 {
	if len(elements) == 0 {
		return 0
	}

	countBuf := make([]byte, schema.ListCountFieldSize)
	binary.LittleEndian.PutUint32(countBuf, uint32(len(elements))) //nolint:gosec
	offset := sb.AppendBytes(countBuf)
	for _, e := range elements {
		sb.AppendBytes(e)
	}

	return offset
}

func (sb *StreamBuilder) writeOffsetList(offsets []uint32) uint32 {
	if len(offsets) == 0 {
		return 0
	}

	elements := make([][]byte, len(offsets))
	for i, o := range offsets {
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, o)
		elements[i] = buf
	}

	return sb.WriteList(elements)
}

func (sb *StreamBuilder) writeProperties(props []PropertyInput) (uint32, error) {
	if len(props) == 0 {
		return 0, nil
	}

	elements := make([][]byte, len(props))
	for i, p := range props {
		keyOffset := sb.InternString(p.Key)
		valueOffset, err := sb.WriteValue(p.Kind, p.Payload)
		if err != nil {
			return 0, err
		}

		rec := schema.Property{KeyOffset: keyOffset, ValueOffset: valueOffset}
		elements[i] = rec.Bytes()
	}

	return sb.WriteList(elements), nil
}

// WritePackedNode mirrors Builder.WritePackedNode.
func (sb *StreamBuilder) WritePackedNode(ruleID uint16, childOffsets, edgeOffsets []uint32) uint32 {
	childList := sb.writeOffsetList(childOffsets)
	edgeList := sb.writeOffsetList(edgeOffsets)

	rec := schema.PackedNode{
		RuleID:             ruleID,
		ChildListOffset:    childList,
		CpgEdgesListOffset: edgeList,
	}

	return sb.AppendBytes(rec.Bytes())
}

// WriteSymbolNode mirrors Builder.WriteSymbolNode.
func (sb *StreamBuilder) WriteSymbolNode(symbolID, nodeType uint16, start, length uint32, packedOffsets []uint32, props []PropertyInput) (uint32, error) {
	packedList := sb.writeOffsetList(packedOffsets)
	propList, err := sb.writeProperties(props)
	if err != nil {
		return 0, err
	}

	rec := schema.SymbolNode{
		SymbolID:             symbolID,
		NodeType:             nodeType,
		SourceStart:          start,
		SourceLength:         length,
		PackedListOffset:     packedList,
		PropertiesListOffset: propList,
	}

	offset := sb.AppendBytes(rec.Bytes())
	sb.nodeCount++

	return offset, nil
}

// WriteCPGEdge mirrors Builder.WriteCPGEdge.
func (sb *StreamBuilder) WriteCPGEdge(kind format.EdgeKind, targetOffset uint32, props []PropertyInput) (uint32, error) {
	propList, err := sb.writeProperties(props)
	if err != nil {
		return 0, err
	}

	rec := schema.CpgEdge{
		Kind:                 kind,
		TargetNodeOffset:     targetOffset,
		PropertiesListOffset: propList,
	}

	offset := sb.AppendBytes(rec.Bytes())
	sb.edgeCount++

	return offset, nil
}

// Build appends sourceText, optionally a serialized interval index,
// then seeks back to patch the header region in place.
func (sb *StreamBuilder) Build(rootOffset uint32, sourceText []byte, opts ...BuildOption) error {
	if sb.writeErr != nil {
		return sb.writeErr
	}

	cfg := buildConfig{flags: schema.FullyParsed}
	if err := options.Apply(&cfg, opts...); err != nil {
		return err
	}

	sourceOffset := sb.AppendBytes(sourceText)

	var intervalOffset uint32
	if cfg.interval != nil {
		intervalOffset = sb.AppendBytes(cfg.interval.Serialize())
	}

	if sb.writeErr != nil {
		return sb.writeErr
	}

	header := schema.Header{
		Magic:               schema.Magic,
		Version:             schema.Version1,
		Flags:               cfg.flags,
		RootOffset:          rootOffset,
		NodeCount:           sb.nodeCount,
		EdgeCount:           sb.edgeCount,
		SourceLen:           uint32(len(sourceText)), //nolint:gosec
		SourceOffset:        sourceOffset,
		IntervalIndexOffset: intervalOffset,
	}

	if _, err := sb.w.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if _, err := sb.w.Write(header.Bytes()); err != nil {
		return err
	}
	_, err := sb.w.Seek(0, io.SeekEnd)

	return err
}
