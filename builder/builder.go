package builder

import (
	"encoding/binary"

	"github.com/arborist-go/pforest/errs"
	"github.com/arborist-go/pforest/format"
	"github.com/arborist-go/pforest/internal/options"
	"github.com/arborist-go/pforest/internal/pool"
	"github.com/arborist-go/pforest/internal/strpool"
	"github.com/arborist-go/pforest/schema"
)

// PropertyInput describes one key/value pair to attach to a
// SymbolNode or CpgEdge being written. Kind and Payload follow the
// same encoding value.New/value.PayloadLen expect.
type PropertyInput struct {
	Key     string
	Kind    format.ValueKind
	Payload []byte
}

// Builder is a single-writer, append-only image constructor. It is not
// safe for concurrent use; callers needing concurrent ingestion should
// build independent sub-images and merge at a higher layer.
type Builder struct {
	buf       *pool.ByteBuffer
	interner  *strpool.Interner
	nodeCount uint32
	edgeCount uint32
}

// New creates a Builder with header-size zero bytes reserved at the
// front of the image, to be back-patched by Build.
func New() *Builder {
	b := &Builder{
		buf:      pool.Get(),
		interner: strpool.New(),
	}
	b.buf.Reset()
	b.buf.Write(make([]byte, schema.HeaderSize)) //nolint:errcheck // ByteBuffer.Write never errors

	return b
}

// AppendBytes appends data at the current write position and returns
// the offset it was written at. It implements strpool.Appender, so a
// Builder can be passed directly to Interner.Intern.
func (b *Builder) AppendBytes(data []byte) uint32 {
	offset := uint32(b.buf.Len()) //nolint:gosec
	b.buf.Write(data)             //nolint:errcheck

	return offset
}

// Offset returns the current write position, i.e. the offset the next
// AppendBytes call will return.
func (b *Builder) Offset() uint32 { return uint32(b.buf.Len()) } //nolint:gosec

// WriteValue appends a ValueHeader followed by payload and returns the
// value's offset (the ValueHeader's own position). It fails with
// ErrInvalidArgument if payload's length doesn't
// match what kind requires.
func (b *Builder) WriteValue(kind format.ValueKind, payload []byte) (uint32, error) {
	want, err := wantedLen(kind)
	if err != nil {
		return 0, err
	}
	if want >= 0 && len(payload) != want {
		return 0, errs.ErrInvalidArgument
	}

	header := schema.ValueHeader{Kind: kind, ByteLength: uint32(len(payload))} //nolint:gosec
	offset := b.AppendBytes(header.Bytes())
	b.AppendBytes(payload)

	return offset, nil
}

// wantedLen returns the fixed payload length for kind, or -1 for the
// variable-length string/bytes kinds.
func wantedLen(kind format.ValueKind) (int, error) {
	switch kind {
	case format.ValueI32, format.ValueU32, format.ValueF32:
		return 4, nil
	case format.ValueI64, format.ValueU64, format.ValueF64:
		return 8, nil
	case format.ValueBool:
		return 1, nil
	case format.ValueString, format.ValueBytes:
		return -1, nil
	default:
		return 0, errs.ErrInvalidArgument
	}
}

// InternString interns s, writing its UTF-8 bytes plus a NUL
// terminator at most once, and returns its offset.
func (b *Builder) InternString(s string) uint32 {
	return b.interner.Intern(b, s)
}

// WriteList appends a count field followed by the concatenation of
// elements and returns the list's offset. An empty
// elements slice writes nothing and returns the absent-list sentinel 0.
func (b *Builder) WriteList(elements [][]byte) uint32 {
	if len(elements) == 0 {
		return 0
	}

	total := schema.ListCountFieldSize
	for _, e := range elements {
		total += len(e)
	}

	out := make([]byte, 0, total)
	countBuf := make([]byte, schema.ListCountFieldSize)
	binary.LittleEndian.PutUint32(countBuf, uint32(len(elements))) //nolint:gosec
	out = append(out, countBuf...)
	for _, e := range elements {
		out = append(out, e...)
	}

	return b.AppendBytes(out)
}

func (b *Builder) writeOffsetList(offsets []uint32) uint32 {
	if len(offsets) == 0 {
		return 0
	}

	elements := make([][]byte, len(offsets))
	for i, o := range offsets {
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, o)
		elements[i] = buf
	}

	return b.WriteList(elements)
}

func (b *Builder) writeProperties(props []PropertyInput) (uint32, error) {
	if len(props) == 0 {
		return 0, nil
	}

	elements := make([][]byte, len(props))
	for i, p := range props {
		keyOffset := b.InternString(p.Key)
		valueOffset, err := b.WriteValue(p.Kind, p.Payload)
		if err != nil {
			return 0, err
		}

		rec := schema.Property{KeyOffset: keyOffset, ValueOffset: valueOffset}
		elements[i] = rec.Bytes()
	}

	return b.WriteList(elements), nil
}

// WritePackedNode writes childOffsets and edgeOffsets as offset-lists
// (each referencing already-written SymbolNode/CpgEdge records), then
// appends the PackedNode record and returns its offset.
func (b *Builder) WritePackedNode(ruleID uint16, childOffsets, edgeOffsets []uint32) uint32 {
	childList := b.writeOffsetList(childOffsets)
	edgeList := b.writeOffsetList(edgeOffsets)

	rec := schema.PackedNode{
		RuleID:             ruleID,
		ChildListOffset:    childList,
		CpgEdgesListOffset: edgeList,
	}

	return b.AppendBytes(rec.Bytes())
}

// WriteSymbolNode writes packedOffsets and props first, then appends
// the SymbolNode record and returns its offset.
func (b *Builder) WriteSymbolNode(symbolID, nodeType uint16, start, length uint32, packedOffsets []uint32, props []PropertyInput) (uint32, error) {
	packedList := b.writeOffsetList(packedOffsets)
	propList, err := b.writeProperties(props)
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

	offset := b.AppendBytes(rec.Bytes())
	b.nodeCount++

	return offset, nil
}

// WriteCPGEdge writes props first, then appends the CpgEdge record and
// returns its offset.
func (b *Builder) WriteCPGEdge(kind format.EdgeKind, targetOffset uint32, props []PropertyInput) (uint32, error) {
	propList, err := b.writeProperties(props)
	if err != nil {
		return 0, err
	}

	rec := schema.CpgEdge{
		Kind:                 kind,
		TargetNodeOffset:     targetOffset,
		PropertiesListOffset: propList,
	}

	offset := b.AppendBytes(rec.Bytes())
	b.edgeCount++

	return offset, nil
}

// serializedInterval is satisfied by interval.Index without builder
// importing the interval package directly, avoiding a cycle risk
// should interval ever want to depend on builder for test fixtures.
type serializedInterval interface {
	Serialize() []byte
}

// BuildOption configures Build's finalization, following the same
// options.Option[T] functional-option shape as blob.NumericEncoderOption.
type BuildOption = options.Option[*buildConfig]

type buildConfig struct {
	flags    schema.Flags
	interval serializedInterval
}

// WithFlags overrides the default FullyParsed flag with an explicit
// bitset (e.g. schema.HasSyntaxErrors for a partial parse).
func WithFlags(flags schema.Flags) BuildOption {
	return options.NoError(func(c *buildConfig) { c.flags = flags })
}

// WithIntervalIndex attaches a serialized spatial index to the image.
func WithIntervalIndex(idx serializedInterval) BuildOption {
	return options.NoError(func(c *buildConfig) { c.interval = idx })
}

// Build appends sourceText, optionally appends a serialized interval
// index, constructs and back-patches the header, and returns the
// finished image. The Builder must not be reused
// after Build; its pooled buffer is returned to the pool. Calling
// Build a second time on the same Builder returns ErrBuilderStateError
// rather than a malformed image.
func (b *Builder) Build(rootOffset uint32, sourceText []byte, opts ...BuildOption) ([]byte, error) {
	if b.buf == nil {
		return nil, errs.ErrBuilderStateError
	}

	cfg := buildConfig{flags: schema.FullyParsed}
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}

	sourceOffset := b.AppendBytes(sourceText)

	var intervalOffset uint32
	if cfg.interval != nil {
		intervalOffset = b.AppendBytes(cfg.interval.Serialize())
	}

	header := schema.Header{
		Magic:               schema.Magic,
		Version:             schema.Version1,
		Flags:               cfg.flags,
		RootOffset:          rootOffset,
		NodeCount:           b.nodeCount,
		EdgeCount:           b.edgeCount,
		SourceLen:           uint32(len(sourceText)), //nolint:gosec
		SourceOffset:        sourceOffset,
		IntervalIndexOffset: intervalOffset,
	}

	copy(b.buf.Bytes()[0:schema.HeaderSize], header.Bytes())

	out := make([]byte, b.buf.Len())
	copy(out, b.buf.Bytes())
	pool.Put(b.buf)
	b.buf = nil

	return out, nil
}

// Len reports the number of bytes appended to the image so far,
// including the reserved header region.
func (b *Builder) Len() uint32 { return b.Offset() }
