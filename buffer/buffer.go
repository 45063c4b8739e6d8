package buffer

import (
	"encoding/binary"
	"fmt"

	"github.com/arborist-go/pforest/errs"
	"github.com/arborist-go/pforest/schema"
)

// Buffer is a bounds-checked, read-only view over an image's bytes.
// It borrows the slice passed to Open (graph.OpenFile passes a copy of
// the file's bytes, not the mapping itself) and never mutates it.
type Buffer struct {
	data []byte
}

// Open validates the magic and version of data and returns a Buffer
// borrowing it. data is never copied or retained beyond the slice
// header; the caller must keep it alive for the Buffer's lifetime.
func Open(data []byte) (*Buffer, error) {
	if len(data) < schema.HeaderSize {
		return nil, errs.ErrTruncated
	}

	if _, err := schema.ParseHeader(data[:schema.HeaderSize]); err != nil {
		return nil, err
	}

	return &Buffer{data: data}, nil
}

// Len returns the total size of the image in bytes.
func (b *Buffer) Len() int { return len(b.data) }

// Bytes returns the complete underlying image. The returned slice
// borrows the Buffer's backing array and must not be retained past the
// Buffer's lifetime.
func (b *Buffer) Bytes() []byte { return b.data }

// Header returns a copy of the 32-byte header.
func (b *Buffer) Header() (schema.Header, error) {
	return schema.ParseHeader(b.data[:schema.HeaderSize])
}

// Slice borrows exactly length bytes starting at offset. It fails with
// ErrOutOfRange if offset or length is negative or offset+length
// exceeds the image length.
func (b *Buffer) Slice(offset, length int) ([]byte, error) {
	if offset < 0 || length < 0 || offset+length > len(b.data) {
		return nil, fmt.Errorf("%w: slice(%d,%d) in image of %d bytes", errs.ErrOutOfRange, offset, length, len(b.data))
	}

	return b.data[offset : offset+length], nil
}

// ReadSymbolNode copies a SymbolNode record at offset.
func (b *Buffer) ReadSymbolNode(offset uint32) (schema.SymbolNode, error) {
	data, err := b.Slice(int(offset), schema.SymbolNodeSize)
	if err != nil {
		return schema.SymbolNode{}, err
	}

	return schema.ParseSymbolNode(data)
}

// ReadPackedNode copies a PackedNode record at offset.
func (b *Buffer) ReadPackedNode(offset uint32) (schema.PackedNode, error) {
	data, err := b.Slice(int(offset), schema.PackedNodeSize)
	if err != nil {
		return schema.PackedNode{}, err
	}

	return schema.ParsePackedNode(data)
}

// ReadCpgEdge copies a CpgEdge record at offset.
func (b *Buffer) ReadCpgEdge(offset uint32) (schema.CpgEdge, error) {
	data, err := b.Slice(int(offset), schema.CpgEdgeSize)
	if err != nil {
		return schema.CpgEdge{}, err
	}

	return schema.ParseCpgEdge(data)
}

// ReadProperty copies a Property record at offset.
func (b *Buffer) ReadProperty(offset uint32) (schema.Property, error) {
	data, err := b.Slice(int(offset), schema.PropertySize)
	if err != nil {
		return schema.Property{}, err
	}

	return schema.ParseProperty(data)
}

// ReadValueHeader copies a ValueHeader record at offset.
func (b *Buffer) ReadValueHeader(offset uint32) (schema.ValueHeader, error) {
	data, err := b.Slice(int(offset), schema.ValueHeaderSize)
	if err != nil {
		return schema.ValueHeader{}, err
	}

	return schema.ParseValueHeader(data)
}

// ReadCString borrows bytes starting at offset up to (exclusive of) the
// first zero byte found within the image. It fails with
// ErrUnterminated if no zero byte exists before the end of the image.
func (b *Buffer) ReadCString(offset uint32) ([]byte, error) {
	start := int(offset)
	if start < 0 || start > len(b.data) {
		return nil, errs.ErrOutOfRange
	}

	for i := start; i < len(b.data); i++ {
		if b.data[i] == 0 {
			return b.data[start:i], nil
		}
	}

	return nil, errs.ErrUnterminated
}

// ListCount reads the leading 32-bit count field of the list region at
// offset. A list offset of 0 is the absent sentinel and is not a valid
// argument to ListCount; callers check for 0 before calling it.
func (b *Buffer) ListCount(offset uint32) (uint32, error) {
	data, err := b.Slice(int(offset), schema.ListCountFieldSize)
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint32(data), nil
}

// ListSpan borrows the count*elementSize bytes immediately following
// the leading count field at offset.
func (b *Buffer) ListSpan(offset uint32, elementSize int) ([]byte, error) {
	count, err := b.ListCount(offset)
	if err != nil {
		return nil, err
	}

	return b.Slice(int(offset)+schema.ListCountFieldSize, int(count)*elementSize)
}

// SourceText borrows length bytes of the verbatim source text starting
// at start, relative to the source section's own offset (not the image
// start). Accessors compute the absolute offset via the header.
func (b *Buffer) SourceText(sourceOffset, start, length uint32) ([]byte, error) {
	return b.Slice(int(sourceOffset)+int(start), int(length))
}
