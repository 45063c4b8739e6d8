package schema

import (
	"github.com/arborist-go/pforest/endian"
	"github.com/arborist-go/pforest/errs"
)

// wireEndian is the engine every on-disk record is written and read
// with; the image format is little-endian only.
var wireEndian = endian.GetLittleEndianEngine()

// Sizes and well-known offsets, in bytes.
const (
	HeaderSize         = 32 // fixed header size, normative: no separate total_size field
	SymbolNodeSize     = 20
	PackedNodeSize     = 12
	CpgEdgeSize        = 12
	PropertySize       = 8
	ValueHeaderSize    = 8
	IntervalEntrySize  = 12
	ListCountFieldSize = 4 // leading count field of any list region
)

// Magic is the 4-byte tag every valid image begins with, read as a
// little-endian u32: bytes 0x4E 0x47 0x4F 0x43.
const Magic uint32 = 0x434F474E

// Version1 is the only format version this package understands.
const Version1 uint16 = 1

// Flags is the packed bitset carried in Header.Flags.
type Flags uint16

const (
	FullyParsed         Flags = 1 << 0
	HasSyntaxErrors     Flags = 1 << 1
	HasSemanticAnalysis Flags = 1 << 2
	HasTypeInformation  Flags = 1 << 3
)

// Has reports whether every bit in want is set.
func (f Flags) Has(want Flags) bool { return f&want == want }

// Header is the fixed 32-byte record at offset 0 of every image.
type Header struct {
	Magic               uint32
	Version             uint16
	Flags               Flags
	RootOffset          uint32
	NodeCount           uint32
	EdgeCount           uint32
	SourceLen           uint32
	SourceOffset        uint32
	IntervalIndexOffset uint32 // 0 if absent
}

// NewHeader returns a zero-value Header stamped with the current magic,
// version, and FullyParsed flag. Callers (the Builder) fill in the rest
// once the image is complete.
func NewHeader() Header {
	return Header{
		Magic:   Magic,
		Version: Version1,
		Flags:   FullyParsed,
	}
}

// Bytes serializes the header into a new 32-byte little-endian slice.
func (h Header) Bytes() []byte {
	b := make([]byte, 0, HeaderSize)
	b = wireEndian.AppendUint32(b, h.Magic)
	b = wireEndian.AppendUint16(b, h.Version)
	b = wireEndian.AppendUint16(b, uint16(h.Flags))
	b = wireEndian.AppendUint32(b, h.RootOffset)
	b = wireEndian.AppendUint32(b, h.NodeCount)
	b = wireEndian.AppendUint32(b, h.EdgeCount)
	b = wireEndian.AppendUint32(b, h.SourceLen)
	b = wireEndian.AppendUint32(b, h.SourceOffset)
	b = wireEndian.AppendUint32(b, h.IntervalIndexOffset)

	return b
}

// ParseHeader parses and validates a Header from the leading HeaderSize
// bytes of data. It returns ErrTruncated if data is shorter than
// HeaderSize, ErrBadMagic if the magic tag doesn't match, and
// ErrUnsupportedVersion if the version field isn't Version1.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, errs.ErrTruncated
	}

	h := Header{
		Magic:               wireEndian.Uint32(data[0:4]),
		Version:             wireEndian.Uint16(data[4:6]),
		Flags:               Flags(wireEndian.Uint16(data[6:8])),
		RootOffset:          wireEndian.Uint32(data[8:12]),
		NodeCount:           wireEndian.Uint32(data[12:16]),
		EdgeCount:           wireEndian.Uint32(data[16:20]),
		SourceLen:           wireEndian.Uint32(data[20:24]),
		SourceOffset:        wireEndian.Uint32(data[24:28]),
		IntervalIndexOffset: wireEndian.Uint32(data[28:32]),
	}

	if h.Magic != Magic {
		return Header{}, errs.ErrBadMagic
	}
	if h.Version != Version1 {
		return Header{}, errs.ErrUnsupportedVersion
	}

	return h, nil
}
