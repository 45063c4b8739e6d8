package accessor

import (
	"unicode/utf8"

	"github.com/arborist-go/pforest/buffer"
	"github.com/arborist-go/pforest/errs"
	"github.com/arborist-go/pforest/schema"
	"github.com/arborist-go/pforest/value"
)

// Property is a borrow-scoped view over a schema.Property record: an
// interned key paired with a tagged-union value.
type Property struct {
	buf *buffer.Buffer
	rec schema.Property
}

// Key resolves and UTF-8-validates the property's interned key string.
func (p Property) Key() (string, error) {
	raw, err := p.buf.ReadCString(p.rec.KeyOffset)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(raw) {
		return "", errs.ErrInvalidUTF8
	}

	return string(raw), nil
}

// Value resolves the property's tagged-union value.
func (p Property) Value() (value.Value, error) {
	header, err := p.buf.ReadValueHeader(p.rec.ValueOffset)
	if err != nil {
		return value.Value{}, err
	}

	payload, err := p.buf.Slice(int(p.rec.ValueOffset)+schema.ValueHeaderSize, int(header.ByteLength))
	if err != nil {
		return value.Value{}, err
	}

	return value.New(header.Kind, payload), nil
}
