package value

import (
	"encoding/binary"
	"math"
	"unicode/utf8"

	"github.com/arborist-go/pforest/errs"
	"github.com/arborist-go/pforest/format"
)

// Value is a borrowed view over a ValueHeader and its payload bytes.
// It must not outlive the Buffer it was read from.
type Value struct {
	kind    format.ValueKind
	payload []byte
}

// New wraps kind and payload into a Value. Used by accessor and builder
// code that has already parsed the ValueHeader and sliced the payload.
func New(kind format.ValueKind, payload []byte) Value {
	return Value{kind: kind, payload: payload}
}

// Kind returns the value's tagged-union kind.
func (v Value) Kind() format.ValueKind { return v.kind }

// Payload returns the value's raw, still-encoded payload bytes. Used
// by callers (the editor's deep-copy rebuild) that need to carry a
// value forward into a new image without decoding and re-encoding it.
func (v Value) Payload() []byte { return v.payload }

func (v Value) checkKind(want format.ValueKind) error {
	if v.kind != want {
		return errs.ErrTypeMismatch
	}

	return nil
}

// AsString returns the string payload, failing with ErrTypeMismatch if
// the value is not a ValueString, or ErrInvalidUTF8 if the payload is
// not valid UTF-8.
func (v Value) AsString() (string, error) {
	if err := v.checkKind(format.ValueString); err != nil {
		return "", err
	}
	if !utf8.Valid(v.payload) {
		return "", errs.ErrInvalidUTF8
	}

	return string(v.payload), nil
}

// TryAsString is the absent-on-failure counterpart of AsString.
func (v Value) TryAsString() (string, bool) {
	s, err := v.AsString()
	return s, err == nil
}

// AsI32 returns the int32 payload.
func (v Value) AsI32() (int32, error) {
	if err := v.checkKind(format.ValueI32); err != nil {
		return 0, err
	}

	return int32(binary.LittleEndian.Uint32(v.payload)), nil //nolint:gosec
}

// TryAsI32 is the absent-on-failure counterpart of AsI32.
func (v Value) TryAsI32() (int32, bool) {
	n, err := v.AsI32()
	return n, err == nil
}

// AsU32 returns the uint32 payload.
func (v Value) AsU32() (uint32, error) {
	if err := v.checkKind(format.ValueU32); err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint32(v.payload), nil
}

// TryAsU32 is the absent-on-failure counterpart of AsU32.
func (v Value) TryAsU32() (uint32, bool) {
	n, err := v.AsU32()
	return n, err == nil
}

// AsI64 returns the int64 payload.
func (v Value) AsI64() (int64, error) {
	if err := v.checkKind(format.ValueI64); err != nil {
		return 0, err
	}

	return int64(binary.LittleEndian.Uint64(v.payload)), nil //nolint:gosec
}

// TryAsI64 is the absent-on-failure counterpart of AsI64.
func (v Value) TryAsI64() (int64, bool) {
	n, err := v.AsI64()
	return n, err == nil
}

// AsU64 returns the uint64 payload.
func (v Value) AsU64() (uint64, error) {
	if err := v.checkKind(format.ValueU64); err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint64(v.payload), nil
}

// TryAsU64 is the absent-on-failure counterpart of AsU64.
func (v Value) TryAsU64() (uint64, bool) {
	n, err := v.AsU64()
	return n, err == nil
}

// AsF32 returns the float32 payload.
func (v Value) AsF32() (float32, error) {
	if err := v.checkKind(format.ValueF32); err != nil {
		return 0, err
	}

	return math.Float32frombits(binary.LittleEndian.Uint32(v.payload)), nil
}

// TryAsF32 is the absent-on-failure counterpart of AsF32.
func (v Value) TryAsF32() (float32, bool) {
	n, err := v.AsF32()
	return n, err == nil
}

// AsF64 returns the float64 payload.
func (v Value) AsF64() (float64, error) {
	if err := v.checkKind(format.ValueF64); err != nil {
		return 0, err
	}

	return math.Float64frombits(binary.LittleEndian.Uint64(v.payload)), nil
}

// TryAsF64 is the absent-on-failure counterpart of AsF64.
func (v Value) TryAsF64() (float64, bool) {
	n, err := v.AsF64()
	return n, err == nil
}

// AsBool returns the boolean payload (stored as a single 0/1 byte).
func (v Value) AsBool() (bool, error) {
	if err := v.checkKind(format.ValueBool); err != nil {
		return false, err
	}

	return v.payload[0] != 0, nil
}

// TryAsBool is the absent-on-failure counterpart of AsBool.
func (v Value) TryAsBool() (bool, bool) {
	b, err := v.AsBool()
	return b, err == nil
}

// AsBytes returns the raw opaque byte payload.
func (v Value) AsBytes() ([]byte, error) {
	if err := v.checkKind(format.ValueBytes); err != nil {
		return nil, err
	}

	return v.payload, nil
}

// TryAsBytes is the absent-on-failure counterpart of AsBytes.
func (v Value) TryAsBytes() ([]byte, bool) {
	b, err := v.AsBytes()
	return b, err == nil
}

// PayloadLen returns the byte size required to encode v's kind, given
// its current payload. Numeric kinds are fixed; string/bytes are
// variable and use len(payload).
func PayloadLen(kind format.ValueKind, payload []byte) (int, error) {
	switch kind {
	case format.ValueI32, format.ValueU32, format.ValueF32:
		return 4, nil
	case format.ValueI64, format.ValueU64, format.ValueF64:
		return 8, nil
	case format.ValueBool:
		return 1, nil
	case format.ValueString, format.ValueBytes:
		return len(payload), nil
	default:
		return 0, errs.ErrInvalidArgument
	}
}
