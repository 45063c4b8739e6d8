package buffer

import (
	"encoding/binary"
	"testing"

	"github.com/arborist-go/pforest/errs"
	"github.com/arborist-go/pforest/schema"
	"github.com/stretchr/testify/require"
)

func validImage(t *testing.T) []byte {
	t.Helper()

	h := schema.NewHeader()
	h.SourceOffset = schema.HeaderSize
	h.SourceLen = 5
	data := h.Bytes()
	data = append(data, []byte("hello")...)

	return data
}

func TestOpen(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		buf, err := Open(validImage(t))
		require.NoError(t, err)
		require.NotNil(t, buf)
	})

	t.Run("truncated", func(t *testing.T) {
		_, err := Open([]byte{1, 2, 3})
		require.ErrorIs(t, err, errs.ErrTruncated)
	})

	t.Run("bad magic", func(t *testing.T) {
		_, err := Open(make([]byte, schema.HeaderSize))
		require.ErrorIs(t, err, errs.ErrBadMagic)
	})
}

func TestBuffer_Slice(t *testing.T) {
	buf, err := Open(validImage(t))
	require.NoError(t, err)

	got, err := buf.Slice(schema.HeaderSize, 5)
	require.NoError(t, err)
	require.Equal(t, "hello", string(got))

	_, err = buf.Slice(schema.HeaderSize, 100)
	require.ErrorIs(t, err, errs.ErrOutOfRange)

	_, err = buf.Slice(-1, 1)
	require.ErrorIs(t, err, errs.ErrOutOfRange)
}

func TestBuffer_ReadCString(t *testing.T) {
	h := schema.NewHeader()
	data := h.Bytes()
	data = append(data, []byte("foo\x00bar")...)

	buf, err := Open(data)
	require.NoError(t, err)

	got, err := buf.ReadCString(schema.HeaderSize)
	require.NoError(t, err)
	require.Equal(t, "foo", string(got))

	_, err = buf.ReadCString(uint32(len(data) + 1))
	require.ErrorIs(t, err, errs.ErrOutOfRange)

	noTerm := h.Bytes()
	noTerm = append(noTerm, []byte("noterm")...)
	buf2, err := Open(noTerm)
	require.NoError(t, err)
	_, err = buf2.ReadCString(schema.HeaderSize)
	require.ErrorIs(t, err, errs.ErrUnterminated)
}

func TestBuffer_ListCountAndSpan(t *testing.T) {
	h := schema.NewHeader()
	data := h.Bytes()

	listOffset := uint32(len(data))
	countBuf := make([]byte, 4)
	binary.LittleEndian.PutUint32(countBuf, 2)
	data = append(data, countBuf...)
	data = append(data, make([]byte, 2*schema.PropertySize)...)

	buf, err := Open(data)
	require.NoError(t, err)

	count, err := buf.ListCount(listOffset)
	require.NoError(t, err)
	require.Equal(t, uint32(2), count)

	span, err := buf.ListSpan(listOffset, schema.PropertySize)
	require.NoError(t, err)
	require.Len(t, span, 2*schema.PropertySize)
}

func TestBuffer_SourceText(t *testing.T) {
	buf, err := Open(validImage(t))
	require.NoError(t, err)

	got, err := buf.SourceText(schema.HeaderSize, 0, 5)
	require.NoError(t, err)
	require.Equal(t, "hello", string(got))
}
