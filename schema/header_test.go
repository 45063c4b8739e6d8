package schema

import (
	"testing"

	"github.com/arborist-go/pforest/errs"
	"github.com/stretchr/testify/require"
)

func TestNewHeader(t *testing.T) {
	h := NewHeader()

	require.Equal(t, Magic, h.Magic)
	require.Equal(t, Version1, h.Version)
	require.True(t, h.Flags.Has(FullyParsed))
}

func TestHeader_RoundTrip(t *testing.T) {
	t.Run("valid header", func(t *testing.T) {
		original := NewHeader()
		original.RootOffset = 32
		original.NodeCount = 3
		original.EdgeCount = 1
		original.SourceLen = 11
		original.SourceOffset = 200
		original.IntervalIndexOffset = 250

		data := original.Bytes()
		require.Len(t, data, HeaderSize)

		parsed, err := ParseHeader(data)
		require.NoError(t, err)
		require.Equal(t, original, parsed)
	})

	t.Run("truncated", func(t *testing.T) {
		_, err := ParseHeader([]byte{1, 2, 3})
		require.ErrorIs(t, err, errs.ErrTruncated)
	})

	t.Run("bad magic", func(t *testing.T) {
		data := make([]byte, HeaderSize)
		_, err := ParseHeader(data)
		require.ErrorIs(t, err, errs.ErrBadMagic)
	})

	t.Run("unsupported version", func(t *testing.T) {
		h := NewHeader()
		h.Version = 2
		data := h.Bytes()

		_, err := ParseHeader(data)
		require.ErrorIs(t, err, errs.ErrUnsupportedVersion)
	})
}

func TestFlags_Has(t *testing.T) {
	f := FullyParsed | HasTypeInformation
	require.True(t, f.Has(FullyParsed))
	require.True(t, f.Has(HasTypeInformation))
	require.False(t, f.Has(HasSyntaxErrors))
	require.True(t, f.Has(FullyParsed|HasTypeInformation))
}
