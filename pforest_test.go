package pforest_test

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/arborist-go/pforest"
	"github.com/arborist-go/pforest/builder"
	"github.com/arborist-go/pforest/format"
	"github.com/stretchr/testify/require"
)

// TestE1_SimpleLiteral follows spec scenario E1: a single leaf node
// over source text "hello world" with two string properties.
func TestE1_SimpleLiteral(t *testing.T) {
	b := pforest.NewBuilder()

	packed := b.WritePackedNode(1, nil, nil)
	root, err := b.WriteSymbolNode(1, 100, 0, 11, []uint32{packed}, []builder.PropertyInput{
		{Key: "NodeType", Kind: format.ValueString, Payload: []byte("StringLiteral")},
		{Key: "Value", Kind: format.ValueString, Payload: []byte("hello world")},
	})
	require.NoError(t, err)

	image, err := b.Build(root, []byte("hello world"))
	require.NoError(t, err)

	g, err := pforest.Open(image)
	require.NoError(t, err)

	r, err := g.Root()
	require.NoError(t, err)
	require.Equal(t, uint16(1), r.SymbolID())
	require.Equal(t, uint16(100), r.NodeType())
	require.Equal(t, uint32(0), r.SourceStart())
	require.Equal(t, uint32(11), r.SourceLength())

	ambiguous, err := r.IsAmbiguous()
	require.NoError(t, err)
	require.False(t, ambiguous)

	v, ok, err := r.Property("NodeType")
	require.NoError(t, err)
	require.True(t, ok)
	s, err := v.AsString()
	require.NoError(t, err)
	require.Equal(t, "StringLiteral", s)

	v, ok, err = r.Property("Value")
	require.NoError(t, err)
	require.True(t, ok)
	s, err = v.AsString()
	require.NoError(t, err)
	require.Equal(t, "hello world", s)

	stats, err := g.Stats()
	require.NoError(t, err)
	require.GreaterOrEqual(t, stats.NodeCount, uint32(1))
	require.Equal(t, uint32(11), stats.SourceLen)
}

// TestE3_TypedProperties follows spec scenario E3: a node with string,
// i32, bool and f64 properties, exercising those typed accessors and
// the TypeMismatch / absent-on-mismatch contract.
func TestE3_TypedProperties(t *testing.T) {
	b := pforest.NewBuilder()

	intPayload := make([]byte, 4)
	binary.LittleEndian.PutUint32(intPayload, uint32(int32(42)))

	doublePayload := make([]byte, 8)
	binary.LittleEndian.PutUint64(doublePayload, math.Float64bits(3.14159))

	root, err := b.WriteSymbolNode(1, 1, 0, 1, nil, []builder.PropertyInput{
		{Key: "StringProp", Kind: format.ValueString, Payload: []byte("test string")},
		{Key: "IntProp", Kind: format.ValueI32, Payload: intPayload},
		{Key: "BoolProp", Kind: format.ValueBool, Payload: []byte{1}},
		{Key: "DoubleProp", Kind: format.ValueF64, Payload: doublePayload},
	})
	require.NoError(t, err)

	image, err := b.Build(root, []byte("a"))
	require.NoError(t, err)

	g, err := pforest.Open(image)
	require.NoError(t, err)

	r, err := g.Root()
	require.NoError(t, err)

	sv, ok, err := r.Property("StringProp")
	require.NoError(t, err)
	require.True(t, ok)
	s, err := sv.AsString()
	require.NoError(t, err)
	require.Equal(t, "test string", s)

	iv, ok, err := r.Property("IntProp")
	require.NoError(t, err)
	require.True(t, ok)
	n, err := iv.AsI32()
	require.NoError(t, err)
	require.Equal(t, int32(42), n)

	bv, ok, err := r.Property("BoolProp")
	require.NoError(t, err)
	require.True(t, ok)
	flag, err := bv.AsBool()
	require.NoError(t, err)
	require.True(t, flag)

	dv, ok, err := r.Property("DoubleProp")
	require.NoError(t, err)
	require.True(t, ok)
	f, err := dv.AsF64()
	require.NoError(t, err)
	require.InDelta(t, 3.14159, f, 1e-9)

	_, err = iv.AsString()
	require.Error(t, err, "a typed-string read on an int-kinded value is a TypeMismatch")

	_, stillOK := iv.TryAsString()
	require.False(t, stillOK, "TryAsString converts TypeMismatch into absent")
}

// TestE6_FilePersistence follows spec scenario E6: build to a
// temporary file, reopen it via the file path, and verify property
// and source-text equality with the original in-memory image.
func TestE6_FilePersistence(t *testing.T) {
	b := pforest.NewBuilder()

	packed := b.WritePackedNode(1, nil, nil)
	root, err := b.WriteSymbolNode(1, 1, 0, 3, []uint32{packed}, []builder.PropertyInput{
		{Key: "name", Kind: format.ValueString, Payload: []byte("abc")},
	})
	require.NoError(t, err)

	image, err := b.Build(root, []byte("abc"))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "image.pforest")
	require.NoError(t, os.WriteFile(path, image, 0o600))

	g, err := pforest.OpenFile(path)
	require.NoError(t, err)

	r, err := g.Root()
	require.NoError(t, err)

	v, ok, err := r.Property("name")
	require.NoError(t, err)
	require.True(t, ok)
	s, err := v.AsString()
	require.NoError(t, err)
	require.Equal(t, "abc", s)

	text, err := g.SourceText()
	require.NoError(t, err)
	require.Equal(t, "abc", string(text))

	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, len(image), len(onDisk), "file-backed image is byte-for-byte equal in length")
	require.Equal(t, image, onDisk)
}
