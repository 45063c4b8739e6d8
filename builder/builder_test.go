package builder_test

import (
	"bytes"
	"testing"

	"github.com/arborist-go/pforest/accessor"
	"github.com/arborist-go/pforest/buffer"
	"github.com/arborist-go/pforest/builder"
	"github.com/arborist-go/pforest/format"
	"github.com/arborist-go/pforest/schema"
	"github.com/stretchr/testify/require"
)

func TestBuilder_RoundTrip(t *testing.T) {
	b := builder.New()

	leafPacked := b.WritePackedNode(10, nil, nil)
	leafOffset, err := b.WriteSymbolNode(2, 1, 0, 3, []uint32{leafPacked}, []builder.PropertyInput{
		{Key: "name", Kind: format.ValueString, Payload: []byte("foo")},
	})
	require.NoError(t, err)

	edgeOffset, err := b.WriteCPGEdge(format.EdgeASTChild, leafOffset, nil)
	require.NoError(t, err)

	rootPacked := b.WritePackedNode(20, []uint32{leafOffset}, []uint32{edgeOffset})
	rootOffset, err := b.WriteSymbolNode(1, 1, 0, 3, []uint32{rootPacked}, nil)
	require.NoError(t, err)

	image, err := b.Build(rootOffset, []byte("abc"))
	require.NoError(t, err)

	buf, err := buffer.Open(image)
	require.NoError(t, err)

	header, err := buf.Header()
	require.NoError(t, err)
	require.Equal(t, rootOffset, header.RootOffset)
	require.Equal(t, uint32(2), header.NodeCount)
	require.Equal(t, uint32(1), header.EdgeCount)
	require.Equal(t, uint32(3), header.SourceLen)
	require.True(t, header.Flags.Has(schema.FullyParsed))

	root, err := accessor.NewSymbolNode(buf, rootOffset)
	require.NoError(t, err)
	require.Equal(t, uint16(1), root.SymbolID())

	packed, err := root.PackedNodes()
	require.NoError(t, err)
	require.Equal(t, 1, packed.Count())

	derivation, err := packed.At(0)
	require.NoError(t, err)
	require.Equal(t, uint16(20), derivation.RuleID())

	children, err := derivation.Children()
	require.NoError(t, err)
	require.Equal(t, 1, children.Count())

	child, err := children.At(0)
	require.NoError(t, err)
	require.Equal(t, uint16(2), child.SymbolID())

	v, ok, err := child.Property("name")
	require.NoError(t, err)
	require.True(t, ok)
	s, err := v.AsString()
	require.NoError(t, err)
	require.Equal(t, "foo", s)

	edges, err := derivation.Edges()
	require.NoError(t, err)
	require.Equal(t, 1, edges.Count())

	edge, err := edges.At(0)
	require.NoError(t, err)
	require.Equal(t, format.EdgeASTChild, edge.Kind())

	target, err := edge.Target()
	require.NoError(t, err)
	require.Equal(t, uint16(2), target.SymbolID())
}

func TestBuilder_WriteValue_LengthMismatch(t *testing.T) {
	b := builder.New()
	_, err := b.WriteValue(format.ValueI32, []byte{1, 2, 3})
	require.Error(t, err)
}

func TestBuilder_InternString_Dedups(t *testing.T) {
	b := builder.New()
	props := []builder.PropertyInput{
		{Key: "name", Kind: format.ValueString, Payload: []byte("a")},
		{Key: "name", Kind: format.ValueString, Payload: []byte("b")},
	}

	leaf, err := b.WriteSymbolNode(3, 1, 0, 1, nil, props)
	require.NoError(t, err)

	image, err := b.Build(leaf, []byte("a"))
	require.NoError(t, err)
	require.Equal(t, 1, bytes.Count(image, []byte("name\x00")), "the repeated key is written once")
	buf, err := buffer.Open(image)
	require.NoError(t, err)

	node, err := accessor.NewSymbolNode(buf, leaf)
	require.NoError(t, err)

	propList, err := node.Properties()
	require.NoError(t, err)
	require.Equal(t, 2, propList.Count())

	k0, err := propList.At(0).Key()
	require.NoError(t, err)
	k1, err := propList.At(1).Key()
	require.NoError(t, err)
	require.Equal(t, "name", k0)
	require.Equal(t, "name", k1)
}
