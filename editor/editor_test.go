package editor

import (
	"encoding/binary"
	"testing"

	"github.com/arborist-go/pforest/builder"
	"github.com/arborist-go/pforest/errs"
	"github.com/arborist-go/pforest/format"
	"github.com/arborist-go/pforest/graph"
	"github.com/stretchr/testify/require"
)

// buildTree constructs root -> [child1, child2], each a leaf, and
// returns the opened Graph plus the two children's image offsets.
func buildTree(t *testing.T) (*graph.Graph, uint32, uint32) {
	t.Helper()

	b := builder.New()

	child1Packed := b.WritePackedNode(1, nil, nil)
	child1, err := b.WriteSymbolNode(10, 1, 0, 1, []uint32{child1Packed}, []builder.PropertyInput{
		{Key: "label", Kind: format.ValueString, Payload: []byte("one")},
	})
	require.NoError(t, err)

	child2Packed := b.WritePackedNode(2, nil, nil)
	child2, err := b.WriteSymbolNode(11, 1, 1, 1, []uint32{child2Packed}, nil)
	require.NoError(t, err)

	rootPacked := b.WritePackedNode(3, []uint32{child1, child2}, nil)
	root, err := b.WriteSymbolNode(1, 100, 0, 2, []uint32{rootPacked}, []builder.PropertyInput{
		{Key: "kind", Kind: format.ValueString, Payload: []byte("root")},
	})
	require.NoError(t, err)

	image, err := b.Build(root, []byte("ab"))
	require.NoError(t, err)

	g, err := graph.Open(image)
	require.NoError(t, err)

	return g, child1, child2
}

func TestEditor_DeleteNode(t *testing.T) {
	g, _, child2 := buildTree(t)

	e := New(g)
	e.DeleteNode(child2)

	out, err := e.Build()
	require.NoError(t, err)

	g2, err := graph.Open(out)
	require.NoError(t, err)

	root, err := g2.Root()
	require.NoError(t, err)

	packed, err := root.PackedNodes()
	require.NoError(t, err)
	derivation, err := packed.At(0)
	require.NoError(t, err)

	children, err := derivation.Children()
	require.NoError(t, err)
	require.Equal(t, 2, children.Count())

	_, err = children.At(0)
	require.NoError(t, err, "surviving first child still resolves")

	_, err = children.At(1)
	require.ErrorIs(t, err, errs.ErrNotFound, "deleted child is left as the sentinel offset 0")

	first, err := children.At(0)
	require.NoError(t, err)
	require.Equal(t, uint16(10), first.SymbolID())
}

func TestEditor_ReplaceNode(t *testing.T) {
	g, child1, _ := buildTree(t)

	e := New(g)
	e.ReplaceNode(child1, NodeFields{SymbolID: 99, NodeType: 2, SourceStart: 0, SourceLength: 1})

	out, err := e.Build()
	require.NoError(t, err)

	g2, err := graph.Open(out)
	require.NoError(t, err)

	root, err := g2.Root()
	require.NoError(t, err)
	packed, err := root.PackedNodes()
	require.NoError(t, err)
	derivation, err := packed.At(0)
	require.NoError(t, err)
	children, err := derivation.Children()
	require.NoError(t, err)

	first, err := children.At(0)
	require.NoError(t, err)
	require.Equal(t, uint16(99), first.SymbolID())
	require.Equal(t, uint16(2), first.NodeType())

	v, ok, err := first.Property("label")
	require.NoError(t, err)
	require.True(t, ok, "ReplaceNode only overwrites SymbolID/NodeType/span, properties survive")
	s, err := v.AsString()
	require.NoError(t, err)
	require.Equal(t, "one", s)
}

func TestEditor_MoveNode(t *testing.T) {
	g, child1, _ := buildTree(t)

	e := New(g)
	e.MoveNode(child1, 5, 7)

	out, err := e.Build()
	require.NoError(t, err)

	g2, err := graph.Open(out)
	require.NoError(t, err)
	root, err := g2.Root()
	require.NoError(t, err)
	packed, err := root.PackedNodes()
	require.NoError(t, err)
	derivation, err := packed.At(0)
	require.NoError(t, err)
	children, err := derivation.Children()
	require.NoError(t, err)
	first, err := children.At(0)
	require.NoError(t, err)

	require.Equal(t, uint32(5), first.SourceStart())
	require.Equal(t, uint32(12), first.SourceEnd())
	require.Equal(t, uint16(10), first.SymbolID(), "MoveNode changes only the span")
}

func TestEditor_UpdateAndRemoveProperty(t *testing.T) {
	g, child1, _ := buildTree(t)

	e := New(g)
	e.UpdateProperty(child1, "label", format.ValueString, []byte("changed"))

	extra := make([]byte, 4)
	binary.LittleEndian.PutUint32(extra, 42)
	e.UpdateProperty(child1, "extra", format.ValueU32, extra)

	root, err := g.Root()
	require.NoError(t, err)
	e.RemoveProperty(root.Offset(), "kind")

	out, err := e.Build()
	require.NoError(t, err)

	g2, err := graph.Open(out)
	require.NoError(t, err)
	root2, err := g2.Root()
	require.NoError(t, err)

	_, ok, err := root2.Property("kind")
	require.NoError(t, err)
	require.False(t, ok, "RemoveProperty drops the key from the rebuilt root")

	packed, err := root2.PackedNodes()
	require.NoError(t, err)
	derivation, err := packed.At(0)
	require.NoError(t, err)
	children, err := derivation.Children()
	require.NoError(t, err)
	first, err := children.At(0)
	require.NoError(t, err)

	v, ok, err := first.Property("label")
	require.NoError(t, err)
	require.True(t, ok)
	s, err := v.AsString()
	require.NoError(t, err)
	require.Equal(t, "changed", s)

	v2, ok, err := first.Property("extra")
	require.NoError(t, err)
	require.True(t, ok)
	n, err := v2.AsU32()
	require.NoError(t, err)
	require.Equal(t, uint32(42), n)
}

func TestEditor_InsertTopLevel(t *testing.T) {
	g, _, _ := buildTree(t)

	e := New(g)
	e.InsertTopLevel(NodeSpec{
		SymbolID:     500,
		NodeType:     9,
		SourceStart:  0,
		SourceLength: 2,
		RuleID:       1,
	})

	out, err := e.Build()
	require.NoError(t, err)

	g2, err := graph.Open(out)
	require.NoError(t, err)
	root, err := g2.Root()
	require.NoError(t, err)
	packed, err := root.PackedNodes()
	require.NoError(t, err)
	derivation, err := packed.At(0)
	require.NoError(t, err)
	children, err := derivation.Children()
	require.NoError(t, err)

	require.Equal(t, 3, children.Count(), "two original children plus the inserted node")

	last, err := children.At(2)
	require.NoError(t, err)
	require.Equal(t, uint16(500), last.SymbolID())
}

func TestEditor_DeepCopyPreservesSharedNode(t *testing.T) {
	// A symbol node reached through two derivations (SPPF sharing) must
	// be rebuilt exactly once and referenced by the same new offset
	// from both places.
	b := builder.New()

	sharedPacked := b.WritePackedNode(1, nil, nil)
	shared, err := b.WriteSymbolNode(20, 1, 0, 1, []uint32{sharedPacked}, nil)
	require.NoError(t, err)

	d1 := b.WritePackedNode(1, []uint32{shared}, nil)
	d2 := b.WritePackedNode(2, []uint32{shared}, nil)
	root, err := b.WriteSymbolNode(1, 1, 0, 1, []uint32{d1, d2}, nil)
	require.NoError(t, err)

	image, err := b.Build(root, []byte("a"))
	require.NoError(t, err)

	g, err := graph.Open(image)
	require.NoError(t, err)

	e := New(g)
	out, err := e.Build()
	require.NoError(t, err)

	g2, err := graph.Open(out)
	require.NoError(t, err)
	root2, err := g2.Root()
	require.NoError(t, err)

	packed, err := root2.PackedNodes()
	require.NoError(t, err)
	require.Equal(t, 2, packed.Count())

	der1, err := packed.At(0)
	require.NoError(t, err)
	der2, err := packed.At(1)
	require.NoError(t, err)

	c1, err := der1.Children()
	require.NoError(t, err)
	c2, err := der2.Children()
	require.NoError(t, err)

	n1, err := c1.At(0)
	require.NoError(t, err)
	n2, err := c2.At(0)
	require.NoError(t, err)

	require.Equal(t, n1.Offset(), n2.Offset(), "the shared node is rebuilt exactly once")
}
