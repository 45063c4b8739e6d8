package editor

import (
	"github.com/arborist-go/pforest/accessor"
	"github.com/arborist-go/pforest/builder"
	"github.com/arborist-go/pforest/errs"
	"github.com/arborist-go/pforest/format"
	"github.com/arborist-go/pforest/graph"
)

// NodeFields is the wholesale replacement payload for ReplaceNode.
type NodeFields struct {
	SymbolID     uint16
	NodeType     uint16
	SourceStart  uint32
	SourceLength uint32
}

// NodeSpec describes a brand-new subtree for InsertNode: a single
// derivation (RuleID) owning Children and Properties. It has no way to
// reference an existing image node, keeping newly inserted subtrees
// self-contained.
type NodeSpec struct {
	SymbolID     uint16
	NodeType     uint16
	SourceStart  uint32
	SourceLength uint32
	RuleID       uint16
	Properties   []builder.PropertyInput
	Children     []NodeSpec
}

// topLevelParent is the sentinel InsertNode target meaning "append to
// the rebuilt root's first derivation" rather than to any existing
// node found while walking the source graph.
const topLevelParent = 0

// Editor queues operations against a source graph.Graph and rebuilds a
// new image from them on Build. It is not safe for concurrent use.
type Editor struct {
	g *graph.Graph

	replacements map[uint32]NodeFields
	moves        map[uint32][2]uint32
	deleted      map[uint32]bool
	propUpdates  map[uint32]map[string]builder.PropertyInput
	propRemovals map[uint32]map[string]bool
	inserts      map[uint32][]NodeSpec
}

// New creates an Editor over g.
func New(g *graph.Graph) *Editor {
	return &Editor{
		g:            g,
		replacements: make(map[uint32]NodeFields),
		moves:        make(map[uint32][2]uint32),
		deleted:      make(map[uint32]bool),
		propUpdates:  make(map[uint32]map[string]builder.PropertyInput),
		propRemovals: make(map[uint32]map[string]bool),
		inserts:      make(map[uint32][]NodeSpec),
	}
}

// ReplaceNode schedules offset's SymbolID/NodeType/SourceStart/
// SourceLength to be overwritten wholesale with fields.
func (e *Editor) ReplaceNode(offset uint32, fields NodeFields) {
	e.replacements[offset] = fields
}

// DeleteNode schedules offset to be omitted from the rebuilt image.
// Every reference to it from a surviving parent's child list becomes
// the sentinel offset 0; every CPG edge targeting it is dropped.
func (e *Editor) DeleteNode(offset uint32) {
	e.deleted[offset] = true
}

// MoveNode schedules offset's source span to change to
// [start, start+length) without altering anything else about the node.
func (e *Editor) MoveNode(offset uint32, start, length uint32) {
	e.moves[offset] = [2]uint32{start, length}
}

// UpdateProperty schedules key on offset to be set to the given value,
// overwriting it if present or appending it if not.
func (e *Editor) UpdateProperty(offset uint32, key string, kind format.ValueKind, payload []byte) {
	if e.propUpdates[offset] == nil {
		e.propUpdates[offset] = make(map[string]builder.PropertyInput)
	}
	e.propUpdates[offset][key] = builder.PropertyInput{Key: key, Kind: kind, Payload: payload}
}

// RemoveProperty schedules key to be dropped from offset's property
// list, if present.
func (e *Editor) RemoveProperty(offset uint32, key string) {
	if e.propRemovals[offset] == nil {
		e.propRemovals[offset] = make(map[string]bool)
	}
	e.propRemovals[offset][key] = true
}

// InsertNode schedules spec to be appended as a new child of parent's
// first derivation. parent may be topLevelParent (0) to mean "append
// to the rebuilt root's first derivation" instead of any real node.
func (e *Editor) InsertNode(parent uint32, spec NodeSpec) {
	e.inserts[parent] = append(e.inserts[parent], spec)
}

// InsertTopLevel is the topLevelParent-targeted form of InsertNode.
func (e *Editor) InsertTopLevel(spec NodeSpec) {
	e.InsertNode(topLevelParent, spec)
}

// rebuilder carries the per-Build mutable state the recursive
// depth-first copy needs.
type rebuilder struct {
	e       *Editor
	b       *builder.Builder
	memo    map[uint32]uint32 // source offset -> new offset, once rebuilt
	deleted map[uint32]bool   // source offset -> confirmed deleted in output
	inFlight map[uint32]bool  // source offset currently being rebuilt (cycle guard)
}

// Build walks the source graph depth-first from its root, applies
// every queued operation at its target, deep-copies everything else,
// and returns the finished image. The source image's verbatim source
// text carries over unchanged; the editor only ever edits structure
// and properties.
func (e *Editor) Build() ([]byte, error) {
	root, err := e.g.Root()
	if err != nil {
		return nil, err
	}

	r := &rebuilder{
		e:        e,
		b:        builder.New(),
		memo:     make(map[uint32]uint32),
		deleted:  make(map[uint32]bool),
		inFlight: make(map[uint32]bool),
	}

	rootOffset, rootDeleted, err := r.rebuildRoot(root)
	if err != nil {
		return nil, err
	}
	if rootDeleted {
		return nil, errs.ErrInvalidArgument
	}

	sourceText, err := e.g.SourceText()
	if err != nil {
		return nil, err
	}

	return r.b.Build(rootOffset, sourceText)
}

// rebuildRoot is rebuild's entry point for the image root: its first
// derivation also receives any operations queued against
// topLevelParent, since the root has no real parent of its own for
// InsertNode to target.
func (r *rebuilder) rebuildRoot(node accessor.SymbolNode) (uint32, bool, error) {
	return r.rebuildNode(node, true)
}

// rebuild returns node's new offset and whether it was deleted. It
// memoizes by source offset so a node reached through more than one
// derivation (SPPF sharing) is rebuilt exactly once.
func (r *rebuilder) rebuild(node accessor.SymbolNode) (uint32, bool, error) {
	return r.rebuildNode(node, false)
}

func (r *rebuilder) rebuildNode(node accessor.SymbolNode, isRoot bool) (uint32, bool, error) {
	if off, ok := r.memo[node.Offset()]; ok {
		return off, false, nil
	}
	if r.deleted[node.Offset()] {
		return 0, true, nil
	}
	if r.e.deleted[node.Offset()] {
		r.deleted[node.Offset()] = true
		return 0, true, nil
	}

	r.inFlight[node.Offset()] = true
	defer delete(r.inFlight, node.Offset())

	symbolID, nodeType, start, length := node.SymbolID(), node.NodeType(), node.SourceStart(), node.SourceLength()
	if f, ok := r.e.replacements[node.Offset()]; ok {
		symbolID, nodeType, start, length = f.SymbolID, f.NodeType, f.SourceStart, f.SourceLength
	} else if mv, ok := r.e.moves[node.Offset()]; ok {
		start, length = mv[0], mv[1]
	}

	props, err := r.rebuildProperties(node)
	if err != nil {
		return 0, false, err
	}

	packed, err := node.PackedNodes()
	if err != nil {
		return 0, false, err
	}

	packedOffsets := make([]uint32, 0, packed.Count())
	first := true
	for derivation, err := range packed.All() {
		if err != nil {
			return 0, false, err
		}

		off, err := r.rebuildDerivation(node.Offset(), derivation, first, isRoot && first)
		if err != nil {
			return 0, false, err
		}
		packedOffsets = append(packedOffsets, off)
		first = false
	}

	newOffset, err := r.b.WriteSymbolNode(symbolID, nodeType, start, length, packedOffsets, props)
	if err != nil {
		return 0, false, err
	}
	r.memo[node.Offset()] = newOffset

	return newOffset, false, nil
}

func (r *rebuilder) rebuildProperties(node accessor.SymbolNode) ([]builder.PropertyInput, error) {
	updates := r.e.propUpdates[node.Offset()]
	removals := r.e.propRemovals[node.Offset()]

	orig, err := node.Properties()
	if err != nil {
		return nil, err
	}

	var out []builder.PropertyInput
	seen := make(map[string]bool)
	for _, p := range orig.All() {
		key, err := p.Key()
		if err != nil {
			return nil, err
		}
		seen[key] = true

		if removals != nil && removals[key] {
			continue
		}
		if updates != nil {
			if pi, ok := updates[key]; ok {
				out = append(out, pi)
				continue
			}
		}

		v, err := p.Value()
		if err != nil {
			return nil, err
		}
		out = append(out, builder.PropertyInput{Key: key, Kind: v.Kind(), Payload: v.Payload()})
	}

	for key, pi := range updates {
		if !seen[key] {
			out = append(out, pi)
		}
	}

	return out, nil
}

func (r *rebuilder) rebuildDerivation(ownerOffset uint32, derivation accessor.PackedNode, firstDerivation, spliceTopLevel bool) (uint32, error) {
	children, err := derivation.Children()
	if err != nil {
		return 0, err
	}

	childOffsets := make([]uint32, 0, children.Count())
	for child, err := range children.All() {
		if err != nil {
			return 0, err
		}

		off, deleted, err := r.rebuild(child)
		if err != nil {
			return 0, err
		}
		if deleted {
			childOffsets = append(childOffsets, 0)
			continue
		}
		childOffsets = append(childOffsets, off)
	}

	if firstDerivation {
		pending := r.e.inserts[ownerOffset]
		if spliceTopLevel {
			pending = append(pending, r.e.inserts[topLevelParent]...)
		}
		for _, spec := range pending {
			off, err := r.buildSpec(spec)
			if err != nil {
				return 0, err
			}
			childOffsets = append(childOffsets, off)
		}
	}

	edges, err := derivation.Edges()
	if err != nil {
		return 0, err
	}

	edgeOffsets := make([]uint32, 0, edges.Count())
	for edge, err := range edges.All() {
		if err != nil {
			return 0, err
		}

		targetOffset, skip, err := r.rebuildEdgeTarget(edge)
		if err != nil {
			return 0, err
		}
		if skip {
			continue
		}

		edgeProps, err := r.copyEdgeProperties(edge)
		if err != nil {
			return 0, err
		}

		off, err := r.b.WriteCPGEdge(edge.Kind(), targetOffset, edgeProps)
		if err != nil {
			return 0, err
		}
		edgeOffsets = append(edgeOffsets, off)
	}

	return r.b.WritePackedNode(derivation.RuleID(), childOffsets, edgeOffsets), nil
}

// rebuildEdgeTarget resolves a CPG edge's target, skipping the edge
// (skip=true) if the target was deleted or if resolving it would
// require completing a node whose rebuild is already in progress
// higher up the call stack — a genuine cycle the append-only image
// format cannot represent in a single depth-first pass.
func (r *rebuilder) rebuildEdgeTarget(edge accessor.CpgEdge) (uint32, bool, error) {
	target, err := edge.Target()
	if err != nil {
		return 0, false, err
	}

	if r.inFlight[target.Offset()] {
		return 0, true, nil
	}

	off, deleted, err := r.rebuild(target)
	if err != nil {
		return 0, false, err
	}
	if deleted {
		return 0, true, nil
	}

	return off, false, nil
}

func (r *rebuilder) copyEdgeProperties(edge accessor.CpgEdge) ([]builder.PropertyInput, error) {
	props, err := edge.Properties()
	if err != nil {
		return nil, err
	}

	var out []builder.PropertyInput
	for _, p := range props.All() {
		key, err := p.Key()
		if err != nil {
			return nil, err
		}
		v, err := p.Value()
		if err != nil {
			return nil, err
		}
		out = append(out, builder.PropertyInput{Key: key, Kind: v.Kind(), Payload: v.Payload()})
	}

	return out, nil
}

// buildSpec builds a brand-new, self-contained subtree for an inserted
// node and returns its offset.
func (r *rebuilder) buildSpec(spec NodeSpec) (uint32, error) {
	childOffsets := make([]uint32, 0, len(spec.Children))
	for _, c := range spec.Children {
		off, err := r.buildSpec(c)
		if err != nil {
			return 0, err
		}
		childOffsets = append(childOffsets, off)
	}

	packedOffset := r.b.WritePackedNode(spec.RuleID, childOffsets, nil)

	return r.b.WriteSymbolNode(spec.SymbolID, spec.NodeType, spec.SourceStart, spec.SourceLength, []uint32{packedOffset}, spec.Properties)
}
