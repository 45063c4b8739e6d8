// Package editor implements a queued-operation image rebuilder:
// callers queue Insert/Replace/Delete/Move/UpdateProperty/
// RemoveProperty operations keyed by a node's offset in a source
// image, then Build walks the source graph depth-first from its root,
// applying each operation where it targets a node and copying every
// other node's full subtree (derivations, children, properties, and
// CPG edges) into a brand new image.
//
// This is a full depth-first deep copy, not a shallow per-node copy: a
// shared node reached through two different derivations is rebuilt
// once and referenced by its new offset from both places, preserving
// the graph's own node sharing.
package editor
