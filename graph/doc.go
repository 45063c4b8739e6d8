// Package graph implements the top-level read-only façade: opening an
// image from memory or a memory-mapped file, walking it as the
// overlaid SPPF/CPG it represents, and answering spatial
// point-containment queries with an optional bounded result cache.
package graph
