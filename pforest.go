// Package pforest provides a persistent, zero-copy binary container
// for a Shared Packed Parse Forest overlaid with a Code Property
// Graph: every syntactic ambiguity a parser produced, plus derived
// semantic edges (control flow, data flow, calls, type relations) and
// arbitrary per-node / per-edge metadata, all addressed by 32-bit byte
// offsets into a single self-describing image.
//
// # Basic usage
//
// Building an image:
//
//	b := builder.New()
//	leaf := b.WritePackedNode(1, nil, nil)
//	root, _ := b.WriteSymbolNode(1, 100, 0, 11, []uint32{leaf}, []builder.PropertyInput{
//	    {Key: "Value", Kind: format.ValueString, Payload: []byte("hello world")},
//	})
//	image, _ := b.Build(root, []byte("hello world"))
//
// Opening and navigating it:
//
//	g, _ := pforest.Open(image)
//	root, _ := g.Root()
//	v, ok, _ := root.Property("Value")
//
// # Package structure
//
// This file provides thin top-level wrappers around the builder and
// graph packages for the most common entry points. For the full
// accessor/editor/interval surface, use those packages directly.
package pforest

import (
	"github.com/arborist-go/pforest/builder"
	"github.com/arborist-go/pforest/graph"
)

// NewBuilder creates a new image builder. It is a thin wrapper around
// builder.New, kept here so callers that only need the common path
// need not import the builder package by name.
func NewBuilder() *builder.Builder {
	return builder.New()
}

// Open opens an in-memory image and returns a read-only Graph façade.
// data is borrowed, not copied; the caller must keep it alive for the
// Graph's lifetime.
func Open(data []byte) (*graph.Graph, error) {
	return graph.Open(data)
}

// OpenFile opens an image from a file via a read-only memory map.
func OpenFile(path string) (*graph.Graph, error) {
	return graph.OpenFile(path)
}
