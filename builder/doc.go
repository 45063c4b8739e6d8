// Package builder implements a single-writer incremental image
// constructor: a growing byte buffer, a string intern map, and the
// seven write operations, finished by back-patching the 32-byte header
// once the root offset and source text are known.
//
// Builder follows the append-as-you-go, back-patch-on-Finish shape
// mebo's blob.NumericEncoder uses: every write returns the offset of
// the record it just appended, and child/edge/property lists are
// always written before the fixed-size record that references them so
// the returned offset is the record's own position.
package builder
