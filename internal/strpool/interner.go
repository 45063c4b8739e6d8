// Package strpool implements the Builder-side string interning
// discipline that strings are not a separate image section,
// they are simply bytes appended during Build, reached only through the
// offsets that name them.
//
// The first occurrence of a string is appended as UTF-8 followed by a
// NUL terminator; its offset is recorded. Subsequent occurrences of an
// equal string return the recorded offset without writing anything.
// Interner hashes with xxhash the way mebo's metric-ID collision
// tracker hashes metric names, keeping a small bucket list per hash so
// that a collision between two different strings is handled correctly
// instead of silently aliased.
package strpool

import "github.com/arborist-go/pforest/internal/hash"

// Appender is the subset of builder.Builder the Interner needs: append
// raw bytes to the growing image and learn the offset they landed at.
type Appender interface {
	AppendBytes(data []byte) uint32
}

type bucketEntry struct {
	s      string
	offset uint32
}

// Interner deduplicates strings by content, handed out as an offset
// into whatever Appender is writing the image. It is not safe for
// concurrent use; the Builder that owns it is single-writer.
type Interner struct {
	buckets map[uint64][]bucketEntry
}

// New creates an empty Interner.
func New() *Interner {
	return &Interner{buckets: make(map[uint64][]bucketEntry)}
}

// Intern returns the offset of s within the image written through a.
// The first call for a given string appends it (UTF-8 bytes + NUL) and
// records the offset; later calls with an equal string return the
// recorded offset without writing.
func (in *Interner) Intern(a Appender, s string) uint32 {
	h := hash.ID(s)
	for _, entry := range in.buckets[h] {
		if entry.s == s {
			return entry.offset
		}
	}

	data := make([]byte, len(s)+1)
	copy(data, s)
	// data[len(s)] is already the zero terminator byte.
	offset := a.AppendBytes(data)

	in.buckets[h] = append(in.buckets[h], bucketEntry{s: s, offset: offset})

	return offset
}

// Len returns the number of distinct strings interned so far.
func (in *Interner) Len() int {
	n := 0
	for _, bucket := range in.buckets {
		n += len(bucket)
	}

	return n
}

// Reset clears all interned strings, allowing the Interner to be reused.
func (in *Interner) Reset() {
	for k := range in.buckets {
		delete(in.buckets, k)
	}
}
