// Package buffer implements a bounds-checked, read-only view over a
// pforest image held in a byte slice borrowed from the caller.
//
// Every method is a pure function over the underlying byte slice — no
// interior mutation, no allocation beyond what's needed to copy a fixed
// record into a value type. Any number of goroutines may share a single
// Buffer; there is nothing to synchronize.
package buffer
