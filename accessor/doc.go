// Package accessor implements a borrow-scoped view protocol:
// SymbolNode, PackedNode, CpgEdge, and Property accessors over a
// buffer.Buffer, plus the collection types used to iterate the
// offset-lists and inline property-lists those records reference.
//
// Every accessor wraps a *buffer.Buffer and a handful of already-parsed
// fields. The collection types decode their offset or property list
// into a freshly allocated slice when they are resolved; beyond that
// and the iterator closures, accessors do not allocate. None of them
// outlive
// the Buffer they were built from (using one after the Buffer is
// disposed is a caller bug — ErrUseAfterFree names it — and the Go
// idiom for preventing it is simply not retaining the Buffer past its
// owner's lifetime, which the accessor types do not attempt to enforce
// beyond that borrowing discipline).
package accessor
