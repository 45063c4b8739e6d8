// Package query is a minimal illustrative shim: it recognizes two
// query predicates against a root SymbolNode and returns a list of
// matching node offsets. It is not a general-purpose graph query
// language — that is explicitly out of scope — only the shape of the
// input/output contract a richer engine would need to honor.
package query
