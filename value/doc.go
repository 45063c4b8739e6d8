// Package value implements the read side of the property-value tagged
// union: a Value is a borrowed view over a ValueHeader plus its payload
// bytes, exposing a typed accessor per declared format.ValueKind. The
// write side (appending a ValueHeader and its payload) lives on
// builder.Builder.
package value
