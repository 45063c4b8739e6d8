// Package format defines the small closed enums shared across the image
// schema: CPG edge kinds and property value kinds. They are encoded as
// plain integers in the binary layout, never as reflection.
package format

type (
	// EdgeKind identifies the semantic relation a CpgEdge represents.
	EdgeKind uint16

	// ValueKind identifies the tagged-union payload a property value
	// carries.
	ValueKind uint16
)

const (
	EdgeASTChild    EdgeKind = 1 // EdgeASTChild mirrors syntactic parent/child structure.
	EdgeControlFlow EdgeKind = 2 // EdgeControlFlow represents a control-flow successor edge.
	EdgeDataFlow    EdgeKind = 3 // EdgeDataFlow represents a data-flow def/use edge.
	EdgeCalls       EdgeKind = 4 // EdgeCalls represents a call-site to callee edge.
	EdgeType        EdgeKind = 5 // EdgeType represents a type relation edge.
)

const (
	ValueString ValueKind = 1 // ValueString is a raw UTF-8 payload.
	ValueI32    ValueKind = 2
	ValueU32    ValueKind = 3
	ValueI64    ValueKind = 4
	ValueU64    ValueKind = 5
	ValueF32    ValueKind = 6
	ValueF64    ValueKind = 7
	ValueBool   ValueKind = 8 // ValueBool is stored as a single 0/1 byte.
	ValueBytes  ValueKind = 9 // ValueBytes is an opaque byte slice.
)

func (k EdgeKind) String() string {
	switch k {
	case EdgeASTChild:
		return "ASTChild"
	case EdgeControlFlow:
		return "ControlFlow"
	case EdgeDataFlow:
		return "DataFlow"
	case EdgeCalls:
		return "Calls"
	case EdgeType:
		return "Type"
	default:
		return "Unknown"
	}
}

func (k ValueKind) String() string {
	switch k {
	case ValueString:
		return "String"
	case ValueI32:
		return "I32"
	case ValueU32:
		return "U32"
	case ValueI64:
		return "I64"
	case ValueU64:
		return "U64"
	case ValueF32:
		return "F32"
	case ValueF64:
		return "F64"
	case ValueBool:
		return "Bool"
	case ValueBytes:
		return "Bytes"
	default:
		return "Unknown"
	}
}

// IsValid reports whether k is one of the nine declared value kinds.
func (k ValueKind) IsValid() bool {
	return k >= ValueString && k <= ValueBytes
}

// IsValid reports whether k is one of the five declared edge kinds.
func (k EdgeKind) IsValid() bool {
	return k >= EdgeASTChild && k <= EdgeType
}
