// Package schema defines the fixed-size binary record layouts, the
// header magic/version/flags, and the enums that make up a pforest
// image. It holds no behavior beyond byte-level (de)serialization:
// parsing and validation of the records this package defines.
//
// # Image layout
//
// An image is a contiguous byte sequence. Every cross-reference inside
// it is a 32-bit byte offset from the start of the image (an "offset"),
// never a pointer. The header is always the first HeaderSize bytes;
// every other section is reachable only through an offset stored
// somewhere in the header or in another record — section order in the
// file is not normative.
//
//	┌───────────────────────────────┐
//	│ Header (32 bytes, fixed)       │
//	├───────────────────────────────┤
//	│ Packed nodes, CPG edges, lists │
//	│ Symbol nodes                   │
//	│ Properties, values, strings    │
//	│ Source text                    │
//	│ Interval index (optional)      │
//	└───────────────────────────────┘
//
// All integers are little-endian. All records are packed without
// padding beyond their declared size. The Builder appends records at
// whatever offset the image has reached, so a record is not
// necessarily aligned to 4 bytes.
package schema
