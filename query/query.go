package query

import (
	"strconv"
	"strings"

	"github.com/arborist-go/pforest/accessor"
)

// symbolIDPrefix and nodeTypePrefix are the two predicate forms this
// shim recognizes.
const (
	symbolIDPrefix = "symbolId:"
	nodeTypePrefix = "nodeType:"
)

// Match evaluates q against root and returns the offsets of the nodes
// it matches. Only two predicate shapes are recognized:
//
//	symbolId: <u16>
//	nodeType: <u16>
//
// Either matches and returns []uint32{root.Offset()} exactly when
// root's corresponding field equals the parsed value, and an empty
// slice otherwise. Any other query string (including malformed
// numbers on a recognized prefix) falls back to the default: a single
// match on the root node's offset.
func Match(root accessor.SymbolNode, q string) []uint32 {
	q = strings.TrimSpace(q)

	if rest, ok := strings.CutPrefix(q, symbolIDPrefix); ok {
		want, err := parseU16(rest)
		if err != nil {
			return []uint32{root.Offset()}
		}
		if root.SymbolID() == want {
			return []uint32{root.Offset()}
		}

		return nil
	}

	if rest, ok := strings.CutPrefix(q, nodeTypePrefix); ok {
		want, err := parseU16(rest)
		if err != nil {
			return []uint32{root.Offset()}
		}
		if root.NodeType() == want {
			return []uint32{root.Offset()}
		}

		return nil
	}

	return []uint32{root.Offset()}
}

func parseU16(s string) (uint16, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 16)
	if err != nil {
		return 0, err
	}

	return uint16(v), nil
}
