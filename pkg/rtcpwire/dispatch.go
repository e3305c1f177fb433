package rtcpwire

import (
	"fmt"

	"github.com/arzzra/rtpreplay/internal/descriptor"
)

// Builder produces the wire bytes for one RTCP sub-packet from its
// descriptor group (the node whose Children are [typeToken, block...]).
type Builder func(group *descriptor.Node) ([]byte, error)

// dispatchTable is the ordered, single source of truth mapping an RTCP
// TYPE keyword to its builder. Adding a new sub-type only requires a new
// entry here.
var dispatchTable = []struct {
	name    string
	builder Builder
}{
	{"SDES", BuildSDES},
	{"RR", BuildRR},
	{"SR", BuildSR},
	{"BYE", BuildBYE},
	{"APP", BuildAPP},
}

// BuildCompound walks the top-level nodes produced by descriptor.Parse of
// a full RTCP body and concatenates the bytes of each top-level group's
// builder, chosen by the first typed child of that group. Compound
// packets are a concatenation of independent sub-packets; no additional
// wrapping is added.
func BuildCompound(nodes []*descriptor.Node) ([]byte, error) {
	var out []byte
	for _, n := range nodes {
		if !n.IsGroup() {
			return nil, fmt.Errorf("rtcpwire: unexpected bare token at top level")
		}
		b, err := buildGroup(n)
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}

func buildGroup(group *descriptor.Node) ([]byte, error) {
	typeName, err := firstTypeName(group)
	if err != nil {
		return nil, err
	}
	for _, entry := range dispatchTable {
		if entry.name == typeName {
			return entry.builder(group)
		}
	}
	return nil, fmt.Errorf("rtcpwire: unknown RTCP sub-type %q", typeName)
}

func firstTypeName(group *descriptor.Node) (string, error) {
	for _, child := range group.Children {
		if !child.IsGroup() && !child.HasValue {
			return child.Type, nil
		}
	}
	return "", fmt.Errorf("rtcpwire: RTCP group has no type name")
}
