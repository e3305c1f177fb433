package rtcpwire

import (
	"encoding/binary"
	"fmt"

	"github.com/arzzra/rtpreplay/internal/descriptor"
)

// BuildBYE assembles a Goodbye packet: a 4-byte common header followed by
// one 32-bit SSRC per sub-list. Zero SSRCs yields a 4-byte packet with
// length 0.
func BuildBYE(group *descriptor.Node) ([]byte, error) {
	hp, blocks, err := splitGroup(group)
	if err != nil {
		return nil, err
	}

	buf := header(hp.padding, uint8(len(blocks)), PT_BYE, 0)
	for _, block := range blocks {
		ssrc, err := requireUint(block, "ssrc")
		if err != nil {
			return nil, fmt.Errorf("rtcpwire: BYE block: %w", err)
		}
		buf = binary.BigEndian.AppendUint32(buf, uint32(ssrc))
	}

	return finalize(buf, hp, len(blocks)), nil
}
