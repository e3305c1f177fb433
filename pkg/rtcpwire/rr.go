package rtcpwire

import (
	"encoding/binary"
	"fmt"

	"github.com/arzzra/rtpreplay/internal/descriptor"
)

// BuildRR assembles a Receiver Report packet: an 8-byte header (common +
// reporter SSRC) followed by one 24-byte report block per sub-list.
func BuildRR(group *descriptor.Node) ([]byte, error) {
	hp, blocks, err := splitGroup(group)
	if err != nil {
		return nil, err
	}
	if len(blocks) == 0 {
		return nil, fmt.Errorf("rtcpwire: RR requires a reporter SSRC block")
	}

	reporter, err := requireUint(blocks[0], "ssrc")
	if err != nil {
		return nil, err
	}

	buf := header(hp.padding, uint8(len(blocks)-1), PT_RR, 0)
	buf = binary.BigEndian.AppendUint32(buf, uint32(reporter))

	for _, block := range blocks[1:] {
		rb, err := reportBlock(block)
		if err != nil {
			return nil, err
		}
		buf = append(buf, rb...)
	}

	return finalize(buf, hp, len(blocks)-1), nil
}

// reportBlock encodes one 24-byte RR/SR report block:
// ssrc:32, fraction:8, lost:24, last_seq:32, jit:32, lsr:32, dlsr:32.
func reportBlock(block *descriptor.Node) ([]byte, error) {
	ssrc, err := requireUint(block, "ssrc")
	if err != nil {
		return nil, err
	}
	fraction, err := optionalUint(block, "fraction", 0)
	if err != nil {
		return nil, err
	}
	lost, err := optionalUint(block, "lost", 0)
	if err != nil {
		return nil, err
	}
	lastSeq, err := optionalUint(block, "last_seq", 0)
	if err != nil {
		return nil, err
	}
	jit, err := optionalUint(block, "jit", 0)
	if err != nil {
		return nil, err
	}
	lsr, err := optionalUint(block, "lsr", 0)
	if err != nil {
		return nil, err
	}
	dlsr, err := optionalUint(block, "dlsr", 0)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 24)
	binary.BigEndian.PutUint32(buf[0:4], uint32(ssrc))

	// fraction(8) | lost(24), packed into one 32-bit word. fraction is
	// taken as the wire byte directly (0-255 representing n/256 of unity);
	// see DESIGN.md for why this reading was chosen over a further ×256.
	word := (uint32(fraction)&0xff)<<24 | (uint32(lost) & 0x00ffffff)
	binary.BigEndian.PutUint32(buf[4:8], word)

	binary.BigEndian.PutUint32(buf[8:12], uint32(lastSeq))
	binary.BigEndian.PutUint32(buf[12:16], uint32(jit))
	binary.BigEndian.PutUint32(buf[16:20], uint32(lsr))
	binary.BigEndian.PutUint32(buf[20:24], uint32(dlsr))

	return buf, nil
}

func requireUint(block *descriptor.Node, name string) (uint64, error) {
	n := block.First(name)
	if n == nil {
		return 0, fmt.Errorf("rtcpwire: missing %q", name)
	}
	return n.Uint64()
}

func optionalUint(block *descriptor.Node, name string, def uint64) (uint64, error) {
	n := block.First(name)
	if n == nil {
		return def, nil
	}
	return n.Uint64()
}
