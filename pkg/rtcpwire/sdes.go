package rtcpwire

import (
	"encoding/binary"
	"fmt"

	"github.com/arzzra/rtpreplay/internal/descriptor"
)

// sdesTypeCodes maps SDES item names to their RFC 3550 §6.5 type octet.
var sdesTypeCodes = map[string]byte{
	"end":   0,
	"cname": 1,
	"name":  2,
	"email": 3,
	"phone": 4,
	"loc":   5,
	"tool":  6,
	"note":  7,
	"priv":  8,
}

// BuildSDES assembles a Source Description packet: a 4-byte common header
// followed by one chunk per block (SSRC + items, end-terminated, padded to
// a 4-byte boundary).
func BuildSDES(group *descriptor.Node) ([]byte, error) {
	hp, blocks, err := splitGroup(group)
	if err != nil {
		return nil, err
	}

	buf := header(hp.padding, uint8(len(blocks)), PT_SDES, 0)
	for _, block := range blocks {
		chunk, err := sdesChunk(block)
		if err != nil {
			return nil, err
		}
		buf = append(buf, chunk...)
	}

	return finalize(buf, hp, len(blocks)), nil
}

// sdesChunk writes one SSRC + item sequence, always terminated by an end
// marker and padded to the next 4-byte boundary, even when no items were
// supplied (an items-only-empty chunk is still 8 bytes: SSRC + terminator +
// 3 pad bytes).
func sdesChunk(block *descriptor.Node) ([]byte, error) {
	srcNode := block.First("src")
	if srcNode == nil {
		return nil, fmt.Errorf("rtcpwire: SDES chunk missing src=")
	}
	ssrc, err := srcNode.Uint64()
	if err != nil {
		return nil, err
	}

	chunk := make([]byte, 4)
	binary.BigEndian.PutUint32(chunk, uint32(ssrc))

	for _, item := range block.Children {
		if item.Type == "src" || item.IsGroup() {
			continue
		}
		code, ok := sdesTypeCodes[item.Type]
		if !ok {
			return nil, fmt.Errorf("rtcpwire: unknown SDES item %q", item.Type)
		}
		data, err := item.String()
		if err != nil {
			return nil, fmt.Errorf("rtcpwire: SDES item %q: %w", item.Type, err)
		}
		if len(data) > 255 {
			return nil, fmt.Errorf("rtcpwire: SDES item %q exceeds 255 bytes", item.Type)
		}
		chunk = append(chunk, code, byte(len(data)))
		chunk = append(chunk, data...)
	}

	chunk = append(chunk, 0) // end marker
	for len(chunk)%4 != 0 {
		chunk = append(chunk, 0)
	}

	return chunk, nil
}
