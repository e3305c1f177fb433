package rtcpwire

import (
	"encoding/binary"
	"fmt"

	"github.com/arzzra/rtpreplay/internal/descriptor"
)

// BuildSR assembles a Sender Report packet: a 4-byte common header, a
// 24-byte sender-info block, then one 24-byte report block per remaining
// sub-list (header length 28 total before any report blocks).
func BuildSR(group *descriptor.Node) ([]byte, error) {
	hp, blocks, err := splitGroup(group)
	if err != nil {
		return nil, err
	}
	if len(blocks) == 0 {
		return nil, fmt.Errorf("rtcpwire: SR requires a sender-info block")
	}

	info, err := senderInfo(blocks[0])
	if err != nil {
		return nil, err
	}

	buf := header(hp.padding, uint8(len(blocks)-1), PT_SR, 0)
	buf = append(buf, info...)

	for _, block := range blocks[1:] {
		rb, err := reportBlock(block)
		if err != nil {
			return nil, err
		}
		buf = append(buf, rb...)
	}

	return finalize(buf, hp, len(blocks)-1), nil
}

// senderInfo encodes the 24-byte sender-info block: ssrc, ntp_sec, ntp_frac,
// rtp_ts, psent, osent. NTP fields default to the current time unless
// overridden via ntp= (packed sec<<32|frac), ts=, psent=, osent=.
func senderInfo(block *descriptor.Node) ([]byte, error) {
	ssrc, err := requireUint(block, "ssrc")
	if err != nil {
		return nil, err
	}

	ntpSec, ntpFrac := NTPNow()
	if n := block.First("ntp"); n != nil {
		v, err := n.Uint64()
		if err != nil {
			return nil, err
		}
		ntpSec = uint32(v >> 32)
		ntpFrac = uint32(v)
	}

	rtpTS, err := optionalUint(block, "ts", 0)
	if err != nil {
		return nil, err
	}
	psent, err := optionalUint(block, "psent", 0)
	if err != nil {
		return nil, err
	}
	osent, err := optionalUint(block, "osent", 0)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 24)
	binary.BigEndian.PutUint32(buf[0:4], uint32(ssrc))
	binary.BigEndian.PutUint32(buf[4:8], ntpSec)
	binary.BigEndian.PutUint32(buf[8:12], ntpFrac)
	binary.BigEndian.PutUint32(buf[12:16], uint32(rtpTS))
	binary.BigEndian.PutUint32(buf[16:20], uint32(psent))
	binary.BigEndian.PutUint32(buf[20:24], uint32(osent))
	return buf, nil
}
