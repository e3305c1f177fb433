// Package rtcpwire builds RTCP compound sub-packets (SR, RR, SDES, BYE, APP)
// from parsed descriptor trees, per RFC 3550 §6. Like rtpwire, it is a pure
// codec: no logging, no I/O, errors only.
package rtcpwire

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/arzzra/rtpreplay/internal/descriptor"
)

// RFC 3550 §12.2 payload type assignments.
const (
	PT_SR   = 200
	PT_RR   = 201
	PT_SDES = 202
	PT_BYE  = 203
	PT_APP  = 204
)

const ntpEpochOffset = 2208988800 // seconds between 1900-01-01 and 1970-01-01

// header writes the 4-byte common RTCP header: V(2)|P(1)|count(5), PT(8),
// length(16). length is in 32-bit words minus one of the whole sub-packet.
func header(padding bool, count uint8, pt uint8, length uint16) []byte {
	buf := make([]byte, 4)
	buf[0] = 2<<6 | boolBit(padding)<<5 | count&0x1f
	buf[1] = pt
	binary.BigEndian.PutUint16(buf[2:4], length)
	return buf
}

func boolBit(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// headerParams holds the TYPE-level overrides shared by every builder:
// p (padding), count, and len (total length in 32-bit words minus one).
type headerParams struct {
	padding  bool
	count    *uint8
	length   *uint16
}

// splitGroup separates a top-level RTCP group's children into the
// recognized header params and the ordered list of block sub-groups,
// skipping the leading type-name token (e.g. "SDES") that identifies it.
func splitGroup(group *descriptor.Node) (headerParams, []*descriptor.Node, error) {
	var hp headerParams
	var blocks []*descriptor.Node

	for _, child := range group.Children {
		if child.IsGroup() {
			blocks = append(blocks, child)
			continue
		}
		if !child.HasValue {
			// bare token: the TYPE name itself, already consumed by the dispatcher.
			continue
		}
		switch child.Type {
		case "p":
			n, err := child.Uint64()
			if err != nil {
				return hp, nil, err
			}
			hp.padding = n != 0
		case "count":
			n, err := child.Uint64()
			if err != nil {
				return hp, nil, err
			}
			c := uint8(n)
			hp.count = &c
		case "len":
			n, err := child.Uint64()
			if err != nil {
				return hp, nil, err
			}
			l := uint16(n)
			hp.length = &l
		default:
			return hp, nil, fmt.Errorf("rtcpwire: unknown RTCP header field %q", child.Type)
		}
	}
	return hp, blocks, nil
}

// finalize overwrites the header's count/length fields with explicit
// overrides (if any) and returns the finished packet.
func finalize(buf []byte, hp headerParams, defaultCount int) []byte {
	count := uint8(defaultCount)
	if hp.count != nil {
		count = *hp.count
	}
	length := uint16((len(buf) - 4) / 4)
	if hp.length != nil {
		length = *hp.length
	}
	buf[0] = 2<<6 | boolBit(hp.padding)<<5 | count&0x1f
	binary.BigEndian.PutUint16(buf[2:4], length)
	return buf
}

// NTPNow returns the current time as a 64-bit NTP timestamp (seconds since
// 1900-01-01 in the high 32 bits, fraction in the low 32 bits), using the
// same shift-and-subtract factorization as the original tool's usec2ntp
// rather than a full multiply/divide.
func NTPNow() (sec, frac uint32) {
	return NTPFromTime(time.Now())
}

// NTPFromTime converts a wall-clock instant to an NTP 64-bit timestamp.
func NTPFromTime(t time.Time) (sec, frac uint32) {
	sec = uint32(t.Unix() + ntpEpochOffset)
	usec := uint64(t.Nanosecond() / 1000)
	frac = usec2ntp(usec)
	return sec, frac
}

// usec2ntp converts a microsecond count (0..999999) to the NTP fractional
// field via (usec<<12)+(usec<<8)-((usec*1825)>>5), the approximation used
// by the original rtpsend tool (max error ~3e-7).
func usec2ntp(usec uint64) uint32 {
	t := (usec * 1825) >> 5
	return uint32((usec << 12) + (usec << 8) - t)
}
