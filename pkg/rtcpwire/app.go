package rtcpwire

import "github.com/arzzra/rtpreplay/internal/descriptor"

// BuildAPP is reserved: per spec §4.7 it always emits an empty packet.
// Callers should treat a non-error, zero-length result as expected and may
// choose to log a warning rather than send nothing.
func BuildAPP(group *descriptor.Node) ([]byte, error) {
	return nil, nil
}
