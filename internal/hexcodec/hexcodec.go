// Package hexcodec decodes whitespace-tolerant hex strings, the way script
// "data="/"ext_data=" fields are written in the wire scripts this tool
// replays.
package hexcodec

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Decode strips embedded whitespace from s and decodes the remainder as hex.
// An odd number of hex digits is an error, matching the original tool's
// rejection of a trailing nibble.
func Decode(s string) ([]byte, error) {
	stripped := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n', '\v', '\f':
			return -1
		}
		return r
	}, s)

	if len(stripped)%2 != 0 {
		return nil, fmt.Errorf("hexcodec: odd number of hex digits in %q", s)
	}

	out, err := hex.DecodeString(stripped)
	if err != nil {
		return nil, fmt.Errorf("hexcodec: %w", err)
	}
	return out, nil
}

// Encode renders b as a contiguous lowercase hex string, with no embedded
// whitespace, the inverse of Decode.
func Encode(b []byte) string {
	return hex.EncodeToString(b)
}
