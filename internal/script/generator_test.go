package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRTPPacket(t *testing.T) {
	pkt, err := Generate("0.0 RTP pt=96 seq=1 ts=0 ssrc=0x01020304 data=aa", 1)
	require.NoError(t, err)
	assert.Equal(t, SinkRTP, pkt.Sink)
	assert.Equal(t, []byte{0x80, 0x60, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x01, 0x02, 0x03, 0x04, 0xaa}, pkt.Data)
}

func TestGenerateRTCPPacket(t *testing.T) {
	pkt, err := Generate(`0.0 RTCP (BYE (ssrc=0x01020304))`, 1)
	require.NoError(t, err)
	assert.Equal(t, SinkRTCP, pkt.Sink)
	// one SSRC block sets SC=1 in the common header (0x81).
	assert.Equal(t, []byte{0x81, 0xcb, 0x00, 0x01, 0x01, 0x02, 0x03, 0x04}, pkt.Data)
}

func TestGenerateScheduledTime(t *testing.T) {
	pkt, err := Generate("1.500000 RTP pt=0", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1500000000), pkt.Time.Nanoseconds())
}

func TestGenerateUnknownTypeIsSyntaxError(t *testing.T) {
	_, err := Generate("1.0 XYZ foo", 5)
	var synErr *SyntaxError
	require.ErrorAs(t, err, &synErr)
	assert.Equal(t, 5, synErr.Line)
}

func TestGenerateMalformedTimePrefix(t *testing.T) {
	_, err := Generate("notatime RTP pt=0", 1)
	var synErr *SyntaxError
	require.ErrorAs(t, err, &synErr)
}

func TestGenerateRTPWithoutBody(t *testing.T) {
	pkt, err := Generate("0.0 RTP", 1)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x80, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}, pkt.Data)
}
