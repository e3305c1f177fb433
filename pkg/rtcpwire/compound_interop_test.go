package rtcpwire

import (
	"testing"

	"github.com/arzzra/rtpreplay/internal/descriptor"
	"github.com/pion/rtcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests decode our hand-written compound packets through
// github.com/pion/rtcp to confirm a real third-party RTCP stack agrees
// with our framing, not just our own code.

func TestCompoundInteropDecodesSRAndBYE(t *testing.T) {
	nodes, err := descriptor.Parse(`(SR (ssrc=0xdeadbeef psent=50 osent=200) (ssrc=0x11111111 fraction=0 lost=0 last_seq=50 jit=0 lsr=0 dlsr=0)) (BYE (ssrc=0xdeadbeef))`)
	require.NoError(t, err)

	buf, err := BuildCompound(nodes)
	require.NoError(t, err)

	packets, err := rtcp.Unmarshal(buf)
	require.NoError(t, err)
	require.Len(t, packets, 2)

	sr, ok := packets[0].(*rtcp.SenderReport)
	require.True(t, ok)
	assert.Equal(t, uint32(0xdeadbeef), sr.SSRC)
	require.Len(t, sr.Reports, 1)
	assert.Equal(t, uint32(0x11111111), sr.Reports[0].SSRC)

	bye, ok := packets[1].(*rtcp.Goodbye)
	require.True(t, ok)
	require.Len(t, bye.Sources, 1)
	assert.Equal(t, uint32(0xdeadbeef), bye.Sources[0])
}

func TestCompoundInteropDecodesSDES(t *testing.T) {
	nodes, err := descriptor.Parse(`(SDES (src=0x01020304 cname="host@example" tool="rtpsend"))`)
	require.NoError(t, err)

	buf, err := BuildCompound(nodes)
	require.NoError(t, err)

	packets, err := rtcp.Unmarshal(buf)
	require.NoError(t, err)
	require.Len(t, packets, 1)

	sdes, ok := packets[0].(*rtcp.SourceDescription)
	require.True(t, ok)
	require.Len(t, sdes.Chunks, 1)
	assert.Equal(t, uint32(0x01020304), sdes.Chunks[0].Source)
}

func TestCompoundInteropDecodesRR(t *testing.T) {
	nodes, err := descriptor.Parse(`(RR (ssrc=1) (ssrc=2 fraction=0 lost=0 last_seq=50 jit=0 lsr=0 dlsr=0))`)
	require.NoError(t, err)

	buf, err := BuildCompound(nodes)
	require.NoError(t, err)

	packets, err := rtcp.Unmarshal(buf)
	require.NoError(t, err)
	require.Len(t, packets, 1)

	rr, ok := packets[0].(*rtcp.ReceiverReport)
	require.True(t, ok)
	assert.Equal(t, uint32(1), rr.SSRC)
	require.Len(t, rr.Reports, 1)
	assert.Equal(t, uint32(2), rr.Reports[0].SSRC)
}
