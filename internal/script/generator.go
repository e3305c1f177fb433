package script

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/arzzra/rtpreplay/internal/descriptor"
	"github.com/arzzra/rtpreplay/pkg/rtcpwire"
	"github.com/arzzra/rtpreplay/pkg/rtpwire"
)

// Sink tags which transmit handle a generated packet belongs to.
type Sink int

const (
	SinkRTP  Sink = 0
	SinkRTCP Sink = 1
)

// Packet is one fully-built, ready-to-send datagram with the script time
// (the line's own "<sec>.<usec>" prefix) it's scheduled for.
type Packet struct {
	Time time.Duration
	Sink Sink
	Data []byte
}

// Generate parses one logical script line of the form
// "<sec>.<usec> <TYPE> <body>" and builds the corresponding packet.
// Any failure is a *SyntaxError carrying lineNo and the offending line.
func Generate(line string, lineNo int) (Packet, error) {
	sec, usec, rest, err := splitTimePrefix(line)
	if err != nil {
		return Packet{}, &SyntaxError{Line: lineNo, Text: line, Err: err}
	}

	fields := strings.SplitN(strings.TrimSpace(rest), " ", 2)
	if len(fields) == 0 || fields[0] == "" {
		return Packet{}, &SyntaxError{Line: lineNo, Text: line, Err: fmt.Errorf("missing packet type")}
	}

	typeKeyword := fields[0]
	body := ""
	if len(fields) == 2 {
		body = fields[1]
	}

	scheduled := time.Duration(sec)*time.Second + time.Duration(usec)*time.Microsecond

	var data []byte
	var sink Sink

	switch typeKeyword {
	case "RTP":
		tokens := rtpwire.Tokenize(body)
		data, err = rtpwire.Build(tokens)
		sink = SinkRTP
	case "RTCP":
		var nodes []*descriptor.Node
		nodes, err = descriptor.Parse(body)
		if err == nil {
			data, err = rtcpwire.BuildCompound(nodes)
		}
		sink = SinkRTCP
	default:
		err = fmt.Errorf("unknown packet type %q", typeKeyword)
	}

	if err != nil {
		return Packet{}, &SyntaxError{Line: lineNo, Text: line, Err: err}
	}

	return Packet{Time: scheduled, Sink: sink, Data: data}, nil
}

// splitTimePrefix scans a leading "<sec>.<usec>" time prefix, per spec
// §4.8's sscanf("%ld.%ld ...") step, returning the remainder of the line.
func splitTimePrefix(line string) (sec, usec int64, rest string, err error) {
	trimmed := strings.TrimLeft(line, " \t")
	sp := strings.IndexAny(trimmed, " \t")
	if sp < 0 {
		return 0, 0, "", fmt.Errorf("missing time prefix")
	}
	prefix, remainder := trimmed[:sp], trimmed[sp:]

	dot := strings.IndexByte(prefix, '.')
	if dot < 0 {
		return 0, 0, "", fmt.Errorf("malformed time prefix %q", prefix)
	}

	sec, err = strconv.ParseInt(prefix[:dot], 10, 64)
	if err != nil {
		return 0, 0, "", fmt.Errorf("malformed time prefix %q: %w", prefix, err)
	}
	usec, err = strconv.ParseInt(prefix[dot+1:], 10, 64)
	if err != nil {
		return 0, 0, "", fmt.Errorf("malformed time prefix %q: %w", prefix, err)
	}

	return sec, usec, remainder, nil
}
