// Package script reads the line-oriented replay script format and turns
// each logical line into a scheduled packet, dispatching to pkg/rtpwire or
// pkg/rtcpwire depending on the line's TYPE keyword.
package script

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// ErrEOF is returned by Reader.NextLine when the script is exhausted.
var ErrEOF = errors.New("script: end of input")

// Reader joins continuation lines (those beginning with whitespace) onto
// the preceding logical line, skips comment lines (leading '#'), and
// tracks the 1-based line number of the start of each logical line for
// diagnostics.
type Reader struct {
	scanner     *bufio.Scanner
	lineNo      int
	pending     string
	havePending bool
}

// NewReader wraps r for logical-line reading.
func NewReader(r io.Reader) *Reader {
	return &Reader{scanner: bufio.NewScanner(r)}
}

// Rewind resets the reader to the start of r, so the same underlying
// content can be replayed in loop mode. The caller must supply a fresh
// io.Reader positioned at the start (e.g. by seeking the backing file).
func (rd *Reader) Rewind(r io.Reader) {
	rd.scanner = bufio.NewScanner(r)
	rd.lineNo = 0
	rd.pending = ""
	rd.havePending = false
}

// NextLine returns the next logical line and the 1-based line number it
// started on, with continuation lines joined by a single space and
// comment-only lines skipped. Returns ErrEOF when the input is exhausted.
func (rd *Reader) NextLine() (string, int, error) {
	var b strings.Builder
	startLine := 0

	takeRaw := func() (string, bool) {
		if rd.havePending {
			rd.havePending = false
			l := rd.pending
			rd.pending = ""
			return l, true
		}
		if !rd.scanner.Scan() {
			return "", false
		}
		rd.lineNo++
		return rd.scanner.Text(), true
	}

	for {
		raw, ok := takeRaw()
		if !ok {
			if b.Len() == 0 {
				return "", 0, ErrEOF
			}
			return b.String(), startLine, nil
		}

		lineNo := rd.lineNo

		if strings.TrimSpace(raw) == "" {
			continue
		}
		if strings.HasPrefix(raw, "#") {
			continue
		}

		isContinuation := raw[0] == ' ' || raw[0] == '\t'
		if b.Len() == 0 {
			if isContinuation {
				// a continuation line with nothing to continue; treat it
				// as its own logical line rather than silently dropping it.
				isContinuation = false
			}
			startLine = lineNo
			b.WriteString(strings.TrimSpace(raw))
			continue
		}

		if !isContinuation {
			rd.pending = raw
			rd.havePending = true
			return b.String(), startLine, nil
		}
		b.WriteByte(' ')
		b.WriteString(strings.TrimSpace(raw))
	}
}
