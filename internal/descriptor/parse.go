package descriptor

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse converts an RTCP body string into an ordered sequence of nodes,
// per the grammar in spec §4.1: a single left-to-right scan tracking
// parenthesis depth, double-quote state, and an accumulator.
//
// Unlike the C original this flushes a trailing bare/typed token at end of
// input even when it isn't followed by whitespace — the grammar has no
// notion of "token only ends at whitespace-or-nothing", and dropping the
// last token of a parenthesised group isn't a spec-documented ambiguity,
// just an omission worth not reproducing.
func Parse(text string) ([]*Node, error) {
	var nodes []*Node
	var buf []byte
	level := 0
	inString := false

	flush := func() error {
		if len(buf) == 0 {
			return nil
		}
		n, err := tokenNode(string(buf))
		if err != nil {
			return err
		}
		nodes = append(nodes, n)
		buf = buf[:0]
		return nil
	}

	for i := 0; i < len(text); i++ {
		ch := text[i]
		switch {
		case inString:
			buf = append(buf, ch)
			if ch == '"' {
				inString = false
			}
		case ch == '(':
			if level > 0 {
				buf = append(buf, ch)
			} else {
				buf = buf[:0]
			}
			level++
		case ch == ')':
			level--
			if level < 0 {
				return nil, fmt.Errorf("descriptor: unbalanced parens at byte %d", i)
			}
			if level == 0 {
				children, err := Parse(string(buf))
				if err != nil {
					return nil, err
				}
				nodes = append(nodes, &Node{Children: children})
				buf = buf[:0]
			} else {
				buf = append(buf, ch)
			}
		case ch == '"':
			buf = append(buf, ch)
			inString = true
		case level >= 1:
			buf = append(buf, ch)
		case isSpace(ch):
			if err := flush(); err != nil {
				return nil, err
			}
		default:
			buf = append(buf, ch)
		}
	}

	if inString {
		return nil, fmt.Errorf("descriptor: unterminated string in %q", text)
	}
	if level != 0 {
		return nil, fmt.Errorf("descriptor: unbalanced parens in %q", text)
	}
	if err := flush(); err != nil {
		return nil, err
	}

	return nodes, nil
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\r', '\n', '\v', '\f':
		return true
	}
	return false
}

// tokenNode turns one whitespace-delimited token into a Param node: either
// "name=value" (numeric or double-quoted string) or a bare token with no
// value.
func tokenNode(tok string) (*Node, error) {
	eq := strings.IndexByte(tok, '=')
	if eq < 0 {
		return &Node{Type: tok}, nil
	}

	name := tok[:eq]
	value := tok[eq+1:]
	if name == "" {
		return nil, fmt.Errorf("descriptor: empty parameter name in %q", tok)
	}
	if value == "" {
		return nil, fmt.Errorf("descriptor: missing value for %q", name)
	}

	if value[0] >= '0' && value[0] <= '9' {
		num, err := strconv.ParseUint(value, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("descriptor: invalid numeric value %q for %q: %w", value, name, err)
		}
		return &Node{Type: name, HasValue: true, Value: Value{Num: num}}, nil
	}

	if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
		return &Node{Type: name, HasValue: true, Value: Value{IsString: true, Str: value[1 : len(value)-1]}}, nil
	}

	return nil, fmt.Errorf("descriptor: value %q for %q is neither numeric nor quoted", value, name)
}
