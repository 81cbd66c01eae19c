package main

import (
	"io"
	"strings"
)

// isIdentStart reports whether b can begin an identifier token: a letter or
// underscore.
func isIdentStart(b byte) bool {
	return b == '_' || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}

// isIdentCont reports whether b can continue an identifier token already
// begun by isIdentStart: letters, digits, or underscore.
func isIdentCont(b byte) bool {
	return isIdentStart(b) || ('0' <= b && b <= '9')
}

// nextToken reads one byte via the pushback buffer; if it
// begins an identifier, it keeps reading while bytes continue the
// identifier, pushing back the first byte that doesn't. Otherwise the token
// is that single byte. The tokenizer carries no state across calls.
func (p *Processor) nextToken() (string, error) {
	b, err := p.pb.read()
	if err != nil {
		return "", err
	}
	if !isIdentStart(b) {
		return string(b), nil
	}

	var sb strings.Builder
	sb.WriteByte(b)
	for {
		b, err := p.pb.read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		if !isIdentCont(b) {
			p.pb.unread(b)
			break
		}
		sb.WriteByte(b)
	}
	return sb.String(), nil
}
