package main

import (
	"io"

	"github.com/loganpkg/m4/internal/fileinput"
)

// pushback is a LIFO byte stack that the tokenizer reads from, with lazy
// fallback to standard input once the stack runs dry. Every command-line
// source file is read whole and pushed onto the stack up front (see
// main.go), so only interactive standard input is ever streamed
// byte-by-byte; see DESIGN.md for the reasoning behind collapsing
// multiple file sources into a flat stack plus one tracked stream.
type pushback struct {
	buf []byte // buf[len(buf)-1] is the next byte read

	stdin        *fileinput.Tracker
	stdinEnabled bool
}

// growth policy: double capacity with headroom for the incoming chunk.
func growBuf(buf []byte, extra int) []byte {
	need := len(buf) + extra
	if cap(buf) >= need {
		return buf
	}
	newCap := cap(buf)*2 + extra
	if newCap < need {
		newCap = need
	}
	grown := make([]byte, len(buf), newCap)
	copy(grown, buf)
	return grown
}

// enableStdin arranges for read to fall back to r, named name, once the
// stack is empty.
func (pb *pushback) enableStdin(r io.Reader, name string) {
	pb.stdin = fileinput.NewTracker(r, name)
	pb.stdinEnabled = true
}

// read pops the top of the stack, or reads one byte from standard input if
// enabled and the stack is empty, or returns io.EOF.
func (pb *pushback) read() (byte, error) {
	if n := len(pb.buf); n > 0 {
		b := pb.buf[n-1]
		pb.buf = pb.buf[:n-1]
		return b, nil
	}
	if !pb.stdinEnabled {
		return 0, io.EOF
	}
	return pb.stdin.ReadByte()
}

// unread pushes a single byte back onto the stack.
func (pb *pushback) unread(b byte) {
	pb.buf = growBuf(pb.buf, 1)
	pb.buf = append(pb.buf, b)
}

// unreadString pushes s onto the stack in reverse, so a following sequence
// of read calls yields s left-to-right.
func (pb *pushback) unreadString(s string) {
	pb.buf = growBuf(pb.buf, len(s))
	for i := len(s) - 1; i >= 0; i-- {
		pb.buf = append(pb.buf, s[i])
	}
}

// prependFile arranges for contents (already loaded from path) to be read
// next, ahead of anything already on the stack.
func (pb *pushback) prependFile(path string, contents []byte) {
	pb.unreadString(string(contents))
}

// location reports the current standard-input position for diagnostics, or
// false if standard input is not enabled.
func (pb *pushback) location() (fileinput.Location, bool) {
	if pb.stdin == nil {
		return fileinput.Location{}, false
	}
	return pb.stdin.Location(), true
}
