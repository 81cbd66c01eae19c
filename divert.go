package main

import (
	"bytes"
	"io"
)

// sinkDiversion is the discard sink's index.
const sinkDiversion = -1

// diversionSet is ten numbered output buffers (0-9) plus a
// discard sink, multiplexed by a single "current" pointer.
type diversionSet struct {
	buffers [10]bytes.Buffer
	current int
}

func newDiversionSet() *diversionSet { return &diversionSet{current: 0} }

// writer returns the buffer that output should currently be appended to:
// the sink (discarded) if current is -1, else buffers[current].
func (d *diversionSet) writer() io.Writer {
	if d.current == sinkDiversion {
		return io.Discard
	}
	return &d.buffers[d.current]
}

// divert sets the current diversion. n must be -1 or in 0..9; callers
// validate range before calling (the divert built-in rejects anything
// else as fatal).
func (d *diversionSet) divert(n int) { d.current = n }

// flushZero writes and clears diversion 0 to out, supporting the main
// loop's opportunistic flush between tokens and the final end-of-run
// flush.
func (d *diversionSet) flushZero(out io.Writer) error {
	if d.buffers[0].Len() == 0 {
		return nil
	}
	_, err := out.Write(d.buffers[0].Bytes())
	d.buffers[0].Reset()
	return err
}

// undivert implements the undivert built-in's copy semantics:
// when current is 0, k is flushed straight to out; otherwise k's contents
// are appended to the current diversion. clear controls whether the source
// buffer is reset afterward in either case -- true only for the implicit
// (no-argument) form (see DESIGN.md).
func (d *diversionSet) undivert(k int, out io.Writer, clear bool) error {
	if k < 1 || k > 9 || k == d.current {
		return nil
	}
	src := &d.buffers[k]
	if d.current == 0 {
		if _, err := out.Write(src.Bytes()); err != nil {
			return err
		}
	} else if d.current != sinkDiversion {
		dst := &d.buffers[d.current]
		dst.Write(src.Bytes())
	}
	if clear {
		src.Reset()
	}
	return nil
}

// flushRemaining writes diversions 1..9 to out, in order, at normal
// termination.
func (d *diversionSet) flushRemaining(out io.Writer) error {
	for i := 1; i <= 9; i++ {
		if d.buffers[i].Len() == 0 {
			continue
		}
		if _, err := out.Write(d.buffers[i].Bytes()); err != nil {
			return err
		}
		d.buffers[i].Reset()
	}
	return nil
}

// sizes reports the live byte length of each of the eleven diversions
// (index 10 is the discard sink, always reported as zero), for the -dump
// diagnostic.
func (d *diversionSet) sizes() [11]int {
	var sizes [11]int
	for i := 0; i < 10; i++ {
		sizes[i] = d.buffers[i].Len()
	}
	return sizes
}
