// Package fileinput tracks a current file:line location for a stream of
// bytes, for use in diagnostic messages.
package fileinput

import (
	"bufio"
	"fmt"
	"io"
)

// Location names a line in a named input stream.
type Location struct {
	Name string
	Line int
}

func (loc Location) String() string { return fmt.Sprintf("%v:%v", loc.Name, loc.Line) }

// Tracker wraps a single byte-oriented reader, counting lines as they are
// consumed so callers can attribute diagnostics to a location.
//
// The macro processor folds whole files into its pushback buffer up front
// (see pushback.go); Tracker exists solely to give the one remaining
// streamed source -- standard input -- a location for error messages.
type Tracker struct {
	r   *bufio.Reader
	loc Location
}

// NewTracker wraps r, attributing read bytes to the stream named name.
func NewTracker(r io.Reader, name string) *Tracker {
	return &Tracker{r: bufio.NewReader(r), loc: Location{Name: name, Line: 1}}
}

// ReadByte reads one byte, advancing the tracked line count past newlines.
func (t *Tracker) ReadByte() (byte, error) {
	b, err := t.r.ReadByte()
	if err != nil {
		return 0, err
	}
	if b == '\n' {
		t.loc.Line++
	}
	return b, nil
}

// Location returns the current file:line position.
func (t *Tracker) Location() Location { return t.loc }
