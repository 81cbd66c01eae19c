package main

import (
	"fmt"
	"io"

	"github.com/loganpkg/m4/internal/flushio"
)

// quoteState is a pair of single-byte delimiters and a nesting depth.
// active is depth > 0, defined algebraically rather than as separate
// stored state.
type quoteState struct {
	left, right byte
	depth       int
}

const (
	defaultLeftQuote  = '`'
	defaultRightQuote = '\''
)

func (q quoteState) active() bool { return q.depth > 0 }

// Processor is the macro expansion engine and everything it owns: the
// pushback buffer, symbol table, call stack, and diversion set. It is
// constructed with New and functional options.
type Processor struct {
	logfn func(mess string, args ...interface{}) // trace sink, nil to disable
	diag  io.Writer                               // errprint/dumpdef/htdist destination

	pb  pushback
	out flushio.WriteFlusher

	closers []io.Closer

	quote quoteState
	sym   *symbolTable
	stack callStack
	divs  *diversionSet

	readFile func(path string) ([]byte, error) // include's loader

	builtinsEnabled bool // gates esyscmd/maketemp
}

// haltError marks a fatal condition that aborts the main loop.
type haltError struct{ error }

func (err haltError) Error() string {
	if err.error != nil {
		return fmt.Sprintf("m4: %v", err.error)
	}
	return "m4: halted"
}
func (err haltError) Unwrap() error { return err.error }

// halt raises a fatal error: it flushes whatever output is safely
// flushable, attributes the failure to a file:line when standard input
// tracking is active, traces it, and panics so the recover boundary in Run
// can turn it into a returned error.
func (p *Processor) halt(err error) {
	func() {
		defer func() { recover() }() //nolint:errcheck // best-effort flush on the way out
		if p.out != nil {
			if ferr := p.out.Flush(); err == nil {
				err = ferr
			}
		}
	}()
	if loc, ok := p.pb.location(); ok {
		err = fmt.Errorf("%v: %w", loc, err)
	}
	p.tracef("# halt: %v", err)
	panic(haltError{err})
}

func (p *Processor) haltif(err error) {
	if err != nil {
		p.halt(err)
	}
}

func (p *Processor) tracef(format string, args ...interface{}) {
	if p.logfn != nil {
		p.logfn(format, args...)
	}
}

// output returns the writer that should currently receive emitted bytes:
// the top call frame's active argument buffer if a call is in progress,
// else the current diversion. Computed functionally rather than tracked as
// a mutable alias.
func (p *Processor) output() io.Writer {
	if f := p.stack.top(); f != nil {
		return f.output()
	}
	return p.divs.writer()
}

// emit writes b to the current output target, halting on a write error.
func (p *Processor) emit(b byte) {
	if _, err := p.output().Write([]byte{b}); err != nil {
		p.halt(err)
	}
}

// emitString writes s to the current output target, halting on error.
func (p *Processor) emitString(s string) {
	if _, err := io.WriteString(p.output(), s); err != nil {
		p.halt(err)
	}
}

// Close releases every resource the Processor opened (closers are
// accumulated in the order options registered them; released LIFO).
func (p *Processor) Close() (err error) {
	for i := len(p.closers) - 1; i >= 0; i-- {
		if cerr := p.closers[i].Close(); err == nil {
			err = cerr
		}
	}
	return err
}
