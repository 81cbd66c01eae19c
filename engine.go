package main

import (
	"context"
	"io"
)

// runLoop drives the main loop to completion: it tokenizes,
// classifies, and dispatches until standard input and every pushed file are
// exhausted, then enforces end-of-run invariants and flushes what remains.
// ctx is checked between tokens so a -timeout deadline can abort a runaway
// script; a context error is reported like any other fatal condition. A
// halt anywhere in this call tree panics with haltError, which the
// panicerr.Recover boundary in the exported Run (api.go) turns into a
// plain returned error -- this function does not recover it itself.
func (p *Processor) runLoop(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			p.halt(ctx.Err())
		}

		// Step 0: opportunistic flush of diversion 0, so output appears
		// promptly under interactive use.
		p.haltif(p.divs.flushZero(p.out))

		tok, err := p.nextToken()
		if err == io.EOF {
			break
		}
		p.haltif(err)

		p.step(tok)
	}

	if !p.stack.empty() || p.quote.active() {
		p.halt(errUnexpectedEOF)
	}

	p.haltif(p.divs.flushZero(p.out))
	p.haltif(p.divs.flushRemaining(p.out))
	p.haltif(p.out.Flush())
	return nil
}

// step classifies and dispatches a single token in one function: the same
// switch handles both top-level text and text collected as a macro
// argument, since "current output" is resolved functionally by
// Processor.output.
func (p *Processor) step(tok string) {
	single := len(tok) == 1

	// Step 1: quote delimiters are recognized everywhere, regardless of
	// call-stack state.
	if single && tok[0] == p.quote.left {
		if p.quote.depth > 0 {
			p.emit(tok[0])
		}
		p.quote.depth++
		return
	}
	if single && tok[0] == p.quote.right && p.quote.depth > 0 {
		if p.quote.depth > 1 {
			p.emit(tok[0])
		}
		p.quote.depth--
		return
	}
	if p.quote.active() {
		p.emitString(tok)
		return
	}

	// Step 2: end-of-call, separators, and nested brackets, evaluated only
	// while a call is in progress.
	if f := p.stack.top(); f != nil {
		switch {
		case single && tok[0] == ')' && f.bracketDepth == 1:
			p.closeCall(f)
			return
		case single && tok[0] == ',' && f.bracketDepth == 1:
			p.separateArg(f)
			return
		case single && tok[0] == '(':
			f.bracketDepth++
			p.emit('(')
			return
		case single && tok[0] == ')':
			p.emit(')')
			f.bracketDepth--
			return
		}
	}

	// Step 3: a token starting with an identifier byte is looked up.
	if len(tok) > 0 && isIdentStart(tok[0]) {
		p.identifier(tok)
		return
	}

	// Step 4: everything else passes through unchanged.
	p.emitString(tok)
}

// identifier handles a token that starts an identifier: a known name is
// looked ahead for an immediately following '(' to decide between
// beginning a call and a bare (no-args) reference; an unknown name is
// ordinary text.
func (p *Processor) identifier(name string) {
	entry, found := p.sym.lookup(name)
	if !found {
		p.emitString(name)
		return
	}

	look, err := p.nextToken()
	switch {
	case err == io.EOF:
		p.referenceBare(entry)
	case err != nil:
		p.halt(err)
	case len(look) == 1 && look[0] == '(':
		p.beginCall(entry)
	default:
		p.pb.unreadString(look)
		p.referenceBare(entry)
	}
}

// referenceBare handles a macro name not followed by '(': user macros
// substitute their body with no positional arguments; built-ins that have
// a defined no-args meaning run it, the rest pass through as literal text.
func (p *Processor) referenceBare(entry *symEntry) {
	if !entry.isBuiltin() {
		p.pb.unreadString(stripDollarArgs(entry.body))
		return
	}
	if !p.noArgBuiltin(entry.tag) {
		p.emitString(entry.name)
	}
}

// beginCall opens a new call frame and eats any whitespace before the
// first argument.
func (p *Processor) beginCall(entry *symEntry) {
	f := newCallFrame(entry.name, entry.tag, entry.body)
	p.stack.push(f)
	p.eatLeadingWhitespace()
}

// separateArg implements the top-level comma: it finalizes the argument
// being collected and opens the next one.
func (p *Processor) separateArg(f *callFrame) {
	p.haltif(f.nextArg())
	p.eatLeadingWhitespace()
}

// closeCall finalizes a call whose closing parenthesis was just seen: the
// frame is popped and either dispatched to a built-in or substituted and
// rescanned as a user macro body.
func (p *Processor) closeCall(f *callFrame) {
	p.stack.pop()
	if f.tag == tagUser {
		p.pb.unreadString(substituteArgs(f.body, f))
		return
	}
	p.dispatchBuiltin(f)
}

// eatLeadingWhitespace consumes consecutive whitespace-only tokens,
// pushing back the first token that isn't one.
func (p *Processor) eatLeadingWhitespace() {
	for {
		tok, err := p.nextToken()
		if err == io.EOF {
			return
		}
		p.haltif(err)
		if len(tok) == 1 && isSpaceByte(tok[0]) {
			continue
		}
		p.pb.unreadString(tok)
		return
	}
}

func isSpaceByte(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	default:
		return false
	}
}

// stripDollarArgs removes unresolved "$1".."$9" references from a user
// macro's body when it is referenced with no argument list at all, so a
// bare reference to a macro defined as e.g. "foo($1)" expands to "foo()"
// rather than leaking the literal "$1" text.
func stripDollarArgs(body string) string {
	return substituteArgsFn(body, func(n int) string { return "" })
}

// substituteArgs replaces "$1".."$9" in body with the call's collected
// arguments: a frame always has at least args[1], possibly empty;
// arguments beyond activeArg are the empty string.
func substituteArgs(body string, f *callFrame) string {
	return substituteArgsFn(body, f.arg)
}

func substituteArgsFn(body string, arg func(int) string) string {
	var out []byte
	for i := 0; i < len(body); i++ {
		if body[i] == '$' && i+1 < len(body) && body[i+1] >= '1' && body[i+1] <= '9' {
			out = append(out, arg(int(body[i+1]-'0'))...)
			i++
			continue
		}
		out = append(out, body[i])
	}
	return string(out)
}
