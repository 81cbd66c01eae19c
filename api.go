package main

import (
	"context"
	"errors"
	"io"
	"io/ioutil"
	"os"

	"github.com/loganpkg/m4/internal/flushio"
	"github.com/loganpkg/m4/internal/panicerr"
)

// New constructs a Processor ready to run: symbol table seeded with the
// built-in catalogue, diversion 0 current, default quote delimiters, output
// discarded until an option says otherwise.
func New(opts ...Option) *Processor {
	p := &Processor{
		sym:      &symbolTable{},
		divs:     newDiversionSet(),
		quote:    quoteState{left: defaultLeftQuote, right: defaultRightQuote},
		readFile: ioutil.ReadFile,
		diag:     os.Stderr,
	}
	registerBuiltins(p.sym)
	defaultOptions.apply(p)
	Options(opts...).apply(p)
	return p
}

// Run executes the main loop, recovering any panic (including a halted
// fatal condition) into a plain returned error.
func (p *Processor) Run(ctx context.Context) error {
	err := panicerr.Recover("m4", func() error {
		return p.runLoop(ctx)
	})
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	var he haltError
	if errors.As(err, &he) {
		return he.error
	}
	return err
}

// registerBuiltins seeds sym with the full catalogue. esyscmd and maketemp
// are registered unconditionally; whether they're allowed to actually run
// is a dispatch-time check against p.builtinsEnabled (see doEsyscmd,
// doMaketemp), not a registration-time one -- otherwise a disabled call
// would miss the symbol table entirely and fall through to literal text
// instead of halting with errShellDisabled.
func registerBuiltins(sym *symbolTable) {
	for name, tag := range map[string]builtinTag{
		"define":      tagDefine,
		"undefine":    tagUndefine,
		"changequote": tagChangequote,
		"divert":      tagDivert,
		"divnum":      tagDivnum,
		"undivert":    tagUndivert,
		"dumpdef":     tagDumpdef,
		"errprint":    tagErrprint,
		"ifdef":       tagIfdef,
		"ifelse":      tagIfelse,
		"include":     tagInclude,
		"len":         tagLen,
		"index":       tagIndex,
		"substr":      tagSubstr,
		"translit":    tagTranslit,
		"dnl":         tagDnl,
		"incr":        tagIncr,
		"add":         tagAdd,
		"mult":        tagMult,
		"sub":         tagSub,
		"div":         tagDiv,
		"mod":         tagMod,
		"dirsep":      tagDirsep,
		"htdist":      tagHtdist,
		"esyscmd":     tagEsyscmd,
		"maketemp":    tagMaketemp,
	} {
		sym.upsertBuiltin(name, tag)
	}
}

// Option configures a Processor at construction.
type Option interface{ apply(p *Processor) }

var defaultOptions = Options(
	withOutput(ioutil.Discard),
)

// Options flattens a slice of options into one, so New can apply defaults
// then overrides uniformly.
func Options(opts ...Option) Option {
	var res options
	for _, opt := range opts {
		switch impl := opt.(type) {
		case nil, noption:
		case options:
			res = append(res, impl...)
		default:
			res = append(res, opt)
		}
	}
	switch len(res) {
	case 0:
		return noption{}
	case 1:
		return res[0]
	default:
		return res
	}
}

type noption struct{}

func (noption) apply(*Processor) {}

type options []Option

func (opts options) apply(p *Processor) {
	for _, opt := range opts {
		if opt != nil {
			opt.apply(p)
		}
	}
}

func WithInput(r io.Reader) Option              { return inputOption{r} }
func WithStdinFile(name string) Option          { return stdinOption{name} }
func WithOutput(w io.Writer) Option             { return withOutput(w) }
func WithTee(w io.Writer) Option                { return teeOption{w} }
func WithDiag(w io.Writer) Option               { return diagOption{w} }
func WithDefine(name, body string) Option       { return defineOption{name, body} }
func WithUndefine(name string) Option           { return undefineOption{name} }
func WithQuote(left, right byte) Option         { return quoteOption{left, right} }
func WithBuiltinsEnabled(enabled bool) Option   { return builtinsEnabledOption(enabled) }
func WithReadFile(fn func(path string) ([]byte, error)) Option {
	return readFileOption(fn)
}

func WithLogf(logfn func(mess string, args ...interface{})) Option {
	return withLogfn(logfn)
}

type withLogfn func(mess string, args ...interface{})

func (logfn withLogfn) apply(p *Processor) { p.logfn = logfn }

// inputOption loads r's entire contents onto the pushback stack up front,
// the same "read whole, concatenate via pushback" treatment main.go gives
// command-line files (see DESIGN.md).
type inputOption struct{ io.Reader }

func (i inputOption) apply(p *Processor) {
	buf, err := io.ReadAll(i.Reader)
	if err != nil {
		p.tracef("# input read error: %v", err)
		return
	}
	p.pb.unreadString(string(buf))
}

// stdinOption enables interactive standard-input fallback under the given
// display name, consulted only once every pushed file is exhausted.
type stdinOption struct{ name string }

func (s stdinOption) apply(p *Processor) { p.pb.enableStdin(os.Stdin, s.name) }

type outputOption struct{ io.Writer }

func withOutput(w io.Writer) outputOption { return outputOption{w} }

func (o outputOption) apply(p *Processor) {
	if p.out != nil {
		p.out.Flush()
	}
	p.out = flushio.NewWriteFlusher(o.Writer)
	if cl, ok := o.Writer.(io.Closer); ok {
		p.closers = append(p.closers, cl)
	}
}

type teeOption struct{ io.Writer }

func (o teeOption) apply(p *Processor) {
	p.out = flushio.WriteFlushers(p.out, flushio.NewWriteFlusher(o.Writer))
	if cl, ok := o.Writer.(io.Closer); ok {
		p.closers = append(p.closers, cl)
	}
}

type diagOption struct{ io.Writer }

func (o diagOption) apply(p *Processor) { p.diag = o.Writer }

type defineOption struct{ name, body string }

func (d defineOption) apply(p *Processor) { p.sym.upsertUser(d.name, d.body) }

type undefineOption struct{ name string }

func (u undefineOption) apply(p *Processor) { p.sym.delete(u.name) }

type quoteOption struct{ left, right byte }

func (q quoteOption) apply(p *Processor) { p.quote.left, p.quote.right = q.left, q.right }

type builtinsEnabledOption bool

func (b builtinsEnabledOption) apply(p *Processor) { p.builtinsEnabled = bool(b) }

type readFileOption func(path string) ([]byte, error)

func (fn readFileOption) apply(p *Processor) { p.readFile = fn }
