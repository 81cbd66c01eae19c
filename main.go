package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io/ioutil"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/loganpkg/m4/internal/logio"
)

// stringList collects repeated occurrences of a flag, in order, for -D
// and -U.
type stringList []string

func (sl *stringList) String() string { return strings.Join(*sl, ",") }
func (sl *stringList) Set(v string) error {
	*sl = append(*sl, v)
	return nil
}

func main() {
	var (
		defines  stringList
		undefs   stringList
		timeout  time.Duration
		trace    bool
		dump     bool
		shell    bool
		quoteArg string
	)
	flag.Var(&defines, "D", "define name or name=value before processing (repeatable)")
	flag.Var(&undefs, "U", "undefine name before processing (repeatable)")
	flag.DurationVar(&timeout, "timeout", 0, "abort after the given duration")
	flag.BoolVar(&trace, "trace", false, "enable trace logging to standard error")
	flag.BoolVar(&dump, "dump", false, "print a diversion-size dump after execution")
	flag.BoolVar(&shell, "shell", false, "enable esyscmd and maketemp")
	flag.StringVar(&quoteArg, "quote", "", "override the default quote delimiters, as a two-byte string")
	flag.Parse()

	log := logio.Logger{}
	log.SetOutput(os.Stderr)
	defer func() { os.Exit(log.ExitCode()) }()

	opts := []Option{
		WithOutput(os.Stdout),
		WithDiag(os.Stderr),
		WithBuiltinsEnabled(shell),
	}
	if trace {
		opts = append(opts, WithLogf(log.Leveledf("TRACE")))
	}
	if quoteArg != "" {
		if len(quoteArg) != 2 {
			log.Errorf("-quote must be exactly two bytes, got %q", quoteArg)
			return
		}
		opts = append(opts, WithQuote(quoteArg[0], quoteArg[1]))
	}
	for _, d := range defines {
		name, body := d, ""
		if i := strings.IndexByte(d, '='); i >= 0 {
			name, body = d[:i], d[i+1:]
		}
		opts = append(opts, WithDefine(name, body))
	}
	for _, u := range undefs {
		opts = append(opts, WithUndefine(u))
	}

	files := flag.Args()
	if len(files) == 0 {
		opts = append(opts, WithStdinFile("<stdin>"))
	} else {
		contents, err := loadFiles(files)
		if err != nil {
			log.Errorf("%v", err)
			return
		}
		opts = append(opts, WithInput(bytes.NewReader(contents)))
	}

	p := New(opts...)
	defer p.Close()

	if dump {
		defer func() {
			lw := &logio.Writer{Logf: log.Leveledf("DUMP")}
			defer lw.Close()
			fmt.Fprintf(lw, "diversions: %v\n", p.divs.sizes())
		}()
	}

	ctx := context.Background()
	if timeout != 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	log.ErrorIf(p.Run(ctx))
}

// loadFiles reads every named file concurrently, preserving command-line
// order in the concatenated result: the macro processor treats its file
// arguments as one pushback source, loaded up front (see DESIGN.md).
func loadFiles(paths []string) ([]byte, error) {
	contents := make([][]byte, len(paths))
	var g errgroup.Group
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			data, err := ioutil.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			contents[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	for _, c := range contents {
		buf.Write(c)
	}
	return buf.Bytes(), nil
}
