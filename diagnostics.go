package main

import (
	"fmt"
	"strings"

	"github.com/loganpkg/m4/internal/runeio"
)

// escapeDiag renders s for a diagnostic line, replacing control bytes with
// their caret form (^C, ^[, and so on) so a dumped macro body can't garble
// the terminal it's printed to. Only diagnostic text is escaped this way;
// program output goes through emit/emitString untouched.
func escapeDiag(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if caret := runeio.CaretForm(rune(s[i])); caret != "" {
			b.WriteString(caret)
		} else {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func (p *Processor) doDumpdef(f *callFrame) {
	if f.activeArg == 1 && f.arg(1) == "" {
		for _, e := range p.sym.allSorted() {
			p.writeDumpLine(e)
		}
		return
	}
	for i := 1; i <= f.activeArg; i++ {
		if e, ok := p.sym.lookup(f.arg(i)); ok {
			p.writeDumpLine(e)
		}
	}
}

func (p *Processor) writeDumpLine(e *symEntry) {
	if e.isBuiltin() {
		fmt.Fprintf(p.diag, "%s:\t<built-in>\n", e.name)
		return
	}
	fmt.Fprintf(p.diag, "%s:\t%s\n", e.name, escapeDiag(e.body))
}

func (p *Processor) doErrprint(f *callFrame) {
	parts := make([]string, 0, f.activeArg)
	for i := 1; i <= f.activeArg; i++ {
		parts = append(parts, escapeDiag(f.arg(i)))
	}
	fmt.Fprintln(p.diag, strings.Join(parts, " "))
}

// writeHistogram prints the hash table's bucket-occupancy summary for the
// htdist built-in: how many entries exist, how many buckets hold at least
// one, and the longest and average chain lengths.
func (p *Processor) writeHistogram() {
	lengths := p.sym.histogram()
	used, max, total := 0, 0, 0
	for _, n := range lengths {
		if n > 0 {
			used++
		}
		if n > max {
			max = n
		}
		total += n
	}
	avg := 0.0
	if used > 0 {
		avg = float64(total) / float64(used)
	}
	fmt.Fprintf(p.diag, "htdist: %d entries, %d/%d buckets used, max chain %d, avg chain %.2f\n",
		total, used, symTableBuckets, max, avg)
}
