package main

import (
	"crypto/rand"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// noArgBuiltin runs tag's no-argument meaning and reports whether it has
// one. Only dnl, divnum, undivert, divert, htdist, and dirsep are legal in
// the no-args path; everything else returns false so the
// caller falls back to literal text.
func (p *Processor) noArgBuiltin(tag builtinTag) bool {
	switch tag {
	case tagDnl:
		p.doDnl()
	case tagDivnum:
		p.pb.unreadString(strconv.Itoa(p.divs.current))
	case tagUndivert:
		for k := 1; k <= 9; k++ {
			p.haltif(p.divs.undivert(k, p.output(), true))
		}
	case tagDivert:
		p.divs.divert(0)
	case tagHtdist:
		p.writeHistogram()
	case tagDirsep:
		p.pb.unreadString(string(filepath.Separator))
	default:
		return false
	}
	return true
}

// dispatchBuiltin runs a built-in whose call has just closed, using the
// arguments collected in f.
func (p *Processor) dispatchBuiltin(f *callFrame) {
	switch f.tag {
	case tagDefine:
		p.sym.upsertUser(f.arg(1), f.arg(2))
	case tagUndefine:
		p.sym.delete(f.arg(1))
	case tagChangequote:
		p.doChangequote(f)
	case tagDivert:
		p.doDivert(f)
	case tagDivnum:
		p.pb.unreadString(strconv.Itoa(p.divs.current))
	case tagUndivert:
		p.doUndivertExplicit(f)
	case tagDumpdef:
		p.doDumpdef(f)
	case tagErrprint:
		p.doErrprint(f)
	case tagIfdef:
		p.doIfdef(f)
	case tagIfelse:
		p.doIfelse(f)
	case tagInclude:
		p.doInclude(f)
	case tagLen:
		p.pb.unreadString(strconv.Itoa(len(f.arg(1))))
	case tagIndex:
		p.pb.unreadString(strconv.Itoa(strings.Index(f.arg(1), f.arg(2))))
	case tagSubstr:
		p.pb.unreadString(doSubstr(f))
	case tagTranslit:
		p.pb.unreadString(doTranslit(f.arg(1), f.arg(2), f.arg(3)))
	case tagDnl:
		p.doDnl()
	case tagIncr:
		p.pb.unreadString(strconv.Itoa(p.doIncr(f.arg(1))))
	case tagAdd:
		p.pb.unreadString(strconv.Itoa(p.doFold(f, 0, addOverflow)))
	case tagMult:
		p.pb.unreadString(strconv.Itoa(p.doFold(f, 1, mulOverflow)))
	case tagSub:
		p.pb.unreadString(strconv.Itoa(p.doChain(f, subStep)))
	case tagDiv:
		p.pb.unreadString(strconv.Itoa(p.doChain(f, divStep)))
	case tagMod:
		p.pb.unreadString(strconv.Itoa(p.doChain(f, modStep)))
	case tagDirsep:
		p.pb.unreadString(string(filepath.Separator))
	case tagHtdist:
		p.writeHistogram()
	case tagEsyscmd:
		p.pb.unreadString(p.doEsyscmd(f.arg(1)))
	case tagMaketemp:
		p.pb.unreadString(p.doMaketemp(f.arg(1)))
	}
}

// isGraphicByte reports whether b is a single printable, non-whitespace
// ASCII byte -- the only kind of byte changequote accepts as a delimiter.
func isGraphicByte(b byte) bool { return b > 0x20 && b < 0x7f }

func (p *Processor) doChangequote(f *callFrame) {
	l, r := f.arg(1), f.arg(2)
	if l == "" && r == "" {
		p.quote.left, p.quote.right = defaultLeftQuote, defaultRightQuote
		return
	}
	if len(l) != 1 || len(r) != 1 || l == r {
		p.halt(errBadChangequote)
	}
	if !isGraphicByte(l[0]) || !isGraphicByte(r[0]) {
		p.halt(errBadChangequote)
	}
	for _, reserved := range []byte{'(', ')', ','} {
		if l[0] == reserved || r[0] == reserved {
			p.halt(errBadChangequote)
		}
	}
	p.quote.left, p.quote.right = l[0], r[0]
}

// parseDivertTarget parses a divert argument: "" means 0, matching the
// no-args form's default.
func parseDivertTarget(s string) (int, bool) {
	switch {
	case s == "":
		return 0, true
	case s == "-1":
		return sinkDiversion, true
	case len(s) == 1 && s[0] >= '0' && s[0] <= '9':
		return int(s[0] - '0'), true
	}
	return 0, false
}

func (p *Processor) doDivert(f *callFrame) {
	n, ok := parseDivertTarget(f.arg(1))
	if !ok {
		p.halt(errBadDivert)
	}
	p.divs.divert(n)
}

// doUndivertExplicit implements the called form of undivert: each named
// diversion is copied into the current one without clearing the source
// (see DESIGN.md for why the explicit and implicit forms differ here).
func (p *Processor) doUndivertExplicit(f *callFrame) {
	if f.activeArg == 1 && f.arg(1) == "" {
		for k := 1; k <= 9; k++ {
			p.haltif(p.divs.undivert(k, p.output(), false))
		}
		return
	}
	for i := 1; i <= f.activeArg; i++ {
		k, err := strconv.Atoi(f.arg(i))
		if err != nil {
			continue
		}
		p.haltif(p.divs.undivert(k, p.output(), false))
	}
}

func (p *Processor) doIfdef(f *callFrame) {
	_, defined := p.sym.lookup(f.arg(1))
	if defined {
		p.pb.unreadString(f.arg(2))
	} else {
		p.pb.unreadString(f.arg(3))
	}
}

// doIfelse compares its first two arguments; only the two-branch form is
// supported, so additional argument pairs beyond the fourth are ignored
// (see DESIGN.md).
func (p *Processor) doIfelse(f *callFrame) {
	if f.arg(1) == f.arg(2) {
		p.pb.unreadString(f.arg(3))
	} else {
		p.pb.unreadString(f.arg(4))
	}
}

func (p *Processor) doInclude(f *callFrame) {
	path := f.arg(1)
	contents, err := p.readFile(path)
	p.haltif(err)
	p.pb.prependFile(path, contents)
}

func doSubstr(f *callFrame) string {
	s := f.arg(1)
	start, err := strconv.Atoi(f.arg(2))
	if err != nil {
		start = 0
	}
	length := len(s) - start
	if f.activeArg >= 3 {
		if n, err := strconv.Atoi(f.arg(3)); err == nil {
			length = n
		}
	}
	if s == "" || start >= len(s) {
		return ""
	}
	if start < 0 {
		start = 0
	}
	end := start + length
	if end > len(s) {
		end = len(s)
	}
	if end < start {
		end = start
	}
	return s[start:end]
}

// doTranslit implements the translation table built from from/to: the
// first definition for a given byte wins, bytes beyond len(to) are
// deleted.
func doTranslit(s, from, to string) string {
	mapped := make(map[byte]byte, len(from))
	deleted := make(map[byte]bool, len(from))
	for i := 0; i < len(from); i++ {
		c := from[i]
		if _, ok := mapped[c]; ok {
			continue
		}
		if deleted[c] {
			continue
		}
		if i < len(to) {
			mapped[c] = to[i]
		} else {
			deleted[c] = true
		}
	}
	var out strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if deleted[c] {
			continue
		}
		if t, ok := mapped[c]; ok {
			out.WriteByte(t)
		} else {
			out.WriteByte(c)
		}
	}
	return out.String()
}

// doDnl discards input through and including the next newline, or to EOF
// if none remains.
func (p *Processor) doDnl() {
	for {
		b, err := p.pb.read()
		if err != nil {
			return
		}
		if b == '\n' {
			return
		}
	}
}

func parseWord(s string) (int, error) {
	if s == "" {
		return 0, errNonNumeric
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, errNonNumeric
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errArithOverflow
	}
	return n, nil
}

func (p *Processor) doIncr(s string) int {
	n, err := parseWord(s)
	p.haltif(err)
	if n == math.MaxInt {
		p.halt(errArithOverflow)
	}
	return n + 1
}

func addOverflow(a, b int) (int, bool) {
	if a > math.MaxInt-b {
		return 0, true
	}
	return a + b, false
}

func mulOverflow(a, b int) (int, bool) {
	if a == 0 || b == 0 {
		return 0, false
	}
	p := a * b
	if p/b != a {
		return 0, true
	}
	return p, false
}

// doFold folds add/mult over the call's present arguments, skipping empty
// ones, starting from identity.
func (p *Processor) doFold(f *callFrame, identity int, step func(a, b int) (int, bool)) int {
	acc := identity
	for i := 1; i <= f.activeArg; i++ {
		s := f.arg(i)
		if s == "" {
			continue
		}
		n, err := parseWord(s)
		p.haltif(err)
		var overflow bool
		acc, overflow = step(acc, n)
		if overflow {
			p.halt(errArithOverflow)
		}
	}
	return acc
}

func subStep(a, b int) (int, bool) {
	if b > a {
		return 0, true
	}
	return a - b, false
}

func divStep(a, b int) (int, bool) {
	if b == 0 {
		return 0, true
	}
	return a / b, false
}

func modStep(a, b int) (int, bool) {
	if b == 0 {
		return 0, true
	}
	return a % b, false
}

// doChain folds sub/div/mod left to right starting from the required first
// argument, halting on the step function's reported failure (underflow or
// division by zero, depending on which operator called it).
func (p *Processor) doChain(f *callFrame, step func(a, b int) (int, bool)) int {
	if f.arg(1) == "" {
		p.halt(errMissingArg1)
	}
	acc, err := parseWord(f.arg(1))
	p.haltif(err)
	for i := 2; i <= f.activeArg; i++ {
		s := f.arg(i)
		if s == "" {
			continue
		}
		n, err := parseWord(s)
		p.haltif(err)
		var fail bool
		acc, fail = step(acc, n)
		if fail {
			if n > acc {
				p.halt(errArithUnderflow)
			}
			p.halt(errDivideByZero)
		}
	}
	return acc
}

func (p *Processor) doEsyscmd(cmd string) string {
	if !p.builtinsEnabled {
		p.halt(errShellDisabled)
	}
	out, err := exec.Command("/bin/sh", "-c", cmd).Output()
	if err != nil {
		p.tracef("# esyscmd: %v", err)
		p.halt(errShellFailed)
	}
	return strings.ReplaceAll(string(out), "\x00", "")
}

func (p *Processor) doMaketemp(template string) string {
	if !p.builtinsEnabled {
		p.halt(errShellDisabled)
	}
	n := 0
	for n < len(template) && template[len(template)-1-n] == 'X' {
		n++
	}
	prefix := template[:len(template)-n]
	if n == 0 {
		return prefix
	}
	const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	for attempt := 0; attempt < 100; attempt++ {
		suffix := make([]byte, n)
		raw := make([]byte, n)
		if _, err := rand.Read(raw); err != nil {
			p.halt(err)
		}
		for i, b := range raw {
			suffix[i] = alphabet[int(b)%len(alphabet)]
		}
		candidate := prefix + string(suffix)
		if ok := p.tryCreateTemp(candidate); ok {
			return candidate
		}
	}
	p.halt(errTempExhausted)
	return ""
}

// tryCreateTemp attempts to atomically create an empty file at path,
// reporting success; an existing file at that path is treated as a
// collision to retry past.
func (p *Processor) tryCreateTemp(path string) bool {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return false
	}
	f.Close()
	return true
}
