package main

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_doSubstr(t *testing.T) {
	cases := []struct {
		name         string
		s, start, ln string
		want         string
	}{
		{"whole string with no length", "hello", "0", "", "hello"},
		{"middle slice", "hello", "1", "3", "ell"},
		{"length past end clamps", "hello", "3", "100", "lo"},
		{"negative start clamps to zero", "hello", "-2", "3", "hel"},
		{"start past end is empty", "hello", "10", "2", ""},
		{"non-numeric start defaults to zero", "hello", "x", "2", "he"},
		{"empty string is always empty", "", "0", "5", ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			f := newCallFrame("substr", tagSubstr, "")
			f.output().WriteString(c.s)
			_ = f.nextArg()
			f.output().WriteString(c.start)
			if c.ln != "" {
				_ = f.nextArg()
				f.output().WriteString(c.ln)
			}
			assert.Equal(t, c.want, doSubstr(f))
		})
	}
}

func Test_doTranslit(t *testing.T) {
	cases := []struct {
		name, s, from, to, want string
	}{
		{"simple remap", "hello", "el", "ip", "hippo"},
		{"deletion beyond to", "hello", "l", "", "heo"},
		{"first definition wins on duplicate from byte", "abc", "aa", "xy", "xbc"},
		{"unmapped bytes pass through", "hello", "xyz", "abc", "hello"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, doTranslit(c.s, c.from, c.to))
		})
	}
}

func Test_isGraphicByte(t *testing.T) {
	cases := []struct {
		name string
		b    byte
		want bool
	}{
		{"printable ASCII", '[', true},
		{"space is not graphic", ' ', false},
		{"control byte is not graphic", 0x01, false},
		{"DEL is not graphic", 0x7f, false},
		{"high byte is not graphic", 0x80, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, isGraphicByte(c.b))
		})
	}
}

func Test_parseWord(t *testing.T) {
	n, err := parseWord("42")
	assert.NoError(t, err)
	assert.Equal(t, 42, n)

	_, err = parseWord("")
	assert.Equal(t, errNonNumeric, err)

	_, err = parseWord("4x")
	assert.Equal(t, errNonNumeric, err)

	_, err = parseWord("-1")
	assert.Equal(t, errNonNumeric, err, "a leading minus is not a digit")
}

func Test_parseDivertTarget(t *testing.T) {
	cases := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"", 0, true},
		{"0", 0, true},
		{"9", 9, true},
		{"-1", -1, true},
		{"10", 0, false},
		{"-2", 0, false},
		{"x", 0, false},
	}
	for _, c := range cases {
		n, ok := parseDivertTarget(c.in)
		assert.Equal(t, c.wantOK, ok, "parseDivertTarget(%q) ok", c.in)
		if ok {
			assert.Equal(t, c.want, n, "parseDivertTarget(%q) value", c.in)
		}
	}
}

func Test_addOverflow(t *testing.T) {
	n, overflow := addOverflow(2, 3)
	assert.False(t, overflow)
	assert.Equal(t, 5, n)

	_, overflow = addOverflow(math.MaxInt, 1)
	assert.True(t, overflow)
}

func Test_mulOverflow(t *testing.T) {
	n, overflow := mulOverflow(6, 7)
	assert.False(t, overflow)
	assert.Equal(t, 42, n)

	_, overflow = mulOverflow(math.MaxInt, 2)
	assert.True(t, overflow)

	n, overflow = mulOverflow(0, math.MaxInt)
	assert.False(t, overflow)
	assert.Equal(t, 0, n)
}

func Test_subStep_divStep_modStep(t *testing.T) {
	n, fail := subStep(10, 3)
	assert.False(t, fail)
	assert.Equal(t, 7, n)

	_, fail = subStep(3, 10)
	assert.True(t, fail, "subtracting past zero must fail (no negative results)")

	n, fail = divStep(10, 3)
	assert.False(t, fail)
	assert.Equal(t, 3, n)

	_, fail = divStep(10, 0)
	assert.True(t, fail)

	n, fail = modStep(10, 3)
	assert.False(t, fail)
	assert.Equal(t, 1, n)

	_, fail = modStep(10, 0)
	assert.True(t, fail)
}
