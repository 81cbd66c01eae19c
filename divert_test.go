package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_diversionSet_defaultIsZero(t *testing.T) {
	d := newDiversionSet()
	assert.Equal(t, 0, d.current)

	var out bytes.Buffer
	require.NoError(t, writeAll(d.writer(), "hi"))
	require.NoError(t, d.flushZero(&out))
	assert.Equal(t, "hi", out.String())
}

func Test_diversionSet_sinkDiscards(t *testing.T) {
	d := newDiversionSet()
	d.divert(sinkDiversion)
	require.NoError(t, writeAll(d.writer(), "gone"))

	var out bytes.Buffer
	require.NoError(t, d.flushZero(&out))
	require.NoError(t, d.flushRemaining(&out))
	assert.Empty(t, out.String())
}

func Test_diversionSet_numberedBuffering(t *testing.T) {
	d := newDiversionSet()
	d.divert(1)
	require.NoError(t, writeAll(d.writer(), "buffered"))

	var out bytes.Buffer
	require.NoError(t, d.flushZero(&out), "diversion 1 must not appear via flushZero")
	assert.Empty(t, out.String())

	require.NoError(t, d.flushRemaining(&out))
	assert.Equal(t, "buffered", out.String())
}

func Test_diversionSet_undivertIntoCurrent(t *testing.T) {
	d := newDiversionSet()
	d.divert(2)
	require.NoError(t, writeAll(d.writer(), "two"))
	d.divert(3)

	var out bytes.Buffer
	require.NoError(t, d.undivert(2, &out, false))
	assert.Empty(t, out.String(), "undivert into a non-zero current must append to that diversion, not out")

	require.NoError(t, d.flushRemaining(&out))
	assert.Equal(t, "twotwo", out.String(), "clear=false leaves diversion 2 intact alongside its copy in diversion 3")
}

func Test_diversionSet_undivertAtZeroHonorsClearFlag(t *testing.T) {
	d := newDiversionSet()
	d.divert(1)
	require.NoError(t, writeAll(d.writer(), "x"))
	d.divert(0)

	var out bytes.Buffer
	require.NoError(t, d.undivert(1, &out, false))
	assert.Equal(t, "x", out.String(), "current==0 form writes straight to out")

	var again bytes.Buffer
	require.NoError(t, d.undivert(1, &again, false))
	assert.Equal(t, "x", again.String(), "clear=false must leave the source readable a second time")

	var cleared bytes.Buffer
	require.NoError(t, d.undivert(1, &cleared, true))
	assert.Equal(t, "x", cleared.String())

	var empty bytes.Buffer
	require.NoError(t, d.undivert(1, &empty, true))
	assert.Empty(t, empty.String(), "the clearing undivert must have reset the source buffer")
}

func Test_diversionSet_undivertClearFlag(t *testing.T) {
	d := newDiversionSet()
	d.divert(1)
	require.NoError(t, writeAll(d.writer(), "x"))
	d.divert(2)

	var out bytes.Buffer
	require.NoError(t, d.undivert(1, &out, false))
	require.NoError(t, d.flushRemaining(&out))
	assert.Equal(t, "xx", out.String(), "clear=false leaves buffer 1's copy behind alongside the one folded into buffer 2")
}

func Test_diversionSet_sizes(t *testing.T) {
	d := newDiversionSet()
	d.divert(4)
	require.NoError(t, writeAll(d.writer(), "abcd"))
	d.divert(0)

	sizes := d.sizes()
	assert.Equal(t, 4, sizes[4])
	assert.Equal(t, 0, sizes[0])
}

func writeAll(w interface{ Write([]byte) (int, error) }, s string) error {
	_, err := w.Write([]byte(s))
	return err
}
