package main

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_symbolTable_upsertAndLookup(t *testing.T) {
	var sym symbolTable

	_, found := sym.lookup("foo")
	assert.False(t, found)

	sym.upsertUser("foo", "bar")
	e, found := sym.lookup("foo")
	require.True(t, found)
	assert.False(t, e.isBuiltin())
	assert.Equal(t, "bar", e.body)

	sym.upsertUser("foo", "baz")
	e, found = sym.lookup("foo")
	require.True(t, found)
	assert.Equal(t, "baz", e.body, "re-defining a name must update the existing entry in place")
	assert.Equal(t, 1, sym.count)
}

func Test_symbolTable_builtinTagDiscriminates(t *testing.T) {
	var sym symbolTable
	sym.upsertBuiltin("define", tagDefine)

	e, found := sym.lookup("define")
	require.True(t, found)
	assert.True(t, e.isBuiltin())
	assert.Equal(t, tagDefine, e.tag)
}

func Test_symbolTable_delete(t *testing.T) {
	var sym symbolTable

	assert.False(t, sym.delete("nope"), "deleting an absent name is benign")

	sym.upsertUser("a", "1")
	sym.upsertUser("b", "2")
	sym.upsertUser("c", "3")

	require.True(t, sym.delete("b"))
	_, found := sym.lookup("b")
	assert.False(t, found)

	_, found = sym.lookup("a")
	assert.True(t, found, "deleting one entry must not disturb others")
	_, found = sym.lookup("c")
	assert.True(t, found)
}

// Test_symbolTable_deleteChainHead forces two names into the same bucket and
// deletes the one stored at the chain head, to exercise the bucket-head
// successor fix: the slot must be replaced by the deleted entry's
// successor, not nulled outright.
func Test_symbolTable_deleteChainHead(t *testing.T) {
	var sym symbolTable
	first, second := collidingNames(t, &sym)

	sym.upsertUser(first, "first")
	sym.upsertUser(second, "second")

	i := sym.bucketIndex(first)
	require.Equal(t, i, sym.bucketIndex(second), "fixture names must collide")
	require.Equal(t, second, sym.buckets[i].name, "second insert becomes the chain head")

	require.True(t, sym.delete(second))

	_, found := sym.lookup(first)
	assert.True(t, found, "chain must survive past its deleted head")
	_, found = sym.lookup(second)
	assert.False(t, found)
}

func Test_symbolTable_histogram(t *testing.T) {
	var sym symbolTable
	lengths := sym.histogram()
	require.Len(t, lengths, symTableBuckets)
	for _, n := range lengths {
		assert.Equal(t, 0, n)
	}

	sym.upsertUser("solo", "")
	lengths = sym.histogram()
	total := 0
	for _, n := range lengths {
		total += n
	}
	assert.Equal(t, 1, total)
}

func Test_symbolTable_allSorted(t *testing.T) {
	var sym symbolTable
	sym.upsertUser("zeta", "")
	sym.upsertUser("alpha", "")
	sym.upsertUser("mu", "")

	entries := sym.allSorted()
	require.Len(t, entries, 3)
	var names []string
	for _, e := range entries {
		names = append(names, e.name)
	}
	assert.Equal(t, []string{"alpha", "mu", "zeta"}, names)
}

// collidingNames brute-forces two distinct names that hash to the same
// bucket, so chain-handling logic can be exercised deterministically.
func collidingNames(t *testing.T, sym *symbolTable) (string, string) {
	t.Helper()
	seen := map[int]string{}
	for i := 0; i < 100000; i++ {
		name := fmt.Sprintf("n%d", i)
		idx := sym.bucketIndex(name)
		if other, ok := seen[idx]; ok {
			return other, name
		}
		seen[idx] = name
	}
	t.Fatal("could not find a colliding pair of names")
	return "", ""
}
