package main

import "sort"

// builtinTag names a built-in macro's implementation. tagUser marks a
// user-defined macro (its behavior comes from entry.body, not from a
// built-in function): the tag, not a nil body, is the discriminator, so a
// user macro with an empty body is distinguishable from a built-in with
// no body at all. Dispatch is a tagged sum type over this enum rather than
// a string switch.
type builtinTag int

const (
	tagUser builtinTag = iota
	tagDefine
	tagUndefine
	tagChangequote
	tagDivert
	tagDivnum
	tagUndivert
	tagDumpdef
	tagErrprint
	tagIfdef
	tagIfelse
	tagInclude
	tagLen
	tagIndex
	tagSubstr
	tagTranslit
	tagDnl
	tagIncr
	tagAdd
	tagMult
	tagSub
	tagDiv
	tagMod
	tagDirsep
	tagHtdist
	tagEsyscmd
	tagMaketemp
)

// symEntry is one chained hash-table node: a macro name mapped either to a
// built-in tag or to a user-defined body.
type symEntry struct {
	name string
	tag  builtinTag
	body string // meaningful only when tag == tagUser
	next *symEntry
}

// isBuiltin reports whether this entry holds a built-in definition.
func (e *symEntry) isBuiltin() bool { return e.tag != tagUser }

const symTableBuckets = 16384

// symbolTable is a closed-addressing hash table with a fixed
// bucket count and chaining, hashed by djb2 (plain
// map[string] can't expose the bucket-length histogram htdist needs).
type symbolTable struct {
	buckets [symTableBuckets]*symEntry
	count   int
}

// djb2 computes the classic djb2 hash: h = 5381; h = h*33 ^ c per byte.
func djb2(name string) uint32 {
	h := uint32(5381)
	for i := 0; i < len(name); i++ {
		h = (h * 33) ^ uint32(name[i])
	}
	return h
}

func (t *symbolTable) bucketIndex(name string) int {
	return int(djb2(name) % symTableBuckets)
}

// lookup returns the entry for name, if any.
func (t *symbolTable) lookup(name string) (*symEntry, bool) {
	for e := t.buckets[t.bucketIndex(name)]; e != nil; e = e.next {
		if e.name == name {
			return e, true
		}
	}
	return nil, false
}

// upsertUser inserts or updates a user-defined macro.
func (t *symbolTable) upsertUser(name, body string) {
	t.upsert(name, tagUser, body)
}

// upsertBuiltin inserts or updates a built-in macro.
func (t *symbolTable) upsertBuiltin(name string, tag builtinTag) {
	t.upsert(name, tag, "")
}

func (t *symbolTable) upsert(name string, tag builtinTag, body string) {
	i := t.bucketIndex(name)
	for e := t.buckets[i]; e != nil; e = e.next {
		if e.name == name {
			e.tag = tag
			e.body = body
			return
		}
	}
	t.buckets[i] = &symEntry{name: name, tag: tag, body: body, next: t.buckets[i]}
	t.count++
}

// delete removes name from the table, reporting whether it was present.
// Deleting an absent name is benign (see DESIGN.md).
func (t *symbolTable) delete(name string) bool {
	i := t.bucketIndex(name)
	var prev *symEntry
	for e := t.buckets[i]; e != nil; e = e.next {
		if e.name == name {
			if prev == nil {
				// Resolved bug: the head is
				// replaced by its successor, not nulled outright, so
				// chained entries past it survive.
				t.buckets[i] = e.next
			} else {
				prev.next = e.next
			}
			t.count--
			return true
		}
		prev = e
	}
	return false
}

// allSorted returns every entry in the table, ordered by name, for
// dumpdef's no-argument form.
func (t *symbolTable) allSorted() []*symEntry {
	entries := make([]*symEntry, 0, t.count)
	for _, head := range t.buckets {
		for e := head; e != nil; e = e.next {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })
	return entries
}

// histogram returns, for each bucket, the number of chained entries in it.
// Used by the htdist built-in for diagnostics.
func (t *symbolTable) histogram() []int {
	lengths := make([]int, symTableBuckets)
	for i, e := range t.buckets {
		n := 0
		for ; e != nil; e = e.next {
			n++
		}
		lengths[i] = n
	}
	return lengths
}
