/* Package main implements an m4-style text macro processor.

A macro processor reads its input as an undifferentiated stream of bytes
and rewrites it: bare text passes through unchanged, but any identifier
bound to a macro is replaced by that macro's expansion, and the expansion
is itself rescanned so that macros can call other macros, recurse, or
build up larger text fragments a piece at a time.

The processor is built from six pieces, each small on its own:

A pushback buffer (pushback.go) is the single source of bytes the
tokenizer reads from. Command-line files are read whole and pushed onto
it up front; macro expansions are pushed back onto it too, which is how
rescanning happens -- there is no separate "expand" step, only more text
arriving at the front of the same queue.

A tokenizer (token.go) turns that byte stream into identifiers and single
bytes. An identifier is a maximal run of letters, digits, and
underscores starting with a letter or underscore; everything else is a
token of length one.

A symbol table (symtab.go) maps names to either a user-defined body or a
built-in's tag. It is a fixed-size chained hash table, not a Go map,
because the htdist built-in needs to report its own bucket occupancy.

A call stack (frame.go) and a diversion set (divert.go) round out the
state: the call stack tracks macro invocations in progress and the
arguments collected for each; the diversion set implements the numbered
output streams, including the discard sink.

The expansion engine (engine.go) ties these together in a single loop:
read a token, decide what it means given the current quoting and call
state, and either emit it, collect it into an argument, or dispatch a
completed call to a built-in (builtins.go) or to a rescan of a
user-defined body.
*/
package main
