// Package key defines the keystroke tokens consumed by the modal engine.
//
// An Event is a comparable value: a special key or a rune plus modifiers.
// A Sequence is an ordered slice of events compared element by element.
//
// # Notation
//
// Sequences have a textual form used by configuration and tests. Literal
// characters stand for themselves and bracketed names stand for one event:
//
//	dd            two 'd' events
//	<Esc>         escape
//	<C-a>         ctrl+a
//	<C-alt+down>  ctrl+alt+down arrow
//	<leader>s     the leader placeholder followed by 's'
//
// Modifiers inside brackets may be joined with '-' or '+'. A '<' that does
// not open a valid bracketed name is a literal '<'.
package key
