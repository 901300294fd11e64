// Package buffer is the engine's view of the host document.
//
// A Snapshot is an immutable, line-addressable copy of the text taken once
// per action. Positions are (line, column) pairs where the column counts
// runes. Offsets count runes from the start of the document with one
// newline between consecutive lines.
//
// The Host interface is the whole boundary to the editor that owns the
// document: read a snapshot, apply an ordered edit batch atomically.
// Memory is an in-process Host used by the terminal front end and tests.
package buffer
