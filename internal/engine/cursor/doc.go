// Package cursor holds the multi-cursor state of an editing session.
//
// A Set is an arena of cursor records, each with a stable ID. Operations
// transform cursors independently; Settle restores the invariants after a
// batch: positions clamped to the snapshot, document order, no duplicates,
// and a primary cursor that survives merges.
package cursor
