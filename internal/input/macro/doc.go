// Package macro records and replays keyboard macros.
//
// A macro is the sequence of keys interpreted between q{register} and the
// closing q. Macros live in the ordinary registers as key notation, so a
// recorded macro can be pasted and edited text can be played back with
// @{register}.
//
// # Recording
//
//	r := macro.NewRecorder()
//	r.Start('a')
//	// ... each interpreted key is passed to Record ...
//	name, keys := r.Stop()
//
// # Playback
//
// The Player replays a sequence through a callback, stopping at the first
// error as a failing command aborts a Vim macro. Macros that play
// themselves are cut off at DefaultMaxDepth.
package macro
