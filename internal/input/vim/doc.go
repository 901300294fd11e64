// Package vim resolves keystrokes into editing actions using the Vim
// command grammar.
//
// The grammar for Normal and Visual modes is:
//
//	[count]["register][operator][count](motion|text-object)
//	[count]["register][operator][operator]   (linewise: dd, yy, cc, gUU)
//	[count][motion]
//	[count]["register][command]
//
// Examples:
//   - "5j": move down 5 lines
//   - "2d3w": delete 6 words
//   - "diw": delete inner word
//   - `"ayy`: yank a line into register a
//   - "<leader><leader>f" + char: quick-jump to a character
//
// Resolve is a pure function. The caller threads the returned Pending
// state into the next call:
//
//	res := vim.Resolve(opts, pending, mode, ev)
//	switch res.Status {
//	case vim.StatusComplete:
//	    // apply res.Action
//	case vim.StatusNeedMore:
//	    // keep res.Pending, wait for the next key
//	case vim.StatusInvalid:
//	    // discard pending state
//	}
//	pending = res.Pending
package vim
