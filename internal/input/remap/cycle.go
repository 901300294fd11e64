package remap

import "github.com/dshills/modal/internal/input/key"

// Occurrences returns the positions at which before occurs in after. A
// rule's own Before at position 0 of its After is excluded by callers:
// like Vim, "n" mapped to "nzz" does not remap its leading "n".
func Occurrences(after, before key.Sequence) []int {
	var out []int
	for i := 0; i+len(before) <= len(after); i++ {
		if after[i:].HasPrefix(before) {
			out = append(out, i)
		}
	}
	return out
}

// edges returns the rules r's expansion can trigger.
func edges(r *Rule, list []*Rule) []*Rule {
	if !r.Recursive {
		return nil
	}
	var out []*Rule
	for _, s := range list {
		for _, at := range Occurrences(r.After, s.Before) {
			if s == r && at == 0 {
				continue
			}
			out = append(out, s)
			break
		}
	}
	return out
}

// cyclic returns the recursive rules whose expansion loops back to them:
// some rule matched while expanding r emits r's Before again.
func cyclic(list []*Rule) []*Rule {
	var out []*Rule
	for _, r := range list {
		for _, s := range edges(r, list) {
			if s != r && len(Occurrences(s.After, r.Before)) > 0 {
				out = append(out, r)
				break
			}
		}
	}
	return out
}
