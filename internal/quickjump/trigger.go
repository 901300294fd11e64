package quickjump

import (
	"fmt"
	"strings"
)

// Trigger selects how targets are enumerated.
type Trigger uint8

const (
	Search Trigger = iota
	Search2
	FindForward
	Find2Forward
	FindBackward
	Find2Backward
	TillForward
	Till2Forward
	TillBackward
	Till2Backward
	FindBoth
	Find2Both
	TillBoth
	Till2Both
	WordStart
	WordStartBackward
	WordStartBoth
	WordEnd
	WordEndBackward
	WordEndBoth
	LineDown
	LineUp
	LineBoth
	LineForward
	LineBackward
	SearchN
)

// triggerKeys are typed after two leaders; bdKeys after three.
var (
	triggerKeys = map[string]Trigger{
		"s": Search, "2s": Search2,
		"f": FindForward, "2f": Find2Forward, "F": FindBackward, "2F": Find2Backward,
		"t": TillForward, "2t": Till2Forward, "T": TillBackward, "2T": Till2Backward,
		"w": WordStart, "b": WordStartBackward, "e": WordEnd, "ge": WordEndBackward,
		"j": LineDown, "k": LineUp, "l": LineForward, "h": LineBackward,
		"/": SearchN,
	}
	bdKeys = map[string]Trigger{
		"bdf": FindBoth, "bd2f": Find2Both, "bdt": TillBoth, "bd2t": Till2Both,
		"bdw": WordStartBoth, "bde": WordEndBoth, "bdjk": LineBoth,
	}
)

func (t Trigger) String() string {
	for k, v := range triggerKeys {
		if v == t {
			return k
		}
	}
	for k, v := range bdKeys {
		if v == t {
			return k
		}
	}
	return fmt.Sprintf("Trigger(%d)", t)
}

// Chars is the number of search characters the trigger reads: 0, 1, 2,
// or -1 for "until <CR>".
func (t Trigger) Chars() int {
	switch t {
	case Search, FindForward, FindBackward, TillForward, TillBackward, FindBoth, TillBoth:
		return 1
	case Search2, Find2Forward, Find2Backward, Till2Forward, Till2Backward, Find2Both, Till2Both:
		return 2
	case SearchN:
		return -1
	}
	return 0
}

// LookupTrigger matches typed trigger keys. bd selects the triggers typed
// after a third leader. It reports the trigger on an exact match and
// whether typed is a proper prefix of some trigger.
func LookupTrigger(typed string, bd bool) (t Trigger, exact, prefix bool) {
	table := triggerKeys
	if bd {
		table = bdKeys
	}
	t, exact = table[typed]
	for k := range table {
		if len(k) > len(typed) && strings.HasPrefix(k, typed) {
			prefix = true
			break
		}
	}
	return t, exact, prefix
}
