package vim

import "fmt"

// Operator is a Vim operator: a command that acts on the text covered by
// a motion or text object.
type Operator uint8

const (
	OpNone Operator = iota
	OpDelete
	OpChange
	OpYank
	OpIndentRight
	OpIndentLeft
	OpLowercase
	OpUppercase
	OpToggleCase
)

var operatorInfo = [...]struct {
	name string
	// keys typed to start the operator.
	keys string
	// double is the key that repeats the operator linewise.
	double       rune
	changesText  bool
	entersInsert bool
}{
	OpNone:        {name: "none"},
	OpDelete:      {"delete", "d", 'd', true, false},
	OpChange:      {"change", "c", 'c', true, true},
	OpYank:        {"yank", "y", 'y', false, false},
	OpIndentRight: {"indentRight", ">", '>', true, false},
	OpIndentLeft:  {"indentLeft", "<", '<', true, false},
	OpLowercase:   {"lowercase", "gu", 'u', true, false},
	OpUppercase:   {"uppercase", "gU", 'U', true, false},
	OpToggleCase:  {"toggleCase", "g~", '~', true, false},
}

func (o Operator) String() string {
	if int(o) < len(operatorInfo) {
		return operatorInfo[o].name
	}
	return fmt.Sprintf("Operator(%d)", o)
}

// Keys returns the keys that start the operator.
func (o Operator) Keys() string {
	if int(o) < len(operatorInfo) {
		return operatorInfo[o].keys
	}
	return ""
}

// ChangesText reports whether the operator modifies the buffer.
func (o Operator) ChangesText() bool {
	return int(o) < len(operatorInfo) && operatorInfo[o].changesText
}

// EntersInsert reports whether the operator leaves the editor in Insert
// mode.
func (o Operator) EntersInsert() bool {
	return int(o) < len(operatorInfo) && operatorInfo[o].entersInsert
}

// isDouble reports whether r repeats o to make it linewise.
func (o Operator) isDouble(r rune) bool {
	return o != OpNone && int(o) < len(operatorInfo) && operatorInfo[o].double == r
}

func operatorFor(r rune) Operator {
	switch r {
	case 'd':
		return OpDelete
	case 'c':
		return OpChange
	case 'y':
		return OpYank
	case '>':
		return OpIndentRight
	case '<':
		return OpIndentLeft
	}
	return OpNone
}

func gOperatorFor(r rune) Operator {
	switch r {
	case 'u':
		return OpLowercase
	case 'U':
		return OpUppercase
	case '~':
		return OpToggleCase
	}
	return OpNone
}
