// Package motion computes cursor targets for Vim motions.
//
// Motions are pure functions of a snapshot and a start position. The
// result says where the motion lands and how an operator should treat the
// span it covers (exclusive, inclusive or linewise).
package motion

import (
	"fmt"

	"github.com/dshills/modal/internal/engine/buffer"
	"github.com/dshills/modal/internal/engine/search"
	"github.com/dshills/modal/internal/errs"
)

// Kind identifies a motion.
type Kind uint8

const (
	Left Kind = iota
	Right
	Up
	Down
	WordForward
	WordBackward
	WordEnd
	WordEndBackward
	BigWordForward
	BigWordBackward
	BigWordEnd
	BigWordEndBackward
	LineStart
	FirstNonBlank
	LineEnd
	FirstLine
	LastLine
	FindForward
	FindBackward
	TillForward
	TillBackward
	RepeatFind
	RepeatFindReverse
	MatchPair
	ParagraphForward
	ParagraphBackward
	Search
	SearchNext
	SearchPrev
	SpaceRight
	BackspaceLeft
	CurrentLine
	Jump
)

var kindNames = map[Kind]string{
	Left: "h", Right: "l", Up: "k", Down: "j",
	WordForward: "w", WordBackward: "b", WordEnd: "e", WordEndBackward: "ge",
	BigWordForward: "W", BigWordBackward: "B", BigWordEnd: "E", BigWordEndBackward: "gE",
	LineStart: "0", FirstNonBlank: "^", LineEnd: "$", FirstLine: "gg", LastLine: "G",
	FindForward: "f", FindBackward: "F", TillForward: "t", TillBackward: "T",
	RepeatFind: ";", RepeatFindReverse: ",", MatchPair: "%",
	ParagraphForward: "}", ParagraphBackward: "{",
	Search: "/", SearchNext: "n", SearchPrev: "N",
	SpaceRight: "<Space>", BackspaceLeft: "<BS>", CurrentLine: "line", Jump: "jump",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// IsFind reports whether k is one of f F t T.
func (k Kind) IsFind() bool {
	return k >= FindForward && k <= TillBackward
}

// Motion is a motion plus its argument.
type Motion struct {
	Kind Kind
	// Char is the target of f F t T.
	Char rune
	// Repeat marks a find replayed by ; or , so t and T skip an adjacent
	// match.
	Repeat bool
	// Pattern and Backward describe a Search.
	Pattern  string
	Backward bool
	// Target, Inclusive and Linewise describe a Jump.
	Target    buffer.Position
	Inclusive bool
	Linewise  bool
}

func (m Motion) String() string {
	switch {
	case m.Kind.IsFind():
		return m.Kind.String() + string(m.Char)
	case m.Kind == Search && m.Backward:
		return "?" + m.Pattern
	case m.Kind == Search:
		return "/" + m.Pattern
	case m.Kind == Jump:
		return "jump " + m.Target.String()
	}
	return m.Kind.String()
}

// Reverse returns the find in the opposite direction, used by ",".
func (m Motion) Reverse() Motion {
	switch m.Kind {
	case FindForward:
		m.Kind = FindBackward
	case FindBackward:
		m.Kind = FindForward
	case TillForward:
		m.Kind = TillBackward
	case TillBackward:
		m.Kind = TillForward
	case Search:
		m.Backward = !m.Backward
	}
	return m
}

// Result is where a motion lands.
type Result struct {
	Pos       buffer.Position
	Inclusive bool
	Linewise  bool
}

// Env carries the count and options a motion is evaluated with.
type Env struct {
	Count    int
	HasCount bool
	// Operator is set when the motion feeds an operator; it changes how w
	// treats the end of a line.
	Operator bool
	Search   search.Options
}

func (e Env) count() int {
	if e.Count < 1 {
		return 1
	}
	return e.Count
}

func fail(m Motion) error {
	return fmt.Errorf("%w: motion %v", errs.ErrObjectNotFound, m)
}

// Apply evaluates m from pos. A motion that cannot move reports
// errs.ErrObjectNotFound. RepeatFind, SearchNext and their reverses must be
// replaced by a concrete motion before calling Apply.
func Apply(snap *buffer.Snapshot, pos buffer.Position, m Motion, env Env) (Result, error) {
	pos = snap.ClampInsert(pos)
	n := env.count()
	switch m.Kind {
	case Left, BackspaceLeft:
		if m.Kind == BackspaceLeft {
			return crossLeft(snap, pos, n, m)
		}
		if pos.Col == 0 {
			return Result{}, fail(m)
		}
		return Result{Pos: buffer.Pos(pos.Line, max(pos.Col-n, 0))}, nil
	case Right:
		length := snap.LineLen(pos.Line)
		if length == 0 {
			return Result{}, fail(m)
		}
		return Result{Pos: buffer.Pos(pos.Line, min(pos.Col+n, length))}, nil
	case SpaceRight:
		return crossRight(snap, pos, n, m)
	case Up:
		if pos.Line == 0 {
			return Result{}, fail(m)
		}
		return Result{Pos: buffer.Pos(max(pos.Line-n, 0), pos.Col), Linewise: true}, nil
	case Down:
		if pos.Line >= snap.LastLine() {
			return Result{}, fail(m)
		}
		return Result{Pos: buffer.Pos(min(pos.Line+n, snap.LastLine()), pos.Col), Linewise: true}, nil
	case CurrentLine:
		line := min(pos.Line+n-1, snap.LastLine())
		return Result{Pos: buffer.Pos(line, pos.Col), Linewise: true}, nil
	case WordForward, BigWordForward:
		return wordForward(snap, pos, n, m.Kind == BigWordForward, env.Operator, m)
	case WordBackward, BigWordBackward:
		return wordBackward(snap, pos, n, m.Kind == BigWordBackward, m)
	case WordEnd, BigWordEnd:
		return wordEnd(snap, pos, n, m.Kind == BigWordEnd, m)
	case WordEndBackward, BigWordEndBackward:
		return wordEndBackward(snap, pos, n, m.Kind == BigWordEndBackward, m)
	case LineStart:
		return Result{Pos: buffer.Pos(pos.Line, 0)}, nil
	case FirstNonBlank:
		return Result{Pos: buffer.Pos(pos.Line, snap.FirstNonBlank(pos.Line))}, nil
	case LineEnd:
		line := min(pos.Line+n-1, snap.LastLine())
		return Result{Pos: buffer.Pos(line, snap.LineLen(line))}, nil
	case FirstLine, LastLine:
		line := 0
		if m.Kind == LastLine {
			line = snap.LastLine()
		}
		if env.HasCount {
			line = min(max(env.Count-1, 0), snap.LastLine())
		}
		return Result{Pos: buffer.Pos(line, snap.FirstNonBlank(line)), Linewise: true}, nil
	case FindForward, FindBackward, TillForward, TillBackward:
		return find(snap, pos, n, m)
	case MatchPair:
		if env.HasCount {
			if env.Count > 100 {
				return Result{}, fail(m)
			}
			line := (env.Count*snap.LineCount() + 99) / 100
			line = min(max(line-1, 0), snap.LastLine())
			return Result{Pos: buffer.Pos(line, snap.FirstNonBlank(line)), Linewise: true}, nil
		}
		return matchPair(snap, pos, m)
	case ParagraphForward:
		return paragraphForward(snap, pos, n), nil
	case ParagraphBackward:
		return paragraphBackward(snap, pos, n), nil
	case Search:
		return searchMotion(snap, pos, n, m, env)
	case Jump:
		target := snap.ClampInsert(m.Target)
		return Result{Pos: target, Inclusive: m.Inclusive, Linewise: m.Linewise}, nil
	}
	return Result{}, fmt.Errorf("%w: unresolved motion %v", errs.ErrGrammarInvalid, m)
}

func crossRight(snap *buffer.Snapshot, pos buffer.Position, n int, m Motion) (Result, error) {
	moved := false
	for ; n > 0; n-- {
		switch {
		case pos.Col+1 < snap.LineLen(pos.Line):
			pos.Col++
		case pos.Line < snap.LastLine():
			pos = buffer.Pos(pos.Line+1, 0)
		default:
			n = 0
			continue
		}
		moved = true
	}
	if !moved {
		return Result{}, fail(m)
	}
	return Result{Pos: pos}, nil
}

func crossLeft(snap *buffer.Snapshot, pos buffer.Position, n int, m Motion) (Result, error) {
	moved := false
	for ; n > 0; n-- {
		switch {
		case pos.Col > 0:
			pos.Col--
		case pos.Line > 0:
			pos = buffer.Pos(pos.Line-1, max(snap.LineLen(pos.Line-1)-1, 0))
		default:
			n = 0
			continue
		}
		moved = true
	}
	if !moved {
		return Result{}, fail(m)
	}
	return Result{Pos: pos}, nil
}

func find(snap *buffer.Snapshot, pos buffer.Position, n int, m Motion) (Result, error) {
	line := snap.LineRunes(pos.Line)
	forward := m.Kind == FindForward || m.Kind == TillForward
	till := m.Kind == TillForward || m.Kind == TillBackward
	col := pos.Col
	if till && m.Repeat {
		// Skip the match the cursor is already parked against.
		if forward {
			col++
		} else {
			col--
		}
	}
	found := -1
	for ; n > 0; n-- {
		found = -1
		if forward {
			for c := col + 1; c < len(line); c++ {
				if line[c] == m.Char {
					found = c
					break
				}
			}
		} else {
			for c := min(col, len(line)) - 1; c >= 0; c-- {
				if line[c] == m.Char {
					found = c
					break
				}
			}
		}
		if found < 0 {
			return Result{}, fail(m)
		}
		col = found
	}
	switch m.Kind {
	case FindForward:
		return Result{Pos: buffer.Pos(pos.Line, found), Inclusive: true}, nil
	case TillForward:
		return Result{Pos: buffer.Pos(pos.Line, found-1), Inclusive: true}, nil
	case TillBackward:
		return Result{Pos: buffer.Pos(pos.Line, found+1)}, nil
	}
	return Result{Pos: buffer.Pos(pos.Line, found)}, nil
}

var pairs = map[rune]struct {
	other   rune
	forward bool
}{
	'(': {')', true}, '[': {']', true}, '{': {'}', true},
	')': {'(', false}, ']': {'[', false}, '}': {'{', false},
}

func matchPair(snap *buffer.Snapshot, pos buffer.Position, m Motion) (Result, error) {
	line := snap.LineRunes(pos.Line)
	col := -1
	for c := pos.Col; c < len(line); c++ {
		if _, ok := pairs[line[c]]; ok {
			col = c
			break
		}
	}
	if col < 0 {
		return Result{}, fail(m)
	}
	start := snap.Offset(buffer.Pos(pos.Line, col))
	self := line[col]
	p := pairs[self]
	depth := 0
	step := 1
	if !p.forward {
		step = -1
	}
	for off := start; off >= 0 && off < snap.Len(); off += step {
		switch snap.RuneAt(off) {
		case self:
			depth++
		case p.other:
			depth--
			if depth == 0 {
				return Result{Pos: snap.PositionAt(off), Inclusive: true}, nil
			}
		}
	}
	return Result{}, fail(m)
}

func paragraphForward(snap *buffer.Snapshot, pos buffer.Position, n int) Result {
	line := pos.Line
	for ; n > 0; n-- {
		for line < snap.LastLine() && snap.LineLen(line) == 0 {
			line++
		}
		for line < snap.LastLine() && snap.LineLen(line) != 0 {
			line++
		}
	}
	if line == snap.LastLine() && snap.LineLen(line) != 0 {
		return Result{Pos: buffer.Pos(line, snap.LineLen(line))}
	}
	return Result{Pos: buffer.Pos(line, 0)}
}

func paragraphBackward(snap *buffer.Snapshot, pos buffer.Position, n int) Result {
	line := pos.Line
	for ; n > 0; n-- {
		for line > 0 && snap.LineLen(line) == 0 {
			line--
		}
		for line > 0 && snap.LineLen(line) != 0 {
			line--
		}
	}
	return Result{Pos: buffer.Pos(line, 0)}
}

func searchMotion(snap *buffer.Snapshot, pos buffer.Position, n int, m Motion, env Env) (Result, error) {
	if m.Pattern == "" {
		return Result{}, fail(m)
	}
	p := search.Compile(m.Pattern, env.Search)
	dir := search.Forward
	if m.Backward {
		dir = search.Backward
	}
	off := snap.Offset(pos)
	for ; n > 0; n-- {
		match, ok := p.Next(snap, off, dir, true)
		if !ok {
			return Result{}, fail(m)
		}
		off = match.Start
	}
	return Result{Pos: snap.PositionAt(off)}, nil
}
