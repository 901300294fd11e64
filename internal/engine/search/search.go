// Package search finds pattern matches in a snapshot for the / ? n N
// motions. Patterns use ECMAScript regular expression syntax; a pattern
// that does not compile is searched for literally.
package search

import (
	"strings"
	"time"
	"unicode"

	"github.com/dlclark/regexp2"

	"github.com/dshills/modal/internal/engine/buffer"
)

// Direction of a search.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// Reverse returns the opposite direction.
func (d Direction) Reverse() Direction {
	if d == Forward {
		return Backward
	}
	return Forward
}

// matchTimeout bounds catastrophic backtracking on a single search.
const matchTimeout = 250 * time.Millisecond

// Options control pattern compilation.
type Options struct {
	IgnoreCase bool
	// SmartCase turns IgnoreCase off for patterns containing upper case.
	SmartCase bool
}

// Pattern is a compiled search pattern.
type Pattern struct {
	source  string
	literal bool
	re      *regexp2.Regexp
}

// Match is a half-open rune offset span.
type Match struct {
	Start, End int
}

// Compile builds a pattern. It never fails: invalid expressions fall back
// to a literal search for the same text.
func Compile(source string, opts Options) *Pattern {
	flags := regexp2.RegexOptions(regexp2.ECMAScript | regexp2.Multiline)
	if opts.IgnoreCase && !(opts.SmartCase && hasUpper(source)) {
		flags |= regexp2.IgnoreCase
	}
	re, err := regexp2.Compile(source, flags)
	literal := false
	if err != nil {
		re = regexp2.MustCompile(regexp2.Escape(source), flags)
		literal = true
	}
	re.MatchTimeout = matchTimeout
	return &Pattern{source: source, literal: literal, re: re}
}

// Literal builds a pattern matching text exactly.
func Literal(text string) *Pattern {
	re := regexp2.MustCompile(regexp2.Escape(text), regexp2.None)
	re.MatchTimeout = matchTimeout
	return &Pattern{source: text, literal: true, re: re}
}

// String returns the source text.
func (p *Pattern) String() string {
	return p.source
}

// IsLiteral reports whether the pattern is matched verbatim.
func (p *Pattern) IsLiteral() bool {
	return p.literal
}

func hasUpper(s string) bool {
	return strings.IndexFunc(s, unicode.IsUpper) >= 0
}

// All returns every match in the snapshot in document order.
func (p *Pattern) All(snap *buffer.Snapshot) []Match {
	text := []rune(snap.Text())
	var out []Match
	m, err := p.re.FindRunesMatch(text)
	for m != nil && err == nil {
		out = append(out, Match{Start: m.Index, End: m.Index + m.Length})
		prev := m
		m, err = p.re.FindNextMatch(m)
		if m != nil && m.Index == prev.Index && m.Length == 0 && prev.Length == 0 {
			break
		}
	}
	return out
}

// Next returns the first match strictly after from (forward) or strictly
// before it (backward), wrapping around the document when wrap is set.
func (p *Pattern) Next(snap *buffer.Snapshot, from int, dir Direction, wrap bool) (Match, bool) {
	all := p.All(snap)
	if len(all) == 0 {
		return Match{}, false
	}
	if dir == Forward {
		for _, m := range all {
			if m.Start > from {
				return m, true
			}
		}
		if wrap {
			return all[0], true
		}
		return Match{}, false
	}
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].Start < from {
			return all[i], true
		}
	}
	if wrap {
		return all[len(all)-1], true
	}
	return Match{}, false
}
