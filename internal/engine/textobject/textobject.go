// Package textobject resolves Vim text objects against a snapshot.
//
// Every resolver is a pure function of (snapshot, position, count, inner)
// and reports errs.ErrObjectNotFound when the position is not inside an
// object of the requested kind.
package textobject

import (
	"fmt"
	"unicode"

	"github.com/dshills/modal/internal/engine/buffer"
	"github.com/dshills/modal/internal/errs"
)

// Kind names a text object family.
type Kind uint8

const (
	Word Kind = iota
	BigWord
	Paragraph
	Paren
	Bracket
	Brace
	Angle
	DoubleQuote
	SingleQuote
	BackQuote
	Tag
)

var kindNames = [...]string{"word", "WORD", "paragraph", "paren", "bracket", "brace", "angle", "dquote", "squote", "bquote", "tag"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// FromKey returns the object kind selected by the key typed after i/a.
func FromKey(r rune) (Kind, bool) {
	switch r {
	case 'w':
		return Word, true
	case 'W':
		return BigWord, true
	case 'p':
		return Paragraph, true
	case '(', ')', 'b':
		return Paren, true
	case '[', ']':
		return Bracket, true
	case '{', '}', 'B':
		return Brace, true
	case '<', '>':
		return Angle, true
	case '"':
		return DoubleQuote, true
	case '\'':
		return SingleQuote, true
	case '`':
		return BackQuote, true
	case 't':
		return Tag, true
	}
	return Word, false
}

// Range is a resolved object. End is exclusive unless Inclusive is set;
// Linewise ranges cover whole lines Start.Line through End.Line.
type Range struct {
	Start     buffer.Position
	End       buffer.Position
	Inclusive bool
	Linewise  bool
}

// Resolve dispatches to the resolver for kind.
func Resolve(snap *buffer.Snapshot, pos buffer.Position, kind Kind, inner bool, count int) (Range, error) {
	if count < 1 {
		count = 1
	}
	switch kind {
	case Word:
		return Words(snap, pos, count, inner, false)
	case BigWord:
		return Words(snap, pos, count, inner, true)
	case Paragraph:
		return Paragraphs(snap, pos, count, inner)
	case Paren:
		return Pair(snap, pos, '(', ')', count, inner)
	case Bracket:
		return Pair(snap, pos, '[', ']', count, inner)
	case Brace:
		return Pair(snap, pos, '{', '}', count, inner)
	case Angle:
		return Pair(snap, pos, '<', '>', count, inner)
	case DoubleQuote:
		return Quote(snap, pos, '"', inner)
	case SingleQuote:
		return Quote(snap, pos, '\'', inner)
	case BackQuote:
		return Quote(snap, pos, '`', inner)
	case Tag:
		return Tags(snap, pos, count, inner)
	}
	return Range{}, fmt.Errorf("%w: unknown kind %v", errs.ErrObjectNotFound, kind)
}

// WordType classifies a rune for word motions and objects.
type WordType uint8

const (
	Whitespace WordType = iota
	Keyword
	Punctuation
)

// Classify returns the WordType of r. With big set every non-blank rune is
// a Keyword.
func Classify(r rune, big bool) WordType {
	switch {
	case unicode.IsSpace(r) || r == 0:
		return Whitespace
	case big:
		return Keyword
	case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
		return Keyword
	}
	return Punctuation
}

func charRange(snap *buffer.Snapshot, start, end int) Range {
	return Range{Start: snap.PositionAt(start), End: snap.PositionAt(end)}
}
