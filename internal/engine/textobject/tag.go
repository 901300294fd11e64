package textobject

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/dshills/modal/internal/engine/buffer"
	"github.com/dshills/modal/internal/errs"
)

type tagToken struct {
	name       string
	start, end int // rune offsets, end exclusive
}

type tagPair struct {
	open, close tagToken
}

// scanTags tokenizes text and pairs start and end tags by name. An end tag
// closes the nearest open tag of the same name, discarding unclosed tags
// above it; end tags with no open partner are ignored.
func scanTags(text string) []tagPair {
	z := html.NewTokenizer(strings.NewReader(text))
	var (
		stack []tagToken
		pairs []tagPair
		off   int
	)
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return pairs
		}
		raw := z.Raw()
		tok := tagToken{start: off, end: off + utf8.RuneCount(raw)}
		off = tok.end

		switch tt {
		case html.StartTagToken:
			name, _ := z.TagName()
			tok.name = string(name)
			stack = append(stack, tok)
		case html.EndTagToken:
			name, _ := z.TagName()
			tok.name = string(name)
			for i := len(stack) - 1; i >= 0; i-- {
				if stack[i].name == tok.name {
					pairs = append(pairs, tagPair{open: stack[i], close: tok})
					stack = stack[:i]
					break
				}
			}
		}
	}
}

// Tags resolves it/at: the count-th innermost element whose tags enclose
// the cursor. Unbalanced or malformed markup yields ErrObjectNotFound.
func Tags(snap *buffer.Snapshot, pos buffer.Position, count int, inner bool) (Range, error) {
	off := snap.Offset(pos)

	var enclosing []tagPair
	for _, p := range scanTags(snap.Text()) {
		if p.open.start <= off && off < p.close.end {
			enclosing = append(enclosing, p)
		}
	}
	if len(enclosing) < count {
		return Range{}, errs.ErrObjectNotFound
	}

	// Innermost first: later open tags are nested deeper.
	for i := 1; i < len(enclosing); i++ {
		for j := i; j > 0 && enclosing[j].open.start > enclosing[j-1].open.start; j-- {
			enclosing[j], enclosing[j-1] = enclosing[j-1], enclosing[j]
		}
	}
	p := enclosing[count-1]

	if inner {
		return charRange(snap, p.open.end, p.close.start), nil
	}
	return charRange(snap, p.open.start, p.close.end), nil
}
