// Package register stores yanked and deleted text.
//
// Every register holds one text per cursor so that a yank made with N
// cursors pastes back one piece per cursor.
package register

import (
	"strings"
	"sync"
	"unicode"
)

// Type categorizes registers by their behavior.
type Type uint8

const (
	// Unnamed is the default register (").
	Unnamed Type = iota

	// Named is a named register (a-z; A-Z appends).
	Named

	// LastYank is the yank register (0).
	LastYank

	// Numbered is a rotating delete history register (1-9).
	Numbered

	// SmallDelete holds deletes within one line (-).
	SmallDelete

	// BlackHole discards everything written to it (_).
	BlackHole

	// Clipboard is the system clipboard (+ and *).
	Clipboard

	// Invalid is not a register.
	Invalid
)

// TypeOf returns the type of the register with the given name.
func TypeOf(name rune) Type {
	switch {
	case name == '"':
		return Unnamed
	case name >= 'a' && name <= 'z', name >= 'A' && name <= 'Z':
		return Named
	case name == '0':
		return LastYank
	case name >= '1' && name <= '9':
		return Numbered
	case name == '-':
		return SmallDelete
	case name == '_':
		return BlackHole
	case name == '+', name == '*':
		return Clipboard
	}
	return Invalid
}

// IsValid reports whether name is a register.
func IsValid(name rune) bool {
	return TypeOf(name) != Invalid
}

// Content is the text stored in a register.
type Content struct {
	// Texts has one entry per cursor that produced it.
	Texts []string

	// Linewise content pastes as whole lines.
	Linewise bool
}

// IsEmpty reports whether the content holds no text.
func (c Content) IsEmpty() bool {
	for _, t := range c.Texts {
		if t != "" {
			return false
		}
	}
	return true
}

// Joined returns all texts as one, separated by newlines.
func (c Content) Joined() string {
	return strings.Join(c.Texts, "\n")
}

// For returns the text for cursor i of n: the matching piece when the
// content was produced by n cursors, otherwise everything joined.
func (c Content) For(i, n int) string {
	if len(c.Texts) == n && i < n {
		return c.Texts[i]
	}
	return c.Joined()
}

func (c Content) clone() Content {
	return Content{Texts: append([]string(nil), c.Texts...), Linewise: c.Linewise}
}

// ClipboardProvider abstracts system clipboard access.
type ClipboardProvider interface {
	Read() (string, error)
	Write(text string) error
}

// Kind says which operation produced a write.
type Kind uint8

const (
	Yank Kind = iota
	Delete
)

// Store manages all registers. It is safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	registers map[rune]Content
	// numbered[0] is register 1.
	numbered  [9]Content
	clipboard ClipboardProvider
}

// NewStore creates an empty store. A nil clipboard makes + and * behave
// like ordinary registers.
func NewStore(clipboard ClipboardProvider) *Store {
	return &Store{
		registers: make(map[rune]Content),
		clipboard: clipboard,
	}
}

// Get returns the content of a register. Unknown and empty registers
// report false.
func (s *Store) Get(name rune) (Content, bool) {
	if name == 0 {
		name = '"'
	}
	name = unicode.ToLower(name)

	s.mu.RLock()
	clip := s.clipboard
	s.mu.RUnlock()

	if TypeOf(name) == Clipboard && clip != nil {
		text, err := clip.Read()
		if err != nil || text == "" {
			return Content{}, false
		}
		return fromClipboard(text), true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var c Content
	switch TypeOf(name) {
	case Numbered:
		c = s.numbered[name-'1']
	case BlackHole, Invalid:
		return Content{}, false
	default:
		c = s.registers[name]
	}
	if len(c.Texts) == 0 {
		return Content{}, false
	}
	return c.clone(), true
}

// Store records the result of a yank or delete into name, following the
// usual rules: the unnamed register always mirrors the write, yanks to the
// unnamed register also fill 0, multi-line deletes rotate 1-9, small
// deletes fill -, uppercase names append and _ discards. A clipboard
// write failure is returned after the in-memory registers are updated.
func (s *Store) Store(name rune, kind Kind, c Content) error {
	if name == 0 {
		name = '"'
	}
	t := TypeOf(name)
	if t == BlackHole || t == Invalid {
		return nil
	}
	c = c.clone()

	s.mu.Lock()
	clip := s.clipboard
	switch t {
	case Named:
		lower := unicode.ToLower(name)
		if unicode.IsUpper(name) {
			c = appendContent(s.registers[lower], c)
		}
		s.registers[lower] = c
	case Numbered:
		s.numbered[name-'1'] = c
	case Unnamed:
		switch {
		case kind == Yank:
			s.registers['0'] = c
		case c.Linewise || strings.Contains(c.Joined(), "\n"):
			s.rotate(c)
		default:
			s.registers['-'] = c
		}
	case Clipboard:
		if clip == nil {
			s.registers[name] = c
		}
	default:
		s.registers[name] = c
	}
	s.registers['"'] = c
	s.mu.Unlock()

	if t == Clipboard && clip != nil {
		text := c.Joined()
		if c.Linewise {
			text += "\n"
		}
		return clip.Write(text)
	}
	return nil
}

// Set writes c to name alone, without the unnamed mirror or the numbered
// rotation. Macro recordings are stored this way. Uppercase names append.
func (s *Store) Set(name rune, c Content) error {
	if name == 0 {
		name = '"'
	}
	t := TypeOf(name)
	if t == BlackHole || t == Invalid {
		return nil
	}
	c = c.clone()

	s.mu.Lock()
	clip := s.clipboard
	switch {
	case t == Named:
		lower := unicode.ToLower(name)
		if unicode.IsUpper(name) {
			c = appendContent(s.registers[lower], c)
		}
		s.registers[lower] = c
	case t == Numbered:
		s.numbered[name-'1'] = c
	case t == Clipboard && clip != nil:
	default:
		s.registers[name] = c
	}
	s.mu.Unlock()

	if t == Clipboard && clip != nil {
		return clip.Write(c.Joined())
	}
	return nil
}

func (s *Store) rotate(c Content) {
	copy(s.numbered[1:], s.numbered[:8])
	s.numbered[0] = c
}

// Names lists the registers that currently hold text, in display order.
func (s *Store) Names() []rune {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var names []rune
	for _, r := range "\"0-abcdefghijklmnopqrstuvwxyz+*" {
		if c, ok := s.registers[r]; ok && len(c.Texts) > 0 {
			names = append(names, r)
		}
		if r == '0' {
			for i, c := range s.numbered {
				if len(c.Texts) > 0 {
					names = append(names, rune('1'+i))
				}
			}
		}
	}
	return names
}

// appendContent implements the uppercase-register append. Linewise content
// on either side makes the result linewise.
func appendContent(prev, next Content) Content {
	if len(prev.Texts) == 0 {
		return next
	}
	sep := ""
	if prev.Linewise || next.Linewise {
		sep = "\n"
	}
	out := Content{Linewise: prev.Linewise || next.Linewise}
	if len(prev.Texts) == len(next.Texts) {
		for i := range prev.Texts {
			out.Texts = append(out.Texts, prev.Texts[i]+sep+next.Texts[i])
		}
		return out
	}
	out.Texts = []string{prev.Joined() + sep + next.Joined()}
	return out
}

// fromClipboard treats text ending in a newline as linewise.
func fromClipboard(text string) Content {
	if trimmed, ok := strings.CutSuffix(text, "\n"); ok {
		return Content{Texts: []string{trimmed}, Linewise: true}
	}
	return Content{Texts: []string{text}}
}
