// Package remap holds user key remapping rules and answers prefix queries
// over them.
//
// Rules are scoped to a mode. Visual, VisualLine and VisualBlock share one
// rule list, and Replace shares Insert's, following mode.Kind.RemapScope.
package remap

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/modal/internal/errs"
	"github.com/dshills/modal/internal/input/key"
	"github.com/dshills/modal/internal/input/mode"
)

// Validation errors reported inside a RuleError.
var (
	ErrEmptyBefore = errors.New("empty before sequence")
	ErrNoTarget    = errors.New("rule has neither after keys nor commands")
	ErrTwoTargets  = errors.New("rule has both after keys and commands")
	ErrDuplicate   = errors.New("duplicate before sequence")
)

// Rule maps a key sequence to replacement keys or to command ids.
type Rule struct {
	Mode   mode.Kind
	Before key.Sequence
	After  key.Sequence
	// Commands are command ids run instead of emitting keys.
	Commands []string
	// Recursive rules have their After keys remapped again.
	Recursive bool
}

func (r *Rule) String() string {
	arrow := "->"
	if r.Recursive {
		arrow = "=>"
	}
	target := r.After.String()
	if len(r.Commands) > 0 {
		target = "[" + strings.Join(r.Commands, ", ") + "]"
	}
	return fmt.Sprintf("%s %s %s %s", r.Mode, r.Before, arrow, target)
}

// RuleError is a rule rejected at load time.
type RuleError struct {
	Rule Rule
	Err  error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("remap %s: %v", e.Rule.String(), e.Err)
}

func (e *RuleError) Unwrap() error {
	return e.Err
}

type node struct {
	children map[key.Event]*node
	rule     *Rule
}

func newNode() *node {
	return &node{children: make(map[key.Event]*node)}
}

// Table is an immutable set of validated rules. A nil *Table has no rules.
type Table struct {
	roots map[mode.Kind]*node
	rules map[mode.Kind][]*Rule
}

// Match is the result of a Lookup.
type Match struct {
	// Rule is the rule whose Before equals the sequence, if any.
	Rule *Rule
	// Prefix is set when some longer rule starts with the sequence.
	Prefix bool
}

// Exact reports whether a rule matched the whole sequence.
func (m Match) Exact() bool {
	return m.Rule != nil
}

// Load validates rules, substitutes leader for <leader> placeholders and
// builds the table. Rejected rules are skipped; each is reported as a
// *RuleError joined into the returned error, and the table remains usable.
func Load(rules []Rule, leader key.Event) (*Table, error) {
	t := &Table{
		roots: make(map[mode.Kind]*node),
		rules: make(map[mode.Kind][]*Rule),
	}
	var problems []error
	for _, r := range rules {
		r.Mode = r.Mode.RemapScope()
		r.Before = r.Before.ReplaceLeader(leader)
		r.After = r.After.ReplaceLeader(leader)
		if err := validate(&r); err != nil {
			problems = append(problems, &RuleError{Rule: r, Err: err})
			continue
		}
		if m := t.Lookup(r.Mode, r.Before); m.Exact() {
			problems = append(problems, &RuleError{Rule: r, Err: ErrDuplicate})
			continue
		}
		rule := r
		t.rules[r.Mode] = append(t.rules[r.Mode], &rule)
		t.insert(&rule)
	}
	for _, m := range mode.All {
		for _, r := range cyclic(t.rules[m]) {
			problems = append(problems, &RuleError{Rule: *r, Err: errs.ErrRemapCycle})
			t.remove(m, r)
		}
	}
	return t, errors.Join(problems...)
}

func validate(r *Rule) error {
	switch {
	case len(r.Before) == 0:
		return ErrEmptyBefore
	case len(r.After) == 0 && len(r.Commands) == 0:
		return ErrNoTarget
	case len(r.After) > 0 && len(r.Commands) > 0:
		return ErrTwoTargets
	}
	return nil
}

func (t *Table) insert(r *Rule) {
	root, ok := t.roots[r.Mode]
	if !ok {
		root = newNode()
		t.roots[r.Mode] = root
	}
	n := root
	for _, ev := range r.Before {
		child, ok := n.children[ev]
		if !ok {
			child = newNode()
			n.children[ev] = child
		}
		n = child
	}
	n.rule = r
}

func (t *Table) remove(m mode.Kind, r *Rule) {
	list := t.rules[m]
	for i, other := range list {
		if other == r {
			t.rules[m] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	root := newNode()
	t.roots[m] = root
	for _, other := range t.rules[m] {
		t.insert(other)
	}
}

// Lookup reports how seq relates to the rules of mode m.
func (t *Table) Lookup(m mode.Kind, seq key.Sequence) Match {
	if t == nil || len(seq) == 0 {
		return Match{}
	}
	n, ok := t.roots[m.RemapScope()]
	if !ok {
		return Match{}
	}
	for _, ev := range seq {
		if n, ok = n.children[ev]; !ok {
			return Match{}
		}
	}
	return Match{Rule: n.rule, Prefix: len(n.children) > 0}
}

// Longest returns the longest rule whose Before is a prefix of seq.
func (t *Table) Longest(m mode.Kind, seq key.Sequence) *Rule {
	if t == nil {
		return nil
	}
	n, ok := t.roots[m.RemapScope()]
	if !ok {
		return nil
	}
	var best *Rule
	for _, ev := range seq {
		if n, ok = n.children[ev]; !ok {
			break
		}
		if n.rule != nil {
			best = n.rule
		}
	}
	return best
}

// Rules returns the accepted rules of mode m in load order.
func (t *Table) Rules(m mode.Kind) []Rule {
	if t == nil {
		return nil
	}
	list := t.rules[m.RemapScope()]
	out := make([]Rule, len(list))
	for i, r := range list {
		out[i] = *r
	}
	return out
}

// Len returns the number of accepted rules across all modes.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	n := 0
	for _, list := range t.rules {
		n += len(list)
	}
	return n
}
