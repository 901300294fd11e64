// Package quickjump implements label-based jumps: enumerate targets,
// assign short prefix-free labels, and resolve typed labels to a target.
package quickjump

import (
	"strings"

	"github.com/dshills/modal/internal/engine/buffer"
)

// DefaultKeys is the default label alphabet, home row and nearby keys
// first.
const DefaultKeys = "hklyuiopnm,qwertzxcvbasdgjf;"

// DefaultMaxLabelLength bounds label length.
const DefaultMaxLabelLength = 2

// Target is a labeled jump target.
type Target struct {
	Pos   buffer.Position
	Label string
}

// Labels returns labels for count targets. Labels form the leaves of a
// tree over alphabet no deeper than maxLen: the tree starts with one leaf
// per key and repeatedly expands the farthest shallowest leaf, so closer
// targets keep shorter labels. No label is a prefix of another. When the
// tree cannot hold count leaves the result is shorter than count.
func Labels(alphabet []rune, count, maxLen int) []string {
	if len(alphabet) == 0 || count <= 0 {
		return nil
	}
	maxLen = max(maxLen, 1)
	leaves := make([][]rune, len(alphabet))
	for i, r := range alphabet {
		leaves[i] = []rune{r}
	}
	for len(leaves) < count && len(alphabet) > 1 {
		idx := -1
		for i := len(leaves) - 1; i >= 0; i-- {
			if len(leaves[i]) < maxLen && (idx < 0 || len(leaves[i]) < len(leaves[idx])) {
				idx = i
			}
		}
		if idx < 0 {
			break
		}
		parent := leaves[idx]
		children := make([][]rune, len(alphabet))
		for i, r := range alphabet {
			children[i] = append(append([]rune(nil), parent...), r)
		}
		leaves = append(leaves[:idx], append(children, leaves[idx+1:]...)...)
	}
	n := min(count, len(leaves))
	out := make([]string, n)
	for i := range out {
		out[i] = string(leaves[i])
	}
	return out
}

// Status is the result of typing a label key.
type Status uint8

const (
	NotFound Status = iota
	Partial
	Found
)

func (s Status) String() string {
	switch s {
	case Found:
		return "found"
	case Partial:
		return "partial"
	}
	return "not found"
}

// Overlay is one quick-jump activation.
type Overlay struct {
	trigger Trigger
	targets []Target
	typed   string
}

// New labels positions, which must already be ordered closest first.
// Positions beyond the label capacity stay unlabeled and are dropped.
func New(trigger Trigger, positions []buffer.Position, alphabet string, maxLen int) *Overlay {
	if alphabet == "" {
		alphabet = DefaultKeys
	}
	labels := Labels(uniqueRunes(alphabet), len(positions), maxLen)
	o := &Overlay{trigger: trigger, targets: make([]Target, len(labels))}
	for i, l := range labels {
		o.targets[i] = Target{Pos: positions[i], Label: l}
	}
	return o
}

func uniqueRunes(s string) []rune {
	seen := make(map[rune]bool)
	var out []rune
	for _, r := range s {
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	return out
}

// Trigger returns the trigger that built the overlay.
func (o *Overlay) Trigger() Trigger {
	return o.trigger
}

// Targets returns every labeled target.
func (o *Overlay) Targets() []Target {
	return append([]Target(nil), o.targets...)
}

// Visible returns targets still reachable after the typed keys, with the
// typed part stripped from their labels.
func (o *Overlay) Visible() []Target {
	var out []Target
	for _, t := range o.targets {
		if strings.HasPrefix(t.Label, o.typed) {
			out = append(out, Target{Pos: t.Pos, Label: t.Label[len(o.typed):]})
		}
	}
	return out
}

// Typed returns the label keys typed so far.
func (o *Overlay) Typed() string {
	return o.typed
}

// Single returns the only target when exactly one was labeled.
func (o *Overlay) Single() (buffer.Position, bool) {
	if len(o.targets) == 1 {
		return o.targets[0].Pos, true
	}
	return buffer.Position{}, false
}

// Empty reports whether there is nothing to jump to.
func (o *Overlay) Empty() bool {
	return len(o.targets) == 0
}

// Select resolves a complete typed label.
func (o *Overlay) Select(typed string) (Status, buffer.Position) {
	partial := false
	for _, t := range o.targets {
		if t.Label == typed {
			return Found, t.Pos
		}
		if strings.HasPrefix(t.Label, typed) {
			partial = true
		}
	}
	if partial {
		return Partial, buffer.Position{}
	}
	return NotFound, buffer.Position{}
}

// Type appends one key to the typed label and resolves it.
func (o *Overlay) Type(r rune) (Status, buffer.Position) {
	o.typed += string(r)
	return o.Select(o.typed)
}
