package key

// Sequence is an ordered series of events.
type Sequence []Event

// Equal reports element-wise equality.
func (s Sequence) Equal(other Sequence) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether prefix is a prefix of s (inclusive of equality).
func (s Sequence) HasPrefix(prefix Sequence) bool {
	if len(prefix) > len(s) {
		return false
	}
	return s[:len(prefix)].Equal(prefix)
}

// Clone returns an independent copy.
func (s Sequence) Clone() Sequence {
	if s == nil {
		return nil
	}
	out := make(Sequence, len(s))
	copy(out, s)
	return out
}

// String renders the sequence in key notation.
func (s Sequence) String() string {
	return describe(s)
}

// Text returns the concatenated printable text of the sequence and whether
// every event was printable.
func (s Sequence) Text() (string, bool) {
	buf := make([]rune, 0, len(s))
	for _, ev := range s {
		if !ev.IsChar() {
			return "", false
		}
		buf = append(buf, ev.Rune)
	}
	return string(buf), true
}

// ReplaceLeader returns a copy with every leader placeholder replaced by
// leader.
func (s Sequence) ReplaceLeader(leader Event) Sequence {
	out := s.Clone()
	for i, ev := range out {
		if ev.Key == KeyLeader {
			out[i] = leader
		}
	}
	return out
}

// FromString returns the sequence of plain character events for text.
func FromString(text string) Sequence {
	seq := make(Sequence, 0, len(text))
	for _, r := range text {
		seq = append(seq, Rune(r))
	}
	return seq
}
