// Package input holds input events that a terminal cannot report on its own.
package input

import "strings"

// Modifier is a held modifier key.
type Modifier string

const (
	Ctrl  Modifier = "ctrl"
	Alt   Modifier = "alt"
	Shift Modifier = "shift"
)

// modifierOrder is the order modifiers appear in a chord string, matching
// bubbletea's "ctrl+alt+x" key names.
var modifierOrder = []Modifier{Ctrl, Alt, Shift}

// Chord is a modifier+key combination such as "ctrl+1". bubbletea cannot
// report these from a terminal, so hosts and test input synthesise them as
// messages. Chord satisfies fmt.Stringer and can be matched against key
// bindings with key.Matches.
type Chord string

// NewChord builds a chord from held modifiers and a key name.
func NewChord(k string, mods ...Modifier) Chord {
	held := make(map[Modifier]bool, len(mods))
	for _, m := range mods {
		held[m] = true
	}

	var b strings.Builder
	for _, m := range modifierOrder {
		if held[m] {
			b.WriteString(string(m))
			b.WriteByte('+')
		}
	}
	b.WriteString(k)
	return Chord(b.String())
}

// String returns the chord in "mod+key" form.
func (c Chord) String() string {
	return string(c)
}

// Key returns the key without modifiers.
func (c Chord) Key() string {
	k, _ := c.split()
	return k
}

// Has reports whether the chord includes m.
func (c Chord) Has(m Modifier) bool {
	_, mods := c.split()
	for _, held := range mods {
		if held == m {
			return true
		}
	}
	return false
}

func (c Chord) split() (string, []Modifier) {
	s := string(c)
	var mods []Modifier
	for _, m := range modifierOrder {
		prefix := string(m) + "+"
		if len(s) > len(prefix) && strings.HasPrefix(s, prefix) {
			mods = append(mods, m)
			s = s[len(prefix):]
		}
	}
	return s, mods
}
