package input

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// Terminal control sequences for xterm's modifyOtherKeys level 1. At that
// level ctrl+digit is sent as "CSI 27 ; mod ; code ~" while ctrl+c and the
// other legacy control keys keep their usual bytes.
const (
	EnableModifyOtherKeys = "\x1b[>4;1m"
	ResetModifyOtherKeys  = "\x1b[>4m"
)

// unknownCSIPrefix is how bubbletea prints a CSI sequence it has no key for:
// the bytes after "ESC [" as a Go byte slice, e.g. "?CSI[52 57 59 53 117]?".
const (
	unknownCSIPrefix = "?CSI["
	unknownCSISuffix = "]?"
)

// Filter is a tea.WithFilter function that turns modified-key sequences
// bubbletea leaves undecoded into Chord messages. Other messages pass through.
func Filter(_ tea.Model, msg tea.Msg) tea.Msg {
	if _, ok := msg.(tea.KeyMsg); ok {
		return msg
	}
	s, ok := msg.(fmt.Stringer)
	if !ok {
		return msg
	}
	params, ok := decodeUnknownCSI(s.String())
	if !ok {
		return msg
	}
	if chord, ok := ParseCSI(params); ok {
		return chord
	}
	return msg
}

// decodeUnknownCSI recovers the sequence body ("27;5;49~") from bubbletea's
// printed form.
func decodeUnknownCSI(s string) (string, bool) {
	if !strings.HasPrefix(s, unknownCSIPrefix) || !strings.HasSuffix(s, unknownCSISuffix) {
		return "", false
	}
	fields := strings.Fields(s[len(unknownCSIPrefix) : len(s)-len(unknownCSISuffix)])
	if len(fields) == 0 {
		return "", false
	}
	body := make([]byte, 0, len(fields))
	for _, f := range fields {
		b, err := strconv.ParseUint(f, 10, 8)
		if err != nil {
			return "", false
		}
		body = append(body, byte(b))
	}
	return string(body), true
}

// ParseCSI parses the body of a modified-key CSI sequence, without the
// leading "ESC [". Both the modifyOtherKeys form ("27;5;49~") and the CSI u
// form ("49;5u") are understood. Only printable keys with ctrl or alt held
// produce a chord.
func ParseCSI(body string) (Chord, bool) {
	if body == "" {
		return "", false
	}
	final := body[len(body)-1]
	params := strings.Split(body[:len(body)-1], ";")

	var code, mod int
	var err error
	switch {
	case final == '~' && len(params) == 3 && params[0] == "27":
		if mod, err = strconv.Atoi(params[1]); err != nil {
			return "", false
		}
		if code, err = strconv.Atoi(params[2]); err != nil {
			return "", false
		}
	case final == 'u' && (len(params) == 1 || len(params) == 2):
		// Alternate key codes follow a colon.
		if code, err = strconv.Atoi(strings.SplitN(params[0], ":", 2)[0]); err != nil {
			return "", false
		}
		mod = 1
		if len(params) == 2 {
			if mod, err = strconv.Atoi(strings.SplitN(params[1], ":", 2)[0]); err != nil {
				return "", false
			}
		}
	default:
		return "", false
	}

	if code < 0x21 || code > 0x7e || mod < 1 {
		return "", false
	}

	// The modifier parameter is 1 plus a bitmask: shift=1, alt=2, ctrl=4.
	bits := mod - 1
	var mods []Modifier
	if bits&4 != 0 {
		mods = append(mods, Ctrl)
	}
	if bits&2 != 0 {
		mods = append(mods, Alt)
	}
	if len(mods) == 0 {
		return "", false
	}
	if bits&1 != 0 {
		mods = append(mods, Shift)
	}
	return NewChord(string(rune(code)), mods...), true
}
