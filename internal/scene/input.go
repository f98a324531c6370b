package scene

import (
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jmylchreest/overbar/internal/input"
	"github.com/jmylchreest/overbar/internal/overlay"
	"github.com/jmylchreest/overbar/internal/skin"
)

// InputManager synthesises keyboard and mouse input for a scene. Events are
// delivered to the model immediately.
type InputManager struct {
	scene *Scene
	held  []input.Modifier
	pos   overlay.Point
}

func newInputManager(s *Scene) *InputManager {
	return &InputManager{scene: s}
}

// PressKey holds a modifier down until ReleaseKey.
func (im *InputManager) PressKey(m input.Modifier) {
	if !im.isHeld(m) {
		im.held = append(im.held, m)
	}
}

// ReleaseKey releases a held modifier.
func (im *InputManager) ReleaseKey(m input.Modifier) {
	for i, h := range im.held {
		if h == m {
			im.held = append(im.held[:i], im.held[i+1:]...)
			return
		}
	}
}

func (im *InputManager) isHeld(m input.Modifier) bool {
	for _, h := range im.held {
		if h == m {
			return true
		}
	}
	return false
}

// Key presses and releases k with the held modifiers. k is a bubbletea key
// name ("enter", "up", "pgdown") or a single character.
func (im *InputManager) Key(k string) {
	im.scene.Send(im.keyMsg(k))
}

var namedKeys = map[string]tea.KeyType{
	"enter":     tea.KeyEnter,
	"esc":       tea.KeyEsc,
	"tab":       tea.KeyTab,
	"backspace": tea.KeyBackspace,
	"space":     tea.KeySpace,
	"up":        tea.KeyUp,
	"down":      tea.KeyDown,
	"left":      tea.KeyLeft,
	"right":     tea.KeyRight,
	"home":      tea.KeyHome,
	"end":       tea.KeyEnd,
	"pgup":      tea.KeyPgUp,
	"pgdown":    tea.KeyPgDown,
}

// keyMsg returns the message a terminal would deliver for k, or an
// input.Chord when no terminal key exists for the combination.
func (im *InputManager) keyMsg(k string) tea.Msg {
	alt := im.isHeld(input.Alt)

	if im.isHeld(input.Ctrl) {
		if utf8.RuneCountInString(k) == 1 && k[0] >= 'a' && k[0] <= 'z' {
			return tea.KeyMsg{Type: tea.KeyCtrlA + tea.KeyType(k[0]-'a'), Alt: alt}
		}
		return input.NewChord(k, im.held...)
	}

	if t, ok := namedKeys[k]; ok {
		return tea.KeyMsg{Type: t, Alt: alt}
	}

	if im.isHeld(input.Shift) {
		k = strings.ToUpper(k)
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k), Alt: alt}
}

// MoveMouseTo moves the pointer to p.
func (im *InputManager) MoveMouseTo(p overlay.Point) {
	im.pos = p
	im.scene.Send(tea.MouseMsg{
		X:      p.X,
		Y:      p.Y,
		Action: tea.MouseActionMotion,
		Button: tea.MouseButtonNone,
	})
}

// MoveMouseToRect moves the pointer to the centre of r.
func (im *InputManager) MoveMouseToRect(r overlay.Rect) {
	im.MoveMouseTo(r.Center())
}

// Position returns the pointer position.
func (im *InputManager) Position() overlay.Point {
	return im.pos
}

// ScrollVerticalBy sends |n| wheel notches at the pointer: down for positive
// n, up for negative.
func (im *InputManager) ScrollVerticalBy(n int) {
	button := tea.MouseButtonWheelDown
	if n < 0 {
		button = tea.MouseButtonWheelUp
		n = -n
	}
	for range n {
		im.scene.Send(tea.MouseMsg{
			X:      im.pos.X,
			Y:      im.pos.Y,
			Action: tea.MouseActionPress,
			Button: button,
		})
	}
}

// LegacySkinScene adds set-up and tear-down steps that switch p to the legacy
// skin and reload every target, so each test starts and ends from the same
// skin state.
func LegacySkinScene(s *Scene, p *skin.Static, targets ...skin.Target) {
	reset := func() {
		skin.ResetTargets(p, skin.Legacy(), targets...)
	}
	s.AddSetUpStep("reset targets", reset)
	s.AddTearDownStep("reset targets", reset)
}
