// Package toolbar implements the overlay toolbar: a ruleset selector and a
// notification counter drawn in a strip across the top of the screen.
package toolbar

import (
	"errors"
	"log/slog"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jmylchreest/overbar/internal/input"
	"github.com/jmylchreest/overbar/internal/notify"
	"github.com/jmylchreest/overbar/internal/overlay"
	"github.com/jmylchreest/overbar/internal/ruleset"
	"github.com/jmylchreest/overbar/internal/skin"
)

// ToggleMsg toggles the toolbar on the user's behalf.
type ToggleMsg struct{}

// Toggle is a tea.Cmd producing ToggleMsg.
func Toggle() tea.Msg { return ToggleMsg{} }

// Options configures a Toolbar.
type Options struct {
	// Gate decides visibility. A new gate in ActivationAll is used if nil.
	Gate *overlay.Gate
	// Rulesets is required.
	Rulesets ruleset.Registry
	// Notifications is required.
	Notifications notify.Source
	// Skin defaults to the embedded default skin.
	Skin skin.Provider
	// Width is the screen width until a tea.WindowSizeMsg arrives. Zero
	// means the toolbar spans the whole row.
	Width  int
	Height int // rows; at least 1
	Logger *slog.Logger
}

// Toolbar is the overlay component. It must only be used from the UI event
// loop.
type Toolbar struct {
	gate     *overlay.Gate
	selector *RulesetSelector
	button   *NotificationButton
	skins    skin.Provider
	styles   skin.Styles
	glyphs   skin.Glyphs
	width    int
	height   int
	logger   *slog.Logger
}

// New creates a hidden toolbar.
func New(opts Options) (*Toolbar, error) {
	if opts.Rulesets == nil {
		return nil, errors.New("toolbar: a ruleset registry is required")
	}
	if opts.Notifications == nil {
		return nil, errors.New("toolbar: a notification source is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	skins := opts.Skin
	if skins == nil {
		skins = skin.NewStatic(skin.Default())
	}
	height := max(opts.Height, 1)

	t := &Toolbar{
		gate:     opts.Gate,
		selector: NewRulesetSelector(opts.Rulesets, logger),
		button:   NewNotificationButton(opts.Notifications),
		skins:    skins,
		width:    opts.Width,
		height:   height,
		logger:   logger,
	}
	if t.gate == nil {
		t.gate = overlay.NewGate(nil)
	}
	t.gate.SetLayout(t)
	t.gate.SetLogger(logger)
	t.Reload()
	return t, nil
}

// Gate returns the toolbar's visibility gate.
func (t *Toolbar) Gate() *overlay.Gate { return t.gate }

// Selector returns the ruleset selector.
func (t *Toolbar) Selector() *RulesetSelector { return t.selector }

// Button returns the notification button.
func (t *Toolbar) Button() *NotificationButton { return t.button }

// Height returns the number of rows the toolbar covers when visible.
func (t *Toolbar) Height() int { return t.height }

// Show requests the toolbar be shown, subject to the activation mode.
func (t *Toolbar) Show() { t.gate.Show() }

// Hide hides the toolbar.
func (t *Toolbar) Hide() { t.gate.Hide() }

// State returns the toolbar visibility.
func (t *Toolbar) State() overlay.Visibility { return t.gate.State() }

// SetActivationMode changes which show requests are honoured.
func (t *Toolbar) SetActivationMode(mode overlay.ActivationMode) {
	t.gate.SetActivationMode(mode)
}

// fullRow is the hit-test width used before the screen width is known.
const fullRow = math.MaxInt32

// Bounds is the strip across the top of the screen the toolbar covers once
// laid out. Until the width is known the strip spans the whole row.
func (t *Toolbar) Bounds() overlay.Rect {
	width := t.width
	if width <= 0 {
		width = fullRow
	}
	return overlay.Rect{X: 0, Y: 0, Width: width, Height: t.height}
}

// Reload re-reads the skin from the provider.
func (t *Toolbar) Reload() {
	s := t.skins.Current()
	if s == nil {
		s = skin.Default()
	}
	t.styles = s.Styles()
	t.glyphs = s.Glyphs
}

// SetWidth sets the laid-out width.
func (t *Toolbar) SetWidth(width int) {
	t.width = width
}

// Init implements tea.Model.
func (t *Toolbar) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model. Ruleset shortcuts are handled whether or not
// the toolbar is visible.
func (t *Toolbar) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		t.SetWidth(msg.Width)
	case ToggleMsg:
		t.gate.Toggle()
	case tea.KeyMsg:
		return t, t.selector.HandleKey(msg)
	case input.Chord:
		return t, t.selector.HandleKey(msg)
	case tea.MouseMsg:
		t.HandleMouse(msg)
	default:
		t.selector.Update(msg)
	}
	return t, nil
}

// HandleMouse reports whether a mouse event was consumed by the toolbar and
// must not reach the content beneath it. Only wheel events are consumed.
func (t *Toolbar) HandleMouse(msg tea.MouseMsg) bool {
	delta := wheelDelta(msg)
	if delta == 0 {
		return false
	}
	return t.gate.HandlePointerScroll(delta, overlay.Point{X: msg.X, Y: msg.Y})
}

func wheelDelta(msg tea.MouseMsg) int {
	if msg.Action != tea.MouseActionPress {
		return 0
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		return -1
	case tea.MouseButtonWheelDown:
		return 1
	default:
		return 0
	}
}

// View implements tea.Model. A hidden toolbar renders nothing.
func (t *Toolbar) View() string {
	if t.gate.State() != overlay.Visible {
		return ""
	}

	left := t.selector.View(t.styles, t.glyphs)
	right := t.button.View(t.styles, t.glyphs)

	gap := t.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	row := t.styles.Bar.Render(" ") + left +
		t.styles.Bar.Render(strings.Repeat(" ", gap)) + right + t.styles.Bar.Render(" ")

	lines := make([]string, t.height)
	lines[0] = row
	blank := t.styles.Bar.Render(strings.Repeat(" ", max(t.width, 0)))
	for i := 1; i < t.height; i++ {
		lines[i] = blank
	}
	return strings.Join(lines, "\n")
}
