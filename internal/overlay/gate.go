// Package overlay decides when an always-on-top overlay may be shown and
// which pointer input it takes away from the content beneath it.
package overlay

import (
	"fmt"
	"log/slog"
	"strings"
)

// ActivationMode controls which show requests a Gate honours.
type ActivationMode int

const (
	// ActivationDisabled rejects every show request.
	ActivationDisabled ActivationMode = iota
	// ActivationUserTriggered honours only requests made by the user.
	ActivationUserTriggered
	// ActivationAll honours every show request.
	ActivationAll
)

// String returns the config name of the mode.
func (m ActivationMode) String() string {
	switch m {
	case ActivationDisabled:
		return "disabled"
	case ActivationUserTriggered:
		return "user"
	case ActivationAll:
		return "all"
	default:
		return "unknown"
	}
}

// ParseActivationMode parses a config value ("all", "user", "disabled").
func ParseActivationMode(s string) (ActivationMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return ActivationAll, nil
	case "user", "user_triggered", "usertriggered":
		return ActivationUserTriggered, nil
	case "disabled", "none", "off":
		return ActivationDisabled, nil
	default:
		return ActivationAll, fmt.Errorf("unknown activation mode %q", s)
	}
}

// Visibility is the state of a Gate.
type Visibility int

const (
	Hidden Visibility = iota
	Visible
)

func (v Visibility) String() string {
	if v == Visible {
		return "visible"
	}
	return "hidden"
}

// Gate holds an overlay's activation mode and visibility.
//
// A Gate belongs to the UI event loop and must only be used from it.
type Gate struct {
	mode   ActivationMode
	state  Visibility
	layout Layout
	logger *slog.Logger

	onStateChanged func(Visibility)
}

// NewGate creates a hidden gate in ActivationAll mode.
// layout reports the region the overlay occupies once laid out; it may be nil
// for an overlay that never intercepts pointer input.
func NewGate(layout Layout) *Gate {
	return &Gate{
		mode:   ActivationAll,
		state:  Hidden,
		layout: layout,
		logger: slog.Default(),
	}
}

// SetLogger replaces the logger used for debug tracing.
func (g *Gate) SetLogger(logger *slog.Logger) {
	if logger != nil {
		g.logger = logger
	}
}

// SetLayout replaces the layout collaborator.
func (g *Gate) SetLayout(layout Layout) {
	g.layout = layout
}

// OnStateChanged registers fn to run after every real visibility transition.
func (g *Gate) OnStateChanged(fn func(Visibility)) {
	g.onStateChanged = fn
}

// SetActivationMode replaces the activation mode. The current visibility is
// left alone.
func (g *Gate) SetActivationMode(mode ActivationMode) {
	g.mode = mode
}

// ActivationMode returns the current activation mode.
func (g *Gate) ActivationMode() ActivationMode {
	return g.mode
}

// State returns the current visibility.
func (g *Gate) State() Visibility {
	return g.state
}

// Show makes the overlay visible if the activation mode is ActivationAll.
func (g *Gate) Show() {
	if g.mode != ActivationAll {
		g.logger.Debug("overlay show rejected", "mode", g.mode)
		return
	}
	g.transition(Visible)
}

// ShowFromUser makes the overlay visible unless activation is disabled.
func (g *Gate) ShowFromUser() {
	if g.mode == ActivationDisabled {
		g.logger.Debug("overlay show rejected", "mode", g.mode, "user", true)
		return
	}
	g.transition(Visible)
}

// Hide always hides the overlay.
func (g *Gate) Hide() {
	g.transition(Hidden)
}

// Toggle flips visibility as a user action.
func (g *Gate) Toggle() {
	if g.state == Visible {
		g.Hide()
		return
	}
	g.ShowFromUser()
}

// Region returns the screen region the overlay currently occupies.
// A hidden overlay occupies nothing.
func (g *Gate) Region() Rect {
	if g.state != Visible || g.layout == nil {
		return Rect{}
	}
	return g.layout.Bounds()
}

// HandlePointerScroll reports whether a scroll at pos is consumed by the
// overlay. A consumed scroll must not reach content beneath the overlay, even
// though the overlay has nothing of its own to scroll.
func (g *Gate) HandlePointerScroll(delta int, pos Point) bool {
	if !g.Region().Contains(pos) {
		return false
	}
	g.logger.Debug("overlay consumed scroll", "delta", delta, "x", pos.X, "y", pos.Y)
	return true
}

func (g *Gate) transition(to Visibility) {
	if g.state == to {
		return
	}
	g.state = to
	if g.onStateChanged != nil {
		g.onStateChanged(to)
	}
}
