// Package skin provides colour and glyph sets for the toolbar.
package skin

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/pelletier/go-toml/v2"
)

// Colours are lipgloss colour strings: ANSI numbers or hex values.
type Colours struct {
	Background string `toml:"background"`
	Foreground string `toml:"foreground"`
	Accent     string `toml:"accent"`
	Muted      string `toml:"muted"`
	Badge      string `toml:"badge"`
	Status     string `toml:"status"`
	Error      string `toml:"error"`
}

// Glyphs are the symbols drawn in the toolbar.
type Glyphs struct {
	Bell      string `toml:"bell"`
	Separator string `toml:"separator"`
	Selected  string `toml:"selected"`
}

// Skin is a named set of colours and glyphs.
type Skin struct {
	Name    string  `toml:"name"`
	Colours Colours `toml:"colours"`
	Glyphs  Glyphs  `toml:"glyphs"`

	Path     string    `toml:"-"` // empty for embedded skins
	ModTime  time.Time `toml:"-"`
	Embedded bool      `toml:"-"`
}

// Parse decodes a skin file. Missing values are taken from the embedded
// default skin, so user skins may override just a few entries.
func Parse(name string, data []byte) (*Skin, error) {
	s := &Skin{}
	if base, ok := embeddedDefault(); ok {
		*s = *base
		s.Embedded = false
	}
	if err := toml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parse skin %s: %w", name, err)
	}
	// The lookup name wins over the name field.
	s.Name = name
	return s, nil
}

// Styles are the lipgloss styles derived from a skin.
type Styles struct {
	Bar           lipgloss.Style
	Ruleset       lipgloss.Style
	ActiveRuleset lipgloss.Style
	Separator     lipgloss.Style
	Bell          lipgloss.Style
	Badge         lipgloss.Style
	Status        lipgloss.Style
	Error         lipgloss.Style
	Muted         lipgloss.Style
}

// Styles builds the lipgloss styles for s.
func (s *Skin) Styles() Styles {
	c := s.Colours
	bar := lipgloss.NewStyle().
		Background(lipgloss.Color(c.Background)).
		Foreground(lipgloss.Color(c.Foreground))

	return Styles{
		Bar:           bar,
		Ruleset:       bar.Foreground(lipgloss.Color(c.Muted)),
		ActiveRuleset: bar.Foreground(lipgloss.Color(c.Accent)).Bold(true),
		Separator:     bar.Foreground(lipgloss.Color(c.Muted)),
		Bell:          bar,
		Badge:         bar.Foreground(lipgloss.Color(c.Badge)).Bold(true),
		Status:        lipgloss.NewStyle().Foreground(lipgloss.Color(c.Status)),
		Error:         lipgloss.NewStyle().Foreground(lipgloss.Color(c.Error)),
		Muted:         lipgloss.NewStyle().Foreground(lipgloss.Color(c.Muted)),
	}
}

// Provider supplies the skin components should draw with.
type Provider interface {
	Current() *Skin
}

// Static is a Provider holding a single skin. It is meant for tests and for
// hosts without a skin directory.
type Static struct {
	skin *Skin
}

// NewStatic returns a Provider for s.
func NewStatic(s *Skin) *Static {
	return &Static{skin: s}
}

// Current returns the held skin.
func (p *Static) Current() *Skin {
	return p.skin
}

// Set replaces the held skin.
func (p *Static) Set(s *Skin) {
	p.skin = s
}

// Target is a component drawn with a skin. Reload re-reads the skin from
// its Provider.
type Target interface {
	Reload()
}

// ResetTargets switches p to s and reloads every target so none keeps state
// from a previous skin.
func ResetTargets(p *Static, s *Skin, targets ...Target) {
	p.Set(s)
	for _, t := range targets {
		t.Reload()
	}
}
