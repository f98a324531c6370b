package toolbar

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jmylchreest/overbar/internal/bindable"
	"github.com/jmylchreest/overbar/internal/ruleset"
	"github.com/jmylchreest/overbar/internal/skin"
)

// maxShortcuts is the number of rulesets reachable by number shortcuts.
const maxShortcuts = 9

// rulesetSelectedMsg applies a ruleset chosen by a shortcut.
type rulesetSelectedMsg struct {
	ruleset ruleset.Ruleset
}

// RulesetSelector shows the available rulesets and switches between them
// with ctrl+N or alt+N.
type RulesetSelector struct {
	// Current is the selected ruleset.
	Current *bindable.Value[ruleset.Ruleset]

	registry ruleset.Registry
	bindings []key.Binding
	logger   *slog.Logger
}

// NewRulesetSelector creates a selector over registry. The first ruleset is
// selected.
func NewRulesetSelector(registry ruleset.Registry, logger *slog.Logger) *RulesetSelector {
	if logger == nil {
		logger = slog.Default()
	}

	var initial ruleset.Ruleset
	if available := registry.AvailableRulesets(); len(available) > 0 {
		initial = available[0]
	}

	s := &RulesetSelector{
		Current:  bindable.NewValue(initial),
		registry: registry,
		logger:   logger,
	}
	s.bindings = shortcutBindings(registry.AvailableRulesets())
	return s
}

func shortcutBindings(rulesets []ruleset.Ruleset) []key.Binding {
	n := min(len(rulesets), maxShortcuts)
	bindings := make([]key.Binding, n)
	for i := range n {
		digit := strconv.Itoa(i + 1)
		bindings[i] = key.NewBinding(
			key.WithKeys("ctrl+"+digit, "alt+"+digit),
			key.WithHelp("alt+"+digit, rulesets[i].String()),
		)
	}
	return bindings
}

// Bindings returns the shortcut bindings, one per reachable ruleset.
func (s *RulesetSelector) Bindings() []key.Binding {
	return s.bindings
}

// HandleKey returns a command selecting the ruleset bound to k, or nil if k
// is not a ruleset shortcut. k is a tea.KeyMsg or an input.Chord.
func (s *RulesetSelector) HandleKey(k fmt.Stringer) tea.Cmd {
	for i, b := range s.bindings {
		if key.Matches(k, b) {
			return s.Select(i)
		}
	}
	return nil
}

// Select returns a command that selects the ruleset at index. The selection
// lands when the command's message reaches Update.
func (s *RulesetSelector) Select(index int) tea.Cmd {
	available := s.registry.AvailableRulesets()
	if index < 0 || index >= len(available) {
		s.logger.Debug("ruleset index out of range", "index", index, "available", len(available))
		return nil
	}
	r := available[index]
	return func() tea.Msg {
		return rulesetSelectedMsg{ruleset: r}
	}
}

// Update applies selection messages. It reports whether msg was consumed.
func (s *RulesetSelector) Update(msg tea.Msg) bool {
	selected, ok := msg.(rulesetSelectedMsg)
	if !ok {
		return false
	}
	if err := s.Current.Set(selected.ruleset); err != nil {
		s.logger.Debug("ruleset change rejected", "ruleset", selected.ruleset.ShortName, "error", err)
		return true
	}
	s.logger.Debug("ruleset selected", "ruleset", selected.ruleset.ShortName)
	return true
}

// View renders the ruleset names, highlighting the current one.
func (s *RulesetSelector) View(styles skin.Styles, glyphs skin.Glyphs) string {
	current := s.Current.Get()

	var parts []string
	for _, r := range s.registry.AvailableRulesets() {
		if r == current {
			parts = append(parts, styles.ActiveRuleset.Render(glyphs.Selected+r.String()))
			continue
		}
		parts = append(parts, styles.Ruleset.Render(r.String()))
	}
	return strings.Join(parts, styles.Separator.Render(glyphs.Separator))
}
