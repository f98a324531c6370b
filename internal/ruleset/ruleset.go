// Package ruleset provides the list of rulesets the toolbar can switch
// between.
package ruleset

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sahilm/fuzzy"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/overbar/internal/config"
)

var (
	// ErrDuplicateRuleset is returned when two rulesets share an id or short name.
	ErrDuplicateRuleset = errors.New("duplicate ruleset")
	// ErrUnknownFormat is returned by Encode for unsupported formats.
	ErrUnknownFormat = errors.New("unknown output format")
)

// Ruleset identifies one game mode.
type Ruleset struct {
	ID        int    `json:"id" yaml:"id"`
	ShortName string `json:"short_name" yaml:"short_name"`
	Name      string `json:"name" yaml:"name"`
}

// String returns the display name, falling back to the short name.
func (r Ruleset) String() string {
	if r.Name != "" {
		return r.Name
	}
	return r.ShortName
}

// IsZero reports whether r is the zero Ruleset.
func (r Ruleset) IsZero() bool {
	return r == Ruleset{}
}

// Registry lists the available rulesets in a stable order.
type Registry interface {
	AvailableRulesets() []Ruleset
}

// Store is a Registry backed by a fixed list.
type Store struct {
	rulesets []Ruleset
}

// NewStore validates rulesets and returns a Store holding them in order.
func NewStore(rulesets []Ruleset) (*Store, error) {
	if len(rulesets) == 0 {
		return nil, errors.New("no rulesets")
	}

	ids := make(map[int]bool, len(rulesets))
	names := make(map[string]bool, len(rulesets))
	for i, r := range rulesets {
		if strings.TrimSpace(r.ShortName) == "" {
			return nil, fmt.Errorf("ruleset %d: short name is empty", i)
		}
		if ids[r.ID] {
			return nil, fmt.Errorf("%w: id %d", ErrDuplicateRuleset, r.ID)
		}
		if names[r.ShortName] {
			return nil, fmt.Errorf("%w: short name %q", ErrDuplicateRuleset, r.ShortName)
		}
		ids[r.ID] = true
		names[r.ShortName] = true
	}

	out := make([]Ruleset, len(rulesets))
	copy(out, rulesets)
	return &Store{rulesets: out}, nil
}

// FromConfig builds a Store from the [[rulesets]] config entries.
func FromConfig(entries []config.RulesetConfig) (*Store, error) {
	rulesets := make([]Ruleset, 0, len(entries))
	for _, e := range entries {
		rulesets = append(rulesets, Ruleset{ID: e.ID, ShortName: e.ShortName, Name: e.Name})
	}
	return NewStore(rulesets)
}

// Default returns a Store with the stock rulesets.
func Default() *Store {
	s, err := FromConfig(config.DefaultRulesets())
	if err != nil {
		panic(err)
	}
	return s
}

// AvailableRulesets returns a copy of the rulesets.
func (s *Store) AvailableRulesets() []Ruleset {
	out := make([]Ruleset, len(s.rulesets))
	copy(out, s.rulesets)
	return out
}

// Lookup returns the ruleset with the given short name.
func (s *Store) Lookup(shortName string) (Ruleset, bool) {
	for _, r := range s.rulesets {
		if strings.EqualFold(r.ShortName, shortName) {
			return r, true
		}
	}
	return Ruleset{}, false
}

// Find fuzzy-matches query against short and display names, best first.
// An empty query returns everything in order.
func (s *Store) Find(query string) []Ruleset {
	if query == "" {
		return s.AvailableRulesets()
	}

	matches := fuzzy.FindFrom(query, searchSource(s.rulesets))
	out := make([]Ruleset, 0, len(matches))
	for _, m := range matches {
		out = append(out, s.rulesets[m.Index])
	}
	return out
}

type searchSource []Ruleset

func (src searchSource) String(i int) string {
	return src[i].ShortName + " " + src[i].Name
}

func (src searchSource) Len() int {
	return len(src)
}

// Encode writes rulesets to w as "json" or "yaml".
func Encode(w io.Writer, rulesets []Ruleset, format string) error {
	switch strings.ToLower(format) {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(rulesets)
	case "yaml", "yml":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(rulesets); err != nil {
			return err
		}
		return encoder.Close()
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}
