package tui

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/overbar/internal/model"
)

// errNoClipboard is returned when no clipboard tool is installed.
var errNoClipboard = errors.New("no clipboard command available (install wl-copy, xclip or xsel)")

// clipboardFunc copies text to the system clipboard.
type clipboardFunc func(text string) error

// copyText copies text to the system clipboard.
func copyText(text string) error {
	if clipboard.Unsupported {
		return errNoClipboard
	}
	return clipboard.WriteAll(text)
}

// clipEntry is the exported shape of a notification.
type clipEntry struct {
	App     string `yaml:"app"`
	Summary string `yaml:"summary"`
	Body    string `yaml:"body,omitempty"`
	Urgency string `yaml:"urgency"`
	Age     string `yaml:"age"`
}

// marshalYAML renders notifications for the clipboard.
func marshalYAML(ns []model.Notification) (string, error) {
	entries := make([]clipEntry, 0, len(ns))
	for _, n := range ns {
		entries = append(entries, clipEntry{
			App:     n.AppName,
			Summary: n.Summary,
			Body:    n.Body,
			Urgency: n.UrgencyName(),
			Age:     n.RelativeTime(),
		})
	}
	data, err := yaml.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return string(data), nil
}
