// Package importer loads notifications from other daemons into history, so
// the toolbar counter also reflects what arrived before overbar ran.
package importer

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/jmylchreest/overbar/internal/model"
)

// Importer fetches notifications from a source.
type Importer interface {
	// Name returns the source identifier ("dunst", "stdin").
	Name() string
	// Import fetches every notification the source holds.
	Import(ctx context.Context) ([]model.Notification, error)
}

// Error is returned when a source cannot be read.
type Error struct {
	Source  string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Source + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Detect returns the name of the first installed notification daemon with a
// history we can read, or "".
func Detect() string {
	if _, err := exec.LookPath("dunstctl"); err == nil {
		return "dunst"
	}
	return ""
}

// New returns the importer for source. An empty source is auto-detected.
func New(source string) (Importer, error) {
	if source == "" {
		source = Detect()
	}

	switch source {
	case "dunst":
		return NewDunst(), nil
	case "stdin":
		return NewReader(os.Stdin), nil
	case "":
		return nil, &Error{Source: "auto", Message: "no supported notification daemon found"}
	default:
		return nil, &Error{Source: source, Message: "unknown source"}
	}
}

// newEntry builds a notification for source with the common fields set and
// validated.
func newEntry(source, app, summary, body string, timestamp int64, urgency int, category string) (*model.Notification, error) {
	n, err := model.NewNotification(source)
	if err != nil {
		return nil, err
	}
	n.AppName = sanitize(app)
	n.Summary = sanitize(summary)
	n.Body = sanitize(body)
	n.Category = category
	if timestamp > 0 {
		n.Timestamp = timestamp
	}
	n.SetUrgency(urgency)
	n.EnsureContentHash()

	if err := n.Validate(); err != nil {
		return nil, fmt.Errorf("skipping %q: %w", n.Summary, err)
	}
	return n, nil
}

// sanitize replaces control characters with spaces and trims the result.
func sanitize(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r < 32 && r != '\n' && r != '\t' {
			return ' '
		}
		return r
	}, s))
}
