// Package model defines the notification record counted by the toolbar.
package model

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/oklog/ulid/v2"
)

// Urgency levels as defined by freedesktop notifications.
const (
	UrgencyLow      = 0
	UrgencyNormal   = 1
	UrgencyCritical = 2
)

// UrgencyNames maps urgency levels to human-readable names.
var UrgencyNames = map[int]string{
	UrgencyLow:      "low",
	UrgencyNormal:   "normal",
	UrgencyCritical: "critical",
}

// Notification is a single entry in the notification history.
type Notification struct {
	ID          string `json:"id"`
	Source      string `json:"source"`
	ImportedAt  int64  `json:"imported_at"`
	SeenAt      int64  `json:"seen_at,omitempty"`
	DismissedAt int64  `json:"dismissed_at,omitempty"`
	ContentHash string `json:"content_hash,omitempty"`

	AppName   string `json:"app_name"`
	Summary   string `json:"summary"`
	Body      string `json:"body"`
	Timestamp int64  `json:"timestamp"`
	Urgency   int    `json:"urgency"`
	Category  string `json:"category,omitempty"`
}

// Validation errors.
var (
	ErrEmptyID          = errors.New("id cannot be empty")
	ErrEmptySource      = errors.New("source cannot be empty")
	ErrEmptyAppName     = errors.New("app_name cannot be empty")
	ErrEmptySummary     = errors.New("summary cannot be empty")
	ErrInvalidUrgency   = errors.New("urgency must be 0, 1, or 2")
	ErrInvalidTimestamp = errors.New("timestamp must be greater than 0")
)

// NewNotification creates a Notification with a fresh ULID, stamped now.
func NewNotification(source string) (*Notification, error) {
	now := time.Now()
	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ULID: %w", err)
	}

	return &Notification{
		ID:         id.String(),
		Source:     source,
		ImportedAt: now.Unix(),
		Timestamp:  now.Unix(),
		Urgency:    UrgencyNormal,
	}, nil
}

// Validate checks that the notification has all required fields.
func (n *Notification) Validate() error {
	switch {
	case n.ID == "":
		return ErrEmptyID
	case n.Source == "":
		return ErrEmptySource
	case n.AppName == "":
		return ErrEmptyAppName
	case n.Summary == "":
		return ErrEmptySummary
	case n.Urgency < UrgencyLow || n.Urgency > UrgencyCritical:
		return ErrInvalidUrgency
	case n.Timestamp <= 0:
		return ErrInvalidTimestamp
	}
	return nil
}

// SetUrgency sets the urgency, falling back to normal for unknown levels.
func (n *Notification) SetUrgency(level int) {
	if level < UrgencyLow || level > UrgencyCritical {
		level = UrgencyNormal
	}
	n.Urgency = level
}

// UrgencyName returns the human-readable urgency.
func (n *Notification) UrgencyName() string {
	return UrgencyNames[n.Urgency]
}

// RelativeTime returns a human-readable age such as "3 minutes ago".
func (n *Notification) RelativeTime() string {
	return humanize.Time(n.TimestampTime())
}

// TimestampTime returns the timestamp as a time.Time.
func (n *Notification) TimestampTime() time.Time {
	return time.Unix(n.Timestamp, 0)
}

// BodyTruncated collapses whitespace in the body and truncates it to maxLen.
func (n *Notification) BodyTruncated(maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	body := strings.Join(strings.Fields(n.Body), " ")
	if len(body) <= maxLen {
		return body
	}
	if maxLen <= 3 {
		return body[:maxLen]
	}
	return body[:maxLen-3] + "..."
}

// ComputeContentHash hashes app, summary, body and timestamp for deduplication.
func (n *Notification) ComputeContentHash() string {
	key := fmt.Sprintf("%s:%s:%s:%d", n.AppName, n.Summary, n.Body, n.Timestamp)
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:])
}

// EnsureContentHash sets ContentHash if it is empty.
func (n *Notification) EnsureContentHash() {
	if n.ContentHash == "" {
		n.ContentHash = n.ComputeContentHash()
	}
}

// IsSeen reports whether the notification has been read.
func (n *Notification) IsSeen() bool {
	return n.SeenAt > 0
}

// MarkSeen marks the notification read, keeping the first read time.
func (n *Notification) MarkSeen() {
	if n.SeenAt == 0 {
		n.SeenAt = time.Now().Unix()
	}
}

// IsDismissed reports whether the notification has been dismissed.
func (n *Notification) IsDismissed() bool {
	return n.DismissedAt > 0
}

// MarkDismissed dismisses the notification. Dismissing implies reading.
func (n *Notification) MarkDismissed() {
	n.DismissedAt = time.Now().Unix()
	if n.SeenAt == 0 {
		n.SeenAt = n.DismissedAt
	}
}

// IsUnread reports whether the notification still counts towards the
// unread total.
func (n *Notification) IsUnread() bool {
	return !n.IsSeen() && !n.IsDismissed()
}
