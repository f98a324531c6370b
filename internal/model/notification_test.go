package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNotification(t *testing.T) {
	n, err := NewNotification("test")
	require.NoError(t, err)

	assert.Len(t, n.ID, 26, "ULID should be 26 characters")
	assert.Equal(t, "test", n.Source)
	assert.Greater(t, n.ImportedAt, int64(0))
	assert.Equal(t, n.ImportedAt, n.Timestamp)
	assert.Equal(t, UrgencyNormal, n.Urgency)
	assert.True(t, n.IsUnread())
}

func TestNotification_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Notification)
		wantErr error
	}{
		{"valid", func(n *Notification) {}, nil},
		{"empty id", func(n *Notification) { n.ID = "" }, ErrEmptyID},
		{"empty source", func(n *Notification) { n.Source = "" }, ErrEmptySource},
		{"empty app", func(n *Notification) { n.AppName = "" }, ErrEmptyAppName},
		{"empty summary", func(n *Notification) { n.Summary = "" }, ErrEmptySummary},
		{"negative urgency", func(n *Notification) { n.Urgency = -1 }, ErrInvalidUrgency},
		{"urgency too high", func(n *Notification) { n.Urgency = 3 }, ErrInvalidUrgency},
		{"zero timestamp", func(n *Notification) { n.Timestamp = 0 }, ErrInvalidTimestamp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := validNotification()
			tt.modify(n)
			err := n.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNotification_SetUrgency(t *testing.T) {
	tests := []struct {
		level    int
		want     int
		wantName string
	}{
		{UrgencyLow, UrgencyLow, "low"},
		{UrgencyCritical, UrgencyCritical, "critical"},
		{-1, UrgencyNormal, "normal"},
		{5, UrgencyNormal, "normal"},
	}

	for _, tt := range tests {
		n := &Notification{}
		n.SetUrgency(tt.level)
		assert.Equal(t, tt.want, n.Urgency)
		assert.Equal(t, tt.wantName, n.UrgencyName())
	}
}

func TestNotification_RelativeTime(t *testing.T) {
	now := time.Now().Unix()

	tests := []struct {
		name      string
		timestamp int64
		want      string
	}{
		{"hours", now - 3*3600, "3 hours ago"},
		{"days", now - 2*86400, "2 days ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &Notification{Timestamp: tt.timestamp}
			assert.Equal(t, tt.want, n.RelativeTime())
		})
	}
}

func TestNotification_BodyTruncated(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		maxLen int
		want   string
	}{
		{"short body", "hello", 10, "hello"},
		{"exact length", "hello", 5, "hello"},
		{"truncated", "hello world", 8, "hello..."},
		{"very short max", "hello", 3, "hel"},
		{"zero max", "hello", 0, ""},
		{"multiline body", "hello\nworld\ntest", 20, "hello world test"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &Notification{Body: tt.body}
			assert.Equal(t, tt.want, n.BodyTruncated(tt.maxLen))
		})
	}
}

func TestNotification_ContentHash(t *testing.T) {
	a := &Notification{AppName: "osu", Summary: "Beatmap ready", Body: "x", Timestamp: 1703577600}
	b := &Notification{AppName: "osu", Summary: "Beatmap ready", Body: "x", Timestamp: 1703577600}
	c := &Notification{AppName: "osu", Summary: "Beatmap ready", Body: "x", Timestamp: 1703577601}

	assert.Equal(t, a.ComputeContentHash(), b.ComputeContentHash())
	assert.NotEqual(t, a.ComputeContentHash(), c.ComputeContentHash())

	a.EnsureContentHash()
	first := a.ContentHash
	a.Body = "changed"
	a.EnsureContentHash()
	assert.Equal(t, first, a.ContentHash, "existing hash is kept")
}

func TestNotification_ReadState(t *testing.T) {
	n := validNotification()
	assert.True(t, n.IsUnread())

	n.MarkSeen()
	assert.True(t, n.IsSeen())
	assert.False(t, n.IsUnread())

	seenAt := n.SeenAt
	n.MarkSeen()
	assert.Equal(t, seenAt, n.SeenAt)

	d := validNotification()
	d.MarkDismissed()
	assert.True(t, d.IsDismissed())
	assert.True(t, d.IsSeen(), "dismissing implies seen")
	assert.False(t, d.IsUnread())
}

func validNotification() *Notification {
	return &Notification{
		ID:         "01HQGXK5P0000000000000000A",
		Source:     "test",
		ImportedAt: time.Now().Unix(),
		AppName:    "osu",
		Summary:    "Score submitted",
		Body:       "Your score has been submitted",
		Timestamp:  time.Now().Unix(),
		Urgency:    UrgencyNormal,
	}
}
