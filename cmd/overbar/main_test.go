package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/overbar/internal/model"
	"github.com/jmylchreest/overbar/internal/ruleset"
	"github.com/jmylchreest/overbar/internal/store"
)

func TestGenerateStatus(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		s := generateStatus(nil)
		assert.Equal(t, "", s.Text)
		assert.Equal(t, "empty", s.Class)
		assert.Equal(t, 0, s.Unread)
	})

	t.Run("unread", func(t *testing.T) {
		now := time.Now().Unix()
		unread := []model.Notification{
			{AppName: "mail", Summary: "newest", Timestamp: now, Urgency: model.UrgencyNormal},
			{AppName: "ci", Summary: "older", Timestamp: now - 60, Urgency: model.UrgencyLow},
		}
		s := generateStatus(unread)
		assert.Equal(t, "2", s.Text)
		assert.Equal(t, "normal", s.Class)
		assert.Equal(t, 2, s.Unread)
		assert.True(t, strings.HasPrefix(s.Tooltip, "2 unread\nLast: "))
		assert.Contains(t, s.Tooltip, "(mail: newest)")
	})

	t.Run("critical", func(t *testing.T) {
		s := generateStatus([]model.Notification{
			{AppName: "a", Summary: "x", Timestamp: 1, Urgency: model.UrgencyLow},
			{AppName: "b", Summary: "y", Timestamp: 1, Urgency: model.UrgencyCritical},
		})
		assert.Equal(t, "critical", s.Class)
		assert.Equal(t, "critical", s.Alt)
	})
}

func TestOutputStatus(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, outputStatus(&buf, WaybarStatus{Text: "3", Class: "normal", Unread: 3}))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "3", got["text"])
	assert.Equal(t, float64(3), got["unread"])
	assert.NotContains(t, got, "tooltip")
}

func TestParseUrgency(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"low", model.UrgencyLow, false},
		{"Normal", model.UrgencyNormal, false},
		{" critical ", model.UrgencyCritical, false},
		{"2", model.UrgencyCritical, false},
		{"urgent", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseUrgency(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWriteRulesetTable(t *testing.T) {
	registry := ruleset.Default()

	var buf bytes.Buffer
	require.NoError(t, writeRulesetTable(&buf, registry, registry.Find("mania")))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "SHORTCUT")
	assert.Contains(t, lines[1], "alt+4")
	assert.Contains(t, lines[1], "osu!mania")
}

func TestRunImport_Stdin(t *testing.T) {
	historyStore = store.NewStore(nil)
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	importFrom = "stdin"
	t.Cleanup(func() {
		historyStore = nil
		importFrom = ""
	})

	input := `[{"app_name": "mail", "summary": "Inbox", "timestamp": 1700000000},
		{"app_name": "cal", "summary": "Standup", "timestamp": 1700000100, "urgency": 2}]`

	run := func() string {
		var out bytes.Buffer
		importCmd.SetIn(strings.NewReader(input))
		importCmd.SetOut(&out)
		importCmd.SetContext(context.Background())
		require.NoError(t, runImport(importCmd, nil))
		return out.String()
	}

	assert.Equal(t, "Imported 2 notifications from stdin\n", run())
	assert.Equal(t, 2, historyStore.Count())

	assert.Equal(t, "Imported 0 notifications from stdin\n", run(), "duplicates are skipped")
	assert.Equal(t, 2, historyStore.Count())
}
