package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/overbar/internal/model"
	"github.com/jmylchreest/overbar/internal/notify"
)

// WaybarStatus represents the Waybar custom module JSON format.
type WaybarStatus struct {
	Text    string `json:"text"`
	Alt     string `json:"alt,omitempty"`
	Tooltip string `json:"tooltip,omitempty"`
	Class   string `json:"class,omitempty"`
	Unread  int    `json:"unread"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Output the unread count as Waybar-compatible JSON",
	Long: `Output the unread notification count in Waybar's custom module JSON
format. Notifications from muted apps (notifications.mute_apps) are not
counted, matching the toolbar's counter.

  "custom/notifications": {
    "exec": "overbar status",
    "interval": 5,
    "return-type": "json",
    "on-click": "overbar read"
  }`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	source, err := notify.NewStoreSource(historyStore, cfg.Notifications.MuteApps, logger)
	if err != nil {
		return err
	}
	defer source.Close()

	unread := historyStore.Unread(func(n model.Notification) bool {
		return !source.Muted(n.AppName)
	})
	return outputStatus(os.Stdout, generateStatus(unread))
}

// generateStatus builds the status for the unread notifications, newest
// first.
func generateStatus(unread []model.Notification) WaybarStatus {
	if len(unread) == 0 {
		return WaybarStatus{
			Text:    "",
			Alt:     "empty",
			Class:   "empty",
			Tooltip: "No unread notifications",
		}
	}

	class := "normal"
	for _, n := range unread {
		if n.Urgency == model.UrgencyCritical {
			class = "critical"
			break
		}
	}

	last := unread[0]
	lines := []string{
		fmt.Sprintf("%d unread", len(unread)),
		fmt.Sprintf("Last: %s (%s: %s)", humanize.Time(last.TimestampTime()), last.AppName, last.Summary),
	}

	return WaybarStatus{
		Text:    fmt.Sprintf("%d", len(unread)),
		Alt:     class,
		Tooltip: strings.Join(lines, "\n"),
		Class:   class,
		Unread:  len(unread),
	}
}

// outputStatus writes the status as JSON.
func outputStatus(w io.Writer, status WaybarStatus) error {
	return json.NewEncoder(w).Encode(status)
}
