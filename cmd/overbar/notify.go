package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/overbar/internal/model"
)

var notifyOpts struct {
	app      string
	body     string
	urgency  string
	category string
}

var notifyCmd = &cobra.Command{
	Use:   "notify <summary>",
	Short: "Add a notification to history",
	Long: `Add a notification to the history file. A running overbar picks it up
and the toolbar counter rises.

Examples:
  overbar notify "Build finished" --app ci --body "main is green"
  overbar notify "Disk almost full" --urgency critical`,
	Args: cobra.MinimumNArgs(1),
	RunE: runNotify,
}

func init() {
	rootCmd.AddCommand(notifyCmd)

	notifyCmd.Flags().StringVar(&notifyOpts.app, "app", "overbar",
		"Application name")
	notifyCmd.Flags().StringVar(&notifyOpts.body, "body", "",
		"Notification body")
	notifyCmd.Flags().StringVarP(&notifyOpts.urgency, "urgency", "u", "normal",
		"Urgency (low, normal, critical)")
	notifyCmd.Flags().StringVar(&notifyOpts.category, "category", "",
		"Notification category")
}

func runNotify(cmd *cobra.Command, args []string) error {
	urgency, err := parseUrgency(notifyOpts.urgency)
	if err != nil {
		return err
	}

	n, err := model.NewNotification("cli")
	if err != nil {
		return err
	}
	n.AppName = notifyOpts.app
	n.Summary = strings.Join(args, " ")
	n.Body = notifyOpts.body
	n.Category = notifyOpts.category
	n.Urgency = urgency

	if err := n.Validate(); err != nil {
		return fmt.Errorf("invalid notification: %w", err)
	}
	if err := historyStore.Add(*n); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}

	logger.Debug("notification added", "id", n.ID, "app", n.AppName)
	fmt.Fprintln(cmd.OutOrStdout(), n.ID)
	return nil
}

// parseUrgency maps an urgency name or number to its level.
func parseUrgency(s string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for level, name := range model.UrgencyNames {
		if s == name || s == fmt.Sprint(level) {
			return level, nil
		}
	}
	return 0, fmt.Errorf("invalid urgency %q (expected low, normal or critical)", s)
}
