package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Mark all notifications read",
	Long: `Mark every notification in history as read. A running overbar resets
its counter when it sees the change.`,
	RunE: runRead,
}

func init() {
	rootCmd.AddCommand(readCmd)
}

func runRead(cmd *cobra.Command, args []string) error {
	unread := historyStore.Unread(nil)
	if len(unread) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No unread notifications")
		return nil
	}

	if err := historyStore.MarkAllSeen(); err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Marked %d notifications read\n", len(unread))
	return nil
}
