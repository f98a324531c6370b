package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/overbar/internal/importer"
)

var importFrom string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import notifications from another daemon",
	Long: `Import notification history into overbar.

Sources:
  dunst   Read dunstctl history
  stdin   Read a JSON array (or dunstctl history output) from standard input

Without --from the installed daemon is detected. Notifications already in
history are skipped.`,
	Example: `  overbar import
  dunstctl history | overbar import --from stdin`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVarP(&importFrom, "from", "f", "", "source to import from (dunst, stdin)")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	imp, err := importer.New(importFrom)
	if err != nil {
		return err
	}
	if importFrom == "stdin" {
		imp = importer.NewReader(cmd.InOrStdin())
	}

	notifications, err := imp.Import(cmd.Context())
	if err != nil {
		return err
	}

	before := historyStore.Count()
	if err := historyStore.AddBatch(notifications); err != nil {
		return fmt.Errorf("failed to store notifications: %w", err)
	}
	added := historyStore.Count() - before

	logger.Debug("import complete", "source", imp.Name(), "read", len(notifications), "added", added)
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d notifications from %s\n", added, imp.Name())
	return nil
}
