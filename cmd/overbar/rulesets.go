package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/overbar/internal/ruleset"
)

var rulesetsOpts struct {
	output string
	find   string
}

var rulesetsCmd = &cobra.Command{
	Use:   "rulesets",
	Short: "List the configured rulesets",
	Long: `List the configured rulesets in shortcut order. The Nth ruleset is
selected with ctrl+N or alt+N.

Examples:
  overbar rulesets
  overbar rulesets -o yaml
  overbar rulesets --find mania`,
	RunE: runRulesets,
}

func init() {
	rootCmd.AddCommand(rulesetsCmd)

	rulesetsCmd.Flags().StringVarP(&rulesetsOpts.output, "output", "o", "",
		"Output format (json, yaml; default table)")
	rulesetsCmd.Flags().StringVar(&rulesetsOpts.find, "find", "",
		"Fuzzy search by short or display name")
}

func runRulesets(cmd *cobra.Command, args []string) error {
	registry, err := ruleset.FromConfig(cfg.Rulesets)
	if err != nil {
		return err
	}

	rulesets := registry.AvailableRulesets()
	if rulesetsOpts.find != "" {
		rulesets = registry.Find(rulesetsOpts.find)
	}

	if rulesetsOpts.output == "" {
		return writeRulesetTable(os.Stdout, registry, rulesets)
	}
	return ruleset.Encode(os.Stdout, rulesets, rulesetsOpts.output)
}

// writeRulesetTable prints rulesets with their shortcut.
func writeRulesetTable(w io.Writer, registry ruleset.Registry, rulesets []ruleset.Ruleset) error {
	shortcuts := make(map[ruleset.Ruleset]string)
	for i, r := range registry.AvailableRulesets() {
		if i < 9 {
			shortcuts[r] = fmt.Sprintf("alt+%d", i+1)
		}
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SHORTCUT\tID\tSHORT NAME\tNAME")
	for _, r := range rulesets {
		shortcut := shortcuts[r]
		if shortcut == "" {
			shortcut = "-"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", shortcut, r.ID, r.ShortName, r.Name)
	}
	return tw.Flush()
}
