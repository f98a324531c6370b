package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/overbar/internal/config"
	"github.com/jmylchreest/overbar/internal/skin"
)

var skinsCmd = &cobra.Command{
	Use:   "skins",
	Short: "List available skins",
	Long: `List the embedded skins and any user skins found in
~/.config/overbar/skins/<name>.toml. The configured skin is marked with *.`,
	RunE: runSkins,
}

func init() {
	rootCmd.AddCommand(skinsCmd)
}

func runSkins(cmd *cobra.Command, args []string) error {
	loader := skin.NewLoader(config.SkinsDir(), logger)
	for _, name := range loader.List() {
		marker := " "
		if name == cfg.Toolbar.Skin {
			marker = "*"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, name)
	}
	return nil
}
