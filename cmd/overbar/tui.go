package main

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jmylchreest/overbar/internal/audio"
	"github.com/jmylchreest/overbar/internal/config"
	"github.com/jmylchreest/overbar/internal/skin"
	"github.com/jmylchreest/overbar/internal/tui"
)

var tuiOpts struct {
	hidden bool
	skin   string
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the toolbar and notification list",
	Long: `Launch the interactive terminal interface.

Key bindings:
  ctrl/alt+1..9  Switch ruleset (ctrl needs modifyOtherKeys support)
  t              Toggle the toolbar
  m              Mark all notifications read
  j/k, ↑/↓       Scroll
  g/G            Go to top/bottom
  y              Copy unread notifications as YAML
  ?              Show help
  q              Quit

Scrolling with the mouse wheel over the toolbar does not scroll the list
beneath it.`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)

	tuiCmd.Flags().BoolVar(&tuiOpts.hidden, "hidden", false,
		"Start with the toolbar hidden")
	tuiCmd.Flags().StringVar(&tuiOpts.skin, "skin", "",
		"Skin to use (overrides toolbar.skin)")
}

func runTUI(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("tui requires a terminal; use 'overbar status' for scripts")
	}

	if tuiOpts.hidden {
		cfg.Toolbar.StartHidden = true
	}
	if tuiOpts.skin != "" {
		cfg.Toolbar.Skin = tuiOpts.skin
	}

	var player *audio.Player
	if cfg.Audio.Sound != "" {
		player = audio.NewPlayer(logger)
		defer player.Close()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return tui.Run(ctx, tui.RunOptions{
		Config:      cfg,
		Store:       historyStore,
		HistoryPath: historyPath,
		Skins:       skin.NewLoader(config.SkinsDir(), logger),
		Player:      player,
		Logger:      logger,
	})
}
