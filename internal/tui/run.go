package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/jmylchreest/overbar/internal/audio"
	"github.com/jmylchreest/overbar/internal/config"
	"github.com/jmylchreest/overbar/internal/dbus"
	"github.com/jmylchreest/overbar/internal/input"
	"github.com/jmylchreest/overbar/internal/notify"
	"github.com/jmylchreest/overbar/internal/overlay"
	"github.com/jmylchreest/overbar/internal/ruleset"
	"github.com/jmylchreest/overbar/internal/skin"
	"github.com/jmylchreest/overbar/internal/store"
	"github.com/jmylchreest/overbar/internal/toolbar"
)

// RunOptions configures the TUI.
type RunOptions struct {
	Config      *config.Config
	Store       *store.Store
	HistoryPath string // watched for writes by other processes (empty = no watching)
	Skins       *skin.Loader
	Player      *audio.Player // nil disables the chime
	Logger      *slog.Logger
	// Output is the terminal the program draws to; defaults to stdout.
	Output io.Writer
}

// Run starts the TUI and blocks until the user quits or ctx is cancelled.
// Background producers are started alongside the program and stopped when it
// exits; their failures are logged, not returned.
func Run(ctx context.Context, opts RunOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	s := opts.Store
	if s == nil {
		s = store.NewStore(nil)
	}

	registry, err := ruleset.FromConfig(cfg.Rulesets)
	if err != nil {
		return err
	}
	mode, err := cfg.ActivationMode()
	if err != nil {
		return err
	}

	source, err := notify.NewStoreSource(s, cfg.Notifications.MuteApps, logger)
	if err != nil {
		return err
	}
	defer source.Close()

	skins := opts.Skins
	if skins == nil {
		skins = skin.NewLoader(config.SkinsDir(), logger)
	}
	skins.Load(cfg.Toolbar.Skin)

	gate := overlay.NewGate(nil)
	gate.SetActivationMode(mode)
	tb, err := toolbar.New(toolbar.Options{
		Gate:          gate,
		Rulesets:      registry,
		Notifications: source,
		Skin:          skins,
		Height:        cfg.Toolbar.Height,
		Logger:        logger,
	})
	if err != nil {
		return err
	}
	if !cfg.Toolbar.StartHidden {
		tb.Show()
	}

	chime := audio.NewChime(cfg.Audio, opts.Player, logger)
	if err := chime.Preload(); err != nil {
		logger.Warn("chime disabled", "error", err)
	} else {
		tb.Button().OnIncrease = chime.Ring
	}

	m, err := New(Options{Store: s, Source: source, Toolbar: tb, Skins: skins})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	// Terminals only distinguish ctrl+digit when modifyOtherKeys is on; the
	// filter turns those reports into chords for the ruleset shortcuts.
	fmt.Fprint(out, input.EnableModifyOtherKeys)
	defer fmt.Fprint(out, input.ResetModifyOtherKeys)

	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
		tea.WithOutput(out),
		tea.WithFilter(input.Filter),
	)

	g, gctx := errgroup.WithContext(ctx)
	startProducers(gctx, g, p, s, cfg, opts.HistoryPath, skins, chime, logger)

	_, runErr := p.Run()
	cancel()
	if err := g.Wait(); err != nil {
		logger.Warn("background producer failed", "error", err)
	}
	chime.Wait()

	if runErr != nil && errors.Is(runErr, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	if runErr != nil {
		return fmt.Errorf("tui: %w", runErr)
	}
	return nil
}

// startProducers starts every goroutine that feeds the program. Each one
// stops when ctx is cancelled.
func startProducers(
	ctx context.Context,
	g *errgroup.Group,
	p *tea.Program,
	s *store.Store,
	cfg *config.Config,
	historyPath string,
	skins *skin.Loader,
	chime *audio.Chime,
	logger *slog.Logger,
) {
	if historyPath != "" {
		watcher := store.NewFileWatcher(s, historyPath, logger)
		g.Go(func() error {
			if err := watcher.Run(ctx); err != nil {
				logger.Warn("history watcher stopped", "error", err)
			}
			return nil
		})
	}

	if cfg.Notifications.DBus {
		monitor := dbus.NewMonitor(s, logger)
		g.Go(func() error {
			if err := monitor.Run(ctx); err != nil {
				logger.Warn("D-Bus monitor stopped", "error", err)
			}
			return nil
		})
	}

	err := skins.StartHotReload(ctx, func(sk *skin.Skin) {
		p.Send(skinChangedMsg{skin: sk})
	})
	if err != nil {
		logger.Warn("skin hot reload disabled", "error", err)
	} else {
		g.Go(func() error {
			<-ctx.Done()
			skins.StopHotReload()
			return nil
		})
	}

	if chime.Enabled() {
		g.Go(func() error {
			if err := chime.Watch(ctx); err != nil {
				logger.Warn("chime watcher stopped", "error", err)
			}
			return nil
		})
	}
}
