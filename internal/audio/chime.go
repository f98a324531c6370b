package audio

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jmylchreest/overbar/internal/config"
)

// DefaultMinGap is the shortest interval between two chimes. A burst of
// notifications rings once.
const DefaultMinGap = 750 * time.Millisecond

// Sounder plays a sound file.
type Sounder interface {
	Play(path string) error
}

// Chime rings when the unread count rises.
type Chime struct {
	mu     sync.Mutex
	logger *slog.Logger
	player Sounder
	sound  string
	minGap time.Duration
	last   time.Time
	now    func() time.Time

	playing sync.WaitGroup
}

// NewChime creates a chime for cfg. An empty cfg.Sound gives a silent chime.
func NewChime(cfg config.AudioConfig, player *Player, logger *slog.Logger) *Chime {
	if player == nil {
		return newChime(cfg.Sound, nil, logger)
	}
	player.SetVolume(float64(cfg.Volume) / 100.0)
	return newChime(cfg.Sound, player, logger)
}

func newChime(sound string, player Sounder, logger *slog.Logger) *Chime {
	if logger == nil {
		logger = slog.Default()
	}
	return &Chime{
		logger: logger,
		player: player,
		sound:  expandPath(sound),
		minGap: DefaultMinGap,
		now:    time.Now,
	}
}

// Enabled reports whether a sound is configured.
func (c *Chime) Enabled() bool {
	return c.sound != "" && c.player != nil
}

// Preload decodes the sound so the first ring does not wait on disk.
func (c *Chime) Preload() error {
	if !c.Enabled() {
		return nil
	}
	if p, ok := c.player.(*Player); ok {
		if err := p.Load(c.sound); err != nil {
			return fmt.Errorf("preload chime: %w", err)
		}
	}
	return nil
}

// Ring plays the chime unless it rang within the minimum gap. Its signature
// matches the notification button's increase hook. It is called on the UI
// goroutine, so loading and playing happen in the background.
func (c *Chime) Ring(from, to int) {
	if !c.Enabled() {
		return
	}

	c.mu.Lock()
	now := c.now()
	if !c.last.IsZero() && now.Sub(c.last) < c.minGap {
		c.mu.Unlock()
		return
	}
	c.last = now
	c.mu.Unlock()

	c.playing.Add(1)
	go func() {
		defer c.playing.Done()
		if err := c.player.Play(c.sound); err != nil {
			c.logger.Warn("failed to play chime", "path", c.sound, "from", from, "to", to, "error", err)
		}
	}()
}

// Wait blocks until every started ring has been handed to the player.
func (c *Chime) Wait() {
	c.playing.Wait()
}

// Watch reloads the cached sound whenever the file changes on disk, so Ring
// never decodes on its own. It blocks until ctx is cancelled.
func (c *Chime) Watch(ctx context.Context) error {
	p, ok := c.player.(*Player)
	if !c.Enabled() || !ok {
		<-ctx.Done()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create sound watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(c.sound)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(c.sound), err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(c.sound) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				p.Invalidate(c.sound)
				c.logger.Debug("chime sound changed", "path", c.sound)
				if err := p.Load(c.sound); err != nil {
					// A rename or a half-written file; the next event retries.
					c.logger.Debug("chime sound not reloaded", "path", c.sound, "error", err)
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.logger.Warn("sound watcher error", "error", err)
		}
	}
}
