package skin

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Loader resolves skins by name and can hot-reload the active one.
type Loader struct {
	mu      sync.RWMutex
	logger  *slog.Logger
	dir     string
	current *Skin

	watcher *fsnotify.Watcher
}

// NewLoader creates a loader reading user skins from dir. dir may be empty to
// use only the embedded skins. The default skin is active until Load is
// called.
func NewLoader(dir string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		logger:  logger,
		dir:     dir,
		current: Default(),
	}
}

// Dir returns the user skin directory.
func (l *Loader) Dir() string {
	return l.dir
}

// Load makes the named skin current.
// Skin resolution order:
//  1. User skins directory (<dir>/<name>.toml)
//  2. Embedded skins
//  3. The default skin
//
// A user file with a bundled skin's name overrides it.
func (l *Loader) Load(name string) *Skin {
	if name == "" {
		name = DefaultSkinName
	}

	s := l.resolve(name)

	l.mu.Lock()
	l.current = s
	l.mu.Unlock()
	return s
}

func (l *Loader) resolve(name string) *Skin {
	if l.dir != "" {
		path := filepath.Join(l.dir, name+".toml")
		if s, err := readFile(name, path); err == nil {
			l.logger.Debug("loaded user skin", "name", name, "path", path)
			return s
		} else if !os.IsNotExist(err) {
			l.logger.Warn("failed to load user skin, trying bundled", "skin", name, "error", err)
		}
	}

	if s, ok := GetEmbedded(name); ok {
		l.logger.Debug("loaded bundled skin", "name", name)
		return s
	}

	l.logger.Warn("skin not found, using default", "skin", name)
	return Default()
}

func readFile(name, path string) (*Skin, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	s, err := Parse(name, data)
	if err != nil {
		return nil, err
	}
	s.Path = path
	s.ModTime = info.ModTime()
	return s, nil
}

// Current returns the active skin.
func (l *Loader) Current() *Skin {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

// Reload re-resolves the active skin by name.
func (l *Loader) Reload() *Skin {
	return l.Load(l.Current().Name)
}

// List returns every available skin name: bundled first, then user skins not
// already listed.
func (l *Loader) List() []string {
	seen := make(map[string]bool)
	var names []string

	for _, name := range ListEmbedded() {
		seen[name] = true
		names = append(names, name)
	}

	if l.dir == "" {
		return names
	}

	entries, err := os.ReadDir(l.dir)
	if err != nil {
		l.logger.Debug("failed to read skins directory", "error", err)
		return names
	}

	var user []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".toml" {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".toml")
		if !seen[name] {
			seen[name] = true
			user = append(user, name)
		}
	}
	sort.Strings(user)
	return append(names, user...)
}

// StartHotReload watches the user skin directory and reloads the active skin
// when its file is written. onChange runs on the watcher goroutine after
// each reload. Watching stops when ctx is cancelled or StopHotReload is
// called. Without a skin directory this is a no-op.
func (l *Loader) StartHotReload(ctx context.Context, onChange func(*Skin)) error {
	if l.dir == "" {
		return nil
	}
	if _, err := os.Stat(l.dir); err != nil {
		l.logger.Debug("not starting skin hot-reload", "dir", l.dir, "error", err)
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(l.dir); err != nil {
		watcher.Close()
		return err
	}

	l.mu.Lock()
	if l.watcher != nil {
		l.watcher.Close()
	}
	l.watcher = watcher
	l.mu.Unlock()

	go l.watch(ctx, watcher, onChange)
	l.logger.Debug("skin hot-reload started", "dir", l.dir)
	return nil
}

// StopHotReload stops a running hot-reload watcher.
func (l *Loader) StopHotReload() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.watcher != nil {
		l.watcher.Close()
		l.watcher = nil
	}
}

func (l *Loader) watch(ctx context.Context, watcher *fsnotify.Watcher, onChange func(*Skin)) {
	defer watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			name := strings.TrimSuffix(filepath.Base(event.Name), ".toml")
			if name != l.Current().Name {
				continue
			}

			s := l.Reload()
			l.logger.Info("hot-reloaded skin", "name", s.Name)
			if onChange != nil {
				onChange(s)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			l.logger.Warn("skin watcher error", "error", err)
		}
	}
}
