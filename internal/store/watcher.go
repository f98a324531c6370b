package store

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a FileWatcher waits for writes to settle
// before rehydrating. A single `overbar import` appends in several writes.
const DefaultDebounce = 100 * time.Millisecond

// FileWatcher rehydrates a Store when another process writes its history
// file, e.g. `overbar notify` or `overbar read` run in another terminal.
// Bursts of writes within the debounce window cause one rehydrate; the
// store's subscribers see the result as ordinary change events.
type FileWatcher struct {
	path     string
	debounce time.Duration
	hydrate  func() error
	logger   *slog.Logger
}

// NewFileWatcher creates a watcher for the store's history file.
func NewFileWatcher(store *Store, path string, logger *slog.Logger) *FileWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileWatcher{
		path:     path,
		debounce: DefaultDebounce,
		hydrate:  store.Hydrate,
		logger:   logger,
	}
}

// Run watches until ctx is cancelled. The parent directory is watched
// because rewrites replace the file.
func (fw *FileWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create history watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(fw.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(fw.path), err)
	}

	filename := filepath.Base(fw.path)

	// settle fires once writes have stopped for the debounce window.
	settle := time.NewTimer(fw.debounce)
	settle.Stop()
	defer settle.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				settle.Reset(fw.debounce)
			}

		case <-settle.C:
			fw.logger.Debug("history file changed, rehydrating store", "file", fw.path)
			if err := fw.hydrate(); err != nil {
				fw.logger.Warn("failed to rehydrate store", "error", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fw.logger.Warn("history watcher error", "error", err)
		}
	}
}
