package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appendLine(t *testing.T, path string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if !assert.NoError(t, err) {
		return
	}
	_, err = f.WriteString("\n")
	assert.NoError(t, err)
	assert.NoError(t, f.Close())
}

func TestFileWatcher_RehydratesFromOtherWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.jsonl")

	writerP, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	writer := NewStore(writerP)
	defer writer.Close()

	readerP, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	reader := NewStore(readerP)
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fw := NewFileWatcher(reader, path, nil)
	fw.debounce = 20 * time.Millisecond

	done := make(chan error, 1)
	go func() { done <- fw.Run(ctx) }()

	i := 0
	require.Eventually(t, func() bool {
		i++
		assert.NoError(t, writer.Add(testNotification(fmt.Sprintf("w%d", i))))
		return reader.Count() > 0
	}, 5*time.Second, 200*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop on cancel")
	}
}

func TestFileWatcher_DebouncesBursts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.jsonl")
	appendLine(t, path)

	var calls atomic.Int32
	fw := NewFileWatcher(NewStore(nil), path, nil)
	fw.debounce = 50 * time.Millisecond
	fw.hydrate = func() error {
		calls.Add(1)
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go fw.Run(ctx) //nolint:errcheck

	// Wait for the watch to be in place.
	require.Eventually(t, func() bool {
		appendLine(t, path)
		return calls.Load() > 0
	}, 5*time.Second, 200*time.Millisecond)
	time.Sleep(3 * fw.debounce)
	calls.Store(0)

	for range 10 {
		appendLine(t, path)
	}

	require.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(3 * fw.debounce)
	assert.Equal(t, int32(1), calls.Load(), "a burst of writes rehydrates once")
}

func TestFileWatcher_MissingDirectory(t *testing.T) {
	fw := NewFileWatcher(NewStore(nil), filepath.Join(t.TempDir(), "nope", "history.jsonl"), nil)
	assert.Error(t, fw.Run(context.Background()))
}
