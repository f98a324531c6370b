// Package notify exposes the unread notification count to the toolbar.
package notify

import (
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gobwas/glob"

	"github.com/jmylchreest/overbar/internal/bindable"
	"github.com/jmylchreest/overbar/internal/model"
	"github.com/jmylchreest/overbar/internal/store"
)

// Source provides an observable unread count. The value must only be read
// and written from the UI event loop.
type Source interface {
	UnreadCount() *bindable.Value[int]
}

// StaticSource is a Source whose count is set directly.
type StaticSource struct {
	count *bindable.Value[int]
}

// NewStaticSource returns a StaticSource starting at initial.
func NewStaticSource(initial int) *StaticSource {
	return &StaticSource{count: bindable.NewValue(initial)}
}

// UnreadCount returns the observable count.
func (s *StaticSource) UnreadCount() *bindable.Value[int] {
	return s.count
}

// ChangedMsg is delivered when the backing store changed and the count
// should be recomputed with Sync.
type ChangedMsg struct {
	Event store.ChangeEvent
}

// StoreSource mirrors the unread count of a store.Store, ignoring muted apps.
type StoreSource struct {
	store  *store.Store
	count  *bindable.Value[int]
	muted  []glob.Glob
	events <-chan store.ChangeEvent
	logger *slog.Logger
}

// NewStoreSource subscribes to s. muteApps are glob patterns matched against
// the notification app name.
func NewStoreSource(s *store.Store, muteApps []string, logger *slog.Logger) (*StoreSource, error) {
	if logger == nil {
		logger = slog.Default()
	}

	muted := make([]glob.Glob, 0, len(muteApps))
	for _, pattern := range muteApps {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid mute pattern %q: %w", pattern, err)
		}
		muted = append(muted, g)
	}

	src := &StoreSource{
		store:  s,
		count:  bindable.NewValue(0),
		muted:  muted,
		events: s.Subscribe(),
		logger: logger,
	}
	src.Sync()
	return src, nil
}

// UnreadCount returns the observable count.
func (s *StoreSource) UnreadCount() *bindable.Value[int] {
	return s.count
}

// Sync recomputes the count from the store and publishes it.
func (s *StoreSource) Sync() int {
	n := len(s.store.Unread(s.counts))
	if err := s.count.Set(n); err != nil {
		s.logger.Debug("unread count not updated", "error", err)
	}
	return s.count.Get()
}

// Muted reports whether notifications from app are excluded from the count.
func (s *StoreSource) Muted(app string) bool {
	for _, g := range s.muted {
		if g.Match(app) {
			return true
		}
	}
	return false
}

func (s *StoreSource) counts(n model.Notification) bool {
	return !s.Muted(n.AppName)
}

// WaitForChange blocks until the store changes. It is meant to be returned
// as a tea.Cmd and re-issued after each ChangedMsg. It returns nil once the
// subscription is closed.
func (s *StoreSource) WaitForChange() tea.Msg {
	ev, ok := <-s.events
	if !ok {
		return nil
	}
	return ChangedMsg{Event: ev}
}

// MarkAllRead marks every notification seen. The count follows on the next
// Sync.
func (s *StoreSource) MarkAllRead() error {
	return s.store.MarkAllSeen()
}

// Close releases the store subscription.
func (s *StoreSource) Close() {
	s.store.Unsubscribe(s.events)
}
