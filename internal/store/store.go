// Package store keeps the notification history the unread counter is
// derived from.
package store

import (
	"errors"
	"sort"
	"sync"

	"github.com/jmylchreest/overbar/internal/model"
)

// ChangeType indicates the type of store change.
type ChangeType int

const (
	// ChangeTypeAdd indicates notifications were added.
	ChangeTypeAdd ChangeType = iota
	// ChangeTypeUpdate indicates read or dismissed state changed.
	ChangeTypeUpdate
	// ChangeTypeClear indicates all notifications were removed.
	ChangeTypeClear
)

// ChangeEvent signals store content changes.
type ChangeEvent struct {
	Type   ChangeType
	Count  int
	Source string
}

// ErrStoreClosed is returned by mutations after Close.
var ErrStoreClosed = errors.New("store is closed")

// Store holds the notification history. It is safe for concurrent use; the
// UI only ever reads it from its event loop, while importers write from
// their own goroutines.
type Store struct {
	mu            sync.RWMutex
	notifications []model.Notification
	index         map[string]int // id -> slice index
	hashIndex     map[string]int // content hash -> slice index

	persistence Persistence

	subscribers []chan ChangeEvent
	closed      bool
}

// NewStore creates a Store. persistence may be nil for an in-memory store.
func NewStore(persistence Persistence) *Store {
	return &Store{
		index:       make(map[string]int),
		hashIndex:   make(map[string]int),
		persistence: persistence,
	}
}

// Add adds a live notification. Only a repeated ID is skipped: two alerts
// with the same text are still two unread notifications.
func (s *Store) Add(n model.Notification) error {
	return s.add([]model.Notification{n}, false)
}

// AddBatch adds imported notifications, skipping any whose content is
// already stored so that importing the same history twice is harmless.
func (s *Store) AddBatch(ns []model.Notification) error {
	return s.add(ns, true)
}

func (s *Store) add(ns []model.Notification, byContent bool) error {
	if len(ns) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	toAdd := make([]model.Notification, 0, len(ns))
	seenIDs := make(map[string]bool)
	seenHashes := make(map[string]bool)
	for _, n := range ns {
		n.EnsureContentHash()
		if _, ok := s.index[n.ID]; ok || seenIDs[n.ID] {
			continue
		}
		if byContent {
			if _, ok := s.hashIndex[n.ContentHash]; ok || seenHashes[n.ContentHash] {
				continue
			}
		}
		seenIDs[n.ID] = true
		seenHashes[n.ContentHash] = true
		toAdd = append(toAdd, n)
	}
	if len(toAdd) == 0 {
		return nil
	}

	for _, n := range toAdd {
		s.insertLocked(n)
	}

	if s.persistence != nil {
		if err := s.persistence.AppendBatch(toAdd); err != nil {
			return err
		}
	}

	s.notifyChange(ChangeEvent{
		Type:   ChangeTypeAdd,
		Count:  len(toAdd),
		Source: toAdd[0].Source,
	})
	return nil
}

// All returns a copy of every notification, newest first.
func (s *Store) All() []model.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]model.Notification, len(s.notifications))
	copy(result, s.notifications)
	sortNewestFirst(result)
	return result
}

// Unread returns unread notifications accepted by keep, newest first. A nil
// keep accepts everything.
func (s *Store) Unread(keep func(model.Notification) bool) []model.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []model.Notification
	for _, n := range s.notifications {
		if !n.IsUnread() {
			continue
		}
		if keep != nil && !keep(n) {
			continue
		}
		result = append(result, n)
	}
	sortNewestFirst(result)
	return result
}

// Get returns the notification with id, or nil.
func (s *Store) Get(id string) *model.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if idx, ok := s.index[id]; ok {
		n := s.notifications[idx]
		return &n
	}
	return nil
}

// Count returns the number of stored notifications.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.notifications)
}

// MarkSeen marks one notification read.
func (s *Store) MarkSeen(id string) error {
	return s.update(func(ns []model.Notification) int {
		for i := range ns {
			if ns[i].ID == id && !ns[i].IsSeen() {
				ns[i].MarkSeen()
				return 1
			}
		}
		return 0
	})
}

// MarkAllSeen marks every unread notification read.
func (s *Store) MarkAllSeen() error {
	return s.update(func(ns []model.Notification) int {
		changed := 0
		for i := range ns {
			if !ns[i].IsSeen() {
				ns[i].MarkSeen()
				changed++
			}
		}
		return changed
	})
}

// Dismiss marks a notification dismissed.
func (s *Store) Dismiss(id string) error {
	return s.update(func(ns []model.Notification) int {
		for i := range ns {
			if ns[i].ID == id && !ns[i].IsDismissed() {
				ns[i].MarkDismissed()
				return 1
			}
		}
		return 0
	})
}

// update applies fn under the write lock and persists and notifies if fn
// reports changes.
func (s *Store) update(fn func([]model.Notification) int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	changed := fn(s.notifications)
	if changed == 0 {
		return nil
	}

	if s.persistence != nil {
		if err := s.persistence.Rewrite(s.notifications); err != nil {
			return err
		}
	}

	s.notifyChange(ChangeEvent{Type: ChangeTypeUpdate, Count: changed})
	return nil
}

// Hydrate merges the persisted history into the store. New entries are
// added; for known entries the read and dismissed times written by another
// process are adopted.
func (s *Store) Hydrate() error {
	if s.persistence == nil {
		return nil
	}

	loaded, err := s.persistence.Load()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	added, updated := 0, 0
	for _, n := range loaded {
		n.EnsureContentHash()

		if idx, ok := s.index[n.ID]; ok {
			cur := &s.notifications[idx]
			if n.SeenAt > cur.SeenAt || n.DismissedAt > cur.DismissedAt {
				cur.SeenAt = max(cur.SeenAt, n.SeenAt)
				cur.DismissedAt = max(cur.DismissedAt, n.DismissedAt)
				updated++
			}
			continue
		}

		s.insertLocked(n)
		added++
	}

	if added > 0 {
		s.notifyChange(ChangeEvent{Type: ChangeTypeAdd, Count: added, Source: "persistence"})
	}
	if updated > 0 {
		s.notifyChange(ChangeEvent{Type: ChangeTypeUpdate, Count: updated, Source: "persistence"})
	}
	return nil
}

// Clear removes all notifications.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	count := len(s.notifications)
	s.notifications = nil
	s.index = make(map[string]int)
	s.hashIndex = make(map[string]int)

	if s.persistence != nil {
		if err := s.persistence.Clear(); err != nil {
			return err
		}
	}

	s.notifyChange(ChangeEvent{Type: ChangeTypeClear, Count: count})
	return nil
}

// Subscribe returns a channel that receives change events. Events are
// dropped rather than blocking when the channel is full.
func (s *Store) Subscribe() <-chan ChangeEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan ChangeEvent, 16)
	if s.closed {
		close(ch)
		return ch
	}
	s.subscribers = append(s.subscribers, ch)
	return ch
}

// Unsubscribe removes and closes a subscription.
func (s *Store) Unsubscribe(ch <-chan ChangeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sub := range s.subscribers {
		if sub == ch {
			s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
			close(sub)
			return
		}
	}
}

// Close closes all subscriptions and the persistence layer.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	for _, ch := range s.subscribers {
		close(ch)
	}
	s.subscribers = nil

	if s.persistence != nil {
		return s.persistence.Close()
	}
	return nil
}

func (s *Store) insertLocked(n model.Notification) {
	idx := len(s.notifications)
	s.notifications = append(s.notifications, n)
	s.index[n.ID] = idx
	s.hashIndex[n.ContentHash] = idx
}

// notifyChange must be called with s.mu held.
func (s *Store) notifyChange(event ChangeEvent) {
	for _, ch := range s.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

func sortNewestFirst(ns []model.Notification) {
	sort.SliceStable(ns, func(i, j int) bool {
		return ns[i].Timestamp > ns[j].Timestamp
	})
}
