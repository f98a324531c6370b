package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/overbar/internal/bindable"
	"github.com/jmylchreest/overbar/internal/model"
	"github.com/jmylchreest/overbar/internal/store"
)

func TestStaticSource(t *testing.T) {
	src := NewStaticSource(3)
	assert.Equal(t, 3, src.UnreadCount().Get())

	var seen []int
	src.UnreadCount().BindValueChanged(func(ev bindable.ValueChangedEvent[int]) {
		seen = append(seen, ev.New)
	}, false)

	require.NoError(t, src.UnreadCount().Set(5))
	assert.Equal(t, []int{5}, seen)
}

func TestStoreSource_CountsUnread(t *testing.T) {
	s := store.NewStore(nil)
	defer s.Close()

	require.NoError(t, s.AddBatch([]model.Notification{
		testNotification("a", "mail"),
		testNotification("b", "chat"),
	}))

	src, err := NewStoreSource(s, nil, nil)
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, 2, src.UnreadCount().Get())

	require.NoError(t, s.MarkSeen("a"))
	assert.Equal(t, 1, src.Sync())
}

func TestStoreSource_MutedApps(t *testing.T) {
	s := store.NewStore(nil)
	defer s.Close()

	require.NoError(t, s.AddBatch([]model.Notification{
		testNotification("a", "spotify"),
		testNotification("b", "spotify-launcher"),
		testNotification("c", "mail"),
	}))

	src, err := NewStoreSource(s, []string{"spotify*"}, nil)
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, 1, src.UnreadCount().Get())
	assert.True(t, src.Muted("spotify"))
	assert.False(t, src.Muted("mail"))
}

func TestStoreSource_InvalidPattern(t *testing.T) {
	s := store.NewStore(nil)
	defer s.Close()

	_, err := NewStoreSource(s, []string{"[abc"}, nil)
	assert.Error(t, err)
}

func TestStoreSource_WaitForChange(t *testing.T) {
	s := store.NewStore(nil)
	defer s.Close()

	src, err := NewStoreSource(s, nil, nil)
	require.NoError(t, err)

	msgs := make(chan any, 1)
	go func() { msgs <- src.WaitForChange() }()

	require.NoError(t, s.Add(testNotification("a", "mail")))

	select {
	case msg := <-msgs:
		changed, ok := msg.(ChangedMsg)
		require.True(t, ok)
		assert.Equal(t, store.ChangeTypeAdd, changed.Event.Type)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for change")
	}
	assert.Equal(t, 1, src.Sync())

	require.NoError(t, src.MarkAllRead())
	assert.IsType(t, ChangedMsg{}, src.WaitForChange())
	assert.Equal(t, 0, src.Sync())

	src.Close()
	assert.Nil(t, src.WaitForChange())
}

func testNotification(id, app string) model.Notification {
	now := time.Now().Unix()
	return model.Notification{
		ID:        id,
		Source:    "test",
		AppName:   app,
		Summary:   "Summary " + id,
		Timestamp: now,
		Urgency:   model.UrgencyNormal,
	}
}
