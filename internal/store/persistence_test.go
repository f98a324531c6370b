package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmylchreest/overbar/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSONLPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.jsonl")

	p, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	defer p.Close()

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "overbar_schema_version")
	assert.Equal(t, path, p.Path())
}

func TestNewJSONLPersistence_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subdir", "nested", "test.jsonl")

	p, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	defer p.Close()

	_, err = os.Stat(filepath.Dir(path))
	require.NoError(t, err)
}

func TestJSONLPersistence_AppendAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.jsonl")

	p, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	defer p.Close()

	require.NoError(t, p.Append(persistTestNotification("persist1")))
	require.NoError(t, p.AppendBatch([]model.Notification{
		persistTestNotification("persist2"),
		persistTestNotification("persist3"),
	}))

	notifications, err := p.Load()
	require.NoError(t, err)
	require.Len(t, notifications, 3)
	assert.Equal(t, "persist1", notifications[0].ID)
	assert.Equal(t, "persist3", notifications[2].ID)
}

func TestJSONLPersistence_Rewrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.jsonl")

	p, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	defer p.Close()

	require.NoError(t, p.Append(persistTestNotification("old1")))
	require.NoError(t, p.Append(persistTestNotification("old2")))

	require.NoError(t, p.Rewrite([]model.Notification{persistTestNotification("new1")}))

	notifications, err := p.Load()
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, "new1", notifications[0].ID)

	_, err = os.Stat(path + ".bak")
	assert.True(t, os.IsNotExist(err), "backup should be removed")

	// Appends continue after a rewrite
	require.NoError(t, p.Append(persistTestNotification("new2")))
	notifications, err = p.Load()
	require.NoError(t, err)
	assert.Len(t, notifications, 2)
}

func TestJSONLPersistence_Clear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.jsonl")

	p, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	defer p.Close()

	require.NoError(t, p.Append(persistTestNotification("clear1")))
	require.NoError(t, p.Clear())

	notifications, err := p.Load()
	require.NoError(t, err)
	assert.Empty(t, notifications)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "overbar_schema_version")
}

func TestJSONLPersistence_SeesRewriteByAnotherHandle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.jsonl")

	a, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	defer a.Close()
	b, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, a.Append(persistTestNotification("one")))
	require.NoError(t, b.Rewrite([]model.Notification{persistTestNotification("two")}))

	// a still appends to the file now on disk
	require.NoError(t, a.Append(persistTestNotification("three")))

	notifications, err := b.Load()
	require.NoError(t, err)
	require.Len(t, notifications, 2)
	assert.Equal(t, "two", notifications[0].ID)
	assert.Equal(t, "three", notifications[1].ID)
}

func TestJSONLPersistence_FilePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.jsonl")

	p, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	require.NoError(t, p.Close())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestJSONLPersistence_SkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.jsonl")

	content := `{"overbar_schema_version":1,"created_at":1703577600}
{"id":"valid1","source":"test","app_name":"test","summary":"Test","timestamp":1703577600,"urgency":1}
{invalid json}
{"id":"valid2","source":"test","app_name":"test","summary":"Test","timestamp":1703577601,"urgency":1}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	p, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	defer p.Close()

	notifications, err := p.Load()
	require.NoError(t, err)
	assert.Len(t, notifications, 2)
}

func TestJSONLPersistence_SchemaVersionCheck(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.jsonl")

	content := `{"overbar_schema_version":999,"created_at":1703577600}
{"id":"test1","source":"test","app_name":"test","summary":"Test","timestamp":1703577600,"urgency":1}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	p, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	defer p.Close()

	_, err = p.Load()
	assert.Error(t, err)
}

func TestJSONLPersistence_Closed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.jsonl")

	p, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	_, err = p.Load()
	assert.ErrorIs(t, err, ErrPersistenceClosed)
	assert.ErrorIs(t, p.Append(persistTestNotification("x")), ErrPersistenceClosed)
	assert.ErrorIs(t, p.Rewrite(nil), ErrPersistenceClosed)
}

func persistTestNotification(id string) model.Notification {
	now := time.Now().Unix()
	return model.Notification{
		ID:         id,
		Source:     "test",
		ImportedAt: now,
		AppName:    "test-app",
		Summary:    "Test " + id,
		Body:       "Body",
		Timestamp:  now,
		Urgency:    model.UrgencyNormal,
	}
}
