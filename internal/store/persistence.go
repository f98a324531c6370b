package store

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jmylchreest/overbar/internal/model"
)

// SchemaVersion is the current history file schema version.
const SchemaVersion = 1

// Persistence stores notification history.
type Persistence interface {
	// Load reads every stored notification.
	Load() ([]model.Notification, error)
	// Append adds one notification.
	Append(n model.Notification) error
	// AppendBatch adds several notifications with a single sync.
	AppendBatch(ns []model.Notification) error
	// Rewrite replaces the stored history, used after updates.
	Rewrite(ns []model.Notification) error
	// Clear removes all stored notifications.
	Clear() error
	// Close releases the underlying file.
	Close() error
}

// ErrPersistenceClosed is returned once Close has been called.
var ErrPersistenceClosed = errors.New("persistence is closed")

type schemaHeader struct {
	SchemaVersion int   `json:"overbar_schema_version"`
	CreatedAt     int64 `json:"created_at"`
}

// JSONLPersistence stores history as one JSON object per line, preceded by a
// schema header line.
type JSONLPersistence struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	closed bool
}

// NewJSONLPersistence opens (or creates) the history file at path.
func NewJSONLPersistence(path string) (*JSONLPersistence, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}

	p := &JSONLPersistence{path: path, file: file}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.Size() == 0 {
		if err := p.writeHeader(); err != nil {
			file.Close()
			return nil, err
		}
	}

	return p, nil
}

// Path returns the history file path.
func (p *JSONLPersistence) Path() string {
	return p.path
}

func (p *JSONLPersistence) writeHeader() error {
	data, err := json.Marshal(schemaHeader{
		SchemaVersion: SchemaVersion,
		CreatedAt:     time.Now().Unix(),
	})
	if err != nil {
		return err
	}
	_, err = p.file.Write(append(data, '\n'))
	return err
}

// Load reads all notifications. Malformed lines are skipped. The file is
// read by path so that rewrites made by other processes are seen.
func (p *JSONLPersistence) Load() ([]model.Notification, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || p.file == nil {
		return nil, ErrPersistenceClosed
	}

	f, err := os.Open(p.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", p.path, err)
	}
	defer f.Close()

	var notifications []model.Notification
	scanner := bufio.NewScanner(f)
	const maxLineSize = 1024 * 1024
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		if lineNum == 1 {
			var header schemaHeader
			if err := json.Unmarshal(line, &header); err == nil && header.SchemaVersion > 0 {
				if header.SchemaVersion > SchemaVersion {
					return nil, fmt.Errorf("unsupported schema version %d (max: %d)",
						header.SchemaVersion, SchemaVersion)
				}
				continue
			}
		}

		var n model.Notification
		if err := json.Unmarshal(line, &n); err != nil {
			continue
		}
		if n.ID != "" {
			notifications = append(notifications, n)
		}
	}

	if err := scanner.Err(); err != nil {
		return notifications, fmt.Errorf("error reading file: %w", err)
	}
	return notifications, nil
}

// Append adds a notification and syncs the file.
func (p *JSONLPersistence) Append(n model.Notification) error {
	return p.AppendBatch([]model.Notification{n})
}

// AppendBatch adds notifications and syncs once.
func (p *JSONLPersistence) AppendBatch(ns []model.Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || p.file == nil {
		return ErrPersistenceClosed
	}

	if err := p.reopenIfReplaced(); err != nil {
		return err
	}
	if err := p.writeAll(ns); err != nil {
		return err
	}
	return p.file.Sync()
}

// Rewrite replaces the file contents with ns. The previous file is kept as
// a .bak until the new one has been synced.
func (p *JSONLPersistence) Rewrite(ns []model.Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPersistenceClosed
	}

	backupPath, err := p.reopenTruncated()
	if err != nil {
		return err
	}

	if err := p.writeHeader(); err != nil {
		return err
	}
	if err := p.writeAll(ns); err != nil {
		return err
	}
	if err := p.file.Sync(); err != nil {
		return err
	}

	_ = os.Remove(backupPath)
	return nil
}

// Clear truncates the history back to just a header.
func (p *JSONLPersistence) Clear() error {
	return p.Rewrite(nil)
}

// Close releases the file handle.
func (p *JSONLPersistence) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	if p.file != nil {
		err := p.file.Close()
		p.file = nil
		return err
	}
	return nil
}

// reopenIfReplaced reopens the append handle when another process has
// replaced the file at p.path. Callers must hold p.mu.
func (p *JSONLPersistence) reopenIfReplaced() error {
	onDisk, err := os.Stat(p.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	current, err := p.file.Stat()
	if err != nil {
		return err
	}
	if onDisk != nil && os.SameFile(onDisk, current) {
		return nil
	}

	file, err := os.OpenFile(p.path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("failed to reopen %s: %w", p.path, err)
	}
	_ = p.file.Close()
	p.file = file

	if onDisk == nil {
		return p.writeHeader()
	}
	return nil
}

// reopenTruncated moves the current file aside and opens a fresh one.
// Callers must hold p.mu.
func (p *JSONLPersistence) reopenTruncated() (string, error) {
	if p.file != nil {
		if err := p.file.Close(); err != nil {
			return "", err
		}
		p.file = nil
	}

	backupPath := p.path + ".bak"
	if err := os.Rename(p.path, backupPath); err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to create backup: %w", err)
	}

	file, err := os.OpenFile(p.path, os.O_RDWR|os.O_CREATE|os.O_TRUNC|os.O_APPEND, 0600)
	if err != nil {
		_ = os.Rename(backupPath, p.path)
		return "", fmt.Errorf("failed to create new file: %w", err)
	}
	p.file = file
	return backupPath, nil
}

func (p *JSONLPersistence) writeAll(ns []model.Notification) error {
	for _, n := range ns {
		data, err := json.Marshal(n)
		if err != nil {
			return err
		}
		if _, err := p.file.Write(append(data, '\n')); err != nil {
			return err
		}
	}
	return nil
}
