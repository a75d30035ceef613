// Package history records playback events to an append-only JSONL file.
package history

import (
	"bufio"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ErrLogClosed is returned when operations are attempted on a closed log.
var ErrLogClosed = errors.New("history log is closed")

// Entry is one playback event.
type Entry struct {
	ID         string `json:"id"`
	ClipKey    string `json:"clip_key"`
	Group      string `json:"group,omitempty"`
	Path       string `json:"path"`
	PlayedAt   int64  `json:"played_at"`
	Mode       string `json:"mode"` // "overlap" or "interrupt"
	Compressed bool   `json:"compressed"`
}

// PlayedAtTime returns the event timestamp as a time.Time.
func (e *Entry) PlayedAtTime() time.Time {
	return time.Unix(e.PlayedAt, 0)
}

// NewEntry creates an entry for a play that just started.
func NewEntry(clipKey, group, path, mode string, compressed bool) (Entry, error) {
	id, err := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	if err != nil {
		return Entry{}, fmt.Errorf("generate ULID: %w", err)
	}

	return Entry{
		ID:         id.String(),
		ClipKey:    clipKey,
		Group:      group,
		Path:       path,
		PlayedAt:   time.Now().Unix(),
		Mode:       mode,
		Compressed: compressed,
	}, nil
}

// Log is an append-only JSONL playback history.
type Log struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	closed bool
}

// Open opens (or creates) the history log at path.
func Open(path string) (*Log, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create directory %s: %w", dir, err)
	}

	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("open history file %s: %w", path, err)
	}

	return &Log{path: path, file: file}, nil
}

// Append writes an entry to the log.
func (l *Log) Append(e Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrLogClosed
	}

	data, err := json.Marshal(e)
	if err != nil {
		return err
	}

	if _, err := l.file.Write(append(data, '\n')); err != nil {
		return err
	}
	return l.file.Sync()
}

// Load reads all entries, oldest first. Malformed lines are skipped.
func (l *Log) Load() ([]Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil, ErrLogClosed
	}

	f, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			continue
		}
		if e.ID != "" {
			entries = append(entries, e)
		}
	}

	if err := scanner.Err(); err != nil {
		return entries, fmt.Errorf("read history: %w", err)
	}
	return entries, nil
}

// Recent returns the newest limit entries, newest first. limit <= 0 returns
// everything.
func (l *Log) Recent(limit int) ([]Entry, error) {
	entries, err := l.Load()
	if err != nil {
		return nil, err
	}

	// Reverse to newest first.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Clear truncates the log.
func (l *Log) Clear() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrLogClosed
	}
	return l.file.Truncate(0)
}

// Close releases the file handle.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true

	err := l.file.Close()
	l.file = nil
	return err
}
