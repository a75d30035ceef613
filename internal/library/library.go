// Package library manages the sound library: a directory of audio files
// where each file becomes a playable clip and each immediate subdirectory
// becomes a named group of clips.
package library

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/kmnunley/Soundboard/internal/model"
)

// ErrNoLibraryDir is returned when the library root does not exist.
var ErrNoLibraryDir = errors.New("sounds folder not found")

// Group is a named set of clips from one subdirectory.
type Group struct {
	Name  string
	Clips []model.SoundClip
}

// ChangeEvent signals that the library contents changed.
type ChangeEvent struct {
	Count int
}

// Library holds the scanned clips with thread-safe access.
type Library struct {
	mu     sync.RWMutex
	dir    string
	logger *slog.Logger

	clips     map[string]model.SoundClip // key -> clip
	groups    []Group                    // sorted case-insensitively
	ungrouped []model.SoundClip

	subscribers []chan ChangeEvent
}

// New creates a library rooted at dir. Call Scan to populate it.
func New(dir string, logger *slog.Logger) *Library {
	if logger == nil {
		logger = slog.Default()
	}
	return &Library{
		dir:    dir,
		logger: logger,
		clips:  make(map[string]model.SoundClip),
	}
}

// Dir returns the library root directory.
func (l *Library) Dir() string {
	return l.dir
}

// Scan rebuilds the library from disk. Clips directly under the root are
// ungrouped; each immediate subdirectory contributes a group. Deeper
// nesting is not walked. Entries are ordered case-insensitively.
func (l *Library) Scan() error {
	info, err := os.Stat(l.dir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNoLibraryDir, l.dir)
	}

	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return fmt.Errorf("read sounds folder: %w", err)
	}
	sortEntries(entries)

	clips := make(map[string]model.SoundClip)
	var groups []Group
	var ungrouped []model.SoundClip

	for _, entry := range entries {
		name := entry.Name()
		fullPath := filepath.Join(l.dir, name)

		switch {
		case !entry.IsDir() && model.IsAudioFile(name):
			clip := newClip(fullPath, "", name)
			clips[clip.Key] = clip
			ungrouped = append(ungrouped, clip)

		case entry.IsDir():
			group, err := l.scanGroup(fullPath, name)
			if err != nil {
				l.logger.Warn("could not read group folder", "group", name, "error", err)
				continue
			}
			if len(group.Clips) == 0 {
				continue
			}
			for _, clip := range group.Clips {
				clips[clip.Key] = clip
			}
			groups = append(groups, group)
		}
	}

	l.mu.Lock()
	l.clips = clips
	l.groups = groups
	l.ungrouped = ungrouped
	count := len(clips)
	l.mu.Unlock()

	l.logger.Info("library scanned", "dir", l.dir, "clips", count, "groups", len(groups))
	l.notifyChange(ChangeEvent{Count: count})
	return nil
}

// scanGroup reads one subdirectory's audio files.
func (l *Library) scanGroup(dir, name string) (Group, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Group{}, err
	}
	sortEntries(entries)

	group := Group{Name: name}
	for _, entry := range entries {
		if entry.IsDir() || !model.IsAudioFile(entry.Name()) {
			continue
		}
		clip := newClip(filepath.Join(dir, entry.Name()), name, entry.Name())
		group.Clips = append(group.Clips, clip)
	}
	return group, nil
}

// newClip builds a SoundClip for a file.
func newClip(path, group, filename string) model.SoundClip {
	clip := model.SoundClip{
		Key:   model.ClipKey(group, filename),
		Label: model.ClipLabel(filename),
		Group: group,
		Path:  path,
	}
	if info, err := os.Stat(path); err == nil {
		clip.Size = info.Size()
	}
	return clip
}

// Get returns the clip for a key.
func (l *Library) Get(key string) (model.SoundClip, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	clip, ok := l.clips[key]
	return clip, ok
}

// Groups returns the grouped clips in scan order.
func (l *Library) Groups() []Group {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]Group, len(l.groups))
	copy(result, l.groups)
	return result
}

// Ungrouped returns the clips directly under the library root.
func (l *Library) Ungrouped() []model.SoundClip {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]model.SoundClip, len(l.ungrouped))
	copy(result, l.ungrouped)
	return result
}

// All returns every clip: grouped clips first in group order, then
// ungrouped clips.
func (l *Library) All() []model.SoundClip {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var result []model.SoundClip
	for _, group := range l.groups {
		result = append(result, group.Clips...)
	}
	result = append(result, l.ungrouped...)
	return result
}

// Count returns the number of clips.
func (l *Library) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.clips)
}

// GroupDirs returns the root plus every group directory, for watching.
func (l *Library) GroupDirs() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	dirs := []string{l.dir}
	for _, group := range l.groups {
		dirs = append(dirs, filepath.Join(l.dir, group.Name))
	}
	return dirs
}

// Subscribe returns a channel that receives change events after rescans.
func (l *Library) Subscribe() <-chan ChangeEvent {
	l.mu.Lock()
	defer l.mu.Unlock()

	ch := make(chan ChangeEvent, 4)
	l.subscribers = append(l.subscribers, ch)
	return ch
}

// notifyChange sends a change event to all subscribers (non-blocking).
func (l *Library) notifyChange(event ChangeEvent) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, ch := range l.subscribers {
		select {
		case ch <- event:
		default:
			// Subscriber lagging, skip
		}
	}
}

// sortEntries orders directory entries case-insensitively by name.
func sortEntries(entries []os.DirEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return strings.ToLower(entries[i].Name()) < strings.ToLower(entries[j].Name())
	})
}
