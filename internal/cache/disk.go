package cache

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
)

// Disk persists processed audio as WAV files so processing survives
// restarts. Files are keyed by the source file identity (path, mtime, size)
// and the compressor settings signature, so stale entries are simply never
// looked up again.
type Disk struct {
	dir    string
	logger *slog.Logger
}

// NewDisk creates a disk cache rooted at dir, creating it if needed.
func NewDisk(dir string, logger *slog.Logger) (*Disk, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir %s: %w", dir, err)
	}
	return &Disk{dir: dir, logger: logger}, nil
}

// Dir returns the cache directory.
func (d *Disk) Dir() string {
	return d.dir
}

// Filename returns the cache file path for a source file and signature.
// The source file's mtime and size are folded into the digest so edits to
// the source invalidate the entry.
func (d *Disk) Filename(sourcePath, signature string) string {
	stamp := "0:0"
	if info, err := os.Stat(sourcePath); err == nil {
		stamp = fmt.Sprintf("%d:%d", info.ModTime().UnixNano(), info.Size())
	}
	raw := fmt.Sprintf("%s|%s|%s", sourcePath, stamp, signature)
	digest := sha1.Sum([]byte(raw))
	return filepath.Join(d.dir, hex.EncodeToString(digest[:])+".wav")
}

// Load reads a cached processed buffer. Returns (nil, false) on a miss or
// an unreadable entry.
func (d *Disk) Load(sourcePath, signature string) (*beep.Buffer, bool) {
	path := d.Filename(sourcePath, signature)

	f, err := os.Open(path)
	if err != nil {
		return nil, false
	}
	defer func() { _ = f.Close() }()

	streamer, format, err := wav.Decode(f)
	if err != nil {
		d.logger.Warn("unreadable cache entry", "path", path, "error", err)
		return nil, false
	}
	defer func() { _ = streamer.Close() }()

	buffer := beep.NewBuffer(format)
	buffer.Append(streamer)

	d.logger.Debug("loaded processed audio from disk cache", "source", sourcePath)
	return buffer, true
}

// Save writes a processed buffer to the cache.
func (d *Disk) Save(sourcePath, signature string, buffer *beep.Buffer) error {
	path := d.Filename(sourcePath, signature)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create cache file: %w", err)
	}

	if err := wav.Encode(f, buffer.Streamer(0, buffer.Len()), buffer.Format()); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("encode cache file: %w", err)
	}

	return f.Close()
}

// Clear removes all WAV entries from the cache directory. Other files are
// left alone.
func (d *Disk) Clear() error {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return fmt.Errorf("read cache dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".wav") {
			continue
		}
		path := filepath.Join(d.dir, entry.Name())
		if err := os.Remove(path); err != nil {
			d.logger.Warn("could not remove cache file", "path", path, "error", err)
		}
	}
	return nil
}

// Status reports the number of WAV entries and their total size in bytes.
func (d *Disk) Status() (count int, totalSize int64, err error) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return 0, 0, fmt.Errorf("read cache dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".wav") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		count++
		totalSize += info.Size()
	}
	return count, totalSize, nil
}
