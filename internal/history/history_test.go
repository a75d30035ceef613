package history

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestLog(t *testing.T) *Log {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "nested", "history.jsonl"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestNewEntry(t *testing.T) {
	e, err := NewEntry("memes/bruh.mp3", "memes", "/srv/sounds/memes/bruh.mp3", "overlap", true)
	require.NoError(t, err)

	assert.Len(t, e.ID, 26) // ULID
	assert.Equal(t, "memes/bruh.mp3", e.ClipKey)
	assert.Equal(t, "memes", e.Group)
	assert.Equal(t, "overlap", e.Mode)
	assert.True(t, e.Compressed)
	assert.Positive(t, e.PlayedAt)
}

func TestLog_AppendAndLoad(t *testing.T) {
	l := openTestLog(t)

	e1, err := NewEntry("a.wav", "", "/s/a.wav", "overlap", false)
	require.NoError(t, err)
	e2, err := NewEntry("b.wav", "", "/s/b.wav", "interrupt", true)
	require.NoError(t, err)

	require.NoError(t, l.Append(e1))
	require.NoError(t, l.Append(e2))

	entries, err := l.Load()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, e1, entries[0])
	assert.Equal(t, e2, entries[1])
}

func TestLog_Recent(t *testing.T) {
	l := openTestLog(t)

	for _, key := range []string{"a.wav", "b.wav", "c.wav"} {
		e, err := NewEntry(key, "", "/s/"+key, "overlap", false)
		require.NoError(t, err)
		require.NoError(t, l.Append(e))
	}

	recent, err := l.Recent(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "c.wav", recent[0].ClipKey)
	assert.Equal(t, "b.wav", recent[1].ClipKey)

	all, err := l.Recent(0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestLog_LoadSkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.jsonl")
	content := `{"id":"01ARZ3NDEKTSV4RRFFQ69G5FAV","clip_key":"a.wav","path":"/s/a.wav","played_at":1700000000,"mode":"overlap"}
not json at all
{"id":"","clip_key":"missing id"}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	l, err := Open(path)
	require.NoError(t, err)
	defer l.Close()

	entries, err := l.Load()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.wav", entries[0].ClipKey)
}

func TestLog_Clear(t *testing.T) {
	l := openTestLog(t)

	e, err := NewEntry("a.wav", "", "/s/a.wav", "overlap", false)
	require.NoError(t, err)
	require.NoError(t, l.Append(e))

	require.NoError(t, l.Clear())

	entries, err := l.Load()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLog_ClosedErrors(t *testing.T) {
	l := openTestLog(t)
	require.NoError(t, l.Close())

	e, err := NewEntry("a.wav", "", "/s/a.wav", "overlap", false)
	require.NoError(t, err)

	assert.ErrorIs(t, l.Append(e), ErrLogClosed)
	_, err = l.Load()
	assert.ErrorIs(t, err, ErrLogClosed)
}
