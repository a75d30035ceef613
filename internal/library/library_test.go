package library

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeLibrary lays out a library fixture:
//
//	sounds/
//	  Zebra.wav
//	  air_horn.wav
//	  readme.txt
//	  memes/
//	    bruh.mp3
//	    wow.ogg
//	  empty/
//	  nested/
//	    deep/
//	      hidden.wav
func writeLibrary(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		"Zebra.wav":              "z",
		"air_horn.wav":           "a",
		"readme.txt":             "notes",
		"memes/bruh.mp3":         "b",
		"memes/wow.ogg":          "w",
		"nested/deep/hidden.wav": "h",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "empty"), 0755))

	return dir
}

func TestLibrary_Scan(t *testing.T) {
	lib := New(writeLibrary(t), nil)
	require.NoError(t, lib.Scan())

	// Two root clips plus two in "memes". "nested" has no direct audio
	// files and "empty" has none at all; neither becomes a group.
	assert.Equal(t, 4, lib.Count())

	groups := lib.Groups()
	require.Len(t, groups, 1)
	assert.Equal(t, "memes", groups[0].Name)
	require.Len(t, groups[0].Clips, 2)
	assert.Equal(t, "memes/bruh.mp3", groups[0].Clips[0].Key)
	assert.Equal(t, "memes/wow.ogg", groups[0].Clips[1].Key)

	ungrouped := lib.Ungrouped()
	require.Len(t, ungrouped, 2)
	// Case-insensitive ordering: air_horn before Zebra.
	assert.Equal(t, "air_horn.wav", ungrouped[0].Key)
	assert.Equal(t, "Zebra.wav", ungrouped[1].Key)
}

func TestLibrary_ClipFields(t *testing.T) {
	dir := writeLibrary(t)
	lib := New(dir, nil)
	require.NoError(t, lib.Scan())

	clip, ok := lib.Get("air_horn.wav")
	require.True(t, ok)
	assert.Equal(t, "air horn", clip.Label)
	assert.Empty(t, clip.Group)
	assert.Equal(t, filepath.Join(dir, "air_horn.wav"), clip.Path)
	assert.Equal(t, int64(1), clip.Size)

	grouped, ok := lib.Get("memes/bruh.mp3")
	require.True(t, ok)
	assert.Equal(t, "memes", grouped.Group)
	assert.Equal(t, "bruh", grouped.Label)
}

func TestLibrary_All(t *testing.T) {
	lib := New(writeLibrary(t), nil)
	require.NoError(t, lib.Scan())

	all := lib.All()
	require.Len(t, all, 4)
	// Grouped clips first, then ungrouped.
	assert.Equal(t, "memes/bruh.mp3", all[0].Key)
	assert.Equal(t, "memes/wow.ogg", all[1].Key)
	assert.Equal(t, "air_horn.wav", all[2].Key)
	assert.Equal(t, "Zebra.wav", all[3].Key)
}

func TestLibrary_MissingDir(t *testing.T) {
	lib := New(filepath.Join(t.TempDir(), "nope"), nil)
	err := lib.Scan()
	assert.ErrorIs(t, err, ErrNoLibraryDir)
	assert.Equal(t, 0, lib.Count())
}

func TestLibrary_RescanPicksUpChanges(t *testing.T) {
	dir := writeLibrary(t)
	lib := New(dir, nil)
	require.NoError(t, lib.Scan())
	require.Equal(t, 4, lib.Count())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "new_clip.wav"), []byte("n"), 0644))
	require.NoError(t, os.Remove(filepath.Join(dir, "Zebra.wav")))
	require.NoError(t, lib.Scan())

	assert.Equal(t, 4, lib.Count())
	_, ok := lib.Get("new_clip.wav")
	assert.True(t, ok)
	_, ok = lib.Get("Zebra.wav")
	assert.False(t, ok)
}

func TestLibrary_SubscribeNotifiedOnScan(t *testing.T) {
	lib := New(writeLibrary(t), nil)
	ch := lib.Subscribe()

	require.NoError(t, lib.Scan())

	select {
	case event := <-ch:
		assert.Equal(t, 4, event.Count)
	default:
		t.Fatal("expected a change event after scan")
	}
}

func TestLibrary_GroupDirs(t *testing.T) {
	dir := writeLibrary(t)
	lib := New(dir, nil)
	require.NoError(t, lib.Scan())

	dirs := lib.GroupDirs()
	assert.Equal(t, []string{dir, filepath.Join(dir, "memes")}, dirs)
}
