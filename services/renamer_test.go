package services

import (
	"crypto/sha256"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"musicren/types"
)

// contentTagService fakes tag reading by storing "Artist|Title" on the
// first line of each file, so tags follow the file across renames like
// real embedded tags would. Anything after the first line stands in for
// audio data.
type contentTagService struct{}

func (s *contentTagService) AudioFilePaths(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, entry := range entries {
		if !entry.IsDir() && types.IsAudioFile(entry.Name()) {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func (s *contentTagService) ListAudioFiles(dir string) ([]types.AudioFile, error) {
	return nil, nil
}

func (s *contentTagService) ReadTags(path string) (*types.AudioMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	tagLine, _, _ := strings.Cut(string(data), "\n")
	parts := strings.SplitN(tagLine, "|", 2)
	meta := &types.AudioMetadata{Artist: parts[0]}
	if len(parts) > 1 {
		meta.Title = parts[1]
	}
	return meta, nil
}

func writeTaggedFile(t *testing.T, dir, name, artist, title string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(artist+"|"+title), 0644))
	return path
}

func newTestRenamer() RenameEngine {
	return &renameEngine{files: &contentTagService{}, dialect: DialectPOSIX}
}

// TestRenameByTags tests the basic rename flow
func TestRenameByTags(t *testing.T) {
	dir := t.TempDir()
	writeTaggedFile(t, dir, "track01.mp3", "Queen", "Bohemian Rhapsody")

	changes, err := newTestRenamer().RenameByTags(dir)
	require.NoError(t, err)

	assert.Equal(t, types.ChangeSet{"Queen - Bohemian Rhapsody.mp3": "track01.mp3"}, changes)
	assert.FileExists(t, filepath.Join(dir, "Queen - Bohemian Rhapsody.mp3"))
	assert.NoFileExists(t, filepath.Join(dir, "track01.mp3"))
}

// TestRenameByTagsIdempotent verifies a second pass produces no changes
func TestRenameByTagsIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeTaggedFile(t, dir, "track01.mp3", "Queen", "Bohemian Rhapsody")
	writeTaggedFile(t, dir, "track02.flac", "Muse", "Uprising")

	renamer := newTestRenamer()

	first, err := renamer.RenameByTags(dir)
	require.NoError(t, err)
	assert.Len(t, first, 2)

	second, err := renamer.RenameByTags(dir)
	require.NoError(t, err)
	assert.Empty(t, second)
}

// TestRenameByTagsSkipsIneligible verifies placeholder and empty tags never
// produce a rename
func TestRenameByTagsSkipsIneligible(t *testing.T) {
	dir := t.TempDir()
	writeTaggedFile(t, dir, "unknown_artist.mp3", types.PlaceholderArtist, "Some Title")
	writeTaggedFile(t, dir, "unknown_title.mp3", "Some Artist", types.PlaceholderTitle)
	writeTaggedFile(t, dir, "empty.mp3", "", "")

	changes, err := newTestRenamer().RenameByTags(dir)
	require.NoError(t, err)

	assert.Empty(t, changes)
	assert.FileExists(t, filepath.Join(dir, "unknown_artist.mp3"))
	assert.FileExists(t, filepath.Join(dir, "unknown_title.mp3"))
	assert.FileExists(t, filepath.Join(dir, "empty.mp3"))
}

// TestRenameByTagsCollision verifies colliding targets get numbered
// suffixes and every file keeps its original bytes
func TestRenameByTagsCollision(t *testing.T) {
	dir := t.TempDir()
	originals := map[string]string{"a.mp3": "payload-a", "b.mp3": "payload-b", "c.mp3": "payload-c"}
	hashBefore := make(map[string][32]byte, len(originals))
	for name, payload := range originals {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("Artist|Song\n"+payload), 0644))
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		hashBefore[name] = sha256.Sum256(data)
	}

	changes, err := newTestRenamer().RenameByTags(dir)
	require.NoError(t, err)
	assert.Len(t, changes, 3)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	var names []string
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	assert.Equal(t, []string{"Artist - Song (1).mp3", "Artist - Song (2).mp3", "Artist - Song.mp3"}, names)

	// Each renamed file must carry exactly the bytes of the original it
	// maps back to.
	for newName, originalName := range changes {
		data, err := os.ReadFile(filepath.Join(dir, newName))
		require.NoError(t, err)
		assert.Equal(t, hashBefore[originalName], sha256.Sum256(data), "content of %s changed during rename", originalName)
	}
}

// TestSafeRenameStatFailure verifies that a target that cannot be probed
// surfaces an error instead of suffixing forever
func TestSafeRenameStatFailure(t *testing.T) {
	dir := t.TempDir()
	src := writeTaggedFile(t, dir, "track01.mp3", "Queen", "Bohemian Rhapsody")

	// A regular file in place of the target directory makes every stat of
	// a name inside it fail with a non-not-exist error.
	notADir := filepath.Join(dir, "blocked")
	require.NoError(t, os.WriteFile(notADir, []byte("x"), 0644))

	engine := &renameEngine{files: &contentTagService{}, dialect: DialectPOSIX}
	_, err := engine.safeRename(notADir, src, "Queen - Bohemian Rhapsody.mp3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checking target name")
	assert.FileExists(t, src)
}

// TestRenameByTagsSanitizes verifies derived names pass through filename
// sanitization
func TestRenameByTagsSanitizes(t *testing.T) {
	dir := t.TempDir()
	writeTaggedFile(t, dir, "raw.mp3", "AC/DC", "T.N.T.")

	changes, err := newTestRenamer().RenameByTags(dir)
	require.NoError(t, err)

	assert.Equal(t, types.ChangeSet{"AC-DC - T.N.T..mp3": "raw.mp3"}, changes)
}

// TestUndoRename verifies the change set restores original names
func TestUndoRename(t *testing.T) {
	dir := t.TempDir()
	writeTaggedFile(t, dir, "track01.mp3", "Queen", "Bohemian Rhapsody")
	writeTaggedFile(t, dir, "track02.mp3", "Muse", "Uprising")

	renamer := newTestRenamer()

	changes, err := renamer.RenameByTags(dir)
	require.NoError(t, err)
	require.Len(t, changes, 2)

	restored, err := renamer.Undo(dir, changes)
	require.NoError(t, err)
	assert.Equal(t, 2, restored)

	assert.FileExists(t, filepath.Join(dir, "track01.mp3"))
	assert.FileExists(t, filepath.Join(dir, "track02.mp3"))
	assert.NoFileExists(t, filepath.Join(dir, "Queen - Bohemian Rhapsody.mp3"))
}

// TestUndoRenameMissingFile verifies undo skips entries whose file is gone
func TestUndoRenameMissingFile(t *testing.T) {
	dir := t.TempDir()
	writeTaggedFile(t, dir, "track01.mp3", "Queen", "Bohemian Rhapsody")

	renamer := newTestRenamer()
	changes, err := renamer.RenameByTags(dir)
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(dir, "Queen - Bohemian Rhapsody.mp3")))

	restored, err := renamer.Undo(dir, changes)
	require.NoError(t, err)
	assert.Equal(t, 0, restored)
}
