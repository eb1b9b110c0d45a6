package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"musicren/types"
)

// mapFileService serves canned tags keyed by path
type mapFileService struct {
	tags map[string]*types.AudioMetadata
}

func (s *mapFileService) AudioFilePaths(dir string) ([]string, error) {
	return nil, nil
}

func (s *mapFileService) ListAudioFiles(dir string) ([]types.AudioFile, error) {
	return nil, nil
}

func (s *mapFileService) ReadTags(path string) (*types.AudioMetadata, error) {
	meta, ok := s.tags[path]
	if !ok {
		return nil, fmt.Errorf("no tags")
	}
	return meta, nil
}

// fakeRecognizer records whether it was called and returns a canned result
type fakeRecognizer struct {
	called bool
	result types.RecognitionResult
}

func (r *fakeRecognizer) Recognize(path string) types.RecognitionResult {
	r.called = true
	return r.result
}

// fakeCoverResolver returns a fixed URL and payload
type fakeCoverResolver struct {
	url  string
	data []byte
}

func (c *fakeCoverResolver) ResolveCoverURL(artist, album string) (string, bool) {
	return c.url, c.url != ""
}

func (c *fakeCoverResolver) DownloadCover(coverURL string) []byte {
	return c.data
}

// fakeLyricsResolver records the query it received
type fakeLyricsResolver struct {
	artist, title string
	lyrics        string
	reason        string
	called        bool
}

func (l *fakeLyricsResolver) FindSyncedLyrics(artist, title string) (string, string) {
	l.called = true
	l.artist, l.title = artist, title
	return l.lyrics, l.reason
}

// recordingTagWriter records writes and can fail selectively
type recordingTagWriter struct {
	wroteMeta   bool
	wroteLyrics bool
	embedded    []byte
	metaErr     error
	lyricsErr   error
	coverErr    error
}

func (w *recordingTagWriter) WriteMetadata(path string, meta types.TrackMetadata) error {
	if w.metaErr != nil {
		return w.metaErr
	}
	w.wroteMeta = true
	return nil
}

func (w *recordingTagWriter) WriteLyrics(path string, lyrics string) error {
	if w.lyricsErr != nil {
		return w.lyricsErr
	}
	w.wroteLyrics = true
	return nil
}

func (w *recordingTagWriter) EmbedCover(path string, data []byte) error {
	if w.coverErr != nil {
		return w.coverErr
	}
	w.embedded = data
	return nil
}

// TestEnrichSkipsRecognitionForTaggedFiles verifies files that already know
// their artist and title are never fingerprinted
func TestEnrichSkipsRecognitionForTaggedFiles(t *testing.T) {
	recognizer := &fakeRecognizer{}
	lyrics := &fakeLyricsResolver{lyrics: "[00:01.00] line"}
	writer := &recordingTagWriter{}
	files := &mapFileService{tags: map[string]*types.AudioMetadata{
		"song.mp3": {Artist: "Queen", Title: "Bohemian Rhapsody"},
	}}

	enricher := NewFileEnricher(files, recognizer, &fakeCoverResolver{}, lyrics, writer)
	outcome := enricher.Enrich("song.mp3", true, true)

	assert.False(t, recognizer.called)
	assert.False(t, outcome.Recognition)
	assert.Equal(t, "Queen", outcome.Artist)
	assert.Equal(t, "Bohemian Rhapsody", outcome.Title)

	// Lyrics lookup used the existing tags
	assert.Equal(t, "Queen", lyrics.artist)
	assert.Equal(t, "Bohemian Rhapsody", lyrics.title)
	assert.True(t, outcome.LyricsFound)
	assert.True(t, outcome.LyricsEmbedded)
}

// TestEnrichRecognizesPlaceholderFiles verifies the full recognition path
func TestEnrichRecognizesPlaceholderFiles(t *testing.T) {
	recognizer := &fakeRecognizer{result: types.RecognitionResult{
		Recognized: true,
		Score:      0.95,
		Metadata: types.TrackMetadata{
			Artist:   "Queen",
			Title:    "Bohemian Rhapsody",
			Album:    "A Night at the Opera",
			CoverURL: "http://example.com/cover.jpg",
		},
	}}
	lyrics := &fakeLyricsResolver{lyrics: "[00:01.00] line"}
	writer := &recordingTagWriter{}
	covers := &fakeCoverResolver{url: "http://example.com/cover.jpg", data: []byte("image-bytes")}
	files := &mapFileService{tags: map[string]*types.AudioMetadata{
		"song.mp3": {Artist: types.PlaceholderArtist, Title: types.PlaceholderTitle},
	}}

	enricher := NewFileEnricher(files, recognizer, covers, lyrics, writer)
	outcome := enricher.Enrich("song.mp3", true, true)

	require.True(t, recognizer.called)
	assert.True(t, outcome.Recognition)
	assert.Equal(t, "Queen", outcome.Artist)
	assert.InDelta(t, 0.95, outcome.Score, 1e-9)
	assert.True(t, outcome.MetadataWritten)
	assert.Equal(t, []byte("image-bytes"), writer.embedded)

	// Lyrics lookup switched to the recognized identity
	assert.Equal(t, "Queen", lyrics.artist)
	assert.Equal(t, "Bohemian Rhapsody", lyrics.title)
}

// TestEnrichRecognitionDisabled verifies the recognition flag is honored
func TestEnrichRecognitionDisabled(t *testing.T) {
	recognizer := &fakeRecognizer{}
	files := &mapFileService{tags: map[string]*types.AudioMetadata{
		"song.mp3": {Artist: types.PlaceholderArtist, Title: types.PlaceholderTitle},
	}}

	enricher := NewFileEnricher(files, recognizer, &fakeCoverResolver{}, &fakeLyricsResolver{}, &recordingTagWriter{})
	outcome := enricher.Enrich("song.mp3", false, false)

	assert.False(t, recognizer.called)
	assert.Equal(t, types.PlaceholderArtist, outcome.Artist)
	assert.Equal(t, types.PlaceholderTitle, outcome.Title)
}

// TestEnrichRecognitionFailure verifies a failed recognition records the
// reason and still runs the lyrics stage on the placeholders
func TestEnrichRecognitionFailure(t *testing.T) {
	recognizer := &fakeRecognizer{result: types.NotRecognized("no match")}
	lyrics := &fakeLyricsResolver{reason: "no synchronized lyrics found"}
	files := &mapFileService{tags: map[string]*types.AudioMetadata{
		"song.mp3": {Artist: types.PlaceholderArtist, Title: types.PlaceholderTitle},
	}}

	enricher := NewFileEnricher(files, recognizer, &fakeCoverResolver{}, lyrics, &recordingTagWriter{})
	outcome := enricher.Enrich("song.mp3", true, true)

	assert.False(t, outcome.Recognition)
	assert.Equal(t, "no match", outcome.RecognitionError)
	assert.True(t, lyrics.called)
	assert.Equal(t, "no synchronized lyrics found", outcome.LyricsError)
}

// TestEnrichLyricsEmbedFailure verifies found-but-not-embedded is reported
// in its own field
func TestEnrichLyricsEmbedFailure(t *testing.T) {
	lyrics := &fakeLyricsResolver{lyrics: "[00:01.00] line"}
	writer := &recordingTagWriter{lyricsErr: fmt.Errorf("format not supported")}
	files := &mapFileService{tags: map[string]*types.AudioMetadata{
		"song.ogg": {Artist: "Queen", Title: "Bohemian Rhapsody"},
	}}

	enricher := NewFileEnricher(files, &fakeRecognizer{}, &fakeCoverResolver{}, lyrics, writer)
	outcome := enricher.Enrich("song.ogg", false, true)

	assert.True(t, outcome.LyricsFound)
	assert.False(t, outcome.LyricsEmbedded)
	assert.Contains(t, outcome.EmbedError, "format not supported")
}

// TestInstallCover tests the cover-only pass decisions
func TestInstallCover(t *testing.T) {
	files := &mapFileService{tags: map[string]*types.AudioMetadata{
		"covered.mp3":  {Artist: "Queen", Album: "A Night at the Opera", HasCover: true},
		"bare.mp3":     {Artist: "Queen", Album: "A Night at the Opera"},
		"untagged.mp3": {Artist: types.PlaceholderArtist, Album: types.PlaceholderAlbum},
	}}
	covers := &fakeCoverResolver{url: "http://example.com/cover.jpg", data: []byte("image-bytes")}
	writer := &recordingTagWriter{}

	enricher := NewFileEnricher(files, &fakeRecognizer{}, covers, &fakeLyricsResolver{}, writer)

	assert.True(t, enricher.InstallCover("covered.mp3").Skipped)

	outcome := enricher.InstallCover("bare.mp3")
	assert.True(t, outcome.Embedded)
	assert.Equal(t, []byte("image-bytes"), writer.embedded)

	outcome = enricher.InstallCover("untagged.mp3")
	assert.False(t, outcome.Embedded)
	assert.Equal(t, "missing artist or album tags", outcome.Error)

	outcome = enricher.InstallCover("missing.mp3")
	assert.Contains(t, outcome.Error, "reading tags")
}
