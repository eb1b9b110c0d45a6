package types

import (
	"path/filepath"
	"strings"
)

// Placeholder values used by tag readers when a field is missing. They gate
// both recognition (only placeholder files are recognized) and renaming
// (placeholder files are never renamed).
const (
	PlaceholderArtist = "Unknown Artist"
	PlaceholderTitle  = "Unknown Title"
	PlaceholderAlbum  = "Unknown Album"
)

// FileFormat identifies the container family of an audio file
type FileFormat string

const (
	FormatMP3   FileFormat = "mp3"
	FormatFLAC  FileFormat = "flac"
	FormatM4A   FileFormat = "m4a"
	FormatOther FileFormat = "other"
)

// AudioExtensions is the fixed set of file extensions treated as audio
// when enumerating a directory.
var AudioExtensions = []string{".mp3", ".flac", ".m4a", ".ogg", ".wav", ".aac", ".wma"}

// FormatOf derives the container family from a file's extension. It is
// computed at read time and never cached across renames.
func FormatOf(path string) FileFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return FormatMP3
	case ".flac":
		return FormatFLAC
	case ".m4a":
		return FormatM4A
	default:
		return FormatOther
	}
}

// IsAudioFile reports whether the file name carries one of the configured
// audio extensions.
func IsAudioFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range AudioExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// TrackMetadata holds the logical tag fields resolved for a track. Empty
// string fields and zero numeric fields are absent and must not be written
// downstream. Multi-valued fields keep a primary value in the scalar field
// plus the full list; only the primary value is persisted to tags.
type TrackMetadata struct {
	Title       string `json:"title,omitempty"`
	Artist      string `json:"artist,omitempty"`
	Album       string `json:"album,omitempty"`
	AlbumArtist string `json:"albumartist,omitempty"`
	AlbumType   string `json:"albumtype,omitempty"`
	Composer    string `json:"composer,omitempty"`
	Date        string `json:"date,omitempty"`
	Genre       string `json:"genre,omitempty"`
	TrackNumber int    `json:"tracknumber,omitempty"`
	TotalTracks int    `json:"totaltracks,omitempty"`
	DiscNumber  int    `json:"discnumber,omitempty"`
	TotalDiscs  int    `json:"totaldiscs,omitempty"`
	CoverURL    string `json:"coverUrl,omitempty"`

	// Secondary lists kept for future use; not persisted to tags.
	Artists []string `json:"artists,omitempty"`
	Genres  []string `json:"genres,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

// RecognitionResult is the outcome of an acoustic-fingerprint lookup.
// Either Recognized is true and Metadata/Score/AcoustID are populated, or
// Recognized is false and Reason explains why.
type RecognitionResult struct {
	Recognized bool          `json:"recognized"`
	Reason     string        `json:"reason,omitempty"`
	Metadata   TrackMetadata `json:"metadata,omitempty"`
	Score      float64       `json:"score,omitempty"`
	AcoustID   string        `json:"acoustid,omitempty"`
}

// NotRecognized builds a failed RecognitionResult with the given reason.
func NotRecognized(reason string) RecognitionResult {
	return RecognitionResult{Recognized: false, Reason: reason}
}
