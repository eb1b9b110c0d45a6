package services

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"musicren/types"
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// TagWriter persists recognized metadata, synchronized lyrics, and cover
// art into an audio file's native tag format.
type TagWriter interface {
	WriteMetadata(path string, meta types.TrackMetadata) error
	WriteLyrics(path string, lyrics string) error
	EmbedCover(path string, data []byte) error
}

// tagWriter dispatches on the file extension to a format-specific codec.
// Formats without a codec report the write as unsupported.
type tagWriter struct {
	mp3  *mp3TagWriter
	flac *flacTagWriter
	m4a  *m4aTagWriter
}

// NewTagWriter creates a writer supporting MP3, FLAC and M4A files.
func NewTagWriter() TagWriter {
	return &tagWriter{
		mp3:  &mp3TagWriter{},
		flac: &flacTagWriter{},
		m4a:  &m4aTagWriter{},
	}
}

func (w *tagWriter) WriteMetadata(path string, meta types.TrackMetadata) error {
	switch types.FormatOf(path) {
	case types.FormatMP3:
		return w.mp3.writeMetadata(path, meta)
	case types.FormatFLAC:
		return w.flac.writeMetadata(path, meta)
	case types.FormatM4A:
		return w.m4a.writeMetadata(path, meta)
	default:
		return fmt.Errorf("metadata writing is not supported for %s files", formatLabel(path))
	}
}

func (w *tagWriter) WriteLyrics(path string, lyrics string) error {
	switch types.FormatOf(path) {
	case types.FormatMP3:
		return w.mp3.writeLyrics(path, lyrics)
	case types.FormatFLAC:
		return w.flac.writeLyrics(path, lyrics)
	case types.FormatM4A:
		return w.m4a.writeLyrics(path, lyrics)
	default:
		return fmt.Errorf("lyrics embedding is not supported for %s files", formatLabel(path))
	}
}

func (w *tagWriter) EmbedCover(path string, data []byte) error {
	switch types.FormatOf(path) {
	case types.FormatMP3:
		return w.mp3.embedCover(path, data)
	case types.FormatFLAC:
		return w.flac.embedCover(path, data)
	case types.FormatM4A:
		return w.m4a.embedCover(path, data)
	default:
		return fmt.Errorf("cover embedding is not supported for %s files", formatLabel(path))
	}
}

// genericTagExclusions lists bookkeeping fields that never belong in a
// file's tags.
var genericTagExclusions = map[string]bool{
	"status":    true,
	"score":     true,
	"cover_url": true,
	"tags":      true,
	"genres":    true,
	"artists":   true,
	"acoustid":  true,
}

// buildGenericTags flattens track metadata into a plain string map,
// dropping bookkeeping fields and reducing list-valued fields to their
// first element.
func buildGenericTags(meta types.TrackMetadata) map[string]string {
	candidates := map[string]string{
		"title":       meta.Title,
		"artist":      meta.Artist,
		"album":       meta.Album,
		"albumartist": meta.AlbumArtist,
		"albumtype":   meta.AlbumType,
		"composer":    meta.Composer,
		"date":        meta.Date,
		"genre":       meta.Genre,
		"cover_url":   meta.CoverURL,
	}
	if meta.TrackNumber > 0 {
		candidates["tracknumber"] = strconv.Itoa(meta.TrackNumber)
	}
	if meta.TotalTracks > 0 {
		candidates["totaltracks"] = strconv.Itoa(meta.TotalTracks)
	}
	if meta.DiscNumber > 0 {
		candidates["discnumber"] = strconv.Itoa(meta.DiscNumber)
	}
	if meta.TotalDiscs > 0 {
		candidates["totaldiscs"] = strconv.Itoa(meta.TotalDiscs)
	}
	if len(meta.Artists) > 0 && candidates["artist"] == "" {
		candidates["artist"] = meta.Artists[0]
	}
	if len(meta.Genres) > 0 && candidates["genre"] == "" {
		candidates["genre"] = meta.Genres[0]
	}

	fields := make(map[string]string, len(candidates))
	for key, value := range candidates {
		if genericTagExclusions[key] || value == "" {
			continue
		}
		fields[key] = value
	}
	return fields
}

// trackNumberString renders a track position as "N" or "N/Total".
func trackNumberString(number, total int) string {
	if total > 0 {
		return fmt.Sprintf("%d/%d", number, total)
	}
	return strconv.Itoa(number)
}

// isPNG reports whether the image data starts with the PNG signature.
// Anything else is treated as JPEG, which matches what the cover services
// actually serve.
func isPNG(data []byte) bool {
	return len(data) >= len(pngSignature) && bytes.Equal(data[:len(pngSignature)], pngSignature)
}

func formatLabel(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return "untyped"
	}
	return ext
}
