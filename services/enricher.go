package services

import (
	"fmt"
	"log"

	"musicren/types"
)

// FileEnricher runs the per-file enrichment pipeline: recognize, write
// tags, embed cover art, embed lyrics. Stage failures are recorded in the
// outcome and never abort the remaining stages.
type FileEnricher interface {
	Enrich(path string, useRecognition, doLyrics bool) types.EnrichmentOutcome
	InstallCover(path string) types.CoverOutcome
}

type fileEnricher struct {
	files      FileService
	recognizer Recognizer
	covers     CoverResolver
	lyrics     LyricsResolver
	tags       TagWriter
}

// NewFileEnricher wires the enrichment stages together.
func NewFileEnricher(files FileService, recognizer Recognizer, covers CoverResolver, lyrics LyricsResolver, tags TagWriter) FileEnricher {
	return &fileEnricher{
		files:      files,
		recognizer: recognizer,
		covers:     covers,
		lyrics:     lyrics,
		tags:       tags,
	}
}

// Enrich processes a single file. Recognition only runs when the existing
// tags carry placeholder values; files that already know their artist and
// title go straight to the lyrics stage.
func (e *fileEnricher) Enrich(path string, useRecognition, doLyrics bool) types.EnrichmentOutcome {
	var outcome types.EnrichmentOutcome

	artist, title := types.PlaceholderArtist, types.PlaceholderTitle
	if existing, err := e.files.ReadTags(path); err == nil {
		if existing.Artist != "" {
			artist = existing.Artist
		}
		if existing.Title != "" {
			title = existing.Title
		}
	}

	needsRecognition := artist == types.PlaceholderArtist || title == types.PlaceholderTitle
	if useRecognition && needsRecognition {
		result := e.recognizer.Recognize(path)
		if result.Recognized {
			outcome.Recognition = true
			outcome.Artist = result.Metadata.Artist
			outcome.Title = result.Metadata.Title
			outcome.Album = result.Metadata.Album
			outcome.Score = result.Score

			if err := e.tags.WriteMetadata(path, result.Metadata); err != nil {
				log.Printf("Warning: failed to write metadata for %s: %v", path, err)
			} else {
				outcome.MetadataWritten = true
			}

			e.embedRecognizedCover(path, result.Metadata)

			if result.Metadata.Artist != "" {
				artist = result.Metadata.Artist
			}
			if result.Metadata.Title != "" {
				title = result.Metadata.Title
			}
		} else {
			outcome.RecognitionError = result.Reason
			outcome.Artist = artist
			outcome.Title = title
		}
	} else {
		outcome.Artist = artist
		outcome.Title = title
	}

	if doLyrics {
		lyrics, reason := e.lyrics.FindSyncedLyrics(artist, title)
		if lyrics == "" {
			outcome.LyricsError = reason
		} else {
			outcome.LyricsFound = true
			if err := e.tags.WriteLyrics(path, lyrics); err != nil {
				outcome.EmbedError = err.Error()
			} else {
				outcome.LyricsEmbedded = true
			}
		}
	}

	return outcome
}

// embedRecognizedCover fetches and embeds cover art after a successful
// recognition. Every failure here is logged and swallowed; cover art never
// blocks the rest of the pipeline.
func (e *fileEnricher) embedRecognizedCover(path string, meta types.TrackMetadata) {
	coverURL := meta.CoverURL
	if coverURL == "" {
		resolved, ok := e.covers.ResolveCoverURL(meta.Artist, meta.Album)
		if !ok {
			return
		}
		coverURL = resolved
	}

	data := e.covers.DownloadCover(coverURL)
	if data == nil {
		log.Printf("Warning: could not download cover for %s", path)
		return
	}
	if err := e.tags.EmbedCover(path, data); err != nil {
		log.Printf("Warning: failed to embed cover in %s: %v", path, err)
	}
}

// InstallCover runs the cover-only pass over one file. Files that already
// carry artwork are skipped; files without usable artist and album tags
// cannot be looked up and report an error.
func (e *fileEnricher) InstallCover(path string) types.CoverOutcome {
	existing, err := e.files.ReadTags(path)
	if err != nil {
		return types.CoverOutcome{Error: fmt.Sprintf("reading tags: %v", err)}
	}
	if existing.HasCover {
		return types.CoverOutcome{Skipped: true}
	}
	if existing.Artist == "" || existing.Artist == types.PlaceholderArtist ||
		existing.Album == "" || existing.Album == types.PlaceholderAlbum {
		return types.CoverOutcome{Error: "missing artist or album tags"}
	}

	coverURL, ok := e.covers.ResolveCoverURL(existing.Artist, existing.Album)
	if !ok {
		return types.CoverOutcome{Error: "no cover found"}
	}
	data := e.covers.DownloadCover(coverURL)
	if data == nil {
		return types.CoverOutcome{Error: "cover download failed"}
	}
	if err := e.tags.EmbedCover(path, data); err != nil {
		return types.CoverOutcome{Error: fmt.Sprintf("embedding cover: %v", err)}
	}
	return types.CoverOutcome{Embedded: true}
}
