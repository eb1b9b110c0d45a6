package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"

	"musicren/types"
)

// flacTagWriter edits the Vorbis comment and picture metadata blocks of a
// FLAC stream. Fields not being written are carried over from the existing
// comment block so partial writes never erase unrelated tags.
type flacTagWriter struct{}

func (w *flacTagWriter) writeMetadata(path string, meta types.TrackMetadata) error {
	fields := map[string]string{
		"TITLE":       meta.Title,
		"ARTIST":      meta.Artist,
		"ALBUM":       meta.Album,
		"ALBUMARTIST": meta.AlbumArtist,
		"COMPOSER":    meta.Composer,
		"DATE":        meta.Date,
		"GENRE":       meta.Genre,
	}
	if meta.TrackNumber > 0 {
		fields["TRACKNUMBER"] = strconv.Itoa(meta.TrackNumber)
	}
	if meta.TotalTracks > 0 {
		fields["TOTALTRACKS"] = strconv.Itoa(meta.TotalTracks)
	}
	if meta.DiscNumber > 0 {
		fields["DISCNUMBER"] = strconv.Itoa(meta.DiscNumber)
	}
	if meta.TotalDiscs > 0 {
		fields["TOTALDISCS"] = strconv.Itoa(meta.TotalDiscs)
	}
	return w.setFields(path, fields)
}

func (w *flacTagWriter) writeLyrics(path string, lyrics string) error {
	return w.setFields(path, map[string]string{"LYRICS": lyrics})
}

// setFields replaces the given comment fields, keeping every other field
// from the existing Vorbis comment block. Empty values are skipped.
func (w *flacTagWriter) setFields(path string, fields map[string]string) error {
	f, err := flac.ParseFile(path)
	if err != nil {
		return fmt.Errorf("parsing flac file: %w", err)
	}

	comment := flacvorbis.New()
	var kept []*flac.MetaDataBlock
	for _, block := range f.Meta {
		if block.Type != flac.VorbisComment {
			kept = append(kept, block)
			continue
		}
		existing, err := flacvorbis.ParseFromMetaDataBlock(*block)
		if err != nil {
			continue
		}
		comment.Vendor = existing.Vendor
		for _, entry := range existing.Comments {
			key, _, found := strings.Cut(entry, "=")
			if !found {
				continue
			}
			if _, replaced := fields[strings.ToUpper(key)]; replaced {
				continue
			}
			comment.Comments = append(comment.Comments, entry)
		}
	}
	for key, value := range fields {
		if value == "" {
			continue
		}
		if err := comment.Add(key, value); err != nil {
			return fmt.Errorf("adding %s comment: %w", key, err)
		}
	}

	vorbisCommentBlock := comment.Marshal()
	f.Meta = append(kept, &vorbisCommentBlock)

	if err := f.Save(path); err != nil {
		return fmt.Errorf("saving flac file: %w", err)
	}
	return nil
}

func (w *flacTagWriter) embedCover(path string, data []byte) error {
	f, err := flac.ParseFile(path)
	if err != nil {
		return fmt.Errorf("parsing flac file: %w", err)
	}

	mime := "image/jpeg"
	if isPNG(data) {
		mime = "image/png"
	}

	picture, err := flacpicture.NewFromImageData(flacpicture.PictureTypeFrontCover, "Front Cover", data, mime)
	if err != nil {
		return fmt.Errorf("building picture block: %w", err)
	}

	var kept []*flac.MetaDataBlock
	for _, block := range f.Meta {
		if block.Type != flac.Picture {
			kept = append(kept, block)
		}
	}
	pictureBlock := picture.Marshal()
	f.Meta = append(kept, &pictureBlock)

	if err := f.Save(path); err != nil {
		return fmt.Errorf("saving flac file: %w", err)
	}
	return nil
}
