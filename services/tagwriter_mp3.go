package services

import (
	"fmt"

	id3v2 "github.com/bogem/id3v2/v2"

	"musicren/types"
)

// mp3TagWriter writes ID3v2.4 frames. Existing frames are parsed first so
// untouched frames survive the rewrite.
type mp3TagWriter struct{}

func (w *mp3TagWriter) open(path string) (*id3v2.Tag, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return nil, fmt.Errorf("opening id3 tag: %w", err)
	}
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	return tag, nil
}

func (w *mp3TagWriter) writeMetadata(path string, meta types.TrackMetadata) error {
	tag, err := w.open(path)
	if err != nil {
		return err
	}
	defer tag.Close()

	if meta.Title != "" {
		tag.SetTitle(meta.Title)
	}
	if meta.Artist != "" {
		tag.SetArtist(meta.Artist)
	}
	if meta.Album != "" {
		tag.SetAlbum(meta.Album)
	}
	if meta.Genre != "" {
		tag.SetGenre(meta.Genre)
	}
	if meta.Date != "" {
		tag.AddTextFrame("TDRC", id3v2.EncodingUTF8, meta.Date)
	}
	if meta.AlbumArtist != "" {
		tag.AddTextFrame("TPE2", id3v2.EncodingUTF8, meta.AlbumArtist)
	}
	if meta.Composer != "" {
		tag.AddTextFrame("TCOM", id3v2.EncodingUTF8, meta.Composer)
	}
	if meta.TrackNumber > 0 {
		tag.AddTextFrame("TRCK", id3v2.EncodingUTF8, trackNumberString(meta.TrackNumber, meta.TotalTracks))
	}
	if meta.DiscNumber > 0 {
		tag.AddTextFrame("TPOS", id3v2.EncodingUTF8, trackNumberString(meta.DiscNumber, meta.TotalDiscs))
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("saving id3 tag: %w", err)
	}
	return nil
}

func (w *mp3TagWriter) writeLyrics(path string, lyrics string) error {
	tag, err := w.open(path)
	if err != nil {
		return err
	}
	defer tag.Close()

	tag.DeleteFrames("USLT")
	tag.AddUnsynchronisedLyricsFrame(id3v2.UnsynchronisedLyricsFrame{
		Encoding:          id3v2.EncodingUTF8,
		Language:          "eng",
		ContentDescriptor: "Lyrics",
		Lyrics:            lyrics,
	})

	if err := tag.Save(); err != nil {
		return fmt.Errorf("saving lyrics frame: %w", err)
	}
	return nil
}

func (w *mp3TagWriter) embedCover(path string, data []byte) error {
	tag, err := w.open(path)
	if err != nil {
		return err
	}
	defer tag.Close()

	mime := "image/jpeg"
	if isPNG(data) {
		mime = "image/png"
	}

	tag.DeleteFrames("APIC")
	tag.AddAttachedPicture(id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    mime,
		PictureType: id3v2.PTFrontCover,
		Description: "Front cover",
		Picture:     data,
	})

	if err := tag.Save(); err != nil {
		return fmt.Errorf("saving picture frame: %w", err)
	}
	return nil
}
