package services

import (
	"fmt"

	mp4tag "github.com/zhaarey/go-mp4tag"

	"musicren/types"
)

// m4aTagWriter writes MP4 atoms through go-mp4tag. Writes replace only the
// atoms carried in the MP4Tags struct; everything else in the container is
// left alone.
type m4aTagWriter struct{}

func (w *m4aTagWriter) write(path string, tags *mp4tag.MP4Tags) error {
	mp4, err := mp4tag.Open(path)
	if err != nil {
		return fmt.Errorf("opening mp4 container: %w", err)
	}
	defer mp4.Close()

	if err := mp4.Write(tags, []string{}); err != nil {
		return fmt.Errorf("writing mp4 tags: %w", err)
	}
	return nil
}

func (w *m4aTagWriter) writeMetadata(path string, meta types.TrackMetadata) error {
	tags := &mp4tag.MP4Tags{
		Title:       meta.Title,
		Artist:      meta.Artist,
		Album:       meta.Album,
		AlbumArtist: meta.AlbumArtist,
		Composer:    meta.Composer,
		CustomGenre: meta.Genre,
		Date:        meta.Date,
	}
	if meta.TrackNumber > 0 {
		tags.TrackNumber = int16(meta.TrackNumber)
		tags.TrackTotal = int16(meta.TotalTracks)
	}
	if meta.DiscNumber > 0 {
		tags.DiscNumber = int16(meta.DiscNumber)
		tags.DiscTotal = int16(meta.TotalDiscs)
	}
	return w.write(path, tags)
}

func (w *m4aTagWriter) writeLyrics(path string, lyrics string) error {
	return w.write(path, &mp4tag.MP4Tags{Lyrics: lyrics})
}

// embedCover writes the cover atom with the sniffed image format first and
// retries once with the other format, since some taggers reject a cover
// whose declared format disagrees with the stream.
func (w *m4aTagWriter) embedCover(path string, data []byte) error {
	first, second := mp4tag.ImageTypeJPEG, mp4tag.ImageTypePNG
	if isPNG(data) {
		first, second = mp4tag.ImageTypePNG, mp4tag.ImageTypeJPEG
	}

	err := w.write(path, &mp4tag.MP4Tags{
		Pictures: []*mp4tag.MP4Picture{{Format: first, Data: data}},
	})
	if err == nil {
		return nil
	}

	retryErr := w.write(path, &mp4tag.MP4Tags{
		Pictures: []*mp4tag.MP4Picture{{Format: second, Data: data}},
	})
	if retryErr != nil {
		return fmt.Errorf("embedding mp4 cover: %w", err)
	}
	return nil
}
