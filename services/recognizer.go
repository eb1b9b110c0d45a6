package services

import (
	"fmt"
	"log"

	"musicren/types"
)

// Recognizer resolves a file's identity from its audio content
type Recognizer interface {
	Recognize(path string) types.RecognitionResult
}

// recognizer implements Recognizer on top of a fingerprinter, the AcoustID
// lookup service and an optional cover resolver.
type recognizer struct {
	fingerprinter Fingerprinter
	client        *AcoustIDClient
	covers        CoverResolver // may be nil; cover lookup is best-effort
}

// NewRecognizer creates a recognizer. covers may be nil, in which case no
// cover URL is attached to recognized metadata.
func NewRecognizer(fingerprinter Fingerprinter, client *AcoustIDClient, covers CoverResolver) Recognizer {
	return &recognizer{
		fingerprinter: fingerprinter,
		client:        client,
		covers:        covers,
	}
}

// Recognize fingerprints the file, looks it up against AcoustID and maps
// the first match to track metadata. Every stage failure is reported as a
// reason string; Recognize never returns an error.
func (r *recognizer) Recognize(path string) types.RecognitionResult {
	if !r.fingerprinter.Available() {
		return types.NotRecognized("fingerprinting unavailable")
	}
	if r.client.apiKey == "" {
		return types.NotRecognized("acoustid api key not configured")
	}

	fingerprint, duration, err := r.fingerprinter.Fingerprint(path)
	if err != nil {
		return types.NotRecognized(fmt.Sprintf("fingerprinting failed: %v", err))
	}

	matches, err := r.client.Lookup(fingerprint, duration)
	if err != nil {
		return types.NotRecognized(fmt.Sprintf("web service error: %v", err))
	}
	if len(matches) == 0 || len(matches[0].Recordings) == 0 {
		return types.NotRecognized("no match")
	}

	match := matches[0]
	metadata := mapRecording(match.Recordings[0])

	// Cover lookup rides along with recognition but never fails it.
	if r.covers != nil && metadata.Artist != "" && metadata.Album != "" {
		if coverURL, ok := r.covers.ResolveCoverURL(metadata.Artist, metadata.Album); ok {
			metadata.CoverURL = coverURL
		} else {
			log.Printf("No cover found for %s - %s", metadata.Artist, metadata.Album)
		}
	}

	return types.RecognitionResult{
		Recognized: true,
		Metadata:   metadata,
		Score:      match.Score,
		AcoustID:   match.ID,
	}
}

// mapRecording converts an AcoustID recording into track metadata. It is a
// pure function over the decoded response graph.
func mapRecording(rec Recording) types.TrackMetadata {
	metadata := types.TrackMetadata{
		Title: rec.Title,
	}
	if metadata.Title == "" {
		metadata.Title = types.PlaceholderTitle
	}

	if len(rec.Artists) > 0 {
		for _, artist := range rec.Artists {
			metadata.Artists = append(metadata.Artists, artist.Name)
		}
		metadata.Artist = metadata.Artists[0]
	} else {
		metadata.Artist = types.PlaceholderArtist
		metadata.Artists = []string{types.PlaceholderArtist}
	}

	if len(rec.ReleaseGroups) > 0 {
		group := rec.ReleaseGroups[0]
		metadata.Album = group.Title
		if metadata.Album == "" {
			metadata.Album = types.PlaceholderAlbum
		}
		if len(group.Artists) > 0 {
			metadata.AlbumArtist = group.Artists[0].Name
		}
		metadata.AlbumType = group.Type
		metadata.Date = earliestReleaseDate(rec.Releases, group.ID)
	} else {
		metadata.Album = types.PlaceholderAlbum
	}

	applyTrackPosition(&metadata, rec)

	for _, genre := range rec.Genres {
		metadata.Genres = append(metadata.Genres, genre.Name)
	}
	if len(metadata.Genres) > 0 {
		metadata.Genre = metadata.Genres[0]
	}
	for _, t := range rec.Tags {
		metadata.Tags = append(metadata.Tags, t.Name)
	}

	return metadata
}

// earliestReleaseDate returns the lexicographic minimum of the dates of the
// releases belonging to the given release-group. Dates render as
// YYYY[-MM[-DD]], so the minimum string is the earliest date.
func earliestReleaseDate(releases []Release, groupID string) string {
	earliest := ""
	for _, release := range releases {
		if release.ReleaseGroupID != groupID {
			continue
		}
		date := release.Date.String()
		if date == "" {
			continue
		}
		if earliest == "" || date < earliest {
			earliest = date
		}
	}
	return earliest
}

// applyTrackPosition scans release/medium/track structures for the medium
// holding a track whose ID matches the recording's ID. The first match wins
// and the scan stops; when several releases contain the recording this
// picks the first one encountered in response order.
func applyTrackPosition(metadata *types.TrackMetadata, rec Recording) {
	for _, release := range rec.Releases {
		for _, medium := range release.Mediums {
			for _, track := range medium.Tracks {
				if track.ID != rec.ID {
					continue
				}
				metadata.TrackNumber = track.Position
				metadata.TotalTracks = medium.TrackCount
				metadata.DiscNumber = medium.Position
				metadata.TotalDiscs = release.MediumCount
				return
			}
		}
	}
}
