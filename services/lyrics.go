package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const lrclibSearchURL = "https://lrclib.net/api/search"

// LyricsResolver finds time-synchronized lyrics for a track.
type LyricsResolver interface {
	FindSyncedLyrics(artist, title string) (string, string)
}

// lrclibResolver queries the lrclib.net search API and keeps only results
// carrying synchronized (LRC) lyrics; plain-text lyrics are ignored.
type lrclibResolver struct {
	baseURL    string
	httpClient *http.Client
}

// NewLyricsResolver creates a resolver backed by lrclib.net.
func NewLyricsResolver() LyricsResolver {
	return &lrclibResolver{
		baseURL:    lrclibSearchURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type lrclibResult struct {
	TrackName    string `json:"trackName"`
	ArtistName   string `json:"artistName"`
	SyncedLyrics string `json:"syncedLyrics"`
	PlainLyrics  string `json:"plainLyrics"`
}

// FindSyncedLyrics returns the synchronized lyrics text for the track, or
// "" plus a reason describing why none were found.
func (r *lrclibResolver) FindSyncedLyrics(artist, title string) (string, string) {
	query := url.Values{}
	query.Set("q", artist+" "+title)

	resp, err := r.httpClient.Get(r.baseURL + "?" + query.Encode())
	if err != nil {
		return "", fmt.Sprintf("error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Sprintf("error: lyrics search returned status %d", resp.StatusCode)
	}

	var results []lrclibResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return "", fmt.Sprintf("error: %v", err)
	}

	for _, result := range results {
		if result.SyncedLyrics != "" {
			return result.SyncedLyrics, ""
		}
	}
	return "", "no synchronized lyrics found"
}
