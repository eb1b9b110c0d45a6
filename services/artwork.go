package services

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	musicbrainzBaseURL = "https://musicbrainz.org/ws/2"
	coverArtArchiveURL = "https://coverartarchive.org"
	itunesSearchURL    = "https://itunes.apple.com/search"
	deezerSearchURL    = "https://api.deezer.com/search/album"

	musicbrainzUserAgent = "musicren/1.0.0 (https://github.com/musicren/musicren)"

	// Payloads smaller than this are downloaded anyway but flagged in logs,
	// since tiny responses are usually error pages rather than images.
	suspiciousCoverSize = 100
)

// CoverResolver maps (artist, album) to cover-art image data through a
// fixed chain of lookup services
type CoverResolver interface {
	ResolveCoverURL(artist, album string) (string, bool)
	DownloadCover(coverURL string) []byte
}

// coverResolver tries MusicBrainz/Cover Art Archive first, then the iTunes
// Search API, then Deezer. The order is fixed; the chain stops at the first
// stage that produces a usable URL.
type coverResolver struct {
	musicbrainz *MusicBrainzClient // nil means the stage is unavailable
	caaURL      string
	itunesURL   string
	deezerURL   string
	httpClient  *http.Client
}

// NewCoverResolver creates a resolver with all three stages enabled.
func NewCoverResolver() CoverResolver {
	httpClient := &http.Client{Timeout: 15 * time.Second}
	return &coverResolver{
		musicbrainz: NewMusicBrainzClient(httpClient),
		caaURL:      coverArtArchiveURL,
		itunesURL:   itunesSearchURL,
		deezerURL:   deezerSearchURL,
		httpClient:  httpClient,
	}
}

// ResolveCoverURL walks the service chain and returns the first usable
// cover URL. A stage that errors or finds nothing falls through to the
// next; only exhausting the chain reports failure.
func (r *coverResolver) ResolveCoverURL(artist, album string) (string, bool) {
	if r.musicbrainz != nil {
		if coverURL, ok := r.resolveViaMusicBrainz(artist, album); ok {
			return coverURL, true
		}
	}

	if coverURL, ok := r.resolveViaITunes(artist, album); ok {
		return coverURL, true
	}

	return r.resolveViaDeezer(artist, album)
}

// resolveViaMusicBrainz searches for the release and verifies the derived
// Cover Art Archive front-cover URL actually answers before accepting it.
func (r *coverResolver) resolveViaMusicBrainz(artist, album string) (string, bool) {
	releaseID, err := r.musicbrainz.SearchReleaseID(album, artist)
	if err != nil {
		log.Printf("MusicBrainz release search failed: %v", err)
		return "", false
	}
	if releaseID == "" {
		return "", false
	}

	coverURL := fmt.Sprintf("%s/release/%s/front", r.caaURL, releaseID)

	resp, err := r.httpClient.Head(coverURL)
	if err != nil {
		log.Printf("Cover Art Archive check failed: %v", err)
		return "", false
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Printf("Cover not present in Cover Art Archive (status %d), trying alternative services", resp.StatusCode)
		return "", false
	}

	return coverURL, true
}

// itunesSearchResponse mirrors the subset of the iTunes Search API response
// the resolver consumes.
type itunesSearchResponse struct {
	ResultCount int `json:"resultCount"`
	Results     []struct {
		ArtworkURL100 string `json:"artworkUrl100"`
	} `json:"results"`
}

// resolveViaITunes searches for the album and upgrades the thumbnail URL's
// embedded size token to a larger rendition.
func (r *coverResolver) resolveViaITunes(artist, album string) (string, bool) {
	query := url.Values{}
	query.Set("term", artist+" "+album)
	query.Set("entity", "album")
	query.Set("limit", "1")

	resp, err := r.httpClient.Get(r.itunesURL + "?" + query.Encode())
	if err != nil {
		log.Printf("iTunes search failed: %v", err)
		return "", false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", false
	}

	var decoded itunesSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", false
	}
	if decoded.ResultCount == 0 || len(decoded.Results) == 0 {
		return "", false
	}

	coverURL := strings.Replace(decoded.Results[0].ArtworkURL100, "100x100", "600x600", 1)
	if coverURL == "" {
		return "", false
	}
	return coverURL, true
}

// deezerSearchResponse mirrors the subset of the Deezer album search
// response the resolver consumes.
type deezerSearchResponse struct {
	Total int `json:"total"`
	Data  []struct {
		Cover    string `json:"cover"`
		CoverBig string `json:"cover_big"`
		CoverXL  string `json:"cover_xl"`
	} `json:"data"`
}

// resolveViaDeezer searches for the album and prefers the largest cover
// rendition available.
func (r *coverResolver) resolveViaDeezer(artist, album string) (string, bool) {
	query := url.Values{}
	query.Set("q", artist+" "+album)
	query.Set("limit", "1")

	resp, err := r.httpClient.Get(r.deezerURL + "?" + query.Encode())
	if err != nil {
		log.Printf("Deezer search failed: %v", err)
		return "", false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", false
	}

	var decoded deezerSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", false
	}
	if decoded.Total == 0 || len(decoded.Data) == 0 {
		return "", false
	}

	album0 := decoded.Data[0]
	for _, coverURL := range []string{album0.CoverXL, album0.CoverBig, album0.Cover} {
		if coverURL != "" {
			return coverURL, true
		}
	}
	return "", false
}

// DownloadCover fetches the image bytes behind a cover URL. Non-2xx
// statuses and transport errors return nil; suspiciously small payloads are
// returned anyway but flagged in logs.
func (r *coverResolver) DownloadCover(coverURL string) []byte {
	resp, err := r.httpClient.Get(coverURL)
	if err != nil {
		log.Printf("Error downloading cover: %v", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("Error downloading cover: status %d", resp.StatusCode)
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("Error reading cover body: %v", err)
		return nil
	}
	if len(data) < suspiciousCoverSize {
		log.Printf("Warning: downloaded cover is only %d bytes, it might not be a valid image", len(data))
	}
	return data
}

// MusicBrainzClient performs release searches against the MusicBrainz web
// service. MusicBrainz requires an identifying User-Agent on every request.
type MusicBrainzClient struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewMusicBrainzClient creates a MusicBrainz client sharing the given HTTP
// client.
func NewMusicBrainzClient(httpClient *http.Client) *MusicBrainzClient {
	return &MusicBrainzClient{
		baseURL:    musicbrainzBaseURL,
		userAgent:  musicbrainzUserAgent,
		httpClient: httpClient,
	}
}

// mbReleaseSearchResponse mirrors the subset of the release search response
// the resolver consumes.
type mbReleaseSearchResponse struct {
	Releases []struct {
		ID string `json:"id"`
	} `json:"releases"`
}

// SearchReleaseID searches for a release by album title and artist and
// returns the first release's ID, or "" when nothing matched.
func (c *MusicBrainzClient) SearchReleaseID(album, artist string) (string, error) {
	searchQuery := fmt.Sprintf(`release:%q AND artist:%q`, album, artist)

	query := url.Values{}
	query.Set("query", searchQuery)
	query.Set("limit", "1")
	query.Set("fmt", "json")

	req, err := http.NewRequest(http.MethodGet, c.baseURL+"/release?"+query.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("release search returned status %d", resp.StatusCode)
	}

	var decoded mbReleaseSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", err
	}
	if len(decoded.Releases) == 0 {
		return "", nil
	}
	return decoded.Releases[0].ID, nil
}
