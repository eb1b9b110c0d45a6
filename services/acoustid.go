package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const acoustidLookupURL = "https://api.acoustid.org/v2/lookup"

// lookupMeta is the extended metadata scope requested from AcoustID.
const lookupMeta = "recordings releasegroups releases tracks artists tags genres"

// AcoustIDClient submits fingerprints to the AcoustID web service and
// decodes its nested result graph into typed structures.
type AcoustIDClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewAcoustIDClient creates a client bound to the given API key. An empty
// key is allowed; lookups will fail and the recognizer reports the reason.
func NewAcoustIDClient(apiKey string) *AcoustIDClient {
	return &AcoustIDClient{
		apiKey:  apiKey,
		baseURL: acoustidLookupURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// AcoustID lookup response schema. Only the parts the recognizer consumes
// are modeled; unknown fields are ignored by the decoder.

type AcoustIDResponse struct {
	Status  string          `json:"status"`
	Results []AcoustIDMatch `json:"results"`
	Error   *AcoustIDError  `json:"error,omitempty"`
}

type AcoustIDError struct {
	Message string `json:"message"`
}

type AcoustIDMatch struct {
	ID         string      `json:"id"`
	Score      float64     `json:"score"`
	Recordings []Recording `json:"recordings,omitempty"`
}

type Recording struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Artists       []Artist       `json:"artists,omitempty"`
	ReleaseGroups []ReleaseGroup `json:"releasegroups,omitempty"`
	Releases      []Release      `json:"releases,omitempty"`
	Genres        []NamedEntry   `json:"genres,omitempty"`
	Tags          []NamedEntry   `json:"tags,omitempty"`
}

type Artist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ReleaseGroup struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Type    string   `json:"type,omitempty"`
	Artists []Artist `json:"artists,omitempty"`
}

type Release struct {
	ID             string   `json:"id"`
	ReleaseGroupID string   `json:"releasegroup-id,omitempty"`
	Date           *Date    `json:"date,omitempty"`
	MediumCount    int      `json:"medium-count,omitempty"`
	Mediums        []Medium `json:"mediums,omitempty"`
}

// Date is AcoustID's structured release date. String() renders the ISO-ish
// YYYY[-MM[-DD]] form whose lexicographic minimum is the earliest date.
type Date struct {
	Year  int `json:"year,omitempty"`
	Month int `json:"month,omitempty"`
	Day   int `json:"day,omitempty"`
}

func (d *Date) String() string {
	if d == nil || d.Year == 0 {
		return ""
	}
	s := fmt.Sprintf("%04d", d.Year)
	if d.Month > 0 {
		s += fmt.Sprintf("-%02d", d.Month)
		if d.Day > 0 {
			s += fmt.Sprintf("-%02d", d.Day)
		}
	}
	return s
}

type Medium struct {
	Position   int     `json:"position,omitempty"`
	TrackCount int     `json:"track-count,omitempty"`
	Tracks     []Track `json:"tracks,omitempty"`
}

type Track struct {
	ID       string `json:"id"`
	Position int    `json:"position,omitempty"`
}

type NamedEntry struct {
	Name string `json:"name"`
}

// Lookup submits a fingerprint and duration and returns the decoded
// matches. Transport and service errors are returned as-is so the caller
// can report them distinctly from "no match".
func (c *AcoustIDClient) Lookup(fingerprint string, duration float64) ([]AcoustIDMatch, error) {
	form := url.Values{}
	form.Set("client", c.apiKey)
	form.Set("fingerprint", fingerprint)
	form.Set("duration", strconv.Itoa(int(duration)))
	form.Set("meta", lookupMeta)

	resp, err := c.httpClient.PostForm(c.baseURL, form)
	if err != nil {
		return nil, fmt.Errorf("lookup request failed: %w", err)
	}
	defer resp.Body.Close()

	var decoded AcoustIDResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode lookup response: %w", err)
	}

	if decoded.Status != "ok" {
		if decoded.Error != nil && decoded.Error.Message != "" {
			return nil, fmt.Errorf("service returned %q: %s", decoded.Status, decoded.Error.Message)
		}
		return nil, fmt.Errorf("service returned status %q (HTTP %d)", decoded.Status, resp.StatusCode)
	}

	return decoded.Results, nil
}
