package types

// EnrichmentOutcome captures, independently, what happened to one file
// during an enrichment pass. Each stage reports into its own field; a
// failure in one stage never overwrites another stage's error.
type EnrichmentOutcome struct {
	// Recognition stage
	Recognition      bool   `json:"recognition"`
	RecognitionError string `json:"recognitionError,omitempty"`
	Artist           string `json:"artist,omitempty"`
	Title            string `json:"title,omitempty"`
	Album            string `json:"album,omitempty"`
	Score            float64 `json:"score,omitempty"`

	// Tag-write stage
	MetadataWritten bool `json:"metadataWritten"`

	// Lyrics stages
	LyricsFound    bool   `json:"lyricsFound"`
	LyricsEmbedded bool   `json:"lyricsEmbedded"`
	LyricsError    string `json:"lyricsError,omitempty"`
	EmbedError     string `json:"embedError,omitempty"`

	// Error is set only when the file's task failed outright (for example a
	// panic in a worker); stage errors live in the fields above.
	Error string `json:"error,omitempty"`
}

// CoverOutcome captures the result of a cover-only pass over one file.
type CoverOutcome struct {
	Embedded bool   `json:"embedded"`
	Skipped  bool   `json:"skipped"` // file already had artwork
	Error    string `json:"error,omitempty"`
}
