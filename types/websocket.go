package types

import "time"

// ProgressMessage represents a WebSocket progress update message
type ProgressMessage struct {
	JobID       string    `json:"jobId"`
	Type        string    `json:"type"`     // "progress", "status", "complete", "error"
	Progress    float64   `json:"progress"` // 0-100 percentage
	Status      string    `json:"status"`   // current job status
	CurrentFile string    `json:"currentFile"`
	Stage       string    `json:"stage,omitempty"` // "recognize", "cover", "lyrics", "write", "rename"
	Message     string    `json:"message,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// AudioFile represents a discovered audio file in the target directory
type AudioFile struct {
	Filename string         `json:"filename"`
	Path     string         `json:"path"`
	Size     int64          `json:"size"`
	Format   FileFormat     `json:"format"`
	Metadata *AudioMetadata `json:"metadata,omitempty"`
}

// AudioMetadata represents the tags currently present on an audio file
type AudioMetadata struct {
	Title       string `json:"title,omitempty"`
	Artist      string `json:"artist,omitempty"`
	Album       string `json:"album,omitempty"`
	TrackNumber int    `json:"trackNumber,omitempty"`
	HasCover    bool   `json:"hasCover"`
}
