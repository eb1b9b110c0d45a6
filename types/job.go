package types

import "time"

// JobType represents the kind of processing job
type JobType string

const (
	JobTypeEnrich JobType = "enrich"
	JobTypeCovers JobType = "covers"
	JobTypeRename JobType = "rename"
)

// JobStatus represents the current status of a processing job
type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusCancelled  JobStatus = "cancelled"
)

// ProcessJob represents a queued batch pass over a directory
type ProcessJob struct {
	ID          string     `json:"id"`
	Type        JobType    `json:"type"`
	Status      JobStatus  `json:"status"`
	Directory   string     `json:"directory"`
	Recognition bool       `json:"recognition,omitempty"`
	Lyrics      bool       `json:"lyrics,omitempty"`
	Progress    int        `json:"progress"`
	Total       int        `json:"total"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	// Populated when the job completes.
	Outcomes map[string]EnrichmentOutcome `json:"outcomes,omitempty"`
	Covers   map[string]CoverOutcome      `json:"covers,omitempty"`
	Changes  ChangeSet                    `json:"changes,omitempty"`
}
