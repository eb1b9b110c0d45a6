package services

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"musicren/types"
	"musicren/websocket"
)

// JobQueue interface defines the methods for managing processing jobs
type JobQueue interface {
	Start()
	AddJob(jobType types.JobType, directory string, recognition, lyrics bool) types.ProcessJob
	GetJob(id string) (types.ProcessJob, bool)
	GetAllJobs() []types.ProcessJob
	CancelJob(id string) bool
	UpdateJobProgress(id string, progress, total int, currentFile string)
	SetJobStatus(id string, status types.JobStatus, errorMsg string)
}

// jobQueue manages directory processing jobs. Jobs are stored as pointers
// internally and mutated only under mu; every accessor hands out a copy so
// callers can read or marshal it without holding the lock.
type jobQueue struct {
	jobs        map[string]*types.ProcessJob
	queue       chan *types.ProcessJob
	activeJobs  map[string]*types.ProcessJob
	mu          sync.RWMutex
	maxWorkers  int
	files       FileService
	coordinator BatchCoordinator
	renamer     RenameEngine
	hub         websocket.Hub
}

// NewJobQueue creates a new job queue
func NewJobQueue(maxWorkers int, files FileService, coordinator BatchCoordinator, renamer RenameEngine, hub websocket.Hub) JobQueue {
	return &jobQueue{
		jobs:        make(map[string]*types.ProcessJob),
		queue:       make(chan *types.ProcessJob, 100), // Buffer for 100 jobs
		activeJobs:  make(map[string]*types.ProcessJob),
		maxWorkers:  maxWorkers,
		files:       files,
		coordinator: coordinator,
		renamer:     renamer,
		hub:         hub,
	}
}

// AddJob adds a new job to the queue
func (jq *jobQueue) AddJob(jobType types.JobType, directory string, recognition, lyrics bool) types.ProcessJob {
	jq.mu.Lock()
	defer jq.mu.Unlock()

	job := &types.ProcessJob{
		ID:          uuid.New().String(),
		Type:        jobType,
		Status:      types.JobStatusQueued,
		Directory:   directory,
		Recognition: recognition,
		Lyrics:      lyrics,
		Progress:    0,
		Total:       1,
		CreatedAt:   time.Now(),
	}

	jq.jobs[job.ID] = job
	jq.queue <- job

	return *job
}

// GetJob retrieves a snapshot of a job by ID
func (jq *jobQueue) GetJob(id string) (types.ProcessJob, bool) {
	jq.mu.RLock()
	defer jq.mu.RUnlock()
	job, exists := jq.jobs[id]
	if !exists {
		return types.ProcessJob{}, false
	}
	return *job, true
}

// GetAllJobs returns snapshots of all jobs
func (jq *jobQueue) GetAllJobs() []types.ProcessJob {
	jq.mu.RLock()
	defer jq.mu.RUnlock()

	jobs := make([]types.ProcessJob, 0, len(jq.jobs))
	for _, job := range jq.jobs {
		jobs = append(jobs, *job)
	}
	return jobs
}

// CancelJob cancels a queued job
func (jq *jobQueue) CancelJob(id string) bool {
	jq.mu.Lock()
	defer jq.mu.Unlock()

	job, exists := jq.jobs[id]
	if !exists {
		return false
	}

	if job.Status == types.JobStatusQueued {
		job.Status = types.JobStatusCancelled
		now := time.Now()
		job.CompletedAt = &now
		return true
	}

	return false
}

// jobStatus reads a job's status under the lock
func (jq *jobQueue) jobStatus(id string) types.JobStatus {
	jq.mu.RLock()
	defer jq.mu.RUnlock()
	if job, exists := jq.jobs[id]; exists {
		return job.Status
	}
	return ""
}

// UpdateJobProgress updates job progress
func (jq *jobQueue) UpdateJobProgress(id string, progress, total int, currentFile string) {
	jq.mu.Lock()
	defer jq.mu.Unlock()

	if job, exists := jq.jobs[id]; exists {
		job.Progress = progress
		job.Total = total

		// Broadcast progress update via WebSocket
		if jq.hub != nil && total > 0 {
			progressPercent := float64(progress) / float64(total) * 100
			jq.hub.BroadcastProgress(id, "progress", string(job.Status), currentFile, string(job.Type),
				fmt.Sprintf("Processed %d of %d files", progress, total), progressPercent)
		}
	}
}

// SetJobStatus updates job status
func (jq *jobQueue) SetJobStatus(id string, status types.JobStatus, errorMsg string) {
	jq.mu.Lock()
	defer jq.mu.Unlock()

	if job, exists := jq.jobs[id]; exists {
		job.Status = status
		if errorMsg != "" {
			job.Error = errorMsg
		}

		now := time.Now()
		if status == types.JobStatusProcessing && job.StartedAt == nil {
			job.StartedAt = &now
			jq.activeJobs[id] = job
		} else if status == types.JobStatusCompleted || status == types.JobStatusFailed || status == types.JobStatusCancelled {
			job.CompletedAt = &now
			delete(jq.activeJobs, id)
		}

		// Broadcast status update via WebSocket
		if jq.hub != nil {
			msgType := "status"
			message := string(status)
			progress := float64(job.Progress) / float64(job.Total) * 100

			if status == types.JobStatusCompleted {
				msgType = "complete"
				progress = 100.0
				message = fmt.Sprintf("%s pass over %s completed", job.Type, job.Directory)
			} else if status == types.JobStatusFailed {
				msgType = "error"
				message = errorMsg
			} else if status == types.JobStatusProcessing {
				message = fmt.Sprintf("Started %s pass over %s", job.Type, job.Directory)
			}

			jq.hub.BroadcastProgress(id, msgType, string(status), "", string(job.Type), message, progress)
		}
	}
}

// setEnrichResults attaches enrichment outcomes to a job under the lock
func (jq *jobQueue) setEnrichResults(id string, outcomes map[string]types.EnrichmentOutcome) {
	jq.mu.Lock()
	defer jq.mu.Unlock()
	if job, exists := jq.jobs[id]; exists {
		job.Outcomes = outcomes
	}
}

// setCoverResults attaches cover outcomes to a job under the lock
func (jq *jobQueue) setCoverResults(id string, covers map[string]types.CoverOutcome) {
	jq.mu.Lock()
	defer jq.mu.Unlock()
	if job, exists := jq.jobs[id]; exists {
		job.Covers = covers
	}
}

// setRenameResults attaches a change set to a job under the lock
func (jq *jobQueue) setRenameResults(id string, changes types.ChangeSet) {
	jq.mu.Lock()
	defer jq.mu.Unlock()
	if job, exists := jq.jobs[id]; exists {
		job.Changes = changes
	}
}

// Start begins processing jobs
func (jq *jobQueue) Start() {
	for i := 0; i < jq.maxWorkers; i++ {
		go jq.worker()
	}
}

// worker processes jobs from the queue
func (jq *jobQueue) worker() {
	for job := range jq.queue {
		if jq.jobStatus(job.ID) == types.JobStatusCancelled {
			continue
		}

		jq.SetJobStatus(job.ID, types.JobStatusProcessing, "")

		var err error
		switch job.Type {
		case types.JobTypeEnrich:
			err = jq.processEnrichJob(job)
		case types.JobTypeCovers:
			err = jq.processCoversJob(job)
		case types.JobTypeRename:
			err = jq.processRenameJob(job)
		}

		if err != nil {
			jq.SetJobStatus(job.ID, types.JobStatusFailed, err.Error())
			log.Printf("Job %s failed: %v", job.ID, err)
		} else {
			jq.SetJobStatus(job.ID, types.JobStatusCompleted, "")
			log.Printf("Job %s completed successfully", job.ID)
		}
	}
}

// processEnrichJob runs a full enrichment pass over the job's directory
func (jq *jobQueue) processEnrichJob(job *types.ProcessJob) error {
	paths, err := jq.files.AudioFilePaths(job.Directory)
	if err != nil {
		return fmt.Errorf("failed to list audio files: %w", err)
	}

	jq.UpdateJobProgress(job.ID, 0, len(paths), "")

	outcomes := jq.coordinator.ProcessAll(paths, job.Recognition, job.Lyrics, func(done, total int, path string) {
		jq.UpdateJobProgress(job.ID, done, total, path)
	})
	jq.setEnrichResults(job.ID, outcomes)
	return nil
}

// processCoversJob runs a cover-only pass over the job's directory
func (jq *jobQueue) processCoversJob(job *types.ProcessJob) error {
	paths, err := jq.files.AudioFilePaths(job.Directory)
	if err != nil {
		return fmt.Errorf("failed to list audio files: %w", err)
	}

	jq.UpdateJobProgress(job.ID, 0, len(paths), "")

	covers := jq.coordinator.ProcessCovers(paths, func(done, total int, path string) {
		jq.UpdateJobProgress(job.ID, done, total, path)
	})
	jq.setCoverResults(job.ID, covers)
	return nil
}

// processRenameJob renames the job's directory based on file tags
func (jq *jobQueue) processRenameJob(job *types.ProcessJob) error {
	changes, err := jq.renamer.RenameByTags(job.Directory)
	if err != nil {
		return fmt.Errorf("failed to rename files: %w", err)
	}

	jq.setRenameResults(job.ID, changes)
	jq.UpdateJobProgress(job.ID, len(changes), len(changes), "")
	return nil
}
