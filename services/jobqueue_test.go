package services

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"musicren/types"
)

// staticFileService returns a fixed path list for any directory
type staticFileService struct {
	paths []string
}

func (s *staticFileService) AudioFilePaths(dir string) ([]string, error) { return s.paths, nil }

func (s *staticFileService) ListAudioFiles(dir string) ([]types.AudioFile, error) {
	return nil, nil
}

func (s *staticFileService) ReadTags(path string) (*types.AudioMetadata, error) {
	return &types.AudioMetadata{}, nil
}

// steppingCoordinator reports progress once per path before returning
type steppingCoordinator struct{}

func (c *steppingCoordinator) ProcessAll(paths []string, useRecognition, doLyrics bool, progress ProgressFunc) map[string]types.EnrichmentOutcome {
	outcomes := make(map[string]types.EnrichmentOutcome, len(paths))
	for i, path := range paths {
		outcomes[path] = types.EnrichmentOutcome{}
		if progress != nil {
			progress(i+1, len(paths), path)
		}
	}
	return outcomes
}

func (c *steppingCoordinator) ProcessCovers(paths []string, progress ProgressFunc) map[string]types.CoverOutcome {
	covers := make(map[string]types.CoverOutcome, len(paths))
	for i, path := range paths {
		covers[path] = types.CoverOutcome{Skipped: true}
		if progress != nil {
			progress(i+1, len(paths), path)
		}
	}
	return covers
}

type noopRenamer struct{}

func (r *noopRenamer) RenameByTags(dir string) (types.ChangeSet, error) {
	return types.ChangeSet{}, nil
}

func (r *noopRenamer) Undo(dir string, changes types.ChangeSet) (int, error) { return 0, nil }

func newTestJobQueue(paths []string) JobQueue {
	return NewJobQueue(1, &staticFileService{paths: paths}, &steppingCoordinator{}, &noopRenamer{}, nil)
}

// TestGetJobReturnsSnapshot verifies that a job handed to a caller is
// detached from the queue's internal state: later progress updates must
// not show through it.
func TestGetJobReturnsSnapshot(t *testing.T) {
	jq := newTestJobQueue(nil)
	added := jq.AddJob(types.JobTypeEnrich, "/music", true, false)

	jq.UpdateJobProgress(added.ID, 3, 10, "a.mp3")
	snapshot, exists := jq.GetJob(added.ID)
	require.True(t, exists)
	assert.Equal(t, 3, snapshot.Progress)
	assert.Equal(t, 10, snapshot.Total)

	jq.UpdateJobProgress(added.ID, 7, 10, "b.mp3")
	jq.SetJobStatus(added.ID, types.JobStatusFailed, "boom")

	assert.Equal(t, 3, snapshot.Progress)
	assert.Equal(t, types.JobStatusQueued, snapshot.Status)
	assert.Empty(t, snapshot.Error)

	all := jq.GetAllJobs()
	require.Len(t, all, 1)
	jq.UpdateJobProgress(added.ID, 9, 10, "c.mp3")
	assert.Equal(t, 7, all[0].Progress)
}

// TestJobsMarshalableDuringUpdates marshals job snapshots while another
// goroutine mutates the job, the access pattern of a client polling the
// jobs endpoint during a running pass.
func TestJobsMarshalableDuringUpdates(t *testing.T) {
	jq := newTestJobQueue(nil)
	added := jq.AddJob(types.JobTypeEnrich, "/music", true, true)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			jq.UpdateJobProgress(added.ID, i, 500, "track.mp3")
			jq.SetJobStatus(added.ID, types.JobStatusProcessing, "")
		}
	}()

	for i := 0; i < 500; i++ {
		job, exists := jq.GetJob(added.ID)
		require.True(t, exists)
		_, err := json.Marshal(job)
		require.NoError(t, err)

		_, err = json.Marshal(jq.GetAllJobs())
		require.NoError(t, err)
	}
	wg.Wait()
}

// TestEnrichJobLifecycle runs a queued enrichment pass to completion and
// checks the final snapshot carries outcomes and progress.
func TestEnrichJobLifecycle(t *testing.T) {
	paths := []string{"/music/a.mp3", "/music/b.mp3", "/music/c.flac"}
	jq := newTestJobQueue(paths)
	jq.Start()

	added := jq.AddJob(types.JobTypeEnrich, "/music", true, false)

	require.Eventually(t, func() bool {
		job, _ := jq.GetJob(added.ID)
		return job.Status == types.JobStatusCompleted
	}, 2*time.Second, 10*time.Millisecond)

	job, exists := jq.GetJob(added.ID)
	require.True(t, exists)
	assert.Equal(t, len(paths), job.Progress)
	assert.Equal(t, len(paths), job.Total)
	assert.Len(t, job.Outcomes, len(paths))
	require.NotNil(t, job.CompletedAt)
}

// TestCancelQueuedJob verifies a queued job can be cancelled and that a
// processed or unknown job cannot.
func TestCancelQueuedJob(t *testing.T) {
	jq := newTestJobQueue(nil)
	added := jq.AddJob(types.JobTypeRename, "/music", false, false)

	assert.True(t, jq.CancelJob(added.ID))
	job, _ := jq.GetJob(added.ID)
	assert.Equal(t, types.JobStatusCancelled, job.Status)

	assert.False(t, jq.CancelJob(added.ID))
	assert.False(t, jq.CancelJob("unknown"))
}
