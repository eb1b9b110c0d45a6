package services

import (
	"fmt"
	"sync"

	"musicren/types"
)

const defaultWorkerCount = 4

// ProgressFunc is called after each file finishes, with the number of
// completed files and the path that just finished.
type ProgressFunc func(done, total int, path string)

// BatchCoordinator fans a set of files out over a bounded worker pool. A
// failure in one file never affects the others; a panicking worker is
// recovered and recorded as that file's outcome.
type BatchCoordinator interface {
	ProcessAll(paths []string, useRecognition, doLyrics bool, progress ProgressFunc) map[string]types.EnrichmentOutcome
	ProcessCovers(paths []string, progress ProgressFunc) map[string]types.CoverOutcome
}

type batchCoordinator struct {
	enricher FileEnricher
	workers  int
}

// NewBatchCoordinator creates a coordinator running the given number of
// workers; zero or negative selects the default of 4.
func NewBatchCoordinator(enricher FileEnricher, workers int) BatchCoordinator {
	if workers <= 0 {
		workers = defaultWorkerCount
	}
	return &batchCoordinator{enricher: enricher, workers: workers}
}

// ProcessAll enriches every file and returns one outcome per path.
func (b *batchCoordinator) ProcessAll(paths []string, useRecognition, doLyrics bool, progress ProgressFunc) map[string]types.EnrichmentOutcome {
	outcomes := make(map[string]types.EnrichmentOutcome, len(paths))
	var mu sync.Mutex
	b.run(paths, progress, func(path string) {
		outcome := b.enrichRecovering(path, useRecognition, doLyrics)
		mu.Lock()
		outcomes[path] = outcome
		mu.Unlock()
	})
	return outcomes
}

// ProcessCovers runs the cover-only pass over every file.
func (b *batchCoordinator) ProcessCovers(paths []string, progress ProgressFunc) map[string]types.CoverOutcome {
	outcomes := make(map[string]types.CoverOutcome, len(paths))
	var mu sync.Mutex
	b.run(paths, progress, func(path string) {
		outcome := b.installCoverRecovering(path)
		mu.Lock()
		outcomes[path] = outcome
		mu.Unlock()
	})
	return outcomes
}

func (b *batchCoordinator) enrichRecovering(path string, useRecognition, doLyrics bool) (outcome types.EnrichmentOutcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = types.EnrichmentOutcome{Error: fmt.Sprintf("%v", r)}
		}
	}()
	return b.enricher.Enrich(path, useRecognition, doLyrics)
}

func (b *batchCoordinator) installCoverRecovering(path string) (outcome types.CoverOutcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = types.CoverOutcome{Error: fmt.Sprintf("%v", r)}
		}
	}()
	return b.enricher.InstallCover(path)
}

// run feeds paths to a fixed pool of workers and reports progress as each
// file completes.
func (b *batchCoordinator) run(paths []string, progress ProgressFunc, process func(path string)) {
	jobs := make(chan string, len(paths))
	for _, path := range paths {
		jobs <- path
	}
	close(jobs)

	var done int
	var progressMu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < b.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				process(path)
				if progress != nil {
					progressMu.Lock()
					done++
					progress(done, len(paths), path)
					progressMu.Unlock()
				}
			}
		}()
	}
	wg.Wait()
}
