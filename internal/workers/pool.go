package workers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"starlift/internal/config"
	"starlift/internal/fetch"
	"starlift/internal/logging"
	"starlift/pkg/utils"
)

// PageResult represents the result of a page fetch job
type PageResult struct {
	Page     *fetch.Page
	Error    error
	JobID    string
	Duration time.Duration
}

// PageJob represents a detail page fetch to be processed by workers
type PageJob struct {
	ID         string
	URL        string
	ResultChan chan PageResult
	Context    context.Context
	CreatedAt  time.Time
}

// WorkerPool fans detail page fetches out over a bounded set of
// workers. Listing pages are fetched inline by each source; the pool
// exists for the per-record detail requests, which dominate run time.
type WorkerPool struct {
	config   *config.Config
	fetcher  fetch.Fetcher
	jobQueue chan PageJob
	logger   logging.Logger
	mu       sync.RWMutex
	running  bool
	quit     chan struct{}
	wg       sync.WaitGroup
	statsMu  sync.RWMutex
	stats    PoolStats
}

// PoolStats tracks worker pool statistics
type PoolStats struct {
	JobsQueued          int64
	JobsProcessed       int64
	JobsSuccessful      int64
	JobsFailed          int64
	TotalProcessingTime time.Duration
}

// NewWorkerPool creates a new worker pool instance
func NewWorkerPool(cfg *config.Config, fetcher fetch.Fetcher) *WorkerPool {
	return &WorkerPool{
		config:   cfg,
		fetcher:  fetcher,
		jobQueue: make(chan PageJob, cfg.Workers.QueueSize),
		logger:   logging.GetGlobalLogger(),
		quit:     make(chan struct{}),
	}
}

// Start starts the worker pool
func (wp *WorkerPool) Start() error {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if wp.running {
		return fmt.Errorf("worker pool is already running")
	}

	poolSize := wp.config.Workers.PoolSize
	if poolSize <= 0 {
		poolSize = 1
	}

	for i := 1; i <= poolSize; i++ {
		wp.wg.Add(1)
		go wp.runWorker(i)
	}

	wp.running = true
	wp.logger.Info("Worker pool started", map[string]interface{}{
		"workers": poolSize,
	})
	return nil
}

// Stop stops the worker pool gracefully
func (wp *WorkerPool) Stop() error {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if !wp.running {
		return nil
	}

	close(wp.quit)
	wp.wg.Wait()
	wp.running = false
	wp.logger.Info("Worker pool stopped")
	return nil
}

// IsRunning returns true if the worker pool is running
func (wp *WorkerPool) IsRunning() bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	return wp.running
}

// FetchPage submits a fetch job and waits for its result
func (wp *WorkerPool) FetchPage(ctx context.Context, url string) (*fetch.Page, error) {
	if !wp.IsRunning() {
		return nil, fmt.Errorf("worker pool is not running")
	}

	job := PageJob{
		ID:         utils.NewRecordID(),
		URL:        url,
		ResultChan: make(chan PageResult, 1),
		Context:    ctx,
		CreatedAt:  time.Now(),
	}

	wp.statsMu.Lock()
	wp.stats.JobsQueued++
	wp.statsMu.Unlock()

	select {
	case wp.jobQueue <- job:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(wp.config.Workers.Timeout):
		return nil, fmt.Errorf("job queue is full, request timed out")
	}

	select {
	case result := <-job.ResultChan:
		return result.Page, result.Error
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(wp.config.Workers.Timeout):
		return nil, fmt.Errorf("page fetch timed out after %v", wp.config.Workers.Timeout)
	}
}

// GetStats returns a snapshot of current pool statistics
func (wp *WorkerPool) GetStats() PoolStats {
	wp.statsMu.RLock()
	defer wp.statsMu.RUnlock()
	return wp.stats
}

func (wp *WorkerPool) runWorker(id int) {
	defer wp.wg.Done()

	for {
		select {
		case job := <-wp.jobQueue:
			wp.processJob(id, job)
		case <-wp.quit:
			return
		}
	}
}

func (wp *WorkerPool) processJob(workerID int, job PageJob) {
	startTime := time.Now()

	page, err := wp.fetcher.Fetch(job.Context, job.URL)
	duration := time.Since(startTime)

	wp.statsMu.Lock()
	wp.stats.JobsProcessed++
	wp.stats.TotalProcessingTime += duration
	if err != nil {
		wp.stats.JobsFailed++
	} else {
		wp.stats.JobsSuccessful++
	}
	wp.statsMu.Unlock()

	if err != nil {
		wp.logger.Debug("Detail fetch failed", map[string]interface{}{
			"job_id":    job.ID,
			"worker_id": workerID,
			"url":       job.URL,
			"error":     err.Error(),
		})
	}

	select {
	case job.ResultChan <- PageResult{Page: page, Error: err, JobID: job.ID, Duration: duration}:
	case <-time.After(100 * time.Millisecond):
	}
}
