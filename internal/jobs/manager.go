package jobs

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/gcbaptista/movie-search/internal/errors"
	"github.com/gcbaptista/movie-search/internal/metrics"
	"github.com/gcbaptista/movie-search/model"
)

// Manager handles background job execution and tracking
type Manager struct {
	mu       sync.RWMutex
	jobs     map[string]*model.Job
	workers  chan struct{} // Limits concurrent jobs
	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
	wg       sync.WaitGroup
	metrics  *metrics.Metrics
	logger   *logrus.Entry
}

// NewManager creates a new job manager with specified worker count.
// m and logger may be nil.
func NewManager(maxWorkers int, m *metrics.Metrics, logger *logrus.Entry) *Manager {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	if logger == nil {
		logger = logrus.WithField("component", "jobs")
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		jobs:    make(map[string]*model.Job),
		workers: make(chan struct{}, maxWorkers),
		ctx:     ctx,
		cancel:  cancel,
		metrics: m,
		logger:  logger,
	}
}

// Start begins the job manager and starts background cleanup
func (m *Manager) Start() {
	m.logger.WithField("max_workers", cap(m.workers)).Info("job manager started")

	go m.cleanupRoutine()
}

// Stop cancels running jobs and waits for them to return. It is safe to
// call more than once.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		m.cancel()
		m.wg.Wait()
		m.logger.Info("job manager stopped")
	})
}

// CreateJob creates a new job and returns its ID
func (m *Manager) CreateJob(jobType model.JobType, metadata map[string]string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	job := &model.Job{
		ID:        uuid.New().String(),
		Type:      jobType,
		Status:    model.JobStatusPending,
		CreatedAt: time.Now(),
		Metadata:  metadata,
	}

	m.jobs[job.ID] = job
	m.logger.WithFields(logrus.Fields{"job_id": job.ID, "type": job.Type}).Debug("job created")
	return job.ID
}

// GetJob retrieves a job by ID
func (m *Manager) GetJob(jobID string) (*model.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return nil, errors.NewJobNotFoundError(jobID)
	}
	return copyJob(job), nil
}

// ListJobs returns all jobs, newest first, optionally filtered by status
func (m *Manager) ListJobs(status *model.JobStatus) []*model.Job {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*model.Job, 0, len(m.jobs))
	for _, job := range m.jobs {
		if status == nil || job.Status == *status {
			result = append(result, copyJob(job))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

func copyJob(job *model.Job) *model.Job {
	jobCopy := *job
	if job.Progress != nil {
		progressCopy := *job.Progress
		jobCopy.Progress = &progressCopy
	}
	if job.Metadata != nil {
		jobCopy.Metadata = make(map[string]string, len(job.Metadata))
		for k, v := range job.Metadata {
			jobCopy.Metadata[k] = v
		}
	}
	return &jobCopy
}

// ExecuteJob runs a job function in a goroutine with proper tracking. It
// blocks until a worker slot is free.
func (m *Manager) ExecuteJob(jobID string, jobFunc func(ctx context.Context, job *model.Job) error) error {
	m.mu.Lock()
	job, exists := m.jobs[jobID]
	if !exists {
		m.mu.Unlock()
		return errors.NewJobNotFoundError(jobID)
	}

	if job.Status != model.JobStatusPending {
		m.mu.Unlock()
		return fmt.Errorf("job with ID '%s' is not in pending status (current: %s)", jobID, job.Status)
	}

	job.Status = model.JobStatusRunning
	now := time.Now()
	job.StartedAt = &now
	jobView := copyJob(job)
	m.mu.Unlock()

	// Acquire worker slot
	select {
	case m.workers <- struct{}{}:
	case <-m.ctx.Done():
		m.updateJobStatus(jobID, model.JobStatusCancelled, "job manager shutting down")
		return fmt.Errorf("job manager is shutting down")
	}

	m.wg.Add(1)
	m.metrics.JobStarted()
	go func() {
		defer func() {
			<-m.workers // Release worker slot
			m.wg.Done()
		}()

		startTime := time.Now()
		err := jobFunc(m.ctx, jobView)
		executionTime := time.Since(startTime)

		entry := m.logger.WithFields(logrus.Fields{
			"job_id":   jobID,
			"type":     jobView.Type,
			"duration": executionTime,
		})
		status := model.JobStatusCompleted
		switch {
		case err != nil && m.ctx.Err() != nil:
			status = model.JobStatusCancelled
			m.updateJobStatus(jobID, status, err.Error())
			entry.WithError(err).Warn("job cancelled")
		case err != nil:
			status = model.JobStatusFailed
			m.updateJobStatus(jobID, status, err.Error())
			entry.WithError(err).Error("job failed")
		default:
			m.updateJobStatus(jobID, status, "")
			entry.Info("job completed")
		}
		m.metrics.JobFinished(string(jobView.Type), string(status), executionTime)
	}()

	return nil
}

// UpdateJobProgress updates the progress of a running job
func (m *Manager) UpdateJobProgress(jobID string, current, total int, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return
	}

	if job.Progress == nil {
		job.Progress = &model.JobProgress{}
	}

	job.Progress.Current = current
	job.Progress.Total = total
	job.Progress.Message = message
}

// updateJobStatus updates the status of a job (internal method)
func (m *Manager) updateJobStatus(jobID string, status model.JobStatus, errorMsg string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return
	}

	job.Status = status
	if errorMsg != "" {
		job.Error = errorMsg
	}

	if status.IsTerminal() {
		now := time.Now()
		job.CompletedAt = &now
	}
}

// cleanupRoutine runs periodic job cleanup
func (m *Manager) cleanupRoutine() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.CleanupOldJobs(24 * time.Hour)
		case <-m.ctx.Done():
			return
		}
	}
}

// CleanupOldJobs removes finished jobs older than the specified duration
func (m *Manager) CleanupOldJobs(maxAge time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	cleaned := 0

	for jobID, job := range m.jobs {
		if job.CompletedAt != nil && job.CompletedAt.Before(cutoff) {
			delete(m.jobs, jobID)
			cleaned++
		}
	}

	if cleaned > 0 {
		m.logger.WithField("removed", cleaned).Info("cleaned up old jobs")
	}
}

// Summary counts the tracked jobs by status.
func (m *Manager) Summary() map[model.JobStatus]int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[model.JobStatus]int)
	for _, job := range m.jobs {
		counts[job.Status]++
	}
	return counts
}

// Wait blocks until the job reaches a terminal status or ctx is done.
func (m *Manager) Wait(ctx context.Context, jobID string) (*model.Job, error) {
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()
	for {
		job, err := m.GetJob(jobID)
		if err != nil {
			return nil, err
		}
		if job.Status.IsTerminal() {
			return job, nil
		}
		select {
		case <-ctx.Done():
			return job, ctx.Err()
		case <-ticker.C:
		}
	}
}
