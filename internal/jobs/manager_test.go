package jobs

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/movie-search/internal/errors"
	"github.com/gcbaptista/movie-search/internal/logging"
	"github.com/gcbaptista/movie-search/internal/metrics"
	"github.com/gcbaptista/movie-search/model"
)

func newTestManager(t *testing.T, workers int) (*Manager, *metrics.Metrics) {
	t.Helper()
	m := metrics.New(prometheus.NewRegistry())
	manager := NewManager(workers, m, logging.Discard())
	manager.Start()
	t.Cleanup(manager.Stop)
	return manager, m
}

func waitFor(t *testing.T, manager *Manager, jobID string) *model.Job {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	job, err := manager.Wait(ctx, jobID)
	require.NoError(t, err)
	return job
}

func TestJobManager_CreateJob(t *testing.T) {
	manager, _ := newTestManager(t, 2)

	jobID := manager.CreateJob(model.JobTypeRebuild, map[string]string{
		"source": "json",
	})
	require.NotEmpty(t, jobID)

	job, err := manager.GetJob(jobID)
	require.NoError(t, err)
	assert.Equal(t, model.JobTypeRebuild, job.Type)
	assert.Equal(t, model.JobStatusPending, job.Status)
	assert.Equal(t, "json", job.Metadata["source"])

	// callers get copies
	job.Metadata["source"] = "changed"
	again, _ := manager.GetJob(jobID)
	assert.Equal(t, "json", again.Metadata["source"])
}

func TestJobManager_GetJob_NotFound(t *testing.T) {
	manager, _ := newTestManager(t, 1)
	_, err := manager.GetJob("missing")
	assert.True(t, stderrors.Is(err, errors.ErrJobNotFound))
}

func TestJobManager_ExecuteJob(t *testing.T) {
	manager, m := newTestManager(t, 2)

	jobID := manager.CreateJob(model.JobTypeRebuild, nil)
	err := manager.ExecuteJob(jobID, func(ctx context.Context, job *model.Job) error {
		manager.UpdateJobProgress(jobID, 50, 100, "Halfway done")
		time.Sleep(10 * time.Millisecond)
		manager.UpdateJobProgress(jobID, 100, 100, "Completed")
		return nil
	})
	require.NoError(t, err)

	job := waitFor(t, manager, jobID)
	assert.Equal(t, model.JobStatusCompleted, job.Status)
	require.NotNil(t, job.Progress)
	assert.Equal(t, 100, job.Progress.Current)
	assert.Equal(t, 100.0, job.Progress.GetProgressPercentage())
	assert.NotNil(t, job.StartedAt)
	assert.NotNil(t, job.CompletedAt)

	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(m.JobsTotal.WithLabelValues("rebuild", "completed")) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestJobManager_ExecuteJob_Failure(t *testing.T) {
	manager, _ := newTestManager(t, 1)

	jobID := manager.CreateJob(model.JobTypeSnapshot, nil)
	require.NoError(t, manager.ExecuteJob(jobID, func(ctx context.Context, job *model.Job) error {
		return stderrors.New("disk full")
	}))

	job := waitFor(t, manager, jobID)
	assert.Equal(t, model.JobStatusFailed, job.Status)
	assert.Equal(t, "disk full", job.Error)
}

func TestJobManager_ExecuteJob_NotPending(t *testing.T) {
	manager, _ := newTestManager(t, 1)

	jobID := manager.CreateJob(model.JobTypeRebuild, nil)
	noop := func(ctx context.Context, job *model.Job) error { return nil }
	require.NoError(t, manager.ExecuteJob(jobID, noop))
	waitFor(t, manager, jobID)

	assert.Error(t, manager.ExecuteJob(jobID, noop))
	assert.True(t, stderrors.Is(manager.ExecuteJob("missing", noop), errors.ErrJobNotFound))
}

func TestJobManager_StopCancelsRunningJobs(t *testing.T) {
	manager := NewManager(1, nil, logging.Discard())
	manager.Start()

	started := make(chan struct{})
	jobID := manager.CreateJob(model.JobTypeRebuild, nil)
	require.NoError(t, manager.ExecuteJob(jobID, func(ctx context.Context, job *model.Job) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}))

	<-started
	manager.Stop()
	manager.Stop()

	job, err := manager.GetJob(jobID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusCancelled, job.Status)
}

func TestJobManager_ListJobsAndSummary(t *testing.T) {
	manager, _ := newTestManager(t, 1)

	done := manager.CreateJob(model.JobTypeRebuild, nil)
	require.NoError(t, manager.ExecuteJob(done, func(ctx context.Context, job *model.Job) error { return nil }))
	waitFor(t, manager, done)
	manager.CreateJob(model.JobTypeSnapshot, nil)

	assert.Len(t, manager.ListJobs(nil), 2)

	completed := model.JobStatusCompleted
	list := manager.ListJobs(&completed)
	require.Len(t, list, 1)
	assert.Equal(t, done, list[0].ID)

	summary := manager.Summary()
	assert.Equal(t, 1, summary[model.JobStatusCompleted])
	assert.Equal(t, 1, summary[model.JobStatusPending])
}

func TestJobManager_CleanupOldJobs(t *testing.T) {
	manager, _ := newTestManager(t, 1)

	jobID := manager.CreateJob(model.JobTypeRebuild, nil)
	require.NoError(t, manager.ExecuteJob(jobID, func(ctx context.Context, job *model.Job) error { return nil }))
	waitFor(t, manager, jobID)
	pending := manager.CreateJob(model.JobTypeRebuild, nil)

	manager.CleanupOldJobs(time.Hour)
	assert.Len(t, manager.ListJobs(nil), 2)

	manager.CleanupOldJobs(-time.Second)
	jobs := manager.ListJobs(nil)
	require.Len(t, jobs, 1)
	assert.Equal(t, pending, jobs[0].ID)
}
