package engine

import (
	"context"
	"fmt"

	"github.com/gcbaptista/movie-search/internal/corpus"
	"github.com/gcbaptista/movie-search/model"
)

// RebuildAsync reloads the corpus and rebuilds the index in a background
// job. When a snapshot path is configured the new index is saved too.
func (e *Engine) RebuildAsync(loader corpus.Loader) (string, error) {
	if loader == nil {
		return "", fmt.Errorf("corpus loader cannot be nil")
	}

	persist := e.snapshotPath != ""
	jobID := e.jobManager.CreateJob(model.JobTypeRebuild, map[string]string{
		"operation": "rebuild",
		"persist":   fmt.Sprintf("%t", persist),
	})

	err := e.jobManager.ExecuteJob(jobID, func(ctx context.Context, job *model.Job) error {
		return e.executeRebuildJob(ctx, loader, jobID, persist)
	})
	if err != nil {
		return "", fmt.Errorf("failed to start rebuild job: %w", err)
	}
	return jobID, nil
}

func (e *Engine) executeRebuildJob(ctx context.Context, loader corpus.Loader, jobID string, persist bool) error {
	total := 2
	if persist {
		total = 3
	}

	e.jobManager.UpdateJobProgress(jobID, 0, total, "Loading corpus")
	docs, err := loader.Load(ctx)
	if err != nil {
		e.metrics.IndexBuild(err)
		return fmt.Errorf("failed to load corpus: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	e.jobManager.UpdateJobProgress(jobID, 1, total, fmt.Sprintf("Indexing %d documents", len(docs)))
	e.publishMu.Lock()
	defer e.publishMu.Unlock()
	if err := e.buildUnsafe(docs); err != nil {
		return err
	}

	if persist {
		e.jobManager.UpdateJobProgress(jobID, 2, total, "Saving snapshot")
		if err := e.saveSnapshotUnsafe(); err != nil {
			return err
		}
	}

	e.jobManager.UpdateJobProgress(jobID, total, total, "Completed")
	return nil
}

// SnapshotAsync saves the published index in a background job.
func (e *Engine) SnapshotAsync() (string, error) {
	if e.snapshotPath == "" {
		return "", fmt.Errorf("no snapshot path configured")
	}

	jobID := e.jobManager.CreateJob(model.JobTypeSnapshot, map[string]string{
		"operation": "snapshot",
		"path":      e.snapshotPath,
	})

	err := e.jobManager.ExecuteJob(jobID, func(ctx context.Context, job *model.Job) error {
		e.jobManager.UpdateJobProgress(jobID, 0, 1, "Saving snapshot")
		if err := e.SaveSnapshot(); err != nil {
			return err
		}
		e.jobManager.UpdateJobProgress(jobID, 1, 1, "Completed")
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to start snapshot job: %w", err)
	}
	return jobID, nil
}

// GetJob retrieves a background job by ID.
func (e *Engine) GetJob(jobID string) (*model.Job, error) {
	return e.jobManager.GetJob(jobID)
}

// ListJobs lists background jobs, optionally filtered by status.
func (e *Engine) ListJobs(status *model.JobStatus) []*model.Job {
	return e.jobManager.ListJobs(status)
}

// WaitForJob blocks until the job finishes or ctx is done.
func (e *Engine) WaitForJob(ctx context.Context, jobID string) (*model.Job, error) {
	return e.jobManager.Wait(ctx, jobID)
}
