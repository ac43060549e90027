// Package testing provides utilities and helpers for testing the search engine.
package testing

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/movie-search/internal/engine"
	"github.com/gcbaptista/movie-search/internal/logging"
	"github.com/gcbaptista/movie-search/model"
	"github.com/gcbaptista/movie-search/services"
)

// Movies returns a small corpus with known statistics: "brave" occurs in
// documents 1 and 2, twice in 1; "heat" only in 3.
func Movies() []model.Document {
	return []model.Document{
		{ID: 1, Title: "Brave Heart", Description: "A brave warrior fights"},
		{ID: 2, Title: "Brave New World", Description: "Society under control"},
		{ID: 3, Title: "Heat", Description: "A detective hunts a thief in the city"},
	}
}

// WriteDataset writes docs as a {"movies": [...]} file under a temp
// directory and returns its path.
func WriteDataset(t *testing.T, docs []model.Document) string {
	t.Helper()
	data, err := json.Marshal(model.Corpus{Movies: docs})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "movies.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

// CreateTestEngine creates an engine that logs nowhere and is closed when
// the test ends.
func CreateTestEngine(t *testing.T, opts engine.Options) *engine.Engine {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	eng, err := engine.New(opts)
	require.NoError(t, err, "Failed to create test engine")
	t.Cleanup(eng.Close)
	return eng
}

// JobPollingOptions configures job polling behavior
type JobPollingOptions struct {
	Timeout      time.Duration
	PollInterval time.Duration
	LogProgress  bool
}

// DefaultJobPollingOptions returns sensible defaults for job polling
func DefaultJobPollingOptions() JobPollingOptions {
	return JobPollingOptions{
		Timeout:      10 * time.Second,
		PollInterval: 10 * time.Millisecond,
		LogProgress:  false,
	}
}

// WaitForJobCompletion polls a job until it reaches a terminal status or
// times out.
func WaitForJobCompletion(t *testing.T, jobManager services.JobManager, jobID string, opts JobPollingOptions) *model.Job {
	t.Helper()
	timeout := time.After(opts.Timeout)
	ticker := time.NewTicker(opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-timeout:
			t.Fatalf("Job %s did not complete within %v timeout", jobID, opts.Timeout)
		case <-ticker.C:
			job, err := jobManager.GetJob(jobID)
			require.NoError(t, err, "Failed to get job status")

			if job.Status.IsTerminal() {
				return job
			}
			if opts.LogProgress && job.Progress != nil {
				t.Logf("Job %s progress: %d/%d - %s",
					jobID,
					job.Progress.Current,
					job.Progress.Total,
					job.Progress.Message)
			}
		}
	}
}

// AssertJobCompleted verifies that a job completed successfully
func AssertJobCompleted(t *testing.T, job *model.Job, expectedType model.JobType) {
	t.Helper()
	assert.Equal(t, model.JobStatusCompleted, job.Status, "Job should be completed")
	assert.Equal(t, expectedType, job.Type, "Job type should match")
	assert.NotNil(t, job.CompletedAt, "Job should have completion timestamp")
	assert.Empty(t, job.Error, "Job should not have error")
}

// SearchTestCase represents a test case for search operations
type SearchTestCase struct {
	Name          string
	Query         services.SearchQuery
	ExpectedTotal int
	ExpectedIDs   []int // expected hit order; nil skips the check
	ValidateFunc  func(t *testing.T, results *services.SearchResult)
}

// RunSearchTests runs a suite of search tests against a searcher
func RunSearchTests(t *testing.T, searcher services.Searcher, tests []SearchTestCase) {
	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			t.Cleanup(cancel)
			results, err := searcher.Search(ctx, tt.Query)
			require.NoError(t, err, "Search should not fail")

			assert.Equal(t, tt.ExpectedTotal, results.Total, "Total should match")

			if tt.ExpectedIDs != nil {
				ids := make([]int, 0, len(results.Hits))
				for _, hit := range results.Hits {
					ids = append(ids, hit.Document.ID)
				}
				assert.Equal(t, tt.ExpectedIDs, ids, "Hit order should match")
			}

			if tt.ValidateFunc != nil {
				tt.ValidateFunc(t, &results)
			}
		})
	}
}
