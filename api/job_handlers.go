package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	internalErrors "github.com/gcbaptista/movie-search/internal/errors"
	"github.com/gcbaptista/movie-search/model"
)

// GetJobHandler handles requests to get job status by ID
func (api *API) GetJobHandler(c *gin.Context) {
	jobID := c.Param("jobId")

	job, err := api.engine.GetJob(jobID)
	if err != nil {
		if errors.Is(err, internalErrors.ErrJobNotFound) {
			SendJobNotFoundError(c, jobID)
			return
		}
		SendEngineError(c, "get job", err)
		return
	}

	c.JSON(http.StatusOK, job)
}

// ListJobsHandler lists background jobs, optionally filtered by ?status=.
func (api *API) ListJobsHandler(c *gin.Context) {
	var statusFilter *model.JobStatus
	if statusParam := c.Query("status"); statusParam != "" {
		status := model.JobStatus(statusParam)
		switch status {
		case model.JobStatusPending, model.JobStatusRunning, model.JobStatusCompleted,
			model.JobStatusFailed, model.JobStatusCancelled:
		default:
			result := &ValidationResult{Valid: true}
			result.AddError("status", "Unknown job status '"+statusParam+"'")
			SendValidationError(c, result)
			return
		}
		statusFilter = &status
	}

	jobs := api.engine.ListJobs(statusFilter)
	c.JSON(http.StatusOK, gin.H{
		"jobs":  jobs,
		"total": len(jobs),
	})
}
