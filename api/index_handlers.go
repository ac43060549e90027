package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetStatsHandler describes the published index.
func (api *API) GetStatsHandler(c *gin.Context) {
	stats, err := api.engine.Stats()
	if err != nil {
		SendEngineError(c, "stats", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// RebuildHandler reloads the corpus and rebuilds the index in the background.
func (api *API) RebuildHandler(c *gin.Context) {
	if api.loader == nil {
		SendError(c, http.StatusNotImplemented, ErrorCodeInvalidRequest, "No corpus source configured")
		return
	}

	jobID, err := api.engine.RebuildAsync(api.loader)
	if err != nil {
		SendJobExecutionError(c, "rebuild", err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status":  "accepted",
		"message": "Index rebuild started",
		"job_id":  jobID,
	})
}

// SnapshotHandler saves the published index in the background.
func (api *API) SnapshotHandler(c *gin.Context) {
	jobID, err := api.engine.SnapshotAsync()
	if err != nil {
		SendJobExecutionError(c, "snapshot", err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status":  "accepted",
		"message": "Snapshot save started",
		"job_id":  jobID,
	})
}

// LoadSnapshotHandler replaces the published index with the saved snapshot.
func (api *API) LoadSnapshotHandler(c *gin.Context) {
	if err := api.engine.LoadSnapshot(); err != nil {
		SendEngineError(c, "snapshot load", err)
		return
	}
	stats, err := api.engine.Stats()
	if err != nil {
		SendEngineError(c, "stats", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Snapshot loaded",
		"stats":   stats,
	})
}
