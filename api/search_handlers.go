package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gcbaptista/movie-search/model"
	"github.com/gcbaptista/movie-search/services"
)

// SearchRequest defines the structure for search queries.
type SearchRequest struct {
	Query string   `json:"query"`
	Limit int      `json:"limit,omitempty"`
	K1    *float64 `json:"k1,omitempty"`
	B     *float64 `json:"b,omitempty"`
}

// SearchHandler runs a ranked BM25 search.
func (api *API) SearchHandler(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendInvalidJSONError(c, err)
		return
	}
	if result := ValidateSearchRequest(&req); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	startTime := time.Now()
	result, err := api.engine.Search(c.Request.Context(), services.SearchQuery{
		QueryString: req.Query,
		Limit:       req.Limit,
		K1:          req.K1,
		B:           req.B,
	})
	if err != nil {
		SendEngineError(c, "search", err)
		return
	}

	api.analytics.TrackSearchEvent(model.SearchEvent{
		Query:        req.Query,
		Tokens:       result.Tokens,
		ResponseTime: time.Since(startTime),
		ResultCount:  len(result.Hits),
		Cached:       result.Cached,
		Generation:   result.Generation,
	})

	api.logger.WithFields(logrus.Fields{
		"query_id": result.QueryId,
		"hits":     len(result.Hits),
		"cached":   result.Cached,
		"took_ms":  result.Took,
	}).Debug("search served")

	c.JSON(http.StatusOK, result)
}
