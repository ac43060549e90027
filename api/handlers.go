package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gcbaptista/movie-search/internal/analytics"
	"github.com/gcbaptista/movie-search/internal/corpus"
	"github.com/gcbaptista/movie-search/internal/metrics"
	"github.com/gcbaptista/movie-search/services"
)

// DefaultMaxBodySize bounds request bodies.
const DefaultMaxBodySize = 1 << 20

// Options configure the routes. Loader is needed for rebuilds; nil Metrics
// disables the /metrics route and request instrumentation.
type Options struct {
	Loader      corpus.Loader
	Metrics     *metrics.Metrics
	Logger      *logrus.Entry
	MaxBodySize int64
}

// API holds dependencies for API handlers.
type API struct {
	engine    services.Engine
	analytics *analytics.Service
	loader    corpus.Loader
	metrics   *metrics.Metrics
	logger    *logrus.Entry
	started   time.Time
}

// NewAPI creates a new API handler structure.
func NewAPI(engine services.Engine, opts Options) *API {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.WithField("component", "api")
	}
	return &API{
		engine:    engine,
		analytics: analytics.NewService(engine),
		loader:    opts.Loader,
		metrics:   opts.Metrics,
		logger:    logger,
		started:   time.Now(),
	}
}

// SetupRoutes defines all the API routes for the search engine.
func SetupRoutes(router *gin.Engine, engine services.Engine, opts Options) {
	apiHandler := NewAPI(engine, opts)

	maxBody := opts.MaxBodySize
	if maxBody <= 0 {
		maxBody = DefaultMaxBodySize
	}

	router.Use(RequestIDMiddleware(), LoggingMiddleware(apiHandler.logger), RequestSizeLimitMiddleware(maxBody))
	if opts.Metrics != nil {
		router.Use(MetricsMiddleware(opts.Metrics))
		router.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	router.GET("/health", apiHandler.HealthCheckHandler)
	router.GET("/stats", apiHandler.GetStatsHandler)
	router.GET("/analytics", apiHandler.GetAnalyticsHandler)

	// Single-term statistics
	termRoutes := router.Group("/terms/:term")
	{
		termRoutes.GET("/documents", apiHandler.DocumentsForHandler)
		termRoutes.GET("/idf", apiHandler.IDFHandler)
		termRoutes.GET("/bm25idf", apiHandler.BM25IDFHandler)
	}

	docRoutes := router.Group("/documents/:id")
	{
		docRoutes.GET("/tf", apiHandler.TermFrequencyHandler) // ?term=
		docRoutes.GET("/tfidf", apiHandler.TFIDFHandler)      // ?term=
		docRoutes.GET("/bm25tf", apiHandler.BM25TFHandler)    // ?term=&k1=&b=
	}

	router.POST("/search", apiHandler.SearchHandler)

	indexRoutes := router.Group("/index")
	{
		indexRoutes.POST("/rebuild", apiHandler.RebuildHandler)
		indexRoutes.POST("/snapshot", apiHandler.SnapshotHandler)
		indexRoutes.POST("/load", apiHandler.LoadSnapshotHandler)
	}

	jobRoutes := router.Group("/jobs")
	{
		jobRoutes.GET("", apiHandler.ListJobsHandler)
		jobRoutes.GET("/:jobId", apiHandler.GetJobHandler)
	}
}

// HealthCheckHandler provides a simple health check endpoint
func (api *API) HealthCheckHandler(c *gin.Context) {
	stats, err := api.engine.Stats()
	if err != nil {
		SendEngineError(c, "health check", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":     "healthy",
		"service":    "movie-search",
		"generation": stats.Generation,
		"uptime":     time.Since(api.started).Round(time.Second).String(),
	})
}

// GetAnalyticsHandler summarizes recent search traffic.
func (api *API) GetAnalyticsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, api.analytics.GetDashboardData())
}
