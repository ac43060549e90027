package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/movie-search/internal/corpus"
	"github.com/gcbaptista/movie-search/internal/engine"
	"github.com/gcbaptista/movie-search/internal/logging"
	"github.com/gcbaptista/movie-search/internal/metrics"
	testutil "github.com/gcbaptista/movie-search/internal/testing"
	"github.com/gcbaptista/movie-search/model"
	"github.com/gcbaptista/movie-search/services"
)

func setupTestEngine(t *testing.T, snapshotPath string) *engine.Engine {
	t.Helper()
	return testutil.CreateTestEngine(t, engine.Options{SnapshotPath: snapshotPath})
}

func setupTestRouter(eng *engine.Engine, opts Options) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	SetupRoutes(router, eng, opts)
	return router
}

func doRequest(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	switch b := body.(type) {
	case nil:
		reader = bytes.NewBuffer(nil)
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, _ := json.Marshal(b)
		reader = bytes.NewBuffer(data)
	}
	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) APIError {
	t.Helper()
	var apiErr APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
	return apiErr
}

func TestHealthAndStats(t *testing.T) {
	eng := setupTestEngine(t, "")
	require.NoError(t, eng.Build(testutil.Movies()))
	router := setupTestRouter(eng, Options{})

	w := doRequest(router, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = doRequest(router, "GET", "/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats model.IndexStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 3, stats.DocumentCount)
	assert.Equal(t, "build", stats.Source)
}

func TestTermHandlers(t *testing.T) {
	eng := setupTestEngine(t, "")
	require.NoError(t, eng.Build(testutil.Movies()))
	router := setupTestRouter(eng, Options{})

	tests := []struct {
		name           string
		path           string
		expectedStatus int
		expectedCode   ErrorCode
	}{
		{"documents for term", "/terms/brave/documents", http.StatusOK, ""},
		{"documents for unknown term", "/terms/zebra/documents", http.StatusOK, ""},
		{"documents for stopword", "/terms/the/documents", http.StatusBadRequest, ErrorCodeInvalidQuery},
		{"idf", "/terms/heat/idf", http.StatusOK, ""},
		{"idf unknown term", "/terms/zebra/idf", http.StatusNotFound, ErrorCodeTermNotFound},
		{"bm25 idf", "/terms/brave/bm25idf", http.StatusOK, ""},
		{"tf", "/documents/1/tf?term=brave", http.StatusOK, ""},
		{"tf unknown document", "/documents/99/tf?term=brave", http.StatusNotFound, ErrorCodeDocumentNotFound},
		{"tf non-numeric id", "/documents/abc/tf?term=brave", http.StatusBadRequest, ErrorCodeValidationFailed},
		{"tf missing term", "/documents/1/tf", http.StatusBadRequest, ErrorCodeValidationFailed},
		{"tfidf", "/documents/3/tfidf?term=heat", http.StatusOK, ""},
		{"bm25 tf defaults", "/documents/1/bm25tf?term=brave", http.StatusOK, ""},
		{"bm25 tf overrides", "/documents/1/bm25tf?term=brave&k1=0&b=0", http.StatusOK, ""},
		{"bm25 tf bad k1", "/documents/1/bm25tf?term=brave&k1=x", http.StatusBadRequest, ErrorCodeValidationFailed},
		{"bm25 tf b out of range", "/documents/1/bm25tf?term=brave&b=2", http.StatusBadRequest, ErrorCodeValidationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, "GET", tt.path, nil)
			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeError(t, w).Code)
			}
		})
	}
}

func TestTermHandlers_Values(t *testing.T) {
	eng := setupTestEngine(t, "")
	require.NoError(t, eng.Build(testutil.Movies()))
	router := setupTestRouter(eng, Options{})

	w := doRequest(router, "GET", "/terms/brave/documents", nil)
	var docs struct {
		Documents []int `json:"documents"`
		Total     int   `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &docs))
	assert.Equal(t, []int{1, 2}, docs.Documents)

	w = doRequest(router, "GET", "/documents/1/tf?term=Brave", nil)
	var tf struct {
		TF int `json:"tf"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tf))
	assert.Equal(t, 2, tf.TF)

	w = doRequest(router, "GET", "/documents/1/bm25tf?term=brave&k1=0&b=0", nil)
	var bm25 struct {
		Value float64 `json:"bm25_tf"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bm25))
	assert.InDelta(t, 1.0, bm25.Value, 1e-12)
}

func TestSearchHandler(t *testing.T) {
	eng := setupTestEngine(t, "")
	require.NoError(t, eng.Build(testutil.Movies()))
	router := setupTestRouter(eng, Options{})

	tests := []struct {
		name           string
		body           interface{}
		expectedStatus int
		expectedFirst  int
	}{
		{"ranked search", SearchRequest{Query: "brave heart"}, http.StatusOK, 1},
		{"with limit", SearchRequest{Query: "brave", Limit: 1}, http.StatusOK, 1},
		{"invalid json", "{not json", http.StatusBadRequest, 0},
		{"negative limit", SearchRequest{Query: "brave", Limit: -1}, http.StatusBadRequest, 0},
		{"b out of range", map[string]interface{}{"query": "brave", "b": 1.5}, http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, "POST", "/search", tt.body)
			require.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if tt.expectedFirst == 0 {
				return
			}
			var result services.SearchResult
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
			require.NotEmpty(t, result.Hits)
			assert.Equal(t, tt.expectedFirst, result.Hits[0].Document.ID)
		})
	}
}

func TestSearchHandler_EmptyCorpus(t *testing.T) {
	eng := setupTestEngine(t, "")
	router := setupTestRouter(eng, Options{})

	w := doRequest(router, "POST", "/search", SearchRequest{Query: "brave"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, ErrorCodeEmptyCorpus, decodeError(t, w).Code)
}

func TestIndexAndJobHandlers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.snap")
	eng := setupTestEngine(t, path)
	router := setupTestRouter(eng, Options{Loader: corpus.Static(testutil.Movies())})

	w := doRequest(router, "POST", "/index/rebuild", nil)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	var accepted struct {
		JobID string `json:"job_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &accepted))
	require.NotEmpty(t, accepted.JobID)

	job := testutil.WaitForJobCompletion(t, eng, accepted.JobID, testutil.DefaultJobPollingOptions())
	testutil.AssertJobCompleted(t, job, model.JobTypeRebuild)

	w = doRequest(router, "GET", "/jobs/"+accepted.JobID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, "GET", "/jobs/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, ErrorCodeJobNotFound, decodeError(t, w).Code)

	w = doRequest(router, "GET", "/jobs?status=completed", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Total)

	w = doRequest(router, "GET", "/jobs?status=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, "POST", "/index/snapshot", nil)
	assert.Equal(t, http.StatusAccepted, w.Code)

	w = doRequest(router, "POST", "/index/load", nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	stats, err := eng.Stats()
	require.NoError(t, err)
	assert.Equal(t, "snapshot", stats.Source)
}

func TestIndexHandlers_Unconfigured(t *testing.T) {
	eng := setupTestEngine(t, "")
	router := setupTestRouter(eng, Options{})

	w := doRequest(router, "POST", "/index/rebuild", nil)
	assert.Equal(t, http.StatusNotImplemented, w.Code)

	w = doRequest(router, "POST", "/index/snapshot", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = doRequest(router, "POST", "/index/load", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, ErrorCodePersistenceFailed, decodeError(t, w).Code)
}

func TestMetricsRoute(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	eng := setupTestEngine(t, "")
	require.NoError(t, eng.Build(testutil.Movies()))
	router := setupTestRouter(eng, Options{Metrics: m})

	doRequest(router, "GET", "/terms/brave/idf", nil)

	w := doRequest(router, "GET", "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `moviesearch_http_requests_total{method="GET",route="/terms/:term/idf",status="200"} 1`)
}

func TestAnalyticsHandler(t *testing.T) {
	eng := setupTestEngine(t, "")
	require.NoError(t, eng.Build(testutil.Movies()))
	router := setupTestRouter(eng, Options{})

	doRequest(router, "POST", "/search", SearchRequest{Query: "Brave heart"})
	doRequest(router, "POST", "/search", SearchRequest{Query: "brave HEART!"})
	doRequest(router, "POST", "/search", SearchRequest{Query: "zebra"})

	w := doRequest(router, "GET", "/analytics", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var dashboard model.AnalyticsDashboard
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dashboard))
	assert.Equal(t, 3, dashboard.TotalSearches)
	assert.Equal(t, 1, dashboard.ZeroResultSearches)
	assert.Equal(t, 3, dashboard.TotalDocuments)
	require.NotEmpty(t, dashboard.PopularSearches)
	assert.Equal(t, model.PopularSearch{Query: "brave heart", SearchCount: 2}, dashboard.PopularSearches[0])
}

func TestSearchHandler_MatchesEngine(t *testing.T) {
	eng := setupTestEngine(t, "")
	require.NoError(t, eng.Build(testutil.Movies()))

	testutil.RunSearchTests(t, eng, []testutil.SearchTestCase{
		{Name: "two tokens", Query: services.SearchQuery{QueryString: "brave heart"}, ExpectedTotal: 2, ExpectedIDs: []int{1, 2}},
		{Name: "single match", Query: services.SearchQuery{QueryString: "thief"}, ExpectedTotal: 1, ExpectedIDs: []int{3}},
		{Name: "limit keeps total", Query: services.SearchQuery{QueryString: "brave", Limit: 1}, ExpectedTotal: 2, ExpectedIDs: []int{1}},
		{Name: "no match", Query: services.SearchQuery{QueryString: "zebra"}, ExpectedTotal: 0, ExpectedIDs: []int{}},
	})
}
