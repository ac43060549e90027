package search

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/movie-search/index"
	"github.com/gcbaptista/movie-search/internal/cache"
	internalErrors "github.com/gcbaptista/movie-search/internal/errors"
	"github.com/gcbaptista/movie-search/internal/logging"
	"github.com/gcbaptista/movie-search/internal/metrics"
	"github.com/gcbaptista/movie-search/model"
	"github.com/gcbaptista/movie-search/services"
)

type mapStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *mapStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, cache.ErrMiss
	}
	return v, nil
}

func (m *mapStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func setupTestSearchService(t *testing.T, docs []model.Document, opts Options) *Service {
	t.Helper()
	idx := index.New(nil)
	require.NoError(t, idx.Build(docs))
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	svc, err := NewService(idx, "gen-test", opts)
	require.NoError(t, err)
	return svc
}

func float64Ptr(v float64) *float64 { return &v }

func TestNewService(t *testing.T) {
	idx := index.New(nil)
	require.NoError(t, idx.Build(scenarioCorpus()))

	t.Run("valid initialization", func(t *testing.T) {
		svc, err := NewService(idx, "gen", Options{})
		require.NoError(t, err)
		assert.Equal(t, DefaultParams(), svc.Defaults())
		assert.Equal(t, "gen", svc.Generation())
	})

	t.Run("nil inverted index", func(t *testing.T) {
		_, err := NewService(nil, "gen", Options{})
		assert.Error(t, err)
	})

	t.Run("empty generation", func(t *testing.T) {
		_, err := NewService(idx, "", Options{})
		assert.Error(t, err)
	})

	t.Run("invalid defaults", func(t *testing.T) {
		_, err := NewService(idx, "gen", Options{Defaults: Params{K1: 1, B: 3, Limit: 5}})
		assert.Error(t, err)
	})
}

func TestService_Search(t *testing.T) {
	svc := setupTestSearchService(t, scenarioCorpus(), Options{})

	result, err := svc.Search(context.Background(), services.SearchQuery{QueryString: "brave heart"})
	require.NoError(t, err)
	require.Len(t, result.Hits, 2)
	assert.Equal(t, 1, result.Hits[0].Document.ID)
	assert.Equal(t, "Brave Heart", result.Hits[0].Document.Title)
	assert.Greater(t, result.Hits[0].Score, result.Hits[1].Score)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, DefaultLimit, result.Limit)
	assert.Equal(t, []string{"brave", "heart"}, result.Tokens)
	assert.Equal(t, "gen-test", result.Generation)
	assert.NotEmpty(t, result.QueryId)
	assert.False(t, result.Cached)
}

func TestService_SearchParameters(t *testing.T) {
	docs := []model.Document{
		{ID: 1, Title: "Jaws", Description: "A shark terrorizes a beach town"},
		{ID: 2, Title: "Shark Tale", Description: "A shark and a fish in a reef city"},
		{ID: 3, Title: "Deep Blue Sea", Description: "Scientists fight a smart shark"},
		{ID: 4, Title: "The Meg", Description: "A giant prehistoric shark"},
	}
	svc := setupTestSearchService(t, docs, Options{MaxLimit: 3})

	t.Run("limit clamps to max", func(t *testing.T) {
		r, err := svc.Search(context.Background(), services.SearchQuery{QueryString: "shark", Limit: 50})
		require.NoError(t, err)
		assert.Len(t, r.Hits, 3)
		assert.Equal(t, 3, r.Limit)
		assert.Equal(t, 4, r.Total)
	})

	t.Run("explicit limit", func(t *testing.T) {
		r, err := svc.Search(context.Background(), services.SearchQuery{QueryString: "shark", Limit: 1})
		require.NoError(t, err)
		assert.Len(t, r.Hits, 1)
	})

	t.Run("k1 and b overrides change scores", func(t *testing.T) {
		base, err := svc.Search(context.Background(), services.SearchQuery{QueryString: "shark"})
		require.NoError(t, err)
		tuned, err := svc.Search(context.Background(), services.SearchQuery{
			QueryString: "shark",
			K1:          float64Ptr(0.5),
			B:           float64Ptr(0),
		})
		require.NoError(t, err)
		assert.NotEqual(t, base.Hits[0].Score, tuned.Hits[0].Score)
	})

	t.Run("invalid b", func(t *testing.T) {
		_, err := svc.Search(context.Background(), services.SearchQuery{QueryString: "shark", B: float64Ptr(-1)})
		assert.True(t, errors.Is(err, internalErrors.ErrInvalidInput))
	})

	t.Run("stopword-only query", func(t *testing.T) {
		r, err := svc.Search(context.Background(), services.SearchQuery{QueryString: "the a of"})
		require.NoError(t, err)
		assert.Empty(t, r.Hits)
		assert.Empty(t, r.Tokens)
	})
}

func TestService_EmptyCorpus(t *testing.T) {
	svc := setupTestSearchService(t, nil, Options{})
	_, err := svc.Search(context.Background(), services.SearchQuery{QueryString: "brave"})
	assert.True(t, errors.Is(err, internalErrors.ErrEmptyCorpus))
}

func TestService_CacheAndMetrics(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	store := &mapStore{data: make(map[string][]byte)}
	qc := cache.New(store, time.Minute, logging.Discard(), m)
	svc := setupTestSearchService(t, scenarioCorpus(), Options{Cache: qc, Metrics: m})

	first, err := svc.Search(context.Background(), services.SearchQuery{QueryString: "Brave heart"})
	require.NoError(t, err)
	assert.False(t, first.Cached)

	// same tokens after normalization
	second, err := svc.Search(context.Background(), services.SearchQuery{QueryString: "brave, HEART!"})
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Hits, second.Hits)
	assert.NotEqual(t, first.QueryId, second.QueryId)

	_, err = svc.Search(context.Background(), services.SearchQuery{QueryString: "zebra"})
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHitsTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheMissesTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SearchQueriesTotal.WithLabelValues(metrics.OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchQueriesTotal.WithLabelValues(metrics.OutcomeZeroResult)))
	assert.Len(t, store.data, 2)
}
