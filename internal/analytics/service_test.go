package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/movie-search/model"
)

type fixedStats model.IndexStats

func (f fixedStats) Stats() (model.IndexStats, error) {
	return model.IndexStats(f), nil
}

func newTestService(now time.Time) *Service {
	s := NewService(fixedStats{Generation: "gen-1", DocumentCount: 42})
	s.now = func() time.Time { return now }
	return s
}

func TestGetDashboardData_Empty(t *testing.T) {
	s := newTestService(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	d := s.GetDashboardData()

	assert.Equal(t, 0, d.TotalSearches)
	assert.Equal(t, 0.0, d.CacheHitRate)
	assert.Equal(t, 42, d.TotalDocuments)
	assert.Equal(t, "gen-1", d.Generation)
	assert.Len(t, d.SearchPerformance24h, 24)
	assert.Empty(t, d.PopularSearches)
}

func TestGetDashboardData(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := newTestService(now)

	track := func(tokens []string, hits int, cached bool, took time.Duration, at time.Time) {
		s.TrackSearchEvent(model.SearchEvent{
			Query:        "raw",
			Tokens:       tokens,
			ResultCount:  hits,
			Cached:       cached,
			ResponseTime: took,
			Timestamp:    at,
		})
	}

	track([]string{"brave", "heart"}, 2, false, 500*time.Microsecond, now.Add(-time.Hour))
	track([]string{"brave", "heart"}, 2, true, 200*time.Microsecond, now.Add(-30*time.Minute))
	track([]string{"shark"}, 4, false, 3*time.Millisecond, now.Add(-10*time.Minute))
	track([]string{"zebra"}, 0, false, 30*time.Millisecond, now.Add(-5*time.Minute))
	track(nil, 0, false, time.Microsecond, now.Add(-time.Minute))
	// previous day
	track([]string{"heat"}, 1, false, time.Millisecond, now.Add(-30*time.Hour))
	// too old to count anywhere
	track([]string{"old"}, 1, false, time.Millisecond, now.Add(-72*time.Hour))

	d := s.GetDashboardData()
	assert.Equal(t, 5, d.TotalSearches)
	assert.Equal(t, 400.0, d.SearchesChangePercent)
	assert.Equal(t, 2, d.ZeroResultSearches)
	assert.InDelta(t, 0.2, d.CacheHitRate, 1e-9)

	require.Len(t, d.PopularSearches, 3, "empty token lists are not counted")
	assert.Equal(t, model.PopularSearch{Query: "brave heart", SearchCount: 2}, d.PopularSearches[0])
	assert.Equal(t, "shark", d.PopularSearches[1].Query)
	assert.Equal(t, "zebra", d.PopularSearches[2].Query)

	require.Len(t, d.ZeroResultQueries, 1)
	assert.Equal(t, "zebra", d.ZeroResultQueries[0].Query)

	dist := d.ResponseTimeDistribution
	assert.Equal(t, 3, dist.BucketUnder1ms)
	assert.Equal(t, 1, dist.Bucket1To5ms)
	assert.Equal(t, 0, dist.Bucket5To25ms)
	assert.Equal(t, 1, dist.Bucket25msPlus)
	assert.InDelta(t, 60.0, dist.PercentageUnder1, 1e-9)

	assert.Equal(t, 5, d.SearchPerformance24h[11].SearchCount)
	assert.InDelta(t, 0.4, d.SearchPerformance24h[11].ZeroResultRate, 1e-9)
	assert.Equal(t, 0, d.SearchPerformance24h[12].SearchCount)
}

func TestTrackSearchEvent_Bounded(t *testing.T) {
	s := newTestService(time.Now())
	for i := 0; i < maxEventsToKeep+10; i++ {
		s.TrackSearchEvent(model.SearchEvent{Tokens: []string{"x"}})
	}
	assert.Len(t, s.events, maxEventsToKeep)
}
