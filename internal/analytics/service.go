// Package analytics keeps a bounded in-memory log of searches and
// summarizes it for the dashboard endpoint.
package analytics

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gcbaptista/movie-search/model"
)

const (
	maxEventsToKeep = 10000 // Keep last 10k events for performance
	topQueries      = 5
)

// StatsProvider reports the published index.
type StatsProvider interface {
	Stats() (model.IndexStats, error)
}

// Service implements analytics tracking and reporting
type Service struct {
	mutex  sync.RWMutex
	events []model.SearchEvent
	index  StatsProvider
	now    func() time.Time
}

// NewService creates a new analytics service. index may be nil.
func NewService(index StatsProvider) *Service {
	return &Service{
		events: make([]model.SearchEvent, 0),
		index:  index,
		now:    time.Now,
	}
}

// TrackSearchEvent records a new search event
func (s *Service) TrackSearchEvent(event model.SearchEvent) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	s.events = append(s.events, event)

	// Keep only the latest events to prevent unbounded growth
	if len(s.events) > maxEventsToKeep {
		s.events = s.events[len(s.events)-maxEventsToKeep:]
	}
}

// GetDashboardData returns complete analytics dashboard data
func (s *Service) GetDashboardData() model.AnalyticsDashboard {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	now := s.now()
	yesterday := now.Add(-24 * time.Hour)
	last24hEvents := s.filterEventsByTimeRange(yesterday, now.Add(time.Nanosecond))
	prev24hEvents := s.filterEventsByTimeRange(yesterday.Add(-24*time.Hour), yesterday.Add(time.Nanosecond))

	dashboard := model.AnalyticsDashboard{
		TotalSearches:            len(last24hEvents),
		SearchesChangePercent:    calculateChangePercent(len(last24hEvents), len(prev24hEvents)),
		AvgResponseTimeMics:      calculateAvgResponseTime(last24hEvents),
		SearchPerformance24h:     getHourlyPerformance(last24hEvents),
		PopularSearches:          getPopularSearches(last24hEvents, func(model.SearchEvent) bool { return true }),
		ZeroResultQueries:        getPopularSearches(last24hEvents, func(e model.SearchEvent) bool { return e.ResultCount == 0 }),
		ResponseTimeDistribution: getResponseTimeDistribution(last24hEvents),
	}

	cached := 0
	for _, e := range last24hEvents {
		if e.ResultCount == 0 {
			dashboard.ZeroResultSearches++
		}
		if e.Cached {
			cached++
		}
	}
	if len(last24hEvents) > 0 {
		dashboard.CacheHitRate = float64(cached) / float64(len(last24hEvents))
	}

	if s.index != nil {
		if stats, err := s.index.Stats(); err == nil {
			dashboard.TotalDocuments = stats.DocumentCount
			dashboard.Generation = stats.Generation
		}
	}

	return dashboard
}

// filterEventsByTimeRange returns events in [start, end)
func (s *Service) filterEventsByTimeRange(start, end time.Time) []model.SearchEvent {
	var filtered []model.SearchEvent
	for _, event := range s.events {
		if !event.Timestamp.Before(start) && event.Timestamp.Before(end) {
			filtered = append(filtered, event)
		}
	}
	return filtered
}

// calculateChangePercent calculates percentage change between current and previous values
func calculateChangePercent(current, previous int) float64 {
	if previous == 0 {
		if current > 0 {
			return 100.0
		}
		return 0.0
	}
	return float64(current-previous) / float64(previous) * 100.0
}

// calculateAvgResponseTime returns the mean response time in microseconds
func calculateAvgResponseTime(events []model.SearchEvent) int64 {
	if len(events) == 0 {
		return 0
	}

	var total time.Duration
	for _, event := range events {
		total += event.ResponseTime
	}
	return (total / time.Duration(len(events))).Microseconds()
}

func getHourlyPerformance(events []model.SearchEvent) []model.SearchPerformanceHourly {
	hourlyData := make(map[int][]model.SearchEvent)
	for _, event := range events {
		hour := event.Timestamp.Hour()
		hourlyData[hour] = append(hourlyData[hour], event)
	}

	performance := make([]model.SearchPerformanceHourly, 0, 24)
	for hour := 0; hour < 24; hour++ {
		bucket := hourlyData[hour]
		p := model.SearchPerformanceHourly{
			Hour:                hour,
			SearchCount:         len(bucket),
			AvgResponseTimeMics: calculateAvgResponseTime(bucket),
		}
		if len(bucket) > 0 {
			zero := 0
			for _, e := range bucket {
				if e.ResultCount == 0 {
					zero++
				}
			}
			p.ZeroResultRate = float64(zero) / float64(len(bucket))
		}
		performance = append(performance, p)
	}
	return performance
}

// getPopularSearches counts normalized queries among events matching keep
// and returns the top ones, ties broken alphabetically.
func getPopularSearches(events []model.SearchEvent, keep func(model.SearchEvent) bool) []model.PopularSearch {
	queryCounts := make(map[string]int)
	for _, event := range events {
		if !keep(event) || len(event.Tokens) == 0 {
			continue
		}
		queryCounts[strings.Join(event.Tokens, " ")]++
	}

	popular := make([]model.PopularSearch, 0, len(queryCounts))
	for query, count := range queryCounts {
		popular = append(popular, model.PopularSearch{Query: query, SearchCount: count})
	}
	sort.Slice(popular, func(i, j int) bool {
		if popular[i].SearchCount != popular[j].SearchCount {
			return popular[i].SearchCount > popular[j].SearchCount
		}
		return popular[i].Query < popular[j].Query
	})

	if len(popular) > topQueries {
		popular = popular[:topQueries]
	}
	return popular
}

func getResponseTimeDistribution(events []model.SearchEvent) model.ResponseTimeDistribution {
	dist := model.ResponseTimeDistribution{}
	total := len(events)
	if total == 0 {
		return dist
	}

	for _, event := range events {
		switch rt := event.ResponseTime; {
		case rt < time.Millisecond:
			dist.BucketUnder1ms++
		case rt < 5*time.Millisecond:
			dist.Bucket1To5ms++
		case rt < 25*time.Millisecond:
			dist.Bucket5To25ms++
		default:
			dist.Bucket25msPlus++
		}
	}

	dist.PercentageUnder1 = float64(dist.BucketUnder1ms) / float64(total) * 100
	dist.Percentage1To5 = float64(dist.Bucket1To5ms) / float64(total) * 100
	dist.Percentage5To25 = float64(dist.Bucket5To25ms) / float64(total) * 100
	dist.Percentage25Plus = float64(dist.Bucket25msPlus) / float64(total) * 100

	return dist
}
