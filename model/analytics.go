package model

import "time"

// SearchEvent represents a single search event for analytics tracking
type SearchEvent struct {
	Query        string        `json:"query"`
	Tokens       []string      `json:"tokens"`
	ResponseTime time.Duration `json:"response_time"`
	ResultCount  int           `json:"result_count"`
	Cached       bool          `json:"cached"`
	Generation   string        `json:"generation"`
	Timestamp    time.Time     `json:"timestamp"`
}

// PopularSearch represents aggregated data for a normalized query
type PopularSearch struct {
	Query       string `json:"query"` // normalized tokens joined by spaces
	SearchCount int    `json:"search_count"`
}

// ResponseTimeDistribution represents response time distribution buckets
type ResponseTimeDistribution struct {
	BucketUnder1ms   int     `json:"bucket_under_1ms"`
	Bucket1To5ms     int     `json:"bucket_1_5ms"`
	Bucket5To25ms    int     `json:"bucket_5_25ms"`
	Bucket25msPlus   int     `json:"bucket_25ms_plus"`
	PercentageUnder1 float64 `json:"percentage_under_1"`
	Percentage1To5   float64 `json:"percentage_1_5"`
	Percentage5To25  float64 `json:"percentage_5_25"`
	Percentage25Plus float64 `json:"percentage_25_plus"`
}

// SearchPerformanceHourly represents hourly search performance data
type SearchPerformanceHourly struct {
	Hour                int     `json:"hour"`
	SearchCount         int     `json:"search_count"`
	AvgResponseTimeMics int64   `json:"avg_response_time_us"`
	ZeroResultRate      float64 `json:"zero_result_rate"`
}

// AnalyticsDashboard summarizes recent search traffic.
type AnalyticsDashboard struct {
	TotalSearches         int     `json:"total_searches"` // last 24h
	SearchesChangePercent float64 `json:"searches_change_percent"`
	AvgResponseTimeMics   int64   `json:"avg_response_time_us"`
	ZeroResultSearches    int     `json:"zero_result_searches"`
	CacheHitRate          float64 `json:"cache_hit_rate"`
	TotalDocuments        int     `json:"total_documents"`
	Generation            string  `json:"generation"`

	SearchPerformance24h     []SearchPerformanceHourly `json:"search_performance_24h"`
	PopularSearches          []PopularSearch           `json:"popular_searches"`
	ZeroResultQueries        []PopularSearch           `json:"zero_result_queries"`
	ResponseTimeDistribution ResponseTimeDistribution  `json:"response_time_distribution"`
}
