package services

import (
	"context"

	"github.com/gcbaptista/movie-search/internal/corpus"
	"github.com/gcbaptista/movie-search/model"
)

// HitResult represents a single document in the search results.
type HitResult struct {
	Document model.Document `json:"document"`
	Score    float64        `json:"score"` // accumulated BM25 over the query tokens
}

type SearchResult struct {
	Hits       []HitResult `json:"hits"`
	Total      int         `json:"total"` // documents matching at least one token, before the limit
	Limit      int         `json:"limit"`
	Tokens     []string    `json:"tokens"`
	Generation string      `json:"generation"`
	Cached     bool        `json:"cached"`
	Took       int64       `json:"took"`     // milliseconds
	QueryId    string      `json:"query_id"` // unique UUID for this search query
}

// SearchQuery is a ranked search request. Nil K1/B fall back to the
// configured defaults, a non-positive Limit to the default limit.
type SearchQuery struct {
	QueryString string   `json:"query"`
	Limit       int      `json:"limit,omitempty"`
	K1          *float64 `json:"k1,omitempty"`
	B           *float64 `json:"b,omitempty"`
}

// Searcher defines ranked search over the current index.
type Searcher interface {
	Search(ctx context.Context, query SearchQuery) (SearchResult, error)
}

// TermStatistics defines the single-term accessors over the current index.
type TermStatistics interface {
	DocumentsFor(term string) ([]int, error)
	TermFrequency(docID int, term string) (int, error)
	IDF(term string) (float64, error)
	TFIDF(docID int, term string) (float64, error)
	BM25IDF(term string) (float64, error)
	BM25TF(docID int, term string, k1, b *float64) (float64, error)
}

// IndexManager manages the lifecycle of the published index.
type IndexManager interface {
	Build(docs []model.Document) error
	Rebuild(ctx context.Context, loader corpus.Loader) error
	SaveSnapshot() error
	LoadSnapshot() error
	Stats() (model.IndexStats, error)
}

// JobManager defines operations for managing background jobs
type JobManager interface {
	GetJob(jobID string) (*model.Job, error)
	ListJobs(status *model.JobStatus) []*model.Job
}

// Engine is everything the HTTP API and CLI need.
type Engine interface {
	Searcher
	TermStatistics
	IndexManager
	// RebuildAsync starts a background rebuild and returns its job ID.
	RebuildAsync(loader corpus.Loader) (string, error)
	// SnapshotAsync starts a background snapshot save and returns its job ID.
	SnapshotAsync() (string, error)
	JobManager
}
