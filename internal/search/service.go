package search

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/gcbaptista/movie-search/index"
	"github.com/gcbaptista/movie-search/internal/cache"
	"github.com/gcbaptista/movie-search/internal/metrics"
	"github.com/gcbaptista/movie-search/services"
)

// Options configure a Service. Zero values fall back to DefaultParams, no
// upper limit, no caching and no metrics.
type Options struct {
	Defaults Params
	MaxLimit int
	Cache    *cache.QueryCache
	Metrics  *metrics.Metrics
	Logger   *logrus.Entry
}

// Service implements ranked search for one published index.
// It fulfills the services.Searcher interface.
type Service struct {
	scorer     *Scorer
	generation string
	defaults   Params
	maxLimit   int
	cache      *cache.QueryCache
	metrics    *metrics.Metrics
	logger     *logrus.Entry
}

// NewService creates a search Service over idx. generation identifies the
// index in cache keys and results.
func NewService(idx *index.InvertedIndex, generation string, opts Options) (*Service, error) {
	scorer, err := NewScorer(idx)
	if err != nil {
		return nil, err
	}
	if generation == "" {
		return nil, fmt.Errorf("generation cannot be empty")
	}

	defaults := opts.Defaults
	if defaults == (Params{}) {
		defaults = DefaultParams()
	}
	if defaults.Limit <= 0 {
		defaults.Limit = DefaultLimit
	}
	if err := defaults.Validate(); err != nil {
		return nil, fmt.Errorf("invalid default search parameters: %w", err)
	}

	qc := opts.Cache
	if qc == nil {
		qc = cache.NewNop()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.WithField("component", "search")
	}

	return &Service{
		scorer:     scorer,
		generation: generation,
		defaults:   defaults,
		maxLimit:   opts.MaxLimit,
		cache:      qc,
		metrics:    opts.Metrics,
		logger:     logger,
	}, nil
}

// Scorer exposes the single-term statistics of the index.
func (s *Service) Scorer() *Scorer {
	return s.scorer
}

// Generation returns the generation this service searches.
func (s *Service) Generation() string {
	return s.generation
}

// Defaults returns the parameters used when a query leaves them unset.
func (s *Service) Defaults() Params {
	return s.defaults
}

// resolve fills unset query parameters from the defaults and clamps the
// limit to the configured maximum.
func (s *Service) resolve(query services.SearchQuery) Params {
	p := s.defaults
	if query.K1 != nil {
		p.K1 = *query.K1
	}
	if query.B != nil {
		p.B = *query.B
	}
	if query.Limit > 0 {
		p.Limit = query.Limit
	}
	if s.maxLimit > 0 && p.Limit > s.maxLimit {
		p.Limit = s.maxLimit
	}
	return p
}

// Search performs a ranked BM25 search.
func (s *Service) Search(ctx context.Context, query services.SearchQuery) (services.SearchResult, error) {
	startTime := time.Now()
	params := s.resolve(query)

	if err := params.Validate(); err != nil {
		s.metrics.ObserveSearch(metrics.OutcomeError, "none", time.Since(startTime), 0)
		return services.SearchResult{}, err
	}

	tokens := s.scorer.Index().Normalizer().Normalize(query.QueryString)
	key := cache.Key(s.generation, tokens, params.Limit, params.K1, params.B)

	result, cached, err := s.cache.GetOrCompute(ctx, key, func() (services.SearchResult, error) {
		ranking, err := s.scorer.Search(query.QueryString, params)
		if err != nil {
			return services.SearchResult{}, err
		}
		hits := make([]services.HitResult, 0, len(ranking.Hits))
		for _, h := range ranking.Hits {
			hits = append(hits, services.HitResult{Document: h.Document, Score: h.Score})
		}
		return services.SearchResult{
			Hits:       hits,
			Total:      ranking.Total,
			Limit:      params.Limit,
			Tokens:     ranking.Tokens,
			Generation: s.generation,
		}, nil
	})

	cacheStatus := "miss"
	if cached {
		cacheStatus = "hit"
	}
	if err != nil {
		s.metrics.ObserveSearch(metrics.OutcomeError, cacheStatus, time.Since(startTime), 0)
		return services.SearchResult{}, err
	}

	result.Cached = cached
	result.QueryId = uuid.New().String()
	result.Took = time.Since(startTime).Milliseconds()

	outcome := metrics.OutcomeOK
	if len(result.Hits) == 0 {
		outcome = metrics.OutcomeZeroResult
	}
	s.metrics.ObserveSearch(outcome, cacheStatus, time.Since(startTime), len(result.Hits))

	s.logger.WithFields(logrus.Fields{
		"query_id": result.QueryId,
		"tokens":   len(tokens),
		"hits":     len(result.Hits),
		"total":    result.Total,
		"cached":   cached,
	}).Debug("search completed")

	return result, nil
}
