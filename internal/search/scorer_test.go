package search

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/movie-search/index"
	internalErrors "github.com/gcbaptista/movie-search/internal/errors"
	"github.com/gcbaptista/movie-search/model"
)

// --- Test Helpers ---

func scenarioCorpus() []model.Document {
	return []model.Document{
		{ID: 1, Title: "Brave Heart", Description: "A warrior fights for freedom"},
		{ID: 2, Title: "Brave New World", Description: "A dystopia of control"},
	}
}

func newTestScorer(t *testing.T, docs []model.Document) *Scorer {
	t.Helper()
	idx := index.New(nil)
	require.NoError(t, idx.Build(docs))
	s, err := NewScorer(idx)
	require.NoError(t, err)
	return s
}

func hitIDs(hits []model.Hit) []int {
	ids := make([]int, 0, len(hits))
	for _, h := range hits {
		ids = append(ids, h.Document.ID)
	}
	return ids
}

// --- Test Cases ---

func TestNewScorer_NilIndex(t *testing.T) {
	_, err := NewScorer(nil)
	assert.Error(t, err)
}

func TestScorer_Scenario(t *testing.T) {
	s := newTestScorer(t, scenarioCorpus())

	t.Run("idf of a term in every document is zero", func(t *testing.T) {
		v, err := s.IDF("brave")
		require.NoError(t, err)
		assert.InDelta(t, 0.0, v, 1e-12)
	})

	t.Run("idf of a rarer term", func(t *testing.T) {
		v, err := s.IDF("heart")
		require.NoError(t, err)
		assert.InDelta(t, math.Log(3.0/2.0), v, 1e-12)
	})

	t.Run("tfidf", func(t *testing.T) {
		v, err := s.TFIDF(1, "heart")
		require.NoError(t, err)
		assert.InDelta(t, math.Log(1.5), v, 1e-12)

		v, err = s.TFIDF(2, "heart")
		require.NoError(t, err)
		assert.Equal(t, 0.0, v)
	})

	t.Run("bm25 idf", func(t *testing.T) {
		v, err := s.BM25IDF("brave")
		require.NoError(t, err)
		assert.InDelta(t, math.Log(1.2), v, 1e-12)

		v, err = s.BM25IDF("heart")
		require.NoError(t, err)
		assert.InDelta(t, math.Log(2), v, 1e-12)
	})

	t.Run("bm25 tf at average length", func(t *testing.T) {
		// both documents have 5 tokens, so the length norm is 1
		v, err := s.BM25TF(1, "brave", DefaultK1, DefaultB)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, v, 1e-12)

		v, err = s.BM25TF(2, "heart", DefaultK1, DefaultB)
		require.NoError(t, err)
		assert.Equal(t, 0.0, v)
	})

	t.Run("bm25", func(t *testing.T) {
		v, err := s.BM25(1, "heart", DefaultK1, DefaultB)
		require.NoError(t, err)
		assert.InDelta(t, math.Log(2), v, 1e-12)
	})

	t.Run("single shared term ties by id", func(t *testing.T) {
		r, err := s.Search("brave", DefaultParams())
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2}, hitIDs(r.Hits))
		assert.Equal(t, r.Hits[0].Score, r.Hits[1].Score)
		assert.InDelta(t, math.Log(1.2), r.Hits[0].Score, 1e-12)
	})

	t.Run("additional tokens separate the totals", func(t *testing.T) {
		r, err := s.Search("brave world control", DefaultParams())
		require.NoError(t, err)
		assert.Equal(t, []int{2, 1}, hitIDs(r.Hits))
		assert.InDelta(t, math.Log(1.2)+2*math.Log(2), r.Hits[0].Score, 1e-12)
		assert.InDelta(t, math.Log(1.2), r.Hits[1].Score, 1e-12)
		assert.Equal(t, []string{"brave", "world", "control"}, r.Tokens)
	})
}

func TestScorer_Errors(t *testing.T) {
	s := newTestScorer(t, scenarioCorpus())

	tests := []struct {
		name    string
		call    func() error
		wantErr error
	}{
		{"idf unknown term", func() error { _, err := s.IDF("nonexistentword"); return err }, internalErrors.ErrUnknownTerm},
		{"idf two tokens", func() error { _, err := s.IDF("brave heart"); return err }, internalErrors.ErrInvalidQuery},
		{"idf stopword", func() error { _, err := s.IDF("the"); return err }, internalErrors.ErrInvalidQuery},
		{"bm25 idf unknown term", func() error { _, err := s.BM25IDF("zebra"); return err }, internalErrors.ErrUnknownTerm},
		{"tfidf unknown document", func() error { _, err := s.TFIDF(9, "brave"); return err }, internalErrors.ErrUnknownDocument},
		{"tfidf unknown term", func() error { _, err := s.TFIDF(1, "zebra"); return err }, internalErrors.ErrUnknownTerm},
		{"tfidf invalid query first", func() error { _, err := s.TFIDF(9, ""); return err }, internalErrors.ErrInvalidQuery},
		{"bm25 tf unknown document", func() error {
			_, err := s.BM25TF(9, "brave", DefaultK1, DefaultB)
			return err
		}, internalErrors.ErrUnknownDocument},
		{"bm25 tf negative k1", func() error {
			_, err := s.BM25TF(1, "brave", -1, DefaultB)
			return err
		}, internalErrors.ErrInvalidInput},
		{"bm25 unknown term", func() error {
			_, err := s.BM25(1, "zebra", DefaultK1, DefaultB)
			return err
		}, internalErrors.ErrUnknownTerm},
		{"search b out of range", func() error {
			_, err := s.Search("brave", Params{K1: 1.5, B: 2})
			return err
		}, internalErrors.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestScorer_UnknownTermScenario(t *testing.T) {
	s := newTestScorer(t, scenarioCorpus())

	ids, err := s.Index().DocumentsFor("nonexistentword")
	require.NoError(t, err)
	assert.Equal(t, []int{}, ids)

	_, err = s.IDF("nonexistentword")
	assert.True(t, errors.Is(err, internalErrors.ErrUnknownTerm))

	// search tolerates unknown tokens
	r, err := s.Search("nonexistentword heart", DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, []int{1}, hitIDs(r.Hits))

	r, err = s.Search("nonexistentword", DefaultParams())
	require.NoError(t, err)
	assert.Empty(t, r.Hits)
	assert.Equal(t, 0, r.Total)
}

func TestScorer_EmptyCorpus(t *testing.T) {
	s := newTestScorer(t, []model.Document{})

	ids, err := s.Index().DocumentsFor("brave")
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = s.BM25IDF("brave")
	assert.True(t, errors.Is(err, internalErrors.ErrEmptyCorpus))

	_, err = s.BM25TF(1, "brave", DefaultK1, DefaultB)
	assert.True(t, errors.Is(err, internalErrors.ErrEmptyCorpus))

	_, err = s.BM25(1, "brave", DefaultK1, DefaultB)
	assert.True(t, errors.Is(err, internalErrors.ErrEmptyCorpus))

	_, err = s.Search("brave", DefaultParams())
	assert.True(t, errors.Is(err, internalErrors.ErrEmptyCorpus))
}

func TestScorer_StopwordOnlyCorpus(t *testing.T) {
	s := newTestScorer(t, []model.Document{{ID: 1, Title: "The", Description: "of and"}})

	r, err := s.Search("zebra", DefaultParams())
	require.NoError(t, err)
	assert.Empty(t, r.Hits)
	assert.Equal(t, 0, r.Total)

	_, err = s.IDF("zebra")
	assert.True(t, errors.Is(err, internalErrors.ErrUnknownTerm))

	_, err = s.BM25IDF("zebra")
	assert.True(t, errors.Is(err, internalErrors.ErrUnknownTerm))

	tf, err := s.BM25TF(1, "zebra", DefaultK1, DefaultB)
	require.NoError(t, err)
	assert.Equal(t, 0.0, tf)
}

func TestScorer_IDFMonotonicity(t *testing.T) {
	s := newTestScorer(t, []model.Document{
		{ID: 1, Title: "alpha beta gamma"},
		{ID: 2, Title: "beta gamma"},
		{ID: 3, Title: "gamma"},
		{ID: 4, Title: "delta"},
	})

	terms := []string{"alpha", "beta", "gamma"} // df 1, 2, 3
	var prevIDF, prevBM25IDF float64
	for i, term := range terms {
		v, err := s.IDF(term)
		require.NoError(t, err)
		w, err := s.BM25IDF(term)
		require.NoError(t, err)
		if i > 0 {
			assert.Greater(t, prevIDF, v, "IDF must fall as df grows (%s)", term)
			assert.Greater(t, prevBM25IDF, w, "BM25-IDF must fall as df grows (%s)", term)
		}
		prevIDF, prevBM25IDF = v, w
	}
}

func TestScorer_BM25TFSaturation(t *testing.T) {
	prev := 0.0
	for _, n := range []int{1, 2, 5, 20, 100, 1000} {
		s := newTestScorer(t, []model.Document{
			{ID: 1, Title: strings.Repeat("run ", n)},
			{ID: 2, Title: "walk"},
		})
		v, err := s.BM25TF(1, "run", DefaultK1, DefaultB)
		require.NoError(t, err)
		assert.Less(t, v, DefaultK1+1, "tf=%d", n)
		assert.Greater(t, v, prev, "tf=%d", n)
		prev = v
	}
	assert.InDelta(t, DefaultK1+1, prev, 0.01)
}

func TestScorer_LengthNormalization(t *testing.T) {
	s := newTestScorer(t, []model.Document{
		{ID: 1, Title: "shark"},
		{ID: 2, Title: "shark ocean boat captain island summer"},
	})

	short, err := s.BM25TF(1, "shark", DefaultK1, DefaultB)
	require.NoError(t, err)
	long, err := s.BM25TF(2, "shark", DefaultK1, DefaultB)
	require.NoError(t, err)
	assert.Greater(t, short, long)

	// b = 0 disables length normalization
	short, err = s.BM25TF(1, "shark", DefaultK1, 0)
	require.NoError(t, err)
	long, err = s.BM25TF(2, "shark", DefaultK1, 0)
	require.NoError(t, err)
	assert.Equal(t, short, long)
}

func TestScorer_SearchRankingAndLimit(t *testing.T) {
	docs := make([]model.Document, 0, 12)
	for i := 1; i <= 12; i++ {
		docs = append(docs, model.Document{
			ID:          i,
			Title:       fmt.Sprintf("space %s", strings.Repeat("alien ", i%4)),
			Description: strings.Repeat("ship ", i%3),
		})
	}
	s := newTestScorer(t, docs)

	r, err := s.Search("space alien ship", Params{K1: DefaultK1, B: DefaultB, Limit: 100})
	require.NoError(t, err)
	require.Len(t, r.Hits, 12)
	assert.Equal(t, 12, r.Total)
	for i := 1; i < len(r.Hits); i++ {
		prev, cur := r.Hits[i-1], r.Hits[i]
		assert.GreaterOrEqual(t, prev.Score, cur.Score)
		if prev.Score == cur.Score {
			assert.Less(t, prev.Document.ID, cur.Document.ID)
		}
	}

	limited, err := s.Search("space alien ship", Params{K1: DefaultK1, B: DefaultB, Limit: 3})
	require.NoError(t, err)
	assert.Len(t, limited.Hits, 3)
	assert.Equal(t, 12, limited.Total)
	assert.Equal(t, hitIDs(r.Hits[:3]), hitIDs(limited.Hits))

	defaulted, err := s.Search("space", Params{K1: DefaultK1, B: DefaultB})
	require.NoError(t, err)
	assert.Len(t, defaulted.Hits, DefaultLimit)
}

func TestScorer_SearchRepeatedTokens(t *testing.T) {
	s := newTestScorer(t, scenarioCorpus())

	once, err := s.Search("heart", DefaultParams())
	require.NoError(t, err)
	twice, err := s.Search("heart hearts", DefaultParams())
	require.NoError(t, err)

	require.Len(t, once.Hits, 1)
	require.Len(t, twice.Hits, 1)
	assert.InDelta(t, 2*once.Hits[0].Score, twice.Hits[0].Score, 1e-12)
	assert.Equal(t, []string{"heart", "heart"}, twice.Tokens)
}

func TestScorer_SearchCustomParams(t *testing.T) {
	s := newTestScorer(t, scenarioCorpus())

	r, err := s.Search("heart", Params{K1: 0, B: DefaultB})
	require.NoError(t, err)
	require.Len(t, r.Hits, 1)
	// k1 = 0 reduces BM25-TF to 1 for any matching document
	assert.InDelta(t, math.Log(2), r.Hits[0].Score, 1e-12)
}

func TestParams_Validate(t *testing.T) {
	tests := []struct {
		name    string
		params  Params
		wantErr bool
	}{
		{"defaults", DefaultParams(), false},
		{"zero k1", Params{K1: 0, B: 0.5}, false},
		{"b bounds", Params{K1: 1, B: 1}, false},
		{"negative k1", Params{K1: -0.1, B: 0.5}, true},
		{"infinite k1", Params{K1: math.Inf(1), B: 0.5}, true},
		{"nan b", Params{K1: 1, B: math.NaN()}, true},
		{"negative b", Params{K1: 1, B: -0.5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if tt.wantErr {
				assert.True(t, errors.Is(err, internalErrors.ErrInvalidInput))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
