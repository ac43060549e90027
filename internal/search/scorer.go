package search

import (
	"fmt"
	"math"
	"sort"

	"github.com/gcbaptista/movie-search/index"
	"github.com/gcbaptista/movie-search/internal/errors"
	"github.com/gcbaptista/movie-search/model"
)

// Default BM25 parameters and result limit.
const (
	DefaultK1    = 1.5 // term frequency saturation
	DefaultB     = 0.75
	DefaultLimit = 5
)

// Params are the per-call BM25 knobs.
type Params struct {
	K1    float64
	B     float64
	Limit int
}

// DefaultParams returns k1=1.5, b=0.75 and a limit of 5.
func DefaultParams() Params {
	return Params{K1: DefaultK1, B: DefaultB, Limit: DefaultLimit}
}

// Validate rejects parameters that make BM25 meaningless.
func (p Params) Validate() error {
	if math.IsNaN(p.K1) || math.IsInf(p.K1, 0) || p.K1 < 0 {
		return errors.NewValidationError("k1", fmt.Sprintf("k1 must be a finite non-negative number, got %v", p.K1))
	}
	if math.IsNaN(p.B) || p.B < 0 || p.B > 1 {
		return errors.NewValidationError("b", fmt.Sprintf("b must be between 0 and 1, got %v", p.B))
	}
	return nil
}

// Scorer computes TF-IDF and BM25 statistics over a built index.
// Every method is a pure read.
type Scorer struct {
	idx *index.InvertedIndex
}

// NewScorer creates a Scorer reading from idx.
func NewScorer(idx *index.InvertedIndex) (*Scorer, error) {
	if idx == nil {
		return nil, fmt.Errorf("inverted index cannot be nil")
	}
	return &Scorer{idx: idx}, nil
}

// Index returns the index the scorer reads from.
func (s *Scorer) Index() *index.InvertedIndex {
	return s.idx
}

// token normalizes term and looks up its document frequency.
func (s *Scorer) token(term string) (string, int, error) {
	token, err := s.idx.Normalizer().NormalizeSingle(term)
	if err != nil {
		return "", 0, err
	}
	df, ok := s.idx.DocumentFrequency(token)
	if !ok {
		return "", 0, errors.NewUnknownTermError(term, token)
	}
	return token, df, nil
}

// IDF = ln((N + 1) / (df + 1)).
func (s *Scorer) IDF(term string) (float64, error) {
	_, df, err := s.token(term)
	if err != nil {
		return 0, err
	}
	return idf(s.idx.TotalDocuments(), df), nil
}

// TFIDF = tf(doc, term) * IDF(term).
func (s *Scorer) TFIDF(docID int, term string) (float64, error) {
	tf, err := s.idx.TermFrequency(docID, term)
	if err != nil {
		return 0, err
	}
	_, df, err := s.token(term)
	if err != nil {
		return 0, err
	}
	return float64(tf) * idf(s.idx.TotalDocuments(), df), nil
}

// BM25IDF = ln((N - df + 0.5) / (df + 0.5) + 1).
func (s *Scorer) BM25IDF(term string) (float64, error) {
	if _, err := s.idx.AverageDocLength(); err != nil {
		return 0, err
	}
	_, df, err := s.token(term)
	if err != nil {
		return 0, err
	}
	return bm25IDF(s.idx.TotalDocuments(), df), nil
}

// BM25TF = tf*(k1+1) / (tf + k1*(1 - b + b*len(doc)/avgdl)).
// A known document that lacks the term scores 0.
func (s *Scorer) BM25TF(docID int, term string, k1, b float64) (float64, error) {
	if err := (Params{K1: k1, B: b}).Validate(); err != nil {
		return 0, err
	}
	avgdl, err := s.idx.AverageDocLength()
	if err != nil {
		return 0, err
	}
	tf, err := s.idx.TermFrequency(docID, term)
	if err != nil {
		return 0, err
	}
	docLen, _ := s.idx.DocLength(docID)
	return bm25TF(tf, docLen, avgdl, k1, b), nil
}

// BM25 = BM25TF(doc, term) * BM25IDF(term).
func (s *Scorer) BM25(docID int, term string, k1, b float64) (float64, error) {
	tf, err := s.BM25TF(docID, term, k1, b)
	if err != nil {
		return 0, err
	}
	_, df, err := s.token(term)
	if err != nil {
		return 0, err
	}
	return tf * bm25IDF(s.idx.TotalDocuments(), df), nil
}

// Ranking is the full ordered result of a ranked search before truncation.
type Ranking struct {
	Hits   []model.Hit
	Total  int      // documents that matched at least one query token
	Tokens []string // normalized query tokens
}

// Search ranks documents for a free-text query with BM25. Each normalized
// query token contributes once per occurrence; tokens outside the vocabulary
// contribute nothing. Results are ordered by descending score, ties by
// ascending document ID, and truncated to params.Limit (DefaultLimit when
// not positive).
func (s *Scorer) Search(query string, params Params) (Ranking, error) {
	if err := params.Validate(); err != nil {
		return Ranking{}, err
	}
	avgdl, err := s.idx.AverageDocLength()
	if err != nil {
		return Ranking{}, err
	}
	limit := params.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	tokens := s.idx.Normalizer().Normalize(query)
	n := s.idx.TotalDocuments()

	scores := make(map[int]float64)
	for _, token := range tokens {
		postings, ok := s.idx.Postings(token)
		if !ok {
			continue
		}
		w := bm25IDF(n, postings.Len())
		postings.ForEach(func(docID int) {
			docLen, _ := s.idx.DocLength(docID)
			tf := s.idx.TokenFrequency(docID, token)
			scores[docID] += w * bm25TF(tf, docLen, avgdl, params.K1, params.B)
		})
	}

	type scored struct {
		id    int
		score float64
	}
	ranked := make([]scored, 0, len(scores))
	for id, score := range scores {
		ranked = append(ranked, scored{id: id, score: score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].id < ranked[j].id
	})

	total := len(ranked)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	hits := make([]model.Hit, 0, len(ranked))
	for _, r := range ranked {
		doc, _ := s.idx.Document(r.id)
		hits = append(hits, model.Hit{Document: doc, Score: r.score})
	}
	return Ranking{Hits: hits, Total: total, Tokens: tokens}, nil
}

func idf(n, df int) float64 {
	return math.Log(float64(n+1) / float64(df+1))
}

func bm25IDF(n, df int) float64 {
	return math.Log((float64(n-df)+0.5)/(float64(df)+0.5) + 1)
}

func bm25TF(tf, docLen int, avgdl, k1, b float64) float64 {
	if tf == 0 {
		return 0
	}
	f := float64(tf)
	norm := 1 - b + b*(float64(docLen)/avgdl)
	return (f * (k1 + 1)) / (f + k1*norm)
}
