package engine

import (
	"context"

	"github.com/gcbaptista/movie-search/services"
)

// DocumentsFor returns the ascending IDs of documents containing term.
func (e *Engine) DocumentsFor(term string) ([]int, error) {
	return e.Current().idx.DocumentsFor(term)
}

// TermFrequency returns the occurrences of term in document docID.
func (e *Engine) TermFrequency(docID int, term string) (int, error) {
	return e.Current().idx.TermFrequency(docID, term)
}

// IDF returns ln((N+1)/(df+1)) for term.
func (e *Engine) IDF(term string) (float64, error) {
	return e.Current().searcher.Scorer().IDF(term)
}

// TFIDF returns tf * IDF for term in document docID.
func (e *Engine) TFIDF(docID int, term string) (float64, error) {
	return e.Current().searcher.Scorer().TFIDF(docID, term)
}

// BM25IDF returns the BM25 inverse document frequency of term.
func (e *Engine) BM25IDF(term string) (float64, error) {
	return e.Current().searcher.Scorer().BM25IDF(term)
}

// BM25TF returns the saturated, length-normalized frequency of term in
// document docID. Nil k1 or b use the configured defaults.
func (e *Engine) BM25TF(docID int, term string, k1, b *float64) (float64, error) {
	svc := e.Current().searcher
	p := svc.Defaults()
	if k1 != nil {
		p.K1 = *k1
	}
	if b != nil {
		p.B = *b
	}
	return svc.Scorer().BM25TF(docID, term, p.K1, p.B)
}

// Search runs a ranked search against the published index.
func (e *Engine) Search(ctx context.Context, query services.SearchQuery) (services.SearchResult, error) {
	return e.Current().searcher.Search(ctx, query)
}
