package index

import (
	"fmt"
	"sort"

	"github.com/gcbaptista/movie-search/internal/errors"
	"github.com/gcbaptista/movie-search/internal/tokenizer"
	"github.com/gcbaptista/movie-search/model"
	"github.com/gcbaptista/movie-search/store"
)

// InvertedIndex maps each token to the documents containing it and keeps the
// per-document statistics BM25 needs: term frequencies and document lengths.
//
// An index is populated exactly once, by Build or Load, and is read-only
// afterwards. Concurrent readers need no locking.
type InvertedIndex struct {
	postings    map[string]*Postings
	docs        *store.DocumentStore
	termFreq    map[int]map[string]int // docID -> token -> count
	docLens     map[int]int
	totalLength int
	built       bool
	normalizer  *tokenizer.Normalizer
}

// New creates an empty index that normalizes text with normalizer.
func New(normalizer *tokenizer.Normalizer) *InvertedIndex {
	if normalizer == nil {
		normalizer = tokenizer.NewNormalizer(tokenizer.DefaultStopwords())
	}
	return &InvertedIndex{
		postings:   make(map[string]*Postings),
		docs:       store.NewDocumentStore(),
		termFreq:   make(map[int]map[string]int),
		docLens:    make(map[int]int),
		normalizer: normalizer,
	}
}

// Build indexes every document of the corpus. An index can only be built
// once; construct a new one to rebuild. The corpus is validated before any
// state changes, so a rejected corpus leaves the index empty.
//
// Building from an empty corpus succeeds: DocumentsFor keeps working and
// scoring operations report ErrEmptyCorpus.
func (ii *InvertedIndex) Build(docs []model.Document) error {
	if ii.built {
		return errors.NewValidationError("index", "index already built; construct a new index to rebuild")
	}

	seen := make(map[int]struct{}, len(docs))
	for _, doc := range docs {
		if err := validateDocID(doc.ID); err != nil {
			return err
		}
		if _, dup := seen[doc.ID]; dup {
			return errors.NewValidationError("id", fmt.Sprintf("duplicate document ID %d", doc.ID))
		}
		seen[doc.ID] = struct{}{}
	}

	ii.built = true
	for _, doc := range docs {
		ii.addDocument(doc)
	}
	return nil
}

// addDocument indexes a single, already validated document.
func (ii *InvertedIndex) addDocument(doc model.Document) {
	tokens := ii.normalizer.Normalize(doc.Text())

	counts := make(map[string]int, len(tokens))
	for _, token := range tokens {
		p, exists := ii.postings[token]
		if !exists {
			p = newPostings()
			ii.postings[token] = p
		}
		p.add(doc.ID)
		counts[token]++
	}

	ii.docs.Put(doc)
	ii.termFreq[doc.ID] = counts
	ii.docLens[doc.ID] = len(tokens)
	ii.totalLength += len(tokens)
}

// Normalizer returns the normalizer used for documents and queries.
func (ii *InvertedIndex) Normalizer() *tokenizer.Normalizer {
	return ii.normalizer
}

// DocumentsFor returns the IDs of documents containing term, ascending.
// term must normalize to exactly one token. An unknown token yields an
// empty slice.
func (ii *InvertedIndex) DocumentsFor(term string) ([]int, error) {
	token, err := ii.normalizer.NormalizeSingle(term)
	if err != nil {
		return nil, err
	}
	p, ok := ii.postings[token]
	if !ok {
		return []int{}, nil
	}
	return p.DocIDs(), nil
}

// TermFrequency returns how many times term occurs in document docID.
// A known document that never contains the token yields 0.
func (ii *InvertedIndex) TermFrequency(docID int, term string) (int, error) {
	token, err := ii.normalizer.NormalizeSingle(term)
	if err != nil {
		return 0, err
	}
	if !ii.docs.Has(docID) {
		return 0, errors.NewUnknownDocumentError(docID)
	}
	return ii.TokenFrequency(docID, token), nil
}

// TokenFrequency is TermFrequency for an already normalized token and a
// document known to exist.
func (ii *InvertedIndex) TokenFrequency(docID int, token string) int {
	return ii.termFreq[docID][token]
}

// Postings returns the postings of a normalized token.
func (ii *InvertedIndex) Postings(token string) (*Postings, bool) {
	p, ok := ii.postings[token]
	return p, ok
}

// DocumentFrequency returns the number of documents containing token and
// whether the token is in the vocabulary at all.
func (ii *InvertedIndex) DocumentFrequency(token string) (int, bool) {
	p, ok := ii.postings[token]
	if !ok {
		return 0, false
	}
	return p.Len(), true
}

// Document returns the stored document.
func (ii *InvertedIndex) Document(docID int) (model.Document, bool) {
	return ii.docs.Get(docID)
}

// HasDocument reports whether docID is in the docmap.
func (ii *InvertedIndex) HasDocument(docID int) bool {
	return ii.docs.Has(docID)
}

// DocLength returns the normalized token count of a document.
func (ii *InvertedIndex) DocLength(docID int) (int, bool) {
	l, ok := ii.docLens[docID]
	return l, ok
}

// TotalDocuments returns the size of the docmap.
func (ii *InvertedIndex) TotalDocuments() int {
	return ii.docs.Len()
}

// AverageDocLength returns the mean normalized document length. It is
// undefined, and reported as ErrEmptyCorpus, when there are no documents.
// A corpus made only of stopwords has an average of 0 and no postings.
func (ii *InvertedIndex) AverageDocLength() (float64, error) {
	if len(ii.docLens) == 0 {
		return 0, errors.NewEmptyCorpusError("average document length")
	}
	return float64(ii.totalLength) / float64(len(ii.docLens)), nil
}

// Terms returns the vocabulary, sorted.
func (ii *InvertedIndex) Terms() []string {
	terms := make([]string, 0, len(ii.postings))
	for term := range ii.postings {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}

// DocumentIDs returns every document ID, ascending.
func (ii *InvertedIndex) DocumentIDs() []int {
	return ii.docs.IDs()
}

// DocumentTokens returns a copy of a document's token counts.
func (ii *InvertedIndex) DocumentTokens(docID int) map[string]int {
	counts := make(map[string]int, len(ii.termFreq[docID]))
	for token, count := range ii.termFreq[docID] {
		counts[token] = count
	}
	return counts
}

// Built reports whether the index has been populated by Build or Load.
func (ii *InvertedIndex) Built() bool {
	return ii.built
}
