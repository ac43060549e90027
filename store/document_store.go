package store

import (
	"sort"

	"github.com/gcbaptista/movie-search/model"
)

// DocumentStore is the docmap of an index: document ID to full document.
// It is written once during Build and read-only afterwards.
type DocumentStore struct {
	Docs map[int]model.Document
}

// NewDocumentStore creates an empty store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{Docs: make(map[int]model.Document)}
}

// Put stores doc under its ID. It reports false if the ID was already present.
func (ds *DocumentStore) Put(doc model.Document) bool {
	if _, exists := ds.Docs[doc.ID]; exists {
		return false
	}
	ds.Docs[doc.ID] = doc
	return true
}

// Get returns the document with the given ID.
func (ds *DocumentStore) Get(docID int) (model.Document, bool) {
	doc, ok := ds.Docs[docID]
	return doc, ok
}

// Has reports whether docID is present.
func (ds *DocumentStore) Has(docID int) bool {
	_, ok := ds.Docs[docID]
	return ok
}

// Len returns the number of stored documents.
func (ds *DocumentStore) Len() int {
	return len(ds.Docs)
}

// IDs returns all document IDs in ascending order.
func (ds *DocumentStore) IDs() []int {
	ids := make([]int, 0, len(ds.Docs))
	for id := range ds.Docs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
