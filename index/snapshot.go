package index

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/gcbaptista/movie-search/internal/persistence"
	"github.com/gcbaptista/movie-search/model"
	"github.com/gcbaptista/movie-search/store"
)

// gobInvertedIndexData is the persisted form of an index: the four snapshot
// structures plus the document count used to detect a missing docmap.
type gobInvertedIndexData struct {
	Postings map[string]*roaring.Bitmap
	Docs     map[int]model.Document
	TermFreq map[int]map[string]int
	DocLens  map[int]int
	DocCount int
}

// GobEncode implements the gob.GobEncoder interface for InvertedIndex.
func (ii *InvertedIndex) GobEncode() ([]byte, error) {
	postings := make(map[string]*roaring.Bitmap, len(ii.postings))
	for token, p := range ii.postings {
		postings[token] = p.bitmap
	}

	dataToEncode := gobInvertedIndexData{
		Postings: postings,
		Docs:     ii.docs.Docs,
		TermFreq: ii.termFreq,
		DocLens:  ii.docLens,
		DocCount: ii.docs.Len(),
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(dataToEncode); err != nil {
		return nil, fmt.Errorf("failed to gob encode inverted index: %w", err)
	}
	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface for InvertedIndex.
// The receiver is only modified once the decoded data passed validation.
func (ii *InvertedIndex) GobDecode(data []byte) error {
	decodedData := gobInvertedIndexData{}
	if err := gob.NewDecoder(bytes.NewBuffer(data)).Decode(&decodedData); err != nil {
		return fmt.Errorf("failed to gob decode inverted index: %w", err)
	}

	// gob drops empty maps; an empty corpus legitimately decodes to nil maps.
	if decodedData.Postings == nil {
		decodedData.Postings = make(map[string]*roaring.Bitmap)
	}
	if decodedData.Docs == nil {
		decodedData.Docs = make(map[int]model.Document)
	}
	if decodedData.TermFreq == nil {
		decodedData.TermFreq = make(map[int]map[string]int)
	}
	if decodedData.DocLens == nil {
		decodedData.DocLens = make(map[int]int)
	}

	if err := validateSnapshot(&decodedData); err != nil {
		return err
	}

	postings := make(map[string]*Postings, len(decodedData.Postings))
	for token, bitmap := range decodedData.Postings {
		postings[token] = &Postings{bitmap: bitmap}
	}
	totalLength := 0
	for _, l := range decodedData.DocLens {
		totalLength += l
	}

	ii.postings = postings
	ii.docs = &store.DocumentStore{Docs: decodedData.Docs}
	ii.termFreq = decodedData.TermFreq
	ii.docLens = decodedData.DocLens
	ii.totalLength = totalLength
	ii.built = true
	return nil
}

// validateSnapshot checks that the four structures describe the same
// documents and the same vocabulary.
func validateSnapshot(d *gobInvertedIndexData) error {
	if len(d.Docs) != d.DocCount {
		return fmt.Errorf("docmap holds %d documents, expected %d", len(d.Docs), d.DocCount)
	}
	if len(d.DocLens) != d.DocCount {
		return fmt.Errorf("document length table holds %d documents, expected %d", len(d.DocLens), d.DocCount)
	}

	for docID, doc := range d.Docs {
		if doc.ID != docID {
			return fmt.Errorf("docmap key %d holds document %d", docID, doc.ID)
		}
		length, ok := d.DocLens[docID]
		if !ok {
			return fmt.Errorf("document %d has no recorded length", docID)
		}
		sum := 0
		for token, count := range d.TermFreq[docID] {
			if count <= 0 {
				return fmt.Errorf("document %d has non-positive count for token %q", docID, token)
			}
			bitmap, ok := d.Postings[token]
			if !ok || bitmap == nil || !bitmap.Contains(uint32(docID)) {
				return fmt.Errorf("token %q of document %d is missing from postings", token, docID)
			}
			sum += count
		}
		if sum != length {
			return fmt.Errorf("document %d has length %d but %d counted tokens", docID, length, sum)
		}
	}

	for docID := range d.TermFreq {
		if _, ok := d.Docs[docID]; !ok {
			return fmt.Errorf("term frequencies reference unknown document %d", docID)
		}
	}

	for token, bitmap := range d.Postings {
		if bitmap == nil || bitmap.IsEmpty() {
			return fmt.Errorf("token %q has empty postings", token)
		}
		it := bitmap.Iterator()
		for it.HasNext() {
			docID := int(it.Next())
			if d.TermFreq[docID][token] == 0 {
				return fmt.Errorf("postings of token %q reference document %d without occurrences", token, docID)
			}
		}
	}
	return nil
}

// Save writes the whole index to path as one snapshot file.
func (ii *InvertedIndex) Save(path string) error {
	if err := persistence.SaveGob(path, ii); err != nil {
		return fmt.Errorf("failed to save index snapshot: %w", err)
	}
	return nil
}

// Load replaces the index state with the snapshot stored at path. On any
// failure the previous state is kept and an error matching
// ErrCorruptOrMissingSnapshot is returned.
func (ii *InvertedIndex) Load(path string) error {
	fresh := New(ii.normalizer)
	if err := persistence.LoadGob(path, fresh); err != nil {
		return err
	}

	*ii = *fresh
	return nil
}
