package index

import (
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/gcbaptista/movie-search/internal/errors"
)

// Postings is the ordered set of document IDs containing a token.
// Iteration is always ascending by document ID.
type Postings struct {
	bitmap *roaring.Bitmap
}

func newPostings() *Postings {
	return &Postings{bitmap: roaring.New()}
}

func (p *Postings) add(docID int) {
	p.bitmap.Add(uint32(docID))
}

// Len returns the document frequency of the token.
func (p *Postings) Len() int {
	return int(p.bitmap.GetCardinality())
}

// DocIDs materializes the postings in ascending order.
func (p *Postings) DocIDs() []int {
	ids := make([]int, 0, p.Len())
	p.ForEach(func(docID int) {
		ids = append(ids, docID)
	})
	return ids
}

// ForEach calls fn for every document ID in ascending order.
func (p *Postings) ForEach(fn func(docID int)) {
	it := p.bitmap.Iterator()
	for it.HasNext() {
		fn(int(it.Next()))
	}
}

// validateDocID rejects IDs that cannot be stored in a 32-bit postings bitmap.
func validateDocID(docID int) error {
	if docID < 0 || int64(docID) > math.MaxUint32 {
		return errors.NewValidationError("id", fmt.Sprintf("document ID %d is outside [0, %d]", docID, uint32(math.MaxUint32)))
	}
	return nil
}
