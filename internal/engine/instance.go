package engine

import (
	"time"

	"github.com/gcbaptista/movie-search/index"
	"github.com/gcbaptista/movie-search/internal/search"
	"github.com/gcbaptista/movie-search/model"
)

const (
	sourceEmpty    = "empty"
	sourceBuild    = "build"
	sourceSnapshot = "snapshot"
)

// Instance is one immutable published index together with the search
// service bound to its generation.
type Instance struct {
	idx         *index.InvertedIndex
	searcher    *search.Service
	generation  string
	source      string
	publishedAt time.Time
}

// Index returns the underlying index.
func (i *Instance) Index() *index.InvertedIndex {
	return i.idx
}

// Searcher returns the search service of this generation.
func (i *Instance) Searcher() *search.Service {
	return i.searcher
}

// Generation identifies this instance.
func (i *Instance) Generation() string {
	return i.generation
}

// Stats summarizes the instance. The average length is 0 when undefined.
func (i *Instance) Stats() model.IndexStats {
	avg, err := i.idx.AverageDocLength()
	if err != nil {
		avg = 0
	}
	return model.IndexStats{
		Generation:       i.generation,
		Source:           i.source,
		PublishedAt:      i.publishedAt,
		DocumentCount:    i.idx.TotalDocuments(),
		TermCount:        len(i.idx.Terms()),
		AverageDocLength: avg,
	}
}
