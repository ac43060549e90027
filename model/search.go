package model

import "time"

// Hit is a single ranked search result.
type Hit struct {
	Document Document `json:"document"`
	Score    float64  `json:"score"`
}

// IndexStats summarizes the currently published index.
type IndexStats struct {
	Generation       string    `json:"generation"`
	Source           string    `json:"source"` // "empty", "build" or "snapshot"
	PublishedAt      time.Time `json:"published_at"`
	DocumentCount    int       `json:"document_count"`
	TermCount        int       `json:"term_count"`
	AverageDocLength float64   `json:"average_doc_length"`
}
