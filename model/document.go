package model

// Document is a movie record from the corpus.
// Identity is ID; the index never modifies a document after Build.
type Document struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Text returns the text that gets indexed for this document: the title and
// description joined by a single space.
func (d Document) Text() string {
	return d.Title + " " + d.Description
}

// Corpus is the on-disk dataset envelope, e.g. data/movies.json.
type Corpus struct {
	Movies []Document `json:"movies"`
}
