package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// DocumentsForHandler lists the documents containing a term.
func (api *API) DocumentsForHandler(c *gin.Context) {
	term := c.Param("term")
	if result := ValidateTerm("term", term); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	ids, err := api.engine.DocumentsFor(term)
	if err != nil {
		SendEngineError(c, "documents lookup", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"term":      term,
		"documents": ids,
		"total":     len(ids),
	})
}

// IDFHandler returns the smoothed inverse document frequency of a term.
func (api *API) IDFHandler(c *gin.Context) {
	term := c.Param("term")
	if result := ValidateTerm("term", term); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	idf, err := api.engine.IDF(term)
	if err != nil {
		SendEngineError(c, "idf", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"term": term, "idf": idf})
}

// BM25IDFHandler returns the BM25 inverse document frequency of a term.
func (api *API) BM25IDFHandler(c *gin.Context) {
	term := c.Param("term")
	if result := ValidateTerm("term", term); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	idf, err := api.engine.BM25IDF(term)
	if err != nil {
		SendEngineError(c, "bm25 idf", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"term": term, "bm25_idf": idf})
}

// documentTermParams parses the :id path parameter and ?term= query.
func documentTermParams(c *gin.Context) (int, string, *ValidationResult) {
	docID, result := ValidateDocumentID(c.Param("id"))
	term := c.Query("term")
	if termResult := ValidateTerm("term", term); termResult.HasErrors() {
		result.Errors = append(result.Errors, termResult.Errors...)
		result.Valid = false
	}
	return docID, term, result
}

// TermFrequencyHandler returns the occurrences of a term in a document.
func (api *API) TermFrequencyHandler(c *gin.Context) {
	docID, term, result := documentTermParams(c)
	if result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	tf, err := api.engine.TermFrequency(docID, term)
	if err != nil {
		SendEngineError(c, "term frequency", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": docID, "term": term, "tf": tf})
}

// TFIDFHandler returns tf * idf of a term in a document.
func (api *API) TFIDFHandler(c *gin.Context) {
	docID, term, result := documentTermParams(c)
	if result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	score, err := api.engine.TFIDF(docID, term)
	if err != nil {
		SendEngineError(c, "tf-idf", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": docID, "term": term, "tfidf": score})
}

// BM25TFHandler returns the BM25 term-frequency component. k1 and b are
// optional query parameters.
func (api *API) BM25TFHandler(c *gin.Context) {
	docID, term, result := documentTermParams(c)
	k1 := optionalFloatQuery(c, "k1", result)
	b := optionalFloatQuery(c, "b", result)
	if result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	score, err := api.engine.BM25TF(docID, term, k1, b)
	if err != nil {
		SendEngineError(c, "bm25 tf", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": docID, "term": term, "bm25_tf": score})
}
