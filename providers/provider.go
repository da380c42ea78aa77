// Package providers declares the four capability contracts the Ingestor,
// Scorer, and Cluster Manager are built against, so that each concrete
// adapter (PubMed, EuropePMC, CrossRef, OpenAlex, MeSH, Ollama) can be
// swapped without touching the pipeline that consumes it.
package providers

import (
	"context"
	"time"
)

// DateRange bounds a search by publication date. The PubMed and Europe
// PMC adapters apply it only when both Start and End are set; if either
// is zero, no date filter is applied at all.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ArticleRecord is what a Bibliographic adapter hands back per hit.
// PMID is the only required field.
type ArticleRecord struct {
	PMID     string
	Title    string
	Abstract string
	Journal  string
	PubDate  *time.Time
	DOI      string
	Authors  []string
}

// Bibliographic searches an external literature index. Implementations
// must preserve upstream relevance ordering. Network/5xx failures are
// wrapped as apperr.TransientError; malformed upstream responses as
// apperr.PermanentError.
type Bibliographic interface {
	Search(ctx context.Context, queryExpression string, maxResults int, dateRange *DateRange) ([]ArticleRecord, error)
	Name() string
}

// Citation resolves and tracks citation counts for one article.
type Citation interface {
	CurrentCount(ctx context.Context, doi, pmid string) (source string, count int, observedOn time.Time, err error)
	YearlyCounts(ctx context.Context, doi, pmid string) ([]YearlyCount, error)
}

// YearlyCount is one (year, count) sample of a citation trajectory.
type YearlyCount struct {
	Year  int
	Count int
}

// Vocabulary expands a keyword list with controlled-vocabulary synonyms.
// On any upstream failure it returns the input unchanged; it never fails
// the caller.
type Vocabulary interface {
	Expand(ctx context.Context, keywords []string) []string
}

// Embedder turns text into a fixed-dimensional real vector. Pure: same
// text in, same vector out. Empty/whitespace input yields a zero vector.
// Safe to call concurrently.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
	ModelName() string
}
