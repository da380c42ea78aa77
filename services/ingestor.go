// Package services implements the Ingestor, Cluster Manager, Scorer, and
// Pipeline Coordinator: the parts of the system that orchestrate the
// Store and the provider adapters into the search-ingest-score pipeline.
package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"primetime/apperr"
	"primetime/config"
	"primetime/models"
	"primetime/providers"
	"primetime/store"
	"primetime/textnorm"
)

// Ingestor realizes a Search plus all derived article rows from a
// keyword list.
type Ingestor struct {
	store      *store.Store
	biblio     providers.Bibliographic
	vocabulary providers.Vocabulary
	citation   providers.Citation
	embedder   providers.Embedder
	cfg        *config.Config
	logger     *zap.Logger
}

// NewIngestor wires the adapters the Ingestor needs.
func NewIngestor(
	st *store.Store,
	biblio providers.Bibliographic,
	vocabulary providers.Vocabulary,
	citation providers.Citation,
	embedder providers.Embedder,
	cfg *config.Config,
	logger *zap.Logger,
) *Ingestor {
	return &Ingestor{
		store:      st,
		biblio:     biblio,
		vocabulary: vocabulary,
		citation:   citation,
		embedder:   embedder,
		cfg:        cfg,
		logger:     logger,
	}
}

// Result is what Ingest hands back to the Coordinator.
type Result struct {
	SearchID         uint
	ArticlesIngested int
}

// Ingest runs the full ingest algorithm: normalize, expand, compose,
// create the Search row, fetch, and enrich each returned article with
// bounded concurrency.
func (ing *Ingestor) Ingest(ctx context.Context, idea, rawKeywords string, maxResults int, dateRange *providers.DateRange) (Result, error) {
	keywords := normalizeKeywords(rawKeywords)
	if len(keywords) == 0 {
		return Result{}, apperr.ErrEmptyQuery
	}

	expanded := ing.vocabulary.Expand(ctx, keywords)
	queryExpression := composeQueryExpression(keywords, expanded)

	var dateStart, dateEnd *time.Time
	if dateRange != nil {
		if !dateRange.Start.IsZero() {
			dateStart = &dateRange.Start
		}
		if !dateRange.End.IsZero() {
			dateEnd = &dateRange.End
		}
	}

	searchID, err := ing.store.CreateSearch(idea, strings.Join(keywords, ";"), maxResults, dateStart, dateEnd)
	if err != nil {
		return Result{}, err
	}

	records, err := ing.biblio.Search(ctx, queryExpression, maxResults, dateRange)
	if err != nil {
		return Result{}, err
	}
	if len(records) > maxResults {
		records = records[:maxResults]
	}

	articleIDs := ing.enrichAll(ctx, records)

	if len(articleIDs) > 0 {
		if err := ing.store.LinkSearchArticles(searchID, articleIDs); err != nil {
			return Result{}, err
		}
	}

	return Result{SearchID: searchID, ArticlesIngested: len(articleIDs)}, nil
}

// enrichAll runs step 6 of the ingest algorithm over every record with
// bounded concurrency (default 8 workers): the bottleneck is network I/O
// to the citation and embedding adapters, not CPU.
func (ing *Ingestor) enrichAll(ctx context.Context, records []providers.ArticleRecord) []uint {
	concurrency := ing.cfg.IngestConcurrency
	if concurrency <= 0 {
		concurrency = 8
	}

	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var articleIDs []uint

	for _, record := range records {
		wg.Add(1)
		go func(rec providers.ArticleRecord) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			articleID, ok := ing.enrichOne(ctx, rec)
			if !ok {
				return
			}
			mu.Lock()
			articleIDs = append(articleIDs, articleID)
			mu.Unlock()
		}(record)
	}
	wg.Wait()
	return articleIDs
}

// enrichOne performs (a)-(d) of step 6 for a single article. Failure of
// (a) skips the rest; failures in (b)-(d) are logged and isolated.
func (ing *Ingestor) enrichOne(ctx context.Context, rec providers.ArticleRecord) (uint, bool) {
	log := ing.logger.With(zap.String("pmid", rec.PMID))

	articleID, _, err := ing.store.UpsertArticle(store.ArticleFields{
		PMID:     rec.PMID,
		Title:    rec.Title,
		Abstract: rec.Abstract,
		Journal:  rec.Journal,
		DOI:      rec.DOI,
		PubDate:  rec.PubDate,
	})
	if err != nil {
		log.Warn("upserting article failed, skipping enrichment", zap.Error(err))
		return 0, false
	}

	normalizedAuthors := make([]string, 0, len(rec.Authors))
	for _, a := range rec.Authors {
		if folded := textnorm.Fold(a); folded != "" {
			normalizedAuthors = append(normalizedAuthors, folded)
		}
	}
	if err := ing.store.AttachAuthors(articleID, normalizedAuthors); err != nil {
		log.Warn("attaching authors failed", zap.Error(err))
	}

	if err := ing.enrichCitations(ctx, articleID, rec.DOI, rec.PMID); err != nil {
		log.Warn("citation enrichment failed", zap.Error(err))
	}

	if err := ing.embedAndStore(ctx, articleID, rec.Title, rec.Abstract); err != nil {
		log.Warn("embedding failed", zap.Error(err))
	}

	return articleID, true
}

func (ing *Ingestor) enrichCitations(ctx context.Context, articleID uint, doi, pmid string) error {
	source, count, observedOn, err := ing.citation.CurrentCount(ctx, doi, pmid)
	if err != nil {
		return err
	}
	if err := ing.store.RecordCitationSnapshot(articleID, models.CitationSource(source), count, observedOn); err != nil {
		return err
	}

	yearly, err := ing.citation.YearlyCounts(ctx, doi, pmid)
	if err != nil {
		return err
	}
	rows := make([]models.YearlyCitation, len(yearly))
	for i, y := range yearly {
		rows[i] = models.YearlyCitation{Year: y.Year, Count: y.Count}
	}
	return ing.store.RecordYearlyCitations(articleID, rows)
}

func (ing *Ingestor) embedAndStore(ctx context.Context, articleID uint, title, abstract string) error {
	text := title + "\n" + abstract
	vec, err := ing.embedder.Embed(ctx, text)
	if err != nil {
		return err
	}
	embedding := make(models.Vector, len(vec))
	copy(embedding, vec)
	return ing.store.UpsertVector(articleID, embedding, nil)
}

// normalizeKeywords splits on ';', trims, drops empties, deduplicates
// case-insensitively while keeping first-seen casing.
func normalizeKeywords(raw string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, kw := range textnorm.SplitKeywords(raw) {
		key := strings.ToLower(kw)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, kw)
	}
	return out
}

// composeQueryExpression builds a boolean AND across terms, each term
// OR'd with its expansions. The expression is opaque to the Store.
func composeQueryExpression(keywords, expanded []string) string {
	expansionsOf := make(map[string][]string, len(keywords))
	for _, kw := range keywords {
		expansionsOf[strings.ToLower(kw)] = []string{kw}
	}
	for _, term := range expanded {
		matched := false
		for _, kw := range keywords {
			if strings.EqualFold(term, kw) {
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		// An expansion belongs to whichever original term it was derived
		// from; the vocabulary adapter doesn't tell us which, so every
		// synonym is OR'd onto every term's clause. This keeps the
		// expression conservative (more permissive) rather than dropping
		// expansions that can't be attributed.
		for kw := range expansionsOf {
			expansionsOf[kw] = append(expansionsOf[kw], term)
		}
	}

	clauses := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		terms := expansionsOf[strings.ToLower(kw)]
		quoted := make([]string, len(terms))
		for i, t := range terms {
			quoted[i] = fmt.Sprintf("%q", t)
		}
		clauses = append(clauses, "("+strings.Join(quoted, " OR ")+")")
	}
	return strings.Join(clauses, " AND ")
}
