// Package europepmc implements the Bibliographic contract against the
// Europe PMC REST search API, as an alternative to PubMed. cmd/primetime
// uses only the first recognized name in ENABLED_PROVIDERS, so this
// adapter is used when it is listed before pubmed.
package europepmc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"primetime/apperr"
	"primetime/config"
	"primetime/providers"
)

// Fetcher implements providers.Bibliographic against Europe PMC.
type Fetcher struct {
	cfg    *config.Config
	logger *zap.Logger
	client *http.Client
}

// NewFetcher builds a Europe PMC fetcher.
func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		cfg:    cfg,
		logger: logger,
		client: &http.Client{Timeout: time.Duration(cfg.BibliographicTimeoutSeconds) * time.Second},
	}
}

// Name identifies this adapter.
func (f *Fetcher) Name() string { return "europepmc" }

// Search implements providers.Bibliographic.
func (f *Fetcher) Search(ctx context.Context, queryExpression string, maxResults int, dateRange *providers.DateRange) ([]providers.ArticleRecord, error) {
	log := f.logger.With(zap.String("query", queryExpression))

	query := queryExpression
	if dateRange != nil && !dateRange.Start.IsZero() && !dateRange.End.IsZero() {
		query = fmt.Sprintf("%s AND FIRST_PDATE:[%s TO %s]", query,
			dateRange.Start.Format("2006-01-02"), dateRange.End.Format("2006-01-02"))
	}
	if maxResults <= 0 {
		maxResults = 25
	}

	searchURL := fmt.Sprintf("%s?query=%s&format=json&resultType=core&pageSize=%d",
		f.cfg.EuropePMCBaseURL, url.QueryEscape(query), maxResults)
	log.Debug("calling europepmc", zap.String("url", searchURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, apperr.Permanent(err, "building europepmc request")
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, apperr.Transient(err, "europepmc request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, apperr.Transient(fmt.Errorf("status %d", resp.StatusCode), "europepmc server error")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperr.Permanent(fmt.Errorf("status %d", resp.StatusCode), "europepmc request rejected")
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, apperr.Permanent(err, "decoding europepmc response")
	}

	records := make([]providers.ArticleRecord, 0, len(parsed.ResultList.Result))
	for _, a := range parsed.ResultList.Result {
		if a.PMID == "" {
			continue
		}
		records = append(records, mapArticle(a))
	}

	log.Info("europepmc search complete", zap.Int("found", len(records)))
	return records, nil
}

func mapArticle(a article) providers.ArticleRecord {
	var authors []string
	for _, name := range strings.Split(a.AuthorString, ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			authors = append(authors, name)
		}
	}
	return providers.ArticleRecord{
		PMID:     a.PMID,
		DOI:      a.DOI,
		Title:    a.Title,
		Abstract: a.AbstractText,
		Journal:  a.JournalTitle,
		PubDate:  parseEuroDate(a.FirstPublicationDate),
		Authors:  authors,
	}
}
