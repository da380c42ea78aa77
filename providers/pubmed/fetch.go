// Package pubmed implements the Bibliographic contract against the NCBI
// E-utilities API (ESearch for PMIDs, EFetch for MEDLINE XML records).
package pubmed

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"primetime/apperr"
	"primetime/config"
	"primetime/providers"
)

// Fetcher implements providers.Bibliographic against NCBI E-utilities.
type Fetcher struct {
	cfg      *config.Config
	logger   *zap.Logger
	client   *http.Client
	limiter  *rate.Limiter
}

// NewFetcher builds a PubMed fetcher. The rate limiter honors NCBI's
// published caps: 10 req/s with an API key, 3 req/s without.
func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	limit := rate.Limit(3)
	if cfg.PubMedAPIKey != "" {
		limit = rate.Limit(10)
	}
	return &Fetcher{
		cfg:     cfg,
		logger:  logger,
		client:  &http.Client{Timeout: time.Duration(cfg.BibliographicTimeoutSeconds) * time.Second},
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Name identifies this adapter.
func (f *Fetcher) Name() string { return "pubmed" }

// Search implements providers.Bibliographic.
func (f *Fetcher) Search(ctx context.Context, queryExpression string, maxResults int, dateRange *providers.DateRange) ([]providers.ArticleRecord, error) {
	if maxResults <= 0 {
		maxResults = f.cfg.MaxResultsCap
	}

	pmids, err := f.esearchAll(ctx, queryExpression, maxResults, dateRange)
	if err != nil {
		return nil, err
	}
	if len(pmids) == 0 {
		return nil, nil
	}

	pageSize := f.cfg.PubMedPageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	var chunks [][]string
	for i := 0; i < len(pmids); i += pageSize {
		end := i + pageSize
		if end > len(pmids) {
			end = len(pmids)
		}
		chunks = append(chunks, pmids[i:end])
	}

	results := make([][]providers.ArticleRecord, len(chunks))
	sem := make(chan struct{}, 5)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for i, chunk := range chunks {
		wg.Add(1)
		go func(idx int, ids []string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			records, err := f.efetch(ctx, ids)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				f.logger.Warn("efetch chunk failed", zap.Int("chunk", idx), zap.Error(err))
				return
			}
			results[idx] = records
		}(i, chunk)
	}
	wg.Wait()

	if firstErr != nil && allEmpty(results) {
		return nil, firstErr
	}

	ordered := make([]providers.ArticleRecord, 0, len(pmids))
	for _, chunkResults := range results {
		ordered = append(ordered, chunkResults...)
	}
	return ordered, nil
}

func allEmpty(results [][]providers.ArticleRecord) bool {
	for _, r := range results {
		if len(r) > 0 {
			return false
		}
	}
	return true
}

// esearchAll pages through ESearch until maxResults PMIDs are collected
// or the upstream result set is exhausted.
func (f *Fetcher) esearchAll(ctx context.Context, queryExpression string, maxResults int, dateRange *providers.DateRange) ([]string, error) {
	pageSize := f.cfg.PubMedPageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	var pmids []string
	retstart := 0
	for len(pmids) < maxResults {
		retmax := pageSize
		if remaining := maxResults - len(pmids); remaining < retmax {
			retmax = remaining
		}

		page, total, err := f.esearchPage(ctx, queryExpression, retmax, retstart, dateRange)
		if err != nil {
			return nil, err
		}
		pmids = append(pmids, page...)
		retstart += len(page)
		if len(page) == 0 || retstart >= total {
			break
		}
	}
	return pmids, nil
}

func (f *Fetcher) esearchPage(ctx context.Context, queryExpression string, retmax, retstart int, dateRange *providers.DateRange) ([]string, int, error) {
	values := url.Values{}
	values.Set("db", "pubmed")
	values.Set("retmode", "json")
	values.Set("term", queryExpression)
	values.Set("retmax", strconv.Itoa(retmax))
	values.Set("retstart", strconv.Itoa(retstart))
	f.applyCommon(values)
	if dateRange != nil && !dateRange.Start.IsZero() && !dateRange.End.IsZero() {
		values.Set("datetype", "pdat")
		values.Set("mindate", dateRange.Start.Format("2006/01/02"))
		values.Set("maxdate", dateRange.End.Format("2006/01/02"))
	}

	body, err := f.get(ctx, "/esearch.fcgi", values)
	if err != nil {
		return nil, 0, err
	}

	var parsed esearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, 0, apperr.Permanent(err, "decoding esearch response")
	}
	total, _ := strconv.Atoi(parsed.ESearchResult.Count)
	return parsed.ESearchResult.IDList, total, nil
}

func (f *Fetcher) efetch(ctx context.Context, pmids []string) ([]providers.ArticleRecord, error) {
	values := url.Values{}
	values.Set("db", "pubmed")
	values.Set("retmode", "xml")
	values.Set("id", strings.Join(pmids, ","))
	f.applyCommon(values)

	body, err := f.get(ctx, "/efetch.fcgi", values)
	if err != nil {
		return nil, err
	}

	var parsed pubmedArticleSet
	if err := xml.Unmarshal(body, &parsed); err != nil {
		return nil, apperr.Permanent(err, "decoding efetch response")
	}

	records := make([]providers.ArticleRecord, 0, len(parsed.Articles))
	for _, a := range parsed.Articles {
		records = append(records, mapArticle(a))
	}
	return records, nil
}

func (f *Fetcher) applyCommon(values url.Values) {
	values.Set("tool", f.cfg.PubMedTool)
	if f.cfg.PubMedEmail != "" {
		values.Set("email", f.cfg.PubMedEmail)
	}
	if f.cfg.PubMedAPIKey != "" {
		values.Set("api_key", f.cfg.PubMedAPIKey)
	}
}

// get performs a rate-limited GET, making up to 3 attempts in total on
// transient failure, returning the raw response body.
func (f *Fetcher) get(ctx context.Context, path string, values url.Values) ([]byte, error) {
	fullURL := fmt.Sprintf("%s%s?%s", f.cfg.PubMedBaseURL, path, values.Encode())

	op := func() ([]byte, error) {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, apperr.Permanent(err, "building pubmed request")
		}

		resp, err := f.client.Do(req)
		if err != nil {
			return nil, apperr.Transient(err, "pubmed request failed")
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, apperr.Transient(err, "reading pubmed response")
		}

		if resp.StatusCode >= 500 {
			return nil, apperr.Transient(fmt.Errorf("status %d", resp.StatusCode), "pubmed server error")
		}
		if resp.StatusCode != http.StatusOK {
			return nil, backoff.Permanent(apperr.Permanent(fmt.Errorf("status %d", resp.StatusCode), "pubmed request rejected"))
		}
		return body, nil
	}

	return backoff.Retry(ctx, op, backoff.WithMaxTries(3), backoff.WithBackOff(backoff.NewExponentialBackOff()))
}

func mapArticle(a pubmedArticle) providers.ArticleRecord {
	c := a.MedlineCitation
	rec := providers.ArticleRecord{
		PMID:    strings.TrimSpace(c.PMID),
		Title:   c.Article.ArticleTitle,
		Journal: c.Article.Journal.Title,
		PubDate: parsePubDate(c.Article.Journal.JournalIssue.PubDate),
	}

	var parts []string
	for _, t := range c.Article.Abstract.Text {
		if t.Value != "" {
			parts = append(parts, t.Value)
		}
	}
	rec.Abstract = strings.Join(parts, "\n")

	for _, loc := range c.Article.ELocationIDs {
		if strings.EqualFold(loc.EIdType, "doi") {
			rec.DOI = strings.TrimSpace(loc.Value)
			break
		}
	}

	for _, au := range c.Article.AuthorList.Authors {
		switch {
		case au.CollectiveName != "":
			rec.Authors = append(rec.Authors, au.CollectiveName)
		case au.ForeName != "" || au.LastName != "":
			rec.Authors = append(rec.Authors, strings.TrimSpace(au.ForeName+" "+au.LastName))
		}
	}

	return rec
}

func parsePubDate(d pubDate) *time.Time {
	if d.Year == "" {
		return nil
	}
	month := d.Month
	if month == "" {
		month = "Jan"
	}
	day := d.Day
	if day == "" {
		day = "01"
	}
	layouts := []string{"2006-Jan-02", "2006-01-02"}
	candidate := fmt.Sprintf("%s-%s-%s", d.Year, month, day)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, candidate); err == nil {
			return &t
		}
	}
	if t, err := time.Parse("2006", d.Year); err == nil {
		return &t
	}
	return nil
}
