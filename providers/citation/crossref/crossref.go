// Package crossref implements the primary half of the Citation contract
// against the CrossRef works API. CrossRef exposes only a running total,
// not a yearly breakdown, so YearlyCounts always returns an empty series.
package crossref

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"primetime/apperr"
	"primetime/config"
	"primetime/providers"
)

// Client implements providers.Citation against CrossRef.
type Client struct {
	cfg    *config.Config
	logger *zap.Logger
	client *http.Client
}

// NewClient builds a CrossRef client.
func NewClient(cfg *config.Config, logger *zap.Logger) *Client {
	return &Client{
		cfg:    cfg,
		logger: logger,
		client: &http.Client{Timeout: time.Duration(cfg.CitationTimeoutSeconds) * time.Second},
	}
}

type worksResponse struct {
	Message struct {
		IsReferencedByCount int `json:"is-referenced-by-count"`
	} `json:"message"`
}

// CurrentCount implements providers.Citation. A missing article (404)
// yields count=0 rather than an error, per the citation-adapter contract.
func (c *Client) CurrentCount(ctx context.Context, doi, pmid string) (string, int, time.Time, error) {
	if doi == "" {
		return "crossref", 0, time.Time{}, nil
	}

	url := fmt.Sprintf("%s/works/%s", c.cfg.CrossrefBaseURL, doi)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "crossref", 0, time.Time{}, apperr.Permanent(err, "building crossref request")
	}
	req.Header.Set("User-Agent", c.cfg.CrossrefUserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return "crossref", 0, time.Time{}, apperr.Transient(err, "crossref request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "crossref", 0, time.Now(), nil
	}
	if resp.StatusCode >= 500 {
		return "crossref", 0, time.Time{}, apperr.Transient(fmt.Errorf("status %d", resp.StatusCode), "crossref server error")
	}
	if resp.StatusCode != http.StatusOK {
		return "crossref", 0, time.Time{}, apperr.Permanent(fmt.Errorf("status %d", resp.StatusCode), "crossref request rejected")
	}

	var parsed worksResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "crossref", 0, time.Time{}, apperr.Permanent(err, "decoding crossref response")
	}

	return "crossref", parsed.Message.IsReferencedByCount, time.Now(), nil
}

// YearlyCounts always returns an empty series: CrossRef's works API does
// not expose a per-year citation breakdown.
func (c *Client) YearlyCounts(ctx context.Context, doi, pmid string) ([]providers.YearlyCount, error) {
	return nil, nil
}
