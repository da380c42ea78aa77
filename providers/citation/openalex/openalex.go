// Package openalex implements the fallback half of the Citation contract
// against the OpenAlex works API, used when CrossRef's count is missing
// or zero, and as the sole source of the yearly citation breakdown
// (counts_by_year) that CrossRef does not expose.
package openalex

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"primetime/apperr"
	"primetime/config"
	"primetime/providers"
)

// Client implements providers.Citation against OpenAlex.
type Client struct {
	cfg    *config.Config
	logger *zap.Logger
	client *http.Client
}

// NewClient builds an OpenAlex client.
func NewClient(cfg *config.Config, logger *zap.Logger) *Client {
	return &Client{
		cfg:    cfg,
		logger: logger,
		client: &http.Client{Timeout: time.Duration(cfg.CitationTimeoutSeconds) * time.Second},
	}
}

type workResponse struct {
	CitedByCount int `json:"cited_by_count"`
	CountsByYear []struct {
		Year  int `json:"year"`
		Count int `json:"cited_by_count"`
	} `json:"counts_by_year"`
}

func (c *Client) fetchWork(ctx context.Context, doi, pmid string) (*workResponse, error) {
	var id string
	switch {
	case doi != "":
		id = "https://doi.org/" + doi
	case pmid != "":
		id = "pmid:" + pmid
	default:
		return &workResponse{}, nil
	}

	values := url.Values{}
	if c.cfg.OpenAlexEmail != "" {
		values.Set("mailto", c.cfg.OpenAlexEmail)
	}
	fullURL := fmt.Sprintf("%s/works/%s", c.cfg.OpenAlexBaseURL, url.QueryEscape(id))
	if len(values) > 0 {
		fullURL += "?" + values.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, apperr.Permanent(err, "building openalex request")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperr.Transient(err, "openalex request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return &workResponse{}, nil
	}
	if resp.StatusCode >= 500 {
		return nil, apperr.Transient(fmt.Errorf("status %d", resp.StatusCode), "openalex server error")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperr.Permanent(fmt.Errorf("status %d", resp.StatusCode), "openalex request rejected")
	}

	var parsed workResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, apperr.Permanent(err, "decoding openalex response")
	}
	return &parsed, nil
}

// CurrentCount implements providers.Citation.
func (c *Client) CurrentCount(ctx context.Context, doi, pmid string) (string, int, time.Time, error) {
	work, err := c.fetchWork(ctx, doi, pmid)
	if err != nil {
		return "openalex", 0, time.Time{}, err
	}
	return "openalex", work.CitedByCount, time.Now(), nil
}

// YearlyCounts implements providers.Citation.
func (c *Client) YearlyCounts(ctx context.Context, doi, pmid string) ([]providers.YearlyCount, error) {
	work, err := c.fetchWork(ctx, doi, pmid)
	if err != nil {
		return nil, err
	}
	out := make([]providers.YearlyCount, 0, len(work.CountsByYear))
	for _, y := range work.CountsByYear {
		out = append(out, providers.YearlyCount{Year: y.Year, Count: y.Count})
	}
	return out, nil
}
