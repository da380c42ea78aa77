// Package fulltext resolves a best-effort open-access PDF link for an
// article via Unpaywall. It is a non-fatal helper: any failure or a
// missing location just yields an empty string, never an error the
// caller has to handle.
package fulltext

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"primetime/config"
)

// Resolver looks up open-access PDF links by DOI.
type Resolver struct {
	cfg    *config.Config
	logger *zap.Logger
	client *http.Client
}

// NewResolver builds an Unpaywall-backed Resolver.
func NewResolver(cfg *config.Config, logger *zap.Logger) *Resolver {
	return &Resolver{
		cfg:    cfg,
		logger: logger,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

type unpaywallResponse struct {
	BestOALocation struct {
		URLForPDF string `json:"url_for_pdf"`
	} `json:"best_oa_location"`
}

// PDFLink returns the best open-access PDF URL for doi, or "" if none is
// configured or found. Transport errors are logged at debug level; every
// failure is swallowed.
func (r *Resolver) PDFLink(ctx context.Context, doi string) string {
	if doi == "" || r.cfg.UnpaywallEmail == "" {
		return ""
	}

	url := fmt.Sprintf("%s/%s?email=%s", r.cfg.UnpaywallBaseURL, doi, r.cfg.UnpaywallEmail)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ""
	}

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Debug("unpaywall request failed", zap.String("doi", doi), zap.Error(err))
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	var parsed unpaywallResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return ""
	}
	return parsed.BestOALocation.URLForPDF
}
