// Package mesh implements the Vocabulary contract against NCBI's MeSH
// database: a two-step esearch (resolve term to a MeSH UID) then
// esummary (read ds_meshterms as synonyms) call per keyword.
package mesh

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"primetime/config"
)

// Expander implements providers.Vocabulary against NCBI MeSH.
type Expander struct {
	cfg    *config.Config
	logger *zap.Logger
	client *http.Client
}

// NewExpander builds a MeSH expander.
func NewExpander(cfg *config.Config, logger *zap.Logger) *Expander {
	return &Expander{
		cfg:    cfg,
		logger: logger,
		client: &http.Client{Timeout: time.Duration(cfg.VocabularyTimeoutSeconds) * time.Second},
	}
}

// Expand implements providers.Vocabulary: original terms first, then
// expansions in input order, duplicates removed case-insensitively. On
// any upstream failure a term expands to itself alone.
func (e *Expander) Expand(ctx context.Context, keywords []string) []string {
	seen := make(map[string]struct{}, len(keywords)*2)
	out := make([]string, 0, len(keywords)*2)

	addUnique := func(term string) {
		key := strings.ToLower(term)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		out = append(out, term)
	}

	for _, kw := range keywords {
		addUnique(kw)
	}
	for _, kw := range keywords {
		for _, syn := range e.expandOne(ctx, kw) {
			addUnique(syn)
		}
	}
	return out
}

func (e *Expander) expandOne(ctx context.Context, term string) []string {
	uid, err := e.searchUID(ctx, term)
	if err != nil || uid == "" {
		return nil
	}

	synonyms, err := e.summaryTerms(ctx, uid)
	if err != nil {
		e.logger.Debug("mesh summary failed", zap.String("term", term), zap.Error(err))
		return nil
	}
	return synonyms
}

func (e *Expander) searchUID(ctx context.Context, term string) (string, error) {
	values := url.Values{"db": {"mesh"}, "term": {term}, "retmode": {"json"}}
	body, err := e.get(ctx, "/esearch.fcgi", values)
	if err != nil {
		return "", err
	}

	var parsed struct {
		ESearchResult struct {
			IDList []string `json:"idlist"`
		} `json:"esearchresult"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", err
	}
	if len(parsed.ESearchResult.IDList) == 0 {
		return "", nil
	}
	return parsed.ESearchResult.IDList[0], nil
}

func (e *Expander) summaryTerms(ctx context.Context, uid string) ([]string, error) {
	values := url.Values{"db": {"mesh"}, "id": {uid}, "retmode": {"json"}}
	body, err := e.get(ctx, "/esummary.fcgi", values)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Result map[string]json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, err
	}
	raw, ok := parsed.Result[uid]
	if !ok {
		return nil, nil
	}

	var doc struct {
		DSMeshTerms []string `json:"ds_meshterms"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc.DSMeshTerms, nil
}

func (e *Expander) get(ctx context.Context, path string, values url.Values) ([]byte, error) {
	base := e.cfg.PubMedBaseURL
	if e.cfg.MeshEmail != "" {
		values.Set("email", e.cfg.MeshEmail)
	}
	fullURL := fmt.Sprintf("%s%s?%s", base, path, values.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mesh request failed with status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
