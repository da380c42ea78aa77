// Package ollama implements the Embedder contract against a local Ollama
// server's embeddings API.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	apiPathTags       = "/api/tags"
	apiPathEmbeddings = "/api/embeddings"
)

// Client implements providers.Embedder against Ollama.
type Client struct {
	baseURL    string
	model      string
	dimensions int
	client     *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the Ollama API base URL.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithModel sets the embedding model.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithDimensions sets the expected vector dimensions.
func WithDimensions(dims int) Option {
	return func(c *Client) { c.dimensions = dims }
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.client.Timeout = timeout }
}

// NewClient builds an Ollama embedding client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    "http://localhost:11434",
		model:      "all-minilm:l6-v2",
		dimensions: 384,
		client:     &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Embed implements providers.Embedder. Empty or whitespace-only text
// returns a zero vector without calling out to Ollama: the model has
// nothing to embed and a round trip would only return noise.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return make([]float32, c.dimensions), nil
	}

	reqBody, err := json.Marshal(embedRequest{Model: c.model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("marshaling embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+apiPathEmbeddings, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("building embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending embed request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, readBody(resp.Body))
	}

	var result embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding embed response: %w", err)
	}
	if len(result.Embedding) != c.dimensions {
		return nil, fmt.Errorf("unexpected embedding dimensions: got %d, want %d", len(result.Embedding), c.dimensions)
	}
	return result.Embedding, nil
}

// ModelName implements providers.Embedder.
func (c *Client) ModelName() string { return c.model }

// Dimensions implements providers.Embedder.
func (c *Client) Dimensions() int { return c.dimensions }

// IsAvailable reports whether the Ollama server is reachable.
func (c *Client) IsAvailable(ctx context.Context) error {
	resp, err := c.doGet(ctx, apiPathTags)
	if err != nil {
		return fmt.Errorf("ollama is not running: %w", err)
	}
	resp.Body.Close()
	return nil
}

// HasModel reports whether the configured model is loaded in Ollama.
func (c *Client) HasModel(ctx context.Context) (bool, error) {
	resp, err := c.doGet(ctx, apiPathTags)
	if err != nil {
		return false, fmt.Errorf("checking models: %w", err)
	}
	defer resp.Body.Close()

	var result tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("decoding tags response: %w", err)
	}
	for _, m := range result.Models {
		if m.Name == c.model {
			return true, nil
		}
	}
	return false, nil
}

func (c *Client) doGet(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}
	return resp, nil
}

func readBody(body io.Reader) string {
	b, err := io.ReadAll(body)
	if err != nil {
		return fmt.Sprintf("(failed to read response body: %v)", err)
	}
	return string(b)
}

type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}
