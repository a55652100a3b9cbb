package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"rcman/internal/config"
	"rcman/internal/enrich"
)

// Embedder implements port.Embedder using the Gemini embedding API.
type Embedder struct {
	apiKey     string
	model      string
	dimensions int
	endpoint   string
	client     *http.Client
}

// NewEmbedder creates a Gemini-based text embedder.
func NewEmbedder(cfg *config.EmbeddingConfig) *Embedder {
	return NewEmbedderWithEndpoint(cfg, "")
}

// NewEmbedderWithEndpoint creates an embedder pointing at a custom API
// endpoint (for testing).
func NewEmbedderWithEndpoint(cfg *config.EmbeddingConfig, endpoint string) *Embedder {
	model := cfg.Model
	if model == "" {
		model = "text-embedding-004"
	}
	dimensions := cfg.Dimensions
	if dimensions == 0 {
		dimensions = 768
	}
	if endpoint == "" {
		endpoint = fmt.Sprintf("%s/%s:batchEmbedContents", apiBaseURL, model)
	}
	return &Embedder{
		apiKey:     cfg.APIKey,
		model:      model,
		dimensions: dimensions,
		endpoint:   endpoint,
		client:     &http.Client{Timeout: 60 * time.Second},
	}
}

func (e *Embedder) Dimensions() int {
	return e.dimensions
}

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	requests := make([]map[string]interface{}, len(texts))
	for i, text := range texts {
		requests[i] = map[string]interface{}{
			"model": "models/" + e.model,
			"content": map[string]interface{}{
				"parts": []map[string]interface{}{
					{"text": text},
				},
			},
		}
	}

	bodyBytes, err := json.Marshal(map[string]interface{}{"requests": requests})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling gemini embedding API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("gemini embedding API error (status %d): %s", resp.StatusCode, string(respBody))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := enrich.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return nil, enrich.NewRateLimitError("gemini-embedding", baseErr, retryAfter)
		}
		return nil, baseErr
	}

	var parsed struct {
		Embeddings []struct {
			Values []float32 `json:"values"`
		} `json:"embeddings"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}
	if len(parsed.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: sent %d texts, got %d embeddings", len(texts), len(parsed.Embeddings))
	}

	vectors := make([][]float32, len(parsed.Embeddings))
	for i, emb := range parsed.Embeddings {
		vectors[i] = emb.Values
	}
	return vectors, nil
}
