package embed

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/skyeslattery/foundit/internal/config"
)

// Client calls an OpenAI-compatible /embeddings endpoint. Build one at
// startup and share it; resty clients are safe for concurrent use.
type Client struct {
	http  *resty.Client
	model string
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func NewClient(cfg *config.Config) *Client {
	http := resty.New().
		SetBaseURL(cfg.EmbedAPIURL).
		SetTimeout(30 * time.Second).
		SetHeader("Content-Type", "application/json")
	if cfg.EmbedAPIKey != "" {
		http.SetAuthToken(cfg.EmbedAPIKey)
	}
	return &Client{http: http, model: cfg.EmbedModel}
}

// Embed encodes texts in a single request. The returned vectors are in
// input order regardless of how the backend orders its response.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	var result embeddingResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(embeddingRequest{Model: c.model, Input: texts}).
		SetResult(&result).
		SetError(&result).
		Post("/embeddings")
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if resp.IsError() {
		if result.Error != nil {
			return nil, fmt.Errorf("embedding service error (%d): %s", resp.StatusCode(), result.Error.Message)
		}
		return nil, fmt.Errorf("embedding service error (%d)", resp.StatusCode())
	}
	if len(result.Data) != len(texts) {
		return nil, fmt.Errorf("embedding service returned %d vectors for %d inputs", len(result.Data), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for _, d := range result.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, fmt.Errorf("embedding service returned out-of-range index %d", d.Index)
		}
		vectors[d.Index] = d.Embedding
	}
	return vectors, nil
}
