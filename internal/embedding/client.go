package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"counsel/internal/config"
)

// Provider turns text into a numeric vector. Dimensionality is fixed by the
// deployed backend; vectors from different providers are never compared.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Client calls a feature-extraction HTTP endpoint (HuggingFace inference
// style, with an OpenAI-compatible fallback parse).
type Client struct {
	cfg    config.EmbeddingConfig
	client *http.Client
}

// NewClient creates an embedding client with a bounded timeout.
func NewClient(cfg config.EmbeddingConfig, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

// Embed converts text to a vector embedding.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	reqBody := map[string]interface{}{
		"inputs":  text,
		"options": map[string]bool{"wait_for_model": true},
	}
	if c.cfg.Model != "" {
		reqBody["model"] = c.cfg.Model
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.cfg.URL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if key := config.EmbeddingAPIKey(); key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return parseVector(body)
}

// parseVector accepts the response shapes seen across providers: a bare
// vector, a batch of vectors, or an OpenAI-style data envelope.
func parseVector(body []byte) ([]float64, error) {
	var flat []float64
	if err := json.Unmarshal(body, &flat); err == nil && len(flat) > 0 {
		return flat, nil
	}

	var nested [][]float64
	if err := json.Unmarshal(body, &nested); err == nil && len(nested) > 0 && len(nested[0]) > 0 {
		return nested[0], nil
	}

	var envelope struct {
		Data []struct {
			Embedding []float64 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil &&
		len(envelope.Data) > 0 && len(envelope.Data[0].Embedding) > 0 {
		return envelope.Data[0].Embedding, nil
	}

	return nil, errors.New("no embedding in response")
}
