package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"counsel/internal/config"
)

// ErrRateLimited marks a 429 from the provider. Callers treat it like any
// other transient failure, it only exists for log clarity.
var ErrRateLimited = errors.New("provider rate limit exceeded")

// Client wraps the queue for one priority class.
type Client struct {
	manager  *Manager
	priority Priority
	timeout  time.Duration
}

// NewClient creates a new queue client
func NewClient(manager *Manager, priority Priority, timeout time.Duration) *Client {
	return &Client{
		manager:  manager,
		priority: priority,
		timeout:  timeout,
	}
}

// Call submits a request and waits for the raw response body.
func (c *Client) Call(ctx context.Context, url, apiKey string, payload map[string]interface{}) ([]byte, error) {
	respCh := make(chan *Response, 1)
	errCh := make(chan error, 1)

	req := &Request{
		ID:         fmt.Sprintf("%d_%d", c.priority, time.Now().UnixNano()),
		Priority:   c.priority,
		Context:    ctx,
		URL:        url,
		APIKey:     apiKey,
		Payload:    payload,
		ResponseCh: respCh,
		ErrorCh:    errCh,
		SubmitTime: time.Now(),
		Timeout:    c.timeout,
	}

	if err := c.manager.Submit(req); err != nil {
		return nil, fmt.Errorf("failed to submit: %w", err)
	}

	select {
	case resp := <-respCh:
		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, fmt.Errorf("%w: %s", ErrRateLimited, string(resp.Body))
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("provider returned status %d: %s", resp.StatusCode, string(resp.Body))
		}
		return resp.Body, nil
	case err := <-errCh:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Complete sends an OpenAI-style chat completion and returns the assistant
// text. Exported as a variable so tests can substitute the provider.
var Complete = func(ctx context.Context, c *Client, model config.ChatModelConfig, messages []Message) (string, error) {
	payload := map[string]interface{}{
		"model":       model.Model,
		"messages":    messages,
		"temperature": model.Temperature,
		"max_tokens":  model.MaxTokens,
	}

	body, err := c.Call(ctx, model.URL, config.ChatAPIKey(), payload)
	if err != nil {
		return "", err
	}

	var respStruct struct {
		Choices []struct {
			Message struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &respStruct); err != nil {
		return "", fmt.Errorf("malformed provider response: %w", err)
	}
	if respStruct.Error != nil {
		return "", fmt.Errorf("provider error: %s", respStruct.Error.Message)
	}
	if len(respStruct.Choices) == 0 {
		return "", errors.New("provider returned no choices")
	}
	return respStruct.Choices[0].Message.Content, nil
}
