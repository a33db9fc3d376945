package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is a client for the Ollama generate API.
type Client struct {
	BaseURL string
	Model   string
	client  *http.Client
}

// NewClient creates a new generation client.
func NewClient(baseURL, model string) *Client {
	return &Client{
		BaseURL: baseURL,
		Model:   model,
		client: &http.Client{
			// Generations can run long; streaming reads are bounded by the
			// request context, not this timeout
			Timeout: 5 * time.Minute,
		},
	}
}

// GenerateRequest represents the request payload for the generate API.
type GenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	System string `json:"system,omitempty"`
	Stream bool   `json:"stream"`
}

// GenerateResponse represents one response object from the generate API.
// In streaming mode the API emits one JSON object per line.
type GenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Generate sends a non-streaming generation request and returns the full
// answer text.
func (c *Client) Generate(ctx context.Context, system, prompt string) (string, error) {
	resp, err := c.send(ctx, system, prompt, false)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var genResp GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	return genResp.Response, nil
}

// Stream sends a streaming generation request and calls the callback for each
// produced fragment, in order. It returns when the model reports completion,
// when the callback returns an error, or when ctx is cancelled; cancellation
// closes the response body so the generation is not awaited to completion.
func (c *Client) Stream(ctx context.Context, system, prompt string, callback func(token string) error) error {
	resp, err := c.send(ctx, system, prompt, true)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// The API emits newline-delimited JSON objects
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var genResp GenerateResponse
		if err := json.Unmarshal(line, &genResp); err != nil {
			// Skip malformed lines
			continue
		}

		if genResp.Response != "" {
			if err := callback(genResp.Response); err != nil {
				return fmt.Errorf("callback error: %w", err)
			}
		}

		if genResp.Done {
			break
		}
	}

	if err := scanner.Err(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("failed to read stream: %w", err)
	}

	return nil
}

// send issues a generate request and returns the raw response after checking
// the status code. The caller owns the body.
func (c *Client) send(ctx context.Context, system, prompt string, stream bool) (*http.Response, error) {
	url := fmt.Sprintf("%s/api/generate", c.BaseURL)

	payload := GenerateRequest{
		Model:  c.Model,
		Prompt: prompt,
		System: system,
		Stream: stream,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		return nil, fmt.Errorf("bad status %d: %s", resp.StatusCode, string(raw))
	}

	return resp, nil
}
