package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// GroqOptions configures the Groq client.
type GroqOptions struct {
	APIKey  string
	Model   string
	BaseURL string
}

// GroqClient talks to Groq's OpenAI-compatible API.
type GroqClient struct {
	opts       GroqOptions
	httpClient *http.Client
}

func NewGroqClient(opts GroqOptions, httpClient *http.Client) *GroqClient {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.groq.com/openai/v1"
	}
	if opts.Model == "" {
		opts.Model = "llama-3.3-70b-versatile"
	}
	return &GroqClient{opts: opts, httpClient: httpClient}
}

func (c *GroqClient) Vendor() string { return VendorGroq }

func (c *GroqClient) Complete(ctx context.Context, prompt string) (string, error) {
	reqBody := chatRequest{
		Model:    c.opts.Model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", &UpstreamError{VendorName: VendorGroq, Err: err}
	}

	endpoint := strings.TrimRight(c.opts.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", &UpstreamError{VendorName: VendorGroq, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &UpstreamError{VendorName: VendorGroq, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
		return "", &UpstreamError{
			VendorName: VendorGroq,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", &UpstreamError{VendorName: VendorGroq, Err: err}
	}
	if decoded.Error != nil && decoded.Error.Message != "" {
		return "", &UpstreamError{VendorName: VendorGroq, Body: decoded.Error.Message}
	}
	if len(decoded.Choices) == 0 {
		return "", &UpstreamError{VendorName: VendorGroq, Err: fmt.Errorf("empty choices in response")}
	}
	return decoded.Choices[0].Message.Content, nil
}
