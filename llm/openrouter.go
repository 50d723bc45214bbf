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

// OpenRouterOptions configures the OpenRouter client. SiteURL and AppName
// feed OpenRouter's attribution headers and may be empty.
type OpenRouterOptions struct {
	APIKey  string
	Model   string
	BaseURL string
	SiteURL string
	AppName string
}

// OpenRouterClient talks to OpenRouter's OpenAI-compatible API.
type OpenRouterClient struct {
	opts       OpenRouterOptions
	httpClient *http.Client
}

func NewOpenRouterClient(opts OpenRouterOptions, httpClient *http.Client) *OpenRouterClient {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://openrouter.ai/api/v1"
	}
	if opts.Model == "" {
		opts.Model = "openrouter/auto"
	}
	return &OpenRouterClient{opts: opts, httpClient: httpClient}
}

func (c *OpenRouterClient) Vendor() string { return VendorOpenRouter }

func (c *OpenRouterClient) Complete(ctx context.Context, prompt string) (string, error) {
	reqBody := chatRequest{
		Model:    c.opts.Model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", &UpstreamError{VendorName: VendorOpenRouter, Err: err}
	}

	endpoint := strings.TrimRight(c.opts.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", &UpstreamError{VendorName: VendorOpenRouter, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)
	if c.opts.SiteURL != "" {
		req.Header.Set("HTTP-Referer", c.opts.SiteURL)
	}
	if c.opts.AppName != "" {
		req.Header.Set("X-Title", c.opts.AppName)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &UpstreamError{VendorName: VendorOpenRouter, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
		return "", &UpstreamError{
			VendorName: VendorOpenRouter,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", &UpstreamError{VendorName: VendorOpenRouter, Err: err}
	}
	if decoded.Error != nil && decoded.Error.Message != "" {
		return "", &UpstreamError{VendorName: VendorOpenRouter, Body: decoded.Error.Message}
	}
	if len(decoded.Choices) == 0 {
		return "", &UpstreamError{VendorName: VendorOpenRouter, Err: fmt.Errorf("empty choices in response")}
	}
	return decoded.Choices[0].Message.Content, nil
}
